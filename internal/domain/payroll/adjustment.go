package payroll

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// AdjustmentType classifies a post-calculation correction
type AdjustmentType string

const (
	AdjustmentTypeAddition  AdjustmentType = "addition"
	AdjustmentTypeDeduction AdjustmentType = "deduction"
	AdjustmentTypeOverride  AdjustmentType = "override"
)

// IsValid checks if the adjustment type is valid
func (t AdjustmentType) IsValid() bool {
	switch t {
	case AdjustmentTypeAddition, AdjustmentTypeDeduction, AdjustmentTypeOverride:
		return true
	}
	return false
}

// AdjustmentStatus is the approval state of an adjustment
type AdjustmentStatus string

const (
	AdjustmentStatusPending  AdjustmentStatus = "pending"
	AdjustmentStatusApproved AdjustmentStatus = "approved"
	AdjustmentStatusRejected AdjustmentStatus = "rejected"
	AdjustmentStatusApplied  AdjustmentStatus = "applied"
)

// IsTerminal returns true for states with no further transitions
func (s AdjustmentStatus) IsTerminal() bool {
	return s == AdjustmentStatusApplied || s == AdjustmentStatusRejected
}

// PayrollAdjustment is a proposed correction to one calculation. It moves
// pending -> approved/rejected, and approved -> applied. Applying creates a
// new calculation version; the adjustment row records which one.
type PayrollAdjustment struct {
	shared.BaseAggregateRoot
	PeriodID      uuid.UUID      `gorm:"type:uuid;not null;index"`
	CalculationID uuid.UUID      `gorm:"type:uuid;not null;index"` // chain head at proposal time
	EmployeeID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Type          AdjustmentType `gorm:"type:varchar(20);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	// Override adjustments replace the final net pay outright
	OriginalAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AdjustedAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Reason         string          `gorm:"type:varchar(500);not null"`
	Status         AdjustmentStatus `gorm:"type:varchar(20);not null;default:'pending';index"`

	RequestedBy     uuid.UUID  `gorm:"type:uuid;not null"`
	ApprovedAt      *time.Time
	ApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	RejectedAt      *time.Time
	RejectedBy      *uuid.UUID `gorm:"type:uuid"`
	RejectionReason string     `gorm:"type:varchar(500)"`
	AppliedAt       *time.Time
	// Calculation version created when this adjustment was applied
	AppliedCalculationID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PayrollAdjustment) TableName() string {
	return "payroll_adjustments"
}

// NewPayrollAdjustment proposes a correction against a calculation
func NewPayrollAdjustment(
	periodID, calculationID, employeeID, requestedBy uuid.UUID,
	adjType AdjustmentType,
	amount, originalAmount, adjustedAmount decimal.Decimal,
	reason string,
	now time.Time,
) (*PayrollAdjustment, error) {
	if !adjType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ADJUSTMENT_TYPE", "Adjustment type is not valid")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Adjustment reason is required")
	}
	if requestedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Requesting actor is required")
	}
	switch adjType {
	case AdjustmentTypeAddition, AdjustmentTypeDeduction:
		if amount.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Adjustment amount must be positive")
		}
	case AdjustmentTypeOverride:
		if adjustedAmount.IsNegative() {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Override amount cannot be negative")
		}
	}

	a := &PayrollAdjustment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		PeriodID:          periodID,
		CalculationID:     calculationID,
		EmployeeID:        employeeID,
		Type:              adjType,
		Amount:            amount,
		OriginalAmount:    originalAmount,
		AdjustedAmount:    adjustedAmount,
		Reason:            reason,
		Status:            AdjustmentStatusPending,
		RequestedBy:       requestedBy,
	}
	a.AddDomainEvent(NewAdjustmentProposedEvent(a, now))
	return a, nil
}

// SignedAmount returns the net effect on final pay: +amount for additions,
// -amount for deductions, and adjusted-original for overrides.
func (a *PayrollAdjustment) SignedAmount() decimal.Decimal {
	switch a.Type {
	case AdjustmentTypeAddition:
		return a.Amount
	case AdjustmentTypeDeduction:
		return a.Amount.Neg()
	case AdjustmentTypeOverride:
		return a.AdjustedAmount.Sub(a.OriginalAmount)
	}
	return decimal.Zero
}

// NeedsApproval reports whether the adjustment exceeds the configured
// approval threshold. The threshold is policy, not law; it comes from
// configuration rather than a constant.
func (a *PayrollAdjustment) NeedsApproval(threshold decimal.Decimal) bool {
	return a.SignedAmount().Abs().GreaterThanOrEqual(threshold)
}

// Approve moves a pending adjustment to approved
func (a *PayrollAdjustment) Approve(actor uuid.UUID, now time.Time) error {
	if a.Status != AdjustmentStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve adjustment in %s status", a.Status))
	}
	if actor == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Approving actor is required")
	}
	if actor == a.RequestedBy {
		return shared.NewDomainError("SELF_APPROVAL", "An adjustment cannot be approved by its requester")
	}

	a.Status = AdjustmentStatusApproved
	a.ApprovedAt = &now
	a.ApprovedBy = &actor
	a.UpdatedAt = now
	a.IncrementVersion()
	a.AddDomainEvent(NewAdjustmentApprovedEvent(a, actor, now))
	return nil
}

// Reject moves a pending adjustment to rejected; reason is mandatory
func (a *PayrollAdjustment) Reject(actor uuid.UUID, reason string, now time.Time) error {
	if a.Status != AdjustmentStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject adjustment in %s status", a.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}

	a.Status = AdjustmentStatusRejected
	a.RejectedAt = &now
	a.RejectedBy = &actor
	a.RejectionReason = reason
	a.UpdatedAt = now
	a.IncrementVersion()
	a.AddDomainEvent(NewAdjustmentRejectedEvent(a, actor, reason, now))
	return nil
}

// CanApply is true only for an approved, not-yet-applied adjustment
func (a *PayrollAdjustment) CanApply() bool {
	return a.Status == AdjustmentStatusApproved && a.AppliedAt == nil
}

// MarkApplied records application onto a freshly created calculation version
func (a *PayrollAdjustment) MarkApplied(newCalculationID uuid.UUID, now time.Time) error {
	if !a.CanApply() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply adjustment in %s status", a.Status))
	}
	if newCalculationID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Applied calculation version is required")
	}

	a.Status = AdjustmentStatusApplied
	a.AppliedAt = &now
	a.AppliedCalculationID = &newCalculationID
	a.UpdatedAt = now
	a.IncrementVersion()
	a.AddDomainEvent(NewAdjustmentAppliedEvent(a, now))
	return nil
}
