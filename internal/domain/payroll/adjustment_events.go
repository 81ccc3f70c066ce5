package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// AdjustmentProposedEvent is raised when an adjustment is proposed
type AdjustmentProposedEvent struct {
	shared.BaseDomainEvent
	AdjustmentID  uuid.UUID       `json:"adjustment_id"`
	CalculationID uuid.UUID       `json:"calculation_id"`
	EmployeeID    uuid.UUID       `json:"employee_id"`
	Type          AdjustmentType  `json:"type"`
	SignedAmount  decimal.Decimal `json:"signed_amount"`
	Reason        string          `json:"reason"`
}

// NewAdjustmentProposedEvent creates a new AdjustmentProposedEvent
func NewAdjustmentProposedEvent(a *PayrollAdjustment, now time.Time) *AdjustmentProposedEvent {
	return &AdjustmentProposedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PayrollAdjustmentProposed", "PayrollAdjustment", a.ID, a.RequestedBy, now),
		AdjustmentID:    a.ID,
		CalculationID:   a.CalculationID,
		EmployeeID:      a.EmployeeID,
		Type:            a.Type,
		SignedAmount:    a.SignedAmount(),
		Reason:          a.Reason,
	}
}

// AdjustmentApprovedEvent is raised when an adjustment is approved
type AdjustmentApprovedEvent struct {
	shared.BaseDomainEvent
	AdjustmentID uuid.UUID       `json:"adjustment_id"`
	EmployeeID   uuid.UUID       `json:"employee_id"`
	SignedAmount decimal.Decimal `json:"signed_amount"`
}

// NewAdjustmentApprovedEvent creates a new AdjustmentApprovedEvent
func NewAdjustmentApprovedEvent(a *PayrollAdjustment, actor uuid.UUID, now time.Time) *AdjustmentApprovedEvent {
	return &AdjustmentApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PayrollAdjustmentApproved", "PayrollAdjustment", a.ID, actor, now),
		AdjustmentID:    a.ID,
		EmployeeID:      a.EmployeeID,
		SignedAmount:    a.SignedAmount(),
	}
}

// AdjustmentRejectedEvent is raised when an adjustment is rejected
type AdjustmentRejectedEvent struct {
	shared.BaseDomainEvent
	AdjustmentID uuid.UUID `json:"adjustment_id"`
	EmployeeID   uuid.UUID `json:"employee_id"`
	Reason       string    `json:"reason"`
}

// NewAdjustmentRejectedEvent creates a new AdjustmentRejectedEvent
func NewAdjustmentRejectedEvent(a *PayrollAdjustment, actor uuid.UUID, reason string, now time.Time) *AdjustmentRejectedEvent {
	return &AdjustmentRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PayrollAdjustmentRejected", "PayrollAdjustment", a.ID, actor, now),
		AdjustmentID:    a.ID,
		EmployeeID:      a.EmployeeID,
		Reason:          reason,
	}
}

// AdjustmentAppliedEvent is raised when an approved adjustment lands on a new
// calculation version
type AdjustmentAppliedEvent struct {
	shared.BaseDomainEvent
	AdjustmentID         uuid.UUID       `json:"adjustment_id"`
	EmployeeID           uuid.UUID       `json:"employee_id"`
	SignedAmount         decimal.Decimal `json:"signed_amount"`
	AppliedCalculationID uuid.UUID       `json:"applied_calculation_id"`
}

// NewAdjustmentAppliedEvent creates a new AdjustmentAppliedEvent
func NewAdjustmentAppliedEvent(a *PayrollAdjustment, now time.Time) *AdjustmentAppliedEvent {
	var appliedID uuid.UUID
	if a.AppliedCalculationID != nil {
		appliedID = *a.AppliedCalculationID
	}
	return &AdjustmentAppliedEvent{
		BaseDomainEvent:      shared.NewBaseDomainEvent("PayrollAdjustmentApplied", "PayrollAdjustment", a.ID, uuid.Nil, now),
		AdjustmentID:         a.ID,
		EmployeeID:           a.EmployeeID,
		SignedAmount:         a.SignedAmount(),
		AppliedCalculationID: appliedID,
	}
}
