package loan

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// DeductionStatus is the per-installment settlement state
type DeductionStatus string

const (
	DeductionStatusPending     DeductionStatus = "pending"
	DeductionStatusDeducted    DeductionStatus = "deducted"
	DeductionStatusPaid        DeductionStatus = "paid"
	DeductionStatusPartialPaid DeductionStatus = "partial_paid"
	DeductionStatusOverdue     DeductionStatus = "overdue"
	DeductionStatusWaived      DeductionStatus = "waived"
)

// LoanDeduction is one scheduled installment of a loan. The payroll engine
// moves it pending -> deducted; treasury reconciliation settles it to
// paid/partial_paid; overdue and waived are manual actions.
type LoanDeduction struct {
	shared.BaseEntity
	LoanID            uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID        uuid.UUID `gorm:"type:uuid;not null;index"`
	PeriodID          *uuid.UUID `gorm:"type:uuid;index"` // set when the payroll engine takes the deduction
	InstallmentNumber int       `gorm:"not null"`
	DueDate           time.Time `gorm:"not null;index"`

	TotalDeduction decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Penalty        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AmountPaid     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	Status DeductionStatus `gorm:"type:varchar(20);not null;default:'pending';index"`

	DeductedAt *time.Time
	SettledAt  *time.Time
	WaivedAt   *time.Time
	WaivedBy   *uuid.UUID `gorm:"type:uuid"`
	Notes      string     `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (LoanDeduction) TableName() string {
	return "loan_deductions"
}

// NewLoanDeduction schedules one installment
func NewLoanDeduction(loanID, employeeID uuid.UUID, installmentNumber int, amount decimal.Decimal, dueDate time.Time, now time.Time) (*LoanDeduction, error) {
	if loanID == uuid.Nil || employeeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Loan and employee IDs are required")
	}
	if installmentNumber <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Installment number must be positive")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Installment amount must be positive")
	}

	return &LoanDeduction{
		BaseEntity:        shared.NewBaseEntity(now),
		LoanID:            loanID,
		EmployeeID:        employeeID,
		InstallmentNumber: installmentNumber,
		DueDate:           dueDate,
		TotalDeduction:    amount,
		Penalty:           decimal.Zero,
		AmountPaid:        decimal.Zero,
		Status:            DeductionStatusPending,
	}, nil
}

// OutstandingAmount is what remains collectible on this installment,
// floored at zero.
func (d *LoanDeduction) OutstandingAmount() decimal.Decimal {
	out := d.TotalDeduction.Add(d.Penalty).Sub(d.AmountPaid)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// IsDue reports whether the installment falls due on or before the date
func (d *LoanDeduction) IsDue(date time.Time) bool {
	return d.Status == DeductionStatusPending && !d.DueDate.After(date)
}

// MarkDeducted is called by the payroll engine when the installment is taken
// out of a period's net pay
func (d *LoanDeduction) MarkDeducted(periodID uuid.UUID, now time.Time) error {
	if d.Status != DeductionStatusPending && d.Status != DeductionStatusOverdue {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot deduct installment in %s status", d.Status))
	}
	d.Status = DeductionStatusDeducted
	d.PeriodID = &periodID
	d.DeductedAt = &now
	d.UpdatedAt = now
	return nil
}

// Settle records the treasury-reconciled amount against the installment
func (d *LoanDeduction) Settle(amount decimal.Decimal, now time.Time) error {
	if d.Status != DeductionStatusDeducted && d.Status != DeductionStatusPartialPaid {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot settle installment in %s status", d.Status))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Settlement amount must be positive")
	}

	d.AmountPaid = d.AmountPaid.Add(amount)
	d.SettledAt = &now
	d.UpdatedAt = now
	if d.OutstandingAmount().IsZero() {
		d.Status = DeductionStatusPaid
	} else {
		d.Status = DeductionStatusPartialPaid
	}
	return nil
}

// MarkOverdue flags a pending installment past its due date, adding any
// policy-computed penalty
func (d *LoanDeduction) MarkOverdue(penalty decimal.Decimal, now time.Time) error {
	if d.Status != DeductionStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark installment overdue in %s status", d.Status))
	}
	if penalty.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Penalty cannot be negative")
	}
	d.Status = DeductionStatusOverdue
	d.Penalty = d.Penalty.Add(penalty)
	d.UpdatedAt = now
	return nil
}

// WaiveInstallment forgives this installment only
func (d *LoanDeduction) WaiveInstallment(actor uuid.UUID, notes string, now time.Time) error {
	if d.Status == DeductionStatusPaid || d.Status == DeductionStatusWaived {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot waive installment in %s status", d.Status))
	}
	if actor == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Waiving actor is required")
	}
	d.Status = DeductionStatusWaived
	d.WaivedAt = &now
	d.WaivedBy = &actor
	d.Notes = notes
	d.UpdatedAt = now
	return nil
}
