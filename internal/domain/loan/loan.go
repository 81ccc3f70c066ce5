package loan

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// LoanType classifies the lender/scheme behind an employee loan
type LoanType string

const (
	LoanTypeSSSSalary   LoanType = "sss_salary"
	LoanTypeSSSCalamity LoanType = "sss_calamity"
	LoanTypePagIbig     LoanType = "pagibig"
	LoanTypeCompany     LoanType = "company"
	LoanTypeCashAdvance LoanType = "cash_advance"
)

// IsValid checks if the loan type is valid
func (t LoanType) IsValid() bool {
	switch t {
	case LoanTypeSSSSalary, LoanTypeSSSCalamity, LoanTypePagIbig, LoanTypeCompany, LoanTypeCashAdvance:
		return true
	}
	return false
}

// LoanStatus is the lifecycle state of an employee loan
type LoanStatus string

const (
	LoanStatusActive    LoanStatus = "active"
	LoanStatusSuspended LoanStatus = "suspended"
	LoanStatusCompleted LoanStatus = "completed"
	LoanStatusDefaulted LoanStatus = "defaulted"
	LoanStatusWaived    LoanStatus = "waived"
)

// IsTerminal returns true for states with no further transitions
func (s LoanStatus) IsTerminal() bool {
	return s == LoanStatusCompleted || s == LoanStatusDefaulted || s == LoanStatusWaived
}

// EmployeeLoan is one amortized loan being repaid through payroll deductions.
// The running ledger keeps remaining_balance = total_loan_amount - total_paid
// after every mutation; the loan completes exactly when installments_paid
// reaches number_of_installments.
type EmployeeLoan struct {
	shared.BaseAggregateRoot
	LoanNumber string    `gorm:"type:varchar(30);not null;uniqueIndex"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index"`
	LoanType   LoanType  `gorm:"type:varchar(20);not null"`

	PrincipalAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalLoanAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null"` // principal plus interest
	InstallmentAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`

	NumberOfInstallments int `gorm:"not null"`
	InstallmentsPaid     int `gorm:"not null;default:0"`

	TotalPaid        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	RemainingBalance decimal.Decimal `gorm:"type:decimal(18,2);not null"`

	Status LoanStatus `gorm:"type:varchar(20);not null;default:'active';index"`

	StartDate         time.Time  `gorm:"not null"`
	LastDeductionDate *time.Time
	CompletionDate    *time.Time
	CompletionReason  string     `gorm:"type:varchar(200)"`
	DefaultedAt       *time.Time
	DefaultReason     string     `gorm:"type:varchar(500)"`
	WaivedAt          *time.Time
	WaivedBy          *uuid.UUID `gorm:"type:uuid"`
	WaiveReason       string     `gorm:"type:varchar(500)"`
	SuspendedAt       *time.Time
	SuspendReason     string     `gorm:"type:varchar(500)"`

	DeletedAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (EmployeeLoan) TableName() string {
	return "employee_loans"
}

// NewEmployeeLoan opens an active loan
func NewEmployeeLoan(
	loanNumber string,
	employeeID uuid.UUID,
	loanType LoanType,
	principal, total, installment decimal.Decimal,
	installments int,
	startDate time.Time,
	now time.Time,
) (*EmployeeLoan, error) {
	if loanNumber == "" {
		return nil, shared.NewDomainError("INVALID_LOAN_NUMBER", "Loan number cannot be empty")
	}
	if employeeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Employee ID is required")
	}
	if !loanType.IsValid() {
		return nil, shared.NewDomainError("INVALID_LOAN_TYPE", "Loan type is not valid")
	}
	if principal.LessThanOrEqual(decimal.Zero) || total.LessThan(principal) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total loan amount must cover the principal")
	}
	if installments <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Number of installments must be positive")
	}
	if installment.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Installment amount must be positive")
	}

	l := &EmployeeLoan{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(now),
		LoanNumber:           loanNumber,
		EmployeeID:           employeeID,
		LoanType:             loanType,
		PrincipalAmount:      principal,
		TotalLoanAmount:      total,
		InstallmentAmount:    installment,
		NumberOfInstallments: installments,
		TotalPaid:            decimal.Zero,
		RemainingBalance:     total,
		Status:               LoanStatusActive,
		StartDate:            startDate,
	}
	l.AddDomainEvent(NewLoanOpenedEvent(l, now))
	return l, nil
}

// IsActive returns true while deductions may still be taken
func (l *EmployeeLoan) IsActive() bool {
	return l.Status == LoanStatusActive
}

// RecordDeduction books one payroll deduction against the loan. Completion
// happens here, exactly when the paid installment count reaches the schedule.
func (l *EmployeeLoan) RecordDeduction(amount decimal.Decimal, now time.Time) error {
	if l.Status != LoanStatusActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record a deduction on a %s loan", l.Status))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Deduction amount must be positive")
	}

	l.InstallmentsPaid++
	l.TotalPaid = l.TotalPaid.Add(amount)
	l.RemainingBalance = l.TotalLoanAmount.Sub(l.TotalPaid)
	l.LastDeductionDate = &now
	l.UpdatedAt = now
	l.IncrementVersion()

	if l.InstallmentsPaid >= l.NumberOfInstallments {
		l.Status = LoanStatusCompleted
		l.CompletionDate = &now
		l.CompletionReason = "All installments paid"
		l.AddDomainEvent(NewLoanCompletedEvent(l, now))
	}
	return nil
}

// MarkAsDefaulted is an explicit transition taken when scheduled deductions
// lapse past the configured grace period. The grace policy lives in the
// scheduler, never in the model.
func (l *EmployeeLoan) MarkAsDefaulted(reason string, now time.Time) error {
	if l.Status != LoanStatusActive && l.Status != LoanStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot default a %s loan", l.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Default reason is required")
	}

	l.Status = LoanStatusDefaulted
	l.DefaultedAt = &now
	l.DefaultReason = reason
	l.UpdatedAt = now
	l.IncrementVersion()
	l.AddDomainEvent(NewLoanDefaultedEvent(l, reason, now))
	return nil
}

// Suspend pauses deductions, e.g. during unpaid leave
func (l *EmployeeLoan) Suspend(reason string, now time.Time) error {
	if l.Status != LoanStatusActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot suspend a %s loan", l.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Suspension reason is required")
	}
	l.Status = LoanStatusSuspended
	l.SuspendedAt = &now
	l.SuspendReason = reason
	l.UpdatedAt = now
	l.IncrementVersion()
	return nil
}

// Resume reactivates a suspended loan
func (l *EmployeeLoan) Resume(now time.Time) error {
	if l.Status != LoanStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot resume a %s loan", l.Status))
	}
	l.Status = LoanStatusActive
	l.SuspendedAt = nil
	l.SuspendReason = ""
	l.UpdatedAt = now
	l.IncrementVersion()
	return nil
}

// Waive forgives the outstanding balance. Elevated operation, always audited.
func (l *EmployeeLoan) Waive(actor uuid.UUID, reason string, now time.Time) error {
	if l.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot waive a %s loan", l.Status))
	}
	if actor == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Waiving actor is required")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Waive reason is required")
	}

	l.Status = LoanStatusWaived
	l.WaivedAt = &now
	l.WaivedBy = &actor
	l.WaiveReason = reason
	l.UpdatedAt = now
	l.IncrementVersion()
	l.AddDomainEvent(NewLoanWaivedEvent(l, actor, reason, now))
	return nil
}

// Reconcile verifies the running-balance invariant of the ledger
func (l *EmployeeLoan) Reconcile() error {
	if !l.RemainingBalance.Equal(l.TotalLoanAmount.Sub(l.TotalPaid)) {
		return shared.NewDomainError("INTEGRITY_VIOLATION",
			fmt.Sprintf("Loan %s balance %s does not reconcile with total %s minus paid %s",
				l.LoanNumber, l.RemainingBalance, l.TotalLoanAmount, l.TotalPaid))
	}
	return nil
}
