package loan

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// LoanOpenedEvent is raised when a new loan starts amortizing
type LoanOpenedEvent struct {
	shared.BaseDomainEvent
	LoanID          uuid.UUID       `json:"loan_id"`
	LoanNumber      string          `json:"loan_number"`
	EmployeeID      uuid.UUID       `json:"employee_id"`
	LoanType        LoanType        `json:"loan_type"`
	TotalLoanAmount decimal.Decimal `json:"total_loan_amount"`
	Installments    int             `json:"installments"`
}

// NewLoanOpenedEvent creates a new LoanOpenedEvent
func NewLoanOpenedEvent(l *EmployeeLoan, now time.Time) *LoanOpenedEvent {
	return &LoanOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("EmployeeLoanOpened", "EmployeeLoan", l.ID, uuid.Nil, now),
		LoanID:          l.ID,
		LoanNumber:      l.LoanNumber,
		EmployeeID:      l.EmployeeID,
		LoanType:        l.LoanType,
		TotalLoanAmount: l.TotalLoanAmount,
		Installments:    l.NumberOfInstallments,
	}
}

// LoanCompletedEvent is raised when the final installment is paid
type LoanCompletedEvent struct {
	shared.BaseDomainEvent
	LoanID     uuid.UUID       `json:"loan_id"`
	LoanNumber string          `json:"loan_number"`
	EmployeeID uuid.UUID       `json:"employee_id"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
}

// NewLoanCompletedEvent creates a new LoanCompletedEvent
func NewLoanCompletedEvent(l *EmployeeLoan, now time.Time) *LoanCompletedEvent {
	return &LoanCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("EmployeeLoanCompleted", "EmployeeLoan", l.ID, uuid.Nil, now),
		LoanID:          l.ID,
		LoanNumber:      l.LoanNumber,
		EmployeeID:      l.EmployeeID,
		TotalPaid:       l.TotalPaid,
	}
}

// LoanDefaultedEvent is raised on the explicit default transition
type LoanDefaultedEvent struct {
	shared.BaseDomainEvent
	LoanID           uuid.UUID       `json:"loan_id"`
	LoanNumber       string          `json:"loan_number"`
	EmployeeID       uuid.UUID       `json:"employee_id"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	Reason           string          `json:"reason"`
}

// NewLoanDefaultedEvent creates a new LoanDefaultedEvent
func NewLoanDefaultedEvent(l *EmployeeLoan, reason string, now time.Time) *LoanDefaultedEvent {
	return &LoanDefaultedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("EmployeeLoanDefaulted", "EmployeeLoan", l.ID, uuid.Nil, now),
		LoanID:           l.ID,
		LoanNumber:       l.LoanNumber,
		EmployeeID:       l.EmployeeID,
		RemainingBalance: l.RemainingBalance,
		Reason:           reason,
	}
}

// LoanWaivedEvent is raised when the outstanding balance is forgiven
type LoanWaivedEvent struct {
	shared.BaseDomainEvent
	LoanID          uuid.UUID       `json:"loan_id"`
	LoanNumber      string          `json:"loan_number"`
	EmployeeID      uuid.UUID       `json:"employee_id"`
	WaivedBalance   decimal.Decimal `json:"waived_balance"`
	Reason          string          `json:"reason"`
}

// NewLoanWaivedEvent creates a new LoanWaivedEvent
func NewLoanWaivedEvent(l *EmployeeLoan, actor uuid.UUID, reason string, now time.Time) *LoanWaivedEvent {
	return &LoanWaivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("EmployeeLoanWaived", "EmployeeLoan", l.ID, actor, now),
		LoanID:          l.ID,
		LoanNumber:      l.LoanNumber,
		EmployeeID:      l.EmployeeID,
		WaivedBalance:   l.RemainingBalance,
		Reason:          reason,
	}
}
