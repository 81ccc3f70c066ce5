package loan

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// LoanFilter defines filtering options for loan queries
type LoanFilter struct {
	shared.Filter
	EmployeeID *uuid.UUID
	LoanType   *LoanType
	Status     *LoanStatus
}

// LoanRepository defines the interface for employee loan persistence
type LoanRepository interface {
	// FindByID finds a loan by ID
	FindByID(ctx context.Context, id uuid.UUID) (*EmployeeLoan, error)

	// FindByLoanNumber finds a loan by its number
	FindByLoanNumber(ctx context.Context, loanNumber string) (*EmployeeLoan, error)

	// FindActiveByEmployee finds active loans for an employee
	FindActiveByEmployee(ctx context.Context, employeeID uuid.UUID) ([]EmployeeLoan, error)

	// FindAll finds loans with filtering
	FindAll(ctx context.Context, filter LoanFilter) ([]EmployeeLoan, error)

	// FindStale finds active loans whose last deduction predates the cutoff
	// (or that never deducted and started before it), for the default sweep
	FindStale(ctx context.Context, cutoff time.Time) ([]EmployeeLoan, error)

	// Save creates or updates a loan
	Save(ctx context.Context, loan *EmployeeLoan) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, loan *EmployeeLoan, expectedVersion int) error
}

// DeductionFilter defines filtering options for installment queries
type DeductionFilter struct {
	shared.Filter
	Status  *DeductionStatus
	DueFrom *time.Time
	DueTo   *time.Time
}

// LoanDeductionRepository defines the interface for installment persistence
type LoanDeductionRepository interface {
	// FindByID finds an installment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*LoanDeduction, error)

	// FindByLoan finds installments for a loan, ordered by installment number
	FindByLoan(ctx context.Context, loanID uuid.UUID, filter DeductionFilter) ([]LoanDeduction, error)

	// FindDueForEmployee finds pending installments due on or before the date,
	// consumed by the payroll engine when computing loan deductions
	FindDueForEmployee(ctx context.Context, employeeID uuid.UUID, asOf time.Time) ([]LoanDeduction, error)

	// FindByPeriod finds installments deducted within a period
	FindByPeriod(ctx context.Context, periodID uuid.UUID) ([]LoanDeduction, error)

	// Save creates or updates an installment
	Save(ctx context.Context, deduction *LoanDeduction) error

	// SaveBatch persists a full schedule in one write
	SaveBatch(ctx context.Context, deductions []LoanDeduction) error
}
