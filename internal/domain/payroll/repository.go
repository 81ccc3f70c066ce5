package payroll

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// PeriodFilter defines filtering options for period queries
type PeriodFilter struct {
	shared.Filter
	Status   *PeriodStatus
	Year     *int
	FromDate *time.Time
	ToDate   *time.Time
}

// PayrollPeriodRepository defines the interface for payroll period persistence
type PayrollPeriodRepository interface {
	// FindByID finds a period by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PayrollPeriod, error)

	// FindByPeriodNumber finds a period by its human-readable number
	FindByPeriodNumber(ctx context.Context, periodNumber string) (*PayrollPeriod, error)

	// FindContainingDate finds the period whose date range covers the given date
	FindContainingDate(ctx context.Context, date time.Time) (*PayrollPeriod, error)

	// FindOverlapping finds periods overlapping the given date range
	FindOverlapping(ctx context.Context, start, end time.Time) ([]PayrollPeriod, error)

	// FindAll finds periods with filtering
	FindAll(ctx context.Context, filter PeriodFilter) ([]PayrollPeriod, error)

	// Save creates or updates a period
	Save(ctx context.Context, period *PayrollPeriod) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, period *PayrollPeriod, expectedVersion int) error

	// Count counts periods matching the filter
	Count(ctx context.Context, filter PeriodFilter) (int64, error)
}

// CalculationFilter defines filtering options for calculation queries
type CalculationFilter struct {
	shared.Filter
	Status       *CalculationStatus
	HasException *bool
	CurrentOnly  bool
}

// CalculationRepository defines the interface for employee calculation persistence
type CalculationRepository interface {
	// FindByID finds a calculation by ID
	FindByID(ctx context.Context, id uuid.UUID) (*EmployeePayrollCalculation, error)

	// FindCurrent finds the latest version for an employee in a period
	FindCurrent(ctx context.Context, periodID, employeeID uuid.UUID) (*EmployeePayrollCalculation, error)

	// FindByPeriod finds calculations for a period with filtering
	FindByPeriod(ctx context.Context, periodID uuid.UUID, filter CalculationFilter) ([]EmployeePayrollCalculation, error)

	// FindVersionChain finds all versions for an employee in a period, oldest first
	FindVersionChain(ctx context.Context, periodID, employeeID uuid.UUID) ([]EmployeePayrollCalculation, error)

	// FindExceptions finds current-version calculations flagged with exceptions
	FindExceptions(ctx context.Context, periodID uuid.UUID) ([]EmployeePayrollCalculation, error)

	// FindPaidYearToDate finds locked calculations for an employee in the given
	// year up to and including the cutoff date, for payslip YTD figures
	FindPaidYearToDate(ctx context.Context, employeeID uuid.UUID, year int, cutoff time.Time) ([]EmployeePayrollCalculation, error)

	// Save creates or updates a calculation
	Save(ctx context.Context, calc *EmployeePayrollCalculation) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, calc *EmployeePayrollCalculation, expectedVersion int) error

	// SaveNewVersion persists a successor version and the superseded
	// predecessor atomically
	SaveNewVersion(ctx context.Context, previous, next *EmployeePayrollCalculation) error

	// Count counts calculations for a period matching the filter
	Count(ctx context.Context, periodID uuid.UUID, filter CalculationFilter) (int64, error)
}

// AdjustmentFilter defines filtering options for adjustment queries
type AdjustmentFilter struct {
	shared.Filter
	Status     *AdjustmentStatus
	EmployeeID *uuid.UUID
}

// AdjustmentRepository defines the interface for payroll adjustment persistence
type AdjustmentRepository interface {
	// FindByID finds an adjustment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PayrollAdjustment, error)

	// FindByPeriod finds adjustments for a period with filtering
	FindByPeriod(ctx context.Context, periodID uuid.UUID, filter AdjustmentFilter) ([]PayrollAdjustment, error)

	// FindPendingByPeriod finds adjustments awaiting approval for a period
	FindPendingByPeriod(ctx context.Context, periodID uuid.UUID) ([]PayrollAdjustment, error)

	// Save creates or updates an adjustment
	Save(ctx context.Context, adjustment *PayrollAdjustment) error
}

// ProfileRepository defines the interface for employee payroll profile persistence
type ProfileRepository interface {
	// FindByID finds a profile by ID
	FindByID(ctx context.Context, id uuid.UUID) (*EmployeePayrollProfile, error)

	// FindByEmployee finds the profile for an employee
	FindByEmployee(ctx context.Context, employeeID uuid.UUID) (*EmployeePayrollProfile, error)

	// FindActive finds all active profiles
	FindActive(ctx context.Context, filter shared.Filter) ([]EmployeePayrollProfile, error)

	// Save creates or updates a profile
	Save(ctx context.Context, profile *EmployeePayrollProfile) error
}

// SalaryComponentRepository defines the interface for salary component persistence
type SalaryComponentRepository interface {
	// FindByID finds a component by ID
	FindByID(ctx context.Context, id uuid.UUID) (*SalaryComponent, error)

	// FindByCode finds a component by its unique code
	FindByCode(ctx context.Context, code string) (*SalaryComponent, error)

	// FindActive finds all active components
	FindActive(ctx context.Context) ([]SalaryComponent, error)

	// Save creates or updates a component
	Save(ctx context.Context, component *SalaryComponent) error
}

// ApprovalHistoryRepository defines the interface for the append-only
// approval history. There is no update or delete.
type ApprovalHistoryRepository interface {
	// Append persists a history row
	Append(ctx context.Context, entry *PayrollApprovalHistory) error

	// FindByPeriod finds history rows for a period, oldest first
	FindByPeriod(ctx context.Context, periodID uuid.UUID) ([]PayrollApprovalHistory, error)
}

// CalculationLogRepository defines the interface for the append-only
// calculation trace log
type CalculationLogRepository interface {
	// Append persists a log row
	Append(ctx context.Context, entry *PayrollCalculationLog) error

	// AppendBatch persists a batch of log rows
	AppendBatch(ctx context.Context, entries []PayrollCalculationLog) error

	// FindByPeriod finds log rows for a period, oldest first
	FindByPeriod(ctx context.Context, periodID uuid.UUID, filter shared.Filter) ([]PayrollCalculationLog, error)

	// FindByEmployee finds log rows for an employee within a period
	FindByEmployee(ctx context.Context, periodID, employeeID uuid.UUID) ([]PayrollCalculationLog, error)
}
