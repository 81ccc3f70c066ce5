package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/suweldo/payroll-backend/internal/domain/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// GormCalculationRepository implements CalculationRepository using GORM.
// Calculation rows form immutable version chains per employee and period;
// the current head is the row with the highest version.
type GormCalculationRepository struct {
	db *gorm.DB
}

// NewGormCalculationRepository creates a new GormCalculationRepository
func NewGormCalculationRepository(db *gorm.DB) *GormCalculationRepository {
	return &GormCalculationRepository{db: db}
}

// FindByID finds a calculation by its ID
func (r *GormCalculationRepository) FindByID(ctx context.Context, id uuid.UUID) (*payroll.EmployeePayrollCalculation, error) {
	var calc payroll.EmployeePayrollCalculation
	if err := r.db.WithContext(ctx).First(&calc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &calc, nil
}

// FindCurrent finds the chain head for an employee in a period
func (r *GormCalculationRepository) FindCurrent(ctx context.Context, periodID, employeeID uuid.UUID) (*payroll.EmployeePayrollCalculation, error) {
	var calc payroll.EmployeePayrollCalculation
	if err := r.db.WithContext(ctx).
		Where("period_id = ? AND employee_id = ?", periodID, employeeID).
		Order("version DESC").
		First(&calc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &calc, nil
}

// FindByPeriod finds calculations for a period with filtering
func (r *GormCalculationRepository) FindByPeriod(ctx context.Context, periodID uuid.UUID, filter payroll.CalculationFilter) ([]payroll.EmployeePayrollCalculation, error) {
	var calcs []payroll.EmployeePayrollCalculation
	query := applyListOptions(
		r.applyCalculationFilter(
			r.db.WithContext(ctx).Model(&payroll.EmployeePayrollCalculation{}).Where("period_id = ?", periodID),
			filter,
		),
		filter.Filter, CalculationSortFields, "employee_number", "ASC",
	)
	if err := query.Find(&calcs).Error; err != nil {
		return nil, err
	}
	return calcs, nil
}

// FindVersionChain finds all versions for an employee in a period, oldest first
func (r *GormCalculationRepository) FindVersionChain(ctx context.Context, periodID, employeeID uuid.UUID) ([]payroll.EmployeePayrollCalculation, error) {
	var calcs []payroll.EmployeePayrollCalculation
	if err := r.db.WithContext(ctx).
		Where("period_id = ? AND employee_id = ?", periodID, employeeID).
		Order("version ASC").
		Find(&calcs).Error; err != nil {
		return nil, err
	}
	return calcs, nil
}

// FindExceptions finds chain-head calculations flagged with exceptions
func (r *GormCalculationRepository) FindExceptions(ctx context.Context, periodID uuid.UUID) ([]payroll.EmployeePayrollCalculation, error) {
	var calcs []payroll.EmployeePayrollCalculation
	if err := r.db.WithContext(ctx).
		Where("period_id = ? AND has_exception = ?", periodID, true).
		Where(headSubquery).
		Order("employee_number ASC").
		Find(&calcs).Error; err != nil {
		return nil, err
	}
	return calcs, nil
}

// FindPaidYearToDate finds locked calculations for an employee in the given
// year up to and including the cutoff date
func (r *GormCalculationRepository) FindPaidYearToDate(ctx context.Context, employeeID uuid.UUID, year int, cutoff time.Time) ([]payroll.EmployeePayrollCalculation, error) {
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	var calcs []payroll.EmployeePayrollCalculation
	if err := r.db.WithContext(ctx).
		Joins("JOIN payroll_periods ON payroll_periods.id = employee_payroll_calculations.period_id").
		Where("employee_payroll_calculations.employee_id = ?", employeeID).
		Where("employee_payroll_calculations.calculation_status = ?", payroll.CalculationStatusLocked).
		Where("payroll_periods.pay_date >= ? AND payroll_periods.pay_date <= ?", yearStart, cutoff).
		Order("payroll_periods.pay_date ASC").
		Find(&calcs).Error; err != nil {
		return nil, err
	}
	return calcs, nil
}

// Save creates or updates a calculation
func (r *GormCalculationRepository) Save(ctx context.Context, calc *payroll.EmployeePayrollCalculation) error {
	return r.db.WithContext(ctx).Save(calc).Error
}

// SaveWithLock saves with optimistic locking against the version the caller
// observed before mutating the aggregate
func (r *GormCalculationRepository) SaveWithLock(ctx context.Context, calc *payroll.EmployeePayrollCalculation, expectedVersion int) error {
	result := r.db.WithContext(ctx).
		Model(&payroll.EmployeePayrollCalculation{}).
		Where("id = ? AND version = ?", calc.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(calc)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The calculation was modified by another user")
	}
	return nil
}

// SaveNewVersion persists a successor row and the superseded predecessor in
// one transaction. The unique index on previous_version_id keeps the chain
// linear: a concurrent successor for the same head fails the insert.
func (r *GormCalculationRepository) SaveNewVersion(ctx context.Context, previous, next *payroll.EmployeePayrollCalculation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(previous).Error; err != nil {
			return err
		}
		if err := tx.Create(next).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.NewDomainError("CONCURRENT_MODIFICATION", "A newer calculation version already exists")
			}
			return err
		}
		return nil
	})
}

// Count counts calculations for a period matching the filter
func (r *GormCalculationRepository) Count(ctx context.Context, periodID uuid.UUID, filter payroll.CalculationFilter) (int64, error) {
	var count int64
	query := r.applyCalculationFilter(
		r.db.WithContext(ctx).Model(&payroll.EmployeePayrollCalculation{}).Where("period_id = ?", periodID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormCalculationRepository) applyCalculationFilter(query *gorm.DB, filter payroll.CalculationFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("calculation_status = ?", *filter.Status)
	}
	if filter.HasException != nil {
		query = query.Where("has_exception = ?", *filter.HasException)
	}
	if filter.CurrentOnly {
		query = query.Where(headSubquery)
	}
	if filter.Search != "" {
		query = query.Where("employee_number LIKE ?", "%"+filter.Search+"%")
	}
	return query
}

// headSubquery restricts rows to chain heads: no other row names this one as
// its predecessor.
const headSubquery = "NOT EXISTS (SELECT 1 FROM employee_payroll_calculations successors " +
	"WHERE successors.previous_version_id = employee_payroll_calculations.id)"
