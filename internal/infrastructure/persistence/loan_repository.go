package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/suweldo/payroll-backend/internal/domain/loan"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// GormLoanRepository implements LoanRepository using GORM
type GormLoanRepository struct {
	db *gorm.DB
}

// NewGormLoanRepository creates a new GormLoanRepository
func NewGormLoanRepository(db *gorm.DB) *GormLoanRepository {
	return &GormLoanRepository{db: db}
}

// FindByID finds a loan by its ID
func (r *GormLoanRepository) FindByID(ctx context.Context, id uuid.UUID) (*loan.EmployeeLoan, error) {
	var l loan.EmployeeLoan
	if err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		First(&l, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// FindByLoanNumber finds a loan by its number
func (r *GormLoanRepository) FindByLoanNumber(ctx context.Context, loanNumber string) (*loan.EmployeeLoan, error) {
	var l loan.EmployeeLoan
	if err := r.db.WithContext(ctx).
		Where("loan_number = ? AND deleted_at IS NULL", loanNumber).
		First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// FindActiveByEmployee finds active loans for an employee
func (r *GormLoanRepository) FindActiveByEmployee(ctx context.Context, employeeID uuid.UUID) ([]loan.EmployeeLoan, error) {
	var loans []loan.EmployeeLoan
	if err := r.db.WithContext(ctx).
		Where("employee_id = ? AND status = ? AND deleted_at IS NULL", employeeID, loan.LoanStatusActive).
		Order("start_date ASC").
		Find(&loans).Error; err != nil {
		return nil, err
	}
	return loans, nil
}

// FindAll finds loans with filtering
func (r *GormLoanRepository) FindAll(ctx context.Context, filter loan.LoanFilter) ([]loan.EmployeeLoan, error) {
	query := r.db.WithContext(ctx).
		Model(&loan.EmployeeLoan{}).
		Where("deleted_at IS NULL")
	if filter.EmployeeID != nil {
		query = query.Where("employee_id = ?", *filter.EmployeeID)
	}
	if filter.LoanType != nil {
		query = query.Where("loan_type = ?", *filter.LoanType)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("loan_number LIKE ?", "%"+filter.Search+"%")
	}
	query = applyListOptions(query, filter.Filter, LoanSortFields, "start_date", "DESC")

	var loans []loan.EmployeeLoan
	if err := query.Find(&loans).Error; err != nil {
		return nil, err
	}
	return loans, nil
}

// FindStale finds active loans whose last deduction predates the cutoff, or
// that never deducted and started before it
func (r *GormLoanRepository) FindStale(ctx context.Context, cutoff time.Time) ([]loan.EmployeeLoan, error) {
	var loans []loan.EmployeeLoan
	if err := r.db.WithContext(ctx).
		Where("status = ? AND deleted_at IS NULL", loan.LoanStatusActive).
		Where("(last_deduction_date < ?) OR (last_deduction_date IS NULL AND start_date < ?)", cutoff, cutoff).
		Order("start_date ASC").
		Find(&loans).Error; err != nil {
		return nil, err
	}
	return loans, nil
}

// Save creates or updates a loan
func (r *GormLoanRepository) Save(ctx context.Context, l *loan.EmployeeLoan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

// SaveWithLock saves with optimistic locking against the version the caller
// observed before mutating the aggregate
func (r *GormLoanRepository) SaveWithLock(ctx context.Context, l *loan.EmployeeLoan, expectedVersion int) error {
	result := r.db.WithContext(ctx).
		Model(&loan.EmployeeLoan{}).
		Where("id = ? AND version = ?", l.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(l)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The loan was modified by another user")
	}
	return nil
}
