package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/suweldo/payroll-backend/internal/domain/loan"
)

// GormLoanDeductionRepository implements LoanDeductionRepository using GORM
type GormLoanDeductionRepository struct {
	db *gorm.DB
}

// NewGormLoanDeductionRepository creates a new GormLoanDeductionRepository
func NewGormLoanDeductionRepository(db *gorm.DB) *GormLoanDeductionRepository {
	return &GormLoanDeductionRepository{db: db}
}

// FindByID finds an installment by its ID
func (r *GormLoanDeductionRepository) FindByID(ctx context.Context, id uuid.UUID) (*loan.LoanDeduction, error) {
	var deduction loan.LoanDeduction
	if err := r.db.WithContext(ctx).First(&deduction, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &deduction, nil
}

// FindByLoan finds installments for a loan, ordered by installment number
func (r *GormLoanDeductionRepository) FindByLoan(ctx context.Context, loanID uuid.UUID, filter loan.DeductionFilter) ([]loan.LoanDeduction, error) {
	query := r.db.WithContext(ctx).
		Model(&loan.LoanDeduction{}).
		Where("loan_id = ?", loanID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}

	var deductions []loan.LoanDeduction
	if err := query.Order("installment_number ASC").Find(&deductions).Error; err != nil {
		return nil, err
	}
	return deductions, nil
}

// FindDueForEmployee finds pending installments due on or before the date
func (r *GormLoanDeductionRepository) FindDueForEmployee(ctx context.Context, employeeID uuid.UUID, asOf time.Time) ([]loan.LoanDeduction, error) {
	var deductions []loan.LoanDeduction
	if err := r.db.WithContext(ctx).
		Where("employee_id = ? AND status = ? AND due_date <= ?", employeeID, loan.DeductionStatusPending, asOf).
		Order("due_date ASC, installment_number ASC").
		Find(&deductions).Error; err != nil {
		return nil, err
	}
	return deductions, nil
}

// FindByPeriod finds installments deducted within a period
func (r *GormLoanDeductionRepository) FindByPeriod(ctx context.Context, periodID uuid.UUID) ([]loan.LoanDeduction, error) {
	var deductions []loan.LoanDeduction
	if err := r.db.WithContext(ctx).
		Where("period_id = ?", periodID).
		Order("employee_id ASC, installment_number ASC").
		Find(&deductions).Error; err != nil {
		return nil, err
	}
	return deductions, nil
}

// Save creates or updates an installment
func (r *GormLoanDeductionRepository) Save(ctx context.Context, deduction *loan.LoanDeduction) error {
	return r.db.WithContext(ctx).Save(deduction).Error
}

// SaveBatch persists a full schedule in one write
func (r *GormLoanDeductionRepository) SaveBatch(ctx context.Context, deductions []loan.LoanDeduction) error {
	if len(deductions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(deductions, 100).Error
	})
}
