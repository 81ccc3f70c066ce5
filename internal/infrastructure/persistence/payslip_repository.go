package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/suweldo/payroll-backend/internal/domain/payslip"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// GormPayslipRepository implements the payslip Repository using GORM.
// Payslips are write-once: Save only ever inserts, and a second slip for the
// same payment fails the unique index on payment_id.
type GormPayslipRepository struct {
	db *gorm.DB
}

// NewGormPayslipRepository creates a new GormPayslipRepository
func NewGormPayslipRepository(db *gorm.DB) *GormPayslipRepository {
	return &GormPayslipRepository{db: db}
}

// FindByID finds a payslip by its ID
func (r *GormPayslipRepository) FindByID(ctx context.Context, id uuid.UUID) (*payslip.Payslip, error) {
	var slip payslip.Payslip
	if err := r.db.WithContext(ctx).First(&slip, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &slip, nil
}

// FindByPayslipNumber finds a payslip by its number
func (r *GormPayslipRepository) FindByPayslipNumber(ctx context.Context, payslipNumber string) (*payslip.Payslip, error) {
	var slip payslip.Payslip
	if err := r.db.WithContext(ctx).
		Where("payslip_number = ?", payslipNumber).
		First(&slip).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &slip, nil
}

// FindByPayment finds the payslip issued for a payment, if any
func (r *GormPayslipRepository) FindByPayment(ctx context.Context, paymentID uuid.UUID) (*payslip.Payslip, error) {
	var slip payslip.Payslip
	if err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		First(&slip).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &slip, nil
}

// FindByEmployee finds payslips for an employee, newest first
func (r *GormPayslipRepository) FindByEmployee(ctx context.Context, employeeID uuid.UUID, filter shared.Filter) ([]payslip.Payslip, error) {
	query := r.db.WithContext(ctx).
		Model(&payslip.Payslip{}).
		Where("employee_id = ?", employeeID)
	if filter.Search != "" {
		query = query.Where("payslip_number LIKE ?", "%"+filter.Search+"%")
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var slips []payslip.Payslip
	if err := query.Order("payment_date DESC").Find(&slips).Error; err != nil {
		return nil, err
	}
	return slips, nil
}

// FindByPeriod finds payslips issued for a period
func (r *GormPayslipRepository) FindByPeriod(ctx context.Context, periodID uuid.UUID) ([]payslip.Payslip, error) {
	var slips []payslip.Payslip
	if err := r.db.WithContext(ctx).
		Where("period_id = ?", periodID).
		Order("employee_number ASC").
		Find(&slips).Error; err != nil {
		return nil, err
	}
	return slips, nil
}

// Save persists a newly issued payslip
func (r *GormPayslipRepository) Save(ctx context.Context, slip *payslip.Payslip) error {
	if err := r.db.WithContext(ctx).Create(slip).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError("PAYSLIP_EXISTS", "A payslip was already issued for this payment")
		}
		return err
	}
	return nil
}
