package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/suweldo/payroll-backend/internal/domain/disbursement"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*disbursement.PayrollPayment, error) {
	var payment disbursement.PayrollPayment
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// FindByPaymentNumber finds a payment by its number
func (r *GormPaymentRepository) FindByPaymentNumber(ctx context.Context, paymentNumber string) (*disbursement.PayrollPayment, error) {
	var payment disbursement.PayrollPayment
	if err := r.db.WithContext(ctx).
		Where("payment_number = ?", paymentNumber).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// FindByPeriod finds payments for a period with filtering
func (r *GormPaymentRepository) FindByPeriod(ctx context.Context, periodID uuid.UUID, filter disbursement.PaymentFilter) ([]disbursement.PayrollPayment, error) {
	query := r.db.WithContext(ctx).
		Model(&disbursement.PayrollPayment{}).
		Where("period_id = ?", periodID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.EmployeeID != nil {
		query = query.Where("employee_id = ?", *filter.EmployeeID)
	}
	if filter.MethodID != nil {
		query = query.Where("method_id = ?", *filter.MethodID)
	}
	if filter.BatchID != nil {
		query = query.Where("batch_id = ?", *filter.BatchID)
	}
	if filter.Search != "" {
		query = query.Where("payment_number LIKE ? OR employee_number LIKE ?",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	query = applyListOptions(query, filter.Filter, PaymentSortFields, "employee_number", "ASC")

	var payments []disbursement.PayrollPayment
	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindByCalculation finds the payment issued for a calculation, if any
func (r *GormPaymentRepository) FindByCalculation(ctx context.Context, calculationID uuid.UUID) (*disbursement.PayrollPayment, error) {
	var payment disbursement.PayrollPayment
	if err := r.db.WithContext(ctx).
		Where("calculation_id = ?", calculationID).
		Order("created_at DESC").
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// FindByBatch finds payments assigned to a batch
func (r *GormPaymentRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]disbursement.PayrollPayment, error) {
	var payments []disbursement.PayrollPayment
	if err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("employee_number ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindRetryable finds failed payments under the retry cap
func (r *GormPaymentRepository) FindRetryable(ctx context.Context, periodID uuid.UUID) ([]disbursement.PayrollPayment, error) {
	var payments []disbursement.PayrollPayment
	if err := r.db.WithContext(ctx).
		Where("period_id = ? AND status = ? AND retry_count < ?",
			periodID, disbursement.PaymentStatusFailed, 3).
		Order("employee_number ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *disbursement.PayrollPayment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

// SaveWithLock saves with optimistic locking against the version the caller
// observed before mutating the aggregate
func (r *GormPaymentRepository) SaveWithLock(ctx context.Context, payment *disbursement.PayrollPayment, expectedVersion int) error {
	result := r.db.WithContext(ctx).
		Model(&disbursement.PayrollPayment{}).
		Where("id = ? AND version = ?", payment.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(payment)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The payment was modified by another user")
	}
	return nil
}

// CountByStatus counts a period's payments per status
func (r *GormPaymentRepository) CountByStatus(ctx context.Context, periodID uuid.UUID) (map[disbursement.PaymentStatus]int64, error) {
	type statusCount struct {
		Status disbursement.PaymentStatus
		Count  int64
	}
	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&disbursement.PayrollPayment{}).
		Select("status, COUNT(*) as count").
		Where("period_id = ?", periodID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[disbursement.PaymentStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
