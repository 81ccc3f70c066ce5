package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/suweldo/payroll-backend/internal/domain/disbursement"
)

// GormCashBatchRepository implements CashBatchRepository using GORM
type GormCashBatchRepository struct {
	db *gorm.DB
}

// NewGormCashBatchRepository creates a new GormCashBatchRepository
func NewGormCashBatchRepository(db *gorm.DB) *GormCashBatchRepository {
	return &GormCashBatchRepository{db: db}
}

// FindByID finds a batch by its ID
func (r *GormCashBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*disbursement.CashDistributionBatch, error) {
	var batch disbursement.CashDistributionBatch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

// FindByBatchNumber finds a batch by its number
func (r *GormCashBatchRepository) FindByBatchNumber(ctx context.Context, batchNumber string) (*disbursement.CashDistributionBatch, error) {
	var batch disbursement.CashDistributionBatch
	if err := r.db.WithContext(ctx).
		Where("batch_number = ?", batchNumber).
		First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

// FindByPeriod finds batches for a period
func (r *GormCashBatchRepository) FindByPeriod(ctx context.Context, periodID uuid.UUID) ([]disbursement.CashDistributionBatch, error) {
	var batches []disbursement.CashDistributionBatch
	if err := r.db.WithContext(ctx).
		Where("period_id = ?", periodID).
		Order("created_at ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindPastDeadline finds distributing batches whose unclaimed deadline has
// lapsed
func (r *GormCashBatchRepository) FindPastDeadline(ctx context.Context, asOf time.Time) ([]disbursement.CashDistributionBatch, error) {
	var batches []disbursement.CashDistributionBatch
	if err := r.db.WithContext(ctx).
		Where("status = ? AND unclaimed_deadline IS NOT NULL AND unclaimed_deadline < ?",
			disbursement.CashBatchStatusDistributing, asOf).
		Order("unclaimed_deadline ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// Save creates or updates a batch
func (r *GormCashBatchRepository) Save(ctx context.Context, batch *disbursement.CashDistributionBatch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}
