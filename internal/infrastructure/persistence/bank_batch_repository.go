package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/suweldo/payroll-backend/internal/domain/disbursement"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// GormBankBatchRepository implements BankBatchRepository using GORM
type GormBankBatchRepository struct {
	db *gorm.DB
}

// NewGormBankBatchRepository creates a new GormBankBatchRepository
func NewGormBankBatchRepository(db *gorm.DB) *GormBankBatchRepository {
	return &GormBankBatchRepository{db: db}
}

// FindByID finds a batch by its ID
func (r *GormBankBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*disbursement.BankFileBatch, error) {
	var batch disbursement.BankFileBatch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

// FindByBatchNumber finds a batch by its number
func (r *GormBankBatchRepository) FindByBatchNumber(ctx context.Context, batchNumber string) (*disbursement.BankFileBatch, error) {
	var batch disbursement.BankFileBatch
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
func (r *GormBankBatchRepository) FindByPeriod(ctx context.Context, periodID uuid.UUID) ([]disbursement.BankFileBatch, error) {
	var batches []disbursement.BankFileBatch
	if err := r.db.WithContext(ctx).
		Where("period_id = ?", periodID).
		Order("created_at ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// Save creates or updates a batch
func (r *GormBankBatchRepository) Save(ctx context.Context, batch *disbursement.BankFileBatch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

// SaveWithLock saves with optimistic locking against the version the caller
// observed before mutating the aggregate
func (r *GormBankBatchRepository) SaveWithLock(ctx context.Context, batch *disbursement.BankFileBatch, expectedVersion int) error {
	result := r.db.WithContext(ctx).
		Model(&disbursement.BankFileBatch{}).
		Where("id = ? AND version = ?", batch.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(batch)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The bank file batch was modified by another user")
	}
	return nil
}
