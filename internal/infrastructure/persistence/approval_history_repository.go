package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/suweldo/payroll-backend/internal/domain/payroll"
)

// GormApprovalHistoryRepository implements ApprovalHistoryRepository using
// GORM. The table is append-only; rows are never updated or deleted.
type GormApprovalHistoryRepository struct {
	db *gorm.DB
}

// NewGormApprovalHistoryRepository creates a new GormApprovalHistoryRepository
func NewGormApprovalHistoryRepository(db *gorm.DB) *GormApprovalHistoryRepository {
	return &GormApprovalHistoryRepository{db: db}
}

// Append persists a history row
func (r *GormApprovalHistoryRepository) Append(ctx context.Context, entry *payroll.PayrollApprovalHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByPeriod finds history rows for a period, oldest first
func (r *GormApprovalHistoryRepository) FindByPeriod(ctx context.Context, periodID uuid.UUID) ([]payroll.PayrollApprovalHistory, error) {
	var entries []payroll.PayrollApprovalHistory
	if err := r.db.WithContext(ctx).
		Where("period_id = ?", periodID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
