package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/suweldo/payroll-backend/internal/domain/disbursement"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// GormAuditLogRepository implements AuditLogRepository using GORM. The audit
// trail is append-only; rows are never updated or deleted.
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Append persists an audit row
func (r *GormAuditLogRepository) Append(ctx context.Context, entry *disbursement.PaymentAuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByEntity finds audit rows for one entity, oldest first
func (r *GormAuditLogRepository) FindByEntity(ctx context.Context, entityType disbursement.AuditEntityType, entityID uuid.UUID) ([]disbursement.PaymentAuditLog, error) {
	var entries []disbursement.PaymentAuditLog
	if err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByActor finds audit rows recorded for one actor, newest first
func (r *GormAuditLogRepository) FindByActor(ctx context.Context, actorID uuid.UUID, filter shared.Filter) ([]disbursement.PaymentAuditLog, error) {
	query := r.db.WithContext(ctx).
		Model(&disbursement.PaymentAuditLog{}).
		Where("actor_id = ?", actorID)
	if filter.Search != "" {
		query = query.Where("action LIKE ?", "%"+filter.Search+"%")
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var entries []disbursement.PaymentAuditLog
	if err := query.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
