package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/suweldo/payroll-backend/internal/domain/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// GormCalculationLogRepository implements CalculationLogRepository using
// GORM. The calculation trace is append-only.
type GormCalculationLogRepository struct {
	db *gorm.DB
}

// NewGormCalculationLogRepository creates a new GormCalculationLogRepository
func NewGormCalculationLogRepository(db *gorm.DB) *GormCalculationLogRepository {
	return &GormCalculationLogRepository{db: db}
}

// Append persists a log row
func (r *GormCalculationLogRepository) Append(ctx context.Context, entry *payroll.PayrollCalculationLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// AppendBatch persists a batch of log rows
func (r *GormCalculationLogRepository) AppendBatch(ctx context.Context, entries []payroll.PayrollCalculationLog) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(entries, 200).Error
}

// FindByPeriod finds log rows for a period, oldest first
func (r *GormCalculationLogRepository) FindByPeriod(ctx context.Context, periodID uuid.UUID, filter shared.Filter) ([]payroll.PayrollCalculationLog, error) {
	query := r.db.WithContext(ctx).
		Model(&payroll.PayrollCalculationLog{}).
		Where("period_id = ?", periodID)
	if filter.Search != "" {
		query = query.Where("message LIKE ?", "%"+filter.Search+"%")
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var entries []payroll.PayrollCalculationLog
	if err := query.Order("created_at ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByEmployee finds log rows for an employee within a period
func (r *GormCalculationLogRepository) FindByEmployee(ctx context.Context, periodID, employeeID uuid.UUID) ([]payroll.PayrollCalculationLog, error) {
	var entries []payroll.PayrollCalculationLog
	if err := r.db.WithContext(ctx).
		Where("period_id = ? AND employee_id = ?", periodID, employeeID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
