package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/suweldo/payroll-backend/internal/domain/payroll"
)

// GormAdjustmentRepository implements AdjustmentRepository using GORM
type GormAdjustmentRepository struct {
	db *gorm.DB
}

// NewGormAdjustmentRepository creates a new GormAdjustmentRepository
func NewGormAdjustmentRepository(db *gorm.DB) *GormAdjustmentRepository {
	return &GormAdjustmentRepository{db: db}
}

// FindByID finds an adjustment by its ID
func (r *GormAdjustmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payroll.PayrollAdjustment, error) {
	var adjustment payroll.PayrollAdjustment
	if err := r.db.WithContext(ctx).First(&adjustment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &adjustment, nil
}

// FindByPeriod finds adjustments for a period with filtering
func (r *GormAdjustmentRepository) FindByPeriod(ctx context.Context, periodID uuid.UUID, filter payroll.AdjustmentFilter) ([]payroll.PayrollAdjustment, error) {
	query := r.db.WithContext(ctx).
		Model(&payroll.PayrollAdjustment{}).
		Where("period_id = ?", periodID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.EmployeeID != nil {
		query = query.Where("employee_id = ?", *filter.EmployeeID)
	}
	if filter.Search != "" {
		query = query.Where("reason LIKE ?", "%"+filter.Search+"%")
	}
	query = applyListOptions(query, filter.Filter, AdjustmentSortFields, "created_at", "DESC")

	var adjustments []payroll.PayrollAdjustment
	if err := query.Find(&adjustments).Error; err != nil {
		return nil, err
	}
	return adjustments, nil
}

// FindPendingByPeriod finds adjustments awaiting approval for a period
func (r *GormAdjustmentRepository) FindPendingByPeriod(ctx context.Context, periodID uuid.UUID) ([]payroll.PayrollAdjustment, error) {
	var adjustments []payroll.PayrollAdjustment
	if err := r.db.WithContext(ctx).
		Where("period_id = ? AND status = ?", periodID, payroll.AdjustmentStatusPending).
		Order("created_at ASC").
		Find(&adjustments).Error; err != nil {
		return nil, err
	}
	return adjustments, nil
}

// Save creates or updates an adjustment
func (r *GormAdjustmentRepository) Save(ctx context.Context, adjustment *payroll.PayrollAdjustment) error {
	return r.db.WithContext(ctx).Save(adjustment).Error
}
