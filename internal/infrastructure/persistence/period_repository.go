package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/suweldo/payroll-backend/internal/domain/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// GormPeriodRepository implements PayrollPeriodRepository using GORM
type GormPeriodRepository struct {
	db *gorm.DB
}

// NewGormPeriodRepository creates a new GormPeriodRepository
func NewGormPeriodRepository(db *gorm.DB) *GormPeriodRepository {
	return &GormPeriodRepository{db: db}
}

// FindByID finds a period by its ID
func (r *GormPeriodRepository) FindByID(ctx context.Context, id uuid.UUID) (*payroll.PayrollPeriod, error) {
	var period payroll.PayrollPeriod
	if err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		First(&period, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

// FindByPeriodNumber finds a period by its human-readable number
func (r *GormPeriodRepository) FindByPeriodNumber(ctx context.Context, periodNumber string) (*payroll.PayrollPeriod, error) {
	var period payroll.PayrollPeriod
	if err := r.db.WithContext(ctx).
		Where("period_number = ? AND deleted_at IS NULL", periodNumber).
		First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

// FindContainingDate finds the period whose date range covers the given date
func (r *GormPeriodRepository) FindContainingDate(ctx context.Context, date time.Time) (*payroll.PayrollPeriod, error) {
	var period payroll.PayrollPeriod
	if err := r.db.WithContext(ctx).
		Where("start_date <= ? AND end_date >= ? AND deleted_at IS NULL", date, date).
		First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

// FindOverlapping finds periods overlapping the given date range
func (r *GormPeriodRepository) FindOverlapping(ctx context.Context, start, end time.Time) ([]payroll.PayrollPeriod, error) {
	var periods []payroll.PayrollPeriod
	if err := r.db.WithContext(ctx).
		Where("start_date <= ? AND end_date >= ? AND deleted_at IS NULL", end, start).
		Order("start_date ASC").
		Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

// FindAll finds periods with filtering
func (r *GormPeriodRepository) FindAll(ctx context.Context, filter payroll.PeriodFilter) ([]payroll.PayrollPeriod, error) {
	var periods []payroll.PayrollPeriod
	query := applyListOptions(
		r.applyPeriodFilter(r.db.WithContext(ctx).Model(&payroll.PayrollPeriod{}), filter),
		filter.Filter, PeriodSortFields, "start_date", "DESC",
	)
	if err := query.Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

// Save creates or updates a period
func (r *GormPeriodRepository) Save(ctx context.Context, period *payroll.PayrollPeriod) error {
	return r.db.WithContext(ctx).Save(period).Error
}

// SaveWithLock saves with optimistic locking against the version the caller
// observed before mutating the aggregate
func (r *GormPeriodRepository) SaveWithLock(ctx context.Context, period *payroll.PayrollPeriod, expectedVersion int) error {
	result := r.db.WithContext(ctx).
		Model(&payroll.PayrollPeriod{}).
		Where("id = ? AND version = ?", period.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(period)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The payroll period was modified by another user")
	}
	return nil
}

// Count counts periods matching the filter
func (r *GormPeriodRepository) Count(ctx context.Context, filter payroll.PeriodFilter) (int64, error) {
	var count int64
	query := r.applyPeriodFilter(r.db.WithContext(ctx).Model(&payroll.PayrollPeriod{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormPeriodRepository) applyPeriodFilter(query *gorm.DB, filter payroll.PeriodFilter) *gorm.DB {
	query = query.Where("deleted_at IS NULL")
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Year != nil {
		yearStart := time.Date(*filter.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		query = query.Where("start_date >= ? AND start_date < ?", yearStart, yearStart.AddDate(1, 0, 0))
	}
	if filter.FromDate != nil {
		query = query.Where("start_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("end_date <= ?", *filter.ToDate)
	}
	if filter.Search != "" {
		query = query.Where("period_number LIKE ?", "%"+filter.Search+"%")
	}
	return query
}
