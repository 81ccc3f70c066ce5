package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/suweldo/payroll-backend/internal/domain/payroll"
)

// GormSalaryComponentRepository implements SalaryComponentRepository using GORM
type GormSalaryComponentRepository struct {
	db *gorm.DB
}

// NewGormSalaryComponentRepository creates a new GormSalaryComponentRepository
func NewGormSalaryComponentRepository(db *gorm.DB) *GormSalaryComponentRepository {
	return &GormSalaryComponentRepository{db: db}
}

// FindByID finds a component by its ID
func (r *GormSalaryComponentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payroll.SalaryComponent, error) {
	var component payroll.SalaryComponent
	if err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		First(&component, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &component, nil
}

// FindByCode finds a component by its unique code
func (r *GormSalaryComponentRepository) FindByCode(ctx context.Context, code string) (*payroll.SalaryComponent, error) {
	var component payroll.SalaryComponent
	if err := r.db.WithContext(ctx).
		Where("code = ? AND deleted_at IS NULL", code).
		First(&component).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &component, nil
}

// FindActive finds all active components ordered by code
func (r *GormSalaryComponentRepository) FindActive(ctx context.Context) ([]payroll.SalaryComponent, error) {
	var components []payroll.SalaryComponent
	if err := r.db.WithContext(ctx).
		Where("active = ? AND deleted_at IS NULL", true).
		Order("code ASC").
		Find(&components).Error; err != nil {
		return nil, err
	}
	return components, nil
}

// Save creates or updates a component
func (r *GormSalaryComponentRepository) Save(ctx context.Context, component *payroll.SalaryComponent) error {
	return r.db.WithContext(ctx).Save(component).Error
}
