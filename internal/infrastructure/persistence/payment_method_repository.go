package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/suweldo/payroll-backend/internal/domain/disbursement"
)

// GormMethodRepository implements MethodRepository using GORM
type GormMethodRepository struct {
	db *gorm.DB
}

// NewGormMethodRepository creates a new GormMethodRepository
func NewGormMethodRepository(db *gorm.DB) *GormMethodRepository {
	return &GormMethodRepository{db: db}
}

// FindByID finds a method by its ID
func (r *GormMethodRepository) FindByID(ctx context.Context, id uuid.UUID) (*disbursement.PaymentMethod, error) {
	var method disbursement.PaymentMethod
	if err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		First(&method, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &method, nil
}

// FindByCode finds a method by its code
func (r *GormMethodRepository) FindByCode(ctx context.Context, code string) (*disbursement.PaymentMethod, error) {
	var method disbursement.PaymentMethod
	if err := r.db.WithContext(ctx).
		Where("code = ? AND deleted_at IS NULL", code).
		First(&method).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &method, nil
}

// FindEnabled finds all enabled methods ordered by code
func (r *GormMethodRepository) FindEnabled(ctx context.Context) ([]disbursement.PaymentMethod, error) {
	var methods []disbursement.PaymentMethod
	if err := r.db.WithContext(ctx).
		Where("enabled = ? AND deleted_at IS NULL", true).
		Order("code ASC").
		Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

// FindByType finds enabled methods of a channel class
func (r *GormMethodRepository) FindByType(ctx context.Context, methodType disbursement.MethodType) ([]disbursement.PaymentMethod, error) {
	var methods []disbursement.PaymentMethod
	if err := r.db.WithContext(ctx).
		Where("method_type = ? AND enabled = ? AND deleted_at IS NULL", methodType, true).
		Order("code ASC").
		Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

// Save creates or updates a method
func (r *GormMethodRepository) Save(ctx context.Context, method *disbursement.PaymentMethod) error {
	return r.db.WithContext(ctx).Save(method).Error
}
