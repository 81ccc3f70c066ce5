package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/suweldo/payroll-backend/internal/domain/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// GormProfileRepository implements ProfileRepository using GORM
type GormProfileRepository struct {
	db *gorm.DB
}

// NewGormProfileRepository creates a new GormProfileRepository
func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// FindByID finds a profile by its ID, with allowances and deductions loaded
func (r *GormProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*payroll.EmployeePayrollProfile, error) {
	var profile payroll.EmployeePayrollProfile
	if err := r.db.WithContext(ctx).
		Preload("Allowances").
		Preload("Deductions").
		Where("deleted_at IS NULL").
		First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// FindByEmployee finds the profile for an employee
func (r *GormProfileRepository) FindByEmployee(ctx context.Context, employeeID uuid.UUID) (*payroll.EmployeePayrollProfile, error) {
	var profile payroll.EmployeePayrollProfile
	if err := r.db.WithContext(ctx).
		Preload("Allowances").
		Preload("Deductions").
		Where("employee_id = ? AND deleted_at IS NULL", employeeID).
		First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// FindActive finds all active profiles
func (r *GormProfileRepository) FindActive(ctx context.Context, filter shared.Filter) ([]payroll.EmployeePayrollProfile, error) {
	query := r.db.WithContext(ctx).
		Model(&payroll.EmployeePayrollProfile{}).
		Preload("Allowances").
		Preload("Deductions").
		Where("active = ? AND deleted_at IS NULL", true)
	if filter.Search != "" {
		query = query.Where("employee_number LIKE ?", "%"+filter.Search+"%")
	}
	query = applyListOptions(query, filter, ProfileSortFields, "employee_number", "ASC")

	var profiles []payroll.EmployeePayrollProfile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// Save creates or updates a profile. Allowance and deduction rows are
// replaced wholesale so removed entries do not linger.
func (r *GormProfileRepository) Save(ctx context.Context, profile *payroll.EmployeePayrollProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Allowances", "Deductions").Save(profile).Error; err != nil {
			return err
		}
		if err := tx.Where("profile_id = ?", profile.ID).Delete(&payroll.EmployeeAllowance{}).Error; err != nil {
			return err
		}
		if err := tx.Where("profile_id = ?", profile.ID).Delete(&payroll.EmployeeDeduction{}).Error; err != nil {
			return err
		}
		if len(profile.Allowances) > 0 {
			if err := tx.Create(&profile.Allowances).Error; err != nil {
				return err
			}
		}
		if len(profile.Deductions) > 0 {
			if err := tx.Create(&profile.Deductions).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
