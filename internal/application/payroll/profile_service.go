package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/suweldo/payroll-backend/internal/domain/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
	"github.com/suweldo/payroll-backend/internal/domain/shared/valueobject"
	"github.com/suweldo/payroll-backend/internal/infrastructure/telemetry"
)

// ProfileService manages employee payroll profiles: base rates, recurring
// allowances and deductions, and the encrypted disbursement account.
type ProfileService struct {
	profileRepo   payroll.ProfileRepository
	componentRepo payroll.SalaryComponentRepository
	encryptionKey string
	clock         shared.Clock
	logger        *zap.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(
	profileRepo payroll.ProfileRepository,
	componentRepo payroll.SalaryComponentRepository,
	encryptionKey string,
	clock shared.Clock,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		profileRepo:   profileRepo,
		componentRepo: componentRepo,
		encryptionKey: encryptionKey,
		clock:         clock,
		logger:        logger,
	}
}

// CreateProfileRequest carries the inputs for a new payroll profile
type CreateProfileRequest struct {
	EmployeeID     uuid.UUID          `json:"employee_id" binding:"required"`
	EmployeeNumber string             `json:"employee_number" binding:"required"`
	SalaryType     payroll.SalaryType `json:"salary_type" binding:"required"`
	MonthlySalary  decimal.Decimal    `json:"monthly_salary"`
	DailyRate      decimal.Decimal    `json:"daily_rate"`
	TaxExempt      bool               `json:"tax_exempt"`
}

// CreateProfile registers the payroll inputs for an employee. One profile per
// employee; a second create for the same employee fails.
func (s *ProfileService) CreateProfile(ctx context.Context, req CreateProfileRequest) (*payroll.EmployeePayrollProfile, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payroll_profile", "create")
	defer span.End()

	existing, err := s.profileRepo.FindByEmployee(ctx, req.EmployeeID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to check existing profile: %w", err)
	}
	if existing != nil {
		err := shared.NewDomainError("PROFILE_EXISTS", "Employee already has a payroll profile")
		telemetry.RecordError(span, err)
		return nil, err
	}

	now := s.clock.Now()
	var profile *payroll.EmployeePayrollProfile
	switch req.SalaryType {
	case payroll.SalaryTypeMonthly:
		profile, err = payroll.NewMonthlyProfile(req.EmployeeID, req.EmployeeNumber, req.MonthlySalary, now)
	case payroll.SalaryTypeDaily:
		profile, err = payroll.NewDailyProfile(req.EmployeeID, req.EmployeeNumber, req.DailyRate, now)
	default:
		err = shared.NewDomainError("INVALID_SALARY_TYPE", "Salary type must be monthly or daily")
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	profile.TaxExempt = req.TaxExempt

	if err := s.profileRepo.Save(ctx, profile); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	s.logger.Info("payroll profile created",
		zap.String("profile_id", profile.ID.String()),
		zap.String("employee_number", profile.EmployeeNumber),
		zap.String("salary_type", string(profile.SalaryType)))
	return profile, nil
}

// GetProfile returns a profile by ID
func (s *ProfileService) GetProfile(ctx context.Context, id uuid.UUID) (*payroll.EmployeePayrollProfile, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payroll_profile", "get")
	defer span.End()

	return s.loadProfile(ctx, id)
}

// GetByEmployee returns the profile for an employee
func (s *ProfileService) GetByEmployee(ctx context.Context, employeeID uuid.UUID) (*payroll.EmployeePayrollProfile, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payroll_profile", "get_by_employee")
	defer span.End()

	profile, err := s.profileRepo.FindByEmployee(ctx, employeeID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		err := shared.NewDomainError("PROFILE_NOT_FOUND", "Payroll profile not found")
		telemetry.RecordError(span, err)
		return nil, err
	}
	return profile, nil
}

// ListActive returns active profiles
func (s *ProfileService) ListActive(ctx context.Context, filter shared.Filter) ([]payroll.EmployeePayrollProfile, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payroll_profile", "list_active")
	defer span.End()

	profiles, err := s.profileRepo.FindActive(ctx, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// SetRatesRequest carries a base-rate change
type SetRatesRequest struct {
	MonthlySalary decimal.Decimal `json:"monthly_salary"`
	DailyRate     decimal.Decimal `json:"daily_rate"`
}

// SetRates replaces the profile's base rates. The appropriate field for the
// profile's salary type must be positive; derived rates are recomputed the
// same way the constructors do.
func (s *ProfileService) SetRates(ctx context.Context, profileID uuid.UUID, req SetRatesRequest) (*payroll.EmployeePayrollProfile, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payroll_profile", "set_rates")
	defer span.End()

	profile, err := s.loadProfile(ctx, profileID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	now := s.clock.Now()
	switch profile.SalaryType {
	case payroll.SalaryTypeMonthly:
		err = profile.SetMonthlySalary(req.MonthlySalary, now)
	case payroll.SalaryTypeDaily:
		err = profile.SetDailyRate(req.DailyRate, now)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.profileRepo.Save(ctx, profile); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return profile, nil
}

// SetDisbursementRequest carries the payment method and bank account for a
// profile. The account number arrives in clear over TLS and is stored
// encrypted.
type SetDisbursementRequest struct {
	PaymentMethodID *uuid.UUID `json:"payment_method_id"`
	BankAccount     string     `json:"bank_account"`
}

// SetDisbursement updates how an employee gets paid. An empty bank account
// clears the stored one.
func (s *ProfileService) SetDisbursement(ctx context.Context, profileID uuid.UUID, req SetDisbursementRequest) (*payroll.EmployeePayrollProfile, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payroll_profile", "set_disbursement")
	defer span.End()

	profile, err := s.loadProfile(ctx, profileID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	sealed, err := valueobject.EncryptString(req.BankAccount, s.encryptionKey)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to encrypt bank account: %w", err)
	}
	profile.SetDisbursement(req.PaymentMethodID, sealed.Ciphertext(), sealed.LastFour(), s.clock.Now())

	if err := s.profileRepo.Save(ctx, profile); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	s.logger.Info("disbursement details updated",
		zap.String("profile_id", profile.ID.String()),
		zap.String("account_masked", sealed.Masked()))
	return profile, nil
}

// AddAllowanceRequest carries a recurring allowance grant
type AddAllowanceRequest struct {
	ComponentCode string          `json:"component_code" binding:"required"`
	// Optional for rate-based components; the amount is resolved from the
	// catalog component when omitted
	Amount        decimal.Decimal `json:"amount"`
	EffectiveDate time.Time       `json:"effective_date" binding:"required"`
	EndDate       *time.Time      `json:"end_date"`
}

// AddAllowance grants a catalog component to an employee. The component must
// exist, be active, and be an earning.
func (s *ProfileService) AddAllowance(ctx context.Context, profileID uuid.UUID, req AddAllowanceRequest) (*payroll.EmployeePayrollProfile, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payroll_profile", "add_allowance")
	defer span.End()

	profile, err := s.loadProfile(ctx, profileID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	component, err := s.componentRepo.FindByCode(ctx, req.ComponentCode)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load component: %w", err)
	}
	if component == nil {
		err := shared.NewDomainError("COMPONENT_NOT_FOUND", "Salary component not found")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !component.Active {
		err := shared.NewDomainError("COMPONENT_INACTIVE", "Salary component is no longer active")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if component.ComponentType != payroll.ComponentTypeEarning {
		err := shared.NewDomainError("INVALID_COMPONENT", "Allowances must reference an earning component")
		telemetry.RecordError(span, err)
		return nil, err
	}

	// Rate-based components resolve against the employee's pay at grant
	// time; an explicit amount only overrides fixed components.
	amount := req.Amount
	if component.CalcMethod != payroll.CalcMethodFixed || amount.IsZero() {
		amount, err = component.Resolve(profile.MonthlyEquivalent(), decimal.Zero)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	allowance, err := payroll.NewEmployeeAllowance(profile.ID, component, amount, req.EffectiveDate, req.EndDate)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	profile.GrantAllowance(*allowance, s.clock.Now())

	if err := s.profileRepo.Save(ctx, profile); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return profile, nil
}

// AddDeductionRequest carries a recurring employee-level deduction
type AddDeductionRequest struct {
	Kind          payroll.DeductionKind `json:"kind" binding:"required"`
	Description   string                `json:"description" binding:"required"`
	Amount        decimal.Decimal       `json:"amount" binding:"required"`
	EffectiveDate time.Time             `json:"effective_date" binding:"required"`
	EndDate       *time.Time            `json:"end_date"`
}

// AddDeduction attaches a recurring deduction to a profile
func (s *ProfileService) AddDeduction(ctx context.Context, profileID uuid.UUID, req AddDeductionRequest) (*payroll.EmployeePayrollProfile, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payroll_profile", "add_deduction")
	defer span.End()

	profile, err := s.loadProfile(ctx, profileID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	deduction, err := payroll.NewEmployeeDeduction(profile.ID, req.Kind, req.Description, req.Amount, req.EffectiveDate, req.EndDate)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	profile.ImposeDeduction(*deduction, s.clock.Now())

	if err := s.profileRepo.Save(ctx, profile); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return profile, nil
}

// Deactivate removes a profile from future payroll runs. Historical
// calculations keep their snapshots.
func (s *ProfileService) Deactivate(ctx context.Context, profileID uuid.UUID) (*payroll.EmployeePayrollProfile, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payroll_profile", "deactivate")
	defer span.End()

	profile, err := s.loadProfile(ctx, profileID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	profile.Deactivate(s.clock.Now())

	if err := s.profileRepo.Save(ctx, profile); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	s.logger.Info("payroll profile deactivated",
		zap.String("profile_id", profile.ID.String()),
		zap.String("employee_number", profile.EmployeeNumber))
	return profile, nil
}

func (s *ProfileService) loadProfile(ctx context.Context, id uuid.UUID) (*payroll.EmployeePayrollProfile, error) {
	profile, err := s.profileRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		return nil, shared.NewDomainError("PROFILE_NOT_FOUND", "Payroll profile not found")
	}
	return profile, nil
}
