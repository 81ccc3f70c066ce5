package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// Philippine payroll convention: 261 working days and 2088 working hours a
// year for monthly-to-daily rate conversion.
var (
	workingDaysPerYear  = decimal.NewFromInt(261)
	monthsPerYear       = decimal.NewFromInt(12)
	standardHoursPerDay = decimal.NewFromInt(8)
)

// EmployeePayrollProfile holds the financial inputs the calculation engine
// needs for one employee. Derived rates are computed at construction, never
// by persistence hooks.
type EmployeePayrollProfile struct {
	shared.BaseAggregateRoot
	EmployeeID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	EmployeeNumber string     `gorm:"type:varchar(30);not null;uniqueIndex"`
	SalaryType     SalaryType `gorm:"type:varchar(10);not null"`

	MonthlySalary decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DailyRate     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	HourlyRate    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	PaymentMethodID *uuid.UUID `gorm:"type:uuid"`
	// Bank account number, encrypted at rest; masked on display paths
	BankAccountCiphertext string `gorm:"type:text"`
	BankAccountLastFour   string `gorm:"type:varchar(4)"`

	TaxExempt bool `gorm:"not null;default:false"`
	Active    bool `gorm:"not null"`

	Allowances []EmployeeAllowance `gorm:"foreignKey:ProfileID;references:ID"`
	Deductions []EmployeeDeduction `gorm:"foreignKey:ProfileID;references:ID"`

	DeletedAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (EmployeePayrollProfile) TableName() string {
	return "employee_payroll_profiles"
}

// NewMonthlyProfile creates a profile for a monthly-salaried employee,
// deriving daily and hourly rates from the monthly salary.
func NewMonthlyProfile(employeeID uuid.UUID, employeeNumber string, monthlySalary decimal.Decimal, now time.Time) (*EmployeePayrollProfile, error) {
	if employeeID == uuid.Nil || employeeNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Employee ID and number are required")
	}
	if monthlySalary.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_SALARY", "Monthly salary must be positive")
	}

	daily := monthlySalary.Mul(monthsPerYear).Div(workingDaysPerYear).Round(2)
	return &EmployeePayrollProfile{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		EmployeeID:        employeeID,
		EmployeeNumber:    employeeNumber,
		SalaryType:        SalaryTypeMonthly,
		MonthlySalary:     monthlySalary,
		DailyRate:         daily,
		HourlyRate:        daily.Div(standardHoursPerDay).Round(4),
		Active:            true,
	}, nil
}

// NewDailyProfile creates a profile for a daily-rated employee
func NewDailyProfile(employeeID uuid.UUID, employeeNumber string, dailyRate decimal.Decimal, now time.Time) (*EmployeePayrollProfile, error) {
	if employeeID == uuid.Nil || employeeNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Employee ID and number are required")
	}
	if dailyRate.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_SALARY", "Daily rate must be positive")
	}

	return &EmployeePayrollProfile{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		EmployeeID:        employeeID,
		EmployeeNumber:    employeeNumber,
		SalaryType:        SalaryTypeDaily,
		DailyRate:         dailyRate,
		HourlyRate:        dailyRate.Div(standardHoursPerDay).Round(4),
		Active:            true,
	}, nil
}

// Validate checks the profile carries everything calculation needs.
// A failing profile raises an exception flag, it does not abort a batch.
func (p *EmployeePayrollProfile) Validate() error {
	if p.DailyRate.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_FAILURE", "Profile is missing a daily rate")
	}
	if p.HourlyRate.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_FAILURE", "Profile is missing an hourly rate")
	}
	if !p.SalaryType.IsValid() {
		return shared.NewDomainError("VALIDATION_FAILURE", "Profile has no valid salary type")
	}
	return nil
}

// SetMonthlySalary replaces the base salary of a monthly-rated profile and
// recomputes the derived daily and hourly rates.
func (p *EmployeePayrollProfile) SetMonthlySalary(salary decimal.Decimal, now time.Time) error {
	if p.SalaryType != SalaryTypeMonthly {
		return shared.NewDomainError("INVALID_SALARY_TYPE", "Profile is not monthly-rated")
	}
	if salary.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_SALARY", "Monthly salary must be positive")
	}
	p.MonthlySalary = salary
	p.DailyRate = salary.Mul(monthsPerYear).Div(workingDaysPerYear).Round(2)
	p.HourlyRate = p.DailyRate.Div(standardHoursPerDay).Round(4)
	p.UpdatedAt = now
	return nil
}

// SetDailyRate replaces the base rate of a daily-rated profile
func (p *EmployeePayrollProfile) SetDailyRate(rate decimal.Decimal, now time.Time) error {
	if p.SalaryType != SalaryTypeDaily {
		return shared.NewDomainError("INVALID_SALARY_TYPE", "Profile is not daily-rated")
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_SALARY", "Daily rate must be positive")
	}
	p.DailyRate = rate
	p.HourlyRate = rate.Div(standardHoursPerDay).Round(4)
	p.UpdatedAt = now
	return nil
}

// SetDisbursement records how the employee gets paid. The account number is
// already sealed by the caller; the clear value never reaches the aggregate.
func (p *EmployeePayrollProfile) SetDisbursement(methodID *uuid.UUID, ciphertext, lastFour string, now time.Time) {
	p.PaymentMethodID = methodID
	p.BankAccountCiphertext = ciphertext
	p.BankAccountLastFour = lastFour
	p.UpdatedAt = now
}

// GrantAllowance attaches an allowance assignment to the profile
func (p *EmployeePayrollProfile) GrantAllowance(allowance EmployeeAllowance, now time.Time) {
	p.Allowances = append(p.Allowances, allowance)
	p.UpdatedAt = now
}

// ImposeDeduction attaches a recurring deduction to the profile
func (p *EmployeePayrollProfile) ImposeDeduction(deduction EmployeeDeduction, now time.Time) {
	p.Deductions = append(p.Deductions, deduction)
	p.UpdatedAt = now
}

// Deactivate removes the profile from future payroll runs
func (p *EmployeePayrollProfile) Deactivate(now time.Time) {
	p.Active = false
	p.UpdatedAt = now
}

// MonthlyEquivalent returns the monthly salary base used by statutory tables
func (p *EmployeePayrollProfile) MonthlyEquivalent() decimal.Decimal {
	if p.SalaryType == SalaryTypeMonthly {
		return p.MonthlySalary
	}
	return p.DailyRate.Mul(workingDaysPerYear).Div(monthsPerYear).Round(2)
}

// ActiveAllowances returns allowances whose activation window overlaps the
// period: effective_date <= period end AND (no end date OR end_date >= start).
func (p *EmployeePayrollProfile) ActiveAllowances(periodStart, periodEnd time.Time) []EmployeeAllowance {
	var active []EmployeeAllowance
	for _, a := range p.Allowances {
		if a.ActiveDuring(periodStart, periodEnd) {
			active = append(active, a)
		}
	}
	return active
}

// ActiveDeductions returns deductions effective within the period window
func (p *EmployeePayrollProfile) ActiveDeductions(periodStart, periodEnd time.Time) []EmployeeDeduction {
	var active []EmployeeDeduction
	for _, d := range p.Deductions {
		if d.ActiveDuring(periodStart, periodEnd) {
			active = append(active, d)
		}
	}
	return active
}

// EmployeeAllowance assigns a recurring allowance with an activation window
type EmployeeAllowance struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	ProfileID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ComponentID   uuid.UUID       `gorm:"type:uuid;not null"`
	ComponentCode string          `gorm:"type:varchar(30);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Taxable       bool            `gorm:"not null"`
	DeMinimis     bool            `gorm:"not null;default:false"`
	EffectiveDate time.Time       `gorm:"not null"`
	EndDate       *time.Time
}

// TableName returns the table name for GORM
func (EmployeeAllowance) TableName() string {
	return "employee_allowances"
}

// NewEmployeeAllowance creates an allowance assignment
func NewEmployeeAllowance(profileID uuid.UUID, component *SalaryComponent, amount decimal.Decimal, effectiveDate time.Time, endDate *time.Time) (*EmployeeAllowance, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Allowance amount must be positive")
	}
	if endDate != nil && endDate.Before(effectiveDate) {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", "Allowance end date precedes effective date")
	}
	return &EmployeeAllowance{
		ID:            uuid.New(),
		ProfileID:     profileID,
		ComponentID:   component.ID,
		ComponentCode: component.Code,
		Amount:        amount,
		Taxable:       component.Taxable,
		DeMinimis:     component.DeMinimis,
		EffectiveDate: effectiveDate,
		EndDate:       endDate,
	}, nil
}

// ActiveDuring reports whether the activation window overlaps [start, end]
func (a *EmployeeAllowance) ActiveDuring(start, end time.Time) bool {
	if a.EffectiveDate.After(end) {
		return false
	}
	return a.EndDate == nil || !a.EndDate.Before(start)
}

// DeductionKind classifies a recurring employee-level deduction
type DeductionKind string

const (
	DeductionKindAdvance      DeductionKind = "advance"
	DeductionKindDisciplinary DeductionKind = "disciplinary"
	DeductionKindMisc         DeductionKind = "misc"
)

// EmployeeDeduction is a recurring non-statutory, non-loan deduction
type EmployeeDeduction struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	ProfileID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Kind          DeductionKind   `gorm:"type:varchar(20);not null"`
	Description   string          `gorm:"type:varchar(200)"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	EffectiveDate time.Time       `gorm:"not null"`
	EndDate       *time.Time
}

// TableName returns the table name for GORM
func (EmployeeDeduction) TableName() string {
	return "employee_deductions"
}

// NewEmployeeDeduction creates a recurring deduction
func NewEmployeeDeduction(profileID uuid.UUID, kind DeductionKind, description string, amount decimal.Decimal, effectiveDate time.Time, endDate *time.Time) (*EmployeeDeduction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Deduction amount must be positive")
	}
	if endDate != nil && endDate.Before(effectiveDate) {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", "Deduction end date precedes effective date")
	}
	return &EmployeeDeduction{
		ID:            uuid.New(),
		ProfileID:     profileID,
		Kind:          kind,
		Description:   description,
		Amount:        amount,
		EffectiveDate: effectiveDate,
		EndDate:       endDate,
	}, nil
}

// ActiveDuring reports whether the deduction window overlaps [start, end]
func (d *EmployeeDeduction) ActiveDuring(start, end time.Time) bool {
	if d.EffectiveDate.After(end) {
		return false
	}
	return d.EndDate == nil || !d.EndDate.Before(start)
}
