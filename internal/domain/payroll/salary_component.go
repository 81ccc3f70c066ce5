package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// ComponentType classifies a salary component as pay or deduction
type ComponentType string

const (
	ComponentTypeEarning   ComponentType = "earning"
	ComponentTypeDeduction ComponentType = "deduction"
)

// CalculationMethod is how a component's amount is resolved
type CalculationMethod string

const (
	CalcMethodFixed              CalculationMethod = "fixed"
	CalcMethodPercentOfBasic     CalculationMethod = "percent_of_basic"
	CalcMethodPercentOfComponent CalculationMethod = "percent_of_component"
	CalcMethodOTMultiplier       CalculationMethod = "ot_multiplier"
	CalcMethodBracketLookup      CalculationMethod = "bracket_lookup"
)

// IsValid checks if the calculation method is valid
func (m CalculationMethod) IsValid() bool {
	switch m {
	case CalcMethodFixed, CalcMethodPercentOfBasic, CalcMethodPercentOfComponent,
		CalcMethodOTMultiplier, CalcMethodBracketLookup:
		return true
	}
	return false
}

// SalaryComponent defines one named pay or deduction component in the catalog
type SalaryComponent struct {
	shared.BaseAggregateRoot
	Code          string            `gorm:"type:varchar(30);not null;uniqueIndex"`
	Name          string            `gorm:"type:varchar(100);not null"`
	ComponentType ComponentType     `gorm:"type:varchar(20);not null;index"`
	CalcMethod    CalculationMethod `gorm:"type:varchar(30);not null"`

	// Exactly one of these drives the amount, depending on CalcMethod
	Amount               decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"` // fixed
	Percentage           decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0"`  // percent_of_*
	ReferenceComponentID *uuid.UUID      `gorm:"type:uuid"`                             // percent_of_component
	OTCategory           OvertimeCategory `gorm:"type:varchar(20)"`                     // ot_multiplier

	Taxable   bool `gorm:"not null"`
	DeMinimis bool `gorm:"not null;default:false"`
	Active    bool `gorm:"not null"`

	DeletedAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (SalaryComponent) TableName() string {
	return "salary_components"
}

// NewSalaryComponent creates a catalog component
func NewSalaryComponent(code, name string, componentType ComponentType, method CalculationMethod, now time.Time) (*SalaryComponent, error) {
	if code == "" || name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Component code and name are required")
	}
	if componentType != ComponentTypeEarning && componentType != ComponentTypeDeduction {
		return nil, shared.NewDomainError("INVALID_INPUT", "Component type is not valid")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Calculation method is not valid")
	}
	return &SalaryComponent{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		Code:              code,
		Name:              name,
		ComponentType:     componentType,
		CalcMethod:        method,
		Active:            true,
		Taxable:           true,
	}, nil
}

// Resolve computes the component amount against the employee's basic pay and,
// for percent_of_component, the already-resolved reference amount.
// ot_multiplier components resolve against hourlyRate * hours elsewhere; here
// they return the multiplier applied to the reference (hourly pay for the
// hours worked).
func (sc *SalaryComponent) Resolve(basicPay, reference decimal.Decimal) (decimal.Decimal, error) {
	switch sc.CalcMethod {
	case CalcMethodFixed:
		return sc.Amount, nil
	case CalcMethodPercentOfBasic:
		return basicPay.Mul(sc.Percentage).Div(decimal.NewFromInt(100)).Round(2), nil
	case CalcMethodPercentOfComponent:
		if sc.ReferenceComponentID == nil {
			return decimal.Zero, shared.NewDomainError("INVALID_COMPONENT", "percent_of_component requires a reference component")
		}
		return reference.Mul(sc.Percentage).Div(decimal.NewFromInt(100)).Round(2), nil
	case CalcMethodOTMultiplier:
		mult := decimal.NewFromFloat(sc.OTCategory.Multiplier())
		if mult.IsZero() {
			return decimal.Zero, shared.NewDomainError("INVALID_COMPONENT", "ot_multiplier requires a valid overtime category")
		}
		return reference.Mul(mult).Round(2), nil
	case CalcMethodBracketLookup:
		// Bracket tables live in the statutory package-level tables; a
		// component of this method only marks the slot in the breakdown.
		return decimal.Zero, nil
	}
	return decimal.Zero, shared.NewDomainError("INVALID_COMPONENT", "Unknown calculation method")
}

// Deactivate retires the component from the catalog
func (sc *SalaryComponent) Deactivate(now time.Time) {
	sc.Active = false
	sc.UpdatedAt = now
	sc.IncrementVersion()
}
