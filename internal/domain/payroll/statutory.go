package payroll

import (
	"github.com/shopspring/decimal"
)

// StatutoryTables bundles the government contribution tables and tax brackets
// in force for a calculation run. The whole struct is snapshotted into the
// period's calculation_config so later audits can re-derive any figure.
type StatutoryTables struct {
	SSS        SSSTable        `json:"sss"`
	PhilHealth PhilHealthTable `json:"philhealth"`
	PagIbig    PagIbigTable    `json:"pagibig"`
	Tax        TaxTable        `json:"tax"`
}

// SSSBracket is one salary band of the SSS contribution schedule
type SSSBracket struct {
	MinSalary     decimal.Decimal `json:"min_salary"`
	MaxSalary     decimal.Decimal `json:"max_salary"` // zero means open-ended
	EmployeeShare decimal.Decimal `json:"employee_share"`
}

// SSSTable is the bracket schedule keyed by monthly salary credit
type SSSTable struct {
	Brackets []SSSBracket `json:"brackets"`
}

// Lookup returns the employee share for a monthly salary
func (t SSSTable) Lookup(monthlySalary decimal.Decimal) decimal.Decimal {
	for _, b := range t.Brackets {
		if monthlySalary.GreaterThanOrEqual(b.MinSalary) &&
			(b.MaxSalary.IsZero() || monthlySalary.LessThanOrEqual(b.MaxSalary)) {
			return b.EmployeeShare
		}
	}
	return decimal.Zero
}

// PhilHealthTable is a capped percentage of the monthly salary base
type PhilHealthTable struct {
	EmployeeRatePercent decimal.Decimal `json:"employee_rate_percent"`
	MinSalaryBase       decimal.Decimal `json:"min_salary_base"`
	MaxSalaryBase       decimal.Decimal `json:"max_salary_base"`
}

// Contribution returns the employee share for a monthly salary
func (t PhilHealthTable) Contribution(monthlySalary decimal.Decimal) decimal.Decimal {
	base := monthlySalary
	if base.LessThan(t.MinSalaryBase) {
		base = t.MinSalaryBase
	}
	if base.GreaterThan(t.MaxSalaryBase) {
		base = t.MaxSalaryBase
	}
	return base.Mul(t.EmployeeRatePercent).Div(decimal.NewFromInt(100)).Round(2)
}

// PagIbigTable is a two-rate percentage with a capped contribution base
type PagIbigTable struct {
	LowerRatePercent decimal.Decimal `json:"lower_rate_percent"` // salary <= threshold
	UpperRatePercent decimal.Decimal `json:"upper_rate_percent"`
	RateThreshold    decimal.Decimal `json:"rate_threshold"`
	MaxSalaryBase    decimal.Decimal `json:"max_salary_base"`
}

// Contribution returns the employee share for a monthly salary
func (t PagIbigTable) Contribution(monthlySalary decimal.Decimal) decimal.Decimal {
	rate := t.UpperRatePercent
	if monthlySalary.LessThanOrEqual(t.RateThreshold) {
		rate = t.LowerRatePercent
	}
	base := monthlySalary
	if base.GreaterThan(t.MaxSalaryBase) {
		base = t.MaxSalaryBase
	}
	return base.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
}

// TaxBracket is one band of the progressive annual withholding schedule
type TaxBracket struct {
	LowerBound    decimal.Decimal `json:"lower_bound"`
	UpperBound    decimal.Decimal `json:"upper_bound"` // zero means open-ended
	BaseTax       decimal.Decimal `json:"base_tax"`
	RatePercent   decimal.Decimal `json:"rate_percent"` // applied to the excess over LowerBound
}

// TaxTable is the progressive annual bracket schedule
type TaxTable struct {
	Brackets []TaxBracket `json:"brackets"`
}

// AnnualTax computes withholding tax on an annual taxable income
func (t TaxTable) AnnualTax(annualTaxable decimal.Decimal) decimal.Decimal {
	if annualTaxable.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	for _, b := range t.Brackets {
		if annualTaxable.GreaterThanOrEqual(b.LowerBound) &&
			(b.UpperBound.IsZero() || annualTaxable.LessThan(b.UpperBound)) {
			excess := annualTaxable.Sub(b.LowerBound)
			return b.BaseTax.Add(excess.Mul(b.RatePercent).Div(decimal.NewFromInt(100))).Round(2)
		}
	}
	return decimal.Zero
}

// PeriodTax annualizes the per-period taxable gross, applies the bracket
// schedule, and divides back by the pay periods per year.
func (t TaxTable) PeriodTax(periodTaxable decimal.Decimal, periodsPerYear int) decimal.Decimal {
	if periodsPerYear <= 0 {
		return decimal.Zero
	}
	n := decimal.NewFromInt(int64(periodsPerYear))
	annual := periodTaxable.Mul(n)
	return t.AnnualTax(annual).Div(n).Round(2)
}

func d(v string) decimal.Decimal {
	dec, _ := decimal.NewFromString(v)
	return dec
}

// DefaultStatutoryTables returns the 2025 schedules. Figures are condensed
// bands of the published SSS schedule plus the TRAIN-law tax brackets.
func DefaultStatutoryTables() StatutoryTables {
	return StatutoryTables{
		SSS: SSSTable{
			Brackets: []SSSBracket{
				{MinSalary: d("0"), MaxSalary: d("4249.99"), EmployeeShare: d("180.00")},
				{MinSalary: d("4250"), MaxSalary: d("8249.99"), EmployeeShare: d("292.50")},
				{MinSalary: d("8250"), MaxSalary: d("12249.99"), EmployeeShare: d("472.50")},
				{MinSalary: d("12250"), MaxSalary: d("16249.99"), EmployeeShare: d("652.50")},
				{MinSalary: d("16250"), MaxSalary: d("20249.99"), EmployeeShare: d("832.50")},
				{MinSalary: d("20250"), MaxSalary: d("24249.99"), EmployeeShare: d("1012.50")},
				{MinSalary: d("24250"), MaxSalary: d("28249.99"), EmployeeShare: d("1192.50")},
				{MinSalary: d("28250"), MaxSalary: d("0"), EmployeeShare: d("1350.00")},
			},
		},
		PhilHealth: PhilHealthTable{
			EmployeeRatePercent: d("2.5"),
			MinSalaryBase:       d("10000"),
			MaxSalaryBase:       d("100000"),
		},
		PagIbig: PagIbigTable{
			LowerRatePercent: d("1"),
			UpperRatePercent: d("2"),
			RateThreshold:    d("1500"),
			MaxSalaryBase:    d("10000"),
		},
		Tax: TaxTable{
			Brackets: []TaxBracket{
				{LowerBound: d("0"), UpperBound: d("250000"), BaseTax: d("0"), RatePercent: d("0")},
				{LowerBound: d("250000"), UpperBound: d("400000"), BaseTax: d("0"), RatePercent: d("15")},
				{LowerBound: d("400000"), UpperBound: d("800000"), BaseTax: d("22500"), RatePercent: d("20")},
				{LowerBound: d("800000"), UpperBound: d("2000000"), BaseTax: d("102500"), RatePercent: d("25")},
				{LowerBound: d("2000000"), UpperBound: d("8000000"), BaseTax: d("402500"), RatePercent: d("30")},
				{LowerBound: d("8000000"), UpperBound: d("0"), BaseTax: d("2202500"), RatePercent: d("35")},
			},
		},
	}
}
