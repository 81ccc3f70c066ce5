package payroll

// PeriodStatus represents the lifecycle status of a payroll period
type PeriodStatus string

const (
	PeriodStatusDraft       PeriodStatus = "draft"
	PeriodStatusCalculating PeriodStatus = "calculating"
	PeriodStatusCalculated  PeriodStatus = "calculated"
	PeriodStatusUnderReview PeriodStatus = "under_review"
	PeriodStatusApproved    PeriodStatus = "approved"
	PeriodStatusFinalized   PeriodStatus = "finalized"
	PeriodStatusLocked      PeriodStatus = "locked"
	PeriodStatusCompleted   PeriodStatus = "completed"
)

// IsValid checks if the status is a valid PeriodStatus
func (s PeriodStatus) IsValid() bool {
	switch s {
	case PeriodStatusDraft, PeriodStatusCalculating, PeriodStatusCalculated,
		PeriodStatusUnderReview, PeriodStatusApproved, PeriodStatusFinalized,
		PeriodStatusLocked, PeriodStatusCompleted:
		return true
	}
	return false
}

// String returns the string representation
func (s PeriodStatus) String() string {
	return string(s)
}

// IsTerminal returns true once no further lifecycle transition is possible
func (s PeriodStatus) IsTerminal() bool {
	return s == PeriodStatusCompleted
}

// Role is the asserted role of an actor performing a transition.
// The core never authenticates; it records what the auth subsystem asserts.
type Role string

const (
	RolePayrollOfficer Role = "payroll_officer"
	RoleHRManager      Role = "hr_manager"
	RoleOfficeAdmin    Role = "office_admin"
	RoleTreasury       Role = "treasury"
	RoleSystem         Role = "system"
)

// CanApprovePeriod returns true for roles allowed to approve a period under review
func (r Role) CanApprovePeriod() bool {
	return r == RoleHRManager || r == RoleOfficeAdmin
}

// CanUnlockPeriod returns true for elevated roles allowed to unlock a locked period
func (r Role) CanUnlockPeriod() bool {
	return r == RoleOfficeAdmin
}

// CalculationStatus represents the status of one employee-period calculation
type CalculationStatus string

const (
	CalculationStatusPending    CalculationStatus = "pending"
	CalculationStatusCalculated CalculationStatus = "calculated"
	CalculationStatusException  CalculationStatus = "exception"
	CalculationStatusAdjusted   CalculationStatus = "adjusted"
	CalculationStatusLocked     CalculationStatus = "locked"
)

// IsValid checks if the status is a valid CalculationStatus
func (s CalculationStatus) IsValid() bool {
	switch s {
	case CalculationStatusPending, CalculationStatusCalculated,
		CalculationStatusException, CalculationStatusAdjusted, CalculationStatusLocked:
		return true
	}
	return false
}

// OvertimeCategory classifies overtime hours by statutory multiplier
type OvertimeCategory string

const (
	OvertimeRegular OvertimeCategory = "regular"      // 1.25x
	OvertimeRestDay OvertimeCategory = "rest_day"     // 1.30x, also regular holiday work
	OvertimeDouble  OvertimeCategory = "double"       // 2.00x
	OvertimeTriple  OvertimeCategory = "triple"       // 2.60x
)

// Multiplier returns the statutory pay multiplier for the category
func (c OvertimeCategory) Multiplier() float64 {
	switch c {
	case OvertimeRegular:
		return 1.25
	case OvertimeRestDay:
		return 1.30
	case OvertimeDouble:
		return 2.00
	case OvertimeTriple:
		return 2.60
	}
	return 0
}

// AllOvertimeCategories returns the categories in a stable order
func AllOvertimeCategories() []OvertimeCategory {
	return []OvertimeCategory{OvertimeRegular, OvertimeRestDay, OvertimeDouble, OvertimeTriple}
}

// SalaryType is how an employee's base pay is expressed
type SalaryType string

const (
	SalaryTypeMonthly SalaryType = "monthly"
	SalaryTypeDaily   SalaryType = "daily"
)

// IsValid checks if the salary type is valid
func (s SalaryType) IsValid() bool {
	return s == SalaryTypeMonthly || s == SalaryTypeDaily
}
