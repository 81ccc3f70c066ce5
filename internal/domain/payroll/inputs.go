package payroll

import (
	"github.com/shopspring/decimal"
)

// AttendanceSummary is the timekeeping snapshot for one employee over a
// period, taken at the timekeeping cutoff.
type AttendanceSummary struct {
	PresentDays    decimal.Decimal
	AbsentDays     decimal.Decimal
	LateHours      decimal.Decimal
	UndertimeHours decimal.Decimal
	// Overtime hours grouped by category, already approved
	OvertimeHours map[OvertimeCategory]decimal.Decimal
}

// TotalOvertimeHours sums approved overtime across all categories
func (a AttendanceSummary) TotalOvertimeHours() decimal.Decimal {
	total := decimal.Zero
	for _, h := range a.OvertimeHours {
		total = total.Add(h)
	}
	return total
}

// LeaveSummary is the approved leave snapshot for one employee over a period
type LeaveSummary struct {
	PaidLeaveDays   decimal.Decimal
	UnpaidLeaveDays decimal.Decimal
}

// CalculationInput is everything the engine needs to calculate one employee.
// Inputs are assembled before the run so a calculation never reaches back
// into live timekeeping data.
type CalculationInput struct {
	Profile    *EmployeePayrollProfile
	Attendance AttendanceSummary
	Leave      LeaveSummary
	Tables     StatutoryTables
	// PeriodsPerYear drives tax annualization (24 for semi-monthly)
	PeriodsPerYear int
}
