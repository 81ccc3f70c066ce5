package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// PeriodSortFields contains allowed sort fields for payroll periods
var PeriodSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"period_number": true,
	"start_date":    true,
	"end_date":      true,
	"pay_date":      true,
	"status":        true,
}

// CalculationSortFields contains allowed sort fields for employee calculations
var CalculationSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"employee_number": true,
	"gross_pay":       true,
	"final_net_pay":   true,
	"version":         true,
}

// AdjustmentSortFields contains allowed sort fields for adjustments
var AdjustmentSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"type":       true,
	"amount":     true,
	"status":     true,
}

// ProfileSortFields contains allowed sort fields for employee payroll profiles
var ProfileSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"employee_number": true,
	"salary_type":     true,
	"monthly_salary":  true,
}

// LoanSortFields contains allowed sort fields for employee loans
var LoanSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"loan_number":       true,
	"loan_type":         true,
	"status":            true,
	"start_date":        true,
	"remaining_balance": true,
}

// PaymentSortFields contains allowed sort fields for payroll payments
var PaymentSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"payment_number":  true,
	"employee_number": true,
	"status":          true,
	"net_pay":         true,
	"paid_at":         true,
}

// PayslipSortFields contains allowed sort fields for payslips
var PayslipSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"payslip_number": true,
	"payment_date":   true,
	"net_pay":        true,
}
