package payroll

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// EmployeePayrollCalculation is one employee's computed pay for one period.
// Rows form a forward-only version chain: a correction never mutates a locked
// row, it creates a new row with Version+1 pointing back via PreviousVersionID.
// Version doubles as the optimistic-lock token for concurrent adjustment
// application.
type EmployeePayrollCalculation struct {
	shared.BaseAggregateRoot
	PeriodID          uuid.UUID  `gorm:"type:uuid;not null;index:idx_calc_period_employee"`
	EmployeeID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_calc_period_employee"`
	EmployeeNumber    string     `gorm:"type:varchar(30);not null"`
	PreviousVersionID *uuid.UUID `gorm:"type:uuid;uniqueIndex"` // nil on version 1

	// Earnings breakdown
	BasicPay            decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	LeavePay            decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	OvertimeRegularPay  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	OvertimeRestDayPay  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	OvertimeDoublePay   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	OvertimeTriplePay   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalOvertimePay    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxableAllowances   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DeMinimisAllowances decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalAllowances     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalBonuses        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	GrossPay            decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	// Deduction breakdown (the nine itemized fields reconciled on payments)
	SSSContribution        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PhilHealthContribution decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PagIbigContribution    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	WithholdingTax         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	LoanDeductions         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AdvanceDeductions      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TardinessDeduction     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AbsenceDeduction       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	OtherDeductions        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalDeductions        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	NetPay           decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AdjustmentsTotal decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	FinalNetPay      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	CalculationStatus CalculationStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	HasException      bool              `gorm:"not null;default:false"`
	ExceptionReasons  string            `gorm:"type:text"` // newline-separated
	HasAdjustment     bool              `gorm:"not null;default:false"`

	LockedAt *time.Time
	LockedBy *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (EmployeePayrollCalculation) TableName() string {
	return "employee_payroll_calculations"
}

// NewEmployeePayrollCalculation creates version 1 of a calculation chain
func NewEmployeePayrollCalculation(periodID, employeeID uuid.UUID, employeeNumber string, now time.Time) (*EmployeePayrollCalculation, error) {
	if periodID == uuid.Nil || employeeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Period and employee IDs are required")
	}
	if employeeNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Employee number is required")
	}

	c := &EmployeePayrollCalculation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		PeriodID:          periodID,
		EmployeeID:        employeeID,
		EmployeeNumber:    employeeNumber,
		CalculationStatus: CalculationStatusPending,
	}
	return c, nil
}

// IsLocked returns true once the row is immutable
func (c *EmployeePayrollCalculation) IsLocked() bool {
	return c.LockedAt != nil
}

// ensureMutable rejects writes to a locked version
func (c *EmployeePayrollCalculation) ensureMutable() error {
	if c.IsLocked() {
		return shared.NewDomainError("CALCULATION_LOCKED",
			fmt.Sprintf("Calculation version %d is locked; create a new version instead", c.Version))
	}
	return nil
}

// SetEarnings records the earnings breakdown and derives the gross pay
func (c *EmployeePayrollCalculation) SetEarnings(basic, leave, otRegular, otRestDay, otDouble, otTriple, taxableAllowances, deMinimis, bonuses decimal.Decimal) error {
	if err := c.ensureMutable(); err != nil {
		return err
	}
	c.BasicPay = basic
	c.LeavePay = leave
	c.OvertimeRegularPay = otRegular
	c.OvertimeRestDayPay = otRestDay
	c.OvertimeDoublePay = otDouble
	c.OvertimeTriplePay = otTriple
	c.TotalOvertimePay = otRegular.Add(otRestDay).Add(otDouble).Add(otTriple)
	c.TaxableAllowances = taxableAllowances
	c.DeMinimisAllowances = deMinimis
	c.TotalAllowances = taxableAllowances.Add(deMinimis)
	c.TotalBonuses = bonuses
	c.GrossPay = c.BasicPay.Add(c.LeavePay).Add(c.TotalOvertimePay).Add(c.TotalAllowances).Add(c.TotalBonuses)
	c.NetPay = c.GrossPay.Sub(c.TotalDeductions)
	c.FinalNetPay = c.NetPay.Add(c.AdjustmentsTotal)
	return nil
}

// SetDeductions records the deduction breakdown and derives net pay
func (c *EmployeePayrollCalculation) SetDeductions(sss, philHealth, pagIbig, tax, loans, advances, tardiness, absence, other decimal.Decimal) error {
	if err := c.ensureMutable(); err != nil {
		return err
	}
	c.SSSContribution = sss
	c.PhilHealthContribution = philHealth
	c.PagIbigContribution = pagIbig
	c.WithholdingTax = tax
	c.LoanDeductions = loans
	c.AdvanceDeductions = advances
	c.TardinessDeduction = tardiness
	c.AbsenceDeduction = absence
	c.OtherDeductions = other
	c.TotalDeductions = sss.Add(philHealth).Add(pagIbig).Add(tax).
		Add(loans).Add(advances).Add(tardiness).Add(absence).Add(other)
	c.NetPay = c.GrossPay.Sub(c.TotalDeductions)
	c.FinalNetPay = c.NetPay.Add(c.AdjustmentsTotal)
	return nil
}

// MarkCalculated finishes a successful computation
func (c *EmployeePayrollCalculation) MarkCalculated(now time.Time) error {
	if err := c.ensureMutable(); err != nil {
		return err
	}
	if c.HasException {
		c.CalculationStatus = CalculationStatusException
	} else {
		c.CalculationStatus = CalculationStatusCalculated
	}
	c.UpdatedAt = now
	return nil
}

// FlagException marks the calculation as needing resolution. Exception rows
// are excluded from period batch totals until recalculated clean.
func (c *EmployeePayrollCalculation) FlagException(reason string, now time.Time) error {
	if err := c.ensureMutable(); err != nil {
		return err
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Exception reason is required")
	}
	c.HasException = true
	if c.ExceptionReasons == "" {
		c.ExceptionReasons = reason
	} else {
		c.ExceptionReasons = c.ExceptionReasons + "\n" + reason
	}
	c.CalculationStatus = CalculationStatusException
	c.UpdatedAt = now
	return nil
}

// ExceptionList returns the individual exception reasons
func (c *EmployeePayrollCalculation) ExceptionList() []string {
	if c.ExceptionReasons == "" {
		return nil
	}
	return strings.Split(c.ExceptionReasons, "\n")
}

// Lock freezes this version. Any further change must go through NewVersion.
func (c *EmployeePayrollCalculation) Lock(actor uuid.UUID, now time.Time) error {
	if c.IsLocked() {
		return nil // locking twice is a no-op, tolerates retry-after-partial-failure
	}
	if c.CalculationStatus == CalculationStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot lock a calculation that has not run")
	}
	c.LockedAt = &now
	c.LockedBy = &actor
	c.CalculationStatus = CalculationStatusLocked
	c.UpdatedAt = now
	return nil
}

// NewVersion creates the successor row in the chain. The receiver must be the
// current head; the caller persists the new row and locks the old one in the
// same transaction, with an optimistic check on the observed Version.
func (c *EmployeePayrollCalculation) NewVersion(now time.Time) *EmployeePayrollCalculation {
	prevID := c.ID
	next := *c
	next.BaseAggregateRoot = shared.NewBaseAggregateRoot(now)
	next.Version = c.Version + 1
	next.PreviousVersionID = &prevID
	next.LockedAt = nil
	next.LockedBy = nil
	next.CalculationStatus = CalculationStatusCalculated
	if next.HasException {
		next.CalculationStatus = CalculationStatusException
	}
	return &next
}

// ApplyAdjustment folds a signed adjustment amount into the final net pay
func (c *EmployeePayrollCalculation) ApplyAdjustment(signedAmount decimal.Decimal, now time.Time) error {
	if err := c.ensureMutable(); err != nil {
		return err
	}
	c.AdjustmentsTotal = c.AdjustmentsTotal.Add(signedAmount)
	c.FinalNetPay = c.NetPay.Add(c.AdjustmentsTotal)
	c.HasAdjustment = true
	c.CalculationStatus = CalculationStatusAdjusted
	c.UpdatedAt = now
	return nil
}

// Reconcile verifies the money invariants of this row. A violation is fatal
// and must block period approval until resolved.
func (c *EmployeePayrollCalculation) Reconcile() error {
	earnings := c.BasicPay.Add(c.LeavePay).Add(c.TotalOvertimePay).Add(c.TotalAllowances).Add(c.TotalBonuses)
	if !c.GrossPay.Round(2).Equal(earnings.Round(2)) {
		return shared.NewDomainError("INTEGRITY_VIOLATION",
			fmt.Sprintf("Gross pay %s does not reconcile with earnings breakdown %s", c.GrossPay, earnings))
	}
	if !c.NetPay.Round(2).Equal(c.GrossPay.Sub(c.TotalDeductions).Round(2)) {
		return shared.NewDomainError("INTEGRITY_VIOLATION",
			fmt.Sprintf("Net pay %s does not reconcile with gross %s minus deductions %s", c.NetPay, c.GrossPay, c.TotalDeductions))
	}
	if !c.FinalNetPay.Round(2).Equal(c.NetPay.Add(c.AdjustmentsTotal).Round(2)) {
		return shared.NewDomainError("INTEGRITY_VIOLATION",
			fmt.Sprintf("Final net pay %s does not reconcile with net %s plus adjustments %s", c.FinalNetPay, c.NetPay, c.AdjustmentsTotal))
	}
	return nil
}
