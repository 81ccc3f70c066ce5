package payroll

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suweldo/payroll-backend/internal/domain/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// AttendanceProvider supplies the timekeeping and leave snapshots for one
// employee over a period. Timekeeping is an external subsystem; the engine
// only ever sees the summarized figures taken at the timekeeping cutoff.
type AttendanceProvider interface {
	Snapshot(ctx context.Context, employeeID uuid.UUID, period *payroll.PayrollPeriod) (payroll.AttendanceSummary, payroll.LeaveSummary, error)
}

// StatutoryTablesProvider supplies the contribution tables and tax brackets
// in force at calculation time.
type StatutoryTablesProvider interface {
	Tables(ctx context.Context) (payroll.StatutoryTables, error)
}

// EventPublisher dispatches domain events after an aggregate is persisted
type EventPublisher interface {
	Publish(ctx context.Context, events ...shared.DomainEvent) error
}

// CalculationPolicy carries the tunable business rules that are not part of
// the statutory tables. Values are snapshotted into the period's
// calculation config alongside the tables.
type CalculationPolicy struct {
	// PeriodsPerYear drives tax annualization (24 for semi-monthly)
	PeriodsPerYear int `json:"periods_per_year"`
	// DeMinimisCapPerPeriod caps non-taxable de-minimis benefits per period;
	// the excess is reclassified as taxable
	DeMinimisCapPerPeriod decimal.Decimal `json:"de_minimis_cap_per_period"`
	// AdjustmentApprovalThreshold is the amount at or above which an
	// adjustment requires a second approver
	AdjustmentApprovalThreshold decimal.Decimal `json:"adjustment_approval_threshold"`
	// Workers bounds the parallel per-employee calculation fan-out
	Workers int `json:"workers"`
}

// DefaultCalculationPolicy returns the semi-monthly production defaults
func DefaultCalculationPolicy() CalculationPolicy {
	return CalculationPolicy{
		PeriodsPerYear:              24,
		DeMinimisCapPerPeriod:       decimal.NewFromInt(5000),
		AdjustmentApprovalThreshold: decimal.NewFromInt(1000),
		Workers:                     8,
	}
}

// configSnapshot is the JSON document frozen onto the period when a
// calculation run starts, so every figure can be re-derived later.
type configSnapshot struct {
	Tables payroll.StatutoryTables `json:"tables"`
	Policy CalculationPolicy       `json:"policy"`
}
