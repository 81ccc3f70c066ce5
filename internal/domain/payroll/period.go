package payroll

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// PayrollPeriod represents one semi-monthly pay cycle being calculated,
// reviewed, approved, locked and paid. It is the aggregate root owning the
// batch totals; calculations and payments reference it by ID only.
type PayrollPeriod struct {
	shared.BaseAggregateRoot
	PeriodNumber    string       `gorm:"type:varchar(20);not null;uniqueIndex"`
	StartDate       time.Time    `gorm:"not null"`
	EndDate         time.Time    `gorm:"not null"`
	TimekeepingCutoff time.Time  `gorm:"not null"` // timekeeping data older than this is authoritative
	PayDate         time.Time    `gorm:"not null"`
	Status          PeriodStatus `gorm:"type:varchar(20);not null;default:'draft';index"`

	// Aggregate totals, accumulated as employee calculations complete.
	// Writes must be serialized by the calculation engine.
	TotalGross         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalDeductions    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalNet           decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	EmployeesProcessed int             `gorm:"not null;default:0"`
	EmployeesFailed    int             `gorm:"not null;default:0"`
	ExceptionsCount    int             `gorm:"not null;default:0"`

	// Snapshot of the rules in force when calculation ran (statutory tables,
	// pay periods per year, de-minimis caps). JSON, written once per run.
	CalculationConfig []byte `gorm:"type:jsonb"`

	TimekeepingDataLocked bool `gorm:"not null;default:false"`
	LeaveDataLocked       bool `gorm:"not null;default:false"`

	SubmittedAt *time.Time
	SubmittedBy *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt  *time.Time
	ApprovedBy  *uuid.UUID `gorm:"type:uuid"`
	FinalizedAt *time.Time
	FinalizedBy *uuid.UUID `gorm:"type:uuid"`
	LockedAt    *time.Time `gorm:"index"`
	LockedBy    *uuid.UUID `gorm:"type:uuid"`
	UnlockedAt  *time.Time
	UnlockedBy  *uuid.UUID `gorm:"type:uuid"`
	UnlockReason string    `gorm:"type:varchar(500)"`
	CompletedAt *time.Time

	DeletedAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (PayrollPeriod) TableName() string {
	return "payroll_periods"
}

// NewPayrollPeriod creates a new draft payroll period
func NewPayrollPeriod(periodNumber string, startDate, endDate, timekeepingCutoff, payDate time.Time, now time.Time) (*PayrollPeriod, error) {
	if periodNumber == "" {
		return nil, shared.NewDomainError("INVALID_PERIOD_NUMBER", "Period number cannot be empty")
	}
	if !endDate.After(startDate) {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", "Period end date must be after start date")
	}
	if payDate.Before(endDate) {
		return nil, shared.NewDomainError("INVALID_PAY_DATE", "Pay date cannot fall before the period end")
	}

	p := &PayrollPeriod{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		PeriodNumber:      periodNumber,
		StartDate:         startDate,
		EndDate:           endDate,
		TimekeepingCutoff: timekeepingCutoff,
		PayDate:           payDate,
		Status:            PeriodStatusDraft,
		TotalGross:        decimal.Zero,
		TotalDeductions:   decimal.Zero,
		TotalNet:          decimal.Zero,
	}

	p.AddDomainEvent(NewPeriodCreatedEvent(p, now))
	return p, nil
}

// IsLocked returns true once the period has been locked
func (p *PayrollPeriod) IsLocked() bool {
	return p.LockedAt != nil
}

// EnsureMutable rejects any calculation or payment mutation on a locked period.
// Unlock is the only sanctioned way back.
func (p *PayrollPeriod) EnsureMutable() error {
	if p.IsLocked() {
		return shared.ErrPeriodLocked
	}
	return nil
}

// StartCalculation moves the period into the calculating state.
// Allowed from draft (first run) or calculated (re-run before submission).
func (p *PayrollPeriod) StartCalculation(configSnapshot []byte, now time.Time) error {
	if err := p.EnsureMutable(); err != nil {
		return err
	}
	if p.Status != PeriodStatusDraft && p.Status != PeriodStatusCalculated {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot start calculation in %s status", p.Status))
	}

	p.Status = PeriodStatusCalculating
	p.CalculationConfig = configSnapshot
	p.TotalGross = decimal.Zero
	p.TotalDeductions = decimal.Zero
	p.TotalNet = decimal.Zero
	p.EmployeesProcessed = 0
	p.EmployeesFailed = 0
	p.ExceptionsCount = 0
	p.UpdatedAt = now
	p.IncrementVersion()
	return nil
}

// AccumulateEmployee folds one completed employee calculation into the period
// totals. The engine serializes calls to this method; it is not safe for
// concurrent use on the same period instance.
func (p *PayrollPeriod) AccumulateEmployee(gross, deductions, net decimal.Decimal, hasException bool) {
	p.EmployeesProcessed++
	if hasException {
		p.ExceptionsCount++
		// Excluded from batch totals until the exception is resolved.
		return
	}
	p.TotalGross = p.TotalGross.Add(gross)
	p.TotalDeductions = p.TotalDeductions.Add(deductions)
	p.TotalNet = p.TotalNet.Add(net)
}

// RecordEmployeeFailure counts one employee whose calculation errored out
func (p *PayrollPeriod) RecordEmployeeFailure() {
	p.EmployeesFailed++
}

// FinishCalculation moves the period to calculated after a run completes
func (p *PayrollPeriod) FinishCalculation(now time.Time) error {
	if p.Status != PeriodStatusCalculating {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot finish calculation in %s status", p.Status))
	}
	p.Status = PeriodStatusCalculated
	p.UpdatedAt = now
	p.IncrementVersion()
	p.AddDomainEvent(NewPeriodCalculatedEvent(p, now))
	return nil
}

// AbortCalculation returns a cancelled or failed run to draft. Completed
// employee calculations stay intact; the run may be retried.
func (p *PayrollPeriod) AbortCalculation(now time.Time) error {
	if p.Status != PeriodStatusCalculating {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot abort calculation in %s status", p.Status))
	}
	p.Status = PeriodStatusDraft
	p.UpdatedAt = now
	p.IncrementVersion()
	return nil
}

// SubmitForReview submits a calculated period for review. Only the Payroll
// Officer submits. Unresolved exceptions block submission unless an explicit
// override justification is given.
func (p *PayrollPeriod) SubmitForReview(actor uuid.UUID, role Role, overrideJustification string, now time.Time) error {
	if role != RolePayrollOfficer {
		return shared.NewDomainError("FORBIDDEN", "Only the payroll officer may submit a period for review")
	}
	if p.Status != PeriodStatusCalculated {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot submit period in %s status", p.Status))
	}
	if p.ExceptionsCount > 0 && overrideJustification == "" {
		return shared.NewDomainError("UNRESOLVED_EXCEPTIONS",
			fmt.Sprintf("%d unresolved exceptions; resolve them or submit with a justification", p.ExceptionsCount))
	}
	if actor == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Submitting actor is required")
	}

	p.Status = PeriodStatusUnderReview
	p.SubmittedAt = &now
	p.SubmittedBy = &actor
	p.UpdatedAt = now
	p.IncrementVersion()
	p.AddDomainEvent(NewPeriodSubmittedEvent(p, actor, overrideJustification, now))
	return nil
}

// Approve approves a period under review. HR Manager or Office Admin only.
func (p *PayrollPeriod) Approve(actor uuid.UUID, role Role, now time.Time) error {
	if !role.CanApprovePeriod() {
		return shared.NewDomainError("FORBIDDEN", "Only HR manager or office admin may approve a period")
	}
	if p.Status != PeriodStatusUnderReview {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve period in %s status", p.Status))
	}
	if actor == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Approving actor is required")
	}

	p.Status = PeriodStatusApproved
	p.ApprovedAt = &now
	p.ApprovedBy = &actor
	p.UpdatedAt = now
	p.IncrementVersion()
	p.AddDomainEvent(NewPeriodApprovedEvent(p, actor, now))
	return nil
}

// Reject sends a period under review back to draft for rework
func (p *PayrollPeriod) Reject(actor uuid.UUID, role Role, reason string, now time.Time) error {
	if !role.CanApprovePeriod() {
		return shared.NewDomainError("FORBIDDEN", "Only HR manager or office admin may reject a period")
	}
	if p.Status != PeriodStatusUnderReview {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject period in %s status", p.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}

	p.Status = PeriodStatusDraft
	p.SubmittedAt = nil
	p.SubmittedBy = nil
	p.UpdatedAt = now
	p.IncrementVersion()
	p.AddDomainEvent(NewPeriodRejectedEvent(p, actor, reason, now))
	return nil
}

// Finalize fixes the approved totals ahead of locking
func (p *PayrollPeriod) Finalize(actor uuid.UUID, now time.Time) error {
	if p.Status != PeriodStatusApproved {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot finalize period in %s status", p.Status))
	}
	p.Status = PeriodStatusFinalized
	p.FinalizedAt = &now
	p.FinalizedBy = &actor
	p.UpdatedAt = now
	p.IncrementVersion()
	return nil
}

// Lock freezes the period. Timekeeping and leave inputs are frozen with it.
// Irreversible except through Unlock, which requires a reason and an
// elevated role and is itself audited.
func (p *PayrollPeriod) Lock(actor uuid.UUID, now time.Time) error {
	if p.Status != PeriodStatusFinalized {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot lock period in %s status", p.Status))
	}
	if actor == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Locking actor is required")
	}

	p.Status = PeriodStatusLocked
	p.LockedAt = &now
	p.LockedBy = &actor
	p.TimekeepingDataLocked = true
	p.LeaveDataLocked = true
	p.UpdatedAt = now
	p.IncrementVersion()
	p.AddDomainEvent(NewPeriodLockedEvent(p, actor, now))
	return nil
}

// Unlock reopens a locked period. Elevated role and recorded reason required.
func (p *PayrollPeriod) Unlock(actor uuid.UUID, role Role, reason string, now time.Time) error {
	if !role.CanUnlockPeriod() {
		return shared.NewDomainError("FORBIDDEN", "Only office admin may unlock a locked period")
	}
	if p.Status != PeriodStatusLocked {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot unlock period in %s status", p.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Unlock reason is required")
	}

	p.Status = PeriodStatusFinalized
	p.LockedAt = nil
	p.LockedBy = nil
	p.UnlockedAt = &now
	p.UnlockedBy = &actor
	p.UnlockReason = reason
	p.TimekeepingDataLocked = false
	p.LeaveDataLocked = false
	p.UpdatedAt = now
	p.IncrementVersion()
	p.AddDomainEvent(NewPeriodUnlockedEvent(p, actor, reason, now))
	return nil
}

// Complete closes out a locked period once disbursement has settled
func (p *PayrollPeriod) Complete(now time.Time) error {
	if p.Status != PeriodStatusLocked {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete period in %s status", p.Status))
	}
	p.Status = PeriodStatusCompleted
	p.CompletedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()
	p.AddDomainEvent(NewPeriodCompletedEvent(p, now))
	return nil
}

// ContainsDate reports whether a date falls inside the period range
func (p *PayrollPeriod) ContainsDate(d time.Time) bool {
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}
