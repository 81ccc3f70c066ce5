package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// PeriodCreatedEvent is raised when a new payroll period is opened
type PeriodCreatedEvent struct {
	shared.BaseDomainEvent
	PeriodID     uuid.UUID `json:"period_id"`
	PeriodNumber string    `json:"period_number"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
}

// NewPeriodCreatedEvent creates a new PeriodCreatedEvent
func NewPeriodCreatedEvent(p *PayrollPeriod, now time.Time) *PeriodCreatedEvent {
	return &PeriodCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PayrollPeriodCreated", "PayrollPeriod", p.ID, uuid.Nil, now),
		PeriodID:        p.ID,
		PeriodNumber:    p.PeriodNumber,
		StartDate:       p.StartDate,
		EndDate:         p.EndDate,
	}
}

// PeriodCalculatedEvent is raised when a calculation run finishes
type PeriodCalculatedEvent struct {
	shared.BaseDomainEvent
	PeriodID           uuid.UUID       `json:"period_id"`
	PeriodNumber       string          `json:"period_number"`
	EmployeesProcessed int             `json:"employees_processed"`
	EmployeesFailed    int             `json:"employees_failed"`
	ExceptionsCount    int             `json:"exceptions_count"`
	TotalGross         decimal.Decimal `json:"total_gross"`
	TotalNet           decimal.Decimal `json:"total_net"`
}

// NewPeriodCalculatedEvent creates a new PeriodCalculatedEvent
func NewPeriodCalculatedEvent(p *PayrollPeriod, now time.Time) *PeriodCalculatedEvent {
	return &PeriodCalculatedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent("PayrollPeriodCalculated", "PayrollPeriod", p.ID, uuid.Nil, now),
		PeriodID:           p.ID,
		PeriodNumber:       p.PeriodNumber,
		EmployeesProcessed: p.EmployeesProcessed,
		EmployeesFailed:    p.EmployeesFailed,
		ExceptionsCount:    p.ExceptionsCount,
		TotalGross:         p.TotalGross,
		TotalNet:           p.TotalNet,
	}
}

// PeriodSubmittedEvent is raised when a period is submitted for review
type PeriodSubmittedEvent struct {
	shared.BaseDomainEvent
	PeriodID              uuid.UUID `json:"period_id"`
	PeriodNumber          string    `json:"period_number"`
	OverrideJustification string    `json:"override_justification,omitempty"`
	ExceptionsCount       int       `json:"exceptions_count"`
}

// NewPeriodSubmittedEvent creates a new PeriodSubmittedEvent
func NewPeriodSubmittedEvent(p *PayrollPeriod, actor uuid.UUID, justification string, now time.Time) *PeriodSubmittedEvent {
	return &PeriodSubmittedEvent{
		BaseDomainEvent:       shared.NewBaseDomainEvent("PayrollPeriodSubmitted", "PayrollPeriod", p.ID, actor, now),
		PeriodID:              p.ID,
		PeriodNumber:          p.PeriodNumber,
		OverrideJustification: justification,
		ExceptionsCount:       p.ExceptionsCount,
	}
}

// PeriodApprovedEvent is raised when a period under review is approved
type PeriodApprovedEvent struct {
	shared.BaseDomainEvent
	PeriodID     uuid.UUID       `json:"period_id"`
	PeriodNumber string          `json:"period_number"`
	TotalNet     decimal.Decimal `json:"total_net"`
}

// NewPeriodApprovedEvent creates a new PeriodApprovedEvent
func NewPeriodApprovedEvent(p *PayrollPeriod, actor uuid.UUID, now time.Time) *PeriodApprovedEvent {
	return &PeriodApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PayrollPeriodApproved", "PayrollPeriod", p.ID, actor, now),
		PeriodID:        p.ID,
		PeriodNumber:    p.PeriodNumber,
		TotalNet:        p.TotalNet,
	}
}

// PeriodRejectedEvent is raised when review sends a period back for rework
type PeriodRejectedEvent struct {
	shared.BaseDomainEvent
	PeriodID     uuid.UUID `json:"period_id"`
	PeriodNumber string    `json:"period_number"`
	Reason       string    `json:"reason"`
}

// NewPeriodRejectedEvent creates a new PeriodRejectedEvent
func NewPeriodRejectedEvent(p *PayrollPeriod, actor uuid.UUID, reason string, now time.Time) *PeriodRejectedEvent {
	return &PeriodRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PayrollPeriodRejected", "PayrollPeriod", p.ID, actor, now),
		PeriodID:        p.ID,
		PeriodNumber:    p.PeriodNumber,
		Reason:          reason,
	}
}

// PeriodLockedEvent is raised when a period is locked
type PeriodLockedEvent struct {
	shared.BaseDomainEvent
	PeriodID     uuid.UUID       `json:"period_id"`
	PeriodNumber string          `json:"period_number"`
	TotalGross   decimal.Decimal `json:"total_gross"`
	TotalNet     decimal.Decimal `json:"total_net"`
}

// NewPeriodLockedEvent creates a new PeriodLockedEvent
func NewPeriodLockedEvent(p *PayrollPeriod, actor uuid.UUID, now time.Time) *PeriodLockedEvent {
	return &PeriodLockedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PayrollPeriodLocked", "PayrollPeriod", p.ID, actor, now),
		PeriodID:        p.ID,
		PeriodNumber:    p.PeriodNumber,
		TotalGross:      p.TotalGross,
		TotalNet:        p.TotalNet,
	}
}

// PeriodUnlockedEvent is raised on the audited unlock path
type PeriodUnlockedEvent struct {
	shared.BaseDomainEvent
	PeriodID     uuid.UUID `json:"period_id"`
	PeriodNumber string    `json:"period_number"`
	Reason       string    `json:"reason"`
}

// NewPeriodUnlockedEvent creates a new PeriodUnlockedEvent
func NewPeriodUnlockedEvent(p *PayrollPeriod, actor uuid.UUID, reason string, now time.Time) *PeriodUnlockedEvent {
	return &PeriodUnlockedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PayrollPeriodUnlocked", "PayrollPeriod", p.ID, actor, now),
		PeriodID:        p.ID,
		PeriodNumber:    p.PeriodNumber,
		Reason:          reason,
	}
}

// PeriodCompletedEvent is raised when a period closes out after disbursement
type PeriodCompletedEvent struct {
	shared.BaseDomainEvent
	PeriodID     uuid.UUID `json:"period_id"`
	PeriodNumber string    `json:"period_number"`
}

// NewPeriodCompletedEvent creates a new PeriodCompletedEvent
func NewPeriodCompletedEvent(p *PayrollPeriod, now time.Time) *PeriodCompletedEvent {
	return &PeriodCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PayrollPeriodCompleted", "PayrollPeriod", p.ID, uuid.Nil, now),
		PeriodID:        p.ID,
		PeriodNumber:    p.PeriodNumber,
	}
}
