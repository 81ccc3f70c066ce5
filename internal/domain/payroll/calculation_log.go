package payroll

import (
	"time"

	"github.com/google/uuid"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// LogSeverity classifies calculation log entries
type LogSeverity string

const (
	SeverityInfo     LogSeverity = "info"
	SeverityWarning  LogSeverity = "warning"
	SeverityError    LogSeverity = "error"
	SeverityCritical LogSeverity = "critical"
)

// PayrollCalculationLog is an append-only trace of a calculation run.
// Per-employee rows carry the employee ID; run-level rows leave it nil.
type PayrollCalculationLog struct {
	shared.BaseEntity
	PeriodID      uuid.UUID   `gorm:"type:uuid;not null;index" json:"period_id"`
	EmployeeID    *uuid.UUID  `gorm:"type:uuid;index" json:"employee_id,omitempty"`
	CalculationID *uuid.UUID  `gorm:"type:uuid" json:"calculation_id,omitempty"`
	Severity      LogSeverity `gorm:"size:10;not null" json:"severity"`
	Step          string      `gorm:"size:50;not null" json:"step"`
	Message       string      `gorm:"type:text;not null" json:"message"`
}

func (PayrollCalculationLog) TableName() string {
	return "payroll_calculation_logs"
}

// LogCalculationRun records a run-level entry
func LogCalculationRun(periodID uuid.UUID, severity LogSeverity, step, message string, now time.Time) *PayrollCalculationLog {
	return &PayrollCalculationLog{
		BaseEntity: shared.NewBaseEntity(now),
		PeriodID:   periodID,
		Severity:   severity,
		Step:       step,
		Message:    message,
	}
}

// LogEmployeeCalculation records a per-employee entry
func LogEmployeeCalculation(periodID, employeeID uuid.UUID, calculationID *uuid.UUID, severity LogSeverity, step, message string, now time.Time) *PayrollCalculationLog {
	return &PayrollCalculationLog{
		BaseEntity:    shared.NewBaseEntity(now),
		PeriodID:      periodID,
		EmployeeID:    &employeeID,
		CalculationID: calculationID,
		Severity:      severity,
		Step:          step,
		Message:       message,
	}
}
