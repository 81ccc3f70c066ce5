// Package timekeeping supplies attendance and leave snapshots to the
// calculation engine. Timekeeping itself is an external subsystem; its
// summarized figures are loaded into the timekeeping_summaries table at
// the period's timekeeping cutoff and the engine only ever reads them.
package timekeeping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/suweldo/payroll-backend/internal/domain/payroll"
)

// TimekeepingSummary is the persisted per-employee snapshot for one period.
type TimekeepingSummary struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_timekeeping_employee_period"`
	PeriodStart time.Time `gorm:"not null;uniqueIndex:idx_timekeeping_employee_period"`
	PeriodEnd   time.Time `gorm:"not null"`

	PresentDays    decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	AbsentDays     decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	LateHours      decimal.Decimal `gorm:"type:decimal(8,2);not null;default:0"`
	UndertimeHours decimal.Decimal `gorm:"type:decimal(8,2);not null;default:0"`

	// Approved overtime hours keyed by statutory category
	OvertimeJSON []byte `gorm:"type:jsonb"`

	PaidLeaveDays   decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	UnpaidLeaveDays decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TimekeepingSummary) TableName() string {
	return "timekeeping_summaries"
}

func (s *TimekeepingSummary) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// GormAttendanceProvider reads snapshots from the database.
type GormAttendanceProvider struct {
	db *gorm.DB
}

func NewGormAttendanceProvider(db *gorm.DB) *GormAttendanceProvider {
	return &GormAttendanceProvider{db: db}
}

// Snapshot returns the stored summary for one employee over a period. A
// missing row is an error; the engine flags the employee as an exception
// rather than paying against invented attendance.
func (p *GormAttendanceProvider) Snapshot(ctx context.Context, employeeID uuid.UUID, period *payroll.PayrollPeriod) (payroll.AttendanceSummary, payroll.LeaveSummary, error) {
	var row TimekeepingSummary
	err := p.db.WithContext(ctx).
		Where("employee_id = ? AND period_start = ?", employeeID, period.StartDate).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return payroll.AttendanceSummary{}, payroll.LeaveSummary{}, fmt.Errorf("no timekeeping summary for employee %s in period %s", employeeID, period.PeriodNumber)
		}
		return payroll.AttendanceSummary{}, payroll.LeaveSummary{}, fmt.Errorf("failed to load timekeeping summary: %w", err)
	}

	overtime := map[payroll.OvertimeCategory]decimal.Decimal{}
	if len(row.OvertimeJSON) > 0 {
		if err := json.Unmarshal(row.OvertimeJSON, &overtime); err != nil {
			return payroll.AttendanceSummary{}, payroll.LeaveSummary{}, fmt.Errorf("malformed overtime snapshot for employee %s: %w", employeeID, err)
		}
	}

	attendance := payroll.AttendanceSummary{
		PresentDays:    row.PresentDays,
		AbsentDays:     row.AbsentDays,
		LateHours:      row.LateHours,
		UndertimeHours: row.UndertimeHours,
		OvertimeHours:  overtime,
	}
	leave := payroll.LeaveSummary{
		PaidLeaveDays:   row.PaidLeaveDays,
		UnpaidLeaveDays: row.UnpaidLeaveDays,
	}
	return attendance, leave, nil
}
