package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// PayrollApprovalHistory is an append-only record of every workflow action
// taken on a period. Rows are never updated or deleted.
type PayrollApprovalHistory struct {
	shared.BaseEntity
	PeriodID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"period_id"`
	Action          string          `gorm:"size:50;not null" json:"action"`
	FromStatus      PeriodStatus    `gorm:"size:20;not null" json:"from_status"`
	ToStatus        PeriodStatus    `gorm:"size:20;not null" json:"to_status"`
	ActorID         uuid.UUID       `gorm:"type:uuid;not null" json:"actor_id"`
	ActorRole       Role            `gorm:"size:30;not null" json:"actor_role"`
	Comments        string          `gorm:"type:text" json:"comments"`
	TotalGross      decimal.Decimal `gorm:"type:decimal(14,2)" json:"total_gross"`
	TotalDeductions decimal.Decimal `gorm:"type:decimal(14,2)" json:"total_deductions"`
	TotalNet        decimal.Decimal `gorm:"type:decimal(14,2)" json:"total_net"`
	EmployeeCount   int             `gorm:"not null;default:0" json:"employee_count"`
}

func (PayrollApprovalHistory) TableName() string {
	return "payroll_approval_histories"
}

// LogPeriodAction snapshots the period's totals alongside the transition so
// the history stays meaningful even after later recalculations.
func LogPeriodAction(period *PayrollPeriod, action string, fromStatus PeriodStatus, actorID uuid.UUID, actorRole Role, comments string, now time.Time) *PayrollApprovalHistory {
	return &PayrollApprovalHistory{
		BaseEntity:      shared.NewBaseEntity(now),
		PeriodID:        period.ID,
		Action:          action,
		FromStatus:      fromStatus,
		ToStatus:        period.Status,
		ActorID:         actorID,
		ActorRole:       actorRole,
		Comments:        comments,
		TotalGross:      period.TotalGross,
		TotalDeductions: period.TotalDeductions,
		TotalNet:        period.TotalNet,
		EmployeeCount:   period.EmployeesProcessed,
	}
}
