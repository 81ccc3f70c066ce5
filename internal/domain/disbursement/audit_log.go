package disbursement

import (
	"time"

	"github.com/google/uuid"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// AuditEntityType tags which entity an audit row refers to
type AuditEntityType string

const (
	AuditEntityPayment   AuditEntityType = "payroll_payment"
	AuditEntityBankBatch AuditEntityType = "bank_file_batch"
	AuditEntityCashBatch AuditEntityType = "cash_distribution_batch"
	AuditEntityMethod    AuditEntityType = "payment_method"
)

// PaymentAuditLog is the append-only disbursement audit trail. Rows reference
// heterogeneous entities through the entity_type/entity_id pair and are never
// updated or deleted; regulatory retention is seven years.
type PaymentAuditLog struct {
	shared.BaseEntity
	EntityType AuditEntityType `gorm:"type:varchar(40);not null;index:idx_audit_entity"`
	EntityID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_audit_entity"`
	Action     string          `gorm:"type:varchar(50);not null"`
	ActorID    uuid.UUID       `gorm:"type:uuid;not null"`
	// Old/new values as JSON for state transitions
	OldValues []byte `gorm:"type:jsonb"`
	NewValues []byte `gorm:"type:jsonb"`
	Remarks   string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PaymentAuditLog) TableName() string {
	return "payment_audit_logs"
}

// NewPaymentAuditLog records one audited action
func NewPaymentAuditLog(entityType AuditEntityType, entityID, actorID uuid.UUID, action string, oldValues, newValues []byte, remarks string, now time.Time) (*PaymentAuditLog, error) {
	if entityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Audited entity ID is required")
	}
	if action == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Audit action is required")
	}
	return &PaymentAuditLog{
		BaseEntity: shared.NewBaseEntity(now),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		ActorID:    actorID,
		OldValues:  oldValues,
		NewValues:  newValues,
		Remarks:    remarks,
	}, nil
}
