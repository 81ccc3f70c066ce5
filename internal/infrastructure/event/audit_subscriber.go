package event

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/suweldo/payroll-backend/internal/domain/disbursement"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// auditEntityTypes maps aggregate types to audit entity tags. Events from
// aggregates outside the disbursement trail are recorded under their raw
// aggregate type.
var auditEntityTypes = map[string]disbursement.AuditEntityType{
	"PayrollPayment":        disbursement.AuditEntityPayment,
	"BankFileBatch":         disbursement.AuditEntityBankBatch,
	"CashDistributionBatch": disbursement.AuditEntityCashBatch,
	"PaymentMethod":         disbursement.AuditEntityMethod,
}

// AuditSubscriber persists every published domain event as an append-only
// audit row. It subscribes to the full event stream and never blocks the
// publishing service: persistence failures are logged and surfaced to the
// bus, which continues with the remaining handlers.
type AuditSubscriber struct {
	auditRepo disbursement.AuditLogRepository
	clock     shared.Clock
	logger    *zap.Logger
}

// NewAuditSubscriber creates the audit trail subscriber
func NewAuditSubscriber(auditRepo disbursement.AuditLogRepository, clock shared.Clock, logger *zap.Logger) *AuditSubscriber {
	return &AuditSubscriber{
		auditRepo: auditRepo,
		clock:     clock,
		logger:    logger,
	}
}

// EventTypes subscribes the audit trail to every event the service publishes
func (s *AuditSubscriber) EventTypes() []string {
	return AllEventTypes()
}

// Handle appends one audit row for the event. The full event payload is
// stored as the new-values snapshot.
func (s *AuditSubscriber) Handle(ctx context.Context, event shared.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	entityType, ok := auditEntityTypes[event.AggregateType()]
	if !ok {
		entityType = disbursement.AuditEntityType(event.AggregateType())
	}

	entry, err := disbursement.NewPaymentAuditLog(
		entityType,
		event.AggregateID(),
		event.ActorID(),
		event.EventType(),
		nil,
		payload,
		"",
		s.clock.Now(),
	)
	if err != nil {
		return err
	}

	if err := s.auditRepo.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append audit entry",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
			zap.Error(err),
		)
		return err
	}

	return nil
}

var _ shared.EventHandler = (*AuditSubscriber)(nil)
