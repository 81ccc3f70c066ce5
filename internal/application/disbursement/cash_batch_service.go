package disbursement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suweldo/payroll-backend/internal/domain/disbursement"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
	"github.com/suweldo/payroll-backend/internal/infrastructure/telemetry"
)

// CashBatchService manages envelope distribution batches under dual control:
// a counter and a distinct witness must both sign off before any envelope
// leaves the cage.
type CashBatchService struct {
	batchRepo   disbursement.CashBatchRepository
	paymentRepo disbursement.PaymentRepository
	methodRepo  disbursement.MethodRepository
	auditRepo   disbursement.AuditLogRepository
	publisher   EventPublisher
	clock       shared.Clock
	logger      *zap.Logger

	// unclaimedDays is the default redeposit window when a batch is built
	// without an explicit deadline
	unclaimedDays int
}

// DefaultUnclaimedEnvelopeDays is the redeposit window applied when no
// explicit deadline is given and none is configured.
const DefaultUnclaimedEnvelopeDays = 15

// NewCashBatchService creates a new CashBatchService
func NewCashBatchService(
	batchRepo disbursement.CashBatchRepository,
	paymentRepo disbursement.PaymentRepository,
	methodRepo disbursement.MethodRepository,
	auditRepo disbursement.AuditLogRepository,
	publisher EventPublisher,
	clock shared.Clock,
	logger *zap.Logger,
	unclaimedDays int,
) *CashBatchService {
	if unclaimedDays <= 0 {
		unclaimedDays = DefaultUnclaimedEnvelopeDays
	}
	return &CashBatchService{
		batchRepo:     batchRepo,
		paymentRepo:   paymentRepo,
		methodRepo:    methodRepo,
		auditRepo:     auditRepo,
		publisher:     publisher,
		clock:         clock,
		logger:        logger,
		unclaimedDays: unclaimedDays,
	}
}

// BuildBatchRequest opens a cash batch for a period
type BuildBatchRequest struct {
	PeriodID uuid.UUID `json:"period_id" binding:"required"`
	MethodID uuid.UUID `json:"method_id" binding:"required"`
	// UnclaimedDeadline is when unclaimed envelopes become due for redeposit;
	// zero defaults to the configured window after batch creation
	UnclaimedDeadline time.Time `json:"unclaimed_deadline"`
	ActorID           uuid.UUID `json:"-"`
}

// BuildBatch groups a period's pending cash payments into one envelope batch
func (s *CashBatchService) BuildBatch(ctx context.Context, req BuildBatchRequest) (*disbursement.CashDistributionBatch, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cash_batch", "build")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPeriodID, req.PeriodID.String())

	now := s.clock.Now()

	method, err := s.methodRepo.FindByID(ctx, req.MethodID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load method: %w", err)
	}
	if method == nil || method.MethodType != disbursement.MethodTypeCash {
		err := shared.NewDomainError("INVALID_INPUT", "Cash batches require a cash method")
		telemetry.RecordError(span, err)
		return nil, err
	}

	pending := disbursement.PaymentStatusPending
	payments, err := s.paymentRepo.FindByPeriod(ctx, req.PeriodID, disbursement.PaymentFilter{
		Status:   &pending,
		MethodID: &req.MethodID,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load pending cash payments: %w", err)
	}

	deadline := req.UnclaimedDeadline
	if deadline.IsZero() {
		deadline = now.AddDate(0, 0, s.unclaimedDays)
	}

	batch, err := disbursement.NewCashDistributionBatch(
		s.generateBatchNumber(now), req.PeriodID, req.MethodID, deadline, now)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	added := 0
	for i := range payments {
		p := &payments[i]
		if p.BatchID != nil {
			continue
		}
		if err := batch.AddEnvelope(p.NetPay, now); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		observed := p.Version
		if err := p.AssignToBatch(batch.ID, now); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if err := s.paymentRepo.SaveWithLock(ctx, p, observed); err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to assign payment to batch: %w", err)
		}
		added++
	}
	if added == 0 {
		err := shared.NewDomainError("EMPTY_BATCH", "No unassigned pending cash payments for this period")
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.batchRepo.Save(ctx, batch); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save cash batch: %w", err)
	}
	s.audit(ctx, batch.ID, req.ActorID, "batch_created", "", now)

	s.logger.Info("cash batch built",
		zap.String("batch_id", batch.ID.String()),
		zap.String("batch_number", batch.BatchNumber),
		zap.Int("envelopes", batch.EnvelopeCount),
		zap.String("total", batch.TotalAmount.String()))
	return batch, nil
}

// GetBatch loads a batch by ID
func (s *CashBatchService) GetBatch(ctx context.Context, id uuid.UUID) (*disbursement.CashDistributionBatch, error) {
	batch, err := s.batchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load cash batch: %w", err)
	}
	if batch == nil {
		return nil, shared.NewDomainError("BATCH_NOT_FOUND", "Cash batch not found")
	}
	return batch, nil
}

// ListByPeriod lists cash batches for a period
func (s *CashBatchService) ListByPeriod(ctx context.Context, periodID uuid.UUID) ([]disbursement.CashDistributionBatch, error) {
	return s.batchRepo.FindByPeriod(ctx, periodID)
}

// RecordCount books the counter's envelope verification
func (s *CashBatchService) RecordCount(ctx context.Context, batchID, counterID uuid.UUID) (*disbursement.CashDistributionBatch, error) {
	return s.transition(ctx, batchID, counterID, "batch_counted", func(b *disbursement.CashDistributionBatch, now time.Time) error {
		return b.RecordCount(counterID, now)
	})
}

// RecordWitness books the independent witness sign-off
func (s *CashBatchService) RecordWitness(ctx context.Context, batchID, witnessID uuid.UUID) (*disbursement.CashDistributionBatch, error) {
	return s.transition(ctx, batchID, witnessID, "batch_witnessed", func(b *disbursement.CashDistributionBatch, now time.Time) error {
		return b.RecordWitness(witnessID, now)
	})
}

// StartDistribution begins handing out envelopes and moves the batch
// payments into processing
func (s *CashBatchService) StartDistribution(ctx context.Context, batchID, actorID uuid.UUID) (*disbursement.CashDistributionBatch, error) {
	batch, err := s.transition(ctx, batchID, actorID, "distribution_started", func(b *disbursement.CashDistributionBatch, now time.Time) error {
		return b.StartDistribution(now)
	})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := s.forEachBatchPayment(ctx, batch.ID, func(p *disbursement.PayrollPayment) error {
		return p.StartProcessing(now)
	}); err != nil {
		return nil, err
	}
	return batch, nil
}

// RecordClaim settles one envelope against its payment
func (s *CashBatchService) RecordClaim(ctx context.Context, batchID, paymentID, actorID uuid.UUID) (*disbursement.PayrollPayment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cash_batch", "record_claim")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrBatchID, batchID.String(),
		telemetry.SpanAttrPaymentID, paymentID.String(),
	)

	now := s.clock.Now()

	batch, err := s.GetBatch(ctx, batchID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil || payment.BatchID == nil || *payment.BatchID != batch.ID {
		err := shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment does not belong to this batch")
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := batch.RecordClaim(now); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	observed := payment.Version
	claimRef := fmt.Sprintf("CLAIM-%s", batch.BatchNumber)
	if err := payment.MarkAsPaid(claimRef, "", now); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.paymentRepo.SaveWithLock(ctx, payment, observed); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save claimed payment: %w", err)
	}
	if err := s.batchRepo.Save(ctx, batch); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save cash batch: %w", err)
	}
	s.audit(ctx, batch.ID, actorID, "envelope_claimed", payment.PaymentNumber, now)
	s.publishPaymentEvents(ctx, payment)
	telemetry.RecordPaymentTransition(ctx, string(disbursement.MethodTypeCash), string(payment.Status))

	return payment, nil
}

// SweepResult summarizes an unclaimed-envelope sweep
type SweepResult struct {
	BatchesSwept       int `json:"batches_swept"`
	EnvelopesUnclaimed int `json:"envelopes_unclaimed"`
}

// SweepUnclaimed flags every still-processing payment in distributing batches
// past their deadline as unclaimed. Scheduled daily; the treasury closes the
// batch with a redeposit reference afterwards.
func (s *CashBatchService) SweepUnclaimed(ctx context.Context) (*SweepResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cash_batch", "sweep_unclaimed")
	defer span.End()

	now := s.clock.Now()

	batches, err := s.batchRepo.FindPastDeadline(ctx, now)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to find batches past deadline: %w", err)
	}

	result := &SweepResult{}
	for i := range batches {
		batch := &batches[i]
		swept := 0
		if err := s.forEachBatchPayment(ctx, batch.ID, func(p *disbursement.PayrollPayment) error {
			if p.Status != disbursement.PaymentStatusProcessing {
				return nil
			}
			if err := p.MarkAsUnclaimed(now); err != nil {
				return err
			}
			if err := batch.RecordUnclaimed(now); err != nil {
				return err
			}
			swept++
			telemetry.RecordPaymentTransition(ctx, string(disbursement.MethodTypeCash), string(p.Status))
			return nil
		}); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if swept == 0 {
			continue
		}
		if err := s.batchRepo.Save(ctx, batch); err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to save swept batch: %w", err)
		}
		s.audit(ctx, batch.ID, uuid.Nil, "unclaimed_swept", fmt.Sprintf("%d envelopes", swept), now)
		result.BatchesSwept++
		result.EnvelopesUnclaimed += swept

		s.logger.Warn("unclaimed envelopes swept",
			zap.String("batch_id", batch.ID.String()),
			zap.Int("envelopes", swept))
	}
	return result, nil
}

// Close ends distribution. A redeposit reference is required when any
// envelope went unclaimed.
func (s *CashBatchService) Close(ctx context.Context, batchID, actorID uuid.UUID, redepositReference string) (*disbursement.CashDistributionBatch, error) {
	return s.transition(ctx, batchID, actorID, "batch_closed", func(b *disbursement.CashDistributionBatch, now time.Time) error {
		return b.Close(redepositReference, now)
	})
}

func (s *CashBatchService) transition(ctx context.Context, batchID, actorID uuid.UUID, action string, fn func(*disbursement.CashDistributionBatch, time.Time) error) (*disbursement.CashDistributionBatch, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cash_batch", strings.TrimPrefix(action, "batch_"))
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrBatchID, batchID.String())

	now := s.clock.Now()

	batch, err := s.GetBatch(ctx, batchID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := fn(batch, now); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.batchRepo.Save(ctx, batch); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save cash batch: %w", err)
	}
	s.audit(ctx, batch.ID, actorID, action, string(batch.Status), now)

	s.logger.Info("cash batch transitioned",
		zap.String("batch_id", batch.ID.String()),
		zap.String("action", action),
		zap.String("status", string(batch.Status)))
	return batch, nil
}

func (s *CashBatchService) forEachBatchPayment(ctx context.Context, batchID uuid.UUID, fn func(*disbursement.PayrollPayment) error) error {
	payments, err := s.paymentRepo.FindByBatch(ctx, batchID)
	if err != nil {
		return fmt.Errorf("failed to load batch payments: %w", err)
	}
	for i := range payments {
		p := &payments[i]
		observed := p.Version
		before := p.Status
		if err := fn(p); err != nil {
			return err
		}
		if p.Status == before {
			continue
		}
		if err := s.paymentRepo.SaveWithLock(ctx, p, observed); err != nil {
			return fmt.Errorf("failed to save batch payment: %w", err)
		}
		s.publishPaymentEvents(ctx, p)
	}
	return nil
}

func (s *CashBatchService) audit(ctx context.Context, batchID, actorID uuid.UUID, action, remarks string, now time.Time) {
	entry, err := disbursement.NewPaymentAuditLog(
		disbursement.AuditEntityCashBatch, batchID, actorID, action, nil, nil, remarks, now)
	if err != nil {
		s.logger.Error("failed to build audit entry", zap.Error(err))
		return
	}
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append audit entry", zap.Error(err))
	}
}

func (s *CashBatchService) publishPaymentEvents(ctx context.Context, payment *disbursement.PayrollPayment) {
	events := payment.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish payment events",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err))
	}
	payment.ClearDomainEvents()
}

func (s *CashBatchService) generateBatchNumber(now time.Time) string {
	return fmt.Sprintf("CD-%s-%s", now.Format("20060102"), strings.ToUpper(uuid.NewString()[:6]))
}
