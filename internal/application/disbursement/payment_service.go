package disbursement

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suweldo/payroll-backend/internal/domain/disbursement"
	"github.com/suweldo/payroll-backend/internal/domain/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
	"github.com/suweldo/payroll-backend/internal/infrastructure/telemetry"
)

// PaymentService materializes payments from locked calculations and drives
// them through the gateway, including the retry and reissue paths.
type PaymentService struct {
	paymentRepo disbursement.PaymentRepository
	methodRepo  disbursement.MethodRepository
	periodRepo  payroll.PayrollPeriodRepository
	calcRepo    payroll.CalculationRepository
	profileRepo payroll.ProfileRepository
	auditRepo   disbursement.AuditLogRepository
	gateway     PaymentGateway
	idempotency shared.IdempotencyStore
	idemConfig  shared.IdempotencyConfig
	publisher   EventPublisher
	clock       shared.Clock
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo disbursement.PaymentRepository,
	methodRepo disbursement.MethodRepository,
	periodRepo payroll.PayrollPeriodRepository,
	calcRepo payroll.CalculationRepository,
	profileRepo payroll.ProfileRepository,
	auditRepo disbursement.AuditLogRepository,
	gateway PaymentGateway,
	idempotency shared.IdempotencyStore,
	idemConfig shared.IdempotencyConfig,
	publisher EventPublisher,
	clock shared.Clock,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		methodRepo:  methodRepo,
		periodRepo:  periodRepo,
		calcRepo:    calcRepo,
		profileRepo: profileRepo,
		auditRepo:   auditRepo,
		gateway:     gateway,
		idempotency: idempotency,
		idemConfig:  idemConfig,
		publisher:   publisher,
		clock:       clock,
		logger:      logger,
	}
}

// CreatePaymentsResult summarizes payment materialization for a period
type CreatePaymentsResult struct {
	PeriodID        uuid.UUID `json:"period_id"`
	PaymentsCreated int       `json:"payments_created"`
	Skipped         int       `json:"skipped"`
	CashFallbacks   int       `json:"cash_fallbacks"`
}

// CreatePeriodPayments materializes one payment per locked calculation with a
// positive final net pay. Calculations that already have a payment are
// skipped, so the operation is safe to re-run after a partial failure.
func (s *PaymentService) CreatePeriodPayments(ctx context.Context, periodID, actorID uuid.UUID) (*CreatePaymentsResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "disbursement_payment", "create_period_payments")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPeriodID, periodID.String())

	now := s.clock.Now()

	period, err := s.periodRepo.FindByID(ctx, periodID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load period: %w", err)
	}
	if period == nil {
		err := shared.NewDomainError("PERIOD_NOT_FOUND", "Payroll period not found")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !period.IsLocked() {
		err := shared.NewDomainError("INVALID_STATE", "Payments are created only from a locked period")
		telemetry.RecordError(span, err)
		return nil, err
	}

	calcs, err := s.calcRepo.FindByPeriod(ctx, periodID, payroll.CalculationFilter{CurrentOnly: true})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load period calculations: %w", err)
	}

	result := &CreatePaymentsResult{PeriodID: periodID}
	for i := range calcs {
		calc := &calcs[i]
		if !calc.IsLocked() || !calc.FinalNetPay.IsPositive() {
			result.Skipped++
			continue
		}

		existing, err := s.paymentRepo.FindByCalculation(ctx, calc.ID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to check existing payment: %w", err)
		}
		if existing != nil {
			result.Skipped++
			continue
		}

		payment, fellBack, err := s.materializePayment(ctx, calc, actorID, now)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		result.PaymentsCreated++
		if fellBack {
			result.CashFallbacks++
		}

		s.logger.Info("payment created",
			zap.String("payment_id", payment.ID.String()),
			zap.String("payment_number", payment.PaymentNumber),
			zap.String("employee_id", payment.EmployeeID.String()),
			zap.String("net_pay", payment.NetPay.String()),
			zap.Bool("cash_fallback", fellBack))
	}

	telemetry.SetAttributes(span, "payments_created", result.PaymentsCreated)
	return result, nil
}

func (s *PaymentService) materializePayment(ctx context.Context, calc *payroll.EmployeePayrollCalculation, actorID uuid.UUID, now time.Time) (*disbursement.PayrollPayment, bool, error) {
	method, fellBack, err := s.resolveMethod(ctx, calc, now)
	if err != nil {
		return nil, false, err
	}

	// Adjustments ride on the gross side so the payment's derived net pay
	// lands exactly on the calculation's final net pay.
	gross := calc.GrossPay.Add(calc.AdjustmentsTotal)

	payment, err := disbursement.NewPayrollPayment(
		s.generatePaymentNumber(now),
		calc.PeriodID, calc.ID, calc.EmployeeID,
		calc.EmployeeNumber,
		method.ID,
		gross,
		calc.SSSContribution, calc.PhilHealthContribution, calc.PagIbigContribution,
		calc.WithholdingTax, calc.LoanDeductions, calc.AdvanceDeductions,
		calc.TardinessDeduction, calc.AbsenceDeduction, calc.OtherDeductions,
		now,
	)
	if err != nil {
		return nil, false, err
	}
	if err := payment.Reconcile(); err != nil {
		return nil, false, err
	}
	if !payment.NetPay.Equal(calc.FinalNetPay) {
		return nil, false, shared.NewDomainError("INTEGRITY_VIOLATION",
			fmt.Sprintf("Payment net %s does not match calculation final net %s", payment.NetPay, calc.FinalNetPay))
	}

	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, false, fmt.Errorf("failed to save payment: %w", err)
	}
	s.audit(ctx, disbursement.AuditEntityPayment, payment.ID, actorID, "payment_created",
		nil, statusJSON(string(payment.Status)), "", now)
	s.publishPaymentEvents(ctx, payment)
	telemetry.RecordPaymentTransition(ctx, string(method.MethodType), string(payment.Status))

	return payment, fellBack, nil
}

// resolveMethod picks the employee's preferred channel when it is enabled,
// within cutoff, and supports the amount; anything else falls back to cash.
func (s *PaymentService) resolveMethod(ctx context.Context, calc *payroll.EmployeePayrollCalculation, now time.Time) (*disbursement.PaymentMethod, bool, error) {
	profile, err := s.profileRepo.FindByEmployee(ctx, calc.EmployeeID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load employee profile: %w", err)
	}

	if profile != nil && profile.PaymentMethodID != nil {
		method, err := s.methodRepo.FindByID(ctx, *profile.PaymentMethodID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load payment method: %w", err)
		}
		if method != nil && method.IsAvailableForPayment(now) && method.SupportsAmount(calc.FinalNetPay) {
			return method, false, nil
		}
	}

	cash, err := s.cashFallback(ctx)
	if err != nil {
		return nil, false, err
	}
	return cash, true, nil
}

func (s *PaymentService) cashFallback(ctx context.Context) (*disbursement.PaymentMethod, error) {
	methods, err := s.methodRepo.FindByType(ctx, disbursement.MethodTypeCash)
	if err != nil {
		return nil, fmt.Errorf("failed to load cash methods: %w", err)
	}
	if len(methods) == 0 {
		return nil, shared.NewDomainError("NO_CASH_FALLBACK", "No enabled cash method is configured")
	}
	return &methods[0], nil
}

// GetPayment loads a payment by ID
func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*disbursement.PayrollPayment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return nil, shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
	}
	return payment, nil
}

// ListByPeriod lists payments for a period
func (s *PaymentService) ListByPeriod(ctx context.Context, periodID uuid.UUID, filter disbursement.PaymentFilter) ([]disbursement.PayrollPayment, error) {
	return s.paymentRepo.FindByPeriod(ctx, periodID, filter)
}

// StatusSummary counts a period's payments per status
func (s *PaymentService) StatusSummary(ctx context.Context, periodID uuid.UUID) (map[disbursement.PaymentStatus]int64, error) {
	return s.paymentRepo.CountByStatus(ctx, periodID)
}

// DispatchPayment sends one pending payment through the gateway. Used for
// gateway rails; bank file and cash payments settle through their batches.
func (s *PaymentService) DispatchPayment(ctx context.Context, paymentID, actorID uuid.UUID) (*disbursement.PayrollPayment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "disbursement_payment", "dispatch")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPaymentID, paymentID.String())

	payment, err := s.GetPayment(ctx, paymentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return s.dispatch(ctx, payment, actorID)
}

// RetryFailedResult summarizes a retry run
type RetryFailedResult struct {
	Attempted int `json:"attempted"`
	Paid      int `json:"paid"`
	Failed    int `json:"failed"`
}

// RetryFailed re-dispatches every retryable failed payment in a period. Each
// attempt burns one unit of the payment's retry budget; payments at the cap
// are excluded by the query and must be reissued instead.
func (s *PaymentService) RetryFailed(ctx context.Context, periodID, actorID uuid.UUID) (*RetryFailedResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "disbursement_payment", "retry_failed")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPeriodID, periodID.String())

	now := s.clock.Now()

	retryable, err := s.paymentRepo.FindRetryable(ctx, periodID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to find retryable payments: %w", err)
	}

	result := &RetryFailedResult{}
	for i := range retryable {
		payment := &retryable[i]
		method, err := s.loadMethod(ctx, payment.MethodID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}

		observed := payment.Version
		if err := payment.RecordRetry(now); err != nil {
			telemetry.RecordError(span, err)
			s.logger.Warn("skipping non-retryable payment",
				zap.String("payment_id", payment.ID.String()),
				zap.Error(err))
			continue
		}
		if err := s.paymentRepo.SaveWithLock(ctx, payment, observed); err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to save payment retry: %w", err)
		}
		telemetry.RecordPaymentRetry(ctx, string(method.MethodType))

		result.Attempted++
		if _, err := s.dispatch(ctx, payment, actorID); err != nil {
			result.Failed++
			continue
		}
		result.Paid++
	}
	return result, nil
}

func (s *PaymentService) dispatch(ctx context.Context, payment *disbursement.PayrollPayment, actorID uuid.UUID) (*disbursement.PayrollPayment, error) {
	now := s.clock.Now()

	method, err := s.loadMethod(ctx, payment.MethodID)
	if err != nil {
		return nil, err
	}

	fromStatus := string(payment.Status)
	observed := payment.Version
	if err := payment.StartProcessing(now); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.SaveWithLock(ctx, payment, observed); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}
	s.audit(ctx, disbursement.AuditEntityPayment, payment.ID, actorID, "payment_processing",
		statusJSON(fromStatus), statusJSON(string(payment.Status)), "", now)

	receipt, gatewayErr := s.gateway.Disburse(ctx, payment, method)

	observed = payment.Version
	if gatewayErr != nil {
		if err := payment.MarkAsFailed(gatewayErr.Error(), "", now); err != nil {
			return nil, err
		}
		if err := s.paymentRepo.SaveWithLock(ctx, payment, observed); err != nil {
			return nil, fmt.Errorf("failed to save failed payment: %w", err)
		}
		s.audit(ctx, disbursement.AuditEntityPayment, payment.ID, actorID, "payment_failed",
			statusJSON("processing"), statusJSON(string(payment.Status)), gatewayErr.Error(), now)
		s.publishPaymentEvents(ctx, payment)
		telemetry.RecordPaymentTransition(ctx, string(method.MethodType), string(payment.Status))

		s.logger.Error("payment dispatch failed",
			zap.String("payment_id", payment.ID.String()),
			zap.Int("retry_count", payment.RetryCount),
			zap.Error(gatewayErr))
		return nil, fmt.Errorf("gateway dispatch failed: %w", gatewayErr)
	}

	if err := payment.MarkAsPaid(receipt.ConfirmationCode, receipt.ProviderResponse, now); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.SaveWithLock(ctx, payment, observed); err != nil {
		return nil, fmt.Errorf("failed to save paid payment: %w", err)
	}
	s.audit(ctx, disbursement.AuditEntityPayment, payment.ID, actorID, "payment_paid",
		statusJSON("processing"), statusJSON(string(payment.Status)), receipt.ConfirmationCode, now)
	s.publishPaymentEvents(ctx, payment)
	telemetry.RecordPaymentTransition(ctx, string(method.MethodType), string(payment.Status))

	s.logger.Info("payment paid",
		zap.String("payment_id", payment.ID.String()),
		zap.String("payment_number", payment.PaymentNumber),
		zap.String("confirmation_code", receipt.ConfirmationCode))
	return payment, nil
}

// Reissue creates a replacement payment for one that exhausted its retries
// or went unclaimed. The original stays on the books; the replacement links
// back to it.
func (s *PaymentService) Reissue(ctx context.Context, paymentID, methodID, actorID uuid.UUID) (*disbursement.PayrollPayment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "disbursement_payment", "reissue")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPaymentID, paymentID.String())

	now := s.clock.Now()

	payment, err := s.GetPayment(ctx, paymentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	method, err := s.loadMethod(ctx, methodID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !method.IsAvailableForPayment(now) || !method.SupportsAmount(payment.NetPay) {
		err := shared.NewDomainError("METHOD_UNAVAILABLE", "Requested method cannot take this payment")
		telemetry.RecordError(span, err)
		return nil, err
	}

	replacement, err := payment.Reissue(s.generatePaymentNumber(now), methodID, now)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.paymentRepo.Save(ctx, replacement); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save reissued payment: %w", err)
	}
	s.audit(ctx, disbursement.AuditEntityPayment, replacement.ID, actorID, "payment_reissued",
		statusJSON(string(payment.Status)), statusJSON(string(replacement.Status)),
		fmt.Sprintf("reissued from %s", payment.PaymentNumber), now)
	s.publishPaymentEvents(ctx, replacement)

	s.logger.Info("payment reissued",
		zap.String("original_id", payment.ID.String()),
		zap.String("replacement_id", replacement.ID.String()),
		zap.String("method_id", methodID.String()))
	return replacement, nil
}

// ConfirmSettlementRequest acknowledges a provider settlement callback
type ConfirmSettlementRequest struct {
	PaymentNumber    string `json:"payment_number" binding:"required"`
	ConfirmationCode string `json:"confirmation_code" binding:"required"`
	ProviderResponse string `json:"provider_response"`
	// IdempotencyKey deduplicates provider callbacks; replays are acknowledged
	// without reprocessing
	IdempotencyKey string `json:"idempotency_key" binding:"required"`
}

// ConfirmSettlement settles a processing payment from a provider callback.
// Duplicate callbacks (same idempotency key) are absorbed silently.
func (s *PaymentService) ConfirmSettlement(ctx context.Context, req ConfirmSettlementRequest) (*disbursement.PayrollPayment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "disbursement_payment", "confirm_settlement")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPaymentNumber, req.PaymentNumber)

	now := s.clock.Now()

	if s.idemConfig.Enabled {
		fresh, err := s.idempotency.MarkProcessed(ctx, "settlement:"+req.IdempotencyKey, s.idemConfig.TTL)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !fresh {
			s.logger.Info("duplicate settlement callback absorbed",
				zap.String("payment_number", req.PaymentNumber),
				zap.String("idempotency_key", req.IdempotencyKey))
			return s.paymentRepo.FindByPaymentNumber(ctx, req.PaymentNumber)
		}
	}

	payment, err := s.paymentRepo.FindByPaymentNumber(ctx, req.PaymentNumber)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		err := shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	observed := payment.Version
	if err := payment.MarkAsPaid(req.ConfirmationCode, req.ProviderResponse, now); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.paymentRepo.SaveWithLock(ctx, payment, observed); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save settled payment: %w", err)
	}
	s.audit(ctx, disbursement.AuditEntityPayment, payment.ID, uuid.Nil, "settlement_confirmed",
		statusJSON("processing"), statusJSON(string(payment.Status)), req.ConfirmationCode, now)
	s.publishPaymentEvents(ctx, payment)

	return payment, nil
}

// AuditTrail returns the append-only audit rows for a payment
func (s *PaymentService) AuditTrail(ctx context.Context, paymentID uuid.UUID) ([]disbursement.PaymentAuditLog, error) {
	return s.auditRepo.FindByEntity(ctx, disbursement.AuditEntityPayment, paymentID)
}

func (s *PaymentService) loadMethod(ctx context.Context, methodID uuid.UUID) (*disbursement.PaymentMethod, error) {
	method, err := s.methodRepo.FindByID(ctx, methodID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment method: %w", err)
	}
	if method == nil {
		return nil, shared.NewDomainError("METHOD_NOT_FOUND", "Payment method not found")
	}
	return method, nil
}

func (s *PaymentService) audit(ctx context.Context, entityType disbursement.AuditEntityType, entityID, actorID uuid.UUID, action string, oldValues, newValues []byte, remarks string, now time.Time) {
	entry, err := disbursement.NewPaymentAuditLog(entityType, entityID, actorID, action, oldValues, newValues, remarks, now)
	if err != nil {
		s.logger.Error("failed to build audit entry",
			zap.String("entity_id", entityID.String()),
			zap.String("action", action),
			zap.Error(err))
		return
	}
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append audit entry",
			zap.String("entity_id", entityID.String()),
			zap.String("action", action),
			zap.Error(err))
	}
}

func (s *PaymentService) publishPaymentEvents(ctx context.Context, payment *disbursement.PayrollPayment) {
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

func (s *PaymentService) generatePaymentNumber(now time.Time) string {
	return fmt.Sprintf("PAY-%s-%s", now.Format("20060102"), strings.ToUpper(uuid.NewString()[:8]))
}

func statusJSON(status string) []byte {
	b, _ := json.Marshal(map[string]string{"status": status})
	return b
}
