package payroll

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/suweldo/payroll-backend/internal/domain/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
	"github.com/suweldo/payroll-backend/internal/infrastructure/telemetry"
)

// systemActor stands in as the approver when policy auto-approves an
// adjustment below the approval threshold.
var systemActor = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// AdjustmentService manages the correction workflow: propose, approve or
// reject, then apply onto a new calculation version.
type AdjustmentService struct {
	periodRepo     payroll.PayrollPeriodRepository
	calcRepo       payroll.CalculationRepository
	adjustmentRepo payroll.AdjustmentRepository
	publisher      EventPublisher
	policy         CalculationPolicy
	clock          shared.Clock
	logger         *zap.Logger
}

// NewAdjustmentService creates a new AdjustmentService
func NewAdjustmentService(
	periodRepo payroll.PayrollPeriodRepository,
	calcRepo payroll.CalculationRepository,
	adjustmentRepo payroll.AdjustmentRepository,
	publisher EventPublisher,
	policy CalculationPolicy,
	clock shared.Clock,
	logger *zap.Logger,
) *AdjustmentService {
	return &AdjustmentService{
		periodRepo:     periodRepo,
		calcRepo:       calcRepo,
		adjustmentRepo: adjustmentRepo,
		publisher:      publisher,
		policy:         policy,
		clock:          clock,
		logger:         logger,
	}
}

// ProposeAdjustmentRequest carries a proposed correction
type ProposeAdjustmentRequest struct {
	CalculationID  uuid.UUID              `json:"calculation_id" binding:"required"`
	Type           payroll.AdjustmentType `json:"type" binding:"required"`
	Amount         decimal.Decimal        `json:"amount"`
	AdjustedAmount decimal.Decimal        `json:"adjusted_amount"`
	Reason         string                 `json:"reason" binding:"required"`
	RequestedBy    uuid.UUID              `json:"-"`
}

// ProposeAdjustment proposes a correction against the current head of a
// calculation chain. Adjustments below the approval threshold are
// auto-approved; the rest wait for a second approver.
func (s *AdjustmentService) ProposeAdjustment(ctx context.Context, req ProposeAdjustmentRequest) (*payroll.PayrollAdjustment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payroll_adjustment", "propose")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrCalculationID, req.CalculationID.String())

	now := s.clock.Now()

	calc, err := s.calcRepo.FindByID(ctx, req.CalculationID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load calculation: %w", err)
	}
	if calc == nil {
		err := shared.NewDomainError("CALCULATION_NOT_FOUND", "Calculation not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	adjustment, err := payroll.NewPayrollAdjustment(
		calc.PeriodID, calc.ID, calc.EmployeeID, req.RequestedBy,
		req.Type, req.Amount, calc.FinalNetPay, req.AdjustedAmount,
		req.Reason, now)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if !adjustment.NeedsApproval(s.policy.AdjustmentApprovalThreshold) {
		if err := adjustment.Approve(systemActor, now); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if err := s.adjustmentRepo.Save(ctx, adjustment); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save adjustment: %w", err)
	}
	s.publishAdjustmentEvents(ctx, adjustment)
	return adjustment, nil
}

// ApproveAdjustment approves a pending adjustment. The approver must differ
// from the requester.
func (s *AdjustmentService) ApproveAdjustment(ctx context.Context, adjustmentID, actorID uuid.UUID) (*payroll.PayrollAdjustment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payroll_adjustment", "approve")
	defer span.End()

	adjustment, err := s.loadAdjustment(ctx, adjustmentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := adjustment.Approve(actorID, s.clock.Now()); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.adjustmentRepo.Save(ctx, adjustment); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save adjustment: %w", err)
	}
	s.publishAdjustmentEvents(ctx, adjustment)
	return adjustment, nil
}

// RejectAdjustment rejects a pending adjustment with a mandatory reason
func (s *AdjustmentService) RejectAdjustment(ctx context.Context, adjustmentID, actorID uuid.UUID, reason string) (*payroll.PayrollAdjustment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payroll_adjustment", "reject")
	defer span.End()

	adjustment, err := s.loadAdjustment(ctx, adjustmentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := adjustment.Reject(actorID, reason, s.clock.Now()); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.adjustmentRepo.Save(ctx, adjustment); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save adjustment: %w", err)
	}
	s.publishAdjustmentEvents(ctx, adjustment)
	return adjustment, nil
}

// ApplyAdjustmentResult reports the calculation version an adjustment landed on
type ApplyAdjustmentResult struct {
	Adjustment     *payroll.PayrollAdjustment          `json:"adjustment"`
	NewCalculation *payroll.EmployeePayrollCalculation `json:"new_calculation"`
}

// ApplyAdjustment folds an approved adjustment into the calculation chain.
// The head is locked (if it was not already) and a successor version carries
// the adjusted figures. The period itself must be unlocked: corrections to a
// locked period go through an audited unlock first.
func (s *AdjustmentService) ApplyAdjustment(ctx context.Context, adjustmentID, actorID uuid.UUID) (*ApplyAdjustmentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payroll_adjustment", "apply")
	defer span.End()

	now := s.clock.Now()

	adjustment, err := s.loadAdjustment(ctx, adjustmentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !adjustment.CanApply() {
		err := shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot apply adjustment in %s status", adjustment.Status))
		telemetry.RecordError(span, err)
		return nil, err
	}

	period, err := s.periodRepo.FindByID(ctx, adjustment.PeriodID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load period: %w", err)
	}
	if period == nil {
		err := shared.NewDomainError("PERIOD_NOT_FOUND", "Payroll period not found")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := period.EnsureMutable(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	head, err := s.calcRepo.FindCurrent(ctx, adjustment.PeriodID, adjustment.EmployeeID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load calculation head: %w", err)
	}
	if head == nil {
		err := shared.NewDomainError("CALCULATION_NOT_FOUND", "No calculation exists for this employee and period")
		telemetry.RecordError(span, err)
		return nil, err
	}

	signed := adjustment.SignedAmount()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCalculationID, head.ID.String(),
		telemetry.SpanAttrAmount, signed.String(),
	)

	// Adjustments never mutate the head in place: the head is locked and a
	// successor version carries the adjusted figures, so the pre-adjustment
	// row survives for audit.
	if !head.IsLocked() {
		if err := head.Lock(actorID, now); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}
	next := head.NewVersion(now)
	if err := next.ApplyAdjustment(signed, now); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.calcRepo.SaveNewVersion(ctx, head, next); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save new calculation version: %w", err)
	}
	applied := next

	if err := adjustment.MarkApplied(applied.ID, now); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.adjustmentRepo.Save(ctx, adjustment); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save applied adjustment: %w", err)
	}
	s.publishAdjustmentEvents(ctx, adjustment)

	s.logger.Info("adjustment applied",
		zap.String("adjustment_id", adjustment.ID.String()),
		zap.String("calculation_id", applied.ID.String()),
		zap.Int("calculation_version", applied.Version),
		zap.String("signed_amount", signed.String()))

	return &ApplyAdjustmentResult{Adjustment: adjustment, NewCalculation: applied}, nil
}

// ListByPeriod lists adjustments for a period
func (s *AdjustmentService) ListByPeriod(ctx context.Context, periodID uuid.UUID, filter payroll.AdjustmentFilter) ([]payroll.PayrollAdjustment, error) {
	return s.adjustmentRepo.FindByPeriod(ctx, periodID, filter)
}

func (s *AdjustmentService) loadAdjustment(ctx context.Context, id uuid.UUID) (*payroll.PayrollAdjustment, error) {
	adjustment, err := s.adjustmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load adjustment: %w", err)
	}
	if adjustment == nil {
		return nil, shared.NewDomainError("ADJUSTMENT_NOT_FOUND", "Adjustment not found")
	}
	return adjustment, nil
}

func (s *AdjustmentService) publishAdjustmentEvents(ctx context.Context, adjustment *payroll.PayrollAdjustment) {
	events := adjustment.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish adjustment events", zap.Error(err))
	}
	adjustment.ClearDomainEvents()
}
