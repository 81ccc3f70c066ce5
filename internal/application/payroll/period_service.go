package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suweldo/payroll-backend/internal/domain/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
	"github.com/suweldo/payroll-backend/internal/infrastructure/telemetry"
)

// PeriodService drives the period approval workflow. Every transition is
// recorded in the append-only approval history with a snapshot of the
// period totals at that moment.
type PeriodService struct {
	periodRepo  payroll.PayrollPeriodRepository
	calcRepo    payroll.CalculationRepository
	historyRepo payroll.ApprovalHistoryRepository
	logRepo     payroll.CalculationLogRepository
	publisher   EventPublisher
	clock       shared.Clock
	logger      *zap.Logger
}

// NewPeriodService creates a new PeriodService
func NewPeriodService(
	periodRepo payroll.PayrollPeriodRepository,
	calcRepo payroll.CalculationRepository,
	historyRepo payroll.ApprovalHistoryRepository,
	logRepo payroll.CalculationLogRepository,
	publisher EventPublisher,
	clock shared.Clock,
	logger *zap.Logger,
) *PeriodService {
	return &PeriodService{
		periodRepo:  periodRepo,
		calcRepo:    calcRepo,
		historyRepo: historyRepo,
		logRepo:     logRepo,
		publisher:   publisher,
		clock:       clock,
		logger:      logger,
	}
}

// CreatePeriodRequest carries the inputs for a new draft period
type CreatePeriodRequest struct {
	PeriodNumber      string    `json:"period_number" binding:"required"`
	StartDate         time.Time `json:"start_date" binding:"required"`
	EndDate           time.Time `json:"end_date" binding:"required"`
	TimekeepingCutoff time.Time `json:"timekeeping_cutoff" binding:"required"`
	PayDate           time.Time `json:"pay_date" binding:"required"`
	ActorID           uuid.UUID `json:"-"`
	ActorRole         payroll.Role `json:"-"`
}

// TransitionRequest carries the actor context for a workflow transition
type TransitionRequest struct {
	PeriodID  uuid.UUID
	ActorID   uuid.UUID
	ActorRole payroll.Role
	// Comments doubles as override justification on submit, rejection
	// reason on reject and unlock reason on unlock
	Comments string
}

// CreatePeriod creates a draft period after checking for date overlap
func (s *PeriodService) CreatePeriod(ctx context.Context, req CreatePeriodRequest) (*payroll.PayrollPeriod, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payroll_period", "create")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPeriodNumber, req.PeriodNumber)

	now := s.clock.Now()

	overlapping, err := s.periodRepo.FindOverlapping(ctx, req.StartDate, req.EndDate)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to check overlapping periods: %w", err)
	}
	if len(overlapping) > 0 {
		err := shared.NewDomainError("PERIOD_OVERLAP",
			fmt.Sprintf("Date range overlaps existing period %s", overlapping[0].PeriodNumber))
		telemetry.RecordError(span, err)
		return nil, err
	}

	period, err := payroll.NewPayrollPeriod(req.PeriodNumber, req.StartDate, req.EndDate, req.TimekeepingCutoff, req.PayDate, now)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.periodRepo.Save(ctx, period); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save period: %w", err)
	}

	s.appendHistory(ctx, payroll.LogPeriodAction(period, "created", payroll.PeriodStatusDraft, req.ActorID, req.ActorRole, "", now))
	s.publishEvents(ctx, period)
	return period, nil
}

// GetPeriod loads one period by ID
func (s *PeriodService) GetPeriod(ctx context.Context, id uuid.UUID) (*payroll.PayrollPeriod, error) {
	period, err := s.periodRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load period: %w", err)
	}
	if period == nil {
		return nil, shared.NewDomainError("PERIOD_NOT_FOUND", "Payroll period not found")
	}
	return period, nil
}

// ListPeriods lists periods matching the filter
func (s *PeriodService) ListPeriods(ctx context.Context, filter payroll.PeriodFilter) (shared.Paginated[payroll.PayrollPeriod], error) {
	periods, err := s.periodRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[payroll.PayrollPeriod]{}, fmt.Errorf("failed to list periods: %w", err)
	}
	total, err := s.periodRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[payroll.PayrollPeriod]{}, fmt.Errorf("failed to count periods: %w", err)
	}
	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = len(periods)
		if pageSize == 0 {
			pageSize = 1
		}
	}
	return shared.NewPaginated(periods, total, page, pageSize), nil
}

// History returns the append-only approval trail for a period
func (s *PeriodService) History(ctx context.Context, periodID uuid.UUID) ([]payroll.PayrollApprovalHistory, error) {
	return s.historyRepo.FindByPeriod(ctx, periodID)
}

// SubmitForReview submits a calculated period for review
func (s *PeriodService) SubmitForReview(ctx context.Context, req TransitionRequest) (*payroll.PayrollPeriod, error) {
	return s.transition(ctx, req, "submitted", func(p *payroll.PayrollPeriod, now time.Time) error {
		return p.SubmitForReview(req.ActorID, req.ActorRole, req.Comments, now)
	})
}

// Approve approves a period under review. Before approving, every current
// calculation is reconciled; an integrity violation blocks approval.
func (s *PeriodService) Approve(ctx context.Context, req TransitionRequest) (*payroll.PayrollPeriod, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payroll_period", "approve")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPeriodID, req.PeriodID.String())

	if err := s.reconcilePeriod(ctx, req.PeriodID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	return s.transition(ctx, req, "approved", func(p *payroll.PayrollPeriod, now time.Time) error {
		return p.Approve(req.ActorID, req.ActorRole, now)
	})
}

// Reject sends a period under review back to draft for rework
func (s *PeriodService) Reject(ctx context.Context, req TransitionRequest) (*payroll.PayrollPeriod, error) {
	return s.transition(ctx, req, "rejected", func(p *payroll.PayrollPeriod, now time.Time) error {
		return p.Reject(req.ActorID, req.ActorRole, req.Comments, now)
	})
}

// Finalize fixes the approved totals ahead of locking
func (s *PeriodService) Finalize(ctx context.Context, req TransitionRequest) (*payroll.PayrollPeriod, error) {
	return s.transition(ctx, req, "finalized", func(p *payroll.PayrollPeriod, now time.Time) error {
		return p.Finalize(req.ActorID, now)
	})
}

// Lock freezes the period and every current calculation version in it.
// Locked calculation rows are immutable; corrections go through adjustments.
func (s *PeriodService) Lock(ctx context.Context, req TransitionRequest) (*payroll.PayrollPeriod, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payroll_period", "lock")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPeriodID, req.PeriodID.String())

	period, err := s.transition(ctx, req, "locked", func(p *payroll.PayrollPeriod, now time.Time) error {
		return p.Lock(req.ActorID, now)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	now := s.clock.Now()
	calcs, err := s.calcRepo.FindByPeriod(ctx, period.ID, payroll.CalculationFilter{CurrentOnly: true})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load calculations for locking: %w", err)
	}
	for i := range calcs {
		calc := &calcs[i]
		if calc.HasException {
			// Exception rows stay unlocked for rework after an unlock.
			continue
		}
		if err := calc.Lock(req.ActorID, now); err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to lock calculation %s: %w", calc.ID, err)
		}
		if err := s.calcRepo.Save(ctx, calc); err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to save locked calculation %s: %w", calc.ID, err)
		}
	}
	return period, nil
}

// Unlock reopens a locked period; requires an elevated role and a reason
func (s *PeriodService) Unlock(ctx context.Context, req TransitionRequest) (*payroll.PayrollPeriod, error) {
	return s.transition(ctx, req, "unlocked", func(p *payroll.PayrollPeriod, now time.Time) error {
		return p.Unlock(req.ActorID, req.ActorRole, req.Comments, now)
	})
}

// Complete closes out a locked period once disbursement has settled
func (s *PeriodService) Complete(ctx context.Context, req TransitionRequest) (*payroll.PayrollPeriod, error) {
	return s.transition(ctx, req, "completed", func(p *payroll.PayrollPeriod, now time.Time) error {
		return p.Complete(now)
	})
}

// transition runs one guarded state change under optimistic locking and
// appends the approval history row.
func (s *PeriodService) transition(ctx context.Context, req TransitionRequest, action string, fn func(*payroll.PayrollPeriod, time.Time) error) (*payroll.PayrollPeriod, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payroll_period", action)
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPeriodID, req.PeriodID.String())

	period, err := s.GetPeriod(ctx, req.PeriodID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	now := s.clock.Now()
	fromStatus := period.Status
	observed := period.Version

	if err := fn(period, now); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.periodRepo.SaveWithLock(ctx, period, observed); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save period transition: %w", err)
	}

	s.appendHistory(ctx, payroll.LogPeriodAction(period, action, fromStatus, req.ActorID, req.ActorRole, req.Comments, now))
	s.publishEvents(ctx, period)

	s.logger.Info("period transition",
		zap.String("period_id", period.ID.String()),
		zap.String("action", action),
		zap.String("from", string(fromStatus)),
		zap.String("to", string(period.Status)))
	return period, nil
}

// reconcilePeriod verifies the money invariants of every current calculation.
// A violation is logged at critical severity and blocks approval.
func (s *PeriodService) reconcilePeriod(ctx context.Context, periodID uuid.UUID) error {
	calcs, err := s.calcRepo.FindByPeriod(ctx, periodID, payroll.CalculationFilter{CurrentOnly: true})
	if err != nil {
		return fmt.Errorf("failed to load calculations for reconciliation: %w", err)
	}
	now := s.clock.Now()
	for i := range calcs {
		if err := calcs[i].Reconcile(); err != nil {
			entry := payroll.LogEmployeeCalculation(periodID, calcs[i].EmployeeID, &calcs[i].ID,
				payroll.SeverityCritical, "reconcile", err.Error(), now)
			if logErr := s.logRepo.Append(ctx, entry); logErr != nil {
				s.logger.Warn("failed to append reconciliation log", zap.Error(logErr))
			}
			return err
		}
	}
	return nil
}

func (s *PeriodService) appendHistory(ctx context.Context, entry *payroll.PayrollApprovalHistory) {
	if err := s.historyRepo.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append approval history",
			zap.String("period_id", entry.PeriodID.String()),
			zap.String("action", entry.Action),
			zap.Error(err))
	}
}

func (s *PeriodService) publishEvents(ctx context.Context, period *payroll.PayrollPeriod) {
	events := period.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish period events", zap.Error(err))
	}
	period.ClearDomainEvents()
}
