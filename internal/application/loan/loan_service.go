package loan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/suweldo/payroll-backend/internal/domain/loan"
	"github.com/suweldo/payroll-backend/internal/domain/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
	"github.com/suweldo/payroll-backend/internal/infrastructure/telemetry"
)

// EventPublisher delivers domain events raised by loan aggregates.
type EventPublisher interface {
	Publish(ctx context.Context, events ...shared.DomainEvent) error
}

// LoanService manages employee loans and their amortization schedules.
// Installments are settled by the payroll engine; this service opens loans,
// posts the settlement ledger after a period locks, and runs the default sweep.
type LoanService struct {
	loanRepo        loan.LoanRepository
	installmentRepo loan.LoanDeductionRepository
	periodRepo      payroll.PayrollPeriodRepository
	calcRepo        payroll.CalculationRepository
	publisher       EventPublisher
	clock           shared.Clock
	logger          *zap.Logger
}

// NewLoanService creates a new LoanService
func NewLoanService(
	loanRepo loan.LoanRepository,
	installmentRepo loan.LoanDeductionRepository,
	periodRepo payroll.PayrollPeriodRepository,
	calcRepo payroll.CalculationRepository,
	publisher EventPublisher,
	clock shared.Clock,
	logger *zap.Logger,
) *LoanService {
	return &LoanService{
		loanRepo:        loanRepo,
		installmentRepo: installmentRepo,
		periodRepo:      periodRepo,
		calcRepo:        calcRepo,
		publisher:       publisher,
		clock:           clock,
		logger:          logger,
	}
}

// CreateLoanRequest opens a loan and generates its amortization schedule
type CreateLoanRequest struct {
	EmployeeID           uuid.UUID       `json:"employee_id" binding:"required"`
	LoanType             loan.LoanType   `json:"loan_type" binding:"required"`
	PrincipalAmount      decimal.Decimal `json:"principal_amount" binding:"required"`
	TotalLoanAmount      decimal.Decimal `json:"total_loan_amount" binding:"required"`
	NumberOfInstallments int             `json:"number_of_installments" binding:"required,min=1"`
	StartDate            time.Time       `json:"start_date" binding:"required"`
	// FirstDueDate defaults to the first semi-monthly pay date after StartDate
	FirstDueDate *time.Time `json:"first_due_date,omitempty"`
}

// CreateLoanResult returns the opened loan and its schedule
type CreateLoanResult struct {
	Loan     *loan.EmployeeLoan    `json:"loan"`
	Schedule []loan.LoanDeduction  `json:"schedule"`
}

// CreateLoan opens a loan and persists the full installment schedule. The
// level installment is the total divided evenly; the last installment absorbs
// the rounding remainder so the schedule sums exactly to the loan total.
func (s *LoanService) CreateLoan(ctx context.Context, req CreateLoanRequest) (*CreateLoanResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "loan", "create")
	defer span.End()

	now := s.clock.Now()
	installment := levelInstallment(req.TotalLoanAmount, req.NumberOfInstallments)

	l, err := loan.NewEmployeeLoan(
		s.generateLoanNumber(req.LoanType, now),
		req.EmployeeID,
		req.LoanType,
		req.PrincipalAmount,
		req.TotalLoanAmount,
		installment,
		req.NumberOfInstallments,
		req.StartDate,
		now,
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrLoanID, l.ID.String(),
		telemetry.SpanAttrLoanType, string(req.LoanType),
		telemetry.SpanAttrAmount, req.TotalLoanAmount.String(),
	)

	schedule, err := buildSchedule(l, req.FirstDueDate, now)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.loanRepo.Save(ctx, l); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}
	if err := s.installmentRepo.SaveBatch(ctx, schedule); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save installment schedule: %w", err)
	}
	s.publishEvents(ctx, l)

	s.logger.Info("loan opened",
		zap.String("loan_id", l.ID.String()),
		zap.String("loan_number", l.LoanNumber),
		zap.String("employee_id", l.EmployeeID.String()),
		zap.String("total", l.TotalLoanAmount.String()),
		zap.Int("installments", l.NumberOfInstallments))

	return &CreateLoanResult{Loan: l, Schedule: schedule}, nil
}

// GetLoan loads a loan by ID
func (s *LoanService) GetLoan(ctx context.Context, id uuid.UUID) (*loan.EmployeeLoan, error) {
	l, err := s.loanRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load loan: %w", err)
	}
	if l == nil {
		return nil, shared.NewDomainError("LOAN_NOT_FOUND", "Loan not found")
	}
	return l, nil
}

// ListLoans lists loans with filtering
func (s *LoanService) ListLoans(ctx context.Context, filter loan.LoanFilter) ([]loan.EmployeeLoan, error) {
	return s.loanRepo.FindAll(ctx, filter)
}

// Schedule returns the installment schedule for a loan
func (s *LoanService) Schedule(ctx context.Context, loanID uuid.UUID) ([]loan.LoanDeduction, error) {
	if _, err := s.GetLoan(ctx, loanID); err != nil {
		return nil, err
	}
	return s.installmentRepo.FindByLoan(ctx, loanID, loan.DeductionFilter{})
}

// Suspend pauses deductions on an active loan
func (s *LoanService) Suspend(ctx context.Context, loanID uuid.UUID, reason string) (*loan.EmployeeLoan, error) {
	return s.mutate(ctx, loanID, "suspend", func(l *loan.EmployeeLoan, now time.Time) error {
		return l.Suspend(reason, now)
	})
}

// Resume reactivates a suspended loan
func (s *LoanService) Resume(ctx context.Context, loanID uuid.UUID) (*loan.EmployeeLoan, error) {
	return s.mutate(ctx, loanID, "resume", func(l *loan.EmployeeLoan, now time.Time) error {
		return l.Resume(now)
	})
}

// Waive forgives the remaining balance of a loan
func (s *LoanService) Waive(ctx context.Context, loanID, actorID uuid.UUID, reason string) (*loan.EmployeeLoan, error) {
	return s.mutate(ctx, loanID, "waive", func(l *loan.EmployeeLoan, now time.Time) error {
		return l.Waive(actorID, reason, now)
	})
}

func (s *LoanService) mutate(ctx context.Context, loanID uuid.UUID, action string, fn func(*loan.EmployeeLoan, time.Time) error) (*loan.EmployeeLoan, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "loan", action)
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrLoanID, loanID.String())

	now := s.clock.Now()

	l, err := s.GetLoan(ctx, loanID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	observed := l.Version
	if err := fn(l, now); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.loanRepo.SaveWithLock(ctx, l, observed); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}
	s.publishEvents(ctx, l)

	s.logger.Info("loan state changed",
		zap.String("loan_id", l.ID.String()),
		zap.String("action", action),
		zap.String("status", string(l.Status)))

	return l, nil
}

// PostDeductionsResult summarizes a settlement posting run
type PostDeductionsResult struct {
	PeriodID           uuid.UUID       `json:"period_id"`
	InstallmentsPosted int             `json:"installments_posted"`
	LoansCompleted     int             `json:"loans_completed"`
	TotalPosted        decimal.Decimal `json:"total_posted"`
}

// PostPeriodDeductions settles due installments against a locked period. The
// payroll engine only withholds the amounts; this posting marks each due
// installment as deducted and moves the money onto the loan ledger. Running
// it twice is harmless: already-deducted installments no longer come back
// from the due query.
func (s *LoanService) PostPeriodDeductions(ctx context.Context, periodID uuid.UUID) (*PostDeductionsResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "loan", "post_period_deductions")
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
		err := shared.NewDomainError("INVALID_STATE", "Installments are posted only after the period locks")
		telemetry.RecordError(span, err)
		return nil, err
	}

	calcs, err := s.calcRepo.FindByPeriod(ctx, periodID, payroll.CalculationFilter{CurrentOnly: true})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load period calculations: %w", err)
	}

	result := &PostDeductionsResult{PeriodID: periodID, TotalPosted: decimal.Zero}
	for i := range calcs {
		calc := &calcs[i]
		if !calc.IsLocked() {
			// exception rows were never paid, leave their installments pending
			continue
		}
		if err := s.postEmployee(ctx, calc.EmployeeID, period, result, now); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	s.logger.Info("loan deductions posted",
		zap.String("period_id", periodID.String()),
		zap.Int("installments", result.InstallmentsPosted),
		zap.Int("loans_completed", result.LoansCompleted),
		zap.String("total", result.TotalPosted.String()))

	return result, nil
}

func (s *LoanService) postEmployee(ctx context.Context, employeeID uuid.UUID, period *payroll.PayrollPeriod, result *PostDeductionsResult, now time.Time) error {
	due, err := s.installmentRepo.FindDueForEmployee(ctx, employeeID, period.EndDate)
	if err != nil {
		return fmt.Errorf("failed to load due installments: %w", err)
	}

	for i := range due {
		installment := &due[i]
		amount := installment.OutstandingAmount()

		l, err := s.loanRepo.FindByID(ctx, installment.LoanID)
		if err != nil {
			return fmt.Errorf("failed to load loan: %w", err)
		}
		if l == nil || !l.IsActive() {
			continue
		}

		if err := installment.MarkDeducted(period.ID, now); err != nil {
			return err
		}
		if err := installment.Settle(amount, now); err != nil {
			return err
		}

		observed := l.Version
		if err := l.RecordDeduction(amount, now); err != nil {
			return err
		}
		if err := s.installmentRepo.Save(ctx, installment); err != nil {
			return fmt.Errorf("failed to save installment: %w", err)
		}
		if err := s.loanRepo.SaveWithLock(ctx, l, observed); err != nil {
			return fmt.Errorf("failed to save loan: %w", err)
		}
		s.publishEvents(ctx, l)

		result.InstallmentsPosted++
		result.TotalPosted = result.TotalPosted.Add(amount)
		if l.Status == loan.LoanStatusCompleted {
			result.LoansCompleted++
		}
	}
	return nil
}

// SweepResult summarizes a default sweep run
type SweepResult struct {
	LoansDefaulted int `json:"loans_defaulted"`
}

// SweepDefaults marks as defaulted every active loan with no deduction inside
// the grace window. Scheduled daily; the grace period is configurable.
func (s *LoanService) SweepDefaults(ctx context.Context, graceDays int) (*SweepResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "loan", "sweep_defaults")
	defer span.End()

	now := s.clock.Now()
	cutoff := now.AddDate(0, 0, -graceDays)

	stale, err := s.loanRepo.FindStale(ctx, cutoff)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to find stale loans: %w", err)
	}

	result := &SweepResult{}
	reason := fmt.Sprintf("No deduction recorded within %d days", graceDays)
	for i := range stale {
		l := &stale[i]
		observed := l.Version
		if err := l.MarkAsDefaulted(reason, now); err != nil {
			telemetry.RecordError(span, err)
			s.logger.Warn("skipping loan during default sweep",
				zap.String("loan_id", l.ID.String()),
				zap.Error(err))
			continue
		}
		if err := s.loanRepo.SaveWithLock(ctx, l, observed); err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to save defaulted loan: %w", err)
		}
		s.publishEvents(ctx, l)
		result.LoansDefaulted++

		s.logger.Warn("loan defaulted",
			zap.String("loan_id", l.ID.String()),
			zap.String("loan_number", l.LoanNumber),
			zap.String("remaining", l.RemainingBalance.String()))
	}

	telemetry.SetAttributes(span, "loans_defaulted", result.LoansDefaulted)
	return result, nil
}

func (s *LoanService) publishEvents(ctx context.Context, l *loan.EmployeeLoan) {
	events := l.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish loan events",
			zap.String("loan_id", l.ID.String()),
			zap.Error(err))
	}
	l.ClearDomainEvents()
}

func (s *LoanService) generateLoanNumber(loanType loan.LoanType, now time.Time) string {
	prefix := strings.ToUpper(strings.ReplaceAll(string(loanType), "_", ""))
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	return fmt.Sprintf("LN-%s-%s-%s", prefix, now.Format("20060102"), strings.ToUpper(uuid.NewString()[:8]))
}

// levelInstallment is the even per-installment amount, rounded to centavos
func levelInstallment(total decimal.Decimal, installments int) decimal.Decimal {
	if installments <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(installments))).Round(2)
}

// buildSchedule lays due dates on the semi-monthly pay calendar (the 15th and
// the last day of each month). The final installment absorbs the rounding
// remainder so the schedule sums exactly to the loan total.
func buildSchedule(l *loan.EmployeeLoan, firstDueDate *time.Time, now time.Time) ([]loan.LoanDeduction, error) {
	due := nextPayDate(l.StartDate)
	if firstDueDate != nil {
		due = *firstDueDate
	}

	schedule := make([]loan.LoanDeduction, 0, l.NumberOfInstallments)
	remaining := l.TotalLoanAmount
	for n := 1; n <= l.NumberOfInstallments; n++ {
		amount := l.InstallmentAmount
		if n == l.NumberOfInstallments {
			amount = remaining
		}
		installment, err := loan.NewLoanDeduction(l.ID, l.EmployeeID, n, amount, due, now)
		if err != nil {
			return nil, err
		}
		schedule = append(schedule, *installment)
		remaining = remaining.Sub(amount)
		due = nextPayDate(due)
	}
	return schedule, nil
}

// nextPayDate returns the first semi-monthly pay date strictly after d
func nextPayDate(d time.Time) time.Time {
	endOfMonth := time.Date(d.Year(), d.Month()+1, 1, 0, 0, 0, 0, d.Location()).AddDate(0, 0, -1)
	fifteenth := time.Date(d.Year(), d.Month(), 15, 0, 0, 0, 0, d.Location())
	if d.Before(fifteenth) {
		return fifteenth
	}
	if d.Before(endOfMonth) {
		return endOfMonth
	}
	return time.Date(d.Year(), d.Month()+1, 15, 0, 0, 0, 0, d.Location())
}
