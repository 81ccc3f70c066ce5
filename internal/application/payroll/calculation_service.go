package payroll

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/suweldo/payroll-backend/internal/domain/loan"
	"github.com/suweldo/payroll-backend/internal/domain/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
	"github.com/suweldo/payroll-backend/internal/infrastructure/telemetry"
)

// CalculationService runs the per-employee payroll calculation for a period.
// Employees are calculated in parallel workers; writes to the shared period
// totals are serialized under a single mutex.
type CalculationService struct {
	periodRepo      payroll.PayrollPeriodRepository
	calcRepo        payroll.CalculationRepository
	profileRepo     payroll.ProfileRepository
	logRepo         payroll.CalculationLogRepository
	loanRepo        loan.LoanRepository
	installmentRepo loan.LoanDeductionRepository
	attendance      AttendanceProvider
	tables          StatutoryTablesProvider
	publisher       EventPublisher
	policy          CalculationPolicy
	clock           shared.Clock
	logger          *zap.Logger
}

// NewCalculationService creates a new CalculationService
func NewCalculationService(
	periodRepo payroll.PayrollPeriodRepository,
	calcRepo payroll.CalculationRepository,
	profileRepo payroll.ProfileRepository,
	logRepo payroll.CalculationLogRepository,
	loanRepo loan.LoanRepository,
	installmentRepo loan.LoanDeductionRepository,
	attendance AttendanceProvider,
	tables StatutoryTablesProvider,
	publisher EventPublisher,
	policy CalculationPolicy,
	clock shared.Clock,
	logger *zap.Logger,
) *CalculationService {
	return &CalculationService{
		periodRepo:      periodRepo,
		calcRepo:        calcRepo,
		profileRepo:     profileRepo,
		logRepo:         logRepo,
		loanRepo:        loanRepo,
		installmentRepo: installmentRepo,
		attendance:      attendance,
		tables:          tables,
		publisher:       publisher,
		policy:          policy,
		clock:           clock,
		logger:          logger,
	}
}

// CalculatePeriodRequest identifies the period to calculate
type CalculatePeriodRequest struct {
	PeriodID uuid.UUID
	ActorID  uuid.UUID
}

// CalculatePeriodResult summarizes a completed calculation run
type CalculatePeriodResult struct {
	PeriodID           uuid.UUID       `json:"period_id"`
	EmployeesProcessed int             `json:"employees_processed"`
	EmployeesFailed    int             `json:"employees_failed"`
	ExceptionsCount    int             `json:"exceptions_count"`
	SkippedLocked      int             `json:"skipped_locked"`
	TotalGross         decimal.Decimal `json:"total_gross"`
	TotalDeductions    decimal.Decimal `json:"total_deductions"`
	TotalNet           decimal.Decimal `json:"total_net"`
	Duration           time.Duration   `json:"-"`
}

// employeeOutcome is what one worker hands back for serialized accumulation
type employeeOutcome struct {
	calc    *payroll.EmployeePayrollCalculation
	skipped bool
	failed  bool
}

// CalculatePeriod runs the full calculation for every active employee in the
// period. One employee failing never aborts the batch; a cancelled context
// aborts the run between employees and returns the period to draft.
func (s *CalculationService) CalculatePeriod(ctx context.Context, req CalculatePeriodRequest) (*CalculatePeriodResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payroll_calculation", "calculate_period")
	defer span.End()

	telemetry.SetAttributes(span, telemetry.SpanAttrPeriodID, req.PeriodID.String())

	var result *CalculatePeriodResult
	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels("CalculationService", "calculate_period"), func(c context.Context) {
		result, operationErr = s.calculatePeriod(c, req)
	})
	if operationErr != nil {
		telemetry.RecordError(span, operationErr)
	}
	return result, operationErr
}

func (s *CalculationService) calculatePeriod(ctx context.Context, req CalculatePeriodRequest) (*CalculatePeriodResult, error) {
	started := s.clock.Now()

	period, err := s.periodRepo.FindByID(ctx, req.PeriodID)
	if err != nil {
		return nil, fmt.Errorf("failed to load period: %w", err)
	}
	if period == nil {
		return nil, shared.NewDomainError("PERIOD_NOT_FOUND", "Payroll period not found")
	}

	tables, err := s.tables.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load statutory tables: %w", err)
	}
	snapshot, err := json.Marshal(configSnapshot{Tables: tables, Policy: s.policy})
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot calculation config: %w", err)
	}

	observed := period.Version
	if err := period.StartCalculation(snapshot, started); err != nil {
		return nil, err
	}
	if err := s.periodRepo.SaveWithLock(ctx, period, observed); err != nil {
		return nil, fmt.Errorf("failed to start calculation run: %w", err)
	}
	s.appendLog(ctx, payroll.LogCalculationRun(period.ID, payroll.SeverityInfo,
		"run_started", fmt.Sprintf("Calculation run started for period %s", period.PeriodNumber), started))

	profiles, err := s.profileRepo.FindActive(ctx, shared.Filter{})
	if err != nil {
		s.abortRun(ctx, period, "failed to load employee profiles")
		return nil, fmt.Errorf("failed to load employee profiles: %w", err)
	}

	telemetry.RecordCalculationRun(ctx, "semi_monthly")

	outcomes := s.runWorkers(ctx, period, tables, profiles)

	now := s.clock.Now()
	skipped := 0
	for _, o := range outcomes {
		if o.skipped {
			skipped++
			continue
		}
		if o.failed {
			period.RecordEmployeeFailure()
			continue
		}
		period.AccumulateEmployee(o.calc.GrossPay, o.calc.TotalDeductions, o.calc.NetPay, o.calc.HasException)
	}

	if ctx.Err() != nil {
		s.abortRun(ctx, period, "calculation run cancelled")
		return nil, ctx.Err()
	}

	observed = period.Version
	if err := period.FinishCalculation(now); err != nil {
		return nil, err
	}
	if err := s.periodRepo.SaveWithLock(ctx, period, observed); err != nil {
		return nil, fmt.Errorf("failed to finish calculation run: %w", err)
	}
	s.publishEvents(ctx, period)

	s.appendLog(ctx, payroll.LogCalculationRun(period.ID, payroll.SeverityInfo, "run_finished",
		fmt.Sprintf("Calculated %d employees (%d exceptions, %d failed, %d skipped locked)",
			period.EmployeesProcessed, period.ExceptionsCount, period.EmployeesFailed, skipped), now))

	return &CalculatePeriodResult{
		PeriodID:           period.ID,
		EmployeesProcessed: period.EmployeesProcessed,
		EmployeesFailed:    period.EmployeesFailed,
		ExceptionsCount:    period.ExceptionsCount,
		SkippedLocked:      skipped,
		TotalGross:         period.TotalGross,
		TotalDeductions:    period.TotalDeductions,
		TotalNet:           period.TotalNet,
		Duration:           now.Sub(started),
	}, nil
}

// runWorkers fans profiles out to a bounded worker pool. Each worker checks
// for cancellation between employees so a shutdown never interrupts one
// employee's computation midway.
func (s *CalculationService) runWorkers(ctx context.Context, period *payroll.PayrollPeriod, tables payroll.StatutoryTables, profiles []payroll.EmployeePayrollProfile) []employeeOutcome {
	workers := s.policy.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(profiles) && len(profiles) > 0 {
		workers = len(profiles)
	}

	jobs := make(chan *payroll.EmployeePayrollProfile)
	go func() {
		defer close(jobs)
		for i := range profiles {
			select {
			case jobs <- &profiles[i]:
			case <-ctx.Done():
				return
			}
		}
	}()

	var mu sync.Mutex
	var outcomes []employeeOutcome
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for profile := range jobs {
				if ctx.Err() != nil {
					return
				}
				outcome := s.calculateEmployee(ctx, period, tables, profile)
				mu.Lock()
				outcomes = append(outcomes, outcome)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return outcomes
}

// calculateEmployee computes one employee's pay and persists the result.
// A locked head version makes recalculation an idempotent no-op.
func (s *CalculationService) calculateEmployee(ctx context.Context, period *payroll.PayrollPeriod, tables payroll.StatutoryTables, profile *payroll.EmployeePayrollProfile) employeeOutcome {
	now := s.clock.Now()

	existing, err := s.calcRepo.FindCurrent(ctx, period.ID, profile.EmployeeID)
	if err != nil {
		s.logEmployeeFailure(ctx, period.ID, profile.EmployeeID, nil, "load_existing", err, now)
		return employeeOutcome{failed: true}
	}
	if existing != nil && existing.IsLocked() {
		s.appendLog(ctx, payroll.LogEmployeeCalculation(period.ID, profile.EmployeeID, &existing.ID,
			payroll.SeverityInfo, "skip_locked", "Calculation already locked, skipping", now))
		return employeeOutcome{skipped: true}
	}

	calc, err := payroll.NewEmployeePayrollCalculation(period.ID, profile.EmployeeID, profile.EmployeeNumber, now)
	if err != nil {
		s.logEmployeeFailure(ctx, period.ID, profile.EmployeeID, nil, "init", err, now)
		return employeeOutcome{failed: true}
	}
	if existing != nil {
		// Re-run before lock overwrites the chain head in place, keeping its
		// identity and version token.
		calc.ID = existing.ID
		calc.CreatedAt = existing.CreatedAt
		calc.Version = existing.Version
		calc.PreviousVersionID = existing.PreviousVersionID
	}

	if err := profile.Validate(); err != nil {
		return s.flagAndSave(ctx, period.ID, calc, err.Error(), now)
	}

	attendance, leave, err := s.attendance.Snapshot(ctx, profile.EmployeeID, period)
	if err != nil {
		return s.flagAndSave(ctx, period.ID, calc, fmt.Sprintf("Attendance snapshot unavailable: %v", err), now)
	}

	input := payroll.CalculationInput{
		Profile:        profile,
		Attendance:     attendance,
		Leave:          leave,
		Tables:         tables,
		PeriodsPerYear: s.policy.PeriodsPerYear,
	}
	if err := s.compute(ctx, period, calc, input, now); err != nil {
		return s.flagAndSave(ctx, period.ID, calc, err.Error(), now)
	}

	if calc.NetPay.IsNegative() {
		if err := calc.FlagException(fmt.Sprintf("Negative net pay %s", calc.NetPay.StringFixed(2)), now); err != nil {
			s.logEmployeeFailure(ctx, period.ID, profile.EmployeeID, &calc.ID, "flag_negative_net", err, now)
			return employeeOutcome{failed: true}
		}
	}

	if err := calc.Reconcile(); err != nil {
		s.appendLog(ctx, payroll.LogEmployeeCalculation(period.ID, profile.EmployeeID, &calc.ID,
			payroll.SeverityCritical, "reconcile", err.Error(), now))
		return employeeOutcome{failed: true}
	}

	if err := calc.MarkCalculated(now); err != nil {
		s.logEmployeeFailure(ctx, period.ID, profile.EmployeeID, &calc.ID, "mark_calculated", err, now)
		return employeeOutcome{failed: true}
	}
	if err := s.calcRepo.Save(ctx, calc); err != nil {
		s.logEmployeeFailure(ctx, period.ID, profile.EmployeeID, &calc.ID, "save", err, now)
		return employeeOutcome{failed: true}
	}

	outcome := "ok"
	if calc.HasException {
		outcome = "exception"
	}
	telemetry.RecordEmployeeCalculated(ctx, outcome)
	return employeeOutcome{calc: calc}
}

// compute fills in the earnings and deduction breakdowns per the Philippine
// semi-monthly rules: attendance-based base pay, statutory multipliers for
// overtime, capped de-minimis, bracketed contributions and annualized tax.
func (s *CalculationService) compute(ctx context.Context, period *payroll.PayrollPeriod, calc *payroll.EmployeePayrollCalculation, in payroll.CalculationInput, now time.Time) error {
	profile := in.Profile
	periodsPerYear := decimal.NewFromInt(int64(in.PeriodsPerYear))
	monthsPerYear := decimal.NewFromInt(12)

	// Base pay. Monthly-salaried employees earn a fixed per-period share with
	// absences deducted; daily-rated employees earn by days actually worked.
	var basic, leavePay, absence decimal.Decimal
	switch profile.SalaryType {
	case payroll.SalaryTypeMonthly:
		basic = profile.MonthlySalary.Mul(monthsPerYear).Div(periodsPerYear).Round(2)
		absence = profile.DailyRate.Mul(in.Attendance.AbsentDays.Add(in.Leave.UnpaidLeaveDays)).Round(2)
	default:
		basic = profile.DailyRate.Mul(in.Attendance.PresentDays).Round(2)
		leavePay = profile.DailyRate.Mul(in.Leave.PaidLeaveDays).Round(2)
	}

	otPay := make(map[payroll.OvertimeCategory]decimal.Decimal, 4)
	for _, cat := range payroll.AllOvertimeCategories() {
		hours := in.Attendance.OvertimeHours[cat]
		if hours.IsZero() {
			otPay[cat] = decimal.Zero
			continue
		}
		otPay[cat] = profile.HourlyRate.Mul(hours).Mul(decimal.NewFromFloat(cat.Multiplier())).Round(2)
	}

	taxableAllowances := decimal.Zero
	deMinimis := decimal.Zero
	for _, a := range profile.ActiveAllowances(period.StartDate, period.EndDate) {
		if a.DeMinimis || !a.Taxable {
			deMinimis = deMinimis.Add(a.Amount)
		} else {
			taxableAllowances = taxableAllowances.Add(a.Amount)
		}
	}
	// De-minimis above the regulatory cap is reclassified as taxable.
	if cap := s.policy.DeMinimisCapPerPeriod; cap.IsPositive() && deMinimis.GreaterThan(cap) {
		taxableAllowances = taxableAllowances.Add(deMinimis.Sub(cap))
		deMinimis = cap
	}

	if err := calc.SetEarnings(basic, leavePay,
		otPay[payroll.OvertimeRegular], otPay[payroll.OvertimeRestDay],
		otPay[payroll.OvertimeDouble], otPay[payroll.OvertimeTriple],
		taxableAllowances, deMinimis, decimal.Zero); err != nil {
		return err
	}

	// Statutory contributions come from monthly tables, spread evenly across
	// the year's pay periods.
	monthlyBase := profile.MonthlyEquivalent()
	sss := periodShare(in.Tables.SSS.Lookup(monthlyBase), periodsPerYear)
	philHealth := periodShare(in.Tables.PhilHealth.Contribution(monthlyBase), periodsPerYear)
	pagIbig := periodShare(in.Tables.PagIbig.Contribution(monthlyBase), periodsPerYear)

	tardiness := profile.HourlyRate.Mul(in.Attendance.LateHours.Add(in.Attendance.UndertimeHours)).Round(2)

	loans, advances, err := s.dueLoanDeductions(ctx, profile.EmployeeID, period.EndDate)
	if err != nil {
		return err
	}
	other := decimal.Zero
	for _, d := range profile.ActiveDeductions(period.StartDate, period.EndDate) {
		if d.Kind == payroll.DeductionKindAdvance {
			advances = advances.Add(d.Amount)
		} else {
			other = other.Add(d.Amount)
		}
	}

	tax := decimal.Zero
	if !profile.TaxExempt {
		taxableGross := calc.GrossPay.Sub(calc.DeMinimisAllowances).Sub(sss).Sub(philHealth).Sub(pagIbig)
		if taxableGross.IsPositive() {
			tax = in.Tables.Tax.PeriodTax(taxableGross, in.PeriodsPerYear)
		}
	}

	return calc.SetDeductions(sss, philHealth, pagIbig, tax, loans, advances, tardiness, absence, other)
}

// dueLoanDeductions sums the outstanding amounts of installments due on or
// before the period end, split into loan vs cash-advance buckets.
func (s *CalculationService) dueLoanDeductions(ctx context.Context, employeeID uuid.UUID, asOf time.Time) (loans, advances decimal.Decimal, err error) {
	due, err := s.installmentRepo.FindDueForEmployee(ctx, employeeID, asOf)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to load due installments: %w", err)
	}
	if len(due) == 0 {
		return decimal.Zero, decimal.Zero, nil
	}

	activeLoans, err := s.loanRepo.FindActiveByEmployee(ctx, employeeID)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to load active loans: %w", err)
	}
	typeByLoan := make(map[uuid.UUID]loan.LoanType, len(activeLoans))
	for _, l := range activeLoans {
		typeByLoan[l.ID] = l.LoanType
	}

	loans = decimal.Zero
	advances = decimal.Zero
	for _, d := range due {
		lt, ok := typeByLoan[d.LoanID]
		if !ok {
			// Installment for a suspended or closed loan; not collectible.
			continue
		}
		if lt == loan.LoanTypeCashAdvance {
			advances = advances.Add(d.OutstandingAmount())
		} else {
			loans = loans.Add(d.OutstandingAmount())
		}
	}
	return loans, advances, nil
}

func (s *CalculationService) flagAndSave(ctx context.Context, periodID uuid.UUID, calc *payroll.EmployeePayrollCalculation, reason string, now time.Time) employeeOutcome {
	if err := calc.FlagException(reason, now); err != nil {
		s.logEmployeeFailure(ctx, periodID, calc.EmployeeID, &calc.ID, "flag_exception", err, now)
		return employeeOutcome{failed: true}
	}
	if err := s.calcRepo.Save(ctx, calc); err != nil {
		s.logEmployeeFailure(ctx, periodID, calc.EmployeeID, &calc.ID, "save", err, now)
		return employeeOutcome{failed: true}
	}
	s.appendLog(ctx, payroll.LogEmployeeCalculation(periodID, calc.EmployeeID, &calc.ID,
		payroll.SeverityWarning, "exception", reason, now))
	telemetry.RecordEmployeeCalculated(ctx, "exception")
	return employeeOutcome{calc: calc}
}

func (s *CalculationService) abortRun(ctx context.Context, period *payroll.PayrollPeriod, reason string) {
	now := s.clock.Now()
	observed := period.Version
	if err := period.AbortCalculation(now); err != nil {
		s.logger.Error("failed to abort calculation run", zap.Error(err), zap.String("period_id", period.ID.String()))
		return
	}
	if err := s.periodRepo.SaveWithLock(ctx, period, observed); err != nil {
		s.logger.Error("failed to persist aborted run", zap.Error(err), zap.String("period_id", period.ID.String()))
	}
	s.appendLog(ctx, payroll.LogCalculationRun(period.ID, payroll.SeverityWarning, "run_aborted", reason, now))
}

func (s *CalculationService) logEmployeeFailure(ctx context.Context, periodID, employeeID uuid.UUID, calcID *uuid.UUID, step string, cause error, now time.Time) {
	s.logger.Error("employee calculation failed",
		zap.String("period_id", periodID.String()),
		zap.String("employee_id", employeeID.String()),
		zap.String("step", step),
		zap.Error(cause))
	s.appendLog(ctx, payroll.LogEmployeeCalculation(periodID, employeeID, calcID,
		payroll.SeverityError, step, cause.Error(), now))
}

func (s *CalculationService) appendLog(ctx context.Context, entry *payroll.PayrollCalculationLog) {
	if err := s.logRepo.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to append calculation log", zap.Error(err))
	}
}

func (s *CalculationService) publishEvents(ctx context.Context, period *payroll.PayrollPeriod) {
	events := period.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish period events", zap.Error(err))
	}
	period.ClearDomainEvents()
}

// GetCalculation loads one calculation version by ID
func (s *CalculationService) GetCalculation(ctx context.Context, id uuid.UUID) (*payroll.EmployeePayrollCalculation, error) {
	calc, err := s.calcRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load calculation: %w", err)
	}
	if calc == nil {
		return nil, shared.NewDomainError("CALCULATION_NOT_FOUND", "Calculation not found")
	}
	return calc, nil
}

// ListByPeriod lists calculations for a period matching the filter
func (s *CalculationService) ListByPeriod(ctx context.Context, periodID uuid.UUID, filter payroll.CalculationFilter) (shared.Paginated[payroll.EmployeePayrollCalculation], error) {
	calcs, err := s.calcRepo.FindByPeriod(ctx, periodID, filter)
	if err != nil {
		return shared.Paginated[payroll.EmployeePayrollCalculation]{}, fmt.Errorf("failed to list calculations: %w", err)
	}
	total, err := s.calcRepo.Count(ctx, periodID, filter)
	if err != nil {
		return shared.Paginated[payroll.EmployeePayrollCalculation]{}, fmt.Errorf("failed to count calculations: %w", err)
	}
	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = len(calcs)
		if pageSize == 0 {
			pageSize = 1
		}
	}
	return shared.NewPaginated(calcs, total, page, pageSize), nil
}

// ListExceptions lists the current-version calculations flagged for review
func (s *CalculationService) ListExceptions(ctx context.Context, periodID uuid.UUID) ([]payroll.EmployeePayrollCalculation, error) {
	return s.calcRepo.FindExceptions(ctx, periodID)
}

// VersionChain returns the full version history for one employee in a
// period, oldest first
func (s *CalculationService) VersionChain(ctx context.Context, periodID, employeeID uuid.UUID) ([]payroll.EmployeePayrollCalculation, error) {
	return s.calcRepo.FindVersionChain(ctx, periodID, employeeID)
}

// PeriodLogs returns the calculation trace for a period
func (s *CalculationService) PeriodLogs(ctx context.Context, periodID uuid.UUID, filter shared.Filter) ([]payroll.PayrollCalculationLog, error) {
	return s.logRepo.FindByPeriod(ctx, periodID, filter)
}

// EmployeeLogs returns the calculation trace for one employee in a period
func (s *CalculationService) EmployeeLogs(ctx context.Context, periodID, employeeID uuid.UUID) ([]payroll.PayrollCalculationLog, error) {
	return s.logRepo.FindByEmployee(ctx, periodID, employeeID)
}

// periodShare converts a monthly statutory amount into its per-period share
func periodShare(monthly decimal.Decimal, periodsPerYear decimal.Decimal) decimal.Decimal {
	if periodsPerYear.IsZero() {
		return monthly
	}
	return monthly.Mul(decimal.NewFromInt(12)).Div(periodsPerYear).Round(2)
}
