package payroll

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/suweldo/payroll-backend/internal/domain/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

type periodFixture struct {
	periodRepo  *MockPeriodRepository
	calcRepo    *MockCalculationRepository
	historyRepo *MockHistoryRepository
	logRepo     *MockCalculationLogRepository
	publisher   *MockEventPublisher
	service     *PeriodService
	now         time.Time
	officer     uuid.UUID
	manager     uuid.UUID
}

func newPeriodFixture(t *testing.T) *periodFixture {
	t.Helper()
	f := &periodFixture{
		periodRepo:  new(MockPeriodRepository),
		calcRepo:    new(MockCalculationRepository),
		historyRepo: new(MockHistoryRepository),
		logRepo:     new(MockCalculationLogRepository),
		publisher:   new(MockEventPublisher),
		now:         time.Date(2026, 1, 20, 9, 0, 0, 0, time.UTC),
		officer:     uuid.New(),
		manager:     uuid.New(),
	}
	f.service = NewPeriodService(
		f.periodRepo, f.calcRepo, f.historyRepo, f.logRepo, f.publisher,
		shared.FixedClock{Time: f.now}, zap.NewNop())
	return f
}

// calculatedPeriod builds a period already through a clean calculation run
func (f *periodFixture) calculatedPeriod(t *testing.T) *payroll.PayrollPeriod {
	t.Helper()
	period, err := payroll.NewPayrollPeriod("2026-01-A",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
		f.now)
	require.NoError(t, err)
	require.NoError(t, period.StartCalculation([]byte(`{}`), f.now))
	period.AccumulateEmployee(decimal.NewFromInt(15000), decimal.NewFromInt(2000), decimal.NewFromInt(13000), false)
	require.NoError(t, period.FinishCalculation(f.now))
	period.ClearDomainEvents()
	return period
}

func (f *periodFixture) cleanCalc(t *testing.T, period *payroll.PayrollPeriod) payroll.EmployeePayrollCalculation {
	t.Helper()
	calc, err := payroll.NewEmployeePayrollCalculation(period.ID, uuid.New(), "EMP-001", f.now)
	require.NoError(t, err)
	require.NoError(t, calc.SetEarnings(decimal.NewFromInt(15000), decimal.Zero, decimal.Zero, decimal.Zero,
		decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero))
	require.NoError(t, calc.SetDeductions(decimal.NewFromInt(700), decimal.NewFromInt(375), decimal.NewFromInt(200),
		decimal.NewFromInt(725), decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero))
	require.NoError(t, calc.MarkCalculated(f.now))
	return *calc
}

func (f *periodFixture) expectPersistence(period *payroll.PayrollPeriod) {
	f.periodRepo.On("FindByID", mock.Anything, period.ID).Return(period, nil)
	f.periodRepo.On("SaveWithLock", mock.Anything, period, mock.AnythingOfType("int")).Return(nil)
	f.historyRepo.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
}

func TestPeriodService_CreatePeriod(t *testing.T) {
	t.Run("creates a draft period", func(t *testing.T) {
		f := newPeriodFixture(t)
		f.periodRepo.On("FindOverlapping", mock.Anything, mock.Anything, mock.Anything).
			Return([]payroll.PayrollPeriod{}, nil)
		f.periodRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.historyRepo.On("Append", mock.Anything, mock.Anything).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		period, err := f.service.CreatePeriod(context.Background(), CreatePeriodRequest{
			PeriodNumber:      "2026-02-A",
			StartDate:         time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			EndDate:           time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
			TimekeepingCutoff: time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC),
			PayDate:           time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC),
			ActorID:           f.officer,
			ActorRole:         payroll.RolePayrollOfficer,
		})

		require.NoError(t, err)
		assert.Equal(t, payroll.PeriodStatusDraft, period.Status)
		f.historyRepo.AssertCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("rejects overlapping date range", func(t *testing.T) {
		f := newPeriodFixture(t)
		existing := f.calculatedPeriod(t)
		f.periodRepo.On("FindOverlapping", mock.Anything, mock.Anything, mock.Anything).
			Return([]payroll.PayrollPeriod{*existing}, nil)

		_, err := f.service.CreatePeriod(context.Background(), CreatePeriodRequest{
			PeriodNumber:      "2026-01-B",
			StartDate:         existing.StartDate,
			EndDate:           existing.EndDate,
			TimekeepingCutoff: existing.TimekeepingCutoff,
			PayDate:           existing.PayDate,
		})

		require.Error(t, err)
		assert.Equal(t, "PERIOD_OVERLAP", shared.IsDomainError(err).Code)
		f.periodRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestPeriodService_ApprovalWorkflow(t *testing.T) {
	t.Run("walks the full happy path to completed", func(t *testing.T) {
		f := newPeriodFixture(t)
		period := f.calculatedPeriod(t)
		f.expectPersistence(period)
		f.calcRepo.On("FindByPeriod", mock.Anything, period.ID, mock.Anything).
			Return([]payroll.EmployeePayrollCalculation{f.cleanCalc(t, period)}, nil)
		f.calcRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		ctx := context.Background()

		_, err := f.service.SubmitForReview(ctx, TransitionRequest{
			PeriodID: period.ID, ActorID: f.officer, ActorRole: payroll.RolePayrollOfficer})
		require.NoError(t, err)
		assert.Equal(t, payroll.PeriodStatusUnderReview, period.Status)

		_, err = f.service.Approve(ctx, TransitionRequest{
			PeriodID: period.ID, ActorID: f.manager, ActorRole: payroll.RoleHRManager})
		require.NoError(t, err)
		assert.Equal(t, payroll.PeriodStatusApproved, period.Status)

		_, err = f.service.Finalize(ctx, TransitionRequest{
			PeriodID: period.ID, ActorID: f.manager, ActorRole: payroll.RoleHRManager})
		require.NoError(t, err)
		assert.Equal(t, payroll.PeriodStatusFinalized, period.Status)

		_, err = f.service.Lock(ctx, TransitionRequest{
			PeriodID: period.ID, ActorID: f.manager, ActorRole: payroll.RoleHRManager})
		require.NoError(t, err)
		assert.Equal(t, payroll.PeriodStatusLocked, period.Status)
		assert.True(t, period.TimekeepingDataLocked)

		_, err = f.service.Complete(ctx, TransitionRequest{
			PeriodID: period.ID, ActorID: f.manager, ActorRole: payroll.RoleHRManager})
		require.NoError(t, err)
		assert.Equal(t, payroll.PeriodStatusCompleted, period.Status)

		// five transitions, five history rows
		f.historyRepo.AssertNumberOfCalls(t, "Append", 5)
	})

	t.Run("lock freezes the current calculation versions", func(t *testing.T) {
		f := newPeriodFixture(t)
		period := f.calculatedPeriod(t)
		require.NoError(t, period.SubmitForReview(f.officer, payroll.RolePayrollOfficer, "", f.now))
		require.NoError(t, period.Approve(f.manager, payroll.RoleHRManager, f.now))
		require.NoError(t, period.Finalize(f.manager, f.now))
		period.ClearDomainEvents()

		calc := f.cleanCalc(t, period)
		f.expectPersistence(period)
		f.calcRepo.On("FindByPeriod", mock.Anything, period.ID, payroll.CalculationFilter{CurrentOnly: true}).
			Return([]payroll.EmployeePayrollCalculation{calc}, nil)

		var locked *payroll.EmployeePayrollCalculation
		f.calcRepo.On("Save", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			locked = args.Get(1).(*payroll.EmployeePayrollCalculation)
		}).Return(nil)

		_, err := f.service.Lock(context.Background(), TransitionRequest{
			PeriodID: period.ID, ActorID: f.manager, ActorRole: payroll.RoleHRManager})

		require.NoError(t, err)
		require.NotNil(t, locked)
		assert.True(t, locked.IsLocked())
		assert.Equal(t, payroll.CalculationStatusLocked, locked.CalculationStatus)
	})

	t.Run("reject returns the period to draft with a reason", func(t *testing.T) {
		f := newPeriodFixture(t)
		period := f.calculatedPeriod(t)
		require.NoError(t, period.SubmitForReview(f.officer, payroll.RolePayrollOfficer, "", f.now))
		period.ClearDomainEvents()
		f.expectPersistence(period)

		_, err := f.service.Reject(context.Background(), TransitionRequest{
			PeriodID: period.ID, ActorID: f.manager, ActorRole: payroll.RoleHRManager,
			Comments: "Totals do not match the bank advice"})

		require.NoError(t, err)
		assert.Equal(t, payroll.PeriodStatusDraft, period.Status)
	})

	t.Run("integrity violation blocks approval", func(t *testing.T) {
		f := newPeriodFixture(t)
		period := f.calculatedPeriod(t)
		require.NoError(t, period.SubmitForReview(f.officer, payroll.RolePayrollOfficer, "", f.now))
		period.ClearDomainEvents()

		tampered := f.cleanCalc(t, period)
		tampered.GrossPay = tampered.GrossPay.Add(decimal.NewFromInt(999))

		f.periodRepo.On("FindByID", mock.Anything, period.ID).Return(period, nil)
		f.calcRepo.On("FindByPeriod", mock.Anything, period.ID, mock.Anything).
			Return([]payroll.EmployeePayrollCalculation{tampered}, nil)
		f.logRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

		_, err := f.service.Approve(context.Background(), TransitionRequest{
			PeriodID: period.ID, ActorID: f.manager, ActorRole: payroll.RoleHRManager})

		require.Error(t, err)
		assert.Equal(t, "INTEGRITY_VIOLATION", shared.IsDomainError(err).Code)
		assert.Equal(t, payroll.PeriodStatusUnderReview, period.Status)
		f.periodRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)

		// the violation lands in the calculation log at critical severity
		var critical bool
		for _, call := range f.logRepo.Calls {
			entry := call.Arguments.Get(1).(*payroll.PayrollCalculationLog)
			if entry.Severity == payroll.SeverityCritical {
				critical = true
			}
		}
		assert.True(t, critical)
	})

	t.Run("unlock requires elevated role", func(t *testing.T) {
		f := newPeriodFixture(t)
		period := f.calculatedPeriod(t)
		require.NoError(t, period.SubmitForReview(f.officer, payroll.RolePayrollOfficer, "", f.now))
		require.NoError(t, period.Approve(f.manager, payroll.RoleHRManager, f.now))
		require.NoError(t, period.Finalize(f.manager, f.now))
		require.NoError(t, period.Lock(f.manager, f.now))
		period.ClearDomainEvents()
		f.periodRepo.On("FindByID", mock.Anything, period.ID).Return(period, nil)

		_, err := f.service.Unlock(context.Background(), TransitionRequest{
			PeriodID: period.ID, ActorID: f.officer, ActorRole: payroll.RolePayrollOfficer,
			Comments: "Need to rerun"})

		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", shared.IsDomainError(err).Code)
	})
}
