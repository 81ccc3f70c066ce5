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

type adjustmentFixture struct {
	periodRepo     *MockPeriodRepository
	calcRepo       *MockCalculationRepository
	adjustmentRepo *MockAdjustmentRepository
	publisher      *MockEventPublisher
	service        *AdjustmentService
	now            time.Time
	officer        uuid.UUID
	manager        uuid.UUID
}

func newAdjustmentFixture(t *testing.T) *adjustmentFixture {
	t.Helper()
	f := &adjustmentFixture{
		periodRepo:     new(MockPeriodRepository),
		calcRepo:       new(MockCalculationRepository),
		adjustmentRepo: new(MockAdjustmentRepository),
		publisher:      new(MockEventPublisher),
		now:            time.Date(2026, 1, 22, 10, 0, 0, 0, time.UTC),
		officer:        uuid.New(),
		manager:        uuid.New(),
	}
	f.service = NewAdjustmentService(
		f.periodRepo, f.calcRepo, f.adjustmentRepo, f.publisher,
		DefaultCalculationPolicy(), shared.FixedClock{Time: f.now}, zap.NewNop())
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	return f
}

func (f *adjustmentFixture) openPeriod(t *testing.T) *payroll.PayrollPeriod {
	t.Helper()
	period, err := payroll.NewPayrollPeriod("2026-01-A",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
		f.now)
	require.NoError(t, err)
	period.ClearDomainEvents()
	return period
}

func (f *adjustmentFixture) calculation(t *testing.T, periodID uuid.UUID, net int64) *payroll.EmployeePayrollCalculation {
	t.Helper()
	calc, err := payroll.NewEmployeePayrollCalculation(periodID, uuid.New(), "EMP-001", f.now)
	require.NoError(t, err)
	require.NoError(t, calc.SetEarnings(decimal.NewFromInt(net), decimal.Zero, decimal.Zero, decimal.Zero,
		decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero))
	require.NoError(t, calc.SetDeductions(decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero,
		decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero))
	require.NoError(t, calc.MarkCalculated(f.now))
	calc.ClearDomainEvents()
	return calc
}

func (f *adjustmentFixture) approvedAdjustment(t *testing.T, calc *payroll.EmployeePayrollCalculation, amount int64) *payroll.PayrollAdjustment {
	t.Helper()
	adjustment, err := payroll.NewPayrollAdjustment(
		calc.PeriodID, calc.ID, calc.EmployeeID, f.officer,
		payroll.AdjustmentTypeAddition,
		decimal.NewFromInt(amount), calc.FinalNetPay, decimal.Zero,
		"Missed overtime from the previous cutoff", f.now)
	require.NoError(t, err)
	require.NoError(t, adjustment.Approve(f.manager, f.now))
	adjustment.ClearDomainEvents()
	return adjustment
}

func TestAdjustmentService_ProposeAdjustment(t *testing.T) {
	t.Run("auto-approves below the policy threshold", func(t *testing.T) {
		f := newAdjustmentFixture(t)
		calc := f.calculation(t, uuid.New(), 15000)
		f.calcRepo.On("FindByID", mock.Anything, calc.ID).Return(calc, nil)
		f.adjustmentRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		adjustment, err := f.service.ProposeAdjustment(context.Background(), ProposeAdjustmentRequest{
			CalculationID: calc.ID,
			Type:          payroll.AdjustmentTypeAddition,
			Amount:        decimal.NewFromInt(500),
			Reason:        "Transport reimbursement",
			RequestedBy:   f.officer,
		})

		require.NoError(t, err)
		assert.Equal(t, payroll.AdjustmentStatusApproved, adjustment.Status)
		require.NotNil(t, adjustment.ApprovedBy)
		assert.Equal(t, systemActor, *adjustment.ApprovedBy)
	})

	t.Run("holds large adjustments for a second approver", func(t *testing.T) {
		f := newAdjustmentFixture(t)
		calc := f.calculation(t, uuid.New(), 15000)
		f.calcRepo.On("FindByID", mock.Anything, calc.ID).Return(calc, nil)
		f.adjustmentRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		adjustment, err := f.service.ProposeAdjustment(context.Background(), ProposeAdjustmentRequest{
			CalculationID: calc.ID,
			Type:          payroll.AdjustmentTypeDeduction,
			Amount:        decimal.NewFromInt(2500),
			Reason:        "Overpaid allowance recovery",
			RequestedBy:   f.officer,
		})

		require.NoError(t, err)
		assert.Equal(t, payroll.AdjustmentStatusPending, adjustment.Status)
		assert.Nil(t, adjustment.ApprovedBy)
		assert.Equal(t, calc.FinalNetPay, adjustment.OriginalAmount)
	})

	t.Run("fails for an unknown calculation", func(t *testing.T) {
		f := newAdjustmentFixture(t)
		f.calcRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, nil)

		_, err := f.service.ProposeAdjustment(context.Background(), ProposeAdjustmentRequest{
			CalculationID: uuid.New(),
			Type:          payroll.AdjustmentTypeAddition,
			Amount:        decimal.NewFromInt(100),
			Reason:        "x",
			RequestedBy:   f.officer,
		})

		require.Error(t, err)
		assert.Equal(t, "CALCULATION_NOT_FOUND", shared.IsDomainError(err).Code)
	})
}

func TestAdjustmentService_ApproveAdjustment(t *testing.T) {
	t.Run("rejects self approval", func(t *testing.T) {
		f := newAdjustmentFixture(t)
		calc := f.calculation(t, uuid.New(), 15000)
		adjustment, err := payroll.NewPayrollAdjustment(
			calc.PeriodID, calc.ID, calc.EmployeeID, f.officer,
			payroll.AdjustmentTypeAddition,
			decimal.NewFromInt(2000), calc.FinalNetPay, decimal.Zero,
			"Salary differential", f.now)
		require.NoError(t, err)
		f.adjustmentRepo.On("FindByID", mock.Anything, adjustment.ID).Return(adjustment, nil)

		_, err = f.service.ApproveAdjustment(context.Background(), adjustment.ID, f.officer)

		require.Error(t, err)
		assert.Equal(t, "SELF_APPROVAL", shared.IsDomainError(err).Code)
		f.adjustmentRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("approves with a distinct actor", func(t *testing.T) {
		f := newAdjustmentFixture(t)
		calc := f.calculation(t, uuid.New(), 15000)
		adjustment, err := payroll.NewPayrollAdjustment(
			calc.PeriodID, calc.ID, calc.EmployeeID, f.officer,
			payroll.AdjustmentTypeAddition,
			decimal.NewFromInt(2000), calc.FinalNetPay, decimal.Zero,
			"Salary differential", f.now)
		require.NoError(t, err)
		adjustment.ClearDomainEvents()
		f.adjustmentRepo.On("FindByID", mock.Anything, adjustment.ID).Return(adjustment, nil)
		f.adjustmentRepo.On("Save", mock.Anything, adjustment).Return(nil)

		approved, err := f.service.ApproveAdjustment(context.Background(), adjustment.ID, f.manager)

		require.NoError(t, err)
		assert.Equal(t, payroll.AdjustmentStatusApproved, approved.Status)
	})
}

func TestAdjustmentService_ApplyAdjustment(t *testing.T) {
	t.Run("locks an unlocked head and spawns a successor", func(t *testing.T) {
		f := newAdjustmentFixture(t)
		period := f.openPeriod(t)
		calc := f.calculation(t, period.ID, 15000)
		adjustment := f.approvedAdjustment(t, calc, 500)

		f.adjustmentRepo.On("FindByID", mock.Anything, adjustment.ID).Return(adjustment, nil)
		f.adjustmentRepo.On("Save", mock.Anything, adjustment).Return(nil)
		f.periodRepo.On("FindByID", mock.Anything, period.ID).Return(period, nil)
		f.calcRepo.On("FindCurrent", mock.Anything, period.ID, calc.EmployeeID).Return(calc, nil)
		f.calcRepo.On("SaveNewVersion", mock.Anything, calc, mock.Anything).Return(nil)

		result, err := f.service.ApplyAdjustment(context.Background(), adjustment.ID, f.officer)

		require.NoError(t, err)
		next := result.NewCalculation
		assert.NotEqual(t, calc.ID, next.ID)
		require.NotNil(t, next.PreviousVersionID)
		assert.Equal(t, calc.ID, *next.PreviousVersionID)
		assert.Equal(t, calc.Version+1, next.Version)
		assert.True(t, decimal.NewFromInt(15500).Equal(next.FinalNetPay))
		assert.Equal(t, payroll.AdjustmentStatusApplied, result.Adjustment.Status)

		// The former head gets locked so the pre-adjustment row is frozen
		assert.True(t, calc.IsLocked())
		require.NotNil(t, calc.LockedBy)
		assert.Equal(t, f.officer, *calc.LockedBy)
		f.calcRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("spawns a new version when the head is locked", func(t *testing.T) {
		f := newAdjustmentFixture(t)
		period := f.openPeriod(t)
		calc := f.calculation(t, period.ID, 15000)
		require.NoError(t, calc.Lock(f.manager, f.now))
		calc.ClearDomainEvents()
		adjustment := f.approvedAdjustment(t, calc, 500)

		f.adjustmentRepo.On("FindByID", mock.Anything, adjustment.ID).Return(adjustment, nil)
		f.adjustmentRepo.On("Save", mock.Anything, adjustment).Return(nil)
		f.periodRepo.On("FindByID", mock.Anything, period.ID).Return(period, nil)
		f.calcRepo.On("FindCurrent", mock.Anything, period.ID, calc.EmployeeID).Return(calc, nil)
		f.calcRepo.On("SaveNewVersion", mock.Anything, calc, mock.Anything).Return(nil)

		result, err := f.service.ApplyAdjustment(context.Background(), adjustment.ID, f.officer)

		require.NoError(t, err)
		next := result.NewCalculation
		assert.NotEqual(t, calc.ID, next.ID)
		require.NotNil(t, next.PreviousVersionID)
		assert.Equal(t, calc.ID, *next.PreviousVersionID)
		assert.False(t, next.IsLocked())
		assert.True(t, decimal.NewFromInt(15500).Equal(next.FinalNetPay))
		require.NotNil(t, result.Adjustment.AppliedCalculationID)
		assert.Equal(t, next.ID, *result.Adjustment.AppliedCalculationID)
		f.calcRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("refuses to touch a locked period", func(t *testing.T) {
		f := newAdjustmentFixture(t)
		period := f.openPeriod(t)
		require.NoError(t, period.StartCalculation([]byte(`{}`), f.now))
		period.AccumulateEmployee(decimal.NewFromInt(15000), decimal.Zero, decimal.NewFromInt(15000), false)
		require.NoError(t, period.FinishCalculation(f.now))
		require.NoError(t, period.SubmitForReview(f.officer, payroll.RolePayrollOfficer, "", f.now))
		require.NoError(t, period.Approve(f.manager, payroll.RoleHRManager, f.now))
		require.NoError(t, period.Finalize(f.manager, f.now))
		require.NoError(t, period.Lock(f.manager, f.now))

		calc := f.calculation(t, period.ID, 15000)
		adjustment := f.approvedAdjustment(t, calc, 500)

		f.adjustmentRepo.On("FindByID", mock.Anything, adjustment.ID).Return(adjustment, nil)
		f.periodRepo.On("FindByID", mock.Anything, period.ID).Return(period, nil)

		_, err := f.service.ApplyAdjustment(context.Background(), adjustment.ID, f.officer)

		require.Error(t, err)
		assert.Equal(t, "PERIOD_LOCKED", shared.IsDomainError(err).Code)
		f.calcRepo.AssertNotCalled(t, "FindCurrent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects applying a pending adjustment", func(t *testing.T) {
		f := newAdjustmentFixture(t)
		calc := f.calculation(t, uuid.New(), 15000)
		adjustment, err := payroll.NewPayrollAdjustment(
			calc.PeriodID, calc.ID, calc.EmployeeID, f.officer,
			payroll.AdjustmentTypeAddition,
			decimal.NewFromInt(2000), calc.FinalNetPay, decimal.Zero,
			"Not yet approved", f.now)
		require.NoError(t, err)
		f.adjustmentRepo.On("FindByID", mock.Anything, adjustment.ID).Return(adjustment, nil)

		_, err = f.service.ApplyAdjustment(context.Background(), adjustment.ID, f.officer)

		require.Error(t, err)
		assert.Equal(t, "INVALID_STATE", shared.IsDomainError(err).Code)
	})
}
