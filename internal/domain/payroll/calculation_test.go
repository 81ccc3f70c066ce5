package payroll

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

func createTestCalculation(t *testing.T) *EmployeePayrollCalculation {
	c, err := NewEmployeePayrollCalculation(uuid.New(), uuid.New(), "EMP-0001", time.Now())
	require.NoError(t, err)
	return c
}

func createComputedCalculation(t *testing.T) *EmployeePayrollCalculation {
	c := createTestCalculation(t)
	// 15,000 basic, 2,000 total statutory + tax, 13,000 net
	require.NoError(t, c.SetEarnings(
		decimal.NewFromInt(15000), decimal.Zero,
		decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero,
		decimal.Zero, decimal.Zero, decimal.Zero,
	))
	require.NoError(t, c.SetDeductions(
		decimal.NewFromInt(700), decimal.NewFromInt(375), decimal.NewFromInt(200),
		decimal.NewFromInt(725), decimal.Zero, decimal.Zero,
		decimal.Zero, decimal.Zero, decimal.Zero,
	))
	require.NoError(t, c.MarkCalculated(time.Now()))
	return c
}

func TestNewEmployeePayrollCalculation(t *testing.T) {
	t.Run("creates version one of a chain", func(t *testing.T) {
		c, err := NewEmployeePayrollCalculation(uuid.New(), uuid.New(), "EMP-0001", time.Now())
		require.NoError(t, err)
		assert.Equal(t, 1, c.Version)
		assert.Nil(t, c.PreviousVersionID)
		assert.Equal(t, CalculationStatusPending, c.CalculationStatus)
		assert.False(t, c.IsLocked())
	})

	t.Run("fails with nil IDs", func(t *testing.T) {
		_, err := NewEmployeePayrollCalculation(uuid.Nil, uuid.New(), "EMP-0001", time.Now())
		require.Error(t, err)

		_, err = NewEmployeePayrollCalculation(uuid.New(), uuid.New(), "", time.Now())
		require.Error(t, err)
	})
}

func TestEmployeePayrollCalculation_SetEarnings(t *testing.T) {
	c := createTestCalculation(t)

	err := c.SetEarnings(
		decimal.NewFromInt(15000),         // basic
		decimal.NewFromInt(1150),          // leave pay
		decimal.NewFromFloat(897.44),      // regular OT
		decimal.NewFromFloat(186.67),      // rest day OT
		decimal.Zero, decimal.Zero,        // double, triple
		decimal.NewFromInt(2000),          // taxable allowances
		decimal.NewFromInt(1500),          // de minimis
		decimal.NewFromInt(500),           // bonuses
	)
	require.NoError(t, err)

	assert.True(t, c.TotalOvertimePay.Equal(decimal.NewFromFloat(1084.11)))
	assert.True(t, c.TotalAllowances.Equal(decimal.NewFromInt(3500)))
	expectedGross := decimal.NewFromFloat(21234.11)
	assert.True(t, c.GrossPay.Equal(expectedGross), "gross was %s", c.GrossPay)
	assert.True(t, c.NetPay.Equal(expectedGross), "net should track gross before deductions, was %s", c.NetPay)
	require.NoError(t, c.Reconcile())
}

func TestEmployeePayrollCalculation_SetEarnings_RefreshesNet(t *testing.T) {
	c := createComputedCalculation(t)

	// Re-running earnings after deductions must re-derive the net figures
	require.NoError(t, c.SetEarnings(
		decimal.NewFromInt(16000), decimal.Zero,
		decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero,
		decimal.Zero, decimal.Zero, decimal.Zero,
	))

	assert.True(t, c.NetPay.Equal(decimal.NewFromInt(14000)), "net was %s", c.NetPay)
	assert.True(t, c.FinalNetPay.Equal(decimal.NewFromInt(14000)))
	require.NoError(t, c.Reconcile())
}

func TestEmployeePayrollCalculation_SetDeductions(t *testing.T) {
	t.Run("derives net and final net from gross", func(t *testing.T) {
		c := createComputedCalculation(t)

		assert.True(t, c.TotalDeductions.Equal(decimal.NewFromInt(2000)))
		assert.True(t, c.NetPay.Equal(decimal.NewFromInt(13000)))
		assert.True(t, c.FinalNetPay.Equal(decimal.NewFromInt(13000)))
		assert.Equal(t, CalculationStatusCalculated, c.CalculationStatus)
		require.NoError(t, c.Reconcile())
	})

	t.Run("negative net is representable for exception flagging", func(t *testing.T) {
		c := createTestCalculation(t)
		require.NoError(t, c.SetEarnings(
			decimal.NewFromInt(1000), decimal.Zero,
			decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero,
			decimal.Zero, decimal.Zero, decimal.Zero,
		))
		require.NoError(t, c.SetDeductions(
			decimal.NewFromInt(700), decimal.NewFromInt(375), decimal.NewFromInt(200),
			decimal.Zero, decimal.NewFromInt(2000), decimal.Zero,
			decimal.Zero, decimal.Zero, decimal.Zero,
		))
		assert.True(t, c.NetPay.IsNegative())
	})
}

func TestEmployeePayrollCalculation_Exceptions(t *testing.T) {
	t.Run("flags and accumulates reasons", func(t *testing.T) {
		c := createTestCalculation(t)
		now := time.Now()

		require.NoError(t, c.FlagException("missing timekeeping data", now))
		require.NoError(t, c.FlagException("negative net pay", now))

		assert.True(t, c.HasException)
		assert.Equal(t, CalculationStatusException, c.CalculationStatus)
		assert.Equal(t, []string{"missing timekeeping data", "negative net pay"}, c.ExceptionList())
	})

	t.Run("requires a reason", func(t *testing.T) {
		c := createTestCalculation(t)
		err := c.FlagException("", time.Now())
		require.Error(t, err)
	})

	t.Run("exception sticks through MarkCalculated", func(t *testing.T) {
		c := createTestCalculation(t)
		require.NoError(t, c.FlagException("missing profile", time.Now()))
		require.NoError(t, c.MarkCalculated(time.Now()))
		assert.Equal(t, CalculationStatusException, c.CalculationStatus)
	})
}

func TestEmployeePayrollCalculation_Lock(t *testing.T) {
	actor := uuid.New()

	t.Run("locks a calculated row", func(t *testing.T) {
		c := createComputedCalculation(t)
		require.NoError(t, c.Lock(actor, time.Now()))
		assert.True(t, c.IsLocked())
		assert.Equal(t, CalculationStatusLocked, c.CalculationStatus)
	})

	t.Run("locking twice is a no-op", func(t *testing.T) {
		c := createComputedCalculation(t)
		now := time.Now()
		require.NoError(t, c.Lock(actor, now))
		first := *c.LockedAt
		require.NoError(t, c.Lock(uuid.New(), now.Add(time.Hour)))
		assert.Equal(t, first, *c.LockedAt)
	})

	t.Run("cannot lock a pending row", func(t *testing.T) {
		c := createTestCalculation(t)
		err := c.Lock(actor, time.Now())
		require.Error(t, err)
	})

	t.Run("locked row rejects mutation", func(t *testing.T) {
		c := createComputedCalculation(t)
		require.NoError(t, c.Lock(actor, time.Now()))

		err := c.ApplyAdjustment(decimal.NewFromInt(500), time.Now())
		require.Error(t, err)
		assert.Equal(t, "CALCULATION_LOCKED", shared.IsDomainError(err).Code)
	})
}

func TestEmployeePayrollCalculation_NewVersion(t *testing.T) {
	c := createComputedCalculation(t)
	require.NoError(t, c.Lock(uuid.New(), time.Now()))

	next := c.NewVersion(time.Now())

	assert.Equal(t, c.Version+1, next.Version)
	assert.NotEqual(t, c.ID, next.ID)
	require.NotNil(t, next.PreviousVersionID)
	assert.Equal(t, c.ID, *next.PreviousVersionID)
	assert.False(t, next.IsLocked())
	assert.True(t, next.NetPay.Equal(c.NetPay))
	assert.Equal(t, CalculationStatusCalculated, next.CalculationStatus)
}

func TestEmployeePayrollCalculation_ApplyAdjustment(t *testing.T) {
	t.Run("addition raises final net pay only", func(t *testing.T) {
		c := createComputedCalculation(t)
		require.NoError(t, c.ApplyAdjustment(decimal.NewFromInt(500), time.Now()))

		assert.True(t, c.NetPay.Equal(decimal.NewFromInt(13000)))
		assert.True(t, c.FinalNetPay.Equal(decimal.NewFromInt(13500)))
		assert.True(t, c.HasAdjustment)
		assert.Equal(t, CalculationStatusAdjusted, c.CalculationStatus)
		require.NoError(t, c.Reconcile())
	})

	t.Run("deduction lowers final net pay", func(t *testing.T) {
		c := createComputedCalculation(t)
		require.NoError(t, c.ApplyAdjustment(decimal.NewFromInt(-300), time.Now()))
		assert.True(t, c.FinalNetPay.Equal(decimal.NewFromInt(12700)))
	})
}

func TestEmployeePayrollCalculation_Reconcile(t *testing.T) {
	t.Run("clean row reconciles", func(t *testing.T) {
		c := createComputedCalculation(t)
		require.NoError(t, c.Reconcile())
	})

	t.Run("tampered gross is an integrity violation", func(t *testing.T) {
		c := createComputedCalculation(t)
		c.GrossPay = c.GrossPay.Add(decimal.NewFromInt(1))

		err := c.Reconcile()
		require.Error(t, err)
		assert.Equal(t, "INTEGRITY_VIOLATION", shared.IsDomainError(err).Code)
	})

	t.Run("tampered final net is an integrity violation", func(t *testing.T) {
		c := createComputedCalculation(t)
		c.FinalNetPay = c.FinalNetPay.Sub(decimal.NewFromFloat(0.05))

		err := c.Reconcile()
		require.Error(t, err)
		assert.Equal(t, "INTEGRITY_VIOLATION", shared.IsDomainError(err).Code)
	})
}
