package loan

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestDeduction(t *testing.T) *LoanDeduction {
	d, err := NewLoanDeduction(
		uuid.New(), uuid.New(), 1,
		decimal.NewFromInt(1000),
		time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Now(),
	)
	require.NoError(t, err)
	return d
}

func TestNewLoanDeduction(t *testing.T) {
	t.Run("schedules a pending installment", func(t *testing.T) {
		d := createTestDeduction(t)
		assert.Equal(t, DeductionStatusPending, d.Status)
		assert.True(t, d.OutstandingAmount().Equal(decimal.NewFromInt(1000)))
	})

	t.Run("rejects invalid inputs", func(t *testing.T) {
		_, err := NewLoanDeduction(uuid.Nil, uuid.New(), 1, decimal.NewFromInt(1000), time.Now(), time.Now())
		require.Error(t, err)
		_, err = NewLoanDeduction(uuid.New(), uuid.New(), 0, decimal.NewFromInt(1000), time.Now(), time.Now())
		require.Error(t, err)
		_, err = NewLoanDeduction(uuid.New(), uuid.New(), 1, decimal.Zero, time.Now(), time.Now())
		require.Error(t, err)
	})
}

func TestLoanDeduction_IsDue(t *testing.T) {
	d := createTestDeduction(t)

	assert.False(t, d.IsDue(time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC)))
	assert.True(t, d.IsDue(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.True(t, d.IsDue(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))

	require.NoError(t, d.MarkDeducted(uuid.New(), time.Now()))
	assert.False(t, d.IsDue(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))
}

func TestLoanDeduction_Lifecycle(t *testing.T) {
	periodID := uuid.New()

	t.Run("pending to deducted to paid", func(t *testing.T) {
		d := createTestDeduction(t)
		now := time.Now()

		require.NoError(t, d.MarkDeducted(periodID, now))
		assert.Equal(t, DeductionStatusDeducted, d.Status)
		assert.Equal(t, periodID, *d.PeriodID)

		require.NoError(t, d.Settle(decimal.NewFromInt(1000), now))
		assert.Equal(t, DeductionStatusPaid, d.Status)
		assert.True(t, d.OutstandingAmount().IsZero())
	})

	t.Run("partial settlement", func(t *testing.T) {
		d := createTestDeduction(t)
		now := time.Now()
		require.NoError(t, d.MarkDeducted(periodID, now))

		require.NoError(t, d.Settle(decimal.NewFromInt(600), now))
		assert.Equal(t, DeductionStatusPartialPaid, d.Status)
		assert.True(t, d.OutstandingAmount().Equal(decimal.NewFromInt(400)))

		require.NoError(t, d.Settle(decimal.NewFromInt(400), now))
		assert.Equal(t, DeductionStatusPaid, d.Status)
	})

	t.Run("cannot settle a pending installment", func(t *testing.T) {
		d := createTestDeduction(t)
		require.Error(t, d.Settle(decimal.NewFromInt(1000), time.Now()))
	})

	t.Run("cannot deduct twice", func(t *testing.T) {
		d := createTestDeduction(t)
		now := time.Now()
		require.NoError(t, d.MarkDeducted(periodID, now))
		require.Error(t, d.MarkDeducted(periodID, now))
	})
}

func TestLoanDeduction_Overdue(t *testing.T) {
	t.Run("overdue adds penalty to outstanding", func(t *testing.T) {
		d := createTestDeduction(t)
		now := time.Now()

		require.NoError(t, d.MarkOverdue(decimal.NewFromInt(50), now))
		assert.Equal(t, DeductionStatusOverdue, d.Status)
		assert.True(t, d.OutstandingAmount().Equal(decimal.NewFromInt(1050)))
	})

	t.Run("overdue installment can still be deducted", func(t *testing.T) {
		d := createTestDeduction(t)
		now := time.Now()
		require.NoError(t, d.MarkOverdue(decimal.NewFromInt(50), now))
		require.NoError(t, d.MarkDeducted(uuid.New(), now))
	})

	t.Run("rejects negative penalty", func(t *testing.T) {
		d := createTestDeduction(t)
		require.Error(t, d.MarkOverdue(decimal.NewFromInt(-1), time.Now()))
	})
}

func TestLoanDeduction_OutstandingFloor(t *testing.T) {
	d := createTestDeduction(t)
	now := time.Now()
	require.NoError(t, d.MarkDeducted(uuid.New(), now))
	require.NoError(t, d.Settle(decimal.NewFromInt(1200), now))

	// Overpayment never reports a negative outstanding
	assert.True(t, d.OutstandingAmount().IsZero())
	assert.Equal(t, DeductionStatusPaid, d.Status)
}

func TestLoanDeduction_Waive(t *testing.T) {
	admin := uuid.New()

	t.Run("waives a pending installment", func(t *testing.T) {
		d := createTestDeduction(t)
		require.NoError(t, d.WaiveInstallment(admin, "calamity relief", time.Now()))
		assert.Equal(t, DeductionStatusWaived, d.Status)
		assert.Equal(t, admin, *d.WaivedBy)
	})

	t.Run("cannot waive a paid installment", func(t *testing.T) {
		d := createTestDeduction(t)
		now := time.Now()
		require.NoError(t, d.MarkDeducted(uuid.New(), now))
		require.NoError(t, d.Settle(decimal.NewFromInt(1000), now))
		require.Error(t, d.WaiveInstallment(admin, "x", now))
	})
}
