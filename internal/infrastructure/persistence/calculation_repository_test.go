package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/suweldo/payroll-backend/internal/domain/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

func setupCalculationTestDB(t *testing.T) *gorm.DB {
	return newTestDB(t, &payroll.EmployeePayrollCalculation{}, &payroll.PayrollPeriod{})
}

func newTestCalculation(t *testing.T, periodID, employeeID uuid.UUID, employeeNumber string) *payroll.EmployeePayrollCalculation {
	t.Helper()
	calc, err := payroll.NewEmployeePayrollCalculation(periodID, employeeID, employeeNumber, time.Now())
	require.NoError(t, err)
	require.NoError(t, calc.SetEarnings(
		decimal.NewFromInt(20000), decimal.Zero,
		decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero,
		decimal.Zero, decimal.Zero, decimal.Zero))
	require.NoError(t, calc.SetDeductions(
		decimal.NewFromInt(900), decimal.NewFromInt(400), decimal.NewFromInt(100),
		decimal.NewFromInt(1500), decimal.Zero, decimal.Zero,
		decimal.Zero, decimal.Zero, decimal.Zero))
	require.NoError(t, calc.MarkCalculated(time.Now()))
	return calc
}

func TestCalculationRepository_FindCurrent(t *testing.T) {
	db := setupCalculationTestDB(t)
	repo := NewGormCalculationRepository(db)
	ctx := context.Background()

	periodID := uuid.New()
	employeeID := uuid.New()

	v1 := newTestCalculation(t, periodID, employeeID, "EMP-001")
	require.NoError(t, repo.Save(ctx, v1))

	t.Run("single version is the head", func(t *testing.T) {
		current, err := repo.FindCurrent(ctx, periodID, employeeID)
		require.NoError(t, err)
		require.NotNil(t, current)
		assert.Equal(t, 1, current.Version)
	})

	t.Run("highest version wins after supersession", func(t *testing.T) {
		require.NoError(t, v1.Lock(uuid.New(), time.Now()))
		v2 := v1.NewVersion(time.Now())
		require.NoError(t, repo.SaveNewVersion(ctx, v1, v2))

		current, err := repo.FindCurrent(ctx, periodID, employeeID)
		require.NoError(t, err)
		require.NotNil(t, current)
		assert.Equal(t, 2, current.Version)
		require.NotNil(t, current.PreviousVersionID)
		assert.Equal(t, v1.ID, *current.PreviousVersionID)
	})

	t.Run("returns nil for unknown employee", func(t *testing.T) {
		current, err := repo.FindCurrent(ctx, periodID, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, current)
	})
}

func TestCalculationRepository_FindVersionChain(t *testing.T) {
	db := setupCalculationTestDB(t)
	repo := NewGormCalculationRepository(db)
	ctx := context.Background()

	periodID := uuid.New()
	employeeID := uuid.New()

	v1 := newTestCalculation(t, periodID, employeeID, "EMP-002")
	require.NoError(t, repo.Save(ctx, v1))
	require.NoError(t, v1.Lock(uuid.New(), time.Now()))
	v2 := v1.NewVersion(time.Now())
	require.NoError(t, repo.SaveNewVersion(ctx, v1, v2))
	require.NoError(t, v2.Lock(uuid.New(), time.Now()))
	v3 := v2.NewVersion(time.Now())
	require.NoError(t, repo.SaveNewVersion(ctx, v2, v3))

	chain, err := repo.FindVersionChain(ctx, periodID, employeeID)
	require.NoError(t, err)
	require.Len(t, chain, 3)
	assert.Equal(t, 1, chain[0].Version)
	assert.Equal(t, 2, chain[1].Version)
	assert.Equal(t, 3, chain[2].Version)
}

func TestCalculationRepository_SaveNewVersion_DuplicateSuccessor(t *testing.T) {
	db := setupCalculationTestDB(t)
	repo := NewGormCalculationRepository(db)
	ctx := context.Background()

	periodID := uuid.New()
	employeeID := uuid.New()

	v1 := newTestCalculation(t, periodID, employeeID, "EMP-003")
	require.NoError(t, repo.Save(ctx, v1))
	require.NoError(t, v1.Lock(uuid.New(), time.Now()))

	first := v1.NewVersion(time.Now())
	require.NoError(t, repo.SaveNewVersion(ctx, v1, first))

	// A concurrent writer that also observed v1 as the head loses.
	second := v1.NewVersion(time.Now())
	err := repo.SaveNewVersion(ctx, v1, second)
	require.Error(t, err)
	de := shared.IsDomainError(err)
	require.NotNil(t, de)
	assert.Equal(t, "CONCURRENT_MODIFICATION", de.Code)
}

func TestCalculationRepository_FindExceptions(t *testing.T) {
	db := setupCalculationTestDB(t)
	repo := NewGormCalculationRepository(db)
	ctx := context.Background()

	periodID := uuid.New()

	clean := newTestCalculation(t, periodID, uuid.New(), "EMP-010")
	require.NoError(t, repo.Save(ctx, clean))

	flagged := newTestCalculation(t, periodID, uuid.New(), "EMP-011")
	flagged.HasException = true
	require.NoError(t, repo.Save(ctx, flagged))

	// Superseded flagged version; only its successor should show.
	resolved := newTestCalculation(t, periodID, uuid.New(), "EMP-012")
	resolved.HasException = true
	require.NoError(t, repo.Save(ctx, resolved))
	require.NoError(t, resolved.Lock(uuid.New(), time.Now()))
	successor := resolved.NewVersion(time.Now())
	successor.HasException = false
	successor.CalculationStatus = payroll.CalculationStatusCalculated
	require.NoError(t, repo.SaveNewVersion(ctx, resolved, successor))

	exceptions, err := repo.FindExceptions(ctx, periodID)
	require.NoError(t, err)
	require.Len(t, exceptions, 1)
	assert.Equal(t, "EMP-011", exceptions[0].EmployeeNumber)
}

func TestCalculationRepository_FindPaidYearToDate(t *testing.T) {
	db := setupCalculationTestDB(t)
	calcRepo := NewGormCalculationRepository(db)
	periodRepo := NewGormPeriodRepository(db)
	ctx := context.Background()

	employeeID := uuid.New()

	savePeriodWithCalc := func(t *testing.T, periodNumber string, payDate time.Time, locked bool) {
		t.Helper()
		start := payDate.AddDate(0, 0, -20)
		end := payDate.AddDate(0, 0, -5)
		period, err := payroll.NewPayrollPeriod(periodNumber, start, end, end, payDate, time.Now())
		require.NoError(t, err)
		require.NoError(t, periodRepo.Save(ctx, period))

		calc := newTestCalculation(t, period.ID, employeeID, "EMP-020")
		if locked {
			require.NoError(t, calc.Lock(uuid.New(), time.Now()))
		}
		require.NoError(t, calcRepo.Save(ctx, calc))
	}

	savePeriodWithCalc(t, "2026-01-A", time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC), true)
	savePeriodWithCalc(t, "2026-02-A", time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC), true)
	// Unlocked run is still provisional and excluded from YTD.
	savePeriodWithCalc(t, "2026-03-A", time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC), false)
	// Paid after the cutoff.
	savePeriodWithCalc(t, "2026-06-A", time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC), true)
	// Prior year.
	savePeriodWithCalc(t, "2025-12-A", time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC), true)

	cutoff := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)
	ytd, err := calcRepo.FindPaidYearToDate(ctx, employeeID, 2026, cutoff)
	require.NoError(t, err)
	require.Len(t, ytd, 2)
}

func TestCalculationRepository_Count(t *testing.T) {
	db := setupCalculationTestDB(t)
	repo := NewGormCalculationRepository(db)
	ctx := context.Background()

	periodID := uuid.New()
	for i, num := range []string{"EMP-030", "EMP-031"} {
		calc := newTestCalculation(t, periodID, uuid.New(), num)
		calc.HasException = i == 0
		require.NoError(t, repo.Save(ctx, calc))
	}

	hasException := true
	count, err := repo.Count(ctx, periodID, payroll.CalculationFilter{HasException: &hasException})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	total, err := repo.Count(ctx, periodID, payroll.CalculationFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}
