package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/suweldo/payroll-backend/internal/domain/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

func setupPeriodTestDB(t *testing.T) *gorm.DB {
	return newTestDB(t, &payroll.PayrollPeriod{})
}

func newTestPeriod(t *testing.T, periodNumber string, start, end time.Time) *payroll.PayrollPeriod {
	t.Helper()
	cutoff := end.AddDate(0, 0, 1)
	payDate := end.AddDate(0, 0, 5)
	period, err := payroll.NewPayrollPeriod(periodNumber, start, end, cutoff, payDate, time.Now())
	require.NoError(t, err)
	return period
}

func TestPeriodRepository_SaveAndFind(t *testing.T) {
	db := setupPeriodTestDB(t)
	repo := NewGormPeriodRepository(db)
	ctx := context.Background()

	t.Run("saves and finds by ID", func(t *testing.T) {
		period := newTestPeriod(t, "2026-08-A",
			time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC))
		require.NoError(t, repo.Save(ctx, period))

		found, err := repo.FindByID(ctx, period.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "2026-08-A", found.PeriodNumber)
		assert.Equal(t, payroll.PeriodStatusDraft, found.Status)
	})

	t.Run("finds by period number", func(t *testing.T) {
		found, err := repo.FindByPeriodNumber(ctx, "2026-08-A")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "2026-08-A", found.PeriodNumber)
	})

	t.Run("returns nil without error when missing", func(t *testing.T) {
		found, err := repo.FindByPeriodNumber(ctx, "1999-01-X")
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestPeriodRepository_DateQueries(t *testing.T) {
	db := setupPeriodTestDB(t)
	repo := NewGormPeriodRepository(db)
	ctx := context.Background()

	first := newTestPeriod(t, "2026-09-A",
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC))
	second := newTestPeriod(t, "2026-09-B",
		time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	t.Run("finds period containing a date", func(t *testing.T) {
		found, err := repo.FindContainingDate(ctx, time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "2026-09-A", found.PeriodNumber)
	})

	t.Run("finds overlapping periods", func(t *testing.T) {
		overlapping, err := repo.FindOverlapping(ctx,
			time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.Len(t, overlapping, 2)
		assert.Equal(t, "2026-09-A", overlapping[0].PeriodNumber)
	})

	t.Run("disjoint range overlaps nothing", func(t *testing.T) {
		overlapping, err := repo.FindOverlapping(ctx,
			time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Empty(t, overlapping)
	})
}

func TestPeriodRepository_FindAll(t *testing.T) {
	db := setupPeriodTestDB(t)
	repo := NewGormPeriodRepository(db)
	ctx := context.Background()

	draft := newTestPeriod(t, "2026-07-A",
		time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, draft))

	deleted := newTestPeriod(t, "2026-07-B",
		time.Date(2026, 7, 16, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC))
	now := time.Now()
	deleted.DeletedAt = &now
	require.NoError(t, repo.Save(ctx, deleted))

	t.Run("filters by status", func(t *testing.T) {
		status := payroll.PeriodStatusDraft
		filter := payroll.PeriodFilter{Filter: shared.DefaultFilter(), Status: &status}
		periods, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, periods, 1)
		assert.Equal(t, "2026-07-A", periods[0].PeriodNumber)
	})

	t.Run("excludes soft-deleted rows", func(t *testing.T) {
		periods, err := repo.FindAll(ctx, payroll.PeriodFilter{Filter: shared.DefaultFilter()})
		require.NoError(t, err)
		require.Len(t, periods, 1)

		count, err := repo.Count(ctx, payroll.PeriodFilter{Filter: shared.DefaultFilter()})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestPeriodRepository_SaveWithLock(t *testing.T) {
	db := setupPeriodTestDB(t)
	repo := NewGormPeriodRepository(db)
	ctx := context.Background()

	period := newTestPeriod(t, "2026-06-A",
		time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, period))

	t.Run("succeeds on matching version", func(t *testing.T) {
		observed := period.Version
		period.Version++
		period.Status = payroll.PeriodStatusCalculating
		require.NoError(t, repo.SaveWithLock(ctx, period, observed))

		found, err := repo.FindByID(ctx, period.ID)
		require.NoError(t, err)
		assert.Equal(t, payroll.PeriodStatusCalculating, found.Status)
		assert.Equal(t, 2, found.Version)
	})

	t.Run("rejects a stale version", func(t *testing.T) {
		period.Version++
		err := repo.SaveWithLock(ctx, period, 1)
		require.Error(t, err)
		de := shared.IsDomainError(err)
		require.NotNil(t, de)
		assert.Equal(t, "CONCURRENT_MODIFICATION", de.Code)
	})
}
