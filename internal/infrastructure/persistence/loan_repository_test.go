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

	"github.com/suweldo/payroll-backend/internal/domain/loan"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

func setupLoanTestDB(t *testing.T) *gorm.DB {
	return newTestDB(t, &loan.EmployeeLoan{})
}

func newTestLoan(t *testing.T, loanNumber string, employeeID uuid.UUID, startDate time.Time) *loan.EmployeeLoan {
	t.Helper()
	l, err := loan.NewEmployeeLoan(loanNumber, employeeID, loan.LoanTypeSSSSalary,
		decimal.NewFromInt(10000), decimal.NewFromInt(11000), decimal.NewFromInt(1100),
		10, startDate, time.Now())
	require.NoError(t, err)
	return l
}

func TestLoanRepository_FindActiveByEmployee(t *testing.T) {
	db := setupLoanTestDB(t)
	repo := NewGormLoanRepository(db)
	ctx := context.Background()

	employeeID := uuid.New()
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	active := newTestLoan(t, "LN-2026-0001", employeeID, start)
	require.NoError(t, repo.Save(ctx, active))

	completed := newTestLoan(t, "LN-2026-0002", employeeID, start.AddDate(0, 1, 0))
	completed.Status = loan.LoanStatusCompleted
	require.NoError(t, repo.Save(ctx, completed))

	other := newTestLoan(t, "LN-2026-0003", uuid.New(), start)
	require.NoError(t, repo.Save(ctx, other))

	loans, err := repo.FindActiveByEmployee(ctx, employeeID)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, "LN-2026-0001", loans[0].LoanNumber)
}

func TestLoanRepository_FindByLoanNumber(t *testing.T) {
	db := setupLoanTestDB(t)
	repo := NewGormLoanRepository(db)
	ctx := context.Background()

	l := newTestLoan(t, "LN-2026-0100", uuid.New(), time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, l))

	found, err := repo.FindByLoanNumber(ctx, "LN-2026-0100")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, l.ID, found.ID)

	missing, err := repo.FindByLoanNumber(ctx, "LN-0000-0000")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLoanRepository_FindStale(t *testing.T) {
	db := setupLoanTestDB(t)
	repo := NewGormLoanRepository(db)
	ctx := context.Background()

	cutoff := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	// Deducted inside the grace window: not stale.
	recent := newTestLoan(t, "LN-2026-0201", uuid.New(), cutoff.AddDate(0, -6, 0))
	recentDeduction := cutoff.AddDate(0, 0, 10)
	recent.LastDeductionDate = &recentDeduction
	require.NoError(t, repo.Save(ctx, recent))

	// Last deduction predates the cutoff: stale.
	lapsed := newTestLoan(t, "LN-2026-0202", uuid.New(), cutoff.AddDate(0, -6, 0))
	oldDeduction := cutoff.AddDate(0, -3, 0)
	lapsed.LastDeductionDate = &oldDeduction
	require.NoError(t, repo.Save(ctx, lapsed))

	// Never deducted and opened before the cutoff: stale.
	neverDeducted := newTestLoan(t, "LN-2026-0203", uuid.New(), cutoff.AddDate(0, -2, 0))
	require.NoError(t, repo.Save(ctx, neverDeducted))

	// Opened after the cutoff with no deductions yet: not stale.
	fresh := newTestLoan(t, "LN-2026-0204", uuid.New(), cutoff.AddDate(0, 1, 0))
	require.NoError(t, repo.Save(ctx, fresh))

	// Already defaulted loans stay out of the sweep.
	defaulted := newTestLoan(t, "LN-2026-0205", uuid.New(), cutoff.AddDate(0, -6, 0))
	defaulted.Status = loan.LoanStatusDefaulted
	require.NoError(t, repo.Save(ctx, defaulted))

	stale, err := repo.FindStale(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, stale, 2)
	numbers := []string{stale[0].LoanNumber, stale[1].LoanNumber}
	assert.Contains(t, numbers, "LN-2026-0202")
	assert.Contains(t, numbers, "LN-2026-0203")
}

func TestLoanRepository_SaveWithLock(t *testing.T) {
	db := setupLoanTestDB(t)
	repo := NewGormLoanRepository(db)
	ctx := context.Background()

	l := newTestLoan(t, "LN-2026-0300", uuid.New(), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, l))

	observed := l.Version
	l.Version++
	l.InstallmentsPaid = 1
	require.NoError(t, repo.SaveWithLock(ctx, l, observed))

	err := repo.SaveWithLock(ctx, l, observed)
	require.Error(t, err)
	de := shared.IsDomainError(err)
	require.NotNil(t, de)
	assert.Equal(t, "CONCURRENT_MODIFICATION", de.Code)
}
