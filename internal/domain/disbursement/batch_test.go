package disbursement

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

func createTestBankBatch(t *testing.T) *BankFileBatch {
	b, err := NewBankFileBatch("BB-2025-0001", uuid.New(), uuid.New(), "BDO", time.Now())
	require.NoError(t, err)
	require.NoError(t, b.AddPayment(decimal.NewFromInt(13000), time.Now()))
	require.NoError(t, b.AddPayment(decimal.NewFromInt(17000), time.Now()))
	return b
}

func createGeneratedBankBatch(t *testing.T) *BankFileBatch {
	b := createTestBankBatch(t)
	err := b.RecordFileGenerated("BB-2025-0001.csv", "csv",
		"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
		"bank-files/2025/BB-2025-0001.csv", time.Now())
	require.NoError(t, err)
	return b
}

func TestBankFileBatch_Assembly(t *testing.T) {
	t.Run("accumulates payments while drafting", func(t *testing.T) {
		b := createTestBankBatch(t)
		assert.Equal(t, 2, b.PaymentCount)
		assert.True(t, b.TotalAmount.Equal(decimal.NewFromInt(30000)))
	})

	t.Run("empty batch cannot generate a file", func(t *testing.T) {
		b, err := NewBankFileBatch("BB-1", uuid.New(), uuid.New(), "BDO", time.Now())
		require.NoError(t, err)
		err = b.RecordFileGenerated("f.csv", "csv", "hash", "key", time.Now())
		require.Error(t, err)
		assert.Equal(t, "EMPTY_BATCH", shared.IsDomainError(err).Code)
	})

	t.Run("generated batch stops accepting payments", func(t *testing.T) {
		b := createGeneratedBankBatch(t)
		require.Error(t, b.AddPayment(decimal.NewFromInt(100), time.Now()))
	})
}

func TestBankFileBatch_CanSubmit(t *testing.T) {
	actor := uuid.New()

	t.Run("unvalidated batch cannot submit regardless of status", func(t *testing.T) {
		b := createGeneratedBankBatch(t)
		assert.False(t, b.IsValidated)
		assert.False(t, b.CanSubmit())
		require.Error(t, b.Submit(actor, time.Now()))
	})

	t.Run("validated and ready batch submits", func(t *testing.T) {
		b := createGeneratedBankBatch(t)
		require.NoError(t, b.MarkValidated(actor, time.Now()))
		assert.True(t, b.CanSubmit())

		require.NoError(t, b.Submit(actor, time.Now()))
		assert.Equal(t, BankBatchStatusSubmitted, b.Status)
		assert.NotEmpty(t, b.GetDomainEvents())
	})

	t.Run("draft batch cannot validate", func(t *testing.T) {
		b := createTestBankBatch(t)
		require.Error(t, b.MarkValidated(actor, time.Now()))
	})
}

func TestBankFileBatch_Confirmation(t *testing.T) {
	actor := uuid.New()
	now := time.Now()

	submitted := func(t *testing.T) *BankFileBatch {
		b := createGeneratedBankBatch(t)
		require.NoError(t, b.MarkValidated(actor, now))
		require.NoError(t, b.Submit(actor, now))
		return b
	}

	t.Run("bank confirmation closes the loop", func(t *testing.T) {
		b := submitted(t)
		require.NoError(t, b.Confirm("BDO-ACK-5512", now))
		assert.Equal(t, BankBatchStatusConfirmed, b.Status)
		assert.Equal(t, "BDO-ACK-5512", b.BankReference)
	})

	t.Run("bank rejection records the reason", func(t *testing.T) {
		b := submitted(t)
		require.NoError(t, b.RecordRejection("file format mismatch", now))
		assert.Equal(t, BankBatchStatusRejected, b.Status)
	})

	t.Run("cannot confirm an unsubmitted batch", func(t *testing.T) {
		b := createGeneratedBankBatch(t)
		require.Error(t, b.Confirm("REF", now))
	})
}

func createTestCashBatch(t *testing.T) *CashDistributionBatch {
	deadline := time.Now().AddDate(0, 0, 14)
	b, err := NewCashDistributionBatch("CB-2025-0001", uuid.New(), uuid.New(), deadline, time.Now())
	require.NoError(t, err)
	require.NoError(t, b.AddEnvelope(decimal.NewFromInt(13000), time.Now()))
	require.NoError(t, b.AddEnvelope(decimal.NewFromInt(8000), time.Now()))
	return b
}

func TestCashDistributionBatch_DualControl(t *testing.T) {
	counter := uuid.New()
	witness := uuid.New()
	now := time.Now()

	t.Run("counter alone is not enough", func(t *testing.T) {
		b := createTestCashBatch(t)
		require.NoError(t, b.RecordCount(counter, now))
		assert.False(t, b.CanStartDistribution())
		require.Error(t, b.StartDistribution(now))
	})

	t.Run("witness alone is not enough", func(t *testing.T) {
		b := createTestCashBatch(t)
		require.NoError(t, b.RecordWitness(witness, now))
		assert.False(t, b.CanStartDistribution())
	})

	t.Run("witness must differ from counter", func(t *testing.T) {
		b := createTestCashBatch(t)
		require.NoError(t, b.RecordCount(counter, now))
		err := b.RecordWitness(counter, now)
		require.Error(t, err)
		assert.Equal(t, "DUAL_CONTROL_VIOLATION", shared.IsDomainError(err).Code)
	})

	t.Run("both sign-offs ready the batch", func(t *testing.T) {
		b := createTestCashBatch(t)
		require.NoError(t, b.RecordCount(counter, now))
		require.NoError(t, b.RecordWitness(witness, now))
		assert.Equal(t, CashBatchStatusReady, b.Status)
		assert.True(t, b.CanStartDistribution())
		require.NoError(t, b.StartDistribution(now))
		assert.Equal(t, CashBatchStatusDistributing, b.Status)
	})
}

func TestCashDistributionBatch_Distribution(t *testing.T) {
	counter := uuid.New()
	witness := uuid.New()
	now := time.Now()

	distributing := func(t *testing.T) *CashDistributionBatch {
		b := createTestCashBatch(t)
		require.NoError(t, b.RecordCount(counter, now))
		require.NoError(t, b.RecordWitness(witness, now))
		require.NoError(t, b.StartDistribution(now))
		return b
	}

	t.Run("claims and unclaimed tally to envelope count", func(t *testing.T) {
		b := distributing(t)
		require.NoError(t, b.RecordClaim(now))
		require.NoError(t, b.RecordUnclaimed(now))
		require.Error(t, b.RecordClaim(now))
	})

	t.Run("close without unclaimed needs no reference", func(t *testing.T) {
		b := distributing(t)
		require.NoError(t, b.RecordClaim(now))
		require.NoError(t, b.RecordClaim(now))
		require.NoError(t, b.Close("", now))
		assert.Equal(t, CashBatchStatusClosed, b.Status)
		assert.Empty(t, b.RedepositReference)
	})

	t.Run("unclaimed envelopes require a redeposit reference", func(t *testing.T) {
		b := distributing(t)
		require.NoError(t, b.RecordClaim(now))
		require.NoError(t, b.RecordUnclaimed(now))

		require.Error(t, b.Close("", now))
		require.NoError(t, b.Close("RD-2025-0001", now))
		assert.Equal(t, "RD-2025-0001", b.RedepositReference)
		assert.NotNil(t, b.RedepositedAt)
	})

	t.Run("cannot close with unaccounted envelopes", func(t *testing.T) {
		b := distributing(t)
		require.NoError(t, b.RecordClaim(now))
		err := b.Close("", now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unaccounted")
	})
}

func TestCashDistributionBatch_Deadline(t *testing.T) {
	deadline := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	b, err := NewCashDistributionBatch("CB-1", uuid.New(), uuid.New(), deadline, time.Now())
	require.NoError(t, err)

	assert.False(t, b.PastUnclaimedDeadline(time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC)))
	assert.True(t, b.PastUnclaimedDeadline(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))
}
