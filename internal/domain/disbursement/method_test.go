package disbursement

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentMethod_SupportsAmount(t *testing.T) {
	m, err := NewPaymentMethod("GCASH", "GCash", MethodTypeEWallet, time.Now())
	require.NoError(t, err)
	m.MinAmount = decimal.NewFromInt(100)
	m.MaxAmount = decimal.NewFromInt(50000)

	assert.False(t, m.SupportsAmount(decimal.NewFromInt(99)))
	assert.True(t, m.SupportsAmount(decimal.NewFromInt(100)))
	assert.True(t, m.SupportsAmount(decimal.NewFromInt(50000)))
	assert.False(t, m.SupportsAmount(decimal.NewFromInt(50001)))

	t.Run("zero max means no upper limit", func(t *testing.T) {
		m.MaxAmount = decimal.Zero
		assert.True(t, m.SupportsAmount(decimal.NewFromInt(1000000)))
	})
}

func TestPaymentMethod_IsAvailableForPayment(t *testing.T) {
	t.Run("disabled method never available", func(t *testing.T) {
		m, err := NewPaymentMethod("BDO", "BDO Payroll", MethodTypeBank, time.Now())
		require.NoError(t, err)
		m.Disable(time.Now())
		assert.False(t, m.IsAvailableForPayment(time.Now()))
	})

	t.Run("real-time rail honors the cutoff", func(t *testing.T) {
		m, err := NewPaymentMethod("INSTAPAY", "InstaPay", MethodTypeBank, time.Now())
		require.NoError(t, err)
		m.SettlementSpeed = SettlementRealTime
		cutoff := 15 * 60 // 3 PM
		m.CutoffMinutes = &cutoff

		morning := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
		late := time.Date(2025, 1, 10, 15, 30, 0, 0, time.UTC)
		assert.True(t, m.IsAvailableForPayment(morning))
		assert.False(t, m.IsAvailableForPayment(late))
	})

	t.Run("next-day rail ignores the cutoff", func(t *testing.T) {
		m, err := NewPaymentMethod("PESONET", "PESONet", MethodTypeBank, time.Now())
		require.NoError(t, err)
		cutoff := 15 * 60
		m.CutoffMinutes = &cutoff

		late := time.Date(2025, 1, 10, 18, 0, 0, 0, time.UTC)
		assert.True(t, m.IsAvailableForPayment(late))
	})
}

func TestNewPaymentMethod_Validation(t *testing.T) {
	_, err := NewPaymentMethod("", "Cash", MethodTypeCash, time.Now())
	require.Error(t, err)

	_, err = NewPaymentMethod("CHECK", "Check", MethodType("check"), time.Now())
	require.Error(t, err)
}
