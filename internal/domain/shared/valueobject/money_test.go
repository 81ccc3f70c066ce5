package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid inputs", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(1500.50), PHP)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(1500.50)))
		assert.Equal(t, PHP, m.Currency())
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
	})
}

func TestMoneyArithmetic(t *testing.T) {
	a := NewMoneyPHPFromFloat(15000.00)
	b := NewMoneyPHPFromFloat(2000.00)

	t.Run("add", func(t *testing.T) {
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, "17000.00", sum.StringFixed(2))
	})

	t.Run("subtract", func(t *testing.T) {
		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.Equal(t, "13000.00", diff.StringFixed(2))
	})

	t.Run("currency mismatch rejected", func(t *testing.T) {
		usd, err := NewMoney(decimal.NewFromInt(10), USD)
		require.NoError(t, err)
		_, err = a.Add(usd)
		assert.Error(t, err)
		_, err = a.Subtract(usd)
		assert.Error(t, err)
	})

	t.Run("multiply by overtime factor", func(t *testing.T) {
		hourly := NewMoneyPHPFromFloat(125.00)
		ot := hourly.MultiplyByFloat(1.25)
		assert.Equal(t, "156.25", ot.StringFixed(2))
	})

	t.Run("divide by zero rejected", func(t *testing.T) {
		_, err := a.Divide(decimal.Zero)
		assert.Error(t, err)
	})
}

func TestMoneyRounding(t *testing.T) {
	m := NewMoneyPHPFromFloat(1234.5678)
	assert.Equal(t, "1234.57", m.RoundCentavo().StringFixed(2))
}

func TestMoneyComparisons(t *testing.T) {
	a := NewMoneyPHPFromFloat(100)
	b := NewMoneyPHPFromFloat(200)

	less, err := a.LessThan(b)
	require.NoError(t, err)
	assert.True(t, less)

	greater, err := b.GreaterThan(a)
	require.NoError(t, err)
	assert.True(t, greater)

	assert.True(t, a.Equals(NewMoneyPHPFromFloat(100)))
	assert.False(t, a.Equals(b))
}

func TestMoneySigns(t *testing.T) {
	pos := NewMoneyPHPFromFloat(50)
	neg := pos.Negate()

	assert.True(t, pos.IsPositive())
	assert.True(t, neg.IsNegative())
	assert.True(t, ZeroPHP().IsZero())
	assert.True(t, neg.Abs().Equals(pos))
}

func TestMoneyAllocate(t *testing.T) {
	t.Run("splits evenly with remainder to earliest parts", func(t *testing.T) {
		m := NewMoneyPHPFromFloat(100.00)
		parts, err := m.Allocate(3)
		require.NoError(t, err)
		require.Len(t, parts, 3)

		total := ZeroPHP()
		for _, p := range parts {
			total = total.MustAdd(p)
		}
		assert.True(t, total.Equals(m), "parts must sum to original amount")
		assert.Equal(t, "33.34", parts[0].StringFixed(2))
		assert.Equal(t, "33.33", parts[2].StringFixed(2))
	})

	t.Run("rejects non-positive parts", func(t *testing.T) {
		_, err := NewMoneyPHPFromFloat(10).Allocate(0)
		assert.Error(t, err)
	})
}

func TestMoneyPercentage(t *testing.T) {
	m := NewMoneyPHPFromFloat(20000)
	// PhilHealth-style 2.5% employee share
	share := m.CalculatePercentage(decimal.NewFromFloat(2.5))
	assert.Equal(t, "500.00", share.StringFixed(2))
}

func TestMoneyJSON(t *testing.T) {
	m := NewMoneyPHPFromFloat(13000.00)
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var back Money
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, m.Equals(back))
}

func TestMoneyScan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("15000.00"))
	assert.Equal(t, PHP, m.Currency())
	assert.Equal(t, "15000.00", m.StringFixed(2))

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())
}
