package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSalaryComponent(t *testing.T) {
	t.Run("creates active taxable component", func(t *testing.T) {
		sc, err := NewSalaryComponent("MEAL", "Meal Allowance", ComponentTypeEarning, CalcMethodFixed, time.Now())
		require.NoError(t, err)
		assert.True(t, sc.Active)
		assert.True(t, sc.Taxable)
	})

	t.Run("rejects invalid inputs", func(t *testing.T) {
		_, err := NewSalaryComponent("", "Meal", ComponentTypeEarning, CalcMethodFixed, time.Now())
		require.Error(t, err)
		_, err = NewSalaryComponent("MEAL", "Meal", ComponentType("bonus"), CalcMethodFixed, time.Now())
		require.Error(t, err)
		_, err = NewSalaryComponent("MEAL", "Meal", ComponentTypeEarning, CalculationMethod("magic"), time.Now())
		require.Error(t, err)
	})
}

func TestSalaryComponent_Resolve(t *testing.T) {
	basic := decimal.NewFromInt(15000)

	t.Run("fixed returns the amount", func(t *testing.T) {
		sc, err := NewSalaryComponent("MEAL", "Meal Allowance", ComponentTypeEarning, CalcMethodFixed, time.Now())
		require.NoError(t, err)
		sc.Amount = decimal.NewFromInt(1500)

		got, err := sc.Resolve(basic, decimal.Zero)
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(1500)))
	})

	t.Run("percent of basic", func(t *testing.T) {
		sc, err := NewSalaryComponent("COLA", "Cost of Living", ComponentTypeEarning, CalcMethodPercentOfBasic, time.Now())
		require.NoError(t, err)
		sc.Percentage = decimal.NewFromInt(10)

		got, err := sc.Resolve(basic, decimal.Zero)
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(1500)))
	})

	t.Run("percent of component requires a reference", func(t *testing.T) {
		sc, err := NewSalaryComponent("NIGHT", "Night Differential", ComponentTypeEarning, CalcMethodPercentOfComponent, time.Now())
		require.NoError(t, err)
		sc.Percentage = decimal.NewFromInt(10)

		_, err = sc.Resolve(basic, decimal.NewFromInt(2000))
		require.Error(t, err)
	})

	t.Run("ot multiplier applies the category rate", func(t *testing.T) {
		sc, err := NewSalaryComponent("OT-REG", "Regular OT", ComponentTypeEarning, CalcMethodOTMultiplier, time.Now())
		require.NoError(t, err)
		sc.OTCategory = OvertimeRegular

		// 2 hours at 150/hr = 300 reference pay, 1.25x = 375
		got, err := sc.Resolve(basic, decimal.NewFromInt(300))
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(375)))
	})
}

func TestSalaryComponent_Deactivate(t *testing.T) {
	sc, err := NewSalaryComponent("MEAL", "Meal Allowance", ComponentTypeEarning, CalcMethodFixed, time.Now())
	require.NoError(t, err)

	version := sc.Version
	sc.Deactivate(time.Now())
	assert.False(t, sc.Active)
	assert.Equal(t, version+1, sc.Version)
}

func TestOvertimeCategory_Multiplier(t *testing.T) {
	assert.Equal(t, 1.25, OvertimeRegular.Multiplier())
	assert.Equal(t, 1.30, OvertimeRestDay.Multiplier())
	assert.Equal(t, 2.00, OvertimeDouble.Multiplier())
	assert.Equal(t, 2.60, OvertimeTriple.Multiplier())
	assert.Equal(t, 0.0, OvertimeCategory("none").Multiplier())
}
