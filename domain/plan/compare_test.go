package plan

import (
	"errors"
	"testing"

	"budgetplan/domain/core"
	apperrors "budgetplan/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populated(t *testing.T, cfg Config, price, qty float64) *Plan {
	t.Helper()
	p := newPlan(t, cfg)
	p.ProductPrices.Fill(price)
	p.ProductTable.Fill(qty)
	p.RawMaterialsPrices.Fill(1)
	p.RawMaterialsQuantities.Fill(qty / 2)
	p.HRCosts.Fill(-10)
	p.Depreciations.Fill(-2)
	p.Investments.Fill(-3)
	require.NoError(t, p.Update())
	return p
}

func TestCompare_SelfIsZero(t *testing.T) {
	cfg := threeYearConfig()
	cfg.TerminalValue = true
	p := populated(t, cfg, 10, 5)

	diff, err := p.Compare(p, true)
	require.NoError(t, err)
	assert.NotEqual(t, p.ID, diff.ID)

	for _, in := range diff.inputs() {
		assert.True(t, (*in.table).IsZero(1e-12), in.name)
	}
	for _, d := range diff.derived.all() {
		assert.True(t, (*d).IsZero(1e-12))
	}
	for _, prm := range diff.params.all() {
		assert.True(t, (*prm).IsZero(1e-12))
	}
	tv, _ := diff.TerminalValue()
	assert.Equal(t, 0.0, tv)

	// the operands are left untouched
	assert.Equal(t, 10.0, p.ProductPrices.At(0, 0))
	assert.Equal(t, []float64{50, 50, 50, 50}, p.Revenues().Row(0))
}

func TestCompare_Differences(t *testing.T) {
	cfg := threeYearConfig()
	a := populated(t, cfg, 12, 5)
	b := populated(t, cfg, 10, 5)

	diff, err := a.Compare(b, true)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 2}, diff.ProductPrices.Row(0))
	assert.Equal(t, []float64{10, 10, 10}, diff.Revenues().Row(0))
	assert.Equal(t, []string{"2022", "2023", "2024"}, diff.Columns())
}

func TestCompare_KeepsOtherParameters(t *testing.T) {
	cfg := threeYearConfig()
	a := populated(t, cfg, 12, 5)

	other := cfg
	other.IncomeTaxRate = 0.5
	b := populated(t, other, 10, 3)

	diff, err := a.Compare(b, false)
	require.NoError(t, err)

	assert.True(t, diff.IncomeTaxRates().Equal(b.IncomeTaxRates(), 0))
	assert.True(t, diff.DiscountingFactors().Equal(b.DiscountingFactors(), 0))

	// derived tables are rebuilt from the differenced inputs
	ebit := diff.Ebit().Row(0)
	netIncome := diff.NetIncome().Row(0)
	for j := range ebit {
		assert.InDelta(t, ebit[j]*0.5, netIncome[j], 1e-9)
	}
	assert.Equal(t, []float64{2, 2, 2}, diff.ProductTable.Row(0))
	assert.Equal(t, []float64{4, 4, 4}, diff.Revenues().Row(0))
}

func TestCompare_PositionalColumns(t *testing.T) {
	cfg := threeYearConfig()
	a := populated(t, cfg, 12, 5)

	shifted := cfg
	shifted.StartYear = 2025
	shifted.CurrentYear = 2025
	b := populated(t, shifted, 10, 5)

	diff, err := a.Compare(b, true)
	require.NoError(t, err)
	assert.Equal(t, a.Columns(), diff.Columns())
	assert.Equal(t, []float64{10, 10, 10}, diff.Revenues().Row(0))
}

func TestCompare_HorizonMismatch(t *testing.T) {
	a := populated(t, threeYearConfig(), 10, 5)

	longer := threeYearConfig()
	longer.Years = 4
	b := populated(t, longer, 10, 5)

	_, err := a.Compare(b, true)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeHorizonMismatch, apperrors.GetCode(err))
	assert.True(t, errors.Is(err, core.ErrHorizonMismatch))

	withTV := threeYearConfig()
	withTV.TerminalValue = true
	c := populated(t, withTV, 10, 5)
	_, err = a.Compare(c, false)
	assert.True(t, errors.Is(err, core.ErrHorizonMismatch))
}

func TestCompare_ProductCountMismatch(t *testing.T) {
	a := populated(t, threeYearConfig(), 10, 5)

	wider := threeYearConfig()
	wider.Products = 2
	b := populated(t, wider, 10, 5)

	_, err := a.Compare(b, true)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeShapeMismatch, apperrors.GetCode(err))
}
