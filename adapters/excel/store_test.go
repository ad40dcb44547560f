package excel

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"budgetplan/domain/core"
	"budgetplan/domain/plan"
	apperrors "budgetplan/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testConfig() plan.Config {
	cfg := plan.DefaultConfig()
	cfg.StartYear = 2021
	cfg.Years = 4
	cfg.CurrentYear = 2022
	cfg.Products = 2
	cfg.RawMaterials = 1
	cfg.TerminalValue = true
	return cfg
}

func samplePlan(t *testing.T) *plan.Plan {
	t.Helper()
	p, err := plan.New(testConfig())
	require.NoError(t, err)

	require.NoError(t, p.ProductTable.SetRow(0, []float64{100, 110, 121, 133.1, 133.1}))
	require.NoError(t, p.ProductTable.SetRow(1, []float64{40, 40, 40, 40, 40}))
	require.NoError(t, p.ProductPrices.SetRow(0, []float64{2.5, 2.55, 2.6, 2.65, 2.65}))
	require.NoError(t, p.ProductPrices.SetRow(1, []float64{9.99, 9.99, 10.49, 10.49, 10.49}))
	p.RawMaterialsQuantities.Fill(70)
	p.RawMaterialsPrices.Fill(0.8)
	p.HRCosts.Fill(-120.5)
	p.VariableCosts.Fill(-10)
	p.Depreciations.Fill(-15)
	p.Investments.Fill(-20)
	require.NoError(t, p.Update())
	return p
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore(DefaultConfig())
	path := filepath.Join(t.TempDir(), "plan.xlsx")

	original := samplePlan(t)
	require.NoError(t, store.Save(ctx, path, original))

	loaded, err := plan.New(testConfig())
	require.NoError(t, err)
	require.NoError(t, store.Load(ctx, path, loaded))

	assert.Equal(t, original.ID, loaded.ID)
	assert.True(t, original.ProductTable.Equal(loaded.ProductTable, 0))
	assert.True(t, original.HRCosts.Equal(loaded.HRCosts, 0))
	assert.True(t, original.Depreciations.Equal(loaded.Depreciations, 0))
	assert.True(t, original.Parameters().Equal(loaded.Parameters(), 0))
	assert.True(t, original.ProfitLoss().Equal(loaded.ProfitLoss(), 1e-9))
	assert.True(t, original.FreeCashFlow().Equal(loaded.FreeCashFlow(), 1e-9))
	assert.True(t, original.DFCF().Equal(loaded.DFCF(), 1e-9))

	tvOriginal, _ := original.TerminalValue()
	tvLoaded, enabled := loaded.TerminalValue()
	assert.True(t, enabled)
	assert.InDelta(t, tvOriginal, tvLoaded, 1e-9)
}

func TestStore_LoadRestoresRates(t *testing.T) {
	ctx := context.Background()
	store := NewStore(DefaultConfig())
	path := filepath.Join(t.TempDir(), "plan.xlsx")

	original := samplePlan(t)
	require.NoError(t, original.SetRates(0.12, 0.03))
	require.NoError(t, original.Update())
	require.NoError(t, store.Save(ctx, path, original))

	loaded, err := plan.New(testConfig())
	require.NoError(t, err)
	require.NoError(t, store.Load(ctx, path, loaded))

	assert.Equal(t, 0.12, loaded.Config().DiscountRate)
	assert.Equal(t, 0.03, loaded.Config().GrowthRate)
	assert.True(t, original.DiscountingFactors().Equal(loaded.DiscountingFactors(), 1e-12))

	tvOriginal, _ := original.TerminalValue()
	tvLoaded, _ := loaded.TerminalValue()
	assert.InDelta(t, tvOriginal, tvLoaded, 1e-6)
}

func TestStore_LoadRejectsDivergingRates(t *testing.T) {
	ctx := context.Background()
	store := NewStore(DefaultConfig())
	path := filepath.Join(t.TempDir(), "plan.xlsx")
	require.NoError(t, store.Save(ctx, path, samplePlan(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue(SheetValuation, "B4", 0.2))
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	p, err := plan.New(testConfig())
	require.NoError(t, err)
	err = store.Load(ctx, path, p)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
	assert.True(t, errors.Is(err, core.ErrGrowthNotBelowDiscount))
}

func TestStore_FailedLoadLeavesPlanUnchanged(t *testing.T) {
	ctx := context.Background()
	store := NewStore(DefaultConfig())
	path := filepath.Join(t.TempDir(), "plan.xlsx")
	require.NoError(t, store.Save(ctx, path, samplePlan(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue(SheetParameters, "A2", "Bogus"))
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	p, err := plan.New(testConfig())
	require.NoError(t, err)
	id := p.ID

	err = store.Load(ctx, path, p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrRowNotFound))

	assert.Equal(t, id, p.ID)
	assert.True(t, p.ProductTable.IsZero(0))
	assert.True(t, p.HRCosts.IsZero(0))
	assert.True(t, p.Revenues().IsZero(0))
}

func TestStore_SheetLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.xlsx")
	p := samplePlan(t)
	require.NoError(t, NewStore(DefaultConfig()).Save(context.Background(), path, p))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		SheetProfitLoss, SheetFreeCashFlow, SheetParameters, SheetProductTable, SheetProductPrices,
		SheetRawMaterialsQuantities, SheetRawMaterialsPrices, SheetOperatingCosts, SheetCapital, SheetValuation,
	}, f.GetSheetList())

	a1, err := f.GetCellValue(SheetProfitLoss, "A1")
	require.NoError(t, err)
	assert.Empty(t, a1)
	b1, err := f.GetCellValue(SheetProfitLoss, "B1")
	require.NoError(t, err)
	assert.Equal(t, "2021", b1)
	f1, err := f.GetCellValue(SheetProfitLoss, "F1")
	require.NoError(t, err)
	assert.Equal(t, "TV", f1)
	a2, err := f.GetCellValue(SheetProfitLoss, "A2")
	require.NoError(t, err)
	assert.Equal(t, plan.RowRevenues, a2)

	props, err := f.GetDocProps()
	require.NoError(t, err)
	assert.Equal(t, p.ID.String(), props.Identifier)
	assert.Contains(t, props.Description, "€")
}

func TestStore_MissingSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	p, err := plan.New(testConfig())
	require.NoError(t, err)

	err = NewStore(DefaultConfig()).Load(context.Background(), path, p)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeWorkbookError, apperrors.GetCode(err))
	assert.True(t, errors.Is(err, core.ErrSheetMissing))
}

func TestStore_MalformedNumber(t *testing.T) {
	ctx := context.Background()
	store := NewStore(DefaultConfig())
	path := filepath.Join(t.TempDir(), "plan.xlsx")
	require.NoError(t, store.Save(ctx, path, samplePlan(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue(SheetProductPrices, "C2", "n/a"))
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	p, err := plan.New(testConfig())
	require.NoError(t, err)
	err = store.Load(ctx, path, p)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeWorkbookError, apperrors.GetCode(err))
	assert.True(t, errors.Is(err, core.ErrMalformedSheet))
	assert.Contains(t, err.Error(), "Product_Prices!C2")
}

func TestStore_HeaderMismatch(t *testing.T) {
	ctx := context.Background()
	store := NewStore(DefaultConfig())
	path := filepath.Join(t.TempDir(), "plan.xlsx")
	require.NoError(t, store.Save(ctx, path, samplePlan(t)))

	cfg := testConfig()
	cfg.StartYear = 2022
	p, err := plan.New(cfg)
	require.NoError(t, err)

	err = store.Load(ctx, path, p)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeShapeMismatch, apperrors.GetCode(err))
	assert.True(t, errors.Is(err, core.ErrColumnMismatch))
}

func TestStore_OptionalSheets(t *testing.T) {
	ctx := context.Background()
	store := NewStore(DefaultConfig())
	path := filepath.Join(t.TempDir(), "plan.xlsx")
	require.NoError(t, store.Save(ctx, path, samplePlan(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.DeleteSheet(SheetOperatingCosts))
	require.NoError(t, f.DeleteSheet(SheetCapital))
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	p, err := plan.New(testConfig())
	require.NoError(t, err)
	require.NoError(t, store.Load(ctx, path, p))

	assert.Equal(t, 100.0, p.ProductTable.At(0, 0))
	assert.True(t, p.HRCosts.IsZero(0))
	assert.True(t, p.Depreciations.IsZero(0))
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "plan.xlsx")
	err := NewStore(DefaultConfig()).Save(ctx, path, samplePlan(t))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, path)
}

func TestStore_ReadSheet(t *testing.T) {
	ctx := context.Background()
	store := NewStore(DefaultConfig())
	path := filepath.Join(t.TempDir(), "plan.xlsx")
	require.NoError(t, store.Save(ctx, path, samplePlan(t)))

	data, err := store.ReadSheet(ctx, path, SheetValuation)
	require.NoError(t, err)
	assert.Equal(t, []string{"Value"}, data.Headers)
	assert.Equal(t, []string{"Terminal_Value", "Discount_Rate", "Growth_Rate"}, data.Labels)
	assert.Equal(t, "0.08", data.Cells[1][0])
}
