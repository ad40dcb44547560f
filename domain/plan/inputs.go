package plan

import (
	"fmt"

	"budgetplan/domain/core"
	"budgetplan/domain/grid"
	"budgetplan/internal/errors"
)

// Inputs is a snapshot of the caller-owned tables. Nil fields are left
// untouched by SetInputs.
type Inputs struct {
	ProductTable           *grid.Table
	ProductPrices          *grid.Table
	RawMaterialsQuantities *grid.Table
	RawMaterialsPrices     *grid.Table
	VariableCosts          *grid.Table
	HRCosts                *grid.Table
	MaintenanceCosts       *grid.Table
	OtherFixedCosts        *grid.Table
	Investments            *grid.Table
	Depreciations          *grid.Table
}

func (in *Inputs) fields() []**grid.Table {
	return []**grid.Table{
		&in.ProductTable, &in.ProductPrices, &in.RawMaterialsQuantities, &in.RawMaterialsPrices,
		&in.VariableCosts, &in.HRCosts, &in.MaintenanceCosts, &in.OtherFixedCosts,
		&in.Investments, &in.Depreciations,
	}
}

// Inputs returns copies of the current input tables.
func (p *Plan) Inputs() Inputs {
	var in Inputs
	fields := in.fields()
	for i, t := range p.inputs() {
		*fields[i] = (*t.table).Clone()
	}
	return in
}

// SetInputs replaces the non-nil tables of in. Every replacement must carry
// the plan's columns; nothing is applied when one of them does not. Derived
// tables are not touched until Update.
func (p *Plan) SetInputs(in Inputs) error {
	targets := p.inputs()
	fields := in.fields()
	for i, f := range fields {
		t := *f
		if t == nil {
			continue
		}
		if !t.HasColumns(p.cols) {
			return errors.ShapeMismatch(fmt.Sprintf("%s columns %v do not match plan columns %v", targets[i].name, t.Cols(), p.cols)).
				WithCause(core.ErrColumnMismatch)
		}
		if rows, cols := t.Dims(); targets[i].single && rows != 1 {
			return errors.ShapeMismatch(fmt.Sprintf("%s must have a single row", targets[i].name)).
				WithCause(core.NewShapeError(targets[i].name, rows, cols, 1, cols))
		}
	}
	for i, f := range fields {
		if *f != nil {
			*targets[i].table = (*f).Clone()
		}
	}
	return nil
}

// SetParameters restores the parameter tables from a Parameters composite
// (period of discounting, discounting factor, income tax rate, inflation,
// turnover, change rate, in that order). Rows are matched by position; the
// first five must also carry their canonical labels.
func (p *Plan) SetParameters(t *grid.Table) error {
	if !t.HasColumns(p.cols) {
		return errors.ShapeMismatch(fmt.Sprintf("parameter columns %v do not match plan columns %v", t.Cols(), p.cols)).
			WithCause(core.ErrColumnMismatch)
	}
	parts, err := t.Split(1, 1, 1, 1, 1, 1)
	if err != nil {
		return errors.ShapeMismatch("parameters must have six rows").WithCause(err)
	}
	expected := []string{RowPeriodOfDiscounting, RowDiscountingFactor, RowIncomeTaxRate, RowInflation, RowTurnover}
	for i, label := range expected {
		if got := parts[i].Rows()[0]; got != label {
			return errors.InvalidInput(fmt.Sprintf("parameter row %d is %q, expected %q", i, got, label)).
				WithCause(core.ErrRowNotFound)
		}
	}
	for i, target := range p.params.all() {
		*target = parts[i]
	}
	return nil
}

// SetRates replaces the discount and growth rates behind the terminal value
// and recomputes the discounting factors from the current periods. The rates
// must pass the same checks as Config.Validate.
func (p *Plan) SetRates(discount, growth float64) error {
	cfg := p.config
	cfg.DiscountRate, cfg.GrowthRate = discount, growth
	if err := cfg.Validate(); err != nil {
		return err
	}

	periods := p.params.periodOfDiscounting.Row(0)
	factors := make([]float64, len(periods))
	for i, period := range periods {
		factors[i] = DiscountFactor(discount, period)
	}
	t, err := grid.FromRows([]string{RowDiscountingFactor}, p.cols, [][]float64{factors})
	if err != nil {
		return errors.Wrap(err, "recompute discounting factors")
	}

	p.config = cfg
	p.params.discountingFactor = t
	return nil
}

// Apply runs fn against a copy of p and then Update. p takes over the copy's
// state only if both succeed; on error p is left exactly as it was.
func (p *Plan) Apply(fn func(*Plan) error) error {
	q := p.clone()
	if err := fn(q); err != nil {
		return err
	}
	if err := q.Update(); err != nil {
		return err
	}
	*p = *q
	return nil
}
