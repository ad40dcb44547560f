package plan

import (
	"fmt"

	"budgetplan/domain/core"
	"budgetplan/domain/grid"
	"budgetplan/internal/errors"
)

// recompute threads the first failing step through a chain of table
// operations so Update reads as the formula list it implements.
type recompute struct {
	err error
}

func (r *recompute) op(x, y *grid.Table, label, op string) *grid.Table {
	if r.err != nil {
		return nil
	}
	t, err := OperationTwoRows(x, y, label, op)
	r.err = err
	return t
}

func (r *recompute) stack(tables ...*grid.Table) *grid.Table {
	if r.err != nil {
		return nil
	}
	t, err := grid.Stack(tables...)
	if err != nil {
		r.err = errors.ShapeMismatch("stack plan tables").WithCause(err)
	}
	return t
}

func (r *recompute) sum(t *grid.Table, label string) *grid.Table {
	if r.err != nil {
		return nil
	}
	return t.Sum(label)
}

func (r *recompute) relabel(t *grid.Table, label string) *grid.Table {
	if r.err != nil {
		return nil
	}
	out, err := t.WithRows(label)
	r.err = err
	return out
}

// Update recomputes every derived table from the current inputs and
// parameter tables. It is the only producer of derived tables and must be
// called after inputs change.
func (p *Plan) Update() error {
	if err := p.checkInputs(); err != nil {
		return err
	}

	r := &recompute{}
	var d derived

	d.fixedCosts = p.updateFixed(r)
	p.updateVariable()
	d.revenues = p.updateRevenues(r)
	d.rawMaterialsCosts = p.updateRawMaterials(r)

	operating := r.stack(d.revenues, d.rawMaterialsCosts, p.VariableCosts, d.fixedCosts)
	d.ebitda = r.sum(operating, RowEbitda)
	d.ebit = r.op(d.ebitda, p.Depreciations, RowEbit, "+")
	d.incomeTaxes = r.op(d.ebit, p.params.incomeTaxRate.Scale(-1), RowIncomeTaxes, "*")
	d.netIncome = r.op(d.ebit, d.incomeTaxes, RowNetIncome, "+")

	d.netWorkingCapital = r.op(d.revenues, p.params.turnover, RowNetWorkingCapital, "*")
	if r.err == nil {
		d.changesNWC = r.relabel(d.netWorkingCapital.ShiftDiff(), RowChangesNWC)
	}

	d.profitLoss = r.stack(
		d.revenues, d.rawMaterialsCosts, p.VariableCosts, d.fixedCosts, d.ebitda,
		p.Depreciations, d.ebit, d.incomeTaxes, d.netIncome,
	)
	d.freeCashFlow = r.stack(d.netIncome, p.Depreciations.Scale(-1), d.changesNWC, p.Investments)
	if r.err == nil {
		d.fcf = d.freeCashFlow.Sum(RowFCF).Round(p.config.Decimals)
	}
	d.dfcf = r.op(d.fcf, p.params.discountingFactor, RowDFCF, "*")
	if r.err == nil {
		d.parameters, r.err = p.params.stack()
	}
	if r.err != nil {
		return errors.Wrap(r.err, "update plan")
	}

	p.derived = d
	if p.config.TerminalValue {
		n := len(p.cols)
		p.terminalValue = TerminalValue(
			d.fcf.At(0, n-1),
			p.config.DiscountRate,
			p.config.GrowthRate,
			p.params.discountingFactor.At(0, n-2),
		)
	}
	return nil
}

// updateFixed sums HR, maintenance and other fixed costs.
func (p *Plan) updateFixed(r *recompute) *grid.Table {
	components := r.stack(p.HRCosts, p.MaintenanceCosts, p.OtherFixedCosts)
	return r.sum(components, RowFixedCosts)
}

// updateVariable is where a variable-cost model would plug in; today the
// Variable_Costs row is a plain input.
func (p *Plan) updateVariable() {}

func (p *Plan) updateRevenues(r *recompute) *grid.Table {
	sales := r.op(p.ProductPrices, p.ProductTable, "", "*")
	return r.sum(sales, RowRevenues)
}

func (p *Plan) updateRawMaterials(r *recompute) *grid.Table {
	purchases := r.op(p.RawMaterialsQuantities, p.RawMaterialsPrices, "", "*")
	if r.err != nil {
		return nil
	}
	return purchases.Scale(-1).Sum(RowRawMaterialsCosts)
}

func (p *Plan) checkInputs() error {
	for _, in := range p.inputs() {
		t := *in.table
		if t == nil {
			return errors.InvalidInput(fmt.Sprintf("%s is not set", in.name))
		}
		if !t.HasColumns(p.cols) {
			return errors.ShapeMismatch(fmt.Sprintf("%s columns %v do not match plan columns %v", in.name, t.Cols(), p.cols)).
				WithCause(core.ErrColumnMismatch)
		}
		if rows, cols := t.Dims(); in.single && rows != 1 {
			return errors.ShapeMismatch(fmt.Sprintf("%s must have a single row", in.name)).
				WithCause(core.NewShapeError(in.name, rows, cols, 1, cols))
		}
	}
	return nil
}
