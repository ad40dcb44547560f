package plan

import (
	"fmt"

	"budgetplan/domain/core"
	"budgetplan/domain/grid"
	"budgetplan/internal/errors"
)

// Compare returns a new plan holding p − other for every table. Columns are
// matched by position, so plans starting in different years can be compared
// as long as their horizons agree; the result carries p's labels.
//
// With deltaParams the parameter tables and terminal value are differenced
// too. Without it the result takes other's parameter tables and rates and is
// rebuilt with Update from the differenced inputs.
func (p *Plan) Compare(other *Plan, deltaParams bool) (*Plan, error) {
	if p.config.Years != other.config.Years || len(p.cols) != len(other.cols) {
		return nil, errors.HorizonMismatch(fmt.Sprintf(
			"cannot compare a %d-column plan with a %d-column plan", len(p.cols), len(other.cols),
		)).WithCause(core.ErrHorizonMismatch)
	}

	y := p.clone()
	y.ID = core.NewID()
	diff := &differ{cols: p.cols}

	mineIn, theirIn := p.inputs(), other.inputs()
	for i, in := range y.inputs() {
		*in.table = diff.sub(*mineIn[i].table, *theirIn[i].table, in.name)
	}

	mine, their := p.derived, other.derived
	ours, others := mine.all(), their.all()
	for i, t := range y.derived.all() {
		*t = diff.sub(*ours[i], *others[i], "derived table")
	}

	if deltaParams {
		mp, op := p.params, other.params
		mineParams, otherParams := mp.all(), op.all()
		for i, t := range y.params.all() {
			*t = diff.sub(*mineParams[i], *otherParams[i], "parameter table")
		}
		y.terminalValue = p.terminalValue - other.terminalValue
		if diff.err != nil {
			return nil, diff.err
		}
		return y, nil
	}

	y.params = other.params.clone()
	y.config.DiscountRate, y.config.GrowthRate = other.config.DiscountRate, other.config.GrowthRate
	for _, t := range y.params.all() {
		*t = diff.align(*t)
	}
	if diff.err != nil {
		return nil, diff.err
	}
	if err := y.Update(); err != nil {
		return nil, errors.Wrap(err, "recompute comparison")
	}
	return y, nil
}

// differ subtracts column-aligned pairs positionally and keeps the first error.
type differ struct {
	cols []string
	err  error
}

func (d *differ) align(t *grid.Table) *grid.Table {
	if d.err != nil {
		return nil
	}
	out, err := t.WithCols(d.cols)
	if err != nil {
		d.err = errors.HorizonMismatch("align compared tables").WithCause(err)
	}
	return out
}

func (d *differ) sub(a, b *grid.Table, name string) *grid.Table {
	b = d.align(b)
	if d.err != nil {
		return nil
	}
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br {
		d.err = errors.ShapeMismatch(fmt.Sprintf("compare %s", name)).
			WithCause(core.NewShapeError("compare", ar, ac, br, bc))
		return nil
	}
	out, err := a.Sub(b)
	if err != nil {
		d.err = errors.ShapeMismatch(fmt.Sprintf("compare %s", name)).WithCause(err)
	}
	return out
}
