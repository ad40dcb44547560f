// Package grid provides the labelled item × year matrix every plan table is
// built from. Arithmetic is delegated to gonum/mat; labels travel with the data
// so aligned tables can be combined without positional bookkeeping.
package grid

import (
	"fmt"
	"math"
	"slices"

	"budgetplan/domain/core"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// TerminalColumn labels the trailing terminal-value column.
const TerminalColumn = "TV"

// Table is a dense float64 grid with named rows and year columns.
type Table struct {
	rows []string
	cols []string
	data *mat.Dense
}

// New returns a zero-filled table.
func New(rows, cols []string) (*Table, error) {
	return NewFilled(rows, cols, 0)
}

// NewFilled returns a table with every cell set to v.
func NewFilled(rows, cols []string, v float64) (*Table, error) {
	if len(rows) == 0 || len(cols) == 0 {
		return nil, fmt.Errorf("%w: %d rows, %d columns", core.ErrEmptyTable, len(rows), len(cols))
	}
	data := make([]float64, len(rows)*len(cols))
	if v != 0 {
		for i := range data {
			data[i] = v
		}
	}
	return &Table{
		rows: slices.Clone(rows),
		cols: slices.Clone(cols),
		data: mat.NewDense(len(rows), len(cols), data),
	}, nil
}

// FromRows builds a table from row-major values; every row must have one value per column.
func FromRows(rows, cols []string, values [][]float64) (*Table, error) {
	t, err := New(rows, cols)
	if err != nil {
		return nil, err
	}
	if len(values) != len(rows) {
		return nil, core.NewShapeError("from rows", len(rows), len(cols), len(values), 0)
	}
	for i, v := range values {
		if err := t.SetRow(i, v); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// YearColumns returns "start".."start+n-1", plus TerminalColumn when terminal is set.
func YearColumns(start, n int, terminal bool) []string {
	cols := make([]string, 0, n+1)
	for y := start; y < start+n; y++ {
		cols = append(cols, fmt.Sprint(y))
	}
	if terminal {
		cols = append(cols, TerminalColumn)
	}
	return cols
}

// IndexRows returns prefix0..prefix(n-1).
func IndexRows(prefix string, n int) []string {
	rows := make([]string, n)
	for i := range rows {
		rows[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return rows
}

func (t *Table) Dims() (int, int) { return t.data.Dims() }

func (t *Table) Rows() []string { return slices.Clone(t.rows) }

func (t *Table) Cols() []string { return slices.Clone(t.cols) }

func (t *Table) At(i, j int) float64 { return t.data.At(i, j) }

func (t *Table) Set(i, j int, v float64) { t.data.Set(i, j, v) }

// Value looks a cell up by labels.
func (t *Table) Value(row, col string) (float64, error) {
	i, j, err := t.index(row, col)
	if err != nil {
		return 0, err
	}
	return t.data.At(i, j), nil
}

// SetValue writes a cell addressed by labels.
func (t *Table) SetValue(row, col string, v float64) error {
	i, j, err := t.index(row, col)
	if err != nil {
		return err
	}
	t.data.Set(i, j, v)
	return nil
}

func (t *Table) index(row, col string) (int, int, error) {
	i := slices.Index(t.rows, row)
	if i < 0 {
		return 0, 0, fmt.Errorf("%w: %q", core.ErrRowNotFound, row)
	}
	j := slices.Index(t.cols, col)
	if j < 0 {
		return 0, 0, fmt.Errorf("%w: column %q", core.ErrColumnMismatch, col)
	}
	return i, j, nil
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []float64 { return mat.Row(nil, i, t.data) }

// Col returns a copy of column j.
func (t *Table) Col(j int) []float64 { return mat.Col(nil, j, t.data) }

// SetRow overwrites row i.
func (t *Table) SetRow(i int, values []float64) error {
	_, c := t.Dims()
	if len(values) != c {
		return core.NewShapeError("set row", 1, c, 1, len(values))
	}
	t.data.SetRow(i, values)
	return nil
}

// Fill sets every cell to v.
func (t *Table) Fill(v float64) {
	t.data.Apply(func(_, _ int, _ float64) float64 { return v }, t.data)
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	return &Table{
		rows: slices.Clone(t.rows),
		cols: slices.Clone(t.cols),
		data: mat.DenseCopyOf(t.data),
	}
}

// WithRows returns a copy carrying new row labels.
func (t *Table) WithRows(rows ...string) (*Table, error) {
	r, c := t.Dims()
	if len(rows) != r {
		return nil, core.NewShapeError("relabel rows", r, c, len(rows), c)
	}
	out := t.Clone()
	out.rows = slices.Clone(rows)
	return out, nil
}

// WithCols returns a copy carrying new column labels.
func (t *Table) WithCols(cols []string) (*Table, error) {
	r, c := t.Dims()
	if len(cols) != c {
		return nil, core.NewShapeError("relabel columns", r, c, r, len(cols))
	}
	out := t.Clone()
	out.cols = slices.Clone(cols)
	return out, nil
}

// SameColumns reports whether both tables use identical column labels.
func (t *Table) SameColumns(o *Table) bool {
	return slices.Equal(t.cols, o.cols)
}

// HasColumns reports whether the table's column labels are exactly cols.
func (t *Table) HasColumns(cols []string) bool {
	return slices.Equal(t.cols, cols)
}

// Scale returns c·t.
func (t *Table) Scale(c float64) *Table {
	out := t.Clone()
	out.data.Scale(c, t.data)
	return out
}

// Sum collapses the rows into one row of column totals labelled label.
func (t *Table) Sum(label string) *Table {
	_, c := t.Dims()
	totals := make([]float64, c)
	for j := range totals {
		totals[j] = floats.Sum(t.Col(j))
	}
	return &Table{
		rows: []string{label},
		cols: slices.Clone(t.cols),
		data: mat.NewDense(1, c, totals),
	}
}

// ShiftDiff returns x[j] - x[j-1] for every row; the first column has no
// predecessor and is 0.
func (t *Table) ShiftDiff() *Table {
	r, c := t.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 1; j < c; j++ {
			out.Set(i, j, t.data.At(i, j)-t.data.At(i, j-1))
		}
	}
	return &Table{rows: slices.Clone(t.rows), cols: slices.Clone(t.cols), data: out}
}

// Round rounds every finite cell half away from zero to decimals places.
func (t *Table) Round(decimals int) *Table {
	out := t.Clone()
	out.data.Apply(func(_, _ int, v float64) float64 {
		return RoundValue(v, decimals)
	}, t.data)
	return out
}

// RoundValue rounds v half away from zero; NaN and ±Inf pass through.
func RoundValue(v float64, decimals int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(int32(decimals)).InexactFloat64()
}

// Stack concatenates tables vertically. All tables must share column labels.
func Stack(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: nothing to stack", core.ErrEmptyTable)
	}
	cols := tables[0].cols
	var rows []string
	var data []float64
	for _, t := range tables {
		if !slices.Equal(t.cols, cols) {
			return nil, fmt.Errorf("%w: stacking %v onto %v", core.ErrColumnMismatch, t.cols, cols)
		}
		r, _ := t.Dims()
		for i := 0; i < r; i++ {
			data = append(data, t.Row(i)...)
		}
		rows = append(rows, t.rows...)
	}
	return &Table{
		rows: slices.Clone(rows),
		cols: slices.Clone(cols),
		data: mat.NewDense(len(rows), len(cols), data),
	}, nil
}

// Split cuts a stacked table back into runs of the given row counts.
func (t *Table) Split(counts ...int) ([]*Table, error) {
	r, c := t.Dims()
	total := 0
	for _, n := range counts {
		if n < 1 {
			return nil, fmt.Errorf("%w: split count %d", core.ErrEmptyTable, n)
		}
		total += n
	}
	if total != r {
		return nil, core.NewShapeError("split", r, c, total, c)
	}
	parts := make([]*Table, 0, len(counts))
	start := 0
	for _, n := range counts {
		view := t.data.Slice(start, start+n, 0, c)
		parts = append(parts, &Table{
			rows: slices.Clone(t.rows[start : start+n]),
			cols: slices.Clone(t.cols),
			data: mat.DenseCopyOf(view),
		})
		start += n
	}
	return parts, nil
}

// Equal reports equal labels and cells within tol.
func (t *Table) Equal(o *Table, tol float64) bool {
	if !slices.Equal(t.rows, o.rows) || !slices.Equal(t.cols, o.cols) {
		return false
	}
	return mat.EqualApprox(t.data, o.data, tol)
}

// IsZero reports whether every cell is within tol of zero.
func (t *Table) IsZero(tol float64) bool {
	r, c := t.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if math.Abs(t.data.At(i, j)) > tol {
				return false
			}
		}
	}
	return true
}
