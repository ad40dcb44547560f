package grid

import (
	"fmt"
	"slices"

	"budgetplan/domain/core"

	"gonum.org/v1/gonum/mat"
)

// Op is an element-wise arithmetic operator.
type Op string

const (
	OpAdd Op = "+"
	OpSub Op = "-"
	OpMul Op = "*"
	OpDiv Op = "/"
)

// ParseOp accepts the ASCII symbols and their typographic forms (−, ×, ÷).
func ParseOp(symbol string) (Op, error) {
	switch symbol {
	case "+":
		return OpAdd, nil
	case "-", "−":
		return OpSub, nil
	case "*", "×":
		return OpMul, nil
	case "/", "÷":
		return OpDiv, nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrUnsupportedOperation, symbol)
	}
}

func (o Op) String() string { return string(o) }

// Combine applies op element-wise between a and b. b must carry the same
// columns as a and either the same number of rows or a single row, which is
// broadcast over every row of a. The result keeps a's labels.
func Combine(a, b *Table, op Op) (*Table, error) {
	op, err := ParseOp(string(op))
	if err != nil {
		return nil, err
	}
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ac != bc || (br != ar && br != 1) {
		return nil, core.NewShapeError(op.String(), ar, ac, br, bc)
	}
	if !a.SameColumns(b) {
		return nil, fmt.Errorf("%w: %v %s %v", core.ErrColumnMismatch, a.cols, op, b.cols)
	}

	var rhs mat.Matrix = b.data
	if br != ar {
		rhs = broadcastRow(b.Row(0), ar)
	}

	out := mat.NewDense(ar, ac, nil)
	switch op {
	case OpAdd:
		out.Add(a.data, rhs)
	case OpSub:
		out.Sub(a.data, rhs)
	case OpMul:
		out.MulElem(a.data, rhs)
	case OpDiv:
		out.DivElem(a.data, rhs)
	}
	return &Table{rows: slices.Clone(a.rows), cols: slices.Clone(a.cols), data: out}, nil
}

// CombineScalar applies op between every cell of a and c.
func CombineScalar(a *Table, c float64, op Op) (*Table, error) {
	op, err := ParseOp(string(op))
	if err != nil {
		return nil, err
	}
	out := a.Clone()
	out.data.Apply(func(_, _ int, v float64) float64 {
		switch op {
		case OpAdd:
			return v + c
		case OpSub:
			return v - c
		case OpMul:
			return v * c
		default:
			return v / c
		}
	}, a.data)
	return out, nil
}

func broadcastRow(row []float64, n int) *mat.Dense {
	c := len(row)
	data := make([]float64, 0, n*c)
	for i := 0; i < n; i++ {
		data = append(data, row...)
	}
	return mat.NewDense(n, c, data)
}

// Add returns a + b.
func (t *Table) Add(o *Table) (*Table, error) { return Combine(t, o, OpAdd) }

// Sub returns a - b.
func (t *Table) Sub(o *Table) (*Table, error) { return Combine(t, o, OpSub) }

// MulElem returns the element-wise product.
func (t *Table) MulElem(o *Table) (*Table, error) { return Combine(t, o, OpMul) }

// DivElem returns the element-wise quotient.
func (t *Table) DivElem(o *Table) (*Table, error) { return Combine(t, o, OpDiv) }
