package plan

import (
	"fmt"

	"budgetplan/domain/grid"
	"budgetplan/internal/errors"
)

// OperationTwoRows combines x and y element-wise with op (+ - * / or − × ÷).
// y must share x's columns and have either x's row count or a single row.
// A single-row result is labelled label; multi-row results keep x's row
// labels. Unknown operators fail with UNSUPPORTED_OPERATION.
func OperationTwoRows(x, y *grid.Table, label, op string) (*grid.Table, error) {
	o, err := grid.ParseOp(op)
	if err != nil {
		return nil, errors.UnsupportedOperation(op).WithCause(err)
	}
	z, err := grid.Combine(x, y, o)
	if err != nil {
		return nil, errors.ShapeMismatch(fmt.Sprintf("%v %s %v", x.Rows(), op, y.Rows())).WithCause(err)
	}
	return labelResult(z, label)
}

// OperationRowScalar combines every cell of x with the scalar c.
func OperationRowScalar(x *grid.Table, c float64, label, op string) (*grid.Table, error) {
	o, err := grid.ParseOp(op)
	if err != nil {
		return nil, errors.UnsupportedOperation(op).WithCause(err)
	}
	z, err := grid.CombineScalar(x, c, o)
	if err != nil {
		return nil, errors.Wrap(err, "scalar operation")
	}
	return labelResult(z, label)
}

func labelResult(z *grid.Table, label string) (*grid.Table, error) {
	if rows, _ := z.Dims(); rows == 1 && label != "" {
		return z.WithRows(label)
	}
	return z, nil
}
