package excel

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"budgetplan/domain/core"
	"budgetplan/domain/grid"
	"budgetplan/domain/plan"
	"budgetplan/internal/errors"

	"github.com/xuri/excelize/v2"
)

// Load reads the input and parameter sheets at path into p and runs
// p.Update. Operating_Costs and Capital are optional; when absent the
// corresponding inputs keep their current values. The discount and growth
// rates on the Valuation sheet, when present, replace p's. The workbook's
// year headers must match p's columns. On error p is unchanged.
func (s *Store) Load(ctx context.Context, path string, p *plan.Plan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return errors.WorkbookError(path, err)
	}

	start := time.Now()
	f, err := excelize.OpenFile(path)
	if err != nil {
		return errors.WorkbookError(path, fmt.Errorf("failed to open workbook: %w", err))
	}
	defer f.Close()
	s.logger.Debug("workbook %s opened in %.2fms", path, float64(time.Since(start).Nanoseconds())/1e6)

	r := &sheetReader{file: f, path: path, cols: p.Columns()}
	var in plan.Inputs
	in.ProductTable = r.table(SheetProductTable)
	in.ProductPrices = r.table(SheetProductPrices)
	in.RawMaterialsQuantities = r.table(SheetRawMaterialsQuantities)
	in.RawMaterialsPrices = r.table(SheetRawMaterialsPrices)
	params := r.table(SheetParameters)

	if operating := r.optional(SheetOperatingCosts); operating != nil {
		parts := r.split(SheetOperatingCosts, operating, plan.RowVariableCosts, plan.RowHRCosts, plan.RowMaintenanceCosts, plan.RowOtherFixedCosts)
		if len(parts) == 4 {
			in.VariableCosts, in.HRCosts, in.MaintenanceCosts, in.OtherFixedCosts = parts[0], parts[1], parts[2], parts[3]
		}
	}
	if capital := r.optional(SheetCapital); capital != nil {
		parts := r.split(SheetCapital, capital, plan.RowInvestments, plan.RowDepreciations)
		if len(parts) == 2 {
			in.Investments, in.Depreciations = parts[0], parts[1]
		}
	}
	rates := r.rates()
	if r.err != nil {
		return r.err
	}

	err = p.Apply(func(q *plan.Plan) error {
		if rates != nil {
			if err := q.SetRates(rates.discount, rates.growth); err != nil {
				return errors.Wrapf(err, "load rates from %s", path)
			}
		}
		if err := q.SetInputs(in); err != nil {
			return errors.Wrapf(err, "load inputs from %s", path)
		}
		if err := q.SetParameters(params); err != nil {
			return errors.Wrapf(err, "load parameters from %s", path)
		}
		if props, err := f.GetDocProps(); err == nil && props.Identifier != "" {
			if id, err := core.ParseID(props.Identifier); err == nil {
				q.ID = id
			} else {
				s.logger.Warn("ignoring identifier of %s: %v", path, err)
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "load plan from %s", path)
	}

	s.logger.Info("loaded plan %s from %s in %.2fms", p.ID, path, float64(time.Since(start).Nanoseconds())/1e6)
	return nil
}

// ReadSheet returns the raw contents of one sheet.
func (s *Store) ReadSheet(ctx context.Context, path, name string) (*SheetData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.WorkbookError(path, fmt.Errorf("failed to open workbook: %w", err))
	}
	defer f.Close()

	r := &sheetReader{file: f, path: path}
	data := r.read(name)
	if r.err != nil {
		return nil, r.err
	}
	return data, nil
}

// sheetReader reads named sheets and keeps the first error.
type sheetReader struct {
	file *excelize.File
	path string
	cols []string
	err  error
}

func (r *sheetReader) has(name string) bool {
	return slices.Contains(r.file.GetSheetList(), name)
}

func (r *sheetReader) read(name string) *SheetData {
	if r.err != nil {
		return nil
	}
	if !r.has(name) {
		r.err = errors.WorkbookError(r.path, core.NewSheetMissingError(name))
		return nil
	}
	rows, err := r.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		r.err = errors.WorkbookError(r.path, fmt.Errorf("failed to read %s: %w", name, err))
		return nil
	}
	if len(rows) < 2 {
		r.err = errors.WorkbookError(r.path, core.NewMalformedSheetError(name, "A2", "sheet must have a header row and at least one data row"))
		return nil
	}

	data := &SheetData{Name: name}
	for _, h := range rows[0][min(1, len(rows[0])):] {
		data.Headers = append(data.Headers, strings.TrimSpace(h))
	}
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		data.Labels = append(data.Labels, strings.TrimSpace(row[0]))
		data.Cells = append(data.Cells, row[1:])
	}
	return data
}

// table parses a required sheet into a column-checked table.
func (r *sheetReader) table(name string) *grid.Table {
	data := r.read(name)
	if r.err != nil {
		return nil
	}
	if !slices.Equal(data.Headers, r.cols) {
		r.err = errors.ShapeMismatch(fmt.Sprintf("sheet %s has columns %v, plan has %v", name, data.Headers, r.cols)).
			WithCause(core.ErrColumnMismatch)
		return nil
	}

	values := make([][]float64, len(data.Cells))
	for i, cells := range data.Cells {
		values[i] = make([]float64, len(r.cols))
		for j := range r.cols {
			if j >= len(cells) || strings.TrimSpace(cells[j]) == "" {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(cells[j]), 64)
			if err != nil {
				cell, _ := excelize.CoordinatesToCellName(j+2, i+2)
				r.err = errors.WorkbookError(r.path, core.NewMalformedSheetError(name, cell, fmt.Sprintf("%q is not a number", cells[j])))
				return nil
			}
			values[i][j] = v
		}
	}

	t, err := grid.FromRows(data.Labels, r.cols, values)
	if err != nil {
		r.err = errors.WorkbookError(r.path, err)
		return nil
	}
	return t
}

// optional reads a sheet that older workbooks may not carry.
func (r *sheetReader) optional(name string) *grid.Table {
	if r.err != nil || !r.has(name) {
		return nil
	}
	return r.table(name)
}

// split cuts a stacked sheet into single-row tables and checks their labels.
func (r *sheetReader) split(name string, t *grid.Table, labels ...string) []*grid.Table {
	if r.err != nil {
		return nil
	}
	if !slices.Equal(t.Rows(), labels) {
		r.err = errors.WorkbookError(r.path, core.NewMalformedSheetError(name, "A2",
			fmt.Sprintf("expected rows %v, found %v", labels, t.Rows())))
		return nil
	}
	counts := make([]int, len(labels))
	for i := range counts {
		counts[i] = 1
	}
	parts, err := t.Split(counts...)
	if err != nil {
		r.err = errors.WorkbookError(r.path, err)
		return nil
	}
	return parts
}

type valuationRates struct {
	discount float64
	growth   float64
}

// rates reads the discount and growth rates from the Valuation sheet. Older
// workbooks without the sheet yield nil.
func (r *sheetReader) rates() *valuationRates {
	if r.err != nil || !r.has(SheetValuation) {
		return nil
	}
	data := r.read(SheetValuation)
	if r.err != nil {
		return nil
	}
	if !slices.Equal(data.Headers, []string{valuationColumn}) {
		r.err = errors.WorkbookError(r.path, core.NewMalformedSheetError(SheetValuation, "B1",
			fmt.Sprintf("expected a single %q column, found %v", valuationColumn, data.Headers)))
		return nil
	}

	value := func(label string) float64 {
		if r.err != nil {
			return 0
		}
		i := slices.Index(data.Labels, label)
		if i < 0 {
			r.err = errors.WorkbookError(r.path, core.NewMalformedSheetError(SheetValuation, "A2",
				fmt.Sprintf("row %s not found", label)))
			return 0
		}
		cell, _ := excelize.CoordinatesToCellName(2, i+2)
		if len(data.Cells[i]) == 0 {
			r.err = errors.WorkbookError(r.path, core.NewMalformedSheetError(SheetValuation, cell, "empty rate"))
			return 0
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(data.Cells[i][0]), 64)
		if err != nil {
			r.err = errors.WorkbookError(r.path, core.NewMalformedSheetError(SheetValuation, cell,
				fmt.Sprintf("%q is not a number", data.Cells[i][0])))
			return 0
		}
		return v
	}

	rates := &valuationRates{
		discount: value(rowDiscountRate),
		growth:   value(rowGrowthRate),
	}
	if r.err != nil {
		return nil
	}
	return rates
}
