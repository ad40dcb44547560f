package excel

import (
	"context"
	"fmt"
	"time"

	"budgetplan/domain/grid"
	"budgetplan/domain/plan"
	"budgetplan/internal"
	"budgetplan/internal/errors"
	"budgetplan/ports"

	"github.com/xuri/excelize/v2"
)

// Store reads and writes plans as xlsx workbooks
type Store struct {
	config Config
	logger *internal.Logger
}

// NewStore creates a workbook store
func NewStore(config Config) *Store {
	return &Store{
		config: config,
		logger: internal.DefaultLogger.Named("excel"),
	}
}

var _ ports.PlanStore = (*Store)(nil)

type sheet struct {
	name  string
	table *grid.Table
}

type styles struct {
	header int
	label  int
	number int
}

// Save writes the plan's reports, parameters and inputs to path, one table per sheet.
func (s *Store) Save(ctx context.Context, path string, p *plan.Plan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	sheets, err := planSheets(p)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	st, err := s.newStyles(f)
	if err != nil {
		return errors.WorkbookError(path, err)
	}

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sh.name); err != nil {
				return errors.WorkbookError(path, fmt.Errorf("set sheet name: %w", err))
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return errors.WorkbookError(path, fmt.Errorf("create sheet %s: %w", sh.name, err))
		}
		if err := s.writeTable(f, sh.name, sh.table, st); err != nil {
			return errors.WorkbookError(path, err)
		}
	}
	f.SetActiveSheet(0)

	cfg := p.Config()
	if err := f.SetDocProps(&excelize.DocProperties{
		Creator:     s.config.Creator,
		Identifier:  p.ID.String(),
		Title:       "Budget plan",
		Subject:     fmt.Sprintf("%d-%d valued in %d", cfg.StartYear, cfg.StartYear+cfg.Years-1, cfg.CurrentYear),
		Description: fmt.Sprintf("currency %s", cfg.Currency),
		Created:     time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return errors.WorkbookError(path, fmt.Errorf("set document properties: %w", err))
	}

	if err := f.SaveAs(path); err != nil {
		return errors.WorkbookError(path, err)
	}
	s.logger.Info("saved plan %s to %s (%d sheets) in %.2fms",
		p.ID, path, len(sheets), float64(time.Since(start).Nanoseconds())/1e6)
	return nil
}

func planSheets(p *plan.Plan) ([]sheet, error) {
	fcf, err := grid.Stack(p.FreeCashFlow(), p.FCF(), p.DFCF())
	if err != nil {
		return nil, errors.Wrap(err, "free cash flow sheet")
	}
	operating, err := grid.Stack(p.VariableCosts, p.HRCosts, p.MaintenanceCosts, p.OtherFixedCosts)
	if err != nil {
		return nil, errors.Wrap(err, "operating costs sheet")
	}
	capital, err := grid.Stack(p.Investments, p.Depreciations)
	if err != nil {
		return nil, errors.Wrap(err, "capital sheet")
	}

	cfg := p.Config()
	tv, _ := p.TerminalValue()
	valuation, err := grid.FromRows(
		[]string{rowTerminalValue, rowDiscountRate, rowGrowthRate},
		[]string{valuationColumn},
		[][]float64{{tv}, {cfg.DiscountRate}, {cfg.GrowthRate}},
	)
	if err != nil {
		return nil, errors.Wrap(err, "valuation sheet")
	}

	return []sheet{
		{SheetProfitLoss, p.ProfitLoss()},
		{SheetFreeCashFlow, fcf},
		{SheetParameters, p.Parameters()},
		{SheetProductTable, p.ProductTable},
		{SheetProductPrices, p.ProductPrices},
		{SheetRawMaterialsQuantities, p.RawMaterialsQuantities},
		{SheetRawMaterialsPrices, p.RawMaterialsPrices},
		{SheetOperatingCosts, operating},
		{SheetCapital, capital},
		{SheetValuation, valuation},
	}, nil
}

func (s *Store) newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error

	// Header row: bold, centered, shaded.
	st.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#D9E1F2"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return st, fmt.Errorf("create header style: %w", err)
	}

	st.label, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return st, fmt.Errorf("create label style: %w", err)
	}

	st.number, err = f.NewStyle(&excelize.Style{
		NumFmt: s.config.NumberStyle,
	})
	if err != nil {
		return st, fmt.Errorf("create number style: %w", err)
	}
	return st, nil
}

// writeTable lays a table out with A1 blank, year headers on row 1 and row
// labels in column A. Panes are frozen at B2.
func (s *Store) writeTable(f *excelize.File, name string, t *grid.Table, st styles) error {
	rows, cols := t.Dims()

	header := make([]interface{}, 0, cols+1)
	header = append(header, "")
	for _, c := range t.Cols() {
		header = append(header, c)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", name, err)
	}

	labels := t.Rows()
	for i := 0; i < rows; i++ {
		line := make([]interface{}, 0, cols+1)
		line = append(line, labels[i])
		for _, v := range t.Row(i) {
			line = append(line, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &line); err != nil {
			return fmt.Errorf("write %s row %s: %w", name, labels[i], err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(cols + 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", lastCol+"1", st.header); err != nil {
		return fmt.Errorf("style %s header: %w", name, err)
	}
	if err := f.SetCellStyle(name, "A2", fmt.Sprintf("A%d", rows+1), st.label); err != nil {
		return fmt.Errorf("style %s labels: %w", name, err)
	}
	if err := f.SetCellStyle(name, "B2", fmt.Sprintf("%s%d", lastCol, rows+1), st.number); err != nil {
		return fmt.Errorf("style %s values: %w", name, err)
	}

	if err := f.SetColWidth(name, "A", "A", s.config.LabelWidth); err != nil {
		return fmt.Errorf("set %s label width: %w", name, err)
	}
	if err := f.SetColWidth(name, "B", lastCol, s.config.ValueWidth); err != nil {
		return fmt.Errorf("set %s value width: %w", name, err)
	}

	return f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      1,
		TopLeftCell: "B2",
		ActivePane:  "bottomRight",
	})
}
