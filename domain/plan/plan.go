// Package plan holds the budget plan aggregate: the input tables a caller
// fills in, the parameter tables derived from the configuration, and the
// profit & loss, cash-flow and valuation tables recomputed by Update.
package plan

import (
	"fmt"

	"budgetplan/domain/core"
	"budgetplan/domain/grid"
	"budgetplan/internal/errors"
)

// Row labels of the single-row tables.
const (
	RowRevenues            = "Revenues"
	RowRawMaterialsCosts   = "Raw_Materials_Costs"
	RowVariableCosts       = "Variable_Costs"
	RowHRCosts             = "HR_Costs"
	RowMaintenanceCosts    = "Maintenance_Costs"
	RowOtherFixedCosts     = "Other_Fixed_Costs"
	RowFixedCosts          = "Fixed_Costs"
	RowInvestments         = "Investments"
	RowDepreciations       = "Depreciations"
	RowEbitda              = "EBITDA"
	RowEbit                = "EBIT"
	RowIncomeTaxes         = "Income_Taxes"
	RowNetIncome           = "Net_Income"
	RowNetWorkingCapital   = "Net_Working_Capital"
	RowChangesNWC          = "Changes_NWC"
	RowFCF                 = "FCF"
	RowDFCF                = "DFCF"
	RowPeriodOfDiscounting = "Period_of_Discounting"
	RowDiscountingFactor   = "Discounting_Factor"
	RowIncomeTaxRate       = "Income_Tax_Rate%"
	RowInflation           = "Inflation"
	RowTurnover            = "Turnover"
)

// ChangeRateRow labels the exchange-rate parameter row for currency.
func ChangeRateRow(currency string) string {
	return fmt.Sprintf("Change_Rate %s / ..", currency)
}

// Plan is a fixed-shape budget over Config.Years columns.
//
// The exported tables are inputs: callers edit them in place (or replace them
// with tables carrying the same columns) and then call Update. Everything else
// is produced by Update and exposed as copies.
type Plan struct {
	ID core.ID

	config Config
	cols   []string

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

	params  parameters
	derived derived

	terminalValue float64
}

type parameters struct {
	periodOfDiscounting *grid.Table
	discountingFactor   *grid.Table
	incomeTaxRate       *grid.Table
	inflation           *grid.Table
	turnover            *grid.Table
	changeRate          *grid.Table
}

// all lists the parameter tables in Parameters-sheet order.
func (ps *parameters) all() []**grid.Table {
	return []**grid.Table{
		&ps.periodOfDiscounting,
		&ps.discountingFactor,
		&ps.incomeTaxRate,
		&ps.inflation,
		&ps.turnover,
		&ps.changeRate,
	}
}

func (ps parameters) clone() parameters {
	out := ps
	for _, t := range out.all() {
		*t = (*t).Clone()
	}
	return out
}

func (ps *parameters) stack() (*grid.Table, error) {
	tables := make([]*grid.Table, 0, 6)
	for _, t := range ps.all() {
		tables = append(tables, *t)
	}
	return grid.Stack(tables...)
}

type derived struct {
	revenues          *grid.Table
	rawMaterialsCosts *grid.Table
	fixedCosts        *grid.Table
	ebitda            *grid.Table
	ebit              *grid.Table
	incomeTaxes       *grid.Table
	netIncome         *grid.Table
	netWorkingCapital *grid.Table
	changesNWC        *grid.Table
	fcf               *grid.Table
	dfcf              *grid.Table
	profitLoss        *grid.Table
	freeCashFlow      *grid.Table
	parameters        *grid.Table
}

func (d *derived) all() []**grid.Table {
	return []**grid.Table{
		&d.revenues, &d.rawMaterialsCosts, &d.fixedCosts, &d.ebitda, &d.ebit,
		&d.incomeTaxes, &d.netIncome, &d.netWorkingCapital, &d.changesNWC,
		&d.fcf, &d.dfcf, &d.profitLoss, &d.freeCashFlow, &d.parameters,
	}
}

type namedTable struct {
	name  string
	table **grid.Table
	// single marks inputs that must stay one row wide
	single bool
}

func (p *Plan) inputs() []namedTable {
	return []namedTable{
		{"Product_Table", &p.ProductTable, false},
		{"Product_Prices", &p.ProductPrices, false},
		{"Raw_Materials_Quantities", &p.RawMaterialsQuantities, false},
		{"Raw_Materials_Prices", &p.RawMaterialsPrices, false},
		{RowVariableCosts, &p.VariableCosts, true},
		{RowHRCosts, &p.HRCosts, true},
		{RowMaintenanceCosts, &p.MaintenanceCosts, true},
		{RowOtherFixedCosts, &p.OtherFixedCosts, true},
		{RowInvestments, &p.Investments, true},
		{RowDepreciations, &p.Depreciations, true},
	}
}

// tableBuilder creates column-aligned tables and keeps the first error.
type tableBuilder struct {
	cols []string
	err  error
}

func (b *tableBuilder) filled(v float64, rows ...string) *grid.Table {
	if b.err != nil {
		return nil
	}
	t, err := grid.NewFilled(rows, b.cols, v)
	b.err = err
	return t
}

func (b *tableBuilder) row(label string, values []float64) *grid.Table {
	if b.err != nil {
		return nil
	}
	t, err := grid.FromRows([]string{label}, b.cols, [][]float64{values})
	b.err = err
	return t
}

// New validates cfg and returns a zero-filled plan with its parameter tables
// computed and one Update applied.
func New(cfg Config) (*Plan, error) {
	if cfg.TerminalValueMethod == "" {
		cfg.TerminalValueMethod = TerminalAverage
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Plan{
		ID:     core.NewID(),
		config: cfg,
		cols:   cfg.Columns(),
	}
	b := &tableBuilder{cols: p.cols}

	years := cfg.columnYears()
	periods := make([]float64, len(years))
	factors := make([]float64, len(years))
	for i, y := range years {
		periods[i] = PeriodOfDiscounting(y, cfg.CurrentYear)
		factors[i] = DiscountFactor(cfg.DiscountRate, periods[i])
	}
	p.params = parameters{
		periodOfDiscounting: b.row(RowPeriodOfDiscounting, periods),
		discountingFactor:   b.row(RowDiscountingFactor, factors),
		incomeTaxRate:       b.filled(cfg.IncomeTaxRate, RowIncomeTaxRate),
		inflation:           b.filled(cfg.Inflation, RowInflation),
		turnover:            b.filled(cfg.Turnover, RowTurnover),
		changeRate:          b.filled(cfg.ChangeRate, ChangeRateRow(cfg.Currency)),
	}

	p.ProductTable = b.filled(0, grid.IndexRows("", cfg.Products)...)
	p.ProductPrices = b.filled(0, grid.IndexRows("", cfg.Products)...)
	p.RawMaterialsQuantities = b.filled(0, grid.IndexRows("", cfg.RawMaterials)...)
	p.RawMaterialsPrices = b.filled(0, grid.IndexRows("", cfg.RawMaterials)...)
	p.VariableCosts = b.filled(0, RowVariableCosts)
	p.HRCosts = b.filled(0, RowHRCosts)
	p.MaintenanceCosts = b.filled(0, RowMaintenanceCosts)
	p.OtherFixedCosts = b.filled(0, RowOtherFixedCosts)
	p.Investments = b.filled(0, RowInvestments)
	p.Depreciations = b.filled(0, RowDepreciations)
	if b.err != nil {
		return nil, errors.Wrap(b.err, "initialize plan tables")
	}

	if err := p.Update(); err != nil {
		return nil, err
	}
	return p, nil
}

// Config returns the configuration the plan was built with.
func (p *Plan) Config() Config { return p.config }

// Columns returns the year labels shared by every table of the plan.
func (p *Plan) Columns() []string { return append([]string(nil), p.cols...) }

// clone deep-copies every table.
func (p *Plan) clone() *Plan {
	out := *p
	out.cols = p.Columns()
	for _, in := range out.inputs() {
		*in.table = (*in.table).Clone()
	}
	out.params = p.params.clone()
	for _, t := range out.derived.all() {
		if *t != nil {
			*t = (*t).Clone()
		}
	}
	return &out
}

// Derived tables. Each accessor returns a copy.

func (p *Plan) Revenues() *grid.Table          { return p.derived.revenues.Clone() }
func (p *Plan) RawMaterialsCosts() *grid.Table { return p.derived.rawMaterialsCosts.Clone() }
func (p *Plan) FixedCosts() *grid.Table        { return p.derived.fixedCosts.Clone() }
func (p *Plan) Ebitda() *grid.Table            { return p.derived.ebitda.Clone() }
func (p *Plan) Ebit() *grid.Table              { return p.derived.ebit.Clone() }
func (p *Plan) IncomeTaxes() *grid.Table       { return p.derived.incomeTaxes.Clone() }
func (p *Plan) NetIncome() *grid.Table         { return p.derived.netIncome.Clone() }
func (p *Plan) NetWorkingCapital() *grid.Table { return p.derived.netWorkingCapital.Clone() }
func (p *Plan) ChangesNWC() *grid.Table        { return p.derived.changesNWC.Clone() }
func (p *Plan) FCF() *grid.Table               { return p.derived.fcf.Clone() }
func (p *Plan) DFCF() *grid.Table              { return p.derived.dfcf.Clone() }

// ProfitLoss stacks revenues down to net income.
func (p *Plan) ProfitLoss() *grid.Table { return p.derived.profitLoss.Clone() }

// FreeCashFlow stacks the components summed into FCF.
func (p *Plan) FreeCashFlow() *grid.Table { return p.derived.freeCashFlow.Clone() }

// Parameters stacks the six parameter rows.
func (p *Plan) Parameters() *grid.Table { return p.derived.parameters.Clone() }

// Parameter tables.

func (p *Plan) DiscountingPeriods() *grid.Table { return p.params.periodOfDiscounting.Clone() }
func (p *Plan) DiscountingFactors() *grid.Table { return p.params.discountingFactor.Clone() }
func (p *Plan) IncomeTaxRates() *grid.Table     { return p.params.incomeTaxRate.Clone() }
func (p *Plan) InflationRates() *grid.Table     { return p.params.inflation.Clone() }
func (p *Plan) TurnoverRates() *grid.Table      { return p.params.turnover.Clone() }
func (p *Plan) ChangeRates() *grid.Table        { return p.params.changeRate.Clone() }

// TerminalValue returns the perpetuity value and whether the plan carries a
// terminal column at all.
func (p *Plan) TerminalValue() (float64, bool) {
	return p.terminalValue, p.config.TerminalValue
}
