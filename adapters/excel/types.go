package excel

// Sheet names, in the order Save writes them
const (
	SheetProfitLoss             = "Profit_Loss"
	SheetFreeCashFlow           = "Free_Cash_Flow"
	SheetParameters             = "Parameters"
	SheetProductTable           = "Product_Table"
	SheetProductPrices          = "Product_Prices"
	SheetRawMaterialsQuantities = "Raw_Materials_Quantities"
	SheetRawMaterialsPrices     = "Raw_Materials_Prices"
	SheetOperatingCosts         = "Operating_Costs"
	SheetCapital                = "Capital"
	SheetValuation              = "Valuation"
)

// Rows of the Valuation sheet
const (
	valuationColumn  = "Value"
	rowTerminalValue = "Terminal_Value"
	rowDiscountRate  = "Discount_Rate"
	rowGrowthRate    = "Growth_Rate"
)

// SheetData represents one sheet as read from a workbook
type SheetData struct {
	Name    string
	Headers []string   // year labels, without the A1 corner
	Labels  []string   // row labels from column A
	Cells   [][]string // raw cell values, one slice per row
}
