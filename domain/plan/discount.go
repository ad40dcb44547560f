package plan

import "math"

// PeriodOfDiscounting returns the mid-year discounting period of year relative
// to currentYear. Past years are not discounted.
//
// FORMULA: p = 0 if year < currentYear, else year - currentYear + 0.5
func PeriodOfDiscounting(year, currentYear int) float64 {
	if year-currentYear < 0 {
		return 0
	}
	return float64(year-currentYear) + 0.5
}

// DiscountFactor returns the present-value multiplier for period p.
//
// FORMULA: 1 / (1 + rate)^p
func DiscountFactor(rate, period float64) float64 {
	return 1 / math.Pow(1+rate, period)
}

// TerminalValue capitalizes the terminal free cash flow as a growing
// perpetuity, expressed at the second-to-last column.
//
// FORMULA: TV = FCF_tv / ((discountRate - growthRate) * DF_(n-1))
func TerminalValue(terminalFCF, discountRate, growthRate, discountFactor float64) float64 {
	return terminalFCF / ((discountRate - growthRate) * discountFactor)
}
