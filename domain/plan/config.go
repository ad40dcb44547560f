package plan

import (
	"fmt"

	"budgetplan/domain/core"
	"budgetplan/domain/grid"
	"budgetplan/internal/errors"
)

// TerminalValueMethod selects how a generated terminal-value column is filled.
type TerminalValueMethod string

const (
	// TerminalAverage uses the mean of the trailing forecast window
	TerminalAverage TerminalValueMethod = "avg"
	// TerminalLast repeats the last forecast value
	TerminalLast TerminalValueMethod = "last"
)

// IsValid checks if the method is known
func (m TerminalValueMethod) IsValid() bool {
	switch m {
	case TerminalAverage, TerminalLast:
		return true
	default:
		return false
	}
}

func (m TerminalValueMethod) String() string { return string(m) }

// Config holds the construction parameters of a plan.
type Config struct {
	StartYear    int `json:"start_year" yaml:"start_year"`
	Years        int `json:"years" yaml:"years"`
	CurrentYear  int `json:"current_year" yaml:"current_year"`
	Products     int `json:"products" yaml:"products"`
	RawMaterials int `json:"raw_materials" yaml:"raw_materials"`

	Loss          float64 `json:"loss" yaml:"loss"`
	Inflation     float64 `json:"inflation" yaml:"inflation"`
	IncomeTaxRate float64 `json:"income_tax_rate" yaml:"income_tax_rate"`
	DiscountRate  float64 `json:"discount_rate" yaml:"discount_rate"`
	GrowthRate    float64 `json:"growth_rate" yaml:"growth_rate"`
	Currency      string  `json:"currency" yaml:"currency"`
	ChangeRate    float64 `json:"change_rate" yaml:"change_rate"`
	Turnover      float64 `json:"turnover" yaml:"turnover"`

	TerminalValue       bool                `json:"terminal_value" yaml:"terminal_value"`
	TerminalValueMethod TerminalValueMethod `json:"terminal_value_method" yaml:"terminal_value_method"`
	Decimals            int                 `json:"decimals" yaml:"decimals"`
}

// DefaultConfig returns the reference plan: 13 years from 2019, valued in 2022.
func DefaultConfig() Config {
	return Config{
		StartYear:           2019,
		Years:               13,
		CurrentYear:         2022,
		Products:            1,
		RawMaterials:        1,
		Loss:                0.02,
		Inflation:           0.02,
		IncomeTaxRate:       0.25,
		DiscountRate:        0.08,
		GrowthRate:          0.01,
		Currency:            "€",
		ChangeRate:          1,
		Turnover:            0.03,
		TerminalValue:       false,
		TerminalValueMethod: TerminalAverage,
		Decimals:            2,
	}
}

// Validate rejects configurations a plan cannot be built from.
func (c Config) Validate() error {
	if c.GrowthRate >= c.DiscountRate {
		return errors.ConfigInvalid(fmt.Sprintf(
			"growth rate %.4f is not lower than discount rate %.4f", c.GrowthRate, c.DiscountRate,
		)).WithCause(core.ErrGrowthNotBelowDiscount)
	}
	dims := []struct {
		name  string
		value int
	}{
		{"years", c.Years},
		{"products", c.Products},
		{"raw materials", c.RawMaterials},
	}
	for _, d := range dims {
		if d.value < 1 {
			return errors.ConfigInvalid(fmt.Sprintf("%s must be at least 1, got %d", d.name, d.value)).
				WithCause(core.ErrNonPositiveDimension)
		}
	}
	if c.Decimals < 0 {
		return errors.ConfigInvalid(fmt.Sprintf("decimals must not be negative, got %d", c.Decimals)).
			WithCause(core.ErrNegativeDecimals)
	}
	if c.TerminalValueMethod != "" && !c.TerminalValueMethod.IsValid() {
		return errors.ConfigInvalid(fmt.Sprintf("terminal value method %q", c.TerminalValueMethod)).
			WithCause(core.ErrUnknownTerminalMethod)
	}
	return nil
}

// Columns returns the year labels of the plan, with the terminal column when enabled.
func (c Config) Columns() []string {
	return grid.YearColumns(c.StartYear, c.Years, c.TerminalValue)
}

// columnYears returns the calendar year behind every column; the terminal
// column counts as the year after the horizon.
func (c Config) columnYears() []int {
	n := c.Years
	if c.TerminalValue {
		n++
	}
	years := make([]int, n)
	for i := range years {
		years[i] = c.StartYear + i
	}
	return years
}
