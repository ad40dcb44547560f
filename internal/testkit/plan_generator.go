package testkit

import (
	"fmt"
	"math/rand/v2"

	"budgetplan/domain/core"
	"budgetplan/domain/grid"
	"budgetplan/domain/plan"
	"budgetplan/internal/errors"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// terminalWindow is how many forecast years feed an "avg" terminal value
const terminalWindow = 5

// averageWindow picks the years averaged into an "avg" terminal value
type averageWindow int

const (
	// trailingYears averages the last terminalWindow forecast years
	trailingYears averageWindow = iota
	// precedingYears averages the terminalWindow years before the last one
	precedingYears
)

// TrendConfig configures LinearTrend
type TrendConfig struct {
	StartYear           int                      `json:"start_year" yaml:"start_year"`
	Years               int                      `json:"years" yaml:"years"`
	Items               int                      `json:"items" yaml:"items"`
	Baseline            float64                  `json:"baseline" yaml:"baseline"`
	Increase            float64                  `json:"increase" yaml:"increase"`
	Variation           float64                  `json:"variation" yaml:"variation"`
	Prefix              string                   `json:"prefix" yaml:"prefix"`
	Decimals            int                      `json:"decimals" yaml:"decimals"`
	TerminalValue       bool                     `json:"terminal_value" yaml:"terminal_value"`
	TerminalValueMethod plan.TerminalValueMethod `json:"terminal_value_method" yaml:"terminal_value_method"`
	Seed                uint64                   `json:"seed" yaml:"seed"`
}

// DefaultTrendConfig returns one item starting at 1 and growing 2% a year with ±10% noise
func DefaultTrendConfig() TrendConfig {
	return TrendConfig{
		StartYear:           2019,
		Years:               13,
		Items:               1,
		Baseline:            1,
		Increase:            0.02,
		Variation:           0.10,
		Prefix:              "Prod_",
		Decimals:            2,
		TerminalValueMethod: plan.TerminalAverage,
		Seed:                42,
	}
}

// ConstantConfig configures RandomConstant
type ConstantConfig struct {
	StartYear           int                      `json:"start_year" yaml:"start_year"`
	Years               int                      `json:"years" yaml:"years"`
	Baseline            float64                  `json:"baseline" yaml:"baseline"`
	Variation           float64                  `json:"variation" yaml:"variation"`
	Label               string                   `json:"label" yaml:"label"`
	Decimals            int                      `json:"decimals" yaml:"decimals"`
	TerminalValue       bool                     `json:"terminal_value" yaml:"terminal_value"`
	TerminalValueMethod plan.TerminalValueMethod `json:"terminal_value_method" yaml:"terminal_value_method"`
	Seed                uint64                   `json:"seed" yaml:"seed"`
}

// DefaultConstantConfig returns a baseline of 100 with ±5% noise
func DefaultConstantConfig() ConstantConfig {
	return ConstantConfig{
		StartYear:           2019,
		Years:               13,
		Baseline:            100,
		Variation:           0.05,
		Decimals:            2,
		TerminalValueMethod: plan.TerminalAverage,
		Seed:                42,
	}
}

// MultiConstantConfig configures MultipleRandomConstant
type MultiConstantConfig struct {
	StartYear           int                      `json:"start_year" yaml:"start_year"`
	Years               int                      `json:"years" yaml:"years"`
	Items               int                      `json:"items" yaml:"items"`
	Min                 int                      `json:"min" yaml:"min"`
	Max                 int                      `json:"max" yaml:"max"`
	Variation           float64                  `json:"variation" yaml:"variation"`
	Prefix              string                   `json:"prefix" yaml:"prefix"`
	Decimals            int                      `json:"decimals" yaml:"decimals"`
	TerminalValue       bool                     `json:"terminal_value" yaml:"terminal_value"`
	TerminalValueMethod plan.TerminalValueMethod `json:"terminal_value_method" yaml:"terminal_value_method"`
	Seed                uint64                   `json:"seed" yaml:"seed"`
}

// DefaultMultiConstantConfig returns ten items with baselines between 200 and 500
func DefaultMultiConstantConfig() MultiConstantConfig {
	return MultiConstantConfig{
		StartYear:           2019,
		Years:               13,
		Items:               10,
		Min:                 200,
		Max:                 500,
		Variation:           0.05,
		Decimals:            2,
		TerminalValueMethod: plan.TerminalAverage,
		Seed:                42,
	}
}

// LinearTrend compounds every item from Baseline by Increase a year, with a
// uniform relative variation in ±Variation applied on top of each step.
// Rows are labelled Prefix, Prefix1, Prefix2, ... and an "avg" terminal value
// is the mean of the last five forecast years.
// A nil rng is seeded from cfg.Seed.
func LinearTrend(cfg TrendConfig, rng *rand.Rand) (*grid.Table, error) {
	if err := checkShape(cfg.Years, cfg.Items, cfg.Variation, cfg.Decimals, cfg.TerminalValue, cfg.TerminalValueMethod); err != nil {
		return nil, err
	}
	noise := uniform(cfg.Variation, rng, cfg.Seed)

	values := make([][]float64, cfg.Items)
	for k := range values {
		forecast := make([]float64, cfg.Years)
		y := cfg.Baseline
		for i := range forecast {
			y = y + y*cfg.Increase + y*noise.Rand()
			forecast[i] = y
		}
		row, err := withTerminal(forecast, cfg.TerminalValue, cfg.TerminalValueMethod, trailingYears)
		if err != nil {
			return nil, err
		}
		values[k] = row
	}
	return build(trendRows(cfg.Prefix, cfg.Items), cfg.StartYear, cfg.Years, cfg.TerminalValue, values, cfg.Decimals)
}

// RandomConstant draws each year independently as Baseline ± Variation.
// An "avg" terminal value is the mean of the five years before the last
// forecast year.
// A nil rng is seeded from cfg.Seed.
func RandomConstant(cfg ConstantConfig, rng *rand.Rand) (*grid.Table, error) {
	if err := checkShape(cfg.Years, 1, cfg.Variation, cfg.Decimals, cfg.TerminalValue, cfg.TerminalValueMethod); err != nil {
		return nil, err
	}
	row, err := constantRow(cfg.Baseline, cfg.Years, uniform(cfg.Variation, rng, cfg.Seed), cfg.TerminalValue, cfg.TerminalValueMethod)
	if err != nil {
		return nil, err
	}
	return build([]string{cfg.Label}, cfg.StartYear, cfg.Years, cfg.TerminalValue, [][]float64{row}, cfg.Decimals)
}

// MultipleRandomConstant builds Items random-constant rows, each around an
// integer baseline drawn uniformly from [Min, Max].
// A nil rng is seeded from cfg.Seed.
func MultipleRandomConstant(cfg MultiConstantConfig, rng *rand.Rand) (*grid.Table, error) {
	if err := checkShape(cfg.Years, cfg.Items, cfg.Variation, cfg.Decimals, cfg.TerminalValue, cfg.TerminalValueMethod); err != nil {
		return nil, err
	}
	if cfg.Min > cfg.Max {
		return nil, errors.InvalidInput(fmt.Sprintf("min baseline %d exceeds max %d", cfg.Min, cfg.Max)).
			WithCause(core.ErrInvalidGeneratorSetting)
	}
	if rng == nil {
		rng = seeded(cfg.Seed)
	}
	noise := uniform(cfg.Variation, rng, cfg.Seed)

	values := make([][]float64, cfg.Items)
	for k := range values {
		baseline := float64(cfg.Min + rng.IntN(cfg.Max-cfg.Min+1))
		row, err := constantRow(baseline, cfg.Years, noise, cfg.TerminalValue, cfg.TerminalValueMethod)
		if err != nil {
			return nil, err
		}
		values[k] = row
	}
	return build(grid.IndexRows(cfg.Prefix, cfg.Items), cfg.StartYear, cfg.Years, cfg.TerminalValue, values, cfg.Decimals)
}

func constantRow(baseline float64, years int, noise distuv.Uniform, tv bool, method plan.TerminalValueMethod) ([]float64, error) {
	forecast := make([]float64, years)
	for i := range forecast {
		forecast[i] = baseline + baseline*noise.Rand()
	}
	return withTerminal(forecast, tv, method, precedingYears)
}

// withTerminal appends the terminal-value cell when tv is set.
func withTerminal(forecast []float64, tv bool, method plan.TerminalValueMethod, w averageWindow) ([]float64, error) {
	if !tv {
		return forecast, nil
	}
	n := len(forecast)
	if method == plan.TerminalLast {
		return append(forecast, forecast[n-1]), nil
	}
	window := forecast[max(0, n-terminalWindow):]
	if w == precedingYears && n > 1 {
		window = forecast[max(0, n-1-terminalWindow) : n-1]
	}
	mean, err := stats.Mean(window)
	if err != nil {
		return nil, errors.Wrap(err, "terminal value average")
	}
	return append(forecast, mean), nil
}

// trendRows labels the first item with the bare prefix and the rest prefix1, prefix2, ...
func trendRows(prefix string, n int) []string {
	rows := grid.IndexRows(prefix, n)
	rows[0] = prefix
	return rows
}

func build(rows []string, start, years int, tv bool, values [][]float64, decimals int) (*grid.Table, error) {
	t, err := grid.FromRows(rows, grid.YearColumns(start, years, tv), values)
	if err != nil {
		return nil, errors.Wrap(err, "build generated table")
	}
	return t.Round(decimals), nil
}

func uniform(variation float64, rng *rand.Rand, seed uint64) distuv.Uniform {
	if rng == nil {
		rng = seeded(seed)
	}
	return distuv.Uniform{Min: -variation, Max: variation, Src: rng}
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func checkShape(years, items int, variation float64, decimals int, tv bool, method plan.TerminalValueMethod) error {
	var reason string
	switch {
	case years < 1:
		reason = fmt.Sprintf("years must be at least 1, got %d", years)
	case items < 1:
		reason = fmt.Sprintf("items must be at least 1, got %d", items)
	case variation < 0:
		reason = fmt.Sprintf("variation must not be negative, got %g", variation)
	case decimals < 0:
		reason = fmt.Sprintf("decimals must not be negative, got %d", decimals)
	case tv && method != "" && !method.IsValid():
		reason = fmt.Sprintf("unknown terminal value method %q", method)
	default:
		return nil
	}
	return errors.InvalidInput(reason).WithCause(core.ErrInvalidGeneratorSetting)
}
