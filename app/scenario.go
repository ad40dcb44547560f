package app

import (
	"budgetplan/domain/plan"
)

// TrendSetting drives a compounding series (prices)
type TrendSetting struct {
	Baseline  float64 `json:"baseline" yaml:"baseline"`
	Increase  float64 `json:"increase" yaml:"increase"`
	Variation float64 `json:"variation" yaml:"variation"`
}

// RangeSetting drives per-item constant series with baselines drawn from [Min, Max] (quantities)
type RangeSetting struct {
	Min       int     `json:"min" yaml:"min"`
	Max       int     `json:"max" yaml:"max"`
	Variation float64 `json:"variation" yaml:"variation"`
}

// ConstantSetting drives a single noisy constant row. Cost baselines are
// given as positive amounts and stored negated.
type ConstantSetting struct {
	Baseline  float64 `json:"baseline" yaml:"baseline"`
	Variation float64 `json:"variation" yaml:"variation"`
}

// Generators configures how each input table of a synthetic scenario is filled
type Generators struct {
	Quantities    RangeSetting    `json:"quantities" yaml:"quantities"`
	Prices        TrendSetting    `json:"prices" yaml:"prices"`
	RawQuantities RangeSetting    `json:"raw_quantities" yaml:"raw_quantities"`
	RawPrices     TrendSetting    `json:"raw_prices" yaml:"raw_prices"`
	VariableCosts ConstantSetting `json:"variable_costs" yaml:"variable_costs"`
	HRCosts       ConstantSetting `json:"hr_costs" yaml:"hr_costs"`
	Maintenance   ConstantSetting `json:"maintenance_costs" yaml:"maintenance_costs"`
	OtherFixed    ConstantSetting `json:"other_fixed_costs" yaml:"other_fixed_costs"`
	Depreciations ConstantSetting `json:"depreciations" yaml:"depreciations"`
	Investments   ConstantSetting `json:"investments" yaml:"investments"`
}

// DefaultGenerators returns a small manufacturing business that stays profitable
func DefaultGenerators() Generators {
	return Generators{
		Quantities:    RangeSetting{Min: 200, Max: 500, Variation: 0.05},
		Prices:        TrendSetting{Baseline: 10, Increase: 0.02, Variation: 0.03},
		RawQuantities: RangeSetting{Min: 100, Max: 300, Variation: 0.05},
		RawPrices:     TrendSetting{Baseline: 2, Increase: 0.03, Variation: 0.03},
		VariableCosts: ConstantSetting{Baseline: 100, Variation: 0.05},
		HRCosts:       ConstantSetting{Baseline: 1500, Variation: 0.02},
		Maintenance:   ConstantSetting{Baseline: 300, Variation: 0.10},
		OtherFixed:    ConstantSetting{Baseline: 200, Variation: 0.10},
		Depreciations: ConstantSetting{Baseline: 400},
		Investments:   ConstantSetting{Baseline: 500, Variation: 0.20},
	}
}

// Scenario is everything needed to build a synthetic plan
type Scenario struct {
	Plan       plan.Config `json:"plan" yaml:"plan"`
	Generators Generators  `json:"generators" yaml:"generators"`
	Seed       uint64      `json:"seed" yaml:"seed"`
}

// DefaultScenario combines the default plan with the default generators
func DefaultScenario() Scenario {
	return Scenario{
		Plan:       plan.DefaultConfig(),
		Generators: DefaultGenerators(),
		Seed:       42,
	}
}
