package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"budgetplan/app"
	"budgetplan/domain/core"
	"budgetplan/domain/plan"
	apperrors "budgetplan/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, plan.DefaultConfig(), cfg.ToPlanConfig())
	assert.Equal(t, uint64(42), cfg.Run.Seed)
	assert.Equal(t, "plan.xlsx", cfg.Run.Output)
	assert.Equal(t, "INFO", cfg.Logging.Level)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("BUDGET_START_YEAR", "2024")
	t.Setenv("BUDGET_YEARS", "5")
	t.Setenv("BUDGET_CURRENT_YEAR", "2024")
	t.Setenv("BUDGET_PRODUCTS", "4")
	t.Setenv("BUDGET_CURRENCY", "$")
	t.Setenv("BUDGET_TERMINAL_VALUE", "true")
	t.Setenv("BUDGET_TV_METHOD", "LAST")
	t.Setenv("BUDGET_SEED", "1234")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	pc := cfg.ToPlanConfig()
	assert.Equal(t, 2024, pc.StartYear)
	assert.Equal(t, 5, pc.Years)
	assert.Equal(t, 4, pc.Products)
	assert.Equal(t, "$", pc.Currency)
	assert.True(t, pc.TerminalValue)
	assert.Equal(t, plan.TerminalLast, pc.TerminalValueMethod)

	sc := cfg.Scenario()
	assert.Equal(t, uint64(1234), sc.Seed)
	assert.Equal(t, app.DefaultGenerators(), sc.Generators)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"growth above discount", "BUDGET_GROWTH_RATE", "0.09"},
		{"not a number", "BUDGET_YEARS", "thirteen"},
		{"zero products", "BUDGET_PRODUCTS", "0"},
		{"unknown log level", "LOG_LEVEL", "VERBOSE"},
		{"unknown terminal method", "BUDGET_TV_METHOD", "median"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
		})
	}
}

func TestLoad_GrowthErrorKeepsSentinel(t *testing.T) {
	t.Setenv("BUDGET_GROWTH_RATE", "0.08")
	_, err := Load()
	assert.True(t, errors.Is(err, core.ErrGrowthNotBelowDiscount))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("BUDGET_OUTPUT=from-dotenv.xlsx\n"), 0o644))

	// t.Setenv registers cleanup so the variable does not leak into other tests
	t.Setenv("BUDGET_OUTPUT", "")
	require.NoError(t, os.Unsetenv("BUDGET_OUTPUT"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.xlsx", cfg.Run.Output)
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	content := `
seed: 99
plan:
  start_year: 2023
  years: 6
  current_year: 2023
  products: 3
  terminal_value: true
generators:
  prices:
    baseline: 25
    increase: 0.04
  hr_costs:
    baseline: 800
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	base := app.DefaultScenario()
	sc, err := LoadScenario(path, base)
	require.NoError(t, err)

	assert.Equal(t, uint64(99), sc.Seed)
	assert.Equal(t, 2023, sc.Plan.StartYear)
	assert.Equal(t, 6, sc.Plan.Years)
	assert.Equal(t, 3, sc.Plan.Products)
	assert.True(t, sc.Plan.TerminalValue)
	assert.Equal(t, base.Plan.DiscountRate, sc.Plan.DiscountRate)

	assert.Equal(t, 25.0, sc.Generators.Prices.Baseline)
	assert.Equal(t, 0.04, sc.Generators.Prices.Increase)
	assert.Equal(t, base.Generators.Prices.Variation, sc.Generators.Prices.Variation)
	assert.Equal(t, 800.0, sc.Generators.HRCosts.Baseline)
	assert.Equal(t, base.Generators.Quantities, sc.Generators.Quantities)
}

func TestLoadScenario_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadScenario(filepath.Join(dir, "absent.yaml"), app.DefaultScenario())
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("plan: [not, a, map"), 0o644))
	_, err = LoadScenario(broken, app.DefaultScenario())
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))

	diverging := filepath.Join(dir, "diverging.yaml")
	require.NoError(t, os.WriteFile(diverging, []byte("plan:\n  growth_rate: 0.2\n"), 0o644))
	_, err = LoadScenario(diverging, app.DefaultScenario())
	assert.True(t, errors.Is(err, core.ErrGrowthNotBelowDiscount))
}
