package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"strings"

	"budgetplan/app"
	"budgetplan/domain/plan"
	"budgetplan/internal/errors"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Plan     PlanConfig
	Run      RunConfig
	Workbook WorkbookConfig
	Logging  LoggingConfig
}

// PlanConfig holds the default plan shape and rates
type PlanConfig struct {
	StartYear     int     `envconfig:"BUDGET_START_YEAR" default:"2019"`
	Years         int     `envconfig:"BUDGET_YEARS" default:"13"`
	CurrentYear   int     `envconfig:"BUDGET_CURRENT_YEAR" default:"2022"`
	Products      int     `envconfig:"BUDGET_PRODUCTS" default:"1"`
	RawMaterials  int     `envconfig:"BUDGET_RAW_MATERIALS" default:"1"`
	Loss          float64 `envconfig:"BUDGET_LOSS" default:"0.02"`
	Inflation     float64 `envconfig:"BUDGET_INFLATION" default:"0.02"`
	IncomeTaxRate float64 `envconfig:"BUDGET_INCOME_TAX_RATE" default:"0.25"`
	DiscountRate  float64 `envconfig:"BUDGET_DISCOUNT_RATE" default:"0.08"`
	GrowthRate    float64 `envconfig:"BUDGET_GROWTH_RATE" default:"0.01"`
	Currency      string  `envconfig:"BUDGET_CURRENCY" default:"€"`
	ChangeRate    float64 `envconfig:"BUDGET_CHANGE_RATE" default:"1"`
	Turnover      float64 `envconfig:"BUDGET_TURNOVER" default:"0.03"`
	TerminalValue bool    `envconfig:"BUDGET_TERMINAL_VALUE" default:"false"`
	TVMethod      string  `envconfig:"BUDGET_TV_METHOD" default:"avg"`
	Decimals      int     `envconfig:"BUDGET_DECIMALS" default:"2"`
}

// RunConfig holds settings for a simulation run
type RunConfig struct {
	Seed     uint64 `envconfig:"BUDGET_SEED" default:"42"`
	Output   string `envconfig:"BUDGET_OUTPUT" default:"plan.xlsx"`
	Scenario string `envconfig:"BUDGET_SCENARIO"`
}

// WorkbookConfig holds workbook layout settings
type WorkbookConfig struct {
	Creator string `envconfig:"BUDGET_WORKBOOK_CREATOR" default:"budgetplan"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"INFO"`
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	// Load plan configuration
	planConfig, err := loadPlanConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load plan configuration")
	}
	config.Plan = *planConfig

	// Load run configuration
	runConfig, err := loadRunConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load run configuration")
	}
	config.Run = *runConfig

	workbookConfig, err := loadWorkbookConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load workbook configuration")
	}
	config.Workbook = *workbookConfig

	loggingConfig, err := loadLoggingConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load logging configuration")
	}
	config.Logging = *loggingConfig

	// Validate required fields
	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// LoadDotEnv loads the given .env files into the environment. Missing files
// are skipped; variables already set are kept.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				continue
			}
			return errors.ConfigInvalid("failed to read " + path).WithCause(err)
		}
	}
	return nil
}

func loadPlanConfig() (*PlanConfig, error) {
	var cfg PlanConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.ConfigInvalid("invalid plan environment").WithCause(err)
	}
	return &cfg, nil
}

func loadRunConfig() (*RunConfig, error) {
	var cfg RunConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.ConfigInvalid("invalid run environment").WithCause(err)
	}
	return &cfg, nil
}

func loadWorkbookConfig() (*WorkbookConfig, error) {
	var cfg WorkbookConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.ConfigInvalid("invalid workbook environment").WithCause(err)
	}
	return &cfg, nil
}

func loadLoggingConfig() (*LoggingConfig, error) {
	var cfg LoggingConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.ConfigInvalid("invalid logging environment").WithCause(err)
	}
	return &cfg, nil
}

func validateConfig(config *Config) error {
	if err := config.ToPlanConfig().Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(config.Run.Output) == "" {
		return errors.ConfigInvalid("BUDGET_OUTPUT must not be empty")
	}
	switch strings.ToUpper(config.Logging.Level) {
	case "ERROR", "WARN", "INFO", "DEBUG", "TRACE":
	default:
		return errors.ConfigInvalid("LOG_LEVEL must be one of ERROR, WARN, INFO, DEBUG, TRACE")
	}
	return nil
}

// ToPlanConfig converts the environment settings into a plan configuration
func (c *Config) ToPlanConfig() plan.Config {
	p := c.Plan
	return plan.Config{
		StartYear:           p.StartYear,
		Years:               p.Years,
		CurrentYear:         p.CurrentYear,
		Products:            p.Products,
		RawMaterials:        p.RawMaterials,
		Loss:                p.Loss,
		Inflation:           p.Inflation,
		IncomeTaxRate:       p.IncomeTaxRate,
		DiscountRate:        p.DiscountRate,
		GrowthRate:          p.GrowthRate,
		Currency:            p.Currency,
		ChangeRate:          p.ChangeRate,
		Turnover:            p.Turnover,
		TerminalValue:       p.TerminalValue,
		TerminalValueMethod: plan.TerminalValueMethod(strings.ToLower(p.TVMethod)),
		Decimals:            p.Decimals,
	}
}

// Scenario returns the default scenario for this configuration
func (c *Config) Scenario() app.Scenario {
	return app.Scenario{
		Plan:       c.ToPlanConfig(),
		Generators: app.DefaultGenerators(),
		Seed:       c.Run.Seed,
	}
}

// LoadScenario reads a YAML scenario file. Keys absent from the file keep
// the values of base.
func LoadScenario(path string, base app.Scenario) (app.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, errors.ConfigInvalid("failed to read scenario " + path).WithCause(err)
	}

	sc := base
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return base, errors.ConfigInvalid("failed to parse scenario " + path).WithCause(err)
	}
	if err := sc.Plan.Validate(); err != nil {
		return base, errors.Wrapf(err, "scenario %s", path)
	}
	return sc, nil
}
