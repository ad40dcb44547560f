package main

import (
	"context"
	"fmt"
	"os"

	"budgetplan/adapters/excel"
	"budgetplan/app"
	"budgetplan/domain/core"
	"budgetplan/domain/plan"
	"budgetplan/internal"
	"budgetplan/internal/config"
	"budgetplan/internal/testkit"

	"github.com/spf13/cobra"
)

// cli carries what every command needs once configuration is loaded
type cli struct {
	cfg     *config.Config
	service *app.PlanService
	logger  *internal.Logger
}

func main() {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "budgetplan",
		Short:         "Budget and valuation plans: simulate, inspect and compare xlsx workbooks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
	}

	rootCmd.AddCommand(
		newSimulateCmd(c),
		newShowCmd(c),
		newCompareCmd(c),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if c.logger != nil {
			c.logger.Error("%v", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for bad configuration, 3 for unreadable or misshapen
// workbooks and 1 otherwise.
func exitCode(err error) int {
	switch {
	case core.IsConfigError(err):
		return 2
	case core.IsWorkbookError(err), core.IsShapeError(err):
		return 3
	default:
		return 1
	}
}

func (c *cli) init() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = internal.NewLogger(internal.ParseLogLevel(cfg.Logging.Level)).Named("cli")

	store := excel.NewStore(excel.Config{
		Creator:     cfg.Workbook.Creator,
		LabelWidth:  excel.DefaultConfig().LabelWidth,
		ValueWidth:  excel.DefaultConfig().ValueWidth,
		NumberStyle: excel.DefaultConfig().NumberStyle,
	})
	c.service = app.NewPlanService(store, testkit.NewRNGAdapter(), c.logger)
	return nil
}

func newSimulateCmd(c *cli) *cobra.Command {
	var scenarioPath, out string
	var seed uint64

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Build a plan from synthetic inputs and save it as a workbook",
		Long: `Build a plan from synthetic inputs and save it as a workbook.

The plan shape comes from BUDGET_* environment variables (or .env), optionally
overridden by a YAML scenario file with "plan:" and "generators:" blocks.

Example: budgetplan simulate --scenario scenario.yaml --seed 7 --out plan.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := c.cfg.Scenario()
			if scenarioPath == "" {
				scenarioPath = c.cfg.Run.Scenario
			}
			if scenarioPath != "" {
				loaded, err := config.LoadScenario(scenarioPath, sc)
				if err != nil {
					return err
				}
				sc = loaded
			}
			if cmd.Flags().Changed("seed") {
				sc.Seed = seed
			}
			if out == "" {
				out = c.cfg.Run.Output
			}

			p, err := c.service.BuildScenario(cmd.Context(), sc)
			if err != nil {
				return err
			}
			if err := c.service.Save(cmd.Context(), p, out); err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), p)
			fmt.Fprintf(cmd.OutOrStdout(), "\nsaved %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "YAML scenario file (default $BUDGET_SCENARIO)")
	cmd.Flags().Uint64Var(&seed, "seed", 42, "Random seed for the generators (default $BUDGET_SEED)")
	cmd.Flags().StringVar(&out, "out", "", "Output workbook (default $BUDGET_OUTPUT)")

	return cmd
}

// shapeFlags lets show and compare override the plan shape read from the environment
type shapeFlags struct {
	startYear, years, currentYear int
	terminalValue                 bool
}

func (s *shapeFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&s.startYear, "start-year", 0, "First year of the workbook (default $BUDGET_START_YEAR)")
	cmd.Flags().IntVar(&s.years, "years", 0, "Number of forecast years (default $BUDGET_YEARS)")
	cmd.Flags().IntVar(&s.currentYear, "current-year", 0, "Valuation year (default $BUDGET_CURRENT_YEAR)")
	cmd.Flags().BoolVar(&s.terminalValue, "terminal-value", false, "Workbook carries a TV column (default $BUDGET_TERMINAL_VALUE)")
}

func (s *shapeFlags) apply(cmd *cobra.Command, cfg plan.Config) plan.Config {
	if cmd.Flags().Changed("start-year") {
		cfg.StartYear = s.startYear
	}
	if cmd.Flags().Changed("years") {
		cfg.Years = s.years
	}
	if cmd.Flags().Changed("current-year") {
		cfg.CurrentYear = s.currentYear
	}
	if cmd.Flags().Changed("terminal-value") {
		cfg.TerminalValue = s.terminalValue
	}
	return cfg
}

func newShowCmd(c *cli) *cobra.Command {
	var shape shapeFlags

	cmd := &cobra.Command{
		Use:   "show <workbook.xlsx>",
		Short: "Load a workbook, recompute it and print its summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.service.Load(cmd.Context(), shape.apply(cmd, c.cfg.ToPlanConfig()), args[0])
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), p)
			return nil
		},
	}
	shape.register(cmd)

	return cmd
}

func newCompareCmd(c *cli) *cobra.Command {
	var shape shapeFlags
	var deltaParams bool
	var out string

	cmd := &cobra.Command{
		Use:   "compare <a.xlsx> <b.xlsx>",
		Short: "Print (and optionally save) the difference a - b of two workbooks",
		Long: `Print (and optionally save) the difference a - b of two workbooks.

Without --delta-params the parameter tables of b are kept and the difference
is recomputed from the differenced inputs.

Example: budgetplan compare base.xlsx stress.xlsx --delta-params --out delta.xlsx`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := c.service.CompareWorkbooks(cmd.Context(), shape.apply(cmd, c.cfg.ToPlanConfig()), args[0], args[1], deltaParams)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), delta)
			if out != "" {
				if err := c.service.Save(cmd.Context(), delta, out); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\nsaved %s\n", out)
			}
			return nil
		},
	}
	shape.register(cmd)
	cmd.Flags().BoolVar(&deltaParams, "delta-params", false, "Difference the parameter tables too")
	cmd.Flags().StringVar(&out, "out", "", "Save the difference to this workbook")

	return cmd
}
