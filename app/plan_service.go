package app

import (
	"context"
	"fmt"
	"time"

	"budgetplan/domain/grid"
	"budgetplan/domain/plan"
	"budgetplan/internal"
	"budgetplan/internal/errors"
	"budgetplan/internal/testkit"
	"budgetplan/ports"

	"golang.org/x/sync/errgroup"
)

// PlanService builds, persists and compares plans
type PlanService struct {
	store   ports.PlanStore
	rngPort ports.RNGPort
	logger  *internal.Logger
}

// NewPlanService creates a plan service
func NewPlanService(store ports.PlanStore, rngPort ports.RNGPort, logger *internal.Logger) *PlanService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &PlanService{
		store:   store,
		rngPort: rngPort,
		logger:  logger.Named("plan"),
	}
}

// BuildScenario creates a plan from sc.Plan and fills every input table from
// its own named random stream, so changing one generator leaves the others'
// tables unchanged for the same seed.
func (s *PlanService) BuildScenario(ctx context.Context, sc Scenario) (*plan.Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	startTime := time.Now()

	p, err := plan.New(sc.Plan)
	if err != nil {
		return nil, err
	}

	b := &scenarioBuilder{cfg: p.Config(), rng: s.rngPort, seed: sc.Seed}
	g := sc.Generators
	in := plan.Inputs{
		ProductTable:           b.quantities("product_quantities", "Prod_", p.Config().Products, g.Quantities),
		ProductPrices:          b.prices("product_prices", "Prod_", p.Config().Products, g.Prices),
		RawMaterialsQuantities: b.quantities("raw_material_quantities", "RM_", p.Config().RawMaterials, g.RawQuantities),
		RawMaterialsPrices:     b.prices("raw_material_prices", "RM_", p.Config().RawMaterials, g.RawPrices),
		VariableCosts:          b.cost(plan.RowVariableCosts, g.VariableCosts),
		HRCosts:                b.cost(plan.RowHRCosts, g.HRCosts),
		MaintenanceCosts:       b.cost(plan.RowMaintenanceCosts, g.Maintenance),
		OtherFixedCosts:        b.cost(plan.RowOtherFixedCosts, g.OtherFixed),
		Depreciations:          b.cost(plan.RowDepreciations, g.Depreciations),
		Investments:            b.cost(plan.RowInvestments, g.Investments),
	}
	if b.err != nil {
		return nil, errors.Wrap(b.err, "generate scenario inputs")
	}

	if err := p.SetInputs(in); err != nil {
		return nil, err
	}
	if err := p.Update(); err != nil {
		return nil, err
	}

	s.logger.Info("built plan %s (%d products, %d raw materials, seed %d) in %dms",
		p.ID, p.Config().Products, p.Config().RawMaterials, sc.Seed, time.Since(startTime).Milliseconds())
	return p, nil
}

// Save writes p to path
func (s *PlanService) Save(ctx context.Context, p *plan.Plan, path string) error {
	if err := s.store.Save(ctx, path, p); err != nil {
		s.logger.Error("save plan %s: %v", p.ID, err)
		return err
	}
	return nil
}

// Load creates a plan shaped by cfg and fills it from the workbook at path
func (s *PlanService) Load(ctx context.Context, cfg plan.Config, path string) (*plan.Plan, error) {
	p, err := plan.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := s.store.Load(ctx, path, p); err != nil {
		return nil, err
	}
	s.logger.Debug("loaded plan %s from %s", p.ID, path)
	return p, nil
}

// CompareWorkbooks loads both workbooks concurrently and returns a − b.
func (s *PlanService) CompareWorkbooks(ctx context.Context, cfg plan.Config, pathA, pathB string, deltaParams bool) (*plan.Plan, error) {
	var a, b *plan.Plan
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a, err = s.Load(gctx, cfg, pathA)
		return err
	})
	g.Go(func() error {
		var err error
		b, err = s.Load(gctx, cfg, pathB)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	delta, err := a.Compare(b, deltaParams)
	if err != nil {
		return nil, err
	}
	s.logger.Info("compared %s with %s (delta params: %t)", pathA, pathB, deltaParams)
	return delta, nil
}

// scenarioBuilder runs the generators for one plan and keeps the first error.
type scenarioBuilder struct {
	cfg  plan.Config
	rng  ports.RNGPort
	seed uint64
	err  error
}

func (b *scenarioBuilder) quantities(stream, prefix string, items int, r RangeSetting) *grid.Table {
	if b.err != nil {
		return nil
	}
	t, err := testkit.MultipleRandomConstant(testkit.MultiConstantConfig{
		StartYear:           b.cfg.StartYear,
		Years:               b.cfg.Years,
		Items:               items,
		Min:                 r.Min,
		Max:                 r.Max,
		Variation:           r.Variation,
		Prefix:              prefix,
		Decimals:            b.cfg.Decimals,
		TerminalValue:       b.cfg.TerminalValue,
		TerminalValueMethod: b.cfg.TerminalValueMethod,
	}, b.rng.Stream(stream, b.seed))
	b.err = wrapStream(err, stream)
	return t
}

func (b *scenarioBuilder) prices(stream, prefix string, items int, tr TrendSetting) *grid.Table {
	if b.err != nil {
		return nil
	}
	t, err := testkit.LinearTrend(testkit.TrendConfig{
		StartYear:           b.cfg.StartYear,
		Years:               b.cfg.Years,
		Items:               items,
		Baseline:            tr.Baseline,
		Increase:            tr.Increase,
		Variation:           tr.Variation,
		Prefix:              prefix,
		Decimals:            b.cfg.Decimals,
		TerminalValue:       b.cfg.TerminalValue,
		TerminalValueMethod: b.cfg.TerminalValueMethod,
	}, b.rng.Stream(stream, b.seed))
	b.err = wrapStream(err, stream)
	return t
}

// cost generates a single row and negates it.
func (b *scenarioBuilder) cost(label string, c ConstantSetting) *grid.Table {
	if b.err != nil {
		return nil
	}
	t, err := testkit.RandomConstant(testkit.ConstantConfig{
		StartYear:           b.cfg.StartYear,
		Years:               b.cfg.Years,
		Baseline:            c.Baseline,
		Variation:           c.Variation,
		Label:               label,
		Decimals:            b.cfg.Decimals,
		TerminalValue:       b.cfg.TerminalValue,
		TerminalValueMethod: b.cfg.TerminalValueMethod,
	}, b.rng.Stream(label, b.seed))
	if err != nil {
		b.err = wrapStream(err, label)
		return nil
	}
	return t.Scale(-1)
}

func wrapStream(err error, stream string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, fmt.Sprintf("generate %s", stream))
}
