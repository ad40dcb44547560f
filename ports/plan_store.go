package ports

import (
	"context"

	"budgetplan/domain/plan"
)

// PlanStore persists plans to and from a workbook file
type PlanStore interface {
	// Save writes every report and input table of p to path
	Save(ctx context.Context, path string, p *plan.Plan) error

	// Load reads the input and parameter tables at path into p and
	// recomputes p's derived tables. p must already have the workbook's shape.
	Load(ctx context.Context, path string, p *plan.Plan) error
}
