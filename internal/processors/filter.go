package processors

import (
	"github.com/Knetic/govaluate"

	"github.com/cruciblehq/reciperunner/internal/registry"
	"github.com/cruciblehq/reciperunner/internal/stage"
	"github.com/cruciblehq/reciperunner/internal/table"
	"github.com/cruciblehq/reciperunner/internal/xerr"
)

// filterFactory builds the filter_rows processor: keeps only the rows of a
// source stage for which a boolean expression over the row's columns
// evaluates true, e.g. "Status == 'Active' && Amount > 100".
//
// Grounded on the etl-tool manifest's govaluate dependency — the Go rewrite
// of the same original tool this spec was distilled from uses govaluate for
// exactly this purpose.
type filterFactory struct{}

// NewFilterFactory returns the filter_rows processor factory.
func NewFilterFactory() registry.Factory { return filterFactory{} }

func (filterFactory) Role() registry.Role { return registry.Transform }

func (filterFactory) MinimalConfig() map[string]any {
	return map[string]any{
		"source_stage":  "main",
		"save_to_stage": "out",
		"expression":    "true",
	}
}

func (filterFactory) Describe() registry.Describe {
	return registry.Describe{
		ProcessorType: "filter_rows",
		Role:          registry.Transform,
		Summary:       "keeps only rows for which a boolean expression over the row's columns is true",
		Options:       []string{"source_stage", "save_to_stage", "expression"},
	}
}

func (filterFactory) Examples() []map[string]any {
	return []map[string]any{
		{
			"processor_type": "filter_rows",
			"source_stage":   "orders",
			"save_to_stage":  "active_orders",
			"expression":     "Status == 'Active' && Amount > 100",
		},
	}
}

func (filterFactory) New(config map[string]any) (registry.Processor, error) {
	source, err := requireString(config, "source_stage")
	if err != nil {
		return nil, err
	}
	saveTo, err := requireString(config, "save_to_stage")
	if err != nil {
		return nil, err
	}
	expr, err := requireString(config, "expression")
	if err != nil {
		return nil, err
	}

	compiled, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return nil, xerr.Wrapf(xerr.ErrConfig, "invalid expression %q: %v", expr, err)
	}

	return &filterProcessor{sourceStage: source, saveTo: saveTo, expr: compiled}, nil
}

type filterProcessor struct {
	sourceStage string
	saveTo      string
	expr        *govaluate.EvaluableExpression
}

func (p *filterProcessor) Execute(scope registry.Scope) registry.Outcome {
	src, err := scope.Stages.Load(p.sourceStage)
	if err != nil {
		return registry.Err(err)
	}

	out := table.New(src.Columns)
	out.Rows = make([][]table.Value, 0, src.NumRows())

	for _, row := range src.Rows {
		params := make(map[string]interface{}, len(src.Columns))
		for i, col := range src.Columns {
			params[col] = valueToParam(row[i])
		}

		result, err := p.expr.Evaluate(params)
		if err != nil {
			return registry.Err(xerr.Wrapf(xerr.ErrConfig, "evaluating filter expression: %v", err))
		}
		keep, ok := result.(bool)
		if !ok {
			return registry.Err(xerr.Wrap(xerr.ErrConfig, "filter expression must evaluate to a boolean"))
		}
		if keep {
			out.Rows = append(out.Rows, row)
		}
	}

	if err := scope.Stages.Save(p.saveTo, out, stage.SaveOptions{StepName: "filter_rows"}); err != nil {
		return registry.Err(err)
	}
	return registry.OK
}

// valueToParam converts a cell to the interface{} form govaluate expects.
// Both KindInt and KindFloat map to float64 so arithmetic comparisons work
// uniformly whichever type a column was inferred as.
func valueToParam(v table.Value) interface{} {
	switch v.Kind {
	case table.KindString:
		return v.Str
	case table.KindInt:
		return float64(v.Int)
	case table.KindFloat:
		return v.Flt
	case table.KindBool:
		return v.Bool
	case table.KindDate:
		return v.Time
	default:
		return nil
	}
}
