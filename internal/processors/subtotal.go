package processors

import (
	"github.com/cruciblehq/reciperunner/internal/registry"
	"github.com/cruciblehq/reciperunner/internal/stage"
	"github.com/cruciblehq/reciperunner/internal/table"
	"github.com/cruciblehq/reciperunner/internal/xerr"
)

// subtotalFactory builds the add_subtotals processor: inserts a subtotal row
// after each run of consecutive rows sharing the same group_by values,
// summing sum_columns over the run.
//
// Grounded on
// original_source/excel_recipe_processor/processors/add_subtotals_processor.py.
// Rows are assumed already grouped contiguously (typically by a prior sort
// step), matching the Python original's behavior of operating on runs
// rather than re-sorting.
type subtotalFactory struct{}

// NewSubtotalFactory returns the add_subtotals processor factory.
func NewSubtotalFactory() registry.Factory { return subtotalFactory{} }

func (subtotalFactory) Role() registry.Role { return registry.Transform }

func (subtotalFactory) MinimalConfig() map[string]any {
	return map[string]any{
		"source_stage":  "main",
		"save_to_stage": "out",
		"group_by":      []any{"region"},
		"sum_columns":   []any{"amount"},
	}
}

func (subtotalFactory) Describe() registry.Describe {
	return registry.Describe{
		ProcessorType: "add_subtotals",
		Role:          registry.Transform,
		Summary:       "inserts a subtotal row after each contiguous group of matching rows",
		Options:       []string{"source_stage", "save_to_stage", "group_by", "sum_columns", "label_column", "label_suffix"},
	}
}

func (subtotalFactory) Examples() []map[string]any {
	return []map[string]any{
		{
			"processor_type": "add_subtotals",
			"source_stage":   "sales_by_region",
			"save_to_stage":  "sales_with_subtotals",
			"group_by":       []any{"region"},
			"sum_columns":    []any{"amount"},
		},
	}
}

func (subtotalFactory) New(config map[string]any) (registry.Processor, error) {
	source, err := requireString(config, "source_stage")
	if err != nil {
		return nil, err
	}
	saveTo, err := requireString(config, "save_to_stage")
	if err != nil {
		return nil, err
	}
	groupBy := stringList(config, "group_by")
	if len(groupBy) == 0 {
		return nil, xerr.Wrap(xerr.ErrConfig, "group_by must be a non-empty list")
	}
	sumColumns := stringList(config, "sum_columns")
	if len(sumColumns) == 0 {
		return nil, xerr.Wrap(xerr.ErrConfig, "sum_columns must be a non-empty list")
	}
	labelColumn := optionalString(config, "label_column", groupBy[0])
	labelSuffix := optionalString(config, "label_suffix", " Subtotal")

	return &subtotalProcessor{
		sourceStage: source,
		saveTo:      saveTo,
		groupBy:     groupBy,
		sumColumns:  sumColumns,
		labelColumn: labelColumn,
		labelSuffix: labelSuffix,
	}, nil
}

type subtotalProcessor struct {
	sourceStage string
	saveTo      string
	groupBy     []string
	sumColumns  []string
	labelColumn string
	labelSuffix string
}

func (p *subtotalProcessor) Execute(scope registry.Scope) registry.Outcome {
	src, err := scope.Stages.Load(p.sourceStage)
	if err != nil {
		return registry.Err(err)
	}

	groupIdx := make([]int, len(p.groupBy))
	for i, col := range p.groupBy {
		idx := src.ColumnIndex(col)
		if idx < 0 {
			return registry.Err(xerr.Wrapf(xerr.ErrColumnNotFound, "group_by column %q", col))
		}
		groupIdx[i] = idx
	}
	sumIdx := make([]int, len(p.sumColumns))
	for i, col := range p.sumColumns {
		idx := src.ColumnIndex(col)
		if idx < 0 {
			return registry.Err(xerr.Wrapf(xerr.ErrColumnNotFound, "sum_columns column %q", col))
		}
		sumIdx[i] = idx
	}
	labelIdx := src.ColumnIndex(p.labelColumn)
	if labelIdx < 0 {
		return registry.Err(xerr.Wrapf(xerr.ErrColumnNotFound, "label_column %q", p.labelColumn))
	}

	out := table.New(src.Columns)
	out.Rows = make([][]table.Value, 0, src.NumRows())

	var groupKey []table.Value
	sums := make([]float64, len(sumIdx))
	haveGroup := false

	flush := func() {
		if !haveGroup {
			return
		}
		out.Rows = append(out.Rows, subtotalRow(src.Columns, groupIdx, sumIdx, groupKey, sums, labelIdx, p.labelSuffix))
	}

	for _, row := range src.Rows {
		key := make([]table.Value, len(groupIdx))
		for i, idx := range groupIdx {
			key[i] = row[idx]
		}

		if haveGroup && !sameKey(groupKey, key) {
			flush()
			for i := range sums {
				sums[i] = 0
			}
		}
		groupKey = key
		haveGroup = true

		for i, idx := range sumIdx {
			sums[i] += sumValue(row[idx])
		}
		out.Rows = append(out.Rows, row)
	}
	flush()

	if err := scope.Stages.Save(p.saveTo, out, stage.SaveOptions{StepName: "add_subtotals"}); err != nil {
		return registry.Err(err)
	}
	return registry.OK
}

func sameKey(a, b []table.Value) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sumValue(v table.Value) float64 {
	switch v.Kind {
	case table.KindInt:
		return float64(v.Int)
	case table.KindFloat:
		return v.Flt
	default:
		return 0
	}
}

func subtotalRow(columns []string, groupIdx, sumIdx []int, groupKey []table.Value, sums []float64, labelIdx int, labelSuffix string) []table.Value {
	row := make([]table.Value, len(columns))
	for i, idx := range groupIdx {
		row[idx] = groupKey[i]
	}
	for i, idx := range sumIdx {
		row[idx] = table.Value{Kind: table.KindFloat, Flt: sums[i]}
	}
	row[labelIdx] = table.Value{Kind: table.KindString, Str: row[labelIdx].String() + labelSuffix}
	return row
}
