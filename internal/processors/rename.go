package processors

import (
	"github.com/cruciblehq/reciperunner/internal/registry"
	"github.com/cruciblehq/reciperunner/internal/stage"
	"github.com/cruciblehq/reciperunner/internal/table"
	"github.com/cruciblehq/reciperunner/internal/xerr"
)

// renameFactory builds the rename_columns processor: renames columns in
// place and optionally reorders the output.
type renameFactory struct{}

// NewRenameFactory returns the rename_columns processor factory.
func NewRenameFactory() registry.Factory { return renameFactory{} }

func (renameFactory) Role() registry.Role { return registry.Transform }

func (renameFactory) MinimalConfig() map[string]any {
	return map[string]any{
		"source_stage":  "main",
		"save_to_stage": "out",
		"columns":       map[string]any{"old_name": "new_name"},
	}
}

func (renameFactory) Describe() registry.Describe {
	return registry.Describe{
		ProcessorType: "rename_columns",
		Role:          registry.Transform,
		Summary:       "renames columns and optionally reorders them",
		Options:       []string{"source_stage", "save_to_stage", "columns", "column_order"},
	}
}

func (renameFactory) Examples() []map[string]any {
	return []map[string]any{
		{
			"processor_type": "rename_columns",
			"source_stage":   "orders",
			"save_to_stage":  "orders_renamed",
			"columns":        map[string]any{"cust_id": "customer_id"},
		},
	}
}

func (renameFactory) New(config map[string]any) (registry.Processor, error) {
	source, err := requireString(config, "source_stage")
	if err != nil {
		return nil, err
	}
	saveTo, err := requireString(config, "save_to_stage")
	if err != nil {
		return nil, err
	}
	columns := stringMap(config, "columns")
	if len(columns) == 0 {
		return nil, xerr.Wrap(xerr.ErrConfig, "columns must be a non-empty map of old name to new name")
	}
	order := stringList(config, "column_order")

	return &renameProcessor{sourceStage: source, saveTo: saveTo, rename: columns, order: order}, nil
}

type renameProcessor struct {
	sourceStage string
	saveTo      string
	rename      map[string]string
	order       []string
}

func (p *renameProcessor) Execute(scope registry.Scope) registry.Outcome {
	src, err := scope.Stages.Load(p.sourceStage)
	if err != nil {
		return registry.Err(err)
	}

	for old := range p.rename {
		if !src.HasColumn(old) {
			return registry.Err(xerr.Wrapf(xerr.ErrColumnNotFound, "%q in stage %q", old, p.sourceStage))
		}
	}

	renamed := make([]string, len(src.Columns))
	for i, col := range src.Columns {
		if newName, ok := p.rename[col]; ok {
			renamed[i] = newName
		} else {
			renamed[i] = col
		}
	}

	out := &table.Table{Columns: renamed, Rows: src.Rows}

	if len(p.order) > 0 {
		reordered, err := reorderColumns(out, p.order)
		if err != nil {
			return registry.Err(err)
		}
		out = reordered
	}

	if err := scope.Stages.Save(p.saveTo, out, stage.SaveOptions{StepName: "rename_columns"}); err != nil {
		return registry.Err(err)
	}
	return registry.OK
}

// reorderColumns returns a new table whose columns follow order exactly;
// every name in order must already exist on t.
func reorderColumns(t *table.Table, order []string) (*table.Table, error) {
	positions := make([]int, len(order))
	for i, name := range order {
		idx := t.ColumnIndex(name)
		if idx < 0 {
			return nil, xerr.Wrapf(xerr.ErrColumnNotFound, "column_order: %q", name)
		}
		positions[i] = idx
	}

	out := table.New(order)
	out.Rows = make([][]table.Value, len(t.Rows))
	for r, row := range t.Rows {
		newRow := make([]table.Value, len(order))
		for i, pos := range positions {
			newRow[i] = row[pos]
		}
		out.Rows[r] = newRow
	}
	return out, nil
}
