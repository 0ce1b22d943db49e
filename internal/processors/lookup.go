package processors

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/cruciblehq/reciperunner/internal/registry"
	"github.com/cruciblehq/reciperunner/internal/stage"
	"github.com/cruciblehq/reciperunner/internal/table"
	"github.com/cruciblehq/reciperunner/internal/xerr"
)

type joinType string

const (
	joinLeft  joinType = "left"
	joinInner joinType = "inner"
	joinOuter joinType = "outer"
	joinRight joinType = "right"
)

type duplicatePolicy string

const (
	dupFirst duplicatePolicy = "first"
	dupLast  duplicatePolicy = "last"
	dupError duplicatePolicy = "error"
)

// lookupFactory builds the lookup_data processor (§4.6), the representative
// transform: enriches a source stage's rows with columns pulled from a
// lookup stage by matching a key column on each side.
type lookupFactory struct{}

// NewLookupFactory returns the lookup_data processor factory, for
// registration against an internal/registry.Registry.
func NewLookupFactory() registry.Factory { return lookupFactory{} }

func (lookupFactory) Role() registry.Role { return registry.Transform }

func (lookupFactory) MinimalConfig() map[string]any {
	return map[string]any{
		"source_stage":             "main",
		"lookup_stage":             "lookup",
		"match_col_in_main_data":   "id",
		"match_col_in_lookup_data": "id",
		"lookup_columns":           []any{"name"},
		"save_to_stage":            "out",
	}
}

func (lookupFactory) Describe() registry.Describe {
	return registry.Describe{
		ProcessorType: "lookup_data",
		Role:          registry.Transform,
		Summary:       "joins columns from a lookup stage onto a source stage by matching key",
		Options: []string{
			"source_stage", "lookup_stage", "match_col_in_main_data", "match_col_in_lookup_data",
			"lookup_columns", "save_to_stage", "join_type", "handle_duplicates",
			"case_sensitive", "normalize_keys", "prefix", "suffix", "default_value",
		},
	}
}

func (lookupFactory) Examples() []map[string]any {
	return []map[string]any{
		{
			"processor_type":           "lookup_data",
			"source_stage":             "orders",
			"lookup_stage":             "customers",
			"match_col_in_main_data":   "customer_id",
			"match_col_in_lookup_data": "id",
			"lookup_columns":           []any{"name", "region"},
			"save_to_stage":            "orders_enriched",
		},
	}
}

func (lookupFactory) New(config map[string]any) (registry.Processor, error) {
	cfg, err := parseLookupConfig(config)
	if err != nil {
		return nil, err
	}
	return &lookupProcessor{cfg: cfg}, nil
}

type lookupConfig struct {
	sourceStage   string
	lookupStage   string
	matchMain     string
	matchLookup   string
	lookupColumns []string
	saveTo        string
	join          joinType
	duplicates    duplicatePolicy
	caseSensitive bool
	normalizeKeys bool
	prefix        string
	suffix        string
	defaultScalar *string
	defaultPerCol map[string]string
}

func parseLookupConfig(config map[string]any) (lookupConfig, error) {
	var cfg lookupConfig
	var err error

	if cfg.sourceStage, err = requireString(config, "source_stage"); err != nil {
		return cfg, err
	}
	if cfg.lookupStage, err = requireString(config, "lookup_stage"); err != nil {
		return cfg, err
	}
	if cfg.matchMain, err = requireString(config, "match_col_in_main_data"); err != nil {
		return cfg, err
	}
	if cfg.matchLookup, err = requireString(config, "match_col_in_lookup_data"); err != nil {
		return cfg, err
	}
	if cfg.saveTo, err = requireString(config, "save_to_stage"); err != nil {
		return cfg, err
	}

	cfg.lookupColumns = stringList(config, "lookup_columns")
	if len(cfg.lookupColumns) == 0 {
		return cfg, xerr.Wrap(xerr.ErrConfig, "lookup_columns must be a non-empty list")
	}

	cfg.join = joinType(optionalString(config, "join_type", string(joinLeft)))
	switch cfg.join {
	case joinLeft, joinInner, joinOuter, joinRight:
	default:
		return cfg, xerr.Wrapf(xerr.ErrConfig, "join_type %q is not one of left/inner/outer/right", cfg.join)
	}

	cfg.duplicates = duplicatePolicy(optionalString(config, "handle_duplicates", string(dupFirst)))
	switch cfg.duplicates {
	case dupFirst, dupLast, dupError:
	default:
		return cfg, xerr.Wrapf(xerr.ErrConfig, "handle_duplicates %q is not one of first/last/error", cfg.duplicates)
	}

	cfg.caseSensitive = optionalBool(config, "case_sensitive", false)
	cfg.normalizeKeys = optionalBool(config, "normalize_keys", true)
	cfg.prefix = optionalString(config, "prefix", "")
	cfg.suffix = optionalString(config, "suffix", "")

	if raw, ok := config["default_value"]; ok {
		switch v := raw.(type) {
		case string:
			cfg.defaultScalar = &v
		case map[string]any:
			cfg.defaultPerCol = stringMap(config, "default_value")
		default:
			return cfg, xerr.Wrap(xerr.ErrConfig, "default_value must be a string or a map of column name to string")
		}
	}

	return cfg, nil
}

// lookupProcessor implements §4.6. Join semantics follow plain relational
// join terms with source_stage playing the left table and lookup_stage the
// right table: left keeps every source row, inner keeps only matched rows,
// right keeps every lookup row, outer keeps the union. handle_duplicates
// (first/last/error) is applied uniformly to whichever side would otherwise
// multiply output rows for the join type in play — the lookup side for
// left/inner/outer, the source side for right, since right mirrors left
// with the two tables' roles swapped. No join type produces a cartesian
// product: every output row pairs with at most one row from the
// deduplicated side.
type lookupProcessor struct {
	cfg lookupConfig
}

func (p *lookupProcessor) key(v table.Value) (string, bool) {
	if p.cfg.normalizeKeys {
		return normalizeKey(v, p.cfg.caseSensitive)
	}
	return rawKey(v, p.cfg.caseSensitive)
}

// index groups t's row indices by normalized key on column col, preserving
// row order within each group.
func (p *lookupProcessor) index(t *table.Table, col string) (map[string][]int, error) {
	idx := t.ColumnIndex(col)
	if idx < 0 {
		return nil, xerr.Wrapf(xerr.ErrColumnNotFound, "%q", col)
	}
	out := make(map[string][]int)
	for r, row := range t.Rows {
		k, ok := p.key(row[idx])
		if !ok {
			continue
		}
		out[k] = append(out[k], r)
	}
	return out, nil
}

// resolve applies handle_duplicates to groups, picking a single row index
// per key. The error policy reports every offending key, sorted, in one
// failure (§7's "list all detected issues where feasible").
func (p *lookupProcessor) resolve(groups map[string][]int) (map[string]int, error) {
	out := make(map[string]int, len(groups))
	var dupes []string
	for k, rows := range groups {
		switch {
		case len(rows) == 1:
			out[k] = rows[0]
		case p.cfg.duplicates == dupFirst:
			out[k] = rows[0]
		case p.cfg.duplicates == dupLast:
			out[k] = rows[len(rows)-1]
		default:
			dupes = append(dupes, k)
		}
	}
	if len(dupes) > 0 {
		sort.Strings(dupes)
		return nil, xerr.Wrapf(xerr.ErrDuplicateKey, "duplicate keys with handle_duplicates=error: %s", strings.Join(dupes, ", "))
	}
	return out, nil
}

func (p *lookupProcessor) Execute(scope registry.Scope) registry.Outcome {
	main, err := scope.Stages.Load(p.cfg.sourceStage)
	if err != nil {
		return registry.Err(err)
	}
	lookup, err := scope.Stages.Load(p.cfg.lookupStage)
	if err != nil {
		return registry.Err(err)
	}

	if !main.HasColumn(p.cfg.matchMain) {
		return registry.Err(xerr.Wrapf(xerr.ErrColumnNotFound, "match_col_in_main_data %q not found in stage %q", p.cfg.matchMain, p.cfg.sourceStage))
	}
	if !lookup.HasColumn(p.cfg.matchLookup) {
		return registry.Err(xerr.Wrapf(xerr.ErrColumnNotFound, "match_col_in_lookup_data %q not found in stage %q", p.cfg.matchLookup, p.cfg.lookupStage))
	}

	pulledIdx := make([]int, len(p.cfg.lookupColumns))
	for i, col := range p.cfg.lookupColumns {
		idx := lookup.ColumnIndex(col)
		if idx < 0 {
			return registry.Err(xerr.Wrapf(xerr.ErrColumnNotFound, "lookup column %q not found in stage %q", col, p.cfg.lookupStage))
		}
		pulledIdx[i] = idx
	}

	pulledNames := make([]string, len(p.cfg.lookupColumns))
	for i, col := range p.cfg.lookupColumns {
		pulledNames[i] = p.cfg.prefix + col + p.cfg.suffix
	}

	var out *table.Table
	var pulledSrc []int
	switch p.cfg.join {
	case joinInner:
		out, pulledSrc, _, err = p.buildLeftOrInner(main, lookup, true)
	case joinRight:
		out, pulledSrc, err = p.buildRight(main, lookup)
	case joinOuter:
		out, pulledSrc, err = p.buildOuter(main, lookup)
	default:
		out, pulledSrc, _, err = p.buildLeftOrInner(main, lookup, false)
	}
	if err != nil {
		return registry.Err(err)
	}

	attachPulledColumns(out, pulledSrc, lookup, pulledIdx, pulledNames)
	applyLookupDefaults(out, pulledNames, p.cfg)

	if err := scope.Stages.Save(p.cfg.saveTo, out, stage.SaveOptions{StepName: "lookup_data"}); err != nil {
		return registry.Err(err)
	}
	return registry.OK
}

// buildLeftOrInner walks main in order, keeping every main row (left) or
// only matched ones (inner). It returns an unpulled table of main's own
// columns plus, per output row, the lookup row index to pull columns from
// later (-1 if unmatched), and the set of lookup keys it matched against —
// used by buildOuter to find the lookup rows nothing ever matched.
func (p *lookupProcessor) buildLeftOrInner(main, lookup *table.Table, innerOnly bool) (*table.Table, []int, map[string]bool, error) {
	groups, err := p.index(lookup, p.cfg.matchLookup)
	if err != nil {
		return nil, nil, nil, err
	}
	resolved, err := p.resolve(groups)
	if err != nil {
		return nil, nil, nil, err
	}

	matchMainIdx := main.ColumnIndex(p.cfg.matchMain)
	used := make(map[string]bool)
	rows := make([][]table.Value, 0, main.NumRows())
	pulledSrc := make([]int, 0, main.NumRows())

	for _, mrow := range main.Rows {
		k, ok := p.key(mrow[matchMainIdx])
		lrowIdx := -1
		if ok {
			if idx, found := resolved[k]; found {
				lrowIdx = idx
				used[k] = true
			}
		}
		if lrowIdx < 0 && innerOnly {
			continue
		}

		row := make([]table.Value, len(main.Columns))
		copy(row, mrow)
		rows = append(rows, row)
		pulledSrc = append(pulledSrc, lrowIdx)
	}

	return &table.Table{Columns: append([]string(nil), main.Columns...), Rows: rows}, pulledSrc, used, nil
}

// buildRight mirrors buildLeftOrInner with the tables' roles swapped: every
// lookup row produces exactly one output row, so its pulled-source index is
// simply its own position; the main-side columns are copied from a matched
// main row, or left null where none matches.
func (p *lookupProcessor) buildRight(main, lookup *table.Table) (*table.Table, []int, error) {
	groups, err := p.index(main, p.cfg.matchMain)
	if err != nil {
		return nil, nil, err
	}
	resolved, err := p.resolve(groups)
	if err != nil {
		return nil, nil, err
	}

	matchLookupIdx := lookup.ColumnIndex(p.cfg.matchLookup)
	rows := make([][]table.Value, 0, lookup.NumRows())
	pulledSrc := make([]int, 0, lookup.NumRows())

	for lrowIdx, lrow := range lookup.Rows {
		k, ok := p.key(lrow[matchLookupIdx])
		row := make([]table.Value, len(main.Columns))
		if ok {
			if midx, found := resolved[k]; found {
				copy(row, main.Rows[midx])
			}
		}
		rows = append(rows, row)
		pulledSrc = append(pulledSrc, lrowIdx)
	}

	return &table.Table{Columns: append([]string(nil), main.Columns...), Rows: rows}, pulledSrc, nil
}

// buildOuter is the union of the left-join result and any lookup rows whose
// key no main row ever matched, appended after the left rows in their
// original lookup order (§9's suggested deterministic ordering rule for the
// join types spec.md leaves underspecified). The appended rows' main-side
// columns are left null; their pulled-source index is their own lookup row.
func (p *lookupProcessor) buildOuter(main, lookup *table.Table) (*table.Table, []int, error) {
	left, pulledSrc, used, err := p.buildLeftOrInner(main, lookup, false)
	if err != nil {
		return nil, nil, err
	}

	groups, err := p.index(lookup, p.cfg.matchLookup)
	if err != nil {
		return nil, nil, err
	}
	resolved, err := p.resolve(groups)
	if err != nil {
		return nil, nil, err
	}

	var unused []string
	for k := range resolved {
		if !used[k] {
			unused = append(unused, k)
		}
	}
	sort.Slice(unused, func(i, j int) bool { return resolved[unused[i]] < resolved[unused[j]] })

	for _, k := range unused {
		lrowIdx := resolved[k]
		left.Rows = append(left.Rows, make([]table.Value, len(main.Columns)))
		pulledSrc = append(pulledSrc, lrowIdx)
	}

	return left, pulledSrc, nil
}

// attachPulledColumns adds each pulled (prefix+name+suffix) lookup column to
// out, one output row per entry of pulledSrc (the lookup row to pull from,
// or -1 to leave the cell null). Delegates to table.ReplaceColumn, which
// appends a genuinely new column or overwrites an existing one in place —
// exactly "pulled column wins" (§4.6) when a pulled name collides with one
// of out's own columns, logged here since ReplaceColumn itself has no way
// to tell a fresh append from a collision.
func attachPulledColumns(out *table.Table, pulledSrc []int, lookup *table.Table, pulledIdx []int, pulledNames []string) {
	for i, name := range pulledNames {
		if out.HasColumn(name) {
			slog.Warn("lookup pulled column collides with an existing column; pulled column wins", "column", name)
		}
		values := make([]table.Value, len(pulledSrc))
		for r, srcIdx := range pulledSrc {
			if srcIdx >= 0 {
				values[r] = lookup.Rows[srcIdx][pulledIdx[i]]
			}
		}
		out.ReplaceColumn(name, values)
	}
}

// applyLookupDefaults fills null cells in pulled columns with default_value,
// keyed by the pulled (post prefix/suffix) column name for a per-column map,
// falling back to the scalar form. Applies to every null in a pulled
// column, whether the null came from an unmatched row or from a genuinely
// null lookup cell — the join has no way to distinguish the two once the
// table is built, and filling both is the more useful behavior.
func applyLookupDefaults(t *table.Table, pulledNames []string, cfg lookupConfig) {
	if cfg.defaultScalar == nil && len(cfg.defaultPerCol) == 0 {
		return
	}
	for _, name := range pulledNames {
		def, ok := cfg.defaultPerCol[name]
		if !ok {
			if cfg.defaultScalar == nil {
				continue
			}
			def = *cfg.defaultScalar
		}
		pos := t.ColumnIndex(name)
		if pos < 0 {
			continue
		}
		fill := table.FromString(def)
		for r := range t.Rows {
			if t.Rows[r][pos].IsNull() {
				t.Rows[r][pos] = fill
			}
		}
	}
}
