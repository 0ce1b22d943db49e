package processors

import (
	"errors"
	"testing"
	"time"

	"github.com/cruciblehq/reciperunner/internal/registry"
	"github.com/cruciblehq/reciperunner/internal/stage"
	"github.com/cruciblehq/reciperunner/internal/table"
	"github.com/cruciblehq/reciperunner/internal/variables"
	"github.com/cruciblehq/reciperunner/internal/xerr"
)

func ordersTable() *table.Table {
	t := table.New([]string{"order_id", "customer_id", "amount"})
	t.Rows = [][]table.Value{
		{{Kind: table.KindInt, Int: 1}, {Kind: table.KindString, Str: "1001"}, {Kind: table.KindFloat, Flt: 10}},
		{{Kind: table.KindInt, Int: 2}, {Kind: table.KindString, Str: "1001.0"}, {Kind: table.KindFloat, Flt: 20}},
		{{Kind: table.KindInt, Int: 3}, {Kind: table.KindString, Str: "9999"}, {Kind: table.KindFloat, Flt: 30}},
	}
	return t
}

func customersTable() *table.Table {
	t := table.New([]string{"id", "name", "region"})
	t.Rows = [][]table.Value{
		{{Kind: table.KindInt, Int: 1001}, {Kind: table.KindString, Str: "Acme"}, {Kind: table.KindString, Str: "west"}},
		{{Kind: table.KindInt, Int: 2002}, {Kind: table.KindString, Str: "Globex"}, {Kind: table.KindString, Str: "east"}},
	}
	return t
}

func runLookup(t *testing.T, cfg map[string]any, main, lookup *table.Table) (*table.Table, error) {
	t.Helper()
	factory := NewLookupFactory()
	proc, err := factory.New(cfg)
	if err != nil {
		return nil, err
	}

	mgr := stage.New(0)
	if err := mgr.Save("main", main, stage.SaveOptions{}); err != nil {
		t.Fatalf("seed main: %v", err)
	}
	if err := mgr.Save("lookup", lookup, stage.SaveOptions{}); err != nil {
		t.Fatalf("seed lookup: %v", err)
	}

	scope := registry.Scope{Stages: mgr, Variables: variables.Builtins(time.Time{}, "", ""), Config: cfg}
	outcome := proc.Execute(scope)
	if outcome.Err != nil {
		return nil, outcome.Err
	}
	saveTo, _ := cfg["save_to_stage"].(string)
	return mgr.Load(saveTo)
}

func baseLookupConfig() map[string]any {
	return map[string]any{
		"source_stage":             "main",
		"lookup_stage":             "lookup",
		"match_col_in_main_data":   "customer_id",
		"match_col_in_lookup_data": "id",
		"lookup_columns":           []any{"name", "region"},
		"save_to_stage":            "out",
	}
}

func TestLookupKeyNormalizationMatchesTrailingZero(t *testing.T) {
	out, err := runLookup(t, baseLookupConfig(), ordersTable(), customersTable())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.NumRows() != 3 {
		t.Fatalf("NumRows = %d, want 3", out.NumRows())
	}
	nameIdx := out.ColumnIndex("name")
	for _, want := range []struct {
		row  int
		name string
	}{{0, "Acme"}, {1, "Acme"}} {
		got := out.Rows[want.row][nameIdx].Str
		if got != want.name {
			t.Errorf("row %d name = %q, want %q", want.row, got, want.name)
		}
	}
}

func TestLookupLeftJoinCompleteness(t *testing.T) {
	main := ordersTable()
	out, err := runLookup(t, baseLookupConfig(), main, customersTable())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.NumRows() != main.NumRows() {
		t.Fatalf("left join must preserve every source row: got %d, want %d", out.NumRows(), main.NumRows())
	}
	nameIdx := out.ColumnIndex("name")
	if !out.Rows[2][nameIdx].IsNull() {
		t.Fatal("unmatched row must carry a null pulled column, not be dropped")
	}
}

func TestLookupInnerJoinDropsUnmatched(t *testing.T) {
	cfg := baseLookupConfig()
	cfg["join_type"] = "inner"
	out, err := runLookup(t, cfg, ordersTable(), customersTable())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.NumRows() != 2 {
		t.Fatalf("NumRows = %d, want 2 matched rows", out.NumRows())
	}
}

func TestLookupOuterJoinAddsUnmatchedLookupRows(t *testing.T) {
	cfg := baseLookupConfig()
	cfg["join_type"] = "outer"
	out, err := runLookup(t, cfg, ordersTable(), customersTable())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	// 3 source rows + 1 unmatched lookup row (Globex, id 2002).
	if out.NumRows() != 4 {
		t.Fatalf("NumRows = %d, want 4", out.NumRows())
	}
	nameIdx := out.ColumnIndex("name")
	if out.Rows[3][nameIdx].Str != "Globex" {
		t.Fatalf("unmatched lookup row name = %q, want Globex", out.Rows[3][nameIdx].Str)
	}
	orderIDIdx := out.ColumnIndex("order_id")
	if !out.Rows[3][orderIDIdx].IsNull() {
		t.Fatal("unmatched lookup row must carry null source columns")
	}
}

func duplicateLookupTable() *table.Table {
	t := table.New([]string{"id", "name"})
	t.Rows = [][]table.Value{
		{{Kind: table.KindInt, Int: 1001}, {Kind: table.KindString, Str: "First"}},
		{{Kind: table.KindInt, Int: 1001}, {Kind: table.KindString, Str: "Last"}},
	}
	return t
}

func TestLookupHandleDuplicatesFirst(t *testing.T) {
	cfg := baseLookupConfig()
	cfg["lookup_columns"] = []any{"name"}
	cfg["handle_duplicates"] = "first"
	out, err := runLookup(t, cfg, ordersTable(), duplicateLookupTable())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	nameIdx := out.ColumnIndex("name")
	if out.Rows[0][nameIdx].Str != "First" {
		t.Fatalf("name = %q, want First", out.Rows[0][nameIdx].Str)
	}
}

func TestLookupHandleDuplicatesLast(t *testing.T) {
	cfg := baseLookupConfig()
	cfg["lookup_columns"] = []any{"name"}
	cfg["handle_duplicates"] = "last"
	out, err := runLookup(t, cfg, ordersTable(), duplicateLookupTable())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	nameIdx := out.ColumnIndex("name")
	if out.Rows[0][nameIdx].Str != "Last" {
		t.Fatalf("name = %q, want Last", out.Rows[0][nameIdx].Str)
	}
}

func TestLookupHandleDuplicatesError(t *testing.T) {
	cfg := baseLookupConfig()
	cfg["lookup_columns"] = []any{"name"}
	cfg["handle_duplicates"] = "error"
	_, err := runLookup(t, cfg, ordersTable(), duplicateLookupTable())
	if !errors.Is(err, xerr.ErrDuplicateKey) {
		t.Fatalf("err = %v, want ErrDuplicateKey", err)
	}
}

func TestLookupDefaultValueFillsUnmatchedNulls(t *testing.T) {
	cfg := baseLookupConfig()
	cfg["default_value"] = "unknown"
	out, err := runLookup(t, cfg, ordersTable(), customersTable())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	nameIdx := out.ColumnIndex("name")
	if out.Rows[2][nameIdx].Str != "unknown" {
		t.Fatalf("default fill = %q, want unknown", out.Rows[2][nameIdx].Str)
	}
}

func TestLookupPrefixSuffixRenamesPulledColumns(t *testing.T) {
	cfg := baseLookupConfig()
	cfg["prefix"] = "cust_"
	out, err := runLookup(t, cfg, ordersTable(), customersTable())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !out.HasColumn("cust_name") || !out.HasColumn("cust_region") {
		t.Fatalf("columns = %v, want cust_name and cust_region present", out.Columns)
	}
}

func TestLookupPulledColumnCollisionOverwritesExistingColumn(t *testing.T) {
	main := table.New([]string{"order_id", "customer_id", "region"})
	main.Rows = [][]table.Value{
		{{Kind: table.KindInt, Int: 1}, {Kind: table.KindString, Str: "1001"}, {Kind: table.KindString, Str: "placeholder"}},
	}

	cfg := baseLookupConfig()
	cfg["lookup_columns"] = []any{"region"}
	out, err := runLookup(t, cfg, main, customersTable())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.NumColumns() != 3 {
		t.Fatalf("NumColumns = %d, want 3 (pulled column must overwrite, not append)", out.NumColumns())
	}
	regionIdx := out.ColumnIndex("region")
	if out.Rows[0][regionIdx].Str != "west" {
		t.Fatalf("region = %q, want west (pulled column wins)", out.Rows[0][regionIdx].Str)
	}
}

func TestLookupMissingMatchColumnIsColumnNotFound(t *testing.T) {
	cfg := baseLookupConfig()
	cfg["match_col_in_main_data"] = "does_not_exist"
	_, err := runLookup(t, cfg, ordersTable(), customersTable())
	if !errors.Is(err, xerr.ErrColumnNotFound) {
		t.Fatalf("err = %v, want ErrColumnNotFound", err)
	}
}

func TestLookupConfigRejectsEmptyLookupColumns(t *testing.T) {
	cfg := baseLookupConfig()
	delete(cfg, "lookup_columns")
	_, err := NewLookupFactory().New(cfg)
	if !errors.Is(err, xerr.ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}

func TestLookupConfigRejectsUnknownJoinType(t *testing.T) {
	cfg := baseLookupConfig()
	cfg["join_type"] = "sideways"
	_, err := NewLookupFactory().New(cfg)
	if !errors.Is(err, xerr.ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}
