package processors

import (
	"testing"
	"time"

	"github.com/cruciblehq/reciperunner/internal/registry"
	"github.com/cruciblehq/reciperunner/internal/stage"
	"github.com/cruciblehq/reciperunner/internal/table"
	"github.com/cruciblehq/reciperunner/internal/variables"
)

func salesTable() *table.Table {
	t := table.New([]string{"status", "amount"})
	t.Rows = [][]table.Value{
		{{Kind: table.KindString, Str: "Active"}, {Kind: table.KindFloat, Flt: 150}},
		{{Kind: table.KindString, Str: "Active"}, {Kind: table.KindFloat, Flt: 50}},
		{{Kind: table.KindString, Str: "Closed"}, {Kind: table.KindFloat, Flt: 500}},
	}
	return t
}

func TestFilterRowsKeepsMatchingRows(t *testing.T) {
	cfg := map[string]any{
		"source_stage":  "main",
		"save_to_stage": "out",
		"expression":    "status == 'Active' && amount > 100",
	}
	proc, err := NewFilterFactory().New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	mgr := stage.New(0)
	if err := mgr.Save("main", salesTable(), stage.SaveOptions{}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	outcome := proc.Execute(registry.Scope{
		Stages:    mgr,
		Variables: variables.Builtins(time.Time{}, "", ""),
		Config:    cfg,
	})
	if outcome.Err != nil {
		t.Fatalf("Execute: %v", outcome.Err)
	}

	out, err := mgr.Load("out")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.NumRows() != 1 {
		t.Fatalf("NumRows = %d, want 1", out.NumRows())
	}
}

func TestFilterRejectsInvalidExpression(t *testing.T) {
	cfg := map[string]any{
		"source_stage":  "main",
		"save_to_stage": "out",
		"expression":    "status ===",
	}
	if _, err := NewFilterFactory().New(cfg); err == nil {
		t.Fatal("expected a config error for an invalid expression")
	}
}
