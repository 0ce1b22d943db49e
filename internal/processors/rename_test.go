package processors

import (
	"testing"
	"time"

	"github.com/cruciblehq/reciperunner/internal/registry"
	"github.com/cruciblehq/reciperunner/internal/stage"
	"github.com/cruciblehq/reciperunner/internal/table"
	"github.com/cruciblehq/reciperunner/internal/variables"
)

func ordersWithCustID() *table.Table {
	t := table.New([]string{"cust_id", "amount"})
	t.Rows = [][]table.Value{
		{{Kind: table.KindInt, Int: 1}, {Kind: table.KindFloat, Flt: 10}},
	}
	return t
}

func TestRenameColumnsRenamesInPlace(t *testing.T) {
	cfg := map[string]any{
		"source_stage":  "main",
		"save_to_stage": "out",
		"columns":       map[string]any{"cust_id": "customer_id"},
	}
	proc, err := NewRenameFactory().New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	mgr := stage.New(0)
	mgr.Save("main", ordersWithCustID(), stage.SaveOptions{})

	outcome := proc.Execute(registry.Scope{Stages: mgr, Variables: variables.Builtins(time.Time{}, "", ""), Config: cfg})
	if outcome.Err != nil {
		t.Fatalf("Execute: %v", outcome.Err)
	}

	out, _ := mgr.Load("out")
	if !out.HasColumn("customer_id") || out.HasColumn("cust_id") {
		t.Fatalf("columns = %v, want customer_id only", out.Columns)
	}
}

func TestRenameColumnsReordersWhenRequested(t *testing.T) {
	cfg := map[string]any{
		"source_stage":  "main",
		"save_to_stage": "out",
		"columns":       map[string]any{"cust_id": "customer_id"},
		"column_order":  []any{"amount", "customer_id"},
	}
	proc, err := NewRenameFactory().New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	mgr := stage.New(0)
	mgr.Save("main", ordersWithCustID(), stage.SaveOptions{})

	outcome := proc.Execute(registry.Scope{Stages: mgr, Variables: variables.Builtins(time.Time{}, "", ""), Config: cfg})
	if outcome.Err != nil {
		t.Fatalf("Execute: %v", outcome.Err)
	}

	out, _ := mgr.Load("out")
	if out.Columns[0] != "amount" || out.Columns[1] != "customer_id" {
		t.Fatalf("Columns = %v, want [amount customer_id]", out.Columns)
	}
}

func TestRenameColumnsMissingColumnFails(t *testing.T) {
	cfg := map[string]any{
		"source_stage":  "main",
		"save_to_stage": "out",
		"columns":       map[string]any{"does_not_exist": "x"},
	}
	proc, err := NewRenameFactory().New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	mgr := stage.New(0)
	mgr.Save("main", ordersWithCustID(), stage.SaveOptions{})

	outcome := proc.Execute(registry.Scope{Stages: mgr, Variables: variables.Builtins(time.Time{}, "", ""), Config: cfg})
	if outcome.Err == nil {
		t.Fatal("expected ErrColumnNotFound")
	}
}
