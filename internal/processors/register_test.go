package processors

import (
	"testing"

	"github.com/cruciblehq/reciperunner/internal/registry"
)

func TestRegisterAddsEveryBuiltinProcessor(t *testing.T) {
	reg := registry.New()
	if err := Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}

	want := []string{
		"lookup_data", "filter_rows", "rename_columns", "add_subtotals",
		"import_file", "export_file", "export_workbook", "archive_files",
	}
	for _, name := range want {
		if _, err := reg.Lookup(name); err != nil {
			t.Errorf("Lookup(%q): %v", name, err)
		}
	}
}

func TestRegisterRejectsDuplicateRegistration(t *testing.T) {
	reg := registry.New()
	if err := Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := Register(reg); err == nil {
		t.Fatal("expected an error registering the same processor types twice")
	}
}
