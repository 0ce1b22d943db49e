package processors

import (
	"errors"
	"testing"

	"github.com/cruciblehq/reciperunner/internal/xerr"
)

func TestSheetPairListPreservesDeclaredOrder(t *testing.T) {
	config := map[string]any{
		"sheets": []any{
			map[string]any{"sheet": "Detail", "stage": "detail_stage"},
			map[string]any{"sheet": "Summary", "stage": "summary_stage"},
			map[string]any{"sheet": "Appendix", "stage": "appendix_stage"},
		},
	}

	pairs, err := sheetPairList(config, "sheets")
	if err != nil {
		t.Fatalf("sheetPairList: %v", err)
	}
	want := []sheetPair{
		{sheet: "Detail", stage: "detail_stage"},
		{sheet: "Summary", stage: "summary_stage"},
		{sheet: "Appendix", stage: "appendix_stage"},
	}
	if len(pairs) != len(want) {
		t.Fatalf("len(pairs) = %d, want %d", len(pairs), len(want))
	}
	for i, p := range pairs {
		if p != want[i] {
			t.Errorf("pairs[%d] = %+v, want %+v", i, p, want[i])
		}
	}
}

func TestSheetPairListRejectsMapShape(t *testing.T) {
	config := map[string]any{
		"sheets": map[string]any{"Summary": "summary_stage"},
	}
	if _, err := sheetPairList(config, "sheets"); !errors.Is(err, xerr.ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig for a map instead of a list", err)
	}
}

func TestSheetPairListRejectsEmptyList(t *testing.T) {
	config := map[string]any{"sheets": []any{}}
	if _, err := sheetPairList(config, "sheets"); !errors.Is(err, xerr.ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig for an empty list", err)
	}
}

func TestSheetPairListRejectsMissingFields(t *testing.T) {
	config := map[string]any{
		"sheets": []any{map[string]any{"sheet": "Summary"}},
	}
	if _, err := sheetPairList(config, "sheets"); !errors.Is(err, xerr.ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig for an entry missing stage", err)
	}
}

func TestExportWorkbookFactoryRejectsMissingSheets(t *testing.T) {
	_, err := NewExportWorkbookFactory().New(map[string]any{"path": "report.xlsx"})
	if !errors.Is(err, xerr.ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}
