package variables

import (
	"testing"
	"time"
)

func TestSubstitute(t *testing.T) {
	scope := Builtins(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), "orders.csv", "recipe.yaml")
	scope, err := scope.WithRecipeVariables(map[string]string{"region": "west"})
	if err != nil {
		t.Fatalf("WithRecipeVariables: %v", err)
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"builtin year", "report_{YYYY}.xlsx", "report_2026.xlsx"},
		{"recipe var", "report_{region}.xlsx", "report_west.xlsx"},
		{"input stem", "{input_stem}_clean.csv", "orders_clean.csv"},
		{"literal braces outside placeholder", "note {not a var", "note {not a var"},
		{"no placeholders", "static.csv", "static.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Substitute(tt.template, scope, Strict)
			if err != nil {
				t.Fatalf("Substitute(%q) error = %v", tt.template, err)
			}
			if got != tt.want {
				t.Fatalf("Substitute(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestSubstituteExternalPrecedence(t *testing.T) {
	scope := Builtins(time.Now(), "", "")
	scope, err := scope.WithRecipeVariables(map[string]string{"region": "west"})
	if err != nil {
		t.Fatalf("WithRecipeVariables: %v", err)
	}
	scope = scope.WithExternalVariables(map[string]string{"region": "east"})

	got, err := Substitute("report_{region}.xlsx", scope, Strict)
	if err != nil {
		t.Fatalf("Substitute: %v", err)
	}
	if got != "report_east.xlsx" {
		t.Fatalf("got %q, want external to win over recipe", got)
	}
}

func TestSubstituteStrictUnknown(t *testing.T) {
	scope := Builtins(time.Now(), "", "")
	if _, err := Substitute("{missing}", scope, Strict); err == nil {
		t.Fatal("expected error for unknown variable in strict mode")
	}
}

func TestSubstituteLenientUnknown(t *testing.T) {
	scope := Builtins(time.Now(), "", "")
	got, err := Substitute("{missing}", scope, Lenient)
	if err != nil {
		t.Fatalf("Substitute: %v", err)
	}
	if got != "{missing}" {
		t.Fatalf("got %q, want pass-through", got)
	}
}

func TestValidate(t *testing.T) {
	scope := Builtins(time.Now(), "", "")
	unknown := Validate("{date}_{region}_{region}_{other}.csv", scope)
	if len(unknown) != 2 {
		t.Fatalf("Validate returned %v, want 2 unique unknowns", unknown)
	}
}

func TestRoundTrip(t *testing.T) {
	scope := Builtins(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "", "")
	scope = scope.WithExternalVariables(map[string]string{"region": "east"})

	template := "report_{region}_{YYYY}.xlsx"
	once, err := Substitute(template, scope, Strict)
	if err != nil {
		t.Fatalf("first substitute: %v", err)
	}
	twice, err := Substitute(once, scope, Lenient)
	if err != nil {
		t.Fatalf("second substitute: %v", err)
	}
	if once != twice {
		t.Fatalf("substitution not idempotent: %q != %q", once, twice)
	}
}
