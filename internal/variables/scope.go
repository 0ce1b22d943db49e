// Package variables implements the layered variable scope and `{name}`
// placeholder substitution engine of §4.2.
//
// Three layers are merged, highest precedence last: built-ins (derived from
// wall-clock and run arguments, computed once per run — mirroring how
// cruciblehq-cruxd's internal/variables.go derives a stable Version/Stage/
// GitCommit triple from build-time linker flags), recipe variables
// (settings.variables, which may reference built-ins), and external
// variables (CLI overrides and interactive-prompt answers, always literal).
package variables

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// undefinedPlaceholder mirrors the teacher's "(undefined)" convention for a
// value that could not be resolved. Nothing in this package references it.
const undefinedPlaceholder = "(undefined)"

// Scope is a layered variable namespace, immutable once built (§5 — "the
// variables scope is immutable after pre-flight").
type Scope struct {
	values map[string]string
}

// Builtins returns the always-available scope derived from wall-clock time
// (pinned at buildAt, stable across the whole run per §4.2 and the
// determinism property in §8) and the run's input/recipe paths.
func Builtins(buildAt time.Time, inputPath, recipePath string) *Scope {
	v := map[string]string{
		"date": buildAt.Format("2006-01-02"),
		"YYYY": buildAt.Format("2006"),
		"YY":   buildAt.Format("06"),
		"MM":   buildAt.Format("01"),
		"DD":   buildAt.Format("02"),
		"HH":   buildAt.Format("15"),
		"mm":   buildAt.Format("04"),
		"ss":   buildAt.Format("05"),
	}

	if inputPath != "" {
		base := filepath.Base(inputPath)
		v["input_basename"] = base
		v["input_stem"] = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if recipePath != "" {
		base := filepath.Base(recipePath)
		v["recipe_basename"] = base
		v["recipe_stem"] = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return &Scope{values: v}
}

// WithRecipeVariables returns a new Scope layering recipe-declared variables
// on top of the receiver. Each recipe variable value is first substituted
// against the receiver (built-ins), allowing composition (§4.2).
func (s *Scope) WithRecipeVariables(vars map[string]string) (*Scope, error) {
	merged := s.clone()
	for _, name := range sortedKeys(vars) {
		expanded, err := Substitute(vars[name], s, Strict)
		if err != nil {
			return nil, err
		}
		merged.values[name] = expanded
	}
	return merged, nil
}

// WithExternalVariables returns a new Scope layering external (CLI/prompt)
// variables on top of the receiver. External values are literal — they are
// never substituted (§4.2).
func (s *Scope) WithExternalVariables(vars map[string]string) *Scope {
	merged := s.clone()
	for name, value := range vars {
		merged.values[name] = value
	}
	return merged
}

// Lookup returns the value bound to name and whether it is defined.
func (s *Scope) Lookup(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s.values[name]
	return v, ok
}

// Names returns every variable name currently bound, for diagnostics.
func (s *Scope) Names() []string {
	return sortedKeys(s.values)
}

func (s *Scope) clone() *Scope {
	if s == nil {
		return &Scope{values: map[string]string{}}
	}
	v := make(map[string]string, len(s.values))
	for k, val := range s.values {
		v[k] = val
	}
	return &Scope{values: v}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Deterministic order matters for the "recipe variables may reference
	// built-ins" composability rule; simple insertion order via sort keeps
	// substitution deterministic run-to-run (§8).
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// describe renders a human-readable dump of the scope, one name=value line
// per variable in name order. It currently has no caller.
func (s *Scope) describe() string {
	var b strings.Builder
	for _, k := range s.Names() {
		fmt.Fprintf(&b, "%s=%s\n", k, s.values[k])
	}
	return b.String()
}
