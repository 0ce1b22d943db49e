package variables

import (
	"regexp"

	"github.com/cruciblehq/reciperunner/internal/xerr"
)

// Mode controls how Substitute treats a placeholder that resolves to no
// variable in the scope (§4.2).
type Mode int

const (
	// Strict raises xerr.ErrUnknownVariable on the first unresolved name.
	// Used during recipe pre-flight validation.
	Strict Mode = iota
	// Lenient passes an unresolved placeholder through unchanged. Used when
	// substituting user-facing paths at runtime, where an unresolved name is
	// expected to mean "not a variable, just braces."
	Lenient
)

// placeholderPattern matches `{name}` where name is a run of word
// characters, the same shape as the dockerizer recipe loader's
// `\$\{(\w+)\}` pattern in the retrieved pack, adapted from `${name}` to the
// bare `{name}` placeholders this engine uses (§4.2).
var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

// Substitute expands every `{name}` placeholder in template against scope.
func Substitute(template string, scope *Scope, mode Mode) (string, error) {
	var firstErr error

	result := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		if firstErr != nil {
			return match
		}
		name := placeholderPattern.FindStringSubmatch(match)[1]

		value, ok := scope.Lookup(name)
		if !ok {
			if mode == Strict {
				firstErr = xerr.Wrapf(xerr.ErrUnknownVariable, "%q", name)
				return match
			}
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Validate returns every placeholder name in template that does not resolve
// in scope, without raising an error — used by pre-flight to collect every
// issue before reporting (§4.5, §7).
func Validate(template string, scope *Scope) []string {
	var unknown []string
	seen := map[string]bool{}

	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		name := m[1]
		if seen[name] {
			continue
		}
		if _, ok := scope.Lookup(name); !ok {
			unknown = append(unknown, name)
			seen[name] = true
		}
	}
	return unknown
}
