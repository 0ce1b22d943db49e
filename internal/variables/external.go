package variables

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/huh"

	"github.com/cruciblehq/reciperunner/internal/xerr"
)

// RequiredVar declares one entry of settings.required_external_vars (§3,
// §6.2): a variable the recipe needs from outside, with an optional default
// and an optional closed set of acceptable values.
type RequiredVar struct {
	Name        string
	Description string
	Default     string
	HasDefault  bool
	Choices     []string
}

// ResolveExternals merges CLI-supplied key=value overrides with the recipe's
// declared required_external_vars (§4.5 phase 2).
//
// For each declared variable not present in supplied: a default is used if
// declared; otherwise, when interactive is true, the variable is prompted
// for via a terminal form; otherwise resolution fails. A supplied or
// defaulted value is validated against Choices when declared.
func ResolveExternals(declared []RequiredVar, supplied map[string]string, interactive bool) (map[string]string, error) {
	resolved := make(map[string]string, len(declared)+len(supplied))
	for k, v := range supplied {
		resolved[k] = v
	}

	var missing []RequiredVar
	for _, rv := range declared {
		if _, ok := resolved[rv.Name]; ok {
			continue
		}
		if rv.HasDefault {
			resolved[rv.Name] = rv.Default
			continue
		}
		missing = append(missing, rv)
	}

	if len(missing) > 0 {
		if !interactive {
			names := make([]string, len(missing))
			for i, rv := range missing {
				names[i] = rv.Name
			}
			return nil, xerr.Wrapf(xerr.ErrRecipeValidation,
				"missing required variables with no default and no interactive prompt available: %v", names)
		}
		if err := promptMissing(missing, resolved); err != nil {
			return nil, err
		}
	}

	for _, rv := range declared {
		if len(rv.Choices) == 0 {
			continue
		}
		v := resolved[rv.Name]
		if !slices.Contains(rv.Choices, v) {
			return nil, xerr.Wrapf(xerr.ErrRecipeValidation,
				"variable %q = %q is not one of %v", rv.Name, v, rv.Choices)
		}
	}

	return resolved, nil
}

// promptMissing asks the user, one terminal form field per variable, for
// every variable in missing, writing answers into resolved.
func promptMissing(missing []RequiredVar, resolved map[string]string) error {
	answers := make([]string, len(missing))
	fields := make([]huh.Field, len(missing))

	for i, rv := range missing {
		label := rv.Name
		if rv.Description != "" {
			label = fmt.Sprintf("%s (%s)", rv.Name, rv.Description)
		}
		fields[i] = huh.NewInput().
			Title(label).
			Value(&answers[i])
	}

	form := huh.NewForm(huh.NewGroup(fields...))
	if err := form.Run(); err != nil {
		return xerr.Wrapf(xerr.ErrRecipeValidation, "prompting for external variables: %v", err)
	}

	for i, rv := range missing {
		resolved[rv.Name] = answers[i]
	}
	return nil
}
