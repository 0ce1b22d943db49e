package pipeline

import (
	"fmt"
	"strings"

	"github.com/cruciblehq/reciperunner/internal/recipe"
	"github.com/cruciblehq/reciperunner/internal/registry"
	"github.com/cruciblehq/reciperunner/internal/variables"
	"github.com/cruciblehq/reciperunner/internal/xerr"
)

// reservedStageNames mirrors internal/stage's reserved set.
var reservedStageNames = map[string]bool{
	"input":   true,
	"output":  true,
	"current": true,
	"data":    true,
}

// preflight performs §4.5 phase 3: for every step, confirm processor_type is
// registered, build the processor instance (which validates its own config
// shape), collect every `{name}` placeholder reachable from the step's
// string-valued config and confirm it resolves, and confirm declared stages
// don't collide with reserved names. Every issue found across every step is
// collected before returning, per §7's "listing all detected issues where
// feasible."
func preflight(reg *registry.Registry, r *recipe.Recipe, scope *variables.Scope) ([]registry.Processor, error) {
	var issues []string
	instances := make([]registry.Processor, len(r.Steps))

	for _, decl := range r.Settings.Stages {
		if reservedStageNames[decl.StageName] {
			issues = append(issues, fmt.Sprintf("settings.stages: %q is a reserved stage name", decl.StageName))
		}
	}

	for i, step := range r.Steps {
		factory, err := reg.Lookup(step.ProcessorType)
		if err != nil {
			issues = append(issues, fmt.Sprintf("step %d (%s): %v", i+1, step.ProcessorType, err))
			continue
		}

		instance, err := factory.New(step.Config)
		if err != nil {
			issues = append(issues, fmt.Sprintf("step %d (%s): %v", i+1, step.ProcessorType, err))
			continue
		}
		instances[i] = instance

		for _, name := range stringConfigKeys(step.Config) {
			for _, unknown := range variables.Validate(name.value, scope) {
				issues = append(issues, fmt.Sprintf("step %d (%s): config %q references unknown variable %q",
					i+1, step.ProcessorType, name.key, unknown))
			}
		}
	}

	if len(issues) > 0 {
		return nil, xerr.Wrap(xerr.ErrRecipeValidation, strings.Join(issues, "; "))
	}
	return instances, nil
}

type keyedString struct {
	key   string
	value string
}

// stringConfigKeys returns every string-valued entry of a step's config map,
// the surface that may carry `{name}` placeholders (§4.5 phase 3).
func stringConfigKeys(config map[string]any) []keyedString {
	var out []keyedString
	for k, v := range config {
		switch val := v.(type) {
		case string:
			out = append(out, keyedString{key: k, value: val})
		case map[string]any:
			for nk, nv := range val {
				if s, ok := nv.(string); ok {
					out = append(out, keyedString{key: k + "." + nk, value: s})
				}
			}
		case []any:
			for idx, item := range val {
				if s, ok := item.(string); ok {
					out = append(out, keyedString{key: fmt.Sprintf("%s[%d]", k, idx), value: s})
				}
			}
		}
	}
	return out
}
