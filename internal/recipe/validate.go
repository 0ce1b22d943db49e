package recipe

import (
	"fmt"
	"strings"

	"github.com/cruciblehq/reciperunner/internal/xerr"
)

// reservedStageNames mirrors internal/stage's reserved set; duplicated here
// (rather than importing internal/stage) to keep the document model free of
// a dependency on the runtime store it merely describes.
var reservedStageNames = map[string]bool{
	"input":   true,
	"output":  true,
	"current": true,
	"data":    true,
}

// ValidateShape checks the recipe document's static shape: a non-empty step
// list, every step carrying a processor_type, a required settings
// description, and no declared stage using a reserved name (§4.5 phase 1,
// §6.1 scenario 6 "reserved-name rejection").
//
// This does not check that processor_type values exist in a registry, or
// that variable placeholders resolve — those require a Registry and a
// Scope respectively and are performed by the pipeline orchestrator's
// pre-flight phase (§4.5 phase 3), which calls this first.
func ValidateShape(r *Recipe) error {
	var issues []string

	if len(r.Steps) == 0 {
		issues = append(issues, "recipe must declare at least one step")
	}

	for i, step := range r.Steps {
		if step.ProcessorType == "" {
			issues = append(issues, fmt.Sprintf("step %d: missing processor_type", i+1))
		}
	}

	if strings.TrimSpace(r.Settings.Description) == "" {
		issues = append(issues, "settings.description is required")
	}

	seenStages := map[string]bool{}
	for _, decl := range r.Settings.Stages {
		if decl.StageName == "" {
			issues = append(issues, "settings.stages entry missing stage_name")
			continue
		}
		if reservedStageNames[decl.StageName] {
			issues = append(issues, fmt.Sprintf("settings.stages: %q is a reserved stage name", decl.StageName))
		}
		if seenStages[decl.StageName] {
			issues = append(issues, fmt.Sprintf("settings.stages: %q declared more than once", decl.StageName))
		}
		seenStages[decl.StageName] = true
	}

	seenVars := map[string]bool{}
	for _, rv := range r.Settings.RequiredExternalVars {
		if rv.Name == "" {
			issues = append(issues, "settings.required_external_vars entry missing name")
			continue
		}
		if seenVars[rv.Name] {
			issues = append(issues, fmt.Sprintf("settings.required_external_vars: %q declared more than once", rv.Name))
		}
		seenVars[rv.Name] = true
	}

	if len(issues) > 0 {
		return xerr.Wrap(xerr.ErrRecipeValidation, strings.Join(issues, "; "))
	}
	return nil
}
