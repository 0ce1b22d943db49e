// Package pipeline implements the orchestrator of §4.5: load and validate a
// recipe, resolve external variables, pre-flight every step, execute them in
// order, and always tear down.
//
// Grounded on cruciblehq-cruxd's internal/build/build.go (Run entry point)
// and recipe.go (the build/buildPlatform/buildStage phase decomposition),
// generalized from "build container image stages" to "run table pipeline
// steps."
package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cruciblehq/reciperunner/internal/recipe"
	"github.com/cruciblehq/reciperunner/internal/registry"
	"github.com/cruciblehq/reciperunner/internal/stage"
	"github.com/cruciblehq/reciperunner/internal/variables"
	"github.com/cruciblehq/reciperunner/internal/xerr"
)

// Options controls a single pipeline run (§4.5).
type Options struct {
	Recipe       *recipe.Recipe
	RecipePath   string
	InputPath    string // drives the input_basename/input_stem built-ins
	ExternalVars map[string]string
	Interactive  bool // whether missing required_external_vars may be prompted for
	MaxStages    int
	ValidateOnly bool // stop after pre-flight (§6.3)
}

// StepError is returned when execution fails partway through, carrying the
// 1-based step index and description the spec requires (§4.5 phase 4, §7).
type StepError struct {
	Index       int
	Description string
	Err         error
}

func (e *StepError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("step %d (%s): %v", e.Index, e.Description, e.Err)
	}
	return fmt.Sprintf("step %d: %v", e.Index, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Result is returned after a successful run.
type Result struct {
	RunID       string
	StepsRun    int
	FinalStages map[string]stage.Metadata
}

// Run executes opts.Recipe end-to-end against reg (§4.5).
func Run(reg *registry.Registry, opts Options) (*Result, error) {
	runID := uuid.NewString()
	buildAt := time.Now()

	slog.Info("loading recipe", "run", runID, "path", opts.RecipePath, "steps", len(opts.Recipe.Steps))

	if err := recipe.ValidateShape(opts.Recipe); err != nil {
		return nil, err
	}

	scope, err := resolveScope(opts, buildAt)
	if err != nil {
		return nil, err
	}

	instances, err := preflight(reg, opts.Recipe, scope)
	if err != nil {
		return nil, err
	}

	if opts.ValidateOnly {
		slog.Info("validate-only: recipe is valid", "run", runID)
		return &Result{RunID: runID}, nil
	}

	stages := stage.New(opts.MaxStages)
	defer stages.Cleanup()

	if err := declareStages(stages, opts.Recipe.Settings.Stages); err != nil {
		return nil, err
	}

	for i, step := range opts.Recipe.Steps {
		slog.Info("executing step", "run", runID, "index", i+1, "type", step.ProcessorType)

		outcome := instances[i].Execute(registry.Scope{
			Stages:    stages,
			Variables: scope,
			Config:    step.Config,
		})

		if outcome.Err != nil {
			return nil, &StepError{Index: i + 1, Description: step.StepDescription, Err: outcome.Err}
		}
	}

	slog.Info("recipe complete", "run", runID, "steps", len(opts.Recipe.Steps))

	return &Result{
		RunID:       runID,
		StepsRun:    len(opts.Recipe.Steps),
		FinalStages: stages.List(),
	}, nil
}

// resolveScope builds the run's full variable scope: built-ins, then recipe
// variables, then resolved external variables (§4.2, §4.5 phase 2).
func resolveScope(opts Options, buildAt time.Time) (*variables.Scope, error) {
	scope := variables.Builtins(buildAt, opts.InputPath, opts.RecipePath)

	scope, err := scope.WithRecipeVariables(opts.Recipe.Settings.Variables)
	if err != nil {
		return nil, err
	}

	declared := make([]variables.RequiredVar, len(opts.Recipe.Settings.RequiredExternalVars))
	for i, rv := range opts.Recipe.Settings.RequiredExternalVars {
		declared[i] = variables.RequiredVar{
			Name:        rv.Name,
			Description: rv.Description,
			HasDefault:  rv.Default != nil,
			Choices:     rv.Choices,
		}
		if rv.Default != nil {
			declared[i].Default = *rv.Default
		}
	}

	externals, err := variables.ResolveExternals(declared, opts.ExternalVars, opts.Interactive)
	if err != nil {
		return nil, err
	}

	return scope.WithExternalVariables(externals), nil
}

// declareStages pre-creates every settings.stages entry (§4.5 phase 4).
func declareStages(stages *stage.Manager, decls []recipe.StageDeclaration) error {
	for _, decl := range decls {
		if err := stages.Declare(decl.StageName, decl.Description, decl.Protected); err != nil {
			return err
		}
	}
	return nil
}
