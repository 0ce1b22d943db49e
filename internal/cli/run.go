package cli

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cruciblehq/reciperunner/internal/pipeline"
	"github.com/cruciblehq/reciperunner/internal/processors"
	"github.com/cruciblehq/reciperunner/internal/recipe"
	"github.com/cruciblehq/reciperunner/internal/registry"
	"github.com/cruciblehq/reciperunner/internal/xerr"
)

// RunCmd is the 'reciperunner run' command (§6.3).
type RunCmd struct {
	RecipePath    string   `arg:"" help:"Path to the recipe YAML file."`
	Input         string   `help:"Input file path, exposed to steps as {input_basename}/{input_stem}." placeholder:"PATH"`
	Var           []string `help:"Set an external variable (name=value). Repeatable." placeholder:"NAME=VALUE"`
	MaxStages     int      `help:"Override the maximum number of live stages." default:"0"`
	NoInteractive bool     `help:"Fail instead of interactively prompting for missing required variables."`
}

// Run executes the run command.
func (c *RunCmd) Run(ctx context.Context) error {
	reg := registry.New()
	if err := processors.Register(reg); err != nil {
		return err
	}

	r, err := recipe.Load(c.RecipePath)
	if err != nil {
		return err
	}

	externals, err := parseVarFlags(c.Var)
	if err != nil {
		return err
	}

	result, err := pipeline.Run(reg, pipeline.Options{
		Recipe:       r,
		RecipePath:   c.RecipePath,
		InputPath:    c.Input,
		ExternalVars: externals,
		Interactive:  !c.NoInteractive,
		MaxStages:    c.MaxStages,
	})
	if err != nil {
		return err
	}

	slog.Info("run complete", "run", result.RunID, "steps", result.StepsRun, "stages", len(result.FinalStages))
	return nil
}

// parseVarFlags parses repeated --var NAME=VALUE flags into a map.
func parseVarFlags(vars []string) (map[string]string, error) {
	out := make(map[string]string, len(vars))
	for _, v := range vars {
		name, value, ok := strings.Cut(v, "=")
		if !ok || name == "" {
			return nil, xerr.Wrapf(xerr.ErrConfig, "--var %q must be in NAME=VALUE form", v)
		}
		out[name] = value
	}
	return out, nil
}
