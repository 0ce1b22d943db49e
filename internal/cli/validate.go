package cli

import (
	"context"
	"log/slog"

	"github.com/cruciblehq/reciperunner/internal/pipeline"
	"github.com/cruciblehq/reciperunner/internal/processors"
	"github.com/cruciblehq/reciperunner/internal/recipe"
	"github.com/cruciblehq/reciperunner/internal/registry"
)

// ValidateCmd is the 'reciperunner validate' command (§6.3): loads and
// pre-flights a recipe without saving a stage or touching a file.
type ValidateCmd struct {
	RecipePath string   `arg:"" help:"Path to the recipe YAML file."`
	Var        []string `help:"Set an external variable (name=value), for variables whose validity can only be checked once they're bound. Repeatable." placeholder:"NAME=VALUE"`
}

// Run executes the validate command.
func (c *ValidateCmd) Run(ctx context.Context) error {
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

	if _, err := pipeline.Run(reg, pipeline.Options{
		Recipe:       r,
		RecipePath:   c.RecipePath,
		ExternalVars: externals,
		Interactive:  false,
		ValidateOnly: true,
	}); err != nil {
		return err
	}

	slog.Info("recipe is valid", "path", c.RecipePath)
	return nil
}
