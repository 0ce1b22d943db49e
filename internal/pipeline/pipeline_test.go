package pipeline

import (
	"errors"
	"testing"

	"github.com/cruciblehq/reciperunner/internal/recipe"
	"github.com/cruciblehq/reciperunner/internal/registry"
	"github.com/cruciblehq/reciperunner/internal/stage"
	"github.com/cruciblehq/reciperunner/internal/table"
	"github.com/cruciblehq/reciperunner/internal/xerr"
)

// fakeTransform saves a fixed table to save_to_stage, regardless of input,
// for orchestrator-level tests that don't need real transform logic.
type fakeTransform struct {
	saveTo string
	fail   error
}

func (f *fakeTransform) Execute(scope registry.Scope) registry.Outcome {
	if f.fail != nil {
		return registry.Err(f.fail)
	}
	t := table.New([]string{"a"})
	t.Rows = [][]table.Value{{{Kind: table.KindInt, Int: 1}}}
	if err := scope.Stages.Save(f.saveTo, t, stage.SaveOptions{}); err != nil {
		return registry.Err(err)
	}
	return registry.OK
}

type fakeFactory struct {
	fail error
}

func (f *fakeFactory) New(config map[string]any) (registry.Processor, error) {
	saveTo, _ := config["save_to_stage"].(string)
	return &fakeTransform{saveTo: saveTo, fail: f.fail}, nil
}
func (f *fakeFactory) Role() registry.Role           { return registry.Transform }
func (f *fakeFactory) MinimalConfig() map[string]any { return map[string]any{"save_to_stage": "out"} }
func (f *fakeFactory) Describe() registry.Describe   { return registry.Describe{} }
func (f *fakeFactory) Examples() []map[string]any    { return nil }

func newTestRegistry() *registry.Registry {
	reg := registry.New()
	reg.Register("fake_ok", &fakeFactory{})
	reg.Register("fake_fail", &fakeFactory{fail: errors.New("boom")})
	return reg
}

func TestRunHappyPath(t *testing.T) {
	r := &recipe.Recipe{
		Steps: []recipe.Step{
			{ProcessorType: "fake_ok", StepDescription: "make stage", Config: map[string]any{"save_to_stage": "out"}},
		},
		Settings: recipe.Settings{Description: "test"},
	}

	res, err := Run(newTestRegistry(), Options{Recipe: r, RecipePath: "r.yaml"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.StepsRun != 1 {
		t.Fatalf("StepsRun = %d, want 1", res.StepsRun)
	}
	if _, ok := res.FinalStages["out"]; !ok {
		t.Fatal("expected stage \"out\" to exist after run")
	}
}

func TestRunStopsOnFirstErrorWithStepIndex(t *testing.T) {
	r := &recipe.Recipe{
		Steps: []recipe.Step{
			{ProcessorType: "fake_ok", Config: map[string]any{"save_to_stage": "out"}},
			{ProcessorType: "fake_fail", StepDescription: "boom step", Config: map[string]any{"save_to_stage": "out2"}},
		},
		Settings: recipe.Settings{Description: "test"},
	}

	_, err := Run(newTestRegistry(), Options{Recipe: r, RecipePath: "r.yaml"})
	if err == nil {
		t.Fatal("expected error")
	}
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("err = %v, want *StepError", err)
	}
	if stepErr.Index != 2 {
		t.Fatalf("Index = %d, want 2", stepErr.Index)
	}
}

func TestRunUnknownProcessorFailsPreflight(t *testing.T) {
	r := &recipe.Recipe{
		Steps:    []recipe.Step{{ProcessorType: "does_not_exist"}},
		Settings: recipe.Settings{Description: "test"},
	}
	_, err := Run(newTestRegistry(), Options{Recipe: r, RecipePath: "r.yaml"})
	if !errors.Is(err, xerr.ErrRecipeValidation) {
		t.Fatalf("err = %v, want ErrRecipeValidation", err)
	}
}

func TestRunValidateOnlyDoesNotExecute(t *testing.T) {
	r := &recipe.Recipe{
		Steps:    []recipe.Step{{ProcessorType: "fake_fail", Config: map[string]any{"save_to_stage": "out"}}},
		Settings: recipe.Settings{Description: "test"},
	}
	res, err := Run(newTestRegistry(), Options{Recipe: r, RecipePath: "r.yaml", ValidateOnly: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.StepsRun != 0 {
		t.Fatalf("StepsRun = %d, want 0 for validate-only", res.StepsRun)
	}
}

func TestRunRejectsReservedDeclaredStage(t *testing.T) {
	r := &recipe.Recipe{
		Steps: []recipe.Step{{ProcessorType: "fake_ok", Config: map[string]any{"save_to_stage": "out"}}},
		Settings: recipe.Settings{
			Description: "test",
			Stages:      []recipe.StageDeclaration{{StageName: "input"}},
		},
	}
	_, err := Run(newTestRegistry(), Options{Recipe: r, RecipePath: "r.yaml"})
	if !errors.Is(err, xerr.ErrRecipeValidation) {
		t.Fatalf("err = %v, want ErrRecipeValidation", err)
	}
}
