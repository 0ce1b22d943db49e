// Package recipe implements the recipe document model and loader of §3 and
// §6.2.
//
// Grounded on the shape of cruciblehq-cruxd's (private, unfetchable)
// github.com/cruciblehq/spec/manifest package — which plays exactly this
// role for cruxd's build recipes — reimplemented locally since manifest is
// the teacher's own project-specific document type, not a third-party
// library, together with the YAML struct-tagging style of
// other_examples/13c9b394_dublyo-dockerizer__internal-recipe-recipe.go.go.
// Parsing uses gopkg.in/yaml.v3, as that file and the brian-c-moore-etl-tool
// manifest in the retrieved pack both do.
package recipe

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cruciblehq/reciperunner/internal/xerr"
)

// Step is one entry of the recipe's step list (§3, §6.2). Fields beyond
// ProcessorType and StepDescription are processor-specific and carried in
// Config for the registry's factories to interpret.
type Step struct {
	ProcessorType   string
	StepDescription string
	Config          map[string]any
}

// UnmarshalYAML implements custom decoding so that ProcessorType and
// StepDescription are pulled out as named fields while every other key
// flows into Config untouched, for the owning processor factory to
// validate.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]any
	if err := value.Decode(&raw); err != nil {
		return err
	}

	pt, _ := raw["processor_type"].(string)
	s.ProcessorType = pt
	delete(raw, "processor_type")

	desc, _ := raw["step_description"].(string)
	s.StepDescription = desc
	delete(raw, "step_description")

	s.Config = raw
	return nil
}

// StageDeclaration declares a stage up front via settings.stages (§3, §6.2).
type StageDeclaration struct {
	StageName   string `yaml:"stage_name"`
	Description string `yaml:"description"`
	Protected   bool   `yaml:"protected"`
}

// RequiredExternalVar declares one entry of settings.required_external_vars
// (§3, §6.2).
type RequiredExternalVar struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Default     *string  `yaml:"default"`
	Choices     []string `yaml:"choices"`
}

// Settings is the recipe's settings map (§3, §6.2).
type Settings struct {
	Description          string                `yaml:"description"`
	Variables            map[string]string     `yaml:"variables"`
	Stages               []StageDeclaration    `yaml:"stages"`
	RequiredExternalVars []RequiredExternalVar `yaml:"required_external_vars"`
}

// Recipe is the top-level document (§3, §6.2).
type Recipe struct {
	Steps    []Step   `yaml:"recipe"`
	Settings Settings `yaml:"settings"`
}

// Load reads and parses a recipe document from path. Shape errors (missing
// `recipe` list, a step with no processor_type, etc.) are not caught here —
// that is ValidateShape's job, so pre-flight can collect every issue rather than
// stopping at the first (§4.5, §7).
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerr.Wrapf(xerr.ErrIO, "reading recipe %s: %v", path, err)
	}

	var r Recipe
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, xerr.Wrapf(xerr.ErrRecipeValidation, "parsing recipe %s: %v", path, err)
	}

	return &r, nil
}
