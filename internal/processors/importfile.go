package processors

import (
	"github.com/cruciblehq/reciperunner/internal/registry"
	"github.com/cruciblehq/reciperunner/internal/stage"
	"github.com/cruciblehq/reciperunner/internal/tableio"
	"github.com/cruciblehq/reciperunner/internal/variables"
)

// importFactory builds the import_file processor: reads a delimited or
// workbook file into a new stage (§4.1, §4.4 Import role contract).
type importFactory struct{}

// NewImportFactory returns the import_file processor factory.
func NewImportFactory() registry.Factory { return importFactory{} }

func (importFactory) Role() registry.Role { return registry.Import }

func (importFactory) MinimalConfig() map[string]any {
	return map[string]any{
		"path":          "input.csv",
		"save_to_stage": "main",
	}
}

func (importFactory) Describe() registry.Describe {
	return registry.Describe{
		ProcessorType: "import_file",
		Role:          registry.Import,
		Summary:       "reads a CSV/TSV/workbook file into a new stage",
		Options:       []string{"path", "save_to_stage", "sheet", "separator", "format"},
	}
}

func (importFactory) Examples() []map[string]any {
	return []map[string]any{
		{
			"processor_type": "import_file",
			"path":           "{input_basename}",
			"save_to_stage":  "main",
		},
	}
}

func (importFactory) New(config map[string]any) (registry.Processor, error) {
	path, err := requireString(config, "path")
	if err != nil {
		return nil, err
	}
	saveTo, err := requireString(config, "save_to_stage")
	if err != nil {
		return nil, err
	}

	return &importProcessor{
		path:    path,
		saveTo:  saveTo,
		sheet:   optionalString(config, "sheet", ""),
		format:  optionalString(config, "format", ""),
		sepRune: separatorRune(optionalString(config, "separator", "")),
	}, nil
}

type importProcessor struct {
	path    string
	saveTo  string
	sheet   string
	format  string
	sepRune rune
}

func (p *importProcessor) Execute(scope registry.Scope) registry.Outcome {
	path, err := variables.Substitute(p.path, scope.Variables, variables.Lenient)
	if err != nil {
		return registry.Err(err)
	}
	sheet, err := variables.Substitute(p.sheet, scope.Variables, variables.Lenient)
	if err != nil {
		return registry.Err(err)
	}

	t, err := tableio.ReadTable(path, tableio.ReadOptions{
		Sheet:          sheet,
		ExplicitFormat: p.format,
		Separator:      p.sepRune,
	})
	if err != nil {
		return registry.Err(err)
	}

	if err := scope.Stages.Save(p.saveTo, t, stage.SaveOptions{StepName: "import_file"}); err != nil {
		return registry.Err(err)
	}
	return registry.OK
}

// separatorRune returns the first rune of s, or 0 if s is empty. Used for
// the optional "separator" config option (a single-character string in the
// recipe YAML, since YAML has no dedicated rune type).
func separatorRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
