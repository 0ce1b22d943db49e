package processors

import (
	"github.com/cruciblehq/reciperunner/internal/registry"
	"github.com/cruciblehq/reciperunner/internal/tableio"
	"github.com/cruciblehq/reciperunner/internal/variables"
	"github.com/cruciblehq/reciperunner/internal/xerr"
)

// exportFactory builds the export_file processor: writes one stage to a
// delimited or workbook file (§4.1, §4.4 Export role contract).
type exportFactory struct{}

// NewExportFactory returns the export_file processor factory.
func NewExportFactory() registry.Factory { return exportFactory{} }

func (exportFactory) Role() registry.Role { return registry.Export }

func (exportFactory) MinimalConfig() map[string]any {
	return map[string]any{
		"source_stage": "main",
		"path":         "output.csv",
	}
}

func (exportFactory) Describe() registry.Describe {
	return registry.Describe{
		ProcessorType: "export_file",
		Role:          registry.Export,
		Summary:       "writes a stage to a CSV/TSV/workbook file",
		Options:       []string{"source_stage", "path", "sheet", "separator", "format", "index", "create_backup"},
	}
}

func (exportFactory) Examples() []map[string]any {
	return []map[string]any{
		{
			"processor_type": "export_file",
			"source_stage":   "orders_enriched",
			"path":           "orders_enriched_{date}.csv",
		},
	}
}

func (exportFactory) New(config map[string]any) (registry.Processor, error) {
	source, err := requireString(config, "source_stage")
	if err != nil {
		return nil, err
	}
	path, err := requireString(config, "path")
	if err != nil {
		return nil, err
	}

	return &exportProcessor{
		sourceStage: source,
		path:        path,
		sheet:       optionalString(config, "sheet", ""),
		format:      optionalString(config, "format", ""),
		sepRune:     separatorRune(optionalString(config, "separator", "")),
		index:       optionalBool(config, "index", false),
		backup:      optionalBool(config, "create_backup", false),
	}, nil
}

type exportProcessor struct {
	sourceStage string
	path        string
	sheet       string
	format      string
	sepRune     rune
	index       bool
	backup      bool
}

func (p *exportProcessor) Execute(scope registry.Scope) registry.Outcome {
	src, err := scope.Stages.Load(p.sourceStage)
	if err != nil {
		return registry.Err(err)
	}

	path, err := variables.Substitute(p.path, scope.Variables, variables.Lenient)
	if err != nil {
		return registry.Err(err)
	}
	sheet, err := variables.Substitute(p.sheet, scope.Variables, variables.Lenient)
	if err != nil {
		return registry.Err(err)
	}

	_, err = tableio.WriteTable(src, path, tableio.WriteOptions{
		Sheet:          sheet,
		ExplicitFormat: p.format,
		Separator:      p.sepRune,
		Index:          p.index,
		CreateBackup:   p.backup,
	})
	if err != nil {
		return registry.Err(err)
	}
	return registry.OK
}

// exportWorkbookFactory builds the export_workbook processor: writes several
// stages to one workbook file, one sheet each, preserving declared order.
// Exercises tableio.WriteMultiSheet, and through it excelize's multi-sheet
// workbook support, which no single-stage export can reach.
type exportWorkbookFactory struct{}

// NewExportWorkbookFactory returns the export_workbook processor factory.
func NewExportWorkbookFactory() registry.Factory { return exportWorkbookFactory{} }

func (exportWorkbookFactory) Role() registry.Role { return registry.Export }

func (exportWorkbookFactory) MinimalConfig() map[string]any {
	return map[string]any{
		"path":   "report.xlsx",
		"sheets": []any{map[string]any{"sheet": "Summary", "stage": "summary_stage"}},
	}
}

func (exportWorkbookFactory) Describe() registry.Describe {
	return registry.Describe{
		ProcessorType: "export_workbook",
		Role:          registry.Export,
		Summary:       "writes several stages to one workbook, one sheet per stage, in declared order",
		Options:       []string{"path", "sheets", "create_backup"},
	}
}

func (exportWorkbookFactory) Examples() []map[string]any {
	return []map[string]any{
		{
			"processor_type": "export_workbook",
			"path":           "report.xlsx",
			"sheets": []any{
				map[string]any{"sheet": "Summary", "stage": "summary_stage"},
				map[string]any{"sheet": "Detail", "stage": "detail_stage"},
			},
		},
	}
}

// sheetPair is one entry of the sheets config option: an (output sheet
// name, source stage name) pair.
type sheetPair struct {
	sheet string
	stage string
}

// sheetPairList parses config[key] as an ordered list of {sheet, stage}
// maps. Unlike a YAML mapping, a YAML sequence decodes to a Go slice, so
// the recipe author's declared order survives into named, instead of being
// scrambled by Go's randomized map iteration (tableio.WriteMultiSheet's
// sheetOrder expects callers to pass names in a real, declared order).
func sheetPairList(config map[string]any, key string) ([]sheetPair, error) {
	raw, ok := config[key]
	if !ok {
		return nil, xerr.Wrapf(xerr.ErrConfig, "missing required option %q", key)
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, xerr.Wrapf(xerr.ErrConfig, "option %q must be a list of {sheet, stage} entries", key)
	}

	out := make([]sheetPair, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, xerr.Wrapf(xerr.ErrConfig, "option %q entries must each be a map with sheet/stage keys", key)
		}
		sheet, _ := entry["sheet"].(string)
		stage, _ := entry["stage"].(string)
		if sheet == "" || stage == "" {
			return nil, xerr.Wrapf(xerr.ErrConfig, "option %q entries require non-empty sheet and stage", key)
		}
		out = append(out, sheetPair{sheet: sheet, stage: stage})
	}
	if len(out) == 0 {
		return nil, xerr.Wrapf(xerr.ErrConfig, "option %q must be a non-empty list", key)
	}
	return out, nil
}

func (exportWorkbookFactory) New(config map[string]any) (registry.Processor, error) {
	path, err := requireString(config, "path")
	if err != nil {
		return nil, err
	}
	sheets, err := sheetPairList(config, "sheets")
	if err != nil {
		return nil, err
	}
	return &exportWorkbookProcessor{
		path:   path,
		sheets: sheets,
		backup: optionalBool(config, "create_backup", false),
	}, nil
}

type exportWorkbookProcessor struct {
	path   string
	sheets []sheetPair
	backup bool
}

func (p *exportWorkbookProcessor) Execute(scope registry.Scope) registry.Outcome {
	named := make([]tableio.NamedSheet, 0, len(p.sheets))
	for _, pair := range p.sheets {
		t, err := scope.Stages.Load(pair.stage)
		if err != nil {
			return registry.Err(err)
		}
		named = append(named, tableio.NamedSheet{Name: pair.sheet, Table: t})
	}

	path, err := variables.Substitute(p.path, scope.Variables, variables.Lenient)
	if err != nil {
		return registry.Err(err)
	}

	if _, err := tableio.WriteMultiSheet(named, path, tableio.WriteOptions{CreateBackup: p.backup}); err != nil {
		return registry.Err(err)
	}
	return registry.OK
}
