package processors

import "github.com/cruciblehq/reciperunner/internal/registry"

// Register adds every built-in processor factory to reg, under the
// processor_type name recipes use to reference it (§4.4, §4.6).
func Register(reg *registry.Registry) error {
	factories := map[string]registry.Factory{
		"lookup_data":     NewLookupFactory(),
		"filter_rows":     NewFilterFactory(),
		"rename_columns":  NewRenameFactory(),
		"add_subtotals":   NewSubtotalFactory(),
		"import_file":     NewImportFactory(),
		"export_file":     NewExportFactory(),
		"export_workbook": NewExportWorkbookFactory(),
		"archive_files":   NewArchiveFilesFactory(),
	}

	for name, factory := range factories {
		if err := reg.Register(name, factory); err != nil {
			return err
		}
	}
	return nil
}
