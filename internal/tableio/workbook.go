package tableio

import (
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/cruciblehq/reciperunner/internal/table"
	"github.com/cruciblehq/reciperunner/internal/xerr"
)

// resolveSheet picks a sheet name from the workbook's sheet list, accepting
// either a 1-based index or a literal sheet name (§4.1).
func resolveSheet(f *excelize.File, sheet string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", xerr.Wrap(xerr.ErrIO, "workbook has no sheets")
	}

	if sheet == "" {
		return sheets[0], nil
	}

	if idx, err := strconv.Atoi(sheet); err == nil {
		if idx < 1 || idx > len(sheets) {
			return "", xerr.Wrapf(xerr.ErrIO, "sheet index %d out of range (1..%d)", idx, len(sheets))
		}
		return sheets[idx-1], nil
	}

	for _, s := range sheets {
		if s == sheet {
			return s, nil
		}
	}
	return "", xerr.Wrapf(xerr.ErrIO, "sheet %q not found", sheet)
}

// readWorkbook reads one sheet of a workbook file into a Table.
func readWorkbook(path, sheet string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, wrapIO(path, err)
	}
	defer f.Close()

	name, err := resolveSheet(f, sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, wrapIO(path, err)
	}
	if len(rows) == 0 {
		return table.New(nil), nil
	}

	header := rows[0]
	t := table.New(header)
	t.Rows = make([][]table.Value, 0, len(rows)-1)
	for _, rec := range rows[1:] {
		row := make([]table.Value, len(header))
		for c := range header {
			var cell string
			if c < len(rec) {
				cell = rec[c]
			}
			row[c] = table.FromString(cell)
		}
		t.Rows = append(t.Rows, row)
	}

	promoteColumns(t)
	return t, nil
}

// listSheets returns the ordered sheet names of a workbook (§4.1).
func listSheets(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, wrapIO(path, err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// writeWorkbook writes a single Table as one sheet of a new workbook file.
func writeWorkbook(t *table.Table, path, sheetName string, withIndex bool) error {
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	return writeMultiSheetWorkbook(map[string]*table.Table{sheetName: t}, []string{sheetName}, path, sheetName, withIndex)
}

// writeMultiSheetWorkbook writes multiple tables to a single workbook file,
// one sheet per table, in the order given by names (§4.1 write_multi_sheet).
func writeMultiSheetWorkbook(sheets map[string]*table.Table, names []string, path, active string, withIndex bool) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range names {
		t := sheets[name]

		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return wrapIO(path, err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return wrapIO(path, err)
			}
		}

		if err := writeSheetRows(f, name, t, withIndex); err != nil {
			return err
		}
	}

	if active != "" {
		idx, err := f.GetSheetIndex(active)
		if err == nil {
			f.SetActiveSheet(idx)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return wrapIO(path, err)
	}
	return nil
}

// writeSheetRows writes a Table's header and data rows into sheetName,
// preserving column order (§6.1).
func writeSheetRows(f *excelize.File, sheetName string, t *table.Table, withIndex bool) error {
	header := t.Columns
	if withIndex {
		header = append([]string{""}, header...)
	}

	headerCells := make([]any, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &headerCells); err != nil {
		return err
	}

	for r, row := range t.Rows {
		cells := make([]any, 0, len(row)+1)
		if withIndex {
			cells = append(cells, r)
		}
		for _, v := range row {
			cells = append(cells, cellValue(v))
		}
		cellRef, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cellRef, &cells); err != nil {
			return err
		}
	}
	return nil
}

// cellValue converts a table.Value into a type excelize can store natively,
// keeping numeric and boolean cells typed instead of stringified.
func cellValue(v table.Value) any {
	switch v.Kind {
	case table.KindNull:
		return nil
	case table.KindInt:
		return v.Int
	case table.KindFloat:
		return v.Flt
	case table.KindBool:
		return v.Bool
	case table.KindDate:
		return v.Time
	default:
		return v.Str
	}
}

// sheetOrder returns the iteration order of a map[string]*table.Table as
// given by an explicit ordered name list, since Go map iteration order is
// unspecified and write_multi_sheet must preserve caller-declared order
// (§4.1). Callers are expected to pass names derived from an ordered source
// (e.g. a YAML sequence), not by ranging the map themselves.
func sheetOrder(names []string) []string {
	seen := make(map[string]bool, len(names))
	ordered := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			ordered = append(ordered, n)
		}
	}
	return ordered
}
