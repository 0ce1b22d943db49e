package tableio

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/cruciblehq/reciperunner/internal/table"
)

// readDelimited reads a CSV/TSV/TXT file into a Table.
//
// Columns start out as strings; a column is promoted to KindInt or KindFloat
// only if every non-null cell in it parses (§4.1). This mirrors the
// column-by-column promotion scrapbird-breachline's fileloader performs for
// CSV, generalized to numeric typing instead of just header detection.
func readDelimited(path string, sep rune) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapIO(path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = sep
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return table.New(nil), nil
		}
		return nil, wrapIO(path, err)
	}

	var raw [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wrapIO(path, err)
		}
		raw = append(raw, rec)
	}

	t := table.New(header)
	t.Rows = make([][]table.Value, len(raw))
	for i, rec := range raw {
		row := make([]table.Value, len(header))
		for c := range header {
			var cell string
			if c < len(rec) {
				cell = rec[c]
			}
			row[c] = table.FromString(cell)
		}
		t.Rows[i] = row
	}

	promoteColumns(t)
	return t, nil
}

// promoteColumns rewrites each column as KindInt or KindFloat in place when
// every non-null cell in it parses as that type, otherwise leaves it as
// KindString (§4.1, §6.1).
func promoteColumns(t *table.Table) {
	for c := range t.Columns {
		allInt, allFloat, any := true, true, false
		for _, row := range t.Rows {
			v := row[c]
			if v.IsNull() {
				continue
			}
			any = true
			s := v.Str
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				allInt = false
			}
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				allFloat = false
			}
		}
		if !any {
			continue
		}

		switch {
		case allInt:
			for i, row := range t.Rows {
				if row[c].IsNull() {
					continue
				}
				n, _ := strconv.ParseInt(row[c].Str, 10, 64)
				t.Rows[i][c] = table.Value{Kind: table.KindInt, Int: n}
			}
		case allFloat:
			for i, row := range t.Rows {
				if row[c].IsNull() {
					continue
				}
				f, _ := strconv.ParseFloat(row[c].Str, 64)
				t.Rows[i][c] = table.Value{Kind: table.KindFloat, Flt: f}
			}
		}
	}
}

// writeDelimited writes a Table as CSV/TSV/TXT with '\n' line endings and
// floats formatted to 6 significant digits (§6.1).
func writeDelimited(t *table.Table, path string, sep rune, withIndex bool) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return wrapIO(path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = sep
	w.UseCRLF = false

	header := t.Columns
	if withIndex {
		header = append([]string{""}, header...)
	}
	if err := w.Write(header); err != nil {
		return wrapIO(path, err)
	}

	for i, row := range t.Rows {
		rec := make([]string, 0, len(row)+1)
		if withIndex {
			rec = append(rec, strconv.Itoa(i))
		}
		for _, v := range row {
			rec = append(rec, v.String())
		}
		if err := w.Write(rec); err != nil {
			return wrapIO(path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return wrapIO(path, err)
	}
	return nil
}
