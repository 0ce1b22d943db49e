// Package tableio implements the tabular I/O contract of §4.1/§6.1: reading
// and writing a [table.Table] to a CSV/TSV/workbook file, independent of any
// higher-level recipe concept.
//
// CSV and TSV are handled with the standard library's encoding/csv, the way
// scrapbird-breachline's fileloader package does; workbook formats
// (.xlsx/.xlsm/.xlsb/.xls) go through github.com/xuri/excelize/v2, the same
// library that package and the etl-tool manifest in the retrieved pack use.
package tableio

import (
	"path/filepath"
	"strings"

	"github.com/cruciblehq/reciperunner/internal/xerr"
)

// Format is a resolved logical file format.
type Format int

const (
	FormatUnknown Format = iota
	FormatWorkbook
	FormatDelimited
)

// extensionFormats maps a lower-cased extension (without the dot) to its
// logical format and, for delimited formats, default separator (§6.1).
var extensionFormats = map[string]struct {
	format    Format
	separator rune
}{
	"xlsx": {FormatWorkbook, 0},
	"xlsm": {FormatWorkbook, 0},
	"xlsb": {FormatWorkbook, 0},
	"xls":  {FormatWorkbook, 0},
	"csv":  {FormatDelimited, ','},
	"tsv":  {FormatDelimited, '\t'},
	"txt":  {FormatDelimited, '\t'},
}

// ResolveFormat determines the logical format and default separator for a
// path, honoring an explicit override first. An unrecognized extension falls
// back to workbook format (§6.1); the caller is expected to log the warning.
func ResolveFormat(path, explicit string) (Format, rune, bool) {
	if explicit != "" {
		if entry, ok := extensionFormats[strings.ToLower(explicit)]; ok {
			return entry.format, entry.separator, true
		}
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if entry, ok := extensionFormats[ext]; ok {
		return entry.format, entry.separator, true
	}

	return FormatWorkbook, 0, false
}

// IsWorkbookExt reports whether ext (without leading dot, any case) names a
// workbook format.
func IsWorkbookExt(ext string) bool {
	entry, ok := extensionFormats[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return ok && entry.format == FormatWorkbook
}

// ReadOptions controls table reading (§4.1).
type ReadOptions struct {
	Sheet          string // 1-based index (as a string) or sheet name; workbook only.
	Encoding       string // reserved for non-UTF-8 delimited files; "" means UTF-8.
	Separator      rune   // overrides the format default when non-zero.
	ExplicitFormat string // extension-style override, e.g. "csv".
}

// WriteOptions controls table writing (§4.1).
type WriteOptions struct {
	Sheet          string
	Index          bool // write a leading row-index column
	Separator      rune
	Encoding       string
	ExplicitFormat string
	CreateBackup   bool
}

// wrapIO wraps err as an [xerr.ErrIO] carrying the offending path.
func wrapIO(path string, err error) error {
	if err == nil {
		return nil
	}
	return xerr.Wrapf(xerr.ErrIO, "%s: %v", path, err)
}
