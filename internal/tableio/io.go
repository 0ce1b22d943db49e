package tableio

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cruciblehq/reciperunner/internal/table"
)

// ReadTable reads a table from path, resolving format by extension unless
// opts.ExplicitFormat overrides it (§4.1).
func ReadTable(path string, opts ReadOptions) (*table.Table, error) {
	format, sep, recognized := ResolveFormat(path, opts.ExplicitFormat)
	if !recognized {
		slog.Warn("unrecognized file extension, falling back to workbook format", "path", path)
	}
	if opts.Separator != 0 {
		sep = opts.Separator
	}

	switch format {
	case FormatWorkbook:
		return readWorkbook(path, opts.Sheet)
	default:
		if sep == 0 {
			sep = ','
		}
		return readDelimited(path, sep)
	}
}

// NamedSheet pairs a sheet name with its table, used to preserve the caller's
// declared sheet order in WriteMultiSheet (§4.1).
type NamedSheet struct {
	Name  string
	Table *table.Table
}

// WriteTable writes t to path, returning the final resolved path. If
// opts.CreateBackup is set and path already exists, the existing file is
// copied to path + ".backup" + N for the smallest non-colliding N before the
// new content is written (§4.1).
func WriteTable(t *table.Table, path string, opts WriteOptions) (string, error) {
	if opts.CreateBackup {
		if err := backup(path); err != nil {
			return "", err
		}
	}

	format, sep, recognized := ResolveFormat(path, opts.ExplicitFormat)
	if !recognized {
		slog.Warn("unrecognized file extension, falling back to workbook format", "path", path)
	}
	if opts.Separator != 0 {
		sep = opts.Separator
	}

	switch format {
	case FormatWorkbook:
		if err := writeWorkbook(t, path, opts.Sheet, opts.Index); err != nil {
			return "", err
		}
	default:
		if sep == 0 {
			sep = ','
		}
		if err := writeDelimited(t, path, sep, opts.Index); err != nil {
			return "", err
		}
	}

	return path, nil
}

// WriteMultiSheet writes several tables to one workbook file, one sheet per
// entry, preserving the order of sheets (§4.1). It is workbook-only: the
// caller is responsible for giving path a workbook extension.
func WriteMultiSheet(sheets []NamedSheet, path string, opts WriteOptions) (string, error) {
	if opts.CreateBackup {
		if err := backup(path); err != nil {
			return "", err
		}
	}

	byName := make(map[string]*table.Table, len(sheets))
	names := make([]string, 0, len(sheets))
	for _, s := range sheets {
		byName[s.Name] = s.Table
		names = append(names, s.Name)
	}
	names = sheetOrder(names)

	if err := writeMultiSheetWorkbook(byName, names, path, opts.Sheet, opts.Index); err != nil {
		return "", err
	}
	return path, nil
}

// ListSheets returns the ordered sheet names of a workbook file (§4.1).
func ListSheets(path string) ([]string, error) {
	return listSheets(path)
}

// ensureParentDir creates path's parent directory if missing (§4.1).
func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return wrapIO(path, err)
	}
	return nil
}

// backup copies an existing destination file to path + ".backupN" for the
// smallest non-colliding N, using a write-temp-then-rename so a concurrent
// opener never observes a partially written backup (§4.1, §5).
func backup(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return wrapIO(path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return wrapIO(path, err)
	}

	var dest string
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s.backup%d", path, n)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			dest = candidate
			break
		}
	}

	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return wrapIO(path, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return wrapIO(path, err)
	}
	return nil
}
