package processors

import (
	"strconv"
	"strings"

	"github.com/cruciblehq/reciperunner/internal/table"
)

// normalizeKey applies the join-key normalization rules of §4.6 to a single
// cell, for comparison purposes only — it never mutates the table the cell
// came from. Returns ok=false for a key that normalizes to null (no match
// possible), per rule 4.
//
// Grounded on original_source/excel_recipe_processor/processors/lookup_data_processor.py's
// key-normalization pass (as opposed to its __DEPRECATED__ sibling, which
// spec.md §9 explicitly excludes).
func normalizeKey(v table.Value, caseSensitive bool) (string, bool) {
	if v.IsNull() {
		return "", false
	}

	s := v.String()

	// Rule 2: numeric and integral renders without a trailing ".0+". Value's
	// String() already trims a trailing ".0" for floats (see table/value.go),
	// but a value that arrived as a string like "1001.0" needs the same
	// treatment applied explicitly here.
	if v.Kind == table.KindString {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			if f == float64(int64(f)) {
				s = strconv.FormatInt(int64(f), 10)
			}
		}
	}

	// Rule 3: trim ASCII whitespace.
	s = strings.TrimSpace(s)

	// Rule 4: the literal string "nan" (after trimming) maps to null.
	if strings.EqualFold(s, "nan") {
		return "", false
	}

	// Rule 5: case folding.
	if !caseSensitive {
		s = strings.ToLower(s)
	}

	return s, true
}

// rawKey returns the comparison key without normalization — used when
// normalize_keys=false, comparing on exact string rendering (still honoring
// case_sensitive, since that option is orthogonal to normalize_keys in
// §4.6's option table).
func rawKey(v table.Value, caseSensitive bool) (string, bool) {
	if v.IsNull() {
		return "", false
	}
	s := v.String()
	if !caseSensitive {
		s = strings.ToLower(s)
	}
	return s, true
}
