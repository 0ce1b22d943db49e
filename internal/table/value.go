package table

import (
	"strconv"
	"strings"
)

// String renders a value as text, the form used for join-key normalization
// (§4.6) and for writing delimited output.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindString:
		return v.Str
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return formatFloat(v.Flt)
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindDate:
		return v.Time.Format("2006-01-02")
	default:
		return ""
	}
}

// formatFloat renders a float to 6 significant digits, the default the
// writer uses (§6.1), trimming a trailing ".0" for integral values so that
// normalized join keys never carry a spurious decimal (§4.6 rule 2).
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', 6, 64)
	if strings.Contains(s, "e") || strings.Contains(s, "E") {
		return s
	}
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

// FromString infers the narrowest matching Kind for a raw string cell: an
// explicit null sentinel becomes Null, otherwise the string is kept as-is.
// Column-wide numeric promotion (§4.1) happens one level up, in tableio,
// since it requires looking at every cell in a column at once.
func FromString(s string) Value {
	if IsNullSentinel(s) {
		return Null
	}
	return Value{Kind: KindString, Str: s}
}

// nullSentinels is the fixed set of strings a text reader maps to null (§4.1).
var nullSentinels = map[string]bool{
	"":     true,
	"NULL": true,
	"null": true,
	"N/A":  true,
	"n/a":  true,
	"NA":   true,
	"None": true,
}

// IsNullSentinel reports whether s is one of the fixed sentinel strings that
// a text reader maps to a null cell (§4.1).
func IsNullSentinel(s string) bool {
	return nullSentinels[s]
}
