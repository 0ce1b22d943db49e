// Package table implements the engine's in-memory tabular data model (§3).
//
// A Table is an ordered sequence of rows sharing a fixed, ordered set of
// named columns. Tables are value-like: callers that receive a Table from a
// processor, a stage, or a reader may mutate it freely without affecting
// whoever produced it, because every hand-off goes through [Table.Clone].
package table

import "time"

// Kind is the runtime-inferred element type of a column.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindDate
)

// Value is a single cell. The zero Value (KindNull) represents SQL-null-like absence,
// first-class at the cell level independent of the column's Kind.
type Value struct {
	Kind Kind
	Str  string
	Int  int64
	Flt  float64
	Bool bool
	Time time.Time
}

// Null is the canonical null cell.
var Null = Value{Kind: KindNull}

// IsNull reports whether the value represents a null cell.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// Table is an ordered, named, fixed-width sequence of rows.
type Table struct {
	Columns []string
	Rows    [][]Value
}

// New creates an empty table with the given column order.
func New(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// NumColumns returns the column count.
func (t *Table) NumColumns() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// IsEmpty reports whether the table carries zero rows, per §4.3 invariant
// (iv) — zero rows regardless of declared column count is "empty" for stage
// write purposes.
func (t *Table) IsEmpty() bool {
	return t.NumRows() == 0
}

// ColumnIndex returns the 0-based index of name, or -1 if not present.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether name is a declared column.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Clone returns a deep copy. Mutating the clone never affects t, and
// mutating t after cloning never affects the clone — this is what the stage
// manager relies on to guarantee copy-on-save/copy-on-load (§4.3, §8).
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	cols := make([]string, len(t.Columns))
	copy(cols, t.Columns)

	rows := make([][]Value, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]Value, len(row))
		copy(r, row)
		rows[i] = r
	}

	return &Table{Columns: cols, Rows: rows}
}

// ReplaceColumn overwrites an existing column's values in place, or appends
// it as a new column if not present. Used by the lookup processor to attach
// pulled columns: a fresh name is appended, a colliding name is overwritten
// (§4.6 "pulled column wins").
func (t *Table) ReplaceColumn(name string, values []Value) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		t.Columns = append(t.Columns, name)
		for i := range t.Rows {
			var v Value
			if i < len(values) {
				v = values[i]
			}
			t.Rows[i] = append(t.Rows[i], v)
		}
		return
	}
	for i := range t.Rows {
		if i < len(values) {
			t.Rows[i][idx] = values[i]
		}
	}
}

// Get returns the cell at (row, column name). Returns Null and false if the
// column does not exist.
func (t *Table) Get(row int, column string) (Value, bool) {
	idx := t.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return Null, false
	}
	return t.Rows[row][idx], true
}
