package table

import "testing"

func newIntRows(n int) [][]Value {
	rows := make([][]Value, n)
	for i := range rows {
		rows[i] = []Value{{Kind: KindInt, Int: int64(i)}}
	}
	return rows
}

func TestReplaceColumnAppendsNewColumn(t *testing.T) {
	tbl := New([]string{"id"})
	tbl.Rows = newIntRows(2)

	tbl.ReplaceColumn("name", []Value{
		{Kind: KindString, Str: "a"},
		{Kind: KindString, Str: "b"},
	})

	if tbl.NumColumns() != 2 {
		t.Fatalf("NumColumns = %d, want 2", tbl.NumColumns())
	}
	nameIdx := tbl.ColumnIndex("name")
	if tbl.Rows[0][nameIdx].Str != "a" || tbl.Rows[1][nameIdx].Str != "b" {
		t.Fatalf("appended column values = %v", tbl.Rows)
	}
}

func TestReplaceColumnOverwritesExistingColumn(t *testing.T) {
	tbl := New([]string{"id", "name"})
	tbl.Rows = [][]Value{
		{{Kind: KindInt, Int: 1}, {Kind: KindString, Str: "old"}},
	}

	tbl.ReplaceColumn("name", []Value{{Kind: KindString, Str: "new"}})

	if tbl.NumColumns() != 2 {
		t.Fatalf("NumColumns = %d, want 2 (overwrite must not append)", tbl.NumColumns())
	}
	nameIdx := tbl.ColumnIndex("name")
	if tbl.Rows[0][nameIdx].Str != "new" {
		t.Fatalf("name = %q, want new", tbl.Rows[0][nameIdx].Str)
	}
}
