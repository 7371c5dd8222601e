package batch

import (
	"testing"
)

func TestAddColumn(t *testing.T) {
	b := New()
	if err := b.AddColumn("a", KindRaw, []interface{}{"1", "2"}); err != nil {
		t.Fatal("unexpected error adding column: ", err)
	}
	if err := b.AddColumn("a", KindRaw, []interface{}{"1", "2"}); err == nil {
		t.Fatal("expected error for duplicate column name")
	}
	if err := b.AddColumn("b", KindRaw, []interface{}{"1"}); err == nil {
		t.Fatal("expected error for mismatched row count")
	}
	if err := b.AddColumn("b", KindRaw, []interface{}{"x", "y"}); err != nil {
		t.Fatal("unexpected error adding second column: ", err)
	}
	if b.NumRows() != 2 || b.NumColumns() != 2 {
		t.Fatal("unexpected batch shape: ", b.NumRows(), b.NumColumns())
	}
}

func TestFilterRowsAppliesToAllColumns(t *testing.T) {
	b := New()
	_ = b.AddColumn("a", KindRaw, []interface{}{"1", "2", "3"})
	_ = b.AddColumn("b", KindRaw, []interface{}{"x", "y", "z"})
	dropped := b.FilterRows(func(row int) bool { return row != 1 })
	if dropped != 1 {
		t.Fatal("expected 1 dropped row; got ", dropped)
	}
	if b.NumRows() != 2 {
		t.Fatal("expected 2 rows; got ", b.NumRows())
	}
	// Row alignment must be preserved.
	if b.Cell("a", 1) != "3" || b.Cell("b", 1) != "z" {
		t.Fatal("row alignment broken after filter: ", b.Cell("a", 1), b.Cell("b", 1))
	}
}

func TestDropColumn(t *testing.T) {
	b := New()
	_ = b.AddColumn("a", KindRaw, []interface{}{"1"})
	_ = b.AddColumn("b", KindRaw, []interface{}{"x"})
	b.DropColumn("a")
	if b.HasColumn("a") {
		t.Fatal("column a should have been dropped")
	}
	b.DropColumn("missing") // absence is not an error.
	names := b.ColumnNames()
	if len(names) != 1 || names[0] != "b" {
		t.Fatal("unexpected column names: ", names)
	}
}

func TestAbsentIsDistinctFromEmptyString(t *testing.T) {
	if IsAbsent("") {
		t.Fatal("empty string must not be treated as absent")
	}
	if IsAbsent(0) {
		t.Fatal("zero must not be treated as absent")
	}
	if !IsAbsent(nil) {
		t.Fatal("nil must be treated as absent")
	}
}

func TestRow(t *testing.T) {
	b := New()
	_ = b.AddColumn("a", KindRaw, []interface{}{"1", "2"})
	_ = b.AddColumn("b", KindRaw, []interface{}{nil, "y"})
	row := b.Row(0)
	if row["a"] != "1" || row["b"] != nil {
		t.Fatal("unexpected row contents: ", row)
	}
}
