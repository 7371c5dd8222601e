// Package batch holds the in-memory table that moves between the acquirers,
// the cleaning engine and the table writer. A Batch is a set of named,
// equal-length columns; row i across all columns describes one logical record.
// Absent values are represented by nil cells, which is distinct from an empty
// string or zero, matching how null database values travel as nil interfaces.
package batch

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is the declared value kind of a Column.
type Kind int

const (
	KindRaw Kind = iota // untyped values straight from an acquirer.
	KindString
	KindInt
	KindFloat
	KindDate
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDate:
		return "date"
	case KindBool:
		return "bool"
	default:
		return "raw"
	}
}

// Column is a single named column's values plus its declared kind.
type Column struct {
	Kind   Kind
	Values []interface{} // nil cells represent the absent value.
}

// Batch is an ordered collection of equal-length columns.
type Batch struct {
	names []string
	cols  map[string]*Column
}

func New() *Batch {
	return &Batch{
		names: make([]string, 0),
		cols:  make(map[string]*Column),
	}
}

// AddColumn appends a named column to the Batch.
// Column names must be unique and all columns must share the same row count.
func (b *Batch) AddColumn(name string, kind Kind, values []interface{}) error {
	if _, ok := b.cols[name]; ok {
		return errors.Errorf("duplicate column name %q", name)
	}
	if len(b.names) > 0 && len(values) != b.NumRows() {
		return errors.Errorf("column %q has %v rows; batch has %v", name, len(values), b.NumRows())
	}
	b.names = append(b.names, name)
	b.cols[name] = &Column{Kind: kind, Values: values}
	return nil
}

// NumRows returns the shared row count of all columns.
func (b *Batch) NumRows() int {
	if len(b.names) == 0 {
		return 0
	}
	return len(b.cols[b.names[0]].Values)
}

func (b *Batch) NumColumns() int {
	return len(b.names)
}

// ColumnNames returns the column names in their original order.
func (b *Batch) ColumnNames() []string {
	retval := make([]string, len(b.names))
	copy(retval, b.names)
	return retval
}

func (b *Batch) HasColumn(name string) bool {
	_, ok := b.cols[name]
	return ok
}

// Column returns the named column, or false if it does not exist.
func (b *Batch) Column(name string) (*Column, bool) {
	c, ok := b.cols[name]
	return c, ok
}

// DropColumn removes the named column. Dropping a missing column is a no-op.
func (b *Batch) DropColumn(name string) {
	if _, ok := b.cols[name]; !ok {
		return
	}
	delete(b.cols, name)
	for i, n := range b.names {
		if n == name {
			b.names = append(b.names[:i], b.names[i+1:]...)
			break
		}
	}
}

// Cell returns the value at the given column and row.
func (b *Batch) Cell(name string, row int) interface{} {
	c, ok := b.cols[name]
	if !ok {
		panic(fmt.Sprintf("invalid column name %q supplied while trying to fetch value from batch", name))
	}
	return c.Values[row]
}

// SetKind updates the declared kind of an existing column.
func (b *Batch) SetKind(name string, kind Kind) {
	if c, ok := b.cols[name]; ok {
		c.Kind = kind
	}
}

// Row returns a map of column name to value for one row.
func (b *Batch) Row(row int) map[string]interface{} {
	m := make(map[string]interface{}, len(b.names))
	for _, n := range b.names {
		m[n] = b.cols[n].Values[row]
	}
	return m
}

// FilterRows keeps only the rows for which keep returns true.
// The filter is applied identically to every column so row alignment is
// preserved. It returns the number of rows dropped.
func (b *Batch) FilterRows(keep func(row int) bool) int {
	numRows := b.NumRows()
	keepIdx := make([]int, 0, numRows)
	for i := 0; i < numRows; i++ {
		if keep(i) {
			keepIdx = append(keepIdx, i)
		}
	}
	if len(keepIdx) == numRows { // if nothing was dropped...
		return 0
	}
	for _, n := range b.names {
		c := b.cols[n]
		values := make([]interface{}, len(keepIdx))
		for j, i := range keepIdx {
			values[j] = c.Values[i]
		}
		c.Values = values
	}
	return numRows - len(keepIdx)
}

// IsAbsent reports whether a cell value is the canonical absent-value marker.
func IsAbsent(v interface{}) bool {
	return v == nil
}
