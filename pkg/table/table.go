// Package table provides the in-memory tabular data model used by tabclean:
// ordered, uniquely named columns of nullable cells aligned by row position.
//
// Tables are treated as values. Operations that change rows or columns
// return a new *Table and leave the receiver untouched.
package table

import (
	"fmt"

	"github.com/ajitpratap0/tabclean/pkg/errors"
)

// Column is an ordered sequence of cells.
type Column []Value

// NullColumn returns a column of n null cells.
func NullColumn(n int) Column {
	return make(Column, n)
}

// TextColumn builds a column from strings. Convenient in tests.
func TextColumn(values ...string) Column {
	col := make(Column, len(values))
	for i, s := range values {
		col[i] = Text(s)
	}
	return col
}

// NullCount returns the number of null cells in the column.
func (c Column) NullCount() int {
	n := 0
	for _, v := range c {
		if v.IsNull() {
			n++
		}
	}
	return n
}

// Clone returns a copy of the column.
func (c Column) Clone() Column {
	out := make(Column, len(c))
	copy(out, c)
	return out
}

// Table is an ordered set of named columns sharing one row count.
type Table struct {
	rows    int
	names   []string
	columns []Column
	index   map[string]int
}

// New returns an empty table with the given row count.
func New(rows int) *Table {
	return &Table{
		rows:  rows,
		index: make(map[string]int),
	}
}

// Rows returns the number of rows.
func (t *Table) Rows() int { return t.rows }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.names) }

// Names returns the column names in order. The slice must not be modified.
func (t *Table) Names() []string { return t.names }

// Has reports whether a column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column. The returned slice is shared with the
// table and must not be modified.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// ColumnAt returns the i-th column.
func (t *Table) ColumnAt(i int) Column { return t.columns[i] }

// Row returns the cells of row i in column order.
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.columns))
	for c, col := range t.columns {
		row[c] = col[i]
	}
	return row
}

// AddColumn appends a column. The column must have the table's row count and
// the name must be new.
func (t *Table) AddColumn(name string, col Column) error {
	if len(col) != t.rows {
		return errors.New(errors.ErrorTypeData, "column length mismatch").
			WithDetail("column", name).
			WithDetail("want", t.rows).
			WithDetail("got", len(col))
	}
	if _, exists := t.index[name]; exists {
		return errors.New(errors.ErrorTypeData, fmt.Sprintf("duplicate column %q", name)).
			WithDetail("column", name)
	}
	t.index[name] = len(t.names)
	t.names = append(t.names, name)
	t.columns = append(t.columns, col)
	return nil
}

// WithColumn returns a copy of the table in which name holds col. An existing
// column keeps its position; a new one is appended.
func (t *Table) WithColumn(name string, col Column) (*Table, error) {
	if len(col) != t.rows {
		return nil, errors.New(errors.ErrorTypeData, "column length mismatch").
			WithDetail("column", name).
			WithDetail("want", t.rows).
			WithDetail("got", len(col))
	}
	out := t.shallowCopy()
	if i, ok := out.index[name]; ok {
		out.columns[i] = col
		return out, nil
	}
	out.index[name] = len(out.names)
	out.names = append(out.names, name)
	out.columns = append(out.columns, col)
	return out, nil
}

// SelectRows returns a new table holding the given rows in the given order.
func (t *Table) SelectRows(rows []int) *Table {
	out := &Table{
		rows:    len(rows),
		names:   append([]string(nil), t.names...),
		columns: make([]Column, len(t.columns)),
		index:   make(map[string]int, len(t.index)),
	}
	for name, i := range t.index {
		out.index[name] = i
	}
	for c, col := range t.columns {
		sel := make(Column, len(rows))
		for i, r := range rows {
			sel[i] = col[r]
		}
		out.columns[c] = sel
	}
	return out
}

// Clone returns a deep copy of the table's cell slices.
func (t *Table) Clone() *Table {
	out := t.shallowCopy()
	for i, col := range out.columns {
		out.columns[i] = col.Clone()
	}
	return out
}

// NullCounts returns the number of null cells per column.
func (t *Table) NullCounts() map[string]int {
	counts := make(map[string]int, len(t.names))
	for i, name := range t.names {
		counts[name] = t.columns[i].NullCount()
	}
	return counts
}

func (t *Table) shallowCopy() *Table {
	out := &Table{
		rows:    t.rows,
		names:   append([]string(nil), t.names...),
		columns: append([]Column(nil), t.columns...),
		index:   make(map[string]int, len(t.index)),
	}
	for name, i := range t.index {
		out.index[name] = i
	}
	return out
}

// FromColumns builds a table from parallel name and column slices.
func FromColumns(names []string, cols []Column) (*Table, error) {
	if len(names) != len(cols) {
		return nil, errors.New(errors.ErrorTypeData, "names and columns differ in length")
	}
	rows := 0
	if len(cols) > 0 {
		rows = len(cols[0])
	}
	t := New(rows)
	for i, name := range names {
		if err := t.AddColumn(name, cols[i]); err != nil {
			return nil, err
		}
	}
	return t, nil
}
