// Package table holds an in-memory, column-named table of heterogeneous
// cells. A nil cell is a null.
package table

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Table is an ordered set of named columns over a list of rows.
type Table struct {
	cols  []string
	index map[string]int
	rows  [][]any
}

// New creates an empty table with the given column names.
func New(cols ...string) *Table {
	t := &Table{index: make(map[string]int, len(cols))}
	for _, c := range cols {
		t.index[c] = len(t.cols)
		t.cols = append(t.cols, c)
	}
	return t
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	copy(out, t.cols)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.cols) }

// HasColumn reports whether the table has a column called name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Append adds a row. The row must have one cell per column.
func (t *Table) Append(cells ...any) error {
	if len(cells) != len(t.cols) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(t.cols))
	}
	row := make([]any, len(cells))
	copy(row, cells)
	t.rows = append(t.rows, row)
	return nil
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []any {
	out := make([]any, len(t.cols))
	copy(out, t.rows[i])
	return out
}

// Column returns a copy of the named column's cells, or nil and false.
func (t *Table) Column(name string) ([]any, bool) {
	j, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]any, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[j]
	}
	return out, true
}

// Value returns the cell at row i of the named column. Missing columns read as null.
func (t *Table) Value(i int, col string) any {
	j, ok := t.index[col]
	if !ok {
		return nil
	}
	return t.rows[i][j]
}

// Str returns the cell at row i of col formatted as text. ok is false for nulls.
func (t *Table) Str(i int, col string) (s string, ok bool) {
	v := t.Value(i, col)
	if v == nil {
		return "", false
	}
	return Format(v), true
}

// Set overwrites a single cell.
func (t *Table) Set(i int, col string, v any) error {
	j, ok := t.index[col]
	if !ok {
		return fmt.Errorf("no column %q", col)
	}
	t.rows[i][j] = v
	return nil
}

// AddColumn appends a column. vals must have one cell per row.
// An existing column with the same name is overwritten in place.
func (t *Table) AddColumn(name string, vals []any) error {
	if len(vals) != len(t.rows) {
		return fmt.Errorf("column %q has %d cells, table has %d rows", name, len(vals), len(t.rows))
	}
	if j, ok := t.index[name]; ok {
		for i := range t.rows {
			t.rows[i][j] = vals[i]
		}
		return nil
	}
	t.index[name] = len(t.cols)
	t.cols = append(t.cols, name)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], vals[i])
	}
	return nil
}

// Select returns a new table with only the named columns, in the given order.
func (t *Table) Select(cols ...string) (*Table, error) {
	idx := make([]int, len(cols))
	for k, c := range cols {
		j, ok := t.index[c]
		if !ok {
			return nil, fmt.Errorf("no column %q", c)
		}
		idx[k] = j
	}
	out := New(cols...)
	out.rows = make([][]any, len(t.rows))
	for i, r := range t.rows {
		row := make([]any, len(idx))
		for k, j := range idx {
			row[k] = r[j]
		}
		out.rows[i] = row
	}
	return out, nil
}

// Filter returns a new table with the rows for which keep returns true.
func (t *Table) Filter(keep func(i int) bool) *Table {
	out := New(t.cols...)
	for i := range t.rows {
		if keep(i) {
			out.rows = append(out.rows, t.Row(i))
		}
	}
	return out
}

// Clone returns a deep copy of the table structure. Cells are copied by value.
func (t *Table) Clone() *Table {
	return t.Filter(func(int) bool { return true })
}

// ErrColumnMismatch is returned by Concat when tables disagree on columns.
var ErrColumnMismatch = errors.New("tables have different columns")

// Concat stacks tables that share the same column set. Columns are aligned by
// name using the first table's order. Concat of nothing is an empty table.
func Concat(ts ...*Table) (*Table, error) {
	if len(ts) == 0 {
		return New(), nil
	}
	out := ts[0].Clone()
	for _, t := range ts[1:] {
		if t.Width() != out.Width() {
			return nil, ErrColumnMismatch
		}
		for _, c := range out.cols {
			if !t.HasColumn(c) {
				return nil, fmt.Errorf("%w: missing %q", ErrColumnMismatch, c)
			}
		}
		for i := range t.rows {
			row := make([]any, len(out.cols))
			for j, c := range out.cols {
				row[j] = t.Value(i, c)
			}
			out.rows = append(out.rows, row)
		}
	}
	return out, nil
}

// Format renders a cell as text the way the CSV writer does.
// Null renders as the empty string.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
