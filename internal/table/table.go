// Package table holds the in-memory tabular type shared by the join
// pipeline and the dashboard aggregations: an ordered list of named
// columns over rows of immutable cells.
package table

import (
	"fmt"
)

// MissingColumnError is returned whenever a caller names a column the table
// does not have.
type MissingColumnError struct {
	Column  string
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q not found (have %q)", e.Column, e.Columns)
}

// Table is never modified after construction. Every transform returns a new
// Table; rows that a transform does not change are shared with the input.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// New builds a table from column names and rows. Each row must have exactly
// one cell per column.
func New(columns []string, rows [][]Value) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, ok := index[c]; ok {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		index[c] = i
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(r), len(columns))
		}
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{columns: cols, index: index, rows: rows}, nil
}

// FromRecords builds a text table from string records. Empty cells are
// missing.
func FromRecords(columns []string, records [][]string) (*Table, error) {
	rows := make([][]Value, 0, len(records))
	for i, rec := range records {
		if len(rec) > len(columns) {
			return nil, fmt.Errorf("record %d has %d fields, header has %d", i, len(rec), len(columns))
		}
		row := make([]Value, len(columns))
		for j, cell := range rec {
			if cell != "" {
				row[j] = Text(cell)
			}
		}
		rows = append(rows, row)
	}
	return New(columns, rows)
}

func (t *Table) Columns() []string {
	cols := make([]string, len(t.columns))
	copy(cols, t.columns)
	return cols
}

func (t *Table) Len() int { return len(t.rows) }

func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Index returns the position of column, or a *MissingColumnError.
func (t *Table) Index(column string) (int, error) {
	i, ok := t.index[column]
	if !ok {
		return 0, &MissingColumnError{Column: column, Columns: t.Columns()}
	}
	return i, nil
}

func (t *Table) At(row, col int) Value {
	return t.rows[row][col]
}

// Get returns the cell of row under column.
func (t *Table) Get(row int, column string) (Value, error) {
	i, err := t.Index(column)
	if err != nil {
		return Missing, err
	}
	return t.rows[row][i], nil
}

// Column returns a copy of every cell in column.
func (t *Table) Column(column string) ([]Value, error) {
	i, err := t.Index(column)
	if err != nil {
		return nil, err
	}
	vals := make([]Value, len(t.rows))
	for r, row := range t.rows {
		vals[r] = row[i]
	}
	return vals, nil
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.rows[i]))
	copy(row, t.rows[i])
	return row
}

// Filter keeps the rows for which keep returns true, in order.
func (t *Table) Filter(keep func(row int) bool) *Table {
	rows := make([][]Value, 0, len(t.rows))
	for i, r := range t.rows {
		if keep(i) {
			rows = append(rows, r)
		}
	}
	return &Table{columns: t.columns, index: t.index, rows: rows}
}

// Pick returns the rows at the given positions, in the given order.
func (t *Table) Pick(positions []int) *Table {
	rows := make([][]Value, len(positions))
	for i, p := range positions {
		rows[i] = t.rows[p]
	}
	return &Table{columns: t.columns, index: t.index, rows: rows}
}

// WithColumn replaces column with vals, or appends it when the table does
// not have it yet.
func (t *Table) WithColumn(column string, vals []Value) (*Table, error) {
	if len(vals) != len(t.rows) {
		return nil, fmt.Errorf("column %q has %d cells, table has %d rows", column, len(vals), len(t.rows))
	}
	pos, exists := t.index[column]
	cols := t.columns
	if !exists {
		cols = append(t.Columns(), column)
		pos = len(cols) - 1
	}
	rows := make([][]Value, len(t.rows))
	for i, r := range t.rows {
		row := make([]Value, len(cols))
		copy(row, r)
		row[pos] = vals[i]
		rows[i] = row
	}
	return New(cols, rows)
}

// Select keeps only the named columns, in the given order.
func (t *Table) Select(columns ...string) (*Table, error) {
	positions := make([]int, len(columns))
	for i, c := range columns {
		p, err := t.Index(c)
		if err != nil {
			return nil, err
		}
		positions[i] = p
	}
	rows := make([][]Value, len(t.rows))
	for i, r := range t.rows {
		row := make([]Value, len(positions))
		for j, p := range positions {
			row[j] = r[p]
		}
		rows[i] = row
	}
	return New(columns, rows)
}

// Drop removes the named columns.
func (t *Table) Drop(columns ...string) (*Table, error) {
	drop := make(map[string]bool, len(columns))
	for _, c := range columns {
		if !t.Has(c) {
			return nil, &MissingColumnError{Column: c, Columns: t.Columns()}
		}
		drop[c] = true
	}
	var keep []string
	for _, c := range t.columns {
		if !drop[c] {
			keep = append(keep, c)
		}
	}
	return t.Select(keep...)
}

// Rename applies from→to renames. Names absent from the table are ignored,
// so one mapping can serve tables with different shapes. A rename that would
// collide with another column is an error.
func (t *Table) Rename(mapping map[string]string) (*Table, error) {
	cols := t.Columns()
	for i, c := range cols {
		if to, ok := mapping[c]; ok {
			cols[i] = to
		}
	}
	out, err := New(cols, t.rows)
	if err != nil {
		return nil, fmt.Errorf("renaming columns: %w", err)
	}
	return out, nil
}
