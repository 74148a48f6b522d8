package dataset

import (
	"fmt"
	"strings"
)

// ColumnType classifies a column after inference.
type ColumnType string

const (
	TypeUnknown     ColumnType = "unknown"
	TypeNumeric     ColumnType = "numeric"
	TypeCategorical ColumnType = "categorical"
	TypeDate        ColumnType = "date"
)

// Column pairs a name with its inferred type.
type Column struct {
	Name string
	Type ColumnType
}

// Table is an in-memory tabular dataset. Cells stay raw strings so a table
// round-trips through CSV byte-for-byte; typed access goes through the
// parsing helpers.
type Table struct {
	Columns []Column
	Rows    [][]string
}

// NewTable constructs an empty table with the given column names, all typed
// unknown until InferTypes runs.
func NewTable(names ...string) *Table {
	cols := make([]Column, len(names))
	for i, name := range names {
		cols[i] = Column{Name: name, Type: TypeUnknown}
	}
	return &Table{Columns: cols}
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
	return len(t.Columns)
}

// ColumnNames returns the ordered column names.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// ColumnValues returns a copy of one column's cells.
func (t *Table) ColumnValues(idx int) []string {
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values
}

// NumericValues parses one column's cells. present[i] is false for missing
// cells; their slot in values is 0. A non-missing cell that fails to parse is
// an error carrying the row number.
func (t *Table) NumericValues(idx int) (values []float64, present []bool, err error) {
	values = make([]float64, len(t.Rows))
	present = make([]bool, len(t.Rows))
	for i, row := range t.Rows {
		cell := row[idx]
		if IsMissing(cell) {
			continue
		}
		v, perr := ParseNumeric(cell)
		if perr != nil {
			return nil, nil, fmt.Errorf("row %d column %q: %w", i+1, t.Columns[idx].Name, perr)
		}
		values[i] = v
		present[i] = true
	}
	return values, present, nil
}

// AppendColumn adds a column with one value per existing row.
func (t *Table) AppendColumn(col Column, values []string) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("append column %q: %d values for %d rows", col.Name, len(values), len(t.Rows))
	}
	if t.HasColumn(col.Name) {
		return fmt.Errorf("append column %q: column already exists", col.Name)
	}
	t.Columns = append(t.Columns, col)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], values[i])
	}
	return nil
}

// SetCell overwrites one cell.
func (t *Table) SetCell(row, col int, value string) {
	t.Rows[row][col] = value
}

// FilterRows keeps only the rows where keep[i] is true.
func (t *Table) FilterRows(keep []bool) {
	filtered := t.Rows[:0]
	for i, row := range t.Rows {
		if keep[i] {
			filtered = append(filtered, row)
		}
	}
	t.Rows = filtered
}

// Clone deep-copies the table.
func (t *Table) Clone() *Table {
	clone := &Table{
		Columns: make([]Column, len(t.Columns)),
		Rows:    make([][]string, len(t.Rows)),
	}
	copy(clone.Columns, t.Columns)
	for i, row := range t.Rows {
		cloned := make([]string, len(row))
		copy(cloned, row)
		clone.Rows[i] = cloned
	}
	return clone
}

// RowKey returns an identity string for exact-duplicate detection. Cells are
// joined with a unit separator so adjacent cells cannot run together.
func (t *Table) RowKey(row int) string {
	return strings.Join(t.Rows[row], "\x1f")
}
