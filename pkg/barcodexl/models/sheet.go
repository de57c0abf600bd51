package models

// Row is one record of a source table.
type Row struct {
	// Index is the 0-based position of the row within its source table.
	Index int
	// Values holds one value per header column, in header order.
	Values []Value
}

// Table is the first sheet of a source workbook.
type Table struct {
	// Name is the source file name (no directory).
	Name string
	// Header holds the column names from the first row.
	Header []string
	// Rows holds the data rows below the header.
	Rows []Row
}

// ColumnIndex returns the 0-based position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Value returns the value of column col in row r, or an empty value when
// the row is shorter than the header.
func (r Row) Value(col int) Value {
	if col < 0 || col >= len(r.Values) {
		return Empty()
	}
	return r.Values[col]
}

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	values := make([]Value, len(r.Values))
	copy(values, r.Values)
	return Row{Index: r.Index, Values: values}
}
