package types

// Frame is a parsed but unvalidated tabular dataset. Cells hold nil for a
// missing value, or a string, bool, or Go numeric value.
type Frame struct {
	Columns []string
	Rows    [][]any
}

// Index returns the position of the first column named name, or -1.
func (f Frame) Index(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Has reports whether the frame has a column named name.
func (f Frame) Has(name string) bool { return f.Index(name) >= 0 }

// Cell returns the value at row r, column c. Cells past the end of a short
// row read as missing.
func (f Frame) Cell(r, c int) any {
	if c < 0 || r < 0 || r >= len(f.Rows) {
		return nil
	}
	row := f.Rows[r]
	if c >= len(row) {
		return nil
	}
	return row[c]
}

// Len returns the number of rows.
func (f Frame) Len() int { return len(f.Rows) }
