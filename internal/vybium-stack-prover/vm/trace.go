package vm

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

// Trace is a rectangular matrix of field elements, one row per cycle
type Trace struct {
	width int
	rows  [][]field.Element
}

// NewTrace creates a zero-filled trace
func NewTrace(width, length int) *Trace {
	rows := make([][]field.Element, length)
	for i := range rows {
		row := make([]field.Element, width)
		for j := range row {
			row[j] = field.Zero
		}
		rows[i] = row
	}
	return &Trace{width: width, rows: rows}
}

// TraceFromRows wraps existing rows. All rows must have the same width.
func TraceFromRows(rows [][]field.Element) (*Trace, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("trace has no rows")
	}
	width := len(rows[0])
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has width %d, expected %d", i, len(row), width)
		}
	}
	return &Trace{width: width, rows: rows}, nil
}

// Width returns the number of columns
func (t *Trace) Width() int {
	return t.width
}

// Length returns the number of rows
func (t *Trace) Length() int {
	return len(t.rows)
}

// Row returns row i. The slice is shared with the trace.
func (t *Trace) Row(i int) []field.Element {
	return t.rows[i]
}

// Get returns the value at row r, column c
func (t *Trace) Get(r, c int) field.Element {
	return t.rows[r][c]
}

// Set writes the value at row r, column c
func (t *Trace) Set(r, c int, v field.Element) {
	t.rows[r][c] = v
}

// Column copies column c out of the trace
func (t *Trace) Column(c int) []field.Element {
	col := make([]field.Element, len(t.rows))
	for i, row := range t.rows {
		col[i] = row[c]
	}
	return col
}

// Clone returns a deep copy
func (t *Trace) Clone() *Trace {
	rows := make([][]field.Element, len(t.rows))
	for i, row := range t.rows {
		rows[i] = append([]field.Element(nil), row...)
	}
	return &Trace{width: t.width, rows: rows}
}
