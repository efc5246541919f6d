// internal/table/table.go
package table

import (
	"math"
	"strconv"
	"strings"
)

// Table is a rectangular sheet of string cells. Header[0] names the label
// column; every row starts with its label.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// New pads every row to the header width.
func New(header []string, rows [][]string) *Table {
	t := &Table{Header: header, Rows: make([][]string, 0, len(rows))}
	for _, row := range rows {
		t.Rows = append(t.Rows, pad(row, len(header)))
	}
	return t
}

func pad(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}

// Columns returns the value column titles (everything after the label column).
func (t *Table) Columns() []string {
	if len(t.Header) < 2 {
		return nil
	}
	return t.Header[1:]
}

// Labels returns the first cell of every row in order.
func (t *Table) Labels() []string {
	labels := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if len(row) == 0 {
			labels = append(labels, "")
			continue
		}
		labels = append(labels, row[0])
	}
	return labels
}

// ColumnIndex returns the header position of name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Row returns the first row labelled label.
func (t *Table) Row(label string) ([]string, bool) {
	for _, row := range t.Rows {
		if len(row) > 0 && row[0] == label {
			return row, true
		}
	}
	return nil, false
}

// Cell returns the cell at (label, column). Missing row, column or an empty
// cell all report false.
func (t *Table) Cell(label, column string) (string, bool) {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return "", false
	}
	row, ok := t.Row(label)
	if !ok || idx >= len(row) {
		return "", false
	}
	v := strings.TrimSpace(row[idx])
	if v == "" {
		return "", false
	}
	return v, true
}

// FloatColumn reports whether column holds real numbers: every filled cell
// is numeric, and at least one is fractional or the column has gaps. Whole
// numbers in such a column keep a decimal place when shown.
func (t *Table) FloatColumn(column string) bool {
	idx := t.ColumnIndex(column)
	if idx < 1 {
		return false
	}
	fractional, gaps, numbers := false, false, 0
	for _, row := range t.Rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		cell := ""
		if idx < len(row) {
			cell = strings.TrimSpace(row[idx])
		}
		if cell == "" {
			gaps = true
			continue
		}
		v, ok := ParseNumber(cell)
		if !ok {
			return false
		}
		numbers++
		if v != math.Trunc(v) {
			fractional = true
		}
	}
	return numbers > 0 && (fractional || gaps)
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := &Table{
		Header: append([]string(nil), t.Header...),
		Rows:   make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		c.Rows[i] = append([]string(nil), row...)
	}
	return c
}

// ParseNumber reads a spreadsheet numeral. Both '.' and ',' are accepted as
// decimal separators; blanks and NaN markers are not numbers.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.Replace(s, ",", ".", 1)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
