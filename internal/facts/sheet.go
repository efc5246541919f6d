// Package facts reconciles forecast values with realized ("fact") values.
// Facts live in named sheets keyed by variable label and period (a year, or
// a quarter for short-term data), with a per-variable rounding precision.
package facts

import (
	"math"

	apperrors "forecast-bot/internal/common/errors"
	"forecast-bot/internal/table"
)

const (
	LabelColumn      = "Показатель"
	PrecisionColumn  = "Округление"
	DefaultPrecision = 1
)

// Sheet names of the facts workbook.
const (
	SheetAll       = "Все"
	SheetShortTerm = "КСП"
)

// Sheet is one decoded facts sheet.
type Sheet struct {
	Name      string
	table     *table.Table
	precision int // column index of Округление, or -1
}

// NewSheet wraps a decoded table. Column 0 holds the variable labels.
func NewSheet(name string, t *table.Table) (*Sheet, error) {
	if t == nil || len(t.Header) == 0 {
		return nil, apperrors.NewMissingColumnError(name, LabelColumn)
	}
	return &Sheet{Name: name, table: t, precision: t.ColumnIndex(PrecisionColumn)}, nil
}

// Value returns the numeric fact for (label, period). Blank or non-numeric
// cells are reported as absent.
func (s *Sheet) Value(label, period string) (float64, bool) {
	if period == PrecisionColumn {
		return 0, false
	}
	cell, ok := s.table.Cell(label, period)
	if !ok {
		return 0, false
	}
	return table.ParseNumber(cell)
}

// Precision returns the rounding digits of label, DefaultPrecision when the
// column or the cell is missing.
func (s *Sheet) Precision(label string) int {
	if s.precision < 0 {
		return DefaultPrecision
	}
	cell, ok := s.table.Cell(label, PrecisionColumn)
	if !ok {
		return DefaultPrecision
	}
	v, ok := table.ParseNumber(cell)
	if !ok || v < 0 {
		return DefaultPrecision
	}
	return int(math.Round(v))
}

// Periods lists the period columns in sheet order.
func (s *Sheet) Periods() []string {
	out := make([]string, 0, len(s.table.Header))
	for i, h := range s.table.Header {
		if i == 0 || i == s.precision || h == "" {
			continue
		}
		out = append(out, h)
	}
	return out
}

func (s *Sheet) HasPeriod(period string) bool {
	for _, p := range s.Periods() {
		if p == period {
			return true
		}
	}
	return false
}

// PeriodsBefore returns up to n period columns immediately preceding period,
// in sheet order. Nothing is returned when period is not a column.
func (s *Sheet) PeriodsBefore(period string, n int) []string {
	periods := s.Periods()
	for i, p := range periods {
		if p != period {
			continue
		}
		start := i - n
		if start < 0 {
			start = 0
		}
		return append([]string(nil), periods[start:i]...)
	}
	return nil
}
