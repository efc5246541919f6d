package facts

import (
	"strconv"
	"strings"

	"forecast-bot/internal/table"
)

// Locale renders numerals with a fixed decimal separator.
type Locale struct {
	Decimal string
}

func NewLocale(decimal string) Locale {
	if decimal == "" {
		decimal = ","
	}
	return Locale{Decimal: decimal}
}

// Format prints v with exactly digits decimals; digits <= 0 gives an integer
// literal.
func (l Locale) Format(v float64, digits int) string {
	if digits < 0 {
		digits = 0
	}
	s := strconv.FormatFloat(v, 'f', digits, 64)
	if isNegativeZero(s) {
		s = s[1:]
	}
	return l.localize(s)
}

// Raw re-renders a forecast cell as written, swapping the decimal separator
// and keeping the cell's own number of decimals. Cells that are not a plain
// number only get their points replaced.
func (l Locale) Raw(cell string) string {
	return l.raw(cell, 0)
}

// RawFloat is Raw for cells of a real-valued column, where whole numbers
// still carry one decimal ("2" becomes "2,0").
func (l Locale) RawFloat(cell string) string {
	return l.raw(cell, 1)
}

func (l Locale) raw(cell string, minDigits int) string {
	cell = strings.TrimSpace(cell)
	v, ok := table.ParseNumber(cell)
	if !ok {
		if l.Decimal == "" {
			return cell
		}
		return strings.ReplaceAll(cell, ".", l.Decimal)
	}
	if strings.ContainsAny(cell, "eE") {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if minDigits > 0 && !strings.Contains(s, ".") {
			return l.Format(v, minDigits)
		}
		return l.localize(s)
	}
	digits := sourceDigits(cell)
	if digits < minDigits {
		digits = minDigits
	}
	return l.Format(v, digits)
}

// sourceDigits counts the digits after the decimal separator of a numeral.
func sourceDigits(cell string) int {
	i := strings.LastIndexAny(cell, ".,")
	if i < 0 {
		return 0
	}
	return len(cell) - i - 1
}

func (l Locale) localize(s string) string {
	if l.Decimal == "." || l.Decimal == "" {
		return s
	}
	return strings.Replace(s, ".", l.Decimal, 1)
}

func isNegativeZero(s string) bool {
	if !strings.HasPrefix(s, "-") {
		return false
	}
	return strings.Trim(s[1:], "0.") == ""
}
