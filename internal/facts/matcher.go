package facts

import (
	"context"
	"strconv"

	"forecast-bot/internal/catalog"
	"forecast-bot/internal/common/logger"
)

// PriorPeriodCount is how many fact-only periods precede the forecast.
const PriorPeriodCount = 3

// shortTermDigits is the fixed precision of quarterly and budget facts.
const shortTermDigits = 1

type Fact struct {
	Value  float64
	Digits int
}

func (f Fact) Format(l Locale) string {
	return l.Format(f.Value, f.Digits)
}

// Matcher resolves the facts sheet for a document and looks values up in it.
type Matcher struct {
	source Source
	logger logger.Logger
}

func NewMatcher(source Source, log logger.Logger) *Matcher {
	return &Matcher{
		source: source,
		logger: log.WithFields(map[string]interface{}{"component": "facts-matcher"}),
	}
}

// SheetName picks the facts sheet for doc: КСП for short-term forecasts, the
// "<code> <unit>" pair for budget documents and Все otherwise.
func SheetName(doc catalog.Document, unit catalog.Unit) string {
	switch doc.Kind {
	case catalog.KindShortTerm:
		return SheetShortTerm
	case catalog.KindBudget:
		return doc.BudgetCode + " " + unit.Sheet()
	case catalog.KindPeriodic, catalog.KindBaseline, catalog.KindAnalystNote, catalog.KindMonthly:
		return SheetAll
	}
	return SheetAll
}

// Lookup is a facts sheet bound to one document, valid for one report build.
type Lookup struct {
	sheet  *Sheet
	kind   catalog.Kind
	digits int // fixed precision, or -1 to use the sheet's column
}

// Lookup loads the sheet doc reconciles against.
func (m *Matcher) Lookup(ctx context.Context, author catalog.Author, doc catalog.Document, unit catalog.Unit) (*Lookup, error) {
	name := SheetName(doc, unit)
	sheet, err := m.source.Sheet(ctx, name)
	if err != nil {
		m.logger.Warn("Facts sheet unavailable", map[string]interface{}{
			"sheet":    name,
			"author":   author.String(),
			"document": doc.Name,
			"error":    err.Error(),
		})
		return nil, err
	}

	digits := -1
	if doc.Kind == catalog.KindShortTerm || author == catalog.AuthorMinFin {
		digits = shortTermDigits
	}
	return &Lookup{sheet: sheet, kind: doc.Kind, digits: digits}, nil
}

func (l *Lookup) Sheet() *Sheet {
	return l.sheet
}

// Match returns the fact for (raw, period) with its display precision.
func (l *Lookup) Match(raw, period string) (Fact, bool) {
	v, ok := l.sheet.Value(raw, period)
	if !ok {
		return Fact{}, false
	}
	digits := l.digits
	if digits < 0 {
		digits = l.sheet.Precision(raw)
	}
	return Fact{Value: v, Digits: digits}, true
}

// PriorPeriods lists the fact-only periods shown before the first forecast
// column: the preceding quarters of the КСП sheet for short-term forecasts,
// otherwise up to three preceding calendar years present in the sheet.
func (l *Lookup) PriorPeriods(firstForecast string) []string {
	if l.kind == catalog.KindShortTerm {
		return l.sheet.PeriodsBefore(firstForecast, PriorPeriodCount)
	}
	year, err := strconv.Atoi(firstForecast)
	if err != nil {
		return nil
	}
	out := make([]string, 0, PriorPeriodCount)
	for y := year - PriorPeriodCount; y < year; y++ {
		p := strconv.Itoa(y)
		if l.sheet.HasPeriod(p) {
			out = append(out, p)
		}
	}
	return out
}
