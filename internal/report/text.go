package report

import (
	"context"
	"fmt"
	"strings"

	"forecast-bot/internal/alias"
	"forecast-bot/internal/catalog"
	apperrors "forecast-bot/internal/common/errors"
	"forecast-bot/internal/facts"
	"forecast-bot/internal/table"
)

const factMarker = "факт"

// BuildText renders one message per display label, in the given order.
func (a *Assembler) BuildText(ctx context.Context, loc catalog.Location, labels []string) (messages []string, err error) {
	ctx, log, finish := a.start(ctx, ModeText, loc)
	defer func() { err = finish(err) }()

	if len(labels) == 0 {
		return nil, apperrors.NewEmptySelectionError()
	}
	sections, err := a.load(ctx, loc)
	if err != nil {
		return nil, err
	}
	mapping := alias.Normalize(nonEmpty(sections[0].table.Labels()))

	messages = make([]string, 0, len(labels))
	for _, display := range labels {
		raw, ok := mapping.Raw(display)
		if !ok {
			return nil, apperrors.NewInvalidSelectionError(display)
		}
		messages = append(messages, a.variableText(loc, sections, display, raw))
	}
	log.Debug("Rendered variables", map[string]interface{}{"count": len(messages)})
	return messages, nil
}

// Header names the variable and where it comes from.
func Header(loc catalog.Location, raw string) string {
	switch loc.Document.Kind {
	case catalog.KindPeriodic:
		return fmt.Sprintf("Прогноз \"%s\" из %s сценария \"%s\":", raw, loc.Title(), loc.Scenario)
	case catalog.KindAnalystNote:
		return fmt.Sprintf("Прогноз \"%s\" из прогноза аналитиков перед СД %s:", raw, loc.Title())
	case catalog.KindBaseline, catalog.KindShortTerm, catalog.KindBudget, catalog.KindMonthly:
		return fmt.Sprintf("Прогноз \"%s\" из %s:", raw, loc.Title())
	}
	return fmt.Sprintf("Прогноз \"%s\" из %s:", raw, loc.Title())
}

func (a *Assembler) variableText(loc catalog.Location, sections []section, display, raw string) string {
	lines := []string{Header(loc, raw)}

	if loc.Author == catalog.AuthorAnalysts && display == LongTermGrowth {
		t := sections[0].table
		if cell, ok := t.Cell(raw, t.Columns()[0]); ok {
			lines = append(lines, a.rawCell(t, t.Columns()[0], cell))
		}
		return strings.Join(lines, "\n")
	}

	for i, s := range sections {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, a.sectionLines(loc, s, raw)...)
	}
	if sections[0].correction.Footnote {
		lines = append(lines, facts.Footnote)
	}
	return strings.Join(lines, "\n")
}

func (a *Assembler) sectionLines(loc catalog.Location, s section, raw string) []string {
	suffix := ""
	if u := s.unit.Suffix(); u != "" {
		suffix = " " + u
	}
	columns := s.table.Columns()

	var lines []string
	for _, p := range s.facts.PriorPeriods(columns[0]) {
		if f, ok := s.facts.Match(raw, p); ok {
			lines = append(lines, fmt.Sprintf("%s: %s%s (факт)", p, f.Format(a.locale), suffix))
		}
	}
	for _, col := range columns {
		cell, ok := s.table.Cell(raw, col)
		if !ok {
			continue
		}
		v := a.forecastValue(loc.Author, s.table, col, cell)
		if f, ok := a.annotation(loc, s, raw, col, cell); ok {
			lines = append(lines, fmt.Sprintf("%s: %s%s (факт: %s)", col, v, suffix, f.Format(a.locale)))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s%s", col, v, suffix))
	}
	return lines
}

// forecastValue is the displayed numeral of a forecast cell: ministries are
// rounded to one digit, everything else is shown as published.
func (a *Assembler) forecastValue(author catalog.Author, t *table.Table, col, cell string) string {
	if author.RoundsForecasts() {
		if v, ok := table.ParseNumber(cell); ok {
			return a.locale.Format(v, 1)
		}
	}
	return a.rawCell(t, col, cell)
}

func (a *Assembler) rawCell(t *table.Table, col, cell string) string {
	if t.FloatColumn(col) {
		return a.locale.RawFloat(cell)
	}
	return a.locale.Raw(cell)
}

// annotation finds the fact shown next to a forecast cell. Short-term cells
// that already say they are facts are left alone.
func (a *Assembler) annotation(loc catalog.Location, s section, raw, col, cell string) (facts.Fact, bool) {
	if loc.Document.Kind == catalog.KindShortTerm && strings.Contains(cell, factMarker) {
		return facts.Fact{}, false
	}
	return s.facts.Match(raw, col)
}
