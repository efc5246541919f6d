package report

import (
	"context"
	"fmt"
	"strconv"

	"forecast-bot/internal/catalog"
	apperrors "forecast-bot/internal/common/errors"
	"forecast-bot/internal/facts"
	"forecast-bot/internal/table"
)

const (
	missingFact      = "-"
	exportFootnote   = "\n*В РПБ6"
	factColumnSuffix = " (факт)"
)

// Export is a finished spreadsheet artifact.
type Export struct {
	FileName string
	Caption  string
	Content  []byte
	Table    *table.Table
}

// GroupTitle is how the group of loc is named in files and captions.
func GroupTitle(loc catalog.Location) string {
	if loc.Document.Kind.SingleTable() || loc.Group.Name == catalog.NoGroup || loc.Group.Name == "" {
		return loc.Document.Name
	}
	return loc.Group.Name
}

// FileName is "<group>-<doc>-<year>.xlsx"; single-table documents drop the
// group.
func FileName(loc catalog.Location) string {
	if loc.Document.Kind.SingleTable() {
		return loc.Title() + ".xlsx"
	}
	return fmt.Sprintf("%s-%s.xlsx", GroupTitle(loc), loc.Title())
}

// BuildExport renders every variable of loc into one wide workbook.
func (a *Assembler) BuildExport(ctx context.Context, loc catalog.Location) (export *Export, err error) {
	ctx, log, finish := a.start(ctx, ModeExport, loc)
	defer func() { err = finish(err) }()

	sections, err := a.load(ctx, loc)
	if err != nil {
		return nil, err
	}

	var wide *table.Table
	for i, s := range sections {
		part := a.exportSection(loc, s)
		if i == 0 {
			wide = part
			continue
		}
		title := append([]string{s.unit.Suffix()}, part.Header[1:]...)
		wide.Rows = append(wide.Rows, make([]string, len(wide.Header)), title)
		wide.Rows = append(wide.Rows, part.Rows...)
	}
	if len(sections) > 1 {
		wide.Header[0] = sections[0].unit.Suffix()
	}
	wide = table.New(wide.Header, wide.Rows)

	content, err := table.WriteWorkbook(table.SheetName(GroupTitle(loc)), wide)
	if err != nil {
		return nil, apperrors.NewReportBuildFailedError(err)
	}

	caption := fmt.Sprintf("Направляю файл c прогнозом группы переменных %s из %s", GroupTitle(loc), loc.Title())
	if sections[0].correction.Footnote {
		caption += exportFootnote
	}

	log.Debug("Export encoded", map[string]interface{}{"rows": len(wide.Rows), "bytes": len(content)})
	return &Export{
		FileName: FileName(loc),
		Caption:  caption,
		Content:  content,
		Table:    wide,
	}, nil
}

func (a *Assembler) exportSection(loc catalog.Location, s section) *table.Table {
	columns := s.table.Columns()
	prior := exportPriorPeriods(loc.Document.Kind, s.facts, columns[0])

	header := make([]string, 0, 1+len(prior)+len(columns))
	header = append(header, s.table.Header[0])
	for _, p := range prior {
		header = append(header, p+factColumnSuffix)
	}
	header = append(header, columns...)

	rows := make([][]string, 0, len(s.table.Rows))
	for _, raw := range nonEmpty(s.table.Labels()) {
		row := make([]string, 0, len(header))
		row = append(row, raw)
		for _, p := range prior {
			if f, ok := s.facts.Match(raw, p); ok {
				row = append(row, f.Format(a.locale))
			} else {
				row = append(row, missingFact)
			}
		}
		for _, col := range columns {
			cell, ok := s.table.Cell(raw, col)
			if !ok {
				row = append(row, "")
				continue
			}
			v := a.forecastValue(loc.Author, s.table, col, cell)
			if f, ok := a.annotation(loc, s, raw, col, cell); ok {
				v += fmt.Sprintf(" (факт: %s)", f.Format(a.locale))
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return table.New(header, rows)
}

// exportPriorPeriods always yields three leading columns for annual data,
// oldest first, whether or not the facts sheet has them.
func exportPriorPeriods(kind catalog.Kind, lookup *facts.Lookup, first string) []string {
	if kind == catalog.KindShortTerm {
		return lookup.PriorPeriods(first)
	}
	year, err := strconv.Atoi(first)
	if err != nil {
		return nil
	}
	out := make([]string, 0, facts.PriorPeriodCount)
	for y := year - facts.PriorPeriodCount; y < year; y++ {
		out = append(out, strconv.Itoa(y))
	}
	return out
}
