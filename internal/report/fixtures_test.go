// internal/report/fixtures_test.go
package report

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"forecast-bot/internal/catalog"
	"forecast-bot/internal/common/logger"
	"forecast-bot/internal/facts"
	"forecast-bot/internal/table"
)

// ==========================
// Test Helper Functions
// ==========================

const testRoot = "Данные"

func writeSheets(t *testing.T, fs afero.Fs, sheets []table.Sheet, segments ...string) {
	t.Helper()
	data, err := table.WriteSheets(sheets)
	require.NoError(t, err)
	p := filepath.Join(append([]string{testRoot}, segments...)...)
	require.NoError(t, fs.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, afero.WriteFile(fs, p, data, 0o644))
}

func writeTable(t *testing.T, fs afero.Fs, tbl *table.Table, segments ...string) {
	t.Helper()
	writeSheets(t, fs, []table.Sheet{{Name: "Лист1", Table: tbl}}, segments...)
}

func newReportFS(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()

	writeTable(t, fs, table.New(
		[]string{"Показатель", "2024", "2025", "2026"},
		[][]string{
			{"Экспорт товаров", "430", "420", "425"},
			{"Импорт товаров", "-300", "310", "315"},
			{"Финансовый счет (искл. резервы)", "-50", "40", "-45.5"},
			{"Сальдо текущего счета", "50.5", "60", "55"},
		},
	), "Банк России", "2024", "ОНДКП", "Обычный прогноз", "Платежный баланс.xlsx")

	writeTable(t, fs, table.New(
		[]string{"Показатель", "2024", "2025", "2026"},
		[][]string{
			{"ВВП", "3.5-4.0", "0.5-1.5", "1.5-2.5"},
			{"Среднегодовой уровень безработицы", "2.5", "2.8", ""},
		},
	), "Банк России", "2024", "Базовый прогноз-3-окт", "Основные показатели.xlsx")

	writeTable(t, fs, table.New(
		[]string{"Показатель", "I кв. 2025", "II кв. 2025"},
		[][]string{
			{"ВВП", "1.5 (факт)", "1.2"},
		},
	), "Банк России", "2024", "Краткосрочный прогноз-1-апр.xlsx")

	writeSheets(t, fs, []table.Sheet{
		{Name: "трлн руб", Table: table.New(
			[]string{"Показатель", "2025", "2026"},
			[][]string{{"Доходы", "40.296", "42.1"}},
		)},
		{Name: "% ВВП", Table: table.New(
			[]string{"Показатель", "2025", "2026"},
			[][]string{{"Доходы", "18.23", "17.9"}},
		)},
	}, "Минфин", "2024", "Федеральный бюджет (ФЗоФБ).xlsx")

	writeTable(t, fs, table.New(
		[]string{"Показатель", "2024", "2025"},
		[][]string{{"ВВП", "2.345", "2.5"}},
	), "МЭР", "2024", "Сценарные условия прогноз МЭР", "Основные показатели.xlsx")

	writeTable(t, fs, table.New(
		[]string{"Показатель", "2025", "2026", "2027"},
		[][]string{
			{"Ключевая ставка", "17.5", "13", "8"},
			{"Долгосрочный рост ВВП", "1.8", "", ""},
		},
	), "Аналитики", "2024", "Окт", "Ключевые показатели.xlsx")

	writeSheets(t, fs, []table.Sheet{
		{Name: facts.SheetAll, Table: table.New(
			[]string{"Показатель", "2021", "2022", "2023", "2024", "Округление"},
			[][]string{
				{"Финансовый счет (искл. резервы)", "100", "200", "55.123", "48.7", "1"},
				{"Импорт товаров", "290", "250", "285", "299", "0"},
				{"Сальдо текущего счета", "120", "237.7", "50.1", "", "1"},
				{"ВВП", "5.9", "-1.2", "3.6", "4.1", "1"},
				{"Среднегодовой уровень безработицы", "4.8", "3.9", "3.2", "2.52", "2"},
				{"Ключевая ставка", "6", "7.75", "16", "21", "0"},
			},
		)},
		{Name: facts.SheetShortTerm, Table: table.New(
			[]string{"Показатель", "I кв. 2024", "II кв. 2024", "III кв. 2024", "IV кв. 2024", "I кв. 2025", "II кв. 2025"},
			[][]string{{"ВВП", "5.4", "4.1", "3.1", "4.5", "1.44", "1.26"}},
		)},
		{Name: "ФЗоФБ трлн руб", Table: table.New(
			[]string{"Показатель", "2022", "2023", "2024"},
			[][]string{{"Доходы", "27.82", "29.12", "36.7"}},
		)},
		{Name: "ФЗоФБ % ВВП", Table: table.New(
			[]string{"Показатель", "2022", "2023", "2024"},
			[][]string{{"Доходы", "18.5", "16.6", "18.9"}},
		)},
	}, "Факты.xlsx")
	return fs
}

type fixture struct {
	resolver  *catalog.Resolver
	assembler *Assembler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewTestLogger(t)
	store := catalog.NewFSStore(newReportFS(t), testRoot)
	resolver := catalog.NewResolver(store, log)
	matcher := facts.NewMatcher(facts.NewWorkbookSource(store, "Факты.xlsx"), log)
	return &fixture{
		resolver:  resolver,
		assembler: NewAssembler(resolver, matcher, facts.NewLocale(","), log),
	}
}

// locate resolves a location the way the dialogue does.
func (f *fixture) locate(t *testing.T, author catalog.Author, year, document, scenario, group string) catalog.Location {
	t.Helper()
	doc, ok, err := f.resolver.FindDocument(context.Background(), author, year, document)
	require.NoError(t, err)
	require.True(t, ok, "document %s", document)

	loc := catalog.Location{Author: author, Year: year, Document: doc, Scenario: scenario}
	if doc.Kind.SingleTable() {
		loc.Scenario = catalog.NoScenario
	}
	g, ok, err := f.resolver.FindGroup(context.Background(), loc, group)
	require.NoError(t, err)
	require.True(t, ok, "group %s", group)
	loc.Group = g
	return loc
}
