// internal/catalog/fixtures_test.go
package catalog

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"forecast-bot/internal/common/logger"
	"forecast-bot/internal/table"
)

// ==========================
// Test Helper Functions
// ==========================

const testRoot = "Данные"

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

// authorKinds is the document taxonomy of each author.
var authorKinds = map[Author][]Kind{
	AuthorBankOfRussia: {KindPeriodic, KindBaseline, KindShortTerm},
	AuthorMinFin:       {KindBudget},
	AuthorMinEcon:      {KindMonthly},
	AuthorAnalysts:     {KindAnalystNote},
}

func mkdir(t *testing.T, fs afero.Fs, segments ...string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Join(append([]string{testRoot}, segments...)...), 0o755))
}

func writeFile(t *testing.T, fs afero.Fs, data []byte, segments ...string) {
	t.Helper()
	p := filepath.Join(append([]string{testRoot}, segments...)...)
	require.NoError(t, fs.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, afero.WriteFile(fs, p, data, 0o644))
}

func writeTable(t *testing.T, fs afero.Fs, tbl *table.Table, segments ...string) {
	t.Helper()
	data, err := table.WriteWorkbook("Лист1", tbl)
	require.NoError(t, err)
	writeFile(t, fs, data, segments...)
}

func balanceTable() *table.Table {
	return table.New(
		[]string{"Показатель", "2024", "2025", "2026"},
		[][]string{
			{"Экспорт товаров", "430", "420", "425"},
			{"Импорт товаров", "-300", "310", "-315"},
			{"Финансовый счет (искл. резервы)", "-50", "40", "-45"},
		},
	)
}

// newCatalogFS lays out a small catalog covering every document kind.
func newCatalogFS(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()

	bor := string(AuthorBankOfRussia)
	writeTable(t, fs, balanceTable(), bor, "2024", PeriodicEntry, "Обычный прогноз", "Платежный баланс.xlsx")
	writeTable(t, fs, balanceTable(), bor, "2024", PeriodicEntry, "Обычный прогноз", "Основные показатели.xlsx")
	writeTable(t, fs, balanceTable(), bor, "2024", PeriodicEntry, "Обычный прогноз", "Бюджет.xlsx")
	writeTable(t, fs, balanceTable(), bor, "2024", PeriodicEntry, "Жесткий сценарий", "Основные показатели.xlsx")
	writeTable(t, fs, balanceTable(), bor, "2024", "Базовый прогноз-3-окт", "Основные показатели.xlsx")
	writeTable(t, fs, balanceTable(), bor, "2024", "Базовый прогноз-1-фев", "Основные показатели.xlsx")
	writeTable(t, fs, balanceTable(), bor, "2024", "Базовый прогноз-х-июн", "Основные показатели.xlsx")
	writeTable(t, fs, balanceTable(), bor, "2024", "Краткосрочный прогноз-2-июль.xlsx")
	writeTable(t, fs, balanceTable(), bor, "2024", "Краткосрочный прогноз-1-апр.xlsx")
	writeTable(t, fs, balanceTable(), bor, "2023", "Базовый прогноз-4-окт", "Основные показатели.xlsx")
	mkdir(t, fs, bor, "архив")

	writeTable(t, fs, balanceTable(), string(AuthorMinFin), "2024", "Бюджетная система (ОНБП).xlsx")
	writeTable(t, fs, balanceTable(), string(AuthorMinFin), "2024", "Федеральный бюджет (ФЗоФБ).xlsx")
	writeFile(t, fs, []byte("notes"), string(AuthorMinFin), "2024", "notes.txt")

	writeTable(t, fs, balanceTable(), string(AuthorMinEcon), "2024", "Сценарные условия прогноз МЭР", "Основные показатели.xlsx")
	writeTable(t, fs, balanceTable(), string(AuthorMinEcon), "2024", "Базовый прогноз МЭР", "Основные показатели.xlsx")
	writeFile(t, fs, []byte("x"), string(AuthorMinEcon), "2024", "readme.txt")

	for _, m := range []string{"Окт", "Фев", "Июл"} {
		writeTable(t, fs, balanceTable(), string(AuthorAnalysts), "2024", m, "Ключевые показатели.xlsx")
	}
	writeTable(t, fs, balanceTable(), string(AuthorAnalysts), "2024", "Прочее", "Ключевые показатели.xlsx")

	mkdir(t, fs, "Черновики")
	writeTable(t, fs, balanceTable(), "Факты.xlsx")
	return fs
}
