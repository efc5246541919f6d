package facts

import (
	"strconv"
	"strings"

	"forecast-bot/internal/catalog"
	"forecast-bot/internal/table"
)

// BalanceOfPaymentsGroup is the variable group published in the BPM5 sign
// convention by the Bank of Russia.
const BalanceOfPaymentsGroup = "Платежный баланс"

// Footnote marks reports whose balance-of-payments values follow BPM6.
const Footnote = "* В РПБ6"

const importsMarker = "Импорт"

var pairedBalanceVariables = map[string]struct{}{
	"Импорт товаров":                              {},
	"Импорт услуг":                                {},
	"Импорт товаров и услуг":                      {},
	"Финансовый счет (искл. резервы)":             {},
	"Сальдо ФС по госсектору":                     {},
	"Сальдо ФС по частному сектору (вкл. ошибки)": {},
	"Сальдо ФС по частному сектору":               {},
}

// Correction describes what CorrectBalanceOfPayments did.
type Correction struct {
	Footnote bool
	Periods  []string // forecast columns whose signs were flipped
}

// AppliesTo reports whether the sign correction is defined for the group.
func AppliesTo(author catalog.Author, group string) bool {
	return author == catalog.AuthorBankOfRussia && group == BalanceOfPaymentsGroup
}

// CorrectBalanceOfPayments returns a copy of t in which, for every forecast
// column where the imports row is negative, the paired balance variables are
// negated in that column. t itself is never modified.
func CorrectBalanceOfPayments(author catalog.Author, group string, t *table.Table) (*table.Table, Correction) {
	if !AppliesTo(author, group) {
		return t, Correction{}
	}
	out := t.Clone()
	corr := Correction{Footnote: true}

	imports := -1
	for i, label := range out.Labels() {
		if strings.Contains(label, importsMarker) {
			imports = i
		}
	}
	if imports < 0 {
		return out, corr
	}

	for col := 1; col < len(out.Header); col++ {
		v, ok := table.ParseNumber(out.Rows[imports][col])
		if !ok || v >= 0 {
			continue
		}
		for _, row := range out.Rows {
			if _, paired := pairedBalanceVariables[row[0]]; paired {
				row[col] = negate(row[col])
			}
		}
		corr.Periods = append(corr.Periods, out.Header[col])
	}
	return out, corr
}

func negate(cell string) string {
	v, ok := table.ParseNumber(cell)
	if !ok || v == 0 {
		return cell
	}
	return strconv.FormatFloat(-v, 'f', -1, 64)
}
