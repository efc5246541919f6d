// Package alias turns the raw row labels of a forecast table into the labels
// shown to the user, collapsing variables that different documents name
// differently.
package alias

type rewrite struct {
	raw     string
	display string
}

// rewrites is applied in order; when two raw labels collapse onto one display
// label the later rewrite supplies the raw label.
var rewrites = []rewrite{
	{"Баланс первичных и вторичных доходов", "Первичные и вторичные доходы"},
	{"Финансовый счет (искл. резервы)", "Финансовый счет"},
	{"Финансовый счет (включая резервы)", "Финансовый счет"},
	{"Сальдо ФС по частному сектору (вкл. ошибки)", "Сальдо ФС по частному сектору"},
	{"Сальдо фин. операций частного сектора", "Сальдо фин. операций частн. сектора"},
	{"Чистое приобретение активов, искл. резервы", "Чистое приобретение активов"},
	{"Экспортная цена на российскую нефть", "Цена на российскую нефть"},
	{"Баланс консолидированного бюджета", "Консолидированный бюджет"},
	{"Среднегодовой уровень безработицы", "Уровень безработицы"},
	{"Ставка, ФРС США, верхняя граница диапазона, %, в среднем за год", "Ставка, ФРС США, среднегодовая"},
	{"Ставка, ЕЦБ депозитная, %, в среднем за год", "Ставка, ЕЦБ, среднегодовая"},
	{"Базовые нефтегазовые доходы", "Баз. нефтегаз. доходы"},
	{"Дополнительные нефтегазовые доходы", "Доп. нефтегаз. доходы"},
}

// rank returns the display label for raw and its priority: 0 for labels kept
// verbatim, 1+i for the i-th rewrite.
func rank(raw string) (string, int) {
	for i, rw := range rewrites {
		if rw.raw == raw {
			return rw.display, i + 1
		}
	}
	return raw, 0
}

// Mapping is an ordered display -> raw label mapping.
type Mapping struct {
	labels []string
	raw    map[string]string
	prio   map[string]int
}

// Normalize builds the mapping for one table's labels. Order is first-seen
// order; rewritten labels keep the position of their raw label.
func Normalize(rawLabels []string) *Mapping {
	m := &Mapping{
		labels: make([]string, 0, len(rawLabels)),
		raw:    make(map[string]string, len(rawLabels)),
		prio:   make(map[string]int, len(rawLabels)),
	}
	for _, raw := range rawLabels {
		display, p := rank(raw)
		prev, seen := m.prio[display]
		if !seen {
			m.labels = append(m.labels, display)
		}
		if !seen || p > prev {
			m.raw[display] = raw
			m.prio[display] = p
		}
	}
	return m
}

// Labels returns the display labels in order.
func (m *Mapping) Labels() []string {
	return append([]string(nil), m.labels...)
}

// Raw returns the raw table label behind a display label.
func (m *Mapping) Raw(display string) (string, bool) {
	r, ok := m.raw[display]
	return r, ok
}

func (m *Mapping) Len() int {
	return len(m.labels)
}

// At returns the i-th display label.
func (m *Mapping) At(i int) (string, bool) {
	if i < 0 || i >= len(m.labels) {
		return "", false
	}
	return m.labels[i], true
}
