package dialog

import (
	"context"
	"fmt"

	"forecast-bot/internal/catalog"
)

const (
	textGreeting        = "Привет! Я бот, который помнит числа из официальных прогнозов. Чьи прогнозы Вас интересуют?"
	textRepromptAuthor  = "Пожалуйста, выберите автора прогнозов из предложенных вариантов:"
	textRepromptYear    = "Пожалуйста, выберите год из предложенных вариантов:"
	textRepromptDoc     = "Пожалуйста, выберите документ из предложенных вариантов:"
	textRepromptScen    = "Пожалуйста, выберите сценарий из предложенных вариантов:"
	textRepromptGroup   = "Пожалуйста, выберите группу переменных из предложенных вариантов:"
	textRepromptCommand = "Пожалуйста, выберите команду из предложенных вариантов:"

	textPickerHelp = "Выберите переменные (можно выбрать несколько):\n" +
		"✅ - уже выбрано\n" +
		"Нажмите на переменную, чтобы добавить/убрать её из выбора\n\n"
	textPicker       = "Выберите переменные:"
	textPickerCount  = "Выберите переменные:\n\nВыбрано переменных: %d"
	textCleared      = "Выбор очищен"
	textShown        = "Показаны прогнозы для %d переменных. Выберите дальнейшее действие"
	textSessionEnded = "Сессия завершена, для начала напишите /start"
	textCancelled    = "Действие отменено. Для начала введите /start"
	textStale        = "Этот выбор больше не актуален"
)

// choices is the legal input of one prompt and the keyboard offering it.
type choices struct {
	legal    map[string]bool
	keyboard [][]string
}

func newChoices(keyboard [][]string) choices {
	c := choices{legal: make(map[string]bool), keyboard: keyboard}
	for _, row := range keyboard {
		for _, label := range row {
			c.legal[label] = true
		}
	}
	return c
}

func (c choices) accepts(input string) bool {
	return c.legal[input]
}

// ==========================
// Authors
// ==========================

func (m *Machine) authorChoices(ctx context.Context) (choices, error) {
	authors, err := m.catalog.ListAuthors(ctx)
	if err != nil {
		return choices{}, err
	}
	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = a.String()
	}
	return newChoices(rows(names, 2)), nil
}

// ==========================
// Years
// ==========================

func (m *Machine) yearChoices(ctx context.Context, sel *Selection) (choices, error) {
	years, err := m.catalog.ListYears(ctx, sel.Author)
	if err != nil {
		return choices{}, err
	}
	var keyboard [][]string
	if sel.Author.SupportsLatestBaseline() {
		keyboard = append(keyboard, []string{LatestBaseline})
	}
	keyboard = append(keyboard, rows(years, 3)...)
	keyboard = append(keyboard, []string{BackToAuthor})
	return newChoices(keyboard), nil
}

func yearPrompt(sel *Selection) string {
	return fmt.Sprintf("Вы выбрали автора прогноза - %s. Документ какого года Вас интересует?", sel.Author)
}

// ==========================
// Documents
// ==========================

func (m *Machine) documentChoices(ctx context.Context, sel *Selection) (choices, []catalog.Document, error) {
	docs, err := m.catalog.ListDocuments(ctx, sel.Author, sel.Year)
	if err != nil {
		return choices{}, nil, err
	}
	keyboard := append(documentRows(sel.Author, docs), []string{BackToYear})
	return newChoices(keyboard), docs, nil
}

// documentRows lays documents out the way each author's list reads best.
func documentRows(author catalog.Author, docs []catalog.Document) [][]string {
	switch author {
	case catalog.AuthorBankOfRussia:
		var periodic, baselines, shortTerm []string
		for _, d := range docs {
			switch d.Kind {
			case catalog.KindPeriodic:
				periodic = append(periodic, d.Name)
			case catalog.KindBaseline:
				baselines = append(baselines, d.Name)
			case catalog.KindShortTerm:
				shortTerm = append(shortTerm, d.Name)
			case catalog.KindBudget, catalog.KindAnalystNote, catalog.KindMonthly:
			}
		}
		out := rows(periodic, 1)
		out = append(out, rows(baselines, 2)...)
		return append(out, rows(shortTerm, 2)...)
	case catalog.AuthorAnalysts:
		return rows(documentNames(docs), 4)
	}
	return rows(documentNames(docs), 1)
}

func documentNames(docs []catalog.Document) []string {
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}
	return names
}

func documentPrompt(sel *Selection) string {
	if sel.Author == catalog.AuthorAnalysts {
		return fmt.Sprintf("Какому СД за %s год предшествует прогноз аналитиков?", sel.Year)
	}
	return fmt.Sprintf("Вы выбрали прогноз %s за %s год. Какой документ Вам нужен?", sel.Author, sel.Year)
}

func documentReprompt(sel *Selection) string {
	if sel.Author == catalog.AuthorAnalysts {
		return fmt.Sprintf("Пожалуйста, выберите, какому СД за %s год предшествует прогноз аналитиков из предложенных вариантов:", sel.Year)
	}
	return textRepromptDoc
}

// ==========================
// Scenarios
// ==========================

func (m *Machine) scenarioChoices(ctx context.Context, sel *Selection) (choices, error) {
	scenarios, err := m.catalog.ListScenarios(ctx, sel.Author, sel.Year)
	if err != nil {
		return choices{}, err
	}
	keyboard := append(rows(scenarios, 2), []string{BackToDocument})
	return newChoices(keyboard), nil
}

func scenarioPrompt(sel *Selection) string {
	return fmt.Sprintf("Вы выбрали %s. Какой сценарий Вам нужен?", sel.Location().Title())
}

// ==========================
// Variable groups
// ==========================

func (m *Machine) groupChoices(ctx context.Context, sel *Selection) (choices, []catalog.Group, error) {
	groups, err := m.catalog.ListVariableGroups(ctx, sel.Location())
	if err != nil {
		return choices{}, nil, err
	}
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	keyboard := append(rows(names, 1), []string{groupBack(sel)})
	return newChoices(keyboard), groups, nil
}

// groupBack is the way out of group selection.
func groupBack(sel *Selection) string {
	switch {
	case sel.Document.Kind == catalog.KindPeriodic:
		return BackToScenario
	case sel.Bulk:
		return BackToYear
	}
	return BackToDocument
}

func groupPrompt(sel *Selection) string {
	if sel.Document.Kind == catalog.KindPeriodic {
		return fmt.Sprintf("Вы выбрали сценарий \"%s\" из %s. Переменные из какого набора Вас интересуют?",
			sel.Scenario, sel.Location().Title())
	}
	return fmt.Sprintf("Вы выбрали %s. Переменные из какого набора Вас интересуют?", sel.Location().Title())
}

// ==========================
// Variables
// ==========================

// variablesBack is the way out of the picker.
func variablesBack(sel *Selection) string {
	if sel.Document.Kind.SingleTable() {
		return BackToDocument
	}
	return BackToGroup
}

func pickerIntro(sel *Selection) string {
	title := sel.Location().Title()
	var head string
	switch sel.Document.Kind {
	case catalog.KindPeriodic:
		head = fmt.Sprintf("Вы выбрали группу переменных \"%s\" из %s сценария \"%s\".", sel.Group.Name, title, sel.Scenario)
	case catalog.KindAnalystNote:
		head = fmt.Sprintf("Вы выбрали группу переменных \"%s\" из прогноза аналитиков перед СД %s.", sel.Group.Name, title)
	case catalog.KindBaseline, catalog.KindMonthly:
		head = fmt.Sprintf("Вы выбрали группу переменных \"%s\" из %s.", sel.Group.Name, title)
	case catalog.KindShortTerm, catalog.KindBudget:
		head = fmt.Sprintf("Вы выбрали %s.", title)
	}
	return head + "\n\n" + textPickerHelp
}

// pickerKeyboard renders the inline picker. Callback data refers to
// variables by index to stay within the 64-byte limit.
func pickerKeyboard(s *Session) [][]Button {
	var out [][]Button
	labels := s.Variables.Labels()
	for i := 0; i < len(labels); i += 2 {
		var row []Button
		for j := i; j < i+2 && j < len(labels); j++ {
			text := labels[j]
			if s.Picks.Contains(labels[j]) {
				text = "✅ " + text
			}
			row = append(row, Button{Text: text, Data: fmt.Sprintf("%s%d", callbackToggle, j)})
		}
		out = append(out, row)
	}
	out = append(out,
		[]Button{
			{Text: "📊 Показать выбранные", Data: callbackShow},
			{Text: "🗑️ Очистить выбор", Data: callbackClear},
		},
		[]Button{{Text: "📥 Выгрузить всё", Data: callbackExport}},
	)
	return out
}

// ==========================
// Post action
// ==========================

func postActionMenu(sel *Selection) [][]string {
	switch {
	case !sel.HasGroup():
		return [][]string{{Restart}, {Finish}}
	case sel.Bulk:
		return [][]string{{Restart}, {AnotherGroup}, {Finish}}
	case sel.Document.Kind.SingleTable():
		return [][]string{{AnotherVariable}, {Restart}, {Finish}}
	}
	return [][]string{{AnotherVariable}, {AnotherGroup}, {Restart}, {Finish}}
}
