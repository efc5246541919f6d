// internal/catalog/document.go
package catalog

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Kind is the closed set of document variants.
type Kind int

const (
	KindPeriodic Kind = iota + 1
	KindBaseline
	KindShortTerm
	KindBudget
	KindAnalystNote
	KindMonthly
)

func (k Kind) String() string {
	switch k {
	case KindPeriodic:
		return "periodic"
	case KindBaseline:
		return "baseline"
	case KindShortTerm:
		return "short-term"
	case KindBudget:
		return "budget"
	case KindAnalystNote:
		return "analyst-note"
	case KindMonthly:
		return "monthly"
	}
	return "unknown"
}

// HasScenarios reports whether a scenario level sits between the document
// and its variable groups.
func (k Kind) HasScenarios() bool {
	return k == KindPeriodic
}

// SingleTable reports whether the document file is itself the only table,
// with no variable-group level.
func (k Kind) SingleTable() bool {
	return k == KindShortTerm || k == KindBudget
}

const (
	PeriodicEntry = "ОНДКП"

	// NoScenario and NoGroup fill the levels a document kind does not have.
	NoScenario = "-"
	NoGroup    = "-"

	baselinePrefix  = "Базовый прогноз"
	shortTermPrefix = "Краткосрочный прогноз"
	monthlyMarker   = "прогноз МЭР"
)

// Months is the display order of analyst notes.
var Months = []string{"Янв", "Фев", "Мар", "Апр", "Май", "Июн", "Июл", "Авг", "Сен", "Окт", "Ноя", "Дек"}

// Document is a parsed catalog entry. Fields beyond Kind, Name and Entry are
// only meaningful for the kinds noted.
type Document struct {
	Kind  Kind
	Name  string // display name
	Entry string // storage entry name

	// KindBaseline, KindShortTerm
	Seq      int
	SeqValid bool
	Date     string

	// KindBudget
	BudgetCode string

	// KindAnalystNote, 1-based
	Month int
}

// ParseDocument interprets a catalog entry under an author's year directory.
// Entries that do not fit the author's taxonomy report false.
func ParseDocument(author Author, e Entry) (Document, bool) {
	switch author {
	case AuthorBankOfRussia:
		if e.IsDir && e.Name == PeriodicEntry {
			return Document{Kind: KindPeriodic, Name: e.Name, Entry: e.Name}, true
		}
		kind, seq, seqOK, date, ok := splitNumbered(e.Name)
		if !ok {
			return Document{}, false
		}
		doc := Document{
			Name:     kind + "-" + date,
			Entry:    e.Name,
			Seq:      seq,
			SeqValid: seqOK,
			Date:     date,
		}
		switch {
		case e.IsDir && strings.Contains(kind, baselinePrefix):
			doc.Kind = KindBaseline
			return doc, true
		case !e.IsDir && kind == shortTermPrefix:
			doc.Kind = KindShortTerm
			return doc, true
		}

	case AuthorMinFin:
		if e.IsDir {
			return Document{}, false
		}
		base := trimTableExt(e.Name)
		code := parenCode(base)
		if code == "" {
			return Document{}, false
		}
		return Document{Kind: KindBudget, Name: base, Entry: e.Name, BudgetCode: code}, true

	case AuthorMinEcon:
		if e.IsDir && strings.Contains(e.Name, monthlyMarker) {
			return Document{Kind: KindMonthly, Name: e.Name, Entry: e.Name}, true
		}

	case AuthorAnalysts:
		if !e.IsDir {
			return Document{}, false
		}
		if m := monthIndex(e.Name); m > 0 {
			return Document{Kind: KindAnalystNote, Name: e.Name, Entry: e.Name, Month: m}, true
		}
	}
	return Document{}, false
}

// splitNumbered parses "<kind>-<seq>-<date>[.xlsx]".
func splitNumbered(name string) (kind string, seq int, seqOK bool, date string, ok bool) {
	parts := strings.SplitN(name, "-", 3)
	if len(parts) < 3 {
		return "", 0, false, "", false
	}
	kind = strings.TrimSpace(parts[0])
	date = trimTableExt(strings.TrimSpace(parts[2]))
	if kind == "" || date == "" {
		return "", 0, false, "", false
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	return kind, n, err == nil, date, true
}

func trimTableExt(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xls", ".xlsm":
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}

// parenCode extracts "ОНБП" from "Бюджетная система (ОНБП)".
func parenCode(name string) string {
	open := strings.LastIndex(name, "(")
	end := strings.LastIndex(name, ")")
	if open < 0 || end <= open+1 {
		return ""
	}
	return strings.TrimSpace(name[open+1 : end])
}

func monthIndex(name string) int {
	for i, m := range Months {
		if m == name {
			return i + 1
		}
	}
	return 0
}

// Unit selects one of the two unit sheets of a budget document.
type Unit int

const (
	UnitNone Unit = iota
	UnitCurrency
	UnitShare
)

// Sheet is the sheet name inside the budget workbook.
func (u Unit) Sheet() string {
	switch u {
	case UnitCurrency:
		return "трлн руб"
	case UnitShare:
		return "% ВВП"
	}
	return ""
}

// Suffix is appended to displayed values.
func (u Unit) Suffix() string {
	switch u {
	case UnitCurrency:
		return "трлн руб."
	case UnitShare:
		return "% ВВП"
	}
	return ""
}

// Units lists the unit sheets to render for d, in display order.
func (d Document) Units() []Unit {
	if d.Kind == KindBudget {
		return []Unit{UnitCurrency, UnitShare}
	}
	return []Unit{UnitNone}
}

// Group is one variable table under a document (and scenario).
type Group struct {
	Name  string
	Entry string
}

// Location is a fully resolved path to one variable table.
type Location struct {
	Author   Author
	Year     string
	Document Document
	Scenario string
	Group    Group
}

// GroupDir is the directory that holds the variable groups. Single-table
// documents have none.
func (l Location) GroupDir() []string {
	switch l.Document.Kind {
	case KindPeriodic:
		return []string{string(l.Author), l.Year, l.Document.Entry, l.Scenario}
	case KindBaseline, KindAnalystNote, KindMonthly:
		return []string{string(l.Author), l.Year, l.Document.Entry}
	case KindShortTerm, KindBudget:
		return nil
	}
	return nil
}

// TableSegments addresses the table the location resolves to.
func (l Location) TableSegments() []string {
	if l.Document.Kind.SingleTable() {
		return []string{string(l.Author), l.Year, l.Document.Entry}
	}
	return append(l.GroupDir(), l.Group.Entry)
}

// Title is "<document>-<year>", the way documents are referred to in replies.
func (l Location) Title() string {
	return l.Document.Name + "-" + l.Year
}
