package dialog

import (
	"errors"
	"sync"

	"forecast-bot/internal/catalog"
)

// ErrOutOfOrder is returned when a selection field is set before the one it
// depends on.
var ErrOutOfOrder = errors.New("selection field set before its predecessor")

// Selection is the path chosen so far. Fields fill strictly in order and
// every setter drops the fields after it.
type Selection struct {
	Author   catalog.Author
	Year     string
	Document catalog.Document
	Scenario string
	Group    catalog.Group

	// Bulk is set by the latest-baseline shortcut: picking a group exports
	// every variable instead of opening the picker.
	Bulk bool

	hasDocument bool
	hasGroup    bool
}

func (s *Selection) Reset() {
	*s = Selection{}
}

func (s *Selection) SetAuthor(a catalog.Author) {
	*s = Selection{Author: a}
}

func (s *Selection) SetYear(year string) error {
	if s.Author == "" {
		return ErrOutOfOrder
	}
	*s = Selection{Author: s.Author, Year: year}
	return nil
}

func (s *Selection) SetDocument(doc catalog.Document) error {
	if s.Year == "" {
		return ErrOutOfOrder
	}
	*s = Selection{Author: s.Author, Year: s.Year, Document: doc, hasDocument: true}
	return nil
}

func (s *Selection) SetScenario(scenario string) error {
	if !s.hasDocument {
		return ErrOutOfOrder
	}
	s.Scenario = scenario
	s.Group = catalog.Group{}
	s.hasGroup = false
	return nil
}

func (s *Selection) SetGroup(g catalog.Group) error {
	if !s.hasDocument || s.Scenario == "" {
		return ErrOutOfOrder
	}
	s.Group = g
	s.hasGroup = true
	return nil
}

// ClearGroup steps back to group selection, keeping the bulk mode.
func (s *Selection) ClearGroup() {
	s.Group = catalog.Group{}
	s.hasGroup = false
}

// ApplyLatestBaseline fills year, document and scenario in one step and
// switches to bulk mode.
func (s *Selection) ApplyLatestBaseline(year string, doc catalog.Document) error {
	if s.Author == "" {
		return ErrOutOfOrder
	}
	*s = Selection{
		Author:      s.Author,
		Year:        year,
		Document:    doc,
		Scenario:    catalog.NoScenario,
		Bulk:        true,
		hasDocument: true,
	}
	return nil
}

func (s *Selection) HasDocument() bool { return s.hasDocument }
func (s *Selection) HasGroup() bool    { return s.hasGroup }

func (s *Selection) Location() catalog.Location {
	return catalog.Location{
		Author:   s.Author,
		Year:     s.Year,
		Document: s.Document,
		Scenario: s.Scenario,
		Group:    s.Group,
	}
}

// SelectionSet is the ordered set of variables picked in the multi-select
// picker.
type SelectionSet struct {
	mu    sync.Mutex
	items []string
}

// Toggle adds label, or removes it when already present. It reports whether
// label is selected afterwards.
func (s *SelectionSet) Toggle(label string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.items {
		if it == label {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return false
		}
	}
	s.items = append(s.items, label)
	return true
}

func (s *SelectionSet) Contains(label string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it == label {
			return true
		}
	}
	return false
}

func (s *SelectionSet) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
}

func (s *SelectionSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Items returns the selected labels in the order they were picked.
func (s *SelectionSet) Items() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.items...)
}
