// internal/dialog/machine.go
package dialog

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"forecast-bot/internal/alias"
	"forecast-bot/internal/catalog"
	apperrors "forecast-bot/internal/common/errors"
	"forecast-bot/internal/common/logger"
	"forecast-bot/internal/common/metrics"
	"forecast-bot/internal/report"
)

const (
	callbackToggle = "toggle:"
	callbackShow   = "show"
	callbackClear  = "clear"
	callbackExport = "export"
)

// Catalog is the read side of the forecast catalog the dialogue navigates.
type Catalog interface {
	ListAuthors(ctx context.Context) ([]catalog.Author, error)
	ListYears(ctx context.Context, author catalog.Author) ([]string, error)
	ListDocuments(ctx context.Context, author catalog.Author, year string) ([]catalog.Document, error)
	ListScenarios(ctx context.Context, author catalog.Author, year string) ([]string, error)
	ListVariableGroups(ctx context.Context, loc catalog.Location) ([]catalog.Group, error)
	ResolveLatestBaseline(ctx context.Context, author catalog.Author) (string, catalog.Document, error)
}

// Reports builds what the user finally asks for.
type Reports interface {
	Variables(ctx context.Context, loc catalog.Location) (*alias.Mapping, error)
	BuildText(ctx context.Context, loc catalog.Location, labels []string) ([]string, error)
	BuildExport(ctx context.Context, loc catalog.Location) (*report.Export, error)
}

// Machine routes events to the conversation they belong to and moves it
// through the selection states.
type Machine struct {
	catalog  Catalog
	reports  Reports
	sessions SessionStore
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewMachine(cat Catalog, reports Reports, sessions SessionStore, log logger.Logger) *Machine {
	log = log.WithFields(map[string]interface{}{"component": "dialog"})
	return &Machine{
		catalog:  cat,
		reports:  reports,
		sessions: sessions,
		errors:   apperrors.NewErrorHandler(log),
		logger:   log,
	}
}

// Handle processes one event of chatID. Failures the user can recover from
// are turned into replies; the returned error is set only for unexpected
// ones, alongside a reply telling the user to start over.
func (m *Machine) Handle(ctx context.Context, chatID int64, ev Event) (Reply, error) {
	switch ev.Kind {
	case EventCommand:
		return m.handleCommand(ctx, chatID, ev)
	case EventCallback:
		s, ok := m.sessions.Get(chatID)
		if !ok {
			m.logAction(chatID, nil, ev)
			return Reply{Notice: &Notice{Text: textStale}}, nil
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		m.logAction(chatID, s, ev)
		s.UpdateActivity()
		reply, err := m.handleCallback(ctx, s, ev)
		if err != nil {
			return m.fail(s, ev, err)
		}
		return reply, nil
	case EventText:
		s, ok := m.sessions.Get(chatID)
		if !ok {
			m.logAction(chatID, nil, ev)
			return Silent, nil
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		m.logAction(chatID, s, ev)
		s.UpdateActivity()
		reply, err := m.handleText(ctx, s, strings.TrimSpace(ev.Text))
		if err != nil {
			return m.fail(s, ev, err)
		}
		return reply, nil
	}
	return Silent, nil
}

func (m *Machine) handleCommand(ctx context.Context, chatID int64, ev Event) (Reply, error) {
	switch ev.Text {
	case CommandStart:
		s := m.sessions.Create(chatID)
		s.mu.Lock()
		defer s.mu.Unlock()
		m.logAction(chatID, s, ev)
		reply, err := m.start(ctx, s)
		if err != nil {
			return m.fail(s, ev, err)
		}
		return reply, nil
	case CommandCancel:
		s, ok := m.sessions.Get(chatID)
		m.logAction(chatID, s, ev)
		if !ok {
			return Silent, nil
		}
		m.sessions.Delete(chatID)
		return Reply{Messages: []Message{{Text: textCancelled, RemoveKeyboard: true}}}, nil
	}
	return Silent, nil
}

func (m *Machine) logAction(chatID int64, s *Session, ev Event) {
	fields := map[string]interface{}{
		"chat_id":  chatID,
		"user_id":  ev.UserID,
		"username": ev.Username,
		"kind":     ev.Kind.String(),
	}
	if ev.Kind == EventCallback {
		fields["data"] = ev.Data
	} else {
		fields["text"] = ev.Text
	}
	if s != nil {
		fields["state"] = s.State.String()
		fields["session_id"] = s.ID.String()
	}
	m.logger.Info("User action", fields)
}

// ==========================
// Transitions
// ==========================

// commit installs the selection the new state was computed from.
func (m *Machine) commit(s *Session, sel Selection, to State) {
	s.Selection = sel
	m.transition(s, to)
}

func (m *Machine) transition(s *Session, to State) {
	metrics.DialogTransitions.WithLabelValues(s.State.String(), to.String()).Inc()
	m.logger.Debug("State transition", map[string]interface{}{
		"chat_id": s.ChatID,
		"from":    s.State.String(),
		"to":      to.String(),
	})
	s.State = to
}

func (m *Machine) reprompt(s *Session, input, text string, keyboard [][]string) Reply {
	metrics.DialogReprompts.WithLabelValues(s.State.String()).Inc()
	err := apperrors.NewInvalidSelectionError(input)
	m.logger.Debug("Input outside legal choices", map[string]interface{}{
		"chat_id":   s.ChatID,
		"state":     s.State.String(),
		"errorCode": string(err.Code),
		"input":     input,
	})
	return textReply(text, keyboard)
}

// fail turns err into the reply for its class. Not-found leaves the state as
// it was; data errors abort to the follow-up menu. A cancelled context
// leaves the session untouched and sends nothing.
func (m *Machine) fail(s *Session, ev Event, err error) (Reply, error) {
	if stderrors.Is(err, context.Canceled) {
		m.logger.Debug("Event abandoned on shutdown", map[string]interface{}{
			"chat_id": s.ChatID,
			"state":   s.State.String(),
		})
		return Silent, nil
	}
	stdErr, text := m.errors.Handle(err, map[string]interface{}{
		"chat_id": s.ChatID,
		"state":   s.State.String(),
		"kind":    ev.Kind.String(),
	})
	code := stdErr.Code
	switch {
	case code == apperrors.ErrCodeCatalogNotFound:
		return textReply(text, nil), nil
	case code == apperrors.ErrCodeEmptySelection:
		return Reply{Notice: &Notice{Text: text, Alert: true}}, nil
	case apperrors.IsDataError(code), code == apperrors.ErrCodeInvalidSelection:
		m.transition(s, StatePostAction)
		return textReply(apperrors.MessageReportFailed, postActionMenu(&s.Selection)), nil
	}
	m.sessions.Delete(s.ChatID)
	return Reply{Messages: []Message{{Text: text, RemoveKeyboard: true}}}, err
}

// ==========================
// Text input
// ==========================

func (m *Machine) handleText(ctx context.Context, s *Session, input string) (Reply, error) {
	switch s.State {
	case StateSelectAuthor:
		return m.onAuthor(ctx, s, input)
	case StateSelectYear:
		return m.onYear(ctx, s, input)
	case StateSelectDocument:
		return m.onDocument(ctx, s, input)
	case StateSelectScenario:
		return m.onScenario(ctx, s, input)
	case StateSelectVariableGroup:
		return m.onGroup(ctx, s, input)
	case StateSelectVariables:
		return m.onVariables(ctx, s, input)
	case StatePostAction:
		return m.onPostAction(ctx, s, input)
	case StateSessionEnded:
	}
	return Silent, nil
}

func (m *Machine) start(ctx context.Context, s *Session) (Reply, error) {
	c, err := m.authorChoices(ctx)
	if err != nil {
		return Reply{}, err
	}
	s.Picks.Clear()
	s.Variables = nil
	m.commit(s, Selection{}, StateSelectAuthor)
	return textReply(textGreeting, c.keyboard), nil
}

func (m *Machine) onAuthor(ctx context.Context, s *Session, input string) (Reply, error) {
	c, err := m.authorChoices(ctx)
	if err != nil {
		return Reply{}, err
	}
	author, ok := catalog.ParseAuthor(input)
	if !ok || !c.accepts(input) {
		return m.reprompt(s, input, textRepromptAuthor, c.keyboard), nil
	}
	var next Selection
	next.SetAuthor(author)
	return m.enterYear(ctx, s, next)
}

func (m *Machine) enterYear(ctx context.Context, s *Session, next Selection) (Reply, error) {
	next.SetAuthor(next.Author)
	c, err := m.yearChoices(ctx, &next)
	if err != nil {
		return Reply{}, err
	}
	m.commit(s, next, StateSelectYear)
	return textReply(yearPrompt(&next), c.keyboard), nil
}

func (m *Machine) onYear(ctx context.Context, s *Session, input string) (Reply, error) {
	if input == BackToAuthor {
		return m.start(ctx, s)
	}
	c, err := m.yearChoices(ctx, &s.Selection)
	if err != nil {
		return Reply{}, err
	}
	if !c.accepts(input) {
		return m.reprompt(s, input, textRepromptYear, c.keyboard), nil
	}

	next := s.Selection
	if input == LatestBaseline {
		year, doc, err := m.catalog.ResolveLatestBaseline(ctx, next.Author)
		if err != nil {
			return Reply{}, err
		}
		if err := next.ApplyLatestBaseline(year, doc); err != nil {
			return Reply{}, err
		}
		return m.enterGroup(ctx, s, next)
	}
	if err := next.SetYear(input); err != nil {
		return Reply{}, err
	}
	return m.enterDocument(ctx, s, next)
}

func (m *Machine) enterDocument(ctx context.Context, s *Session, next Selection) (Reply, error) {
	if err := next.SetYear(next.Year); err != nil {
		return Reply{}, err
	}
	c, _, err := m.documentChoices(ctx, &next)
	if err != nil {
		return Reply{}, err
	}
	m.commit(s, next, StateSelectDocument)
	return textReply(documentPrompt(&next), c.keyboard), nil
}

func (m *Machine) onDocument(ctx context.Context, s *Session, input string) (Reply, error) {
	if input == BackToYear {
		return m.enterYear(ctx, s, s.Selection)
	}
	c, docs, err := m.documentChoices(ctx, &s.Selection)
	if err != nil {
		return Reply{}, err
	}
	var doc catalog.Document
	found := false
	for _, d := range docs {
		if d.Name == input {
			doc, found = d, true
			break
		}
	}
	if !found || !c.accepts(input) {
		return m.reprompt(s, input, documentReprompt(&s.Selection), c.keyboard), nil
	}

	next := s.Selection
	if err := next.SetDocument(doc); err != nil {
		return Reply{}, err
	}
	switch {
	case doc.Kind.HasScenarios():
		return m.enterScenario(ctx, s, next)
	case doc.Kind.SingleTable():
		if err := next.SetScenario(catalog.NoScenario); err != nil {
			return Reply{}, err
		}
		groups, err := m.catalog.ListVariableGroups(ctx, next.Location())
		if err != nil {
			return Reply{}, err
		}
		if len(groups) == 0 {
			return Reply{}, apperrors.NewCatalogNotFoundError(next.Location().Title())
		}
		if err := next.SetGroup(groups[0]); err != nil {
			return Reply{}, err
		}
		return m.enterPicker(ctx, s, next)
	}
	if err := next.SetScenario(catalog.NoScenario); err != nil {
		return Reply{}, err
	}
	return m.enterGroup(ctx, s, next)
}

func (m *Machine) enterScenario(ctx context.Context, s *Session, next Selection) (Reply, error) {
	if err := next.SetDocument(next.Document); err != nil {
		return Reply{}, err
	}
	c, err := m.scenarioChoices(ctx, &next)
	if err != nil {
		return Reply{}, err
	}
	m.commit(s, next, StateSelectScenario)
	return textReply(scenarioPrompt(&next), c.keyboard), nil
}

func (m *Machine) onScenario(ctx context.Context, s *Session, input string) (Reply, error) {
	if input == BackToDocument {
		return m.enterDocument(ctx, s, s.Selection)
	}
	c, err := m.scenarioChoices(ctx, &s.Selection)
	if err != nil {
		return Reply{}, err
	}
	if !c.accepts(input) {
		return m.reprompt(s, input, textRepromptScen, c.keyboard), nil
	}
	next := s.Selection
	if err := next.SetScenario(input); err != nil {
		return Reply{}, err
	}
	return m.enterGroup(ctx, s, next)
}

func (m *Machine) enterGroup(ctx context.Context, s *Session, next Selection) (Reply, error) {
	next.ClearGroup()
	c, _, err := m.groupChoices(ctx, &next)
	if err != nil {
		return Reply{}, err
	}
	s.Picks.Clear()
	m.commit(s, next, StateSelectVariableGroup)
	return textReply(groupPrompt(&next), c.keyboard), nil
}

func (m *Machine) onGroup(ctx context.Context, s *Session, input string) (Reply, error) {
	switch back := groupBack(&s.Selection); {
	case input == back && back == BackToScenario:
		return m.enterScenario(ctx, s, s.Selection)
	case input == back && back == BackToYear:
		return m.enterYear(ctx, s, s.Selection)
	case input == back:
		return m.enterDocument(ctx, s, s.Selection)
	}

	c, groups, err := m.groupChoices(ctx, &s.Selection)
	if err != nil {
		return Reply{}, err
	}
	var group catalog.Group
	found := false
	for _, g := range groups {
		if g.Name == input {
			group, found = g, true
			break
		}
	}
	if !found || !c.accepts(input) {
		return m.reprompt(s, input, textRepromptGroup, c.keyboard), nil
	}

	next := s.Selection
	if err := next.SetGroup(group); err != nil {
		return Reply{}, err
	}
	if next.Bulk {
		return m.exportGroup(ctx, s, next, 0)
	}
	return m.enterPicker(ctx, s, next)
}

// exportGroup sends the whole group as a workbook and offers the follow-up
// menu. pickerID, when set, is the picker message to remove.
func (m *Machine) exportGroup(ctx context.Context, s *Session, next Selection, pickerID int) (Reply, error) {
	export, err := m.reports.BuildExport(ctx, next.Location())
	if err != nil {
		return Reply{}, err
	}
	m.commit(s, next, StatePostAction)
	return Reply{
		DeleteMessageID: pickerID,
		Messages: []Message{{
			Text:     export.Caption,
			Keyboard: postActionMenu(&next),
			Document: &Document{Name: export.FileName, Content: export.Content},
		}},
	}, nil
}

func (m *Machine) enterPicker(ctx context.Context, s *Session, next Selection) (Reply, error) {
	mapping, err := m.reports.Variables(ctx, next.Location())
	if err != nil {
		return Reply{}, err
	}
	s.Variables = mapping
	s.Picks.Clear()
	m.commit(s, next, StateSelectVariables)
	return Reply{Messages: []Message{
		{Text: pickerIntro(&next), Keyboard: [][]string{{variablesBack(&next)}}},
		{Text: textPicker, Inline: pickerKeyboard(s)},
	}}, nil
}

func (m *Machine) onVariables(ctx context.Context, s *Session, input string) (Reply, error) {
	back := variablesBack(&s.Selection)
	if input != back {
		return m.reprompt(s, input, textPicker, [][]string{{back}}), nil
	}
	s.Picks.Clear()
	if back == BackToDocument {
		return m.enterDocument(ctx, s, s.Selection)
	}
	return m.enterGroup(ctx, s, s.Selection)
}

func (m *Machine) onPostAction(ctx context.Context, s *Session, input string) (Reply, error) {
	menu := postActionMenu(&s.Selection)
	if !newChoices(menu).accepts(input) {
		return m.reprompt(s, input, textRepromptCommand, menu), nil
	}
	switch input {
	case AnotherVariable:
		return m.enterPicker(ctx, s, s.Selection)
	case AnotherGroup:
		return m.enterGroup(ctx, s, s.Selection)
	case Restart:
		return m.start(ctx, s)
	case Finish:
		m.transition(s, StateSessionEnded)
		m.sessions.Delete(s.ChatID)
		return Reply{Messages: []Message{{Text: textSessionEnded, RemoveKeyboard: true}}}, nil
	}
	return Silent, nil
}

// ==========================
// Picker callbacks
// ==========================

func (m *Machine) handleCallback(ctx context.Context, s *Session, ev Event) (Reply, error) {
	if s.State != StateSelectVariables || s.Variables == nil {
		return Reply{Notice: &Notice{Text: textStale}}, nil
	}

	switch {
	case strings.HasPrefix(ev.Data, callbackToggle):
		i, err := strconv.Atoi(strings.TrimPrefix(ev.Data, callbackToggle))
		if err != nil {
			return Reply{Notice: &Notice{Text: textStale}}, nil
		}
		label, ok := s.Variables.At(i)
		if !ok {
			return Reply{Notice: &Notice{Text: textStale}}, nil
		}
		s.Picks.Toggle(label)
		return Reply{Messages: []Message{{
			Text:          fmt.Sprintf(textPickerCount, s.Picks.Len()),
			Inline:        pickerKeyboard(s),
			EditMessageID: ev.MessageID,
		}}}, nil

	case ev.Data == callbackClear:
		s.Picks.Clear()
		return Reply{
			Messages: []Message{{Text: textPicker, Inline: pickerKeyboard(s), EditMessageID: ev.MessageID}},
			Notice:   &Notice{Text: textCleared},
		}, nil

	case ev.Data == callbackShow:
		if s.Picks.Len() == 0 {
			return Reply{}, apperrors.NewEmptySelectionError()
		}
		return m.showPicks(ctx, s, ev.MessageID)

	case ev.Data == callbackExport:
		return m.exportGroup(ctx, s, s.Selection, ev.MessageID)
	}
	return Reply{Notice: &Notice{Text: textStale}}, nil
}

func (m *Machine) showPicks(ctx context.Context, s *Session, pickerID int) (Reply, error) {
	picks := s.Picks.Items()
	texts, err := m.reports.BuildText(ctx, s.Selection.Location(), picks)
	if err != nil {
		return Reply{}, err
	}
	messages := make([]Message, 0, len(texts)+1)
	for _, t := range texts {
		messages = append(messages, Message{Text: t})
	}
	messages = append(messages, Message{
		Text:     fmt.Sprintf(textShown, len(texts)),
		Keyboard: postActionMenu(&s.Selection),
	})
	s.Picks.Clear()
	m.transition(s, StatePostAction)
	return Reply{DeleteMessageID: pickerID, Messages: messages}, nil
}
