// Package dialog drives one conversation through the catalog: author, year,
// document, scenario, variable group and variables, then the follow-up menu.
package dialog

// State is the step a conversation is waiting on.
type State int

const (
	StateSelectAuthor State = iota
	StateSelectYear
	StateSelectDocument
	StateSelectScenario
	StateSelectVariableGroup
	StateSelectVariables
	StatePostAction
	StateSessionEnded
)

func (s State) String() string {
	switch s {
	case StateSelectAuthor:
		return "select_author"
	case StateSelectYear:
		return "select_year"
	case StateSelectDocument:
		return "select_document"
	case StateSelectScenario:
		return "select_scenario"
	case StateSelectVariableGroup:
		return "select_variable_group"
	case StateSelectVariables:
		return "select_variables"
	case StatePostAction:
		return "post_action"
	case StateSessionEnded:
		return "session_ended"
	}
	return "unknown"
}

// Reserved inputs. They are never treated as catalog names.
const (
	BackToAuthor   = "↩️Возврат к выбору автора прогноза"
	BackToYear     = "↩️Возврат к выбору года"
	BackToDocument = "↩️Возврат к выбору документа"
	BackToScenario = "↩️Возврат к выбору сценария"
	BackToGroup    = "↩️Возврат к выбору набора переменных"

	LatestBaseline = "Последний базовый прогноз"

	AnotherVariable = "Выбрать другую переменную"
	AnotherGroup    = "Выбрать другой набор переменных"
	Restart         = "Заново"
	Finish          = "Завершить"

	CommandStart  = "start"
	CommandCancel = "cancel"
)
