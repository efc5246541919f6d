package dialog

// EventKind tells apart the inputs a conversation receives.
type EventKind int

const (
	EventText EventKind = iota
	EventCommand
	EventCallback
)

func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventCommand:
		return "command"
	case EventCallback:
		return "callback"
	}
	return "unknown"
}

// Event is one transport-neutral user input.
type Event struct {
	Kind EventKind
	// Text is the message text, or the command name without the slash.
	Text string
	// Data is the callback payload of an inline button.
	Data string
	// MessageID is the message an inline button belongs to.
	MessageID int

	UserID   int64
	Username string
}

// Reply is everything the transport has to do in response to an Event, in
// order: delete, then send or edit messages, then answer the callback.
type Reply struct {
	DeleteMessageID int
	Messages        []Message
	Notice          *Notice
}

type Message struct {
	Text string

	// Keyboard is a reply keyboard; RemoveKeyboard hides the current one.
	Keyboard       [][]string
	RemoveKeyboard bool

	Inline [][]Button
	// EditMessageID edits an existing message instead of sending a new one.
	EditMessageID int

	Document *Document
}

type Button struct {
	Text string
	Data string
}

type Document struct {
	Name    string
	Content []byte
}

// Notice answers an inline button press, as a toast or an alert.
type Notice struct {
	Text  string
	Alert bool
}

// Silent is the reply to inputs that are ignored.
var Silent = Reply{}

func (r Reply) IsSilent() bool {
	return r.DeleteMessageID == 0 && len(r.Messages) == 0 && r.Notice == nil
}

func textReply(text string, keyboard [][]string) Reply {
	return Reply{Messages: []Message{{Text: text, Keyboard: keyboard}}}
}

// rows lays labels out n per row.
func rows(labels []string, n int) [][]string {
	var out [][]string
	for i := 0; i < len(labels); i += n {
		end := i + n
		if end > len(labels) {
			end = len(labels)
		}
		out = append(out, append([]string(nil), labels[i:end]...))
	}
	return out
}
