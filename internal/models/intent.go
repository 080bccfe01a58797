package models

// IntentKind tags which variant of an Intent is active.
type IntentKind int

const (
	IntentUnrecognized IntentKind = iota
	IntentCommand
	IntentLog
	IntentSummary
	IntentChat
)

func (k IntentKind) String() string {
	switch k {
	case IntentCommand:
		return "command"
	case IntentLog:
		return "log"
	case IntentSummary:
		return "summary"
	case IntentChat:
		return "chat"
	default:
		return "unrecognized"
	}
}

// CommandKind names a fixed keyword command.
type CommandKind string

const (
	CommandHelp       CommandKind = "help"
	CommandIntro      CommandKind = "intro"
	CommandEndSession CommandKind = "end_session"
	CommandUndo       CommandKind = "undo"
)

// Intent is the classified purpose of one utterance. Only the payload field
// matching Kind is meaningful.
type Intent struct {
	Kind    IntentKind
	Command CommandKind
	Record  *Record
	Period  Period
	Text    string
}

// Unrecognized is the zero intent.
func Unrecognized() Intent { return Intent{Kind: IntentUnrecognized} }

// CommandIntent wraps a keyword command.
func CommandIntent(kind CommandKind) Intent { return Intent{Kind: IntentCommand, Command: kind} }

// LogIntent wraps a candidate record. The record may still be incomplete.
func LogIntent(rec Record) Intent { return Intent{Kind: IntentLog, Record: &rec} }

// SummaryIntent requests a report over period.
func SummaryIntent(period Period) Intent { return Intent{Kind: IntentSummary, Period: period} }

// ChatIntent carries conversational text to pass through to the user.
func ChatIntent(text string) Intent { return Intent{Kind: IntentChat, Text: text} }
