package bot

// EventKind identifies the shape of an incoming conversation event.
type EventKind int

const (
	EventUnspecified EventKind = iota
	// EventStart is the conversation entry point, optionally carrying a
	// deep-link payload.
	EventStart
	// EventCommand is a slash command without its leading slash.
	EventCommand
	// EventText is a free-text message.
	EventText
	// EventAction is an inline button press carrying an action id.
	EventAction
)

// Event is a single inbound interaction from one chat.
type Event struct {
	Kind EventKind
	// ChatID identifies the private chat and, transitively, the user.
	ChatID string
	// DisplayName is the sender's current display name, used when the
	// user is seen for the first time.
	DisplayName string
	// Payload holds the start payload, command name, message text, or
	// action id depending on Kind.
	Payload string
}
