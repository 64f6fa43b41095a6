package bot

// EffectKind identifies how an outbound message should be delivered.
type EffectKind int

const (
	EffectUnspecified EffectKind = iota
	// EffectReply sends a new message to the chat the event came from.
	EffectReply
	// EffectEditMessage rewrites the message the pressed button was
	// attached to.
	EffectEditMessage
	// EffectSend sends a new message to another user's chat.
	EffectSend
)

// Button is a single keyboard button. Action is empty for reply-keyboard
// buttons, whose label doubles as the value sent back.
type Button struct {
	Label  string
	Action string
}

// Keyboard is a grid of buttons attached to an outbound message. Inline
// keyboards stay under the message; reply keyboards replace the input
// panel.
type Keyboard struct {
	Inline bool
	Rows   [][]Button
}

// Effect is a single outbound delivery instruction. Effects are data:
// the engine emits them and the gateway performs them.
type Effect struct {
	Kind EffectKind
	// ChatID is the destination chat for EffectSend; empty otherwise.
	ChatID   string
	Text     string
	Keyboard *Keyboard
}

func reply(text string, keyboard *Keyboard) Effect {
	return Effect{Kind: EffectReply, Text: text, Keyboard: keyboard}
}

func editMessage(text string, keyboard *Keyboard) Effect {
	return Effect{Kind: EffectEditMessage, Text: text, Keyboard: keyboard}
}

func sendTo(chatID, text string, keyboard *Keyboard) Effect {
	return Effect{Kind: EffectSend, ChatID: chatID, Text: text, Keyboard: keyboard}
}
