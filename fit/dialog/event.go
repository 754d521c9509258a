package dialog

import (
	"context"
	"strings"
)

// Event is an inbound update addressed to one chat.
type Event interface {
	Chat() int64
}

// TextCommand is a text message. Command is the bare command name
// ("start", "help") or empty when the text is not a command.
type TextCommand struct {
	ChatID  int64
	Command string
	RawText string
}

func (e TextCommand) Chat() int64 { return e.ChatID }

// CallbackEvent is an inline button press.
type CallbackEvent struct {
	ChatID     int64
	CallbackID string
	Payload    string
}

func (e CallbackEvent) Chat() int64 { return e.ChatID }

// Button is one inline button.
type Button struct {
	Label   string
	Payload string
}

// Keyboard is a list of button rows.
type Keyboard [][]Button

// Buttons counts the buttons across all rows.
func (k Keyboard) Buttons() int {
	n := 0
	for _, row := range k {
		n += len(row)
	}
	return n
}

// Messenger delivers the machine's output to the chat.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, kb Keyboard) error
	AcknowledgeCallback(ctx context.Context, callbackID string) error
}

// ParseCommand extracts the command name from message text such as
// "/start" or "/help@espertofit_bot extra". It returns "" for plain text.
func ParseCommand(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	word := text[1:]
	if i := strings.IndexAny(word, " \t\n"); i >= 0 {
		word = word[:i]
	}
	if i := strings.IndexByte(word, '@'); i >= 0 {
		word = word[:i]
	}
	return word
}
