// Package chat defines the narrow interface the bridge core needs from the
// chat platform: send a message with buttons, edit it, and acknowledge a
// callback. The Telegram implementation lives in internal/telegram; tests use
// the in-memory fake below.
package chat

import "context"

// Button is one inline button: a label shown to the user and an opaque data
// payload returned in the callback.
type Button struct {
	Label string
	Data  string
}

// Client is the chat-platform collaborator consumed by the core.
type Client interface {
	// SendButtons sends text with an inline button layout and returns the new
	// message ID.
	SendButtons(ctx context.Context, chatID int64, text string, buttons [][]Button) (int, error)

	// EditMessage replaces the text and button layout of an existing message.
	// An empty layout removes the buttons.
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, buttons [][]Button) error

	// AnswerCallback acknowledges a callback so the remote UI stops showing a
	// loading spinner. With alert set the text pops up instead of toasting.
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
}
