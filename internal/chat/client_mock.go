package chat

import (
	"context"
	"sync"
)

// SentMessage records one SendButtons call on the mock.
type SentMessage struct {
	ChatID  int64
	Text    string
	Buttons [][]Button
}

// EditedMessage records one EditMessage call on the mock.
type EditedMessage struct {
	ChatID    int64
	MessageID int
	Text      string
	Buttons   [][]Button
}

// AnsweredCallback records one AnswerCallback call on the mock.
type AnsweredCallback struct {
	CallbackID string
	Text       string
	Alert      bool
}

// MockClient implements Client for testing without a chat platform.
type MockClient struct {
	mu sync.Mutex

	Sent     []SentMessage
	Edited   []EditedMessage
	Answered []AnsweredCallback

	SendErr   error
	EditErr   error
	AnswerErr error

	nextMessageID int
}

// NewMockClient creates a new MockClient instance.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// SendButtons records the call and returns a fresh message ID.
func (m *MockClient) SendButtons(_ context.Context, chatID int64, text string, buttons [][]Button) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SendErr != nil {
		return 0, m.SendErr
	}

	m.Sent = append(m.Sent, SentMessage{ChatID: chatID, Text: text, Buttons: buttons})
	m.nextMessageID++

	return m.nextMessageID, nil
}

// EditMessage records the call.
func (m *MockClient) EditMessage(_ context.Context, chatID int64, messageID int, text string, buttons [][]Button) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.EditErr != nil {
		return m.EditErr
	}

	m.Edited = append(m.Edited, EditedMessage{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		Buttons:   buttons,
	})

	return nil
}

// AnswerCallback records the call.
func (m *MockClient) AnswerCallback(_ context.Context, callbackID, text string, alert bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AnswerErr != nil {
		return m.AnswerErr
	}

	m.Answered = append(m.Answered, AnsweredCallback{CallbackID: callbackID, Text: text, Alert: alert})

	return nil
}

// LastEdit returns the most recent edit, if any.
func (m *MockClient) LastEdit() (EditedMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Edited) == 0 {
		return EditedMessage{}, false
	}

	return m.Edited[len(m.Edited)-1], true
}

// Ensure MockClient implements Client.
var _ Client = (*MockClient)(nil)
