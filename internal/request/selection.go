package request

import (
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/tgbridge/internal/store"
)

// SelectionStatus is the lifecycle state of a multiple-choice request.
type SelectionStatus string

const (
	// SelectionPending is the initial state.
	SelectionPending SelectionStatus = "pending"

	// SelectionAwaitingInput means the user chose to type a free-text answer;
	// the next plain message in the chat resolves the request.
	SelectionAwaitingInput SelectionStatus = "awaiting_input"

	// SelectionAnswered is terminal: the user picked options or typed text.
	SelectionAnswered SelectionStatus = "answered"

	// SelectionCancelled is terminal: the user cancelled the question.
	SelectionCancelled SelectionStatus = "cancelled"

	// SelectionExpired is terminal: the waiter timed out first.
	SelectionExpired SelectionStatus = "expired"
)

// Option is one offered answer. Index is assigned at creation and is the sole
// addressing key in callbacks; it is never re-derived from array position.
type Option struct {
	Index       int    `json:"index"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Selection is one multiple-choice question posed to the remote user.
type Selection struct {
	store.Meta

	ChatID    int64 `json:"chat_id"`
	MessageID int   `json:"message_id,omitempty"`

	// Question is the prompt text; Header an optional short title.
	Question string `json:"question"`
	Header   string `json:"header,omitempty"`

	Options []Option `json:"options"`

	// MultiSelect is fixed at creation and selects the sub-protocol: toggles
	// plus submit, versus one-tap answers.
	MultiSelect bool `json:"multi_select"`

	Status SelectionStatus `json:"status"`

	// SelectedIndices holds chosen option indices in selection order. Every
	// entry is a valid index into Options.
	SelectedIndices []int `json:"selected_indices,omitempty"`

	// CustomInput is the free-text answer, set only when the user answered
	// outside the offered options.
	CustomInput string `json:"custom_input,omitempty"`
}

// NewSelection creates a pending selection request, assigning stable option
// indices by position.
func NewSelection(question, header string, options []Option, multiSelect bool, chatID int64) *Selection {
	opts := make([]Option, len(options))

	for i, o := range options {
		opts[i] = Option{Index: i, Label: o.Label, Description: o.Description}
	}

	return &Selection{
		ChatID:      chatID,
		Question:    question,
		Header:      header,
		Options:     opts,
		MultiSelect: multiSelect,
		Status:      SelectionPending,
	}
}

// RecordMeta returns the embedded store metadata.
func (s *Selection) RecordMeta() *store.Meta {
	return &s.Meta
}

var _ store.Record = (*Selection)(nil)

// Terminal reports whether the status will never change again.
// awaiting_input is not terminal.
func (s *Selection) Terminal() bool {
	switch s.Status {
	case SelectionAnswered, SelectionCancelled, SelectionExpired:
		return true
	case SelectionPending, SelectionAwaitingInput:
		return false
	default:
		return false
	}
}

// OptionByIndex returns the option addressed by idx.
func (s *Selection) OptionByIndex(idx int) (Option, bool) {
	for _, o := range s.Options {
		if o.Index == idx {
			return o, true
		}
	}

	return Option{}, false
}

// SelectedLabels returns the labels for SelectedIndices, in selection order.
func (s *Selection) SelectedLabels() []string {
	labels := make([]string, 0, len(s.SelectedIndices))

	for _, idx := range s.SelectedIndices {
		if o, ok := s.OptionByIndex(idx); ok {
			labels = append(labels, o.Label)
		}
	}

	return labels
}

// IsSelected reports whether idx is currently toggled on.
func (s *Selection) IsSelected(idx int) bool {
	return slices.Contains(s.SelectedIndices, idx)
}

// Answer transitions pending → answered with exactly the tapped option.
// Single-select only.
func (s *Selection) Answer(idx int) error {
	if s.Terminal() {
		return errors.Wrapf(ErrAlreadyResolved, "status is %s", s.Status)
	}

	if _, ok := s.OptionByIndex(idx); !ok {
		return errors.Wrapf(ErrUnknownOption, "index %d", idx)
	}

	s.SelectedIndices = []int{idx}
	s.Status = SelectionAnswered

	return nil
}

// Toggle flips idx in SelectedIndices while the request stays pending.
// Multi-select only.
func (s *Selection) Toggle(idx int) error {
	if s.Status != SelectionPending {
		return errors.Wrapf(ErrAlreadyResolved, "status is %s", s.Status)
	}

	if _, ok := s.OptionByIndex(idx); !ok {
		return errors.Wrapf(ErrUnknownOption, "index %d", idx)
	}

	if pos := slices.Index(s.SelectedIndices, idx); pos >= 0 {
		s.SelectedIndices = slices.Delete(s.SelectedIndices, pos, pos+1)
	} else {
		s.SelectedIndices = append(s.SelectedIndices, idx)
	}

	return nil
}

// Submit finalizes a multi-select answer. An empty selection is rejected with
// no state change.
func (s *Selection) Submit() error {
	if s.Status != SelectionPending {
		return errors.Wrapf(ErrAlreadyResolved, "status is %s", s.Status)
	}

	if len(s.SelectedIndices) == 0 {
		return ErrEmptySelection
	}

	s.Status = SelectionAnswered

	return nil
}

// Cancel transitions to terminal cancelled. Available in both modes.
func (s *Selection) Cancel() error {
	if s.Terminal() {
		return errors.Wrapf(ErrAlreadyResolved, "status is %s", s.Status)
	}

	s.Status = SelectionCancelled

	return nil
}

// AwaitInput moves the request to awaiting_input so the next plain chat
// message becomes the answer.
func (s *Selection) AwaitInput() error {
	if s.Status != SelectionPending {
		return errors.Wrapf(ErrAlreadyResolved, "status is %s", s.Status)
	}

	s.Status = SelectionAwaitingInput

	return nil
}

// AnswerCustom resolves an awaiting_input request with free text.
func (s *Selection) AnswerCustom(text string) error {
	if s.Terminal() {
		return errors.Wrapf(ErrAlreadyResolved, "status is %s", s.Status)
	}

	s.CustomInput = text
	s.Status = SelectionAnswered

	return nil
}

// Expire transitions a non-terminal request to expired.
func (s *Selection) Expire() error {
	if s.Terminal() {
		return errors.Wrapf(ErrAlreadyResolved, "status is %s", s.Status)
	}

	s.Status = SelectionExpired

	return nil
}
