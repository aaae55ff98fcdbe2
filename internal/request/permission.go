// Package request defines the two record types the bridge coordinates on:
// tool-approval permissions and multiple-choice selections. Each type carries
// its own state machine; transitions are methods so every caller goes through
// the same terminal-state guard.
package request

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/tgbridge/internal/store"
)

var (
	// ErrAlreadyResolved is returned when a transition targets a record that
	// has already left the pending state.
	ErrAlreadyResolved = errors.New("request already resolved")

	// ErrUnknownOption is returned when a callback references an option index
	// that does not exist.
	ErrUnknownOption = errors.New("unknown option index")

	// ErrEmptySelection is returned when a multi-select submit arrives with
	// nothing toggled on.
	ErrEmptySelection = errors.New("no options selected")
)

// PermissionStatus is the lifecycle state of a permission request.
// Once non-pending it never reverts.
type PermissionStatus string

const (
	// PermissionPending is the initial state, awaiting a human decision.
	PermissionPending PermissionStatus = "pending"

	// PermissionApproved is terminal: the user approved the tool call.
	PermissionApproved PermissionStatus = "approved"

	// PermissionDenied is terminal: the user denied the tool call.
	PermissionDenied PermissionStatus = "denied"

	// PermissionExpired is terminal: the waiter timed out before a decision.
	PermissionExpired PermissionStatus = "expired"
)

// Response values recorded on a user-driven terminal transition.
const (
	ResponseApprove = "approve"
	ResponseDeny    = "deny"
)

// Permission is one tool-approval request.
type Permission struct {
	store.Meta

	// ToolName identifies the action needing approval.
	ToolName string `json:"tool_name"`

	// ToolInput carries the action parameters, used only for display.
	ToolInput map[string]any `json:"tool_input,omitempty"`

	// ChatID is the Telegram conversation to notify.
	ChatID int64 `json:"chat_id"`

	// MessageID is the chat message carrying the approval buttons; zero until
	// the message is sent, then fixed.
	MessageID int `json:"message_id,omitempty"`

	Status PermissionStatus `json:"status"`

	// Response is "approve" or "deny", set only by user action.
	Response string `json:"response,omitempty"`

	// RespondedBy names who acted, for the resolved-message edit.
	RespondedBy string `json:"responded_by,omitempty"`

	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

// NewPermission creates a pending permission request; the store stamps
// identity and timestamp on Create.
func NewPermission(toolName string, toolInput map[string]any, chatID int64) *Permission {
	return &Permission{
		ToolName:  toolName,
		ToolInput: toolInput,
		ChatID:    chatID,
		Status:    PermissionPending,
	}
}

// RecordMeta returns the embedded store metadata.
func (p *Permission) RecordMeta() *store.Meta {
	return &p.Meta
}

var _ store.Record = (*Permission)(nil)

// Terminal reports whether the status will never change again.
func (p *Permission) Terminal() bool {
	return p.Status != PermissionPending
}

// Approve transitions pending → approved.
func (p *Permission) Approve(by string, at time.Time) error {
	return p.resolve(PermissionApproved, ResponseApprove, by, at)
}

// Deny transitions pending → denied.
func (p *Permission) Deny(by string, at time.Time) error {
	return p.resolve(PermissionDenied, ResponseDeny, by, at)
}

// Expire transitions pending → expired. Used by the waiter on timeout so a
// late callback lands on an already-expired record.
func (p *Permission) Expire() error {
	if p.Terminal() {
		return errors.Wrapf(ErrAlreadyResolved, "status is %s", p.Status)
	}

	p.Status = PermissionExpired

	return nil
}

func (p *Permission) resolve(status PermissionStatus, response, by string, at time.Time) error {
	if p.Terminal() {
		return errors.Wrapf(ErrAlreadyResolved, "status is %s", p.Status)
	}

	p.Status = status
	p.Response = response
	p.RespondedBy = by
	p.RespondedAt = &at

	return nil
}
