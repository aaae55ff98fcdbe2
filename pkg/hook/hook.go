// Package hook defines the stdin/stdout contract between Claude Code and the
// tgbridge hook binary.
package hook

import "encoding/json"

const (
	// ExitApproved is the exit code for an approved or answered request.
	ExitApproved = 0

	// ExitError is the exit code for internal errors.
	ExitError = 1

	// ExitDenied is the exit code for a denied or cancelled request.
	ExitDenied = 2
)

// AskToolName is the tool name Claude Code uses for multiple-choice questions.
const AskToolName = "AskUserQuestion"

// Event is the hook payload Claude Code writes to the hook's stdin.
type Event struct {
	// SessionID identifies the Claude Code session.
	SessionID string `json:"session_id,omitempty"`

	// ToolName is the tool awaiting approval (e.g. "Bash", "Write").
	ToolName string `json:"tool_name"`

	// ToolInput carries the tool parameters; displayed to the user, never executed.
	ToolInput json.RawMessage `json:"tool_input,omitempty"`
}

// IsQuestion reports whether the event is a multiple-choice question rather
// than a plain tool approval.
func (e *Event) IsQuestion() bool {
	return e.ToolName == AskToolName
}

// Question is the AskUserQuestion payload inside Event.ToolInput.
type Question struct {
	Question    string           `json:"question"`
	Header      string           `json:"header,omitempty"`
	MultiSelect bool             `json:"multiSelect,omitempty"`
	Options     []QuestionOption `json:"options"`
}

// QuestionOption is one offered answer.
type QuestionOption struct {
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// QuestionInput is the tool_input wrapper for AskUserQuestion events.
type QuestionInput struct {
	Questions []Question `json:"questions"`
}

// PermissionResult is written to stdout for permission events.
type PermissionResult struct {
	// Decision is "approve" or "block".
	Decision string `json:"decision"`

	// Reason explains a block decision (denial, timeout, error).
	Reason string `json:"reason,omitempty"`
}

// SelectionResult is written to stdout for question events.
type SelectionResult struct {
	SelectedIndices []int    `json:"selectedIndices"`
	SelectedLabels  []string `json:"selectedLabels"`
	CustomInput     string   `json:"customInput,omitempty"`
}

// Decision values for PermissionResult.
const (
	DecisionApprove = "approve"
	DecisionBlock   = "block"
)
