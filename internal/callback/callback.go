// Package callback defines the wire encoding for inline-button payloads:
// "action:requestId[:optionIndex]" with a fixed ":" delimiter. Permission and
// selection callbacks share one channel and are disambiguated by the action
// vocabulary alone.
package callback

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrMalformed is returned when a payload does not decode to a known action
// with the right arity.
var ErrMalformed = errors.New("malformed callback payload")

// Action is the closed set of things a button can ask for.
type Action string

const (
	// ActionApprove approves a permission request.
	ActionApprove Action = "approve"

	// ActionDeny denies a permission request.
	ActionDeny Action = "deny"

	// ActionSelect answers a single-select question with one option.
	ActionSelect Action = "select"

	// ActionToggle flips one option of a multi-select question.
	ActionToggle Action = "toggle"

	// ActionSubmit finalizes a multi-select answer.
	ActionSubmit Action = "submit"

	// ActionCustom switches a question to awaiting free-text input.
	ActionCustom Action = "custom"

	// ActionCancel cancels a question.
	ActionCancel Action = "cancel"
)

// Permission reports whether the action belongs to the permission protocol.
func (a Action) Permission() bool {
	return a == ActionApprove || a == ActionDeny
}

// Selection reports whether the action belongs to the selection protocol.
func (a Action) Selection() bool {
	switch a {
	case ActionSelect, ActionToggle, ActionSubmit, ActionCustom, ActionCancel:
		return true
	case ActionApprove, ActionDeny:
		return false
	default:
		return false
	}
}

// HasIndex reports whether the action carries an option index.
func (a Action) HasIndex() bool {
	return a == ActionSelect || a == ActionToggle
}

// Payload is a decoded button payload.
type Payload struct {
	Action      Action
	RequestID   string
	OptionIndex int
}

// Encode renders the payload for actions without an option index.
func Encode(action Action, requestID string) string {
	return string(action) + ":" + requestID
}

// EncodeIndex renders the payload for select/toggle actions.
func EncodeIndex(action Action, requestID string, index int) string {
	return string(action) + ":" + requestID + ":" + strconv.Itoa(index)
}

// Decode parses a raw payload. Unknown actions, wrong arity, and non-numeric
// indices all yield ErrMalformed so the outer dispatcher can try alternate
// interpretations.
func Decode(data string) (Payload, error) {
	parts := strings.Split(data, ":")
	if len(parts) < 2 || parts[1] == "" {
		return Payload{}, errors.Wrapf(ErrMalformed, "%q", data)
	}

	action := Action(parts[0])

	switch action {
	case ActionApprove, ActionDeny, ActionSubmit, ActionCustom, ActionCancel:
		if len(parts) != 2 {
			return Payload{}, errors.Wrapf(ErrMalformed, "%q: unexpected arity", data)
		}

		return Payload{Action: action, RequestID: parts[1]}, nil

	case ActionSelect, ActionToggle:
		if len(parts) != 3 {
			return Payload{}, errors.Wrapf(ErrMalformed, "%q: missing option index", data)
		}

		idx, err := strconv.Atoi(parts[2])
		if err != nil {
			return Payload{}, errors.Wrapf(ErrMalformed, "%q: bad option index", data)
		}

		return Payload{Action: action, RequestID: parts[1], OptionIndex: idx}, nil

	default:
		return Payload{}, errors.Wrapf(ErrMalformed, "%q: unknown action", data)
	}
}
