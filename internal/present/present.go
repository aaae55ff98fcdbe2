// Package present renders request records into chat message text and inline
// button layouts. Every state change re-renders the message so the remote
// user always sees live state: checkmark toggles while selecting, and a
// resolved banner with no buttons once a terminal state is reached.
package present

import (
	"fmt"
	"strings"
	"time"

	"github.com/hako/durafmt"

	"github.com/smykla-skalski/tgbridge/internal/callback"
	"github.com/smykla-skalski/tgbridge/internal/chat"
	"github.com/smykla-skalski/tgbridge/internal/request"
)

const buttonsPerRow = 2

// PermissionMessage renders the initial approval prompt.
func PermissionMessage(p *request.Permission) string {
	var b strings.Builder

	b.WriteString("🔐 <b>Permission required</b>\n\n")
	fmt.Fprintf(&b, "Tool: <b>%s</b>\n", htmlEscape(p.ToolName))

	if summary := toolInputSummary(p.ToolName, p.ToolInput); summary != "" {
		fmt.Fprintf(&b, "<blockquote>%s</blockquote>", htmlEscape(summary))
	}

	return b.String()
}

// PermissionKeyboard builds the approve/deny buttons.
func PermissionKeyboard(p *request.Permission) [][]chat.Button {
	return [][]chat.Button{{
		{Label: "✅ Approve", Data: callback.Encode(callback.ActionApprove, p.RequestID)},
		{Label: "❌ Deny", Data: callback.Encode(callback.ActionDeny, p.RequestID)},
	}}
}

// PermissionResolved renders the post-decision text replacing the buttons.
func PermissionResolved(p *request.Permission) string {
	outcome := "❌ Denied"
	if p.Status == request.PermissionApproved {
		outcome = "✅ Approved"
	}

	text := fmt.Sprintf("%s: <b>%s</b>", outcome, htmlEscape(p.ToolName))
	if p.RespondedBy != "" {
		text += fmt.Sprintf(" (by %s)", htmlEscape(p.RespondedBy))
	}

	return text
}

// PermissionTimedOut renders the timeout banner.
func PermissionTimedOut(p *request.Permission, timeout time.Duration) string {
	return fmt.Sprintf("⏰ <b>TIMED OUT</b> after %s: %s",
		durafmt.Parse(timeout).LimitFirstN(1).String(),
		htmlEscape(p.ToolName))
}

// SelectionMessage renders the question prompt with current selection state.
func SelectionMessage(s *request.Selection) string {
	var b strings.Builder

	if s.Header != "" {
		fmt.Fprintf(&b, "<b>%s</b>\n", htmlEscape(s.Header))
	}

	b.WriteString("❓ ")
	b.WriteString(htmlEscape(s.Question))

	if s.Status == request.SelectionAwaitingInput {
		b.WriteString("\n\n💬 <i>Reply with your answer.</i>")
	}

	return b.String()
}

// SelectionKeyboard builds the option buttons for the request's sub-protocol.
// Multi-select renders toggles with checkmarks plus a submit row; single-select
// renders one-tap answers. Both get a "type something" and a cancel button.
func SelectionKeyboard(s *request.Selection) [][]chat.Button {
	if s.Status == request.SelectionAwaitingInput {
		// Only an escape hatch back to cancelled while typing.
		return [][]chat.Button{{cancelButton(s)}}
	}

	var rows [][]chat.Button

	if s.MultiSelect {
		for _, o := range s.Options {
			label := o.Label
			if s.IsSelected(o.Index) {
				label = "✅ " + label
			}

			rows = append(rows, []chat.Button{{
				Label: label,
				Data:  callback.EncodeIndex(callback.ActionToggle, s.RequestID, o.Index),
			}})
		}

		rows = append(rows, []chat.Button{{
			Label: "📤 Submit",
			Data:  callback.Encode(callback.ActionSubmit, s.RequestID),
		}})
	} else {
		var buttons []chat.Button

		for _, o := range s.Options {
			buttons = append(buttons, chat.Button{
				Label: o.Label,
				Data:  callback.EncodeIndex(callback.ActionSelect, s.RequestID, o.Index),
			})
		}

		for i := 0; i < len(buttons); i += buttonsPerRow {
			end := min(i+buttonsPerRow, len(buttons))
			rows = append(rows, buttons[i:end])
		}
	}

	rows = append(rows, []chat.Button{
		{Label: "💬 Type something", Data: callback.Encode(callback.ActionCustom, s.RequestID)},
		cancelButton(s),
	})

	return rows
}

// SelectionResolved renders the post-answer text replacing the buttons.
func SelectionResolved(s *request.Selection) string {
	switch s.Status {
	case request.SelectionCancelled:
		return fmt.Sprintf("🚫 Cancelled: %s", htmlEscape(s.Question))
	case request.SelectionAnswered:
		answer := strings.Join(s.SelectedLabels(), ", ")
		if s.CustomInput != "" {
			answer = s.CustomInput
		}

		return fmt.Sprintf("✅ <b>%s</b>\n%s", htmlEscape(answer), htmlEscape(s.Question))
	case request.SelectionPending, request.SelectionAwaitingInput, request.SelectionExpired:
		return fmt.Sprintf("❓ %s", htmlEscape(s.Question))
	default:
		return fmt.Sprintf("❓ %s", htmlEscape(s.Question))
	}
}

// SelectionTimedOut renders the timeout banner.
func SelectionTimedOut(s *request.Selection, timeout time.Duration) string {
	return fmt.Sprintf("⏰ <b>TIMED OUT</b> after %s: %s",
		durafmt.Parse(timeout).LimitFirstN(1).String(),
		htmlEscape(s.Question))
}

func cancelButton(s *request.Selection) chat.Button {
	return chat.Button{
		Label: "✖️ Cancel",
		Data:  callback.Encode(callback.ActionCancel, s.RequestID),
	}
}

// htmlEscape escapes the characters Telegram's HTML parse mode treats
// specially.
func htmlEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")

	return s
}
