// Package router dispatches inbound chat events onto the shared request
// records. It decodes button payloads, applies the state-machine transition
// with an optimistic version check, and re-renders the originating message so
// the remote user always sees resolved state.
//
// The router runs inside the long-lived gateway process and never blocks
// waiting on a hook; each event is handled to completion synchronously.
package router

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/tgbridge/internal/callback"
	"github.com/smykla-skalski/tgbridge/internal/chat"
	"github.com/smykla-skalski/tgbridge/internal/present"
	"github.com/smykla-skalski/tgbridge/internal/request"
	"github.com/smykla-skalski/tgbridge/internal/store"
	"github.com/smykla-skalski/tgbridge/pkg/logger"
)

// Callback is an inbound button press.
type Callback struct {
	// ID acknowledges the callback back to the platform.
	ID string

	// ChatID is the conversation the button lives in.
	ChatID int64

	// From names the user who pressed the button.
	From string

	// Data is the opaque payload encoded by internal/callback.
	Data string
}

// Message is an inbound plain (non-button) chat message.
type Message struct {
	ChatID int64
	From   string
	Text   string
}

// Router mutates request records in response to chat events.
type Router struct {
	stores  *request.Stores
	chat    chat.Client
	log     logger.Logger
	timeNow func() time.Time

	// allowedChat restricts who may act; zero allows any chat.
	allowedChat int64
}

// Option configures a Router.
type Option func(*Router)

// WithAllowedChat restricts routing to callbacks from the given chat.
func WithAllowedChat(chatID int64) Option {
	return func(r *Router) {
		r.allowedChat = chatID
	}
}

// WithTimeFunc overrides the clock (for testing).
func WithTimeFunc(now func() time.Time) Option {
	return func(r *Router) {
		r.timeNow = now
	}
}

// NewRouter creates a Router over the given stores and chat client.
func NewRouter(stores *request.Stores, chatClient chat.Client, log logger.Logger, opts ...Option) *Router {
	r := &Router{
		stores:  stores,
		chat:    chatClient,
		log:     log,
		timeNow: time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Route handles one button press. It returns false for payloads that do not
// belong to the approval protocol so an outer dispatcher can try alternate
// interpretations; every handled callback is acknowledged exactly once,
// whether or not the mutation was applied.
func (r *Router) Route(ctx context.Context, cb Callback) bool {
	payload, err := callback.Decode(cb.Data)
	if err != nil {
		r.log.Debug("unroutable callback payload", "data", cb.Data, "error", err.Error())

		return false
	}

	if r.allowedChat != 0 && cb.ChatID != r.allowedChat {
		r.log.Info("callback from unauthorized chat",
			"chat_id", cb.ChatID,
			"from", cb.From,
		)
		r.answer(ctx, cb.ID, "Not authorized.", true)

		return true
	}

	var notice notice

	switch {
	case payload.Action.Permission():
		notice = r.handlePermission(ctx, cb, payload)
	case payload.Action.Selection():
		notice = r.handleSelection(ctx, cb, payload)
	default:
		// Decode only yields known actions.
		return false
	}

	r.answer(ctx, cb.ID, notice.text, notice.alert)

	return true
}

// RouteMessage offers a plain chat message to the selection awaiting free-text
// input in that chat. Returns false when no request is awaiting input so the
// gateway can treat the message as ordinary traffic.
func (r *Router) RouteMessage(ctx context.Context, msg Message) bool {
	if r.allowedChat != 0 && msg.ChatID != r.allowedChat {
		return false
	}

	sel, ok := r.stores.AwaitingInput(msg.ChatID)
	if !ok {
		return false
	}

	updated, err := r.stores.Selections.UpdateAt(sel.RequestID, sel.Version, func(s *request.Selection) error {
		return s.AnswerCustom(msg.Text)
	})
	if err != nil {
		r.log.Info("free-text answer lost a race",
			"request_id", sel.RequestID,
			"error", err.Error(),
		)

		return false
	}

	r.editSelection(ctx, updated, present.SelectionResolved(updated), nil)
	r.log.Info("selection answered with free text",
		"request_id", updated.RequestID,
		"from", msg.From,
	)

	return true
}

// notice is the single acknowledgment sent per handled callback.
type notice struct {
	text  string
	alert bool
}

func (r *Router) handlePermission(ctx context.Context, cb Callback, payload callback.Payload) notice {
	perms := r.stores.Permissions

	rec, err := perms.Get(payload.RequestID)
	if err != nil {
		return notice{text: "Request no longer exists.", alert: true}
	}

	if rec.Terminal() {
		return notice{text: "Already " + string(rec.Status) + "."}
	}

	updated, err := perms.UpdateAt(rec.RequestID, rec.Version, func(p *request.Permission) error {
		if payload.Action == callback.ActionApprove {
			return p.Approve(cb.From, r.timeNow())
		}

		return p.Deny(cb.From, r.timeNow())
	})

	switch {
	case err == nil:
		r.editPermission(ctx, updated)
		r.log.Info("permission resolved",
			"request_id", updated.RequestID,
			"status", string(updated.Status),
			"by", cb.From,
		)

		if updated.Status == request.PermissionApproved {
			return notice{text: "Approved."}
		}

		return notice{text: "Denied."}

	case errors.Is(err, request.ErrAlreadyResolved), errors.Is(err, store.ErrStaleVersion):
		// Another actor won the race between our read and write.
		if current, getErr := perms.Get(payload.RequestID); getErr == nil {
			return notice{text: "Already " + string(current.Status) + "."}
		}

		return notice{text: "Request no longer exists.", alert: true}

	default:
		r.log.Error("permission update failed",
			"request_id", payload.RequestID,
			"error", err.Error(),
		)

		return notice{text: "Something went wrong.", alert: true}
	}
}

func (r *Router) handleSelection(ctx context.Context, cb Callback, payload callback.Payload) notice {
	sels := r.stores.Selections

	rec, err := sels.Get(payload.RequestID)
	if err != nil {
		return notice{text: "Request no longer exists.", alert: true}
	}

	if rec.Terminal() {
		return notice{text: "Already " + string(rec.Status) + "."}
	}

	if payload.Action.HasIndex() {
		if _, ok := rec.OptionByIndex(payload.OptionIndex); !ok {
			// Never crash the gateway on a bad index; acknowledge and ignore.
			return notice{text: fmt.Sprintf("Unknown option %d.", payload.OptionIndex), alert: true}
		}
	}

	updated, err := sels.UpdateAt(rec.RequestID, rec.Version, func(s *request.Selection) error {
		switch payload.Action {
		case callback.ActionSelect:
			return s.Answer(payload.OptionIndex)
		case callback.ActionToggle:
			return s.Toggle(payload.OptionIndex)
		case callback.ActionSubmit:
			return s.Submit()
		case callback.ActionCustom:
			return s.AwaitInput()
		case callback.ActionCancel:
			return s.Cancel()
		case callback.ActionApprove, callback.ActionDeny:
			return errors.Wrapf(callback.ErrMalformed, "%s is not a selection action", payload.Action)
		default:
			return errors.Wrapf(callback.ErrMalformed, "%s is not a selection action", payload.Action)
		}
	})

	switch {
	case err == nil:
		return r.renderSelection(ctx, updated, payload.Action)

	case errors.Is(err, request.ErrEmptySelection):
		// Transient notice, no state change.
		return notice{text: "Select at least one option first."}

	case errors.Is(err, request.ErrAlreadyResolved), errors.Is(err, store.ErrStaleVersion):
		if current, getErr := sels.Get(payload.RequestID); getErr == nil {
			return notice{text: "Already " + string(current.Status) + "."}
		}

		return notice{text: "Request no longer exists.", alert: true}

	default:
		r.log.Error("selection update failed",
			"request_id", payload.RequestID,
			"action", string(payload.Action),
			"error", err.Error(),
		)

		return notice{text: "Something went wrong.", alert: true}
	}
}

// renderSelection re-renders the question message after a successful
// transition and picks the acknowledgment text.
func (r *Router) renderSelection(ctx context.Context, sel *request.Selection, action callback.Action) notice {
	switch action {
	case callback.ActionToggle:
		// Still pending; refresh checkmarks.
		r.editSelection(ctx, sel, present.SelectionMessage(sel), present.SelectionKeyboard(sel))

		return notice{}

	case callback.ActionCustom:
		r.editSelection(ctx, sel, present.SelectionMessage(sel), present.SelectionKeyboard(sel))

		return notice{text: "Type your answer in the chat."}

	case callback.ActionSelect, callback.ActionSubmit:
		r.editSelection(ctx, sel, present.SelectionResolved(sel), nil)

		return notice{text: "Answered."}

	case callback.ActionCancel:
		r.editSelection(ctx, sel, present.SelectionResolved(sel), nil)

		return notice{text: "Cancelled."}

	case callback.ActionApprove, callback.ActionDeny:
		return notice{}

	default:
		return notice{}
	}
}

// editPermission rewrites the approval message with the resolved outcome,
// removing the buttons. Transport failures are logged and swallowed; the
// record is already resolved and the waiter does not depend on the edit.
func (r *Router) editPermission(ctx context.Context, p *request.Permission) {
	if p.MessageID == 0 {
		return
	}

	if err := r.chat.EditMessage(ctx, p.ChatID, p.MessageID, present.PermissionResolved(p), nil); err != nil {
		r.log.Error("editing resolved permission message",
			"request_id", p.RequestID,
			"error", err.Error(),
		)
	}
}

func (r *Router) editSelection(ctx context.Context, s *request.Selection, text string, buttons [][]chat.Button) {
	if s.MessageID == 0 {
		return
	}

	if err := r.chat.EditMessage(ctx, s.ChatID, s.MessageID, text, buttons); err != nil {
		r.log.Error("editing selection message",
			"request_id", s.RequestID,
			"error", err.Error(),
		)
	}
}

func (r *Router) answer(ctx context.Context, callbackID, text string, alert bool) {
	if err := r.chat.AnswerCallback(ctx, callbackID, text, alert); err != nil {
		r.log.Error("answering callback", "callback_id", callbackID, "error", err.Error())
	}
}
