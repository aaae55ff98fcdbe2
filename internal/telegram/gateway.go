package telegram

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	tele "gopkg.in/telebot.v3"

	"golang.org/x/sync/errgroup"

	"github.com/smykla-skalski/tgbridge/internal/injector"
	"github.com/smykla-skalski/tgbridge/internal/notices"
	"github.com/smykla-skalski/tgbridge/internal/router"
	"github.com/smykla-skalski/tgbridge/internal/sweep"
	"github.com/smykla-skalski/tgbridge/pkg/logger"
)

// Gateway is the long-running process side of the bridge: it receives
// Telegram callbacks and plain messages, routes them onto the shared records,
// and periodically sweeps orphans. It never blocks waiting on a hook.
type Gateway struct {
	bot     *tele.Bot
	router  *router.Router
	sweeper *sweep.Sweeper
	tmux    *injector.Tmux
	notices *notices.Store
	log     logger.Logger

	sweepInterval time.Duration

	// allowedChat restricts who may reach the injector; zero allows any chat.
	allowedChat int64
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithAllowedChat restricts plain-message handling to the given chat. The
// router carries its own copy of the same restriction for callbacks.
func WithAllowedChat(chatID int64) GatewayOption {
	return func(g *Gateway) {
		g.allowedChat = chatID
	}
}

// WithInjector enables waking the CLI agent with plain chat messages.
func WithInjector(tmux *injector.Tmux) GatewayOption {
	return func(g *Gateway) {
		g.tmux = tmux
	}
}

// WithNotices enables per-chat dedup of delivery-failure warnings.
func WithNotices(store *notices.Store) GatewayOption {
	return func(g *Gateway) {
		g.notices = store
	}
}

// NewGateway assembles a Gateway.
func NewGateway(
	bot *tele.Bot,
	rtr *router.Router,
	sweeper *sweep.Sweeper,
	sweepInterval time.Duration,
	log logger.Logger,
	opts ...GatewayOption,
) *Gateway {
	g := &Gateway{
		bot:           bot,
		router:        rtr,
		sweeper:       sweeper,
		sweepInterval: sweepInterval,
		log:           log,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Run registers the handlers and blocks until ctx is cancelled.
func (g *Gateway) Run(ctx context.Context) error {
	g.bot.Handle(tele.OnCallback, g.onCallback(ctx))
	g.bot.Handle(tele.OnText, g.onText(ctx))

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		g.bot.Start()

		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		g.bot.Stop()

		return ctx.Err()
	})

	group.Go(func() error {
		ticker := time.NewTicker(g.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				g.sweeper.Run(ctx)
			}
		}
	})

	g.log.Info("gateway started")

	err := group.Wait()
	if err != nil && errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

// onCallback adapts a telebot callback into the router's shape. Each callback
// is handled to completion synchronously within the handler.
func (g *Gateway) onCallback(ctx context.Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil {
			return nil
		}

		routed := g.router.Route(ctx, router.Callback{
			ID:     cb.ID,
			ChatID: chatID(cb),
			From:   senderName(cb.Sender),
			Data:   callbackData(cb),
		})
		if !routed {
			// Unknown payloads still need their spinner dismissed.
			return c.Respond(&tele.CallbackResponse{})
		}

		return nil
	}
}

// onText offers plain messages to the awaiting-input path first, then falls
// back to injecting them into the agent's tmux pane.
func (g *Gateway) onText(ctx context.Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		msg := router.Message{
			ChatID: c.Chat().ID,
			From:   senderName(c.Sender()),
			Text:   c.Text(),
		}

		if g.handleText(ctx, msg) {
			g.warnOnce(c, msg.ChatID)
		}

		return nil
	}
}

// handleText routes or injects one plain message and reports whether the chat
// should be warned about an unreachable agent. Messages from outside the
// allowed chat never reach the injector; the keystroke path is as sensitive
// as the approval buttons.
func (g *Gateway) handleText(ctx context.Context, msg router.Message) bool {
	if g.allowedChat != 0 && msg.ChatID != g.allowedChat {
		g.log.Info("message from unauthorized chat",
			"chat_id", msg.ChatID,
			"from", msg.From,
		)

		return false
	}

	if g.router.RouteMessage(ctx, msg) {
		return false
	}

	if g.tmux == nil {
		return false
	}

	if err := g.tmux.SendText(ctx, msg.Text); err != nil {
		g.log.Error("injecting message into tmux",
			"target", g.tmux.Target(),
			"error", err.Error(),
		)

		return true
	}

	if g.notices != nil {
		_ = g.notices.Clear(msg.ChatID)
	}

	return false
}

// warnOnce tells the chat the agent is unreachable, at most once until a
// delivery succeeds again.
func (g *Gateway) warnOnce(c tele.Context, chatID int64) {
	if g.notices == nil || !g.notices.ShouldNotify(chatID) {
		return
	}

	if err := c.Send("⚠️ Could not reach the agent session. Is tmux running?"); err != nil {
		g.log.Error("sending unreachable warning", "error", err.Error())

		return
	}

	if err := g.notices.MarkNotified(chatID); err != nil {
		g.log.Error("persisting notice flag", "error", err.Error())
	}
}

func chatID(cb *tele.Callback) int64 {
	if cb.Message != nil && cb.Message.Chat != nil {
		return cb.Message.Chat.ID
	}

	return 0
}

// callbackData strips the unique-prefix framing telebot adds to buttons built
// through its markup helpers; buttons built from raw data pass through as-is.
func callbackData(cb *tele.Callback) string {
	data := strings.TrimPrefix(cb.Data, "\f")
	if unique, rest, found := strings.Cut(data, "|"); found && cb.Unique != "" && unique == cb.Unique {
		return rest
	}

	return data
}

func senderName(user *tele.User) string {
	if user == nil {
		return ""
	}

	if user.Username != "" {
		return user.Username
	}

	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}
