// Package telegram implements the chat.Client interface on telebot and wires
// the gateway-side event handlers into the callback router.
package telegram

import (
	"context"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	tele "gopkg.in/telebot.v3"

	"github.com/smykla-skalski/tgbridge/internal/chat"
)

const (
	pollerTimeout  = 10 * time.Second
	maxSendRetries = 3
)

// NewBot creates a long-polling telebot instance for the given token.
func NewBot(token string) (*tele.Bot, error) {
	bot, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: pollerTimeout},
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating telegram bot")
	}

	return bot, nil
}

// Client adapts telebot to the narrow chat.Client interface, retrying
// transient API failures with exponential backoff.
type Client struct {
	bot *tele.Bot
}

// NewClient creates a Client over an existing bot.
func NewClient(bot *tele.Bot) *Client {
	return &Client{bot: bot}
}

// SendButtons sends text with an inline keyboard and returns the message ID.
func (c *Client) SendButtons(ctx context.Context, chatID int64, text string, buttons [][]chat.Button) (int, error) {
	var messageID int

	err := c.retry(ctx, func() error {
		msg, err := c.bot.Send(
			&tele.Chat{ID: chatID},
			text,
			&tele.SendOptions{ParseMode: tele.ModeHTML},
			markup(buttons),
		)
		if err != nil {
			return err
		}

		messageID = msg.ID

		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "sending message")
	}

	return messageID, nil
}

// EditMessage replaces the text and keyboard of an existing message.
func (c *Client) EditMessage(ctx context.Context, chatID int64, messageID int, text string, buttons [][]chat.Button) error {
	ref := &tele.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chatID,
	}

	err := c.retry(ctx, func() error {
		_, err := c.bot.Edit(
			ref,
			text,
			&tele.SendOptions{ParseMode: tele.ModeHTML},
			markup(buttons),
		)
		if errors.Is(err, tele.ErrSameMessageContent) {
			return nil
		}

		return err
	})

	return errors.Wrap(err, "editing message")
}

// AnswerCallback acknowledges a callback query. Not retried: Telegram rejects
// a second answer for the same callback, and a lost spinner is harmless.
func (c *Client) AnswerCallback(_ context.Context, callbackID, text string, alert bool) error {
	err := c.bot.Respond(
		&tele.Callback{ID: callbackID},
		&tele.CallbackResponse{Text: text, ShowAlert: alert},
	)

	return errors.Wrap(err, "answering callback")
}

func (c *Client) retry(ctx context.Context, op func() error) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxSendRetries),
		ctx,
	)

	return backoff.Retry(op, policy)
}

// markup converts the abstract button layout to a telebot inline keyboard.
// A nil layout yields an empty keyboard, which removes the buttons on edit.
func markup(buttons [][]chat.Button) *tele.ReplyMarkup {
	keyboard := make([][]tele.InlineButton, 0, len(buttons))

	for _, row := range buttons {
		line := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			line = append(line, tele.InlineButton{Text: b.Label, Data: b.Data})
		}

		keyboard = append(keyboard, line)
	}

	return &tele.ReplyMarkup{InlineKeyboard: keyboard}
}

var _ chat.Client = (*Client)(nil)
