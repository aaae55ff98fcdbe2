// Package waiter implements the blocking poll loop the hook process runs
// while a human decides. The hook suspends only in the sleep between polls;
// the gateway process mutates the shared record and the next poll observes
// the terminal state.
//
// Plain file polling is deliberate: the two sides may be genuinely separate
// processes, and human response latency dominates poll latency by orders of
// magnitude.
package waiter

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/tgbridge/internal/chat"
	"github.com/smykla-skalski/tgbridge/internal/present"
	"github.com/smykla-skalski/tgbridge/internal/request"
	"github.com/smykla-skalski/tgbridge/internal/store"
	"github.com/smykla-skalski/tgbridge/pkg/logger"
)

// Outcome is the result of an await.
//
//go:generate enumer -type=Outcome -trimprefix=Outcome -transform=lower
type Outcome int

const (
	// OutcomeTimeout covers expiry, deletion-without-resolution, and the
	// waiter's own deadline. Not an error; a first-class terminal result.
	OutcomeTimeout Outcome = iota

	// OutcomeApproved means the user approved the tool call.
	OutcomeApproved

	// OutcomeDenied means the user denied the tool call.
	OutcomeDenied

	// OutcomeAnswered means the user answered the question.
	OutcomeAnswered

	// OutcomeCancelled means the user cancelled the question.
	OutcomeCancelled
)

// Waiter blocks hook processes until their record reaches a terminal state.
type Waiter struct {
	stores *request.Stores
	chat   chat.Client
	log    logger.Logger
}

// NewWaiter creates a Waiter over the given stores. The chat client is used
// only for the timeout-banner edit, which is fire-and-forget.
func NewWaiter(stores *request.Stores, chatClient chat.Client, log logger.Logger) *Waiter {
	return &Waiter{stores: stores, chat: chatClient, log: log}
}

// AwaitPermission polls the permission record until it resolves or timeout
// elapses. The terminal record (or its last observed state on timeout) is
// returned alongside the outcome; the record itself is deleted before return.
func (w *Waiter) AwaitPermission(
	ctx context.Context,
	id string,
	timeout, pollInterval time.Duration,
) (Outcome, *request.Permission, error) {
	return await(ctx, w, w.stores.Permissions, id, timeout, pollInterval,
		func(p *request.Permission) (Outcome, bool) {
			switch p.Status {
			case request.PermissionApproved:
				return OutcomeApproved, true
			case request.PermissionDenied:
				return OutcomeDenied, true
			case request.PermissionExpired:
				return OutcomeTimeout, true
			case request.PermissionPending:
				return OutcomeTimeout, false
			default:
				return OutcomeTimeout, false
			}
		},
		func(p *request.Permission) error {
			return p.Expire()
		},
		func(p *request.Permission) (int64, int, string) {
			return p.ChatID, p.MessageID, present.PermissionTimedOut(p, timeout)
		},
	)
}

// AwaitSelection polls the selection record until it resolves or timeout
// elapses.
func (w *Waiter) AwaitSelection(
	ctx context.Context,
	id string,
	timeout, pollInterval time.Duration,
) (Outcome, *request.Selection, error) {
	return await(ctx, w, w.stores.Selections, id, timeout, pollInterval,
		func(s *request.Selection) (Outcome, bool) {
			switch s.Status {
			case request.SelectionAnswered:
				return OutcomeAnswered, true
			case request.SelectionCancelled:
				return OutcomeCancelled, true
			case request.SelectionExpired:
				return OutcomeTimeout, true
			case request.SelectionPending, request.SelectionAwaitingInput:
				return OutcomeTimeout, false
			default:
				return OutcomeTimeout, false
			}
		},
		func(s *request.Selection) error {
			return s.Expire()
		},
		func(s *request.Selection) (int64, int, string) {
			return s.ChatID, s.MessageID, present.SelectionTimedOut(s, timeout)
		},
	)
}

// await runs the poll loop shared by both record kinds. classify maps a
// record to its outcome; expire marks it expired on deadline; timedOut yields
// the chat coordinates and banner text for the timeout edit.
func await[T store.Record](
	ctx context.Context,
	w *Waiter,
	coll *store.Collection[T],
	id string,
	timeout, pollInterval time.Duration,
	classify func(T) (Outcome, bool),
	expire func(T) error,
	timedOut func(T) (int64, int, string),
) (Outcome, T, error) {
	var zero T

	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		if err := sleep(ctx, pollInterval); err != nil {
			return OutcomeTimeout, zero, err
		}

		rec, err := coll.Get(id)
		if err != nil {
			// Deleted (or corrupted) without resolution is failure, not success.
			w.log.Info("record vanished mid-wait", "request_id", id)

			return OutcomeTimeout, zero, nil
		}

		outcome, terminal := classify(rec)
		if terminal {
			if err := coll.Delete(id); err != nil {
				w.log.Error("deleting resolved record", "request_id", id, "error", err.Error())
			}

			return outcome, rec, nil
		}
	}

	return expireAndReturn(ctx, w, coll, id, classify, expire, timedOut)
}

// expireAndReturn marks the record expired so a late callback lands on an
// already-expired record, attempts the timeout banner edit, and deletes the
// record. Neither side effect may prevent returning the timeout outcome.
func expireAndReturn[T store.Record](
	ctx context.Context,
	w *Waiter,
	coll *store.Collection[T],
	id string,
	classify func(T) (Outcome, bool),
	expire func(T) error,
	timedOut func(T) (int64, int, string),
) (Outcome, T, error) {
	var zero T

	rec, err := coll.Update(id, expire)
	if err != nil {
		// A decision may have landed in the final window; honor it instead of
		// reporting a timeout over a resolved record.
		if current, getErr := coll.Get(id); getErr == nil {
			if outcome, terminal := classify(current); terminal {
				_ = coll.Delete(id)

				return outcome, current, nil
			}
		}

		w.log.Debug("expiry write skipped", "request_id", id, "error", err.Error())

		_ = coll.Delete(id)

		return OutcomeTimeout, zero, nil
	}

	chatID, messageID, banner := timedOut(rec)
	if messageID != 0 {
		if err := w.chat.EditMessage(ctx, chatID, messageID, banner, nil); err != nil {
			w.log.Error("editing timeout banner", "request_id", id, "error", err.Error())
		}
	}

	if err := coll.Delete(id); err != nil {
		w.log.Error("deleting expired record", "request_id", id, "error", err.Error())
	}

	w.log.Info("request timed out", "request_id", id)

	return OutcomeTimeout, rec, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "wait interrupted")
	case <-timer.C:
		return nil
	}
}
