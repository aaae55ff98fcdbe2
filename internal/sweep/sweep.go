// Package sweep reclaims orphaned request records. A hook process that is
// killed mid-wait leaves a pending record behind with no waiter to expire it;
// the sweeper deletes such records purely by age, independent of any live
// waiter.
package sweep

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/smykla-skalski/tgbridge/internal/chat"
	"github.com/smykla-skalski/tgbridge/internal/present"
	"github.com/smykla-skalski/tgbridge/internal/request"
	"github.com/smykla-skalski/tgbridge/pkg/logger"
)

// Sweeper removes records older than a configured age.
type Sweeper struct {
	stores  *request.Stores
	chat    chat.Client
	log     logger.Logger
	maxAge  time.Duration
	timeNow func() time.Time
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithTimeFunc overrides the clock (for testing).
func WithTimeFunc(now func() time.Time) Option {
	return func(s *Sweeper) {
		s.timeNow = now
	}
}

// NewSweeper creates a Sweeper. The chat client is used for best-effort
// message edits on reclaimed records and may be nil for offline sweeps.
func NewSweeper(stores *request.Stores, chatClient chat.Client, log logger.Logger, maxAge time.Duration, opts ...Option) *Sweeper {
	s := &Sweeper{
		stores:  stores,
		chat:    chatClient,
		log:     log,
		maxAge:  maxAge,
		timeNow: time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run reclaims expired-by-age records in both collections and returns how
// many were removed.
func (s *Sweeper) Run(ctx context.Context) int {
	cutoff := s.timeNow().Add(-s.maxAge)
	reclaimed := 0

	perms, err := s.stores.Permissions.ListAll()
	if err != nil {
		s.log.Error("listing permissions for sweep", "error", err.Error())
	}

	for _, p := range perms {
		if !p.Timestamp.Before(cutoff) {
			continue
		}

		s.reclaimPermission(ctx, p)
		reclaimed++
	}

	sels, err := s.stores.Selections.ListAll()
	if err != nil {
		s.log.Error("listing selections for sweep", "error", err.Error())
	}

	for _, sel := range sels {
		if !sel.Timestamp.Before(cutoff) {
			continue
		}

		s.reclaimSelection(ctx, sel)
		reclaimed++
	}

	if reclaimed > 0 {
		s.log.Info("sweep reclaimed orphaned records", "count", reclaimed)
	}

	return reclaimed
}

func (s *Sweeper) reclaimPermission(ctx context.Context, p *request.Permission) {
	s.log.Info("reclaiming orphaned permission",
		"request_id", p.RequestID,
		"tool", p.ToolName,
		"age", humanize.Time(p.Timestamp),
	)

	if !p.Terminal() && s.chat != nil && p.MessageID != 0 {
		// Leave the remote user a resolved message rather than stale buttons.
		if err := s.chat.EditMessage(ctx, p.ChatID, p.MessageID, present.PermissionTimedOut(p, s.maxAge), nil); err != nil {
			s.log.Debug("editing reclaimed permission message", "request_id", p.RequestID, "error", err.Error())
		}
	}

	if err := s.stores.Permissions.Delete(p.RequestID); err != nil {
		s.log.Error("deleting swept record", "request_id", p.RequestID, "error", err.Error())
	}
}

func (s *Sweeper) reclaimSelection(ctx context.Context, sel *request.Selection) {
	s.log.Info("reclaiming orphaned selection",
		"request_id", sel.RequestID,
		"age", humanize.Time(sel.Timestamp),
	)

	if !sel.Terminal() && s.chat != nil && sel.MessageID != 0 {
		if err := s.chat.EditMessage(ctx, sel.ChatID, sel.MessageID, present.SelectionTimedOut(sel, s.maxAge), nil); err != nil {
			s.log.Debug("editing reclaimed selection message", "request_id", sel.RequestID, "error", err.Error())
		}
	}

	if err := s.stores.Selections.Delete(sel.RequestID); err != nil {
		s.log.Error("deleting swept record", "request_id", sel.RequestID, "error", err.Error())
	}
}
