package injector

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	commandTimeout = 5 * time.Second

	// enterDelay separates the text from the Enter keystroke; sending both in
	// one send-keys call makes some CLI prompts swallow the newline.
	enterDelay = 100 * time.Millisecond
)

// ErrTargetMissing is returned when the configured tmux pane does not exist.
var ErrTargetMissing = errors.New("tmux target not found")

// Tmux injects keystrokes into a fixed tmux target pane.
type Tmux struct {
	target string
	runner CommandRunner
	sleep  func(time.Duration)
}

// TmuxOption configures a Tmux injector.
type TmuxOption func(*Tmux)

// WithRunner overrides the command runner (for testing).
func WithRunner(runner CommandRunner) TmuxOption {
	return func(t *Tmux) {
		t.runner = runner
	}
}

// NewTmux creates an injector for the given tmux target ("session:window.pane").
func NewTmux(target string, opts ...TmuxOption) *Tmux {
	t := &Tmux{
		target: target,
		runner: NewCommandRunner(commandTimeout),
		sleep:  time.Sleep,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Target returns the configured tmux target.
func (t *Tmux) Target() string {
	return t.target
}

// Alive reports whether the target pane currently exists.
func (t *Tmux) Alive(ctx context.Context) bool {
	result, err := t.runner.Run(ctx, "tmux", "has-session", "-t", t.target)

	return err == nil && result.ExitCode == 0
}

// SendText types text into the target pane and presses Enter.
func (t *Tmux) SendText(ctx context.Context, text string) error {
	result, err := t.runner.Run(ctx, "tmux", "send-keys", "-t", t.target, "-l", text)
	if err != nil {
		return errors.Wrap(err, "injecting text")
	}

	if result.ExitCode != 0 {
		return errors.Wrapf(ErrTargetMissing, "%s: %s", t.target, result.Stderr)
	}

	t.sleep(enterDelay)

	if _, err := t.runner.Run(ctx, "tmux", "send-keys", "-t", t.target, "Enter"); err != nil {
		return errors.Wrap(err, "injecting enter")
	}

	return nil
}
