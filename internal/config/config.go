// Package config loads tgbridge configuration from defaults, the global TOML
// file, and TGBRIDGE_* environment variables, in increasing precedence.
package config

import (
	"time"

	"github.com/cockroachdb/errors"
)

var (
	// ErrMissingToken is returned when no Telegram bot token is configured.
	ErrMissingToken = errors.New("telegram.token is required")

	// ErrMissingChatID is returned when no Telegram chat is configured.
	ErrMissingChatID = errors.New("telegram.chat_id is required")

	// ErrInvalidInterval is returned for non-positive wait settings.
	ErrInvalidInterval = errors.New("wait intervals must be positive")
)

// Duration wraps time.Duration for TOML parsing.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrap(err, "parsing duration")
	}

	*d = Duration(parsed)

	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full tgbridge configuration.
type Config struct {
	Telegram TelegramConfig `koanf:"telegram"`
	State    StateConfig    `koanf:"state"`
	Wait     WaitConfig     `koanf:"wait"`
	Sweep    SweepConfig    `koanf:"sweep"`
	Tmux     TmuxConfig     `koanf:"tmux"`
	Log      LogConfig      `koanf:"log"`
}

// TelegramConfig configures the bot connection and authorization.
type TelegramConfig struct {
	// Token is the bot token from BotFather.
	Token string `koanf:"token"`

	// ChatID is the only conversation allowed to act on requests.
	ChatID int64 `koanf:"chat_id"`
}

// StateConfig configures the shared record store.
type StateConfig struct {
	// Dir holds the permissions/ and selections/ collections. Defaults to
	// the XDG state directory.
	Dir string `koanf:"dir"`
}

// WaitConfig configures the hook's blocking wait.
type WaitConfig struct {
	// Timeout bounds how long a hook blocks for a human decision.
	Timeout Duration `koanf:"timeout"`

	// PollInterval is the sleep between record polls.
	PollInterval Duration `koanf:"poll_interval"`
}

// SweepConfig configures orphan-record reclamation.
type SweepConfig struct {
	// MaxAge is how old a record must be before the sweeper reclaims it.
	MaxAge Duration `koanf:"max_age"`

	// Interval is how often the gateway sweeps.
	Interval Duration `koanf:"interval"`
}

// TmuxConfig configures the keystroke injector.
type TmuxConfig struct {
	// Target is the tmux pane running the CLI agent ("session:window.pane").
	// Empty disables injection.
	Target string `koanf:"target"`
}

// LogConfig configures logging.
type LogConfig struct {
	// File is the log file path; stdout stays reserved for hook output.
	File string `koanf:"file"`

	Debug bool `koanf:"debug"`
	Trace bool `koanf:"trace"`
}

// Validate checks the invariants every command relies on.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return ErrMissingToken
	}

	if c.Telegram.ChatID == 0 {
		return ErrMissingChatID
	}

	if c.Wait.Timeout.Std() <= 0 || c.Wait.PollInterval.Std() <= 0 {
		return ErrInvalidInterval
	}

	return nil
}
