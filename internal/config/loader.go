package config

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-viper/mapstructure/v2"
	tomlparser "github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/smykla-skalski/tgbridge/internal/xdg"
)

// Default configuration values.
const (
	DefaultWaitTimeout   = "5m"
	DefaultPollInterval  = "500ms"
	DefaultSweepMaxAge   = "24h"
	DefaultSweepInterval = "10m"

	envPrefix = "TGBRIDGE_"
)

// Loader loads configuration with koanf.
// Precedence order (highest to lowest):
// 1. Environment variables (TGBRIDGE_*)
// 2. Global config ($XDG_CONFIG_HOME/tgbridge/config.toml)
// 3. Defaults
type Loader struct {
	k          *koanf.Koanf
	configPath string
}

// NewLoader creates a Loader reading the default global config path.
func NewLoader() *Loader {
	return NewLoaderWithPath(xdg.ConfigFile())
}

// NewLoaderWithPath creates a Loader reading the given config file (for
// testing and the --config flag).
func NewLoaderWithPath(path string) *Loader {
	return &Loader{
		k:          koanf.New("."),
		configPath: path,
	}
}

// Load resolves the configuration from all sources and validates nothing;
// commands that need a live bot call Validate themselves, so read-only
// commands keep working with a partial config.
func (l *Loader) Load() (*Config, error) {
	l.k = koanf.New(".")

	if err := l.k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, "loading defaults")
	}

	if err := l.loadTOMLFile(l.configPath); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "loading config file")
	}

	envOpt := env.Opt{
		Prefix:        envPrefix,
		TransformFunc: envTransform,
	}

	if err := l.k.Load(env.Provider(".", envOpt), nil); err != nil {
		return nil, errors.Wrap(err, "loading env vars")
	}

	cfg := &Config{}

	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				stringToDurationHookFunc(),
				mapstructure.StringToTimeDurationHookFunc(),
			),
			WeaklyTypedInput: true,
			Result:           cfg,
		},
	}

	if err := l.k.UnmarshalWithConf("", cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if cfg.State.Dir == "" {
		cfg.State.Dir = xdg.StateDir()
	} else {
		cfg.State.Dir = xdg.ExpandTilde(cfg.State.Dir)
	}

	if cfg.Log.File == "" {
		cfg.Log.File = xdg.LogFile()
	} else {
		cfg.Log.File = xdg.ExpandTilde(cfg.Log.File)
	}

	return cfg, nil
}

func (l *Loader) loadTOMLFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	return l.k.Load(file.Provider(path), tomlparser.Parser())
}

func defaults() map[string]any {
	return map[string]any{
		"wait.timeout":       DefaultWaitTimeout,
		"wait.poll_interval": DefaultPollInterval,
		"sweep.max_age":      DefaultSweepMaxAge,
		"sweep.interval":     DefaultSweepInterval,
	}
}

// envTransform maps TGBRIDGE_TELEGRAM__TOKEN to telegram.token. A double
// underscore separates nesting levels so keys like chat_id survive.
func envTransform(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	key = strings.ReplaceAll(key, "__", ".")

	return key, value
}
