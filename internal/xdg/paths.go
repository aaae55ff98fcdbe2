// Package xdg resolves the on-disk locations tgbridge uses, following XDG
// Base Directory conventions. All global paths live here; nothing else in the
// codebase hardcodes a directory.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "tgbridge"

func userHome() (string, error) {
	return os.UserHomeDir()
}

// ConfigHome returns $XDG_CONFIG_HOME or ~/.config.
func ConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}

	home, err := userHome()
	if err != nil {
		return filepath.Join("~", ".config")
	}

	return filepath.Join(home, ".config")
}

// StateHome returns $XDG_STATE_HOME or ~/.local/state.
func StateHome() string {
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		return v
	}

	home, err := userHome()
	if err != nil {
		return filepath.Join("~", ".local", "state")
	}

	return filepath.Join(home, ".local", "state")
}

// ConfigDir returns the tgbridge configuration directory.
func ConfigDir() string {
	return filepath.Join(ConfigHome(), appName)
}

// ConfigFile returns the global configuration file path.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// StateDir returns the directory holding request records and counters.
func StateDir() string {
	return filepath.Join(StateHome(), appName)
}

// LogFile returns the shared log file path.
func LogFile() string {
	return filepath.Join(StateDir(), "tgbridge.log")
}

// ExpandTilde replaces a leading ~ with the user home directory.
func ExpandTilde(path string) string {
	if path == "~" || len(path) >= 2 && path[0] == '~' && path[1] == os.PathSeparator {
		home, err := userHome()
		if err != nil {
			return path
		}

		return filepath.Join(home, path[1:])
	}

	return path
}
