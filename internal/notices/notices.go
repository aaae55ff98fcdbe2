// Package notices tracks which chats have already been told about a delivery
// failure, so the gateway does not repeat the same warning on every message.
// The flag lives in the state directory under the same atomic-write
// discipline as request records, not in an anonymous process-wide map, so a
// gateway restart keeps the dedup state.
package notices

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	filePermissions = 0o600
	dirPermissions  = 0o700
)

// Store persists per-chat "already notified" flags in one JSON file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store backed by <stateDir>/notices.json.
func NewStore(stateDir string) (*Store, error) {
	if err := os.MkdirAll(stateDir, dirPermissions); err != nil {
		return nil, errors.Wrap(err, "creating state directory")
	}

	return &Store{path: filepath.Join(stateDir, "notices.json")}, nil
}

// ShouldNotify reports whether chatID has not been warned since the last
// Clear. It never fails: unreadable state means "notify".
func (s *Store) ShouldNotify(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	flags := s.load()
	_, notified := flags[key(chatID)]

	return !notified
}

// MarkNotified records that chatID has been warned.
func (s *Store) MarkNotified(chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	flags := s.load()
	flags[key(chatID)] = time.Now()

	return s.save(flags)
}

// Clear resets the flag for chatID, typically after a successful delivery.
func (s *Store) Clear(chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	flags := s.load()
	if _, ok := flags[key(chatID)]; !ok {
		return nil
	}

	delete(flags, key(chatID))

	return s.save(flags)
}

// load reads the flag file; corrupt or missing state yields an empty map.
func (s *Store) load() map[string]time.Time {
	flags := make(map[string]time.Time)

	data, err := os.ReadFile(s.path) //nolint:gosec // G304: path derived from state dir config
	if err != nil {
		return flags
	}

	if err := json.Unmarshal(data, &flags); err != nil {
		return make(map[string]time.Time)
	}

	return flags
}

func (s *Store) save(flags map[string]time.Time) error {
	data, err := json.MarshalIndent(flags, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling notice flags")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "notices-*")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}

	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)

		return errors.Wrap(err, "writing temp file")
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)

		return errors.Wrap(err, "closing temp file")
	}

	if err := os.Chmod(tmpPath, filePermissions); err != nil {
		_ = os.Remove(tmpPath)

		return errors.Wrap(err, "setting file mode")
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)

		return errors.Wrap(err, "renaming into place")
	}

	return nil
}

func key(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
