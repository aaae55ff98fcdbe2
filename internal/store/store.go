// Package store provides atomic-file persistence for keyed JSON records.
//
// Two independent processes (the gateway and short-lived hook processes) race
// on these records with no locks. Correctness rests on atomic rename making
// every read see a fully-formed record, and on the version stamp letting
// callers reject stale writes instead of blindly merging over them.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	// FilePermissions is the mode for record and counter files.
	FilePermissions = 0o600

	// DirPermissions is the mode for state directories.
	DirPermissions = 0o700

	recordExt = ".json"
	tmpDir    = "tmp"
)

var (
	// ErrNotFound is returned when a record is absent or unreadable. Callers
	// cannot distinguish "never existed" from "corrupted"; both resolve to the
	// same fallback behavior.
	ErrNotFound = errors.New("record not found")

	// ErrStaleVersion is returned by UpdateAt when the record changed since
	// the caller observed it.
	ErrStaleVersion = errors.New("record version is stale")
)

// Meta carries the store-assigned fields every record embeds.
type Meta struct {
	// RequestID is the opaque unique identity, assigned at creation.
	RequestID string `json:"request_id"`

	// Timestamp is the creation time.
	Timestamp time.Time `json:"timestamp"`

	// Version increases by one on every persisted write.
	Version int64 `json:"version"`
}

// Record is any JSON-serializable type the store can persist. The method
// cannot be named Meta: records embed the Meta struct, and Go rejects a
// field and method sharing a name.
type Record interface {
	// RecordMeta returns the embedded store metadata for stamping.
	RecordMeta() *Meta
}

// Collection persists one record type under a single directory, one file per
// request ID, plus a sibling counter file for ID generation.
type Collection[T Record] struct {
	dir     string
	alloc   func() T
	idGen   *IDGenerator
	timeNow func() time.Time
}

// CollectionOption configures a Collection.
type CollectionOption[T Record] func(*Collection[T])

// WithTimeFunc overrides the clock used for timestamps (for testing).
func WithTimeFunc[T Record](now func() time.Time) CollectionOption[T] {
	return func(c *Collection[T]) {
		c.timeNow = now
	}
}

// NewCollection opens (creating if needed) a collection rooted at dir. The
// alloc function returns a fresh zero record for decoding.
func NewCollection[T Record](dir string, alloc func() T, opts ...CollectionOption[T]) (*Collection[T], error) {
	if err := os.MkdirAll(filepath.Join(dir, tmpDir), DirPermissions); err != nil {
		return nil, errors.Wrap(err, "creating collection directory")
	}

	c := &Collection[T]{
		dir:     dir,
		alloc:   alloc,
		idGen:   NewIDGenerator(filepath.Join(dir, "lastid")),
		timeNow: time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Create stamps the record with a fresh ID, creation time, and version 1,
// then persists it.
func (c *Collection[T]) Create(rec T) (T, error) {
	var zero T

	id, err := c.idGen.Next(c.timeNow())
	if err != nil {
		return zero, errors.Wrap(err, "generating request id")
	}

	meta := rec.RecordMeta()
	meta.RequestID = id
	meta.Timestamp = c.timeNow()
	meta.Version = 1

	if err := c.write(rec); err != nil {
		return zero, err
	}

	return rec, nil
}

// Get returns the record with the given ID. A missing or unparseable file
// yields ErrNotFound.
func (c *Collection[T]) Get(id string) (T, error) {
	var zero T

	data, err := os.ReadFile(c.path(id)) //nolint:gosec // G304: path derived from state dir config
	if err != nil {
		return zero, ErrNotFound
	}

	rec := c.alloc()
	if err := json.Unmarshal(data, rec); err != nil {
		// Corrupt state is indistinguishable from absence for callers.
		return zero, ErrNotFound
	}

	return rec, nil
}

// Update reads the record, applies mutate, bumps the version, and persists.
// If mutate returns an error nothing is written and the error propagates.
// Concurrent writers race as last-write-wins; use UpdateAt to reject stale
// writes instead.
func (c *Collection[T]) Update(id string, mutate func(T) error) (T, error) {
	return c.update(id, -1, mutate)
}

// UpdateAt behaves like Update but fails with ErrStaleVersion when the
// record's persisted version no longer matches the version the caller
// observed.
func (c *Collection[T]) UpdateAt(id string, observedVersion int64, mutate func(T) error) (T, error) {
	return c.update(id, observedVersion, mutate)
}

func (c *Collection[T]) update(id string, observedVersion int64, mutate func(T) error) (T, error) {
	var zero T

	rec, err := c.Get(id)
	if err != nil {
		return zero, err
	}

	if observedVersion >= 0 && rec.RecordMeta().Version != observedVersion {
		return zero, errors.Wrapf(ErrStaleVersion,
			"observed %d, have %d", observedVersion, rec.RecordMeta().Version)
	}

	if err := mutate(rec); err != nil {
		return zero, err
	}

	rec.RecordMeta().Version++

	if err := c.write(rec); err != nil {
		return zero, err
	}

	return rec, nil
}

// Delete removes the record. Deleting an absent record is a no-op.
func (c *Collection[T]) Delete(id string) error {
	if err := os.Remove(c.path(id)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "deleting record")
	}

	return nil
}

// ListAll returns every readable record in the collection. Corrupt files are
// skipped, not reported.
func (c *Collection[T]) ListAll() ([]T, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, errors.Wrap(err, "listing collection directory")
	}

	var records []T

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExt) {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), recordExt)

		rec, err := c.Get(id)
		if err != nil {
			continue
		}

		records = append(records, rec)
	}

	return records, nil
}

func (c *Collection[T]) path(id string) string {
	return filepath.Join(c.dir, id+recordExt)
}

// write marshals the record and renames it into place so a concurrent reader
// never observes a partially-written file.
func (c *Collection[T]) write(rec T) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling record")
	}

	return atomicWrite(filepath.Join(c.dir, tmpDir), c.path(rec.RecordMeta().RequestID), data)
}

// atomicWrite writes data to a temp file in scratchDir and renames it to dst.
func atomicWrite(scratchDir, dst string, data []byte) error {
	tmp, err := os.CreateTemp(scratchDir, "write-*")
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

	if err := os.Chmod(tmpPath, FilePermissions); err != nil {
		_ = os.Remove(tmpPath)

		return errors.Wrap(err, "setting temp file mode")
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)

		return errors.Wrap(err, "renaming into place")
	}

	return nil
}
