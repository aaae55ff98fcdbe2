package store

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

const idBase = 36

// IDGenerator produces collision-resistant request IDs: a base-36 timestamp
// component joined with a strictly-incrementing counter persisted in a small
// index file. The counter survives process restarts, so two hook processes
// starting within the same millisecond still get distinct IDs.
type IDGenerator struct {
	mu   sync.Mutex
	path string
}

// NewIDGenerator creates a generator backed by the counter file at path.
func NewIDGenerator(path string) *IDGenerator {
	return &IDGenerator{path: path}
}

// Next returns a new unique ID using now as the timestamp component.
func (g *IDGenerator) Next(now time.Time) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	count, err := g.load()
	if err != nil {
		return "", err
	}

	count++

	if err := g.save(count); err != nil {
		return "", err
	}

	ts := strconv.FormatInt(now.UnixMilli(), idBase)

	return ts + "-" + strconv.FormatInt(count, idBase), nil
}

// load reads the persisted counter. A missing or corrupt file restarts the
// counter at zero; uniqueness still holds through the timestamp component.
func (g *IDGenerator) load() (int64, error) {
	data, err := os.ReadFile(g.path) //nolint:gosec // G304: path derived from state dir config
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}

		return 0, errors.Wrap(err, "reading counter file")
	}

	count, err := strconv.ParseInt(strings.TrimSpace(string(data)), idBase, 64)
	if err != nil {
		return 0, nil
	}

	return count, nil
}

// save persists the counter with the same atomic-write discipline as records.
func (g *IDGenerator) save(count int64) error {
	scratch := filepath.Join(filepath.Dir(g.path), tmpDir)

	return atomicWrite(scratch, g.path, []byte(strconv.FormatInt(count, idBase)))
}
