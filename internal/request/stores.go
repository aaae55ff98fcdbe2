package request

import (
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/tgbridge/internal/store"
)

// Stores bundles the two record collections under one state directory.
//
// Layout: <stateDir>/permissions/*.json and <stateDir>/selections/*.json,
// each with a sibling lastid counter file and tmp/ scratch directory.
type Stores struct {
	Permissions *store.Collection[*Permission]
	Selections  *store.Collection[*Selection]
}

// OpenStores opens (creating if needed) both collections under stateDir.
func OpenStores(stateDir string) (*Stores, error) {
	perms, err := store.NewCollection(
		filepath.Join(stateDir, "permissions"),
		func() *Permission { return &Permission{} },
	)
	if err != nil {
		return nil, errors.Wrap(err, "opening permissions collection")
	}

	sels, err := store.NewCollection(
		filepath.Join(stateDir, "selections"),
		func() *Selection { return &Selection{} },
	)
	if err != nil {
		return nil, errors.Wrap(err, "opening selections collection")
	}

	return &Stores{Permissions: perms, Selections: sels}, nil
}

// AwaitingInput finds the selection currently awaiting a free-text answer in
// chatID. At most one such request exists per chat at a time; the linear scan
// is cheap because outstanding requests are bounded by active hook processes.
func (s *Stores) AwaitingInput(chatID int64) (*Selection, bool) {
	records, err := s.Selections.ListAll()
	if err != nil {
		return nil, false
	}

	for _, sel := range records {
		if sel.ChatID == chatID && sel.Status == SelectionAwaitingInput {
			return sel, true
		}
	}

	return nil, false
}
