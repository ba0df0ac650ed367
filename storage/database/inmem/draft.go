package inmemdb

import (
	"context"
	"time"

	"github.com/marcusb/eventwise/core/wizard"
)

type draftStore struct {
	db *draftTable
}

// NewDraftStore returns a DraftStore keeping drafts in process memory.
// Expired rows are dropped lazily on read.
func NewDraftStore(db *DB) wizard.DraftStore {
	return &draftStore{db: db.drafts}
}

func (store *draftStore) GetDraft(_ context.Context, scope string) ([]byte, error) {
	store.db.mutex.Lock()
	defer store.db.mutex.Unlock()

	row, ok := store.db.table[scope]
	if !ok {
		return nil, wizard.ErrNoDraft
	}
	if !row.expiresAt.IsZero() && time.Now().After(row.expiresAt) {
		delete(store.db.table, scope)
		return nil, wizard.ErrNoDraft
	}
	return row.data, nil
}

func (store *draftStore) PutDraft(_ context.Context, scope string, data []byte, ttl time.Duration) error {
	store.db.mutex.Lock()
	defer store.db.mutex.Unlock()

	row := draftRow{data: data}
	if ttl > 0 {
		row.expiresAt = time.Now().Add(ttl)
	}
	store.db.table[scope] = row
	return nil
}

func (store *draftStore) DeleteDraft(_ context.Context, scope string) error {
	store.db.mutex.Lock()
	defer store.db.mutex.Unlock()
	delete(store.db.table, scope)
	return nil
}
