package wizard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/marcusb/eventwise/core"
)

var (
	// ErrNoDraft is returned by Load when no restorable draft exists,
	// including after a corrupt, stale or mismatched record is self-cleaned.
	ErrNoDraft = errors.New("wizard: no draft")

	// NowFunc returns the current time; mockable in tests.
	NowFunc = time.Now
)

// RestoreContext tells Load how the wizard page was reached, per the
// referrer heuristic applied at the transport edge.
type RestoreContext int

const (
	// RestoreNavigation: in-app client-side navigation; the full state
	// including the current step is restored unmodified.
	RestoreNavigation RestoreContext = iota
	// RestoreReload: hard refresh of the same origin; the current step is
	// forced back to 0 so earlier steps are re-confirmed, while all
	// step payloads and completions remain restored.
	RestoreReload
)

// DraftStore persists raw draft records scoped per user. The store owns the
// storage key exclusively; no other component reads or writes it.
// Implementations may honor ttl natively (redis) or ignore it and rely on
// Load's expiry check (sql, in-mem).
type DraftStore interface {
	GetDraft(ctx context.Context, scope string) ([]byte, error)
	PutDraft(ctx context.Context, scope string, data []byte, ttl time.Duration) error
	DeleteDraft(ctx context.Context, scope string) error
}

// Manager owns draft persistence: serializing wizard state, restoring it
// within the TTL, and self-cleaning stale or corrupt records.
type Manager struct {
	store   DraftStore
	ttl     time.Duration
	version string
	log     core.Logger
}

func NewManager(store DraftStore, ttl time.Duration, logger core.Logger) *Manager {
	return &Manager{
		store:   store,
		ttl:     ttl,
		version: CurrentDraftVersion,
		log:     logger,
	}
}

// Scope derives the draft scope from the authenticated user's ID, falling
// back to the anonymous scope.
func Scope(userID string) string {
	if userID == "" {
		return AnonymousScope
	}
	return userID
}

// Save snapshots the state under the given scope, stamped with the current
// time and schema version.
func (m *Manager) Save(ctx context.Context, scope string, state State) (DraftRecord, error) {
	rec := DraftRecord{
		State:     state,
		LastSaved: NowFunc().UTC(),
		Version:   m.version,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return DraftRecord{}, errors.Wrap(err, "serializing draft")
	}
	if err = m.store.PutDraft(ctx, scope, data, m.ttl); err != nil {
		return DraftRecord{}, errors.Wrap(err, "saving draft")
	}
	return rec, nil
}

// Load restores the draft stored under scope. It deletes the stored record
// and returns ErrNoDraft when the record is absent, unparseable,
// schema-invalid, expired or of a different version. On a reload restore the
// current step is forced to 0.
func (m *Manager) Load(ctx context.Context, scope string, restoreCtx RestoreContext) (*DraftRecord, error) {
	data, err := m.store.GetDraft(ctx, scope)
	if err != nil {
		if errors.Cause(err) == ErrNoDraft {
			return nil, ErrNoDraft
		}
		return nil, errors.Wrap(err, "reading draft")
	}

	var rec DraftRecord
	if err = json.Unmarshal(data, &rec); err != nil {
		return nil, m.discard(ctx, scope, "unparseable draft")
	}
	if rec.Version != m.version {
		return nil, m.discard(ctx, scope, "draft version mismatch")
	}
	if NowFunc().UTC().Sub(rec.LastSaved) > m.ttl {
		return nil, m.discard(ctx, scope, "draft expired")
	}
	if err = core.Validate.Struct(rec.State); err != nil {
		return nil, m.discard(ctx, scope, "draft failed schema validation")
	}

	if restoreCtx == RestoreReload {
		rec.CurrentStep = 0
	}
	return &rec, nil
}

// Clear deletes the draft stored under scope.
func (m *Manager) Clear(ctx context.Context, scope string) error {
	if err := m.store.DeleteDraft(ctx, scope); err != nil && errors.Cause(err) != ErrNoDraft {
		return errors.Wrap(err, "clearing draft")
	}
	return nil
}

// discard silently self-cleans an unusable record; not surfaced to the user
// beyond the absence of a restore prompt.
func (m *Manager) discard(ctx context.Context, scope, reason string) error {
	if m.log != nil {
		m.log.Debug("discarding draft: "+reason, map[string]interface{}{"scope": scope})
	}
	if err := m.store.DeleteDraft(ctx, scope); err != nil && errors.Cause(err) != ErrNoDraft {
		if m.log != nil {
			m.log.Warn("deleting unusable draft", err)
		}
	}
	return ErrNoDraft
}
