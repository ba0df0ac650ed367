package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/marcusb/eventwise/core/wizard"
)

type draftStore struct {
	db *sqlx.DB
}

// NewDraftStore returns a DraftStore backed by the wizard_draft table.
// Expired rows are dropped lazily on read; PurgeExpiredDrafts reclaims the rest.
func NewDraftStore(db *sqlx.DB) wizard.DraftStore {
	return &draftStore{db: db}
}

func (store *draftStore) GetDraft(ctx context.Context, scope string) ([]byte, error) {
	var row struct {
		Data      []byte    `db:"data"`
		ExpiresAt null.Time `db:"expires_at"`
	}
	q := `SELECT data, expires_at FROM wizard_draft WHERE scope = $1`
	if err := store.db.GetContext(ctx, &row, q, scope); err != nil {
		if err == sql.ErrNoRows {
			return nil, wizard.ErrNoDraft
		}
		return nil, errors.Wrap(err, "getting draft")
	}
	if row.ExpiresAt.Valid && time.Now().After(row.ExpiresAt.Time) {
		_ = store.DeleteDraft(ctx, scope)
		return nil, wizard.ErrNoDraft
	}
	return row.Data, nil
}

func (store *draftStore) PutDraft(ctx context.Context, scope string, data []byte, ttl time.Duration) error {
	var expiresAt null.Time
	if ttl > 0 {
		expiresAt = null.TimeFrom(time.Now().Add(ttl))
	}
	q := `INSERT INTO wizard_draft (scope, data, expires_at, updated_at)
	      VALUES ($1, $2, $3, $4)
	      ON CONFLICT (scope) DO UPDATE SET data = $2, expires_at = $3, updated_at = $4`
	if _, err := store.db.ExecContext(ctx, q, scope, data, expiresAt, time.Now().UTC()); err != nil {
		return errors.Wrap(err, "saving draft")
	}
	return nil
}

func (store *draftStore) DeleteDraft(ctx context.Context, scope string) error {
	if _, err := store.db.ExecContext(ctx, `DELETE FROM wizard_draft WHERE scope = $1`, scope); err != nil {
		return errors.Wrap(err, "deleting draft")
	}
	return nil
}

// PurgeExpiredDrafts deletes every draft past its expiry; returns the number
// of rows reclaimed. Run from the admin CLI.
func PurgeExpiredDrafts(ctx context.Context, db *sqlx.DB) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM wizard_draft WHERE expires_at IS NOT NULL AND expires_at < NOW()`)
	if err != nil {
		return 0, errors.Wrap(err, "purging drafts")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "purging drafts")
	}
	return n, nil
}
