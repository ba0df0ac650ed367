package redisstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/marcusb/eventwise/core/wizard"
)

const draftKeyPrefix = "wizard:draft:"

type draftStore struct {
	client *goredis.Client
}

// NewDraftStore returns a DraftStore backed by Redis. The ttl is enforced
// natively with key expiry.
func NewDraftStore(url string) (wizard.DraftStore, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "invalid redis URL")
	}
	return &draftStore{client: goredis.NewClient(opts)}, nil
}

func (store *draftStore) GetDraft(ctx context.Context, scope string) ([]byte, error) {
	data, err := store.client.Get(ctx, draftKeyPrefix+scope).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, wizard.ErrNoDraft
		}
		return nil, errors.Wrap(err, "getting draft")
	}
	return data, nil
}

func (store *draftStore) PutDraft(ctx context.Context, scope string, data []byte, ttl time.Duration) error {
	if err := store.client.Set(ctx, draftKeyPrefix+scope, data, ttl).Err(); err != nil {
		return errors.Wrap(err, "saving draft")
	}
	return nil
}

func (store *draftStore) DeleteDraft(ctx context.Context, scope string) error {
	if err := store.client.Del(ctx, draftKeyPrefix+scope).Err(); err != nil {
		return errors.Wrap(err, "deleting draft")
	}
	return nil
}
