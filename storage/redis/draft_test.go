package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/marcusb/eventwise/core/wizard"
)

func newTestStore(t *testing.T) (wizard.DraftStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewDraftStore("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("NewDraftStore() failed, %v", err)
	}
	return store, mr
}

func TestDraftStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	data := []byte(`{"currentStep":2}`)
	if err := store.PutDraft(ctx, "user-1", data, time.Hour); err != nil {
		t.Fatalf("PutDraft() failed, %v", err)
	}
	got, err := store.GetDraft(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetDraft() failed, %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("GetDraft() = %s, want %s", got, data)
	}

	// scopes are isolated
	if _, err = store.GetDraft(ctx, "user-2"); err != wizard.ErrNoDraft {
		t.Errorf("GetDraft() other scope error = %v, want ErrNoDraft", err)
	}
}

func TestDraftStoreMissing(t *testing.T) {
	store, _ := newTestStore(t)

	if _, err := store.GetDraft(context.Background(), "nope"); err != wizard.ErrNoDraft {
		t.Errorf("GetDraft() error = %v, want ErrNoDraft", err)
	}
}

func TestDraftStoreTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.PutDraft(ctx, "user-1", []byte(`{}`), time.Minute); err != nil {
		t.Fatalf("PutDraft() failed, %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.GetDraft(ctx, "user-1"); err != wizard.ErrNoDraft {
		t.Errorf("GetDraft() after expiry error = %v, want ErrNoDraft", err)
	}
}

func TestDraftStoreDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.PutDraft(ctx, "user-1", []byte(`{}`), time.Hour); err != nil {
		t.Fatalf("PutDraft() failed, %v", err)
	}
	if err := store.DeleteDraft(ctx, "user-1"); err != nil {
		t.Fatalf("DeleteDraft() failed, %v", err)
	}
	if _, err := store.GetDraft(ctx, "user-1"); err != wizard.ErrNoDraft {
		t.Errorf("GetDraft() after delete error = %v, want ErrNoDraft", err)
	}

	// deleting a missing draft is not an error
	if err := store.DeleteDraft(ctx, "user-1"); err != nil {
		t.Errorf("DeleteDraft() on missing draft error = %v", err)
	}
}

func TestDraftStorePutOverwrites(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.PutDraft(ctx, "user-1", []byte(`{"currentStep":1}`), time.Hour); err != nil {
		t.Fatalf("PutDraft() failed, %v", err)
	}
	if err := store.PutDraft(ctx, "user-1", []byte(`{"currentStep":4}`), time.Hour); err != nil {
		t.Fatalf("PutDraft() failed, %v", err)
	}
	got, err := store.GetDraft(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetDraft() failed, %v", err)
	}
	if string(got) != `{"currentStep":4}` {
		t.Errorf("GetDraft() = %s, want overwritten draft", got)
	}
}
