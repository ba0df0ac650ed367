package wizard

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"
	"testing"
	"time"
)

// mapStore is a minimal in-memory DraftStore for manager tests.
type mapStore struct {
	mutex sync.Mutex
	data  map[string][]byte
}

func newMapStore() *mapStore {
	return &mapStore{data: map[string][]byte{}}
}

func (s *mapStore) GetDraft(_ context.Context, scope string) ([]byte, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	data, ok := s.data[scope]
	if !ok {
		return nil, ErrNoDraft
	}
	return data, nil
}

func (s *mapStore) PutDraft(_ context.Context, scope string, data []byte, _ time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.data[scope] = data
	return nil
}

func (s *mapStore) has(scope string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	_, ok := s.data[scope]
	return ok
}

func (s *mapStore) DeleteDraft(_ context.Context, scope string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.data, scope)
	return nil
}

func testState() State {
	st := *NewState()
	st.CurrentStep = 2
	st.CompletedSteps = []string{"a", "b"}
	st.ClientData = ClientData{Name: "Ana Reyes", Email: "ana@test.test"}
	st.SelectedPackageID = "pkg-1"
	st.OriginalPackagePrice = 50000
	st.Components = []Component{
		{ID: "c-1", Name: "Catering", Price: 30000, Included: true},
		{ID: "c-2", Name: "Photobooth", Price: 8000, Included: false},
	}
	st.PaymentData = PaymentData{Total: 50000, DownPayment: 25000, Balance: 25000, Type: PaymentHalf, CustomPercentage: 50}
	return st
}

func TestDraftSaveThenLoadRoundTrips(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	mgr := NewManager(store, 7*24*time.Hour, nil)
	st := testState()

	if _, err := mgr.Save(ctx, "u1", st); err != nil {
		t.Fatalf("Save(): %v", err)
	}

	rec, err := mgr.Load(ctx, "u1", RestoreNavigation)
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	if !reflect.DeepEqual(rec.State, st) {
		t.Errorf("restored state differs:\n got %+v\nwant %+v", rec.State, st)
	}
}

func TestDraftLoadOnReloadForcesStepZero(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(newMapStore(), 7*24*time.Hour, nil)
	st := testState()

	if _, err := mgr.Save(ctx, "u1", st); err != nil {
		t.Fatalf("Save(): %v", err)
	}
	rec, err := mgr.Load(ctx, "u1", RestoreReload)
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}

	if rec.CurrentStep != 0 {
		t.Errorf("CurrentStep = %d; want 0", rec.CurrentStep)
	}
	// completions and payloads survive the reload restore
	if !reflect.DeepEqual(rec.CompletedSteps, []string{"a", "b"}) {
		t.Errorf("CompletedSteps = %v; want [a b]", rec.CompletedSteps)
	}
	if rec.ClientData != st.ClientData {
		t.Errorf("ClientData = %+v; want %+v", rec.ClientData, st.ClientData)
	}
}

func TestDraftLoadRejectsAndSelfCleans(t *testing.T) {
	ctx := context.Background()

	expired, _ := json.Marshal(DraftRecord{
		State:     testState(),
		LastSaved: time.Now().UTC().Add(-8 * 24 * time.Hour),
		Version:   CurrentDraftVersion,
	})
	oldVersion, _ := json.Marshal(DraftRecord{
		State:     testState(),
		LastSaved: time.Now().UTC(),
		Version:   "0.9.0",
	})
	badInvariant := testState()
	badInvariant.PaymentData.Balance++ // breaks down+balance == total
	invalid, _ := json.Marshal(DraftRecord{
		State:     badInvariant,
		LastSaved: time.Now().UTC(),
		Version:   CurrentDraftVersion,
	})

	tests := []struct {
		name string
		data []byte
	}{
		{name: "unparseable json", data: []byte("{nope")},
		{name: "ttl expired", data: expired},
		{name: "version mismatch", data: oldVersion},
		{name: "schema invalid", data: invalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMapStore()
			store.data["u1"] = tt.data
			mgr := NewManager(store, 7*24*time.Hour, nil)

			rec, err := mgr.Load(ctx, "u1", RestoreNavigation)
			if err != ErrNoDraft {
				t.Errorf("Load() error = %v; want ErrNoDraft", err)
			}
			if rec != nil {
				t.Errorf("Load() = %+v; want nil", rec)
			}
			if store.has("u1") {
				t.Error("stored record not self-cleaned")
			}
		})
	}
}

func TestDraftLoadAbsent(t *testing.T) {
	mgr := NewManager(newMapStore(), 7*24*time.Hour, nil)
	if _, err := mgr.Load(context.Background(), "nobody", RestoreNavigation); err != ErrNoDraft {
		t.Errorf("Load() error = %v; want ErrNoDraft", err)
	}
}

func TestDraftSaveIsIdempotentOnPayload(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	mgr := NewManager(store, 7*24*time.Hour, nil)
	st := testState()

	if _, err := mgr.Save(ctx, "u1", st); err != nil {
		t.Fatalf("Save(): %v", err)
	}
	first, _ := mgr.Load(ctx, "u1", RestoreNavigation)

	if _, err := mgr.Save(ctx, "u1", st); err != nil {
		t.Fatalf("Save(): %v", err)
	}
	second, _ := mgr.Load(ctx, "u1", RestoreNavigation)

	// payload equal; only the timestamp may differ
	if !reflect.DeepEqual(first.State, second.State) {
		t.Errorf("payloads differ after re-save:\n got %+v\nwant %+v", second.State, first.State)
	}
	if len(second.Components) != len(st.Components) {
		t.Errorf("components duplicated: %d; want %d", len(second.Components), len(st.Components))
	}
}

func TestDraftClear(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	mgr := NewManager(store, 7*24*time.Hour, nil)

	if _, err := mgr.Save(ctx, "u1", testState()); err != nil {
		t.Fatalf("Save(): %v", err)
	}
	if err := mgr.Clear(ctx, "u1"); err != nil {
		t.Fatalf("Clear(): %v", err)
	}
	if _, err := mgr.Load(ctx, "u1", RestoreNavigation); err != ErrNoDraft {
		t.Errorf("Load() after Clear error = %v; want ErrNoDraft", err)
	}

	// clearing an absent draft is not an error
	if err := mgr.Clear(ctx, "u1"); err != nil {
		t.Errorf("Clear() on empty: %v", err)
	}
}

func TestDraftScope(t *testing.T) {
	if got := Scope("u1"); got != "u1" {
		t.Errorf("Scope(u1) = %q", got)
	}
	if got := Scope(""); got != AnonymousScope {
		t.Errorf("Scope(\"\") = %q; want %q", got, AnonymousScope)
	}
}
