package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/marcusb/eventwise/core/catalog"
)

func galaPackage() catalog.Package {
	return catalog.Package{
		ID:          "pkg-1",
		Name:        "Garden Gala",
		Price:       50000,
		VenueBuffer: 25000,
		Inclusions: []catalog.Inclusion{
			{Name: "Catering", Price: 30000},
			{Name: "Styling", Price: 15000},
		},
	}
}

func newTestSession(t *testing.T, store DraftStore) *Session {
	t.Helper()
	cfg := SessionConfig{
		Scope:            "u1",
		AutosaveInterval: 10 * time.Millisecond,
		NewID:            SeqIDs("c", 1),
	}
	if store != nil {
		cfg.Drafts = NewManager(store, 7*24*time.Hour, nil)
	}
	sess, err := NewSession(cfg)
	if err != nil {
		t.Fatalf("NewSession(): %v", err)
	}
	return sess
}

func TestSessionSelectPackageSeedsComponents(t *testing.T) {
	sess := newTestSession(t, nil)
	sess.SelectPackage(galaPackage())

	st := sess.State()
	if st.SelectedPackageID != "pkg-1" {
		t.Errorf("SelectedPackageID = %q", st.SelectedPackageID)
	}
	if st.OriginalPackagePrice != 50000 {
		t.Errorf("OriginalPackagePrice = %d; want 50000", st.OriginalPackagePrice)
	}
	if len(st.Components) != 2 {
		t.Fatalf("components = %d; want 2", len(st.Components))
	}
	if st.Components[0].ID != "c-1" || st.Components[1].ID != "c-2" {
		t.Errorf("component ids = %q, %q; want c-1, c-2", st.Components[0].ID, st.Components[1].ID)
	}
	if !sess.Dirty() {
		t.Error("session not dirty after mutation")
	}

	// reselecting the same package must not duplicate components
	sess.SelectPackage(galaPackage())
	if len(sess.State().Components) != 2 {
		t.Errorf("components after reselect = %d; want 2", len(sess.State().Components))
	}
}

func TestSessionOverageRequiresAcceptance(t *testing.T) {
	sess := newTestSession(t, nil)
	sess.SelectPackage(galaPackage()) // inclusions total 45000 of 50000

	// 45000 + 12000 > 50000: blocked without acceptance
	if _, err := sess.AddComponent("Fireworks", 12000, false); err == nil {
		t.Fatal("expected overage rejection")
	}
	if len(sess.State().Components) != 2 {
		t.Errorf("change committed despite rejection: %d components", len(sess.State().Components))
	}

	comp, err := sess.AddComponent("Fireworks", 12000, true)
	if err != nil {
		t.Fatalf("AddComponent(accept): %v", err)
	}
	if comp.ID == "" {
		t.Error("component has no id")
	}
	if got := sess.Budget().Overage.Amount; got != 7000 {
		t.Errorf("overage = %d; want 7000", got)
	}
}

func TestSessionSetComponentIncluded(t *testing.T) {
	sess := newTestSession(t, nil)
	sess.SelectPackage(galaPackage())

	if err := sess.SetComponentIncluded("c-1", false, false); err != nil {
		t.Fatalf("SetComponentIncluded(): %v", err)
	}
	if got := sess.Budget().InclusionsTotal; got != 15000 {
		t.Errorf("inclusions total = %d; want 15000", got)
	}

	if err := sess.SetComponentIncluded("ghost", false, false); err == nil {
		t.Error("expected error for unknown component")
	}
}

func TestSessionPriceLock(t *testing.T) {
	sess := newTestSession(t, nil)
	sess.SelectPackage(galaPackage())

	if err := sess.UpdatePackagePrice(45000); err == nil {
		t.Fatal("expected price reduction to be rejected")
	}
	if got := sess.State().OriginalPackagePrice; got != 50000 {
		t.Errorf("price changed to %d despite rejection", got)
	}

	if err := sess.UpdatePackagePrice(55000); err != nil {
		t.Fatalf("UpdatePackagePrice(raise): %v", err)
	}
}

func TestSessionPaymentPlanCoversExcess(t *testing.T) {
	sess := newTestSession(t, nil)
	sess.SelectPackage(galaPackage())
	sess.SetEventDetails(EventDetails{EventType: "wedding", EventDate: time.Now().AddDate(0, 1, 0), GuestCount: 130})
	sess.SelectVenue(catalog.Venue{ID: "v1", Price: 20000, ExtraPaxRate: 150})

	// venue cost 24500 within 25000 buffer: total stays at package price
	if err := sess.SetPaymentPlan(PaymentHalf, 0); err != nil {
		t.Fatalf("SetPaymentPlan(): %v", err)
	}
	pd := sess.State().PaymentData
	if pd.Total != 50000 || pd.DownPayment != 25000 || pd.Balance != 25000 {
		t.Errorf("payment = %+v", pd)
	}

	// a larger crowd pushes venue cost past the buffer
	sess.SetEventDetails(EventDetails{EventType: "wedding", EventDate: time.Now().AddDate(0, 1, 0), GuestCount: 200})
	if err := sess.SetPaymentPlan(PaymentFull, 0); err != nil {
		t.Fatalf("SetPaymentPlan(): %v", err)
	}
	pd = sess.State().PaymentData
	wantTotal := int64(50000 + 10000) // 20000+100*150 = 35000 vs 25000 buffer
	if pd.Total != wantTotal {
		t.Errorf("Total = %d; want %d", pd.Total, wantTotal)
	}
	if pd.DownPayment+pd.Balance != pd.Total {
		t.Errorf("split invariant broken: %+v", pd)
	}
}

func TestSessionAutosaveDebounces(t *testing.T) {
	store := newMapStore()
	sess := newTestSession(t, store)
	defer sess.Close()

	sess.SetClientData(ClientData{Name: "Ana", Email: "ana@test.test"})
	sess.SetEventDetails(EventDetails{EventType: "debut", EventDate: time.Now(), GuestCount: 80})

	if store.has("u1") {
		t.Error("draft written before the debounce interval")
	}
	time.Sleep(50 * time.Millisecond)
	if !store.has("u1") {
		t.Fatal("draft not written after the debounce interval")
	}
	if sess.Dirty() {
		t.Error("session still dirty after autosave")
	}
}

func TestSessionAutosaveDuringMutations(t *testing.T) {
	store := newMapStore()
	sess, err := NewSession(SessionConfig{
		Scope:            "u1",
		Drafts:           NewManager(store, 7*24*time.Hour, nil),
		AutosaveInterval: time.Millisecond,
		NewID:            SeqIDs("c", 1),
	})
	if err != nil {
		t.Fatalf("NewSession(): %v", err)
	}

	// keep mutating while autosaves fire so saves overlap mutations
	for i := 0; i < 50; i++ {
		sess.SetClientData(ClientData{Name: "Ana", Email: "ana@test.test"})
		sess.Advance()
		sess.Retreat()
		time.Sleep(time.Millisecond)
	}
	sess.Close()

	if !store.has("u1") {
		t.Fatal("draft never persisted")
	}
	if sess.Dirty() {
		t.Error("session still dirty after the final flush")
	}
	if got := sess.State().ClientData.Name; got != "Ana" {
		t.Errorf("ClientData.Name = %q; want Ana", got)
	}
}

func TestSessionRestoreAfterTabClose(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	mgr := NewManager(store, 7*24*time.Hour, nil)

	// user completes steps A and B, autosave persists, tab closes
	sess := newTestSession(t, store)
	sess.SetClientData(ClientData{Name: "Ana", Email: "ana@test.test"})
	sess.SetEventDetails(EventDetails{EventType: "debut", EventDate: time.Now().UTC(), GuestCount: 80})
	sess.Advance()
	sess.Advance()
	if err := sess.Save(ctx); err != nil {
		t.Fatalf("Save(): %v", err)
	}
	sess.Close()

	// reopen via direct URL (no referrer): reload restore
	rec, err := mgr.Load(ctx, "u1", RestoreReload)
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}

	fresh := newTestSession(t, store)
	defer fresh.Close()
	fresh.Restore(rec, nil)

	st := fresh.State()
	if st.CurrentStep != 0 {
		t.Errorf("CurrentStep = %d; want 0", st.CurrentStep)
	}
	if !st.IsStepCompleted(StepClient) || !st.IsStepCompleted(StepDetails) {
		t.Errorf("completions lost: %v", st.CompletedSteps)
	}
	if st.ClientData.Name != "Ana" || st.EventDetails.GuestCount != 80 {
		t.Errorf("payloads lost: %+v %+v", st.ClientData, st.EventDetails)
	}
	if fresh.Dirty() {
		t.Error("restored session should start clean")
	}
}

func TestSessionGuardWiring(t *testing.T) {
	store := newMapStore()
	sess := newTestSession(t, store)
	defer sess.Close()

	sess.SetClientData(ClientData{Name: "Ana", Email: "ana@test.test"})
	sess.Advance() // step 1, dirty

	if !sess.Guard().Intercept(NavigationIntent{Kind: IntentRoute, Target: "/home"}) {
		t.Fatal("expected interception")
	}
	if _, err := sess.Guard().Resolve(ResolutionSaveExit); err != nil {
		t.Fatalf("Resolve(): %v", err)
	}
	if !store.has("u1") {
		t.Error("save-and-exit did not persist the draft")
	}
	if sess.Dirty() {
		t.Error("session still dirty after save-and-exit")
	}
}
