package wizard

import "testing"

type guardFixture struct {
	dirty    bool
	step     int
	saves    int
	discards int
	guard    *Guard
}

func newGuardFixture(dirty bool, step int) *guardFixture {
	f := &guardFixture{dirty: dirty, step: step}
	f.guard = NewGuard(GuardHooks{
		IsDirty:     func() bool { return f.dirty },
		CurrentStep: func() int { return f.step },
		Save:        func() error { f.saves++; return nil },
		Discard:     func() error { f.discards++; return nil },
	})
	return f
}

func TestGuardInterceptConditions(t *testing.T) {
	tests := []struct {
		name  string
		dirty bool
		step  int
		want  bool
	}{
		{name: "dirty mid-wizard", dirty: true, step: 2, want: true},
		{name: "clean", dirty: false, step: 2, want: false},
		{name: "dirty on first step", dirty: true, step: 0, want: false},
		{name: "clean on first step", dirty: false, step: 0, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGuardFixture(tt.dirty, tt.step)
			got := f.guard.Intercept(NavigationIntent{Kind: IntentRoute, Target: "/dashboard"})
			if got != tt.want {
				t.Errorf("Intercept() = %v; want %v", got, tt.want)
			}
			wantState := GuardIdle
			if tt.want {
				wantState = GuardConfirming
			}
			if f.guard.State() != wantState {
				t.Errorf("State() = %v; want %v", f.guard.State(), wantState)
			}
		})
	}
}

func TestGuardUnloadUsesNativePrompt(t *testing.T) {
	f := newGuardFixture(true, 2)
	if !f.guard.Intercept(NavigationIntent{Kind: IntentUnload}) {
		t.Error("expected unload to be blocked")
	}
	// native prompt handles it; no in-app confirmation opens
	if f.guard.State() != GuardIdle {
		t.Errorf("State() = %v; want idle", f.guard.State())
	}
}

func TestGuardSaveAndExit(t *testing.T) {
	f := newGuardFixture(true, 2)
	f.guard.Intercept(NavigationIntent{Kind: IntentRoute, Target: "/dashboard"})

	intent, err := f.guard.Resolve(ResolutionSaveExit)
	if err != nil {
		t.Fatalf("Resolve(): %v", err)
	}
	if f.saves != 1 {
		t.Errorf("saves = %d; want 1", f.saves)
	}
	if intent == nil || intent.Target != "/dashboard" {
		t.Errorf("intent = %+v; want target /dashboard", intent)
	}
	if f.guard.State() != GuardIdle {
		t.Errorf("State() = %v; want idle", f.guard.State())
	}
}

func TestGuardDiscardAndExit(t *testing.T) {
	f := newGuardFixture(true, 2)
	f.guard.Intercept(NavigationIntent{Kind: IntentRoute, Target: "/dashboard"})

	intent, err := f.guard.Resolve(ResolutionDiscardExit)
	if err != nil {
		t.Fatalf("Resolve(): %v", err)
	}
	if f.discards != 1 {
		t.Errorf("discards = %d; want 1", f.discards)
	}
	if intent == nil || intent.Target != "/dashboard" {
		t.Errorf("intent = %+v; want target /dashboard", intent)
	}
}

func TestGuardCancelDropsIntent(t *testing.T) {
	f := newGuardFixture(true, 2)
	f.guard.Intercept(NavigationIntent{Kind: IntentRoute, Target: "/dashboard"})

	intent, err := f.guard.Resolve(ResolutionCancel)
	if err != nil {
		t.Fatalf("Resolve(): %v", err)
	}
	if intent != nil {
		t.Errorf("intent = %+v; want nil", intent)
	}
	if f.saves != 0 || f.discards != 0 {
		t.Errorf("saves=%d discards=%d; want 0/0", f.saves, f.discards)
	}
}

func TestGuardResolveWithoutPending(t *testing.T) {
	f := newGuardFixture(true, 2)
	if _, err := f.guard.Resolve(ResolutionCancel); err == nil {
		t.Error("expected error resolving with nothing pending")
	}
}

func TestGuardPopRepushesExactlyOnce(t *testing.T) {
	f := newGuardFixture(true, 2)
	var repushes int
	teardown := f.guard.OnRepush(func() { repushes++ })
	defer teardown()

	f.guard.Intercept(NavigationIntent{Kind: IntentPop})
	if repushes != 1 {
		t.Errorf("repushes = %d; want 1", repushes)
	}

	// a second pop while confirming must not drift the history stack
	f.guard.Intercept(NavigationIntent{Kind: IntentPop})
	if repushes != 1 {
		t.Errorf("repushes while confirming = %d; want 1", repushes)
	}

	// a pop intent has no captured target
	intent, err := f.guard.Resolve(ResolutionSaveExit)
	if err != nil {
		t.Fatalf("Resolve(): %v", err)
	}
	if intent == nil || intent.Target != "" {
		t.Errorf("intent = %+v; want empty target", intent)
	}
}

func TestGuardRepushTeardown(t *testing.T) {
	f := newGuardFixture(true, 2)
	var repushes int
	teardown := f.guard.OnRepush(func() { repushes++ })
	teardown()

	f.guard.Intercept(NavigationIntent{Kind: IntentPop})
	if repushes != 0 {
		t.Errorf("repushes = %d; want 0 after teardown", repushes)
	}
}
