package wizard

import "github.com/pkg/errors"

type (
	GuardState int

	// Resolution is the user's choice in the exit-confirmation prompt.
	Resolution int

	// GuardHooks wires the Guard to the owning session.
	GuardHooks struct {
		IsDirty     func() bool
		CurrentStep func() int
		Save        func() error // save-and-exit
		Discard     func() error // discard-and-exit
	}

	// Guard intercepts navigation away from the wizard while unsaved changes
	// exist. State machine over {idle, confirming}: an intercepted intent
	// moves it to confirming, and exactly one of the three resolutions
	// returns it to idle.
	Guard struct {
		state   GuardState
		pending *NavigationIntent
		hooks   GuardHooks

		repushSubs map[int]func()
		nextSubID  int
	}
)

const (
	GuardIdle GuardState = iota
	GuardConfirming
)

const (
	// ResolutionSaveExit saves the draft, then performs the intercepted navigation.
	ResolutionSaveExit Resolution = iota
	// ResolutionDiscardExit clears the draft, then performs the navigation.
	ResolutionDiscardExit
	// ResolutionCancel drops the pending intent; no state changes.
	ResolutionCancel
)

var errNotConfirming = errors.New("wizard: no navigation pending confirmation")

func NewGuard(hooks GuardHooks) *Guard {
	return &Guard{
		hooks:      hooks,
		repushSubs: map[int]func(){},
	}
}

func (g *Guard) State() GuardState { return g.state }

// shouldIntercept: only dirty state past the first step warrants a prompt.
func (g *Guard) shouldIntercept() bool {
	return g.hooks.IsDirty() && g.hooks.CurrentStep() != 0
}

// Intercept decides whether the navigation must be blocked pending
// confirmation. Returns false when navigation should proceed natively.
// Pop intents additionally fire one corrective history re-push so the
// browser's location does not change while the prompt is open.
func (g *Guard) Intercept(intent NavigationIntent) bool {
	if intent.Kind == IntentUnload {
		// no custom UI can render at that point; the caller lets the
		// native "leave site?" prompt handle it
		return g.shouldIntercept()
	}
	if g.state == GuardConfirming {
		return true // first captured intent stays pending
	}
	if !g.shouldIntercept() {
		return false
	}

	captured := intent
	g.pending = &captured
	g.state = GuardConfirming
	if intent.Kind == IntentPop {
		g.notifyRepush()
	}
	return true
}

// Resolve consumes the pending intent. For save-and-exit and
// discard-and-exit it returns the intent to perform (nil target pops yield
// an intent with an empty Target; the caller then performs nothing).
// Cancel returns nil.
func (g *Guard) Resolve(r Resolution) (*NavigationIntent, error) {
	if g.state != GuardConfirming {
		return nil, errNotConfirming
	}
	pending := g.pending
	g.pending = nil
	g.state = GuardIdle

	switch r {
	case ResolutionSaveExit:
		if err := g.hooks.Save(); err != nil {
			return nil, errors.Wrap(err, "saving before exit")
		}
		return pending, nil
	case ResolutionDiscardExit:
		if err := g.hooks.Discard(); err != nil {
			return nil, errors.Wrap(err, "discarding before exit")
		}
		return pending, nil
	case ResolutionCancel:
		return nil, nil
	default:
		return nil, errors.Errorf("wizard: unknown resolution %d", r)
	}
}

// OnRepush registers a listener fired once per intercepted pop, for the
// corrective history push. It returns an explicit teardown; listeners
// compose instead of overwriting a single global handler.
func (g *Guard) OnRepush(fn func()) (teardown func()) {
	id := g.nextSubID
	g.nextSubID++
	g.repushSubs[id] = fn
	return func() { delete(g.repushSubs, id) }
}

func (g *Guard) notifyRepush() {
	for _, fn := range g.repushSubs {
		fn()
	}
}
