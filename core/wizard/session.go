package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/marcusb/eventwise/core"
	"github.com/marcusb/eventwise/core/catalog"
)

// Step IDs of the standard event-builder flow.
const (
	StepClient     = "client"
	StepDetails    = "details"
	StepPackage    = "package"
	StepVenue      = "venue"
	StepComponents = "components"
	StepOrganizers = "organizers"
	StepPayment    = "payment"
	StepTimeline   = "timeline"
	StepReview     = "review"
)

// DefaultSteps returns the standard event-builder step list with its
// validity predicates.
func DefaultSteps() []StepDescriptor {
	return []StepDescriptor{
		{ID: StepClient, Title: "Client Details", Valid: func(s *State) bool {
			return s.ClientData.Name != "" && s.ClientData.Email != ""
		}},
		{ID: StepDetails, Title: "Event Details", Valid: func(s *State) bool {
			return s.EventDetails.EventType != "" && !s.EventDetails.EventDate.IsZero() &&
				s.EventDetails.GuestCount > 0
		}},
		{ID: StepPackage, Title: "Package", Valid: func(s *State) bool {
			return s.SelectedPackageID != ""
		}},
		{ID: StepVenue, Title: "Venue", Valid: func(s *State) bool {
			return s.SelectedVenueID != ""
		}},
		{ID: StepComponents, Title: "Inclusions", Valid: func(s *State) bool {
			return len(s.Components) > 0
		}},
		{ID: StepOrganizers, Title: "Organizers", Valid: func(s *State) bool {
			return len(s.SelectedOrganizers) > 0
		}},
		{ID: StepPayment, Title: "Payment", Valid: func(s *State) bool {
			return s.PaymentData.Type != "" && s.PaymentData.Total > 0
		}},
		{ID: StepTimeline, Title: "Timeline", Valid: nil},
		{ID: StepReview, Title: "Review", Valid: nil},
	}
}

type (
	// SessionConfig configures one wizard session.
	SessionConfig struct {
		Steps            []StepDescriptor
		Scope            string // authenticated user ID; empty falls back to anonymous
		Drafts           *Manager
		AutosaveInterval time.Duration
		Logger           core.Logger
		NewID            IDFunc
		OnComplete       func()
		// OnSaveResult receives the outcome of every persistence attempt;
		// a non-nil error is the caller's failed-save notification.
		OnSaveResult func(err error)
	}

	// Session glues the sequencer, the guard, the draft manager and the
	// budget engine around one aggregate State. Every mutation marks the
	// session dirty, recomputes derived figures and re-arms the debounced
	// autosave. Mutations are synchronous with the triggering user event;
	// the autosave callback runs on a timer goroutine, so the session
	// state is guarded by a mutex.
	Session struct {
		cfg   SessionConfig
		state *State
		seq   *Sequencer
		guard *Guard

		mutex       sync.Mutex
		scope       string
		dirty       bool
		venueBuffer int64
		budget      BudgetSummary
		autosave    *core.Debouncer
		newID       IDFunc
	}
)

func NewSession(cfg SessionConfig) (*Session, error) {
	if len(cfg.Steps) == 0 {
		cfg.Steps = DefaultSteps()
	}
	if cfg.NewID == nil {
		cfg.NewID = UUIDs()
	}
	if cfg.AutosaveInterval <= 0 {
		cfg.AutosaveInterval = 2 * time.Second
	}

	sess := &Session{
		cfg:   cfg,
		state: NewState(),
		scope: Scope(cfg.Scope),
		newID: cfg.NewID,
	}

	seq, err := NewSequencer(cfg.Steps, sess.state, cfg.OnComplete)
	if err != nil {
		return nil, err
	}
	sess.seq = seq

	sess.guard = NewGuard(GuardHooks{
		IsDirty:     sess.Dirty,
		CurrentStep: sess.CurrentStep,
		Save:        func() error { return sess.Save(context.Background()) },
		Discard:     func() error { return sess.DiscardDraft(context.Background()) },
	})

	sess.autosave = core.NewDebouncer(cfg.AutosaveInterval, func() {
		sess.notifySave(sess.Save(context.Background()))
	})
	return sess, nil
}

func (sess *Session) State() *State         { return sess.state }
func (sess *Session) Sequencer() *Sequencer { return sess.seq }
func (sess *Session) Guard() *Guard         { return sess.guard }
func (sess *Session) Scope() string         { return sess.scope }

func (sess *Session) Dirty() bool {
	sess.mutex.Lock()
	defer sess.mutex.Unlock()
	return sess.dirty
}

func (sess *Session) Budget() BudgetSummary {
	sess.mutex.Lock()
	defer sess.mutex.Unlock()
	return sess.budget
}

func (sess *Session) CurrentStep() int {
	sess.mutex.Lock()
	defer sess.mutex.Unlock()
	return sess.state.CurrentStep
}

// Navigation goes through the session so step transitions cannot race a
// concurrent autosave.

func (sess *Session) Advance() {
	sess.mutex.Lock()
	defer sess.mutex.Unlock()
	sess.seq.Advance()
}

func (sess *Session) Retreat() {
	sess.mutex.Lock()
	defer sess.mutex.Unlock()
	sess.seq.Retreat()
}

func (sess *Session) GoTo(step int) {
	sess.mutex.Lock()
	defer sess.mutex.Unlock()
	sess.seq.GoTo(step)
}

func (sess *Session) notifySave(err error) {
	if err != nil && sess.cfg.Logger != nil {
		sess.cfg.Logger.Error("wizard autosave failed", err)
	}
	if sess.cfg.OnSaveResult != nil {
		sess.cfg.OnSaveResult(err)
	}
}

// markDirty records the mutation, recomputes derived figures and re-arms
// the debounced autosave. Callers must hold sess.mutex.
func (sess *Session) markDirty() {
	sess.dirty = true
	sess.budget = Summarize(sess.state, sess.venueBuffer)
	if sess.cfg.Drafts != nil {
		sess.autosave.Trigger()
	}
}

// Restore loads a previously saved draft into the session. pkg resolves the
// venue buffer of the restored package selection; it may be nil when no
// package was selected yet.
func (sess *Session) Restore(rec *DraftRecord, pkg *catalog.Package) {
	sess.mutex.Lock()
	defer sess.mutex.Unlock()

	st := rec.State
	sess.state = &st
	if pkg != nil {
		sess.venueBuffer = pkg.VenueBuffer
	}
	// rebuild the sequencer around the restored state
	seq, err := NewSequencer(sess.cfg.Steps, sess.state, sess.cfg.OnComplete)
	if err == nil {
		sess.seq = seq
	}
	sess.dirty = false
	sess.budget = Summarize(sess.state, sess.venueBuffer)
}

// Save persists the current state immediately (bypassing the debounce).
func (sess *Session) Save(ctx context.Context) error {
	if sess.cfg.Drafts == nil {
		return nil
	}
	sess.mutex.Lock()
	defer sess.mutex.Unlock()

	if _, err := sess.cfg.Drafts.Save(ctx, sess.scope, *sess.state); err != nil {
		return err
	}
	sess.dirty = false
	return nil
}

// DiscardDraft wipes the persisted draft; in-memory state is kept so the
// caller decides whether to reset the UI.
func (sess *Session) DiscardDraft(ctx context.Context) error {
	if sess.cfg.Drafts == nil {
		return nil
	}
	sess.mutex.Lock()
	defer sess.mutex.Unlock()

	if err := sess.cfg.Drafts.Clear(ctx, sess.scope); err != nil {
		return err
	}
	sess.dirty = false
	return nil
}

// Close flushes any pending autosave and stops the debouncer.
func (sess *Session) Close() {
	sess.autosave.Flush()
	sess.autosave.Stop()
}

// Step mutations

func (sess *Session) SetClientData(cd ClientData) {
	sess.mutex.Lock()
	defer sess.mutex.Unlock()

	sess.state.ClientData = cd
	sess.markDirty()
}

func (sess *Session) SetEventDetails(ed EventDetails) {
	sess.mutex.Lock()
	defer sess.mutex.Unlock()

	sess.state.EventDetails = ed
	sess.markDirty()
}

// SelectPackage records the package selection, locks its price and seeds the
// component list from the package inclusions. Reselecting the same package
// is idempotent; selecting a different one reseeds components.
func (sess *Session) SelectPackage(pkg catalog.Package) {
	sess.mutex.Lock()
	defer sess.mutex.Unlock()

	if sess.state.SelectedPackageID == pkg.ID {
		return
	}
	sess.state.SelectedPackageID = pkg.ID
	sess.state.OriginalPackagePrice = pkg.Price
	sess.venueBuffer = pkg.VenueBuffer
	sess.state.Components = make([]Component, 0, len(pkg.Inclusions))
	for _, inc := range pkg.Inclusions {
		sess.state.Components = append(sess.state.Components, Component{
			ID:       sess.newID(),
			Name:     inc.Name,
			Price:    inc.Price,
			Included: true,
		})
	}
	sess.markDirty()
}

// UpdatePackagePrice raises the locked package price. Reductions are
// unconditionally rejected at submission of the edit, not merely hidden
// at display time.
func (sess *Session) UpdatePackagePrice(attempted int64) error {
	sess.mutex.Lock()
	defer sess.mutex.Unlock()

	if err := CheckPriceReduction(sess.state.OriginalPackagePrice, attempted); err != nil {
		return err
	}
	sess.state.OriginalPackagePrice = attempted
	sess.markDirty()
	return nil
}

func (sess *Session) SelectVenue(v catalog.Venue) {
	sess.mutex.Lock()
	defer sess.mutex.Unlock()

	sess.state.SelectedVenueID = v.ID
	sess.state.SelectedVenue = &v
	sess.markDirty()
}

// AddComponent appends a new included line item. If the resulting inclusions
// total exceeds the package price the change requires the overage to be
// accepted first; otherwise it is rejected and not committed.
func (sess *Session) AddComponent(name string, price int64, acceptOverage bool) (Component, error) {
	sess.mutex.Lock()
	defer sess.mutex.Unlock()

	comp := Component{
		ID:       sess.newID(),
		Name:     name,
		Price:    price,
		Included: true,
	}
	next := append(append([]Component{}, sess.state.Components...), comp)
	if err := sess.checkOverage(next, acceptOverage); err != nil {
		return Component{}, err
	}
	sess.state.Components = next
	sess.markDirty()
	return comp, nil
}

// SetComponentIncluded toggles a line item in or out of the inclusions.
func (sess *Session) SetComponentIncluded(id string, included, acceptOverage bool) error {
	sess.mutex.Lock()
	defer sess.mutex.Unlock()

	next := append([]Component{}, sess.state.Components...)
	var found bool
	for i := range next {
		if next[i].ID == id {
			next[i].Included = included
			found = true
			break
		}
	}
	if !found {
		return core.NewValidationError(errors.New("unknown component"),
			core.FieldError{Field: "id", Error: "unknown component"})
	}
	if err := sess.checkOverage(next, acceptOverage); err != nil {
		return err
	}
	sess.state.Components = next
	sess.markDirty()
	return nil
}

func (sess *Session) checkOverage(components []Component, acceptOverage bool) error {
	ovr := CheckOverage(sess.state.OriginalPackagePrice, InclusionsTotal(components))
	if ovr.RequiresConfirmation && !acceptOverage {
		return core.NewValidationError(ErrOverageUnconfirmed, core.FieldError{
			Field: "components",
			Error: ErrOverageUnconfirmed.Error(),
		})
	}
	return nil
}

func (sess *Session) SelectOrganizers(ids []string) {
	sess.mutex.Lock()
	defer sess.mutex.Unlock()

	sess.state.SelectedOrganizers = ids
	sess.markDirty()
}

// SetPaymentPlan computes and records the payment split for the package
// price plus any accepted overage and venue excess.
func (sess *Session) SetPaymentPlan(typ PaymentType, customPercentage float64) error {
	sess.mutex.Lock()
	defer sess.mutex.Unlock()

	total := sess.state.OriginalPackagePrice +
		sess.budget.Overage.Amount +
		sess.budget.ClientAdditionalPayment
	pd, err := PaymentSplit(total, typ, customPercentage)
	if err != nil {
		return err
	}
	sess.state.PaymentData = pd
	sess.markDirty()
	return nil
}

func (sess *Session) SetTimeline(entries []TimelineEntry) {
	sess.mutex.Lock()
	defer sess.mutex.Unlock()

	sess.state.TimelineData = entries
	sess.markDirty()
}

func (sess *Session) SetWeddingForm(wf WeddingFormData) {
	sess.mutex.Lock()
	defer sess.mutex.Unlock()

	sess.state.WeddingFormData = &wf
	sess.markDirty()
}
