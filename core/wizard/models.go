package wizard

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/marcusb/eventwise/core/catalog"
)

// CurrentDraftVersion is the schema tag stamped on every persisted draft.
// Drafts carrying any other version are discarded on load.
const CurrentDraftVersion = "1.0.0"

// AnonymousScope is the draft scope used when no authenticated user is available.
const AnonymousScope = "anonymous"

// All money amounts are in the smallest currency unit.

type (
	// ClientData is the payload of the client details step.
	ClientData struct {
		Name    string `json:"name"`
		Email   string `json:"email" validate:"omitempty,email"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	}

	// EventDetails is the payload of the event details step.
	EventDetails struct {
		EventType  string    `json:"event_type"`
		EventDate  time.Time `json:"event_date"`
		GuestCount int       `json:"guest_count" validate:"min=0"`
		Theme      string    `json:"theme"`
		Notes      string    `json:"notes"`
	}

	// Component is a package line item. Included components count towards
	// the inclusions total; excluded ones are kept so the client can re-add them.
	Component struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Price    int64  `json:"price" validate:"min=0"`
		Included bool   `json:"included"`
	}

	PaymentType string

	// PaymentData is the payload of the payment step.
	// Invariant: DownPayment + Balance == Total, checked at the storage boundary.
	PaymentData struct {
		Total            int64       `json:"total" validate:"min=0"`
		DownPayment      int64       `json:"down_payment" validate:"min=0"`
		Balance          int64       `json:"balance" validate:"min=0"`
		Type             PaymentType `json:"type"`
		CustomPercentage float64     `json:"custom_percentage" validate:"min=0,max=100"`
	}

	TimelineEntry struct {
		Time     string `json:"time"`
		Activity string `json:"activity"`
	}

	// WeddingFormData carries the extra fields of wedding-type events.
	WeddingFormData struct {
		BrideName string `json:"bride_name"`
		GroomName string `json:"groom_name"`
		Motif     string `json:"motif"`
		Church    string `json:"church"`
	}

	// State is the aggregate form state for one in-progress event booking.
	State struct {
		CurrentStep          int              `json:"currentStep" validate:"min=0"`
		CompletedSteps       []string         `json:"completedSteps"`
		ClientData           ClientData       `json:"clientData"`
		EventDetails         EventDetails     `json:"eventDetails"`
		SelectedPackageID    string           `json:"selectedPackageId"`
		SelectedVenueID      string           `json:"selectedVenueId"`
		SelectedVenue        *catalog.Venue   `json:"selectedVenue,omitempty"`
		Components           []Component      `json:"components" validate:"dive"`
		OriginalPackagePrice int64            `json:"originalPackagePrice" validate:"min=0"`
		SelectedOrganizers   []string         `json:"selectedOrganizers"`
		PaymentData          PaymentData      `json:"paymentData"`
		TimelineData         []TimelineEntry  `json:"timelineData"`
		WeddingFormData      *WeddingFormData `json:"weddingFormData,omitempty"`
	}

	// DraftRecord is the persisted snapshot of a State.
	DraftRecord struct {
		State
		LastSaved time.Time `json:"lastSaved"`
		Version   string    `json:"version"`
	}
)

// Payment types
const (
	PaymentHalf   PaymentType = "half"
	PaymentFull   PaymentType = "full"
	PaymentCustom PaymentType = "custom"
)

func NewState() *State {
	return &State{
		CompletedSteps: []string{},
		Components:     []Component{},
	}
}

func (s *State) IsStepCompleted(id string) bool {
	for _, done := range s.CompletedSteps {
		if done == id {
			return true
		}
	}
	return false
}

// MarkStepCompleted records the step as completed; idempotent.
func (s *State) MarkStepCompleted(id string) {
	if !s.IsStepCompleted(id) {
		s.CompletedSteps = append(s.CompletedSteps, id)
	}
}

// InclusionsTotal sums the prices of included components.
func (s *State) InclusionsTotal() int64 {
	return InclusionsTotal(s.Components)
}

func (s *State) Component(id string) (Component, bool) {
	for _, c := range s.Components {
		if c.ID == id {
			return c, true
		}
	}
	return Component{}, false
}

// NavigationIntent is an ephemeral value representing a pending exit.
// It is created when the Guard intercepts an event and consumed (executed
// or dropped) by the user's resolution; it is never persisted.
type (
	IntentKind int

	NavigationIntent struct {
		Kind   IntentKind
		Target string // route target; empty for pops and unloads
	}
)

const (
	// IntentRoute is a click on a navigational element leaving the wizard's route tree.
	IntentRoute IntentKind = iota
	// IntentPop is a same-tab browser back/forward attempt.
	IntentPop
	// IntentUnload is a tab/window close or hard refresh.
	IntentUnload
)

// IDFunc issues stable IDs for component line items.
type IDFunc func() string

// UUIDs returns an IDFunc backed by random UUIDs.
func UUIDs() IDFunc {
	return uuid.NewString
}

// SeqIDs returns an IDFunc backed by a counter owned by the returned closure,
// starting at seed. Deterministic; meant for tests.
func SeqIDs(prefix string, seed int) IDFunc {
	next := seed
	return func() string {
		id := fmt.Sprintf("%s-%d", prefix, next)
		next++
		return id
	}
}
