package booking

import (
	"time"

	"github.com/marcusb/eventwise/core"
	"github.com/marcusb/eventwise/core/wizard"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusAccepted  BookingStatus = "accepted"
	StatusRejected  BookingStatus = "rejected"
	StatusCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// All money amounts are in the smallest currency unit.

type (
	Booking struct {
		ID         string    `json:"id"`
		ClientID   string    `json:"client_id"`
		PackageID  string    `json:"package_id"`
		VenueID    string    `json:"venue_id"`
		EventType  string    `json:"event_type"`
		EventDate  time.Time `json:"event_date"`
		GuestCount int       `json:"guest_count"`

		PackagePrice  int64 `json:"package_price"` // locked price at submission
		OverageAmount int64 `json:"overage_amount"`
		VenueExcess   int64 `json:"venue_excess"` // client payment above the venue buffer
		TotalAmount   int64 `json:"total_amount"`

		Components []wizard.Component `json:"components"`
		Organizers []string           `json:"organizers"`

		Status     BookingStatus `json:"status"`
		CreatedAt  time.Time     `json:"created_at"` // UTC
		UpdatedAt  time.Time     `json:"updated_at"` // UTC
		AcceptedAt *time.Time    `json:"accepted_at,omitempty"`
	}

	Payment struct {
		ID          string             `json:"id"`
		BookingID   string             `json:"booking_id"`
		Total       int64              `json:"total"`
		DownPayment int64              `json:"down_payment"`
		Balance     int64              `json:"balance"`
		Type        wizard.PaymentType `json:"type"`
		Method      string             `json:"method"`
		Status      PaymentStatus      `json:"status"`
		CreatedAt   time.Time          `json:"created_at"` // UTC
	}

	// Event is the scheduled event created when a booking is accepted.
	Event struct {
		ID        string    `json:"id"`
		BookingID string    `json:"booking_id"`
		Name      string    `json:"name"`
		EventDate time.Time `json:"event_date"`
		Status    string    `json:"status"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}
)

// NewPayment contains information needed to record a payment plan on a booking.
type NewPayment struct {
	BookingID        string  `json:"booking_id" validate:"required"`
	Type             string  `json:"type" validate:"required,oneof=half full custom"`
	CustomPercentage float64 `json:"custom_percentage" validate:"min=0,max=100"`
	Method           string  `json:"method" validate:"required"`
}

func (np *NewPayment) Validate() error {
	np.Method = core.CleanString(np.Method, true)
	return core.Validate.Struct(np)
}
