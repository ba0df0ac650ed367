package catalog

import (
	"time"

	"github.com/marcusb/eventwise/core"
)

// All money amounts are in the smallest currency unit.

type (
	// Inclusion is a line item bundled with a Package by default.
	Inclusion struct {
		Name  string `json:"name"`
		Price int64  `json:"price"`
	}

	Package struct {
		ID          string      `json:"id"`
		Name        string      `json:"name"`
		Description string      `json:"description"`
		Price       int64       `json:"price"`
		VenueBuffer int64       `json:"venue_buffer"` // budget ceiling for venue costs
		Inclusions  []Inclusion `json:"inclusions"`
		IsActive    bool        `json:"is_active"`
		CreatedAt   time.Time   `json:"created_at"` // UTC
		UpdatedAt   time.Time   `json:"updated_at"` // UTC
	}

	Venue struct {
		ID           string    `json:"id"`
		Name         string    `json:"name"`
		Location     string    `json:"location"`
		Price        int64     `json:"venue_price"`    // base price, covers up to the base guest allowance
		ExtraPaxRate int64     `json:"extra_pax_rate"` // per guest above the allowance
		Capacity     int       `json:"capacity"`
		IsActive     bool      `json:"is_active"`
		CreatedAt    time.Time `json:"created_at"` // UTC
		UpdatedAt    time.Time `json:"updated_at"` // UTC
	}

	Organizer struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Specialty string    `json:"specialty"`
		Email     string    `json:"email"`
		Phone     string    `json:"phone"`
		IsActive  bool      `json:"is_active"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	// Assignment books an Organizer for an event date.
	Assignment struct {
		ID          string    `json:"id"`
		OrganizerID string    `json:"organizer_id"`
		BookingID   string    `json:"booking_id"`
		EventDate   time.Time `json:"event_date"`
		CreatedAt   time.Time `json:"created_at"` // UTC
	}

	Supplier struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Service   string    `json:"service"`
		Email     string    `json:"email"`
		Phone     string    `json:"phone"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	// Offer is a service offering published by an Organizer.
	Offer struct {
		ID          string    `json:"id"`
		OrganizerID string    `json:"organizer_id"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Price       int64     `json:"price"`
		CreatedAt   time.Time `json:"created_at"` // UTC
	}

	Rating struct {
		ID          string    `json:"id"`
		OrganizerID string    `json:"organizer_id"`
		ClientID    string    `json:"client_id"`
		Score       int       `json:"score"` // 1 - 5
		Comment     string    `json:"comment"`
		CreatedAt   time.Time `json:"created_at"` // UTC
	}
)

// NewSupplier contains information needed to create a new Supplier.
type NewSupplier struct {
	Name    string `json:"name" validate:"required"`
	Service string `json:"service" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
}

func (ns *NewSupplier) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.Service = core.CleanString(ns.Service)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	return core.Validate.Struct(ns)
}

// NewOffer contains information needed to publish a new Offer.
type NewOffer struct {
	OrganizerID string `json:"organizer_id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" validate:"required,gt=0"`
}

func (no *NewOffer) Validate() error {
	no.Title = core.CleanString(no.Title)
	return core.Validate.Struct(no)
}

// NewRating contains information needed to rate an Organizer.
type NewRating struct {
	OrganizerID string `json:"organizer_id" validate:"required"`
	ClientID    string `json:"client_id" validate:"required"`
	Score       int    `json:"score" validate:"required,min=1,max=5"`
	Comment     string `json:"comment"`
}

func (nr *NewRating) Validate() error {
	nr.Comment = core.CleanString(nr.Comment)
	return core.Validate.Struct(nr)
}
