package inmemdb

import (
	"sync"
	"time"

	"github.com/marcusb/eventwise/core/booking"
	"github.com/marcusb/eventwise/core/catalog"
	"github.com/marcusb/eventwise/core/user"
)

type (
	DB struct {
		user       *userTable
		packages   *packageTable
		venues     *venueTable
		organizers *organizerTable
		asgs       *assignmentTable
		suppliers  *supplierTable
		offers     *offerTable
		ratings    *ratingTable
		bookings   *bookingTable
		payments   *paymentTable
		events     *eventTable
		drafts     *draftTable
	}

	userTable struct {
		table map[string]*user.User
		mutex sync.RWMutex
	}

	packageTable struct {
		table map[string]*catalog.Package
		mutex sync.RWMutex
	}

	venueTable struct {
		table map[string]*catalog.Venue
		mutex sync.RWMutex
	}

	organizerTable struct {
		table map[string]*catalog.Organizer
		mutex sync.RWMutex
	}

	assignmentTable struct {
		table map[string]*catalog.Assignment
		mutex sync.RWMutex
	}

	supplierTable struct {
		table map[string]*catalog.Supplier
		mutex sync.RWMutex
	}

	offerTable struct {
		table map[string]*catalog.Offer
		mutex sync.RWMutex
	}

	ratingTable struct {
		table map[string]*catalog.Rating
		mutex sync.RWMutex
	}

	bookingTable struct {
		table map[string]*booking.Booking
		mutex sync.RWMutex
	}

	paymentTable struct {
		table map[string]*booking.Payment
		mutex sync.RWMutex
	}

	eventTable struct {
		table map[string]*booking.Event
		mutex sync.RWMutex
	}

	draftRow struct {
		data      []byte
		expiresAt time.Time
	}

	draftTable struct {
		table map[string]draftRow
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		packages:   &packageTable{table: make(map[string]*catalog.Package)},
		venues:     &venueTable{table: make(map[string]*catalog.Venue)},
		organizers: &organizerTable{table: make(map[string]*catalog.Organizer)},
		asgs:       &assignmentTable{table: make(map[string]*catalog.Assignment)},
		suppliers:  &supplierTable{table: make(map[string]*catalog.Supplier)},
		offers:     &offerTable{table: make(map[string]*catalog.Offer)},
		ratings:    &ratingTable{table: make(map[string]*catalog.Rating)},
		bookings:   &bookingTable{table: make(map[string]*booking.Booking)},
		payments:   &paymentTable{table: make(map[string]*booking.Payment)},
		events:     &eventTable{table: make(map[string]*booking.Event)},
		drafts:     &draftTable{table: make(map[string]draftRow)},
	}
}
