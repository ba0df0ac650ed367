package inmemdb

import (
	"context"
	"sort"

	"github.com/marcusb/eventwise/core/booking"
)

type bookingRepository struct {
	db *DB
}

func NewBookingRepository(db *DB) booking.Repository {
	return &bookingRepository{db: db}
}

func (repo *bookingRepository) query() []booking.Booking {
	bkgs := make([]booking.Booking, 0, len(repo.db.bookings.table))
	for _, bkg := range repo.db.bookings.table {
		bkgs = append(bkgs, *bkg)
	}
	sort.Slice(bkgs, func(i, j int) bool { return bkgs[i].CreatedAt.Before(bkgs[j].CreatedAt) })
	return bkgs
}

func (repo *bookingRepository) CreateBooking(_ context.Context, bkg booking.Booking) (booking.Booking, error) {
	repo.db.bookings.mutex.Lock()
	defer repo.db.bookings.mutex.Unlock()
	repo.db.bookings.table[bkg.ID] = &bkg
	return bkg, nil
}

func (repo *bookingRepository) GetBookingByID(_ context.Context, id string) (booking.Booking, error) {
	repo.db.bookings.mutex.RLock()
	defer repo.db.bookings.mutex.RUnlock()

	if bkg, ok := repo.db.bookings.table[id]; ok {
		return *bkg, nil
	}
	return booking.Booking{}, booking.ErrNotFound
}

func (repo *bookingRepository) QueryAllBookings(_ context.Context) ([]booking.Booking, error) {
	repo.db.bookings.mutex.RLock()
	defer repo.db.bookings.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *bookingRepository) QueryBookingsByClient(_ context.Context, clientID string) ([]booking.Booking, error) {
	repo.db.bookings.mutex.RLock()
	defer repo.db.bookings.mutex.RUnlock()

	bkgs := make([]booking.Booking, 0)
	for _, bkg := range repo.query() {
		if bkg.ClientID == clientID {
			bkgs = append(bkgs, bkg)
		}
	}
	return bkgs, nil
}

func (repo *bookingRepository) UpdateBooking(_ context.Context, bkg booking.Booking) (booking.Booking, error) {
	repo.db.bookings.mutex.Lock()
	defer repo.db.bookings.mutex.Unlock()

	if _, ok := repo.db.bookings.table[bkg.ID]; !ok {
		return booking.Booking{}, booking.ErrNotFound
	}
	repo.db.bookings.table[bkg.ID] = &bkg
	return bkg, nil
}

func (repo *bookingRepository) CreatePayment(_ context.Context, pmt booking.Payment) (booking.Payment, error) {
	repo.db.payments.mutex.Lock()
	defer repo.db.payments.mutex.Unlock()
	repo.db.payments.table[pmt.ID] = &pmt
	return pmt, nil
}

func (repo *bookingRepository) QueryPaymentsByBooking(_ context.Context, bookingID string) ([]booking.Payment, error) {
	repo.db.payments.mutex.RLock()
	defer repo.db.payments.mutex.RUnlock()

	pmts := make([]booking.Payment, 0)
	for _, pmt := range repo.db.payments.table {
		if pmt.BookingID == bookingID {
			pmts = append(pmts, *pmt)
		}
	}
	sort.Slice(pmts, func(i, j int) bool { return pmts[i].CreatedAt.Before(pmts[j].CreatedAt) })
	return pmts, nil
}

func (repo *bookingRepository) CreateEvent(_ context.Context, evt booking.Event) (booking.Event, error) {
	repo.db.events.mutex.Lock()
	defer repo.db.events.mutex.Unlock()
	repo.db.events.table[evt.ID] = &evt
	return evt, nil
}

func (repo *bookingRepository) GetEventByBooking(_ context.Context, bookingID string) (booking.Event, error) {
	repo.db.events.mutex.RLock()
	defer repo.db.events.mutex.RUnlock()

	for _, evt := range repo.db.events.table {
		if evt.BookingID == bookingID {
			return *evt, nil
		}
	}
	return booking.Event{}, booking.ErrNotFound
}
