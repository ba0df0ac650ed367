package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/marcusb/eventwise/core/booking"
	"github.com/marcusb/eventwise/core/wizard"
)

type (
	bookingRow struct {
		ID            string          `db:"id"`
		ClientID      string          `db:"client_id"`
		PackageID     string          `db:"package_id"`
		VenueID       string          `db:"venue_id"`
		EventType     string          `db:"event_type"`
		EventDate     time.Time       `db:"event_date"`
		GuestCount    int             `db:"guest_count"`
		PackagePrice  int64           `db:"package_price"`
		OverageAmount int64           `db:"overage_amount"`
		VenueExcess   int64           `db:"venue_excess"`
		TotalAmount   int64           `db:"total_amount"`
		Components    json.RawMessage `db:"components"`
		Organizers    json.RawMessage `db:"organizers"`
		Status        string          `db:"status"`
		CreatedAt     time.Time       `db:"created_at"`
		UpdatedAt     time.Time       `db:"updated_at"`
		AcceptedAt    null.Time       `db:"accepted_at"`
	}

	paymentRow struct {
		ID          string    `db:"id"`
		BookingID   string    `db:"booking_id"`
		Total       int64     `db:"total"`
		DownPayment int64     `db:"down_payment"`
		Balance     int64     `db:"balance"`
		Type        string    `db:"type"`
		Method      string    `db:"method"`
		Status      string    `db:"status"`
		CreatedAt   time.Time `db:"created_at"`
	}

	eventRow struct {
		ID        string    `db:"id"`
		BookingID string    `db:"booking_id"`
		Name      string    `db:"name"`
		EventDate time.Time `db:"event_date"`
		Status    string    `db:"status"`
		CreatedAt time.Time `db:"created_at"`
	}
)

func newBookingRow(bkg booking.Booking) (bookingRow, error) {
	components, err := json.Marshal(bkg.Components)
	if err != nil {
		return bookingRow{}, errors.Wrap(err, "encoding booking components")
	}
	organizers, err := json.Marshal(bkg.Organizers)
	if err != nil {
		return bookingRow{}, errors.Wrap(err, "encoding booking organizers")
	}

	row := bookingRow{
		ID:            bkg.ID,
		ClientID:      bkg.ClientID,
		PackageID:     bkg.PackageID,
		VenueID:       bkg.VenueID,
		EventType:     bkg.EventType,
		EventDate:     bkg.EventDate,
		GuestCount:    bkg.GuestCount,
		PackagePrice:  bkg.PackagePrice,
		OverageAmount: bkg.OverageAmount,
		VenueExcess:   bkg.VenueExcess,
		TotalAmount:   bkg.TotalAmount,
		Components:    components,
		Organizers:    organizers,
		Status:        string(bkg.Status),
		CreatedAt:     bkg.CreatedAt,
		UpdatedAt:     bkg.UpdatedAt,
	}
	if bkg.AcceptedAt != nil {
		row.AcceptedAt = null.TimeFrom(*bkg.AcceptedAt)
	}
	return row, nil
}

func (row bookingRow) toBooking() (booking.Booking, error) {
	bkg := booking.Booking{
		ID:            row.ID,
		ClientID:      row.ClientID,
		PackageID:     row.PackageID,
		VenueID:       row.VenueID,
		EventType:     row.EventType,
		EventDate:     row.EventDate,
		GuestCount:    row.GuestCount,
		PackagePrice:  row.PackagePrice,
		OverageAmount: row.OverageAmount,
		VenueExcess:   row.VenueExcess,
		TotalAmount:   row.TotalAmount,
		Status:        booking.BookingStatus(row.Status),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if err := json.Unmarshal(row.Components, &bkg.Components); err != nil {
		return booking.Booking{}, errors.Wrap(err, "decoding booking components")
	}
	if err := json.Unmarshal(row.Organizers, &bkg.Organizers); err != nil {
		return booking.Booking{}, errors.Wrap(err, "decoding booking organizers")
	}
	if row.AcceptedAt.Valid {
		t := row.AcceptedAt.Time
		bkg.AcceptedAt = &t
	}
	return bkg, nil
}

func (row paymentRow) toPayment() booking.Payment {
	return booking.Payment{
		ID:          row.ID,
		BookingID:   row.BookingID,
		Total:       row.Total,
		DownPayment: row.DownPayment,
		Balance:     row.Balance,
		Type:        wizard.PaymentType(row.Type),
		Method:      row.Method,
		Status:      booking.PaymentStatus(row.Status),
		CreatedAt:   row.CreatedAt,
	}
}

func (row eventRow) toEvent() booking.Event {
	return booking.Event(row)
}

type bookingRepository struct {
	db *sqlx.DB
}

func NewBookingRepository(db *sqlx.DB) booking.Repository {
	return &bookingRepository{db: db}
}

func (repo *bookingRepository) CreateBooking(ctx context.Context, bkg booking.Booking) (booking.Booking, error) {
	row, err := newBookingRow(bkg)
	if err != nil {
		return booking.Booking{}, err
	}
	q := `INSERT INTO booking (id, client_id, package_id, venue_id, event_type, event_date, guest_count,
	          package_price, overage_amount, venue_excess, total_amount, components, organizers,
	          status, created_at, updated_at, accepted_at)
	      VALUES (:id, :client_id, :package_id, :venue_id, :event_type, :event_date, :guest_count,
	          :package_price, :overage_amount, :venue_excess, :total_amount, :components, :organizers,
	          :status, :created_at, :updated_at, :accepted_at)`
	if _, err = repo.db.NamedExecContext(ctx, q, row); err != nil {
		return booking.Booking{}, errors.Wrap(err, "creating booking")
	}
	return bkg, nil
}

func (repo *bookingRepository) GetBookingByID(ctx context.Context, id string) (booking.Booking, error) {
	var row bookingRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM booking WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return booking.Booking{}, booking.ErrNotFound
		}
		return booking.Booking{}, errors.Wrap(err, "getting booking")
	}
	return row.toBooking()
}

func (repo *bookingRepository) queryBookings(ctx context.Context, q string, args ...interface{}) ([]booking.Booking, error) {
	var rows []bookingRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying bookings")
	}
	bkgs := make([]booking.Booking, 0, len(rows))
	for _, row := range rows {
		bkg, err := row.toBooking()
		if err != nil {
			return nil, err
		}
		bkgs = append(bkgs, bkg)
	}
	return bkgs, nil
}

func (repo *bookingRepository) QueryAllBookings(ctx context.Context) ([]booking.Booking, error) {
	return repo.queryBookings(ctx, `SELECT * FROM booking ORDER BY created_at`)
}

func (repo *bookingRepository) QueryBookingsByClient(ctx context.Context, clientID string) ([]booking.Booking, error) {
	return repo.queryBookings(ctx, `SELECT * FROM booking WHERE client_id = $1 ORDER BY created_at`, clientID)
}

func (repo *bookingRepository) UpdateBooking(ctx context.Context, bkg booking.Booking) (booking.Booking, error) {
	row, err := newBookingRow(bkg)
	if err != nil {
		return booking.Booking{}, err
	}
	q := `UPDATE booking
	      SET status = :status, organizers = :organizers, components = :components,
	          total_amount = :total_amount, overage_amount = :overage_amount, venue_excess = :venue_excess,
	          updated_at = :updated_at, accepted_at = :accepted_at
	      WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return booking.Booking{}, errors.Wrap(err, "updating booking")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return booking.Booking{}, booking.ErrNotFound
	}
	return bkg, nil
}

func (repo *bookingRepository) CreatePayment(ctx context.Context, pmt booking.Payment) (booking.Payment, error) {
	q := `INSERT INTO payment (id, booking_id, total, down_payment, balance, type, method, status, created_at)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, q,
		pmt.ID, pmt.BookingID, pmt.Total, pmt.DownPayment, pmt.Balance,
		string(pmt.Type), pmt.Method, string(pmt.Status), pmt.CreatedAt)
	if err != nil {
		return booking.Payment{}, errors.Wrap(err, "creating payment")
	}
	return pmt, nil
}

func (repo *bookingRepository) QueryPaymentsByBooking(ctx context.Context, bookingID string) ([]booking.Payment, error) {
	var rows []paymentRow
	q := `SELECT * FROM payment WHERE booking_id = $1 ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &rows, q, bookingID); err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	pmts := make([]booking.Payment, 0, len(rows))
	for _, row := range rows {
		pmts = append(pmts, row.toPayment())
	}
	return pmts, nil
}

func (repo *bookingRepository) CreateEvent(ctx context.Context, evt booking.Event) (booking.Event, error) {
	q := `INSERT INTO event (id, booking_id, name, event_date, status, created_at)
	      VALUES (:id, :booking_id, :name, :event_date, :status, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, eventRow(evt)); err != nil {
		return booking.Event{}, errors.Wrap(err, "creating event")
	}
	return evt, nil
}

func (repo *bookingRepository) GetEventByBooking(ctx context.Context, bookingID string) (booking.Event, error) {
	var row eventRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM event WHERE booking_id = $1`, bookingID); err != nil {
		if err == sql.ErrNoRows {
			return booking.Event{}, booking.ErrNotFound
		}
		return booking.Event{}, errors.Wrap(err, "getting event")
	}
	return row.toEvent(), nil
}
