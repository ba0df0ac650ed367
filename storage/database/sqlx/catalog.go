package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/marcusb/eventwise/core/catalog"
)

type (
	packageRow struct {
		ID          string          `db:"id"`
		Name        string          `db:"name"`
		Description string          `db:"description"`
		Price       int64           `db:"price"`
		VenueBuffer int64           `db:"venue_buffer"`
		Inclusions  json.RawMessage `db:"inclusions"`
		IsActive    bool            `db:"is_active"`
		CreatedAt   time.Time       `db:"created_at"`
		UpdatedAt   time.Time       `db:"updated_at"`
	}

	venueRow struct {
		ID           string    `db:"id"`
		Name         string    `db:"name"`
		Location     string    `db:"location"`
		Price        int64     `db:"venue_price"`
		ExtraPaxRate int64     `db:"extra_pax_rate"`
		Capacity     int       `db:"capacity"`
		IsActive     bool      `db:"is_active"`
		CreatedAt    time.Time `db:"created_at"`
		UpdatedAt    time.Time `db:"updated_at"`
	}

	organizerRow struct {
		ID        string    `db:"id"`
		Name      string    `db:"name"`
		Specialty string    `db:"specialty"`
		Email     string    `db:"email"`
		Phone     string    `db:"phone"`
		IsActive  bool      `db:"is_active"`
		CreatedAt time.Time `db:"created_at"`
	}

	assignmentRow struct {
		ID          string    `db:"id"`
		OrganizerID string    `db:"organizer_id"`
		BookingID   string    `db:"booking_id"`
		EventDate   time.Time `db:"event_date"`
		CreatedAt   time.Time `db:"created_at"`
	}
)

func (row packageRow) toPackage() (catalog.Package, error) {
	pkg := catalog.Package{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Price:       row.Price,
		VenueBuffer: row.VenueBuffer,
		IsActive:    row.IsActive,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if err := json.Unmarshal(row.Inclusions, &pkg.Inclusions); err != nil {
		return catalog.Package{}, errors.Wrap(err, "decoding package inclusions")
	}
	return pkg, nil
}

func (row venueRow) toVenue() catalog.Venue {
	return catalog.Venue{
		ID:           row.ID,
		Name:         row.Name,
		Location:     row.Location,
		Price:        row.Price,
		ExtraPaxRate: row.ExtraPaxRate,
		Capacity:     row.Capacity,
		IsActive:     row.IsActive,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func (row organizerRow) toOrganizer() catalog.Organizer {
	return catalog.Organizer(row)
}

func (row assignmentRow) toAssignment() catalog.Assignment {
	return catalog.Assignment(row)
}

type catalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) catalog.Repository {
	return &catalogRepository{db: db}
}

func (repo *catalogRepository) QueryAllPackages(ctx context.Context) ([]catalog.Package, error) {
	var rows []packageRow
	q := `SELECT * FROM package WHERE is_active = TRUE ORDER BY name`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying packages")
	}
	pkgs := make([]catalog.Package, 0, len(rows))
	for _, row := range rows {
		pkg, err := row.toPackage()
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs, nil
}

func (repo *catalogRepository) GetPackageByID(ctx context.Context, id string) (catalog.Package, error) {
	var row packageRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM package WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Package{}, catalog.ErrPackageNotFound
		}
		return catalog.Package{}, errors.Wrap(err, "getting package")
	}
	return row.toPackage()
}

func (repo *catalogRepository) QueryAllVenues(ctx context.Context) ([]catalog.Venue, error) {
	var rows []venueRow
	q := `SELECT * FROM venue WHERE is_active = TRUE ORDER BY name`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying venues")
	}
	venues := make([]catalog.Venue, 0, len(rows))
	for _, row := range rows {
		venues = append(venues, row.toVenue())
	}
	return venues, nil
}

func (repo *catalogRepository) GetVenueByID(ctx context.Context, id string) (catalog.Venue, error) {
	var row venueRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM venue WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Venue{}, catalog.ErrVenueNotFound
		}
		return catalog.Venue{}, errors.Wrap(err, "getting venue")
	}
	return row.toVenue(), nil
}

func (repo *catalogRepository) QueryAllOrganizers(ctx context.Context) ([]catalog.Organizer, error) {
	var rows []organizerRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM organizer ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying organizers")
	}
	orgs := make([]catalog.Organizer, 0, len(rows))
	for _, row := range rows {
		orgs = append(orgs, row.toOrganizer())
	}
	return orgs, nil
}

func (repo *catalogRepository) GetOrganizerByID(ctx context.Context, id string) (catalog.Organizer, error) {
	var row organizerRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM organizer WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Organizer{}, catalog.ErrOrganizerNotFound
		}
		return catalog.Organizer{}, errors.Wrap(err, "getting organizer")
	}
	return row.toOrganizer(), nil
}

func (repo *catalogRepository) queryAssignments(ctx context.Context, where string, args ...interface{}) ([]catalog.Assignment, error) {
	var rows []assignmentRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM assignment WHERE `+where, args...); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	asgs := make([]catalog.Assignment, 0, len(rows))
	for _, row := range rows {
		asgs = append(asgs, row.toAssignment())
	}
	return asgs, nil
}

func (repo *catalogRepository) QueryAssignmentsByOrganizer(ctx context.Context, organizerID string) ([]catalog.Assignment, error) {
	return repo.queryAssignments(ctx, "organizer_id = $1", organizerID)
}

func (repo *catalogRepository) QueryAssignmentsByDate(ctx context.Context, date time.Time) ([]catalog.Assignment, error) {
	return repo.queryAssignments(ctx, "event_date::date = $1::date", date)
}

func (repo *catalogRepository) CreateAssignment(ctx context.Context, asg catalog.Assignment) (catalog.Assignment, error) {
	q := `INSERT INTO assignment (id, organizer_id, booking_id, event_date, created_at)
	      VALUES (:id, :organizer_id, :booking_id, :event_date, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, assignmentRow(asg)); err != nil {
		return catalog.Assignment{}, errors.Wrap(err, "creating assignment")
	}
	return asg, nil
}

func (repo *catalogRepository) CreateSupplier(ctx context.Context, sup catalog.Supplier) (catalog.Supplier, error) {
	q := `INSERT INTO supplier (id, name, service, email, phone, created_at)
	      VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := repo.db.ExecContext(ctx, q, sup.ID, sup.Name, sup.Service, sup.Email, sup.Phone, sup.CreatedAt); err != nil {
		return catalog.Supplier{}, errors.Wrap(err, "creating supplier")
	}
	return sup, nil
}

func (repo *catalogRepository) CreateOffer(ctx context.Context, off catalog.Offer) (catalog.Offer, error) {
	q := `INSERT INTO offer (id, organizer_id, title, description, price, created_at)
	      VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := repo.db.ExecContext(ctx, q, off.ID, off.OrganizerID, off.Title, off.Description, off.Price, off.CreatedAt); err != nil {
		return catalog.Offer{}, errors.Wrap(err, "creating offer")
	}
	return off, nil
}

func (repo *catalogRepository) CreateRating(ctx context.Context, rat catalog.Rating) (catalog.Rating, error) {
	q := `INSERT INTO rating (id, organizer_id, client_id, score, comment, created_at)
	      VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := repo.db.ExecContext(ctx, q, rat.ID, rat.OrganizerID, rat.ClientID, rat.Score, rat.Comment, rat.CreatedAt); err != nil {
		return catalog.Rating{}, errors.Wrap(err, "creating rating")
	}
	return rat, nil
}
