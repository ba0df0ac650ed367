package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
)

var (
	// errors
	ErrPackageNotFound   = errors.New("package not found")
	ErrVenueNotFound     = errors.New("venue not found")
	ErrOrganizerNotFound = errors.New("organizer not found")

	// cache keys
	packagesCacheKey   = "catalog:packages"
	venuesCacheKey     = "catalog:venues"
	organizersCacheKey = "catalog:organizers"
)

type (
	Repository interface {
		QueryAllPackages(ctx context.Context) ([]Package, error)
		GetPackageByID(ctx context.Context, id string) (Package, error)
		QueryAllVenues(ctx context.Context) ([]Venue, error)
		GetVenueByID(ctx context.Context, id string) (Venue, error)
		QueryAllOrganizers(ctx context.Context) ([]Organizer, error)
		GetOrganizerByID(ctx context.Context, id string) (Organizer, error)
		QueryAssignmentsByOrganizer(ctx context.Context, organizerID string) ([]Assignment, error)
		QueryAssignmentsByDate(ctx context.Context, date time.Time) ([]Assignment, error)
		CreateAssignment(ctx context.Context, asg Assignment) (Assignment, error)
		CreateSupplier(ctx context.Context, sup Supplier) (Supplier, error)
		CreateOffer(ctx context.Context, off Offer) (Offer, error)
		CreateRating(ctx context.Context, rat Rating) (Rating, error)
	}

	Service struct {
		repo  Repository
		cache *gocache.Cache
	}
)

func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		cache: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// ListPackages returns all active packages; reads are served from cache.
func (svc *Service) ListPackages(ctx context.Context) ([]Package, error) {
	if pkgs, found := svc.cache.Get(packagesCacheKey); found {
		return pkgs.([]Package), nil
	}
	pkgs, err := svc.repo.QueryAllPackages(ctx)
	if err != nil {
		return nil, err
	}
	svc.cache.SetDefault(packagesCacheKey, pkgs)
	return pkgs, nil
}

func (svc *Service) GetPackage(ctx context.Context, id string) (Package, error) {
	return svc.repo.GetPackageByID(ctx, id)
}

func (svc *Service) ListVenues(ctx context.Context) ([]Venue, error) {
	if venues, found := svc.cache.Get(venuesCacheKey); found {
		return venues.([]Venue), nil
	}
	venues, err := svc.repo.QueryAllVenues(ctx)
	if err != nil {
		return nil, err
	}
	svc.cache.SetDefault(venuesCacheKey, venues)
	return venues, nil
}

func (svc *Service) GetVenue(ctx context.Context, id string) (Venue, error) {
	return svc.repo.GetVenueByID(ctx, id)
}

func (svc *Service) ListOrganizers(ctx context.Context) ([]Organizer, error) {
	if orgs, found := svc.cache.Get(organizersCacheKey); found {
		return orgs.([]Organizer), nil
	}
	orgs, err := svc.repo.QueryAllOrganizers(ctx)
	if err != nil {
		return nil, err
	}
	svc.cache.SetDefault(organizersCacheKey, orgs)
	return orgs, nil
}

func (svc *Service) GetOrganizer(ctx context.Context, id string) (Organizer, error) {
	return svc.repo.GetOrganizerByID(ctx, id)
}

// AvailableOrganizers returns active organizers with no assignment on the given date.
func (svc *Service) AvailableOrganizers(ctx context.Context, date time.Time) ([]Organizer, error) {
	orgs, err := svc.ListOrganizers(ctx)
	if err != nil {
		return nil, err
	}
	asgs, err := svc.repo.QueryAssignmentsByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]struct{}, len(asgs))
	for _, asg := range asgs {
		taken[asg.OrganizerID] = struct{}{}
	}
	available := make([]Organizer, 0, len(orgs))
	for _, org := range orgs {
		if _, ok := taken[org.ID]; !ok && org.IsActive {
			available = append(available, org)
		}
	}
	return available, nil
}

func (svc *Service) OrganizerAssignments(ctx context.Context, organizerID string) ([]Assignment, error) {
	if _, err := svc.repo.GetOrganizerByID(ctx, organizerID); err != nil {
		return nil, err
	}
	return svc.repo.QueryAssignmentsByOrganizer(ctx, organizerID)
}

// AssignOrganizers books the given organizers for a booking's event date.
func (svc *Service) AssignOrganizers(ctx context.Context, bookingID string, eventDate time.Time, organizerIDs ...string) ([]Assignment, error) {
	asgs := make([]Assignment, 0, len(organizerIDs))
	for _, orgID := range organizerIDs {
		if _, err := svc.repo.GetOrganizerByID(ctx, orgID); err != nil {
			return nil, err
		}
		asg, err := svc.repo.CreateAssignment(ctx, Assignment{
			ID:          uuid.New().String(),
			OrganizerID: orgID,
			BookingID:   bookingID,
			EventDate:   eventDate,
			CreatedAt:   time.Now().UTC(),
		})
		if err != nil {
			return nil, errors.Wrap(err, "creating assignment")
		}
		asgs = append(asgs, asg)
	}
	return asgs, nil
}

func (svc *Service) CreateSupplier(ctx context.Context, ns NewSupplier) (Supplier, error) {
	sup := Supplier{
		ID:        uuid.New().String(),
		Name:      ns.Name,
		Service:   ns.Service,
		Email:     ns.Email,
		Phone:     ns.Phone,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateSupplier(ctx, sup)
}

func (svc *Service) CreateOffer(ctx context.Context, no NewOffer) (Offer, error) {
	if _, err := svc.repo.GetOrganizerByID(ctx, no.OrganizerID); err != nil {
		return Offer{}, err
	}
	off := Offer{
		ID:          uuid.New().String(),
		OrganizerID: no.OrganizerID,
		Title:       no.Title,
		Description: no.Description,
		Price:       no.Price,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateOffer(ctx, off)
}

func (svc *Service) CreateRating(ctx context.Context, nr NewRating) (Rating, error) {
	if _, err := svc.repo.GetOrganizerByID(ctx, nr.OrganizerID); err != nil {
		return Rating{}, err
	}
	rat := Rating{
		ID:          uuid.New().String(),
		OrganizerID: nr.OrganizerID,
		ClientID:    nr.ClientID,
		Score:       nr.Score,
		Comment:     nr.Comment,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateRating(ctx, rat)
}

// InvalidateCache drops all cached catalog reads. Catalog rows are edited
// outside this service, so staleness is bounded by the cache TTL or an
// explicit invalidation.
func (svc *Service) InvalidateCache() {
	svc.cache.Delete(packagesCacheKey)
	svc.cache.Delete(venuesCacheKey)
	svc.cache.Delete(organizersCacheKey)
}
