package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/marcusb/eventwise/core/catalog"
)

type catalogRepository struct {
	db *DB
}

func NewCatalogRepository(db *DB) catalog.Repository {
	return &catalogRepository{db: db}
}

func (repo *catalogRepository) QueryAllPackages(_ context.Context) ([]catalog.Package, error) {
	repo.db.packages.mutex.RLock()
	defer repo.db.packages.mutex.RUnlock()

	pkgs := make([]catalog.Package, 0, len(repo.db.packages.table))
	for _, pkg := range repo.db.packages.table {
		if pkg.IsActive {
			pkgs = append(pkgs, *pkg)
		}
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Name < pkgs[j].Name })
	return pkgs, nil
}

func (repo *catalogRepository) GetPackageByID(_ context.Context, id string) (catalog.Package, error) {
	repo.db.packages.mutex.RLock()
	defer repo.db.packages.mutex.RUnlock()

	if pkg, ok := repo.db.packages.table[id]; ok {
		return *pkg, nil
	}
	return catalog.Package{}, catalog.ErrPackageNotFound
}

func (repo *catalogRepository) QueryAllVenues(_ context.Context) ([]catalog.Venue, error) {
	repo.db.venues.mutex.RLock()
	defer repo.db.venues.mutex.RUnlock()

	venues := make([]catalog.Venue, 0, len(repo.db.venues.table))
	for _, v := range repo.db.venues.table {
		if v.IsActive {
			venues = append(venues, *v)
		}
	}
	sort.Slice(venues, func(i, j int) bool { return venues[i].Name < venues[j].Name })
	return venues, nil
}

func (repo *catalogRepository) GetVenueByID(_ context.Context, id string) (catalog.Venue, error) {
	repo.db.venues.mutex.RLock()
	defer repo.db.venues.mutex.RUnlock()

	if v, ok := repo.db.venues.table[id]; ok {
		return *v, nil
	}
	return catalog.Venue{}, catalog.ErrVenueNotFound
}

func (repo *catalogRepository) QueryAllOrganizers(_ context.Context) ([]catalog.Organizer, error) {
	repo.db.organizers.mutex.RLock()
	defer repo.db.organizers.mutex.RUnlock()

	orgs := make([]catalog.Organizer, 0, len(repo.db.organizers.table))
	for _, org := range repo.db.organizers.table {
		orgs = append(orgs, *org)
	}
	sort.Slice(orgs, func(i, j int) bool { return orgs[i].Name < orgs[j].Name })
	return orgs, nil
}

func (repo *catalogRepository) GetOrganizerByID(_ context.Context, id string) (catalog.Organizer, error) {
	repo.db.organizers.mutex.RLock()
	defer repo.db.organizers.mutex.RUnlock()

	if org, ok := repo.db.organizers.table[id]; ok {
		return *org, nil
	}
	return catalog.Organizer{}, catalog.ErrOrganizerNotFound
}

func (repo *catalogRepository) QueryAssignmentsByOrganizer(_ context.Context, organizerID string) ([]catalog.Assignment, error) {
	repo.db.asgs.mutex.RLock()
	defer repo.db.asgs.mutex.RUnlock()

	asgs := make([]catalog.Assignment, 0)
	for _, asg := range repo.db.asgs.table {
		if asg.OrganizerID == organizerID {
			asgs = append(asgs, *asg)
		}
	}
	return asgs, nil
}

func (repo *catalogRepository) QueryAssignmentsByDate(_ context.Context, date time.Time) ([]catalog.Assignment, error) {
	repo.db.asgs.mutex.RLock()
	defer repo.db.asgs.mutex.RUnlock()

	y, m, d := date.Date()
	asgs := make([]catalog.Assignment, 0)
	for _, asg := range repo.db.asgs.table {
		ay, am, ad := asg.EventDate.Date()
		if ay == y && am == m && ad == d {
			asgs = append(asgs, *asg)
		}
	}
	return asgs, nil
}

func (repo *catalogRepository) CreateAssignment(_ context.Context, asg catalog.Assignment) (catalog.Assignment, error) {
	repo.db.asgs.mutex.Lock()
	defer repo.db.asgs.mutex.Unlock()
	repo.db.asgs.table[asg.ID] = &asg
	return asg, nil
}

func (repo *catalogRepository) CreateSupplier(_ context.Context, sup catalog.Supplier) (catalog.Supplier, error) {
	repo.db.suppliers.mutex.Lock()
	defer repo.db.suppliers.mutex.Unlock()
	repo.db.suppliers.table[sup.ID] = &sup
	return sup, nil
}

func (repo *catalogRepository) CreateOffer(_ context.Context, off catalog.Offer) (catalog.Offer, error) {
	repo.db.offers.mutex.Lock()
	defer repo.db.offers.mutex.Unlock()
	repo.db.offers.table[off.ID] = &off
	return off, nil
}

func (repo *catalogRepository) CreateRating(_ context.Context, rat catalog.Rating) (catalog.Rating, error) {
	repo.db.ratings.mutex.Lock()
	defer repo.db.ratings.mutex.Unlock()
	repo.db.ratings.table[rat.ID] = &rat
	return rat, nil
}

// SeedPackage, SeedVenue and SeedOrganizer load catalog fixtures directly,
// bypassing the service layer; meant for tests and local development.
func SeedPackage(db *DB, pkg catalog.Package) {
	db.packages.mutex.Lock()
	defer db.packages.mutex.Unlock()
	db.packages.table[pkg.ID] = &pkg
}

func SeedVenue(db *DB, v catalog.Venue) {
	db.venues.mutex.Lock()
	defer db.venues.mutex.Unlock()
	db.venues.table[v.ID] = &v
}

func SeedOrganizer(db *DB, org catalog.Organizer) {
	db.organizers.mutex.Lock()
	defer db.organizers.mutex.Unlock()
	db.organizers.table[org.ID] = &org
}
