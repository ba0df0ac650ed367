package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/marcusb/eventwise/core/catalog"
	"github.com/marcusb/eventwise/core/user"
	inmemdb "github.com/marcusb/eventwise/storage/database/inmem"
)

func TestCatalogBrowsing(t *testing.T) {
	env := setup(t)
	seedCatalog(t, env.db)

	tests := []httpTest{
		{
			name:     "packages are public",
			path:     "/v1/catalog/packages",
			wantCode: http.StatusOK,
		},
		{
			name:     "package detail",
			path:     "/v1/catalog/packages/pkg-1",
			wantCode: http.StatusOK,
		},
		{
			name:     "unknown package is not found",
			path:     "/v1/catalog/packages/nope",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name:     "venues are public",
			path:     "/v1/catalog/venues",
			wantCode: http.StatusOK,
		},
		{
			name:     "unknown venue is not found",
			path:     "/v1/catalog/venues/nope",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name:     "organizers are public",
			path:     "/v1/catalog/organizers",
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodGet, tt.path, "")
			checkCodeAndData(t, tt, rec)
		})
	}

	rec := env.do(http.MethodGet, "/v1/catalog/packages", "")
	var pkgs []catalog.Package
	if err := json.Unmarshal(rec.Body.Bytes(), &pkgs); err != nil {
		t.Fatalf("decoding packages failed: %v", err)
	}
	if len(pkgs) != 1 || pkgs[0].ID != "pkg-1" {
		t.Errorf("failed! packages = %+v", pkgs)
	}
}

func TestCatalogAvailableOrganizers(t *testing.T) {
	env := setup(t)
	seedCatalog(t, env.db)
	date := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	// date is required
	rec := env.do(http.MethodGet, "/v1/catalog/organizers/available", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
	}

	// both organizers are free
	rec = env.do(http.MethodGet, "/v1/catalog/organizers/available?date=2026-10-17", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v", rec.Code)
	}
	var orgs []catalog.Organizer
	if err := json.Unmarshal(rec.Body.Bytes(), &orgs); err != nil {
		t.Fatalf("decoding organizers failed: %v", err)
	}
	if len(orgs) != 2 {
		t.Fatalf("failed! got %d organizers; want 2", len(orgs))
	}

	// booking org-1 on that date removes it from the pool
	if _, err := env.catalogSvc.AssignOrganizers(context.Background(), "bkg-1", date, "org-1"); err != nil {
		t.Fatalf("AssignOrganizers() failed: %v", err)
	}
	rec = env.do(http.MethodGet, "/v1/catalog/organizers/available?date=2026-10-17", "")
	orgs = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &orgs); err != nil {
		t.Fatalf("decoding organizers failed: %v", err)
	}
	if len(orgs) != 1 || orgs[0].ID != "org-2" {
		t.Errorf("failed! organizers = %+v", orgs)
	}

	// but it is still free the next day
	rec = env.do(http.MethodGet, "/v1/catalog/organizers/available?date=2026-10-18", "")
	orgs = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &orgs); err != nil {
		t.Fatalf("decoding organizers failed: %v", err)
	}
	if len(orgs) != 2 {
		t.Errorf("failed! got %d organizers; want 2", len(orgs))
	}
}

func TestCatalogAssignments(t *testing.T) {
	env := setup(t)
	seedCatalog(t, env.db)
	organizer := createUser(t, env.userSvc, "Organizer", "organizeruser", "org@example.test", "LePass123", []string{user.RoleOrganizer})
	client := createUser(t, env.userSvc, "Maria Santos", "msantos", "maria@example.test", "LePass123", []string{user.RoleClient})

	date := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	if _, err := env.catalogSvc.AssignOrganizers(context.Background(), "bkg-1", date, "org-1"); err != nil {
		t.Fatalf("AssignOrganizers() failed: %v", err)
	}

	tests := []httpTest{
		{
			name:     "clients cannot read assignments",
			path:     "/v1/catalog/organizers/org-1/assignments",
			token:    getToken(t, client),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "organizers can",
			path:     "/v1/catalog/organizers/org-1/assignments",
			token:    getToken(t, organizer),
			wantCode: http.StatusOK,
		},
		{
			name:     "unknown organizer is not found",
			path:     "/v1/catalog/organizers/nope/assignments",
			token:    getToken(t, organizer),
			wantCode: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodGet, tt.path, tt.token)
			checkCodeAndData(t, tt, rec)
		})
	}

	rec := env.do(http.MethodGet, "/v1/catalog/organizers/org-1/assignments", getToken(t, organizer))
	var asgs []catalog.Assignment
	if err := json.Unmarshal(rec.Body.Bytes(), &asgs); err != nil {
		t.Fatalf("decoding assignments failed: %v", err)
	}
	if len(asgs) != 1 || asgs[0].BookingID != "bkg-1" {
		t.Errorf("failed! assignments = %+v", asgs)
	}
}

func TestCatalogCreateSupplier(t *testing.T) {
	env := setup(t)
	staff := createUser(t, env.userSvc, "Coordinator", "coworker", "coord@example.test", "LePass123", []string{user.RoleStaffCoordinator})
	client := createUser(t, env.userSvc, "Maria Santos", "msantos", "maria@example.test", "LePass123", []string{user.RoleClient})

	body := marchallObj(t, catalog.NewSupplier{Name: "Blooms Co", Service: "Flowers"})

	rec := env.do(http.MethodPost, "/v1/catalog/suppliers", getToken(t, client), body)
	if rec.Code != http.StatusForbidden {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusForbidden)
	}

	rec = env.do(http.MethodPost, "/v1/catalog/suppliers", getToken(t, staff), body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
	}
	var sup catalog.Supplier
	if err := json.Unmarshal(rec.Body.Bytes(), &sup); err != nil {
		t.Fatalf("decoding Supplier failed: %v", err)
	}
	if sup.ID == "" || sup.Name != "Blooms Co" {
		t.Errorf("failed! supplier = %+v", sup)
	}

	// a name and a service are required
	rec = env.do(http.MethodPost, "/v1/catalog/suppliers", getToken(t, staff), marchallObj(t, catalog.NewSupplier{}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
	}
}

func TestCatalogCreateRating(t *testing.T) {
	env := setup(t)
	seedCatalog(t, env.db)
	client := createUser(t, env.userSvc, "Maria Santos", "msantos", "maria@example.test", "LePass123", []string{user.RoleClient})

	body := marchallObj(t, catalog.NewRating{OrganizerID: "org-1", Score: 5, Comment: "Flawless coordination"})

	// auth is required; the client ID comes from the token
	rec := env.do(http.MethodPost, "/v1/catalog/ratings", "", body)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusUnauthorized)
	}

	rec = env.do(http.MethodPost, "/v1/catalog/ratings", getToken(t, client), body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
	}
	var rat catalog.Rating
	if err := json.Unmarshal(rec.Body.Bytes(), &rat); err != nil {
		t.Fatalf("decoding Rating failed: %v", err)
	}
	if rat.ClientID != client.ID || rat.Score != 5 {
		t.Errorf("failed! rating = %+v", rat)
	}

	rec = env.do(http.MethodPost, "/v1/catalog/ratings", getToken(t, client), marchallObj(t, catalog.NewRating{OrganizerID: "org-1", Score: 9}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
	}
}

func TestCatalogCacheInvalidation(t *testing.T) {
	env := setup(t)
	seedCatalog(t, env.db)
	admin := createUser(t, env.userSvc, "Admin", "adminuser", "admin@example.test", "LePass123", []string{user.RoleAdmin})
	client := createUser(t, env.userSvc, "Maria Santos", "msantos", "maria@example.test", "LePass123", []string{user.RoleClient})

	listPackages := func(t *testing.T) []catalog.Package {
		t.Helper()
		rec := env.do(http.MethodGet, "/v1/catalog/packages", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v", rec.Code)
		}
		var pkgs []catalog.Package
		if err := json.Unmarshal(rec.Body.Bytes(), &pkgs); err != nil {
			t.Fatalf("decoding packages failed: %v", err)
		}
		return pkgs
	}

	// first read fills the cache
	if pkgs := listPackages(t); len(pkgs) != 1 {
		t.Fatalf("failed! got %d packages; want 1", len(pkgs))
	}

	// a package added behind the API stays invisible while cached
	now := time.Now().UTC()
	inmemdb.SeedPackage(env.db, catalog.Package{
		ID: "pkg-2", Name: "Intimate", Price: 30000, VenueBuffer: 15000,
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	if pkgs := listPackages(t); len(pkgs) != 1 {
		t.Fatalf("failed! got %d packages; want 1 (cached)", len(pkgs))
	}

	// only admins may drop the cache
	rec := env.do(http.MethodDelete, "/v1/catalog/cache", getToken(t, client))
	if rec.Code != http.StatusForbidden {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusForbidden)
	}
	rec = env.do(http.MethodDelete, "/v1/catalog/cache", getToken(t, admin))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
	}

	if pkgs := listPackages(t); len(pkgs) != 2 {
		t.Errorf("failed! got %d packages after invalidation; want 2", len(pkgs))
	}
}
