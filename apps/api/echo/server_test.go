package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/marcusb/eventwise/core"
	"github.com/marcusb/eventwise/core/booking"
	"github.com/marcusb/eventwise/core/catalog"
	"github.com/marcusb/eventwise/core/user"
	"github.com/marcusb/eventwise/core/wizard"
	emailsvc "github.com/marcusb/eventwise/services/email"
	inmemdb "github.com/marcusb/eventwise/storage/database/inmem"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type testEnv struct {
	server     Server
	db         *inmemdb.DB
	userSvc    *user.Service
	catalogSvc *catalog.Service
	bookingSvc *booking.Service
	drafts     *wizard.Manager
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	core.Conf.Debug = false
	core.Conf.TestMode = true

	db := inmemdb.Open()
	mailSvc := emailsvc.NewConsoleServiceMock()
	userSvc := user.NewService(inmemdb.NewUserRepository(db), mailSvc)
	catalogSvc := catalog.NewService(inmemdb.NewCatalogRepository(db))
	drafts := wizard.NewManager(inmemdb.NewDraftStore(db), 7*24*time.Hour, nopLogger{})
	bookingSvc := booking.NewService(inmemdb.NewBookingRepository(db), catalogSvc, drafts, mailSvc, nopLogger{})

	srv := NewServer(&Options{
		DisableReqLogs: true,
		Logger:         nopLogger{},
		UserSvc:        userSvc,
		CatalogSvc:     catalogSvc,
		BookingSvc:     bookingSvc,
		Drafts:         drafts,
	})
	return &testEnv{
		server:     srv,
		db:         db,
		userSvc:    userSvc,
		catalogSvc: catalogSvc,
		bookingSvc: bookingSvc,
		drafts:     drafts,
	}
}

func (env *testEnv) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	return rec
}

func createUser(t *testing.T, svc *user.Service, name, uname, email, pwd string, roles []string) user.User {
	t.Helper()
	usr, err := svc.Create(context.Background(), user.NewUser{
		Name:            name,
		Username:        uname,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		Roles:           roles,
	})
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// seedCatalog loads a package, a venue and two organizers used across the
// API tests.
func seedCatalog(t *testing.T, db *inmemdb.DB) {
	t.Helper()
	now := time.Now().UTC()
	inmemdb.SeedPackage(db, catalog.Package{
		ID:          "pkg-1",
		Name:        "Gala",
		Price:       50000,
		VenueBuffer: 25000,
		Inclusions: []catalog.Inclusion{
			{Name: "Catering", Price: 30000},
			{Name: "Styling", Price: 15000},
		},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	inmemdb.SeedVenue(db, catalog.Venue{
		ID:           "v-1",
		Name:         "Grand Hall",
		Price:        20000,
		ExtraPaxRate: 300,
		Capacity:     300,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	inmemdb.SeedOrganizer(db, catalog.Organizer{ID: "org-1", Name: "Alice Reyes", Specialty: "Weddings", IsActive: true, CreatedAt: now})
	inmemdb.SeedOrganizer(db, catalog.Organizer{ID: "org-2", Name: "Ben Cruz", Specialty: "Corporate", IsActive: true, CreatedAt: now})
}

// completedState is a wizard state that passed every step: 130 guests at
// v-1 cost 29000, 4000 over the 25000 buffer, so the total is 54000.
func completedState() wizard.State {
	return wizard.State{
		CurrentStep:    6,
		CompletedSteps: []string{"client", "event", "package", "venue", "components", "organizers", "payment"},
		ClientData: wizard.ClientData{
			Name:  "Maria Santos",
			Email: "maria@example.test",
			Phone: "+63 917 000 0000",
		},
		EventDetails: wizard.EventDetails{
			EventType:  "wedding",
			EventDate:  time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC),
			GuestCount: 130,
		},
		SelectedPackageID: "pkg-1",
		SelectedVenueID:   "v-1",
		Components: []wizard.Component{
			{ID: "c-1", Name: "Catering", Price: 30000, Included: true},
			{ID: "c-2", Name: "Styling", Price: 15000, Included: true},
		},
		OriginalPackagePrice: 50000,
		SelectedOrganizers:   []string{"org-1", "org-2"},
		PaymentData: wizard.PaymentData{
			Total:       54000,
			DownPayment: 27000,
			Balance:     27000,
			Type:        wizard.PaymentHalf,
		},
	}
}

func TestHome(t *testing.T) {
	env := setup(t)
	rec := env.do(http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
	}
	if want := "Welcome to Eventwise API!"; rec.Body.String() != want {
		t.Errorf("failed! body = %q; want %q", rec.Body.String(), want)
	}
}
