package user

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/marcusb/eventwise/core"
)

// Roles
const (
	// Admin
	RoleAdmin      = "admin:"
	RoleAdminOwner = "admin:owner"

	// Staff
	RoleStaff            = "staff:"
	RoleStaffCoordinator = "staff:coordinator"

	// Organizer/Vendor
	RoleOrganizer = "organizer:"

	// Client
	RoleClient = "client:"
)

var (
	AdminRoles     = []string{RoleAdmin, RoleAdminOwner}
	StaffRoles     = []string{RoleStaff, RoleStaffCoordinator}
	OrganizerRoles = []string{RoleOrganizer}
	ClientRoles    = []string{RoleClient}
	AllRoles       = getAllRoles()

	rolePriorities = map[string]int{
		// Admins: 40 - 31
		RoleAdminOwner: 40,
		RoleAdmin:      31,

		// Staff: 30 - 21
		RoleStaffCoordinator: 30,
		RoleStaff:            21,

		// Organizers: 20 - 11
		RoleOrganizer: 11,

		// Clients: 10 - 1
		RoleClient: 1,
	}

	Roles = []Role{
		{Name: "Client", Value: RoleClient},
		{Name: "Organizer", Value: RoleOrganizer},
		{Name: "Staff", Value: RoleStaff},
		{Name: "Staff Coordinator", Value: RoleStaffCoordinator},
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Admin Owner", Value: RoleAdminOwner},
	}
)

func getAllRoles() []string {
	all := make([]string, 0, 6)
	all = append(all, AdminRoles...)
	all = append(all, StaffRoles...)
	all = append(all, OrganizerRoles...)
	all = append(all, ClientRoles...)
	return all
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"is_active"`
	Roles        []string  `json:"roles"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) RoleStartsWith(prefix string) bool {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.RoleStartsWith(RoleAdmin)
}

func (u *User) IsStaff() bool {
	return u.RoleStartsWith(RoleStaff)
}

func (u *User) IsOrganizer() bool {
	return u.RoleStartsWith(RoleOrganizer)
}

func (u *User) IsClient() bool {
	return u.RoleStartsWith(RoleClient)
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string   `json:"name" validate:"required"`
	Username        string   `json:"username" validate:"omitempty,min=6,alphanum_"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
}

func (nu *NewUser) Validate() error {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	return core.Validate.Struct(nu)
}

// UpdateUser contains information needed to update an existing User.
// Only provided fields are updated.
type UpdateUser struct {
	Name            string   `json:"name"`
	Username        string   `json:"username" validate:"omitempty,min=6,alphanum_"`
	Email           string   `json:"email" validate:"omitempty,email"`
	IsActive        *bool    `json:"is_active"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
	Password        string   `json:"password" validate:"omitempty"`
	PasswordConfirm string   `json:"password_confirm" validate:"omitempty,eqfield=Password"`
}

func (uu *UpdateUser) Validate() error {
	uu.Name = core.CleanString(uu.Name)
	uu.Username = core.CleanString(uu.Username, true /* lower */)
	uu.Email = core.CleanString(uu.Email, true /* lower */)
	return core.Validate.Struct(uu)
}

// QueryFilter can be applied when querying Users.
type QueryFilter struct {
	Search      string    `json:"search"` // name, username or email
	Roles       []string  `json:"roles"`
	IsActive    *bool     `json:"is_active"`
	CreatedFrom time.Time `json:"created_from"`
	CreatedTo   time.Time `json:"created_to"`
}

func (f *QueryFilter) Clean() {
	f.Search = core.CleanString(f.Search, true /* lower */)
	for i, role := range f.Roles {
		f.Roles[i] = core.CleanString(role, true /* lower */)
	}
}

// Match reports whether the user satisfies every provided criterion.
func (f *QueryFilter) Match(u User) bool {
	if f.Search != "" {
		search := strings.ToLower(f.Search)
		if !(strings.Contains(strings.ToLower(u.Name), search) ||
			strings.Contains(u.Username, search) ||
			strings.Contains(u.Email, search)) {
			return false
		}
	}
	if len(f.Roles) > 0 {
		var found bool
		for _, role := range f.Roles {
			if u.RoleStartsWith(role) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.IsActive != nil && u.IsActive != *f.IsActive {
		return false
	}
	if !f.CreatedFrom.IsZero() && u.CreatedAt.Before(f.CreatedFrom) {
		return false
	}
	if !f.CreatedTo.IsZero() && u.CreatedAt.After(f.CreatedTo) {
		return false
	}
	return true
}

func (f *QueryFilter) IsEmpty() bool {
	return f.Search == "" && len(f.Roles) == 0 && f.IsActive == nil &&
		f.CreatedFrom.IsZero() && f.CreatedTo.IsZero()
}
