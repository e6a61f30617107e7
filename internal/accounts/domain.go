package accounts

import (
	"time"

	"github.com/academydb/academydb/internal/rbac"
)

// Listing is one row in the admin user listing: the login account
// joined with the role its profile row implies.
type Listing struct {
	ID        int64
	Username  string
	Role      rbac.Role
	FullName  string
	LastLogin *time.Time
	CreatedAt time.Time
}

// NewUser carries everything needed to create a login plus its profile
// row in one step.
type NewUser struct {
	Username string
	Password string
	Role     rbac.Role
	FullName string
	Email    string
	Contact  string
	Dept     string
}
