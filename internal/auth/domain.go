package auth

import (
	"time"

	"github.com/academydb/academydb/internal/rbac"
)

// Account is a credential row in the accounts table.
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	LastLogin    *time.Time
	CreatedAt    time.Time
}

// Principal is an authenticated identity with its resolved role.
type Principal struct {
	ID       int64
	Username string
	Role     rbac.Role
}
