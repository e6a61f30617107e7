package rbac

import "fmt"

// Role is the closed set of principal roles. Every authenticated principal
// holds exactly one.
type Role int

const (
	// RoleUnknown is the zero value and never authorizes anything.
	RoleUnknown Role = iota
	// RoleAdmin administers accounts, records and security settings.
	RoleAdmin
	// RoleFaculty manages grades and attendance for owned courses.
	RoleFaculty
	// RoleStudent registers for courses and views own records.
	RoleStudent
)

// String returns the canonical role name.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleFaculty:
		return "faculty"
	case RoleStudent:
		return "student"
	default:
		return "unknown"
	}
}

// Valid reports whether the role is one of the three known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleFaculty || r == RoleStudent
}

// ParseRole converts a stored role name back to a Role.
func ParseRole(name string) (Role, error) {
	switch name {
	case "admin":
		return RoleAdmin, nil
	case "faculty":
		return RoleFaculty, nil
	case "student":
		return RoleStudent, nil
	default:
		return RoleUnknown, fmt.Errorf("rbac: unknown role %q", name)
	}
}
