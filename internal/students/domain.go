package students

import "time"

// Statuses a student record can hold.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// Student is one student profile row. The id is shared with the accounts
// table and must not appear in any other role table.
type Student struct {
	ID             int64
	FullName       string
	Email          string
	Contact        string
	Status         string
	AdditionalInfo string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ListFilters narrows and pages the admin listing.
type ListFilters struct {
	Page   int
	Limit  int
	Search string
	Status string
}
