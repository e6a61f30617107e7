package faculty

import "time"

// Statuses a faculty record can hold.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// Member is one faculty profile row. The id is shared with the accounts
// table and must not appear in any other role table.
type Member struct {
	ID             int64
	FullName       string
	Email          string
	Contact        string
	Dept           string
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
	Dept   string
}
