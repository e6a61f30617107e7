package courses

import "time"

// Levels a course can be offered at.
const (
	LevelUndergraduate = "Undergraduate"
	LevelGraduate      = "Graduate"
)

// Course is one catalog entry. FacultyID points at the member who
// teaches it; zero means unassigned.
type Course struct {
	ID          int64
	Code        string
	Title       string
	Description string
	Credits     int
	Level       string
	FacultyID   int64
	FacultyName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListFilters narrows and pages the catalog listing.
type ListFilters struct {
	Page      int
	Limit     int
	Search    string
	Level     string
	FacultyID int64
}
