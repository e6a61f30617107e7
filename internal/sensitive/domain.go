package sensitive

import (
	"regexp"
	"time"
)

// ssnPattern is the required NNN-NN-NNNN form.
var ssnPattern = regexp.MustCompile(`^\d{3}-\d{2}-\d{4}$`)

// ValidSSN reports whether the value matches the required SSN format.
func ValidSSN(ssn string) bool {
	return ssnPattern.MatchString(ssn)
}

// StudentRecord holds a student's restricted fields, stored apart from the
// public profile row.
type StudentRecord struct {
	StudentID     int64
	SSN           string
	FinancialInfo string
	UpdatedAt     time.Time
}

// FacultyRecord holds a faculty member's restricted fields.
type FacultyRecord struct {
	FacultyID int64
	SSN       string
	BankInfo  string
	UpdatedAt time.Time
}
