package grades

import (
	"regexp"
	"time"
)

// gradePattern accepts letter grades A through D with an optional
// plus or minus, and a bare F.
var gradePattern = regexp.MustCompile(`^[A-D][+-]?$|^F$`)

// ValidGrade reports whether value is an accepted letter grade.
func ValidGrade(value string) bool {
	return gradePattern.MatchString(value)
}

// Grade is one graded enrollment.
type Grade struct {
	ID          int64
	StudentID   int64
	StudentName string
	CourseID    int64
	CourseCode  string
	CourseTitle string
	Value       string
	GradedBy    int64
	UpdatedAt   time.Time
}
