package enrollment

import "time"

// MaxSemesterCredits caps the total credits a student may carry at once.
const MaxSemesterCredits = 21

// Enrollment ties a student to a course.
type Enrollment struct {
	ID          int64
	StudentID   int64
	CourseID    int64
	CourseCode  string
	CourseTitle string
	Credits     int
	EnrolledAt  time.Time
}

// RosterEntry is one student on a course roster.
type RosterEntry struct {
	EnrollmentID int64
	StudentID    int64
	StudentName  string
	Email        string
	EnrolledAt   time.Time
}
