package attendance

import "time"

// Statuses an attendance mark can hold.
const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
	StatusLate    = "Late"
	StatusExcused = "Excused"
)

// ValidStatus reports whether value is one of the four marks.
func ValidStatus(value string) bool {
	switch value {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	}
	return false
}

// Mark is one student's attendance on one class date.
type Mark struct {
	ID          int64
	StudentID   int64
	StudentName string
	CourseID    int64
	CourseCode  string
	Date        time.Time
	Status      string
	RecordedBy  int64
}

// Summary aggregates a student's marks for one course.
type Summary struct {
	CourseID    int64
	CourseCode  string
	CourseTitle string
	Present     int
	Absent      int
	Late        int
	Excused     int
}

// Total returns the number of class dates counted.
func (s Summary) Total() int {
	return s.Present + s.Absent + s.Late + s.Excused
}
