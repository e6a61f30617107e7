package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academydb/academydb/internal/courses"
	"github.com/academydb/academydb/internal/shared"
)

type fakeAttendanceRepo struct {
	upserts []Mark
}

func (f *fakeAttendanceRepo) Sheet(ctx context.Context, courseID int64, date time.Time) ([]Mark, error) {
	return []Mark{{StudentID: 1, CourseID: courseID, Date: date}}, nil
}

func (f *fakeAttendanceRepo) Upsert(ctx context.Context, m Mark) error {
	f.upserts = append(f.upserts, m)
	return nil
}

func (f *fakeAttendanceRepo) StudentSummary(ctx context.Context, studentID int64) ([]Summary, error) {
	return []Summary{{CourseID: 5, Present: 8, Absent: 1, Late: 1}}, nil
}

type fakeCourseRepo struct {
	course courses.Course
}

func (f *fakeCourseRepo) List(ctx context.Context, filters courses.ListFilters) ([]courses.Course, int, error) {
	return nil, 0, nil
}

func (f *fakeCourseRepo) Get(ctx context.Context, id int64) (courses.Course, error) {
	if id != f.course.ID {
		return courses.Course{}, shared.ErrNotFound
	}
	return f.course, nil
}

func (f *fakeCourseRepo) Create(ctx context.Context, c courses.Course) (int64, error) { return 0, nil }
func (f *fakeCourseRepo) Update(ctx context.Context, c courses.Course) error         { return nil }
func (f *fakeCourseRepo) Delete(ctx context.Context, id int64) error                  { return nil }
func (f *fakeCourseRepo) ListByFaculty(ctx context.Context, facultyID int64) ([]courses.Course, error) {
	return nil, nil
}

func newAttendanceService(f *fakeAttendanceRepo) *Service {
	courseSvc := courses.NewService(&fakeCourseRepo{
		course: courses.Course{ID: 5, Code: "CS101", FacultyID: 10},
	}, nil)
	return NewService(f, courseSvc, nil)
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusPresent, StatusAbsent, StatusLate, StatusExcused} {
		if !ValidStatus(s) {
			t.Fatalf("%q should be valid", s)
		}
	}
	for _, s := range []string{"", "present", "Sick", "PRESENT"} {
		if ValidStatus(s) {
			t.Fatalf("%q should not be valid", s)
		}
	}
}

func TestRecordMark(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	svc := newAttendanceService(repo)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	err := svc.RecordMark(context.Background(), 10, Mark{
		StudentID: 1, CourseID: 5, Date: date, Status: StatusLate,
	})
	require.NoError(t, err)
	require.Len(t, repo.upserts, 1)
	// The recorder is stamped server-side, never taken from the form.
	assert.Equal(t, int64(10), repo.upserts[0].RecordedBy)
}

func TestRecordMarkValidation(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	svc := newAttendanceService(repo)
	ctx := context.Background()
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	err := svc.RecordMark(ctx, 10, Mark{StudentID: 1, CourseID: 5, Date: date, Status: "Sick"})
	assert.ErrorIs(t, err, shared.ErrValidation)

	err = svc.RecordMark(ctx, 10, Mark{StudentID: 1, CourseID: 5, Status: StatusPresent})
	assert.ErrorIs(t, err, shared.ErrValidation)

	err = svc.RecordMark(ctx, 11, Mark{StudentID: 1, CourseID: 5, Date: date, Status: StatusPresent})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	assert.Empty(t, repo.upserts)
}

func TestSummaryTotal(t *testing.T) {
	s := Summary{Present: 8, Absent: 1, Late: 2, Excused: 1}
	if s.Total() != 12 {
		t.Fatalf("expected total 12 got %d", s.Total())
	}
}
