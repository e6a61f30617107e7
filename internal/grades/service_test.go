package grades

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academydb/academydb/internal/courses"
	"github.com/academydb/academydb/internal/shared"
)

type fakeGradeRepo struct {
	upserts []string
}

func (f *fakeGradeRepo) ListByCourse(ctx context.Context, courseID int64) ([]Grade, error) {
	return []Grade{{StudentID: 1, CourseID: courseID, Value: "B+"}}, nil
}

func (f *fakeGradeRepo) ListByStudent(ctx context.Context, studentID int64) ([]Grade, error) {
	return []Grade{{StudentID: studentID, Value: "A"}}, nil
}

func (f *fakeGradeRepo) Upsert(ctx context.Context, studentID, courseID int64, value string, gradedBy int64) error {
	f.upserts = append(f.upserts, value)
	return nil
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

func newGradeService(f *fakeGradeRepo) *Service {
	courseSvc := courses.NewService(&fakeCourseRepo{
		course: courses.Course{ID: 5, Code: "CS101", FacultyID: 10},
	}, nil)
	return NewService(f, courseSvc, nil)
}

func TestRecordGradeByOwner(t *testing.T) {
	repo := &fakeGradeRepo{}
	svc := newGradeService(repo)

	err := svc.RecordGrade(context.Background(), 10, 1, 5, "B+")
	require.NoError(t, err)
	assert.Equal(t, []string{"B+"}, repo.upserts)
}

func TestRecordGradeDeniedForNonOwner(t *testing.T) {
	repo := &fakeGradeRepo{}
	svc := newGradeService(repo)

	err := svc.RecordGrade(context.Background(), 11, 1, 5, "B+")
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.Empty(t, repo.upserts)
}

func TestRecordGradeRejectsInvalidValue(t *testing.T) {
	repo := &fakeGradeRepo{}
	svc := newGradeService(repo)

	err := svc.RecordGrade(context.Background(), 10, 1, 5, "F-")
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Empty(t, repo.upserts)
}

func TestCourseGradesOwnershipGate(t *testing.T) {
	svc := newGradeService(&fakeGradeRepo{})
	ctx := context.Background()

	rows, err := svc.CourseGrades(ctx, 10, 5)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = svc.CourseGrades(ctx, 99, 5)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}
