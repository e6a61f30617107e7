package courses

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academydb/academydb/internal/shared"
)

type fakeRepo struct {
	courses     map[int64]Course
	lastFilters ListFilters
}

func newFakeRepo(courses ...Course) *fakeRepo {
	f := &fakeRepo{courses: make(map[int64]Course)}
	for _, c := range courses {
		f.courses[c.ID] = c
	}
	return f
}

func (f *fakeRepo) List(ctx context.Context, filters ListFilters) ([]Course, int, error) {
	f.lastFilters = filters
	out := make([]Course, 0, len(f.courses))
	for _, c := range f.courses {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return Course{}, shared.ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) Create(ctx context.Context, c Course) (int64, error) {
	id := int64(len(f.courses) + 1)
	c.ID = id
	f.courses[id] = c
	return id, nil
}

func (f *fakeRepo) Update(ctx context.Context, c Course) error {
	if _, ok := f.courses[c.ID]; !ok {
		return shared.ErrNotFound
	}
	f.courses[c.ID] = c
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.courses[id]; !ok {
		return shared.ErrNotFound
	}
	delete(f.courses, id)
	return nil
}

func (f *fakeRepo) ListByFaculty(ctx context.Context, facultyID int64) ([]Course, error) {
	var out []Course
	for _, c := range f.courses {
		if c.FacultyID == facultyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func validCourse() Course {
	return Course{Code: "CS101", Title: "Introduction to Programming", Credits: 4, Level: LevelUndergraduate}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*Course)
	}{
		{"missing code", func(c *Course) { c.Code = "  " }},
		{"missing title", func(c *Course) { c.Title = "" }},
		{"zero credits", func(c *Course) { c.Credits = 0 }},
		{"too many credits", func(c *Course) { c.Credits = 7 }},
		{"unknown level", func(c *Course) { c.Level = "doctorate" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validCourse()
			tc.mutate(&c)
			_, err := svc.Create(ctx, c)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}

	id, err := svc.Create(ctx, validCourse())
	require.NoError(t, err)
	assert.NotZero(t, id)
}

func TestListClampsFilters(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)

	_, _, err := svc.List(context.Background(), ListFilters{Page: -1, Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lastFilters.Page)
	assert.Equal(t, 25, repo.lastFilters.Limit)
}

func TestTeaches(t *testing.T) {
	repo := newFakeRepo(
		Course{ID: 1, Code: "CS101", Title: "Intro", Credits: 4, Level: LevelUndergraduate, FacultyID: 10},
		Course{ID: 2, Code: "CS310", Title: "Databases", Credits: 3, Level: LevelUndergraduate, FacultyID: 11},
	)
	svc := NewService(repo, nil)
	ctx := context.Background()

	owns, err := svc.Teaches(ctx, 10, 1)
	require.NoError(t, err)
	assert.True(t, owns)

	owns, err = svc.Teaches(ctx, 10, 2)
	require.NoError(t, err)
	assert.False(t, owns)

	_, err = svc.Teaches(ctx, 10, 99)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
