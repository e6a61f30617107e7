package students

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academydb/academydb/internal/shared"
)

type fakeRepo struct {
	updated *Student
}

func (f *fakeRepo) List(ctx context.Context, filters ListFilters) ([]Student, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (Student, error) {
	return Student{}, shared.ErrNotFound
}

func (f *fakeRepo) Update(ctx context.Context, id int64, s Student) error {
	f.updated = &s
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error { return nil }

func TestUpdateValidation(t *testing.T) {
	valid := Student{FullName: "Avery Stone", Email: "astone@example.edu", Status: StatusActive}

	cases := []struct {
		name   string
		mutate func(*Student)
	}{
		{"missing name", func(s *Student) { s.FullName = "  " }},
		{"bad email", func(s *Student) { s.Email = "not-an-email" }},
		{"unknown status", func(s *Student) { s.Status = "Suspended" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeRepo{}
			s := valid
			tc.mutate(&s)
			err := NewService(repo).Update(context.Background(), 1, s)
			assert.ErrorIs(t, err, shared.ErrValidation)
			assert.Nil(t, repo.updated)
		})
	}

	repo := &fakeRepo{}
	require.NoError(t, NewService(repo).Update(context.Background(), 1, valid))
	require.NotNil(t, repo.updated)
	assert.Equal(t, "Avery Stone", repo.updated.FullName)
}
