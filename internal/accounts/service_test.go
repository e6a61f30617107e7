package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/academydb/academydb/internal/rbac"
	"github.com/academydb/academydb/internal/security"
	"github.com/academydb/academydb/internal/shared"
)

type fakeRepo struct {
	created      *NewUser
	createdHash  string
	passwordHash string
	deleted      int64
}

func (f *fakeRepo) List(ctx context.Context) ([]Listing, error) { return nil, nil }

func (f *fakeRepo) Create(ctx context.Context, u NewUser, passwordHash string) (int64, error) {
	f.created = &u
	f.createdHash = passwordHash
	return 1, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	f.deleted = id
	return nil
}

func (f *fakeRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	f.passwordHash = passwordHash
	return nil
}

type fixedPolicyRepo struct{}

func (fixedPolicyRepo) Get(ctx context.Context) (security.Settings, error) {
	return security.Settings{
		MinPasswordLength:     8,
		RequireNumbers:        true,
		MaxLoginAttempts:      5,
		SessionTimeoutMinutes: 30,
	}, nil
}

func (fixedPolicyRepo) Update(ctx context.Context, s security.Settings) error { return nil }

func newAccountService(repo *fakeRepo) *Service {
	return NewService(repo, security.NewService(fixedPolicyRepo{}, nil), nil)
}

func validNewUser() NewUser {
	return NewUser{
		Username: "jsmith",
		Password: "passw0rd99",
		Role:     rbac.RoleFaculty,
		FullName: "Jordan Smith",
		Email:    "jsmith@example.edu",
	}
}

func TestCreateStoresHashedPassword(t *testing.T) {
	repo := &fakeRepo{}
	svc := newAccountService(repo)

	id, err := svc.Create(context.Background(), validNewUser())
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	require.NotNil(t, repo.created)

	// The plaintext never reaches the repository.
	assert.NotEqual(t, "passw0rd99", repo.createdHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.createdHash), []byte("passw0rd99")))
}

func TestCreateValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*NewUser)
	}{
		{"missing username", func(u *NewUser) { u.Username = "  " }},
		{"missing full name", func(u *NewUser) { u.FullName = "" }},
		{"no role", func(u *NewUser) { u.Role = rbac.RoleUnknown }},
		{"password too short", func(u *NewUser) { u.Password = "p0" }},
		{"password without number", func(u *NewUser) { u.Password = "passwords" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeRepo{}
			u := validNewUser()
			tc.mutate(&u)
			_, err := newAccountService(repo).Create(context.Background(), u)
			assert.ErrorIs(t, err, shared.ErrValidation)
			assert.Nil(t, repo.created)
		})
	}
}

func TestResetPasswordChecksPolicy(t *testing.T) {
	repo := &fakeRepo{}
	svc := newAccountService(repo)
	ctx := context.Background()

	err := svc.ResetPassword(ctx, 3, "short")
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Empty(t, repo.passwordHash)

	require.NoError(t, svc.ResetPassword(ctx, 3, "fresh-pass-42"))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.passwordHash), []byte("fresh-pass-42")))
}
