package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/academydb/academydb/internal/rbac"
	"github.com/academydb/academydb/internal/shared"
)

type stubRepo struct {
	account     *Account
	role        rbac.Role
	roleErr     error
	lastTouched int64
}

func (s *stubRepo) FindByUsername(ctx context.Context, username string) (*Account, error) {
	if s.account == nil || s.account.Username != username {
		return nil, shared.ErrNotFound
	}
	return s.account, nil
}

func (s *stubRepo) ResolveRole(ctx context.Context, accountID int64) (rbac.Role, error) {
	if s.roleErr != nil {
		return rbac.RoleUnknown, s.roleErr
	}
	return s.role, nil
}

func (s *stubRepo) TouchLastLogin(ctx context.Context, accountID int64, at time.Time) error {
	s.lastTouched = accountID
	return nil
}

func TestAuthenticateSuccess(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo := &stubRepo{
		account: &Account{ID: 7, Username: "jsmith", PasswordHash: hash},
		role:    rbac.RoleFaculty,
	}
	svc := NewService(repo, nil)

	p, err := svc.Authenticate(context.Background(), "jsmith", "correct horse")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if p.ID != 7 || p.Role != rbac.RoleFaculty {
		t.Fatalf("unexpected principal %+v", p)
	}
	if repo.lastTouched != 7 {
		t.Fatalf("last login not recorded")
	}
}

func TestAuthenticateFailuresAreUniform(t *testing.T) {
	hash, _ := HashPassword("correct horse")
	cases := []struct {
		name     string
		repo     *stubRepo
		username string
		password string
	}{
		{
			name:     "unknown user",
			repo:     &stubRepo{},
			username: "ghost",
			password: "whatever",
		},
		{
			name: "wrong password",
			repo: &stubRepo{
				account: &Account{ID: 1, Username: "jsmith", PasswordHash: hash},
				role:    rbac.RoleFaculty,
			},
			username: "jsmith",
			password: "wrong",
		},
		{
			name: "no profile row",
			repo: &stubRepo{
				account: &Account{ID: 1, Username: "jsmith", PasswordHash: hash},
				roleErr: shared.ErrNotFound,
			},
			username: "jsmith",
			password: "correct horse",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewService(tc.repo, nil).Authenticate(context.Background(), tc.username, tc.password)
			if !errors.Is(err, shared.ErrInvalidCredentials) {
				t.Fatalf("expected uniform credential error, got %v", err)
			}
		})
	}
}
