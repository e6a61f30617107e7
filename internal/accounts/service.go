package accounts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/academydb/academydb/internal/auth"
	"github.com/academydb/academydb/internal/security"
	"github.com/academydb/academydb/internal/shared"
)

type Service struct {
	repo   Repository
	policy *security.Service
	logger *slog.Logger
}

func NewService(repo Repository, policy *security.Service, logger *slog.Logger) *Service {
	return &Service{repo: repo, policy: policy, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]Listing, error) {
	return s.repo.List(ctx)
}

// Create validates the new user against the password policy, hashes the
// password, and stores the login plus profile atomically.
func (s *Service) Create(ctx context.Context, u NewUser) (int64, error) {
	if strings.TrimSpace(u.Username) == "" {
		return 0, fmt.Errorf("%w: username is required", shared.ErrValidation)
	}
	if strings.TrimSpace(u.FullName) == "" {
		return 0, fmt.Errorf("%w: full name is required", shared.ErrValidation)
	}
	if !u.Role.Valid() {
		return 0, fmt.Errorf("%w: a role must be selected", shared.ErrValidation)
	}
	if err := s.policy.ValidatePassword(ctx, u.Password); err != nil {
		return 0, err
	}
	hash, err := auth.HashPassword(u.Password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	return s.repo.Create(ctx, u, hash)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// ResetPassword replaces an account's password after checking it
// against the current policy.
func (s *Service) ResetPassword(ctx context.Context, id int64, password string) error {
	if err := s.policy.ValidatePassword(ctx, password); err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, id, hash)
}
