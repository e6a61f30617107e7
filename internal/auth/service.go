package auth

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/academydb/academydb/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Authenticate validates username/password credentials and resolves the
// principal's role. Every failure mode collapses to ErrInvalidCredentials so
// callers cannot distinguish unknown users from wrong passwords.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Principal, error) {
	acc, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	role, err := s.repo.ResolveRole(ctx, acc.ID)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if err := s.repo.TouchLastLogin(ctx, acc.ID, time.Now().UTC()); err != nil && s.logger != nil {
		s.logger.Warn("touch last login", slog.Any("error", err))
	}
	return &Principal{ID: acc.ID, Username: acc.Username, Role: role}, nil
}

// HashPassword produces the stored bcrypt hash for a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
