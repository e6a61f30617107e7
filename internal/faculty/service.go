package faculty

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/academydb/academydb/internal/shared"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Member, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.Limit < 1 || filters.Limit > 100 {
		filters.Limit = 25
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Member, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, m Member) error {
	if err := validate(m); err != nil {
		return err
	}
	return s.repo.Update(ctx, m)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func validate(m Member) error {
	if strings.TrimSpace(m.FullName) == "" {
		return fmt.Errorf("%w: full name is required", shared.ErrValidation)
	}
	if !strings.Contains(m.Email, "@") {
		return fmt.Errorf("%w: email address is invalid", shared.ErrValidation)
	}
	if m.Status != StatusActive && m.Status != StatusInactive {
		return fmt.Errorf("%w: unknown status %q", shared.ErrValidation, m.Status)
	}
	return nil
}
