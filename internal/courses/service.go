package courses

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

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Course, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.Limit < 1 || filters.Limit > 100 {
		filters.Limit = 25
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Course, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, c Course) (int64, error) {
	if err := validate(c); err != nil {
		return 0, err
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Update(ctx context.Context, c Course) error {
	if err := validate(c); err != nil {
		return err
	}
	return s.repo.Update(ctx, c)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// TaughtBy lists the courses assigned to one faculty member.
func (s *Service) TaughtBy(ctx context.Context, facultyID int64) ([]Course, error) {
	return s.repo.ListByFaculty(ctx, facultyID)
}

// Teaches reports whether the faculty member is assigned to the course.
// Grade and attendance writes hinge on this check.
func (s *Service) Teaches(ctx context.Context, facultyID, courseID int64) (bool, error) {
	c, err := s.repo.Get(ctx, courseID)
	if err != nil {
		return false, err
	}
	return c.FacultyID == facultyID, nil
}

func validate(c Course) error {
	if strings.TrimSpace(c.Code) == "" {
		return fmt.Errorf("%w: course code is required", shared.ErrValidation)
	}
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("%w: course title is required", shared.ErrValidation)
	}
	if c.Credits < 1 || c.Credits > 6 {
		return fmt.Errorf("%w: credits must be between 1 and 6", shared.ErrValidation)
	}
	if c.Level != LevelUndergraduate && c.Level != LevelGraduate {
		return fmt.Errorf("%w: unknown course level %q", shared.ErrValidation, c.Level)
	}
	return nil
}
