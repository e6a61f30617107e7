package students

import (
	"context"
	"fmt"
	"strings"

	"github.com/academydb/academydb/internal/shared"
)

// Service handles student profile business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns a filtered page of students and the total match count.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Student, int, error) {
	return s.repo.List(ctx, filters)
}

// Get fetches one student.
func (s *Service) Get(ctx context.Context, id int64) (Student, error) {
	return s.repo.Get(ctx, id)
}

// Update validates and persists profile changes.
func (s *Service) Update(ctx context.Context, id int64, student Student) error {
	if err := validate(student); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, student)
}

// Delete removes a student profile.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func validate(student Student) error {
	if strings.TrimSpace(student.FullName) == "" {
		return fmt.Errorf("%w: full name is required", shared.ErrValidation)
	}
	if !strings.Contains(student.Email, "@") {
		return fmt.Errorf("%w: a valid email is required", shared.ErrValidation)
	}
	if student.Status != StatusActive && student.Status != StatusInactive {
		return fmt.Errorf("%w: status must be Active or Inactive", shared.ErrValidation)
	}
	return nil
}
