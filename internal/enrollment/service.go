package enrollment

import (
	"context"
	"log/slog"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Register enrolls the student in a course. Duplicate registrations and
// registrations past the credit cap surface as ErrAlreadyEnrolled and
// ErrCreditLimit.
func (s *Service) Register(ctx context.Context, studentID, courseID int64) error {
	return s.repo.Register(ctx, studentID, courseID)
}

func (s *Service) Drop(ctx context.Context, studentID, courseID int64) error {
	return s.repo.Drop(ctx, studentID, courseID)
}

func (s *Service) ListByStudent(ctx context.Context, studentID int64) ([]Enrollment, error) {
	return s.repo.ListByStudent(ctx, studentID)
}

func (s *Service) Roster(ctx context.Context, courseID int64) ([]RosterEntry, error) {
	return s.repo.Roster(ctx, courseID)
}

func (s *Service) CreditLoad(ctx context.Context, studentID int64) (int, error) {
	return s.repo.CreditLoad(ctx, studentID)
}
