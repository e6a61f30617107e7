package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/academydb/academydb/internal/courses"
	"github.com/academydb/academydb/internal/shared"
)

type Service struct {
	repo    Repository
	courses *courses.Service
	logger  *slog.Logger
}

func NewService(repo Repository, courseSvc *courses.Service, logger *slog.Logger) *Service {
	return &Service{repo: repo, courses: courseSvc, logger: logger}
}

// Sheet loads the per-date attendance sheet for a course the faculty
// member teaches.
func (s *Service) Sheet(ctx context.Context, facultyID, courseID int64, date time.Time) ([]Mark, error) {
	if err := s.requireOwnership(ctx, facultyID, courseID); err != nil {
		return nil, err
	}
	return s.repo.Sheet(ctx, courseID, date)
}

// RecordMark validates and stores one attendance mark.
func (s *Service) RecordMark(ctx context.Context, facultyID int64, m Mark) error {
	if !ValidStatus(m.Status) {
		return fmt.Errorf("%w: %q is not a valid attendance status", shared.ErrValidation, m.Status)
	}
	if m.Date.IsZero() {
		return fmt.Errorf("%w: class date is required", shared.ErrValidation)
	}
	if err := s.requireOwnership(ctx, facultyID, m.CourseID); err != nil {
		return err
	}
	m.RecordedBy = facultyID
	return s.repo.Upsert(ctx, m)
}

// StudentSummary aggregates the student's own attendance per course.
func (s *Service) StudentSummary(ctx context.Context, studentID int64) ([]Summary, error) {
	return s.repo.StudentSummary(ctx, studentID)
}

func (s *Service) requireOwnership(ctx context.Context, facultyID, courseID int64) error {
	teaches, err := s.courses.Teaches(ctx, facultyID, courseID)
	if err != nil {
		return err
	}
	if !teaches {
		return shared.ErrForbidden
	}
	return nil
}
