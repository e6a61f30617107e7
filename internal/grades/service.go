package grades

import (
	"context"
	"fmt"
	"log/slog"

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

// CourseGrades lists grades for one course after verifying the faculty
// member teaches it.
func (s *Service) CourseGrades(ctx context.Context, facultyID, courseID int64) ([]Grade, error) {
	if err := s.requireOwnership(ctx, facultyID, courseID); err != nil {
		return nil, err
	}
	return s.repo.ListByCourse(ctx, courseID)
}

// RecordGrade validates and stores a grade. The faculty member must
// teach the course and the student must be enrolled in it.
func (s *Service) RecordGrade(ctx context.Context, facultyID, studentID, courseID int64, value string) error {
	if !ValidGrade(value) {
		return fmt.Errorf("%w: %q is not a valid letter grade", shared.ErrValidation, value)
	}
	if err := s.requireOwnership(ctx, facultyID, courseID); err != nil {
		return err
	}
	return s.repo.Upsert(ctx, studentID, courseID, value, facultyID)
}

// StudentGrades lists the student's own grades.
func (s *Service) StudentGrades(ctx context.Context, studentID int64) ([]Grade, error) {
	return s.repo.ListByStudent(ctx, studentID)
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
