package sensitive

import (
	"context"
	"fmt"

	"github.com/academydb/academydb/internal/shared"
)

// Service applies format rules before touching restricted records.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// StudentRecord fetches a student's restricted fields unmasked.
func (s *Service) StudentRecord(ctx context.Context, studentID int64) (StudentRecord, error) {
	return s.repo.GetStudent(ctx, studentID)
}

// MaskedStudentRecord fetches a student's restricted fields for self-view.
func (s *Service) MaskedStudentRecord(ctx context.Context, studentID int64) (StudentRecord, error) {
	rec, err := s.repo.GetStudent(ctx, studentID)
	if err != nil {
		return StudentRecord{}, err
	}
	rec.SSN = MaskSSN(rec.SSN)
	return rec, nil
}

// SaveStudentRecord validates and upserts a student's restricted fields.
func (s *Service) SaveStudentRecord(ctx context.Context, rec StudentRecord) error {
	if !ValidSSN(rec.SSN) {
		return fmt.Errorf("%w: SSN must match the form NNN-NN-NNNN", shared.ErrValidation)
	}
	return s.repo.UpsertStudent(ctx, rec)
}

// FacultyRecord fetches a faculty member's restricted fields unmasked.
func (s *Service) FacultyRecord(ctx context.Context, facultyID int64) (FacultyRecord, error) {
	return s.repo.GetFaculty(ctx, facultyID)
}

// MaskedFacultyRecord fetches a faculty member's restricted fields for self-view.
func (s *Service) MaskedFacultyRecord(ctx context.Context, facultyID int64) (FacultyRecord, error) {
	rec, err := s.repo.GetFaculty(ctx, facultyID)
	if err != nil {
		return FacultyRecord{}, err
	}
	rec.SSN = MaskSSN(rec.SSN)
	return rec, nil
}

// SaveFacultyRecord validates and upserts a faculty member's restricted fields.
func (s *Service) SaveFacultyRecord(ctx context.Context, rec FacultyRecord) error {
	if !ValidSSN(rec.SSN) {
		return fmt.Errorf("%w: SSN must match the form NNN-NN-NNNN", shared.ErrValidation)
	}
	return s.repo.UpsertFaculty(ctx, rec)
}
