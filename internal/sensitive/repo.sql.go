package sensitive

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/academydb/academydb/internal/shared"
)

// Repository persists restricted student and faculty fields.
type Repository interface {
	GetStudent(ctx context.Context, studentID int64) (StudentRecord, error)
	UpsertStudent(ctx context.Context, rec StudentRecord) error
	GetFaculty(ctx context.Context, facultyID int64) (FacultyRecord, error)
	UpsertFaculty(ctx context.Context, rec FacultyRecord) error
}

type repo struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repo{pool: pool}
}

func (r *repo) GetStudent(ctx context.Context, studentID int64) (StudentRecord, error) {
	var rec StudentRecord
	err := r.pool.QueryRow(ctx,
		`SELECT student_id, ssn, financial_info, updated_at FROM student_sensitive WHERE student_id = $1`,
		studentID).Scan(&rec.StudentID, &rec.SSN, &rec.FinancialInfo, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StudentRecord{}, shared.ErrNotFound
		}
		return StudentRecord{}, err
	}
	return rec, nil
}

func (r *repo) UpsertStudent(ctx context.Context, rec StudentRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO student_sensitive (student_id, ssn, financial_info, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (student_id) DO UPDATE SET
		   ssn = EXCLUDED.ssn, financial_info = EXCLUDED.financial_info, updated_at = EXCLUDED.updated_at`,
		rec.StudentID, rec.SSN, rec.FinancialInfo, time.Now().UTC())
	return err
}

func (r *repo) GetFaculty(ctx context.Context, facultyID int64) (FacultyRecord, error) {
	var rec FacultyRecord
	err := r.pool.QueryRow(ctx,
		`SELECT faculty_id, ssn, bank_info, updated_at FROM faculty_sensitive WHERE faculty_id = $1`,
		facultyID).Scan(&rec.FacultyID, &rec.SSN, &rec.BankInfo, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FacultyRecord{}, shared.ErrNotFound
		}
		return FacultyRecord{}, err
	}
	return rec, nil
}

func (r *repo) UpsertFaculty(ctx context.Context, rec FacultyRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO faculty_sensitive (faculty_id, ssn, bank_info, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (faculty_id) DO UPDATE SET
		   ssn = EXCLUDED.ssn, bank_info = EXCLUDED.bank_info, updated_at = EXCLUDED.updated_at`,
		rec.FacultyID, rec.SSN, rec.BankInfo, time.Now().UTC())
	return err
}
