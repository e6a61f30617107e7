package enrollment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/academydb/academydb/internal/platform/db"
	"github.com/academydb/academydb/internal/shared"
)

// ErrAlreadyEnrolled marks a duplicate registration attempt.
var ErrAlreadyEnrolled = errors.New("enrollment: student already enrolled in course")

// ErrCreditLimit marks a registration that would push the student past
// the semester credit cap.
var ErrCreditLimit = errors.New("enrollment: semester credit limit reached")

type Repository interface {
	Register(ctx context.Context, studentID, courseID int64) error
	Drop(ctx context.Context, studentID, courseID int64) error
	ListByStudent(ctx context.Context, studentID int64) ([]Enrollment, error)
	Roster(ctx context.Context, courseID int64) ([]RosterEntry, error)
	CreditLoad(ctx context.Context, studentID int64) (int, error)
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Register inserts the enrollment inside a serializable transaction so
// the credit-load read and the insert see a consistent snapshot.
// Concurrent registrations that would jointly exceed the cap force a
// serialization failure instead of an over-enrollment.
func (r *PGRepository) Register(ctx context.Context, studentID, courseID int64) error {
	return db.WithSerializableTx(ctx, r.pool, func(tx pgx.Tx) error {
		var credits int
		err := tx.QueryRow(ctx, `SELECT credits FROM courses WHERE id = $1`, courseID).Scan(&credits)
		if errors.Is(err, pgx.ErrNoRows) {
			return shared.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load course credits: %w", err)
		}

		var load int
		err = tx.QueryRow(ctx, `
			SELECT COALESCE(SUM(c.credits), 0)
			FROM enrollments e
			JOIN courses c ON c.id = e.course_id
			WHERE e.student_id = $1`, studentID).Scan(&load)
		if err != nil {
			return fmt.Errorf("sum credit load: %w", err)
		}
		if load+credits > MaxSemesterCredits {
			return ErrCreditLimit
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO enrollments (student_id, course_id)
			VALUES ($1, $2)`, studentID, courseID)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrAlreadyEnrolled
			}
			return fmt.Errorf("insert enrollment: %w", err)
		}
		return nil
	})
}

func (r *PGRepository) Drop(ctx context.Context, studentID, courseID int64) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM enrollments
		WHERE student_id = $1 AND course_id = $2`, studentID, courseID)
	if err != nil {
		return fmt.Errorf("drop enrollment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) ListByStudent(ctx context.Context, studentID int64) ([]Enrollment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT e.id, e.student_id, e.course_id, c.code, c.title, c.credits, e.enrolled_at
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.student_id = $1
		ORDER BY c.code`, studentID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	var list []Enrollment
	for rows.Next() {
		var e Enrollment
		if err := rows.Scan(&e.ID, &e.StudentID, &e.CourseID, &e.CourseCode, &e.CourseTitle, &e.Credits, &e.EnrolledAt); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *PGRepository) Roster(ctx context.Context, courseID int64) ([]RosterEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT e.id, s.id, s.full_name, s.email, e.enrolled_at
		FROM enrollments e
		JOIN students s ON s.id = e.student_id
		WHERE e.course_id = $1
		ORDER BY s.full_name`, courseID)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	defer rows.Close()

	var roster []RosterEntry
	for rows.Next() {
		var entry RosterEntry
		if err := rows.Scan(&entry.EnrollmentID, &entry.StudentID, &entry.StudentName, &entry.Email, &entry.EnrolledAt); err != nil {
			return nil, fmt.Errorf("scan roster entry: %w", err)
		}
		roster = append(roster, entry)
	}
	return roster, rows.Err()
}

func (r *PGRepository) CreditLoad(ctx context.Context, studentID int64) (int, error) {
	var load int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(c.credits), 0)
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.student_id = $1`, studentID).Scan(&load)
	if err != nil {
		return 0, fmt.Errorf("sum credit load: %w", err)
	}
	return load, nil
}
