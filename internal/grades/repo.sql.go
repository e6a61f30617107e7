package grades

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/academydb/academydb/internal/shared"
)

type Repository interface {
	ListByCourse(ctx context.Context, courseID int64) ([]Grade, error)
	ListByStudent(ctx context.Context, studentID int64) ([]Grade, error)
	Upsert(ctx context.Context, studentID, courseID int64, value string, gradedBy int64) error
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// ListByCourse returns one row per enrolled student, with an empty
// Value for students not yet graded.
func (r *PGRepository) ListByCourse(ctx context.Context, courseID int64) ([]Grade, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT COALESCE(g.id, 0), s.id, s.full_name, c.id, c.code, c.title,
		       COALESCE(g.value, ''), COALESCE(g.graded_by, 0), COALESCE(g.updated_at, e.enrolled_at)
		FROM enrollments e
		JOIN students s ON s.id = e.student_id
		JOIN courses c ON c.id = e.course_id
		LEFT JOIN grades g ON g.student_id = e.student_id AND g.course_id = e.course_id
		WHERE e.course_id = $1
		ORDER BY s.full_name`, courseID)
	if err != nil {
		return nil, fmt.Errorf("list grades by course: %w", err)
	}
	defer rows.Close()
	return collect(rows.Next, rows.Scan, rows.Err)
}

func (r *PGRepository) ListByStudent(ctx context.Context, studentID int64) ([]Grade, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT g.id, s.id, s.full_name, c.id, c.code, c.title, g.value, g.graded_by, g.updated_at
		FROM grades g
		JOIN students s ON s.id = g.student_id
		JOIN courses c ON c.id = g.course_id
		WHERE g.student_id = $1
		ORDER BY c.code`, studentID)
	if err != nil {
		return nil, fmt.Errorf("list grades by student: %w", err)
	}
	defer rows.Close()
	return collect(rows.Next, rows.Scan, rows.Err)
}

// Upsert records a grade for an enrolled student. Grading a student who
// is not enrolled in the course returns ErrNotFound.
func (r *PGRepository) Upsert(ctx context.Context, studentID, courseID int64, value string, gradedBy int64) error {
	var enrolled bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2)`,
		studentID, courseID).Scan(&enrolled)
	if err != nil {
		return fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return shared.ErrNotFound
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO grades (student_id, course_id, value, graded_by, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (student_id, course_id)
		DO UPDATE SET value = EXCLUDED.value, graded_by = EXCLUDED.graded_by, updated_at = now()`,
		studentID, courseID, value, gradedBy)
	if err != nil {
		return fmt.Errorf("upsert grade: %w", err)
	}
	return nil
}

func collect(next func() bool, scan func(...any) error, rowsErr func() error) ([]Grade, error) {
	var list []Grade
	for next() {
		var g Grade
		if err := scan(&g.ID, &g.StudentID, &g.StudentName, &g.CourseID, &g.CourseCode, &g.CourseTitle, &g.Value, &g.GradedBy, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan grade: %w", err)
		}
		list = append(list, g)
	}
	return list, rowsErr()
}
