package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/academydb/academydb/internal/shared"
)

type Repository interface {
	Sheet(ctx context.Context, courseID int64, date time.Time) ([]Mark, error)
	Upsert(ctx context.Context, m Mark) error
	StudentSummary(ctx context.Context, studentID int64) ([]Summary, error)
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Sheet returns one row per enrolled student for the given date, with
// an empty Status for students not yet marked.
func (r *PGRepository) Sheet(ctx context.Context, courseID int64, date time.Time) ([]Mark, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT COALESCE(a.id, 0), s.id, s.full_name, c.id, c.code,
		       COALESCE(a.status, ''), COALESCE(a.recorded_by, 0)
		FROM enrollments e
		JOIN students s ON s.id = e.student_id
		JOIN courses c ON c.id = e.course_id
		LEFT JOIN attendance a
		       ON a.student_id = e.student_id AND a.course_id = e.course_id AND a.class_date = $2
		WHERE e.course_id = $1
		ORDER BY s.full_name`, courseID, date)
	if err != nil {
		return nil, fmt.Errorf("load attendance sheet: %w", err)
	}
	defer rows.Close()

	var sheet []Mark
	for rows.Next() {
		m := Mark{Date: date}
		if err := rows.Scan(&m.ID, &m.StudentID, &m.StudentName, &m.CourseID, &m.CourseCode, &m.Status, &m.RecordedBy); err != nil {
			return nil, fmt.Errorf("scan attendance mark: %w", err)
		}
		sheet = append(sheet, m)
	}
	return sheet, rows.Err()
}

// Upsert records a mark. Marking a student who is not enrolled in the
// course returns ErrNotFound.
func (r *PGRepository) Upsert(ctx context.Context, m Mark) error {
	var enrolled bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2)`,
		m.StudentID, m.CourseID).Scan(&enrolled)
	if err != nil {
		return fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return shared.ErrNotFound
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO attendance (student_id, course_id, class_date, status, recorded_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (student_id, course_id, class_date)
		DO UPDATE SET status = EXCLUDED.status, recorded_by = EXCLUDED.recorded_by`,
		m.StudentID, m.CourseID, m.Date, m.Status, m.RecordedBy)
	if err != nil {
		return fmt.Errorf("upsert attendance mark: %w", err)
	}
	return nil
}

func (r *PGRepository) StudentSummary(ctx context.Context, studentID int64) ([]Summary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.code, c.title,
		       COUNT(*) FILTER (WHERE a.status = 'Present'),
		       COUNT(*) FILTER (WHERE a.status = 'Absent'),
		       COUNT(*) FILTER (WHERE a.status = 'Late'),
		       COUNT(*) FILTER (WHERE a.status = 'Excused')
		FROM attendance a
		JOIN courses c ON c.id = a.course_id
		WHERE a.student_id = $1
		GROUP BY c.id, c.code, c.title
		ORDER BY c.code`, studentID)
	if err != nil {
		return nil, fmt.Errorf("load attendance summary: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.CourseID, &s.CourseCode, &s.CourseTitle, &s.Present, &s.Absent, &s.Late, &s.Excused); err != nil {
			return nil, fmt.Errorf("scan attendance summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
