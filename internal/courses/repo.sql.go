package courses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/academydb/academydb/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Course, int, error)
	Get(ctx context.Context, id int64) (Course, error)
	Create(ctx context.Context, c Course) (int64, error)
	Update(ctx context.Context, c Course) error
	Delete(ctx context.Context, id int64) error
	ListByFaculty(ctx context.Context, facultyID int64) ([]Course, error)
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const courseColumns = `c.id, c.code, c.title, c.description, c.credits, c.level, COALESCE(c.faculty_id, 0), COALESCE(f.full_name, ''), c.created_at, c.updated_at`

func scanCourse(row pgx.Row) (Course, error) {
	var c Course
	err := row.Scan(&c.ID, &c.Code, &c.Title, &c.Description, &c.Credits, &c.Level, &c.FacultyID, &c.FacultyName, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *PGRepository) List(ctx context.Context, filters ListFilters) ([]Course, int, error) {
	where := []string{"1=1"}
	args := []any{}
	idx := 1

	if filters.Search != "" {
		where = append(where, fmt.Sprintf("(c.code ILIKE $%d OR c.title ILIKE $%d)", idx, idx))
		args = append(args, "%"+filters.Search+"%")
		idx++
	}
	if filters.Level != "" {
		where = append(where, fmt.Sprintf("c.level = $%d", idx))
		args = append(args, filters.Level)
		idx++
	}
	if filters.FacultyID != 0 {
		where = append(where, fmt.Sprintf("c.faculty_id = $%d", idx))
		args = append(args, filters.FacultyID)
		idx++
	}

	cond := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM courses c WHERE " + cond
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM courses c
		LEFT JOIN faculty f ON f.id = c.faculty_id
		WHERE %s
		ORDER BY c.code
		LIMIT $%d OFFSET $%d`, courseColumns, cond, idx, idx+1)
	args = append(args, filters.Limit, (filters.Page-1)*filters.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var list []Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan course: %w", err)
		}
		list = append(list, c)
	}
	return list, total, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, id int64) (Course, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s
		FROM courses c
		LEFT JOIN faculty f ON f.id = c.faculty_id
		WHERE c.id = $1`, courseColumns), id)
	c, err := scanCourse(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Course{}, shared.ErrNotFound
	}
	if err != nil {
		return Course{}, fmt.Errorf("get course: %w", err)
	}
	return c, nil
}

func (r *PGRepository) Create(ctx context.Context, c Course) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO courses (code, title, description, credits, level, faculty_id)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, 0))
		RETURNING id`,
		c.Code, c.Title, c.Description, c.Credits, c.Level, c.FacultyID).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: course code already exists", shared.ErrValidation)
		}
		return 0, fmt.Errorf("create course: %w", err)
	}
	return id, nil
}

func (r *PGRepository) Update(ctx context.Context, c Course) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE courses
		SET code = $2, title = $3, description = $4, credits = $5, level = $6, faculty_id = NULLIF($7, 0), updated_at = now()
		WHERE id = $1`,
		c.ID, c.Code, c.Title, c.Description, c.Credits, c.Level, c.FacultyID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: course code already exists", shared.ErrValidation)
		}
		return fmt.Errorf("update course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) ListByFaculty(ctx context.Context, facultyID int64) ([]Course, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM courses c
		LEFT JOIN faculty f ON f.id = c.faculty_id
		WHERE c.faculty_id = $1
		ORDER BY c.code`, courseColumns), facultyID)
	if err != nil {
		return nil, fmt.Errorf("list courses by faculty: %w", err)
	}
	defer rows.Close()

	var list []Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
