package students

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/academydb/academydb/internal/shared"
)

// Repository defines persistence operations for student profiles.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Student, int, error)
	Get(ctx context.Context, id int64) (Student, error)
	Update(ctx context.Context, id int64, s Student) error
	Delete(ctx context.Context, id int64) error
}

type repo struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repo{pool: pool}
}

func (r *repo) List(ctx context.Context, filters ListFilters) ([]Student, int, error) {
	page := shared.NewPagination(filters.Page, filters.Limit, 0)

	where := ` WHERE ($1 = '' OR full_name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')
	           AND ($2 = '' OR status = $2)`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM students`+where, filters.Search, filters.Status).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, full_name, email, contact, status, additional_info, created_at, updated_at
		 FROM students`+where+` ORDER BY full_name LIMIT $3 OFFSET $4`,
		filters.Search, filters.Status, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Student
	for rows.Next() {
		var s Student
		if err := rows.Scan(&s.ID, &s.FullName, &s.Email, &s.Contact, &s.Status, &s.AdditionalInfo, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *repo) Get(ctx context.Context, id int64) (Student, error) {
	var s Student
	err := r.pool.QueryRow(ctx,
		`SELECT id, full_name, email, contact, status, additional_info, created_at, updated_at
		 FROM students WHERE id = $1`, id).Scan(
		&s.ID, &s.FullName, &s.Email, &s.Contact, &s.Status, &s.AdditionalInfo, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Student{}, shared.ErrNotFound
		}
		return Student{}, err
	}
	return s, nil
}

func (r *repo) Update(ctx context.Context, id int64, s Student) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET full_name = $1, email = $2, contact = $3, status = $4, additional_info = $5, updated_at = $6
		 WHERE id = $7`,
		s.FullName, s.Email, s.Contact, s.Status, s.AdditionalInfo, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
