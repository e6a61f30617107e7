package faculty

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/academydb/academydb/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Member, int, error)
	Get(ctx context.Context, id int64) (Member, error)
	Update(ctx context.Context, m Member) error
	Delete(ctx context.Context, id int64) error
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) List(ctx context.Context, filters ListFilters) ([]Member, int, error) {
	where := []string{"1=1"}
	args := []any{}
	idx := 1

	if filters.Search != "" {
		where = append(where, fmt.Sprintf("(full_name ILIKE $%d OR email ILIKE $%d)", idx, idx))
		args = append(args, "%"+filters.Search+"%")
		idx++
	}
	if filters.Dept != "" {
		where = append(where, fmt.Sprintf("dept = $%d", idx))
		args = append(args, filters.Dept)
		idx++
	}

	cond := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM faculty WHERE " + cond
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count faculty: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, full_name, email, contact, dept, status, additional_info, created_at, updated_at
		FROM faculty
		WHERE %s
		ORDER BY full_name
		LIMIT $%d OFFSET $%d`, cond, idx, idx+1)
	args = append(args, filters.Limit, (filters.Page-1)*filters.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list faculty: %w", err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.FullName, &m.Email, &m.Contact, &m.Dept, &m.Status, &m.AdditionalInfo, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan faculty: %w", err)
		}
		members = append(members, m)
	}
	return members, total, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, id int64) (Member, error) {
	var m Member
	err := r.pool.QueryRow(ctx, `
		SELECT id, full_name, email, contact, dept, status, additional_info, created_at, updated_at
		FROM faculty
		WHERE id = $1`, id).
		Scan(&m.ID, &m.FullName, &m.Email, &m.Contact, &m.Dept, &m.Status, &m.AdditionalInfo, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Member{}, shared.ErrNotFound
	}
	if err != nil {
		return Member{}, fmt.Errorf("get faculty member: %w", err)
	}
	return m, nil
}

func (r *PGRepository) Update(ctx context.Context, m Member) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE faculty
		SET full_name = $2, email = $3, contact = $4, dept = $5, status = $6, additional_info = $7, updated_at = now()
		WHERE id = $1`,
		m.ID, m.FullName, m.Email, m.Contact, m.Dept, m.Status, m.AdditionalInfo)
	if err != nil {
		return fmt.Errorf("update faculty member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM faculty WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete faculty member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
