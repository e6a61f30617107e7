package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Window(ctx context.Context, filters TimelineFilters, limit, offset int) ([]TimelineRow, error)
	All(ctx context.Context, filters TimelineFilters) ([]TimelineRow, error)
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func buildWhere(filters TimelineFilters) (string, []any) {
	where := []string{"1=1"}
	args := []any{}
	idx := 1

	if !filters.From.IsZero() {
		where = append(where, fmt.Sprintf("created_at >= $%d", idx))
		args = append(args, filters.From)
		idx++
	}
	if !filters.To.IsZero() {
		where = append(where, fmt.Sprintf("created_at < $%d", idx))
		args = append(args, filters.To.AddDate(0, 0, 1))
		idx++
	}
	if filters.Actor != "" {
		where = append(where, fmt.Sprintf("actor = $%d", idx))
		args = append(args, filters.Actor)
		idx++
	}
	if filters.Action != "" {
		where = append(where, fmt.Sprintf("action = $%d", idx))
		args = append(args, filters.Action)
		idx++
	}
	if filters.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", idx))
		args = append(args, filters.Status)
	}
	return strings.Join(where, " AND "), args
}

func (r *PGRepository) Window(ctx context.Context, filters TimelineFilters, limit, offset int) ([]TimelineRow, error) {
	cond, args := buildWhere(filters)
	query := fmt.Sprintf(`
		SELECT created_at, actor, action, description, status, ip_address, user_agent
		FROM activity_log
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, cond, len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	return r.query(ctx, query, args)
}

func (r *PGRepository) All(ctx context.Context, filters TimelineFilters) ([]TimelineRow, error) {
	cond, args := buildWhere(filters)
	query := fmt.Sprintf(`
		SELECT created_at, actor, action, description, status, ip_address, user_agent
		FROM activity_log
		WHERE %s
		ORDER BY created_at DESC`, cond)
	return r.query(ctx, query, args)
}

func (r *PGRepository) query(ctx context.Context, query string, args []any) ([]TimelineRow, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query activity log: %w", err)
	}
	defer rows.Close()

	var result []TimelineRow
	for rows.Next() {
		var row TimelineRow
		if err := rows.Scan(&row.At, &row.Actor, &row.Action, &row.Description, &row.Status, &row.IPAddress, &row.UserAgent); err != nil {
			return nil, fmt.Errorf("scan activity row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
