package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/academydb/academydb/internal/rbac"
	"github.com/academydb/academydb/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*Account, error)
	ResolveRole(ctx context.Context, accountID int64) (rbac.Role, error)
	TouchLastLogin(ctx context.Context, accountID int64, at time.Time) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByUsername fetches an account by username.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*Account, error) {
	var acc Account
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, last_login, created_at FROM accounts WHERE username = $1`,
		username).Scan(&acc.ID, &acc.Username, &acc.PasswordHash, &acc.LastLogin, &acc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &acc, nil
}

// ResolveRole probes the three role tables for the account id; first match
// wins. The tables share one id space and memberships are mutually exclusive.
func (r *PGRepository) ResolveRole(ctx context.Context, accountID int64) (rbac.Role, error) {
	probes := []struct {
		query string
		role  rbac.Role
	}{
		{`SELECT 1 FROM admins WHERE id = $1`, rbac.RoleAdmin},
		{`SELECT 1 FROM faculty WHERE id = $1`, rbac.RoleFaculty},
		{`SELECT 1 FROM students WHERE id = $1`, rbac.RoleStudent},
	}
	for _, p := range probes {
		var one int
		err := r.pool.QueryRow(ctx, p.query, accountID).Scan(&one)
		if err == nil {
			return p.role, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return rbac.RoleUnknown, err
		}
	}
	return rbac.RoleUnknown, shared.ErrNotFound
}

// TouchLastLogin stamps a successful authentication.
func (r *PGRepository) TouchLastLogin(ctx context.Context, accountID int64, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE accounts SET last_login = $1 WHERE id = $2`, at, accountID)
	return err
}

var _ Repository = (*PGRepository)(nil)
