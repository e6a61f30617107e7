package security

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/academydb/academydb/internal/shared"
)

// Repository defines persistence for the settings singleton.
type Repository interface {
	Get(ctx context.Context) (Settings, error)
	Update(ctx context.Context, s Settings) error
}

// PGRepository stores the singleton in the security_settings table (id = 1).
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Get fetches the settings row.
func (r *PGRepository) Get(ctx context.Context) (Settings, error) {
	var s Settings
	err := r.pool.QueryRow(ctx,
		`SELECT min_password_length, require_special_chars, require_numbers, require_uppercase,
		        max_login_attempts, session_timeout_minutes, updated_at
		 FROM security_settings WHERE id = 1`).Scan(
		&s.MinPasswordLength, &s.RequireSpecialChars, &s.RequireNumbers, &s.RequireUppercase,
		&s.MaxLoginAttempts, &s.SessionTimeoutMinutes, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Settings{}, shared.ErrNotFound
		}
		return Settings{}, err
	}
	return s, nil
}

// Update upserts the singleton row.
func (r *PGRepository) Update(ctx context.Context, s Settings) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO security_settings
		   (id, min_password_length, require_special_chars, require_numbers, require_uppercase,
		    max_login_attempts, session_timeout_minutes, updated_at)
		 VALUES (1, $1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   min_password_length = EXCLUDED.min_password_length,
		   require_special_chars = EXCLUDED.require_special_chars,
		   require_numbers = EXCLUDED.require_numbers,
		   require_uppercase = EXCLUDED.require_uppercase,
		   max_login_attempts = EXCLUDED.max_login_attempts,
		   session_timeout_minutes = EXCLUDED.session_timeout_minutes,
		   updated_at = EXCLUDED.updated_at`,
		s.MinPasswordLength, s.RequireSpecialChars, s.RequireNumbers, s.RequireUppercase,
		s.MaxLoginAttempts, s.SessionTimeoutMinutes, time.Now().UTC())
	return err
}

var _ Repository = (*PGRepository)(nil)
