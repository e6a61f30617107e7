package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/academydb/academydb/internal/platform/db"
	"github.com/academydb/academydb/internal/rbac"
	"github.com/academydb/academydb/internal/shared"
)

// ErrUsernameTaken marks a create attempt with a duplicate username.
var ErrUsernameTaken = errors.New("accounts: username already taken")

type Repository interface {
	List(ctx context.Context) ([]Listing, error)
	Create(ctx context.Context, u NewUser, passwordHash string) (int64, error)
	Delete(ctx context.Context, id int64) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// List derives each account's role from which profile table holds its
// id. The id spaces are mutually exclusive, so at most one join hits.
func (r *PGRepository) List(ctx context.Context) ([]Listing, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.username,
		       CASE
		           WHEN ad.id IS NOT NULL THEN 'admin'
		           WHEN f.id IS NOT NULL THEN 'faculty'
		           WHEN s.id IS NOT NULL THEN 'student'
		           ELSE 'unknown'
		       END,
		       COALESCE(ad.full_name, f.full_name, s.full_name, ''),
		       a.last_login, a.created_at
		FROM accounts a
		LEFT JOIN admins ad ON ad.id = a.id
		LEFT JOIN faculty f ON f.id = a.id
		LEFT JOIN students s ON s.id = a.id
		ORDER BY a.username`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var list []Listing
	for rows.Next() {
		var l Listing
		var role string
		if err := rows.Scan(&l.ID, &l.Username, &role, &l.FullName, &l.LastLogin, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		l.Role, _ = rbac.ParseRole(role)
		list = append(list, l)
	}
	return list, rows.Err()
}

// Create inserts the login account and its profile row in one
// transaction, so a failed profile insert leaves no orphan login.
func (r *PGRepository) Create(ctx context.Context, u NewUser, passwordHash string) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO accounts (username, password_hash)
			VALUES ($1, $2)
			RETURNING id`, u.Username, passwordHash).Scan(&id)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrUsernameTaken
			}
			return fmt.Errorf("insert account: %w", err)
		}

		switch u.Role {
		case rbac.RoleAdmin:
			_, err = tx.Exec(ctx, `
				INSERT INTO admins (id, full_name, email)
				VALUES ($1, $2, $3)`, id, u.FullName, u.Email)
		case rbac.RoleFaculty:
			_, err = tx.Exec(ctx, `
				INSERT INTO faculty (id, full_name, email, contact, dept, status)
				VALUES ($1, $2, $3, $4, $5, 'Active')`, id, u.FullName, u.Email, u.Contact, u.Dept)
		case rbac.RoleStudent:
			_, err = tx.Exec(ctx, `
				INSERT INTO students (id, full_name, email, contact, status)
				VALUES ($1, $2, $3, $4, 'Active')`, id, u.FullName, u.Email, u.Contact)
		default:
			return fmt.Errorf("%w: unknown role", shared.ErrValidation)
		}
		if err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Delete removes the profile rows and the login in one transaction.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM admins WHERE id = $1`,
			`DELETE FROM faculty WHERE id = $1`,
			`DELETE FROM students WHERE id = $1`,
		} {
			if _, err := tx.Exec(ctx, stmt, id); err != nil {
				return fmt.Errorf("delete profile: %w", err)
			}
		}
		tag, err := tx.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *PGRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
