package shared

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RateLimitStore persists attempt records keyed by (client address, action).
type RateLimitStore interface {
	Prune(ctx context.Context, action string, olderThan time.Time) error
	Count(ctx context.Context, addr, action string, since time.Time) (int, error)
	Insert(ctx context.Context, addr, action string, at time.Time) error
}

// RateLimiter implements a fixed-window counter over a persistent store.
// It is a fixed-window scheme, not a sliding log: a burst straddling the
// window boundary can pass up to 2x the limit. Known limitation, inherited.
type RateLimiter struct {
	store  RateLimitStore
	logger *slog.Logger
	now    func() time.Time
}

// NewRateLimiter constructs a RateLimiter.
func NewRateLimiter(store RateLimitStore, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{store: store, logger: logger, now: time.Now}
}

// Allow reports whether the action may proceed for the client address.
// Denied calls are not recorded. The limiter fails OPEN on store errors so
// that a storage outage does not lock out legitimate users; this is a
// deliberate policy carried over from the original system.
func (rl *RateLimiter) Allow(ctx context.Context, addr, action string, maxAttempts int, window time.Duration) bool {
	now := rl.now()
	cutoff := now.Add(-window)

	if err := rl.store.Prune(ctx, action, cutoff); err != nil {
		rl.warn("rate limit prune", err)
		return true
	}
	count, err := rl.store.Count(ctx, addr, action, cutoff)
	if err != nil {
		rl.warn("rate limit count", err)
		return true
	}
	if count >= maxAttempts {
		return false
	}
	if err := rl.store.Insert(ctx, addr, action, now); err != nil {
		rl.warn("rate limit insert", err)
	}
	return true
}

func (rl *RateLimiter) warn(msg string, err error) {
	if rl.logger != nil {
		rl.logger.Warn(msg, slog.Any("error", err))
	}
}

// PGRateLimitStore keeps attempt records in the rate_limit_records table.
type PGRateLimitStore struct {
	pool *pgxpool.Pool
}

// NewPGRateLimitStore constructs a PostgreSQL backed store.
func NewPGRateLimitStore(pool *pgxpool.Pool) *PGRateLimitStore {
	return &PGRateLimitStore{pool: pool}
}

// Prune deletes records for the action older than the cutoff.
func (s *PGRateLimitStore) Prune(ctx context.Context, action string, olderThan time.Time) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM rate_limit_records WHERE action = $1 AND created_at < $2`, action, olderThan)
	return err
}

// Count returns the number of records for (addr, action) since the cutoff.
func (s *PGRateLimitStore) Count(ctx context.Context, addr, action string, since time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM rate_limit_records WHERE ip_address = $1 AND action = $2 AND created_at > $3`, addr, action, since).Scan(&count)
	return count, err
}

// Insert appends one stamped record.
func (s *PGRateLimitStore) Insert(ctx context.Context, addr, action string, at time.Time) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO rate_limit_records (ip_address, action, created_at) VALUES ($1, $2, $3)`, addr, action, at)
	return err
}

var _ RateLimitStore = (*PGRateLimitStore)(nil)
