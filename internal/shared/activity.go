package shared

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UnknownActor is recorded for events that happen before authentication.
const UnknownActor = "unknown"

// Activity statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// ActivityEntry is one append-only audit trail record.
type ActivityEntry struct {
	Actor       string
	Action      string
	Description string
	Status      string
	IPAddress   string
	UserAgent   string
	At          time.Time
}

// ActivityLogger appends audit trail rows. Logging never blocks business
// operations: failures are swallowed and reported to the operational log.
type ActivityLogger struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewActivityLogger returns a new ActivityLogger.
func NewActivityLogger(pool *pgxpool.Pool, logger *slog.Logger) *ActivityLogger {
	return &ActivityLogger{pool: pool, logger: logger}
}

// Record appends one immutable entry timestamped at call time.
func (l *ActivityLogger) Record(ctx context.Context, entry ActivityEntry) {
	if l == nil || l.pool == nil {
		return
	}
	if entry.Actor == "" {
		entry.Actor = UnknownActor
	}
	if entry.Status == "" {
		entry.Status = StatusSuccess
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	_, err := l.pool.Exec(ctx,
		`INSERT INTO activity_log (actor, action, description, status, ip_address, user_agent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.Actor, entry.Action, entry.Description, entry.Status, entry.IPAddress, entry.UserAgent, entry.At)
	if err != nil && l.logger != nil {
		l.logger.Error("activity log write failed", slog.String("action", entry.Action), slog.Any("error", err))
	}
}
