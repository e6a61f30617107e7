package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PruneRateLimitsHandler returns an Asynq handler that deletes rate
// limit records older than the payload horizon. The web limiter prunes
// per-request within its own window; this sweep catches records for
// addresses that never come back.
func PruneRateLimitsHandler(pool *pgxpool.Pool, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload PruneRateLimitsPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		olderThan := payload.OlderThan
		if olderThan <= 0 {
			olderThan = time.Hour
		}
		tag, err := pool.Exec(ctx, `DELETE FROM rate_limit_records WHERE created_at < $1`, time.Now().Add(-olderThan))
		if err != nil {
			if logger != nil {
				logger.Error("prune rate limit records", slog.Any("error", err))
			}
			return err
		}
		if logger != nil {
			logger.Info("pruned rate limit records",
				slog.String("job", "prune_rate_limits"),
				slog.Int64("deleted", tag.RowsAffected()))
		}
		return nil
	}
}

// ActivityDigestHandler returns an Asynq handler that logs a per-action
// success and failure summary of the activity log over the payload
// window.
func ActivityDigestHandler(pool *pgxpool.Pool, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ActivityDigestPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		window := payload.Window
		if window <= 0 {
			window = 24 * time.Hour
		}
		rows, err := pool.Query(ctx, `
			SELECT action,
			       COUNT(*) FILTER (WHERE status = 'success'),
			       COUNT(*) FILTER (WHERE status = 'failure')
			FROM activity_log
			WHERE created_at >= $1
			GROUP BY action
			ORDER BY action`, time.Now().Add(-window))
		if err != nil {
			if logger != nil {
				logger.Error("activity digest query", slog.Any("error", err))
			}
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var action string
			var succeeded, failed int64
			if err := rows.Scan(&action, &succeeded, &failed); err != nil {
				return err
			}
			if logger != nil {
				logger.Info("activity digest",
					slog.String("job", "activity_digest"),
					slog.String("action", action),
					slog.Int64("success", succeeded),
					slog.Int64("failure", failed))
			}
		}
		return rows.Err()
	}
}
