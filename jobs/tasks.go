package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPruneRateLimits removes rate limit records older than any
	// active window.
	TaskPruneRateLimits = "maintenance:prune_rate_limits"
	// TaskActivityDigest summarizes the previous day's activity log.
	TaskActivityDigest = "maintenance:activity_digest"
)

// PruneRateLimitsPayload carries the retention horizon for the prune run.
type PruneRateLimitsPayload struct {
	OlderThan time.Duration `json:"older_than"`
}

// NewPruneRateLimitsTask constructs a prune task.
func NewPruneRateLimitsTask(olderThan time.Duration) (*asynq.Task, error) {
	body, err := json.Marshal(PruneRateLimitsPayload{OlderThan: olderThan})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPruneRateLimits, body, asynq.Queue(QueueDefault)), nil
}

// ActivityDigestPayload carries the window the digest covers.
type ActivityDigestPayload struct {
	Window time.Duration `json:"window"`
}

// NewActivityDigestTask constructs a digest task.
func NewActivityDigestTask(window time.Duration) (*asynq.Task, error) {
	body, err := json.Marshal(ActivityDigestPayload{Window: window})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskActivityDigest, body, asynq.Queue(QueueDefault)), nil
}
