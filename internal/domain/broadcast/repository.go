package broadcast

import "context"

// Repository persists broadcasts.
type Repository interface {
	Create(ctx context.Context, b *Broadcast) error
	GetByID(ctx context.Context, id string) (*Broadcast, error)
	List(ctx context.Context, ownerID string, limit, offset int) ([]*Broadcast, int, error)
	Update(ctx context.Context, b *Broadcast) error

	// ListDue returns draft broadcasts whose scheduled_at has elapsed (C8).
	ListDue(ctx context.Context, limit int) ([]*Broadcast, error)

	// BeginProcessing atomically flips a draft broadcast to processing,
	// returning false when another server already claimed it.
	BeginProcessing(ctx context.Context, id string) (bool, error)

	// ListProcessingWithoutJob returns processing broadcasts that currently
	// have no live job row, feeding the always-on queueing-tick fallback (§4.5).
	ListProcessingWithoutJob(ctx context.Context, limit int) ([]*Broadcast, error)
}

// Job is a durable queue entry wrapping one broadcast (C6).
type Job struct {
	ID            string
	BroadcastID   string
	Attempt       int
	NextAttemptAt int64
	Status        JobStatus
	LastError     string
	ClaimedBy     string
}

type JobStatus string

const (
	JobQueued  JobStatus = "queued"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// QueueRepository persists broadcast_jobs, the literal queue backing C6.
type QueueRepository interface {
	Enqueue(ctx context.Context, broadcastID string) error

	// Claim atomically takes one due, queued job for serverID, marking it
	// running. Returns nil, false when nothing is available.
	Claim(ctx context.Context, serverID string) (*Job, bool, error)

	Complete(ctx context.Context, jobID string) error

	// Retry bumps the attempt counter and schedules the next attempt, or
	// marks the job permanently failed once attempts are exhausted.
	Retry(ctx context.Context, jobID string, lastError string, nextAttemptAt int64, maxAttempts int) error

	// HasLiveJob reports whether a broadcast already has a queued/running job.
	HasLiveJob(ctx context.Context, broadcastID string) (bool, error)
}
