package scheduler

import (
	"context"
	"time"
)

// TaskRepository is the durable queue. ClaimDue must atomically flip due
// PENDING rows to RUNNING so that two worker processes polling the same
// store can never both claim one task.
type TaskRepository interface {
	Add(ctx context.Context, task *Task) error
	Update(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, taskID string) (*Task, error)

	// ClaimDue atomically claims up to limit tasks with runAt <= now,
	// marking them RUNNING and stamping ClaimedAt.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*Task, error)

	// ReleaseStale returns RUNNING tasks claimed before the cutoff to
	// PENDING. Used at startup to recover tasks a crashed worker held.
	ReleaseStale(ctx context.Context, cutoff time.Time) (int, error)

	// CountPending counts PENDING tasks of one kind. Used to seed
	// self-re-arming chains without duplicating them across restarts.
	CountPending(ctx context.Context, kind Kind) (int, error)
}

// Handler executes one task kind. Handlers must be idempotent: redelivery and
// stale delivery are normal, and the status gate on the target entity is the
// correctness mechanism, not delivery counting.
type Handler interface {
	Handle(ctx context.Context, task *Task) error
}

// HandlerFunc adapts a function to the Handler interface
type HandlerFunc func(ctx context.Context, task *Task) error

func (f HandlerFunc) Handle(ctx context.Context, task *Task) error {
	return f(ctx, task)
}
