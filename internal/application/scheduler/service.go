// Package scheduler runs the durable delayed-task machinery: scheduling new
// tasks and dispatching due ones to their registered handlers.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/stellardrift/stellardrift-go/internal/domain/scheduler"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// Service schedules durable tasks. Scheduling is fire-and-forget for the
// caller: once Add returns, the effect survives process restarts.
type Service struct {
	tasks scheduler.TaskRepository
	clock shared.Clock
}

// NewService creates a scheduling service
func NewService(tasks scheduler.TaskRepository, clock shared.Clock) *Service {
	return &Service{tasks: tasks, clock: clock}
}

// Schedule persists a task to run at runAt. A runAt in the past is valid and
// makes the task due immediately.
func (s *Service) Schedule(ctx context.Context, kind scheduler.Kind, payload interface{}, runAt time.Time) (*scheduler.Task, error) {
	task, err := scheduler.NewTask(kind, payload, runAt, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.tasks.Add(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to schedule %s task: %w", kind, err)
	}
	return task, nil
}

// ScheduleAfter persists a task to run after the given delay
func (s *Service) ScheduleAfter(ctx context.Context, kind scheduler.Kind, payload interface{}, delay time.Duration) (*scheduler.Task, error) {
	return s.Schedule(ctx, kind, payload, s.clock.Now().Add(delay))
}

// EnsurePending schedules the task only when no pending task of the kind
// exists. Seeds self-re-arming chains exactly once across restarts.
func (s *Service) EnsurePending(ctx context.Context, kind scheduler.Kind, payload interface{}, runAt time.Time) (*scheduler.Task, error) {
	pending, err := s.tasks.CountPending(ctx, kind)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, nil
	}
	return s.Schedule(ctx, kind, payload, runAt)
}
