package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/stellardrift/stellardrift-go/internal/application/common"
	"github.com/stellardrift/stellardrift-go/internal/domain/scheduler"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
	"github.com/stellardrift/stellardrift-go/internal/infrastructure/config"
)

// Metrics receives dispatcher observations. The prometheus implementation
// lives in the metrics adapter; tests use the no-op.
type Metrics interface {
	TaskClaimed(kind scheduler.Kind)
	TaskCompleted(kind scheduler.Kind, duration time.Duration)
	TaskRetried(kind scheduler.Kind)
	TaskDead(kind scheduler.Kind)
	StaleReleased(count int)
}

// NopMetrics discards all observations
type NopMetrics struct{}

func (NopMetrics) TaskClaimed(scheduler.Kind)                  {}
func (NopMetrics) TaskCompleted(scheduler.Kind, time.Duration) {}
func (NopMetrics) TaskRetried(scheduler.Kind)                  {}
func (NopMetrics) TaskDead(scheduler.Kind)                     {}
func (NopMetrics) StaleReleased(int)                           {}

// Dispatcher polls the durable queue for due tasks and runs them on a bounded
// worker pool. Delivery is at-least-once: a crash between handler success and
// the COMPLETED update redelivers the task, which handlers absorb through
// their status gates.
type Dispatcher struct {
	tasks    scheduler.TaskRepository
	handlers map[scheduler.Kind]scheduler.Handler
	clock    shared.Clock
	config   config.WorkerConfig
	logger   common.Logger
	metrics  Metrics

	mu sync.RWMutex
	wg sync.WaitGroup
}

// NewDispatcher creates a dispatcher with no registered handlers
func NewDispatcher(tasks scheduler.TaskRepository, clock shared.Clock, cfg config.WorkerConfig, logger common.Logger, metrics Metrics) *Dispatcher {
	if logger == nil {
		logger = common.NopLogger()
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Dispatcher{
		tasks:    tasks,
		handlers: make(map[scheduler.Kind]scheduler.Handler),
		clock:    clock,
		config:   cfg,
		logger:   logger,
		metrics:  metrics,
	}
}

// Register binds a handler to a task kind, replacing any previous binding
func (d *Dispatcher) Register(kind scheduler.Kind, handler scheduler.Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = handler
}

// RegisterFunc binds a handler function to a task kind
func (d *Dispatcher) RegisterFunc(kind scheduler.Kind, fn scheduler.HandlerFunc) {
	d.Register(kind, fn)
}

func (d *Dispatcher) handler(kind scheduler.Kind) scheduler.Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.handlers[kind]
}

// Recover returns tasks held by a previous process to PENDING. Called once
// at startup before Run.
func (d *Dispatcher) Recover(ctx context.Context) error {
	cutoff := d.clock.Now().Add(-d.config.LeaseTimeout)
	released, err := d.tasks.ReleaseStale(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to release stale tasks: %w", err)
	}
	if released > 0 {
		d.metrics.StaleReleased(released)
		d.logger.Log("warn", "released stale tasks from a previous run", map[string]interface{}{
			"count": released,
		})
	}
	return nil
}

// Run polls and dispatches until the context is cancelled, then waits for
// in-flight handlers to drain.
func (d *Dispatcher) Run(ctx context.Context) error {
	limiter := rate.NewLimiter(rate.Limit(d.config.PollRate), d.config.PollBurst)
	sem := make(chan struct{}, d.config.Concurrency)

	d.logger.Log("info", "dispatcher started", map[string]interface{}{
		"concurrency": d.config.Concurrency,
		"claimBatch":  d.config.ClaimBatch,
	})

	for {
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		claimed, err := d.tasks.ClaimDue(ctx, d.clock.Now(), d.config.ClaimBatch)
		if err != nil {
			d.logger.Log("error", "failed to claim due tasks", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}
		for _, task := range claimed {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return d.drain(sem)
			}
			d.metrics.TaskClaimed(task.Kind)
			d.wg.Add(1)
			go func(task *scheduler.Task) {
				defer d.wg.Done()
				defer func() { <-sem }()
				d.dispatch(task)
			}(task)
		}
	}
	return d.drain(sem)
}

// drain blocks until in-flight handlers finish or the shutdown timeout hits
func (d *Dispatcher) drain(sem chan struct{}) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		d.logger.Log("info", "dispatcher stopped", nil)
		return nil
	case <-time.After(d.config.ShutdownTimeout):
		return fmt.Errorf("dispatcher shutdown timed out after %s", d.config.ShutdownTimeout)
	}
}

// dispatch runs one claimed task through its handler and books the outcome.
// Bookkeeping runs on a background context so cancellation mid-handler still
// records the attempt.
func (d *Dispatcher) dispatch(task *scheduler.Task) {
	ctx := common.WithLogger(context.Background(), d.logger)
	started := d.clock.Now()

	handler := d.handler(task.Kind)
	var handlerErr error
	if handler == nil {
		handlerErr = fmt.Errorf("no handler registered for kind %s", task.Kind)
	} else {
		handlerErr = handler.Handle(ctx, task)
	}

	now := d.clock.Now()
	if handlerErr == nil {
		task.Complete(now)
		d.metrics.TaskCompleted(task.Kind, now.Sub(started))
	} else {
		task.RecordFailure(handlerErr, now.Add(d.backoff(task.Attempts)), now)
		if task.Status == scheduler.TaskStatusDead {
			d.metrics.TaskDead(task.Kind)
			d.logger.Log("error", "task exhausted retries", map[string]interface{}{
				"taskId":   task.ID,
				"kind":     string(task.Kind),
				"attempts": task.Attempts,
				"error":    handlerErr.Error(),
			})
		} else {
			d.metrics.TaskRetried(task.Kind)
			d.logger.Log("warn", "task failed, scheduled retry", map[string]interface{}{
				"taskId":  task.ID,
				"kind":    string(task.Kind),
				"attempt": task.Attempts,
				"runAt":   task.RunAt,
				"error":   handlerErr.Error(),
			})
		}
	}

	if err := d.tasks.Update(ctx, task); err != nil {
		// The row stays RUNNING and the lease timeout recovers it
		d.logger.Log("error", "failed to persist task outcome", map[string]interface{}{
			"taskId": task.ID,
			"error":  err.Error(),
		})
	}
}

// backoff doubles per attempt starting at BackoffBase, capped at BackoffMax.
// attempts is the count already booked, so the first retry waits BackoffBase.
func (d *Dispatcher) backoff(attempts int) time.Duration {
	delay := d.config.BackoffBase
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= d.config.BackoffMax {
			return d.config.BackoffMax
		}
	}
	if delay > d.config.BackoffMax {
		return d.config.BackoffMax
	}
	return delay
}
