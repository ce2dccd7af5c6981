// Package metrics exposes prometheus instrumentation for the task
// dispatcher.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/stellardrift/stellardrift-go/internal/domain/scheduler"
)

// DispatcherMetrics implements the dispatcher's metrics port on prometheus
// collectors, labeled by task kind.
type DispatcherMetrics struct {
	claimed   *prometheus.CounterVec
	completed *prometheus.CounterVec
	retried   *prometheus.CounterVec
	dead      *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	stale     prometheus.Counter
}

// NewDispatcherMetrics creates and registers the dispatcher collectors
func NewDispatcherMetrics(registry prometheus.Registerer) *DispatcherMetrics {
	m := &DispatcherMetrics{
		claimed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stellardrift_tasks_claimed_total",
			Help: "Tasks claimed from the durable queue",
		}, []string{"kind"}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stellardrift_tasks_completed_total",
			Help: "Tasks whose handler returned successfully",
		}, []string{"kind"}),
		retried: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stellardrift_tasks_retried_total",
			Help: "Task attempts that failed and were rescheduled with backoff",
		}, []string{"kind"}),
		dead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stellardrift_tasks_dead_total",
			Help: "Tasks that exhausted their retry attempts",
		}, []string{"kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stellardrift_task_duration_seconds",
			Help:    "Handler execution time of completed tasks",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		stale: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stellardrift_tasks_stale_released_total",
			Help: "Tasks recovered from a crashed worker at startup",
		}),
	}
	registry.MustRegister(m.claimed, m.completed, m.retried, m.dead, m.duration, m.stale)
	return m
}

// TaskClaimed counts one claimed task
func (m *DispatcherMetrics) TaskClaimed(kind scheduler.Kind) {
	m.claimed.WithLabelValues(string(kind)).Inc()
}

// TaskCompleted counts one successful handler run and its duration
func (m *DispatcherMetrics) TaskCompleted(kind scheduler.Kind, duration time.Duration) {
	m.completed.WithLabelValues(string(kind)).Inc()
	m.duration.WithLabelValues(string(kind)).Observe(duration.Seconds())
}

// TaskRetried counts one failed attempt scheduled for retry
func (m *DispatcherMetrics) TaskRetried(kind scheduler.Kind) {
	m.retried.WithLabelValues(string(kind)).Inc()
}

// TaskDead counts one task moved to the dead state
func (m *DispatcherMetrics) TaskDead(kind scheduler.Kind) {
	m.dead.WithLabelValues(string(kind)).Inc()
}

// StaleReleased counts tasks recovered at startup
func (m *DispatcherMetrics) StaleReleased(count int) {
	m.stale.Add(float64(count))
}
