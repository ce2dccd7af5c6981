package config

import "time"

// WorkerConfig holds task-dispatch worker configuration. The worker pool may
// run in a separate process from whatever issues player-facing responses;
// nothing here assumes shared process state beyond the database.
type WorkerConfig struct {
	// Concurrency bounds how many task handlers run at once
	Concurrency int `mapstructure:"concurrency" validate:"min=1"`

	// ClaimBatch is the maximum number of due tasks claimed per poll
	ClaimBatch int `mapstructure:"claim_batch" validate:"min=1"`

	// PollRate caps due-task polls per second
	PollRate float64 `mapstructure:"poll_rate" validate:"gt=0"`

	// PollBurst is the poll limiter's burst allowance
	PollBurst int `mapstructure:"poll_burst" validate:"min=1"`

	// BackoffBase is the first retry delay; doubled per attempt up to BackoffMax
	BackoffBase time.Duration `mapstructure:"backoff_base" validate:"required"`
	BackoffMax  time.Duration `mapstructure:"backoff_max" validate:"required"`

	// LeaseTimeout is how long a RUNNING claim is trusted before startup
	// recovery returns the task to the queue
	LeaseTimeout time.Duration `mapstructure:"lease_timeout" validate:"required"`

	// ShutdownTimeout bounds graceful drain of in-flight handlers
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
}

// MetricsConfig holds the Prometheus exposition settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"oneof=DEBUG INFO WARN ERROR"`
}
