// Package scheduler defines the durable delayed-task model. A task is an
// opaque record of a future effect: kind, JSON payload, target execution
// time. Delivery is at-least-once; handlers own idempotency.
package scheduler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind names the registered handler a task is dispatched to
type Kind string

const (
	KindFleetArrival       Kind = "fleet.arrival"
	KindFleetReturn        Kind = "fleet.return"
	KindCapitalShipArrival Kind = "capitalShip.arrival"
	KindCapitalShipReturn  Kind = "capitalShip.return"
	KindCommitmentEnd      Kind = "capitalShip.commitmentEnd"
	KindNPCRespawn         Kind = "npc.respawn"
	KindProbeUpdate        Kind = "probe.update"
)

// TaskStatus tracks a task through the durable queue
type TaskStatus string

const (
	// TaskStatusPending - waiting for its run-at time
	TaskStatusPending TaskStatus = "PENDING"

	// TaskStatusRunning - claimed by a worker
	TaskStatusRunning TaskStatus = "RUNNING"

	// TaskStatusCompleted - handler returned successfully
	TaskStatusCompleted TaskStatus = "COMPLETED"

	// TaskStatusDead - retries exhausted
	TaskStatusDead TaskStatus = "DEAD"
)

const (
	// DefaultMaxAttempts bounds redelivery of a failing task
	DefaultMaxAttempts = 5
)

// Task is one durable scheduled effect
type Task struct {
	ID          string
	Kind        Kind
	Payload     []byte
	RunAt       time.Time
	Status      TaskStatus
	Attempts    int
	MaxAttempts int
	LastError   string
	ClaimedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTask creates a pending task with a JSON-encoded payload
func NewTask(kind Kind, payload interface{}, runAt, now time.Time) (*Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", kind, err)
	}
	return &Task{
		ID:          uuid.New().String(),
		Kind:        kind,
		Payload:     data,
		RunAt:       runAt,
		Status:      TaskStatusPending,
		MaxAttempts: DefaultMaxAttempts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// DecodePayload unmarshals the payload into out
func (t *Task) DecodePayload(out interface{}) error {
	if err := json.Unmarshal(t.Payload, out); err != nil {
		return fmt.Errorf("task %s: malformed %s payload: %w", t.ID, t.Kind, err)
	}
	return nil
}

// Complete marks the task done after a successful handler run
func (t *Task) Complete(now time.Time) {
	t.Status = TaskStatusCompleted
	t.ClaimedAt = nil
	t.UpdatedAt = now
}

// RecordFailure books a failed attempt. The task either goes back to PENDING
// with a pushed-out run-at (retry with backoff) or to DEAD when attempts are
// exhausted.
func (t *Task) RecordFailure(handlerErr error, retryAt, now time.Time) {
	t.Attempts++
	t.LastError = handlerErr.Error()
	t.ClaimedAt = nil
	t.UpdatedAt = now
	if t.Attempts >= t.MaxAttempts {
		t.Status = TaskStatusDead
		return
	}
	t.Status = TaskStatusPending
	t.RunAt = retryAt
}

// Payload shapes for each task kind. These are the logical payloads of the
// external contract; wire format is JSON.

type FleetArrivalPayload struct {
	FleetID string `json:"fleetId"`
	Type    string `json:"type"`
}

type FleetReturnPayload struct {
	FleetID      string `json:"fleetId"`
	FromPlanetID uint   `json:"fromPlanetId"`
}

type CapitalShipPayload struct {
	CapitalShipID string `json:"capitalShipId"`
}

type NPCRespawnPayload struct {
	PlanetID uint `json:"planetId"`
}

type ProbeUpdatePayload struct{}
