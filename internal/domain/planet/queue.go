package planet

import (
	"encoding/json"
	"fmt"
	"time"
)

// QueueKind discriminates the planet's three independent FIFO work queues
type QueueKind string

const (
	QueueRecruitment   QueueKind = "recruitment"
	QueueManufacturing QueueKind = "manufacturing"
	QueueTurret        QueueKind = "turret"
)

// QueueEntry is one batch of work in a planet queue. Entries never run
// concurrently within a queue: each entry's start is chained to the previous
// entry's finish, so FinishTime values are strictly non-decreasing.
type QueueEntry struct {
	ItemType   string    `json:"itemType"`
	Count      int       `json:"count"`
	FinishTime time.Time `json:"finishTime"`
}

// Validate rejects entries that would poison queue arithmetic downstream
func (e *QueueEntry) Validate() error {
	if e.ItemType == "" {
		return fmt.Errorf("queue entry: empty item type")
	}
	if e.Count <= 0 {
		return fmt.Errorf("queue entry %q: non-positive count %d", e.ItemType, e.Count)
	}
	if e.FinishTime.IsZero() {
		return fmt.Errorf("queue entry %q: missing finish time", e.ItemType)
	}
	return nil
}

// ParseQueue decodes a persisted queue column. Malformed rows fail fast and
// visibly here, at the persistence boundary, instead of surfacing later as
// silent arithmetic corruption.
func ParseQueue(raw string) ([]QueueEntry, error) {
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var entries []QueueEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("malformed queue data: %w", err)
	}
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// EncodeQueue serializes a queue for persistence
func EncodeQueue(entries []QueueEntry) (string, error) {
	if len(entries) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to encode queue: %w", err)
	}
	return string(data), nil
}
