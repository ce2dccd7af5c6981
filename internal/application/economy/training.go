package economy

import (
	"context"
	"fmt"
	"time"

	"github.com/stellardrift/stellardrift-go/internal/application/common"
	"github.com/stellardrift/stellardrift-go/internal/domain/catalog"
	"github.com/stellardrift/stellardrift-go/internal/domain/planet"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// EnqueueTrainingCommand appends a batch to one of the planet's three work
// queues. Kind selects the queue; ItemType must match the kind (a unit for
// recruitment, a tool for manufacturing, a defense building for turrets).
type EnqueueTrainingCommand struct {
	PlanetID uint
	UserID   int
	Kind     planet.QueueKind
	ItemType string
	Count    int
}

// EnqueueTrainingResponse reports the batch's scheduled finish
type EnqueueTrainingResponse struct {
	Planet     *planet.Planet
	FinishTime time.Time
}

// EnqueueTrainingHandler validates, charges and chains a queue batch. Cost is
// charged up front for the whole batch; the finish time is chained onto the
// queue tail so batches never overlap within a queue.
type EnqueueTrainingHandler struct {
	sync    *SyncService
	planets planet.Repository
	catalog catalog.Catalog
	clock   shared.Clock
}

// NewEnqueueTrainingHandler creates a training handler
func NewEnqueueTrainingHandler(sync *SyncService, planets planet.Repository, cat catalog.Catalog, clock shared.Clock) *EnqueueTrainingHandler {
	return &EnqueueTrainingHandler{sync: sync, planets: planets, catalog: cat, clock: clock}
}

// Handle executes the enqueue command
func (h *EnqueueTrainingHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*EnqueueTrainingCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if cmd.Count <= 0 {
		return nil, shared.NewValidationError("count", "count must be positive")
	}

	p, err := h.sync.SyncPlanet(ctx, cmd.PlanetID)
	if err != nil {
		return nil, err
	}
	if p.UserID != cmd.UserID {
		return nil, shared.NewNotOwnedError("planet", fmt.Sprint(cmd.PlanetID), cmd.UserID)
	}

	unitCost, unitSeconds, err := h.itemStats(cmd.Kind, cmd.ItemType)
	if err != nil {
		return nil, err
	}
	if err := p.SpendResources(unitCost.Scale(float64(cmd.Count))); err != nil {
		return nil, err
	}

	queue := p.Queue(cmd.Kind)
	if queue == nil {
		return nil, shared.NewValidationError("kind", "unknown queue kind")
	}
	duration := time.Duration(unitSeconds*cmd.Count) * time.Second
	finish := p.QueueTail(cmd.Kind, h.clock.Now()).Add(duration)
	*queue = append(*queue, planet.QueueEntry{
		ItemType:   cmd.ItemType,
		Count:      cmd.Count,
		FinishTime: finish,
	})

	if err := h.planets.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to persist queue: %w", err)
	}
	return &EnqueueTrainingResponse{Planet: p, FinishTime: finish}, nil
}

// itemStats resolves the per-item cost and build time for the queue kind
func (h *EnqueueTrainingHandler) itemStats(kind planet.QueueKind, itemType string) (shared.Amounts, int, error) {
	switch kind {
	case planet.QueueRecruitment:
		if stats := h.catalog.UnitStats(itemType); stats != nil {
			return stats.Cost, stats.TrainSeconds, nil
		}
	case planet.QueueManufacturing:
		if stats := h.catalog.ToolStats(itemType); stats != nil {
			return stats.Cost, stats.BuildSeconds, nil
		}
	case planet.QueueTurret:
		info := h.catalog.BuildingInfo(itemType)
		stats := h.catalog.LevelStats(itemType, 1)
		if info != nil && info.Class == catalog.ClassDefense && stats != nil {
			return stats.Cost, stats.BuildSeconds, nil
		}
	default:
		return nil, 0, shared.NewValidationError("kind", "unknown queue kind")
	}
	return nil, 0, shared.NewValidationError("itemType", fmt.Sprintf("unknown %s item %q", kind, itemType))
}
