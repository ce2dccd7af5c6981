package fleet

import (
	"context"
	"fmt"

	"github.com/stellardrift/stellardrift-go/internal/application/common"
	"github.com/stellardrift/stellardrift-go/internal/application/economy"
	"github.com/stellardrift/stellardrift-go/internal/domain/fleet"
	"github.com/stellardrift/stellardrift-go/internal/domain/planet"
	"github.com/stellardrift/stellardrift-go/internal/domain/scheduler"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// ReturnHandler executes fleet.return tasks. The RETURNING -> COMPLETED
// check-and-set is the idempotency gate.
type ReturnHandler struct {
	sync    *economy.SyncService
	planets planet.Repository
	fleets  fleet.Repository
	clock   shared.Clock
}

// NewReturnHandler creates a fleet return handler
func NewReturnHandler(sync *economy.SyncService, planets planet.Repository, fleets fleet.Repository, clock shared.Clock) *ReturnHandler {
	return &ReturnHandler{sync: sync, planets: planets, fleets: fleets, clock: clock}
}

// Handle processes one fleet.return task
func (h *ReturnHandler) Handle(ctx context.Context, task *scheduler.Task) error {
	var payload scheduler.FleetReturnPayload
	if err := task.DecodePayload(&payload); err != nil {
		return err
	}
	logger := common.LoggerFromContext(ctx)

	f, err := h.fleets.FindByID(ctx, payload.FleetID)
	if err != nil {
		if shared.IsNotFound(err) {
			logger.Log("warn", "return task for missing fleet, skipping", map[string]interface{}{
				"fleetId": payload.FleetID,
			})
			return nil
		}
		return err
	}
	if f.Status != fleet.StatusReturning {
		logger.Log("info", "fleet not returning, skipping return", map[string]interface{}{
			"fleetId": f.ID,
			"status":  string(f.Status),
		})
		return nil
	}

	origin, err := h.sync.SyncPlanet(ctx, f.OriginID)
	if err != nil {
		return err
	}

	for unitType, count := range f.Units {
		origin.AddUnits(string(unitType), count)
	}
	h.restoreDefense(origin, f.BorrowedDefense)
	for toolType, count := range f.Tools {
		if origin.Tools == nil {
			origin.Tools = shared.Amounts{}
		}
		origin.Tools[toolType] += count
	}
	for r, amount := range f.Loot {
		origin.SetResource(r, origin.Resource(r)+float64(amount))
	}

	if err := f.Complete(); err != nil {
		return err
	}
	if err := h.planets.Update(ctx, origin); err != nil {
		return fmt.Errorf("failed to persist fleet return: %w", err)
	}
	if err := h.fleets.Update(ctx, f); err != nil {
		return fmt.Errorf("failed to persist completed fleet: %w", err)
	}
	logger.Log("info", "fleet returned home", map[string]interface{}{
		"fleetId": f.ID,
		"planet":  origin.ID,
		"units":   f.TotalUnits(),
	})
	return nil
}

// restoreDefense re-assigns units that were pulled from the defense layout
// at dispatch, but only up to what now sits in reserve. Units already
// re-assigned while the fleet was away are not displaced.
func (h *ReturnHandler) restoreDefense(origin *planet.Planet, borrowed shared.Amounts) {
	for unitType, count := range borrowed {
		u := origin.Unit(string(unitType))
		if u == nil {
			continue
		}
		restore := shared.MinInt(count, u.Reserve())
		if restore > 0 {
			u.Defending += restore
		}
	}
}
