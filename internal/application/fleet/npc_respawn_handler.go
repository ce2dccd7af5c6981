package fleet

import (
	"context"
	"fmt"

	"github.com/stellardrift/stellardrift-go/internal/application/common"
	"github.com/stellardrift/stellardrift-go/internal/application/economy"
	"github.com/stellardrift/stellardrift-go/internal/domain/planet"
	"github.com/stellardrift/stellardrift-go/internal/domain/scheduler"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// NPCRespawnHandler executes npc.respawn tasks: the farmed-out NPC planet is
// restocked and its attack counter reset. A non-zero counter below the
// threshold means the planet was already respawned by an earlier delivery.
type NPCRespawnHandler struct {
	sync    *economy.SyncService
	planets planet.Repository
	rates   *economy.RateCalculator
	clock   shared.Clock
}

// NewNPCRespawnHandler creates an NPC respawn handler
func NewNPCRespawnHandler(sync *economy.SyncService, planets planet.Repository, rates *economy.RateCalculator, clock shared.Clock) *NPCRespawnHandler {
	return &NPCRespawnHandler{sync: sync, planets: planets, rates: rates, clock: clock}
}

// Handle processes one npc.respawn task
func (h *NPCRespawnHandler) Handle(ctx context.Context, task *scheduler.Task) error {
	var payload scheduler.NPCRespawnPayload
	if err := task.DecodePayload(&payload); err != nil {
		return err
	}
	logger := common.LoggerFromContext(ctx)

	p, err := h.sync.SyncPlanet(ctx, payload.PlanetID)
	if err != nil {
		if shared.IsNotFound(err) {
			logger.Log("warn", "respawn task for missing planet, skipping", map[string]interface{}{
				"planetId": payload.PlanetID,
			})
			return nil
		}
		return err
	}
	if !p.NPC {
		logger.Log("warn", "respawn task for player planet, skipping", map[string]interface{}{
			"planetId": p.ID,
		})
		return nil
	}
	if p.AttackCount == 0 {
		logger.Log("info", "planet already respawned, skipping", map[string]interface{}{
			"planetId": p.ID,
		})
		return nil
	}

	effective := h.rates.ResolveEffectiveConfig(p)
	for _, r := range shared.PlanetResources {
		p.SetResource(r, effective.MaxStorage)
	}
	p.AttackCount = 0
	p.LastResourceUpdate = h.clock.Now()

	if err := h.planets.Update(ctx, p); err != nil {
		return fmt.Errorf("failed to persist NPC respawn: %w", err)
	}
	logger.Log("info", "NPC planet respawned", map[string]interface{}{
		"planetId": p.ID,
	})
	return nil
}
