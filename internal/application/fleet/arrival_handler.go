package fleet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stellardrift/stellardrift-go/internal/application/common"
	"github.com/stellardrift/stellardrift-go/internal/application/economy"
	appscheduler "github.com/stellardrift/stellardrift-go/internal/application/scheduler"
	"github.com/stellardrift/stellardrift-go/internal/domain/capitalship"
	"github.com/stellardrift/stellardrift-go/internal/domain/catalog"
	"github.com/stellardrift/stellardrift-go/internal/domain/fleet"
	"github.com/stellardrift/stellardrift-go/internal/domain/planet"
	"github.com/stellardrift/stellardrift-go/internal/domain/player"
	"github.com/stellardrift/stellardrift-go/internal/domain/scheduler"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
	"github.com/stellardrift/stellardrift-go/internal/infrastructure/config"
)

// ArrivalHandler executes fleet.arrival tasks. The ENROUTE status is the
// idempotency gate: a redelivered or stale task finds the fleet already past
// ENROUTE and exits without mutating.
type ArrivalHandler struct {
	sync          *economy.SyncService
	planets       planet.Repository
	fleets        fleet.Repository
	ships         capitalship.Repository
	reports       fleet.BattleReportRepository
	notifications player.NotificationRepository
	resolver      fleet.CombatResolver
	scheduler     *appscheduler.Service
	catalog       catalog.Catalog
	game          config.GameConfig
	clock         shared.Clock
}

// NewArrivalHandler creates a fleet arrival handler
func NewArrivalHandler(
	sync *economy.SyncService,
	planets planet.Repository,
	fleets fleet.Repository,
	ships capitalship.Repository,
	reports fleet.BattleReportRepository,
	notifications player.NotificationRepository,
	resolver fleet.CombatResolver,
	sched *appscheduler.Service,
	cat catalog.Catalog,
	game config.GameConfig,
	clock shared.Clock,
) *ArrivalHandler {
	return &ArrivalHandler{
		sync:          sync,
		planets:       planets,
		fleets:        fleets,
		ships:         ships,
		reports:       reports,
		notifications: notifications,
		resolver:      resolver,
		scheduler:     sched,
		catalog:       cat,
		game:          game,
		clock:         clock,
	}
}

// Handle processes one fleet.arrival task
func (h *ArrivalHandler) Handle(ctx context.Context, task *scheduler.Task) error {
	var payload scheduler.FleetArrivalPayload
	if err := task.DecodePayload(&payload); err != nil {
		return err
	}
	logger := common.LoggerFromContext(ctx)

	f, err := h.fleets.FindByID(ctx, payload.FleetID)
	if err != nil {
		if shared.IsNotFound(err) {
			logger.Log("warn", "arrival task for missing fleet, skipping", map[string]interface{}{
				"fleetId": payload.FleetID,
			})
			return nil
		}
		return err
	}
	if err := f.MarkArrived(); err != nil {
		logger.Log("info", "fleet already past enroute, skipping arrival", map[string]interface{}{
			"fleetId": f.ID,
			"status":  string(f.Status),
		})
		return nil
	}

	switch f.Mission {
	case fleet.MissionAttack:
		err = h.resolveAttack(ctx, f)
	case fleet.MissionTransport:
		err = h.resolveTransport(ctx, f)
	case fleet.MissionStation:
		err = h.resolveStation(ctx, f)
	default:
		err = fmt.Errorf("fleet %s: unknown mission %q", f.ID, f.Mission)
	}
	if err != nil {
		return err
	}
	if err := h.fleets.Update(ctx, f); err != nil {
		return fmt.Errorf("failed to persist fleet arrival: %w", err)
	}
	return nil
}

// resolveAttack fights the battle and routes the fleet onward. Loot transfer
// is bounded by what the defender still holds now, not what combat reported:
// the planet may have spent resources while the fleet was in flight.
func (h *ArrivalHandler) resolveAttack(ctx context.Context, f *fleet.Fleet) error {
	target, err := h.sync.SyncPlanet(ctx, f.TargetID)
	if err != nil {
		return err
	}

	result, err := h.resolver.ResolveCombat(ctx, f.ID)
	if err != nil {
		return fmt.Errorf("combat resolution failed for fleet %s: %w", f.ID, err)
	}

	h.applyDefenderLosses(target, result.DefenderLosses)
	survivors := f.ApplyLosses(result.AttackerLosses)

	loot := shared.Amounts{}
	if survivors > 0 && result.Winner == "attacker" {
		for r, wanted := range result.ResourcesLooted {
			available := int(target.Resource(r))
			taken := shared.MinInt(wanted, available)
			if taken <= 0 {
				continue
			}
			target.SetResource(r, target.Resource(r)-float64(taken))
			loot[r] = taken
			f.Loot[r] += taken
		}
	}

	now := h.clock.Now()
	if target.NPC {
		target.AttackCount++
		// Equality, not >=: a redelivered arrival that re-runs after the
		// counter moved past the threshold must not schedule a second respawn
		if target.AttackCount == h.game.NPCMaxAttacks {
			delay := time.Duration(h.game.NPCRespawnDelaySeconds) * time.Second
			payload := scheduler.NPCRespawnPayload{PlanetID: target.ID}
			if _, err := h.scheduler.Schedule(ctx, scheduler.KindNPCRespawn, payload, now.Add(delay)); err != nil {
				return err
			}
		}
	}

	if err := h.planets.Update(ctx, target); err != nil {
		return fmt.Errorf("failed to persist defender planet: %w", err)
	}

	report := &fleet.BattleReport{
		ID:             uuid.New().String(),
		FleetID:        f.ID,
		AttackerUserID: f.UserID,
		DefenderUserID: target.UserID,
		TargetPlanetID: target.ID,
		Winner:         result.Winner,
		AttackerLosses: result.AttackerLosses.Clone(),
		DefenderLosses: result.DefenderLosses.Clone(),
		Loot:           loot,
		FoughtAt:       now,
	}
	if err := h.reports.Append(ctx, report); err != nil {
		return fmt.Errorf("failed to record battle report: %w", err)
	}

	if survivors == 0 {
		if err := f.MarkDestroyed(); err != nil {
			return err
		}
		h.notify(ctx, f.UserID, "fleet.destroyed",
			fmt.Sprintf("Your fleet was destroyed attacking planet %d", target.ID))
		return nil
	}
	if err := h.scheduleReturn(ctx, f, now); err != nil {
		return err
	}
	h.notify(ctx, f.UserID, "fleet.battle",
		fmt.Sprintf("Battle at planet %d: %s won, %d units returning", target.ID, result.Winner, survivors))
	if !target.NPC {
		h.notify(ctx, target.UserID, "planet.attacked",
			fmt.Sprintf("Planet %d was attacked, %s won", target.ID, result.Winner))
	}
	return nil
}

// resolveTransport drops the cargo at the destination and turns around
func (h *ArrivalHandler) resolveTransport(ctx context.Context, f *fleet.Fleet) error {
	target, err := h.sync.SyncPlanet(ctx, f.TargetID)
	if err != nil {
		return err
	}
	for r, amount := range f.Loot {
		target.SetResource(r, target.Resource(r)+float64(amount))
	}
	f.Loot = shared.Amounts{}
	if err := h.planets.Update(ctx, target); err != nil {
		return fmt.Errorf("failed to persist transport delivery: %w", err)
	}
	return h.scheduleReturn(ctx, f, h.clock.Now())
}

// resolveStation stations the payload at the destination: a capital ship
// garrison when TargetShipID is set, the target planet otherwise. A garrison
// without room sends the whole fleet back instead of partially loading.
func (h *ArrivalHandler) resolveStation(ctx context.Context, f *fleet.Fleet) error {
	if f.TargetShipID != "" {
		return h.stationOnShip(ctx, f)
	}
	target, err := h.sync.SyncPlanet(ctx, f.TargetID)
	if err != nil {
		return err
	}
	if target.UserID != f.UserID {
		return h.scheduleReturn(ctx, f, h.clock.Now())
	}
	for unitType, count := range f.Units {
		target.AddUnits(string(unitType), count)
	}
	for toolType, count := range f.Tools {
		target.Tools[toolType] += count
	}
	f.Units = shared.Amounts{}
	f.Tools = shared.Amounts{}
	if err := h.planets.Update(ctx, target); err != nil {
		return fmt.Errorf("failed to persist stationed units: %w", err)
	}
	return f.Complete()
}

func (h *ArrivalHandler) stationOnShip(ctx context.Context, f *fleet.Fleet) error {
	ship, err := h.ships.FindByID(ctx, f.TargetShipID)
	if err != nil {
		if shared.IsNotFound(err) {
			return h.scheduleReturn(ctx, f, h.clock.Now())
		}
		return err
	}
	if ship.UserID != f.UserID {
		return h.scheduleReturn(ctx, f, h.clock.Now())
	}

	troopCap, toolCap := h.garrisonCapacities(ship)
	if ship.Garrison.TroopsTotal()+f.TotalUnits() > troopCap ||
		ship.Garrison.ToolsTotal()+f.Tools.Total() > toolCap {
		return h.scheduleReturn(ctx, f, h.clock.Now())
	}
	for unitType, count := range f.Units {
		if err := ship.Garrison.LoadTroops(string(unitType), count, troopCap); err != nil {
			return err
		}
	}
	for toolType, count := range f.Tools {
		if err := ship.Garrison.LoadTools(string(toolType), count, toolCap); err != nil {
			return err
		}
	}
	f.Units = shared.Amounts{}
	f.Tools = shared.Amounts{}
	if err := h.ships.Update(ctx, ship); err != nil {
		return fmt.Errorf("failed to persist garrison: %w", err)
	}
	return f.Complete()
}

// garrisonCapacities come from the highest completed construction phase
func (h *ArrivalHandler) garrisonCapacities(ship *capitalship.CapitalShip) (troops, tools int) {
	stats := h.catalog.CapitalShipStats()
	if stats == nil || ship.HighestPhaseCompleted < 1 {
		return 0, 0
	}
	idx := ship.HighestPhaseCompleted - 1
	if idx >= len(stats.Phases) {
		idx = len(stats.Phases) - 1
	}
	return stats.Phases[idx].TroopCapacity, stats.Phases[idx].ToolCapacity
}

// scheduleReturn flips the fleet to RETURNING and books the trip home for
// the original outbound duration.
func (h *ArrivalHandler) scheduleReturn(ctx context.Context, f *fleet.Fleet, now time.Time) error {
	if err := f.BeginReturn(); err != nil {
		return err
	}
	f.ReturnTime = now.Add(f.ArrivalTime.Sub(f.DepartedAt))
	payload := scheduler.FleetReturnPayload{FleetID: f.ID, FromPlanetID: f.TargetID}
	if _, err := h.scheduler.Schedule(ctx, scheduler.KindFleetReturn, payload, f.ReturnTime); err != nil {
		return err
	}
	return nil
}

// applyDefenderLosses debits the defender's stationed units, flooring at zero
func (h *ArrivalHandler) applyDefenderLosses(target *planet.Planet, losses shared.Amounts) {
	for unitType, lost := range losses {
		u := target.Unit(string(unitType))
		if u == nil {
			continue
		}
		if lost >= u.Count {
			u.Count = 0
		} else {
			u.Count -= lost
		}
		if u.Defending > u.Count {
			u.Defending = u.Count
		}
	}
	target.PruneEmptyUnits()
}

func (h *ArrivalHandler) notify(ctx context.Context, userID int, kind, message string) {
	n := &player.Notification{
		UserID:    userID,
		Kind:      kind,
		Message:   message,
		CreatedAt: h.clock.Now().Unix(),
	}
	if err := h.notifications.Append(ctx, n); err != nil {
		common.LoggerFromContext(ctx).Log("warn", "failed to append notification", map[string]interface{}{
			"userId": userID,
			"kind":   kind,
			"error":  err.Error(),
		})
	}
}
