// Package fleet implements fleet missions: dispatch commands plus the
// scheduled arrival and return handlers.
package fleet

import (
	"context"
	"fmt"
	"time"

	"github.com/stellardrift/stellardrift-go/internal/application/common"
	"github.com/stellardrift/stellardrift-go/internal/application/economy"
	appscheduler "github.com/stellardrift/stellardrift-go/internal/application/scheduler"
	"github.com/stellardrift/stellardrift-go/internal/domain/capitalship"
	"github.com/stellardrift/stellardrift-go/internal/domain/catalog"
	"github.com/stellardrift/stellardrift-go/internal/domain/fleet"
	"github.com/stellardrift/stellardrift-go/internal/domain/planet"
	"github.com/stellardrift/stellardrift-go/internal/domain/scheduler"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// DispatchFleetCommand launches a fleet from an owned planet. Cargo is only
// valid for transport missions; TargetShipID redirects a station mission to a
// capital ship garrison instead of a planet.
type DispatchFleetCommand struct {
	UserID       int
	OriginID     uint
	TargetID     uint
	TargetShipID string
	Mission      fleet.Mission
	Units        shared.Amounts
	Tools        shared.Amounts
	Cargo        shared.Amounts
}

// DispatchFleetResponse reports the launched fleet and its ETA
type DispatchFleetResponse struct {
	Fleet       *fleet.Fleet
	ArrivalTime time.Time
}

// DispatchFleetHandler validates and launches fleets
type DispatchFleetHandler struct {
	sync      *economy.SyncService
	planets   planet.Repository
	fleets    fleet.Repository
	ships     capitalship.Repository
	scheduler *appscheduler.Service
	catalog   catalog.Catalog
	speed     FleetSpeed
	clock     shared.Clock
}

// FleetSpeed resolves travel speed for a unit mix
type FleetSpeed struct {
	catalog catalog.Catalog
}

// NewFleetSpeed creates a speed resolver
func NewFleetSpeed(cat catalog.Catalog) FleetSpeed {
	return FleetSpeed{catalog: cat}
}

// SpeedFor returns the slowest unit's map speed, which paces the whole fleet
func (s FleetSpeed) SpeedFor(units shared.Amounts) (float64, error) {
	speed := 0.0
	for unitType, count := range units {
		if count <= 0 {
			continue
		}
		stats := s.catalog.UnitStats(string(unitType))
		if stats == nil {
			return 0, shared.NewValidationError("units", fmt.Sprintf("unknown unit type %q", unitType))
		}
		if speed == 0 || stats.SpeedPerHour < speed {
			speed = stats.SpeedPerHour
		}
	}
	if speed == 0 {
		return 0, shared.NewValidationError("units", "fleet has no units")
	}
	return speed, nil
}

// CargoCapacityFor sums the unit mix's cargo capacity
func (s FleetSpeed) CargoCapacityFor(units shared.Amounts) int {
	capacity := 0
	for unitType, count := range units {
		if stats := s.catalog.UnitStats(string(unitType)); stats != nil {
			capacity += stats.CargoCapacity * count
		}
	}
	return capacity
}

// NewDispatchFleetHandler creates a dispatch handler
func NewDispatchFleetHandler(
	sync *economy.SyncService,
	planets planet.Repository,
	fleets fleet.Repository,
	ships capitalship.Repository,
	sched *appscheduler.Service,
	cat catalog.Catalog,
	clock shared.Clock,
) *DispatchFleetHandler {
	return &DispatchFleetHandler{
		sync:      sync,
		planets:   planets,
		fleets:    fleets,
		ships:     ships,
		scheduler: sched,
		catalog:   cat,
		speed:     NewFleetSpeed(cat),
		clock:     clock,
	}
}

// Handle launches the fleet: debit the origin, persist the fleet, schedule
// the arrival task.
func (h *DispatchFleetHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*DispatchFleetCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	origin, err := h.sync.SyncPlanet(ctx, cmd.OriginID)
	if err != nil {
		return nil, err
	}
	if origin.UserID != cmd.UserID {
		return nil, shared.NewNotOwnedError("planet", fmt.Sprint(cmd.OriginID), cmd.UserID)
	}

	speed, err := h.speed.SpeedFor(cmd.Units)
	if err != nil {
		return nil, err
	}

	target, err := h.targetPosition(ctx, cmd)
	if err != nil {
		return nil, err
	}
	travel := shared.TravelTime(origin.Position.DistanceTo(target), speed)

	f := fleet.New(cmd.UserID, cmd.Mission, cmd.OriginID, cmd.TargetID, cmd.Units)
	f.TargetShipID = cmd.TargetShipID

	borrowed, err := h.debitUnits(origin, cmd.Units)
	if err != nil {
		return nil, err
	}
	f.BorrowedDefense = borrowed

	if err := h.loadTools(origin, f, cmd.Tools); err != nil {
		return nil, err
	}
	if err := h.loadCargo(origin, f, cmd); err != nil {
		return nil, err
	}

	now := h.clock.Now()
	f.DepartedAt = now
	f.ArrivalTime = now.Add(travel)

	if err := h.planets.Update(ctx, origin); err != nil {
		return nil, fmt.Errorf("failed to debit origin planet: %w", err)
	}
	if err := h.fleets.Add(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to persist fleet: %w", err)
	}

	payload := scheduler.FleetArrivalPayload{FleetID: f.ID, Type: string(cmd.Mission)}
	if _, err := h.scheduler.Schedule(ctx, scheduler.KindFleetArrival, payload, f.ArrivalTime); err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Log("info", "fleet dispatched", map[string]interface{}{
		"fleetId":     f.ID,
		"mission":     string(cmd.Mission),
		"origin":      cmd.OriginID,
		"target":      cmd.TargetID,
		"units":       f.TotalUnits(),
		"arrivalTime": f.ArrivalTime,
	})
	return &DispatchFleetResponse{Fleet: f, ArrivalTime: f.ArrivalTime}, nil
}

// targetPosition resolves where the fleet is flying to. Capital ship targets
// use the ship's current station: its target planet when deployed, its home
// planet otherwise.
func (h *DispatchFleetHandler) targetPosition(ctx context.Context, cmd *DispatchFleetCommand) (shared.Position, error) {
	if cmd.TargetShipID != "" {
		ship, err := h.ships.FindByID(ctx, cmd.TargetShipID)
		if err != nil {
			return shared.Position{}, err
		}
		planetID := ship.HomePlanetID
		if ship.Status == capitalship.StatusDeployed && ship.TargetPlanetID != 0 {
			planetID = ship.TargetPlanetID
		}
		station, err := h.planets.FindByID(ctx, planetID)
		if err != nil {
			return shared.Position{}, err
		}
		return station.Position, nil
	}
	target, err := h.planets.FindByID(ctx, cmd.TargetID)
	if err != nil {
		return shared.Position{}, err
	}
	return target.Position, nil
}

// debitUnits pulls the requested unit mix off the origin, dipping into the
// defense layout when the reserve is short. What was pulled from defense is
// tracked so the return handler can restore it.
func (h *DispatchFleetHandler) debitUnits(origin *planet.Planet, units shared.Amounts) (shared.Amounts, error) {
	borrowed := shared.Amounts{}
	for unitType, count := range units {
		if count <= 0 {
			return nil, shared.NewValidationError("units", "non-positive unit count")
		}
		u := origin.Unit(string(unitType))
		if u == nil || u.Count < count {
			have := 0
			if u != nil {
				have = u.Count
			}
			return nil, shared.NewInsufficientResourcesError(unitType, count, have)
		}
		if short := count - u.Reserve(); short > 0 {
			u.Defending -= short
			borrowed[unitType] = short
		}
		u.Count -= count
	}
	origin.PruneEmptyUnits()
	return borrowed, nil
}

func (h *DispatchFleetHandler) loadTools(origin *planet.Planet, f *fleet.Fleet, tools shared.Amounts) error {
	for toolType, count := range tools {
		if count <= 0 {
			return shared.NewValidationError("tools", "non-positive tool count")
		}
		if have := origin.Tools.Get(toolType); have < count {
			return shared.NewInsufficientResourcesError(toolType, count, have)
		}
		origin.Tools[toolType] -= count
		f.Tools[toolType] = count
	}
	return nil
}

// loadCargo debits transport cargo from the origin, bounded by the fleet's
// cargo capacity.
func (h *DispatchFleetHandler) loadCargo(origin *planet.Planet, f *fleet.Fleet, cmd *DispatchFleetCommand) error {
	if cmd.Cargo.IsZero() {
		return nil
	}
	if cmd.Mission != fleet.MissionTransport {
		return shared.NewValidationError("cargo", "cargo requires a transport mission")
	}
	capacity := h.speed.CargoCapacityFor(cmd.Units)
	if total := cmd.Cargo.Total(); total > capacity {
		return shared.NewCapacityExceededError("cargo", total, 0, capacity)
	}
	for r, amount := range cmd.Cargo {
		if amount <= 0 {
			return shared.NewValidationError("cargo", "non-positive cargo amount")
		}
		if origin.Resource(r) < float64(amount) {
			return shared.NewInsufficientResourcesError(r, amount, int(origin.Resource(r)))
		}
		origin.SetResource(r, origin.Resource(r)-float64(amount))
		f.Loot[r] = amount
	}
	return nil
}
