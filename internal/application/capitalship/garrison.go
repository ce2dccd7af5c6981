package capitalship

import (
	"context"
	"fmt"

	"github.com/stellardrift/stellardrift-go/internal/application/common"
	"github.com/stellardrift/stellardrift-go/internal/application/economy"
	"github.com/stellardrift/stellardrift-go/internal/domain/capitalship"
	"github.com/stellardrift/stellardrift-go/internal/domain/catalog"
	"github.com/stellardrift/stellardrift-go/internal/domain/planet"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// LoadGarrisonCommand moves troops and tools from the ship's home planet
// into its garrison. Only a docked (READY) ship can be loaded directly;
// a deployed ship is reinforced by stationing a fleet on it instead.
type LoadGarrisonCommand struct {
	UserID int
	ShipID string
	Units  shared.Amounts
	Tools  shared.Amounts
}

// UnloadGarrisonCommand moves troops and tools back onto the home planet
type UnloadGarrisonCommand struct {
	UserID int
	ShipID string
	Units  shared.Amounts
	Tools  shared.Amounts
}

// GarrisonResponse returns the ship after the transfer
type GarrisonResponse struct {
	Ship *capitalship.CapitalShip
}

// GarrisonHandler handles dockside garrison transfers
type GarrisonHandler struct {
	sync    *economy.SyncService
	planets planet.Repository
	ships   capitalship.Repository
	catalog catalog.Catalog
}

// NewGarrisonHandler creates a garrison transfer handler
func NewGarrisonHandler(sync *economy.SyncService, planets planet.Repository, ships capitalship.Repository, cat catalog.Catalog) *GarrisonHandler {
	return &GarrisonHandler{sync: sync, planets: planets, ships: ships, catalog: cat}
}

// Handle executes a load or unload command
func (h *GarrisonHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	switch cmd := request.(type) {
	case *LoadGarrisonCommand:
		return h.load(ctx, cmd)
	case *UnloadGarrisonCommand:
		return h.unload(ctx, cmd)
	default:
		return nil, fmt.Errorf("invalid request type")
	}
}

func (h *GarrisonHandler) load(ctx context.Context, cmd *LoadGarrisonCommand) (common.Response, error) {
	ship, home, err := h.loadDocked(ctx, cmd.ShipID, cmd.UserID)
	if err != nil {
		return nil, err
	}
	troopCap, toolCap := h.capacities(ship)

	for unitType, count := range cmd.Units {
		if err := home.RemoveUnits(string(unitType), count); err != nil {
			return nil, err
		}
		if err := ship.Garrison.LoadTroops(string(unitType), count, troopCap); err != nil {
			return nil, err
		}
	}
	for toolType, count := range cmd.Tools {
		if count <= 0 {
			return nil, shared.NewValidationError("tools", "non-positive tool count")
		}
		if have := home.Tools.Get(toolType); have < count {
			return nil, shared.NewInsufficientResourcesError(toolType, count, have)
		}
		if err := ship.Garrison.LoadTools(string(toolType), count, toolCap); err != nil {
			return nil, err
		}
		home.Tools[toolType] -= count
	}
	return h.persist(ctx, ship, home)
}

func (h *GarrisonHandler) unload(ctx context.Context, cmd *UnloadGarrisonCommand) (common.Response, error) {
	ship, home, err := h.loadDocked(ctx, cmd.ShipID, cmd.UserID)
	if err != nil {
		return nil, err
	}

	for unitType, count := range cmd.Units {
		if err := ship.Garrison.UnloadTroops(string(unitType), count); err != nil {
			return nil, err
		}
		home.AddUnits(string(unitType), count)
	}
	for toolType, count := range cmd.Tools {
		if err := ship.Garrison.UnloadTools(string(toolType), count); err != nil {
			return nil, err
		}
		if home.Tools == nil {
			home.Tools = shared.Amounts{}
		}
		home.Tools[toolType] += count
	}
	return h.persist(ctx, ship, home)
}

// loadDocked resolves an owned ship that is docked at home with its synced
// home planet.
func (h *GarrisonHandler) loadDocked(ctx context.Context, shipID string, userID int) (*capitalship.CapitalShip, *planet.Planet, error) {
	ship, err := h.ships.FindByID(ctx, shipID)
	if err != nil {
		return nil, nil, err
	}
	if ship.UserID != userID {
		return nil, nil, shared.NewNotOwnedError("capital ship", shipID, userID)
	}
	if ship.Status != capitalship.StatusReady && ship.Status != capitalship.StatusConstructing {
		return nil, nil, shared.NewValidationError("status", "ship is not docked at its home planet")
	}
	home, err := h.sync.SyncPlanet(ctx, ship.HomePlanetID)
	if err != nil {
		return nil, nil, err
	}
	return ship, home, nil
}

func (h *GarrisonHandler) capacities(ship *capitalship.CapitalShip) (troops, tools int) {
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

func (h *GarrisonHandler) persist(ctx context.Context, ship *capitalship.CapitalShip, home *planet.Planet) (common.Response, error) {
	if err := h.planets.Update(ctx, home); err != nil {
		return nil, fmt.Errorf("failed to persist garrison transfer: %w", err)
	}
	if err := h.ships.Update(ctx, ship); err != nil {
		return nil, fmt.Errorf("failed to persist garrison: %w", err)
	}
	return &GarrisonResponse{Ship: ship}, nil
}
