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

// StartConstructionCommand places a new building on the planet grid
type StartConstructionCommand struct {
	PlanetID     uint
	UserID       int
	BuildingType string
	X            int
	Y            int
}

// UpgradeBuildingCommand starts an upgrade of an active building
type UpgradeBuildingCommand struct {
	PlanetID   uint
	UserID     int
	BuildingID uint
}

// DemolishBuildingCommand starts tearing down an active building
type DemolishBuildingCommand struct {
	PlanetID   uint
	UserID     int
	BuildingID uint
}

// ConstructionResponse reports the scheduled finish of the slot work
type ConstructionResponse struct {
	Planet     *planet.Planet
	BuildingID uint
	FinishTime time.Time
}

// ConstructionHandler handles the three construction-slot commands. Every
// path syncs first, validates against the fresh snapshot, then persists;
// the single construction slot means only one of these can be in flight
// per planet.
type ConstructionHandler struct {
	sync    *SyncService
	planets planet.Repository
	catalog catalog.Catalog
	clock   shared.Clock
}

// NewConstructionHandler creates a construction handler
func NewConstructionHandler(sync *SyncService, planets planet.Repository, cat catalog.Catalog, clock shared.Clock) *ConstructionHandler {
	return &ConstructionHandler{sync: sync, planets: planets, catalog: cat, clock: clock}
}

// Handle executes a construction-slot command
func (h *ConstructionHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	switch cmd := request.(type) {
	case *StartConstructionCommand:
		return h.startConstruction(ctx, cmd)
	case *UpgradeBuildingCommand:
		return h.upgradeBuilding(ctx, cmd)
	case *DemolishBuildingCommand:
		return h.demolishBuilding(ctx, cmd)
	default:
		return nil, fmt.Errorf("invalid request type")
	}
}

func (h *ConstructionHandler) startConstruction(ctx context.Context, cmd *StartConstructionCommand) (common.Response, error) {
	p, err := h.loadOwned(ctx, cmd.PlanetID, cmd.UserID)
	if err != nil {
		return nil, err
	}

	info := h.catalog.BuildingInfo(cmd.BuildingType)
	stats := h.catalog.LevelStats(cmd.BuildingType, 1)
	if info == nil || stats == nil {
		return nil, shared.NewValidationError("buildingType", "unknown building type")
	}
	if p.IsBuilding() {
		return nil, shared.NewValidationError("construction", "construction slot occupied")
	}
	if !p.FitsGrid(cmd.X, cmd.Y, info.Size) {
		return nil, shared.NewValidationError("position", "out of bounds")
	}
	if h.overlaps(p, cmd.X, cmd.Y, info.Size) {
		return nil, shared.NewValidationError("position", "space occupied")
	}
	if err := p.SpendResources(stats.Cost); err != nil {
		return nil, err
	}

	b := &planet.Building{
		PlanetID: p.ID,
		Type:     cmd.BuildingType,
		Level:    1,
		X:        cmd.X,
		Y:        cmd.Y,
		Status:   planet.BuildingStatusConstructing,
	}
	p.Buildings = append(p.Buildings, b)

	finish := h.clock.Now().Add(time.Duration(stats.BuildSeconds) * time.Second)
	p.Construction = &planet.ConstructionSlot{BuildingID: b.ID, FinishTime: finish}

	if err := h.persist(ctx, p, b); err != nil {
		return nil, err
	}
	return &ConstructionResponse{Planet: p, BuildingID: b.ID, FinishTime: finish}, nil
}

func (h *ConstructionHandler) upgradeBuilding(ctx context.Context, cmd *UpgradeBuildingCommand) (common.Response, error) {
	p, err := h.loadOwned(ctx, cmd.PlanetID, cmd.UserID)
	if err != nil {
		return nil, err
	}

	b := p.FindBuilding(cmd.BuildingID)
	if b == nil {
		return nil, shared.NewNotFoundError("building", fmt.Sprint(cmd.BuildingID))
	}
	if p.IsBuilding() {
		return nil, shared.NewValidationError("construction", "construction slot occupied")
	}

	info := h.catalog.BuildingInfo(b.Type)
	next := h.catalog.LevelStats(b.Type, b.Level+1)
	if info == nil || next == nil || b.Level >= info.MaxLevel {
		return nil, shared.NewValidationError("level", "max level reached")
	}
	if err := p.SpendResources(next.Cost); err != nil {
		return nil, err
	}
	if err := b.BeginUpgrade(); err != nil {
		return nil, err
	}

	finish := h.clock.Now().Add(time.Duration(next.BuildSeconds) * time.Second)
	p.Construction = &planet.ConstructionSlot{BuildingID: b.ID, FinishTime: finish}

	if err := h.persist(ctx, p, nil); err != nil {
		return nil, err
	}
	return &ConstructionResponse{Planet: p, BuildingID: b.ID, FinishTime: finish}, nil
}

func (h *ConstructionHandler) demolishBuilding(ctx context.Context, cmd *DemolishBuildingCommand) (common.Response, error) {
	p, err := h.loadOwned(ctx, cmd.PlanetID, cmd.UserID)
	if err != nil {
		return nil, err
	}

	b := p.FindBuilding(cmd.BuildingID)
	if b == nil {
		return nil, shared.NewNotFoundError("building", fmt.Sprint(cmd.BuildingID))
	}
	if p.IsBuilding() {
		return nil, shared.NewValidationError("construction", "construction slot occupied")
	}
	if err := b.BeginDemolition(); err != nil {
		return nil, err
	}

	// Demolition takes half the level's build time
	stats := h.catalog.LevelStats(b.Type, b.Level)
	seconds := 60
	if stats != nil {
		seconds = stats.BuildSeconds / 2
	}
	finish := h.clock.Now().Add(time.Duration(seconds) * time.Second)
	p.Construction = &planet.ConstructionSlot{BuildingID: b.ID, FinishTime: finish}

	if err := h.persist(ctx, p, nil); err != nil {
		return nil, err
	}
	return &ConstructionResponse{Planet: p, BuildingID: b.ID, FinishTime: finish}, nil
}

func (h *ConstructionHandler) loadOwned(ctx context.Context, planetID uint, userID int) (*planet.Planet, error) {
	p, err := h.sync.SyncPlanet(ctx, planetID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, shared.NewNotOwnedError("planet", fmt.Sprint(planetID), userID)
	}
	return p, nil
}

// overlaps checks the footprint against every existing building's footprint
func (h *ConstructionHandler) overlaps(p *planet.Planet, x, y, size int) bool {
	for _, b := range p.Buildings {
		info := h.catalog.BuildingInfo(b.Type)
		if info == nil {
			continue
		}
		if x < b.X+info.Size && b.X < x+size && y < b.Y+info.Size && b.Y < y+size {
			return true
		}
	}
	return false
}

func (h *ConstructionHandler) persist(ctx context.Context, p *planet.Planet, created *planet.Building) error {
	if err := h.planets.Update(ctx, p); err != nil {
		return fmt.Errorf("failed to persist construction: %w", err)
	}
	// The repository assigns ids on insert; re-point the slot at the row id
	if created != nil && p.Construction != nil && p.Construction.BuildingID == 0 {
		p.Construction.BuildingID = created.ID
		if err := h.planets.Update(ctx, p); err != nil {
			return fmt.Errorf("failed to persist construction slot: %w", err)
		}
	}
	return nil
}
