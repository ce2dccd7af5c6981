package capitalship

import (
	"context"
	"fmt"

	"github.com/stellardrift/stellardrift-go/internal/application/common"
	"github.com/stellardrift/stellardrift-go/internal/application/economy"
	"github.com/stellardrift/stellardrift-go/internal/domain/capitalship"
	"github.com/stellardrift/stellardrift-go/internal/domain/catalog"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// CommissionShipCommand lays down a new capital-ship hull at an owned planet.
// No resources are charged up front: construction is funded entirely through
// phased donations.
type CommissionShipCommand struct {
	UserID       int
	HomePlanetID uint
	Name         string
}

// CommissionShipResponse returns the new hull
type CommissionShipResponse struct {
	Ship *capitalship.CapitalShip
}

// CommissionShipHandler creates capital ships
type CommissionShipHandler struct {
	sync    *economy.SyncService
	ships   capitalship.Repository
	catalog catalog.Catalog
}

// NewCommissionShipHandler creates a commission handler
func NewCommissionShipHandler(sync *economy.SyncService, ships capitalship.Repository, cat catalog.Catalog) *CommissionShipHandler {
	return &CommissionShipHandler{sync: sync, ships: ships, catalog: cat}
}

// Handle commissions a new hull
func (h *CommissionShipHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CommissionShipCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if cmd.Name == "" {
		return nil, shared.NewValidationError("name", "ship name is required")
	}

	home, err := h.sync.SyncPlanet(ctx, cmd.HomePlanetID)
	if err != nil {
		return nil, err
	}
	if home.UserID != cmd.UserID {
		return nil, shared.NewNotOwnedError("planet", fmt.Sprint(cmd.HomePlanetID), cmd.UserID)
	}

	stats := h.catalog.CapitalShipStats()
	if stats == nil || len(stats.Phases) == 0 {
		return nil, shared.NewValidationError("catalog", "capital ship stats unavailable")
	}

	ship := capitalship.New(cmd.UserID, cmd.Name, cmd.HomePlanetID, stats.MaxHP, stats.Phases[0].Cost, len(stats.Phases))
	ship.Position = home.Position
	if err := h.ships.Add(ctx, ship); err != nil {
		return nil, fmt.Errorf("failed to persist capital ship: %w", err)
	}

	common.LoggerFromContext(ctx).Log("info", "capital ship commissioned", map[string]interface{}{
		"shipId":     ship.ID,
		"name":       ship.Name,
		"homePlanet": cmd.HomePlanetID,
	})
	return &CommissionShipResponse{Ship: ship}, nil
}
