package economy

import (
	"context"
	"fmt"

	"github.com/stellardrift/stellardrift-go/internal/application/common"
	"github.com/stellardrift/stellardrift-go/internal/domain/planet"
)

// SyncPlanetCommand materializes pending accrual for one planet
type SyncPlanetCommand struct {
	PlanetID uint
}

// SyncPlanetResponse carries the updated planet and its current rates
type SyncPlanetResponse struct {
	Planet *planet.Planet
	Rates  RateResult
}

// SyncPlanetHandler handles sync planet commands
type SyncPlanetHandler struct {
	sync *SyncService
}

// NewSyncPlanetHandler creates a new sync planet handler
func NewSyncPlanetHandler(sync *SyncService) *SyncPlanetHandler {
	return &SyncPlanetHandler{sync: sync}
}

// Handle executes the sync planet command
func (h *SyncPlanetHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*SyncPlanetCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	p, err := h.sync.SyncPlanet(ctx, cmd.PlanetID)
	if err != nil {
		return nil, err
	}

	return &SyncPlanetResponse{Planet: p, Rates: h.sync.Rates(p)}, nil
}
