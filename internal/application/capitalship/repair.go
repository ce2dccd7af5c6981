package capitalship

import (
	"context"
	"fmt"
	"math"

	"github.com/stellardrift/stellardrift-go/internal/application/common"
	"github.com/stellardrift/stellardrift-go/internal/application/economy"
	"github.com/stellardrift/stellardrift-go/internal/domain/capitalship"
	"github.com/stellardrift/stellardrift-go/internal/domain/catalog"
	"github.com/stellardrift/stellardrift-go/internal/domain/planet"
	"github.com/stellardrift/stellardrift-go/internal/domain/player"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
	"github.com/stellardrift/stellardrift-go/internal/infrastructure/config"
)

// StartRepairCommand begins phased reconstruction of a wreck once the
// post-destruction cooldown has elapsed.
type StartRepairCommand struct {
	UserID int
	ShipID string
}

// SalvageShipCommand scraps a wreck after its cooldown. The garrison that
// survived the destruction is returned to the home planet before the ship
// row is deleted.
type SalvageShipCommand struct {
	UserID int
	ShipID string
}

// HealShipCommand donates resources toward restoring hull HP on a ship that
// is not a wreck. The full heal is priced proportionally to the missing hull
// fraction; partial donations heal a proportional share, rounded down.
type HealShipCommand struct {
	UserID    int
	ShipID    string
	PlanetID  uint
	Resources shared.Amounts
}

// HealShipResponse reports the accepted donation and the HP restored
type HealShipResponse struct {
	Ship     *capitalship.CapitalShip
	Accepted shared.Amounts
	Healed   float64
}

// RepairHandler handles wreck repair, salvage and hull-heal donations
type RepairHandler struct {
	sync    *economy.SyncService
	planets planet.Repository
	users   player.UserRepository
	ships   capitalship.Repository
	catalog catalog.Catalog
	game    config.GameConfig
	clock   shared.Clock
}

// NewRepairHandler creates a repair handler
func NewRepairHandler(
	sync *economy.SyncService,
	planets planet.Repository,
	users player.UserRepository,
	ships capitalship.Repository,
	cat catalog.Catalog,
	game config.GameConfig,
	clock shared.Clock,
) *RepairHandler {
	return &RepairHandler{sync: sync, planets: planets, users: users, ships: ships, catalog: cat, game: game, clock: clock}
}

// Handle executes a repair, salvage or heal command
func (h *RepairHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	switch cmd := request.(type) {
	case *StartRepairCommand:
		return h.startRepair(ctx, cmd)
	case *SalvageShipCommand:
		return h.salvage(ctx, cmd)
	case *HealShipCommand:
		return h.heal(ctx, cmd)
	default:
		return nil, fmt.Errorf("invalid request type")
	}
}

func (h *RepairHandler) startRepair(ctx context.Context, cmd *StartRepairCommand) (common.Response, error) {
	ship, err := h.loadOwned(ctx, cmd.ShipID, cmd.UserID)
	if err != nil {
		return nil, err
	}
	stats := h.catalog.CapitalShipStats()
	if stats == nil {
		return nil, shared.NewValidationError("catalog", "capital ship stats unavailable")
	}

	phases := stats.RepairPhases
	if phases < 1 {
		phases = 1
	}
	if err := ship.StartRepair(repairPhaseCost(stats, h.game), phases, h.clock.Now()); err != nil {
		return nil, err
	}
	if err := h.ships.Update(ctx, ship); err != nil {
		return nil, fmt.Errorf("failed to persist repair start: %w", err)
	}
	return &DonateResponse{Ship: ship}, nil
}

func (h *RepairHandler) salvage(ctx context.Context, cmd *SalvageShipCommand) (common.Response, error) {
	ship, err := h.loadOwned(ctx, cmd.ShipID, cmd.UserID)
	if err != nil {
		return nil, err
	}
	now := h.clock.Now()
	if !ship.Salvageable(now) {
		return nil, shared.NewValidationError("status", "ship is not salvageable")
	}

	home, err := h.sync.SyncPlanet(ctx, ship.HomePlanetID)
	if err != nil {
		return nil, err
	}
	for unitType, count := range ship.Garrison.Troops {
		home.AddUnits(string(unitType), count)
	}
	for toolType, count := range ship.Garrison.Tools {
		if home.Tools == nil {
			home.Tools = shared.Amounts{}
		}
		home.Tools[toolType] += count
	}
	for r, amount := range ship.Garrison.Loot {
		home.SetResource(r, home.Resource(r)+float64(amount))
	}

	if err := h.planets.Update(ctx, home); err != nil {
		return nil, fmt.Errorf("failed to persist salvage returns: %w", err)
	}
	if err := h.ships.Delete(ctx, ship.ID); err != nil {
		return nil, fmt.Errorf("failed to delete salvaged ship: %w", err)
	}
	common.LoggerFromContext(ctx).Log("info", "capital ship salvaged", map[string]interface{}{
		"shipId": ship.ID,
	})
	return &DonateResponse{Ship: ship}, nil
}

func (h *RepairHandler) heal(ctx context.Context, cmd *HealShipCommand) (common.Response, error) {
	ship, err := h.loadOwned(ctx, cmd.ShipID, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if ship.Status == capitalship.StatusDamaged {
		return nil, shared.NewValidationError("status", "a wreck needs repair, not healing")
	}
	stats := h.catalog.CapitalShipStats()
	if stats == nil {
		return nil, shared.NewValidationError("catalog", "capital ship stats unavailable")
	}

	now := h.clock.Now()
	applyPassiveHeal(ship, h.game, now)

	cost := hullHealCost(ship, stats, h.game)
	if cost.IsZero() {
		return nil, shared.NewValidationError("hp", "hull is already intact")
	}

	p, err := h.sync.SyncPlanet(ctx, cmd.PlanetID)
	if err != nil {
		return nil, err
	}
	if p.UserID != cmd.UserID {
		return nil, shared.NewNotOwnedError("planet", fmt.Sprint(cmd.PlanetID), cmd.UserID)
	}
	user, err := h.users.FindByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	accepted := shared.Amounts{}
	for r, offered := range cmd.Resources {
		needed := cost.Get(r)
		if needed <= 0 || offered <= 0 {
			continue
		}
		available := 0
		switch r {
		case shared.ResourceCredits:
			available = int(user.Credits)
		case shared.ResourceDarkMatter:
			continue // dark matter never funds hull work
		default:
			available = int(p.Resource(r))
		}
		if take := shared.MinInt3(offered, needed, available); take > 0 {
			accepted[r] = take
		}
	}
	if accepted.IsZero() {
		return nil, shared.NewValidationError("resources", "nothing to donate")
	}

	for r, amount := range accepted {
		if r == shared.ResourceCredits {
			if err := user.SpendCredits(float64(amount)); err != nil {
				return nil, err
			}
			continue
		}
		p.SetResource(r, p.Resource(r)-float64(amount))
	}

	// Partial funding heals the proportional share of the missing hull
	healed := math.Floor(ship.MissingHP() * float64(accepted.Total()) / float64(cost.Total()))
	ship.Heal(healed)

	if err := h.planets.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to persist heal donation: %w", err)
	}
	if err := h.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to persist heal wallet: %w", err)
	}
	if err := h.ships.Update(ctx, ship); err != nil {
		return nil, fmt.Errorf("failed to persist healed ship: %w", err)
	}
	return &HealShipResponse{Ship: ship, Accepted: accepted, Healed: healed}, nil
}

func (h *RepairHandler) loadOwned(ctx context.Context, shipID string, userID int) (*capitalship.CapitalShip, error) {
	ship, err := h.ships.FindByID(ctx, shipID)
	if err != nil {
		return nil, err
	}
	if ship.UserID != userID {
		return nil, shared.NewNotOwnedError("capital ship", shipID, userID)
	}
	return ship, nil
}
