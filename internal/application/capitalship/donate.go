package capitalship

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/stellardrift/stellardrift-go/internal/application/common"
	"github.com/stellardrift/stellardrift-go/internal/application/economy"
	"github.com/stellardrift/stellardrift-go/internal/domain/capitalship"
	"github.com/stellardrift/stellardrift-go/internal/domain/catalog"
	"github.com/stellardrift/stellardrift-go/internal/domain/planet"
	"github.com/stellardrift/stellardrift-go/internal/domain/player"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
	"github.com/stellardrift/stellardrift-go/internal/infrastructure/config"
)

// DonateCommand offers resources toward the ship's current construction or
// repair phase. Planet resources come from the named planet; credits and
// dark matter come from the user's wallet. Each resource is accepted up to
// min(offered, still needed this phase, available at the source).
type DonateCommand struct {
	UserID    int
	ShipID    string
	PlanetID  uint
	Resources shared.Amounts
}

// DonateResponse reports what was actually taken and the resulting progress
type DonateResponse struct {
	Ship          *capitalship.CapitalShip
	Accepted      shared.Amounts
	PhaseComplete bool
	BuildComplete bool
}

// DonateHandler applies donations and advances phases
type DonateHandler struct {
	sync    *economy.SyncService
	planets planet.Repository
	users   player.UserRepository
	ships   capitalship.Repository
	catalog catalog.Catalog
	game    config.GameConfig
	clock   shared.Clock
}

// NewDonateHandler creates a donation handler
func NewDonateHandler(
	sync *economy.SyncService,
	planets planet.Repository,
	users player.UserRepository,
	ships capitalship.Repository,
	cat catalog.Catalog,
	game config.GameConfig,
	clock shared.Clock,
) *DonateHandler {
	return &DonateHandler{sync: sync, planets: planets, users: users, ships: ships, catalog: cat, game: game, clock: clock}
}

// Handle applies one donation
func (h *DonateHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*DonateCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	ship, err := h.ships.FindByID(ctx, cmd.ShipID)
	if err != nil {
		return nil, err
	}
	if ship.UserID != cmd.UserID {
		return nil, shared.NewNotOwnedError("capital ship", cmd.ShipID, cmd.UserID)
	}
	if ship.Progress == nil {
		return nil, shared.NewValidationError("status", "ship is not under construction or repair")
	}

	now := h.clock.Now()
	applyPassiveHeal(ship, h.game, now)

	delay := minutes(h.game.DonationDelayMinutes)
	if remaining := ship.Progress.DelayRemaining(delay, now); remaining > 0 {
		return nil, shared.NewDonationDelayError(int(math.Ceil(remaining.Minutes())))
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

	offer := h.capToAvailable(cmd.Resources, p, user)
	accepted := ship.Progress.Accept(offer, now)
	if accepted.IsZero() {
		return nil, shared.NewValidationError("resources", "nothing to donate")
	}
	if err := h.debit(p, user, accepted); err != nil {
		return nil, err
	}

	phaseComplete := ship.Progress.PhaseComplete()
	buildComplete := false
	if phaseComplete {
		buildComplete, err = h.advancePhase(ship)
		if err != nil {
			return nil, err
		}
	}

	if err := h.planets.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to persist donation source planet: %w", err)
	}
	if err := h.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to persist donation wallet: %w", err)
	}
	if err := h.ships.Update(ctx, ship); err != nil {
		return nil, fmt.Errorf("failed to persist ship progress: %w", err)
	}

	common.LoggerFromContext(ctx).Log("info", "capital ship donation applied", map[string]interface{}{
		"shipId":        ship.ID,
		"accepted":      accepted,
		"phaseComplete": phaseComplete,
		"buildComplete": buildComplete,
	})
	return &DonateResponse{Ship: ship, Accepted: accepted, PhaseComplete: phaseComplete, BuildComplete: buildComplete}, nil
}

// capToAvailable bounds the offer by what the source actually holds
func (h *DonateHandler) capToAvailable(offer shared.Amounts, p *planet.Planet, user *player.User) shared.Amounts {
	capped := shared.Amounts{}
	for r, amount := range offer {
		if amount <= 0 {
			continue
		}
		available := 0
		switch r {
		case shared.ResourceCredits:
			available = int(user.Credits)
		case shared.ResourceDarkMatter:
			available = int(user.DarkMatter)
		default:
			available = int(p.Resource(r))
		}
		if take := shared.MinInt(amount, available); take > 0 {
			capped[r] = take
		}
	}
	return capped
}

// debit removes the accepted amounts from their sources. Accept already
// capped to availability, so a failure here is a programming error surfaced
// as a domain error.
func (h *DonateHandler) debit(p *planet.Planet, user *player.User, accepted shared.Amounts) error {
	planetShare := shared.Amounts{}
	for r, amount := range accepted {
		switch r {
		case shared.ResourceCredits:
			if err := user.SpendCredits(float64(amount)); err != nil {
				return err
			}
		case shared.ResourceDarkMatter:
			if err := user.SpendDarkMatter(float64(amount)); err != nil {
				return err
			}
		default:
			planetShare[r] = amount
		}
	}
	return p.SpendResources(planetShare)
}

// advancePhase moves completed progress forward: the next phase's cost comes
// from the catalog for construction, or the fixed per-phase split for repair.
// On the final phase the ship completes into READY.
func (h *DonateHandler) advancePhase(ship *capitalship.CapitalShip) (bool, error) {
	stats := h.catalog.CapitalShipStats()
	if stats == nil {
		return false, shared.NewValidationError("catalog", "capital ship stats unavailable")
	}
	if !ship.Progress.IsRepair && ship.Progress.Phase > ship.HighestPhaseCompleted {
		ship.HighestPhaseCompleted = ship.Progress.Phase
	}

	var nextRequired shared.Amounts
	if ship.Progress.IsRepair {
		nextRequired = repairPhaseCost(stats, h.game)
	} else if ship.Progress.Phase < len(stats.Phases) {
		nextRequired = stats.Phases[ship.Progress.Phase].Cost
	}

	if done := ship.Progress.AdvancePhase(nextRequired); done {
		if err := ship.CompleteConstruction(); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func minutes(m int) time.Duration {
	return time.Duration(m) * time.Minute
}
