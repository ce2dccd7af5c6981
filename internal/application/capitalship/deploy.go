package capitalship

import (
	"context"
	"fmt"
	"time"

	"github.com/stellardrift/stellardrift-go/internal/application/common"
	appscheduler "github.com/stellardrift/stellardrift-go/internal/application/scheduler"
	"github.com/stellardrift/stellardrift-go/internal/domain/capitalship"
	"github.com/stellardrift/stellardrift-go/internal/domain/planet"
	"github.com/stellardrift/stellardrift-go/internal/domain/scheduler"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
	"github.com/stellardrift/stellardrift-go/internal/infrastructure/config"
)

// DeployShipCommand sends a capital ship to a target planet for one of the
// configured commitment windows.
type DeployShipCommand struct {
	UserID         int
	ShipID         string
	TargetPlanetID uint
	CommitmentDays int
}

// DeployShipResponse reports the travel booking
type DeployShipResponse struct {
	Ship        *capitalship.CapitalShip
	ArrivalTime time.Time
}

// RecallShipCommand pulls a traveling or deployed ship back home. Recall
// before the commitment window ends is legal; the window only drives the
// recall-eligibility notification.
type RecallShipCommand struct {
	UserID int
	ShipID string
}

// RecallShipResponse reports the resulting status and, for a deployed ship,
// the booked return time.
type RecallShipResponse struct {
	Ship       *capitalship.CapitalShip
	ReturnTime *time.Time
}

// TravelHandler handles deploy and recall
type TravelHandler struct {
	planets   planet.Repository
	ships     capitalship.Repository
	scheduler *appscheduler.Service
	game      config.GameConfig
	clock     shared.Clock
}

// NewTravelHandler creates a deploy/recall handler
func NewTravelHandler(
	planets planet.Repository,
	ships capitalship.Repository,
	sched *appscheduler.Service,
	game config.GameConfig,
	clock shared.Clock,
) *TravelHandler {
	return &TravelHandler{planets: planets, ships: ships, scheduler: sched, game: game, clock: clock}
}

// Handle executes a deploy or recall command
func (h *TravelHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	switch cmd := request.(type) {
	case *DeployShipCommand:
		return h.deploy(ctx, cmd)
	case *RecallShipCommand:
		return h.recall(ctx, cmd)
	default:
		return nil, fmt.Errorf("invalid request type")
	}
}

func (h *TravelHandler) deploy(ctx context.Context, cmd *DeployShipCommand) (common.Response, error) {
	ship, err := h.loadOwned(ctx, cmd.ShipID, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if !h.game.CommitmentAllowed(cmd.CommitmentDays) {
		return nil, shared.NewValidationError("commitmentDays",
			fmt.Sprintf("commitment of %d days is not offered", cmd.CommitmentDays))
	}

	now := h.clock.Now()
	applyPassiveHeal(ship, h.game, now)

	travel, err := h.travelTime(ctx, ship.HomePlanetID, cmd.TargetPlanetID)
	if err != nil {
		return nil, err
	}
	arrival := now.Add(travel)
	if err := ship.BeginDeployment(cmd.TargetPlanetID, cmd.CommitmentDays, arrival); err != nil {
		return nil, err
	}
	if err := h.ships.Update(ctx, ship); err != nil {
		return nil, fmt.Errorf("failed to persist deployment: %w", err)
	}

	payload := scheduler.CapitalShipPayload{CapitalShipID: ship.ID}
	if _, err := h.scheduler.Schedule(ctx, scheduler.KindCapitalShipArrival, payload, arrival); err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Log("info", "capital ship deployed", map[string]interface{}{
		"shipId":      ship.ID,
		"target":      cmd.TargetPlanetID,
		"commitment":  cmd.CommitmentDays,
		"arrivalTime": arrival,
	})
	return &DeployShipResponse{Ship: ship, ArrivalTime: arrival}, nil
}

func (h *TravelHandler) recall(ctx context.Context, cmd *RecallShipCommand) (common.Response, error) {
	ship, err := h.loadOwned(ctx, cmd.ShipID, cmd.UserID)
	if err != nil {
		return nil, err
	}

	now := h.clock.Now()
	applyPassiveHeal(ship, h.game, now)

	wasDeployed := ship.Status == capitalship.StatusDeployed
	targetID := ship.TargetPlanetID
	if err := ship.Recall(); err != nil {
		return nil, err
	}

	var returnTime *time.Time
	if wasDeployed {
		travel, err := h.travelTime(ctx, targetID, ship.HomePlanetID)
		if err != nil {
			return nil, err
		}
		t := now.Add(travel)
		returnTime = &t
		payload := scheduler.CapitalShipPayload{CapitalShipID: ship.ID}
		if _, err := h.scheduler.Schedule(ctx, scheduler.KindCapitalShipReturn, payload, t); err != nil {
			return nil, err
		}
	}
	if err := h.ships.Update(ctx, ship); err != nil {
		return nil, fmt.Errorf("failed to persist recall: %w", err)
	}

	common.LoggerFromContext(ctx).Log("info", "capital ship recalled", map[string]interface{}{
		"shipId":      ship.ID,
		"wasDeployed": wasDeployed,
	})
	return &RecallShipResponse{Ship: ship, ReturnTime: returnTime}, nil
}

func (h *TravelHandler) loadOwned(ctx context.Context, shipID string, userID int) (*capitalship.CapitalShip, error) {
	ship, err := h.ships.FindByID(ctx, shipID)
	if err != nil {
		return nil, err
	}
	if ship.UserID != userID {
		return nil, shared.NewNotOwnedError("capital ship", shipID, userID)
	}
	return ship, nil
}

// travelTime books the trip between two planets at the capital ship's speed,
// a configured fraction of the standard fleet speed.
func (h *TravelHandler) travelTime(ctx context.Context, fromID, toID uint) (time.Duration, error) {
	from, err := h.planets.FindByID(ctx, fromID)
	if err != nil {
		return 0, err
	}
	to, err := h.planets.FindByID(ctx, toID)
	if err != nil {
		return 0, err
	}
	speed := h.game.StandardFleetSpeed * h.game.CapitalShipSpeedFraction
	return shared.TravelTime(from.Position.DistanceTo(to.Position), speed), nil
}
