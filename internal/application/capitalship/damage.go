package capitalship

import (
	"context"
	"fmt"
	"time"

	"github.com/stellardrift/stellardrift-go/internal/application/common"
	"github.com/stellardrift/stellardrift-go/internal/domain/capitalship"
	"github.com/stellardrift/stellardrift-go/internal/domain/player"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
	"github.com/stellardrift/stellardrift-go/internal/infrastructure/config"
)

// ApplyCombatDamageCommand books combat damage against a ship. Issued by the
// combat collaborator after it resolves an engagement involving the ship;
// the engine only applies the number.
type ApplyCombatDamageCommand struct {
	ShipID string
	Damage float64
}

// ApplyCombatDamageResponse reports the hull state after the hit
type ApplyCombatDamageResponse struct {
	Ship      *capitalship.CapitalShip
	Destroyed bool
}

// DamageHandler applies combat damage and books destruction
type DamageHandler struct {
	ships         capitalship.Repository
	notifications player.NotificationRepository
	game          config.GameConfig
	clock         shared.Clock
}

// NewDamageHandler creates a damage handler
func NewDamageHandler(ships capitalship.Repository, notifications player.NotificationRepository, game config.GameConfig, clock shared.Clock) *DamageHandler {
	return &DamageHandler{ships: ships, notifications: notifications, game: game, clock: clock}
}

// Handle applies one damage booking
func (h *DamageHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ApplyCombatDamageCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if cmd.Damage <= 0 {
		return nil, shared.NewValidationError("damage", "damage must be positive")
	}

	ship, err := h.ships.FindByID(ctx, cmd.ShipID)
	if err != nil {
		return nil, err
	}
	now := h.clock.Now()
	applyPassiveHeal(ship, h.game, now)

	cooldown := time.Duration(h.game.DestructionCooldownHours) * time.Hour
	ship.TakeDamage(cmd.Damage, cooldown, now)
	destroyed := ship.Status == capitalship.StatusDamaged

	if err := h.ships.Update(ctx, ship); err != nil {
		return nil, fmt.Errorf("failed to persist ship damage: %w", err)
	}
	if destroyed {
		n := &player.Notification{
			UserID:    ship.UserID,
			Kind:      "capitalShip.destroyed",
			Message:   fmt.Sprintf("%s was destroyed in combat", ship.Name),
			CreatedAt: now.Unix(),
		}
		if err := h.notifications.Append(ctx, n); err != nil {
			common.LoggerFromContext(ctx).Log("warn", "failed to append notification", map[string]interface{}{
				"userId": ship.UserID,
				"error":  err.Error(),
			})
		}
	}
	return &ApplyCombatDamageResponse{Ship: ship, Destroyed: destroyed}, nil
}
