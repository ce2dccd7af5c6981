package capitalship

import (
	"context"
	"fmt"

	"github.com/stellardrift/stellardrift-go/internal/application/common"
	appscheduler "github.com/stellardrift/stellardrift-go/internal/application/scheduler"
	"github.com/stellardrift/stellardrift-go/internal/domain/capitalship"
	"github.com/stellardrift/stellardrift-go/internal/domain/player"
	"github.com/stellardrift/stellardrift-go/internal/domain/scheduler"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
	"github.com/stellardrift/stellardrift-go/internal/infrastructure/config"
)

// TaskHandlers bundles the three scheduled capital-ship effects. Each one
// gates on the ship's status, so stale and duplicate deliveries no-op: a
// recall-before-arrival leaves the arrival task firing at a READY ship,
// which the gate absorbs.
type TaskHandlers struct {
	ships         capitalship.Repository
	notifications player.NotificationRepository
	scheduler     *appscheduler.Service
	game          config.GameConfig
	clock         shared.Clock
}

// NewTaskHandlers creates the scheduled-effect handlers
func NewTaskHandlers(
	ships capitalship.Repository,
	notifications player.NotificationRepository,
	sched *appscheduler.Service,
	game config.GameConfig,
	clock shared.Clock,
) *TaskHandlers {
	return &TaskHandlers{ships: ships, notifications: notifications, scheduler: sched, game: game, clock: clock}
}

// HandleArrival processes capitalShip.arrival: TRAVELING -> DEPLOYED, then
// books the commitment-end task for the window that starts now.
func (h *TaskHandlers) HandleArrival(ctx context.Context, task *scheduler.Task) error {
	ship, done, err := h.load(ctx, task)
	if ship == nil || done {
		return err
	}

	now := h.clock.Now()
	applyPassiveHeal(ship, h.game, now)
	if err := ship.Arrive(now); err != nil {
		h.skip(ctx, ship, "arrival")
		return nil
	}
	if err := h.ships.Update(ctx, ship); err != nil {
		return fmt.Errorf("failed to persist ship arrival: %w", err)
	}

	payload := scheduler.CapitalShipPayload{CapitalShipID: ship.ID}
	if _, err := h.scheduler.Schedule(ctx, scheduler.KindCommitmentEnd, payload, *ship.CommitmentEndsAt); err != nil {
		return err
	}
	h.notify(ctx, ship, "capitalShip.arrived",
		fmt.Sprintf("%s arrived at planet %d", ship.Name, ship.TargetPlanetID))
	return nil
}

// HandleReturn processes capitalShip.return: RETURNING -> READY
func (h *TaskHandlers) HandleReturn(ctx context.Context, task *scheduler.Task) error {
	ship, done, err := h.load(ctx, task)
	if ship == nil || done {
		return err
	}

	now := h.clock.Now()
	applyPassiveHeal(ship, h.game, now)
	if err := ship.CompleteReturn(); err != nil {
		h.skip(ctx, ship, "return")
		return nil
	}
	if err := h.ships.Update(ctx, ship); err != nil {
		return fmt.Errorf("failed to persist ship return: %w", err)
	}
	h.notify(ctx, ship, "capitalShip.returned",
		fmt.Sprintf("%s docked at its home planet", ship.Name))
	return nil
}

// HandleCommitmentEnd processes capitalShip.commitmentEnd: the deployed ship
// becomes recall-eligible. It does not auto-return; the owner decides.
func (h *TaskHandlers) HandleCommitmentEnd(ctx context.Context, task *scheduler.Task) error {
	ship, done, err := h.load(ctx, task)
	if ship == nil || done {
		return err
	}

	if err := ship.MarkCommitmentEnded(); err != nil {
		h.skip(ctx, ship, "commitment end")
		return nil
	}
	if err := h.ships.Update(ctx, ship); err != nil {
		return fmt.Errorf("failed to persist commitment end: %w", err)
	}
	h.notify(ctx, ship, "capitalShip.commitmentEnded",
		fmt.Sprintf("%s completed its commitment and can be recalled", ship.Name))
	return nil
}

// load resolves the task's ship. A missing ship (salvaged while the task sat
// in the queue) completes the task without an effect.
func (h *TaskHandlers) load(ctx context.Context, task *scheduler.Task) (*capitalship.CapitalShip, bool, error) {
	var payload scheduler.CapitalShipPayload
	if err := task.DecodePayload(&payload); err != nil {
		return nil, false, err
	}
	ship, err := h.ships.FindByID(ctx, payload.CapitalShipID)
	if err != nil {
		if shared.IsNotFound(err) {
			common.LoggerFromContext(ctx).Log("warn", "task for missing capital ship, skipping", map[string]interface{}{
				"shipId": payload.CapitalShipID,
				"kind":   string(task.Kind),
			})
			return nil, true, nil
		}
		return nil, false, err
	}
	return ship, false, nil
}

func (h *TaskHandlers) skip(ctx context.Context, ship *capitalship.CapitalShip, effect string) {
	common.LoggerFromContext(ctx).Log("info", "capital ship status gate absorbed stale task", map[string]interface{}{
		"shipId": ship.ID,
		"status": string(ship.Status),
		"effect": effect,
	})
}

func (h *TaskHandlers) notify(ctx context.Context, ship *capitalship.CapitalShip, kind, message string) {
	n := &player.Notification{
		UserID:    ship.UserID,
		Kind:      kind,
		Message:   message,
		CreatedAt: h.clock.Now().Unix(),
	}
	if err := h.notifications.Append(ctx, n); err != nil {
		common.LoggerFromContext(ctx).Log("warn", "failed to append notification", map[string]interface{}{
			"userId": ship.UserID,
			"error":  err.Error(),
		})
	}
}
