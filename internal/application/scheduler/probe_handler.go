package scheduler

import (
	"context"
	"time"

	"github.com/stellardrift/stellardrift-go/internal/application/common"
	"github.com/stellardrift/stellardrift-go/internal/domain/scheduler"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// ProbeHandler executes probe.update ticks. The tick itself carries no game
// effect here; its job is the cadence: every delivery re-arms the next tick,
// so the chain survives restarts as long as one pending task exists.
type ProbeHandler struct {
	service  *Service
	interval time.Duration
	clock    shared.Clock
}

// NewProbeHandler creates a probe tick handler
func NewProbeHandler(service *Service, interval time.Duration, clock shared.Clock) *ProbeHandler {
	return &ProbeHandler{service: service, interval: interval, clock: clock}
}

// Handle re-arms the periodic probe tick
func (h *ProbeHandler) Handle(ctx context.Context, task *scheduler.Task) error {
	next := h.clock.Now().Add(h.interval)
	if _, err := h.service.Schedule(ctx, scheduler.KindProbeUpdate, scheduler.ProbeUpdatePayload{}, next); err != nil {
		return err
	}
	common.LoggerFromContext(ctx).Log("debug", "probe tick re-armed", map[string]interface{}{
		"nextRun": next,
	})
	return nil
}
