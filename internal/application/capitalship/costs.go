// Package capitalship implements the capital-ship lifecycle: phased donation
// construction and repair, deployment with a commitment window, garrison
// transfers, damage, salvage and the scheduled travel handlers.
package capitalship

import (
	"time"

	"github.com/stellardrift/stellardrift-go/internal/domain/capitalship"
	"github.com/stellardrift/stellardrift-go/internal/domain/catalog"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
	"github.com/stellardrift/stellardrift-go/internal/infrastructure/config"
)

// totalConstructionCost sums the donation requirements across all phases
func totalConstructionCost(stats *catalog.CapitalShipStats) shared.Amounts {
	total := shared.Amounts{}
	for _, phase := range stats.Phases {
		total = total.Add(phase.Cost)
	}
	return total
}

// repairPhaseCost is the per-phase requirement of a full reconstruction:
// the whole construction cost scaled down, split evenly across the repair
// phases.
func repairPhaseCost(stats *catalog.CapitalShipStats, game config.GameConfig) shared.Amounts {
	phases := stats.RepairPhases
	if phases < 1 {
		phases = 1
	}
	return totalConstructionCost(stats).Scale(game.RepairCostMultiplier / float64(phases))
}

// hullHealCost prices restoring the missing hull fraction. Dark matter never
// enters hull work; only planet resources and credits are charged.
func hullHealCost(ship *capitalship.CapitalShip, stats *catalog.CapitalShipStats, game config.GameConfig) shared.Amounts {
	if ship.MaxHP <= 0 {
		return shared.Amounts{}
	}
	fraction := ship.MissingHP() / ship.MaxHP
	cost := shared.Amounts{}
	for r, amount := range totalConstructionCost(stats) {
		if r == shared.ResourceDarkMatter {
			continue
		}
		scaled := int(float64(amount) * fraction * game.HPRepairCostMultiplier)
		if scaled > 0 {
			cost[r] = scaled
		}
	}
	return cost
}

// applyPassiveHeal accrues the lazy per-hour hull regeneration since the last
// observation point. Safe to call in any status; ineligible statuses only
// advance the bookkeeping timestamp.
func applyPassiveHeal(ship *capitalship.CapitalShip, game config.GameConfig, now time.Time) {
	if ship.LastHealTime.IsZero() {
		ship.LastHealTime = now
		return
	}
	elapsed := now.Sub(ship.LastHealTime)
	if elapsed <= 0 {
		return
	}
	if ship.PassiveHealEligible() && game.PassiveHealPerHour > 0 {
		ship.Heal(ship.MaxHP * game.PassiveHealPerHour * elapsed.Hours())
	}
	ship.LastHealTime = now
}
