// Package combat provides a local implementation of the combat resolver
// port. Combat math is an external concern; this resolver exists so the
// engine runs standalone, with a deterministic strength comparison standing
// in for the real battle service.
package combat

import (
	"context"
	"math"

	"github.com/stellardrift/stellardrift-go/internal/domain/catalog"
	"github.com/stellardrift/stellardrift-go/internal/domain/fleet"
	"github.com/stellardrift/stellardrift-go/internal/domain/planet"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// LocalResolver resolves battles from the current fleet and defender state.
// Same inputs, same outcome; there is no randomness, which keeps retried
// arrival tasks from fighting a different battle.
type LocalResolver struct {
	fleets  fleet.Repository
	planets planet.Repository
	catalog catalog.Catalog
}

// NewLocalResolver creates a local combat resolver
func NewLocalResolver(fleets fleet.Repository, planets planet.Repository, cat catalog.Catalog) *LocalResolver {
	return &LocalResolver{fleets: fleets, planets: planets, catalog: cat}
}

// ResolveCombat fights the attack fleet against its target planet's defense
func (r *LocalResolver) ResolveCombat(ctx context.Context, fleetID string) (*fleet.CombatResult, error) {
	f, err := r.fleets.FindByID(ctx, fleetID)
	if err != nil {
		return nil, err
	}
	target, err := r.planets.FindByID(ctx, f.TargetID)
	if err != nil {
		return nil, err
	}

	attack := r.attackStrength(f)
	defense := r.defenseStrength(target)

	result := &fleet.CombatResult{
		AttackerLosses:  shared.Amounts{},
		DefenderLosses:  shared.Amounts{},
		ResourcesLooted: shared.Amounts{},
	}
	if attack > defense {
		result.Winner = "attacker"
		result.AttackerLosses = scaleLosses(f.Units, lossRatio(defense, attack))
		result.DefenderLosses = defenderUnits(target)
		// The winner claims a share of everything on the ground; the engine
		// clamps this to the balance at transfer time
		for _, res := range shared.PlanetResources {
			if amount := int(target.Resource(res) / 2); amount > 0 {
				result.ResourcesLooted[res] = amount
			}
		}
	} else {
		result.Winner = "defender"
		result.AttackerLosses = f.Units.Clone()
		result.DefenderLosses = scaleLosses(defendingUnits(target), lossRatio(attack, defense))
	}
	return result, nil
}

// attackStrength sums attack values, with disruption tools adding a flat bonus
func (r *LocalResolver) attackStrength(f *fleet.Fleet) float64 {
	strength := 0.0
	for unitType, count := range f.Units {
		if stats := r.catalog.UnitStats(string(unitType)); stats != nil {
			strength += float64(stats.Attack * count)
		}
	}
	strength += float64(f.Tools.Total()) * 5
	return strength
}

// defenseStrength sums defending-unit defense values plus the turret line
func (r *LocalResolver) defenseStrength(target *planet.Planet) float64 {
	strength := float64(target.DefenseLevel) * 50
	for _, u := range target.Units {
		if u.Defending <= 0 {
			continue
		}
		if stats := r.catalog.UnitStats(u.UnitType); stats != nil {
			strength += float64(stats.Defense * u.Defending)
		}
	}
	return strength
}

// lossRatio converts a strength gap into the winner's casualty fraction:
// a narrow win costs nearly half the force, a crushing one almost nothing.
func lossRatio(loser, winner float64) float64 {
	if winner <= 0 {
		return 0
	}
	return 0.5 * math.Min(1, loser/winner)
}

func scaleLosses(units shared.Amounts, ratio float64) shared.Amounts {
	losses := shared.Amounts{}
	for unitType, count := range units {
		if lost := int(float64(count) * ratio); lost > 0 {
			losses[unitType] = lost
		}
	}
	return losses
}

func defenderUnits(target *planet.Planet) shared.Amounts {
	units := shared.Amounts{}
	for _, u := range target.Units {
		if u.Count > 0 {
			units[shared.Resource(u.UnitType)] = u.Count
		}
	}
	return units
}

func defendingUnits(target *planet.Planet) shared.Amounts {
	units := shared.Amounts{}
	for _, u := range target.Units {
		if u.Defending > 0 {
			units[shared.Resource(u.UnitType)] = u.Defending
		}
	}
	return units
}
