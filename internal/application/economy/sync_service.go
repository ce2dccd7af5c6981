package economy

import (
	"context"
	"fmt"
	"math"

	"github.com/stellardrift/stellardrift-go/internal/application/common"
	"github.com/stellardrift/stellardrift-go/internal/domain/catalog"
	"github.com/stellardrift/stellardrift-go/internal/domain/planet"
	"github.com/stellardrift/stellardrift-go/internal/domain/player"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// SyncService is the lazy time-sync engine: the single entry point every
// mutating operation calls first. It materializes everything that should
// have happened since the planet was last observed - finished construction,
// resource accrual, desertion, queue completions - and persists the result
// in one atomic planet write.
type SyncService struct {
	planets planet.Repository
	users   player.UserRepository
	rates   *RateCalculator
	queues  *QueueReconciler
	catalog catalog.Catalog
	clock   shared.Clock
}

// NewSyncService creates the time-sync engine
func NewSyncService(
	planets planet.Repository,
	users player.UserRepository,
	rates *RateCalculator,
	queues *QueueReconciler,
	cat catalog.Catalog,
	clock shared.Clock,
) *SyncService {
	return &SyncService{
		planets: planets,
		users:   users,
		rates:   rates,
		queues:  queues,
		catalog: cat,
		clock:   clock,
	}
}

// SyncPlanet brings a planet's persisted state up to the current instant.
// Returns the updated planet, or the repository's not-found error untouched.
func (s *SyncService) SyncPlanet(ctx context.Context, planetID uint) (*planet.Planet, error) {
	p, err := s.planets.FindByID(ctx, planetID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	logger := common.LoggerFromContext(ctx)

	var owner *player.User
	ownerChanged := false
	loadOwner := func() *player.User {
		if owner != nil || p.NPC {
			return owner
		}
		u, err := s.users.FindByID(ctx, p.UserID)
		if err != nil {
			logger.Log("WARN", "planet owner not found, skipping user-side accrual", map[string]interface{}{
				"planet_id": p.ID, "user_id": p.UserID, "error": err.Error(),
			})
			return nil
		}
		owner = u
		return owner
	}

	// Finalize the construction slot if its work completed while unobserved
	if p.Construction != nil && !p.Construction.FinishTime.After(now) {
		if u := loadOwner(); s.finalizeConstruction(p, u) {
			ownerChanged = true
		}
	}

	// Rates reflect the just-finalized building list
	result := s.rates.Calculate(p)

	if !p.NPC {
		elapsed := now.Sub(p.LastResourceUpdate).Hours()
		if elapsed < 0 {
			elapsed = 0
		}

		for _, r := range shared.PlanetResources {
			accrued := p.Resource(r) + result.Rates[r]*elapsed
			p.SetResource(r, shared.Clamp(accrued, 0, result.Effective.MaxStorage))
		}

		// Food consumption, then desertion if the balance went negative
		p.Food -= result.FoodConsumption * elapsed
		if p.Food < 0 && result.FoodConsumption > 0 {
			s.applyDesertion(p, result, logger)
			p.Food = 0
		}

		// Global currencies accrue to the owning user; the planet carries no
		// credit or dark-matter balance of its own
		if result.CreditsPerHour > 0 || result.DarkMatterPerHour > 0 {
			if u := loadOwner(); u != nil {
				u.Credits += result.CreditsPerHour * elapsed
				u.DarkMatter += result.DarkMatterPerHour * elapsed
				ownerChanged = true
			}
		}

		s.queues.Reconcile(p, now)
	}

	p.LastResourceUpdate = now

	if err := s.planets.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to persist planet sync: %w", err)
	}
	if ownerChanged && owner != nil {
		if err := s.users.Update(ctx, owner); err != nil {
			return nil, fmt.Errorf("failed to persist owner accrual: %w", err)
		}
	}

	return p, nil
}

// Rates recomputes the planet's current rates without mutating anything
func (s *SyncService) Rates(p *planet.Planet) RateResult {
	return s.rates.Calculate(p)
}

// finalizeConstruction resolves the completed construction slot: activates
// or upgrades the building (or deletes it on demolition), awards XP, and
// adjusts the defense-level counter for defense-class buildings. Reports
// whether the owner was mutated.
func (s *SyncService) finalizeConstruction(p *planet.Planet, owner *player.User) bool {
	slot := p.Construction
	p.Construction = nil

	b := p.FindBuilding(slot.BuildingID)
	if b == nil {
		return false
	}

	info := s.catalog.BuildingInfo(b.Type)

	if b.Status == planet.BuildingStatusDemolishing {
		if info != nil && info.Class == catalog.ClassDefense {
			if stats := s.catalog.LevelStats(b.Type, b.Level); stats != nil {
				p.DefenseLevel -= stats.DefenseLevels
				if p.DefenseLevel < 0 {
					p.DefenseLevel = 0
				}
			}
		}
		p.RemoveBuilding(b.ID)
		return false
	}

	if err := b.FinishConstruction(); err != nil {
		return false
	}

	if info != nil && info.Class == catalog.ClassDefense {
		if stats := s.catalog.LevelStats(b.Type, b.Level); stats != nil {
			p.DefenseLevel += stats.DefenseLevels
		}
	}

	if owner != nil {
		if stats := s.catalog.LevelStats(b.Type, b.Level); stats != nil && stats.XP > 0 {
			owner.AddXP(stats.XP)
			return true
		}
	}
	return false
}

// applyDesertion shrinks every stationed unit proportionally to the food
// shortfall: units the sustainable production cannot feed walk away.
func (s *SyncService) applyDesertion(p *planet.Planet, result RateResult, logger common.Logger) {
	sustainable := math.Max(0, result.Rates[shared.ResourceFood])
	if result.FoodConsumption <= sustainable {
		return
	}
	ratio := sustainable / result.FoodConsumption

	for _, u := range p.Units {
		u.Count = int(math.Floor(float64(u.Count) * ratio))
		if u.Count < 0 {
			u.Count = 0
		}
		if u.Defending > u.Count {
			u.Defending = u.Count
		}
	}
	p.PruneEmptyUnits()

	logger.Log("INFO", "desertion event resolved food deficit", map[string]interface{}{
		"planet_id":    p.ID,
		"deficitRatio": ratio,
	})
}
