package economy

import (
	"math"

	"github.com/stellardrift/stellardrift-go/internal/domain/catalog"
	"github.com/stellardrift/stellardrift-go/internal/domain/planet"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
	"github.com/stellardrift/stellardrift-go/internal/infrastructure/config"
)

// EffectiveConfig is the planet configuration resolved once per sync and
// shared by every consumer, instead of each call site re-deriving grid size,
// storage and population from scattered optional fields.
type EffectiveConfig struct {
	GridWidth       int
	GridHeight      int
	MaxStorage      float64
	Population      int
	RequiredWorkers int
}

// BuildingRate is the per-building production breakdown carried for UI and
// test reproducibility.
type BuildingRate struct {
	BuildingID uint
	Type       string
	Level      int
	Resource   shared.Resource
	PerHour    float64
}

// RateResult is the output of one rate calculation: current per-hour rates
// and the derived stats they were computed from.
type RateResult struct {
	Rates               map[shared.Resource]float64 // production per hour, pre-consumption
	FoodConsumption     float64                     // per hour
	NetFood             float64                     // production − consumption
	CreditsPerHour      float64
	DarkMatterPerHour   float64
	Stability           float64
	Productivity        float64 // percent multiplier
	WorkforceEfficiency float64
	Effective           EffectiveConfig
	Breakdown           []BuildingRate
}

// RateCalculator derives current per-hour rates from a planet snapshot.
// Calculate is pure: no I/O, no mutation of the snapshot.
type RateCalculator struct {
	catalog catalog.Catalog
	game    config.GameConfig
}

// NewRateCalculator creates a rate calculator
func NewRateCalculator(cat catalog.Catalog, game config.GameConfig) *RateCalculator {
	return &RateCalculator{catalog: cat, game: game}
}

// ResolveEffectiveConfig derives the effective planet configuration from the
// snapshot and the balance tables.
func (c *RateCalculator) ResolveEffectiveConfig(p *planet.Planet) EffectiveConfig {
	eff := EffectiveConfig{
		GridWidth:  p.GridWidth,
		GridHeight: p.GridHeight,
		MaxStorage: c.game.BaseStorage,
	}
	for _, b := range p.Buildings {
		if !b.IsOperational() {
			continue
		}
		info := c.catalog.BuildingInfo(b.Type)
		stats := c.catalog.LevelStats(b.Type, b.Level)
		if info == nil || stats == nil {
			continue
		}
		switch info.Class {
		case catalog.ClassStorage:
			eff.MaxStorage += stats.StorageCapacity
		case catalog.ClassHousing:
			eff.Population += stats.Population
		case catalog.ClassProduction:
			eff.RequiredWorkers += stats.Workers
		}
	}
	return eff
}

// Calculate computes the planet's current rates.
//
// The stability curve is deliberately asymmetric: positive stability yields a
// diminishing bonus, negative stability a harsher diminishing penalty that
// never reaches zero output.
func (c *RateCalculator) Calculate(p *planet.Planet) RateResult {
	eff := c.ResolveEffectiveConfig(p)

	buildingTotals := map[shared.Resource]float64{}
	var stabilityBonus, stabilityPenalty, darkMatter float64
	var breakdown []BuildingRate

	for _, b := range p.Buildings {
		if !b.IsOperational() {
			continue
		}
		info := c.catalog.BuildingInfo(b.Type)
		stats := c.catalog.LevelStats(b.Type, b.Level)
		if info == nil || stats == nil {
			continue
		}
		switch info.Class {
		case catalog.ClassProduction:
			buildingTotals[stats.Produces] += stats.ProductionPerHour
			breakdown = append(breakdown, BuildingRate{
				BuildingID: b.ID, Type: b.Type, Level: b.Level,
				Resource: stats.Produces, PerHour: stats.ProductionPerHour,
			})
		case catalog.ClassHousing:
			stabilityPenalty += math.Abs(stats.StabilityPenalty)
		case catalog.ClassStability:
			stabilityBonus += stats.Stability
		case catalog.ClassDarkMatter:
			darkMatter += stats.ProductionPerHour
			breakdown = append(breakdown, BuildingRate{
				BuildingID: b.ID, Type: b.Type, Level: b.Level,
				Resource: shared.ResourceDarkMatter, PerHour: stats.ProductionPerHour,
			})
		}
	}

	stability := stabilityBonus - stabilityPenalty - float64(p.TaxRate)*2

	var productivity float64
	if stability >= 0 {
		productivity = 100 + 2*math.Sqrt(stability)
	} else {
		productivity = 100 * 100 / (100 + 2*math.Sqrt(-stability))
	}

	efficiency := c.workforceEfficiency(eff.Population, eff.RequiredWorkers)

	rates := make(map[shared.Resource]float64, len(shared.PlanetResources))
	for _, r := range shared.PlanetResources {
		base := c.game.BaseProductionPerHour + buildingTotals[r]
		rates[r] = base * efficiency * (productivity / 100)
	}

	var consumption float64
	for _, u := range p.Units {
		if stats := c.catalog.UnitStats(u.UnitType); stats != nil {
			consumption += float64(u.Count) * stats.FoodUpkeep
		}
	}

	credits := float64(eff.Population) * (float64(p.TaxRate) / 100) * c.game.CreditsPerPopulation

	return RateResult{
		Rates:               rates,
		FoodConsumption:     consumption,
		NetFood:             rates[shared.ResourceFood] - consumption,
		CreditsPerHour:      credits,
		DarkMatterPerHour:   darkMatter, // immune to stability and workforce
		Stability:           stability,
		Productivity:        productivity,
		WorkforceEfficiency: efficiency,
		Effective:           eff,
		Breakdown:           breakdown,
	}
}

// workforceEfficiency maps staffing level to a production multiplier.
// Understaffed planets are floored, overstaffed planets get a logarithmic
// bonus capped at a fixed ceiling.
func (c *RateCalculator) workforceEfficiency(population, required int) float64 {
	if required <= 0 {
		return 1
	}
	ratio := math.Min(1, float64(population)/float64(required))
	bonus := 0.0
	if population > required {
		surplus := float64(population - required)
		bonus = math.Min(c.game.OverstaffBonusCap, math.Log10(1+surplus/float64(required))*0.15)
	}
	return math.Max(c.game.UnderstaffedFloor, ratio+bonus)
}
