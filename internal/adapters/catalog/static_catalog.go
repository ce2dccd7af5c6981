// Package catalog provides the balance-table implementation of the domain
// catalog port, loaded from a YAML document. The default tables ship
// embedded in the binary; deployments can override them with a file.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stellardrift/stellardrift-go/internal/domain/catalog"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

//go:embed balance.yaml
var defaultBalance []byte

type levelDoc struct {
	Cost              map[string]int `yaml:"cost"`
	BuildSeconds      int            `yaml:"buildSeconds"`
	XP                int            `yaml:"xp"`
	Produces          string         `yaml:"produces"`
	ProductionPerHour float64        `yaml:"productionPerHour"`
	Population        int            `yaml:"population"`
	StabilityPenalty  float64        `yaml:"stabilityPenalty"`
	Stability         float64        `yaml:"stability"`
	Workers           int            `yaml:"workers"`
	StorageCapacity   float64        `yaml:"storageCapacity"`
	DefenseLevels     int            `yaml:"defenseLevels"`
}

type buildingDoc struct {
	Class  string     `yaml:"class"`
	Size   int        `yaml:"size"`
	Levels []levelDoc `yaml:"levels"`
}

type unitDoc struct {
	Cost          map[string]int `yaml:"cost"`
	TrainSeconds  int            `yaml:"trainSeconds"`
	FoodUpkeep    float64        `yaml:"foodUpkeep"`
	SpeedPerHour  float64        `yaml:"speedPerHour"`
	Attack        int            `yaml:"attack"`
	Defense       int            `yaml:"defense"`
	CargoCapacity int            `yaml:"cargoCapacity"`
}

type toolDoc struct {
	Cost         map[string]int `yaml:"cost"`
	BuildSeconds int            `yaml:"buildSeconds"`
}

type phaseDoc struct {
	Name          string         `yaml:"name"`
	Cost          map[string]int `yaml:"cost"`
	HullBonus     float64        `yaml:"hullBonus"`
	ShieldBonus   float64        `yaml:"shieldBonus"`
	TroopCapacity int            `yaml:"troopCapacity"`
	ToolCapacity  int            `yaml:"toolCapacity"`
}

type capitalShipDoc struct {
	MaxHP        float64    `yaml:"maxHp"`
	RepairPhases int        `yaml:"repairPhases"`
	Phases       []phaseDoc `yaml:"phases"`
}

type balanceDoc struct {
	Buildings   map[string]buildingDoc `yaml:"buildings"`
	Units       map[string]unitDoc     `yaml:"units"`
	Tools       map[string]toolDoc     `yaml:"tools"`
	CapitalShip capitalShipDoc         `yaml:"capitalShip"`
}

// StaticCatalog implements catalog.Catalog from parsed balance tables.
// All lookups are reads on immutable data and safe for concurrent use.
type StaticCatalog struct {
	buildings map[string]catalog.BuildingInfo
	levels    map[string][]catalog.LevelStats
	units     map[string]catalog.UnitStats
	tools     map[string]catalog.ToolStats
	ship      catalog.CapitalShipStats
}

// NewDefaultCatalog parses the embedded balance tables
func NewDefaultCatalog() (*StaticCatalog, error) {
	return Parse(defaultBalance)
}

// LoadCatalog reads balance tables from a file, falling back to the embedded
// defaults when path is empty.
func LoadCatalog(path string) (*StaticCatalog, error) {
	if path == "" {
		return NewDefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a catalog from a YAML document
func Parse(data []byte) (*StaticCatalog, error) {
	var doc balanceDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse balance tables: %w", err)
	}

	c := &StaticCatalog{
		buildings: make(map[string]catalog.BuildingInfo, len(doc.Buildings)),
		levels:    make(map[string][]catalog.LevelStats, len(doc.Buildings)),
		units:     make(map[string]catalog.UnitStats, len(doc.Units)),
		tools:     make(map[string]catalog.ToolStats, len(doc.Tools)),
	}
	for buildingType, b := range doc.Buildings {
		if len(b.Levels) == 0 {
			return nil, fmt.Errorf("building %q has no levels", buildingType)
		}
		c.buildings[buildingType] = catalog.BuildingInfo{
			Type:     buildingType,
			Class:    catalog.BuildingClass(b.Class),
			Size:     b.Size,
			MaxLevel: len(b.Levels),
		}
		levels := make([]catalog.LevelStats, 0, len(b.Levels))
		for _, l := range b.Levels {
			levels = append(levels, catalog.LevelStats{
				Cost:              toAmounts(l.Cost),
				BuildSeconds:      l.BuildSeconds,
				XP:                l.XP,
				Produces:          shared.Resource(l.Produces),
				ProductionPerHour: l.ProductionPerHour,
				Population:        l.Population,
				StabilityPenalty:  l.StabilityPenalty,
				Stability:         l.Stability,
				Workers:           l.Workers,
				StorageCapacity:   l.StorageCapacity,
				DefenseLevels:     l.DefenseLevels,
			})
		}
		c.levels[buildingType] = levels
	}
	for unitType, u := range doc.Units {
		c.units[unitType] = catalog.UnitStats{
			Type:          unitType,
			Cost:          toAmounts(u.Cost),
			TrainSeconds:  u.TrainSeconds,
			FoodUpkeep:    u.FoodUpkeep,
			SpeedPerHour:  u.SpeedPerHour,
			Attack:        u.Attack,
			Defense:       u.Defense,
			CargoCapacity: u.CargoCapacity,
		}
	}
	for toolType, t := range doc.Tools {
		c.tools[toolType] = catalog.ToolStats{
			Type:         toolType,
			Cost:         toAmounts(t.Cost),
			BuildSeconds: t.BuildSeconds,
		}
	}
	c.ship = catalog.CapitalShipStats{
		MaxHP:        doc.CapitalShip.MaxHP,
		RepairPhases: doc.CapitalShip.RepairPhases,
	}
	for _, p := range doc.CapitalShip.Phases {
		c.ship.Phases = append(c.ship.Phases, catalog.CapitalShipPhase{
			Name:          p.Name,
			Cost:          toAmounts(p.Cost),
			HullBonus:     p.HullBonus,
			ShieldBonus:   p.ShieldBonus,
			TroopCapacity: p.TroopCapacity,
			ToolCapacity:  p.ToolCapacity,
		})
	}
	return c, nil
}

// BuildingInfo looks up a building type
func (c *StaticCatalog) BuildingInfo(buildingType string) *catalog.BuildingInfo {
	info, ok := c.buildings[buildingType]
	if !ok {
		return nil
	}
	return &info
}

// LevelStats looks up one level of one building type, 1-based
func (c *StaticCatalog) LevelStats(buildingType string, level int) *catalog.LevelStats {
	levels, ok := c.levels[buildingType]
	if !ok || level < 1 || level > len(levels) {
		return nil
	}
	stats := levels[level-1]
	return &stats
}

// UnitStats looks up a trainable unit type
func (c *StaticCatalog) UnitStats(unitType string) *catalog.UnitStats {
	stats, ok := c.units[unitType]
	if !ok {
		return nil
	}
	return &stats
}

// ToolStats looks up a manufacturable tool type
func (c *StaticCatalog) ToolStats(toolType string) *catalog.ToolStats {
	stats, ok := c.tools[toolType]
	if !ok {
		return nil
	}
	return &stats
}

// CapitalShipStats returns the capital ship balance tables
func (c *StaticCatalog) CapitalShipStats() *catalog.CapitalShipStats {
	if len(c.ship.Phases) == 0 {
		return nil
	}
	stats := c.ship
	return &stats
}

func toAmounts(m map[string]int) shared.Amounts {
	amounts := make(shared.Amounts, len(m))
	for r, v := range m {
		amounts[shared.Resource(r)] = v
	}
	return amounts
}
