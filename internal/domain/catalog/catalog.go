// Package catalog defines the read-only game-balance lookup the engine
// consumes. The tables themselves (costs, production curves, level caps) are
// static configuration owned by an adapter; nothing in this package mutates.
package catalog

import (
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// BuildingClass groups building types by their economic role
type BuildingClass string

const (
	ClassProduction BuildingClass = "production" // produces a planet resource
	ClassHousing    BuildingClass = "housing"    // adds population, costs stability
	ClassStability  BuildingClass = "stability"  // adds stability
	ClassStorage    BuildingClass = "storage"    // raises max storage
	ClassDarkMatter BuildingClass = "dark_matter" // produces dark matter
	ClassDefense    BuildingClass = "defense"    // contributes to defense level
	ClassSpecial    BuildingClass = "special"
)

// LevelStats describes one level of one building type
type LevelStats struct {
	Cost              shared.Amounts
	BuildSeconds      int
	XP                int
	Produces          shared.Resource // zero value when the class does not produce
	ProductionPerHour float64
	Population        int     // housing: population provided
	StabilityPenalty  float64 // housing: absolute stability cost
	Stability         float64 // stability class: stability provided
	Workers           int     // production: population required for full output
	StorageCapacity   float64 // storage class: per-resource capacity added
	DefenseLevels     int     // defense class: defense levels contributed
}

// BuildingInfo describes a building type independent of level
type BuildingInfo struct {
	Type     string
	Class    BuildingClass
	Size     int // grid cells per side
	MaxLevel int
}

// UnitStats describes a trainable unit type
type UnitStats struct {
	Type          string
	Cost          shared.Amounts
	TrainSeconds  int
	FoodUpkeep    float64 // food consumed per unit per hour
	SpeedPerHour  float64 // map units per hour when part of a fleet
	Attack        int
	Defense       int
	CargoCapacity int
}

// ToolStats describes a manufacturable tool type
type ToolStats struct {
	Type         string
	Cost         shared.Amounts
	BuildSeconds int
}

// CapitalShipPhase describes one donation milestone of capital-ship
// construction. Defense bonuses unlock by highest phase completed.
type CapitalShipPhase struct {
	Name          string
	Cost          shared.Amounts
	HullBonus     float64
	ShieldBonus   float64
	TroopCapacity int
	ToolCapacity  int
}

// CapitalShipStats describes the capital-ship balance tables
type CapitalShipStats struct {
	MaxHP        float64
	Phases       []CapitalShipPhase
	RepairPhases int // repair splits the scaled cost into this many phases
}

// Catalog is the read-only balance-table lookup consumed by the engine.
// Lookups return nil when the type or level does not exist; callers translate
// that into a validation error.
type Catalog interface {
	BuildingInfo(buildingType string) *BuildingInfo
	LevelStats(buildingType string, level int) *LevelStats
	UnitStats(unitType string) *UnitStats
	ToolStats(toolType string) *ToolStats
	CapitalShipStats() *CapitalShipStats
}
