package planet

import (
	"fmt"
	"time"
)

// BuildingStatus is the construction state machine of a building.
//
//	CONSTRUCTING -> ACTIVE
//	ACTIVE -> UPGRADING -> ACTIVE
//	ACTIVE -> DEMOLISHING -> (deleted)
//
// At most one building per planet may be in a non-ACTIVE status at a time,
// enforced by the planet's single construction slot.
type BuildingStatus string

const (
	BuildingStatusConstructing BuildingStatus = "CONSTRUCTING"
	BuildingStatusActive       BuildingStatus = "ACTIVE"
	BuildingStatusUpgrading    BuildingStatus = "UPGRADING"
	BuildingStatusDemolishing  BuildingStatus = "DEMOLISHING"
)

// ErrInvalidBuildingTransition is returned for disallowed status moves
type ErrInvalidBuildingTransition struct {
	BuildingID uint
	From       BuildingStatus
	To         BuildingStatus
}

func (e *ErrInvalidBuildingTransition) Error() string {
	return fmt.Sprintf("building %d: cannot transition %s -> %s", e.BuildingID, e.From, e.To)
}

// Building belongs to exactly one planet and occupies a square of grid cells
// derived from its type.
type Building struct {
	ID       uint
	PlanetID uint
	Type     string
	Level    int
	X        int
	Y        int
	Status   BuildingStatus
}

// IsOperational reports whether the building contributes to planet rates.
// Upgrading buildings keep producing at their current level; constructing and
// demolishing buildings contribute nothing.
func (b *Building) IsOperational() bool {
	return b.Status == BuildingStatusActive || b.Status == BuildingStatusUpgrading
}

// BeginUpgrade moves an active building into the upgrading state
func (b *Building) BeginUpgrade() error {
	if b.Status != BuildingStatusActive {
		return &ErrInvalidBuildingTransition{BuildingID: b.ID, From: b.Status, To: BuildingStatusUpgrading}
	}
	b.Status = BuildingStatusUpgrading
	return nil
}

// BeginDemolition moves an active building into the demolishing state
func (b *Building) BeginDemolition() error {
	if b.Status != BuildingStatusActive {
		return &ErrInvalidBuildingTransition{BuildingID: b.ID, From: b.Status, To: BuildingStatusDemolishing}
	}
	b.Status = BuildingStatusDemolishing
	return nil
}

// FinishConstruction activates the building, incrementing the level when the
// finished work was an upgrade.
func (b *Building) FinishConstruction() error {
	switch b.Status {
	case BuildingStatusConstructing:
		b.Status = BuildingStatusActive
	case BuildingStatusUpgrading:
		b.Level++
		b.Status = BuildingStatusActive
	default:
		return &ErrInvalidBuildingTransition{BuildingID: b.ID, From: b.Status, To: BuildingStatusActive}
	}
	return nil
}

// PlanetUnit is the stationed count of one unit type on one planet, unique
// per (planet, unit type). Count never goes negative; Defending tracks how
// many of the count are assigned to the defense layout.
type PlanetUnit struct {
	PlanetID  uint
	UnitType  string
	Count     int
	Defending int
}

// Reserve returns the units not assigned to defense
func (u *PlanetUnit) Reserve() int {
	return u.Count - u.Defending
}

// ConstructionSlot is the planet's single active build/upgrade/demolition.
// BuildingID points at the building being worked on.
type ConstructionSlot struct {
	BuildingID uint
	FinishTime time.Time
}
