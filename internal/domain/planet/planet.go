// Package planet holds the Planet aggregate: the owned resource/production
// unit of the economy. Planets are mutated only through the time-sync engine
// and the command handlers built on it; that single-writer discipline is what
// the task handlers' idempotency scheme depends on.
package planet

import (
	"time"

	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// Planet is the aggregate root. Resource balances are clamped to
// [0, maxStorage] on every sync, except food which may transiently go
// negative inside a sync before desertion resolves it back to zero.
type Planet struct {
	ID     uint
	UserID int
	Name   string
	NPC    bool

	Position   shared.Position
	GridWidth  int
	GridHeight int

	Carbon   float64
	Titanium float64
	Food     float64

	TaxRate int // percent, 0-100

	LastResourceUpdate time.Time

	// Single construction slot: nil when idle
	Construction *ConstructionSlot

	Buildings []*Building
	Units     []*PlanetUnit
	Tools     shared.Amounts // manufactured tools in planet inventory, keyed by tool type (as Resource-style keys)

	RecruitmentQueue   []QueueEntry
	ManufacturingQueue []QueueEntry
	TurretQueue        []QueueEntry

	// DefenseLevel aggregates the defense contributions of turret-class
	// buildings; adjusted when such a building finishes or is demolished.
	DefenseLevel int

	// AttackCount tracks attacks landed on an NPC planet since its last
	// respawn. Reaching the configured maximum schedules a respawn exactly
	// once.
	AttackCount int

	Version int
}

// IsBuilding reports whether the construction slot is occupied
func (p *Planet) IsBuilding() bool {
	return p.Construction != nil
}

// FindBuilding returns the building with the given id, nil when absent
func (p *Planet) FindBuilding(id uint) *Building {
	for _, b := range p.Buildings {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// RemoveBuilding deletes a building from the aggregate
func (p *Planet) RemoveBuilding(id uint) {
	for i, b := range p.Buildings {
		if b.ID == id {
			p.Buildings = append(p.Buildings[:i], p.Buildings[i+1:]...)
			return
		}
	}
}

// Unit returns the stationed row for a unit type, nil when absent
func (p *Planet) Unit(unitType string) *PlanetUnit {
	for _, u := range p.Units {
		if u.UnitType == unitType {
			return u
		}
	}
	return nil
}

// AddUnits credits stationed units, creating the row on first use
func (p *Planet) AddUnits(unitType string, count int) {
	if count <= 0 {
		return
	}
	if u := p.Unit(unitType); u != nil {
		u.Count += count
		return
	}
	p.Units = append(p.Units, &PlanetUnit{PlanetID: p.ID, UnitType: unitType, Count: count})
}

// RemoveUnits debits stationed units, rejecting overdrafts. Defending
// assignments shrink if the remaining count no longer covers them.
func (p *Planet) RemoveUnits(unitType string, count int) error {
	u := p.Unit(unitType)
	if u == nil || u.Count < count {
		have := 0
		if u != nil {
			have = u.Count
		}
		return shared.NewInsufficientResourcesError(shared.Resource(unitType), count, have)
	}
	u.Count -= count
	if u.Defending > u.Count {
		u.Defending = u.Count
	}
	return nil
}

// PruneEmptyUnits drops zero-count rows
func (p *Planet) PruneEmptyUnits() {
	kept := p.Units[:0]
	for _, u := range p.Units {
		if u.Count > 0 {
			kept = append(kept, u)
		}
	}
	p.Units = kept
}

// Resource returns the balance for a per-planet resource
func (p *Planet) Resource(r shared.Resource) float64 {
	switch r {
	case shared.ResourceCarbon:
		return p.Carbon
	case shared.ResourceTitanium:
		return p.Titanium
	case shared.ResourceFood:
		return p.Food
	default:
		return 0
	}
}

// SetResource overwrites the balance for a per-planet resource
func (p *Planet) SetResource(r shared.Resource, v float64) {
	switch r {
	case shared.ResourceCarbon:
		p.Carbon = v
	case shared.ResourceTitanium:
		p.Titanium = v
	case shared.ResourceFood:
		p.Food = v
	}
}

// SpendResources deducts a cost from the planet's balances after verifying
// every resource is covered, so a failed spend mutates nothing.
func (p *Planet) SpendResources(cost shared.Amounts) error {
	for _, r := range shared.PlanetResources {
		need := float64(cost.Get(r))
		if need > 0 && p.Resource(r) < need {
			return shared.NewInsufficientResourcesError(r, cost.Get(r), int(p.Resource(r)))
		}
	}
	for _, r := range shared.PlanetResources {
		if need := float64(cost.Get(r)); need > 0 {
			p.SetResource(r, p.Resource(r)-need)
		}
	}
	return nil
}

// Queue returns a pointer to the slice backing one of the three work queues
func (p *Planet) Queue(kind QueueKind) *[]QueueEntry {
	switch kind {
	case QueueRecruitment:
		return &p.RecruitmentQueue
	case QueueManufacturing:
		return &p.ManufacturingQueue
	case QueueTurret:
		return &p.TurretQueue
	default:
		return nil
	}
}

// QueueTail returns the finish time of the last entry in a queue, or now
// when the queue is empty. New entries chain their start to this value.
func (p *Planet) QueueTail(kind QueueKind, now time.Time) time.Time {
	q := p.Queue(kind)
	if q == nil || len(*q) == 0 {
		return now
	}
	return (*q)[len(*q)-1].FinishTime
}

// FitsGrid reports whether a building footprint lies inside the grid.
// Overlap against existing buildings is checked by the construction handler,
// which knows the per-type sizes from the catalog.
func (p *Planet) FitsGrid(x, y, size int) bool {
	if x < 0 || y < 0 || x+size > p.GridWidth || y+size > p.GridHeight {
		return false
	}
	return true
}
