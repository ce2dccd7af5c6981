package capitalship

import (
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// Garrison is the ship's on-board inventory of troops, tools and loot.
// Transfers against it are all-or-nothing: a request that would exceed a
// capacity or overdraw a source is rejected before anything moves.
type Garrison struct {
	Troops shared.Amounts `json:"troops"`
	Tools  shared.Amounts `json:"tools"`
	Loot   shared.Amounts `json:"loot"`
}

// NewGarrison returns an empty garrison
func NewGarrison() Garrison {
	return Garrison{Troops: shared.Amounts{}, Tools: shared.Amounts{}, Loot: shared.Amounts{}}
}

// TroopsTotal is the occupied troop capacity
func (g *Garrison) TroopsTotal() int { return g.Troops.Total() }

// ToolsTotal is the occupied tool capacity
func (g *Garrison) ToolsTotal() int { return g.Tools.Total() }

// LoadTroops adds troops after checking capacity for the whole request
func (g *Garrison) LoadTroops(unitType string, count, capacity int) error {
	if count <= 0 {
		return shared.NewValidationError("count", "must be positive")
	}
	if g.TroopsTotal()+count > capacity {
		return shared.NewCapacityExceededError("troop", count, g.TroopsTotal(), capacity)
	}
	if g.Troops == nil {
		g.Troops = shared.Amounts{}
	}
	g.Troops[shared.Resource(unitType)] += count
	return nil
}

// UnloadTroops removes troops, rejecting overdrafts
func (g *Garrison) UnloadTroops(unitType string, count int) error {
	if count <= 0 {
		return shared.NewValidationError("count", "must be positive")
	}
	have := g.Troops.Get(shared.Resource(unitType))
	if have < count {
		return shared.NewInsufficientResourcesError(shared.Resource(unitType), count, have)
	}
	g.Troops[shared.Resource(unitType)] -= count
	if g.Troops[shared.Resource(unitType)] == 0 {
		delete(g.Troops, shared.Resource(unitType))
	}
	return nil
}

// LoadTools adds tools after checking capacity for the whole request
func (g *Garrison) LoadTools(toolType string, count, capacity int) error {
	if count <= 0 {
		return shared.NewValidationError("count", "must be positive")
	}
	if g.ToolsTotal()+count > capacity {
		return shared.NewCapacityExceededError("tool", count, g.ToolsTotal(), capacity)
	}
	if g.Tools == nil {
		g.Tools = shared.Amounts{}
	}
	g.Tools[shared.Resource(toolType)] += count
	return nil
}

// UnloadTools removes tools, rejecting overdrafts
func (g *Garrison) UnloadTools(toolType string, count int) error {
	if count <= 0 {
		return shared.NewValidationError("count", "must be positive")
	}
	have := g.Tools.Get(shared.Resource(toolType))
	if have < count {
		return shared.NewInsufficientResourcesError(shared.Resource(toolType), count, have)
	}
	g.Tools[shared.Resource(toolType)] -= count
	if g.Tools[shared.Resource(toolType)] == 0 {
		delete(g.Tools, shared.Resource(toolType))
	}
	return nil
}
