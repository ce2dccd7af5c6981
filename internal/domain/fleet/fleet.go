package fleet

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// Status is the fleet state machine:
//
//	ENROUTE -> ARRIVED -> {RETURNING | DESTROYED | COMPLETED}
//	RETURNING -> COMPLETED
//
// ENROUTE and RETURNING are the only states a scheduled task may transition
// out of. A handler observing any other status treats its task as already
// processed and exits without mutating.
type Status string

const (
	StatusEnroute   Status = "ENROUTE"
	StatusArrived   Status = "ARRIVED"
	StatusReturning Status = "RETURNING"
	StatusDestroyed Status = "DESTROYED"
	StatusCompleted Status = "COMPLETED"
)

// Mission is what the fleet does on arrival
type Mission string

const (
	MissionAttack    Mission = "ATTACK"
	MissionTransport Mission = "TRANSPORT"
	MissionStation   Mission = "STATION"
)

// ErrInvalidTransition is returned for disallowed status moves
type ErrInvalidTransition struct {
	FleetID string
	From    Status
	To      Status
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("fleet %s: cannot transition %s -> %s", e.FleetID, e.From, e.To)
}

// Fleet is a unit/tool payload in transit between an origin planet and a
// destination (planet or capital ship).
type Fleet struct {
	ID           string
	UserID       int
	Mission      Mission
	Status       Status
	OriginID     uint
	TargetID     uint
	TargetShipID string // non-empty when the destination is a capital ship

	Units shared.Amounts // unit type -> count
	Tools shared.Amounts // tool type -> count
	Loot  shared.Amounts // resources carried (cargo or battle loot)

	// BorrowedDefense records units pulled from the origin's defense layout
	// to fill this fleet; restored on return up to what is then in reserve.
	BorrowedDefense shared.Amounts

	DepartedAt  time.Time
	ArrivalTime time.Time
	ReturnTime  time.Time

	Version int
}

// New creates an enroute fleet with a fresh id
func New(userID int, mission Mission, originID, targetID uint, units shared.Amounts) *Fleet {
	return &Fleet{
		ID:       uuid.New().String(),
		UserID:   userID,
		Mission:  mission,
		Status:   StatusEnroute,
		OriginID: originID,
		TargetID: targetID,
		Units:    units.Clone(),
		Tools:    shared.Amounts{},
		Loot:     shared.Amounts{},
	}
}

// MarkArrived gates the arrival task: only an ENROUTE fleet can arrive
func (f *Fleet) MarkArrived() error {
	if f.Status != StatusEnroute {
		return &ErrInvalidTransition{FleetID: f.ID, From: f.Status, To: StatusArrived}
	}
	f.Status = StatusArrived
	return nil
}

// BeginReturn sends the (post-arrival) fleet home
func (f *Fleet) BeginReturn() error {
	if f.Status != StatusArrived {
		return &ErrInvalidTransition{FleetID: f.ID, From: f.Status, To: StatusReturning}
	}
	f.Status = StatusReturning
	return nil
}

// MarkDestroyed records total loss in combat
func (f *Fleet) MarkDestroyed() error {
	if f.Status != StatusArrived {
		return &ErrInvalidTransition{FleetID: f.ID, From: f.Status, To: StatusDestroyed}
	}
	f.Status = StatusDestroyed
	return nil
}

// Complete gates the return task: only a RETURNING fleet can complete.
// Transport/station fleets that end their life at the destination complete
// directly from ARRIVED.
func (f *Fleet) Complete() error {
	if f.Status != StatusReturning && f.Status != StatusArrived {
		return &ErrInvalidTransition{FleetID: f.ID, From: f.Status, To: StatusCompleted}
	}
	f.Status = StatusCompleted
	return nil
}

// TotalUnits sums the unit payload
func (f *Fleet) TotalUnits() int {
	return f.Units.Total()
}

// ApplyLosses subtracts combat losses per unit type, flooring at zero, and
// returns the surviving count.
func (f *Fleet) ApplyLosses(losses shared.Amounts) int {
	for unitType, lost := range losses {
		have := f.Units.Get(unitType)
		if lost >= have {
			delete(f.Units, unitType)
		} else {
			f.Units[unitType] = have - lost
		}
	}
	return f.TotalUnits()
}
