// Package capitalship holds the CapitalShip aggregate and its multi-phase
// lifecycle state machine. Capital ships exercise both halves of the engine:
// their construction is lazy phased donation, and their travel, commitment
// and salvage windows are all durable scheduled tasks gated on status.
package capitalship

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// Status is the capital-ship state machine:
//
//	CONSTRUCTING -> READY -> TRAVELING -> DEPLOYED -> RETURNING -> READY
//	DEPLOYED -> DAMAGED -> REPAIRING -> READY
//	DAMAGED -> (salvaged, deleted) after cooldown
//	TRAVELING -> READY (recall before arrival; the stale arrival task no-ops)
type Status string

const (
	StatusConstructing Status = "CONSTRUCTING"
	StatusReady        Status = "READY"
	StatusTraveling    Status = "TRAVELING"
	StatusDeployed     Status = "DEPLOYED"
	StatusReturning    Status = "RETURNING"
	StatusDamaged      Status = "DAMAGED"
	StatusRepairing    Status = "REPAIRING"
)

// ErrInvalidTransition is returned for disallowed status moves
type ErrInvalidTransition struct {
	ShipID string
	From   Status
	To     Status
	Reason string
}

func (e *ErrInvalidTransition) Error() string {
	msg := fmt.Sprintf("capital ship %s: cannot transition %s -> %s", e.ShipID, e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// CapitalShip is the aggregate root
type CapitalShip struct {
	ID     string
	UserID int
	Name   string
	Status Status

	HP    float64
	MaxHP float64

	HomePlanetID   uint
	TargetPlanetID uint // meaningful while TRAVELING or DEPLOYED
	Position       shared.Position

	// Commitment window while deployed
	CommitmentDays   int
	CommitmentEndsAt *time.Time
	RecallEligible   bool

	// Cooldown after destruction; gates repair start and salvage
	CooldownUntil *time.Time

	// Lazy passive-heal bookkeeping: healed amount depends on elapsed time
	// since this observation point, not a running clock.
	LastHealTime time.Time

	// HighestPhaseCompleted drives phase-derived defense bonuses. A ship
	// deployed after phase 1 flies as a glass cannon until later phases land.
	// Never decreases except through destruction resetting progress.
	HighestPhaseCompleted int

	Progress *BuildProgress // nil unless CONSTRUCTING or REPAIRING
	Garrison Garrison

	ArrivalTime *time.Time // scheduled travel completion, informational

	Version int
}

// New creates a ship in CONSTRUCTING with phase-1 requirements pending
func New(userID int, name string, homePlanetID uint, maxHP float64, phase1Cost shared.Amounts, totalPhases int) *CapitalShip {
	return &CapitalShip{
		ID:           uuid.New().String(),
		UserID:       userID,
		Name:         name,
		Status:       StatusConstructing,
		HP:           maxHP,
		MaxHP:        maxHP,
		HomePlanetID: homePlanetID,
		Progress:     NewBuildProgress(phase1Cost, totalPhases, false),
		Garrison:     NewGarrison(),
	}
}

// CompleteConstruction flips the ship to READY once all phases are donated.
// The progress record is cleared; HighestPhaseCompleted already reflects the
// final phase.
func (s *CapitalShip) CompleteConstruction() error {
	if s.Status != StatusConstructing && s.Status != StatusRepairing {
		return &ErrInvalidTransition{ShipID: s.ID, From: s.Status, To: StatusReady}
	}
	if s.Status == StatusRepairing {
		// Full reconstruction resets the hull and empties the garrison
		s.HP = s.MaxHP
		s.Garrison = NewGarrison()
	}
	s.Progress = nil
	s.Status = StatusReady
	return nil
}

// Deployable reports whether the ship can leave home. Deployment is allowed
// once phase 1 (airframe) is complete even if later phases remain.
func (s *CapitalShip) Deployable() bool {
	if s.Status == StatusReady {
		return true
	}
	return s.Status == StatusConstructing && s.HighestPhaseCompleted >= 1
}

// BeginDeployment sends the ship toward a target with a mandatory commitment
// window.
func (s *CapitalShip) BeginDeployment(targetPlanetID uint, commitmentDays int, arrival time.Time) error {
	if !s.Deployable() {
		return &ErrInvalidTransition{ShipID: s.ID, From: s.Status, To: StatusTraveling, Reason: "airframe phase not complete"}
	}
	if commitmentDays <= 0 {
		return shared.NewValidationError("commitmentDays", "a commitment option is required")
	}
	s.Status = StatusTraveling
	s.TargetPlanetID = targetPlanetID
	s.CommitmentDays = commitmentDays
	s.RecallEligible = false
	t := arrival
	s.ArrivalTime = &t
	return nil
}

// Arrive gates the travel-completion task: only a TRAVELING ship arrives
func (s *CapitalShip) Arrive(now time.Time) error {
	if s.Status != StatusTraveling {
		return &ErrInvalidTransition{ShipID: s.ID, From: s.Status, To: StatusDeployed}
	}
	s.Status = StatusDeployed
	s.ArrivalTime = nil
	end := now.Add(time.Duration(s.CommitmentDays) * 24 * time.Hour)
	s.CommitmentEndsAt = &end
	return nil
}

// Recall pulls the ship home. A deployed ship starts the return trip; a ship
// still traveling aborts in place and is immediately READY again, leaving
// its scheduled arrival task to fire into the status gate and do nothing.
func (s *CapitalShip) Recall() error {
	switch s.Status {
	case StatusDeployed:
		s.Status = StatusReturning
		s.CommitmentEndsAt = nil
		s.RecallEligible = false
		return nil
	case StatusTraveling:
		s.Status = StatusReady
		s.TargetPlanetID = 0
		s.ArrivalTime = nil
		return nil
	default:
		return &ErrInvalidTransition{ShipID: s.ID, From: s.Status, To: StatusReturning}
	}
}

// CompleteReturn gates the return task: only a RETURNING ship docks
func (s *CapitalShip) CompleteReturn() error {
	if s.Status != StatusReturning {
		return &ErrInvalidTransition{ShipID: s.ID, From: s.Status, To: StatusReady}
	}
	s.Status = StatusReady
	s.TargetPlanetID = 0
	s.ArrivalTime = nil
	return nil
}

// MarkCommitmentEnded flags the deployed ship recall-eligible. Fired by the
// commitment-end task; a ship no longer deployed makes this a no-op error
// the handler logs and swallows.
func (s *CapitalShip) MarkCommitmentEnded() error {
	if s.Status != StatusDeployed {
		return &ErrInvalidTransition{ShipID: s.ID, From: s.Status, To: s.Status, Reason: "commitment end for non-deployed ship"}
	}
	s.RecallEligible = true
	return nil
}

// TakeDamage applies combat damage. Reaching zero HP destroys the ship into
// DAMAGED: construction progress is wiped, bonuses reset, and a cooldown
// gates both repair and salvage.
func (s *CapitalShip) TakeDamage(amount float64, cooldown time.Duration, now time.Time) {
	if amount <= 0 {
		return
	}
	s.HP -= amount
	if s.HP > 0 {
		return
	}
	s.HP = 0
	s.Status = StatusDamaged
	s.Progress = nil
	s.HighestPhaseCompleted = 0
	s.CommitmentEndsAt = nil
	s.RecallEligible = false
	until := now.Add(cooldown)
	s.CooldownUntil = &until
}

// CooldownElapsed reports whether the post-destruction cooldown has passed
func (s *CapitalShip) CooldownElapsed(now time.Time) bool {
	return s.CooldownUntil == nil || !now.Before(*s.CooldownUntil)
}

// StartRepair begins phased reconstruction once the cooldown elapsed
func (s *CapitalShip) StartRepair(phase1Cost shared.Amounts, totalPhases int, now time.Time) error {
	if s.Status != StatusDamaged {
		return &ErrInvalidTransition{ShipID: s.ID, From: s.Status, To: StatusRepairing}
	}
	if !s.CooldownElapsed(now) {
		return &ErrInvalidTransition{ShipID: s.ID, From: s.Status, To: StatusRepairing, Reason: "cooldown not elapsed"}
	}
	s.Status = StatusRepairing
	s.CooldownUntil = nil
	s.Progress = NewBuildProgress(phase1Cost, totalPhases, true)
	return nil
}

// Salvageable reports whether the wreck can be scrapped
func (s *CapitalShip) Salvageable(now time.Time) bool {
	return s.Status == StatusDamaged && s.CooldownElapsed(now)
}

// MissingHP is the hull damage outstanding
func (s *CapitalShip) MissingHP() float64 {
	missing := s.MaxHP - s.HP
	if missing < 0 {
		return 0
	}
	return missing
}

// Heal restores hull up to MaxHP
func (s *CapitalShip) Heal(amount float64) {
	if amount <= 0 {
		return
	}
	s.HP = math.Min(s.MaxHP, s.HP+amount)
}

// PassiveHealEligible reports whether lazy per-hour healing applies.
// Wrecks, construction hulls and ships under reconstruction do not self-heal.
func (s *CapitalShip) PassiveHealEligible() bool {
	switch s.Status {
	case StatusReady, StatusTraveling, StatusDeployed, StatusReturning:
		return true
	default:
		return false
	}
}
