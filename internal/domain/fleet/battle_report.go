package fleet

import (
	"time"

	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// BattleReport is the persisted record of one resolved combat. Loot values
// here are what was actually transferred, which may be less than what combat
// calculated if the defender's balance dropped while the fleet was in flight.
type BattleReport struct {
	ID             string
	FleetID        string
	AttackerUserID int
	DefenderUserID int
	TargetPlanetID uint
	Winner         string // "attacker" or "defender"
	AttackerLosses shared.Amounts
	DefenderLosses shared.Amounts
	Loot           shared.Amounts
	FoughtAt       time.Time
}
