package shared

import (
	"math"
	"time"
)

// Position is an immutable location on the galaxy map
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo calculates Euclidean distance to another position
func (p Position) DistanceTo(other Position) float64 {
	dx := other.X - p.X
	dy := other.Y - p.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// TravelTime converts a map distance and a speed (map units per hour) into a
// travel duration. Speed must be positive; a non-positive speed yields zero
// so callers can treat the move as instantaneous rather than dividing by zero.
//
// This is the single travel-time primitive: fleet dispatch, capital-ship
// deployment and return trips all route through it so the round-trip duration
// a return task is scheduled with always matches the outbound calculation.
func TravelTime(distance, speedPerHour float64) time.Duration {
	if speedPerHour <= 0 || distance <= 0 {
		return 0
	}
	hours := distance / speedPerHour
	return time.Duration(hours * float64(time.Hour))
}
