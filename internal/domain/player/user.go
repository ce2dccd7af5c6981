package player

import (
	"math"

	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// User owns the global currencies and progression state shared by all of a
// player's planets. Credits and dark matter live here exclusively; planets
// keep their own credit/dark-matter fields at zero to prevent
// double-accounting.
type User struct {
	ID         int
	Name       string
	Credits    float64
	DarkMatter float64
	XP         int
	Level      int

	Version int
}

// XPForLevel returns the cumulative XP required to reach a level.
// Quadratic curve: level n needs 500·n² XP beyond level 1.
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return 500 * (level - 1) * (level - 1)
}

// AddXPResult reports the outcome of an XP award
type AddXPResult struct {
	LeveledUp bool
	NewLevel  int
}

// AddXP credits experience and advances the level through any thresholds
// crossed by the award.
func (u *User) AddXP(amount int) AddXPResult {
	if amount < 0 {
		amount = 0
	}
	u.XP += amount

	leveled := false
	for u.XP >= XPForLevel(u.Level+1) {
		u.Level++
		leveled = true
	}
	return AddXPResult{LeveledUp: leveled, NewLevel: u.Level}
}

// SpendCredits deducts credits, rejecting overdrafts
func (u *User) SpendCredits(amount float64) error {
	if amount < 0 {
		return shared.NewValidationError("amount", "cannot be negative")
	}
	if u.Credits < amount {
		return shared.NewInsufficientResourcesError(shared.ResourceCredits, int(math.Ceil(amount)), int(u.Credits))
	}
	u.Credits -= amount
	return nil
}

// SpendDarkMatter deducts dark matter, rejecting overdrafts
func (u *User) SpendDarkMatter(amount float64) error {
	if amount < 0 {
		return shared.NewValidationError("amount", "cannot be negative")
	}
	if u.DarkMatter < amount {
		return shared.NewInsufficientResourcesError(shared.ResourceDarkMatter, int(math.Ceil(amount)), int(u.DarkMatter))
	}
	u.DarkMatter -= amount
	return nil
}

// Notification is a persisted message for the user. The engine appends
// notifications when delayed effects land; delivery is someone else's job.
type Notification struct {
	ID        int
	UserID    int
	Kind      string
	Message   string
	CreatedAt int64 // unix seconds
}
