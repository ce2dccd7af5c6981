package fleet

import (
	"context"

	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// Repository persists fleets. Update enforces optimistic concurrency on the
// fleet row's version.
type Repository interface {
	FindByID(ctx context.Context, fleetID string) (*Fleet, error)
	ListByUser(ctx context.Context, userID int) ([]*Fleet, error)
	Add(ctx context.Context, f *Fleet) error
	Update(ctx context.Context, f *Fleet) error
}

// BattleReportRepository appends battle records
type BattleReportRepository interface {
	Append(ctx context.Context, report *BattleReport) error
	ListByUser(ctx context.Context, userID int, limit int) ([]*BattleReport, error)
}

// CombatResult is what the external resolver hands back. Losses are absolute
// unit counts per type; ResourcesLooted is the resolver's figure before the
// transactional clamp to the defender's current balances.
type CombatResult struct {
	Winner          string
	AttackerLosses  shared.Amounts
	DefenderLosses  shared.Amounts
	ResourcesLooted shared.Amounts
}

// CombatResolver is the opaque external collaborator that fights the battle.
// The engine treats its math as a black box.
type CombatResolver interface {
	ResolveCombat(ctx context.Context, fleetID string) (*CombatResult, error)
}
