package capitalship

import "context"

// Repository persists capital ships. Update enforces optimistic concurrency
// on the ship row's version. Delete removes a salvaged wreck.
type Repository interface {
	FindByID(ctx context.Context, shipID string) (*CapitalShip, error)
	ListByUser(ctx context.Context, userID int) ([]*CapitalShip, error)
	Add(ctx context.Context, s *CapitalShip) error
	Update(ctx context.Context, s *CapitalShip) error
	Delete(ctx context.Context, shipID string) error
}
