package planet

import "context"

// Repository persists planets with their child collections. Update applies
// the whole aggregate in one transaction and enforces optimistic concurrency
// on the planet row's version, returning a VersionConflictError on a lost
// race.
type Repository interface {
	FindByID(ctx context.Context, planetID uint) (*Planet, error)
	ListByUser(ctx context.Context, userID int) ([]*Planet, error)
	Add(ctx context.Context, p *Planet) error
	Update(ctx context.Context, p *Planet) error
}
