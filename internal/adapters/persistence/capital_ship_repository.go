package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/stellardrift/stellardrift-go/internal/domain/capitalship"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// GormCapitalShipRepository implements capitalship.Repository
type GormCapitalShipRepository struct {
	db *gorm.DB
}

// NewGormCapitalShipRepository creates a capital ship repository
func NewGormCapitalShipRepository(db *gorm.DB) *GormCapitalShipRepository {
	return &GormCapitalShipRepository{db: db}
}

// FindByID loads a capital ship
func (r *GormCapitalShipRepository) FindByID(ctx context.Context, shipID string) (*capitalship.CapitalShip, error) {
	var model CapitalShipModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", shipID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("capital ship", shipID)
		}
		return nil, fmt.Errorf("failed to load capital ship %s: %w", shipID, err)
	}
	return model.ToDomain()
}

// ListByUser loads all capital ships of one user
func (r *GormCapitalShipRepository) ListByUser(ctx context.Context, userID int) ([]*capitalship.CapitalShip, error) {
	var models []CapitalShipModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list capital ships for user %d: %w", userID, err)
	}
	ships := make([]*capitalship.CapitalShip, 0, len(models))
	for i := range models {
		s, err := models[i].ToDomain()
		if err != nil {
			return nil, err
		}
		ships = append(ships, s)
	}
	return ships, nil
}

// Add inserts a new capital ship
func (r *GormCapitalShipRepository) Add(ctx context.Context, s *capitalship.CapitalShip) error {
	model, err := capitalShipToModel(s)
	if err != nil {
		return err
	}
	model.Version = 1
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to insert capital ship: %w", err)
	}
	s.Version = model.Version
	return nil
}

// Update writes the ship back, guarded by an optimistic version check
func (r *GormCapitalShipRepository) Update(ctx context.Context, s *capitalship.CapitalShip) error {
	model, err := capitalShipToModel(s)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&CapitalShipModel{}).
		Where("id = ? AND version = ?", s.ID, s.Version).
		Updates(map[string]interface{}{
			"name":                    model.Name,
			"status":                  model.Status,
			"hp":                      model.HP,
			"target_planet_id":        model.TargetPlanetID,
			"x":                       model.X,
			"y":                       model.Y,
			"commitment_days":         model.CommitmentDays,
			"commitment_ends_at":      model.CommitmentEndsAt,
			"recall_eligible":         model.RecallEligible,
			"cooldown_until":          model.CooldownUntil,
			"last_heal_time":          model.LastHealTime,
			"highest_phase_completed": model.HighestPhaseCompleted,
			"progress":                model.Progress,
			"garrison":                model.Garrison,
			"arrival_time":            model.ArrivalTime,
			"version":                 s.Version + 1,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update capital ship %s: %w", s.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewVersionConflictError("capital ship", s.ID)
	}
	s.Version++
	return nil
}

// Delete removes a salvaged wreck
func (r *GormCapitalShipRepository) Delete(ctx context.Context, shipID string) error {
	result := r.db.WithContext(ctx).Delete(&CapitalShipModel{}, "id = ?", shipID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete capital ship %s: %w", shipID, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("capital ship", shipID)
	}
	return nil
}
