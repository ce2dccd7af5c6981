package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/stellardrift/stellardrift-go/internal/domain/planet"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// GormPlanetRepository implements planet.Repository. The planet row carries
// an optimistic version; buildings and units are written in the same
// transaction so an aggregate update lands atomically or not at all.
type GormPlanetRepository struct {
	db *gorm.DB
}

// NewGormPlanetRepository creates a planet repository
func NewGormPlanetRepository(db *gorm.DB) *GormPlanetRepository {
	return &GormPlanetRepository{db: db}
}

// FindByID loads the planet aggregate with its children
func (r *GormPlanetRepository) FindByID(ctx context.Context, planetID uint) (*planet.Planet, error) {
	var model PlanetModel
	err := r.db.WithContext(ctx).
		Preload("Buildings").
		Preload("Units").
		First(&model, "id = ?", planetID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("planet", fmt.Sprint(planetID))
		}
		return nil, fmt.Errorf("failed to load planet %d: %w", planetID, err)
	}
	return model.ToDomain()
}

// ListByUser loads all planets of one user
func (r *GormPlanetRepository) ListByUser(ctx context.Context, userID int) ([]*planet.Planet, error) {
	var models []PlanetModel
	err := r.db.WithContext(ctx).
		Preload("Buildings").
		Preload("Units").
		Where("user_id = ?", userID).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list planets for user %d: %w", userID, err)
	}
	planets := make([]*planet.Planet, 0, len(models))
	for i := range models {
		p, err := models[i].ToDomain()
		if err != nil {
			return nil, err
		}
		planets = append(planets, p)
	}
	return planets, nil
}

// Add inserts a new planet aggregate
func (r *GormPlanetRepository) Add(ctx context.Context, p *planet.Planet) error {
	model, err := planetToModel(p)
	if err != nil {
		return err
	}
	model.Version = 1
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to insert planet: %w", err)
	}
	p.ID = model.ID
	p.Version = model.Version
	for i, b := range model.Buildings {
		p.Buildings[i].ID = b.ID
		p.Buildings[i].PlanetID = model.ID
	}
	for i := range p.Units {
		p.Units[i].PlanetID = model.ID
	}
	return nil
}

// Update writes the aggregate back in one transaction. The version check on
// the root row is the optimistic guard for the whole aggregate: children are
// only touched when the root accepted the write.
func (r *GormPlanetRepository) Update(ctx context.Context, p *planet.Planet) error {
	model, err := planetToModel(p)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&PlanetModel{}).
			Where("id = ? AND version = ?", p.ID, p.Version).
			Updates(map[string]interface{}{
				"user_id":                  model.UserID,
				"npc":                      model.NPC,
				"carbon":                   model.Carbon,
				"titanium":                 model.Titanium,
				"food":                     model.Food,
				"tax_rate":                 model.TaxRate,
				"last_resource_update":     model.LastResourceUpdate,
				"construction_building_id": model.ConstructionBuildingID,
				"construction_finish_time": model.ConstructionFinishTime,
				"tools":                    model.Tools,
				"recruitment_queue":        model.RecruitmentQueue,
				"manufacturing_queue":      model.ManufacturingQueue,
				"turret_queue":             model.TurretQueue,
				"defense_level":            model.DefenseLevel,
				"attack_count":             model.AttackCount,
				"version":                  p.Version + 1,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update planet %d: %w", p.ID, result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.NewVersionConflictError("planet", fmt.Sprint(p.ID))
		}
		if err := r.syncBuildings(tx, p); err != nil {
			return err
		}
		return r.syncUnits(tx, p)
	})
	if err != nil {
		return err
	}
	p.Version++
	return nil
}

// syncBuildings reconciles the buildings table with the aggregate: rows not
// present anymore are deleted, the rest upserted. New buildings get their
// row id written back into the domain object.
func (r *GormPlanetRepository) syncBuildings(tx *gorm.DB, p *planet.Planet) error {
	keep := make([]uint, 0, len(p.Buildings))
	for _, b := range p.Buildings {
		if b.ID != 0 {
			keep = append(keep, b.ID)
		}
	}
	query := tx.Where("planet_id = ?", p.ID)
	if len(keep) > 0 {
		query = query.Where("id NOT IN ?", keep)
	}
	if err := query.Delete(&BuildingModel{}).Error; err != nil {
		return fmt.Errorf("failed to prune buildings of planet %d: %w", p.ID, err)
	}
	for _, b := range p.Buildings {
		b.PlanetID = p.ID
		model := buildingToModel(b)
		if err := tx.Save(&model).Error; err != nil {
			return fmt.Errorf("failed to save building on planet %d: %w", p.ID, err)
		}
		b.ID = model.ID
	}
	return nil
}

// syncUnits rewrites the stationed-unit rows of the planet
func (r *GormPlanetRepository) syncUnits(tx *gorm.DB, p *planet.Planet) error {
	if err := tx.Where("planet_id = ?", p.ID).Delete(&PlanetUnitModel{}).Error; err != nil {
		return fmt.Errorf("failed to prune units of planet %d: %w", p.ID, err)
	}
	for _, u := range p.Units {
		u.PlanetID = p.ID
		model := unitToModel(u)
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("failed to save units on planet %d: %w", p.ID, err)
		}
	}
	return nil
}
