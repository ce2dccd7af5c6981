package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/stellardrift/stellardrift-go/internal/domain/fleet"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// GormFleetRepository implements fleet.Repository
type GormFleetRepository struct {
	db *gorm.DB
}

// NewGormFleetRepository creates a fleet repository
func NewGormFleetRepository(db *gorm.DB) *GormFleetRepository {
	return &GormFleetRepository{db: db}
}

// FindByID loads a fleet
func (r *GormFleetRepository) FindByID(ctx context.Context, fleetID string) (*fleet.Fleet, error) {
	var model FleetModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", fleetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("fleet", fleetID)
		}
		return nil, fmt.Errorf("failed to load fleet %s: %w", fleetID, err)
	}
	return model.ToDomain()
}

// ListByUser loads all fleets of one user
func (r *GormFleetRepository) ListByUser(ctx context.Context, userID int) ([]*fleet.Fleet, error) {
	var models []FleetModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list fleets for user %d: %w", userID, err)
	}
	fleets := make([]*fleet.Fleet, 0, len(models))
	for i := range models {
		f, err := models[i].ToDomain()
		if err != nil {
			return nil, err
		}
		fleets = append(fleets, f)
	}
	return fleets, nil
}

// Add inserts a new fleet
func (r *GormFleetRepository) Add(ctx context.Context, f *fleet.Fleet) error {
	model, err := fleetToModel(f)
	if err != nil {
		return err
	}
	model.Version = 1
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to insert fleet: %w", err)
	}
	f.Version = model.Version
	return nil
}

// Update writes the fleet back, guarded by an optimistic version check
func (r *GormFleetRepository) Update(ctx context.Context, f *fleet.Fleet) error {
	model, err := fleetToModel(f)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&FleetModel{}).
		Where("id = ? AND version = ?", f.ID, f.Version).
		Updates(map[string]interface{}{
			"status":           model.Status,
			"units":            model.Units,
			"tools":            model.Tools,
			"loot":             model.Loot,
			"borrowed_defense": model.BorrowedDefense,
			"arrival_time":     model.ArrivalTime,
			"return_time":      model.ReturnTime,
			"version":          f.Version + 1,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update fleet %s: %w", f.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewVersionConflictError("fleet", f.ID)
	}
	f.Version++
	return nil
}

// GormBattleReportRepository implements fleet.BattleReportRepository
type GormBattleReportRepository struct {
	db *gorm.DB
}

// NewGormBattleReportRepository creates a battle report repository
func NewGormBattleReportRepository(db *gorm.DB) *GormBattleReportRepository {
	return &GormBattleReportRepository{db: db}
}

// Append stores a battle report
func (r *GormBattleReportRepository) Append(ctx context.Context, report *fleet.BattleReport) error {
	attackerLosses, err := encodeAmounts(report.AttackerLosses)
	if err != nil {
		return fmt.Errorf("battle report %s: %w", report.ID, err)
	}
	defenderLosses, err := encodeAmounts(report.DefenderLosses)
	if err != nil {
		return fmt.Errorf("battle report %s: %w", report.ID, err)
	}
	loot, err := encodeAmounts(report.Loot)
	if err != nil {
		return fmt.Errorf("battle report %s: %w", report.ID, err)
	}
	model := &BattleReportModel{
		ID:             report.ID,
		FleetID:        report.FleetID,
		AttackerUserID: report.AttackerUserID,
		DefenderUserID: report.DefenderUserID,
		TargetPlanetID: report.TargetPlanetID,
		Winner:         report.Winner,
		AttackerLosses: attackerLosses,
		DefenderLosses: defenderLosses,
		Loot:           loot,
		FoughtAt:       report.FoughtAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to insert battle report: %w", err)
	}
	return nil
}

// ListByUser returns the newest battle reports a user took part in
func (r *GormBattleReportRepository) ListByUser(ctx context.Context, userID int, limit int) ([]*fleet.BattleReport, error) {
	var models []BattleReportModel
	query := r.db.WithContext(ctx).
		Where("attacker_user_id = ? OR defender_user_id = ?", userID, userID).
		Order("fought_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list battle reports for user %d: %w", userID, err)
	}
	reports := make([]*fleet.BattleReport, 0, len(models))
	for i := range models {
		report, err := models[i].ToDomain()
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}
