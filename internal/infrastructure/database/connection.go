// Package database owns the gorm connection and schema migration.
package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stellardrift/stellardrift-go/internal/adapters/persistence"
	"github.com/stellardrift/stellardrift-go/internal/infrastructure/config"
)

// Connect opens the configured database and applies the connection pool
// settings.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Pool.MaxOpen)
	sqlDB.SetMaxIdleConns(cfg.Pool.MaxIdle)
	sqlDB.SetConnMaxLifetime(cfg.Pool.MaxLifetime)
	return db, nil
}

// Migrate creates or updates the schema for every persisted model
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&persistence.UserModel{},
		&persistence.NotificationModel{},
		&persistence.PlanetModel{},
		&persistence.BuildingModel{},
		&persistence.PlanetUnitModel{},
		&persistence.FleetModel{},
		&persistence.BattleReportModel{},
		&persistence.CapitalShipModel{},
		&persistence.TaskModel{},
	)
}

// NewTestConnection opens an isolated in-memory sqlite database with the
// schema migrated, for tests.
func NewTestConnection() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open test database: %w", err)
	}
	// A single connection keeps every session on the same in-memory database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}
	return db, nil
}

// Close shuts the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
