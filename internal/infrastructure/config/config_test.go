package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellardrift/stellardrift-go/internal/infrastructure/config"
)

func TestDefaultConfig_FillsEveryKnob(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, 25, cfg.Database.Pool.MaxOpen)
	assert.Equal(t, 5, cfg.Worker.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Worker.BackoffBase)
	assert.Equal(t, 30*time.Minute, cfg.Worker.BackoffMax)
	assert.Equal(t, 10*time.Minute, cfg.Worker.LeaseTimeout)
	assert.Equal(t, 10.0, cfg.Game.BaseProductionPerHour)
	assert.Equal(t, 2500.0, cfg.Game.BaseStorage)
	assert.Equal(t, 40.0, cfg.Game.StandardFleetSpeed)
	assert.Equal(t, 0.5, cfg.Game.CapitalShipSpeedFraction)
	assert.Equal(t, []int{1, 3, 7}, cfg.Game.CommitmentDayOptions)
	assert.Equal(t, 0, cfg.Game.DonationDelayMinutes)
	assert.Equal(t, 10, cfg.Game.NPCMaxAttacks)
	assert.Equal(t, 30, cfg.Game.ProbeIntervalMinutes)
	assert.Equal(t, "INFO", cfg.Logging.Level)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := []byte(`
database:
  type: sqlite
  path: engine.db
worker:
  concurrency: 2
game:
  npc_max_attacks: 3
  donation_delay_minutes: 15
logging:
  level: DEBUG
`)
	require.NoError(t, os.WriteFile(path, doc, 0o644))

	// Act
	cfg, err := config.LoadConfig(path)

	// Assert - file values win, untouched knobs keep their defaults
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, 2, cfg.Worker.Concurrency)
	assert.Equal(t, 3, cfg.Game.NPCMaxAttacks)
	assert.Equal(t, 15, cfg.Game.DonationDelayMinutes)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.Worker.ClaimBatch)
	assert.Equal(t, 2500.0, cfg.Game.BaseStorage)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := []byte("logging:\n  level: LOUD\n")
	require.NoError(t, os.WriteFile(path, doc, 0o644))

	// Act
	_, err := config.LoadConfig(path)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Level")
}

func TestGameConfig_CommitmentAllowed(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.True(t, cfg.Game.CommitmentAllowed(1))
	assert.True(t, cfg.Game.CommitmentAllowed(7))
	assert.False(t, cfg.Game.CommitmentAllowed(2))
	assert.False(t, cfg.Game.CommitmentAllowed(0))
}
