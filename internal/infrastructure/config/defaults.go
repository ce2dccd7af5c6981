package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "stellardrift"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "stellardrift"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Worker defaults
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = 5
	}
	if cfg.Worker.ClaimBatch == 0 {
		cfg.Worker.ClaimBatch = 10
	}
	if cfg.Worker.PollRate == 0 {
		cfg.Worker.PollRate = 2
	}
	if cfg.Worker.PollBurst == 0 {
		cfg.Worker.PollBurst = 1
	}
	if cfg.Worker.BackoffBase == 0 {
		cfg.Worker.BackoffBase = 30 * time.Second
	}
	if cfg.Worker.BackoffMax == 0 {
		cfg.Worker.BackoffMax = 30 * time.Minute
	}
	if cfg.Worker.LeaseTimeout == 0 {
		cfg.Worker.LeaseTimeout = 10 * time.Minute
	}
	if cfg.Worker.ShutdownTimeout == 0 {
		cfg.Worker.ShutdownTimeout = 30 * time.Second
	}

	// Game defaults
	if cfg.Game.BaseProductionPerHour == 0 {
		cfg.Game.BaseProductionPerHour = 10
	}
	if cfg.Game.CreditsPerPopulation == 0 {
		cfg.Game.CreditsPerPopulation = 0.5
	}
	if cfg.Game.UnderstaffedFloor == 0 {
		cfg.Game.UnderstaffedFloor = 0.25
	}
	if cfg.Game.OverstaffBonusCap == 0 {
		cfg.Game.OverstaffBonusCap = 0.30
	}
	if cfg.Game.BaseStorage == 0 {
		cfg.Game.BaseStorage = 2500
	}
	if cfg.Game.StandardFleetSpeed == 0 {
		cfg.Game.StandardFleetSpeed = 40
	}
	if cfg.Game.CapitalShipSpeedFraction == 0 {
		cfg.Game.CapitalShipSpeedFraction = 0.5
	}
	if len(cfg.Game.CommitmentDayOptions) == 0 {
		cfg.Game.CommitmentDayOptions = []int{1, 3, 7}
	}
	if cfg.Game.RepairCostMultiplier == 0 {
		cfg.Game.RepairCostMultiplier = 0.5
	}
	if cfg.Game.HPRepairCostMultiplier == 0 {
		cfg.Game.HPRepairCostMultiplier = 0.6
	}
	if cfg.Game.PassiveHealPerHour == 0 {
		cfg.Game.PassiveHealPerHour = 0.01
	}
	if cfg.Game.DestructionCooldownHours == 0 {
		cfg.Game.DestructionCooldownHours = 24
	}
	if cfg.Game.NPCMaxAttacks == 0 {
		cfg.Game.NPCMaxAttacks = 10
	}
	if cfg.Game.NPCRespawnDelaySeconds == 0 {
		cfg.Game.NPCRespawnDelaySeconds = 3600
	}
	if cfg.Game.ProbeIntervalMinutes == 0 {
		cfg.Game.ProbeIntervalMinutes = 30
	}

	// Metrics defaults
	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":9105"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
}
