package config

// GameConfig holds the economy and lifecycle tuning knobs. Balance tables
// (per-level costs and production) live in the catalog; these are the global
// constants the formulas combine them with.
type GameConfig struct {
	// BaseProductionPerHour is the per-resource floor every planet produces
	// before buildings are counted
	BaseProductionPerHour float64 `mapstructure:"base_production_per_hour" validate:"min=0"`

	// CreditsPerPopulation scales tax income: population × taxRate/100 × this
	CreditsPerPopulation float64 `mapstructure:"credits_per_population" validate:"min=0"`

	// UnderstaffedFloor is the minimum workforce efficiency; production
	// buildings never drop below it even with zero population
	UnderstaffedFloor float64 `mapstructure:"understaffed_floor" validate:"min=0,max=1"`

	// OverstaffBonusCap caps the logarithmic overstaffing bonus
	OverstaffBonusCap float64 `mapstructure:"overstaff_bonus_cap" validate:"min=0"`

	// BaseStorage is per-resource capacity before storage buildings
	BaseStorage float64 `mapstructure:"base_storage" validate:"gt=0"`

	// StandardFleetSpeed is the reference map speed fleets are balanced
	// around; capital ships travel at CapitalShipSpeedFraction of it
	StandardFleetSpeed       float64 `mapstructure:"standard_fleet_speed" validate:"gt=0"`
	CapitalShipSpeedFraction float64 `mapstructure:"capital_ship_speed_fraction" validate:"gt=0,lte=1"`

	// CommitmentDayOptions are the only legal deployment commitment windows
	CommitmentDayOptions []int `mapstructure:"commitment_day_options" validate:"min=1"`

	// DonationDelayMinutes gates consecutive capital-ship donations; zero
	// disables the gate
	DonationDelayMinutes int `mapstructure:"donation_delay_minutes" validate:"min=0"`

	// RepairCostMultiplier scales construction cost into reconstruction cost
	RepairCostMultiplier float64 `mapstructure:"repair_cost_multiplier" validate:"gt=0"`

	// HPRepairCostMultiplier scales the proportional hull-heal donation cost
	HPRepairCostMultiplier float64 `mapstructure:"hp_repair_cost_multiplier" validate:"gt=0"`

	// PassiveHealPerHour is the fraction of max HP healed per hour in
	// eligible statuses, accrued lazily
	PassiveHealPerHour float64 `mapstructure:"passive_heal_per_hour" validate:"min=0"`

	// DestructionCooldownHours gates repair start and salvage after a wreck
	DestructionCooldownHours int `mapstructure:"destruction_cooldown_hours" validate:"min=0"`

	// NPCMaxAttacks is the attack count that triggers an NPC respawn
	NPCMaxAttacks int `mapstructure:"npc_max_attacks" validate:"min=1"`

	// NPCRespawnDelaySeconds is how long after the final attack the respawn
	// task fires
	NPCRespawnDelaySeconds int `mapstructure:"npc_respawn_delay_seconds" validate:"min=0"`

	// ProbeIntervalMinutes is the period of the self-re-arming probe tick
	ProbeIntervalMinutes int `mapstructure:"probe_interval_minutes" validate:"min=1"`
}

// CommitmentAllowed reports whether days is one of the configured options
func (g *GameConfig) CommitmentAllowed(days int) bool {
	for _, opt := range g.CommitmentDayOptions {
		if opt == days {
			return true
		}
	}
	return false
}
