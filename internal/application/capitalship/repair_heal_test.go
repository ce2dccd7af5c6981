package capitalship_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcapitalship "github.com/stellardrift/stellardrift-go/internal/application/capitalship"
	"github.com/stellardrift/stellardrift-go/internal/domain/capitalship"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

func (f *shipFixture) repairHandler() *appcapitalship.RepairHandler {
	return appcapitalship.NewRepairHandler(f.sync, f.planets, f.users, f.ships, f.catalog, f.game, f.clock)
}

func (f *shipFixture) damageHandler() *appcapitalship.DamageHandler {
	return appcapitalship.NewDamageHandler(f.ships, f.notifications, f.game, f.clock)
}

func TestDamage_DestructionWipesProgressAndNotifies(t *testing.T) {
	// Arrange
	f := newShipFixture(t)
	ship := f.addShip(t, capitalship.StatusDeployed)
	ship.HP = 100
	require.NoError(t, f.ships.Update(context.Background(), ship))

	// Act
	resp, err := f.damageHandler().Handle(context.Background(), &appcapitalship.ApplyCombatDamageCommand{
		ShipID: ship.ID,
		Damage: 150,
	})

	// Assert - the wreck keeps nothing of its build and cools down for a day
	require.NoError(t, err)
	assert.True(t, resp.(*appcapitalship.ApplyCombatDamageResponse).Destroyed)

	stored := f.storedShip(t, ship.ID)
	assert.Equal(t, capitalship.StatusDamaged, stored.Status)
	assert.Zero(t, stored.HP)
	assert.Zero(t, stored.HighestPhaseCompleted)
	assert.Nil(t, stored.Progress)
	require.NotNil(t, stored.CooldownUntil)
	assert.Equal(t, baseTime.Add(24*time.Hour), *stored.CooldownUntil)

	notes, err := f.notifications.ListByUser(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "capitalShip.destroyed", notes[0].Kind)
}

func TestDamage_PassiveHealAccruesFirst(t *testing.T) {
	// Arrange - 10 unobserved hours regenerate 1% of 1200 per hour
	f := newShipFixture(t)
	ship := f.addShip(t, capitalship.StatusReady)
	ship.HP = 600
	require.NoError(t, f.ships.Update(context.Background(), ship))
	f.clock.Advance(10 * time.Hour)

	// Act
	_, err := f.damageHandler().Handle(context.Background(), &appcapitalship.ApplyCombatDamageCommand{
		ShipID: ship.ID,
		Damage: 20,
	})

	// Assert - 600 + 120 regenerated - 20 damage
	require.NoError(t, err)
	assert.InDelta(t, 700.0, f.storedShip(t, ship.ID).HP, 0.001)
}

func TestStartRepair_GatedByCooldown(t *testing.T) {
	// Arrange
	f := newShipFixture(t)
	ship := f.addShip(t, capitalship.StatusDamaged)
	ship.HP = 0
	ship.HighestPhaseCompleted = 0
	cooldown := baseTime.Add(24 * time.Hour)
	ship.CooldownUntil = &cooldown
	require.NoError(t, f.ships.Update(context.Background(), ship))

	// Act - too early
	_, err := f.repairHandler().Handle(context.Background(), &appcapitalship.StartRepairCommand{
		UserID: 1,
		ShipID: ship.ID,
	})

	// Assert
	require.Error(t, err)
	var transition *capitalship.ErrInvalidTransition
	assert.ErrorAs(t, err, &transition)

	// Act - once the cooldown has elapsed
	f.clock.Advance(25 * time.Hour)
	_, err = f.repairHandler().Handle(context.Background(), &appcapitalship.StartRepairCommand{
		UserID: 1,
		ShipID: ship.ID,
	})

	// Assert - reconstruction costs half the build, split over two phases
	require.NoError(t, err)
	stored := f.storedShip(t, ship.ID)
	assert.Equal(t, capitalship.StatusRepairing, stored.Status)
	require.NotNil(t, stored.Progress)
	assert.True(t, stored.Progress.IsRepair)
	assert.Equal(t, 2, stored.Progress.TotalPhases)
	assert.Equal(t, 2625, stored.Progress.Required.Get(shared.ResourceCarbon))
	assert.Equal(t, 5125, stored.Progress.Required.Get(shared.ResourceTitanium))
}

func TestSalvage_ReturnsGarrisonAndScrapsHull(t *testing.T) {
	// Arrange
	f := newShipFixture(t)
	ship := f.addShip(t, capitalship.StatusDamaged)
	cooldown := baseTime.Add(-time.Hour)
	ship.CooldownUntil = &cooldown
	ship.Garrison.Troops = shared.Amounts{"space_marine": 50}
	ship.Garrison.Tools = shared.Amounts{"breaching_charge": 5}
	ship.Garrison.Loot = shared.Amounts{shared.ResourceCarbon: 100}
	require.NoError(t, f.ships.Update(context.Background(), ship))

	// Act
	_, err := f.repairHandler().Handle(context.Background(), &appcapitalship.SalvageShipCommand{
		UserID: 1,
		ShipID: ship.ID,
	})

	// Assert
	require.NoError(t, err)
	home, err := f.planets.FindByID(context.Background(), f.home.ID)
	require.NoError(t, err)
	u := home.Unit("space_marine")
	require.NotNil(t, u)
	assert.Equal(t, 50, u.Count)
	assert.Equal(t, 5, home.Tools.Get("breaching_charge"))
	assert.InDelta(t, 100.0, home.Carbon, 0.001)

	_, err = f.ships.FindByID(context.Background(), ship.ID)
	assert.True(t, shared.IsNotFound(err))
}

func TestSalvage_RejectedDuringCooldown(t *testing.T) {
	// Arrange
	f := newShipFixture(t)
	ship := f.addShip(t, capitalship.StatusDamaged)
	cooldown := baseTime.Add(time.Hour)
	ship.CooldownUntil = &cooldown
	require.NoError(t, f.ships.Update(context.Background(), ship))

	// Act
	_, err := f.repairHandler().Handle(context.Background(), &appcapitalship.SalvageShipCommand{
		UserID: 1,
		ShipID: ship.ID,
	})

	// Assert
	require.Error(t, err)
	var validation *shared.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestHeal_ProportionalToDonation(t *testing.T) {
	// Arrange - half the hull is missing, so the full heal costs
	// totalCost * 0.5 * 0.6 per resource, dark matter excluded
	f := newShipFixture(t)
	ship := f.addShip(t, capitalship.StatusReady)
	ship.HP = 600
	require.NoError(t, f.ships.Update(context.Background(), ship))
	f.setHomeResources(t, 3150, 0)

	// Act - fund only the carbon line of a 14100-point bill
	resp, err := f.repairHandler().Handle(context.Background(), &appcapitalship.HealShipCommand{
		UserID:    1,
		ShipID:    ship.ID,
		PlanetID:  f.home.ID,
		Resources: shared.Amounts{shared.ResourceCarbon: 3150},
	})

	// Assert - 600 missing * 3150/14100, rounded down
	require.NoError(t, err)
	result := resp.(*appcapitalship.HealShipResponse)
	assert.Equal(t, shared.Amounts{shared.ResourceCarbon: 3150}, result.Accepted)
	assert.Equal(t, 134.0, result.Healed)
	assert.InDelta(t, 734.0, f.storedShip(t, ship.ID).HP, 0.001)

	home, err := f.planets.FindByID(context.Background(), f.home.ID)
	require.NoError(t, err)
	assert.Zero(t, home.Carbon)
}

func TestHeal_DarkMatterNeverFundsHull(t *testing.T) {
	// Arrange
	f := newShipFixture(t)
	ship := f.addShip(t, capitalship.StatusReady)
	ship.HP = 600
	require.NoError(t, f.ships.Update(context.Background(), ship))
	f.setWallet(t, 0, 500)

	// Act
	_, err := f.repairHandler().Handle(context.Background(), &appcapitalship.HealShipCommand{
		UserID:    1,
		ShipID:    ship.ID,
		PlanetID:  f.home.ID,
		Resources: shared.Amounts{shared.ResourceDarkMatter: 500},
	})

	// Assert
	require.Error(t, err)
	var validation *shared.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestHeal_RejectsWreckAndIntactHull(t *testing.T) {
	f := newShipFixture(t)
	f.setHomeResources(t, 1000, 0)
	var validation *shared.ValidationError

	wreck := f.addShip(t, capitalship.StatusDamaged)
	_, err := f.repairHandler().Handle(context.Background(), &appcapitalship.HealShipCommand{
		UserID: 1, ShipID: wreck.ID, PlanetID: f.home.ID,
		Resources: shared.Amounts{shared.ResourceCarbon: 100},
	})
	assert.ErrorAs(t, err, &validation, "a wreck must be repaired, not healed")

	intact := f.addShip(t, capitalship.StatusReady)
	_, err = f.repairHandler().Handle(context.Background(), &appcapitalship.HealShipCommand{
		UserID: 1, ShipID: intact.ID, PlanetID: f.home.ID,
		Resources: shared.Amounts{shared.ResourceCarbon: 100},
	})
	assert.ErrorAs(t, err, &validation, "a full hull has nothing to heal")
}
