package fleet_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellardrift/stellardrift-go/internal/domain/fleet"
	"github.com/stellardrift/stellardrift-go/internal/domain/planet"
	"github.com/stellardrift/stellardrift-go/internal/domain/scheduler"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// addFleet persists an enroute fleet that left an hour ago and is due now
func (f *fleetFixture) addFleet(t *testing.T, mission fleet.Mission, originID, targetID uint, units shared.Amounts) *fleet.Fleet {
	fl := fleet.New(1, mission, originID, targetID, units)
	fl.DepartedAt = f.clock.Now().Add(-time.Hour)
	fl.ArrivalTime = f.clock.Now()
	require.NoError(t, f.fleets.Add(context.Background(), fl))
	return fl
}

func (f *fleetFixture) arrivalTask(t *testing.T, fl *fleet.Fleet) *scheduler.Task {
	task, err := scheduler.NewTask(
		scheduler.KindFleetArrival,
		scheduler.FleetArrivalPayload{FleetID: fl.ID, Type: string(fl.Mission)},
		fl.ArrivalTime, f.clock.Now(),
	)
	require.NoError(t, err)
	return task
}

func TestArrivalHandler_AttackVictoryLootsAndTurnsAround(t *testing.T) {
	// Arrange - the resolver reports more loot than the defender still holds
	f := newFleetFixture(t)
	f.addUser(t, 1)
	target := f.addPlanet(t, &planet.Planet{
		NPC:    true,
		Carbon: 100,
		Units:  []*planet.PlanetUnit{{UnitType: "space_marine", Count: 8, Defending: 6}},
	})
	fl := f.addFleet(t, fleet.MissionAttack, 99, target.ID, shared.Amounts{"space_marine": 10})
	f.resolver.result = &fleet.CombatResult{
		Winner:          "attacker",
		AttackerLosses:  shared.Amounts{"space_marine": 4},
		DefenderLosses:  shared.Amounts{"space_marine": 5},
		ResourcesLooted: shared.Amounts{shared.ResourceCarbon: 500},
	}

	// Act
	err := f.arrivalHandler().Handle(context.Background(), f.arrivalTask(t, fl))

	// Assert - loot is clamped to the 100 carbon actually present
	require.NoError(t, err)
	stored, err := f.fleets.FindByID(context.Background(), fl.ID)
	require.NoError(t, err)
	assert.Equal(t, fleet.StatusReturning, stored.Status)
	assert.Equal(t, 6, stored.Units.Get("space_marine"))
	assert.Equal(t, 100, stored.Loot.Get(shared.ResourceCarbon))
	assert.Equal(t, baseTime.Add(time.Hour), stored.ReturnTime, "the trip home mirrors the outbound leg")

	defender, err := f.planets.FindByID(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Zero(t, defender.Carbon)
	assert.Equal(t, 1, defender.AttackCount)
	u := defender.Unit("space_marine")
	require.NotNil(t, u)
	assert.Equal(t, 3, u.Count)
	assert.Equal(t, 3, u.Defending, "defense assignments cannot exceed survivors")

	reports, err := f.reports.ListByUser(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "attacker", reports[0].Winner)
	assert.Equal(t, 100, reports[0].Loot.Get(shared.ResourceCarbon))

	assert.Equal(t, 1, f.pendingCount(t, scheduler.KindFleetReturn))
}

func TestArrivalHandler_RedeliveredTaskSkips(t *testing.T) {
	// Arrange - the fleet already arrived and is heading home
	f := newFleetFixture(t)
	f.addUser(t, 1)
	target := f.addPlanet(t, &planet.Planet{NPC: true})
	fl := f.addFleet(t, fleet.MissionAttack, 99, target.ID, shared.Amounts{"space_marine": 5})
	fl.Status = fleet.StatusReturning
	require.NoError(t, f.fleets.Update(context.Background(), fl))

	// Act
	err := f.arrivalHandler().Handle(context.Background(), f.arrivalTask(t, fl))

	// Assert
	require.NoError(t, err)
	assert.Zero(t, f.resolver.calls, "combat must not be re-fought")
}

func TestArrivalHandler_TotalLossDestroysFleet(t *testing.T) {
	// Arrange
	f := newFleetFixture(t)
	f.addUser(t, 1)
	target := f.addPlanet(t, &planet.Planet{NPC: true})
	fl := f.addFleet(t, fleet.MissionAttack, 99, target.ID, shared.Amounts{"space_marine": 5})
	f.resolver.result = &fleet.CombatResult{
		Winner:         "defender",
		AttackerLosses: shared.Amounts{"space_marine": 5},
	}

	// Act
	err := f.arrivalHandler().Handle(context.Background(), f.arrivalTask(t, fl))

	// Assert
	require.NoError(t, err)
	stored, err := f.fleets.FindByID(context.Background(), fl.ID)
	require.NoError(t, err)
	assert.Equal(t, fleet.StatusDestroyed, stored.Status)
	assert.Zero(t, f.pendingCount(t, scheduler.KindFleetReturn))

	notes, err := f.notifications.ListByUser(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "fleet.destroyed", notes[0].Kind)
}

func TestArrivalHandler_NPCRespawnScheduledExactlyOnce(t *testing.T) {
	// Arrange - the next attack reaches the respawn threshold
	f := newFleetFixture(t)
	f.addUser(t, 1)
	target := f.addPlanet(t, &planet.Planet{NPC: true, AttackCount: f.game.NPCMaxAttacks - 1})
	f.resolver.result = &fleet.CombatResult{Winner: "defender"}

	first := f.addFleet(t, fleet.MissionAttack, 99, target.ID, shared.Amounts{"space_marine": 5})
	second := f.addFleet(t, fleet.MissionAttack, 99, target.ID, shared.Amounts{"space_marine": 5})

	// Act
	require.NoError(t, f.arrivalHandler().Handle(context.Background(), f.arrivalTask(t, first)))
	require.NoError(t, f.arrivalHandler().Handle(context.Background(), f.arrivalTask(t, second)))

	// Assert - the counter moved past the threshold without a second respawn
	stored, err := f.planets.FindByID(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, f.game.NPCMaxAttacks+1, stored.AttackCount)
	assert.Equal(t, 1, f.pendingCount(t, scheduler.KindNPCRespawn))
}

func TestArrivalHandler_TransportDeliversCargo(t *testing.T) {
	// Arrange
	f := newFleetFixture(t)
	f.addUser(t, 1)
	target := f.addPlanet(t, &planet.Planet{UserID: 1, Carbon: 50})
	fl := f.addFleet(t, fleet.MissionTransport, 99, target.ID, shared.Amounts{"cargo_hauler": 1})
	fl.Loot = shared.Amounts{shared.ResourceCarbon: 200}
	require.NoError(t, f.fleets.Update(context.Background(), fl))

	// Act
	err := f.arrivalHandler().Handle(context.Background(), f.arrivalTask(t, fl))

	// Assert
	require.NoError(t, err)
	delivered, err := f.planets.FindByID(context.Background(), target.ID)
	require.NoError(t, err)
	assert.InDelta(t, 250.0, delivered.Carbon, 0.001)

	stored, err := f.fleets.FindByID(context.Background(), fl.ID)
	require.NoError(t, err)
	assert.Equal(t, fleet.StatusReturning, stored.Status)
	assert.True(t, stored.Loot.IsZero())
}

func TestArrivalHandler_StationOnOwnPlanetCompletes(t *testing.T) {
	// Arrange
	f := newFleetFixture(t)
	f.addUser(t, 1)
	target := f.addPlanet(t, &planet.Planet{UserID: 1})
	fl := f.addFleet(t, fleet.MissionStation, 99, target.ID, shared.Amounts{"space_marine": 6})
	fl.Tools = shared.Amounts{"breaching_charge": 2}
	require.NoError(t, f.fleets.Update(context.Background(), fl))

	// Act
	err := f.arrivalHandler().Handle(context.Background(), f.arrivalTask(t, fl))

	// Assert - the payload stays, the fleet's life ends at the destination
	require.NoError(t, err)
	stationed, err := f.planets.FindByID(context.Background(), target.ID)
	require.NoError(t, err)
	u := stationed.Unit("space_marine")
	require.NotNil(t, u)
	assert.Equal(t, 6, u.Count)
	assert.Equal(t, 2, stationed.Tools.Get("breaching_charge"))

	stored, err := f.fleets.FindByID(context.Background(), fl.ID)
	require.NoError(t, err)
	assert.Equal(t, fleet.StatusCompleted, stored.Status)
	assert.Zero(t, f.pendingCount(t, scheduler.KindFleetReturn))
}

func TestArrivalHandler_StationOnForeignPlanetTurnsAround(t *testing.T) {
	// Arrange
	f := newFleetFixture(t)
	f.addUser(t, 1)
	f.addUser(t, 2)
	target := f.addPlanet(t, &planet.Planet{UserID: 2})
	fl := f.addFleet(t, fleet.MissionStation, 99, target.ID, shared.Amounts{"space_marine": 6})

	// Act
	err := f.arrivalHandler().Handle(context.Background(), f.arrivalTask(t, fl))

	// Assert
	require.NoError(t, err)
	stored, err := f.fleets.FindByID(context.Background(), fl.ID)
	require.NoError(t, err)
	assert.Equal(t, fleet.StatusReturning, stored.Status)
	assert.Equal(t, 6, stored.Units.Get("space_marine"), "nothing is left behind")
	assert.Equal(t, 1, f.pendingCount(t, scheduler.KindFleetReturn))
}

func TestArrivalHandler_MissingFleetSkips(t *testing.T) {
	// Arrange
	f := newFleetFixture(t)
	task, err := scheduler.NewTask(
		scheduler.KindFleetArrival,
		scheduler.FleetArrivalPayload{FleetID: "no-such-fleet", Type: string(fleet.MissionAttack)},
		f.clock.Now(), f.clock.Now(),
	)
	require.NoError(t, err)

	// Act
	err = f.arrivalHandler().Handle(context.Background(), task)

	// Assert - the task must not be retried against a deleted fleet
	require.NoError(t, err)
}
