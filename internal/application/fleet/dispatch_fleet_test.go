package fleet_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogAdapter "github.com/stellardrift/stellardrift-go/internal/adapters/catalog"
	"github.com/stellardrift/stellardrift-go/internal/adapters/persistence"
	"github.com/stellardrift/stellardrift-go/internal/application/economy"
	appfleet "github.com/stellardrift/stellardrift-go/internal/application/fleet"
	appscheduler "github.com/stellardrift/stellardrift-go/internal/application/scheduler"
	"github.com/stellardrift/stellardrift-go/internal/domain/catalog"
	"github.com/stellardrift/stellardrift-go/internal/domain/fleet"
	"github.com/stellardrift/stellardrift-go/internal/domain/planet"
	"github.com/stellardrift/stellardrift-go/internal/domain/player"
	"github.com/stellardrift/stellardrift-go/internal/domain/scheduler"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
	"github.com/stellardrift/stellardrift-go/internal/infrastructure/config"
	"github.com/stellardrift/stellardrift-go/test/helpers"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// stubResolver stands in for the external combat service
type stubResolver struct {
	result *fleet.CombatResult
	calls  int
}

func (s *stubResolver) ResolveCombat(ctx context.Context, fleetID string) (*fleet.CombatResult, error) {
	s.calls++
	return s.result, nil
}

type fleetFixture struct {
	planets       *persistence.GormPlanetRepository
	users         *persistence.GormUserRepository
	fleets        *persistence.GormFleetRepository
	ships         *persistence.GormCapitalShipRepository
	reports       *persistence.GormBattleReportRepository
	notifications *persistence.GormNotificationRepository
	tasks         *persistence.GormTaskRepository
	sched         *appscheduler.Service
	sync          *economy.SyncService
	rates         *economy.RateCalculator
	catalog       catalog.Catalog
	game          config.GameConfig
	clock         *shared.MockClock
	resolver      *stubResolver
}

func newFleetFixture(t *testing.T) *fleetFixture {
	db := helpers.NewTestDB(t)
	cat, err := catalogAdapter.NewDefaultCatalog()
	require.NoError(t, err)

	cfg := &config.Config{}
	config.SetDefaults(cfg)

	planets := persistence.NewGormPlanetRepository(db)
	users := persistence.NewGormUserRepository(db)
	tasks := persistence.NewGormTaskRepository(db)
	clock := shared.NewMockClock(baseTime)
	rates := economy.NewRateCalculator(cat, cfg.Game)
	queues := economy.NewQueueReconciler(cat)

	return &fleetFixture{
		planets:       planets,
		users:         users,
		fleets:        persistence.NewGormFleetRepository(db),
		ships:         persistence.NewGormCapitalShipRepository(db),
		reports:       persistence.NewGormBattleReportRepository(db),
		notifications: persistence.NewGormNotificationRepository(db),
		tasks:         tasks,
		sched:         appscheduler.NewService(tasks, clock),
		sync:          economy.NewSyncService(planets, users, rates, queues, cat, clock),
		rates:         rates,
		catalog:       cat,
		game:          cfg.Game,
		clock:         clock,
		resolver:      &stubResolver{},
	}
}

func (f *fleetFixture) dispatchHandler() *appfleet.DispatchFleetHandler {
	return appfleet.NewDispatchFleetHandler(f.sync, f.planets, f.fleets, f.ships, f.sched, f.catalog, f.clock)
}

func (f *fleetFixture) arrivalHandler() *appfleet.ArrivalHandler {
	return appfleet.NewArrivalHandler(
		f.sync, f.planets, f.fleets, f.ships, f.reports, f.notifications,
		f.resolver, f.sched, f.catalog, f.game, f.clock,
	)
}

func (f *fleetFixture) addUser(t *testing.T, id int) *player.User {
	u := &player.User{ID: id, Name: "commander", Level: 1}
	require.NoError(t, f.users.Add(context.Background(), u))
	return u
}

func (f *fleetFixture) addPlanet(t *testing.T, p *planet.Planet) *planet.Planet {
	if p.GridWidth == 0 {
		p.GridWidth, p.GridHeight = 10, 10
	}
	if p.LastResourceUpdate.IsZero() {
		p.LastResourceUpdate = f.clock.Now()
	}
	require.NoError(t, f.planets.Add(context.Background(), p))
	return p
}

func (f *fleetFixture) pendingCount(t *testing.T, kind scheduler.Kind) int {
	count, err := f.tasks.CountPending(context.Background(), kind)
	require.NoError(t, err)
	return count
}

func TestDispatchFleet_BorrowsFromDefense(t *testing.T) {
	// Arrange - 10 marines with 5 assigned to defense, so the reserve is 5
	f := newFleetFixture(t)
	f.addUser(t, 1)
	origin := f.addPlanet(t, &planet.Planet{
		UserID: 1,
		Units:  []*planet.PlanetUnit{{UnitType: "space_marine", Count: 10, Defending: 5}},
	})
	target := f.addPlanet(t, &planet.Planet{UserID: 2, Position: shared.Position{X: 30, Y: 40}})

	// Act - sending 8 needs 3 more than the reserve holds
	resp, err := f.dispatchHandler().Handle(context.Background(), &appfleet.DispatchFleetCommand{
		UserID:   1,
		OriginID: origin.ID,
		TargetID: target.ID,
		Mission:  fleet.MissionAttack,
		Units:    shared.Amounts{"space_marine": 8},
	})

	// Assert - distance 50 at marine speed 40 is a 75 minute trip
	require.NoError(t, err)
	result, ok := resp.(*appfleet.DispatchFleetResponse)
	require.True(t, ok)
	assert.Equal(t, fleet.StatusEnroute, result.Fleet.Status)
	assert.Equal(t, baseTime.Add(75*time.Minute), result.ArrivalTime)
	assert.Equal(t, shared.Amounts{"space_marine": 3}, result.Fleet.BorrowedDefense)

	stored, err := f.planets.FindByID(context.Background(), origin.ID)
	require.NoError(t, err)
	u := stored.Unit("space_marine")
	require.NotNil(t, u)
	assert.Equal(t, 2, u.Count)
	assert.Equal(t, 2, u.Defending)

	assert.Equal(t, 1, f.pendingCount(t, scheduler.KindFleetArrival))
}

func TestDispatchFleet_RejectsUnownedOrigin(t *testing.T) {
	// Arrange
	f := newFleetFixture(t)
	f.addUser(t, 1)
	f.addUser(t, 2)
	origin := f.addPlanet(t, &planet.Planet{
		UserID: 2,
		Units:  []*planet.PlanetUnit{{UnitType: "space_marine", Count: 5}},
	})

	// Act
	_, err := f.dispatchHandler().Handle(context.Background(), &appfleet.DispatchFleetCommand{
		UserID:   1,
		OriginID: origin.ID,
		TargetID: origin.ID,
		Mission:  fleet.MissionAttack,
		Units:    shared.Amounts{"space_marine": 5},
	})

	// Assert
	require.Error(t, err)
	var notOwned *shared.NotOwnedError
	assert.ErrorAs(t, err, &notOwned)
}

func TestDispatchFleet_RejectsInsufficientUnits(t *testing.T) {
	// Arrange
	f := newFleetFixture(t)
	f.addUser(t, 1)
	origin := f.addPlanet(t, &planet.Planet{
		UserID: 1,
		Units:  []*planet.PlanetUnit{{UnitType: "space_marine", Count: 3}},
	})
	target := f.addPlanet(t, &planet.Planet{UserID: 2, Position: shared.Position{X: 10}})

	// Act
	_, err := f.dispatchHandler().Handle(context.Background(), &appfleet.DispatchFleetCommand{
		UserID:   1,
		OriginID: origin.ID,
		TargetID: target.ID,
		Mission:  fleet.MissionAttack,
		Units:    shared.Amounts{"space_marine": 5},
	})

	// Assert - nothing was debited and no task was scheduled
	require.Error(t, err)
	var insufficient *shared.InsufficientResourcesError
	assert.ErrorAs(t, err, &insufficient)
	assert.Zero(t, f.pendingCount(t, scheduler.KindFleetArrival))
}

func TestDispatchFleet_TransportLoadsCargo(t *testing.T) {
	// Arrange
	f := newFleetFixture(t)
	f.addUser(t, 1)
	origin := f.addPlanet(t, &planet.Planet{
		UserID: 1,
		Carbon: 1000,
		Units:  []*planet.PlanetUnit{{UnitType: "cargo_hauler", Count: 1}},
	})
	target := f.addPlanet(t, &planet.Planet{UserID: 1, Position: shared.Position{X: 17}})

	// Act
	resp, err := f.dispatchHandler().Handle(context.Background(), &appfleet.DispatchFleetCommand{
		UserID:   1,
		OriginID: origin.ID,
		TargetID: target.ID,
		Mission:  fleet.MissionTransport,
		Units:    shared.Amounts{"cargo_hauler": 1},
		Cargo:    shared.Amounts{shared.ResourceCarbon: 400},
	})

	// Assert
	require.NoError(t, err)
	result := resp.(*appfleet.DispatchFleetResponse)
	assert.Equal(t, 400, result.Fleet.Loot.Get(shared.ResourceCarbon))

	stored, err := f.planets.FindByID(context.Background(), origin.ID)
	require.NoError(t, err)
	assert.InDelta(t, 600.0, stored.Carbon, 0.001)
}

func TestDispatchFleet_CargoRequiresCapacity(t *testing.T) {
	// Arrange - one hauler carries 600
	f := newFleetFixture(t)
	f.addUser(t, 1)
	origin := f.addPlanet(t, &planet.Planet{
		UserID: 1,
		Carbon: 1000,
		Units:  []*planet.PlanetUnit{{UnitType: "cargo_hauler", Count: 1}},
	})
	target := f.addPlanet(t, &planet.Planet{UserID: 1, Position: shared.Position{X: 17}})

	// Act
	_, err := f.dispatchHandler().Handle(context.Background(), &appfleet.DispatchFleetCommand{
		UserID:   1,
		OriginID: origin.ID,
		TargetID: target.ID,
		Mission:  fleet.MissionTransport,
		Units:    shared.Amounts{"cargo_hauler": 1},
		Cargo:    shared.Amounts{shared.ResourceCarbon: 601},
	})

	// Assert
	require.Error(t, err)
	var capacity *shared.CapacityExceededError
	assert.ErrorAs(t, err, &capacity)
}

func TestDispatchFleet_CargoOnAttackMissionRejected(t *testing.T) {
	// Arrange
	f := newFleetFixture(t)
	f.addUser(t, 1)
	origin := f.addPlanet(t, &planet.Planet{
		UserID: 1,
		Carbon: 1000,
		Units:  []*planet.PlanetUnit{{UnitType: "cargo_hauler", Count: 1}},
	})
	target := f.addPlanet(t, &planet.Planet{UserID: 2, Position: shared.Position{X: 17}})

	// Act
	_, err := f.dispatchHandler().Handle(context.Background(), &appfleet.DispatchFleetCommand{
		UserID:   1,
		OriginID: origin.ID,
		TargetID: target.ID,
		Mission:  fleet.MissionAttack,
		Units:    shared.Amounts{"cargo_hauler": 1},
		Cargo:    shared.Amounts{shared.ResourceCarbon: 100},
	})

	// Assert
	require.Error(t, err)
	var validation *shared.ValidationError
	assert.ErrorAs(t, err, &validation)
}
