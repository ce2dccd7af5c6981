package economy_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogAdapter "github.com/stellardrift/stellardrift-go/internal/adapters/catalog"
	"github.com/stellardrift/stellardrift-go/internal/application/economy"
	"github.com/stellardrift/stellardrift-go/internal/domain/planet"
)

func newTrainingFixture(t *testing.T) (*economy.EnqueueTrainingHandler, *syncFixture) {
	f := newSyncFixture(t)
	cat, err := catalogAdapter.NewDefaultCatalog()
	require.NoError(t, err)
	return economy.NewEnqueueTrainingHandler(f.sync, f.planets, cat, f.clock), f
}

func TestEnqueueTraining_Recruitment(t *testing.T) {
	// Arrange
	handler, f := newTrainingFixture(t)
	f.addUser(t, 1)
	p := f.addPlanet(t, &planet.Planet{UserID: 1, Carbon: 500, Titanium: 500})

	// Act - 5 marines at 20/35 each, 45s each
	resp, err := handler.Handle(context.Background(), &economy.EnqueueTrainingCommand{
		PlanetID: p.ID, UserID: 1, Kind: planet.QueueRecruitment, ItemType: "space_marine", Count: 5,
	})

	// Assert
	require.NoError(t, err)
	result := resp.(*economy.EnqueueTrainingResponse)
	assert.Equal(t, f.clock.Now().Add(225*time.Second), result.FinishTime)

	stored, err := f.planets.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 400.0, stored.Carbon)
	assert.Equal(t, 325.0, stored.Titanium)
	require.Len(t, stored.RecruitmentQueue, 1)
	assert.Equal(t, 5, stored.RecruitmentQueue[0].Count)
}

func TestEnqueueTraining_BatchesChain(t *testing.T) {
	// Arrange
	handler, f := newTrainingFixture(t)
	f.addUser(t, 1)
	p := f.addPlanet(t, &planet.Planet{UserID: 1, Carbon: 2000, Titanium: 2000})

	_, err := handler.Handle(context.Background(), &economy.EnqueueTrainingCommand{
		PlanetID: p.ID, UserID: 1, Kind: planet.QueueRecruitment, ItemType: "space_marine", Count: 4,
	})
	require.NoError(t, err)

	// Act - the second batch starts when the first finishes
	resp, err := handler.Handle(context.Background(), &economy.EnqueueTrainingCommand{
		PlanetID: p.ID, UserID: 1, Kind: planet.QueueRecruitment, ItemType: "ranger_mech", Count: 1,
	})

	// Assert - 4*45s for the marines, then 140s for the mech
	require.NoError(t, err)
	result := resp.(*economy.EnqueueTrainingResponse)
	assert.Equal(t, f.clock.Now().Add((180+140)*time.Second), result.FinishTime)
}

func TestEnqueueTraining_Manufacturing(t *testing.T) {
	// Arrange
	handler, f := newTrainingFixture(t)
	f.addUser(t, 1)
	p := f.addPlanet(t, &planet.Planet{UserID: 1, Carbon: 500, Titanium: 500})

	// Act
	resp, err := handler.Handle(context.Background(), &economy.EnqueueTrainingCommand{
		PlanetID: p.ID, UserID: 1, Kind: planet.QueueManufacturing, ItemType: "breaching_charge", Count: 2,
	})

	// Assert
	require.NoError(t, err)
	result := resp.(*economy.EnqueueTrainingResponse)
	assert.Equal(t, f.clock.Now().Add(180*time.Second), result.FinishTime)

	stored, err := f.planets.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 440.0, stored.Carbon)
	require.Len(t, stored.ManufacturingQueue, 1)
}

func TestEnqueueTraining_TurretRequiresDefenseBuilding(t *testing.T) {
	// Arrange
	handler, f := newTrainingFixture(t)
	f.addUser(t, 1)
	p := f.addPlanet(t, &planet.Planet{UserID: 1, Carbon: 1000, Titanium: 1000})

	// Act - a production building cannot enter the turret queue
	_, err := handler.Handle(context.Background(), &economy.EnqueueTrainingCommand{
		PlanetID: p.ID, UserID: 1, Kind: planet.QueueTurret, ItemType: "carbon_extractor", Count: 1,
	})

	// Assert
	assert.Error(t, err)

	// Act - a turret is accepted
	_, err = handler.Handle(context.Background(), &economy.EnqueueTrainingCommand{
		PlanetID: p.ID, UserID: 1, Kind: planet.QueueTurret, ItemType: "plasma_turret", Count: 1,
	})
	assert.NoError(t, err)
}

func TestEnqueueTraining_Validation(t *testing.T) {
	handler, f := newTrainingFixture(t)
	f.addUser(t, 1)
	p := f.addPlanet(t, &planet.Planet{UserID: 1, Carbon: 10, Titanium: 10})

	cases := []struct {
		name string
		cmd  *economy.EnqueueTrainingCommand
	}{
		{"zero count", &economy.EnqueueTrainingCommand{PlanetID: p.ID, UserID: 1, Kind: planet.QueueRecruitment, ItemType: "space_marine"}},
		{"unknown item", &economy.EnqueueTrainingCommand{PlanetID: p.ID, UserID: 1, Kind: planet.QueueRecruitment, ItemType: "void_walker", Count: 1}},
		{"unknown kind", &economy.EnqueueTrainingCommand{PlanetID: p.ID, UserID: 1, Kind: "smuggling", ItemType: "space_marine", Count: 1}},
		{"insufficient resources", &economy.EnqueueTrainingCommand{PlanetID: p.ID, UserID: 1, Kind: planet.QueueRecruitment, ItemType: "space_marine", Count: 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := handler.Handle(context.Background(), tc.cmd)
			assert.Error(t, err)
		})
	}
}
