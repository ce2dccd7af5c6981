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
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

func newConstructionFixture(t *testing.T) (*economy.ConstructionHandler, *syncFixture) {
	f := newSyncFixture(t)
	cat, err := catalogAdapter.NewDefaultCatalog()
	require.NoError(t, err)
	return economy.NewConstructionHandler(f.sync, f.planets, cat, f.clock), f
}

func TestStartConstruction(t *testing.T) {
	// Arrange
	handler, f := newConstructionFixture(t)
	f.addUser(t, 1)
	p := f.addPlanet(t, &planet.Planet{UserID: 1, Carbon: 200, Titanium: 200})

	// Act
	resp, err := handler.Handle(context.Background(), &economy.StartConstructionCommand{
		PlanetID: p.ID, UserID: 1, BuildingType: "carbon_extractor", X: 0, Y: 0,
	})

	// Assert
	require.NoError(t, err)
	result, ok := resp.(*economy.ConstructionResponse)
	require.True(t, ok)
	assert.Equal(t, f.clock.Now().Add(60*time.Second), result.FinishTime)
	assert.NotZero(t, result.BuildingID, "the slot points at the stored row")

	stored, err := f.planets.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 140.0, stored.Carbon, "level 1 cost debited")
	assert.Equal(t, 160.0, stored.Titanium)
	require.NotNil(t, stored.Construction)
	assert.Equal(t, result.BuildingID, stored.Construction.BuildingID)
	require.Len(t, stored.Buildings, 1)
	assert.Equal(t, planet.BuildingStatusConstructing, stored.Buildings[0].Status)
}

func TestStartConstruction_Validation(t *testing.T) {
	handler, f := newConstructionFixture(t)
	f.addUser(t, 1)
	p := f.addPlanet(t, &planet.Planet{UserID: 1, Carbon: 1000, Titanium: 1000})

	cases := []struct {
		name string
		cmd  *economy.StartConstructionCommand
	}{
		{"unknown type", &economy.StartConstructionCommand{PlanetID: p.ID, UserID: 1, BuildingType: "orbital_lift"}},
		{"out of bounds", &economy.StartConstructionCommand{PlanetID: p.ID, UserID: 1, BuildingType: "carbon_extractor", X: 9, Y: 0}},
		{"not owned", &economy.StartConstructionCommand{PlanetID: p.ID, UserID: 2, BuildingType: "carbon_extractor"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := handler.Handle(context.Background(), tc.cmd)
			assert.Error(t, err)
		})
	}
}

func TestStartConstruction_RejectsOverlap(t *testing.T) {
	// Arrange - an existing 2x2 extractor at (2,2)
	handler, f := newConstructionFixture(t)
	f.addUser(t, 1)
	p := f.addPlanet(t, &planet.Planet{
		UserID: 1, Carbon: 1000, Titanium: 1000,
		Buildings: []*planet.Building{
			{Type: "carbon_extractor", Level: 1, X: 2, Y: 2, Status: planet.BuildingStatusActive},
		},
	})

	// Act - footprint (3,3)-(4,4) clips the existing one
	_, err := handler.Handle(context.Background(), &economy.StartConstructionCommand{
		PlanetID: p.ID, UserID: 1, BuildingType: "titanium_mine", X: 3, Y: 3,
	})

	// Assert
	var validation *shared.ValidationError
	require.ErrorAs(t, err, &validation)

	// Act - adjacent placement is fine
	_, err = handler.Handle(context.Background(), &economy.StartConstructionCommand{
		PlanetID: p.ID, UserID: 1, BuildingType: "titanium_mine", X: 4, Y: 2,
	})
	assert.NoError(t, err)
}

func TestStartConstruction_SlotOccupied(t *testing.T) {
	// Arrange
	handler, f := newConstructionFixture(t)
	f.addUser(t, 1)
	p := f.addPlanet(t, &planet.Planet{UserID: 1, Carbon: 1000, Titanium: 1000})

	_, err := handler.Handle(context.Background(), &economy.StartConstructionCommand{
		PlanetID: p.ID, UserID: 1, BuildingType: "carbon_extractor", X: 0, Y: 0,
	})
	require.NoError(t, err)

	// Act - the single slot is busy
	_, err = handler.Handle(context.Background(), &economy.StartConstructionCommand{
		PlanetID: p.ID, UserID: 1, BuildingType: "titanium_mine", X: 4, Y: 4,
	})

	// Assert
	assert.Error(t, err)
}

func TestStartConstruction_InsufficientResources(t *testing.T) {
	handler, f := newConstructionFixture(t)
	f.addUser(t, 1)
	p := f.addPlanet(t, &planet.Planet{UserID: 1, Carbon: 10})

	_, err := handler.Handle(context.Background(), &economy.StartConstructionCommand{
		PlanetID: p.ID, UserID: 1, BuildingType: "carbon_extractor",
	})

	var insufficient *shared.InsufficientResourcesError
	assert.ErrorAs(t, err, &insufficient)
}

func TestUpgradeBuilding(t *testing.T) {
	// Arrange
	handler, f := newConstructionFixture(t)
	f.addUser(t, 1)
	p := f.addPlanet(t, &planet.Planet{
		UserID: 1, Carbon: 1000, Titanium: 1000,
		Buildings: []*planet.Building{
			{Type: "carbon_extractor", Level: 1, Status: planet.BuildingStatusActive},
		},
	})

	// Act
	resp, err := handler.Handle(context.Background(), &economy.UpgradeBuildingCommand{
		PlanetID: p.ID, UserID: 1, BuildingID: p.Buildings[0].ID,
	})

	// Assert - level 2 cost and build time apply
	require.NoError(t, err)
	result := resp.(*economy.ConstructionResponse)
	assert.Equal(t, f.clock.Now().Add(180*time.Second), result.FinishTime)

	stored, err := f.planets.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 850.0, stored.Carbon)
	assert.Equal(t, planet.BuildingStatusUpgrading, stored.Buildings[0].Status)
	assert.Equal(t, 1, stored.Buildings[0].Level, "level rises only when the upgrade finishes")
}

func TestUpgradeBuilding_MaxLevel(t *testing.T) {
	handler, f := newConstructionFixture(t)
	f.addUser(t, 1)
	p := f.addPlanet(t, &planet.Planet{
		UserID: 1, Carbon: 10000, Titanium: 10000,
		Buildings: []*planet.Building{
			{Type: "carbon_extractor", Level: 3, Status: planet.BuildingStatusActive},
		},
	})

	_, err := handler.Handle(context.Background(), &economy.UpgradeBuildingCommand{
		PlanetID: p.ID, UserID: 1, BuildingID: p.Buildings[0].ID,
	})

	assert.Error(t, err)
}

func TestDemolishBuilding(t *testing.T) {
	// Arrange
	handler, f := newConstructionFixture(t)
	f.addUser(t, 1)
	p := f.addPlanet(t, &planet.Planet{
		UserID: 1,
		Buildings: []*planet.Building{
			{Type: "carbon_extractor", Level: 1, Status: planet.BuildingStatusActive},
		},
	})

	// Act
	resp, err := handler.Handle(context.Background(), &economy.DemolishBuildingCommand{
		PlanetID: p.ID, UserID: 1, BuildingID: p.Buildings[0].ID,
	})

	// Assert - demolition takes half the build time
	require.NoError(t, err)
	result := resp.(*economy.ConstructionResponse)
	assert.Equal(t, f.clock.Now().Add(30*time.Second), result.FinishTime)

	stored, err := f.planets.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, planet.BuildingStatusDemolishing, stored.Buildings[0].Status)
}
