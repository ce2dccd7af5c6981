package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	staticcatalog "github.com/stellardrift/stellardrift-go/internal/adapters/catalog"
	"github.com/stellardrift/stellardrift-go/internal/domain/catalog"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

func TestDefaultCatalog_BuildingLookups(t *testing.T) {
	// Arrange
	c, err := staticcatalog.NewDefaultCatalog()
	require.NoError(t, err)

	// Act
	info := c.BuildingInfo("carbon_extractor")
	level1 := c.LevelStats("carbon_extractor", 1)
	level3 := c.LevelStats("carbon_extractor", 3)

	// Assert
	require.NotNil(t, info)
	assert.Equal(t, catalog.ClassProduction, info.Class)
	assert.Equal(t, 2, info.Size)
	assert.Equal(t, 3, info.MaxLevel)
	require.NotNil(t, level1)
	assert.Equal(t, shared.ResourceCarbon, level1.Produces)
	assert.Equal(t, 25.0, level1.ProductionPerHour)
	assert.Equal(t, 20, level1.Workers)
	assert.Equal(t, 60, level1.Cost.Get(shared.ResourceCarbon))
	require.NotNil(t, level3)
	assert.Equal(t, 140.0, level3.ProductionPerHour)
}

func TestDefaultCatalog_LevelOutOfRange(t *testing.T) {
	c, err := staticcatalog.NewDefaultCatalog()
	require.NoError(t, err)

	assert.Nil(t, c.LevelStats("carbon_extractor", 0))
	assert.Nil(t, c.LevelStats("carbon_extractor", 4))
	assert.Nil(t, c.LevelStats("unknown_building", 1))
	assert.Nil(t, c.BuildingInfo("unknown_building"))
}

func TestDefaultCatalog_UnitAndToolLookups(t *testing.T) {
	c, err := staticcatalog.NewDefaultCatalog()
	require.NoError(t, err)

	marine := c.UnitStats("space_marine")
	require.NotNil(t, marine)
	assert.Equal(t, 40.0, marine.SpeedPerHour)
	assert.Equal(t, 4.0, marine.FoodUpkeep)
	assert.Equal(t, 10, marine.Attack)
	assert.Equal(t, 40, marine.CargoCapacity)

	hauler := c.UnitStats("cargo_hauler")
	require.NotNil(t, hauler)
	assert.Equal(t, 600, hauler.CargoCapacity)

	charge := c.ToolStats("breaching_charge")
	require.NotNil(t, charge)
	assert.Equal(t, 90, charge.BuildSeconds)

	assert.Nil(t, c.UnitStats("unknown_unit"))
	assert.Nil(t, c.ToolStats("unknown_tool"))
}

func TestDefaultCatalog_CapitalShipTables(t *testing.T) {
	c, err := staticcatalog.NewDefaultCatalog()
	require.NoError(t, err)

	ship := c.CapitalShipStats()
	require.NotNil(t, ship)
	assert.Equal(t, 1200.0, ship.MaxHP)
	assert.Equal(t, 2, ship.RepairPhases)
	require.Len(t, ship.Phases, 4)
	assert.Equal(t, "airframe", ship.Phases[0].Name)
	assert.Equal(t, 2000, ship.Phases[0].Cost.Get(shared.ResourceCarbon))
	assert.Equal(t, 200, ship.Phases[0].TroopCapacity)
}

func TestParse_RejectsBuildingWithoutLevels(t *testing.T) {
	doc := []byte("buildings:\n  empty_shed:\n    class: production\n    size: 1\n    levels: []\n")

	_, err := staticcatalog.Parse(doc)

	assert.ErrorContains(t, err, "empty_shed")
}

func TestLoadCatalog_EmptyPathUsesEmbeddedTables(t *testing.T) {
	c, err := staticcatalog.LoadCatalog("")

	require.NoError(t, err)
	assert.NotNil(t, c.BuildingInfo("carbon_extractor"))
}
