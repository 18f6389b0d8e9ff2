package sde_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/industry-go/internal/adapters/sde"
	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

const dumpSchema = `
CREATE TABLE invGroups (groupID INTEGER PRIMARY KEY, categoryID INTEGER);
CREATE TABLE invTypes (typeID INTEGER PRIMARY KEY, groupID INTEGER, typeName TEXT, volume REAL,
	portionSize INTEGER, basePrice REAL, marketGroupID INTEGER);
CREATE TABLE invTypeMaterials (typeID INTEGER, materialTypeID INTEGER, quantity INTEGER);
CREATE TABLE industryBlueprints (typeID INTEGER PRIMARY KEY, maxProductionLimit INTEGER);
CREATE TABLE industryActivity (typeID INTEGER, activityID INTEGER, time INTEGER);
CREATE TABLE industryActivityMaterials (typeID INTEGER, activityID INTEGER, materialTypeID INTEGER, quantity INTEGER);
CREATE TABLE industryActivityProducts (typeID INTEGER, activityID INTEGER, productTypeID INTEGER, quantity INTEGER);
CREATE TABLE industryActivitySkills (typeID INTEGER, activityID INTEGER, skillID INTEGER, level INTEGER);
CREATE TABLE industryActivityProbabilities (typeID INTEGER, activityID INTEGER, productTypeID INTEGER, probability REAL);
CREATE TABLE mapSolarSystems (solarSystemID INTEGER PRIMARY KEY, solarSystemName TEXT, regionID INTEGER, security REAL);
CREATE TABLE staStations (stationID INTEGER PRIMARY KEY, stationName TEXT, solarSystemID INTEGER,
	corporationID INTEGER, operationID INTEGER, reprocessingEfficiency REAL);
CREATE TABLE crpNPCCorporations (corporationID INTEGER PRIMARY KEY, factionID INTEGER);
CREATE TABLE staOperationServices (operationID INTEGER, serviceID INTEGER);
CREATE TABLE ramAssemblyLineTypes (assemblyLineTypeID INTEGER PRIMARY KEY, assemblyLineTypeName TEXT,
	baseTimeMultiplier REAL, baseMaterialMultiplier REAL, baseCostMultiplier REAL, activityID INTEGER);
CREATE TABLE ramAssemblyLineTypeDetailPerGroup (assemblyLineTypeID INTEGER, groupID INTEGER,
	timeMultiplier REAL, materialMultiplier REAL, costMultiplier REAL);
CREATE TABLE ramAssemblyLineTypeDetailPerCategory (assemblyLineTypeID INTEGER, categoryID INTEGER,
	timeMultiplier REAL, materialMultiplier REAL, costMultiplier REAL);
CREATE TABLE ramAssemblyLineStations (stationID INTEGER, assemblyLineTypeID INTEGER);
CREATE TABLE ramInstallationTypeContents (installationTypeID INTEGER, assemblyLineTypeID INTEGER);
`

const dumpData = `
INSERT INTO invGroups VALUES (18, 4), (428, 4), (427, 4), (25, 6), (105, 9), (436, 24), (270, 16), (462, 25);
INSERT INTO invTypes VALUES
	(34, 18, 'Tritanium', 0.01, 1, 2, 1857),
	(35, 18, 'Pyerite', 0.01, 1, 8, 1857),
	(16640, 427, 'Platinum', 0.05, 1, 0, 501),
	(16644, 427, 'Technetium', 0.05, 1, 0, 501),
	(16662, 428, 'Platinum Technite', 1, 1, 0, 500),
	(587, 25, 'Rifter', 27289, 1, 0, 64),
	(691, 105, 'Rifter Blueprint', 0.01, 1, 0, NULL),
	(11401, 105, 'Jaguar Blueprint', 0.01, 1, 0, NULL),
	(17961, 436, 'Platinum Technite Reaction Formula', 0.01, 1, 0, NULL),
	(21791, 270, 'Minmatar Encryption Methods', 0.01, 1, 0, NULL),
	(11452, 270, 'Mechanical Engineering', 0.01, 1, 0, NULL),
	(28430, 462, 'Compressed Veldspar', 0.1, 1, 0, 512);
INSERT INTO invTypeMaterials VALUES (28430, 34, 400);
INSERT INTO industryBlueprints VALUES (691, 10), (17961, 1);
INSERT INTO industryActivity VALUES (691, 1, 6000), (691, 5, 4800), (691, 8, 63900), (17961, 11, 10800);
INSERT INTO industryActivityMaterials VALUES
	(691, 1, 34, 32000), (691, 1, 35, 6000),
	(17961, 11, 16640, 100), (17961, 11, 16644, 100);
INSERT INTO industryActivityProducts VALUES (691, 1, 587, 1), (691, 8, 11401, 10), (17961, 11, 16662, 200);
INSERT INTO industryActivitySkills VALUES (691, 1, 3380, 1), (691, 8, 21791, 1), (691, 8, 11452, 1), (17961, 11, 45746, 1);
INSERT INTO industryActivityProbabilities VALUES (691, 8, 11401, 0.3);
INSERT INTO mapSolarSystems VALUES (30000142, 'Jita', 10000002, 0.95);
INSERT INTO staStations VALUES (60003760, 'Jita IV - Moon 4 - Caldari Navy Assembly Plant', 30000142, 1000035, 26, 0.5);
INSERT INTO crpNPCCorporations VALUES (1000035, 500001);
INSERT INTO staOperationServices VALUES (26, 16), (26, 64);
INSERT INTO ramAssemblyLineTypes VALUES (1, 'Station manufacturing', 1, 1, 1, 1), (10, 'Reactor array', 1, 1, NULL, 11);
INSERT INTO ramAssemblyLineTypeDetailPerCategory VALUES (1, 6, 1, 1, 1), (10, 24, 1, 1, 1);
INSERT INTO ramAssemblyLineTypeDetailPerGroup VALUES (1, 105, 0.9, 0.98, 1);
INSERT INTO ramAssemblyLineStations VALUES (60003760, 1);
INSERT INTO ramInstallationTypeContents VALUES (16869, 10);
`

func newDump(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sde.sqlite")
	db, err := sqlx.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(dumpSchema)
	require.NoError(t, err)
	_, err = db.Exec(dumpData)
	require.NoError(t, err)
	return path
}

func TestSQLLoader_LoadsItemsAndFormulas(t *testing.T) {
	// Arrange
	path := newDump(t)

	// Act
	catalog, err := sde.Load(context.Background(), "sqlite", path)

	// Assert
	require.NoError(t, err)

	reaction, err := catalog.Reaction(17961)
	require.NoError(t, err)
	assert.Equal(t, map[int64]float64{16640: 100, 16644: 100}, reaction.CycleInputs().ToMap())
	assert.Equal(t, map[int64]float64{16662: 200}, reaction.CycleOutputs().ToMap())
	assert.False(t, reaction.IsAlchemy())

	technite, err := catalog.Item(16662)
	require.NoError(t, err)
	assert.Equal(t, industry.KindReactionProduct, technite.Kind())

	veldspar, err := catalog.Item(28430)
	require.NoError(t, err)
	assert.Equal(t, map[int64]float64{34: 400}, veldspar.ReprocessingMaterials().ToMap())
}

func TestSQLLoader_LoadsBlueprintActivities(t *testing.T) {
	// Arrange
	path := newDump(t)

	// Act
	catalog, err := sde.Load(context.Background(), "sqlite", path)

	// Assert
	require.NoError(t, err)
	bp, err := catalog.Blueprint(691)
	require.NoError(t, err)
	assert.Equal(t, int64(587), bp.ProductID())
	assert.Equal(t, int64(10), bp.MaxRuns())
	assert.Equal(t, 32000*2.0+6000*8.0, bp.BaseJobValue())
	assert.Equal(t, 6000.0, bp.Manufacturing().Seconds)

	copying, ok := bp.Copying()
	require.True(t, ok)
	assert.Equal(t, 4800.0, copying.Seconds)

	invention, ok := bp.Invention()
	require.True(t, ok)
	assert.Equal(t, 0.3, invention.BaseChance)
	assert.Equal(t, int64(11401), invention.ProductBlueprintID)
	assert.Equal(t, int64(10), invention.ProductRuns)
	assert.Equal(t, int64(21791), invention.EncryptionSkillID)
	assert.Equal(t, []int64{11452}, invention.DatacoreSkillIDs)

	rifter, err := catalog.Item(587)
	require.NoError(t, err)
	assert.Equal(t, industry.KindManufacturable, rifter.Kind())
}

func TestSQLLoader_LoadsLocations(t *testing.T) {
	// Arrange
	path := newDump(t)

	// Act
	catalog, err := sde.Load(context.Background(), "sqlite", path)

	// Assert
	require.NoError(t, err)
	station, err := catalog.Station(60003760)
	require.NoError(t, err)
	assert.True(t, station.HasService(industry.ServiceReprocessing))
	assert.True(t, station.HasService(industry.ServiceMarket))
	assert.Equal(t, 0.5, station.ReprocessingEfficiency())
	assert.Equal(t, []int64{1}, station.AssemblyLineIDs()[shared.ActivityManufacturing])
	faction, err := station.FactionID()
	require.NoError(t, err)
	assert.Equal(t, int64(500001), faction)

	jita, err := catalog.SolarSystem(30000142)
	require.NoError(t, err)
	assert.True(t, jita.HasStation(60003760))
	assert.Equal(t, int64(10000002), jita.RegionID())

	line, err := catalog.AssemblyLine(1)
	require.NoError(t, err)
	bp, err := catalog.Blueprint(691)
	require.NoError(t, err)
	mod, ok := line.ModifierFor(bp)
	require.True(t, ok)
	assert.Equal(t, industry.Modifier{M: 0.98, T: 0.9, C: 1}, mod)

	lines, err := catalog.InstallationAssemblyLines(16869)
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, lines[shared.ActivityReaction])
}
