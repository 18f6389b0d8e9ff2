package production_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/production"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
	"github.com/andrescamacho/industry-go/test/helpers"
)

var researched = industry.StaticBlueprintModifier{Default: industry.ResearchLevels{ME: 10, TE: 20}}

func TestMaterialQuantity(t *testing.T) {
	tests := []struct {
		name string
		base float64
		runs int64
		me   float64
		m    float64
		want float64
	}{
		{name: "plain", base: 100, runs: 10, me: 1, m: 1, want: 1000},
		{name: "researched", base: 32000, runs: 1, me: 0.9, m: 1, want: 28800},
		{name: "rounds up fractions", base: 2, runs: 1, me: 0.9, m: 1, want: 2},
		{name: "never below runs", base: 1, runs: 10, me: 0.9, m: 0.98, want: 10},
		{name: "facility bonus", base: 500, runs: 3, me: 0.9, m: 0.98, want: 1323},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, production.MaterialQuantity(tt.base, tt.runs, tt.me, tt.m))
		})
	}
}

func TestManufacture_AppliesResearchAndLocation(t *testing.T) {
	// Arrange
	catalog := helpers.NewFixtureCatalog(t)
	ctx := helpers.NewStationContext(t, catalog, researched)

	// Act
	tree, err := production.NewEngine(0).Manufacture(ctx, helpers.RifterBlueprint, 1, 0)

	// Assert
	require.NoError(t, err)
	root := tree.MustNode(tree.Root())
	assert.Equal(t, map[int64]float64{
		helpers.Tritanium:       28800,
		helpers.Pyerite:         5400,
		helpers.Mexallon:        2250,
		helpers.RAMStarshipTech: 2,
	}, root.Input.ToMap())
	assert.Equal(t, map[int64]float64{helpers.Rifter: 1}, root.Output.ToMap())
	assert.InDelta(t, 4800, root.Seconds, 1e-9)
	assert.InDelta(t, 400000*0.05*1.1, root.Cost, 1e-6)
	assert.Equal(t, helpers.ManufacturingLine, root.AssemblyLineID)
}

func TestManufacture_RecursesIntoComponents(t *testing.T) {
	catalog := helpers.NewFixtureCatalog(t)
	ctx := helpers.NewStationContext(t, catalog, researched)

	tree, err := production.NewEngine(0).Manufacture(ctx, helpers.RifterBlueprint, 1, 1)

	require.NoError(t, err)
	root := tree.MustNode(tree.Root())
	assert.False(t, root.Input.Has(helpers.RAMStarshipTech))
	require.Len(t, root.Children(), 1)
	ram := tree.MustNode(root.Children()[0])
	assert.Equal(t, helpers.RAMBlueprint, ram.SubjectID)
	assert.Equal(t, 1.0, ram.Runs)
	assert.Equal(t, 100.0, ram.Output.Quantity(helpers.RAMStarshipTech))
	assert.Equal(t, 28800.0+450, tree.TotalMaterial(tree.Root()).Quantity(helpers.Tritanium))
	assert.Equal(t, 18.0, tree.TotalMaterial(tree.Root()).Quantity(helpers.Fullerides))
}

func TestManufacture_RecursesAcrossActivities(t *testing.T) {
	// Arrange
	catalog := helpers.NewFixtureCatalog(t)
	ctx, err := industry.NewContextWithAssemblyLines(catalog, helpers.Jita, map[shared.Activity][]int64{
		shared.ActivityManufacturing: {helpers.ManufacturingLine},
		shared.ActivityReaction:      {helpers.ReactionLine},
	}, 0.1, industry.Providers{
		Character:  helpers.NeutralCharacter(),
		Blueprints: researched,
		Clock:      shared.NewMockClock(helpers.FixtureTime),
	})
	require.NoError(t, err)

	// Act
	tree, err := production.NewEngine(0).Manufacture(ctx, helpers.RifterBlueprint, 1, 3)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, tree.Depth(tree.Root()))
	total := tree.TotalMaterial(tree.Root())
	assert.False(t, total.Has(helpers.Fullerides))
	assert.False(t, total.Has(helpers.PlatinumTechnite))
	assert.True(t, total.Has(helpers.Platinum))
	assert.True(t, total.Has(helpers.Technetium))
}

func TestManufacture_MissingReactionFacilityFailsRecursion(t *testing.T) {
	catalog := helpers.NewFixtureCatalog(t)
	ctx := helpers.NewStationContext(t, catalog, researched)

	_, err := production.NewEngine(0).Manufacture(ctx, helpers.RifterBlueprint, 1, 2)

	assert.ErrorIs(t, err, shared.ErrNoCompatibleFacility)
}

func TestManufacture_InvalidRuns(t *testing.T) {
	catalog := helpers.NewFixtureCatalog(t)
	ctx := helpers.NewStationContext(t, catalog, researched)

	_, err := production.NewEngine(0).Manufacture(ctx, helpers.RifterBlueprint, 0, 0)

	assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
}

func TestCopy(t *testing.T) {
	catalog := helpers.NewFixtureCatalog(t)
	ctx := helpers.NewStationContext(t, catalog, researched)

	tree, err := production.NewEngine(0).Copy(ctx, helpers.RifterBlueprint, 2, 5)

	require.NoError(t, err)
	root := tree.MustNode(tree.Root())
	assert.Equal(t, map[int64]float64{helpers.RifterBlueprint: 2}, root.Output.ToMap())
	assert.InDelta(t, 48000, root.Seconds, 1e-9)
	assert.InDelta(t, 400000*0.02*10*0.01*1.1, root.Cost, 1e-6)

	_, err = production.NewEngine(0).Copy(ctx, helpers.RifterBlueprint, 1, 11)
	assert.Error(t, err)
}

func TestInvent_ExpectedPerSuccess(t *testing.T) {
	// Arrange
	catalog := helpers.NewFixtureCatalog(t)
	ctx := helpers.NewStationContext(t, catalog, researched)

	// Act
	tree, err := production.NewEngine(0).Invent(ctx, helpers.RifterBlueprint)
	require.NoError(t, err)
	expected, err := production.ExpectedPerSuccess(tree, tree.Root())
	require.NoError(t, err)

	// Assert
	root := tree.MustNode(tree.Root())
	assert.InDelta(t, 0.3, root.Probability, 1e-12)
	assert.Equal(t, helpers.JaguarBlueprint, root.ProducedItemID)
	assert.InDelta(t, 2/0.3, expected.Material.Quantity(helpers.MechanicalDatacore), 1e-9)
	assert.InDelta(t, 63900/0.3, expected.Seconds, 1e-6)
}

func TestInvent_NoInventionData(t *testing.T) {
	catalog := helpers.NewFixtureCatalog(t)
	ctx := helpers.NewStationContext(t, catalog, researched)

	_, err := production.NewEngine(0).Invent(ctx, helpers.RAMBlueprint)

	assert.ErrorIs(t, err, shared.ErrNotFound)
}
