package queries_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/industry-go/internal/application/common"
	"github.com/andrescamacho/industry-go/internal/application/industry/queries"
	"github.com/andrescamacho/industry-go/internal/application/industry/services"
	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/production"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
	"github.com/andrescamacho/industry-go/test/helpers"
)

var (
	noTax      = 0.0
	reactorBay = services.Location{SystemID: helpers.Jita, InstallationTypeID: helpers.ReactorArray, TaxRate: &noTax}
	jita44     = services.Location{StationID: helpers.Jita44}
)

func newMediator(t *testing.T) common.Mediator {
	t.Helper()
	factory := services.NewContextFactory(helpers.NewFixtureCatalog(t), nil, industry.Providers{
		Character:  helpers.NeutralCharacter(),
		Blueprints: industry.StaticBlueprintModifier{Default: industry.ResearchLevels{ME: 10, TE: 20}},
		Clock:      shared.NewMockClock(helpers.FixtureTime),
	}, services.ContextDefaults{TaxRate: 0.1})
	engine := production.NewEngine(0)

	m := common.NewMediator()
	react := queries.NewReactHandler(factory, engine)
	manufacture := queries.NewManufactureHandler(factory, engine)
	require.NoError(t, common.RegisterHandler[*queries.ReactQuery](m, react))
	require.NoError(t, common.RegisterHandler[*queries.ReactExactQuery](m, react))
	require.NoError(t, common.RegisterHandler[*queries.ManufactureQuery](m, manufacture))
	require.NoError(t, common.RegisterHandler[*queries.CopyQuery](m, manufacture))
	require.NoError(t, common.RegisterHandler[*queries.InventQuery](m, manufacture))
	require.NoError(t, common.RegisterHandler[*queries.ReprocessQuery](m, queries.NewReprocessHandler(factory, engine)))
	require.NoError(t, common.RegisterHandler[*queries.BestFacilityQuery](m, queries.NewBestFacilityHandler(factory)))
	return m
}

func TestReactQuery_AlchemyTotals(t *testing.T) {
	// Arrange
	m := newMediator(t)

	// Act
	resp, err := m.Send(context.Background(), &queries.ReactQuery{
		Location:   reactorBay,
		ReactionID: helpers.AlchemyReaction,
		Cycles:     720,
		Reprocess:  true,
		Feedback:   true,
	})

	// Assert
	require.NoError(t, err)
	process := resp.(*queries.ProcessResponse)
	assert.Equal(t, map[int64]float64{helpers.Platinum: 72000, helpers.Technetium: 7200}, process.TotalMaterial.ToMap())
	assert.Equal(t, 720*3600.0, process.TotalSeconds)
	assert.Equal(t, 0, process.Depth)
}

func TestReactExactQuery(t *testing.T) {
	m := newMediator(t)

	resp, err := m.Send(context.Background(), &queries.ReactExactQuery{
		Location:   reactorBay,
		ReactionID: helpers.TechniteReaction,
		Units:      14400,
	})

	require.NoError(t, err)
	root := resp.(*queries.ProcessResponse).Tree
	assert.Equal(t, 72.0, root.MustNode(root.Root()).Runs)
}

func TestManufactureQuery(t *testing.T) {
	m := newMediator(t)

	resp, err := m.Send(context.Background(), &queries.ManufactureQuery{
		Location:    jita44,
		BlueprintID: helpers.RifterBlueprint,
		Runs:        1,
	})

	require.NoError(t, err)
	process := resp.(*queries.ProcessResponse)
	assert.Equal(t, 28800.0, process.TotalMaterial.Quantity(helpers.Tritanium))
	assert.InDelta(t, 400000*0.05*1.1, process.TotalCost, 1e-6)
}

func TestInventQuery(t *testing.T) {
	m := newMediator(t)

	resp, err := m.Send(context.Background(), &queries.InventQuery{Location: jita44, BlueprintID: helpers.RifterBlueprint})

	require.NoError(t, err)
	invent := resp.(*queries.InventResponse)
	assert.InDelta(t, 0.3, invent.Probability, 1e-12)
	assert.InDelta(t, 63900/0.3, invent.Expected.Seconds, 1e-6)
}

func TestReprocessQuery(t *testing.T) {
	m := newMediator(t)

	resp, err := m.Send(context.Background(), &queries.ReprocessQuery{
		Location: jita44,
		ItemID:   helpers.CompressedVeldspar,
		Units:    1,
	})

	require.NoError(t, err)
	reprocess := resp.(*queries.ReprocessResponse)
	assert.Equal(t, helpers.Jita44, reprocess.StationID)
	assert.InDelta(t, 0.5, reprocess.Yield, 1e-12)
	assert.Equal(t, 200.0, reprocess.Materials.Quantity(helpers.Tritanium))
}

func TestBestFacilityQuery(t *testing.T) {
	m := newMediator(t)

	resp, err := m.Send(context.Background(), &queries.BestFacilityQuery{
		Location:  reactorBay,
		Activity:  shared.ActivityReaction,
		SubjectID: helpers.FulleridesReaction,
	})

	require.NoError(t, err)
	facility := resp.(*queries.BestFacilityResponse)
	assert.Equal(t, helpers.ReactionLine, facility.AssemblyLineID)
	assert.Equal(t, helpers.Jita, facility.Resolved.SolarSystemID)

	_, err = m.Send(context.Background(), &queries.BestFacilityQuery{
		Location:  jita44,
		Activity:  shared.ActivityReaction,
		SubjectID: helpers.FulleridesReaction,
	})
	assert.ErrorIs(t, err, shared.ErrNoCompatibleFacility)
}
