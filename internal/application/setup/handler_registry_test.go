package setup_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/industry-go/internal/application/common"
	industryCommands "github.com/andrescamacho/industry-go/internal/application/industry/commands"
	industryQueries "github.com/andrescamacho/industry-go/internal/application/industry/queries"
	"github.com/andrescamacho/industry-go/internal/application/industry/services"
	pricingCommands "github.com/andrescamacho/industry-go/internal/application/pricing/commands"
	"github.com/andrescamacho/industry-go/internal/application/setup"
	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/production"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
	"github.com/andrescamacho/industry-go/test/helpers"
)

func newRegistry(t *testing.T, feeds setup.Feeds) (*setup.HandlerRegistry, *helpers.MockRecordRepository) {
	t.Helper()
	clock := shared.NewMockClock(helpers.FixtureTime)
	factory := services.NewContextFactory(helpers.NewFixtureCatalog(t), nil, industry.Providers{
		Character: helpers.NeutralCharacter(),
		Clock:     clock,
	}, services.ContextDefaults{TaxRate: 0.1})
	records := helpers.NewMockRecordRepository()

	registry := setup.NewHandlerRegistry(factory, production.NewEngine(0), setup.Repositories{
		PriceStats: helpers.NewMockPriceStatRepository(),
		Baselines:  helpers.NewMockBaselineRepository(),
		Indices:    helpers.NewMockIndexRepository(),
		Records:    records,
	}, feeds, setup.PricingOptions{CacheTTL: time.Hour, LocalSize: 8}, clock)
	return registry, records
}

func TestRegisterAll_WiresComputationAndRecording(t *testing.T) {
	// Arrange
	registry, records := newRegistry(t, setup.Feeds{})
	m := common.NewMediator()
	require.NoError(t, registry.RegisterAll(m))
	noTax := 0.0

	// Act
	resp, err := m.Send(context.Background(), &industryQueries.ReactQuery{
		Location:   services.Location{SystemID: helpers.Jita, InstallationTypeID: helpers.ReactorArray, TaxRate: &noTax},
		ReactionID: helpers.TechniteReaction,
		Cycles:     1,
	})
	require.NoError(t, err)
	tree := resp.(*industryQueries.ProcessResponse).Tree
	recorded, err := m.Send(context.Background(), &industryCommands.RecordProcessCommand{Label: "technite", Tree: tree})

	// Assert
	require.NoError(t, err)
	stored, err := records.FindByID(context.Background(), recorded.(*industryCommands.RecordProcessResponse).RecordID)
	require.NoError(t, err)
	assert.Equal(t, tree.Len(), stored.Tree.Len())
}

func TestRegisterAll_SkipsHandlersWithoutFeeds(t *testing.T) {
	// Arrange
	registry, _ := newRegistry(t, setup.Feeds{})
	m := common.NewMediator()
	require.NoError(t, registry.RegisterAll(m))

	// Act
	_, updateErr := m.Send(context.Background(), &pricingCommands.UpdatePriceStatsCommand{RegionID: helpers.TheForge})
	_, indicesErr := m.Send(context.Background(), &industryCommands.UpdateIndicesCommand{})

	// Assert
	assert.ErrorContains(t, updateErr, "no handler registered")
	assert.ErrorContains(t, indicesErr, "no handler registered")
}

func TestRegisterAll_WithFeeds(t *testing.T) {
	// Arrange
	registry, _ := newRegistry(t, setup.Feeds{
		Orders:  helpers.NewMockOrderFeed(),
		Indices: &helpers.MockIndexFeed{},
	})
	m := common.NewMediator()
	require.NoError(t, registry.RegisterAll(m))

	// Act
	resp, err := m.Send(context.Background(), &industryCommands.UpdateIndicesCommand{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 0, resp.(*industryCommands.UpdateIndicesResponse).Systems)
}

func TestRegisterAll_Twice(t *testing.T) {
	registry, _ := newRegistry(t, setup.Feeds{})
	m := common.NewMediator()
	require.NoError(t, registry.RegisterAll(m))

	assert.Error(t, registry.RegisterAll(m))
}
