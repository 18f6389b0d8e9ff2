package queries_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/industry-go/internal/application/common"
	"github.com/andrescamacho/industry-go/internal/application/industry/queries"
	"github.com/andrescamacho/industry-go/internal/application/industry/services"
	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/market"
	"github.com/andrescamacho/industry-go/internal/domain/production"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
	"github.com/andrescamacho/industry-go/test/helpers"
)

func newValuationMediator(t *testing.T, prices market.PriceStatRepository) common.Mediator {
	t.Helper()
	factory := services.NewContextFactory(helpers.NewFixtureCatalog(t), nil, industry.Providers{
		Character: helpers.NeutralCharacter(),
		Clock:     shared.NewMockClock(helpers.FixtureTime),
	}, services.ContextDefaults{TaxRate: 0.1})

	m := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*queries.ReactQuery](m, queries.NewReactHandler(factory, production.NewEngine(0))))
	require.NoError(t, common.RegisterHandler[*queries.ValueProcessQuery](m, queries.NewValueProcessHandler(factory, prices)))
	return m
}

func savePrice(t *testing.T, repo *helpers.MockPriceStatRepository, itemID int64, sell, buy *float64, generatedAt time.Time) {
	t.Helper()
	require.NoError(t, repo.Save(context.Background(), &market.PriceStat{
		ItemID:      itemID,
		RegionID:    helpers.TheForge,
		Date:        market.Day(generatedAt),
		GeneratedAt: generatedAt,
		SellPrice:   sell,
		BuyPrice:    buy,
	}))
}

func price(v float64) *float64 {
	return &v
}

func computeReaction(t *testing.T, m common.Mediator, reactionID int64, cycles float64) *queries.ProcessResponse {
	t.Helper()
	resp, err := m.Send(context.Background(), &queries.ReactQuery{
		Location:   reactorBay,
		ReactionID: reactionID,
		Cycles:     cycles,
	})
	require.NoError(t, err)
	return resp.(*queries.ProcessResponse)
}

func TestValueProcessQuery_AppliesTaxFactors(t *testing.T) {
	// Arrange
	prices := helpers.NewMockPriceStatRepository()
	savePrice(t, prices, helpers.Platinum, nil, price(10), helpers.FixtureTime)
	savePrice(t, prices, helpers.Technetium, nil, price(20), helpers.FixtureTime)
	savePrice(t, prices, helpers.PlatinumTechnite, price(50), nil, helpers.FixtureTime)
	m := newValuationMediator(t, prices)
	process := computeReaction(t, m, helpers.TechniteReaction, 2)

	// Act
	resp, err := m.Send(context.Background(), &queries.ValueProcessQuery{Location: reactorBay, Tree: process.Tree})

	// Assert
	require.NoError(t, err)
	valuation := resp.(*queries.ValuationResponse)
	assert.Equal(t, helpers.TheForge, valuation.RegionID)
	assert.Equal(t, helpers.Jita44, valuation.MarketStationID)
	assert.InDelta(t, (200*10+200*20)*1.03, valuation.MaterialCost, 1e-9)
	assert.InDelta(t, 400*50*0.95, valuation.OutputValue, 1e-9)
	assert.InDelta(t, process.TotalCost, valuation.JobCost, 1e-9)
	assert.InDelta(t, valuation.OutputValue-valuation.MaterialCost-valuation.JobCost, valuation.Profit, 1e-9)
	assert.Empty(t, valuation.Unpriced)
}

func TestValueProcessQuery_ListsUnpricedItems(t *testing.T) {
	// Arrange
	prices := helpers.NewMockPriceStatRepository()
	savePrice(t, prices, helpers.Platinum, nil, price(10), helpers.FixtureTime)
	savePrice(t, prices, helpers.Technetium, nil, price(20), helpers.FixtureTime.Add(-time.Hour))
	m := newValuationMediator(t, prices)
	process := computeReaction(t, m, helpers.AlchemyReaction, 1)

	// Act
	resp, err := m.Send(context.Background(), &queries.ValueProcessQuery{Location: reactorBay, Tree: process.Tree})

	// Assert
	require.NoError(t, err)
	valuation := resp.(*queries.ValuationResponse)
	assert.InDelta(t, 200*10*1.03, valuation.MaterialCost, 1e-9)
	assert.Zero(t, valuation.OutputValue)
	// Technetium is older than the context's price age limit; the unrefined output has no market
	assert.Equal(t, []int64{helpers.Technetium, helpers.UnrefinedTechnite}, valuation.Unpriced)
}

func TestValueProcessQuery_StrictRejectsStaleQuote(t *testing.T) {
	// Arrange
	prices := helpers.NewMockPriceStatRepository()
	savePrice(t, prices, helpers.Platinum, nil, price(10), helpers.FixtureTime.Add(-time.Hour))
	savePrice(t, prices, helpers.Technetium, nil, price(20), helpers.FixtureTime)
	m := newValuationMediator(t, prices)
	process := computeReaction(t, m, helpers.TechniteReaction, 1)

	// Act
	_, err := m.Send(context.Background(), &queries.ValueProcessQuery{Location: reactorBay, Tree: process.Tree, Strict: true})

	// Assert
	assert.ErrorIs(t, err, shared.ErrStaleData)
}

func TestValueProcessQuery_StrictRejectsItemWithoutMarket(t *testing.T) {
	// Arrange
	prices := helpers.NewMockPriceStatRepository()
	savePrice(t, prices, helpers.Platinum, nil, price(10), helpers.FixtureTime)
	savePrice(t, prices, helpers.Technetium, nil, price(20), helpers.FixtureTime)
	m := newValuationMediator(t, prices)
	process := computeReaction(t, m, helpers.AlchemyReaction, 1)

	// Act
	_, err := m.Send(context.Background(), &queries.ValueProcessQuery{Location: reactorBay, Tree: process.Tree, Strict: true})

	// Assert
	assert.ErrorIs(t, err, shared.ErrDataUnavailable)
}

func TestValueProcessQuery_RequiresTree(t *testing.T) {
	m := newValuationMediator(t, helpers.NewMockPriceStatRepository())

	_, err := m.Send(context.Background(), &queries.ValueProcessQuery{Location: reactorBay})

	assert.Error(t, err)
}
