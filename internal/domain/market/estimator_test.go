package market_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/industry-go/internal/domain/market"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

var generatedAt = time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC)

func order(price float64, volume, minVolume int64, isBuy bool, age time.Duration) market.Order {
	return market.Order{
		Price:           price,
		VolumeRemaining: volume,
		MinVolume:       minVolume,
		IsBuy:           isBuy,
		IssuedAt:        generatedAt.Add(-age),
	}
}

func bookSnapshot(orders ...market.Order) market.OrderSnapshot {
	return market.OrderSnapshot{ItemID: 34, RegionID: 10000002, GeneratedAt: generatedAt, Orders: orders}
}

func sampleOrders() []market.Order {
	return []market.Order{
		order(10, 30, 1, false, 100*time.Second),
		order(9, 10, 1, false, 200*time.Second),
		order(11, 100, 1, false, 50*time.Second),
		order(9.5, 5, 5000, false, time.Hour),
		order(12, 1000, 1, false, time.Hour),
		order(8, 20, 1, true, time.Minute),
		order(8.5, 40, 2000, true, time.Minute),
		order(7.9, 100, 1, true, time.Minute),
		order(5, 500, 1, true, time.Minute),
	}
}

func TestEstimatePrices_SellSide(t *testing.T) {
	// Arrange
	snapshot := bookSnapshot(sampleOrders()...)

	// Act
	stat := market.EstimatePrices(snapshot, market.Baseline{AvgVolume: 1000, AvgTransactions: 50})

	// Assert
	require.NotNil(t, stat.SellPrice)
	assert.InDelta(t, 1490.0/140.0, *stat.SellPrice, 1e-12)
	require.NotNil(t, stat.AvgSellOrderAge)
	assert.Equal(t, int64(71), *stat.AvgSellOrderAge)
	require.NotNil(t, stat.SupplyIn5)
	assert.Equal(t, int64(145), *stat.SupplyIn5)
}

func TestEstimatePrices_BuySide(t *testing.T) {
	snapshot := bookSnapshot(sampleOrders()...)

	stat := market.EstimatePrices(snapshot, market.Baseline{AvgVolume: 1000, AvgTransactions: 50})

	require.NotNil(t, stat.BuyPrice)
	assert.InDelta(t, 950.0/120.0, *stat.BuyPrice, 1e-12)
	assert.Equal(t, int64(60), *stat.AvgBuyOrderAge)
	assert.Equal(t, int64(120), *stat.DemandIn5)
}

func TestEstimatePrices_StampsIdentityAndDay(t *testing.T) {
	stat := market.EstimatePrices(bookSnapshot(sampleOrders()...), market.Baseline{AvgVolume: 1000, AvgTransactions: 50})

	assert.Equal(t, int64(34), stat.ItemID)
	assert.Equal(t, int64(10000002), stat.RegionID)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), stat.Date)
	assert.Equal(t, generatedAt, stat.GeneratedAt)
	assert.Equal(t, 50.0, stat.AvgTransactions)
}

func TestEstimatePrices_OrdersBeyondCutoffDoNotChangeEstimate(t *testing.T) {
	baseline := market.Baseline{AvgVolume: 1000, AvgTransactions: 50}
	before := market.EstimatePrices(bookSnapshot(sampleOrders()...), baseline)

	orders := append(sampleOrders(),
		order(50, 1_000_000, 1, false, time.Hour),
		order(1, 1_000_000, 1, true, time.Hour),
	)
	after := market.EstimatePrices(bookSnapshot(orders...), baseline)

	assert.Equal(t, *before.SellPrice, *after.SellPrice)
	assert.Equal(t, *before.BuyPrice, *after.BuyPrice)
	assert.Equal(t, *before.SupplyIn5, *after.SupplyIn5)
	assert.Equal(t, *before.DemandIn5, *after.DemandIn5)
}

func TestEstimatePrices_IndependentOfFeedOrder(t *testing.T) {
	baseline := market.Baseline{AvgVolume: 1000, AvgTransactions: 50}
	orders := sampleOrders()
	reversed := make([]market.Order, len(orders))
	for i, o := range orders {
		reversed[len(orders)-1-i] = o
	}

	a := market.EstimatePrices(bookSnapshot(orders...), baseline)
	b := market.EstimatePrices(bookSnapshot(reversed...), baseline)

	assert.Equal(t, *a.SellPrice, *b.SellPrice)
	assert.Equal(t, *a.BuyPrice, *b.BuyPrice)
}

func TestEstimatePrices_EmptySideIsUndefined(t *testing.T) {
	snapshot := bookSnapshot(order(10, 30, 1, false, time.Minute))

	stat := market.EstimatePrices(snapshot, market.Baseline{AvgVolume: 1000})

	assert.NotNil(t, stat.SellPrice)
	assert.Nil(t, stat.BuyPrice)
	assert.Nil(t, stat.AvgBuyOrderAge)
	assert.Nil(t, stat.DemandIn5)
}

func TestEstimatePrices_NoOrders(t *testing.T) {
	stat := market.EstimatePrices(bookSnapshot(), market.Baseline{})

	assert.Nil(t, stat.SellPrice)
	assert.Nil(t, stat.BuyPrice)
	assert.Equal(t, 1.0, stat.AvgVolume)
	assert.Equal(t, 1.0, stat.AvgTransactions)
}

func TestEstimatePrices_FlooredBaselineUsesBestOrder(t *testing.T) {
	snapshot := bookSnapshot(
		order(10, 3, 1, false, time.Minute),
		order(20, 3, 1, false, time.Minute),
	)

	stat := market.EstimatePrices(snapshot, market.Baseline{AvgVolume: 0})

	assert.Equal(t, 10.0, *stat.SellPrice)
}

func TestEstimatePrices_SellBandIgnoresMinimumVolume(t *testing.T) {
	snapshot := bookSnapshot(
		order(10, 100, 1, false, time.Minute),
		order(10.2, 40, 5000, false, time.Minute),
	)

	stat := market.EstimatePrices(snapshot, market.Baseline{AvgVolume: 1000})

	assert.Equal(t, 10.0, *stat.SellPrice)
	assert.Equal(t, int64(140), *stat.SupplyIn5)
}

func TestPriceStat_SellPriceAt(t *testing.T) {
	price := 12.5
	stat := &market.PriceStat{ItemID: 34, RegionID: 10000002, GeneratedAt: generatedAt, SellPrice: &price}

	got, err := stat.SellPriceAt(generatedAt.Add(time.Hour), 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 12.5, got)

	_, err = stat.SellPriceAt(generatedAt.Add(3*time.Hour), 2*time.Hour)
	assert.ErrorIs(t, err, shared.ErrStaleData)

	_, err = stat.BuyPriceAt(generatedAt, time.Hour)
	assert.ErrorIs(t, err, shared.ErrDataUnavailable)
}

func TestWeeklyBaseline(t *testing.T) {
	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var history []market.DailyHistory
	for i := 1; i <= 10; i++ {
		history = append(history, market.DailyHistory{
			Date:         asOf.AddDate(0, 0, -i),
			Volume:       700,
			Transactions: 14,
		})
	}

	baseline := market.WeeklyBaseline(history, asOf)

	assert.Equal(t, 700.0, baseline.AvgVolume)
	assert.Equal(t, 14.0, baseline.AvgTransactions)
}

func TestWeeklyBaseline_IgnoresOpenDay(t *testing.T) {
	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	history := []market.DailyHistory{
		{Date: asOf, Volume: 7000, Transactions: 70},
		{Date: asOf.AddDate(0, 0, -1), Volume: 70, Transactions: 7},
		{Date: asOf.AddDate(0, 0, -7), Volume: 70, Transactions: 7},
		{Date: asOf.AddDate(0, 0, -8), Volume: 7000, Transactions: 70},
	}

	baseline := market.WeeklyBaseline(history, asOf)

	assert.Equal(t, 20.0, baseline.AvgVolume)
	assert.Equal(t, 2.0, baseline.AvgTransactions)
}

func TestOrderSnapshot_Validate(t *testing.T) {
	assert.NoError(t, bookSnapshot(sampleOrders()...).Validate())
	assert.ErrorIs(t, bookSnapshot(order(-1, 1, 1, false, 0)).Validate(), market.ErrInvalidPrice)
	assert.ErrorIs(t, bookSnapshot(order(1, 0, 1, false, 0)).Validate(), market.ErrInvalidVolume)
}
