package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/industry-go/internal/adapters/cache"
	"github.com/andrescamacho/industry-go/internal/domain/market"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

var generated = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func sampleStat() *market.PriceStat {
	sell, buy := 10.64, 7.92
	age, supply := int64(71), int64(145)
	return &market.PriceStat{
		ItemID:          34,
		RegionID:        10000002,
		Date:            market.Day(generated),
		GeneratedAt:     generated,
		SellPrice:       &sell,
		BuyPrice:        &buy,
		AvgSellOrderAge: &age,
		SupplyIn5:       &supply,
		AvgVolume:       1000,
		AvgTransactions: 10,
	}
}

func TestEncodeDecode_PreservesStat(t *testing.T) {
	// Arrange
	stat := sampleStat()

	// Act
	data, err := cache.Encode(stat)
	require.NoError(t, err)
	decoded, err := cache.Decode(data)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, stat, decoded)
	assert.Equal(t, []byte{0x1f, 0x8b}, data[:2])
}

func TestDecode_RejectsGarbage(t *testing.T) {
	_, err := cache.Decode([]byte("not gzip"))

	assert.Error(t, err)
}

func TestTTL_SkipsEntriesAboutToExpire(t *testing.T) {
	tests := []struct {
		name      string
		expiresIn time.Duration
		wantOK    bool
	}{
		{"one hour", time.Hour, true},
		{"exactly one second", time.Second, true},
		{"below one second", 999 * time.Millisecond, false},
		{"already expired", -time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ttl, ok := cache.TTL(generated, generated.Add(tt.expiresIn))

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.expiresIn, ttl)
		})
	}
}

func TestKey_IncludesRegionAndItem(t *testing.T) {
	assert.Equal(t, "industry:price:10000002:34", cache.Key("industry:price", 34, 10000002))
}

// TestRedisPriceCache_RoundTrip runs against a live server named by IND_TEST_REDIS_ADDR
func TestRedisPriceCache_RoundTrip(t *testing.T) {
	addr := os.Getenv("IND_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("IND_TEST_REDIS_ADDR not set")
	}

	// Arrange
	ctx := context.Background()
	clock := shared.NewMockClock(generated)
	c, err := cache.NewRedisPriceCache(ctx, cache.RedisConfig{Address: addr, Prefix: "industry-test:price"}, clock)
	require.NoError(t, err)
	defer c.Close()
	stat := sampleStat()
	t.Cleanup(func() { _ = c.Delete(ctx, stat.ItemID, stat.RegionID) })

	// Act
	require.NoError(t, c.Set(ctx, stat, generated.Add(time.Hour)))
	got, ok, err := c.Get(ctx, stat.ItemID, stat.RegionID)

	// Assert
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, stat, got)

	_, ok, err = c.Get(ctx, 35, stat.RegionID)
	require.NoError(t, err)
	assert.False(t, ok)
}
