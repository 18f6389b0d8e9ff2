package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/industry-go/internal/adapters/cli"
	"github.com/andrescamacho/industry-go/internal/application/common"
	"github.com/andrescamacho/industry-go/internal/application/industry/services"
	"github.com/andrescamacho/industry-go/internal/application/setup"
	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/market"
	"github.com/andrescamacho/industry-go/internal/domain/production"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
	"github.com/andrescamacho/industry-go/internal/infrastructure/config"
	"github.com/andrescamacho/industry-go/internal/infrastructure/pidfile"
	"github.com/andrescamacho/industry-go/test/helpers"
)

type fixtureApp struct {
	stats   *helpers.MockPriceStatRepository
	records *helpers.MockRecordRepository
	loads   int
}

func newFixtureApp(t *testing.T) (*fixtureApp, cli.AppLoader) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	clock := shared.NewMockClock(helpers.FixtureTime)
	catalog := helpers.NewFixtureCatalog(t)
	factory := services.NewContextFactory(catalog, nil, industry.Providers{
		Character: helpers.NeutralCharacter(),
		Clock:     clock,
	}, services.ContextDefaults{TaxRate: 0.1})

	fixture := &fixtureApp{
		stats:   helpers.NewMockPriceStatRepository(),
		records: helpers.NewMockRecordRepository(),
	}
	registry := setup.NewHandlerRegistry(factory, production.NewEngine(0), setup.Repositories{
		PriceStats: fixture.stats,
		Baselines:  helpers.NewMockBaselineRepository(),
		Indices:    helpers.NewMockIndexRepository(),
		Records:    fixture.records,
	}, setup.Feeds{Indices: &helpers.MockIndexFeed{}}, setup.PricingOptions{CacheTTL: time.Hour}, clock)
	m := common.NewMediator()
	require.NoError(t, registry.RegisterAll(m))

	loader := func(ctx context.Context, opts cli.LoadOptions) (*cli.App, error) {
		fixture.loads++
		return cli.NewApp(nil, m, catalog, nil, nil), nil
	}
	return fixture, loader
}

func run(t *testing.T, loader cli.AppLoader, args ...string) (string, error) {
	t.Helper()
	root := cli.NewRootCommand(loader)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

var reactorArgs = []string{"--system", "30000142", "--installation", "16869", "--tax", "0"}

func TestReactCommand_PrintsTree(t *testing.T) {
	// Arrange
	_, loader := newFixtureApp(t)

	// Act
	out, err := run(t, loader, append([]string{"react", "17961", "--cycles", "2"}, reactorArgs...)...)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "reaction Platinum Technite Reaction x2")
	assert.Contains(t, out, "Tree: 1 nodes")
	assert.Contains(t, out, "Platinum Technite")
}

func TestReactCommand_JSON(t *testing.T) {
	// Arrange
	_, loader := newFixtureApp(t)

	// Act
	out, err := run(t, loader, append([]string{"react", "17961", "--json"}, reactorArgs...)...)

	// Assert
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.InDelta(t, 3600.0, decoded["TotalSeconds"], 1e-9)
	assert.Contains(t, decoded, "Tree")
}

func TestReactCommand_ValueJSON(t *testing.T) {
	// Arrange
	fixture, loader := newFixtureApp(t)
	for itemID, p := range map[int64]float64{helpers.Platinum: 10, helpers.Technetium: 20, helpers.PlatinumTechnite: 50} {
		p := p
		require.NoError(t, fixture.stats.Save(context.Background(), &market.PriceStat{
			ItemID:      itemID,
			RegionID:    helpers.TheForge,
			Date:        market.Day(helpers.FixtureTime),
			GeneratedAt: helpers.FixtureTime,
			SellPrice:   &p,
			BuyPrice:    &p,
		}))
	}

	// Act
	out, err := run(t, loader, append([]string{"react", "17961", "--cycles", "2", "--value", "--json"}, reactorArgs...)...)

	// Assert
	require.NoError(t, err)
	var decoded struct {
		Valuation struct {
			MaterialCost float64 `json:"material_cost"`
			OutputValue  float64 `json:"output_value"`
			Unpriced     []int64 `json:"unpriced"`
		} `json:"valuation"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.InDelta(t, 6000*1.03, decoded.Valuation.MaterialCost, 1e-6)
	assert.InDelta(t, 20000*0.95, decoded.Valuation.OutputValue, 1e-6)
	assert.Empty(t, decoded.Valuation.Unpriced)
}

func TestReactCommand_ValueStrictFailsWithoutPrices(t *testing.T) {
	// Arrange
	_, loader := newFixtureApp(t)

	// Act
	_, err := run(t, loader, append([]string{"react", "17961", "--value", "--strict"}, reactorArgs...)...)

	// Assert
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestReactCommand_RecordThenList(t *testing.T) {
	// Arrange
	fixture, loader := newFixtureApp(t)

	// Act
	_, err := run(t, loader, append([]string{"react", "17961", "--record", "technite batch"}, reactorArgs...)...)
	require.NoError(t, err)
	out, err := run(t, loader, "process", "list")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "technite batch")
	records, err := fixture.records.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)

	shown, err := run(t, loader, "process", "show", records[0].ID)
	require.NoError(t, err)
	assert.Contains(t, shown, "Subject:           Platinum Technite Reaction")
}

func TestReactCommand_RequiresLocation(t *testing.T) {
	// Arrange
	fixture, loader := newFixtureApp(t)

	// Act
	_, err := run(t, loader, "react", "17961")

	// Assert
	assert.ErrorContains(t, err, "no location specified")
	assert.Equal(t, 0, fixture.loads)
}

func TestReactCommand_UsesDefaultStation(t *testing.T) {
	// Arrange
	_, loader := newFixtureApp(t)
	_, err := run(t, loader, "config", "set-station", "60003760")
	require.NoError(t, err)

	// Act
	out, err := run(t, loader, "manufacture", "691", "--runs", "1")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "manufacturing Rifter Blueprint x1")
}

func TestConfigCommands_StorePreferences(t *testing.T) {
	// Arrange
	_, loader := newFixtureApp(t)

	// Act
	_, err := run(t, loader, "config", "set-region", "10000002")
	require.NoError(t, err)
	_, unknownErr := run(t, loader, "config", "set-station", "1")

	// Assert
	assert.Error(t, unknownErr)
	data, err := os.ReadFile(filepath.Join(os.Getenv("HOME"), ".industry", "config.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"default_region_id": 10000002`)
	assert.NotContains(t, string(data), "default_station_id")

	_, err = run(t, loader, "config", "clear")
	require.NoError(t, err)
	data, err = os.ReadFile(filepath.Join(os.Getenv("HOME"), ".industry", "config.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "default_region_id")
}

func TestPriceGetCommand_ResolvesItemByName(t *testing.T) {
	// Arrange
	fixture, loader := newFixtureApp(t)
	sell := 4.25
	require.NoError(t, fixture.stats.Save(context.Background(), &market.PriceStat{
		ItemID:      helpers.Tritanium,
		RegionID:    helpers.TheForge,
		Date:        market.Day(helpers.FixtureTime),
		GeneratedAt: helpers.FixtureTime,
		SellPrice:   &sell,
	}))

	// Act
	out, err := run(t, loader, "price", "get", "Tritanium", "--region", "10000002")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Tritanium in region 10000002")
	assert.Contains(t, out, "4.25")
	assert.Contains(t, out, "(repository)")
}

func TestIndicesUpdateCommand_RejectsBadSystem(t *testing.T) {
	_, loader := newFixtureApp(t)

	_, err := run(t, loader, "indices", "update", "jita")

	assert.ErrorContains(t, err, "invalid solar system ID")
}

func TestFacilityBestCommand(t *testing.T) {
	// Arrange
	_, loader := newFixtureApp(t)

	// Act
	out, err := run(t, loader, "facility", "best", "--activity", "reaction", "--subject", "17961",
		"--system", "30000142", "--installation", "16869")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Assembly line:     10")
}

func TestPriceUpdateCommand_IntervalRequiresLock(t *testing.T) {
	// Arrange
	_, base := newFixtureApp(t)
	lockPath := filepath.Join(t.TempDir(), "updater.pid")
	require.NoError(t, os.WriteFile(lockPath, []byte(strconv.Itoa(os.Getppid())), 0o644))
	loader := func(ctx context.Context, opts cli.LoadOptions) (*cli.App, error) {
		app, err := base(ctx, opts)
		if err != nil {
			return nil, err
		}
		app.Config = &config.Config{Market: config.MarketConfig{LockFile: lockPath}}
		return app, nil
	}

	// Act
	_, err := run(t, loader, "price", "update", "34", "--region", "10000002", "--interval", "1h")

	// Assert
	assert.ErrorIs(t, err, pidfile.ErrLocked)
}

func TestPriceEstimateCommand_FromFile(t *testing.T) {
	// Arrange
	fixture, loader := newFixtureApp(t)
	path := filepath.Join(t.TempDir(), "orders.json")
	book := `{
  "type_id": 34,
  "region_id": 10000002,
  "generated_at": "2026-01-15T12:00:00Z",
  "orders": [
    {"price": 10, "volume_remaining": 40, "min_volume": 1, "is_buy_order": false, "issued": "2026-01-15T11:00:00Z"},
    {"price": 12, "volume_remaining": 40, "min_volume": 1, "is_buy_order": false, "issued": "2026-01-15T11:00:00Z"},
    {"price": 9, "volume_remaining": 100, "min_volume": 1, "is_buy_order": true, "issued": "2026-01-15T11:50:00Z"}
  ]
}`
	require.NoError(t, os.WriteFile(path, []byte(book), 0o644))

	// Act
	out, err := run(t, loader, "price", "estimate", path, "--avg-volume", "1400")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Item 34 in region 10000002")
	assert.Contains(t, out, "Sell:             11.00")
	assert.Contains(t, out, "Buy:              9.00")
	assert.Contains(t, out, "Supply in 5%:     40")
	assert.Equal(t, 0, fixture.loads)
}

func TestPriceEstimateCommand_RejectsInvalidBook(t *testing.T) {
	_, loader := newFixtureApp(t)
	path := filepath.Join(t.TempDir(), "orders.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"type_id": 34, "region_id": 0, "orders": []}`), 0o644))

	_, err := run(t, loader, "price", "estimate", path)

	assert.ErrorIs(t, err, market.ErrInvalidRegion)
}
