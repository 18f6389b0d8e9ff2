package steps

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/industry-go/internal/adapters/persistence"
	"github.com/andrescamacho/industry-go/internal/application/common"
	pricingCommands "github.com/andrescamacho/industry-go/internal/application/pricing/commands"
	pricingQueries "github.com/andrescamacho/industry-go/internal/application/pricing/queries"
	"github.com/andrescamacho/industry-go/internal/domain/market"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
	"github.com/andrescamacho/industry-go/test/helpers"
)

type priceContext struct {
	clock    *shared.MockClock
	feed     *helpers.MockOrderFeed
	cache    *helpers.MockPriceCache
	mediator common.Mediator

	update *pricingCommands.UpdatePriceStatsResponse
	price  *pricingQueries.GetPriceResponse
}

func (pc *priceContext) reset() error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}

	pc.clock = shared.NewMockClock(helpers.FixtureTime)
	pc.feed = helpers.NewMockOrderFeed()
	pc.cache = helpers.NewMockPriceCache(pc.clock)
	stats := persistence.NewGormPriceStatRepository(helpers.SharedTestDB)
	baselines := persistence.NewGormBaselineRepository(helpers.SharedTestDB)

	getPrice, err := pricingQueries.NewGetPriceHandler(stats, pc.cache, 0, time.Hour, pc.clock)
	if err != nil {
		return err
	}

	pc.mediator = common.NewMediator()
	if err := common.RegisterHandler[*pricingCommands.UpdatePriceStatsCommand](pc.mediator,
		pricingCommands.NewUpdatePriceStatsHandler(pc.feed, baselines, stats, pc.cache, time.Hour, pc.clock)); err != nil {
		return err
	}
	if err := common.RegisterHandler[*pricingQueries.GetPriceQuery](pc.mediator, getPrice); err != nil {
		return err
	}

	pc.update = nil
	pc.price = nil
	return nil
}

func (pc *priceContext) anOrderBookForItem(itemID int64, table *godog.Table) error {
	snapshot := market.OrderSnapshot{ItemID: itemID, GeneratedAt: pc.clock.Now()}
	for i, row := range dataRows(table) {
		if len(row.Cells) != 5 {
			return fmt.Errorf("row %d: expected side, price, volume, min volume and age columns", i)
		}
		price, err := parseNumber(row.Cells[1].Value)
		if err != nil {
			return err
		}
		volume, err := strconv.ParseInt(row.Cells[2].Value, 10, 64)
		if err != nil {
			return fmt.Errorf("row %d: invalid volume: %w", i, err)
		}
		minVolume, err := strconv.ParseInt(row.Cells[3].Value, 10, 64)
		if err != nil {
			return fmt.Errorf("row %d: invalid min volume: %w", i, err)
		}
		age, err := time.ParseDuration(row.Cells[4].Value)
		if err != nil {
			return fmt.Errorf("row %d: invalid age: %w", i, err)
		}

		var isBuy bool
		switch row.Cells[0].Value {
		case "buy":
			isBuy = true
		case "sell":
		default:
			return fmt.Errorf("row %d: unknown side %q", i, row.Cells[0].Value)
		}

		snapshot.Orders = append(snapshot.Orders, market.Order{
			Price:           price,
			VolumeRemaining: volume,
			MinVolume:       minVolume,
			IsBuy:           isBuy,
			IssuedAt:        snapshot.GeneratedAt.Add(-age),
		})
	}
	pc.feed.Snapshots[itemID] = snapshot
	return nil
}

// aDailyVolumeForItem fills the seven completed days before today with the same volume
func (pc *priceContext) aDailyVolumeForItem(itemID, volume, transactions int64) error {
	today := market.Day(pc.clock.Now())
	history := make([]market.DailyHistory, 0, 7)
	for day := 1; day <= 7; day++ {
		history = append(history, market.DailyHistory{
			Date:         today.AddDate(0, 0, -day),
			Volume:       volume,
			Transactions: transactions,
		})
	}
	pc.feed.Histories[itemID] = history
	return nil
}

func (pc *priceContext) hoursPass(hours int) error {
	pc.clock.Advance(time.Duration(hours) * time.Hour)
	return nil
}

func (pc *priceContext) iUpdatePricesInRegion(regionID int64, itemList string) error {
	var itemIDs []int64
	for _, field := range splitList(itemList) {
		itemID, err := parseItemID(field)
		if err != nil {
			return err
		}
		itemIDs = append(itemIDs, itemID)
	}

	resp, err := pc.mediator.Send(context.Background(), &pricingCommands.UpdatePriceStatsCommand{
		RegionID: regionID,
		ItemIDs:  itemIDs,
	})
	sharedErr = err
	pc.update = nil
	if resp != nil {
		pc.update = resp.(*pricingCommands.UpdatePriceStatsResponse)
	}
	return nil
}

func (pc *priceContext) iLookUpThePrice(itemID, regionID int64) error {
	resp, err := pc.mediator.Send(context.Background(), &pricingQueries.GetPriceQuery{ItemID: itemID, RegionID: regionID})
	sharedErr = err
	pc.price = nil
	if resp != nil {
		pc.price = resp.(*pricingQueries.GetPriceResponse)
	}
	return nil
}

func (pc *priceContext) theUpdateShouldReport(updated, failed int) error {
	if pc.update == nil {
		return fmt.Errorf("no update ran (last error: %v)", sharedErr)
	}
	if len(pc.update.Updated) != updated || len(pc.update.Failures) != failed {
		return fmt.Errorf("expected %d updated and %d failed, got %d and %d",
			updated, failed, len(pc.update.Updated), len(pc.update.Failures))
	}
	return nil
}

func (pc *priceContext) requirePrice() error {
	if pc.price == nil {
		return fmt.Errorf("no price was returned (last error: %v)", sharedErr)
	}
	return nil
}

func (pc *priceContext) thePriceShouldBe(side, priceStr string) error {
	if err := pc.requirePrice(); err != nil {
		return err
	}
	expected, err := parseNumber(priceStr)
	if err != nil {
		return err
	}
	actual := pc.price.Stat.SellPrice
	if side == "buy" {
		actual = pc.price.Stat.BuyPrice
	}
	if actual == nil {
		return fmt.Errorf("expected a %s price of %g, got none", side, expected)
	}
	return expectClose(side+" price", expected, *actual)
}

func (pc *priceContext) thereShouldBeNoPrice(side string) error {
	if err := pc.requirePrice(); err != nil {
		return err
	}
	actual := pc.price.Stat.SellPrice
	if side == "buy" {
		actual = pc.price.Stat.BuyPrice
	}
	if actual != nil {
		return fmt.Errorf("expected no %s price, got %g", side, *actual)
	}
	return nil
}

func (pc *priceContext) theVolumeInBandShouldBe(side string, expected int64) error {
	if err := pc.requirePrice(); err != nil {
		return err
	}
	actual := pc.price.Stat.SupplyIn5
	if side == "demand" {
		actual = pc.price.Stat.DemandIn5
	}
	if actual == nil || *actual != expected {
		return fmt.Errorf("expected %s of %d, got %v", side, expected, actual)
	}
	return nil
}

func (pc *priceContext) theAverageVolumeShouldBe(volumeStr string) error {
	if err := pc.requirePrice(); err != nil {
		return err
	}
	expected, err := parseNumber(volumeStr)
	if err != nil {
		return err
	}
	return expectClose("average volume", expected, pc.price.Stat.AvgVolume)
}

func (pc *priceContext) thePriceShouldComeFrom(source string) error {
	if err := pc.requirePrice(); err != nil {
		return err
	}
	if pc.price.Source != source {
		return fmt.Errorf("expected the price to come from the %s, got %s", source, pc.price.Source)
	}
	return nil
}

// InitializePriceScenario registers price update and lookup steps backed by the shared test database
func InitializePriceScenario(sc *godog.ScenarioContext) {
	pc := &priceContext{}

	sc.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, pc.reset()
	})

	sc.Step(`^an order book for item (\d+):$`, pc.anOrderBookForItem)
	sc.Step(`^item (\d+) traded (\d+) units in (\d+) transactions every day last week$`, pc.aDailyVolumeForItem)
	sc.Step(`^(\d+) hours? pass(?:es)?$`, pc.hoursPass)
	sc.Step(`^I update prices in region (\d+) for items? ([\d, ]+)$`, pc.iUpdatePricesInRegion)
	sc.Step(`^I look up the price of item (\d+) in region (\d+)$`, pc.iLookUpThePrice)
	sc.Step(`^the update should report (\d+) updated and (\d+) failed$`, pc.theUpdateShouldReport)
	sc.Step(`^the (sell|buy) price should be `+number+`$`, pc.thePriceShouldBe)
	sc.Step(`^there should be no (sell|buy) price$`, pc.thereShouldBeNoPrice)
	sc.Step(`^the (supply|demand) within 5% should be (\d+)$`, pc.theVolumeInBandShouldBe)
	sc.Step(`^the average daily volume should be `+number+`$`, pc.theAverageVolumeShouldBe)
	sc.Step(`^the price should come from the (cache|repository)$`, pc.thePriceShouldComeFrom)
}
