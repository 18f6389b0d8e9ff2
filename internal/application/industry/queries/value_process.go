package queries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andrescamacho/industry-go/internal/application/common"
	"github.com/andrescamacho/industry-go/internal/application/industry/services"
	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/market"
	"github.com/andrescamacho/industry-go/internal/domain/material"
	"github.com/andrescamacho/industry-go/internal/domain/process"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// ValueProcessQuery prices a computed process at the location's best market station.
// Materials are bought at the buy price and outputs sold at the sell price, both after taxes.
type ValueProcessQuery struct {
	Location services.Location
	Tree     *process.Tree
	RegionID int64 // zero selects the location's region
	// Strict fails on the first missing or stale quote instead of listing it as unpriced
	Strict bool
}

// ItemQuote is the taxed value of a quantity of one item
type ItemQuote struct {
	ItemID    int64   `json:"item_id"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Value     float64 `json:"value"`
}

// ValuationResponse is the market value of a process
type ValuationResponse struct {
	RegionID        int64       `json:"region_id"`
	MarketStationID int64       `json:"market_station_id"`
	Inputs          []ItemQuote `json:"inputs"`
	Outputs         []ItemQuote `json:"outputs"`
	MaterialCost    float64     `json:"material_cost"`
	OutputValue     float64     `json:"output_value"`
	JobCost         float64     `json:"job_cost"`
	Profit          float64     `json:"profit"`
	Unpriced        []int64     `json:"unpriced,omitempty"`
}

// ValueProcessHandler handles ValueProcessQuery
type ValueProcessHandler struct {
	contexts *services.ContextFactory
	prices   market.PriceStatRepository
}

func NewValueProcessHandler(contexts *services.ContextFactory, prices market.PriceStatRepository) *ValueProcessHandler {
	return &ValueProcessHandler{
		contexts: contexts,
		prices:   prices,
	}
}

type priceSide func(stat *market.PriceStat, now time.Time, maxAge time.Duration) (float64, error)

func buySide(stat *market.PriceStat, now time.Time, maxAge time.Duration) (float64, error) {
	return stat.BuyPriceAt(now, maxAge)
}

func sellSide(stat *market.PriceStat, now time.Time, maxAge time.Duration) (float64, error) {
	return stat.SellPriceAt(now, maxAge)
}

// Handle executes the valuation
func (h *ValueProcessHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ValueProcessQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ValueProcessQuery")
	}
	if query.Tree == nil || query.Tree.Len() == 0 {
		return nil, fmt.Errorf("no process to value")
	}

	ictx, err := h.contexts.Build(ctx, query.Location)
	if err != nil {
		return nil, err
	}
	station, err := ictx.BestMarketStation()
	if err != nil {
		return nil, fmt.Errorf("failed to find a market station: %w", err)
	}
	buyFactor, err := ictx.BuyTaxFactor()
	if err != nil {
		return nil, err
	}
	sellFactor, err := ictx.SellTaxFactor()
	if err != nil {
		return nil, err
	}

	regionID := query.RegionID
	if regionID == 0 {
		regionID = ictx.SolarSystem().RegionID()
	}

	root := query.Tree.Root()
	resp := &ValuationResponse{
		RegionID:        regionID,
		MarketStationID: station.ID(),
		JobCost:         query.Tree.TotalCost(root),
	}

	v := valuation{handler: h, ictx: ictx, regionID: regionID, strict: query.Strict}
	if resp.Inputs, resp.MaterialCost, err = v.price(ctx, query.Tree.TotalMaterial(root), buySide, buyFactor); err != nil {
		return nil, err
	}
	if resp.Outputs, resp.OutputValue, err = v.price(ctx, query.Tree.MustNode(root).Output, sellSide, sellFactor); err != nil {
		return nil, err
	}
	resp.Unpriced = v.unpriced
	resp.Profit = resp.OutputValue - resp.MaterialCost - resp.JobCost

	common.LoggerFromContext(ctx).Log(common.LevelDebug, "Process valued", map[string]interface{}{
		"region_id": regionID,
		"station":   station.ID(),
		"profit":    resp.Profit,
		"unpriced":  len(resp.Unpriced),
	})
	return resp, nil
}

type valuation struct {
	handler  *ValueProcessHandler
	ictx     *industry.Context
	regionID int64
	strict   bool
	unpriced []int64
}

func (v *valuation) price(ctx context.Context, ledger *material.Ledger, side priceSide, taxFactor float64) ([]ItemQuote, float64, error) {
	quotes := make([]ItemQuote, 0, ledger.Len())
	total := 0.0
	for _, entry := range ledger.Entries() {
		unit, err := v.quote(ctx, entry.ItemID, side)
		if err != nil {
			if v.strict || !isMissingQuote(err) {
				return nil, 0, err
			}
			common.LoggerFromContext(ctx).Log(common.LevelDebug, "No usable price", map[string]interface{}{
				"item_id": entry.ItemID,
				"error":   err.Error(),
			})
			v.unpriced = append(v.unpriced, entry.ItemID)
			continue
		}
		value := entry.Quantity * unit * taxFactor
		quotes = append(quotes, ItemQuote{
			ItemID:    entry.ItemID,
			Quantity:  entry.Quantity,
			UnitPrice: unit,
			Value:     value,
		})
		total += value
	}
	return quotes, total, nil
}

// quote returns the untaxed unit price of a sellable item, checked against the
// context's maximum price data age
func (v *valuation) quote(ctx context.Context, itemID int64, side priceSide) (float64, error) {
	item, err := v.ictx.Static().Item(itemID)
	if err != nil {
		return 0, err
	}
	if sellable, ok := industry.AsSellable(item); !ok || sellable.MarketGroupID() == 0 {
		return 0, shared.NewDataUnavailableError(fmt.Sprintf("market price of item %d, which is not sold on the market", itemID))
	}

	stat, err := v.handler.prices.FindLatest(ctx, itemID, v.regionID)
	if err != nil {
		return 0, fmt.Errorf("failed to load price of item %d: %w", itemID, err)
	}
	return side(stat, v.ictx.Clock().Now(), v.ictx.MaxPriceDataAge())
}

func isMissingQuote(err error) bool {
	return errors.Is(err, shared.ErrNotFound) ||
		errors.Is(err, shared.ErrDataUnavailable) ||
		errors.Is(err, shared.ErrStaleData)
}
