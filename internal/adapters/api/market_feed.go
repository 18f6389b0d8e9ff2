package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/market"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

const historyDateLayout = "2006-01-02"

type orderDTO struct {
	OrderID      int64   `json:"order_id"`
	Price        float64 `json:"price"`
	VolumeRemain int64   `json:"volume_remain"`
	MinVolume    int64   `json:"min_volume"`
	IsBuyOrder   bool    `json:"is_buy_order"`
	Issued       string  `json:"issued"`
}

type historyDTO struct {
	Date       string  `json:"date"`
	Volume     int64   `json:"volume"`
	OrderCount int64   `json:"order_count"`
	Average    float64 `json:"average"`
}

type systemIndicesDTO struct {
	SolarSystemID int64 `json:"solar_system_id"`
	CostIndices   []struct {
		Activity  string  `json:"activity"`
		CostIndex float64 `json:"cost_index"`
	} `json:"cost_indices"`
}

// feedActivities maps the feed's activity names to activities
var feedActivities = map[string]shared.Activity{
	"manufacturing":                   shared.ActivityManufacturing,
	"researching_time_efficiency":     shared.ActivityResearchTE,
	"researching_material_efficiency": shared.ActivityResearchME,
	"copying":                         shared.ActivityCopying,
	"reverse_engineering":             shared.ActivityReverseEngineering,
	"invention":                       shared.ActivityInvention,
	"reaction":                        shared.ActivityReaction,
}

// FetchOrders reads every page of the region's orders for an item. The snapshot is
// stamped with the feed's Last-Modified time, or the clock when the header is missing.
func (c *MarketFeedClient) FetchOrders(ctx context.Context, regionID, itemID int64) (market.OrderSnapshot, error) {
	snapshot := market.OrderSnapshot{ItemID: itemID, RegionID: regionID}

	for page, pages := 1, 1; page <= pages; page++ {
		var dtos []orderDTO
		path := fmt.Sprintf("/markets/%d/orders/?order_type=all&type_id=%d&page=%d", regionID, itemID, page)
		header, err := c.get(ctx, "orders", path, &dtos)
		if err != nil {
			return market.OrderSnapshot{}, fmt.Errorf("failed to fetch orders of item %d in region %d: %w", itemID, regionID, err)
		}

		if page == 1 {
			pages = headerInt(header, "X-Pages", 1)
			snapshot.GeneratedAt = headerTime(header, "Last-Modified", c.clock.Now())
		}

		for _, dto := range dtos {
			issued, err := time.Parse(time.RFC3339, dto.Issued)
			if err != nil {
				return market.OrderSnapshot{}, fmt.Errorf("order %d has invalid issue time %q: %w", dto.OrderID, dto.Issued, err)
			}
			snapshot.Orders = append(snapshot.Orders, market.Order{
				Price:           dto.Price,
				VolumeRemaining: dto.VolumeRemain,
				MinVolume:       dto.MinVolume,
				IsBuy:           dto.IsBuyOrder,
				IssuedAt:        issued.UTC(),
			})
		}
	}

	return snapshot, nil
}

// FetchHistory reads the daily trade history of an item in a region
func (c *MarketFeedClient) FetchHistory(ctx context.Context, regionID, itemID int64) ([]market.DailyHistory, error) {
	var dtos []historyDTO
	path := fmt.Sprintf("/markets/%d/history/?type_id=%d", regionID, itemID)
	if _, err := c.get(ctx, "history", path, &dtos); err != nil {
		return nil, fmt.Errorf("failed to fetch history of item %d in region %d: %w", itemID, regionID, err)
	}

	history := make([]market.DailyHistory, 0, len(dtos))
	for _, dto := range dtos {
		date, err := time.Parse(historyDateLayout, dto.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid history date %q: %w", dto.Date, err)
		}
		history = append(history, market.DailyHistory{
			Date:         date,
			Volume:       dto.Volume,
			Transactions: dto.OrderCount,
		})
	}
	return history, nil
}

// FetchIndices reads the cost indices of all systems. Unknown activity names are skipped.
func (c *MarketFeedClient) FetchIndices(ctx context.Context) (map[int64]map[shared.Activity]industry.IndustryIndex, error) {
	var dtos []systemIndicesDTO
	header, err := c.get(ctx, "industry_systems", "/industry/systems/", &dtos)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch industry indices: %w", err)
	}
	observedAt := headerTime(header, "Last-Modified", c.clock.Now())

	indices := make(map[int64]map[shared.Activity]industry.IndustryIndex, len(dtos))
	for _, dto := range dtos {
		byActivity := make(map[shared.Activity]industry.IndustryIndex, len(dto.CostIndices))
		for _, idx := range dto.CostIndices {
			activity, ok := feedActivities[idx.Activity]
			if !ok {
				continue
			}
			byActivity[activity] = industry.IndustryIndex{Value: idx.CostIndex, ObservedAt: observedAt}
		}
		indices[dto.SolarSystemID] = byActivity
	}
	return indices, nil
}

func headerInt(header http.Header, key string, fallback int) int {
	if value, err := strconv.Atoi(header.Get(key)); err == nil && value > 0 {
		return value
	}
	return fallback
}

func headerTime(header http.Header, key string, fallback time.Time) time.Time {
	if value, err := http.ParseTime(header.Get(key)); err == nil {
		return value.UTC()
	}
	return fallback
}

var (
	_ market.OrderFeed   = (*MarketFeedClient)(nil)
	_ industry.IndexFeed = (*MarketFeedClient)(nil)
)
