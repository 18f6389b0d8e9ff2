package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/andrescamacho/industry-go/internal/adapters/metrics"
	"github.com/andrescamacho/industry-go/internal/application/common"
	"github.com/andrescamacho/industry-go/internal/domain/market"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// DefaultConcurrency bounds the items estimated in parallel when the command sets none
const DefaultConcurrency = 4

// UpdatePriceStatsCommand fetches the order books of items in a region, estimates their
// prices and stores the results
type UpdatePriceStatsCommand struct {
	RegionID    int64
	ItemIDs     []int64
	Concurrency int
}

// ItemFailure is an item whose price could not be updated
type ItemFailure struct {
	ItemID int64
	Error  string
}

// UpdatePriceStatsResponse summarizes an update run
type UpdatePriceStatsResponse struct {
	RunID    string
	Updated  []*market.PriceStat
	Failures []ItemFailure
	Duration time.Duration
}

// UpdatePriceStatsHandler handles the UpdatePriceStats command
type UpdatePriceStatsHandler struct {
	feed      market.OrderFeed
	baselines market.BaselineRepository
	stats     market.PriceStatRepository
	cache     market.PriceCache
	cacheTTL  time.Duration
	clock     shared.Clock
}

// NewUpdatePriceStatsHandler creates a new handler. cache may be nil; stored stats are
// cached until cacheTTL after they were generated.
func NewUpdatePriceStatsHandler(
	feed market.OrderFeed,
	baselines market.BaselineRepository,
	stats market.PriceStatRepository,
	cache market.PriceCache,
	cacheTTL time.Duration,
	clock shared.Clock,
) *UpdatePriceStatsHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}

	return &UpdatePriceStatsHandler{
		feed:      feed,
		baselines: baselines,
		stats:     stats,
		cache:     cache,
		cacheTTL:  cacheTTL,
		clock:     clock,
	}
}

// Handle executes the UpdatePriceStats command. A failing item is reported in the
// response without aborting the others; only cancellation aborts the run.
func (h *UpdatePriceStatsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*UpdatePriceStatsCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *UpdatePriceStatsCommand")
	}
	if cmd.RegionID <= 0 {
		return nil, market.ErrInvalidRegion
	}

	runID := uuid.New().String()
	logger := common.LoggerFromContext(ctx)
	start := h.clock.Now()

	concurrency := cmd.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var (
		mu       sync.Mutex
		updated  []*market.PriceStat
		failures []ItemFailure
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, itemID := range cmd.ItemIDs {
		itemID := itemID
		g.Go(func() error {
			stat, err := h.updateItem(gctx, cmd.RegionID, itemID)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.Log(common.LevelWarn, "Price update failed", map[string]interface{}{
					"run_id":    runID,
					"item_id":   itemID,
					"region_id": cmd.RegionID,
					"error":     err.Error(),
				})
				mu.Lock()
				failures = append(failures, ItemFailure{ItemID: itemID, Error: err.Error()})
				mu.Unlock()
				return nil
			}

			mu.Lock()
			updated = append(updated, stat)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("price update run %s aborted: %w", runID, err)
	}

	sort.Slice(updated, func(i, j int) bool { return updated[i].ItemID < updated[j].ItemID })
	sort.Slice(failures, func(i, j int) bool { return failures[i].ItemID < failures[j].ItemID })

	duration := h.clock.Now().Sub(start)
	metrics.RecordPriceUpdateRun(cmd.RegionID, len(cmd.ItemIDs), len(failures), duration.Seconds())
	logger.Log(common.LevelInfo, "Price update run completed", map[string]interface{}{
		"run_id":    runID,
		"region_id": cmd.RegionID,
		"updated":   len(updated),
		"failed":    len(failures),
	})

	return &UpdatePriceStatsResponse{
		RunID:    runID,
		Updated:  updated,
		Failures: failures,
		Duration: duration,
	}, nil
}

func (h *UpdatePriceStatsHandler) updateItem(ctx context.Context, regionID, itemID int64) (*market.PriceStat, error) {
	baseline, err := h.baseline(ctx, regionID, itemID)
	if err != nil {
		return nil, err
	}

	snapshot, err := h.feed.FetchOrders(ctx, regionID, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("invalid order snapshot: %w", err)
	}

	stat := market.EstimatePrices(snapshot, baseline)
	metrics.RecordPriceEstimate(regionID, stat.SellPrice != nil, stat.BuyPrice != nil)

	if err := h.stats.Save(ctx, stat); err != nil {
		return nil, fmt.Errorf("failed to save price stat: %w", err)
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, stat, stat.GeneratedAt.Add(h.cacheTTL)); err != nil {
			common.LoggerFromContext(ctx).Log(common.LevelWarn, "Failed to cache price stat", map[string]interface{}{
				"item_id": itemID,
				"error":   err.Error(),
			})
		}
	}
	return stat, nil
}

// baseline refreshes the weekly baseline from the feed's history, falling back to the
// stored baseline when the history is unavailable
func (h *UpdatePriceStatsHandler) baseline(ctx context.Context, regionID, itemID int64) (market.Baseline, error) {
	history, err := h.feed.FetchHistory(ctx, regionID, itemID)
	if err == nil {
		asOf := market.Day(h.clock.Now())
		baseline := market.WeeklyBaseline(history, asOf)
		if err := h.baselines.SaveBaseline(ctx, itemID, regionID, baseline, asOf); err != nil {
			return market.Baseline{}, fmt.Errorf("failed to save baseline: %w", err)
		}
		return baseline, nil
	}
	if ctx.Err() != nil {
		return market.Baseline{}, ctx.Err()
	}

	common.LoggerFromContext(ctx).Log(common.LevelDebug, "History unavailable, using stored baseline", map[string]interface{}{
		"item_id": itemID,
		"error":   err.Error(),
	})
	stored, err := h.baselines.GetBaseline(ctx, itemID, regionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return market.Baseline{}, nil
		}
		return market.Baseline{}, fmt.Errorf("failed to load baseline: %w", err)
	}
	return stored, nil
}
