package queries

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/andrescamacho/industry-go/internal/adapters/metrics"
	"github.com/andrescamacho/industry-go/internal/application/common"
	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/market"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// Cache layers reported in GetPriceResponse.Source
const (
	SourceLocal      = "local"
	SourceCache      = "cache"
	SourceRepository = "repository"
)

// GetPriceQuery returns the latest price stat of an item in a region. A positive MaxAge
// rejects stats older than max(MaxAge, 5 minutes).
type GetPriceQuery struct {
	ItemID   int64
	RegionID int64
	MaxAge   time.Duration
}

type GetPriceResponse struct {
	Stat   *market.PriceStat
	Source string
}

type priceKey struct {
	itemID   int64
	regionID int64
}

type cachedPrice struct {
	stat      *market.PriceStat
	expiresAt time.Time
}

// GetPriceHandler reads prices through a local LRU, then the shared PriceCache, then the repository
type GetPriceHandler struct {
	stats    market.PriceStatRepository
	cache    market.PriceCache
	local    *lru.Cache[priceKey, cachedPrice]
	cacheTTL time.Duration
	clock    shared.Clock
}

// NewGetPriceHandler creates a handler. cache may be nil and localSize <= 0 disables the local LRU.
func NewGetPriceHandler(
	stats market.PriceStatRepository,
	cache market.PriceCache,
	localSize int,
	cacheTTL time.Duration,
	clock shared.Clock,
) (*GetPriceHandler, error) {
	if clock == nil {
		clock = shared.NewRealClock()
	}

	h := &GetPriceHandler{
		stats:    stats,
		cache:    cache,
		cacheTTL: cacheTTL,
		clock:    clock,
	}
	if localSize > 0 {
		local, err := lru.New[priceKey, cachedPrice](localSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create local price cache: %w", err)
		}
		h.local = local
	}
	return h, nil
}

func (h *GetPriceHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetPriceQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetPriceQuery")
	}

	stat, source, err := h.lookup(ctx, priceKey{itemID: query.ItemID, regionID: query.RegionID})
	if err != nil {
		return nil, err
	}

	if query.MaxAge > 0 {
		maxAge := query.MaxAge
		if maxAge < industry.MinPriceDataAge {
			maxAge = industry.MinPriceDataAge
		}
		if err := stat.CheckAge(h.clock.Now(), maxAge); err != nil {
			return nil, err
		}
	}

	return &GetPriceResponse{Stat: stat, Source: source}, nil
}

// Invalidate drops an item from the local cache, e.g. after a price update
func (h *GetPriceHandler) Invalidate(itemID, regionID int64) {
	if h.local != nil {
		h.local.Remove(priceKey{itemID: itemID, regionID: regionID})
	}
}

func (h *GetPriceHandler) lookup(ctx context.Context, key priceKey) (*market.PriceStat, string, error) {
	now := h.clock.Now()

	if h.local != nil {
		if entry, ok := h.local.Get(key); ok && now.Before(entry.expiresAt) {
			metrics.RecordPriceCacheLookup(SourceLocal, true)
			return entry.stat, SourceLocal, nil
		}
		metrics.RecordPriceCacheLookup(SourceLocal, false)
	}

	if h.cache != nil {
		stat, ok, err := h.cache.Get(ctx, key.itemID, key.regionID)
		if err != nil {
			common.LoggerFromContext(ctx).Log(common.LevelWarn, "Price cache read failed", map[string]interface{}{
				"item_id": key.itemID,
				"error":   err.Error(),
			})
		}
		metrics.RecordPriceCacheLookup(SourceCache, ok)
		if ok {
			h.remember(key, stat)
			return stat, SourceCache, nil
		}
	}

	stat, err := h.stats.FindLatest(ctx, key.itemID, key.regionID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load price of item %d in region %d: %w", key.itemID, key.regionID, err)
	}

	h.remember(key, stat)
	if h.cache != nil {
		if err := h.cache.Set(ctx, stat, stat.GeneratedAt.Add(h.cacheTTL)); err != nil {
			common.LoggerFromContext(ctx).Log(common.LevelWarn, "Price cache write failed", map[string]interface{}{
				"item_id": key.itemID,
				"error":   err.Error(),
			})
		}
	}
	return stat, SourceRepository, nil
}

func (h *GetPriceHandler) remember(key priceKey, stat *market.PriceStat) {
	if h.local == nil {
		return
	}
	expiresAt := stat.GeneratedAt.Add(h.cacheTTL)
	if h.clock.Now().Before(expiresAt) {
		h.local.Add(key, cachedPrice{stat: stat, expiresAt: expiresAt})
	}
}
