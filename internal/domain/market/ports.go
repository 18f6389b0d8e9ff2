package market

import (
	"context"
	"time"
)

// OrderFeed supplies raw order book snapshots and traded volume history
type OrderFeed interface {
	FetchOrders(ctx context.Context, regionID, itemID int64) (OrderSnapshot, error)
	FetchHistory(ctx context.Context, regionID, itemID int64) ([]DailyHistory, error)
}

// BaselineRepository stores the weekly baselines used by EstimatePrices
type BaselineRepository interface {
	GetBaseline(ctx context.Context, itemID, regionID int64) (Baseline, error)
	SaveBaseline(ctx context.Context, itemID, regionID int64, baseline Baseline, asOf time.Time) error
}

// PriceStatRepository persists estimated price stats, one per item, region and day
type PriceStatRepository interface {
	Save(ctx context.Context, stat *PriceStat) error
	FindLatest(ctx context.Context, itemID, regionID int64) (*PriceStat, error)
	// FindRange returns stats with from <= date <= to, oldest first
	FindRange(ctx context.Context, itemID, regionID int64, from, to time.Time) ([]*PriceStat, error)
}

// PriceCache is a read-through cache of the latest price stat per item and region
type PriceCache interface {
	Get(ctx context.Context, itemID, regionID int64) (*PriceStat, bool, error)
	Set(ctx context.Context, stat *PriceStat, expiresAt time.Time) error
}
