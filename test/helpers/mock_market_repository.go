package helpers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/andrescamacho/industry-go/internal/domain/market"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

type marketKey struct {
	itemID   int64
	regionID int64
}

// MockPriceStatRepository is an in-memory PriceStatRepository keeping one stat per item, region and day
type MockPriceStatRepository struct {
	mu        sync.Mutex
	stats     map[marketKey]map[time.Time]*market.PriceStat
	SaveErr   error
	FindCalls int
}

func NewMockPriceStatRepository() *MockPriceStatRepository {
	return &MockPriceStatRepository{stats: make(map[marketKey]map[time.Time]*market.PriceStat)}
}

func (m *MockPriceStatRepository) Save(ctx context.Context, stat *market.PriceStat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	key := marketKey{stat.ItemID, stat.RegionID}
	if m.stats[key] == nil {
		m.stats[key] = make(map[time.Time]*market.PriceStat)
	}
	m.stats[key][stat.Date] = stat
	return nil
}

func (m *MockPriceStatRepository) FindLatest(ctx context.Context, itemID, regionID int64) (*market.PriceStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FindCalls++
	var latest *market.PriceStat
	for _, stat := range m.stats[marketKey{itemID, regionID}] {
		if latest == nil || stat.Date.After(latest.Date) {
			latest = stat
		}
	}
	if latest == nil {
		return nil, shared.NewNotFoundError("price stat for item", itemID)
	}
	return latest, nil
}

func (m *MockPriceStatRepository) FindRange(ctx context.Context, itemID, regionID int64, from, to time.Time) ([]*market.PriceStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*market.PriceStat
	for date, stat := range m.stats[marketKey{itemID, regionID}] {
		if !date.Before(from) && !date.After(to) {
			out = append(out, stat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Count returns the number of stored stats
func (m *MockPriceStatRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, byDay := range m.stats {
		n += len(byDay)
	}
	return n
}

// MockBaselineRepository is an in-memory BaselineRepository
type MockBaselineRepository struct {
	mu        sync.Mutex
	baselines map[marketKey]market.Baseline
}

func NewMockBaselineRepository() *MockBaselineRepository {
	return &MockBaselineRepository{baselines: make(map[marketKey]market.Baseline)}
}

func (m *MockBaselineRepository) GetBaseline(ctx context.Context, itemID, regionID int64) (market.Baseline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.baselines[marketKey{itemID, regionID}]
	if !ok {
		return market.Baseline{}, shared.NewNotFoundError("baseline for item", itemID)
	}
	return b, nil
}

func (m *MockBaselineRepository) SaveBaseline(ctx context.Context, itemID, regionID int64, baseline market.Baseline, asOf time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baselines[marketKey{itemID, regionID}] = baseline
	return nil
}

// MockOrderFeed serves canned snapshots and histories per item
type MockOrderFeed struct {
	mu         sync.Mutex
	Snapshots  map[int64]market.OrderSnapshot
	Histories  map[int64][]market.DailyHistory
	OrderErr   map[int64]error
	HistoryErr error
}

func NewMockOrderFeed() *MockOrderFeed {
	return &MockOrderFeed{
		Snapshots: make(map[int64]market.OrderSnapshot),
		Histories: make(map[int64][]market.DailyHistory),
		OrderErr:  make(map[int64]error),
	}
}

func (f *MockOrderFeed) FetchOrders(ctx context.Context, regionID, itemID int64) (market.OrderSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.OrderErr[itemID]; err != nil {
		return market.OrderSnapshot{}, err
	}
	snapshot, ok := f.Snapshots[itemID]
	if !ok {
		return market.OrderSnapshot{}, shared.NewNotFoundError("order book for item", itemID)
	}
	snapshot.RegionID = regionID
	snapshot.ItemID = itemID
	return snapshot, nil
}

func (f *MockOrderFeed) FetchHistory(ctx context.Context, regionID, itemID int64) ([]market.DailyHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.HistoryErr != nil {
		return nil, f.HistoryErr
	}
	return f.Histories[itemID], nil
}

// MockPriceCache is an in-memory PriceCache honoring expiry against a clock
type MockPriceCache struct {
	mu      sync.Mutex
	clock   shared.Clock
	entries map[marketKey]cachedStat
}

type cachedStat struct {
	stat      *market.PriceStat
	expiresAt time.Time
}

func NewMockPriceCache(clock shared.Clock) *MockPriceCache {
	return &MockPriceCache{clock: clock, entries: make(map[marketKey]cachedStat)}
}

func (c *MockPriceCache) Get(ctx context.Context, itemID, regionID int64) (*market.PriceStat, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[marketKey{itemID, regionID}]
	if !ok || !c.clock.Now().Before(entry.expiresAt) {
		return nil, false, nil
	}
	return entry.stat, true, nil
}

func (c *MockPriceCache) Set(ctx context.Context, stat *market.PriceStat, expiresAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[marketKey{stat.ItemID, stat.RegionID}] = cachedStat{stat: stat, expiresAt: expiresAt}
	return nil
}

// Len returns the number of cached entries, expired or not
func (c *MockPriceCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
