package market

import (
	"fmt"
	"time"

	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// PriceStat is the estimated market state of an item in a region for one day.
// Fields of a side without orders are nil.
type PriceStat struct {
	ItemID          int64     `json:"type_id"`
	RegionID        int64     `json:"region_id"`
	Date            time.Time `json:"date"`
	GeneratedAt     time.Time `json:"generated_at"`
	SellPrice       *float64  `json:"sell_price,omitempty"`
	BuyPrice        *float64  `json:"buy_price,omitempty"`
	AvgSellOrderAge *int64    `json:"avg_sell_order_age,omitempty"`
	AvgBuyOrderAge  *int64    `json:"avg_buy_order_age,omitempty"`
	SupplyIn5       *int64    `json:"supply_in_5,omitempty"`
	DemandIn5       *int64    `json:"demand_in_5,omitempty"`
	AvgVolume       float64   `json:"avg_volume"`
	AvgTransactions float64   `json:"avg_transactions"`
}

// Day truncates a timestamp to its UTC calendar day
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (p *PriceStat) subject(side string) string {
	return fmt.Sprintf("%s price of item %d in region %d", side, p.ItemID, p.RegionID)
}

// CheckAge fails with a StaleDataError when the stat is older than maxAge at now.
// A zero maxAge skips the check.
func (p *PriceStat) CheckAge(now time.Time, maxAge time.Duration) error {
	return p.checkAge("market", now, maxAge)
}

func (p *PriceStat) checkAge(side string, now time.Time, maxAge time.Duration) error {
	if maxAge > 0 && p.GeneratedAt.Add(maxAge).Before(now) {
		return shared.NewStaleDataError(p.subject(side), now.Sub(p.GeneratedAt), maxAge)
	}
	return nil
}

// SellPriceAt returns the estimated sell price, failing when none was estimated or the
// estimate is older than maxAge at now. A zero maxAge skips the age check.
func (p *PriceStat) SellPriceAt(now time.Time, maxAge time.Duration) (float64, error) {
	if p.SellPrice == nil {
		return 0, shared.NewDataUnavailableError(p.subject("sell"))
	}
	if err := p.checkAge("sell", now, maxAge); err != nil {
		return 0, err
	}
	return *p.SellPrice, nil
}

// BuyPriceAt is SellPriceAt for the buy side
func (p *PriceStat) BuyPriceAt(now time.Time, maxAge time.Duration) (float64, error) {
	if p.BuyPrice == nil {
		return 0, shared.NewDataUnavailableError(p.subject("buy"))
	}
	if err := p.checkAge("buy", now, maxAge); err != nil {
		return 0, err
	}
	return *p.BuyPrice, nil
}

// Spread is the relative gap between sell and buy estimates, when both exist
func (p *PriceStat) Spread() (float64, bool) {
	if p.SellPrice == nil || p.BuyPrice == nil || *p.SellPrice == 0 {
		return 0, false
	}
	return (*p.SellPrice - *p.BuyPrice) / *p.SellPrice, true
}
