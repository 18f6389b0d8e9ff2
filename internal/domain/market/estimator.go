package market

import (
	"math"
	"sort"
	"time"
)

const (
	// estimateVolumeShare is the share of the average daily volume walked to estimate a price
	estimateVolumeShare = 0.05
	// bandWidth is the relative distance from the estimate counted as supply or demand
	bandWidth = 0.05
)

type sideEstimate struct {
	price float64
	age   int64
}

// EstimatePrices derives a PriceStat from an order book snapshot and the item's baseline.
//
// Each side is sorted best price first (sell ascending, buy descending, stable). The
// price and order age are volume-weighted over the best orders until their volume reaches
// 5% of the average daily volume, skipping orders whose minimum volume exceeds that
// average. Supply and demand are the volumes within 5% of the estimate; only the buy side
// skips high-minimum orders there.
func EstimatePrices(snapshot OrderSnapshot, baseline Baseline) *PriceStat {
	floored := baseline.Floored()

	var sell, buy []Order
	for _, o := range snapshot.Orders {
		if o.IsBuy {
			buy = append(buy, o)
		} else {
			sell = append(sell, o)
		}
	}
	sort.SliceStable(sell, func(i, j int) bool { return sell[i].Price < sell[j].Price })
	sort.SliceStable(buy, func(i, j int) bool { return buy[i].Price > buy[j].Price })

	stat := &PriceStat{
		ItemID:          snapshot.ItemID,
		RegionID:        snapshot.RegionID,
		Date:            Day(snapshot.GeneratedAt),
		GeneratedAt:     snapshot.GeneratedAt,
		AvgVolume:       floored.AvgVolume,
		AvgTransactions: floored.AvgTransactions,
	}

	if est, ok := weightedEstimate(sell, floored.AvgVolume, snapshot.GeneratedAt); ok {
		price, age := est.price, est.age
		stat.SellPrice = &price
		stat.AvgSellOrderAge = &age
		supply := supplyInBand(sell, price)
		stat.SupplyIn5 = &supply
	}
	if est, ok := weightedEstimate(buy, floored.AvgVolume, snapshot.GeneratedAt); ok {
		price, age := est.price, est.age
		stat.BuyPrice = &price
		stat.AvgBuyOrderAge = &age
		demand := demandInBand(buy, price, floored.AvgVolume)
		stat.DemandIn5 = &demand
	}
	return stat
}

// weightedEstimate walks orders best first. The order crossing the volume threshold is
// still included.
func weightedEstimate(orders []Order, avgVolume float64, generatedAt time.Time) (sideEstimate, bool) {
	if len(orders) == 0 {
		return sideEstimate{}, false
	}

	var volumeSum, priceVolumeSum, ageVolumeSum float64
	for _, o := range orders {
		if float64(o.MinVolume) > avgVolume {
			continue
		}
		volume := float64(o.VolumeRemaining)
		volumeSum += volume
		priceVolumeSum += o.Price * volume
		ageVolumeSum += o.AgeAt(generatedAt) * volume
		if volumeSum >= avgVolume*estimateVolumeShare {
			break
		}
	}

	divisor := math.Max(volumeSum, 1)
	return sideEstimate{
		price: priceVolumeSum / divisor,
		age:   int64(ageVolumeSum / divisor),
	}, true
}

func supplyInBand(sell []Order, estimate float64) int64 {
	var supply int64
	for _, o := range sell {
		if o.Price > estimate*(1+bandWidth) {
			break
		}
		supply += o.VolumeRemaining
	}
	return supply
}

func demandInBand(buy []Order, estimate, avgVolume float64) int64 {
	var demand int64
	for _, o := range buy {
		if float64(o.MinVolume) > avgVolume {
			continue
		}
		if o.Price < estimate*(1-bandWidth) {
			break
		}
		demand += o.VolumeRemaining
	}
	return demand
}
