package market

import (
	"math"
	"time"
)

// BaselineWindow is the history span averaged into a Baseline
const BaselineWindow = 7 * 24 * time.Hour

// Baseline holds the average daily traded volume and transaction count of an item in a region
type Baseline struct {
	AvgVolume       float64 `json:"avg_volume"`
	AvgTransactions float64 `json:"avg_transactions"`
}

// Floored returns the baseline with each average raised to at least 1
func (b Baseline) Floored() Baseline {
	return Baseline{
		AvgVolume:       math.Max(b.AvgVolume, 1),
		AvgTransactions: math.Max(b.AvgTransactions, 1),
	}
}

// DailyHistory is one day of traded volume for an item in a region
type DailyHistory struct {
	Date         time.Time `json:"date"`
	Volume       int64     `json:"volume"`
	Transactions int64     `json:"order_count"`
}

// WeeklyBaseline averages the completed history days in the BaselineWindow before asOf.
// asOf itself is excluded since its trading is still open. Days without history count as zero.
func WeeklyBaseline(history []DailyHistory, asOf time.Time) Baseline {
	from := asOf.Add(-BaselineWindow)
	var volume, transactions int64
	for _, day := range history {
		if !day.Date.Before(from) && day.Date.Before(asOf) {
			volume += day.Volume
			transactions += day.Transactions
		}
	}
	days := BaselineWindow.Hours() / 24
	return Baseline{
		AvgVolume:       float64(volume) / days,
		AvgTransactions: float64(transactions) / days,
	}
}
