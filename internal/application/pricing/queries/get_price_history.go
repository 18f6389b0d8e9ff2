package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/industry-go/internal/application/common"
	"github.com/andrescamacho/industry-go/internal/domain/market"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// DefaultHistoryDays is the history span returned when the query sets no start
const DefaultHistoryDays = 90

// GetPriceHistoryQuery returns the daily price stats of an item between two days, inclusive.
// A zero To means today and a zero From means DefaultHistoryDays before To.
type GetPriceHistoryQuery struct {
	ItemID   int64
	RegionID int64
	From     time.Time
	To       time.Time
}

type GetPriceHistoryResponse struct {
	From  time.Time
	To    time.Time
	Stats []*market.PriceStat
}

type GetPriceHistoryHandler struct {
	stats market.PriceStatRepository
	clock shared.Clock
}

func NewGetPriceHistoryHandler(stats market.PriceStatRepository, clock shared.Clock) *GetPriceHistoryHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GetPriceHistoryHandler{stats: stats, clock: clock}
}

func (h *GetPriceHistoryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetPriceHistoryQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetPriceHistoryQuery")
	}

	to := query.To
	if to.IsZero() {
		to = h.clock.Now()
	}
	to = market.Day(to)

	from := query.From
	if from.IsZero() {
		from = to.AddDate(0, 0, -DefaultHistoryDays)
	}
	from = market.Day(from)

	if from.After(to) {
		return nil, shared.NewValidationError("from", "start of history is after its end")
	}

	stats, err := h.stats.FindRange(ctx, query.ItemID, query.RegionID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load price history: %w", err)
	}

	return &GetPriceHistoryResponse{From: from, To: to, Stats: stats}, nil
}
