package market

import (
	"fmt"
	"math"
	"time"
)

// Order is one row of an order book snapshot
type Order struct {
	Price           float64   `json:"price"`
	VolumeRemaining int64     `json:"volume_remaining"`
	MinVolume       int64     `json:"min_volume"`
	IsBuy           bool      `json:"is_buy_order"`
	IssuedAt        time.Time `json:"issued"`
}

func (o Order) Validate() error {
	if o.Price < 0 || math.IsNaN(o.Price) || math.IsInf(o.Price, 0) {
		return fmt.Errorf("%w: %g", ErrInvalidPrice, o.Price)
	}
	if o.VolumeRemaining <= 0 {
		return fmt.Errorf("%w: remaining %d", ErrInvalidVolume, o.VolumeRemaining)
	}
	if o.MinVolume < 0 {
		return fmt.Errorf("%w: minimum %d", ErrInvalidVolume, o.MinVolume)
	}
	return nil
}

// AgeAt returns the order age in seconds at t
func (o Order) AgeAt(t time.Time) float64 {
	return t.Sub(o.IssuedAt).Seconds()
}

// OrderSnapshot is the order book of one item in one region at a point in time
type OrderSnapshot struct {
	ItemID      int64     `json:"type_id"`
	RegionID    int64     `json:"region_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Orders      []Order   `json:"orders"`
}

// Validate checks every order, reporting the first invalid one
func (s OrderSnapshot) Validate() error {
	if s.RegionID <= 0 {
		return ErrInvalidRegion
	}
	for i, o := range s.Orders {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("order %d: %w", i, err)
		}
	}
	return nil
}
