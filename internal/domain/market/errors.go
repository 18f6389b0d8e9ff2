package market

import "errors"

var (
	// ErrInvalidPrice is returned when an order price is negative or not a number
	ErrInvalidPrice = errors.New("invalid price")

	// ErrInvalidVolume is returned when an order volume is not positive
	ErrInvalidVolume = errors.New("invalid volume")

	// ErrInvalidRegion is returned when a region ID is zero or negative
	ErrInvalidRegion = errors.New("invalid region ID")
)
