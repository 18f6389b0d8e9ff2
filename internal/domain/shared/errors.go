package shared

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors callers branch on with errors.Is.
var (
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrNoCompatibleFacility = errors.New("no compatible facility")
	ErrDataUnavailable      = errors.New("data unavailable")
	ErrStaleData            = errors.New("stale data")
	ErrNoOutputDefined      = errors.New("no output defined")
	ErrNotFound             = errors.New("not found")
)

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// InvalidQuantityError is returned when a ledger mutator receives a non-positive quantity.
type InvalidQuantityError struct {
	ItemID   int64
	Quantity float64
}

func NewInvalidQuantityError(itemID int64, quantity float64) *InvalidQuantityError {
	return &InvalidQuantityError{ItemID: itemID, Quantity: quantity}
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %g for item %d", e.Quantity, e.ItemID)
}

func (e *InvalidQuantityError) Unwrap() error {
	return ErrInvalidQuantity
}

// NotFoundError reports a missing identifier of a given kind (item, reaction, station...).
type NotFoundError struct {
	Kind string
	ID   int64
}

func NewNotFoundError(kind string, id int64) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

type NoCompatibleFacilityError struct {
	Activity Activity
	ItemID   int64
}

func NewNoCompatibleFacilityError(activity Activity, itemID int64) *NoCompatibleFacilityError {
	return &NoCompatibleFacilityError{Activity: activity, ItemID: itemID}
}

func (e *NoCompatibleFacilityError) Error() string {
	return fmt.Sprintf("no compatible facility for %s of item %d", e.Activity, e.ItemID)
}

func (e *NoCompatibleFacilityError) Unwrap() error {
	return ErrNoCompatibleFacility
}

// DataUnavailableError is returned by modifier providers and lookups that cannot resolve
// required data. It is propagated, never defaulted.
type DataUnavailableError struct {
	What string
}

func NewDataUnavailableError(what string) *DataUnavailableError {
	return &DataUnavailableError{What: what}
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("data unavailable: %s", e.What)
}

func (e *DataUnavailableError) Unwrap() error {
	return ErrDataUnavailable
}

type StaleDataError struct {
	Subject string
	Age     time.Duration
	MaxAge  time.Duration
}

func NewStaleDataError(subject string, age, maxAge time.Duration) *StaleDataError {
	return &StaleDataError{Subject: subject, Age: age, MaxAge: maxAge}
}

func (e *StaleDataError) Error() string {
	return fmt.Sprintf("%s is stale: age %s exceeds max %s", e.Subject, e.Age.Round(time.Second), e.MaxAge)
}

func (e *StaleDataError) Unwrap() error {
	return ErrStaleData
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
