package orders

import (
	"errors"
	"fmt"

	"storefront/internal/models"
)

var (
	// ErrOrderNotFound is returned for any operation against an unknown order id.
	ErrOrderNotFound = errors.New("order not found")

	// ErrAlreadyCancelled is returned when cancelling an order that is already
	// cancelled. The first cancellation released the inventory; reporting this
	// instead of re-running the release keeps stock from being credited twice.
	ErrAlreadyCancelled = errors.New("order already cancelled")

	// ErrConflict is returned when an order kept changing underneath a
	// read-modify-write operation past the retry limit.
	ErrConflict = errors.New("order modified concurrently")
)

// ProductNotFoundError reports a line item referencing a product the catalog
// does not know.
type ProductNotFoundError struct {
	Slug string
}

func (e ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.Slug)
}

// InvalidTransitionError reports a status change the state machine forbids.
// The order is left untouched.
type InvalidTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// ValidationError reports malformed input: missing owner key, empty items,
// non-positive quantities, bad shipping info.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }
