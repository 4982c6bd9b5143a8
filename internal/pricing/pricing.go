// Package pricing computes order totals. Quote is pure: the same line items,
// shipping method, and discount always produce the same totals, so it is
// called both at checkout and whenever an administrator edit recalculates an
// order.
package pricing

import (
	"fmt"

	"storefront/internal/models"
)

// Rates maps a shipping method name to its flat cost.
type Rates map[string]float64

// Default shipping methods. The live table comes from configuration; these
// are only the fallback.
const (
	MethodInsideDhaka  = "inside-dhaka"
	MethodOutsideDhaka = "outside-dhaka"
)

// DefaultRates returns the built-in shipping rate table.
func DefaultRates() Rates {
	return Rates{
		MethodInsideDhaka:  80,
		MethodOutsideDhaka: 130,
	}
}

// Totals is a full pricing breakdown. Order documents store the breakdown of
// the most recent calculation; fields are never edited individually.
type Totals struct {
	Subtotal     float64
	ShippingCost float64
	Discount     float64
	Total        float64
}

// UnknownShippingMethodError reports a method missing from the rate table.
type UnknownShippingMethodError struct {
	Method string
}

func (e UnknownShippingMethodError) Error() string {
	return fmt.Sprintf("unknown shipping method %q", e.Method)
}

// Quote prices the given line items with a shipping method from the rate
// table.
func Quote(items []models.OrderItem, method string, discount float64, rates Rates) (Totals, error) {
	cost, ok := rates[method]
	if !ok {
		return Totals{}, UnknownShippingMethodError{Method: method}
	}
	return QuoteFixed(items, cost, discount), nil
}

// QuoteFixed prices the given line items with an explicit shipping cost. A
// discount larger than subtotal + shipping is clamped so the total never goes
// negative.
func QuoteFixed(items []models.OrderItem, shippingCost, discount float64) Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}

	if discount < 0 {
		discount = 0
	}
	if max := subtotal + shippingCost; discount > max {
		discount = max
	}

	return Totals{
		Subtotal:     subtotal,
		ShippingCost: shippingCost,
		Discount:     discount,
		Total:        subtotal + shippingCost - discount,
	}
}
