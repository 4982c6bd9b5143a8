package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/models"
)

func TestQuoteInsideDhaka(t *testing.T) {
	items := []models.OrderItem{
		{ProductSlug: "sku-a", Price: 10, Quantity: 2},
	}

	got, err := Quote(items, MethodInsideDhaka, 0, DefaultRates())
	require.NoError(t, err)
	assert.Equal(t, Totals{Subtotal: 20, ShippingCost: 80, Discount: 0, Total: 100}, got)
}

func TestQuoteOutsideDhaka(t *testing.T) {
	items := []models.OrderItem{
		{ProductSlug: "sku-a", Price: 25.5, Quantity: 2},
		{ProductSlug: "sku-b", Price: 9, Quantity: 1},
	}

	got, err := Quote(items, MethodOutsideDhaka, 10, DefaultRates())
	require.NoError(t, err)
	assert.Equal(t, 60.0, got.Subtotal)
	assert.Equal(t, 130.0, got.ShippingCost)
	assert.Equal(t, 180.0, got.Total)
}

func TestQuoteUnknownMethod(t *testing.T) {
	_, err := Quote(nil, "overnight", 0, DefaultRates())
	var unknown UnknownShippingMethodError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "overnight", unknown.Method)
}

func TestQuoteUsesConfiguredRates(t *testing.T) {
	rates := Rates{"pickup": 0}
	got, err := Quote([]models.OrderItem{{Price: 50, Quantity: 1}}, "pickup", 0, rates)
	require.NoError(t, err)
	assert.Equal(t, 50.0, got.Total)
}

func TestQuoteFixedClampsDiscount(t *testing.T) {
	items := []models.OrderItem{{Price: 10, Quantity: 1}}

	got := QuoteFixed(items, 80, 500)
	assert.Equal(t, 90.0, got.Discount, "discount clamps to subtotal + shipping")
	assert.Equal(t, 0.0, got.Total, "total floors at zero")

	got = QuoteFixed(items, 80, -20)
	assert.Equal(t, 0.0, got.Discount, "negative discount is ignored")
	assert.Equal(t, 90.0, got.Total)
}

func TestQuoteFixedEmptyItems(t *testing.T) {
	got := QuoteFixed(nil, 80, 0)
	assert.Equal(t, Totals{Subtotal: 0, ShippingCost: 80, Discount: 0, Total: 80}, got)
}
