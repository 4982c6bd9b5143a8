package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/internal/pricing"
)

func TestGetShippingRatesDefaults(t *testing.T) {
	t.Setenv("SHIPPING_RATES", "")
	assert.Equal(t, pricing.DefaultRates(), getShippingRates("SHIPPING_RATES"))
}

func TestGetShippingRatesParsesPairs(t *testing.T) {
	t.Setenv("SHIPPING_RATES", "inside-dhaka:90, outside-dhaka:150,pickup:0")
	got := getShippingRates("SHIPPING_RATES")
	assert.Equal(t, pricing.Rates{
		"inside-dhaka":  90,
		"outside-dhaka": 150,
		"pickup":        0,
	}, got)
}

func TestGetShippingRatesSkipsMalformedPairs(t *testing.T) {
	t.Setenv("SHIPPING_RATES", "inside-dhaka:80,broken,negative:-5")
	got := getShippingRates("SHIPPING_RATES")
	assert.Equal(t, pricing.Rates{"inside-dhaka": 80}, got)
}

func TestGetShippingRatesFullyMalformedFallsBack(t *testing.T) {
	t.Setenv("SHIPPING_RATES", "garbage")
	assert.Equal(t, pricing.DefaultRates(), getShippingRates("SHIPPING_RATES"))
}
