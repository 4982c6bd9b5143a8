package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanTransitionToAllowsForwardSteps(t *testing.T) {
	allowed := []struct {
		from, to OrderStatus
	}{
		{StatusPending, StatusConfirmed},
		{StatusConfirmed, StatusShipped},
		{StatusShipped, StatusDelivered},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusCancelled},
		{StatusShipped, StatusCancelled},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}
}

func TestCanTransitionToRejectsEverythingElse(t *testing.T) {
	statuses := []OrderStatus{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled}
	allowed := map[OrderStatus]map[OrderStatus]bool{
		StatusPending:   {StatusConfirmed: true, StatusCancelled: true},
		StatusConfirmed: {StatusShipped: true, StatusCancelled: true},
		StatusShipped:   {StatusDelivered: true, StatusCancelled: true},
	}
	for _, from := range statuses {
		for _, to := range statuses {
			if allowed[from][to] {
				continue
			}
			assert.False(t, from.CanTransitionTo(to), "%s -> %s should be rejected", from, to)
		}
	}
}

func TestCheckTotals(t *testing.T) {
	o := Order{Subtotal: 20, ShippingCost: 80, Discount: 0, Total: 100}
	assert.True(t, o.CheckTotals())

	o.Discount = 15
	assert.False(t, o.CheckTotals())

	o.Total = 85
	assert.True(t, o.CheckTotals())

	o = Order{Subtotal: 10, ShippingCost: 5, Discount: 20, Total: -5}
	assert.False(t, o.CheckTotals(), "negative totals are never valid")
}

func TestQuantitiesMergesDuplicateSlugs(t *testing.T) {
	o := Order{Items: []OrderItem{
		{ProductSlug: "apple", Quantity: 2},
		{ProductSlug: "pear", Quantity: 1},
		{ProductSlug: "apple", Quantity: 3},
	}}
	got := o.Quantities()
	assert.Equal(t, map[string]int{"apple": 5, "pear": 1}, got)
}

func TestHistoryConstructorsCarryTypedPayloads(t *testing.T) {
	now := time.Now()
	actor := primitive.NewObjectID()

	created := NewOrderCreated(now, nil)
	assert.Equal(t, ActionOrderCreated, created.Action)
	assert.Nil(t, created.StatusChange)
	assert.Nil(t, created.Edit)

	changed := NewStatusChanged(now, &actor, StatusPending, StatusConfirmed)
	require.NotNil(t, changed.StatusChange)
	assert.Equal(t, StatusPending, changed.StatusChange.From)
	assert.Equal(t, StatusConfirmed, changed.StatusChange.To)
	assert.Equal(t, &actor, changed.Actor)

	edited := NewEdited(now, &actor, []string{"discount", "total"}, "seasonal discount")
	require.NotNil(t, edited.Edit)
	assert.Equal(t, []string{"discount", "total"}, edited.Edit.ChangedFields)

	manual := NewManualLog(now, &actor, "", "courier called, no answer")
	assert.Equal(t, ActionManualLog, manual.Action)
	assert.Equal(t, "courier called, no answer", manual.Notes)

	custom := NewManualLog(now, &actor, "courier_assigned", "handed to rider")
	assert.Equal(t, "courier_assigned", custom.Action)
}

func TestEffectivePriceUsesSalePriceWhenOnSale(t *testing.T) {
	p := Product{Price: 100, SaleEnabled: true, SalePrice: 75}
	assert.Equal(t, 75.0, p.EffectivePrice())

	p.SaleEnabled = false
	assert.Equal(t, 100.0, p.EffectivePrice())

	p = Product{Price: 100, SaleEnabled: true, SalePrice: 120}
	assert.Equal(t, 100.0, p.EffectivePrice(), "sale price above regular price is ignored")
}
