package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// IsValid reports whether s is one of the known statuses.
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order in status s may move to target.
// Forward-only, except that any non-terminal status may move to cancelled.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case StatusPending:
		return target == StatusConfirmed || target == StatusCancelled
	case StatusConfirmed:
		return target == StatusShipped || target == StatusCancelled
	case StatusShipped:
		return target == StatusDelivered || target == StatusCancelled
	default:
		// delivered and cancelled are terminal
		return false
	}
}

// OrderItem is a single line item. Price is captured from the catalog at
// order time and never re-derived afterwards.
type OrderItem struct {
	ProductSlug string  `bson:"productSlug" json:"productSlug"`
	Title       string  `bson:"title" json:"title"`
	Price       float64 `bson:"price" json:"price"`
	Quantity    int     `bson:"quantity" json:"quantity"`
}

// ShippingInfo holds the delivery contact details for an order.
type ShippingInfo struct {
	Name           string `bson:"name" json:"name"`
	Phone          string `bson:"phone" json:"phone"`
	SecondaryPhone string `bson:"secondaryPhone,omitempty" json:"secondaryPhone,omitempty"`
	Address        string `bson:"address" json:"address"`
}

// PaymentMethodCOD is the only supported payment method: cash on delivery,
// settled outside this system.
const PaymentMethodCOD = "COD"

// Order defines the persisted order document.
type Order struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrderNumber    string              `bson:"orderNumber" json:"orderNumber"`
	UserID         *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	SessionID      string              `bson:"sessionId,omitempty" json:"sessionId,omitempty"`
	Items          []OrderItem         `bson:"items" json:"items"`
	Subtotal       float64             `bson:"subtotal" json:"subtotal"`
	ShippingCost   float64             `bson:"shippingCost" json:"shippingCost"`
	ShippingMethod string              `bson:"shippingMethod" json:"shippingMethod"`
	Discount       float64             `bson:"discount" json:"discount"`
	Total          float64             `bson:"total" json:"total"`
	ShippingInfo   ShippingInfo        `bson:"shippingInfo" json:"shippingInfo"`
	PaymentMethod  string              `bson:"paymentMethod" json:"paymentMethod"`
	Status         OrderStatus         `bson:"status" json:"status"`
	Notes          string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CourierName    string              `bson:"courierName,omitempty" json:"courierName,omitempty"`
	TrackingNumber string              `bson:"trackingNumber,omitempty" json:"trackingNumber,omitempty"`
	CourierNotes   string              `bson:"courierNotes,omitempty" json:"courierNotes,omitempty"`
	History        []HistoryEntry      `bson:"history" json:"history"`
	Revision       int64               `bson:"revision" json:"-"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// CheckTotals verifies the pricing invariant total == subtotal + shippingCost - discount.
func (o *Order) CheckTotals() bool {
	return o.Total == o.Subtotal+o.ShippingCost-o.Discount && o.Total >= 0
}

// Quantities returns the reserved quantity per product slug, merging duplicate
// line items for the same product.
func (o *Order) Quantities() map[string]int {
	out := make(map[string]int, len(o.Items))
	for _, item := range o.Items {
		out[item.ProductSlug] += item.Quantity
	}
	return out
}
