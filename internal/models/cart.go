package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem mirrors an order line before checkout, without captured pricing.
type CartItem struct {
	ProductSlug string `bson:"productSlug" json:"productSlug"`
	Quantity    int    `bson:"quantity" json:"quantity"`
}

// Cart is the persisted cart document. The order core only ever clears carts
// after a successful checkout; cart management is owned elsewhere.
type Cart struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	SessionID string              `bson:"sessionId,omitempty" json:"sessionId,omitempty"`
	Items     []CartItem          `bson:"items" json:"items"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}
