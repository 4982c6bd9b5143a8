package orders

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Carts is the external cart collaborator. The order core only clears the
// originating cart after a successful checkout.
type Carts interface {
	Clear(ctx context.Context, owner OwnerKey) error
}

// MongoCarts clears carts in the carts collection.
type MongoCarts struct {
	carts *mongo.Collection
}

// NewMongoCarts returns a cart clearer over db's carts collection.
func NewMongoCarts(db *mongo.Database) *MongoCarts {
	return &MongoCarts{carts: db.Collection("carts")}
}

// Clear removes the cart belonging to owner. Clearing a missing cart is not
// an error.
func (c *MongoCarts) Clear(ctx context.Context, owner OwnerKey) error {
	if owner.Empty() {
		return nil
	}

	var conditions []bson.M
	if owner.UserID != nil {
		conditions = append(conditions, bson.M{"userId": *owner.UserID})
	}
	if owner.SessionID != "" {
		conditions = append(conditions, bson.M{"sessionId": owner.SessionID})
	}

	_, err := c.carts.DeleteOne(ctx, bson.M{"$or": conditions})
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
