package handlers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
	"storefront/internal/orders"
)

// OrderService is the slice of the order lifecycle service the HTTP layer
// uses. Cancellation goes through Transition with the cancelled status.
type OrderService interface {
	Create(ctx context.Context, in orders.CreateInput) (*models.Order, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListForOwner(ctx context.Context, owner orders.OwnerKey, page, limit int64) ([]models.Order, int64, error)
	ListAdmin(ctx context.Context, status models.OrderStatus, page, limit int64) ([]models.Order, int64, error)
	Transition(ctx context.Context, id primitive.ObjectID, to models.OrderStatus, actor *primitive.ObjectID) (*models.Order, error)
	Edit(ctx context.Context, id primitive.ObjectID, in orders.EditInput, actor *primitive.ObjectID) (*models.Order, error)
	AppendLog(ctx context.Context, id primitive.ObjectID, action, notes string, actor *primitive.ObjectID) (*models.Order, error)
}
