package orders

import "go.mongodb.org/mongo-driver/bson/primitive"

// OwnerKey identifies who an order or cart belongs to: a registered user or
// an anonymous session, never neither.
type OwnerKey struct {
	UserID    *primitive.ObjectID
	SessionID string
}

// Empty reports whether the key identifies nobody. Empty keys are rejected at
// order creation.
func (k OwnerKey) Empty() bool {
	return k.UserID == nil && k.SessionID == ""
}
