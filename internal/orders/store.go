package orders

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

// ListQuery filters and paginates order listings.
type ListQuery struct {
	Owner  *OwnerKey
	Status models.OrderStatus
	Page   int64
	Limit  int64
}

// Store persists order documents.
//
// Replace is the optimistic-concurrency primitive: it writes the full
// document conditioned on the revision the caller read, so every
// read-modify-write recomputes from the current state or fails with
// ErrConflict. AppendHistory bumps the revision too, so a concurrent Replace
// from a stale read cannot silently drop a log entry.
type Store interface {
	Insert(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	Replace(ctx context.Context, o *models.Order) error
	AppendHistory(ctx context.Context, id primitive.ObjectID, entry models.HistoryEntry) error
	List(ctx context.Context, q ListQuery) ([]models.Order, int64, error)
}

// MongoStore implements Store on the orders collection.
type MongoStore struct {
	orders *mongo.Collection
}

// NewMongoStore returns a store backed by db's orders collection.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{orders: db.Collection("orders")}
}

// Insert persists a new order and fills in its generated id.
func (s *MongoStore) Insert(ctx context.Context, o *models.Order) error {
	res, err := s.orders.InsertOne(ctx, o)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", o.OrderNumber, err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		o.ID = id
	}
	return nil
}

// FindByID loads one order.
func (s *MongoStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	err := s.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order %s: %w", id.Hex(), err)
	}
	return &o, nil
}

// Replace writes o conditioned on the revision it was read at. On success
// o.Revision is advanced to the stored value.
func (s *MongoStore) Replace(ctx context.Context, o *models.Order) error {
	expected := o.Revision
	o.Revision = expected + 1

	res, err := s.orders.ReplaceOne(ctx, bson.M{"_id": o.ID, "revision": expected}, o)
	if err != nil {
		o.Revision = expected
		return fmt.Errorf("replace order %s: %w", o.ID.Hex(), err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	o.Revision = expected

	// Missing vs. concurrently rewritten.
	count, err := s.orders.CountDocuments(ctx, bson.M{"_id": o.ID})
	if err != nil {
		return fmt.Errorf("replace order %s: %w", o.ID.Hex(), err)
	}
	if count == 0 {
		return ErrOrderNotFound
	}
	return ErrConflict
}

// AppendHistory pushes one entry onto the order's audit log.
func (s *MongoStore) AppendHistory(ctx context.Context, id primitive.ObjectID, entry models.HistoryEntry) error {
	res, err := s.orders.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"history": entry},
			"$inc":  bson.M{"revision": 1},
			"$set":  bson.M{"updatedAt": entry.Timestamp},
		},
	)
	if err != nil {
		return fmt.Errorf("append history to %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// List returns one page of orders, newest first, with the total match count.
func (s *MongoStore) List(ctx context.Context, q ListQuery) ([]models.Order, int64, error) {
	filter := bson.M{}
	if q.Owner != nil {
		if q.Owner.UserID != nil {
			filter["userId"] = *q.Owner.UserID
		} else {
			filter["sessionId"] = q.Owner.SessionID
		}
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	total, err := s.orders.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := s.orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Order
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("decode orders: %w", err)
	}
	return out, total, nil
}
