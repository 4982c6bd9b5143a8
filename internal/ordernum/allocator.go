// Package ordernum issues the externally visible order identifiers,
// ORD-YYYYMMDD-NNNN, unique and monotonically increasing within a calendar
// day.
package ordernum

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

// Allocator hands out order numbers. Next must never return the same number
// to two callers, including concurrent callers on the same date.
type Allocator interface {
	Next(ctx context.Context, t time.Time) (string, error)
}

// Format renders an order number from a date key and a sequence value.
// Sequences are zero-padded to four digits and grow wider past 9999 instead
// of truncating.
func Format(dateKey string, seq int64) string {
	return fmt.Sprintf("ORD-%s-%04d", dateKey, seq)
}

// DateKey is the per-day counter key for t (UTC calendar date).
func DateKey(t time.Time) string {
	return t.UTC().Format("20060102")
}

// MongoAllocator implements Allocator with one counter document per day in
// the order_counters collection. The sequence comes from a single
// FindOneAndUpdate with $inc, so there is no window between reading the last
// value and writing the next one.
type MongoAllocator struct {
	counters *mongo.Collection
}

// NewMongoAllocator returns an allocator backed by db's order_counters
// collection.
func NewMongoAllocator(db *mongo.Database) *MongoAllocator {
	return &MongoAllocator{counters: db.Collection("order_counters")}
}

// Next returns the next order number for t's calendar date.
func (a *MongoAllocator) Next(ctx context.Context, t time.Time) (string, error) {
	key := DateKey(t)

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter models.OrderCounter
	err := a.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": key},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return "", fmt.Errorf("allocate order number for %s: %w", key, err)
	}

	return Format(key, counter.Seq), nil
}
