// Package inventory owns stock quantities. Every stock movement in the
// system, including administrator edits, goes through Reserve and Release; no
// other component writes the stock field.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"storefront/internal/models"
)

// OutOfStockError reports a reservation that could not be covered.
type OutOfStockError struct {
	SKU       string
	Available int
	Requested int
}

func (e OutOfStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d", e.SKU, e.Available, e.Requested)
}

// UnknownSKUError reports a reservation against a product that does not exist
// or has been deleted.
type UnknownSKUError struct {
	SKU string
}

func (e UnknownSKUError) Error() string {
	return fmt.Sprintf("unknown sku %s", e.SKU)
}

// Ledger is the single serialization point for stock movements.
//
// Reserve must check and decrement in one indivisible step: two concurrent
// callers wanting the last unit must not both succeed. Release is the exact
// inverse and must be called at most once per reservation.
type Ledger interface {
	Reserve(ctx context.Context, sku string, qty int) error
	Release(ctx context.Context, sku string, qty int) error
}

// MongoLedger implements Ledger on the products collection using conditional
// single-document updates.
type MongoLedger struct {
	products *mongo.Collection
	log      *zap.Logger
}

// NewMongoLedger returns a ledger backed by db's products collection.
func NewMongoLedger(db *mongo.Database, log *zap.Logger) *MongoLedger {
	return &MongoLedger{
		products: db.Collection("products"),
		log:      log,
	}
}

// Reserve atomically decrements stock for sku if at least qty units remain.
// The stock check and the decrement are a single UpdateOne so concurrent
// reservations serialize at the storage layer; there is no read-then-write
// window.
func (l *MongoLedger) Reserve(ctx context.Context, sku string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("reserve %s: quantity must be positive, got %d", sku, qty)
	}

	filter := bson.M{
		"slug":      sku,
		"isDeleted": bson.M{"$ne": true},
		"stock":     bson.M{"$gte": qty},
	}
	update := bson.M{"$inc": bson.M{"stock": -qty}}

	res, err := l.products.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("reserve %s: %w", sku, err)
	}
	if res.MatchedCount > 0 {
		l.log.Debug("stock reserved", zap.String("sku", sku), zap.Int("qty", qty))
		return nil
	}

	// The conditional update did not match: either the product is missing or
	// stock ran out. A follow-up read only decides which error to report; the
	// update above remains the authority on whether the reservation happened.
	var product models.Product
	err = l.products.FindOne(ctx, bson.M{"slug": sku, "isDeleted": bson.M{"$ne": true}}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return UnknownSKUError{SKU: sku}
	}
	if err != nil {
		return fmt.Errorf("reserve %s: %w", sku, err)
	}
	return OutOfStockError{SKU: sku, Available: product.Stock, Requested: qty}
}

// Release returns qty units of sku to stock. Callers own the at-most-once
// discipline; the ledger does not deduplicate releases.
func (l *MongoLedger) Release(ctx context.Context, sku string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("release %s: quantity must be positive, got %d", sku, qty)
	}

	_, err := l.products.UpdateOne(ctx,
		bson.M{"slug": sku},
		bson.M{"$inc": bson.M{"stock": qty}},
	)
	if err != nil {
		return fmt.Errorf("release %s: %w", sku, err)
	}
	l.log.Debug("stock released", zap.String("sku", sku), zap.Int("qty", qty))
	return nil
}
