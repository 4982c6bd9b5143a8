package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func EnsureProductIndexes(db *mongo.Database, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("products").Indexes()

	slugIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().
			SetName("slug_unique").
			SetUnique(true),
	}

	if _, err := indexes.CreateOne(ctx, slugIndex); err != nil {
		log.Warn("product slug index", zap.Error(err))
		return err
	}
	log.Info("product indexes ensured")
	return nil
}

func EnsureOrderIndexes(db *mongo.Database, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	orderIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "orderNumber", Value: 1}},
			// Sparse so legacy documents without a number do not collide.
			Options: options.Index().
				SetName("orderNumber_unique").
				SetUnique(true).
				SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("userId_index"),
		},
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}},
			Options: options.Index().SetName("sessionId_index"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("status_index"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("createdAt_desc"),
		},
	}

	if _, err := indexes.CreateMany(ctx, orderIndexes); err != nil {
		log.Warn("order indexes", zap.Error(err))
		return err
	}
	log.Info("order indexes ensured")
	return nil
}

func EnsureCartIndexes(db *mongo.Database, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("carts").Indexes()

	cartIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("userId_index"),
		},
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}},
			Options: options.Index().SetName("sessionId_index"),
		},
	}

	if _, err := indexes.CreateMany(ctx, cartIndexes); err != nil {
		log.Warn("cart indexes", zap.Error(err))
		return err
	}
	log.Info("cart indexes ensured")
	return nil
}
