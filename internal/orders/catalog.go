package orders

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
)

// CatalogProduct is the slice of a product the order core needs: identity,
// display title, and the price to capture.
type CatalogProduct struct {
	Slug  string
	Title string
	Price float64
}

// Catalog resolves products at order time. Catalog management is an external
// collaborator; this is a read-only view.
type Catalog interface {
	FindBySlug(ctx context.Context, slug string) (CatalogProduct, error)
}

// MongoCatalog reads the products collection directly.
type MongoCatalog struct {
	products *mongo.Collection
}

// NewMongoCatalog returns a catalog view over db's products collection.
func NewMongoCatalog(db *mongo.Database) *MongoCatalog {
	return &MongoCatalog{products: db.Collection("products")}
}

// FindBySlug resolves an active product and its current effective (sale-aware)
// price.
func (c *MongoCatalog) FindBySlug(ctx context.Context, slug string) (CatalogProduct, error) {
	var product models.Product
	err := c.products.FindOne(ctx, bson.M{
		"slug":      slug,
		"isDeleted": bson.M{"$ne": true},
		"isActive":  bson.M{"$ne": false},
	}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return CatalogProduct{}, ProductNotFoundError{Slug: slug}
	}
	if err != nil {
		return CatalogProduct{}, fmt.Errorf("find product %s: %w", slug, err)
	}

	return CatalogProduct{
		Slug:  product.Slug,
		Title: product.Title,
		Price: product.EffectivePrice(),
	}, nil
}
