package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is the catalog document the order core reads for price capture and
// writes only through the inventory ledger's stock field updates. Catalog
// management itself lives outside this service.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Slug        string             `bson:"slug" json:"slug"`
	Title       string             `bson:"title" json:"title"`
	Price       float64            `bson:"price" json:"price"`
	SaleEnabled bool               `bson:"saleEnabled" json:"saleEnabled"`
	SalePrice   float64            `bson:"salePrice" json:"salePrice"`
	Stock       int                `bson:"stock" json:"stock"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	IsDeleted   bool               `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt   *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// IsOnSale reports whether the sale price applies.
func (p *Product) IsOnSale() bool {
	return p.SaleEnabled && p.SalePrice > 0 && p.SalePrice < p.Price
}

// EffectivePrice is the price a new order captures for this product.
func (p *Product) EffectivePrice() float64 {
	if p.IsOnSale() {
		return p.SalePrice
	}
	return p.Price
}
