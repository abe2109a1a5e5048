// Package storage is the persistence collaborator of the catalog: one
// repository per entity kind behind a Store interface with a unit of work.
// Not-found is a normal nil result, never an error; identity-key collisions
// surface as catalog.StorageConflictError.
package storage

import (
	"context"

	"github.com/pluscatalog/catalog-service/internal/catalog"
)

// Store bundles the entity repositories and the unit-of-work boundary.
type Store interface {
	Products() ProductRepo
	SKUs() SKURepo
	Photos() PhotoRepo
	Offers() OfferRepo

	// WithTx runs fn against a transactional view of the store. All writes
	// inside fn commit together or not at all.
	WithTx(ctx context.Context, fn func(Store) error) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

// ProductRepo accesses device models.
type ProductRepo interface {
	FindByID(ctx context.Context, id string) (*catalog.Product, error)
	FindByModel(ctx context.Context, manufacturer, modelName string) (*catalog.Product, error)
	List(ctx context.Context) ([]catalog.Product, error)
	Create(ctx context.Context, p *catalog.Product) error
	Update(ctx context.Context, p *catalog.Product) error
}

// SKURepo accesses stock-coded variants.
type SKURepo interface {
	FindByStockCode(ctx context.Context, stockCode string) (*catalog.SKU, error)
	FirstForProduct(ctx context.Context, productID string) (*catalog.SKU, error)
	ListForProduct(ctx context.Context, productID string) ([]catalog.SKU, error)
	Create(ctx context.Context, s *catalog.SKU) error
	Update(ctx context.Context, s *catalog.SKU) error
}

// PhotoRepo accesses SKU photos.
type PhotoRepo interface {
	FindBySKUAndURL(ctx context.Context, skuID, url string) (*catalog.Photo, error)
	ListForSKU(ctx context.Context, skuID string) ([]catalog.Photo, error)
	Create(ctx context.Context, p *catalog.Photo) error
	Update(ctx context.Context, p *catalog.Photo) error
}

// OfferRepo accesses offers.
type OfferRepo interface {
	FindByID(ctx context.Context, id string) (*catalog.Offer, error)
	FindByKey(ctx context.Context, key catalog.OfferKey) (*catalog.Offer, error)
	ListForSKU(ctx context.Context, skuID string) ([]catalog.Offer, error)
	List(ctx context.Context, limit, offset int) ([]catalog.Offer, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, o *catalog.Offer) error
	Update(ctx context.Context, o *catalog.Offer) error
}
