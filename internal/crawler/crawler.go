// Package crawler reconciles scraped vendor data into the catalog: the
// listing pass merges device/offer records (save-or-update with price
// history), the discovery pass fills in sibling SKUs the listing missed.
package crawler

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pluscatalog/catalog-service/internal/catalog"
	"github.com/pluscatalog/catalog-service/internal/storage"
	"github.com/pluscatalog/catalog-service/internal/vendor"
)

// Fetcher is the portal client surface the crawler depends on.
type Fetcher interface {
	OfferList(ctx context.Context, segment string) ([]vendor.OfferRecord, error)
	Pages(ctx context.Context, segment string, offer vendor.OfferRecord) (int, error)
	Devices(ctx context.Context, segment string, offer vendor.OfferRecord, page int) ([]vendor.DeviceRecord, error)
	Availability(ctx context.Context, stockCode string) (catalog.Availability, error)
	HasOffer(ctx context.Context, segmentation, stockCode, offerCode, tariffCode, contractCode string) (bool, error)
	Variants(ctx context.Context, pageURL string) ([]vendor.Variant, error)
	PhotoSet(ctx context.Context, pageURL string) ([]vendor.PhotoRecord, error)
}

// Config holds per-run crawler settings.
type Config struct {
	// Segment is the segmentation code this crawler walks; it becomes the
	// segmentation of every offer it merges.
	Segment string

	// Domain is the portal base domain used for canonical offer URLs.
	Domain string

	// PageConcurrency bounds the parallel listing-page fetches of one
	// offer. Merges stay on a single writer regardless.
	PageConcurrency int
}

// Crawler walks one segment of the operator portal.
type Crawler struct {
	store  storage.Store
	client Fetcher
	cfg    Config
	log    zerolog.Logger
}

// New creates a crawler for one segment.
func New(store storage.Store, client Fetcher, cfg Config, logger zerolog.Logger) *Crawler {
	if cfg.Domain == "" {
		cfg.Domain = catalog.DefaultDomain
	}
	if cfg.PageConcurrency <= 0 {
		cfg.PageConcurrency = 1
	}
	return &Crawler{
		store:  store,
		client: client,
		cfg:    cfg,
		log:    logger.With().Str("component", "crawler").Str("segment", cfg.Segment).Logger(),
	}
}

// RunResult summarizes a listing pass.
type RunResult struct {
	Offers          int
	Devices         int
	ProductsCreated int
	SKUsCreated     int
	OffersCreated   int
	PriceChanges    int
	Errors          []string
}

// DiscoveryResult summarizes a SKU discovery pass.
type DiscoveryResult struct {
	ProductsScanned  int
	SKUsCreated      int
	OffersReplicated int
	PhotosAdded      int
	Errors           []string
}
