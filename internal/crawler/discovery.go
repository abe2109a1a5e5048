package crawler

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pluscatalog/catalog-service/internal/catalog"
	"github.com/pluscatalog/catalog-service/internal/storage"
	"github.com/pluscatalog/catalog-service/internal/telemetry"
	"github.com/pluscatalog/catalog-service/internal/vendor"
)

// DiscoverSKUs runs the follow-up pass over stored products: it walks one
// known offer page per product, scrapes the variant selector for sibling
// stock codes, and creates the SKUs the listing pass never surfaced,
// replicating the reference SKU's offers onto them and fetching their
// photo sets. The pass is idempotent: stock codes already stored are left
// alone. A failure in one product's discovery is logged and that product
// skipped; the pass continues with the rest.
func (c *Crawler) DiscoverSKUs(ctx context.Context) (*DiscoveryResult, error) {
	ctx, span := tracer.Start(ctx, "crawler.discover",
		trace.WithAttributes(attribute.String("segment", c.cfg.Segment)))
	defer span.End()

	result := &DiscoveryResult{}

	products, err := c.store.Products().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	for i := range products {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		product := &products[i]
		if err := c.discoverProduct(ctx, product, result); err != nil {
			msg := fmt.Sprintf("discovery for %s %s: %v", product.Manufacturer, product.ModelName, err)
			c.log.Warn().Msg(msg)
			result.Errors = append(result.Errors, msg)
			continue
		}
		result.ProductsScanned++
	}

	c.log.Info().
		Int("products", result.ProductsScanned).
		Int("skus_created", result.SKUsCreated).
		Int("offers_replicated", result.OffersReplicated).
		Int("photos_added", result.PhotosAdded).
		Int("errors", len(result.Errors)).
		Msg("discovery pass finished")
	return result, nil
}

func (c *Crawler) discoverProduct(ctx context.Context, product *catalog.Product, result *DiscoveryResult) error {
	ref, err := c.store.SKUs().FirstForProduct(ctx, product.ID)
	if err != nil {
		return err
	}
	if ref == nil {
		return nil
	}
	refOffers, err := c.store.Offers().ListForSKU(ctx, ref.ID)
	if err != nil {
		return err
	}
	if len(refOffers) == 0 {
		return nil
	}

	variants, err := c.client.Variants(ctx, refOffers[0].OfferURL)
	if err != nil {
		return err
	}

	for _, variant := range variants {
		if err := ctx.Err(); err != nil {
			return err
		}
		existing, err := c.store.SKUs().FindByStockCode(ctx, variant.StockCode)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := c.createVariantSKU(ctx, product, variant, refOffers, result); err != nil {
			return err
		}
	}
	return nil
}

// createVariantSKU creates one discovered SKU together with its replicated
// offers and photos. The network fetches happen up front so the writes can
// commit as one unit of work.
func (c *Crawler) createVariantSKU(ctx context.Context, product *catalog.Product, variant vendor.Variant, refOffers []catalog.Offer, result *DiscoveryResult) error {
	availability, err := c.client.Availability(ctx, variant.StockCode)
	if err != nil {
		return err
	}

	sku := &catalog.SKU{
		ProductID:    product.ID,
		StockCode:    variant.StockCode,
		Color:        catalog.NormalizeColor(variant.Color),
		Availability: availability,
	}

	// Only offers the price endpoint confirms for this stock code are
	// replicated. Price and priority are copied from the reference offer,
	// not re-fetched.
	var replicated []*catalog.Offer
	for i := range refOffers {
		ref := &refOffers[i]
		ok, err := c.client.HasOffer(ctx, ref.Segmentation, variant.StockCode,
			ref.OfferCode, ref.TariffPlanCode, ref.ContractConditionCode)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		offer := catalog.NewOffer(c.cfg.Domain, product, sku, ref.Segmentation,
			ref.OfferCode, ref.TariffPlanCode, ref.ContractConditionCode)
		offer.Price = ref.Price
		offer.MonthlyPrice = ref.MonthlyPrice
		offer.Priority = ref.Priority
		replicated = append(replicated, offer)
	}

	var photos []vendor.PhotoRecord
	if len(replicated) > 0 {
		photos, err = c.client.PhotoSet(ctx, replicated[0].OfferURL)
		if err != nil {
			c.log.Warn().Err(err).Str("stock_code", variant.StockCode).Msg("photo fetch failed, storing sku without photos")
			photos = nil
		}
	}

	err = c.store.WithTx(ctx, func(tx storage.Store) error {
		if err := tx.SKUs().Create(ctx, sku); err != nil {
			return err
		}
		for _, offer := range replicated {
			offer.SKUID = sku.ID
			key := offer.Key()
			existing, err := tx.Offers().FindByKey(ctx, key)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}
			if err := tx.Offers().Create(ctx, offer); err != nil {
				return err
			}
			result.OffersReplicated++
		}
		for _, photo := range photos {
			existing, err := tx.Photos().FindBySKUAndURL(ctx, sku.ID, photo.URL)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}
			p := &catalog.Photo{SKUID: sku.ID, URL: photo.URL, Default: photo.Default}
			if err := tx.Photos().Create(ctx, p); err != nil {
				return err
			}
			result.PhotosAdded++
		}
		return nil
	})
	if err != nil {
		return err
	}

	result.SKUsCreated++
	telemetry.SKUsDiscovered.Inc()
	return nil
}
