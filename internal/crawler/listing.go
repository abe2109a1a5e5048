package crawler

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/pluscatalog/catalog-service/internal/vendor"
)

var tracer = otel.Tracer("github.com/pluscatalog/catalog-service/internal/crawler")

// Run executes the listing pass for the crawler's segment: offer rotator,
// page count, device pages, then one merge per device. Page fetches for an
// offer fan out concurrently; merges are applied by this single goroutine,
// so writes per identity key are serialized. A per-record failure is logged
// and skipped, never aborting the run; only a failed rotator fetch or
// cancellation does.
func (c *Crawler) Run(ctx context.Context) (*RunResult, error) {
	ctx, span := tracer.Start(ctx, "crawler.run",
		trace.WithAttributes(attribute.String("segment", c.cfg.Segment)))
	defer span.End()

	result := &RunResult{}

	offers, err := c.client.OfferList(ctx, c.cfg.Segment)
	if err != nil {
		return nil, fmt.Errorf("offer list for %s: %w", c.cfg.Segment, err)
	}
	result.Offers = len(offers)
	c.log.Info().Int("offers", len(offers)).Msg("listing pass started")

	for _, offer := range offers {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		pages, err := c.client.Pages(ctx, c.cfg.Segment, offer)
		if err != nil {
			c.recordError(result, fmt.Sprintf("pages for offer %s: %v", offer.OfferNSICode, err))
			continue
		}

		for _, devices := range c.fetchPages(ctx, offer, pages, result) {
			for _, device := range devices {
				if err := ctx.Err(); err != nil {
					return result, err
				}
				outcome, err := c.MergeDevice(ctx, device, offer)
				if err != nil {
					c.recordError(result, fmt.Sprintf("merge device %s offer %s: %v", device.SKU, offer.OfferNSICode, err))
					continue
				}
				result.Devices++
				if outcome.ProductCreated {
					result.ProductsCreated++
				}
				if outcome.SKUCreated {
					result.SKUsCreated++
				}
				if outcome.OfferCreated {
					result.OffersCreated++
				}
				if outcome.PriceChanged {
					result.PriceChanges++
				}
			}
		}
	}

	c.log.Info().
		Int("devices", result.Devices).
		Int("products_created", result.ProductsCreated).
		Int("skus_created", result.SKUsCreated).
		Int("offers_created", result.OffersCreated).
		Int("price_changes", result.PriceChanges).
		Int("errors", len(result.Errors)).
		Msg("listing pass finished")
	return result, nil
}

// fetchPages fetches an offer's listing pages, fanning out up to
// PageConcurrency requests. Failed pages are recorded and skipped; the
// device batches come back in page order so merges stay deterministic.
func (c *Crawler) fetchPages(ctx context.Context, offer vendor.OfferRecord, pages int, result *RunResult) [][]vendor.DeviceRecord {
	batches := make([][]vendor.DeviceRecord, pages)
	pageErrs := make([]error, pages)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.PageConcurrency)
	for page := 1; page <= pages; page++ {
		g.Go(func() error {
			devices, err := c.client.Devices(gctx, c.cfg.Segment, offer, page)
			if err != nil {
				pageErrs[page-1] = err
				return nil
			}
			batches[page-1] = devices
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range pageErrs {
		if err != nil {
			c.recordError(result, fmt.Sprintf("devices page %d for offer %s: %v", i+1, offer.OfferNSICode, err))
		}
	}
	return batches
}

func (c *Crawler) recordError(result *RunResult, msg string) {
	c.log.Warn().Msg(msg)
	result.Errors = append(result.Errors, msg)
}
