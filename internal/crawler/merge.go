package crawler

import (
	"context"
	"errors"

	"github.com/pluscatalog/catalog-service/internal/catalog"
	"github.com/pluscatalog/catalog-service/internal/storage"
	"github.com/pluscatalog/catalog-service/internal/telemetry"
	"github.com/pluscatalog/catalog-service/internal/vendor"
)

// MergeOutcome reports what one merge changed.
type MergeOutcome struct {
	ProductCreated bool
	SKUCreated     bool
	OfferCreated   bool
	PriceChanged   bool
}

// MergeDevice applies one scraped (device, offer) pair to storage. Running
// the same pair twice yields exactly one Product, one SKU and one Offer;
// a changed price/priority/photo flag updates in place. All writes happen
// in a single unit of work, so a failure never leaves a Product or SKU
// behind without its Offer. An identity-key race is retried once.
func (c *Crawler) MergeDevice(ctx context.Context, device vendor.DeviceRecord, offer vendor.OfferRecord) (MergeOutcome, error) {
	outcome, err := c.mergeOnce(ctx, device, offer)

	var conflict *catalog.StorageConflictError
	if errors.As(err, &conflict) {
		c.log.Warn().Str("key", conflict.Key).Msg("identity conflict during merge, retrying once")
		outcome, err = c.mergeOnce(ctx, device, offer)
	}

	if err != nil {
		telemetry.MergeFailures.Inc()
		return outcome, err
	}
	telemetry.DevicesMerged.Inc()
	if outcome.PriceChanged {
		telemetry.PriceChanges.Inc()
	}
	return outcome, nil
}

func (c *Crawler) mergeOnce(ctx context.Context, device vendor.DeviceRecord, offer vendor.OfferRecord) (MergeOutcome, error) {
	var outcome MergeOutcome

	// Data-quality checks happen before any write.
	if err := device.Validate(); err != nil {
		return outcome, err
	}
	if err := offer.Validate(); err != nil {
		return outcome, err
	}
	grossPrice, err := vendor.ParsePrice(device.Prices.GrossPrice)
	if err != nil {
		return outcome, err
	}
	monthlyPrice, err := vendor.ParsePrice(offer.MonthlyFeeGross)
	if err != nil {
		return outcome, err
	}

	err = c.store.WithTx(ctx, func(tx storage.Store) error {
		product, err := tx.Products().FindByModel(ctx, device.Brand, device.ModelName)
		if err != nil {
			return err
		}
		if product == nil {
			product = &catalog.Product{
				Manufacturer: device.Brand,
				ModelName:    device.ModelName,
				ProductType:  catalog.ProductType(device.ProductType),
			}
			if err := tx.Products().Create(ctx, product); err != nil {
				return err
			}
			outcome.ProductCreated = true
		}

		sku, err := tx.SKUs().FindByStockCode(ctx, device.SKU)
		if err != nil {
			return err
		}
		if sku == nil {
			sku = &catalog.SKU{
				ProductID:    product.ID,
				StockCode:    device.SKU,
				Availability: catalog.NormalizeAvailability(string(device.Available)),
			}
			if err := tx.SKUs().Create(ctx, sku); err != nil {
				return err
			}
			outcome.SKUCreated = true
		} else {
			// Availability is last-observation-wins, no history.
			sku.Availability = catalog.NormalizeAvailability(string(device.Available))
			if err := tx.SKUs().Update(ctx, sku); err != nil {
				return err
			}
		}

		for _, img := range device.ImagesOnDetails {
			if img.NormalImage == "" {
				continue
			}
			photo, err := tx.Photos().FindBySKUAndURL(ctx, sku.ID, img.NormalImage)
			if err != nil {
				return err
			}
			if photo != nil {
				if photo.Default != img.DefaultImage {
					photo.Default = img.DefaultImage
					if err := tx.Photos().Update(ctx, photo); err != nil {
						return err
					}
				}
				continue
			}
			photo = &catalog.Photo{SKUID: sku.ID, URL: img.NormalImage, Default: img.DefaultImage}
			if err := tx.Photos().Create(ctx, photo); err != nil {
				return err
			}
		}

		// The offer's segmentation is the segment being crawled, not
		// anything from the scraped record.
		key := catalog.OfferKey{
			SKUID:                 sku.ID,
			Segmentation:          c.cfg.Segment,
			OfferCode:             offer.OfferNSICode,
			TariffPlanCode:        offer.TariffPlanCode,
			ContractConditionCode: offer.ContractConditionCode,
		}
		existing, err := tx.Offers().FindByKey(ctx, key)
		if err != nil {
			return err
		}
		if existing == nil {
			created := catalog.NewOffer(c.cfg.Domain, product, sku, c.cfg.Segment,
				offer.OfferNSICode, offer.TariffPlanCode, offer.ContractConditionCode)
			created.Price = grossPrice
			created.MonthlyPrice = monthlyPrice
			created.Priority = device.DevicePriority
			if err := tx.Offers().Create(ctx, created); err != nil {
				return err
			}
			outcome.OfferCreated = true
			return nil
		}

		// Derived fields are not recomputed on update; only the observed
		// commercial fields move.
		outcome.PriceChanged = existing.ApplyPrice(grossPrice)
		existing.MonthlyPrice = monthlyPrice
		existing.Priority = device.DevicePriority
		return tx.Offers().Update(ctx, existing)
	})
	if err != nil {
		return MergeOutcome{}, err
	}
	return outcome, nil
}
