package crawler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluscatalog/catalog-service/internal/catalog"
	"github.com/pluscatalog/catalog-service/internal/vendor"
)

func TestDiscoverSKUsCreatesSiblings(t *testing.T) {
	client := &stubFetcher{
		variants: []vendor.Variant{
			{StockCode: "lg-g2-mini-lte-black", Color: "Czarny"},
			{StockCode: "lg-g2-mini-lte-white", Color: "Biały"},
		},
		availability: map[string]catalog.Availability{
			"lg-g2-mini-lte-white": catalog.RunningOut,
		},
		photos: []vendor.PhotoRecord{
			{URL: "http://cdn.plus.pl/g2-white-front.png", Default: true},
			{URL: "http://cdn.plus.pl/g2-white-back.png"},
		},
	}
	c, store := newTestCrawler(t, client)
	ctx := context.Background()

	_, err := c.MergeDevice(ctx, testDevice(), testOffer())
	require.NoError(t, err)

	result, err := c.DiscoverSKUs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ProductsScanned)
	assert.Equal(t, 1, result.SKUsCreated)
	assert.Equal(t, 1, result.OffersReplicated)
	assert.Equal(t, 2, result.PhotosAdded)
	assert.Empty(t, result.Errors)

	sku, err := store.SKUs().FindByStockCode(ctx, "lg-g2-mini-lte-white")
	require.NoError(t, err)
	require.NotNil(t, sku)
	assert.Equal(t, "bialy", sku.Color)
	assert.Equal(t, catalog.RunningOut, sku.Availability)

	offers, err := store.Offers().ListForSKU(ctx, sku.ID)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, 1.23, offers[0].Price)
	assert.Nil(t, offers[0].PreviousPrice)
	assert.Contains(t, offers[0].OfferURL, "deviceStockCode=lg-g2-mini-lte-white")

	photos, err := store.Photos().ListForSKU(ctx, sku.ID)
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.True(t, photos[0].Default)
}

func TestDiscoverSKUsIsIdempotent(t *testing.T) {
	client := &stubFetcher{
		variants: []vendor.Variant{
			{StockCode: "lg-g2-mini-lte-black", Color: "Czarny"},
			{StockCode: "lg-g2-mini-lte-white", Color: "Biały"},
		},
	}
	c, store := newTestCrawler(t, client)
	ctx := context.Background()

	_, err := c.MergeDevice(ctx, testDevice(), testOffer())
	require.NoError(t, err)

	_, err = c.DiscoverSKUs(ctx)
	require.NoError(t, err)

	second, err := c.DiscoverSKUs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.SKUsCreated)
	assert.Equal(t, 0, second.OffersReplicated)
	assert.Equal(t, 0, second.PhotosAdded)

	product, err := store.Products().FindByModel(ctx, "LG", "G2 Mini LTE")
	require.NoError(t, err)
	skus, err := store.SKUs().ListForProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Len(t, skus, 2)
}

func TestDiscoverSKUsSkipsOfferlessVariants(t *testing.T) {
	client := &stubFetcher{
		variants: []vendor.Variant{
			{StockCode: "lg-g2-mini-lte-white", Color: "Biały"},
		},
		hasOffer: map[string]bool{
			"lg-g2-mini-lte-white/DEV1234": false,
		},
	}
	c, store := newTestCrawler(t, client)
	ctx := context.Background()

	_, err := c.MergeDevice(ctx, testDevice(), testOffer())
	require.NoError(t, err)

	result, err := c.DiscoverSKUs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SKUsCreated)
	assert.Equal(t, 0, result.OffersReplicated)

	// The SKU exists even though no offer could be replicated for it.
	sku, err := store.SKUs().FindByStockCode(ctx, "lg-g2-mini-lte-white")
	require.NoError(t, err)
	require.NotNil(t, sku)
	offers, err := store.Offers().ListForSKU(ctx, sku.ID)
	require.NoError(t, err)
	assert.Empty(t, offers)
}
