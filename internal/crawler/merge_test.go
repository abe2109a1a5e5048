package crawler

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluscatalog/catalog-service/internal/catalog"
	"github.com/pluscatalog/catalog-service/internal/storage"
	"github.com/pluscatalog/catalog-service/internal/vendor"
)

// stubFetcher serves canned responses so merge and discovery logic can be
// exercised without the portal.
type stubFetcher struct {
	offers       []vendor.OfferRecord
	pages        int
	devices      map[int][]vendor.DeviceRecord
	availability map[string]catalog.Availability
	hasOffer     map[string]bool
	variants     []vendor.Variant
	photos       []vendor.PhotoRecord
}

func (s *stubFetcher) OfferList(context.Context, string) ([]vendor.OfferRecord, error) {
	return s.offers, nil
}

func (s *stubFetcher) Pages(context.Context, string, vendor.OfferRecord) (int, error) {
	return s.pages, nil
}

func (s *stubFetcher) Devices(_ context.Context, _ string, _ vendor.OfferRecord, page int) ([]vendor.DeviceRecord, error) {
	return s.devices[page], nil
}

func (s *stubFetcher) Availability(_ context.Context, stockCode string) (catalog.Availability, error) {
	if a, ok := s.availability[stockCode]; ok {
		return a, nil
	}
	return catalog.NotAvailable, nil
}

func (s *stubFetcher) HasOffer(_ context.Context, _, stockCode, offerCode, _, _ string) (bool, error) {
	if s.hasOffer == nil {
		return true, nil
	}
	return s.hasOffer[stockCode+"/"+offerCode], nil
}

func (s *stubFetcher) Variants(context.Context, string) ([]vendor.Variant, error) {
	return s.variants, nil
}

func (s *stubFetcher) PhotoSet(context.Context, string) ([]vendor.PhotoRecord, error) {
	return s.photos, nil
}

func testDevice() vendor.DeviceRecord {
	return vendor.DeviceRecord{
		Brand:          "LG",
		ModelName:      "G2 Mini LTE",
		ProductType:    "PHONE",
		SKU:            "lg-g2-mini-lte-black",
		Available:      "true",
		DevicePriority: 7,
		ImagesOnDetails: []vendor.ImageRecord{
			{NormalImage: "http://cdn.plus.pl/g2-front.png", DefaultImage: true},
			{NormalImage: "http://cdn.plus.pl/g2-back.png"},
		},
		Prices: vendor.PriceBlock{GrossPrice: "1,23"},
	}
}

func testOffer() vendor.OfferRecord {
	return vendor.OfferRecord{
		OfferNSICode:          "DEV1234",
		TariffPlanCode:        "TAR1",
		ContractConditionCode: "24M",
		MonthlyFeeGross:       "59,99",
	}
}

func newTestCrawler(t *testing.T, client Fetcher) (*Crawler, *storage.Memory) {
	t.Helper()
	store := storage.NewMemory()
	c := New(store, client, Config{Segment: "IND.NEW.POSTPAID.ACQ", PageConcurrency: 2}, zerolog.Nop())
	return c, store
}

func TestMergeDeviceCreatesGraph(t *testing.T) {
	c, store := newTestCrawler(t, &stubFetcher{})
	ctx := context.Background()

	outcome, err := c.MergeDevice(ctx, testDevice(), testOffer())
	require.NoError(t, err)
	assert.True(t, outcome.ProductCreated)
	assert.True(t, outcome.SKUCreated)
	assert.True(t, outcome.OfferCreated)
	assert.False(t, outcome.PriceChanged)

	product, err := store.Products().FindByModel(ctx, "LG", "G2 Mini LTE")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, catalog.ProductTypePhone, product.ProductType)

	sku, err := store.SKUs().FindByStockCode(ctx, "lg-g2-mini-lte-black")
	require.NoError(t, err)
	require.NotNil(t, sku)
	assert.Equal(t, product.ID, sku.ProductID)
	assert.Equal(t, catalog.Available, sku.Availability)

	photos, err := store.Photos().ListForSKU(ctx, sku.ID)
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.True(t, photos[0].Default)
	assert.False(t, photos[1].Default)

	offers, err := store.Offers().ListForSKU(ctx, sku.ID)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "IND-NEW-POSTPAID-ACQ-PHONE", offers[0].Category)
	assert.Equal(t, "IND", offers[0].Market)
	assert.Equal(t, 1.23, offers[0].Price)
	assert.Nil(t, offers[0].PreviousPrice)
	assert.Equal(t, 59.99, offers[0].MonthlyPrice)
	assert.Equal(t, 7, offers[0].Priority)
	assert.Contains(t, offers[0].OfferURL, "http://plus.pl/telefon?deviceTypeCode=PHONE")
}

func TestMergeDeviceIsIdempotent(t *testing.T) {
	c, store := newTestCrawler(t, &stubFetcher{})
	ctx := context.Background()

	_, err := c.MergeDevice(ctx, testDevice(), testOffer())
	require.NoError(t, err)

	outcome, err := c.MergeDevice(ctx, testDevice(), testOffer())
	require.NoError(t, err)
	assert.False(t, outcome.ProductCreated)
	assert.False(t, outcome.SKUCreated)
	assert.False(t, outcome.OfferCreated)
	assert.False(t, outcome.PriceChanged)

	count, err := store.Offers().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMergeDevicePriceHistory(t *testing.T) {
	c, store := newTestCrawler(t, &stubFetcher{})
	ctx := context.Background()

	_, err := c.MergeDevice(ctx, testDevice(), testOffer())
	require.NoError(t, err)

	repriced := testDevice()
	repriced.Prices.GrossPrice = "3,00"
	outcome, err := c.MergeDevice(ctx, repriced, testOffer())
	require.NoError(t, err)
	assert.True(t, outcome.PriceChanged)

	sku, err := store.SKUs().FindByStockCode(ctx, "lg-g2-mini-lte-black")
	require.NoError(t, err)
	offers, err := store.Offers().ListForSKU(ctx, sku.ID)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, 3.00, offers[0].Price)
	require.NotNil(t, offers[0].PreviousPrice)
	assert.Equal(t, 1.23, *offers[0].PreviousPrice)

	// Unchanged price leaves the history alone.
	outcome, err = c.MergeDevice(ctx, repriced, testOffer())
	require.NoError(t, err)
	assert.False(t, outcome.PriceChanged)
	offers, err = store.Offers().ListForSKU(ctx, sku.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.23, *offers[0].PreviousPrice)
}

func TestMergeDeviceUpdatesAvailabilityAndPhotoFlag(t *testing.T) {
	c, store := newTestCrawler(t, &stubFetcher{})
	ctx := context.Background()

	_, err := c.MergeDevice(ctx, testDevice(), testOffer())
	require.NoError(t, err)

	updated := testDevice()
	updated.Available = "RUNNING_OUT"
	updated.ImagesOnDetails[0].DefaultImage = false
	updated.ImagesOnDetails[1].DefaultImage = true
	_, err = c.MergeDevice(ctx, updated, testOffer())
	require.NoError(t, err)

	sku, err := store.SKUs().FindByStockCode(ctx, "lg-g2-mini-lte-black")
	require.NoError(t, err)
	assert.Equal(t, catalog.RunningOut, sku.Availability)

	photos, err := store.Photos().ListForSKU(ctx, sku.ID)
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.False(t, photos[0].Default)
	assert.True(t, photos[1].Default)
}

func TestMergeDeviceRejectsIncompleteRecords(t *testing.T) {
	c, store := newTestCrawler(t, &stubFetcher{})
	ctx := context.Background()

	missing := testDevice()
	missing.ModelName = ""
	_, err := c.MergeDevice(ctx, missing, testOffer())
	var mf *catalog.MissingFieldError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, "modelName", mf.Field)

	badPrice := testDevice()
	badPrice.Prices.GrossPrice = "free"
	_, err = c.MergeDevice(ctx, badPrice, testOffer())
	var pf *catalog.PriceFormatError
	require.ErrorAs(t, err, &pf)

	// Nothing was written on either failure.
	products, err := store.Products().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestRunIsolatesBadRecords(t *testing.T) {
	good := testDevice()
	bad := testDevice()
	bad.SKU = ""

	client := &stubFetcher{
		offers:  []vendor.OfferRecord{testOffer()},
		pages:   2,
		devices: map[int][]vendor.DeviceRecord{1: {bad}, 2: {good}},
	}
	c, store := newTestCrawler(t, client)

	result, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Devices)
	assert.Equal(t, 1, result.OffersCreated)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "sku")

	count, err := store.Offers().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRunStopsOnCancellation(t *testing.T) {
	client := &stubFetcher{
		offers:  []vendor.OfferRecord{testOffer(), testOffer()},
		pages:   1,
		devices: map[int][]vendor.DeviceRecord{1: {testDevice()}},
	}
	c, _ := newTestCrawler(t, client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
