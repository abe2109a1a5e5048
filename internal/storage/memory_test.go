package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluscatalog/catalog-service/internal/catalog"
)

func seedProduct(t *testing.T, store Store) *catalog.Product {
	t.Helper()
	p := &catalog.Product{Manufacturer: "LG", ModelName: "G2 Mini LTE", ProductType: catalog.ProductTypePhone}
	require.NoError(t, store.Products().Create(context.Background(), p))
	return p
}

func seedSKU(t *testing.T, store Store, productID, stockCode string) *catalog.SKU {
	t.Helper()
	s := &catalog.SKU{ProductID: productID, StockCode: stockCode, Availability: catalog.Available}
	require.NoError(t, store.SKUs().Create(context.Background(), s))
	return s
}

func TestMemoryProductUniqueness(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	seedProduct(t, store)

	dup := &catalog.Product{Manufacturer: "LG", ModelName: "G2 Mini LTE", ProductType: catalog.ProductTypePhone}
	err := store.Products().Create(ctx, dup)
	var conflict *catalog.StorageConflictError
	require.ErrorAs(t, err, &conflict)

	found, err := store.Products().FindByModel(ctx, "LG", "G2 Mini LTE")
	require.NoError(t, err)
	require.NotNil(t, found)

	missing, err := store.Products().FindByModel(ctx, "LG", "G3")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemorySKUStockCodeImmutable(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	p := seedProduct(t, store)
	s := seedSKU(t, store, p.ID, "lg-g2-mini-lte-black")

	s.StockCode = "renamed"
	s.Availability = catalog.RunningOut
	require.NoError(t, store.SKUs().Update(ctx, s))

	got, err := store.SKUs().FindByStockCode(ctx, "lg-g2-mini-lte-black")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, catalog.RunningOut, got.Availability)

	renamed, err := store.SKUs().FindByStockCode(ctx, "renamed")
	require.NoError(t, err)
	assert.Nil(t, renamed)
}

func TestMemorySKUGloballyUniqueStockCode(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	p1 := seedProduct(t, store)
	p2 := &catalog.Product{Manufacturer: "ZTE", ModelName: "MF60", ProductType: catalog.ProductTypeModem}
	require.NoError(t, store.Products().Create(ctx, p2))

	seedSKU(t, store, p1.ID, "shared-code")
	dup := &catalog.SKU{ProductID: p2.ID, StockCode: "shared-code"}
	err := store.SKUs().Create(ctx, dup)
	var conflict *catalog.StorageConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "shared-code", conflict.Key)
}

func TestMemoryFirstForProductIsInsertionOrder(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	p := seedProduct(t, store)
	seedSKU(t, store, p.ID, "first")
	seedSKU(t, store, p.ID, "second")

	got, err := store.SKUs().FirstForProduct(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "first", got.StockCode)
}

func TestMemoryOfferKeyUniqueness(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	p := seedProduct(t, store)
	s := seedSKU(t, store, p.ID, "lg-g2-mini-lte-black")

	offer := catalog.NewOffer(catalog.DefaultDomain, p, s, "IND.NEW.POSTPAID.ACQ", "DEV1234", "TAR1", "24M")
	offer.Price = 1.23
	require.NoError(t, store.Offers().Create(ctx, offer))

	dup := catalog.NewOffer(catalog.DefaultDomain, p, s, "IND.NEW.POSTPAID.ACQ", "DEV1234", "TAR1", "24M")
	err := store.Offers().Create(ctx, dup)
	var conflict *catalog.StorageConflictError
	require.ErrorAs(t, err, &conflict)

	// A different tariff plan is a different offer.
	other := catalog.NewOffer(catalog.DefaultDomain, p, s, "IND.NEW.POSTPAID.ACQ", "DEV1234", "TAR2", "24M")
	require.NoError(t, store.Offers().Create(ctx, other))

	count, err := store.Offers().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMemoryOfferListPagination(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	p := seedProduct(t, store)
	s := seedSKU(t, store, p.ID, "lg-g2-mini-lte-black")

	for _, tariff := range []string{"TAR1", "TAR2", "TAR3"} {
		o := catalog.NewOffer(catalog.DefaultDomain, p, s, "IND.NEW.POSTPAID.ACQ", "DEV1234", tariff, "24M")
		require.NoError(t, store.Offers().Create(ctx, o))
	}

	page, err := store.Offers().List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)
	assert.Equal(t, "TAR1", page[0].TariffPlanCode)

	page, err = store.Offers().List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "TAR3", page[0].TariffPlanCode)
}

func TestMemoryOffersAreCopies(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	p := seedProduct(t, store)
	s := seedSKU(t, store, p.ID, "lg-g2-mini-lte-black")

	o := catalog.NewOffer(catalog.DefaultDomain, p, s, "IND.NEW.POSTPAID.ACQ", "DEV1234", "TAR1", "24M")
	o.Price = 1.23
	require.NoError(t, store.Offers().Create(ctx, o))

	fetched, err := store.Offers().FindByKey(ctx, o.Key())
	require.NoError(t, err)
	require.NotNil(t, fetched)
	fetched.ApplyPrice(3.00)

	again, err := store.Offers().FindByKey(ctx, o.Key())
	require.NoError(t, err)
	assert.Equal(t, 1.23, again.Price)
	assert.Nil(t, again.PreviousPrice)
}

func TestMemoryWithTxRollsBackOnError(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	seedProduct(t, store)

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(tx Store) error {
		p := &catalog.Product{Manufacturer: "ZTE", ModelName: "MF60", ProductType: catalog.ProductTypeModem}
		if err := tx.Products().Create(ctx, p); err != nil {
			return err
		}
		s := &catalog.SKU{ProductID: p.ID, StockCode: "zte-mf60-black"}
		if err := tx.SKUs().Create(ctx, s); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	products, err := store.Products().List(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
	sku, err := store.SKUs().FindByStockCode(ctx, "zte-mf60-black")
	require.NoError(t, err)
	assert.Nil(t, sku)
}

func TestMemoryWithTxCommits(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx Store) error {
		p := &catalog.Product{Manufacturer: "ZTE", ModelName: "MF60", ProductType: catalog.ProductTypeModem}
		return tx.Products().Create(ctx, p)
	})
	require.NoError(t, err)

	found, err := store.Products().FindByModel(ctx, "ZTE", "MF60")
	require.NoError(t, err)
	assert.NotNil(t, found)
}
