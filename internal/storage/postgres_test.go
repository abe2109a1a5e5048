package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pluscatalog/catalog-service/internal/catalog"
)

// setupPostgres starts a throwaway postgres container and applies the
// schema. Skipped in short mode, where the in-memory store covers the
// repository contract.
func setupPostgres(t *testing.T) *Postgres {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { testcontainers.TerminateContainer(container) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, err := NewPostgres(ctx, PoolConfig{URL: connStr, MaxConnections: 4})
	require.NoError(t, err)
	t.Cleanup(store.Close)

	schema, err := os.ReadFile("../../db/schema.sql")
	require.NoError(t, err)
	_, err = store.pool.Exec(ctx, string(schema))
	require.NoError(t, err)

	return store
}

func TestPostgresRoundTrip(t *testing.T) {
	store := setupPostgres(t)
	ctx := context.Background()

	p := seedProduct(t, store)
	s := seedSKU(t, store, p.ID, "lg-g2-mini-lte-black")

	gotP, err := store.Products().FindByModel(ctx, "LG", "G2 Mini LTE")
	require.NoError(t, err)
	require.NotNil(t, gotP)
	assert.Equal(t, p.ID, gotP.ID)

	gotS, err := store.SKUs().FindByStockCode(ctx, "lg-g2-mini-lte-black")
	require.NoError(t, err)
	require.NotNil(t, gotS)
	assert.Equal(t, s.ID, gotS.ID)
	assert.Equal(t, catalog.Available, gotS.Availability)

	missing, err := store.SKUs().FindByStockCode(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPostgresUniqueViolationsMapToConflict(t *testing.T) {
	store := setupPostgres(t)
	ctx := context.Background()

	p := seedProduct(t, store)
	seedSKU(t, store, p.ID, "lg-g2-mini-lte-black")

	dupProduct := &catalog.Product{Manufacturer: "LG", ModelName: "G2 Mini LTE", ProductType: catalog.ProductTypePhone}
	err := store.Products().Create(ctx, dupProduct)
	var conflict *catalog.StorageConflictError
	require.ErrorAs(t, err, &conflict)

	dupSKU := &catalog.SKU{ProductID: p.ID, StockCode: "lg-g2-mini-lte-black"}
	err = store.SKUs().Create(ctx, dupSKU)
	require.ErrorAs(t, err, &conflict)
}

func TestPostgresOfferPriceHistory(t *testing.T) {
	store := setupPostgres(t)
	ctx := context.Background()

	p := seedProduct(t, store)
	s := seedSKU(t, store, p.ID, "lg-g2-mini-lte-black")

	offer := catalog.NewOffer(catalog.DefaultDomain, p, s, "IND.NEW.POSTPAID.ACQ", "DEV1234", "TAR1", "24M")
	offer.Price = 1.23
	require.NoError(t, store.Offers().Create(ctx, offer))

	fetched, err := store.Offers().FindByKey(ctx, offer.Key())
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Nil(t, fetched.PreviousPrice)

	fetched.ApplyPrice(3.00)
	require.NoError(t, store.Offers().Update(ctx, fetched))

	again, err := store.Offers().FindByID(ctx, fetched.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.00, again.Price)
	require.NotNil(t, again.PreviousPrice)
	assert.Equal(t, 1.23, *again.PreviousPrice)
}

func TestPostgresWithTxRollsBack(t *testing.T) {
	store := setupPostgres(t)
	ctx := context.Background()

	p := seedProduct(t, store)

	err := store.WithTx(ctx, func(tx Store) error {
		s := &catalog.SKU{ProductID: p.ID, StockCode: "lg-g2-mini-lte-white"}
		if err := tx.SKUs().Create(ctx, s); err != nil {
			return err
		}
		// A duplicate inside the transaction poisons the whole unit.
		dup := &catalog.SKU{ProductID: p.ID, StockCode: "lg-g2-mini-lte-white"}
		return tx.SKUs().Create(ctx, dup)
	})
	var conflict *catalog.StorageConflictError
	require.ErrorAs(t, err, &conflict)

	sku, err := store.SKUs().FindByStockCode(ctx, "lg-g2-mini-lte-white")
	require.NoError(t, err)
	assert.Nil(t, sku)
}

func TestPostgresOfferPagination(t *testing.T) {
	store := setupPostgres(t)
	ctx := context.Background()

	p := seedProduct(t, store)
	s := seedSKU(t, store, p.ID, "lg-g2-mini-lte-black")

	for _, tariff := range []string{"TAR1", "TAR2", "TAR3"} {
		o := catalog.NewOffer(catalog.DefaultDomain, p, s, "IND.NEW.POSTPAID.ACQ", "DEV1234", tariff, "24M")
		require.NoError(t, store.Offers().Create(ctx, o))
	}

	count, err := store.Offers().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	page, err := store.Offers().List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}
