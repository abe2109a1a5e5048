package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pluscatalog/catalog-service/internal/catalog"
)

// pgQuerier is satisfied by *pgxpool.Pool and pgx.Tx so the repositories
// run unchanged inside and outside a transaction.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres is the pgx-backed Store.
type Postgres struct {
	pool *pgxpool.Pool
	q    pgQuerier
}

// PoolConfig sizes the pgx connection pool.
type PoolConfig struct {
	URL             string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// NewPostgres creates a connection pool and verifies connectivity.
func NewPostgres(ctx context.Context, cfg PoolConfig) (*Postgres, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("error parsing database config: %w", err)
	}

	if cfg.MaxConnections > 0 {
		pc.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.MinConnections > 0 {
		pc.MinConns = int32(cfg.MinConnections)
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("error creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	return &Postgres{pool: pool, q: pool}, nil
}

// Close closes the connection pool.
func (s *Postgres) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping implements Store.
func (s *Postgres) Ping(ctx context.Context) error {
	if s.pool == nil {
		return fmt.Errorf("database not initialized")
	}
	return s.pool.Ping(ctx)
}

func (s *Postgres) Products() ProductRepo { return &pgProducts{q: s.q} }
func (s *Postgres) SKUs() SKURepo         { return &pgSKUs{q: s.q} }
func (s *Postgres) Photos() PhotoRepo     { return &pgPhotos{q: s.q} }
func (s *Postgres) Offers() OfferRepo     { return &pgOffers{q: s.q} }

// WithTx implements Store. Nested calls join the outer transaction.
func (s *Postgres) WithTx(ctx context.Context, fn func(Store) error) error {
	if _, inTx := s.q.(pgx.Tx); inTx {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Postgres{pool: s.pool, q: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// mapPgError converts unique-violations into StorageConflictError.
func mapPgError(err error, key string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return &catalog.StorageConflictError{Key: key}
	}
	return err
}

type pgProducts struct {
	q pgQuerier
}

const productColumns = "id, manufacturer, model_name, product_type, created_at, updated_at"

func scanProduct(row pgx.Row) (*catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(&p.ID, &p.Manufacturer, &p.ModelName, &p.ProductType, &p.CreatedAt, &p.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pgProducts) FindByID(ctx context.Context, id string) (*catalog.Product, error) {
	return scanProduct(r.q.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
}

func (r *pgProducts) FindByModel(ctx context.Context, manufacturer, modelName string) (*catalog.Product, error) {
	return scanProduct(r.q.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE manufacturer = $1 AND model_name = $2`,
		manufacturer, modelName))
}

func (r *pgProducts) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Manufacturer, &p.ModelName, &p.ProductType, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *pgProducts) Create(ctx context.Context, p *catalog.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := r.q.Exec(ctx, `
		INSERT INTO products (id, manufacturer, model_name, product_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.Manufacturer, p.ModelName, p.ProductType, p.CreatedAt, p.UpdatedAt)
	return mapPgError(err, p.Manufacturer+"/"+p.ModelName)
}

func (r *pgProducts) Update(ctx context.Context, p *catalog.Product) error {
	p.UpdatedAt = time.Now()
	_, err := r.q.Exec(ctx, `
		UPDATE products SET manufacturer = $2, model_name = $3, product_type = $4, updated_at = $5
		WHERE id = $1
	`, p.ID, p.Manufacturer, p.ModelName, p.ProductType, p.UpdatedAt)
	return mapPgError(err, p.Manufacturer+"/"+p.ModelName)
}

type pgSKUs struct {
	q pgQuerier
}

const skuColumns = "id, product_id, stock_code, color, availability, created_at, updated_at"

func scanSKU(row pgx.Row) (*catalog.SKU, error) {
	var s catalog.SKU
	err := row.Scan(&s.ID, &s.ProductID, &s.StockCode, &s.Color, &s.Availability, &s.CreatedAt, &s.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *pgSKUs) FindByStockCode(ctx context.Context, stockCode string) (*catalog.SKU, error) {
	return scanSKU(r.q.QueryRow(ctx,
		`SELECT `+skuColumns+` FROM skus WHERE stock_code = $1`, stockCode))
}

func (r *pgSKUs) FirstForProduct(ctx context.Context, productID string) (*catalog.SKU, error) {
	return scanSKU(r.q.QueryRow(ctx,
		`SELECT `+skuColumns+` FROM skus WHERE product_id = $1 ORDER BY created_at, id LIMIT 1`,
		productID))
}

func (r *pgSKUs) ListForProduct(ctx context.Context, productID string) ([]catalog.SKU, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+skuColumns+` FROM skus WHERE product_id = $1 ORDER BY created_at, id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.SKU
	for rows.Next() {
		var s catalog.SKU
		if err := rows.Scan(&s.ID, &s.ProductID, &s.StockCode, &s.Color, &s.Availability, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *pgSKUs) Create(ctx context.Context, s *catalog.SKU) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	_, err := r.q.Exec(ctx, `
		INSERT INTO skus (id, product_id, stock_code, color, availability, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, s.ID, s.ProductID, s.StockCode, s.Color, s.Availability, s.CreatedAt, s.UpdatedAt)
	return mapPgError(err, s.StockCode)
}

func (r *pgSKUs) Update(ctx context.Context, s *catalog.SKU) error {
	s.UpdatedAt = time.Now()
	// stock_code is deliberately not part of the SET list: immutable.
	_, err := r.q.Exec(ctx, `
		UPDATE skus SET color = $2, availability = $3, updated_at = $4
		WHERE id = $1
	`, s.ID, s.Color, s.Availability, s.UpdatedAt)
	return err
}

type pgPhotos struct {
	q pgQuerier
}

func (r *pgPhotos) FindBySKUAndURL(ctx context.Context, skuID, url string) (*catalog.Photo, error) {
	var p catalog.Photo
	err := r.q.QueryRow(ctx,
		`SELECT id, sku_id, url, is_default, created_at FROM photos WHERE sku_id = $1 AND url = $2`,
		skuID, url).Scan(&p.ID, &p.SKUID, &p.URL, &p.Default, &p.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pgPhotos) ListForSKU(ctx context.Context, skuID string) ([]catalog.Photo, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, sku_id, url, is_default, created_at FROM photos WHERE sku_id = $1 ORDER BY created_at, id`,
		skuID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Photo
	for rows.Next() {
		var p catalog.Photo
		if err := rows.Scan(&p.ID, &p.SKUID, &p.URL, &p.Default, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *pgPhotos) Create(ctx context.Context, p *catalog.Photo) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now()
	_, err := r.q.Exec(ctx, `
		INSERT INTO photos (id, sku_id, url, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, p.ID, p.SKUID, p.URL, p.Default, p.CreatedAt)
	return mapPgError(err, p.SKUID+"/"+p.URL)
}

func (r *pgPhotos) Update(ctx context.Context, p *catalog.Photo) error {
	_, err := r.q.Exec(ctx,
		`UPDATE photos SET is_default = $2 WHERE id = $1`, p.ID, p.Default)
	return err
}

type pgOffers struct {
	q pgQuerier
}

const offerColumns = `id, sku_id, category, segmentation, market, price, previous_price,
	monthly_price, offer_url, tariff_plan_code, offer_code, contract_condition_code,
	priority, active, created_at, updated_at`

func scanOffer(row pgx.Row) (*catalog.Offer, error) {
	var o catalog.Offer
	err := row.Scan(&o.ID, &o.SKUID, &o.Category, &o.Segmentation, &o.Market, &o.Price,
		&o.PreviousPrice, &o.MonthlyPrice, &o.OfferURL, &o.TariffPlanCode, &o.OfferCode,
		&o.ContractConditionCode, &o.Priority, &o.Active, &o.CreatedAt, &o.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *pgOffers) FindByID(ctx context.Context, id string) (*catalog.Offer, error) {
	return scanOffer(r.q.QueryRow(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE id = $1`, id))
}

func (r *pgOffers) FindByKey(ctx context.Context, key catalog.OfferKey) (*catalog.Offer, error) {
	return scanOffer(r.q.QueryRow(ctx, `
		SELECT `+offerColumns+` FROM offers
		WHERE sku_id = $1 AND segmentation = $2 AND offer_code = $3
		  AND tariff_plan_code = $4 AND contract_condition_code = $5
	`, key.SKUID, key.Segmentation, key.OfferCode, key.TariffPlanCode, key.ContractConditionCode))
}

func (r *pgOffers) ListForSKU(ctx context.Context, skuID string) ([]catalog.Offer, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE sku_id = $1 ORDER BY created_at, id`, skuID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOffers(rows)
}

func (r *pgOffers) List(ctx context.Context, limit, offset int) ([]catalog.Offer, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+offerColumns+` FROM offers ORDER BY created_at, id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOffers(rows)
}

func collectOffers(rows pgx.Rows) ([]catalog.Offer, error) {
	var out []catalog.Offer
	for rows.Next() {
		var o catalog.Offer
		if err := rows.Scan(&o.ID, &o.SKUID, &o.Category, &o.Segmentation, &o.Market, &o.Price,
			&o.PreviousPrice, &o.MonthlyPrice, &o.OfferURL, &o.TariffPlanCode, &o.OfferCode,
			&o.ContractConditionCode, &o.Priority, &o.Active, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *pgOffers) Count(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM offers`).Scan(&n)
	return n, err
}

func (r *pgOffers) Create(ctx context.Context, o *catalog.Offer) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	_, err := r.q.Exec(ctx, `
		INSERT INTO offers (id, sku_id, category, segmentation, market, price, previous_price,
			monthly_price, offer_url, tariff_plan_code, offer_code, contract_condition_code,
			priority, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, o.ID, o.SKUID, o.Category, o.Segmentation, o.Market, o.Price, o.PreviousPrice,
		o.MonthlyPrice, o.OfferURL, o.TariffPlanCode, o.OfferCode, o.ContractConditionCode,
		o.Priority, o.Active, o.CreatedAt, o.UpdatedAt)
	return mapPgError(err, fmt.Sprintf("%s/%s/%s/%s/%s",
		o.SKUID, o.Segmentation, o.OfferCode, o.TariffPlanCode, o.ContractConditionCode))
}

func (r *pgOffers) Update(ctx context.Context, o *catalog.Offer) error {
	o.UpdatedAt = time.Now()
	_, err := r.q.Exec(ctx, `
		UPDATE offers SET price = $2, previous_price = $3, monthly_price = $4,
			priority = $5, active = $6, updated_at = $7
		WHERE id = $1
	`, o.ID, o.Price, o.PreviousPrice, o.MonthlyPrice, o.Priority, o.Active, o.UpdatedAt)
	return err
}
