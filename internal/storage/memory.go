package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pluscatalog/catalog-service/internal/catalog"
)

// Memory is an in-process Store used by tests and the offline dry-run mode
// of the crawler CLI. Entities are stored by value; list order is insertion
// order, matching the "first known SKU" semantics of discovery.
type Memory struct {
	mu sync.Mutex

	products   map[string]catalog.Product
	skus       map[string]catalog.SKU
	photos     map[string]catalog.Photo
	offers     map[string]catalog.Offer
	productIDs []string
	skuIDs     []string
	photoIDs   []string
	offerIDs   []string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		products: make(map[string]catalog.Product),
		skus:     make(map[string]catalog.SKU),
		photos:   make(map[string]catalog.Photo),
		offers:   make(map[string]catalog.Offer),
	}
}

func (m *Memory) Products() ProductRepo { return (*memProducts)(m) }
func (m *Memory) SKUs() SKURepo         { return (*memSKUs)(m) }
func (m *Memory) Photos() PhotoRepo     { return (*memPhotos)(m) }
func (m *Memory) Offers() OfferRepo     { return (*memOffers)(m) }

// Ping implements Store.
func (m *Memory) Ping(context.Context) error { return nil }

// WithTx snapshots the store, runs fn, and restores the snapshot if fn
// fails. The crawler serializes writes, so a coarse snapshot is enough.
func (m *Memory) WithTx(ctx context.Context, fn func(Store) error) error {
	snap := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	products   map[string]catalog.Product
	skus       map[string]catalog.SKU
	photos     map[string]catalog.Photo
	offers     map[string]catalog.Offer
	productIDs []string
	skuIDs     []string
	photoIDs   []string
	offerIDs   []string
}

func cloneOffer(o catalog.Offer) catalog.Offer {
	if o.PreviousPrice != nil {
		prev := *o.PreviousPrice
		o.PreviousPrice = &prev
	}
	return o
}

func (m *Memory) snapshot() memSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := memSnapshot{
		products:   make(map[string]catalog.Product, len(m.products)),
		skus:       make(map[string]catalog.SKU, len(m.skus)),
		photos:     make(map[string]catalog.Photo, len(m.photos)),
		offers:     make(map[string]catalog.Offer, len(m.offers)),
		productIDs: append([]string(nil), m.productIDs...),
		skuIDs:     append([]string(nil), m.skuIDs...),
		photoIDs:   append([]string(nil), m.photoIDs...),
		offerIDs:   append([]string(nil), m.offerIDs...),
	}
	for id, p := range m.products {
		snap.products[id] = p
	}
	for id, s := range m.skus {
		snap.skus[id] = s
	}
	for id, p := range m.photos {
		snap.photos[id] = p
	}
	for id, o := range m.offers {
		snap.offers[id] = cloneOffer(o)
	}
	return snap
}

func (m *Memory) restore(snap memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = snap.products
	m.skus = snap.skus
	m.photos = snap.photos
	m.offers = snap.offers
	m.productIDs = snap.productIDs
	m.skuIDs = snap.skuIDs
	m.photoIDs = snap.photoIDs
	m.offerIDs = snap.offerIDs
}

type memProducts Memory

func (r *memProducts) FindByID(_ context.Context, id string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r *memProducts) FindByModel(_ context.Context, manufacturer, modelName string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.productIDs {
		p := r.products[id]
		if p.Manufacturer == manufacturer && p.ModelName == modelName {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *memProducts) List(_ context.Context) ([]catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]catalog.Product, 0, len(r.productIDs))
	for _, id := range r.productIDs {
		out = append(out, r.products[id])
	}
	return out, nil
}

func (r *memProducts) Create(_ context.Context, p *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.productIDs {
		existing := r.products[id]
		if existing.Manufacturer == p.Manufacturer && existing.ModelName == p.ModelName {
			return &catalog.StorageConflictError{Key: p.Manufacturer + "/" + p.ModelName}
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.products[p.ID] = *p
	r.productIDs = append(r.productIDs, p.ID)
	return nil
}

func (r *memProducts) Update(_ context.Context, p *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return fmt.Errorf("product %s not found", p.ID)
	}
	p.UpdatedAt = time.Now()
	r.products[p.ID] = *p
	return nil
}

type memSKUs Memory

func (r *memSKUs) FindByStockCode(_ context.Context, stockCode string) (*catalog.SKU, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.skuIDs {
		s := r.skus[id]
		if s.StockCode == stockCode {
			return &s, nil
		}
	}
	return nil, nil
}

func (r *memSKUs) FirstForProduct(_ context.Context, productID string) (*catalog.SKU, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.skuIDs {
		s := r.skus[id]
		if s.ProductID == productID {
			return &s, nil
		}
	}
	return nil, nil
}

func (r *memSKUs) ListForProduct(_ context.Context, productID string) ([]catalog.SKU, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalog.SKU
	for _, id := range r.skuIDs {
		if s := r.skus[id]; s.ProductID == productID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memSKUs) Create(_ context.Context, s *catalog.SKU) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.skuIDs {
		if r.skus[id].StockCode == s.StockCode {
			return &catalog.StorageConflictError{Key: s.StockCode}
		}
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	r.skus[s.ID] = *s
	r.skuIDs = append(r.skuIDs, s.ID)
	return nil
}

func (r *memSKUs) Update(_ context.Context, s *catalog.SKU) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.skus[s.ID]
	if !ok {
		return fmt.Errorf("sku %s not found", s.ID)
	}
	// Stock code is immutable once assigned.
	s.StockCode = existing.StockCode
	s.UpdatedAt = time.Now()
	r.skus[s.ID] = *s
	return nil
}

type memPhotos Memory

func (r *memPhotos) FindBySKUAndURL(_ context.Context, skuID, url string) (*catalog.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.photoIDs {
		p := r.photos[id]
		if p.SKUID == skuID && p.URL == url {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *memPhotos) ListForSKU(_ context.Context, skuID string) ([]catalog.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalog.Photo
	for _, id := range r.photoIDs {
		if p := r.photos[id]; p.SKUID == skuID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPhotos) Create(_ context.Context, p *catalog.Photo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.photoIDs {
		existing := r.photos[id]
		if existing.SKUID == p.SKUID && existing.URL == p.URL {
			return &catalog.StorageConflictError{Key: p.SKUID + "/" + p.URL}
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now()
	r.photos[p.ID] = *p
	r.photoIDs = append(r.photoIDs, p.ID)
	return nil
}

func (r *memPhotos) Update(_ context.Context, p *catalog.Photo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.photos[p.ID]; !ok {
		return fmt.Errorf("photo %s not found", p.ID)
	}
	r.photos[p.ID] = *p
	return nil
}

type memOffers Memory

func (r *memOffers) FindByID(_ context.Context, id string) (*catalog.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.offers[id]; ok {
		o = cloneOffer(o)
		return &o, nil
	}
	return nil, nil
}

func (r *memOffers) FindByKey(_ context.Context, key catalog.OfferKey) (*catalog.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.offerIDs {
		o := r.offers[id]
		if o.Key() == key {
			o = cloneOffer(o)
			return &o, nil
		}
	}
	return nil, nil
}

func (r *memOffers) ListForSKU(_ context.Context, skuID string) ([]catalog.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalog.Offer
	for _, id := range r.offerIDs {
		if o := r.offers[id]; o.SKUID == skuID {
			out = append(out, cloneOffer(o))
		}
	}
	return out, nil
}

func (r *memOffers) List(_ context.Context, limit, offset int) ([]catalog.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalog.Offer
	for i := offset; i < len(r.offerIDs) && len(out) < limit; i++ {
		out = append(out, cloneOffer(r.offers[r.offerIDs[i]]))
	}
	return out, nil
}

func (r *memOffers) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.offerIDs), nil
}

func (r *memOffers) Create(_ context.Context, o *catalog.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.offerIDs {
		existing := r.offers[id]
		if existing.Key() == o.Key() {
			return &catalog.StorageConflictError{Key: fmt.Sprintf("%+v", o.Key())}
		}
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	r.offers[o.ID] = cloneOffer(*o)
	r.offerIDs = append(r.offerIDs, o.ID)
	return nil
}

func (r *memOffers) Update(_ context.Context, o *catalog.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.offers[o.ID]; !ok {
		return fmt.Errorf("offer %s not found", o.ID)
	}
	o.UpdatedAt = time.Now()
	r.offers[o.ID] = cloneOffer(*o)
	return nil
}
