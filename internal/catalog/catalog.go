// Package catalog holds the persisted entities of the offer catalog and the
// pure derivation rules that tie them together.
package catalog

import (
	"strings"
	"time"
)

// ProductType classifies a device model.
type ProductType string

const (
	ProductTypePhone   ProductType = "PHONE"
	ProductTypeTab     ProductType = "TAB"
	ProductTypeRetail  ProductType = "RETAIL"
	ProductTypeModem   ProductType = "MODEM"
	ProductTypeSimCard ProductType = "SIM_CARD"
	ProductTypeBundle  ProductType = "BUNDLE"
)

// ProductTypes lists all accepted product types.
var ProductTypes = []ProductType{
	ProductTypePhone,
	ProductTypeTab,
	ProductTypeRetail,
	ProductTypeModem,
	ProductTypeSimCard,
	ProductTypeBundle,
}

// Valid reports whether t is one of the accepted product types.
func (t ProductType) Valid() bool {
	for _, pt := range ProductTypes {
		if t == pt {
			return true
		}
	}
	return false
}

// Availability is the current stock status of a SKU. The value is the latest
// observation from the vendor, not accumulated history.
type Availability string

const (
	Available    Availability = "AVAILABLE"
	NotAvailable Availability = "NOT_AVAILABLE"
	RunningOut   Availability = "RUNNING_OUT"
)

// NormalizeAvailability maps a raw vendor availability value onto the
// three-state enum. The vendor feed has been observed to send both the
// literal state names and boolean-ish flags.
func NormalizeAvailability(raw string) Availability {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "AVAILABLE", "TRUE", "1", "Y", "YES":
		return Available
	case "RUNNING_OUT":
		return RunningOut
	default:
		return NotAvailable
	}
}

// Product is a device model. Identity key: (manufacturer, model name).
type Product struct {
	ID           string      `json:"id"`
	Manufacturer string      `json:"manufacturer"`
	ModelName    string      `json:"model_name"`
	ProductType  ProductType `json:"product_type"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// SKU is a concrete sellable variant of a Product. The stock code is
// globally unique and immutable once assigned.
type SKU struct {
	ID           string       `json:"id"`
	ProductID    string       `json:"product_id"`
	StockCode    string       `json:"stock_code"`
	Color        string       `json:"color"`
	Availability Availability `json:"availability"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Photo is an image attached to a SKU. Within a SKU's photo set the URL is
// the merge identity: a re-scraped URL updates the default flag in place.
type Photo struct {
	ID        string    `json:"id"`
	SKUID     string    `json:"sku_id"`
	URL       string    `json:"url"`
	Default   bool      `json:"default"`
	CreatedAt time.Time `json:"created_at"`
}

// Offer is a priced commercial bundling of a SKU with a tariff plan,
// contract condition and customer segmentation. Category and OfferURL are
// derived fields; they are computed at construction time and never accepted
// from external input.
type Offer struct {
	ID                    string    `json:"id"`
	SKUID                 string    `json:"sku_id"`
	Category              string    `json:"category"`
	Segmentation          string    `json:"segmentation"`
	Market                string    `json:"market"`
	Price                 float64   `json:"price"`
	PreviousPrice         *float64  `json:"previous_price"`
	MonthlyPrice          float64   `json:"monthly_price"`
	OfferURL              string    `json:"offer_url"`
	TariffPlanCode        string    `json:"tariff_plan_code"`
	OfferCode             string    `json:"offer_code"`
	ContractConditionCode string    `json:"contract_condition_code"`
	Priority              int       `json:"priority"`
	Active                bool      `json:"active"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// OfferKey is the composite identity of an Offer. A scrape matching an
// existing key updates that offer; it never inserts a duplicate.
type OfferKey struct {
	SKUID                 string
	Segmentation          string
	OfferCode             string
	TariffPlanCode        string
	ContractConditionCode string
}

// Key returns the offer's composite identity.
func (o *Offer) Key() OfferKey {
	return OfferKey{
		SKUID:                 o.SKUID,
		Segmentation:          o.Segmentation,
		OfferCode:             o.OfferCode,
		TariffPlanCode:        o.TariffPlanCode,
		ContractConditionCode: o.ContractConditionCode,
	}
}

// ApplyPrice applies one observed price sample to the offer. The previous
// price is only touched when the observed price differs from the stored one,
// and always receives the value being replaced. Repeated application with an
// unchanged price is a no-op. Reports whether the price changed.
func (o *Offer) ApplyPrice(newPrice float64) bool {
	if newPrice == o.Price {
		return false
	}
	prev := o.Price
	o.PreviousPrice = &prev
	o.Price = newPrice
	return true
}
