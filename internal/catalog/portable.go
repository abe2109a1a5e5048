package catalog

// Portable projections are the flat record shapes handed to the HTTP layer.
// They carry no storage identifiers beyond what API consumers key on.

// PortableProduct is the API projection of a Product.
type PortableProduct struct {
	ID           string   `json:"id"`
	Manufacturer string   `json:"manufacturer"`
	ModelName    string   `json:"model_name"`
	ProductType  string   `json:"product_type"`
	SKUs         []string `json:"skus"`
}

// PortableSKU is the API projection of a SKU.
type PortableSKU struct {
	StockCode    string   `json:"stock_code"`
	ProductID    string   `json:"product_id"`
	Color        string   `json:"color"`
	Availability string   `json:"availability"`
	Photos       []string `json:"photos"`
}

// PortableOffer is the API projection of an Offer.
type PortableOffer struct {
	ID                    string   `json:"id"`
	SKUID                 string   `json:"sku_id"`
	Category              string   `json:"category"`
	Segmentation          string   `json:"segmentation"`
	Market                string   `json:"market"`
	Price                 float64  `json:"price"`
	PreviousPrice         *float64 `json:"previous_price"`
	MonthlyPrice          float64  `json:"monthly_price"`
	OfferURL              string   `json:"offer_url"`
	TariffPlanCode        string   `json:"tariff_plan_code"`
	OfferCode             string   `json:"offer_code"`
	ContractConditionCode string   `json:"contract_condition_code"`
	Priority              int      `json:"priority"`
	Active                bool     `json:"active"`
}

// ToPortable projects a product and its known SKU stock codes.
func (p *Product) ToPortable(skus []SKU) PortableProduct {
	codes := make([]string, 0, len(skus))
	for _, s := range skus {
		codes = append(codes, s.StockCode)
	}
	return PortableProduct{
		ID:           p.ID,
		Manufacturer: p.Manufacturer,
		ModelName:    p.ModelName,
		ProductType:  string(p.ProductType),
		SKUs:         codes,
	}
}

// ToPortable projects a SKU and its photo URLs.
func (s *SKU) ToPortable(photos []Photo) PortableSKU {
	urls := make([]string, 0, len(photos))
	for _, ph := range photos {
		urls = append(urls, ph.URL)
	}
	return PortableSKU{
		StockCode:    s.StockCode,
		ProductID:    s.ProductID,
		Color:        s.Color,
		Availability: string(s.Availability),
		Photos:       urls,
	}
}

// ToPortable projects an offer.
func (o *Offer) ToPortable() PortableOffer {
	return PortableOffer{
		ID:                    o.ID,
		SKUID:                 o.SKUID,
		Category:              o.Category,
		Segmentation:          o.Segmentation,
		Market:                o.Market,
		Price:                 o.Price,
		PreviousPrice:         o.PreviousPrice,
		MonthlyPrice:          o.MonthlyPrice,
		OfferURL:              o.OfferURL,
		TariffPlanCode:        o.TariffPlanCode,
		OfferCode:             o.OfferCode,
		ContractConditionCode: o.ContractConditionCode,
		Priority:              o.Priority,
		Active:                o.Active,
	}
}
