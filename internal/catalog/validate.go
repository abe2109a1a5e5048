package catalog

import "fmt"

// Creation payloads accepted by the API layer. Validation fails fast with a
// ValidationError before anything is written; derived fields (category,
// offer_url) are forbidden because the catalog computes them itself.

// ProductPayload is an externally supplied product creation payload.
type ProductPayload struct {
	Manufacturer string `json:"manufacturer"`
	ModelName    string `json:"model_name"`
	ProductType  string `json:"product_type"`
}

// ValidateProductPayload checks a product creation payload.
func ValidateProductPayload(p ProductPayload) error {
	if p.Manufacturer == "" {
		return &ValidationError{Message: "manufacturer is required"}
	}
	if p.ModelName == "" {
		return &ValidationError{Message: "model_name is required"}
	}
	if p.ProductType == "" {
		return &ValidationError{Message: "product_type is required"}
	}
	if !ProductType(p.ProductType).Valid() {
		return &ValidationError{
			Message: fmt.Sprintf("unknown product_type %q, allowed: %v", p.ProductType, ProductTypes),
		}
	}
	return nil
}

// SKUPayload is an externally supplied SKU creation payload.
type SKUPayload struct {
	StockCode    string `json:"stock_code"`
	ProductID    string `json:"product_id"`
	Color        string `json:"color"`
	Availability string `json:"availability"`
}

// ValidateSKUPayload checks a SKU creation payload.
func ValidateSKUPayload(p SKUPayload) error {
	if p.StockCode == "" {
		return &ValidationError{Message: "stock_code is required"}
	}
	if p.ProductID == "" {
		return &ValidationError{Message: "product_id is required"}
	}
	if p.Availability != "" {
		switch Availability(p.Availability) {
		case Available, NotAvailable, RunningOut:
		default:
			return &ValidationError{
				Message: fmt.Sprintf("unknown availability %q", p.Availability),
			}
		}
	}
	return nil
}

// OfferPayload is an externally supplied offer creation payload.
type OfferPayload struct {
	StockCode             string   `json:"stock_code"`
	Segmentation          string   `json:"segmentation"`
	OfferCode             string   `json:"offer_code"`
	TariffPlanCode        string   `json:"tariff_plan_code"`
	ContractConditionCode string   `json:"contract_condition_code"`
	Price                 *float64 `json:"price"`
	MonthlyPrice          float64  `json:"monthly_price"`
	Priority              int      `json:"priority"`
	// Derived server-side; supplying them is an error.
	Category string `json:"category"`
	OfferURL string `json:"offer_url"`
}

// ValidateOfferPayload checks an offer creation payload.
func ValidateOfferPayload(p OfferPayload) error {
	if p.Category != "" {
		return &ValidationError{Message: "category is derived and cannot be set"}
	}
	if p.OfferURL != "" {
		return &ValidationError{Message: "offer_url is derived and cannot be set"}
	}
	required := []struct {
		name  string
		value string
	}{
		{"stock_code", p.StockCode},
		{"segmentation", p.Segmentation},
		{"offer_code", p.OfferCode},
		{"tariff_plan_code", p.TariffPlanCode},
		{"contract_condition_code", p.ContractConditionCode},
	}
	for _, f := range required {
		if f.value == "" {
			return &ValidationError{Message: f.name + " is required"}
		}
	}
	if p.Price == nil {
		return &ValidationError{Message: "price is required"}
	}
	if *p.Price < 0 {
		return &ValidationError{Message: "price cannot be negative"}
	}
	return nil
}
