package catalog

import "strings"

// DefaultDomain is the base domain of the operator portal.
const DefaultDomain = "http://plus.pl"

// Portal sections. Which one an offer links into is decided by markers in
// its category (or raw product type); the tablet check wins over the modem
// check when both would match.
const (
	SectionPhone  = "telefon"
	SectionTablet = "tablet-laptop"
	SectionModem  = "modem-router"

	tabletMarker = "TAB"
	modemMarker  = "MODEM"
)

// DeriveCategory derives an offer's category tag from its segmentation code
// and the owning product's type: dots become dashes and the type is appended.
// "IND.NEW.POSTPAID.ACQ" + PHONE -> "IND-NEW-POSTPAID-ACQ-PHONE".
func DeriveCategory(segmentation string, productType ProductType) string {
	return strings.ReplaceAll(segmentation, ".", "-") + "-" + string(productType)
}

// PortalSection classifies a category (or product type) into the portal
// section its offer page lives under.
func PortalSection(categoryOrType string) string {
	switch {
	case strings.Contains(categoryOrType, tabletMarker):
		return SectionTablet
	case strings.Contains(categoryOrType, modemMarker):
		return SectionModem
	default:
		return SectionPhone
	}
}

// MarketOf returns the market of a segmentation code, its first dot-segment.
func MarketOf(segmentation string) string {
	if i := strings.Index(segmentation, "."); i >= 0 {
		return segmentation[:i]
	}
	return segmentation
}

// BuildOfferURL builds the canonical offer page URL. The query parameter
// order is fixed: downstream deduplication compares URLs as exact strings.
// Values are dotted vendor codes and stock slugs, already URL-safe, so no
// encoding is applied.
func BuildOfferURL(domain, section string, deviceType ProductType, stockCode, segmentation, market, contractCode, tariffCode, offerCode string) string {
	var b strings.Builder
	b.WriteString(domain)
	b.WriteString("/")
	b.WriteString(section)
	b.WriteString("?deviceTypeCode=")
	b.WriteString(string(deviceType))
	b.WriteString("&deviceStockCode=")
	b.WriteString(stockCode)
	b.WriteString("&processSegmentationCode=")
	b.WriteString(segmentation)
	b.WriteString("&marketTypeCode=")
	b.WriteString(market)
	b.WriteString("&contractConditionCode=")
	b.WriteString(contractCode)
	b.WriteString("&tariffPlanCode=")
	b.WriteString(tariffCode)
	b.WriteString("&offerNSICode=")
	b.WriteString(offerCode)
	return b.String()
}

// NewOffer constructs an offer for a SKU with its derived fields computed
// from the identity inputs. Price fields start empty and are filled by the
// first ApplyPrice call of the merge.
func NewOffer(domain string, product *Product, sku *SKU, segmentation, offerCode, tariffCode, contractCode string) *Offer {
	category := DeriveCategory(segmentation, product.ProductType)
	return &Offer{
		SKUID:                 sku.ID,
		Category:              category,
		Segmentation:          segmentation,
		Market:                MarketOf(segmentation),
		OfferCode:             offerCode,
		TariffPlanCode:        tariffCode,
		ContractConditionCode: contractCode,
		Active:                true,
		OfferURL: BuildOfferURL(
			domain,
			PortalSection(category),
			product.ProductType,
			sku.StockCode,
			segmentation,
			MarketOf(segmentation),
			contractCode,
			tariffCode,
			offerCode,
		),
	}
}
