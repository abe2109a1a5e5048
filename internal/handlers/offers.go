package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pluscatalog/catalog-service/internal/catalog"
)

// ListOffersRequest represents query parameters for listing offers
type ListOffersRequest struct {
	Limit  int `form:"limit" binding:"min=0,max=500"`
	Offset int `form:"offset" binding:"min=0"`
}

// ListOffersResponse represents the offer listing response
type ListOffersResponse struct {
	Offers []catalog.PortableOffer `json:"offers"`
	Total  int                     `json:"total"`
}

// ListOffers returns offers with limit/offset pagination
// GET /api/v1/offers?limit=100&offset=0
func ListOffers(c *gin.Context) {
	ctx := c.Request.Context()

	var req ListOffersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Limit == 0 {
		req.Limit = 100
	}

	total, err := store.Offers().Count(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	offers, err := store.Offers().List(ctx, req.Limit, req.Offset)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]catalog.PortableOffer, 0, len(offers))
	for i := range offers {
		out = append(out, offers[i].ToPortable())
	}

	c.JSON(http.StatusOK, ListOffersResponse{Offers: out, Total: total})
}

// GetOffer returns a single offer by id
// GET /api/v1/offers/:id
func GetOffer(c *gin.Context) {
	offer, err := store.Offers().FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if offer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "offer not found"})
		return
	}

	c.JSON(http.StatusOK, offer.ToPortable())
}

// CreateOffer creates an offer from a validated payload. Category and
// offer URL are derived from the owning product and SKU; payloads that
// try to supply them are rejected.
// POST /internal/offers
func CreateOffer(c *gin.Context) {
	ctx := c.Request.Context()

	var payload catalog.OfferPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := catalog.ValidateOfferPayload(payload); err != nil {
		writeError(c, err)
		return
	}

	sku, err := store.SKUs().FindByStockCode(ctx, payload.StockCode)
	if err != nil {
		writeError(c, err)
		return
	}
	if sku == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stock_code does not exist"})
		return
	}
	product, err := store.Products().FindByID(ctx, sku.ProductID)
	if err != nil {
		writeError(c, err)
		return
	}

	offer := catalog.NewOffer(catalog.DefaultDomain, product, sku,
		payload.Segmentation, payload.OfferCode, payload.TariffPlanCode, payload.ContractConditionCode)
	offer.Price = *payload.Price
	offer.MonthlyPrice = payload.MonthlyPrice
	offer.Priority = payload.Priority
	if err := store.Offers().Create(ctx, offer); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, offer.ToPortable())
}
