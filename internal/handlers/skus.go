package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pluscatalog/catalog-service/internal/catalog"
)

// GetSKU returns a single SKU by stock code, with its photo URLs
// GET /api/v1/skus/:stockCode
func GetSKU(c *gin.Context) {
	ctx := c.Request.Context()

	sku, err := store.SKUs().FindByStockCode(ctx, c.Param("stockCode"))
	if err != nil {
		writeError(c, err)
		return
	}
	if sku == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "sku not found"})
		return
	}

	photos, err := store.Photos().ListForSKU(ctx, sku.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sku.ToPortable(photos))
}

// CreateSKU creates a SKU from a validated payload
// POST /internal/skus
func CreateSKU(c *gin.Context) {
	ctx := c.Request.Context()

	var payload catalog.SKUPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := catalog.ValidateSKUPayload(payload); err != nil {
		writeError(c, err)
		return
	}

	product, err := store.Products().FindByID(ctx, payload.ProductID)
	if err != nil {
		writeError(c, err)
		return
	}
	if product == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id does not exist"})
		return
	}

	availability := catalog.NotAvailable
	if payload.Availability != "" {
		availability = catalog.Availability(payload.Availability)
	}
	sku := &catalog.SKU{
		ProductID:    payload.ProductID,
		StockCode:    payload.StockCode,
		Color:        payload.Color,
		Availability: availability,
	}
	if err := store.SKUs().Create(ctx, sku); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sku.ToPortable(nil))
}
