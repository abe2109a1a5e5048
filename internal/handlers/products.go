package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pluscatalog/catalog-service/internal/catalog"
)

// ListProductsResponse represents the product listing response
type ListProductsResponse struct {
	Products []catalog.PortableProduct `json:"products"`
	Total    int                       `json:"total"`
}

// ListProducts returns all products with their SKU stock codes
// GET /api/v1/products
func ListProducts(c *gin.Context) {
	ctx := c.Request.Context()

	products, err := store.Products().List(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]catalog.PortableProduct, 0, len(products))
	for i := range products {
		skus, err := store.SKUs().ListForProduct(ctx, products[i].ID)
		if err != nil {
			writeError(c, err)
			return
		}
		out = append(out, products[i].ToPortable(skus))
	}

	c.JSON(http.StatusOK, ListProductsResponse{Products: out, Total: len(out)})
}

// GetProduct returns a single product by id
// GET /api/v1/products/:id
func GetProduct(c *gin.Context) {
	ctx := c.Request.Context()

	product, err := store.Products().FindByID(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	skus, err := store.SKUs().ListForProduct(ctx, product.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, product.ToPortable(skus))
}

// CreateProduct creates a product from a validated payload
// POST /internal/products
func CreateProduct(c *gin.Context) {
	var payload catalog.ProductPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := catalog.ValidateProductPayload(payload); err != nil {
		writeError(c, err)
		return
	}

	product := &catalog.Product{
		Manufacturer: payload.Manufacturer,
		ModelName:    payload.ModelName,
		ProductType:  catalog.ProductType(payload.ProductType),
	}
	if err := store.Products().Create(c.Request.Context(), product); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product.ToPortable(nil))
}
