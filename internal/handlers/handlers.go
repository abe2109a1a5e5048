// Package handlers exposes the catalog over HTTP: read endpoints for
// products, SKUs and offers, and internal write endpoints that accept
// validated creation payloads.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pluscatalog/catalog-service/internal/catalog"
	"github.com/pluscatalog/catalog-service/internal/storage"
)

var store storage.Store

// Init wires the storage backend used by all handlers.
func Init(s storage.Store) {
	store = s
}

// writeError maps domain errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var validation *catalog.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
		return
	}
	var conflict *catalog.StorageConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
