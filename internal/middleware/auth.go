package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// InternalAuth validates service-to-service authentication using the
// X-Internal-API-Key header. The expected key comes from the
// INTERNAL_API_KEY environment variable; an unset key keeps the write
// endpoints closed rather than open.
func InternalAuth() gin.HandlerFunc {
	apiKey := os.Getenv("INTERNAL_API_KEY")
	if apiKey == "" {
		return func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "server misconfigured: INTERNAL_API_KEY not set",
			})
		}
	}
	apiKeyBytes := []byte(apiKey)

	return func(c *gin.Context) {
		key := c.GetHeader("X-Internal-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), apiKeyBytes) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}
		c.Next()
	}
}
