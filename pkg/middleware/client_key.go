package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const ClientKeyHeader = "X-API-Key"

// ClientKey requires the public client key on every request of the group.
// An empty key disables the check.
func ClientKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		got := c.GetHeader(ClientKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid client key"})
			c.Abort()
			return
		}
		c.Next()
	}
}
