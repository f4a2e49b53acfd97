package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// GetIPFromContext extracts the originating client IP, preferring proxy
// headers over the socket address.
func GetIPFromContext(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := c.GetHeader("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.ClientIP()
}
