package middleware

import (
	"github.com/go-authgate/mailbridge/internal/util"

	"github.com/gin-gonic/gin"
)

// IPMiddleware records the client IP on both the gin context and the request context,
// where the audit service picks it up
func IPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Gin's ClientIP() handles X-Forwarded-For and other headers
		ip := c.ClientIP()
		c.Set("client_ip", ip)
		c.Request = c.Request.WithContext(util.SetIPContext(c.Request.Context(), ip))
		c.Next()
	}
}
