package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS allows cross-origin requests from the configured origins only.
// An empty origin list rejects all cross-origin requests; "*" allows any
// origin without credentials.
func CORS(allowOrigins []string) gin.HandlerFunc {
	allowWildcard := false
	for _, o := range allowOrigins {
		if o == "*" {
			allowWildcard = true
			break
		}
	}

	allowMethods := strings.Join([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}, ", ")
	allowHeaders := strings.Join([]string{"Content-Type", "Authorization", "Idempotency-Key", "Accept", "Origin"}, ", ")

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := ""
		switch {
		case allowWildcard:
			allowed = "*"
		default:
			for _, o := range allowOrigins {
				if o == origin {
					allowed = origin
					break
				}
			}
		}

		if allowed != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowed)
			c.Writer.Header().Set("Access-Control-Allow-Methods", allowMethods)
			c.Writer.Header().Set("Access-Control-Allow-Headers", allowHeaders)
			if allowed != "*" {
				c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
				c.Writer.Header().Set("Vary", "Origin")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
