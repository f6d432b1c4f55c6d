package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/retailpos/backend/internal/domain/identity"
)

// RequireCapability gates a route group on one capability from the
// authenticated user's token. It must run after JWTAuth.
func RequireCapability(capability identity.Capability) gin.HandlerFunc {
	required := string(capability)
	return func(c *gin.Context) {
		for _, cap := range GetCapabilities(c) {
			if cap == required {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Missing capability: " + required,
			},
		})
	}
}
