package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/retailpos/backend/internal/infrastructure/cache"
)

// IdempotencyKeyHeader carries the client-chosen key for posting endpoints
const IdempotencyKeyHeader = "Idempotency-Key"

// Idempotency rejects a repeated posting request carrying a key that was
// already claimed. Requests without the header pass through untouched;
// a store failure also passes through, since blocking sales on the cache
// would be worse than a rare duplicate.
func Idempotency(store cache.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		claimed, err := store.Claim(c.Request.Context(), key, ttl)
		if err != nil {
			c.Next()
			return
		}
		if !claimed {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DUPLICATE_REQUEST",
					"message": "A request with this idempotency key was already processed",
				},
			})
			return
		}
		c.Next()
	}
}
