package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/identity"
	"github.com/retailpos/backend/internal/infrastructure/auth"
	"github.com/retailpos/backend/internal/infrastructure/cache"
	"github.com/retailpos/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenManager() *auth.TokenManager {
	return auth.NewTokenManager(config.JWTConfig{
		Secret:     "test-secret-key-at-least-32-chars",
		Expiration: 15 * time.Minute,
		Issuer:     "test-issuer",
	})
}

func setupRouter(tokens *auth.TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(JWTAuth(tokens))
	return router
}

func issueToken(t *testing.T, tokens *auth.TokenManager, caps []string) string {
	t.Helper()
	token, _, err := tokens.Generate(uuid.New(), "cashier", caps)
	require.NoError(t, err)
	return token
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	router := setupRouter(newTestTokenManager())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	router := setupRouter(newTestTokenManager())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+"not-a-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_ValidTokenExposesClaims(t *testing.T) {
	tokens := newTestTokenManager()
	router := setupRouter(tokens)
	router.GET("/ping", func(c *gin.Context) {
		claims := GetClaims(c)
		require.NotNil(t, claims)
		assert.Equal(t, "cashier", claims.Username)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+issueToken(t, tokens, []string{"pos.operate"}))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireCapability_Granted(t *testing.T) {
	tokens := newTestTokenManager()
	router := setupRouter(tokens)
	router.POST("/sales", RequireCapability(identity.CapPOSOperate), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/sales", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+issueToken(t, tokens, []string{"pos.operate"}))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRequireCapability_Denied(t *testing.T) {
	tokens := newTestTokenManager()
	router := setupRouter(tokens)
	router.POST("/sales", RequireCapability(identity.CapPOSOperate), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/sales", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+issueToken(t, tokens, []string{"reports.view"}))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestIdempotency_NoHeaderPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/sales", Idempotency(cache.NewMemoryStore(), time.Minute), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/sales", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestIdempotency_RepeatedKeyRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/sales", Idempotency(cache.NewMemoryStore(), time.Minute), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	first := httptest.NewRequest(http.MethodPost, "/sales", nil)
	first.Header.Set(IdempotencyKeyHeader, "abc-123")
	w1 := httptest.NewRecorder()
	router.ServeHTTP(w1, first)
	require.Equal(t, http.StatusCreated, w1.Code)

	second := httptest.NewRequest(http.MethodPost, "/sales", nil)
	second.Header.Set(IdempotencyKeyHeader, "abc-123")
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, second)

	assert.Equal(t, http.StatusConflict, w2.Code)
}
