package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/infrastructure/config"
)

// ErrInvalidToken is returned for expired, malformed or mis-signed tokens
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims carried by a session token. Capabilities are
// embedded so the permission middleware can gate requests without a
// database round trip.
type Claims struct {
	UserID       string   `json:"uid"`
	Username     string   `json:"username"`
	Capabilities []string `json:"caps"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HMAC-signed session tokens
type TokenManager struct {
	secret     []byte
	issuer     string
	expiration time.Duration
}

// NewTokenManager creates a TokenManager from JWT configuration
func NewTokenManager(cfg config.JWTConfig) *TokenManager {
	return &TokenManager{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		expiration: cfg.Expiration,
	}
}

// Generate issues a signed token for an authenticated user
func (m *TokenManager) Generate(userID uuid.UUID, username string, capabilities []string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.expiration)
	claims := Claims{
		UserID:       userID.String(),
		Username:     username,
		Capabilities: capabilities,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse verifies a token and returns its claims
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
