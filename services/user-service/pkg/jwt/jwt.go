package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/slotwise/user-service/internal/config"
	"github.com/slotwise/user-service/internal/models"
)

// Claims is the exact token shape spec.md §6 requires: sub, tenant_id,
// user_type plus the standard exp. user-service is the only issuer in the
// system; every other service only verifies.
type Claims struct {
	Subject  string `json:"sub"`
	TenantID string `json:"tenant_id"`
	UserType string `json:"user_type"`
	jwt.RegisteredClaims
}

// Manager mints and verifies access tokens.
type Manager struct {
	config config.JWT
}

// NewManager creates a new JWT manager.
func NewManager(cfg config.JWT) *Manager {
	return &Manager{config: cfg}
}

// Generate mints a signed access token for user, valid for the
// configured ACCESS_TOKEN_EXPIRE_HOURS.
func (m *Manager) Generate(user *models.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.config.AccessTokenTTL)

	claims := &Claims{
		Subject:  user.ID,
		TenantID: user.TenantID,
		UserType: string(user.UserType),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	// The configured algorithm must be an HMAC method; anything else signs HS256.
	method, ok := jwt.GetSigningMethod(m.config.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		method = jwt.SigningMethodHS256
	}
	token := jwt.NewWithClaims(method, claims)
	signed, err := token.SignedString([]byte(m.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken parses and verifies a token string, returning its claims.
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.config.Secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractTokenFromHeader extracts the bearer token from an Authorization header.
func ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingToken
	}
	const bearerPrefix = "Bearer "
	if len(authHeader) < len(bearerPrefix) || authHeader[:len(bearerPrefix)] != bearerPrefix {
		return "", ErrInvalidTokenFormat
	}
	return authHeader[len(bearerPrefix):], nil
}

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrMissingToken       = errors.New("missing token")
	ErrInvalidTokenFormat = errors.New("invalid token format")
)
