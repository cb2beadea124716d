// Package jwt verifies tokens minted by user-service. tenant-service only
// validates the shared-secret HS256 token to authorize its own endpoints;
// it never issues tokens.
package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/slotwise/tenant-service/internal/config"
)

// Claims is the exact trimmed claim set spec.md §6 defines.
type Claims struct {
	Subject  string `json:"sub"`
	TenantID string `json:"tenant_id"`
	UserType string `json:"user_type"`
	jwt.RegisteredClaims
}

// Manager validates access tokens.
type Manager struct {
	config config.JWT
}

// NewManager creates a new JWT manager.
func NewManager(cfg config.JWT) *Manager {
	return &Manager{config: cfg}
}

// ValidateToken parses and validates an access token, returning its claims.
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
