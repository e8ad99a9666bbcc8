// Package jwtmw issues and verifies the HS256 bearer tokens guarding the quote API.
package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// EnvKeyJWTSecret names the variable holding the HMAC signing secret.
const EnvKeyJWTSecret = "JWT_SECRET"

const (
	ScopeRead  = "quotes:read"
	ScopeAdmin = "quotes:admin"
)

// ErrEmptySecret is returned when a token is requested without a signing secret.
var ErrEmptySecret = errors.New("jwt secret is empty")

// Claims carries the API client and the scopes it was granted.
type Claims struct {
	Scopes []string `json:"scopes,omitempty"`
	jwt.RegisteredClaims
}

// HasScope reports whether s was granted. Admin implies every scope.
func (c *Claims) HasScope(s string) bool {
	for _, granted := range c.Scopes {
		if granted == s || granted == ScopeAdmin {
			return true
		}
	}
	return false
}

// Generator defines the interface for JWT token generation.
type Generator interface {
	// GenerateToken signs a token for subject with the given scopes.
	GenerateToken(subject string, scopes ...string) (string, error)
}

// TokenGenerator signs HS256 tokens.
type TokenGenerator struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewGenerator creates a new JWT generator with the provided secret and expiration duration.
func NewGenerator(secret string, expiration time.Duration) *TokenGenerator {
	return &TokenGenerator{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// GenerateToken creates a signed HS256 token with a random jti. No scopes means read-only.
func (g *TokenGenerator) GenerateToken(subject string, scopes ...string) (string, error) {
	if len(g.secret) == 0 {
		return "", ErrEmptySecret
	}
	if len(scopes) == 0 {
		scopes = []string{ScopeRead}
	}

	now := g.now()
	claims := Claims{
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

var _ Generator = (*TokenGenerator)(nil)
