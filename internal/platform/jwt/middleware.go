package jwtmw

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ContextClaims is the gin context key holding the verified *Claims.
const ContextClaims = "claims"

// RevocationChecker reports whether a token ID has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, id string) (bool, error)
}

// AuthOption configures AuthRequired.
type AuthOption func(*authConfig)

type authConfig struct {
	revocations RevocationChecker
}

// WithRevocationCheck rejects tokens whose jti rc reports as revoked.
func WithRevocationCheck(rc RevocationChecker) AuthOption {
	return func(c *authConfig) { c.revocations = rc }
}

func newParser() *jwt.Parser {
	return jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
}

// AuthRequired returns a Gin middleware that validates bearer tokens signed with secret.
func AuthRequired(secret string, opts ...AuthOption) gin.HandlerFunc {
	key := []byte(secret)
	parser := newParser()
	cfg := authConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	return func(c *gin.Context) {
		if len(key) == 0 {
			// JWT_SECRET not set
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured"})
			return
		}

		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims := &Claims{}
		token, err := parser.ParseWithClaims(strings.TrimPrefix(auth, "Bearer "), claims, func(*jwt.Token) (any, error) {
			return key, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		if cfg.revocations != nil {
			revoked, err := cfg.revocations.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// fail closed
				slog.Error("revocation check failed", "jti", claims.ID, "error", err)
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "token check unavailable"})
				return
			}
			if revoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
				return
			}
		}

		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// RequireScope rejects requests whose token lacks scope. It must run after AuthRequired.
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(ContextClaims)
		claims, _ := v.(*Claims)
		if !ok || claims == nil || !claims.HasScope(scope) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient scope"})
			return
		}
		c.Next()
	}
}
