package jwtmw

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Revoker records a token ID as revoked until expiresAt.
type Revoker interface {
	Revoke(ctx context.Context, id string, expiresAt time.Time) error
}

// RevokeRequest is the body of POST /tokens/revoke.
type RevokeRequest struct {
	Token string `json:"token" binding:"required"`
}

// RevokeHandler verifies the submitted token against secret and revokes its jti.
// Expired tokens are accepted and ignored since they no longer authenticate.
func RevokeHandler(secret string, store Revoker) gin.HandlerFunc {
	key := []byte(secret)
	parser := newParser()

	return func(c *gin.Context) {
		var req RevokeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		claims := &Claims{}
		_, err := parser.ParseWithClaims(req.Token, claims, func(*jwt.Token) (any, error) {
			return key, nil
		})
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			c.Status(http.StatusNoContent)
			return
		case err != nil:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token"})
			return
		case claims.ID == "":
			c.JSON(http.StatusBadRequest, gin.H{"error": "token has no jti"})
			return
		}

		if err := store.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			slog.Error("failed to revoke token", "jti", claims.ID, "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "revocation unavailable"})
			return
		}
		slog.Info("token revoked", "jti", claims.ID, "subject", claims.Subject)
		c.Status(http.StatusNoContent)
	}
}
