// Package session tracks revoked API tokens in Redis.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces revocation keys.
const DefaultPrefix = "quote:revoked"

// ErrEmptyTokenID is returned when a token carries no jti.
var ErrEmptyTokenID = errors.New("token id is empty")

// RevocationRedis stores revoked token IDs until the token would have expired anyway.
type RevocationRedis struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRevocationRedis creates a store under prefix, or DefaultPrefix when empty.
func NewRevocationRedis(client *redis.Client, prefix string) *RevocationRedis {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RevocationRedis{client: client, prefix: prefix, now: time.Now}
}

func (r *RevocationRedis) key(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

// Revoke records id until expiresAt. A token that has already expired needs no entry.
func (r *RevocationRedis) Revoke(ctx context.Context, id string, expiresAt time.Time) error {
	if id == "" {
		return ErrEmptyTokenID
	}
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.key(id), r.now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("revoke %s: %w", id, err)
	}
	return nil
}

// IsRevoked reports whether id was revoked and has not yet expired.
func (r *RevocationRedis) IsRevoked(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	n, err := r.client.Exists(ctx, r.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation %s: %w", id, err)
	}
	return n > 0, nil
}
