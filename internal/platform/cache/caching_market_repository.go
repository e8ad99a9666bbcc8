// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/candlesticks/usecase"
)

// refreshHour is the local exchange hour after which cached history is considered stale.
const refreshHour = 8

// CachingMarketRepository decorates a MarketRepository with Redis caching.
// Only settled history is cached: date ranges that end before today, and
// backward offset queries anchored before today. Latest always goes upstream.
type CachingMarketRepository struct {
	inner     usecase.MarketRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	now       func() time.Time
}

var _ usecase.MarketRepository = (*CachingMarketRepository)(nil)

// NewCachingMarketRepository decorates inner with Redis caching.
// If ttl is 0, entries live until the next 08:00 in the symbol's exchange time zone.
// If namespace is empty, it uses "candlesticks". A nil rdb disables caching.
func NewCachingMarketRepository(rdb *redis.Client, ttl time.Duration, inner usecase.MarketRepository, namespace string) *CachingMarketRepository {
	if ttl < 0 {
		ttl = 0
	}
	if namespace == "" {
		namespace = "candlesticks"
	}
	return &CachingMarketRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
		now:       time.Now,
	}
}

// HistoryByDate serves settled date ranges from the cache.
func (c *CachingMarketRepository) HistoryByDate(ctx context.Context, q usecase.DateQuery) ([]entity.Candlestick, error) {
	loc := locationOf(q.Symbol)
	if c.rdb == nil || q.End.IsZero() || !c.beforeToday(q.End, loc) {
		return c.inner.HistoryByDate(ctx, q)
	}
	key := c.cacheKey(q.Symbol, "date", q.Period, q.Adjust, q.Sessions, dateKey(q.Start), dateKey(q.End))
	return c.cached(ctx, key, loc, func() ([]entity.Candlestick, error) {
		return c.inner.HistoryByDate(ctx, q)
	})
}

// HistoryByOffset serves backward queries anchored before today from the cache.
func (c *CachingMarketRepository) HistoryByOffset(ctx context.Context, q usecase.OffsetQuery) ([]entity.Candlestick, error) {
	loc := locationOf(q.Symbol)
	if c.rdb == nil || q.Forward || q.At.IsZero() || !c.beforeToday(q.At, loc) {
		return c.inner.HistoryByOffset(ctx, q)
	}
	key := c.cacheKey(q.Symbol, "offset", q.Period, q.Adjust, q.Sessions, q.At.Format("200601021504"), fmt.Sprint(q.Count))
	return c.cached(ctx, key, loc, func() ([]entity.Candlestick, error) {
		return c.inner.HistoryByOffset(ctx, q)
	})
}

// Latest is never cached.
func (c *CachingMarketRepository) Latest(ctx context.Context, q usecase.LatestQuery) ([]entity.Candlestick, error) {
	return c.inner.Latest(ctx, q)
}

// Invalidate drops every cached entry of symbol.
func (c *CachingMarketRepository) Invalidate(ctx context.Context, symbol string) error {
	if c.rdb == nil {
		return nil
	}
	return c.deleteByPattern(ctx, c.cacheKeyPrefix(symbol)+"*")
}

func (c *CachingMarketRepository) cached(ctx context.Context, key string, loc *time.Location, load func() ([]entity.Candlestick, error)) ([]entity.Candlestick, error) {
	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Candlestick
		if err := json.Unmarshal(b, &out); err == nil {
			for i := range out {
				out[i].Timestamp = out[i].Timestamp.In(loc)
			}
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the provider
	out, err := load()
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.expiry(loc)).Err(); err != nil {
			slog.Warn("failed to cache candlesticks", "key", key, "error", err)
		}
	}
	return out, nil
}

func (c *CachingMarketRepository) expiry(loc *time.Location) time.Duration {
	if c.ttl > 0 {
		return c.ttl
	}
	return timeUntilNext(c.now(), refreshHour, loc)
}

// beforeToday reports whether t falls on a calendar date before today in loc.
func (c *CachingMarketRepository) beforeToday(t time.Time, loc *time.Location) bool {
	ty, tm, td := c.now().In(loc).Date()
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Before(time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC))
}

// cacheKey generates a cache key for a specific query.
func (c *CachingMarketRepository) cacheKey(symbol, kind string, p entity.Period, a entity.AdjustType, s entity.TradeSessions, parts ...string) string {
	key := fmt.Sprintf("%s%s:%d:%d:%d", c.cacheKeyPrefix(symbol), kind, int32(p), int32(a), int32(s))
	for _, part := range parts {
		key += ":" + safe(part)
	}
	return key
}

// cacheKeyPrefix generates a prefix for invalidating related cache entries.
func (c *CachingMarketRepository) cacheKeyPrefix(symbol string) string {
	return fmt.Sprintf("%s:%s:", c.namespace, safe(strings.ToUpper(symbol)))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingMarketRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

func dateKey(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("20060102")
}

func locationOf(symbol string) *time.Location {
	sym, err := entity.ParseSymbol(symbol)
	if err != nil {
		return time.UTC
	}
	return sym.Market.Location()
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, "*", "_")
	return s
}
