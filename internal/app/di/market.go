// Package di provides dependency injection factories for creating application components.
package di

import (
	"quote_backend/internal/feature/candlesticks/adapters/alpaca"
	"quote_backend/internal/feature/candlesticks/adapters/longport"
	"quote_backend/internal/feature/candlesticks/adapters/twelvedata"
	"quote_backend/internal/feature/candlesticks/transport/handler"
	"quote_backend/internal/feature/candlesticks/usecase"
	"quote_backend/internal/platform/cache"
	"quote_backend/internal/platform/config"
	infrahttp "quote_backend/internal/platform/http"

	"github.com/redis/go-redis/v9"
)

// Market is the configured quote provider, optionally behind the Redis cache.
type Market struct {
	Repo usecase.MarketRepository
	// Calendar is nil for providers without a trading calendar.
	Calendar usecase.CalendarRepository
	cache    *cache.CachingMarketRepository
	close    func()
}

// NewMarket opens the provider named by cfg.Provider. A nil rdb disables caching.
func NewMarket(cfg config.Config, rdb *redis.Client) (*Market, error) {
	m := &Market{close: func() {}}

	switch cfg.Provider {
	case config.ProviderAlpaca:
		m.Repo = alpaca.NewAlpacaMarket(cfg.AlpacaKey, cfg.AlpacaSecret)
	case config.ProviderTwelveData:
		td, err := twelvedata.NewTwelveDataMarket(cfg.TwelveDataKey, cfg.TwelveDataURL, infrahttp.NewHTTPClient(cfg.Timeout))
		if err != nil {
			return nil, err
		}
		m.Repo = td
	default:
		qc, err := longport.NewQuoteContext(cfg, longport.WithHTTPClient(infrahttp.NewHTTPClient(cfg.Timeout)))
		if err != nil {
			return nil, err
		}
		m.Repo = qc
		m.Calendar = qc
		m.close = qc.Close
	}

	if rdb != nil {
		m.cache = cache.NewCachingMarketRepository(rdb, 0, m.Repo, cfg.Provider)
		m.Repo = m.cache
	}
	return m, nil
}

// Invalidator returns the cache as a handler dependency, or nil when caching is off.
func (m *Market) Invalidator() handler.CacheInvalidator {
	if m.cache == nil {
		return nil
	}
	return m.cache
}

// Close releases the provider's connections.
func (m *Market) Close() {
	m.close()
}
