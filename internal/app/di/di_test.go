package di

import (
	"testing"

	"quote_backend/internal/feature/candlesticks/adapters/longport"
	"quote_backend/internal/feature/candlesticks/adapters/twelvedata"
	"quote_backend/internal/platform/cache"
	"quote_backend/internal/platform/config"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestNewMarket(t *testing.T) {
	t.Parallel()

	t.Run("longport without credentials fails", func(t *testing.T) {
		t.Parallel()

		_, err := NewMarket(config.New("", "", ""), nil)
		assert.ErrorIs(t, err, longport.ErrMissingCredentials)
	})

	t.Run("longport uncached", func(t *testing.T) {
		t.Parallel()

		m, err := NewMarket(config.New("k", "s", "t"), nil)
		require.NoError(t, err)
		defer m.Close()

		assert.IsType(t, &longport.QuoteContext{}, m.Repo)
		assert.Same(t, m.Repo, m.Calendar)
		assert.Nil(t, m.Invalidator())
	})

	t.Run("twelvedata needs an api key", func(t *testing.T) {
		t.Parallel()

		cfg := config.New("", "", "")
		cfg.Provider = config.ProviderTwelveData

		_, err := NewMarket(cfg, nil)
		assert.ErrorIs(t, err, twelvedata.ErrMissingAPIKey)

		cfg.TwelveDataKey = "td"
		m, err := NewMarket(cfg, nil)
		require.NoError(t, err)
		assert.IsType(t, &twelvedata.TwelveDataMarket{}, m.Repo)
		assert.Nil(t, m.Calendar)
	})

	t.Run("alpaca behind the cache", func(t *testing.T) {
		t.Parallel()

		rdb, _ := redismock.NewClientMock()
		cfg := config.New("", "", "")
		cfg.Provider = config.ProviderAlpaca

		m, err := NewMarket(cfg, rdb)
		require.NoError(t, err)
		defer m.Close()

		assert.IsType(t, &cache.CachingMarketRepository{}, m.Repo)
		assert.NotNil(t, m.Invalidator())
	})
}

func TestNewHandlers(t *testing.T) {
	t.Parallel()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(Models()...))

	m, err := NewMarket(config.New("k", "s", "t"), nil)
	require.NoError(t, err)

	h, err := NewHandlers(db, nil, m)
	require.NoError(t, err)
	assert.NotNil(t, h.Health)
	assert.NotNil(t, h.Candlesticks)
	assert.NotNil(t, h.Watchlist)
	assert.NotNil(t, h.Calendar)
	assert.Nil(t, h.Revocations)

	rdb, _ := redismock.NewClientMock()
	h, err = NewHandlers(db, rdb, m)
	require.NoError(t, err)
	assert.NotNil(t, h.Revocations)

	h, err = NewHandlers(db, nil, &Market{Repo: m.Repo})
	require.NoError(t, err)
	assert.Nil(t, h.Calendar)

	assert.NotNil(t, NewIngest(db, m.Repo, 5))
}
