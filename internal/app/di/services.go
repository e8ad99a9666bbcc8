package di

import (
	"context"

	candleadapters "quote_backend/internal/feature/candlesticks/adapters"
	candlehandler "quote_backend/internal/feature/candlesticks/transport/handler"
	candleusecase "quote_backend/internal/feature/candlesticks/usecase"
	watchadapters "quote_backend/internal/feature/watchlist/adapters"
	watchentity "quote_backend/internal/feature/watchlist/domain/entity"
	watchhandler "quote_backend/internal/feature/watchlist/transport/handler"
	watchusecase "quote_backend/internal/feature/watchlist/usecase"
	healthhandler "quote_backend/internal/platform/http/handler"
	"quote_backend/internal/platform/session"
	"quote_backend/internal/shared/ratelimiter"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Models lists the gorm models migrated when RUN_MIGRATIONS=true.
func Models() []any {
	return []any{&candleadapters.CandlestickModel{}, &watchentity.Instrument{}}
}

// NewWatchlist builds the watchlist usecase over db.
func NewWatchlist(db *gorm.DB) *watchusecase.WatchlistUsecase {
	return watchusecase.NewWatchlistUsecase(watchadapters.NewInstrumentRepository(db))
}

// NewIngest builds an ingest usecase that fetches from market at perSecond requests
// per second and upserts into db.
func NewIngest(db *gorm.DB, market candleusecase.MarketRepository, perSecond int) *candleusecase.IngestUsecase {
	return candleusecase.NewIngestUsecase(
		market,
		candleadapters.NewCandlestickRepository(db),
		ratelimiter.PerSecond("ingest", perSecond),
	)
}

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Health       *healthhandler.HealthHandler
	Candlesticks *candlehandler.CandlesticksHandler
	Watchlist    *watchhandler.InstrumentHandler
	// Calendar is nil when the provider has no trading calendar.
	Calendar *candlehandler.CalendarHandler
	// Revocations is nil when Redis is not configured.
	Revocations *session.RevocationRedis
}

// NewHandlers wires usecases to handlers. rdb may be nil.
func NewHandlers(db *gorm.DB, rdb *redis.Client, market *Market) (*Handlers, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	h := &Handlers{
		Candlesticks: candlehandler.NewCandlesticksHandler(candleusecase.NewHistoryUsecase(market.Repo), market.Invalidator()).
			WithStore(candleusecase.NewStoreUsecase(candleadapters.NewCandlestickRepository(db))),
		Watchlist: watchhandler.NewInstrumentHandler(NewWatchlist(db)),
	}

	if market.Calendar != nil {
		h.Calendar = candlehandler.NewCalendarHandler(candleusecase.NewCalendarUsecase(market.Calendar))
	}

	checks := []healthhandler.Check{{Name: "database", Ping: sqlDB.PingContext}}
	if rdb != nil {
		checks = append(checks, healthhandler.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
		h.Revocations = session.NewRevocationRedis(rdb, session.DefaultPrefix)
	}
	h.Health = healthhandler.NewHealthHandler(checks...)
	return h, nil
}
