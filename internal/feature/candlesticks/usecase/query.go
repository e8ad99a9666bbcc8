// Package usecase implements the candlestick retrieval and ingest logic.
package usecase

import (
	"context"
	"errors"
	"time"

	"quote_backend/internal/feature/candlesticks/domain/entity"
)

const (
	// MaxCount is the largest number of bars a single offset or latest query may request.
	MaxCount = 1000
	// DefaultCount is used by transports when the caller gives no count.
	DefaultCount = 10
)

var (
	// ErrInvalidCount is returned when count is outside [1, MaxCount].
	ErrInvalidCount = errors.New("count must be between 1 and 1000")

	// ErrInvalidRange is returned when a date query has start after end.
	ErrInvalidRange = errors.New("start date is after end date")

	// ErrUnsupported is wrapped by providers that cannot serve a valid request,
	// such as a market or period they do not cover.
	ErrUnsupported = errors.New("not supported by the quote provider")
)

// OffsetQuery asks for Count bars anchored at At.
// Forward selects bars after the anchor; otherwise bars up to and including it.
// A zero At anchors at the latest available bar.
type OffsetQuery struct {
	Symbol   string
	Period   entity.Period
	Adjust   entity.AdjustType
	Forward  bool
	At       time.Time
	Count    int
	Sessions entity.TradeSessions
}

// DateQuery asks for every bar whose calendar date lies in [Start, End].
// A zero Start or End leaves that side open.
type DateQuery struct {
	Symbol   string
	Period   entity.Period
	Adjust   entity.AdjustType
	Start    time.Time
	End      time.Time
	Sessions entity.TradeSessions
}

// LatestQuery asks for the most recent Count bars.
type LatestQuery struct {
	Symbol   string
	Period   entity.Period
	Adjust   entity.AdjustType
	Count    int
	Sessions entity.TradeSessions
}

// MarketRepository fetches candlesticks from an upstream quote provider.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type MarketRepository interface {
	HistoryByOffset(ctx context.Context, q OffsetQuery) ([]entity.Candlestick, error)
	HistoryByDate(ctx context.Context, q DateQuery) ([]entity.Candlestick, error)
	Latest(ctx context.Context, q LatestQuery) ([]entity.Candlestick, error)
}

// CandlestickRepository persists candlesticks.
type CandlestickRepository interface {
	UpsertBatch(ctx context.Context, candles []entity.Candlestick) error
	FindRange(ctx context.Context, symbol string, period entity.Period, adjust entity.AdjustType, start, end time.Time) ([]entity.Candlestick, error)
	FindLatest(ctx context.Context, symbol string, period entity.Period, adjust entity.AdjustType, limit int) ([]entity.Candlestick, error)
}

// CalendarRepository serves market trading days and session hours.
type CalendarRepository interface {
	TradingDays(ctx context.Context, market entity.Market, begin, end time.Time) (entity.MarketTradingDays, error)
	TradingSession(ctx context.Context) ([]entity.MarketTradingSession, error)
}
