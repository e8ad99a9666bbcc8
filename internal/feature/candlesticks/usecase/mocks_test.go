package usecase_test

import (
	"context"
	"errors"
	"time"

	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/candlesticks/usecase"

	"github.com/shopspring/decimal"
)

// ErrUpstream is a sentinel shared between mocks and expectations.
var ErrUpstream = errors.New("upstream error")

// mockMarketRepository is a func-field mock of usecase.MarketRepository.
type mockMarketRepository struct {
	HistoryByOffsetFunc func(ctx context.Context, q usecase.OffsetQuery) ([]entity.Candlestick, error)
	HistoryByDateFunc   func(ctx context.Context, q usecase.DateQuery) ([]entity.Candlestick, error)
	LatestFunc          func(ctx context.Context, q usecase.LatestQuery) ([]entity.Candlestick, error)
	Calls               int
}

func (m *mockMarketRepository) HistoryByOffset(ctx context.Context, q usecase.OffsetQuery) ([]entity.Candlestick, error) {
	m.Calls++
	if m.HistoryByOffsetFunc != nil {
		return m.HistoryByOffsetFunc(ctx, q)
	}
	return nil, errors.New("HistoryByOffsetFunc is not implemented")
}

func (m *mockMarketRepository) HistoryByDate(ctx context.Context, q usecase.DateQuery) ([]entity.Candlestick, error) {
	m.Calls++
	if m.HistoryByDateFunc != nil {
		return m.HistoryByDateFunc(ctx, q)
	}
	return nil, errors.New("HistoryByDateFunc is not implemented")
}

func (m *mockMarketRepository) Latest(ctx context.Context, q usecase.LatestQuery) ([]entity.Candlestick, error) {
	m.Calls++
	if m.LatestFunc != nil {
		return m.LatestFunc(ctx, q)
	}
	return nil, errors.New("LatestFunc is not implemented")
}

// mockCandlestickRepository is a func-field mock of usecase.CandlestickRepository.
type mockCandlestickRepository struct {
	UpsertBatchFunc func(ctx context.Context, candles []entity.Candlestick) error
	FindRangeFunc   func(ctx context.Context, symbol string, period entity.Period, adjust entity.AdjustType, start, end time.Time) ([]entity.Candlestick, error)
	FindLatestFunc  func(ctx context.Context, symbol string, period entity.Period, adjust entity.AdjustType, limit int) ([]entity.Candlestick, error)
	Upserted        [][]entity.Candlestick
}

func (m *mockCandlestickRepository) UpsertBatch(ctx context.Context, candles []entity.Candlestick) error {
	m.Upserted = append(m.Upserted, candles)
	if m.UpsertBatchFunc != nil {
		return m.UpsertBatchFunc(ctx, candles)
	}
	return nil
}

func (m *mockCandlestickRepository) FindRange(ctx context.Context, symbol string, period entity.Period, adjust entity.AdjustType, start, end time.Time) ([]entity.Candlestick, error) {
	if m.FindRangeFunc != nil {
		return m.FindRangeFunc(ctx, symbol, period, adjust, start, end)
	}
	return nil, errors.New("FindRangeFunc is not implemented")
}

func (m *mockCandlestickRepository) FindLatest(ctx context.Context, symbol string, period entity.Period, adjust entity.AdjustType, limit int) ([]entity.Candlestick, error) {
	if m.FindLatestFunc != nil {
		return m.FindLatestFunc(ctx, symbol, period, adjust, limit)
	}
	return nil, errors.New("FindLatestFunc is not implemented")
}

// mockRateLimiter returns immediately.
type mockRateLimiter struct {
	WaitCalls int
}

func (m *mockRateLimiter) Wait(ctx context.Context) error {
	m.WaitCalls++
	return ctx.Err()
}

// bar builds a candle at ts with close c.
func bar(ts time.Time, c string) entity.Candlestick {
	d := decimal.RequireFromString(c)
	return entity.Candlestick{Close: d, Open: d, Low: d, High: d, Volume: 100, Turnover: d, Timestamp: ts}
}

func timestamps(cs []entity.Candlestick) []time.Time {
	out := make([]time.Time, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Timestamp)
	}
	return out
}
