package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/candlesticks/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ErrDB = errors.New("database error")

func TestIngestUsecase_IngestAll(t *testing.T) {
	t.Parallel()

	start, end := day(2024, 1, 1), day(2024, 1, 31)

	tests := []struct {
		name          string
		symbols       []string
		marketErrFor  string
		upsertErr     error
		wantUpserts   int
		wantWaitCalls int
	}{
		{
			name:          "success: every symbol and period is stored",
			symbols:       []string{"700.HK", "AAPL.US"},
			wantUpserts:   6,
			wantWaitCalls: 6,
		},
		{
			name:          "upstream error on one symbol is skipped",
			symbols:       []string{"700.HK", "9988.HK"},
			marketErrFor:  "9988.HK",
			wantUpserts:   3,
			wantWaitCalls: 6,
		},
		{
			name:          "database error is skipped",
			symbols:       []string{"700.HK"},
			upsertErr:     ErrDB,
			wantUpserts:   3,
			wantWaitCalls: 3,
		},
		{
			name:          "no symbols",
			symbols:       nil,
			wantUpserts:   0,
			wantWaitCalls: 0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			market := &mockMarketRepository{
				HistoryByDateFunc: func(ctx context.Context, q usecase.DateQuery) ([]entity.Candlestick, error) {
					if q.Symbol == tt.marketErrFor {
						return nil, ErrUpstream
					}
					assert.Equal(t, start, q.Start)
					assert.Equal(t, end, q.End)
					return []entity.Candlestick{bar(day(2024, 1, 2), "10")}, nil
				},
			}
			store := &mockCandlestickRepository{
				UpsertBatchFunc: func(ctx context.Context, candles []entity.Candlestick) error {
					return tt.upsertErr
				},
			}
			rl := &mockRateLimiter{}

			uc := usecase.NewIngestUsecase(market, store, rl)
			err := uc.IngestAll(context.Background(), tt.symbols, start, end)

			require.NoError(t, err)
			assert.Len(t, store.Upserted, tt.wantUpserts)
			assert.Equal(t, tt.wantWaitCalls, rl.WaitCalls)
		})
	}
}

func TestIngestUsecase_StampsPeriodAndSymbol(t *testing.T) {
	t.Parallel()

	market := &mockMarketRepository{
		HistoryByDateFunc: func(ctx context.Context, q usecase.DateQuery) ([]entity.Candlestick, error) {
			return []entity.Candlestick{bar(day(2024, 1, 2), "10")}, nil
		},
	}
	store := &mockCandlestickRepository{}

	uc := usecase.NewIngestUsecase(market, store, &mockRateLimiter{}).WithAdjust(entity.ForwardAdjust)
	require.NoError(t, uc.IngestAll(context.Background(), []string{"700.hk"}, time.Time{}, time.Time{}))

	require.Len(t, store.Upserted, 3)
	periods := []entity.Period{entity.PeriodDay, entity.PeriodWeek, entity.PeriodMonth}
	for i, batch := range store.Upserted {
		require.Len(t, batch, 1)
		assert.Equal(t, "700.HK", batch[0].Symbol)
		assert.Equal(t, periods[i], batch[0].Period)
		assert.Equal(t, entity.ForwardAdjust, batch[0].Adjust)
	}
}

func TestIngestUsecase_ContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	market := &mockMarketRepository{}
	uc := usecase.NewIngestUsecase(market, &mockCandlestickRepository{}, &mockRateLimiter{})

	err := uc.IngestAll(ctx, []string{"700.HK"}, time.Time{}, time.Time{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, market.Calls)
}
