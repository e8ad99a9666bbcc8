package usecase

import (
	"context"
	"log/slog"
	"time"

	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/shared/ratelimiter"
)

// ingestPeriods are the bar sizes stored for every watched symbol.
var ingestPeriods = []entity.Period{entity.PeriodDay, entity.PeriodWeek, entity.PeriodMonth}

// IngestUsecase pulls history from the quote provider and persists it.
type IngestUsecase struct {
	history     *HistoryUsecase
	candles     CandlestickRepository
	rateLimiter ratelimiter.RateLimiterInterface
	adjust      entity.AdjustType
}

// NewIngestUsecase creates an IngestUsecase storing unadjusted bars.
func NewIngestUsecase(market MarketRepository, candles CandlestickRepository, rateLimiter ratelimiter.RateLimiterInterface) *IngestUsecase {
	return &IngestUsecase{
		history:     NewHistoryUsecase(market),
		candles:     candles,
		rateLimiter: rateLimiter,
		adjust:      entity.NoAdjust,
	}
}

// WithAdjust switches the adjustment the ingest fetches with.
func (iu *IngestUsecase) WithAdjust(a entity.AdjustType) *IngestUsecase {
	iu.adjust = a
	return iu
}

func (iu *IngestUsecase) ingestOne(ctx context.Context, symbol string, period entity.Period, start, end time.Time) (int, error) {
	cs, err := iu.history.ByDate(ctx, DateQuery{
		Symbol: symbol,
		Period: period,
		Adjust: iu.adjust,
		Start:  start,
		End:    end,
	})
	if err != nil {
		return 0, err
	}
	if err := iu.candles.UpsertBatch(ctx, cs); err != nil {
		return 0, err
	}
	return len(cs), nil
}

// IngestAll fetches day, week and month bars in [start, end] for every symbol and upserts them.
// A failing symbol is logged and skipped; only context cancellation stops the run.
func (iu *IngestUsecase) IngestAll(ctx context.Context, symbols []string, start, end time.Time) error {
	for _, s := range symbols {
		for _, p := range ingestPeriods {
			if err := iu.rateLimiter.Wait(ctx); err != nil {
				return err
			}
			n, err := iu.ingestOne(ctx, s, p, start, end)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				slog.Error("failed to ingest candlesticks", "symbol", s, "period", p.String(), "error", err)
				continue
			}
			slog.Info("ingested candlesticks", "symbol", s, "period", p.String(), "count", n)
		}
	}
	return nil
}
