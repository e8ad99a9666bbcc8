package usecase

import (
	"context"
	"fmt"
	"time"

	"quote_backend/internal/feature/candlesticks/domain/entity"
)

// StoreUsecase serves candlesticks persisted by the ingest job without calling the provider.
type StoreUsecase struct {
	candles CandlestickRepository
}

// NewStoreUsecase creates a StoreUsecase over candles.
func NewStoreUsecase(candles CandlestickRepository) *StoreUsecase {
	return &StoreUsecase{candles: candles}
}

// ByDate returns stored bars whose exchange-local date lies in [q.Start, q.End].
// q.Sessions is ignored; ingest stores normal-session bars only.
func (su *StoreUsecase) ByDate(ctx context.Context, q DateQuery) ([]entity.Candlestick, error) {
	sym, err := validate(q.Symbol, q.Period)
	if err != nil {
		return nil, err
	}
	if !q.Start.IsZero() && !q.End.IsZero() && dateOf(q.Start).After(dateOf(q.End)) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, q.Start.Format(time.DateOnly), q.End.Format(time.DateOnly))
	}

	loc := sym.Market.Location()
	var start, end time.Time
	if !q.Start.IsZero() {
		y, m, d := q.Start.Date()
		start = time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
	if !q.End.IsZero() {
		y, m, d := q.End.Date()
		end = time.Date(y, m, d+1, 0, 0, 0, 0, loc).Add(-time.Nanosecond)
	}

	cs, err := su.candles.FindRange(ctx, sym.String(), q.Period, q.Adjust, start, end)
	if err != nil {
		return nil, fmt.Errorf("load stored candlesticks: %w", err)
	}
	return inLocation(cs, loc), nil
}

// Latest returns the newest q.Count stored bars, oldest first.
func (su *StoreUsecase) Latest(ctx context.Context, q LatestQuery) ([]entity.Candlestick, error) {
	sym, err := validate(q.Symbol, q.Period)
	if err != nil {
		return nil, err
	}
	if err := validateCount(q.Count); err != nil {
		return nil, err
	}

	cs, err := su.candles.FindLatest(ctx, sym.String(), q.Period, q.Adjust, q.Count)
	if err != nil {
		return nil, fmt.Errorf("load stored candlesticks: %w", err)
	}
	return inLocation(cs, sym.Market.Location()), nil
}

// inLocation converts timestamps read back as UTC to the exchange zone.
func inLocation(cs []entity.Candlestick, loc *time.Location) []entity.Candlestick {
	for i := range cs {
		cs[i].Timestamp = cs[i].Timestamp.In(loc)
	}
	return cs
}
