package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"quote_backend/internal/feature/candlesticks/domain/entity"
)

// HistoryUsecase validates candlestick queries and normalizes what the provider returns.
type HistoryUsecase struct {
	market MarketRepository
}

// NewHistoryUsecase creates a HistoryUsecase over the given provider.
func NewHistoryUsecase(market MarketRepository) *HistoryUsecase {
	return &HistoryUsecase{market: market}
}

// ByOffset returns at most q.Count bars on one side of q.At, oldest first.
func (hu *HistoryUsecase) ByOffset(ctx context.Context, q OffsetQuery) ([]entity.Candlestick, error) {
	sym, err := validate(q.Symbol, q.Period)
	if err != nil {
		return nil, err
	}
	if err := validateCount(q.Count); err != nil {
		return nil, err
	}
	q.Symbol = sym.String()

	cs, err := hu.market.HistoryByOffset(ctx, q)
	if err != nil {
		return nil, err
	}

	cs = sortAndDedupe(cs)
	if !q.At.IsZero() {
		cs = filter(cs, func(c entity.Candlestick) bool {
			if q.Forward {
				return !c.Timestamp.Before(q.At)
			}
			return !c.Timestamp.After(q.At)
		})
	}
	// keep the bars nearest the anchor
	if len(cs) > q.Count {
		if q.Forward {
			cs = cs[:q.Count]
		} else {
			cs = cs[len(cs)-q.Count:]
		}
	}
	stamp(cs, q.Symbol, q.Period, q.Adjust)
	return cs, nil
}

// ByDate returns every bar whose trading date lies in [q.Start, q.End], oldest first.
// Dates are compared in the exchange time zone of the symbol.
func (hu *HistoryUsecase) ByDate(ctx context.Context, q DateQuery) ([]entity.Candlestick, error) {
	sym, err := validate(q.Symbol, q.Period)
	if err != nil {
		return nil, err
	}
	if !q.Start.IsZero() && !q.End.IsZero() && dateOf(q.Start).After(dateOf(q.End)) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, q.Start.Format(time.DateOnly), q.End.Format(time.DateOnly))
	}
	q.Symbol = sym.String()

	cs, err := hu.market.HistoryByDate(ctx, q)
	if err != nil {
		return nil, err
	}

	loc := sym.Market.Location()
	start, end := dateOf(q.Start), dateOf(q.End)
	cs = sortAndDedupe(cs)
	cs = filter(cs, func(c entity.Candlestick) bool {
		d := dateOf(c.Timestamp.In(loc))
		if !q.Start.IsZero() && d.Before(start) {
			return false
		}
		if !q.End.IsZero() && d.After(end) {
			return false
		}
		return true
	})
	stamp(cs, q.Symbol, q.Period, q.Adjust)
	return cs, nil
}

// Latest returns the most recent q.Count bars, oldest first.
func (hu *HistoryUsecase) Latest(ctx context.Context, q LatestQuery) ([]entity.Candlestick, error) {
	sym, err := validate(q.Symbol, q.Period)
	if err != nil {
		return nil, err
	}
	if err := validateCount(q.Count); err != nil {
		return nil, err
	}
	q.Symbol = sym.String()

	cs, err := hu.market.Latest(ctx, q)
	if err != nil {
		return nil, err
	}
	cs = sortAndDedupe(cs)
	if len(cs) > q.Count {
		cs = cs[len(cs)-q.Count:]
	}
	stamp(cs, q.Symbol, q.Period, q.Adjust)
	return cs, nil
}

func validate(symbol string, period entity.Period) (entity.Symbol, error) {
	sym, err := entity.ParseSymbol(symbol)
	if err != nil {
		return entity.Symbol{}, err
	}
	if !period.Valid() {
		return entity.Symbol{}, fmt.Errorf("%w: %d", entity.ErrInvalidPeriod, int32(period))
	}
	return sym, nil
}

func validateCount(n int) error {
	if n < 1 || n > MaxCount {
		return fmt.Errorf("%w: got %d", ErrInvalidCount, n)
	}
	return nil
}

// sortAndDedupe orders a copy of cs by timestamp and keeps the first bar seen for each timestamp.
func sortAndDedupe(cs []entity.Candlestick) []entity.Candlestick {
	cs = append([]entity.Candlestick(nil), cs...)
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].Timestamp.Before(cs[j].Timestamp)
	})
	out := cs[:0]
	for i, c := range cs {
		if i > 0 && c.Timestamp.Equal(out[len(out)-1].Timestamp) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func filter(cs []entity.Candlestick, keep func(entity.Candlestick) bool) []entity.Candlestick {
	out := cs[:0]
	for _, c := range cs {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func stamp(cs []entity.Candlestick, symbol string, period entity.Period, adjust entity.AdjustType) {
	for i := range cs {
		cs[i].Symbol = symbol
		cs[i].Period = period
		cs[i].Adjust = adjust
	}
}

// dateOf returns the calendar date of t, as read in t's own location, at UTC midnight.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
