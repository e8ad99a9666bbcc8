package usecase

import (
	"context"
	"fmt"
	"time"

	"quote_backend/internal/feature/candlesticks/domain/entity"
)

// CalendarUsecase answers market calendar questions: trading days and session hours.
type CalendarUsecase struct {
	repo CalendarRepository
	now  func() time.Time
}

// NewCalendarUsecase builds a CalendarUsecase over repo.
func NewCalendarUsecase(repo CalendarRepository) *CalendarUsecase {
	return &CalendarUsecase{repo: repo, now: time.Now}
}

// TradingDays returns the trading days of market in [begin, end].
// A zero begin means today in the market's zone; a zero end means begin.
// The span may not exceed one month.
func (u *CalendarUsecase) TradingDays(ctx context.Context, market string, begin, end time.Time) (entity.MarketTradingDays, error) {
	m, err := entity.ParseMarket(market)
	if err != nil {
		return entity.MarketTradingDays{}, err
	}
	if begin.IsZero() {
		y, mo, d := u.now().In(m.Location()).Date()
		begin = time.Date(y, mo, d, 0, 0, 0, 0, m.Location())
	}
	if end.IsZero() {
		end = begin
	}
	if end.Before(begin) {
		return entity.MarketTradingDays{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, begin.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	if end.After(begin.AddDate(0, 1, 0)) {
		return entity.MarketTradingDays{}, fmt.Errorf("%w: trading days span at most one month", ErrInvalidRange)
	}

	days, err := u.repo.TradingDays(ctx, m, begin, end)
	if err != nil {
		return entity.MarketTradingDays{}, fmt.Errorf("trading days %s: %w", m, err)
	}
	return days, nil
}

// TradingSessions returns the session windows of market, or of every market when market is empty.
func (u *CalendarUsecase) TradingSessions(ctx context.Context, market string) ([]entity.MarketTradingSession, error) {
	var want entity.Market
	if market != "" {
		m, err := entity.ParseMarket(market)
		if err != nil {
			return nil, err
		}
		want = m
	}

	all, err := u.repo.TradingSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("trading session: %w", err)
	}
	if want == entity.MarketUnknown {
		return all, nil
	}
	out := make([]entity.MarketTradingSession, 0, 1)
	for _, s := range all {
		if s.Market == want {
			out = append(out, s)
		}
	}
	return out, nil
}
