package longport

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"quote_backend/internal/feature/candlesticks/adapters/longport/dto"
	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/candlesticks/usecase"
)

const (
	tradingDaysPath    = "/v1/quote/trading-days"
	tradingSessionPath = "/v1/quote/trading-session"

	// TradingSessionTTL is how long the session table is reused before it is fetched again.
	TradingSessionTTL = 2 * time.Hour
)

// QuoteContext also serves the market calendar.
var _ usecase.CalendarRepository = (*QuoteContext)(nil)

type sessionCache struct {
	mu      sync.Mutex
	val     []entity.MarketTradingSession
	expires time.Time
}

// TradingDays returns the trading and half trading days of market between begin and end inclusive.
// The gateway answers ranges of at most one month.
func (q *QuoteContext) TradingDays(ctx context.Context, market entity.Market, begin, end time.Time) (entity.MarketTradingDays, error) {
	if _, err := entity.ParseMarket(string(market)); err != nil {
		return entity.MarketTradingDays{}, err
	}
	if begin.IsZero() || end.IsZero() || end.Before(begin) {
		return entity.MarketTradingDays{}, fmt.Errorf("%w: trading days need begin <= end", usecase.ErrInvalidRange)
	}
	if end.After(begin.AddDate(0, 1, 0)) {
		return entity.MarketTradingDays{}, fmt.Errorf("%w: trading days span at most one month", usecase.ErrInvalidRange)
	}

	v := url.Values{}
	v.Set("market", string(market))
	v.Set("beg_day", formatDate(begin))
	v.Set("end_day", formatDate(end))

	var data dto.TradingDaysData
	if err := q.get(ctx, tradingDaysPath, v, &data); err != nil {
		return entity.MarketTradingDays{}, err
	}

	loc := market.Location()
	days, err := parseDays("trade_day", data.TradeDay, loc)
	if err != nil {
		return entity.MarketTradingDays{}, err
	}
	half, err := parseDays("half_trade_day", data.HalfTradeDay, loc)
	if err != nil {
		return entity.MarketTradingDays{}, err
	}
	return entity.MarketTradingDays{TradingDays: days, HalfTradingDays: half}, nil
}

// TradingSession returns every market's session windows.
// The table rarely changes and is cached for TradingSessionTTL; callers must not modify it.
func (q *QuoteContext) TradingSession(ctx context.Context) ([]entity.MarketTradingSession, error) {
	q.sessions.mu.Lock()
	defer q.sessions.mu.Unlock()

	if q.sessions.val != nil && q.now().Before(q.sessions.expires) {
		return q.sessions.val, nil
	}

	var data dto.TradingSessionData
	if err := q.get(ctx, tradingSessionPath, nil, &data); err != nil {
		return nil, err
	}
	out := make([]entity.MarketTradingSession, 0, len(data.MarketTradeSession))
	for _, m := range data.MarketTradeSession {
		ms := entity.MarketTradingSession{Market: entity.Market(m.Market)}
		for _, p := range m.TradeSession {
			ms.Sessions = append(ms.Sessions, entity.TradingSessionInfo{
				Begin:   entity.TimeOfDayFromHHMM(p.BegTime),
				End:     entity.TimeOfDayFromHHMM(p.EndTime),
				Session: entity.TradeSession(p.TradeSession),
			})
		}
		out = append(out, ms)
	}

	q.sessions.val = out
	q.sessions.expires = q.now().Add(TradingSessionTTL)
	return out, nil
}

func parseDays(field string, in []string, loc *time.Location) ([]time.Time, error) {
	out := make([]time.Time, 0, len(in))
	for _, s := range in {
		d, err := time.ParseInLocation("20060102", s, loc)
		if err != nil {
			return nil, fmt.Errorf("longport: parse %s %q: %w", field, s, err)
		}
		out = append(out, d)
	}
	return out, nil
}
