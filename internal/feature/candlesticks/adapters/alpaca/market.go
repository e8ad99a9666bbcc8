// Package alpaca serves US equity candlesticks from the Alpaca market data API.
package alpaca

import (
	"context"
	"fmt"
	"time"

	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/candlesticks/usecase"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
)

// ErrUnsupportedMarket is returned for symbols outside the US market.
var ErrUnsupportedMarket = fmt.Errorf("alpaca: only US symbols are supported: %w", usecase.ErrUnsupported)

// barsClient is the slice of marketdata.Client used here.
type barsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// AlpacaMarket is a MarketRepository over Alpaca's IEX feed.
type AlpacaMarket struct {
	client barsClient
	now    func() time.Time
}

var _ usecase.MarketRepository = (*AlpacaMarket)(nil)

// NewAlpacaMarket creates a market data client for the given key pair.
func NewAlpacaMarket(key, secret string) *AlpacaMarket {
	return newAlpacaMarket(marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    key,
		APISecret: secret,
		Feed:      marketdata.IEX,
	}))
}

func newAlpacaMarket(c barsClient) *AlpacaMarket {
	return &AlpacaMarket{client: c, now: time.Now}
}

// HistoryByOffset fetches count bars after (forward) or up to (backward) q.At.
func (a *AlpacaMarket) HistoryByOffset(ctx context.Context, q usecase.OffsetQuery) ([]entity.Candlestick, error) {
	if q.Forward && !q.At.IsZero() {
		return a.bars(ctx, q.Symbol, q.Period, q.Adjust, q.Sessions, q.At, time.Time{}, q.Count)
	}
	end := q.At
	if end.IsZero() {
		end = a.now()
	}
	return a.tail(ctx, q.Symbol, q.Period, q.Adjust, q.Sessions, end, q.Count)
}

// HistoryByDate fetches every bar from the start of q.Start to the end of q.End, New York time.
func (a *AlpacaMarket) HistoryByDate(ctx context.Context, q usecase.DateQuery) ([]entity.Candlestick, error) {
	loc := entity.MarketUS.Location()
	var start, end time.Time
	if !q.Start.IsZero() {
		y, m, d := q.Start.Date()
		start = time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
	if !q.End.IsZero() {
		y, m, d := q.End.Date()
		end = time.Date(y, m, d+1, 0, 0, 0, 0, loc).Add(-time.Nanosecond)
	}
	return a.bars(ctx, q.Symbol, q.Period, q.Adjust, q.Sessions, start, end, 0)
}

// Latest fetches the most recent q.Count bars.
func (a *AlpacaMarket) Latest(ctx context.Context, q usecase.LatestQuery) ([]entity.Candlestick, error) {
	return a.tail(ctx, q.Symbol, q.Period, q.Adjust, q.Sessions, a.now(), q.Count)
}

// tail requests a window wide enough to hold count bars ending at end and keeps the last count.
func (a *AlpacaMarket) tail(ctx context.Context, symbol string, p entity.Period, adj entity.AdjustType, sessions entity.TradeSessions, end time.Time, count int) ([]entity.Candlestick, error) {
	cs, err := a.bars(ctx, symbol, p, adj, sessions, end.Add(-p.Lookback(count)), end, 0)
	if err != nil {
		return nil, err
	}
	if len(cs) > count {
		cs = cs[len(cs)-count:]
	}
	return cs, nil
}

func (a *AlpacaMarket) bars(ctx context.Context, symbol string, p entity.Period, adj entity.AdjustType, sessions entity.TradeSessions, start, end time.Time, limit int) ([]entity.Candlestick, error) {
	sym, err := entity.ParseSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if sym.Market != entity.MarketUS {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMarket, symbol)
	}
	tf, err := timeFrame(p)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bs, err := a.client.GetBars(sym.Code, marketdata.GetBarsRequest{
		TimeFrame:  tf,
		Adjustment: adjustment(adj),
		Start:      start,
		End:        end,
		TotalLimit: limit,
		Feed:       marketdata.IEX,
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca: get bars %s: %w", symbol, err)
	}

	loc := sym.Market.Location()
	out := make([]entity.Candlestick, 0, len(bs))
	for _, b := range bs {
		c := toEntity(b, loc, p)
		if sessions == entity.TradeSessionsNormal && c.TradeSession != entity.TradeSessionIntraday {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func toEntity(b marketdata.Bar, loc *time.Location, p entity.Period) entity.Candlestick {
	vol := decimal.NewFromInt(int64(b.Volume))
	ts := b.Timestamp.In(loc)
	session := entity.TradeSessionIntraday
	if p.Intraday() {
		session, _ = entity.USTradingSession.SessionAt(ts)
	}
	return entity.Candlestick{
		Open:         decimal.NewFromFloat(b.Open),
		High:         decimal.NewFromFloat(b.High),
		Low:          decimal.NewFromFloat(b.Low),
		Close:        decimal.NewFromFloat(b.Close),
		Volume:       int64(b.Volume),
		Turnover:     decimal.NewFromFloat(b.VWAP).Mul(vol).Round(2),
		Timestamp:    ts,
		TradeSession: session,
	}
}

func timeFrame(p entity.Period) (marketdata.TimeFrame, error) {
	switch p {
	case entity.PeriodOneMinute, entity.PeriodTwoMinute, entity.PeriodThreeMinute, entity.PeriodFiveMinute,
		entity.PeriodTenMinute, entity.PeriodFifteenMinute, entity.PeriodTwentyMinute, entity.PeriodThirtyMinute,
		entity.PeriodFortyFiveMinute:
		return marketdata.NewTimeFrame(int(p), marketdata.Min), nil
	case entity.PeriodSixtyMinute, entity.PeriodTwoHour, entity.PeriodThreeHour, entity.PeriodFourHour:
		return marketdata.NewTimeFrame(int(p)/60, marketdata.Hour), nil
	case entity.PeriodDay:
		return marketdata.OneDay, nil
	case entity.PeriodWeek:
		return marketdata.NewTimeFrame(1, marketdata.Week), nil
	case entity.PeriodMonth:
		return marketdata.NewTimeFrame(1, marketdata.Month), nil
	case entity.PeriodQuarter:
		return marketdata.NewTimeFrame(3, marketdata.Month), nil
	case entity.PeriodYear:
		return marketdata.NewTimeFrame(12, marketdata.Month), nil
	}
	return marketdata.TimeFrame{}, fmt.Errorf("%w: %d", entity.ErrInvalidPeriod, int32(p))
}

func adjustment(a entity.AdjustType) marketdata.Adjustment {
	if a == entity.ForwardAdjust {
		return marketdata.All
	}
	return marketdata.Raw
}
