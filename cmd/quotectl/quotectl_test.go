package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/candlesticks/usecase"
	"quote_backend/internal/platform/config"
	jwtmw "quote_backend/internal/platform/jwt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMarket struct {
	offset func(q usecase.OffsetQuery) []entity.Candlestick
	date   func(q usecase.DateQuery) []entity.Candlestick
	latest func(q usecase.LatestQuery) []entity.Candlestick
}

func (f *fakeMarket) HistoryByOffset(_ context.Context, q usecase.OffsetQuery) ([]entity.Candlestick, error) {
	return f.offset(q), nil
}

func (f *fakeMarket) HistoryByDate(_ context.Context, q usecase.DateQuery) ([]entity.Candlestick, error) {
	return f.date(q), nil
}

func (f *fakeMarket) Latest(_ context.Context, q usecase.LatestQuery) ([]entity.Candlestick, error) {
	return f.latest(q), nil
}

func bars(start time.Time, n int) []entity.Candlestick {
	out := make([]entity.Candlestick, n)
	for i := range out {
		out[i] = entity.Candlestick{
			Close:     decimal.NewFromInt(int64(100 + i)),
			Open:      decimal.NewFromInt(100),
			Low:       decimal.NewFromInt(99),
			High:      decimal.NewFromInt(101),
			Turnover:  decimal.Zero,
			Timestamp: start.AddDate(0, 0, i),
		}
	}
	return out
}

func testApp(m usecase.MarketRepository) (*app, *bytes.Buffer) {
	var out bytes.Buffer
	return &app{
		out:        &out,
		loadConfig: func() (config.Config, error) { return config.New("k", "s", "t"), nil },
		openMarket: func(config.Config) (usecase.MarketRepository, func(), error) {
			return m, func() {}, nil
		},
	}, &out
}

func execute(a *app, args ...string) error {
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.Execute()
}

func lines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestOffsetCmd(t *testing.T) {
	t.Parallel()

	hk := entity.MarketHK.Location()
	var got usecase.OffsetQuery
	m := &fakeMarket{offset: func(q usecase.OffsetQuery) []entity.Candlestick {
		got = q
		return bars(time.Date(2023, 8, 1, 0, 0, 0, 0, hk), 18)
	}}
	a, out := testApp(m)

	require.NoError(t, execute(a, "offset", "700.hk", "--at", "2023-08-18", "--count", "10"))

	assert.Equal(t, "700.HK", got.Symbol)
	assert.Equal(t, entity.PeriodDay, got.Period)
	assert.False(t, got.Forward)
	assert.True(t, got.At.Equal(time.Date(2023, 8, 18, 0, 0, 0, 0, hk)))

	printed := lines(out.String())
	require.Len(t, printed, 10)
	// backward offsets keep the bars nearest the anchor
	assert.Contains(t, printed[9], "close: 117")
}

func TestDateCmd_JSONAndParquet(t *testing.T) {
	t.Parallel()

	m := &fakeMarket{date: func(q usecase.DateQuery) []entity.Candlestick {
		return bars(q.Start, 3)
	}}
	a, out := testApp(m)
	path := filepath.Join(t.TempDir(), "bars.parquet")

	require.NoError(t, execute(a, "date", "700.HK", "--start", "2022-05-05", "--end", "2022-06-23", "-f", "json", "--parquet", path))

	printed := lines(out.String())
	require.Len(t, printed, 3)
	assert.True(t, strings.HasPrefix(printed[0], `{"timestamp":"2022-05-05T00:00:00+08:00"`), printed[0])
	assert.FileExists(t, path)
}

func TestLatestCmd(t *testing.T) {
	t.Parallel()

	var got usecase.LatestQuery
	m := &fakeMarket{latest: func(q usecase.LatestQuery) []entity.Candlestick {
		got = q
		return bars(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 2)
	}}
	a, out := testApp(m)

	require.NoError(t, execute(a, "latest", "AAPL.US", "-p", "1h", "-n", "2", "--sessions", "all"))
	assert.Equal(t, entity.PeriodSixtyMinute, got.Period)
	assert.Equal(t, entity.TradeSessionsAll, got.Sessions)
	assert.Len(t, lines(out.String()), 2)
}

func TestHistoryCmds_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"bad symbol", []string{"latest", "AAPL"}, entity.ErrInvalidSymbol},
		{"bad period", []string{"latest", "AAPL.US", "-p", "fortnight"}, entity.ErrInvalidPeriod},
		{"bad time", []string{"offset", "700.HK", "--at", "soon"}, entity.ErrInvalidTime},
		{"count too large", []string{"offset", "700.HK", "-n", "5000"}, usecase.ErrInvalidCount},
		{"reversed range", []string{"date", "700.HK", "--start", "2022-06-23", "--end", "2022-05-05"}, usecase.ErrInvalidRange},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, _ := testApp(&fakeMarket{})
			assert.ErrorIs(t, execute(a, tt.args...), tt.want)
		})
	}
}

func TestHistoryCmd_OpenMarketError(t *testing.T) {
	t.Parallel()

	a, _ := testApp(nil)
	boom := errors.New("no credentials")
	a.openMarket = func(config.Config) (usecase.MarketRepository, func(), error) { return nil, nil, boom }

	assert.ErrorIs(t, execute(a, "latest", "700.HK"), boom)
}

func TestTokenCmd(t *testing.T) {
	t.Setenv(jwtmw.EnvKeyJWTSecret, "cli-secret")

	a, out := testApp(nil)
	require.NoError(t, execute(a, "token", "batch", "--admin", "--ttl", "1h"))

	claims := &jwtmw.Claims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(out.String()), claims, func(*jwt.Token) (any, error) {
		return []byte("cli-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "batch", claims.Subject)
	assert.True(t, claims.HasScope(jwtmw.ScopeAdmin))
}

func TestTokenCmd_NoSecret(t *testing.T) {
	t.Setenv(jwtmw.EnvKeyJWTSecret, "")

	a, _ := testApp(nil)
	assert.ErrorIs(t, execute(a, "token", "batch"), jwtmw.ErrEmptySecret)
}

func TestSplitSymbols(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"700.HK", "AAPL.US"}, splitSymbols(" 700.HK, ,AAPL.US,"))
	assert.Nil(t, splitSymbols(""))
}

type fakeCalendar struct {
	begin, end time.Time
}

func (f *fakeCalendar) TradingDays(_ context.Context, m entity.Market, begin, end time.Time) (entity.MarketTradingDays, error) {
	f.begin, f.end = begin, end
	loc := m.Location()
	return entity.MarketTradingDays{
		TradingDays:     []time.Time{time.Date(2022, 1, 20, 0, 0, 0, 0, loc), time.Date(2022, 1, 21, 0, 0, 0, 0, loc)},
		HalfTradingDays: []time.Time{time.Date(2022, 1, 31, 0, 0, 0, 0, loc)},
	}, nil
}

func (f *fakeCalendar) TradingSession(context.Context) ([]entity.MarketTradingSession, error) {
	return []entity.MarketTradingSession{entity.USTradingSession}, nil
}

func calendarApp(cal usecase.CalendarRepository) (*app, *bytes.Buffer) {
	a, out := testApp(nil)
	a.openCalendar = func(config.Config) (usecase.CalendarRepository, func(), error) {
		return cal, func() {}, nil
	}
	return a, out
}

func TestTradingDaysCmd(t *testing.T) {
	t.Parallel()

	cal := &fakeCalendar{}
	a, out := calendarApp(cal)

	require.NoError(t, execute(a, "trading-days", "hk", "--start", "2022-01-20", "--end", "2022-02-20"))
	hk := entity.MarketHK.Location()
	assert.True(t, cal.begin.Equal(time.Date(2022, 1, 20, 0, 0, 0, 0, hk)))
	assert.True(t, cal.end.Equal(time.Date(2022, 2, 20, 0, 0, 0, 0, hk)))
	assert.Equal(t, []string{"2022-01-20", "2022-01-21", "2022-01-31 half"}, lines(out.String()))

	a, out = calendarApp(cal)
	require.NoError(t, execute(a, "trading-days", "HK", "--start", "2022-01-20", "-f", "json"))
	assert.JSONEq(t, `{"market":"HK","trading_days":["2022-01-20","2022-01-21"],"half_trading_days":["2022-01-31"]}`, out.String())
}

func TestTradingSessionsCmd(t *testing.T) {
	t.Parallel()

	a, out := calendarApp(&fakeCalendar{})
	require.NoError(t, execute(a, "trading-sessions", "US"))
	assert.Equal(t, []string{
		"US (America/New_York): Pre 04:00-09:30, Intraday 09:30-16:00, Post 16:00-20:00, Overnight 20:00-04:00",
	}, lines(out.String()))

	a, out = calendarApp(&fakeCalendar{})
	require.NoError(t, execute(a, "trading-sessions", "HK"))
	assert.Empty(t, out.String())
}

func TestCalendarCmds_Errors(t *testing.T) {
	t.Parallel()

	a, _ := calendarApp(&fakeCalendar{})
	assert.ErrorIs(t, execute(a, "trading-days", "JP"), entity.ErrInvalidMarket)

	a, _ = calendarApp(&fakeCalendar{})
	assert.ErrorIs(t, execute(a, "trading-days", "HK", "--start", "2022-01-01", "--end", "2022-03-01"), usecase.ErrInvalidRange)

	a, _ = calendarApp(nil)
	a.openCalendar = func(config.Config) (usecase.CalendarRepository, func(), error) {
		return nil, nil, fmt.Errorf("provider %q has no trading calendar: %w", "alpaca", usecase.ErrUnsupported)
	}
	assert.ErrorIs(t, execute(a, "trading-sessions"), usecase.ErrUnsupported)
}
