package alpaca

import (
	"context"
	"errors"
	"testing"
	"time"

	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/candlesticks/usecase"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockBarsClient struct {
	GetBarsFunc func(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
	Requests    []marketdata.GetBarsRequest
}

func (m *mockBarsClient) GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error) {
	m.Requests = append(m.Requests, req)
	if m.GetBarsFunc != nil {
		return m.GetBarsFunc(symbol, req)
	}
	return nil, errors.New("GetBarsFunc is not implemented")
}

func dailyBars(n int, from time.Time) []marketdata.Bar {
	out := make([]marketdata.Bar, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, marketdata.Bar{
			Timestamp: from.AddDate(0, 0, i),
			Open:      100, High: 110, Low: 90, Close: 105,
			Volume: 1000, VWAP: 101.5,
		})
	}
	return out
}

func TestAlpacaMarket_UnsupportedMarket(t *testing.T) {
	t.Parallel()

	m := newAlpacaMarket(&mockBarsClient{})
	_, err := m.HistoryByDate(context.Background(), usecase.DateQuery{Symbol: "700.HK", Period: entity.PeriodDay})
	assert.ErrorIs(t, err, ErrUnsupportedMarket)
	assert.ErrorIs(t, err, usecase.ErrUnsupported)
}

func TestAlpacaMarket_HistoryByDate(t *testing.T) {
	t.Parallel()

	client := &mockBarsClient{
		GetBarsFunc: func(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error) {
			assert.Equal(t, "AAPL", symbol)
			return dailyBars(3, time.Date(2024, 1, 2, 5, 0, 0, 0, time.UTC)), nil
		},
	}
	m := newAlpacaMarket(client)

	cs, err := m.HistoryByDate(context.Background(), usecase.DateQuery{
		Symbol: "AAPL.US",
		Period: entity.PeriodDay,
		Adjust: entity.ForwardAdjust,
		Start:  time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, cs, 3)
	assert.Equal(t, "105", cs[0].Close.String())
	assert.Equal(t, "101500", cs[0].Turnover.String())
	assert.Equal(t, entity.TradeSessionIntraday, cs[0].TradeSession)

	require.Len(t, client.Requests, 1)
	req := client.Requests[0]
	assert.Equal(t, marketdata.OneDay, req.TimeFrame)
	assert.Equal(t, marketdata.All, req.Adjustment)
	ny := entity.MarketUS.Location()
	assert.True(t, req.Start.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, ny)))
	assert.True(t, req.End.Before(time.Date(2024, 1, 5, 0, 0, 0, 0, ny)))
	assert.True(t, req.End.After(time.Date(2024, 1, 4, 23, 59, 0, 0, ny)))
}

func TestAlpacaMarket_HistoryByOffset_Backward(t *testing.T) {
	t.Parallel()

	client := &mockBarsClient{
		GetBarsFunc: func(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error) {
			return dailyBars(20, time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC)), nil
		},
	}
	m := newAlpacaMarket(client)

	at := time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC)
	cs, err := m.HistoryByOffset(context.Background(), usecase.OffsetQuery{
		Symbol: "AAPL.US", Period: entity.PeriodDay, At: at, Count: 5,
	})
	require.NoError(t, err)
	require.Len(t, cs, 5)
	assert.Equal(t, 20, cs[4].Timestamp.Day())
	assert.True(t, client.Requests[0].End.Equal(at))
	assert.Equal(t, 0, client.Requests[0].TotalLimit)
}

func TestAlpacaMarket_HistoryByOffset_Forward(t *testing.T) {
	t.Parallel()

	client := &mockBarsClient{
		GetBarsFunc: func(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error) {
			return dailyBars(3, req.Start), nil
		},
	}
	m := newAlpacaMarket(client)

	at := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	_, err := m.HistoryByOffset(context.Background(), usecase.OffsetQuery{
		Symbol: "AAPL.US", Period: entity.PeriodDay, At: at, Count: 3, Forward: true,
	})
	require.NoError(t, err)
	assert.True(t, client.Requests[0].Start.Equal(at))
	assert.Equal(t, 3, client.Requests[0].TotalLimit)
}

func TestAlpacaMarket_Latest_FiltersExtendedHours(t *testing.T) {
	t.Parallel()

	ny := entity.MarketUS.Location()
	client := &mockBarsClient{
		GetBarsFunc: func(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error) {
			return []marketdata.Bar{
				{Timestamp: time.Date(2024, 1, 2, 8, 0, 0, 0, ny), Close: 1},
				{Timestamp: time.Date(2024, 1, 2, 9, 30, 0, 0, ny), Close: 2},
				{Timestamp: time.Date(2024, 1, 2, 15, 0, 0, 0, ny), Close: 3},
				{Timestamp: time.Date(2024, 1, 2, 17, 0, 0, 0, ny), Close: 4},
			}, nil
		},
	}
	m := newAlpacaMarket(client)
	m.now = func() time.Time { return time.Date(2024, 1, 2, 21, 0, 0, 0, ny) }

	normal, err := m.Latest(context.Background(), usecase.LatestQuery{Symbol: "AAPL.US", Period: entity.PeriodSixtyMinute, Count: 10})
	require.NoError(t, err)
	require.Len(t, normal, 2)
	assert.Equal(t, "2", normal[0].Close.String())

	all, err := m.Latest(context.Background(), usecase.LatestQuery{
		Symbol: "AAPL.US", Period: entity.PeriodSixtyMinute, Count: 10, Sessions: entity.TradeSessionsAll,
	})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, entity.TradeSessionPre, all[0].TradeSession)
	assert.Equal(t, entity.TradeSessionPost, all[3].TradeSession)
	assert.Equal(t, marketdata.NewTimeFrame(1, marketdata.Hour), client.Requests[0].TimeFrame)
}

func TestAlpacaMarket_ClientError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	m := newAlpacaMarket(&mockBarsClient{
		GetBarsFunc: func(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error) {
			return nil, boom
		},
	})
	_, err := m.Latest(context.Background(), usecase.LatestQuery{Symbol: "AAPL.US", Period: entity.PeriodDay, Count: 1})
	assert.ErrorIs(t, err, boom)
}

func TestTimeFrame(t *testing.T) {
	t.Parallel()

	tf, err := timeFrame(entity.PeriodFifteenMinute)
	require.NoError(t, err)
	assert.Equal(t, marketdata.NewTimeFrame(15, marketdata.Min), tf)

	tf, err = timeFrame(entity.PeriodFourHour)
	require.NoError(t, err)
	assert.Equal(t, marketdata.NewTimeFrame(4, marketdata.Hour), tf)

	_, err = timeFrame(entity.PeriodUnknown)
	assert.ErrorIs(t, err, entity.ErrInvalidPeriod)
}

func TestToEntity_Sessions(t *testing.T) {
	t.Parallel()

	ny := entity.MarketUS.Location()
	bar := func(h, m int) marketdata.Bar {
		return marketdata.Bar{Timestamp: time.Date(2024, 1, 2, h, m, 0, 0, ny).UTC(), Open: 1, High: 1, Low: 1, Close: 1}
	}

	assert.Equal(t, entity.TradeSessionPre, toEntity(bar(4, 0), ny, entity.PeriodFiveMinute).TradeSession)
	assert.Equal(t, entity.TradeSessionIntraday, toEntity(bar(9, 30), ny, entity.PeriodFiveMinute).TradeSession)
	assert.Equal(t, entity.TradeSessionPost, toEntity(bar(16, 0), ny, entity.PeriodFiveMinute).TradeSession)
	assert.Equal(t, entity.TradeSessionOvernight, toEntity(bar(21, 0), ny, entity.PeriodFiveMinute).TradeSession)
	assert.Equal(t, entity.TradeSessionOvernight, toEntity(bar(2, 0), ny, entity.PeriodFiveMinute).TradeSession)
	// daily bars are stamped at midnight but belong to the regular session
	assert.Equal(t, entity.TradeSessionIntraday, toEntity(bar(0, 0), ny, entity.PeriodDay).TradeSession)
}
