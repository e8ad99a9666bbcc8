package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/candlesticks/transport/handler"
	"quote_backend/internal/feature/candlesticks/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// mockCalendarUsecase はCalendarUsecaseインターフェースのモック実装です。
type mockCalendarUsecase struct {
	TradingDaysFunc     func(ctx context.Context, market string, begin, end time.Time) (entity.MarketTradingDays, error)
	TradingSessionsFunc func(ctx context.Context, market string) ([]entity.MarketTradingSession, error)
}

func (m *mockCalendarUsecase) TradingDays(ctx context.Context, market string, begin, end time.Time) (entity.MarketTradingDays, error) {
	if m.TradingDaysFunc == nil {
		return entity.MarketTradingDays{}, errors.New("unexpected TradingDays")
	}
	return m.TradingDaysFunc(ctx, market, begin, end)
}

func (m *mockCalendarUsecase) TradingSessions(ctx context.Context, market string) ([]entity.MarketTradingSession, error) {
	if m.TradingSessionsFunc == nil {
		return nil, errors.New("unexpected TradingSessions")
	}
	return m.TradingSessionsFunc(ctx, market)
}

func newCalendarRouter(uc handler.CalendarUsecase) *gin.Engine {
	h := handler.NewCalendarHandler(uc)
	r := gin.New()
	r.GET("/calendar/trading-days", h.TradingDays)
	r.GET("/calendar/trading-sessions", h.TradingSessions)
	return r
}

func TestCalendarHandler_TradingDays(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		url            string
		mock           func(t *testing.T) func(ctx context.Context, market string, begin, end time.Time) (entity.MarketTradingDays, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			url:  "/calendar/trading-days?market=hk&start=2022-01-20&end=2022-02-20",
			mock: func(t *testing.T) func(ctx context.Context, market string, begin, end time.Time) (entity.MarketTradingDays, error) {
				return func(_ context.Context, market string, begin, end time.Time) (entity.MarketTradingDays, error) {
					assert.Equal(t, "HK", market)
					assert.True(t, begin.Equal(time.Date(2022, 1, 20, 0, 0, 0, 0, hkt)))
					assert.True(t, end.Equal(time.Date(2022, 2, 20, 0, 0, 0, 0, hkt)))
					return entity.MarketTradingDays{
						TradingDays:     []time.Time{time.Date(2022, 1, 20, 0, 0, 0, 0, hkt), time.Date(2022, 1, 21, 0, 0, 0, 0, hkt)},
						HalfTradingDays: []time.Time{time.Date(2022, 1, 31, 0, 0, 0, 0, hkt)},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"market":"HK","trading_days":["2022-01-20","2022-01-21"],"half_trading_days":["2022-01-31"]}`,
		},
		{
			name: "success: no days",
			url:  "/calendar/trading-days?market=US",
			mock: func(t *testing.T) func(ctx context.Context, market string, begin, end time.Time) (entity.MarketTradingDays, error) {
				return func(_ context.Context, _ string, begin, end time.Time) (entity.MarketTradingDays, error) {
					assert.True(t, begin.IsZero())
					assert.True(t, end.IsZero())
					return entity.MarketTradingDays{}, nil
				}
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"market":"US","trading_days":[],"half_trading_days":[]}`,
		},
		{
			name:           "error: market is required",
			url:            "/calendar/trading-days?start=2022-01-20",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error: unknown market",
			url:            "/calendar/trading-days?market=JP",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error: bad start",
			url:            "/calendar/trading-days?market=HK&start=20/01/2022",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "error: range too long maps to 400",
			url:  "/calendar/trading-days?market=HK&start=2022-01-01&end=2022-06-01",
			mock: func(t *testing.T) func(ctx context.Context, market string, begin, end time.Time) (entity.MarketTradingDays, error) {
				return func(context.Context, string, time.Time, time.Time) (entity.MarketTradingDays, error) {
					return entity.MarketTradingDays{}, fmt.Errorf("%w: trading days span at most one month", usecase.ErrInvalidRange)
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "error: upstream failure maps to 502",
			url:  "/calendar/trading-days?market=HK",
			mock: func(t *testing.T) func(ctx context.Context, market string, begin, end time.Time) (entity.MarketTradingDays, error) {
				return func(context.Context, string, time.Time, time.Time) (entity.MarketTradingDays, error) {
					return entity.MarketTradingDays{}, errors.New("gateway timeout")
				}
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `{"error":"gateway timeout"}`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uc := &mockCalendarUsecase{}
			if tt.mock != nil {
				uc.TradingDaysFunc = tt.mock(t)
			}
			w := do(newCalendarRouter(uc), http.MethodGet, tt.url)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestCalendarHandler_TradingSessions(t *testing.T) {
	t.Parallel()

	t.Run("single market", func(t *testing.T) {
		t.Parallel()

		uc := &mockCalendarUsecase{TradingSessionsFunc: func(_ context.Context, market string) ([]entity.MarketTradingSession, error) {
			assert.Equal(t, "US", market)
			return []entity.MarketTradingSession{{Market: entity.MarketUS, Sessions: entity.USTradingSession.Sessions[:2]}}, nil
		}}
		w := do(newCalendarRouter(uc), http.MethodGet, "/calendar/trading-sessions?market=US")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"market":"US","timezone":"America/New_York","sessions":[`+
			`{"begin":"04:00","end":"09:30","session":"Pre"},`+
			`{"begin":"09:30","end":"16:00","session":"Intraday"}]}]`, w.Body.String())
	})

	t.Run("all markets", func(t *testing.T) {
		t.Parallel()

		uc := &mockCalendarUsecase{TradingSessionsFunc: func(_ context.Context, market string) ([]entity.MarketTradingSession, error) {
			assert.Empty(t, market)
			return nil, nil
		}}
		w := do(newCalendarRouter(uc), http.MethodGet, "/calendar/trading-sessions")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("unknown market", func(t *testing.T) {
		t.Parallel()

		uc := &mockCalendarUsecase{TradingSessionsFunc: func(context.Context, string) ([]entity.MarketTradingSession, error) {
			return nil, fmt.Errorf("%w: %q", entity.ErrInvalidMarket, "XX")
		}}
		w := do(newCalendarRouter(uc), http.MethodGet, "/calendar/trading-sessions?market=XX")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("upstream failure", func(t *testing.T) {
		t.Parallel()

		uc := &mockCalendarUsecase{TradingSessionsFunc: func(context.Context, string) ([]entity.MarketTradingSession, error) {
			return nil, errors.New("session table unavailable")
		}}
		w := do(newCalendarRouter(uc), http.MethodGet, "/calendar/trading-sessions")
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}
