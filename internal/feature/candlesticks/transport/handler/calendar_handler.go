package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/candlesticks/transport/http/dto"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
)

// CalendarUsecase は取引日・取引時間を返すユースケースインターフェースです。
type CalendarUsecase interface {
	TradingDays(ctx context.Context, market string, begin, end time.Time) (entity.MarketTradingDays, error)
	TradingSessions(ctx context.Context, market string) ([]entity.MarketTradingSession, error)
}

// CalendarHandler は市場カレンダーのHTTPリクエストを処理します。
type CalendarHandler struct {
	uc CalendarUsecase
}

// NewCalendarHandler はCalendarHandlerを生成します。
func NewCalendarHandler(uc CalendarUsecase) *CalendarHandler {
	return &CalendarHandler{uc: uc}
}

// TradingDays は期間内の取引日を返します。
//
// エンドポイント例:
// GET /calendar/trading-days?market=HK&start=2022-01-20&end=2022-02-20
func (h *CalendarHandler) TradingDays(c *gin.Context) {
	var marketStr, start, end string
	q := c.Request.URL.Query()
	if err := runtime.BindQueryParameter("form", true, true, "market", q, &marketStr); err != nil {
		badRequest(c, err)
		return
	}
	market, err := entity.ParseMarket(marketStr)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := bindOptional(q, "start", &start); err != nil {
		badRequest(c, err)
		return
	}
	if err := bindOptional(q, "end", &end); err != nil {
		badRequest(c, err)
		return
	}
	loc := market.Location()
	begin, err := entity.ParseTime(start, loc)
	if err != nil {
		badRequest(c, err)
		return
	}
	to, err := entity.ParseTime(end, loc)
	if err != nil {
		badRequest(c, err)
		return
	}

	days, err := h.uc.TradingDays(c.Request.Context(), string(market), begin, to)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTradingDaysResponse(market, days))
}

// TradingSessions は市場ごとの取引時間帯を返します。marketを省略すると全市場です。
//
// エンドポイント例:
// GET /calendar/trading-sessions?market=US
func (h *CalendarHandler) TradingSessions(c *gin.Context) {
	var market string
	if err := bindOptional(c.Request.URL.Query(), "market", &market); err != nil {
		badRequest(c, err)
		return
	}
	sessions, err := h.uc.TradingSessions(c.Request.Context(), market)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewMarketSessionsResponse(sessions))
}

func (h *CalendarHandler) fail(c *gin.Context, err error) {
	if isValidation(err) {
		badRequest(c, err)
		return
	}
	slog.Warn("calendar request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
}
