// Package handler はcandlesticksフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/candlesticks/transport/http/dto"
	"quote_backend/internal/feature/candlesticks/usecase"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
)

// HistoryUsecase はローソク足取得のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type HistoryUsecase interface {
	ByOffset(ctx context.Context, q usecase.OffsetQuery) ([]entity.Candlestick, error)
	ByDate(ctx context.Context, q usecase.DateQuery) ([]entity.Candlestick, error)
	Latest(ctx context.Context, q usecase.LatestQuery) ([]entity.Candlestick, error)
}

// CacheInvalidator は銘柄のキャッシュ済みヒストリーを破棄します。
type CacheInvalidator interface {
	Invalidate(ctx context.Context, symbol string) error
}

// StoreReader はingestジョブが保存したローソク足を読み取ります。
type StoreReader interface {
	ByDate(ctx context.Context, q usecase.DateQuery) ([]entity.Candlestick, error)
	Latest(ctx context.Context, q usecase.LatestQuery) ([]entity.Candlestick, error)
}

// CandlesticksHandler はローソク足データのHTTPリクエストを処理します。
type CandlesticksHandler struct {
	uc    HistoryUsecase
	cache CacheInvalidator
	store StoreReader
}

// NewCandlesticksHandler はハンドラーを生成します。Redis無効時はcacheにnilを渡せます。
func NewCandlesticksHandler(uc HistoryUsecase, cache CacheInvalidator) *CandlesticksHandler {
	return &CandlesticksHandler{uc: uc, cache: cache}
}

// WithStore は /stored エンドポイントを有効にします。
func (h *CandlesticksHandler) WithStore(s StoreReader) *CandlesticksHandler {
	h.store = s
	return h
}

// common は全ヒストリーエンドポイント共通のパラメータです。
type common struct {
	symbol   entity.Symbol
	period   entity.Period
	adjust   entity.AdjustType
	sessions entity.TradeSessions
}

// ByOffset は基準時刻から指定本数のローソク足を返します。
//
// エンドポイント例:
// GET /candlesticks/700.HK/offset?period=day&forward=false&time=2023-08-18&count=10
func (h *CandlesticksHandler) ByOffset(c *gin.Context) {
	p, err := bindCommon(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	var (
		forward bool
		count   = usecase.DefaultCount
		at      string
	)
	q := c.Request.URL.Query()
	if err := bindOptional(q, "forward", &forward); err != nil {
		badRequest(c, err)
		return
	}
	if err := bindOptional(q, "count", &count); err != nil {
		badRequest(c, err)
		return
	}
	if err := bindOptional(q, "time", &at); err != nil {
		badRequest(c, err)
		return
	}
	anchor, err := entity.ParseTime(at, p.symbol.Market.Location())
	if err != nil {
		badRequest(c, err)
		return
	}

	candles, err := h.uc.ByOffset(c.Request.Context(), usecase.OffsetQuery{
		Symbol:   p.symbol.String(),
		Period:   p.period,
		Adjust:   p.adjust,
		Forward:  forward,
		At:       anchor,
		Count:    count,
		Sessions: p.sessions,
	})
	h.respond(c, p, candles, err, http.StatusBadGateway)
}

// ByDate は期間内（両端を含む）のローソク足を返します。
//
// エンドポイント例:
// GET /candlesticks/700.HK/date?period=day&start=2022-05-05&end=2022-06-23
func (h *CandlesticksHandler) ByDate(c *gin.Context) {
	p, q, err := bindDate(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	candles, err := h.uc.ByDate(c.Request.Context(), q)
	h.respond(c, p, candles, err, http.StatusBadGateway)
}

// Latest は直近のローソク足を返します。
//
// エンドポイント例:
// GET /candlesticks/AAPL.US/latest?period=1h&count=20
func (h *CandlesticksHandler) Latest(c *gin.Context) {
	p, q, err := bindLatest(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	candles, err := h.uc.Latest(c.Request.Context(), q)
	h.respond(c, p, candles, err, http.StatusBadGateway)
}

// StoredByDate は保存済みのローソク足を期間指定で返します。
//
// エンドポイント例:
// GET /candlesticks/700.HK/stored/date?period=week&start=2022-01-01
func (h *CandlesticksHandler) StoredByDate(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusNotImplemented, dto.ErrorResponse{Error: "candlestick store is not configured"})
		return
	}
	p, q, err := bindDate(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	candles, err := h.store.ByDate(c.Request.Context(), q)
	h.respond(c, p, candles, err, http.StatusInternalServerError)
}

// StoredLatest は保存済みの直近のローソク足を返します。
func (h *CandlesticksHandler) StoredLatest(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusNotImplemented, dto.ErrorResponse{Error: "candlestick store is not configured"})
		return
	}
	p, q, err := bindLatest(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	candles, err := h.store.Latest(c.Request.Context(), q)
	h.respond(c, p, candles, err, http.StatusInternalServerError)
}

// InvalidateCache は銘柄のキャッシュをすべて削除します。
//
// エンドポイント例:
// DELETE /candlesticks/700.HK/cache
func (h *CandlesticksHandler) InvalidateCache(c *gin.Context) {
	sym, err := entity.ParseSymbol(c.Param("symbol"))
	if err != nil {
		badRequest(c, err)
		return
	}
	if h.cache == nil {
		c.Status(http.StatusNoContent)
		return
	}
	if err := h.cache.Invalidate(c.Request.Context(), sym.String()); err != nil {
		slog.Error("cache invalidation failed", "symbol", sym.String(), "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// respond はローソク足を返します。エラー時は入力エラーなら400、それ以外はfailStatusを返します。
func (h *CandlesticksHandler) respond(c *gin.Context, p common, candles []entity.Candlestick, err error, failStatus int) {
	if err != nil {
		if isValidation(err) {
			badRequest(c, err)
			return
		}
		slog.Warn("history request failed", "symbol", p.symbol.String(), "period", p.period.String(), "error", err)
		c.JSON(failStatus, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.NewHistoryResponse(p.symbol.String(), p.period, p.adjust, candles))
}

func bindDate(c *gin.Context) (common, usecase.DateQuery, error) {
	p, err := bindCommon(c)
	if err != nil {
		return common{}, usecase.DateQuery{}, err
	}

	var start, end string
	q := c.Request.URL.Query()
	if err := bindOptional(q, "start", &start); err != nil {
		return common{}, usecase.DateQuery{}, err
	}
	if err := bindOptional(q, "end", &end); err != nil {
		return common{}, usecase.DateQuery{}, err
	}
	loc := p.symbol.Market.Location()
	from, err := entity.ParseTime(start, loc)
	if err != nil {
		return common{}, usecase.DateQuery{}, err
	}
	to, err := entity.ParseTime(end, loc)
	if err != nil {
		return common{}, usecase.DateQuery{}, err
	}

	return p, usecase.DateQuery{
		Symbol:   p.symbol.String(),
		Period:   p.period,
		Adjust:   p.adjust,
		Start:    from,
		End:      to,
		Sessions: p.sessions,
	}, nil
}

func bindLatest(c *gin.Context) (common, usecase.LatestQuery, error) {
	p, err := bindCommon(c)
	if err != nil {
		return common{}, usecase.LatestQuery{}, err
	}
	count := usecase.DefaultCount
	if err := bindOptional(c.Request.URL.Query(), "count", &count); err != nil {
		return common{}, usecase.LatestQuery{}, err
	}
	return p, usecase.LatestQuery{
		Symbol:   p.symbol.String(),
		Period:   p.period,
		Adjust:   p.adjust,
		Count:    count,
		Sessions: p.sessions,
	}, nil
}

func bindCommon(c *gin.Context) (common, error) {
	sym, err := entity.ParseSymbol(c.Param("symbol"))
	if err != nil {
		return common{}, err
	}

	var periodStr, adjustStr, sessionsStr string
	q := c.Request.URL.Query()
	for name, dest := range map[string]*string{"period": &periodStr, "adjust": &adjustStr, "sessions": &sessionsStr} {
		if err := bindOptional(q, name, dest); err != nil {
			return common{}, err
		}
	}
	if periodStr == "" {
		periodStr = "day"
	}

	period, err := entity.ParsePeriod(periodStr)
	if err != nil {
		return common{}, err
	}
	adjust, err := entity.ParseAdjustType(adjustStr)
	if err != nil {
		return common{}, err
	}
	sessions, err := entity.ParseTradeSessions(sessionsStr)
	if err != nil {
		return common{}, err
	}
	return common{symbol: sym, period: period, adjust: adjust, sessions: sessions}, nil
}

// bindOptional はform形式のクエリパラメータをバインドします。未指定ならdestは元の値のままです。
func bindOptional(q map[string][]string, name string, dest any) error {
	return runtime.BindQueryParameter("form", true, false, name, q, dest)
}

// isValidation は呼び出し側の入力に起因するエラーかどうかを判定します。
// プロバイダーが扱えない市場・足種（ErrUnsupported）も入力エラーとみなします。
func isValidation(err error) bool {
	for _, target := range []error{
		entity.ErrInvalidSymbol,
		entity.ErrInvalidPeriod,
		entity.ErrInvalidAdjustType,
		entity.ErrInvalidTradeSessions,
		entity.ErrInvalidTime,
		entity.ErrInvalidMarket,
		usecase.ErrInvalidCount,
		usecase.ErrInvalidRange,
		usecase.ErrUnsupported,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
}
