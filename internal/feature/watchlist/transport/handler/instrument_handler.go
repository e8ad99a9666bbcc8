package handler

import (
	"context"
	"errors"
	"net/http"

	"quote_backend/internal/feature/watchlist/domain/entity"
	"quote_backend/internal/feature/watchlist/transport/http/dto"
	"quote_backend/internal/feature/watchlist/usecase"

	"github.com/gin-gonic/gin"
)

// WatchlistUsecase はウォッチリストに関するユースケースのインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type WatchlistUsecase interface {
	ListActive(ctx context.Context, market string) ([]entity.Instrument, error)
	Add(ctx context.Context, code, name string, sortKey int) (*entity.Instrument, error)
	Deactivate(ctx context.Context, code string) error
}

// InstrumentHandler はウォッチリストに関するHTTPリクエストを処理します。
type InstrumentHandler struct {
	uc WatchlistUsecase
}

// NewInstrumentHandler は新しい InstrumentHandler を作成します。
func NewInstrumentHandler(uc WatchlistUsecase) *InstrumentHandler {
	return &InstrumentHandler{uc: uc}
}

// List は有効な銘柄の一覧を返します。?market=HK で市場を絞り込めます。
func (h *InstrumentHandler) List(c *gin.Context) {
	items, err := h.uc.ListActive(c.Request.Context(), c.Query("market"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.InstrumentItem, 0, len(items))
	for _, in := range items {
		out = append(out, toItem(in))
	}
	c.JSON(http.StatusOK, out)
}

// Add は銘柄をウォッチリストに登録します（既存なら更新して再有効化）。
func (h *InstrumentHandler) Add(c *gin.Context) {
	var req dto.AddInstrumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in, err := h.uc.Add(c.Request.Context(), req.Code, req.Name, req.SortKey)
	if err != nil {
		c.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, toItem(*in))
}

// Deactivate はウォッチリストから銘柄を外します。
func (h *InstrumentHandler) Deactivate(c *gin.Context) {
	if err := h.uc.Deactivate(c.Request.Context(), c.Param("code")); err != nil {
		c.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func toItem(in entity.Instrument) dto.InstrumentItem {
	return dto.InstrumentItem{Code: in.Code, Name: in.Name, Market: in.Market}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidInstrument):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
