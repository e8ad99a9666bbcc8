package dto

import (
	"time"

	"quote_backend/internal/feature/candlesticks/domain/entity"

	"github.com/shopspring/decimal"
)

// CandlestickResponse はローソク足1本分のレスポンスDTOです。
// 価格は精度を落とさないよう文字列の小数で返します。
type CandlestickResponse struct {
	Timestamp    string          `json:"timestamp"`     // 足の開始時刻（市場タイムゾーン, RFC3339）
	Open         decimal.Decimal `json:"open"`          // 始値
	High         decimal.Decimal `json:"high"`          // 高値
	Low          decimal.Decimal `json:"low"`           // 安値
	Close        decimal.Decimal `json:"close"`         // 終値
	Volume       int64           `json:"volume"`        // 出来高
	Turnover     decimal.Decimal `json:"turnover"`      // 売買代金
	TradeSession string          `json:"trade_session"` // Intraday | Pre | Post | Overnight
}

// HistoryResponse は1クエリ分のローソク足をまとめたレスポンスです。
type HistoryResponse struct {
	Symbol       string                `json:"symbol"`
	Period       string                `json:"period"`
	Adjust       string                `json:"adjust"`
	Count        int                   `json:"count"`
	Candlesticks []CandlestickResponse `json:"candlesticks"`
}

// ErrorResponse は2xx以外のレスポンスボディです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// FromEntity はドメインのローソク足をDTOに変換します。
func FromEntity(c entity.Candlestick) CandlestickResponse {
	return CandlestickResponse{
		Timestamp:    c.Timestamp.Format(time.RFC3339),
		Open:         c.Open,
		High:         c.High,
		Low:          c.Low,
		Close:        c.Close,
		Volume:       c.Volume,
		Turnover:     c.Turnover,
		TradeSession: c.TradeSession.String(),
	}
}

// NewHistoryResponse はレスポンスを組み立てます。candlesticksはnullになりません。
func NewHistoryResponse(symbol string, p entity.Period, a entity.AdjustType, cs []entity.Candlestick) HistoryResponse {
	out := make([]CandlestickResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, FromEntity(c))
	}
	return HistoryResponse{
		Symbol:       symbol,
		Period:       p.String(),
		Adjust:       a.String(),
		Count:        len(out),
		Candlesticks: out,
	}
}
