package dto

import (
	"time"

	"quote_backend/internal/feature/candlesticks/domain/entity"
)

// TradingDaysResponse は市場の取引日一覧のレスポンスです。日付は YYYY-MM-DD 形式です。
type TradingDaysResponse struct {
	Market          string   `json:"market"`
	TradingDays     []string `json:"trading_days"`
	HalfTradingDays []string `json:"half_trading_days"` // 半日取引
}

// SessionWindow は取引セッションの時間帯です（取引所ローカル時刻 HH:MM）。
type SessionWindow struct {
	Begin   string `json:"begin"`
	End     string `json:"end"`
	Session string `json:"session"`
}

// MarketSessionsResponse は1市場分のセッション時間帯です。
type MarketSessionsResponse struct {
	Market   string          `json:"market"`
	Timezone string          `json:"timezone"`
	Sessions []SessionWindow `json:"sessions"`
}

// NewTradingDaysResponse はレスポンスを組み立てます。配列はnullになりません。
func NewTradingDaysResponse(m entity.Market, d entity.MarketTradingDays) TradingDaysResponse {
	return TradingDaysResponse{
		Market:          string(m),
		TradingDays:     formatDays(d.TradingDays),
		HalfTradingDays: formatDays(d.HalfTradingDays),
	}
}

// NewMarketSessionsResponse はセッション一覧をDTOに変換します。
func NewMarketSessionsResponse(in []entity.MarketTradingSession) []MarketSessionsResponse {
	out := make([]MarketSessionsResponse, 0, len(in))
	for _, m := range in {
		r := MarketSessionsResponse{
			Market:   string(m.Market),
			Timezone: m.Market.Location().String(),
			Sessions: make([]SessionWindow, 0, len(m.Sessions)),
		}
		for _, s := range m.Sessions {
			r.Sessions = append(r.Sessions, SessionWindow{Begin: s.Begin.String(), End: s.End.String(), Session: s.Session.String()})
		}
		out = append(out, r)
	}
	return out
}

func formatDays(in []time.Time) []string {
	out := make([]string, 0, len(in))
	for _, d := range in {
		out = append(out, d.Format(time.DateOnly))
	}
	return out
}
