package dto

// TradingDaysData is the payload of /v1/quote/trading-days. Days are YYYYMMDD.
type TradingDaysData struct {
	TradeDay     []string `json:"trade_day"`
	HalfTradeDay []string `json:"half_trade_day"`
}

// TradingSessionData is the payload of /v1/quote/trading-session.
type TradingSessionData struct {
	MarketTradeSession []MarketTradeSession `json:"market_trade_session"`
}

// MarketTradeSession lists one market's session windows.
type MarketTradeSession struct {
	Market       string        `json:"market"`
	TradeSession []TradePeriod `json:"trade_session"`
}

// TradePeriod is one window. Times are HHMM integers in exchange time.
type TradePeriod struct {
	BegTime      int   `json:"beg_time"`
	EndTime      int   `json:"end_time"`
	TradeSession int32 `json:"trade_session"`
}
