// Package dto defines data transfer objects for the quote gateway endpoints.
package dto

import "encoding/json"

// Envelope wraps every gateway response. A non-zero Code is an application error.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data"`
}

// CandlesticksData carries the bars for one symbol.
type CandlesticksData struct {
	Symbol       string        `json:"symbol"`
	Candlesticks []Candlestick `json:"candlesticks"`
}

// Candlestick is one bar on the wire. Prices and turnover are decimal strings.
type Candlestick struct {
	Close        string `json:"close"`
	Open         string `json:"open"`
	Low          string `json:"low"`
	High         string `json:"high"`
	Volume       int64  `json:"volume"`
	Turnover     string `json:"turnover"`
	Timestamp    int64  `json:"timestamp"` // unix seconds
	TradeSession int32  `json:"trade_session"`
}

// ErrorResponse is the body sent with HTTP error statuses.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
