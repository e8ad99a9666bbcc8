// Package entity defines the domain models for the candlesticks feature.
package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Candlestick is one OHLC bar for a time bucket.
// Prices and turnover are decimals because the gateway returns them as decimal strings.
type Candlestick struct {
	Symbol       string          // Exchange-qualified ticker (e.g., "700.HK")
	Period       Period          // Bucket granularity
	Adjust       AdjustType      // Price adjustment the bar was fetched with
	Close        decimal.Decimal // Closing price
	Open         decimal.Decimal // Opening price
	Low          decimal.Decimal // Lowest price during the bucket
	High         decimal.Decimal // Highest price during the bucket
	Volume       int64           // Traded shares
	Turnover     decimal.Decimal // Traded value
	Timestamp    time.Time       // Start of the bucket
	TradeSession TradeSession    // Session the bar belongs to
}

// String is the default single-line textual form of a candlestick.
func (c Candlestick) String() string {
	return fmt.Sprintf(
		"Candlestick { close: %s, open: %s, low: %s, high: %s, volume: %d, turnover: %s, timestamp: %s, trade_session: %s }",
		c.Close, c.Open, c.Low, c.High, c.Volume, c.Turnover,
		c.Timestamp.Format(time.RFC3339), c.TradeSession,
	)
}
