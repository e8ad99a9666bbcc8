package entity

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // exchange zones must resolve on hosts without zoneinfo
)

// Market is the exchange region an instrument trades in.
type Market string

const (
	MarketUnknown Market = ""
	MarketUS      Market = "US"
	MarketHK      Market = "HK"
	MarketCN      Market = "CN"
	MarketSG      Market = "SG"
	MarketCrypto  Market = "Crypto"
)

var marketZones = map[Market]string{
	MarketUS:     "America/New_York",
	MarketHK:     "Asia/Hong_Kong",
	MarketCN:     "Asia/Shanghai",
	MarketSG:     "Asia/Singapore",
	MarketCrypto: "UTC",
}

// Location returns the exchange time zone. Unknown markets and missing tzdata fall back to UTC.
func (m Market) Location() *time.Location {
	name, ok := marketZones[m]
	if !ok {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Symbol is an exchange-qualified ticker such as "700.HK" or "AAPL.US".
type Symbol struct {
	Code   string
	Suffix string
	Market Market
}

func (s Symbol) String() string {
	return s.Code + "." + s.Suffix
}

// ParseSymbol splits CODE.SUFFIX and resolves the market from the suffix.
// SH and SZ both map to the CN market.
func ParseSymbol(raw string) (Symbol, error) {
	raw = strings.TrimSpace(raw)
	i := strings.LastIndex(raw, ".")
	if i <= 0 || i == len(raw)-1 {
		return Symbol{}, fmt.Errorf("%w: %q", ErrInvalidSymbol, raw)
	}
	code, suffix := raw[:i], strings.ToUpper(raw[i+1:])

	var m Market
	switch suffix {
	case "US":
		m = MarketUS
	case "HK":
		m = MarketHK
	case "SH", "SZ":
		m = MarketCN
	case "SG":
		m = MarketSG
	default:
		return Symbol{}, fmt.Errorf("%w: unknown market suffix %q", ErrInvalidSymbol, suffix)
	}
	return Symbol{Code: code, Suffix: suffix, Market: m}, nil
}
