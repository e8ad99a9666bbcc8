package entity

import (
	"fmt"
	"strings"
	"time"
)

// ParseMarket accepts a market code such as "HK" or "us".
func ParseMarket(s string) (Market, error) {
	switch m := Market(strings.ToUpper(strings.TrimSpace(s))); m {
	case MarketUS, MarketHK, MarketCN, MarketSG:
		return m, nil
	}
	return MarketUnknown, fmt.Errorf("%w: %q", ErrInvalidMarket, s)
}

// TimeOfDay is an exchange-local wall clock time.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// TimeOfDayFromHHMM converts the gateway's integer form, e.g. 930 for 09:30.
func TimeOfDayFromHHMM(v int) TimeOfDay {
	return TimeOfDay{Hour: v / 100, Minute: v % 100}
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) minutes() int { return t.Hour*60 + t.Minute }

// TradingSessionInfo is one session window of a trading day.
type TradingSessionInfo struct {
	Begin   TimeOfDay
	End     TimeOfDay
	Session TradeSession
}

// Contains reports whether the wall time of t lies in [Begin, End).
// A window whose End is not after Begin wraps past midnight.
func (s TradingSessionInfo) Contains(t time.Time) bool {
	m := t.Hour()*60 + t.Minute()
	b, e := s.Begin.minutes(), s.End.minutes()
	if e > b {
		return m >= b && m < e
	}
	return m >= b || m < e
}

// MarketTradingSession lists the session windows of one market.
type MarketTradingSession struct {
	Market   Market
	Sessions []TradingSessionInfo
}

// SessionAt classifies t (converted to the market's zone) into a trade session.
// ok is false outside every window.
func (m MarketTradingSession) SessionAt(t time.Time) (session TradeSession, ok bool) {
	local := t.In(m.Market.Location())
	for _, s := range m.Sessions {
		if s.Contains(local) {
			return s.Session, true
		}
	}
	return TradeSessionIntraday, false
}

// USTradingSession is the US equity schedule in New York time, overnight included.
var USTradingSession = MarketTradingSession{Market: MarketUS, Sessions: []TradingSessionInfo{
	{Begin: TimeOfDay{4, 0}, End: TimeOfDay{9, 30}, Session: TradeSessionPre},
	{Begin: TimeOfDay{9, 30}, End: TimeOfDay{16, 0}, Session: TradeSessionIntraday},
	{Begin: TimeOfDay{16, 0}, End: TimeOfDay{20, 0}, Session: TradeSessionPost},
	{Begin: TimeOfDay{20, 0}, End: TimeOfDay{4, 0}, Session: TradeSessionOvernight},
}}

// MarketTradingDays holds the full and half trading days of a date range.
type MarketTradingDays struct {
	TradingDays     []time.Time
	HalfTradingDays []time.Time
}
