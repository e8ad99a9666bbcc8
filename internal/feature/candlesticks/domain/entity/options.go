package entity

import (
	"fmt"
	"strings"
)

// AdjustType selects whether historical prices are corrected for corporate actions.
type AdjustType int32

const (
	NoAdjust      AdjustType = 0
	ForwardAdjust AdjustType = 1
)

func (a AdjustType) String() string {
	switch a {
	case NoAdjust:
		return "NoAdjust"
	case ForwardAdjust:
		return "ForwardAdjust"
	default:
		return fmt.Sprintf("AdjustType(%d)", int32(a))
	}
}

// ParseAdjustType accepts "none"/"noadjust" and "forward"/"forwardadjust".
func ParseAdjustType(s string) (AdjustType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "noadjust", "no_adjust":
		return NoAdjust, nil
	case "forward", "forwardadjust", "forward_adjust":
		return ForwardAdjust, nil
	}
	return NoAdjust, fmt.Errorf("%w: %q", ErrInvalidAdjustType, s)
}

// TradeSessions is the request-side filter choosing which sessions to include.
type TradeSessions int32

const (
	// TradeSessionsNormal only includes regular trading hours.
	TradeSessionsNormal TradeSessions = 0
	// TradeSessionsAll includes pre-market, post-market and overnight bars.
	TradeSessionsAll TradeSessions = 100
)

func (t TradeSessions) String() string {
	switch t {
	case TradeSessionsNormal:
		return "Normal"
	case TradeSessionsAll:
		return "All"
	default:
		return fmt.Sprintf("TradeSessions(%d)", int32(t))
	}
}

// ParseTradeSessions accepts "normal"/"intraday" and "all".
func ParseTradeSessions(s string) (TradeSessions, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal", "intraday":
		return TradeSessionsNormal, nil
	case "all":
		return TradeSessionsAll, nil
	}
	return TradeSessionsNormal, fmt.Errorf("%w: %q", ErrInvalidTradeSessions, s)
}

// TradeSession is the session a single bar belongs to.
type TradeSession int32

const (
	TradeSessionIntraday  TradeSession = 0
	TradeSessionPre       TradeSession = 1
	TradeSessionPost      TradeSession = 2
	TradeSessionOvernight TradeSession = 3
)

func (t TradeSession) String() string {
	switch t {
	case TradeSessionIntraday:
		return "Intraday"
	case TradeSessionPre:
		return "Pre"
	case TradeSessionPost:
		return "Post"
	case TradeSessionOvernight:
		return "Overnight"
	default:
		return fmt.Sprintf("TradeSession(%d)", int32(t))
	}
}
