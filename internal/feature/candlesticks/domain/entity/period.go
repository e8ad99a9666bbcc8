package entity

import (
	"fmt"
	"strings"
	"time"
)

// Period is the time-bucket granularity of a candlestick series.
// The numeric values are the codes used on the wire by the quote gateway.
type Period int32

const (
	PeriodUnknown         Period = 0
	PeriodOneMinute       Period = 1
	PeriodTwoMinute       Period = 2
	PeriodThreeMinute     Period = 3
	PeriodFiveMinute      Period = 5
	PeriodTenMinute       Period = 10
	PeriodFifteenMinute   Period = 15
	PeriodTwentyMinute    Period = 20
	PeriodThirtyMinute    Period = 30
	PeriodFortyFiveMinute Period = 45
	PeriodSixtyMinute     Period = 60
	PeriodTwoHour         Period = 120
	PeriodThreeHour       Period = 180
	PeriodFourHour        Period = 240
	PeriodDay             Period = 1000
	PeriodWeek            Period = 2000
	PeriodMonth           Period = 3000
	PeriodQuarter         Period = 3500
	PeriodYear            Period = 4000
)

var periodNames = map[Period]string{
	PeriodUnknown:         "Unknown",
	PeriodOneMinute:       "OneMinute",
	PeriodTwoMinute:       "TwoMinute",
	PeriodThreeMinute:     "ThreeMinute",
	PeriodFiveMinute:      "FiveMinute",
	PeriodTenMinute:       "TenMinute",
	PeriodFifteenMinute:   "FifteenMinute",
	PeriodTwentyMinute:    "TwentyMinute",
	PeriodThirtyMinute:    "ThirtyMinute",
	PeriodFortyFiveMinute: "FortyFiveMinute",
	PeriodSixtyMinute:     "SixtyMinute",
	PeriodTwoHour:         "TwoHour",
	PeriodThreeHour:       "ThreeHour",
	PeriodFourHour:        "FourHour",
	PeriodDay:             "Day",
	PeriodWeek:            "Week",
	PeriodMonth:           "Month",
	PeriodQuarter:         "Quarter",
	PeriodYear:            "Year",
}

// periodAliases maps the short forms accepted on the command line and in query strings.
var periodAliases = map[string]Period{
	"1m":    PeriodOneMinute,
	"2m":    PeriodTwoMinute,
	"3m":    PeriodThreeMinute,
	"5m":    PeriodFiveMinute,
	"10m":   PeriodTenMinute,
	"15m":   PeriodFifteenMinute,
	"20m":   PeriodTwentyMinute,
	"30m":   PeriodThirtyMinute,
	"45m":   PeriodFortyFiveMinute,
	"60m":   PeriodSixtyMinute,
	"1h":    PeriodSixtyMinute,
	"2h":    PeriodTwoHour,
	"3h":    PeriodThreeHour,
	"4h":    PeriodFourHour,
	"1d":    PeriodDay,
	"day":   PeriodDay,
	"1w":    PeriodWeek,
	"week":  PeriodWeek,
	"1mo":   PeriodMonth,
	"month": PeriodMonth,
	"1q":    PeriodQuarter,
	"1y":    PeriodYear,
	"year":  PeriodYear,
}

func (p Period) String() string {
	if name, ok := periodNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Period(%d)", int32(p))
}

// Valid reports whether p is a known, non-Unknown period.
func (p Period) Valid() bool {
	_, ok := periodNames[p]
	return ok && p != PeriodUnknown
}

// Intraday reports whether bars of this period are shorter than a trading day.
func (p Period) Intraday() bool {
	return p.Valid() && p < PeriodDay
}

// Duration returns the bucket length of an intraday period, or 0 for daily and longer.
func (p Period) Duration() time.Duration {
	if !p.Intraday() {
		return 0
	}
	return time.Duration(p) * time.Minute
}

// minTradingMinutes is the shortest regular trading day of the supported markets (CN, 4h).
const minTradingMinutes = 240

// Lookback returns a calendar span wide enough to hold count bars of p,
// allowing for weekends and holidays. Unknown periods are treated as daily.
func (p Period) Lookback(count int) time.Duration {
	const day = 24 * time.Hour
	if count < 1 {
		count = 1
	}
	switch p {
	case PeriodWeek:
		return time.Duration(count+2) * 7 * day
	case PeriodMonth:
		return time.Duration(count+2) * 31 * day
	case PeriodQuarter:
		return time.Duration(count+2) * 92 * day
	case PeriodYear:
		return time.Duration(count+2) * 366 * day
	}
	if !p.Intraday() {
		return time.Duration(count)*day*3/2 + 7*day
	}
	perDay := int(minTradingMinutes * time.Minute / p.Duration())
	if perDay < 1 {
		perDay = 1
	}
	days := count/perDay + 1
	return time.Duration(days)*day*3/2 + 4*day
}

// ParsePeriod accepts either the enum name ("Day", "sixtyminute") or a short alias ("1d", "60m").
func ParsePeriod(s string) (Period, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if p, ok := periodAliases[key]; ok {
		return p, nil
	}
	for p, name := range periodNames {
		if p != PeriodUnknown && strings.ToLower(name) == key {
			return p, nil
		}
	}
	return PeriodUnknown, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
}
