package entity

import "errors"

var (
	// ErrInvalidSymbol is returned when an instrument identifier is not CODE.MARKET.
	ErrInvalidSymbol = errors.New("invalid symbol")

	// ErrInvalidPeriod is returned for an unknown or unsupported period.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrInvalidAdjustType is returned for an unknown adjustment mode.
	ErrInvalidAdjustType = errors.New("invalid adjust type")

	// ErrInvalidTradeSessions is returned for an unknown trade session filter.
	ErrInvalidTradeSessions = errors.New("invalid trade sessions")
)

// ErrInvalidTime is returned for a date or time in none of the accepted layouts.
var ErrInvalidTime = errors.New("invalid time")

// ErrInvalidMarket is returned for a market code other than US, HK, CN or SG.
var ErrInvalidMarket = errors.New("invalid market")
