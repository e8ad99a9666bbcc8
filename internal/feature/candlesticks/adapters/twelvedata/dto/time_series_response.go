// Package dto defines the Twelve Data time_series payload.
package dto

// TimeSeriesResponse is the body of GET /time_series.
// Errors come back with Status "error", often under HTTP 200.
type TimeSeriesResponse struct {
	Status  string          `json:"status"`
	Code    int             `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
	Meta    TimeSeriesMeta  `json:"meta"`
	Values  []TimeSeriesBar `json:"values"`
}

type TimeSeriesMeta struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	Exchange string `json:"exchange"`
	Timezone string `json:"exchange_timezone"`
}

// TimeSeriesBar carries prices as decimal strings. Volume is absent for some instruments.
type TimeSeriesBar struct {
	Datetime string `json:"datetime"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
	Volume   string `json:"volume,omitempty"`
}
