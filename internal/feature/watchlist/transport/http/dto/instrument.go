// Package dto defines data transfer objects for the watchlist HTTP API.
package dto

// InstrumentItem is the public view of a watchlist entry.
type InstrumentItem struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Market string `json:"market"`
}

// AddInstrumentRequest is the body of POST /symbols.
type AddInstrumentRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	SortKey int    `json:"sort_key"`
}
