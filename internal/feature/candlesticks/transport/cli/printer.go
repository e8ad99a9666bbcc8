// Package cli writes candlesticks to a terminal or pipe, one record per line.
package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/candlesticks/transport/http/dto"
)

// Format selects the per-line encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat accepts "text" (or empty) and "json".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Print writes each candlestick's default textual form on its own line, in order.
// It returns the number of lines written.
func Print(w io.Writer, candles []entity.Candlestick) (int, error) {
	return Write(w, FormatText, candles)
}

// Write emits one line per candlestick in the given format.
func Write(w io.Writer, f Format, candles []entity.Candlestick) (int, error) {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	n := 0
	for _, c := range candles {
		var err error
		switch f {
		case FormatJSON:
			// Encode terminates each value with a newline
			err = enc.Encode(dto.FromEntity(c))
		default:
			_, err = fmt.Fprintln(bw, c)
		}
		if err != nil {
			return n, err
		}
		n++
	}
	return n, bw.Flush()
}
