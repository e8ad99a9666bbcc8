// Package parquet exports candlesticks to GZIP-compressed parquet files.
package parquet

import (
	"fmt"
	"log/slog"

	"quote_backend/internal/feature/candlesticks/domain/entity"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// Row is the parquet schema of one exported candlestick.
type Row struct {
	Symbol       string  `parquet:"name=symbol, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Period       string  `parquet:"name=period, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Timestamp    int64   `parquet:"name=timestamp, type=INT64, encoding=DELTA_BINARY_PACKED"`
	Date         string  `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Open         float64 `parquet:"name=open, type=DOUBLE, encoding=PLAIN"`
	High         float64 `parquet:"name=high, type=DOUBLE, encoding=PLAIN"`
	Low          float64 `parquet:"name=low, type=DOUBLE, encoding=PLAIN"`
	Close        float64 `parquet:"name=close, type=DOUBLE, encoding=PLAIN"`
	Volume       int64   `parquet:"name=volume, type=INT64, encoding=DELTA_BINARY_PACKED"`
	Turnover     string  `parquet:"name=turnover, type=BYTE_ARRAY, convertedtype=UTF8"`
	TradeSession string  `parquet:"name=trade_session, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

func toRow(c entity.Candlestick) Row {
	return Row{
		Symbol:       c.Symbol,
		Period:       c.Period.String(),
		Timestamp:    c.Timestamp.Unix(),
		Date:         c.Timestamp.Format("2006-01-02"),
		Open:         c.Open.InexactFloat64(),
		High:         c.High.InexactFloat64(),
		Low:          c.Low.InexactFloat64(),
		Close:        c.Close.InexactFloat64(),
		Volume:       c.Volume,
		Turnover:     c.Turnover.String(),
		TradeSession: c.TradeSession.String(),
	}
}

// WriteCandlesticks writes candles to path, replacing any existing file.
// Turnover stays a decimal string since it routinely exceeds float64 precision.
func WriteCandlesticks(path string, candles []entity.Candlestick) (err error) {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	defer func() {
		if cerr := fw.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close parquet file: %w", cerr)
		}
	}()

	pw, err := writer.NewParquetWriter(fw, new(Row), 4)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_GZIP
	pw.PageSize = 8 * 1024

	for _, c := range candles {
		if err := pw.Write(toRow(c)); err != nil {
			return fmt.Errorf("write parquet row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finalize parquet file: %w", err)
	}

	slog.Info("wrote parquet export", "path", path, "rows", len(candles))
	return nil
}
