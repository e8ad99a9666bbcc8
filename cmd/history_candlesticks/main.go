// Command history_candlesticks fetches Tencent (700.HK) daily bars by offset and
// by date range and prints each bar on its own line.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"quote_backend/internal/feature/candlesticks/adapters/longport"
	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/candlesticks/transport/cli"
	"quote_backend/internal/feature/candlesticks/usecase"
	"quote_backend/internal/platform/config"
	"quote_backend/internal/platform/logger"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal(err)
	}
	logger.Setup(logger.Options{Path: cfg.LogPath, Level: os.Getenv("LOG_LEVEL")})

	qc, err := longport.NewQuoteContext(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer qc.Close()

	history := usecase.NewHistoryUsecase(qc)
	ctx := context.Background()
	hk := entity.MarketHK.Location()

	// get candlesticks by offset
	fmt.Println("get candlesticks by offset")
	fmt.Println("====================")
	candlesticks, err := history.ByOffset(ctx, usecase.OffsetQuery{
		Symbol:   "700.HK",
		Period:   entity.PeriodDay,
		Adjust:   entity.NoAdjust,
		Forward:  false,
		At:       time.Date(2023, 8, 18, 0, 0, 0, 0, hk),
		Count:    10,
		Sessions: entity.TradeSessionsNormal,
	})
	if err != nil {
		log.Fatal(err)
	}
	if _, err := cli.Print(os.Stdout, candlesticks); err != nil {
		log.Fatal(err)
	}

	// get candlesticks by date
	fmt.Println("get candlesticks by date")
	fmt.Println("====================")
	candlesticks, err = history.ByDate(ctx, usecase.DateQuery{
		Symbol:   "700.HK",
		Period:   entity.PeriodDay,
		Adjust:   entity.NoAdjust,
		Start:    time.Date(2022, 5, 5, 0, 0, 0, 0, hk),
		End:      time.Date(2022, 6, 23, 0, 0, 0, 0, hk),
		Sessions: entity.TradeSessionsNormal,
	})
	if err != nil {
		log.Fatal(err)
	}
	if _, err := cli.Print(os.Stdout, candlesticks); err != nil {
		log.Fatal(err)
	}
}
