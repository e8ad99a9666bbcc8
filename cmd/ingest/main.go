package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"quote_backend/internal/app/di"
	"quote_backend/internal/platform/config"
	"quote_backend/internal/platform/db"
	"quote_backend/internal/platform/logger"
)

// defaultDays is how far back the job fetches when INGEST_DAYS is unset.
const defaultDays = 365

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal(err)
	}
	logger.Setup(logger.Options{Path: cfg.LogPath, Level: os.Getenv("LOG_LEVEL")})

	gdb, err := db.OpenDB(di.Models()...)
	if err != nil {
		log.Fatal(err)
	}

	// ingest writes fresh history, so it bypasses the cache
	market, err := di.NewMarket(cfg, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer market.Close()

	days := defaultDays
	if n, err := strconv.Atoi(os.Getenv("INGEST_DAYS")); err == nil && n > 0 {
		days = n
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	symbols, err := di.NewWatchlist(gdb).ActiveCodes(ctx)
	if err != nil {
		log.Fatal("failed to load symbols:", err)
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)
	if err := di.NewIngest(gdb, market.Repo, 5).IngestAll(ctx, symbols, start, end); err != nil {
		log.Fatal(err)
	}
	log.Println("ingest ok")
}
