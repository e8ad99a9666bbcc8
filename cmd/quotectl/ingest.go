package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"quote_backend/internal/app/di"
	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/platform/db"

	"github.com/spf13/cobra"
)

func newIngestCmd(a *app) *cobra.Command {
	var (
		symbols   string
		days      int
		perSecond int
	)
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Store day, week and month bars in the database",
		Long:  `ingest reads the watchlist (or --symbols) and upserts recent history using the DB_* settings.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return errors.New("--days must be positive")
			}
			adj, err := entity.ParseAdjustType(a.adjust)
			if err != nil {
				return err
			}
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			gdb, err := db.OpenDB(di.Models()...)
			if err != nil {
				return err
			}
			market, closeMarket, err := a.openMarket(cfg)
			if err != nil {
				return err
			}
			defer closeMarket()

			codes := splitSymbols(symbols)
			if len(codes) == 0 {
				if codes, err = di.NewWatchlist(gdb).ActiveCodes(cmd.Context()); err != nil {
					return fmt.Errorf("failed to load symbols: %w", err)
				}
			}

			end := time.Now()
			return di.NewIngest(gdb, market, perSecond).
				WithAdjust(adj).
				IngestAll(cmd.Context(), codes, end.AddDate(0, 0, -days), end)
		},
	}
	cmd.Flags().StringVar(&symbols, "symbols", "", "Comma-separated symbols (default: active watchlist)")
	cmd.Flags().IntVar(&days, "days", 365, "How many days back to fetch")
	cmd.Flags().IntVar(&perSecond, "rate", 5, "Requests per second")
	return cmd
}

func splitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
