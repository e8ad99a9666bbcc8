package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"quote_backend/internal/app/di"
	"quote_backend/internal/feature/candlesticks/adapters/parquet"
	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/candlesticks/transport/cli"
	"quote_backend/internal/feature/candlesticks/usecase"
	"quote_backend/internal/platform/config"
	"quote_backend/internal/platform/logger"

	"github.com/spf13/cobra"
)

// app holds what the subcommands share. openMarket and openCalendar are swapped out in tests.
type app struct {
	out          io.Writer
	openMarket   func(cfg config.Config) (usecase.MarketRepository, func(), error)
	openCalendar func(cfg config.Config) (usecase.CalendarRepository, func(), error)
	loadConfig   func() (config.Config, error)

	format      string
	parquetPath string
	period      string
	adjust      string
	sessions    string
	logLevel    string
}

func defaultApp() *app {
	return &app{
		out:        os.Stdout,
		loadConfig: config.FromEnv,
		openMarket: func(cfg config.Config) (usecase.MarketRepository, func(), error) {
			m, err := di.NewMarket(cfg, nil)
			if err != nil {
				return nil, nil, err
			}
			return m.Repo, m.Close, nil
		},
		openCalendar: func(cfg config.Config) (usecase.CalendarRepository, func(), error) {
			m, err := di.NewMarket(cfg, nil)
			if err != nil {
				return nil, nil, err
			}
			if m.Calendar == nil {
				m.Close()
				return nil, nil, fmt.Errorf("provider %q has no trading calendar: %w", cfg.Provider, usecase.ErrUnsupported)
			}
			return m.Calendar, m.Close, nil
		},
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "quotectl",
		Short:         "Query historical candlesticks",
		Long:          `quotectl fetches candlesticks from the configured quote provider and prints one bar per line.`,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Setup(logger.Options{Level: a.logLevel})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.format, "format", "f", "text", "Output format (text, json)")
	pf.StringVar(&a.parquetPath, "parquet", "", "Also write the bars to this Parquet file")
	pf.StringVarP(&a.period, "period", "p", "day", "Bar period (1m, 5m, 1h, day, week, month, ...)")
	pf.StringVar(&a.adjust, "adjust", "none", "Price adjustment (none, forward)")
	pf.StringVar(&a.sessions, "sessions", "normal", "Trade sessions (normal, all)")
	pf.StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newOffsetCmd(a),
		newDateCmd(a),
		newLatestCmd(a),
		newTradingDaysCmd(a),
		newTradingSessionsCmd(a),
		newIngestCmd(a),
		newTokenCmd(a),
	)
	return root
}

// options parses the shared bar options.
func (a *app) options() (entity.Period, entity.AdjustType, entity.TradeSessions, error) {
	p, err := entity.ParsePeriod(a.period)
	if err != nil {
		return 0, 0, 0, err
	}
	adj, err := entity.ParseAdjustType(a.adjust)
	if err != nil {
		return 0, 0, 0, err
	}
	s, err := entity.ParseTradeSessions(a.sessions)
	if err != nil {
		return 0, 0, 0, err
	}
	return p, adj, s, nil
}

// withHistory opens the market, runs fn and closes it again.
func (a *app) withHistory(fn func(h *usecase.HistoryUsecase) ([]entity.Candlestick, error)) error {
	format, err := cli.ParseFormat(a.format)
	if err != nil {
		return err
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	market, closeMarket, err := a.openMarket(cfg)
	if err != nil {
		return err
	}
	defer closeMarket()

	candles, err := fn(usecase.NewHistoryUsecase(market))
	if err != nil {
		return err
	}
	if _, err := cli.Write(a.out, format, candles); err != nil {
		return err
	}
	if a.parquetPath != "" {
		if err := parquet.WriteCandlesticks(a.parquetPath, candles); err != nil {
			return fmt.Errorf("parquet export: %w", err)
		}
		slog.Info("wrote parquet", "path", a.parquetPath, "rows", len(candles))
	}
	return nil
}
