package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/candlesticks/transport/cli"
	"quote_backend/internal/feature/candlesticks/transport/http/dto"
	"quote_backend/internal/feature/candlesticks/usecase"

	"github.com/spf13/cobra"
)

func newTradingDaysCmd(a *app) *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:     "trading-days MARKET",
		Short:   "Trading days of a market within one month",
		Example: `quotectl trading-days HK --start 2022-01-20 --end 2022-02-20`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			market, err := entity.ParseMarket(args[0])
			if err != nil {
				return err
			}
			from, err := entity.ParseTime(start, market.Location())
			if err != nil {
				return err
			}
			to, err := entity.ParseTime(end, market.Location())
			if err != nil {
				return err
			}
			return a.withCalendar(func(uc *usecase.CalendarUsecase, format cli.Format) error {
				days, err := uc.TradingDays(cmd.Context(), string(market), from, to)
				if err != nil {
					return err
				}
				resp := dto.NewTradingDaysResponse(market, days)
				if format == cli.FormatJSON {
					return json.NewEncoder(a.out).Encode(resp)
				}
				for _, d := range resp.TradingDays {
					fmt.Fprintln(a.out, d)
				}
				for _, d := range resp.HalfTradingDays {
					fmt.Fprintln(a.out, d, "half")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "First date, inclusive (default: today)")
	cmd.Flags().StringVar(&end, "end", "", "Last date, inclusive (default: start)")
	return cmd
}

func newTradingSessionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "trading-sessions [MARKET]",
		Short:   "Session hours per market in exchange time",
		Example: `quotectl trading-sessions US`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var market string
			if len(args) == 1 {
				market = args[0]
			}
			return a.withCalendar(func(uc *usecase.CalendarUsecase, format cli.Format) error {
				sessions, err := uc.TradingSessions(cmd.Context(), market)
				if err != nil {
					return err
				}
				resp := dto.NewMarketSessionsResponse(sessions)
				if format == cli.FormatJSON {
					enc := json.NewEncoder(a.out)
					for _, m := range resp {
						if err := enc.Encode(m); err != nil {
							return err
						}
					}
					return nil
				}
				for _, m := range resp {
					windows := make([]string, 0, len(m.Sessions))
					for _, s := range m.Sessions {
						windows = append(windows, fmt.Sprintf("%s %s-%s", s.Session, s.Begin, s.End))
					}
					fmt.Fprintf(a.out, "%s (%s): %s\n", m.Market, m.Timezone, strings.Join(windows, ", "))
				}
				return nil
			})
		},
	}
}

// withCalendar opens the provider's calendar, runs fn and closes it again.
func (a *app) withCalendar(fn func(uc *usecase.CalendarUsecase, format cli.Format) error) error {
	format, err := cli.ParseFormat(a.format)
	if err != nil {
		return err
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	cal, closeCalendar, err := a.openCalendar(cfg)
	if err != nil {
		return err
	}
	defer closeCalendar()
	return fn(usecase.NewCalendarUsecase(cal), format)
}
