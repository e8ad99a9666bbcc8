package main

import (
	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/candlesticks/usecase"

	"github.com/spf13/cobra"
)

func newOffsetCmd(a *app) *cobra.Command {
	var (
		at      string
		count   int
		forward bool
	)
	cmd := &cobra.Command{
		Use:     "offset SYMBOL",
		Short:   "Bars counted from an anchor time",
		Example: `quotectl offset 700.HK --at 2023-08-18 --count 10`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sym, err := entity.ParseSymbol(args[0])
			if err != nil {
				return err
			}
			p, adj, sessions, err := a.options()
			if err != nil {
				return err
			}
			anchor, err := entity.ParseTime(at, sym.Market.Location())
			if err != nil {
				return err
			}
			return a.withHistory(func(h *usecase.HistoryUsecase) ([]entity.Candlestick, error) {
				return h.ByOffset(cmd.Context(), usecase.OffsetQuery{
					Symbol:   sym.String(),
					Period:   p,
					Adjust:   adj,
					Forward:  forward,
					At:       anchor,
					Count:    count,
					Sessions: sessions,
				})
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Anchor time in the market's zone (default: latest)")
	cmd.Flags().IntVarP(&count, "count", "n", usecase.DefaultCount, "Number of bars (1-1000)")
	cmd.Flags().BoolVar(&forward, "forward", false, "Bars after the anchor instead of up to it")
	return cmd
}

func newDateCmd(a *app) *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:     "date SYMBOL",
		Short:   "Bars whose date falls in [start, end]",
		Example: `quotectl date 700.HK --start 2022-05-05 --end 2022-06-23`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sym, err := entity.ParseSymbol(args[0])
			if err != nil {
				return err
			}
			p, adj, sessions, err := a.options()
			if err != nil {
				return err
			}
			loc := sym.Market.Location()
			from, err := entity.ParseTime(start, loc)
			if err != nil {
				return err
			}
			to, err := entity.ParseTime(end, loc)
			if err != nil {
				return err
			}
			return a.withHistory(func(h *usecase.HistoryUsecase) ([]entity.Candlestick, error) {
				return h.ByDate(cmd.Context(), usecase.DateQuery{
					Symbol:   sym.String(),
					Period:   p,
					Adjust:   adj,
					Start:    from,
					End:      to,
					Sessions: sessions,
				})
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "First date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "Last date, inclusive (YYYY-MM-DD)")
	return cmd
}

func newLatestCmd(a *app) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "latest SYMBOL",
		Short: "Most recent bars",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sym, err := entity.ParseSymbol(args[0])
			if err != nil {
				return err
			}
			p, adj, sessions, err := a.options()
			if err != nil {
				return err
			}
			return a.withHistory(func(h *usecase.HistoryUsecase) ([]entity.Candlestick, error) {
				return h.Latest(cmd.Context(), usecase.LatestQuery{
					Symbol:   sym.String(),
					Period:   p,
					Adjust:   adj,
					Count:    count,
					Sessions: sessions,
				})
			})
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", usecase.DefaultCount, "Number of bars (1-1000)")
	return cmd
}
