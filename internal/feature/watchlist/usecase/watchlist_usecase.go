// Package usecase implements the watchlist operations.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	candles "quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/watchlist/domain/entity"
)

var (
	// ErrInvalidInstrument is returned when a code does not parse as CODE.MARKET or the name is empty.
	ErrInvalidInstrument = errors.New("invalid instrument")

	// ErrNotFound is returned when deactivating a code that is not on the watchlist.
	ErrNotFound = errors.New("instrument not found")
)

// InstrumentRepository abstracts persistence of watchlist instruments.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type InstrumentRepository interface {
	ListActive(ctx context.Context, market string) ([]entity.Instrument, error)
	ListActiveCodes(ctx context.Context) ([]string, error)
	Upsert(ctx context.Context, in *entity.Instrument) error
	SetActive(ctx context.Context, code string, active bool) (bool, error)
}

// WatchlistUsecase manages the instruments the service tracks.
type WatchlistUsecase struct {
	repo InstrumentRepository
}

// NewWatchlistUsecase creates a new WatchlistUsecase with the given repository.
func NewWatchlistUsecase(r InstrumentRepository) *WatchlistUsecase {
	return &WatchlistUsecase{repo: r}
}

// ListActive returns active instruments ordered by sort key. An empty market lists all.
func (u *WatchlistUsecase) ListActive(ctx context.Context, market string) ([]entity.Instrument, error) {
	return u.repo.ListActive(ctx, strings.ToUpper(strings.TrimSpace(market)))
}

// ActiveCodes returns the codes the ingest job should fetch.
func (u *WatchlistUsecase) ActiveCodes(ctx context.Context) ([]string, error) {
	return u.repo.ListActiveCodes(ctx)
}

// Add validates and stores an instrument, reactivating it if it already exists.
func (u *WatchlistUsecase) Add(ctx context.Context, code, name string, sortKey int) (*entity.Instrument, error) {
	sym, err := candles.ParseSymbol(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInstrument, err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInstrument)
	}

	in := &entity.Instrument{
		Code:     sym.String(),
		Name:     name,
		Market:   string(sym.Market),
		IsActive: true,
		SortKey:  sortKey,
	}
	if err := u.repo.Upsert(ctx, in); err != nil {
		return nil, fmt.Errorf("failed to save instrument %s: %w", in.Code, err)
	}
	return in, nil
}

// Deactivate removes code from the active watchlist without deleting its history.
func (u *WatchlistUsecase) Deactivate(ctx context.Context, code string) error {
	sym, err := candles.ParseSymbol(code)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInstrument, err)
	}
	found, err := u.repo.SetActive(ctx, sym.String(), false)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, sym.String())
	}
	return nil
}
