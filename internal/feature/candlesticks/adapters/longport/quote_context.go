// Package longport is a quote gateway client exposing candlestick queries.
package longport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"quote_backend/internal/feature/candlesticks/adapters/longport/dto"
	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/candlesticks/usecase"
	"quote_backend/internal/platform/config"
	platformhttp "quote_backend/internal/platform/http"
	"quote_backend/internal/shared/ratelimiter"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
)

const (
	candlesticksPath        = "/v1/quote/candlesticks"
	historyCandlesticksPath = "/v1/quote/history/candlesticks"

	queryByOffset = 1
	queryByDate   = 2

	directionBackward = 0
	directionForward  = 1

	// RetryCount is the number of attempts per request.
	RetryCount = 3
	// RequestsPerSecond is the gateway quota for quote queries.
	RequestsPerSecond = 10

	maxBodySize = 8 << 20
)

// QuoteContext queries candlesticks from the quote gateway.
// It is safe for concurrent use.
type QuoteContext struct {
	cfg     config.Config
	client  *http.Client
	signer  *platformhttp.Signer
	limiter ratelimiter.RateLimiterInterface
	retries int
	backoff func() backoff.BackOff

	sessions sessionCache
	now      func() time.Time
}

// QuoteContext must satisfy the usecase's provider interface.
var _ usecase.MarketRepository = (*QuoteContext)(nil)

// Option customises a QuoteContext.
type Option func(*QuoteContext)

// WithHTTPClient replaces the default client built from cfg.Timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(q *QuoteContext) { q.client = c }
}

// WithRateLimiter replaces the default 10 requests per second limiter.
func WithRateLimiter(l ratelimiter.RateLimiterInterface) Option {
	return func(q *QuoteContext) { q.limiter = l }
}

// WithRetry sets the attempt count and the backoff policy between attempts.
func WithRetry(attempts int, policy func() backoff.BackOff) Option {
	return func(q *QuoteContext) {
		if attempts > 0 {
			q.retries = attempts
		}
		if policy != nil {
			q.backoff = policy
		}
	}
}

// NewQuoteContext opens a QuoteContext for cfg.
func NewQuoteContext(cfg config.Config, opts ...Option) (*QuoteContext, error) {
	if !cfg.HasCredentials() {
		return nil, ErrMissingCredentials
	}
	if cfg.HTTPURL == "" {
		cfg.HTTPURL = config.DefaultHTTPURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultTimeout
	}

	q := &QuoteContext{
		cfg:     cfg,
		client:  platformhttp.NewHTTPClient(cfg.Timeout),
		signer:  platformhttp.NewSigner(cfg.AppKey, cfg.AppSecret, cfg.AccessToken),
		limiter: ratelimiter.PerSecond("longport", RequestsPerSecond),
		retries: RetryCount,
		backoff: defaultBackOff,
		now:     time.Now,
	}
	for _, o := range opts {
		o(q)
	}
	return q, nil
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 0 // bounded by attempts and ctx
	return b
}

// Close releases idle connections.
func (q *QuoteContext) Close() {
	q.client.CloseIdleConnections()
}

// Candlesticks returns the latest count bars.
func (q *QuoteContext) Candlesticks(ctx context.Context, symbol string, period entity.Period, count int, adjust entity.AdjustType, sessions entity.TradeSessions) ([]entity.Candlestick, error) {
	v := baseParams(symbol, period, adjust, sessions)
	v.Set("count", strconv.Itoa(count))
	return q.fetch(ctx, candlesticksPath, v, symbol)
}

// HistoryCandlesticksByOffset returns count bars before (forward=false) or after (forward=true) at.
// at is read in its own location; the zero time anchors at the latest bar.
func (q *QuoteContext) HistoryCandlesticksByOffset(ctx context.Context, symbol string, period entity.Period, adjust entity.AdjustType, forward bool, at time.Time, count int, sessions entity.TradeSessions) ([]entity.Candlestick, error) {
	v := baseParams(symbol, period, adjust, sessions)
	v.Set("query_type", strconv.Itoa(queryByOffset))
	dir := directionBackward
	if forward {
		dir = directionForward
	}
	v.Set("direction", strconv.Itoa(dir))
	v.Set("date", formatDate(at))
	v.Set("minute", formatMinute(at))
	v.Set("count", strconv.Itoa(count))
	return q.fetch(ctx, historyCandlesticksPath, v, symbol)
}

// HistoryCandlesticksByDate returns the bars between start and end; a zero date leaves that side open.
func (q *QuoteContext) HistoryCandlesticksByDate(ctx context.Context, symbol string, period entity.Period, adjust entity.AdjustType, start, end time.Time, sessions entity.TradeSessions) ([]entity.Candlestick, error) {
	v := baseParams(symbol, period, adjust, sessions)
	v.Set("query_type", strconv.Itoa(queryByDate))
	v.Set("start_date", formatDate(start))
	v.Set("end_date", formatDate(end))
	return q.fetch(ctx, historyCandlesticksPath, v, symbol)
}

// HistoryByOffset implements usecase.MarketRepository.
func (q *QuoteContext) HistoryByOffset(ctx context.Context, oq usecase.OffsetQuery) ([]entity.Candlestick, error) {
	return q.HistoryCandlesticksByOffset(ctx, oq.Symbol, oq.Period, oq.Adjust, oq.Forward, oq.At, oq.Count, oq.Sessions)
}

// HistoryByDate implements usecase.MarketRepository.
func (q *QuoteContext) HistoryByDate(ctx context.Context, dq usecase.DateQuery) ([]entity.Candlestick, error) {
	return q.HistoryCandlesticksByDate(ctx, dq.Symbol, dq.Period, dq.Adjust, dq.Start, dq.End, dq.Sessions)
}

// Latest implements usecase.MarketRepository.
func (q *QuoteContext) Latest(ctx context.Context, lq usecase.LatestQuery) ([]entity.Candlestick, error) {
	return q.Candlesticks(ctx, lq.Symbol, lq.Period, lq.Count, lq.Adjust, lq.Sessions)
}

func baseParams(symbol string, period entity.Period, adjust entity.AdjustType, sessions entity.TradeSessions) url.Values {
	v := url.Values{}
	v.Set("symbol", symbol)
	v.Set("period", strconv.Itoa(int(period)))
	v.Set("adjust_type", strconv.Itoa(int(adjust)))
	v.Set("trade_sessions", strconv.Itoa(int(sessions)))
	return v
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("20060102")
}

func formatMinute(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("1504")
}

func (q *QuoteContext) fetch(ctx context.Context, path string, params url.Values, symbol string) ([]entity.Candlestick, error) {
	var data dto.CandlesticksData
	if err := q.get(ctx, path, params, &data); err != nil {
		return nil, err
	}
	return toEntities(data.Candlesticks, locationOf(symbol))
}

// get performs a signed GET with rate limiting and retries and decodes the
// envelope's data into out.
// Rate-limit (429) and server (5xx) failures are retried; anything else fails at once.
func (q *QuoteContext) get(ctx context.Context, path string, params url.Values, out any) error {
	u := q.cfg.HTTPURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var env dto.Envelope
	operation := func() error {
		if err := q.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		q.signer.Sign(req, nil)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Accept-Language", q.cfg.Language)

		res, err := q.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		defer func() {
			if err := res.Body.Close(); err != nil {
				slog.Warn("failed to close response body", "error", err)
			}
		}()

		raw, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
		if err != nil {
			return err
		}

		if res.StatusCode >= 400 {
			apiErr := errorFromBody(res.StatusCode, raw)
			if apiErr.Temporary() {
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}

		env = dto.Envelope{}
		if err := json.Unmarshal(raw, &env); err != nil {
			return backoff.Permanent(fmt.Errorf("longport: decode response: %w", err))
		}
		if env.Code != 0 {
			return backoff.Permanent(&APIError{Status: res.StatusCode, Code: env.Code, Message: env.Message})
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(q.backoff(), uint64(q.retries-1)), ctx)
	notify := func(err error, wait time.Duration) {
		slog.Warn("quote request failed, retrying", "path", path, "wait", wait, "error", err)
	}
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("longport: decode %s data: %w", path, err)
	}
	return nil
}

func errorFromBody(status int, raw []byte) *APIError {
	var body dto.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil && (body.Code != 0 || body.Message != "") {
		return &APIError{Status: status, Code: body.Code, Message: body.Message}
	}
	msg := http.StatusText(status)
	if len(raw) > 0 && len(raw) < 512 {
		msg = string(raw)
	}
	return &APIError{Status: status, Message: msg}
}

func locationOf(symbol string) *time.Location {
	sym, err := entity.ParseSymbol(symbol)
	if err != nil {
		return time.UTC
	}
	return sym.Market.Location()
}

func toEntities(in []dto.Candlestick, loc *time.Location) ([]entity.Candlestick, error) {
	out := make([]entity.Candlestick, 0, len(in))
	for _, c := range in {
		e, err := toEntity(c, loc)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func toEntity(c dto.Candlestick, loc *time.Location) (entity.Candlestick, error) {
	var (
		e    entity.Candlestick
		errs []error
	)
	parse := func(name, s string) decimal.Decimal {
		d, err := decimal.NewFromString(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("parse %s %q: %w", name, s, err))
		}
		return d
	}
	e.Close = parse("close", c.Close)
	e.Open = parse("open", c.Open)
	e.Low = parse("low", c.Low)
	e.High = parse("high", c.High)
	e.Turnover = parse("turnover", c.Turnover)
	if len(errs) > 0 {
		return entity.Candlestick{}, fmt.Errorf("longport: %w", errors.Join(errs...))
	}
	e.Volume = c.Volume
	e.Timestamp = time.Unix(c.Timestamp, 0).In(loc)
	e.TradeSession = entity.TradeSession(c.TradeSession)
	return e, nil
}
