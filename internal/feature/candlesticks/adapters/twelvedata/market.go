// Package twelvedata serves candlesticks from the Twelve Data REST API.
package twelvedata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"quote_backend/internal/feature/candlesticks/adapters/twelvedata/dto"
	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/candlesticks/usecase"
	"quote_backend/internal/shared/ratelimiter"

	"github.com/shopspring/decimal"
)

const (
	// maxOutputSize is the largest outputsize the API accepts.
	maxOutputSize = 5000
	// RequestsPerMinute is the free plan quota.
	RequestsPerMinute = 8
)

var (
	// ErrMissingAPIKey is returned by NewTwelveDataMarket when no key is configured.
	ErrMissingAPIKey = errors.New("twelvedata: api key is not set")
	// ErrUnsupportedPeriod is returned for periods with no Twelve Data interval.
	ErrUnsupportedPeriod = fmt.Errorf("twelvedata: unsupported period: %w", usecase.ErrUnsupported)
)

// APIError is a status "error" body or a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("twelvedata http %d", e.Status)
	}
	return fmt.Sprintf("twelvedata %d: %s", e.Status, e.Message)
}

// TwelveDataMarket is a MarketRepository over /time_series.
type TwelveDataMarket struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
}

var _ usecase.MarketRepository = (*TwelveDataMarket)(nil)

// Option customises a TwelveDataMarket.
type Option func(*TwelveDataMarket)

// WithRateLimiter replaces the default RequestsPerMinute limiter, e.g. for paid plans.
func WithRateLimiter(l ratelimiter.RateLimiterInterface) Option {
	return func(t *TwelveDataMarket) { t.limiter = l }
}

// NewTwelveDataMarket creates a client for baseURL. The client should carry its own timeout.
func NewTwelveDataMarket(apiKey, baseURL string, client *http.Client, opts ...Option) (*TwelveDataMarket, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	t := &TwelveDataMarket{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  client,
		limiter: ratelimiter.NewRateLimiter("twelvedata", RequestsPerMinute, time.Minute),
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// HistoryByOffset requests count bars ending at q.At, or a forward window starting there.
func (t *TwelveDataMarket) HistoryByOffset(ctx context.Context, q usecase.OffsetQuery) ([]entity.Candlestick, error) {
	r := request{symbol: q.Symbol, period: q.Period, adjust: q.Adjust, sessions: q.Sessions}
	switch {
	case q.At.IsZero():
		r.size = q.Count
	case q.Forward:
		r.start = q.At
		r.end = q.At.Add(q.Period.Lookback(q.Count))
		r.size = maxOutputSize
	default:
		// end_date is exclusive
		r.end = q.At.Add(time.Second)
		r.size = q.Count
	}
	return t.timeSeries(ctx, r)
}

// HistoryByDate requests every bar between the two calendar dates.
func (t *TwelveDataMarket) HistoryByDate(ctx context.Context, q usecase.DateQuery) ([]entity.Candlestick, error) {
	r := request{symbol: q.Symbol, period: q.Period, adjust: q.Adjust, sessions: q.Sessions, size: maxOutputSize, dateOnly: true}
	if !q.Start.IsZero() {
		r.start = q.Start
	}
	if !q.End.IsZero() {
		r.end = q.End.AddDate(0, 0, 1)
	}
	return t.timeSeries(ctx, r)
}

// Latest requests the most recent q.Count bars.
func (t *TwelveDataMarket) Latest(ctx context.Context, q usecase.LatestQuery) ([]entity.Candlestick, error) {
	return t.timeSeries(ctx, request{symbol: q.Symbol, period: q.Period, adjust: q.Adjust, sessions: q.Sessions, size: q.Count})
}

type request struct {
	symbol     string
	period     entity.Period
	adjust     entity.AdjustType
	sessions   entity.TradeSessions
	start, end time.Time
	size       int
	dateOnly   bool
}

func (t *TwelveDataMarket) timeSeries(ctx context.Context, r request) ([]entity.Candlestick, error) {
	sym, err := entity.ParseSymbol(r.symbol)
	if err != nil {
		return nil, err
	}
	interval, err := Interval(r.period)
	if err != nil {
		return nil, err
	}
	loc := sym.Market.Location()

	q := url.Values{}
	code, exchange := instrument(sym)
	q.Set("symbol", code)
	if exchange != "" {
		q.Set("exchange", exchange)
	}
	q.Set("interval", interval)
	q.Set("outputsize", strconv.Itoa(min(max(r.size, 1), maxOutputSize)))
	q.Set("timezone", loc.String())
	q.Set("order", "ASC")
	q.Set("adjust", adjustParam(r.adjust))
	if r.sessions == entity.TradeSessionsAll && sym.Market == entity.MarketUS {
		q.Set("prepost", "true")
	}
	layout := time.DateTime
	if r.dateOnly {
		layout = time.DateOnly
	}
	if !r.start.IsZero() {
		q.Set("start_date", r.start.In(loc).Format(layout))
	}
	if !r.end.IsZero() {
		q.Set("end_date", r.end.In(loc).Format(layout))
	}
	q.Set("apikey", t.apiKey)

	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/time_series?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	res, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, &APIError{Status: res.StatusCode}
	}

	var body dto.TimeSeriesResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("twelvedata: decode: %w", err)
	}
	if body.Status == "error" {
		return nil, &APIError{Status: body.Code, Message: body.Message}
	}

	out := make([]entity.Candlestick, 0, len(body.Values))
	for _, v := range body.Values {
		c, err := toEntity(v, loc)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func toEntity(v dto.TimeSeriesBar, loc *time.Location) (entity.Candlestick, error) {
	ts, err := time.ParseInLocation(time.DateTime, v.Datetime, loc)
	if err != nil {
		ts, err = time.ParseInLocation(time.DateOnly, v.Datetime, loc)
		if err != nil {
			return entity.Candlestick{}, fmt.Errorf("parse time %q: %w", v.Datetime, err)
		}
	}

	var prices [4]decimal.Decimal
	for i, s := range []string{v.Open, v.High, v.Low, v.Close} {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return entity.Candlestick{}, fmt.Errorf("parse price %q at %s: %w", s, v.Datetime, err)
		}
		prices[i] = d
	}

	var vol int64
	if v.Volume != "" {
		vol, err = strconv.ParseInt(v.Volume, 10, 64)
		if err != nil {
			return entity.Candlestick{}, fmt.Errorf("parse volume %q: %w", v.Volume, err)
		}
	}

	// turnover is not published
	return entity.Candlestick{
		Open:         prices[0],
		High:         prices[1],
		Low:          prices[2],
		Close:        prices[3],
		Volume:       vol,
		Turnover:     decimal.Zero,
		Timestamp:    ts,
		TradeSession: entity.TradeSessionIntraday,
	}, nil
}

// instrument maps a symbol onto Twelve Data's symbol and exchange parameters.
func instrument(s entity.Symbol) (code, exchange string) {
	switch s.Suffix {
	case "HK":
		if n, err := strconv.Atoi(s.Code); err == nil {
			return fmt.Sprintf("%04d", n), "HKEX"
		}
		return s.Code, "HKEX"
	case "SH":
		return s.Code, "SSE"
	case "SZ":
		return s.Code, "SZSE"
	case "SG":
		return s.Code, "SGX"
	}
	return s.Code, ""
}

// Interval returns the Twelve Data interval name for p.
func Interval(p entity.Period) (string, error) {
	switch p {
	case entity.PeriodOneMinute, entity.PeriodFiveMinute, entity.PeriodFifteenMinute,
		entity.PeriodThirtyMinute, entity.PeriodFortyFiveMinute:
		return strconv.Itoa(int(p)) + "min", nil
	case entity.PeriodSixtyMinute, entity.PeriodTwoHour, entity.PeriodFourHour:
		return strconv.Itoa(int(p)/60) + "h", nil
	case entity.PeriodDay:
		return "1day", nil
	case entity.PeriodWeek:
		return "1week", nil
	case entity.PeriodMonth:
		return "1month", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedPeriod, p)
}

func adjustParam(a entity.AdjustType) string {
	if a == entity.ForwardAdjust {
		return "all"
	}
	return "none"
}
