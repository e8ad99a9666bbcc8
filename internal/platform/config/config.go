// Package config loads quote gateway credentials and client settings.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// DefaultHTTPURL is the global quote gateway.
	DefaultHTTPURL = "https://openapi.longportapp.com"
	// DefaultHTTPURLCN is used when LONGPORT_REGION=CN.
	DefaultHTTPURLCN = "https://openapi.longportapp.cn"
	// DefaultTimeout bounds a single gateway request.
	DefaultTimeout = 10 * time.Second
	// DefaultTwelveDataURL is the Twelve Data REST endpoint.
	DefaultTwelveDataURL = "https://api.twelvedata.com"
)

const (
	ProviderLongport   = "longport"
	ProviderAlpaca     = "alpaca"
	ProviderTwelveData = "twelvedata"
)

var (
	// ErrInvalidLanguage is returned for a LONGPORT_LANGUAGE outside en, zh-CN and zh-HK.
	ErrInvalidLanguage = errors.New("invalid language")
	// ErrInvalidProvider is returned for an unknown QUOTE_PROVIDER.
	ErrInvalidProvider = errors.New("invalid quote provider")
)

var languages = map[string]string{
	"en":    "en",
	"zh-cn": "zh-CN",
	"zh-hk": "zh-HK",
}

// Config holds everything needed to open a QuoteContext.
type Config struct {
	AppKey          string        // LONGPORT_APP_KEY
	AppSecret       string        // LONGPORT_APP_SECRET
	AccessToken     string        // LONGPORT_ACCESS_TOKEN
	HTTPURL         string        // LONGPORT_HTTP_URL
	Language        string        // LONGPORT_LANGUAGE
	EnableOvernight bool          // LONGPORT_ENABLE_OVERNIGHT
	LogPath         string        // LONGPORT_LOG_PATH
	Timeout         time.Duration // LONGPORT_TIMEOUT

	Provider     string // QUOTE_PROVIDER
	AlpacaKey    string // ALPACA_KEY
	AlpacaSecret string // ALPACA_SECRET

	TwelveDataKey string // TWELVE_DATA_API_KEY
	TwelveDataURL string // TWELVE_DATA_BASE_URL
}

// New builds a Config from explicit credentials with every other field defaulted.
func New(appKey, appSecret, accessToken string) Config {
	return Config{
		AppKey:      appKey,
		AppSecret:   appSecret,
		AccessToken: accessToken,
		HTTPURL:     DefaultHTTPURL,
		Language:    "en",
		Timeout:     DefaultTimeout,
		Provider:    ProviderLongport,

		TwelveDataURL: DefaultTwelveDataURL,
	}
}

// FromEnv loads .env if present, then reads the LONGPORT_* variables.
// Missing credentials are not an error here; NewQuoteContext rejects them.
func FromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("LONGPORT")
	v.AutomaticEnv()

	_ = v.BindEnv("provider", "QUOTE_PROVIDER")
	_ = v.BindEnv("alpaca_key", "ALPACA_KEY")
	_ = v.BindEnv("alpaca_secret", "ALPACA_SECRET")
	_ = v.BindEnv("twelvedata_key", "TWELVE_DATA_API_KEY")
	_ = v.BindEnv("twelvedata_url", "TWELVE_DATA_BASE_URL")

	v.SetDefault("language", "en")
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("enable_overnight", false)
	v.SetDefault("provider", ProviderLongport)
	v.SetDefault("twelvedata_url", DefaultTwelveDataURL)
	return v
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppKey:          strings.TrimSpace(v.GetString("app_key")),
		AppSecret:       strings.TrimSpace(v.GetString("app_secret")),
		AccessToken:     strings.TrimSpace(v.GetString("access_token")),
		HTTPURL:         strings.TrimRight(v.GetString("http_url"), "/"),
		EnableOvernight: v.GetBool("enable_overnight"),
		LogPath:         v.GetString("log_path"),
		Timeout:         v.GetDuration("timeout"),
		AlpacaKey:       v.GetString("alpaca_key"),
		AlpacaSecret:    v.GetString("alpaca_secret"),
		TwelveDataKey:   v.GetString("twelvedata_key"),
		TwelveDataURL:   strings.TrimRight(v.GetString("twelvedata_url"), "/"),
	}
	if cfg.TwelveDataURL == "" {
		cfg.TwelveDataURL = DefaultTwelveDataURL
	}

	if cfg.HTTPURL == "" {
		cfg.HTTPURL = DefaultHTTPURL
		if strings.EqualFold(v.GetString("region"), "CN") {
			cfg.HTTPURL = DefaultHTTPURLCN
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	lang, ok := languages[strings.ToLower(v.GetString("language"))]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrInvalidLanguage, v.GetString("language"))
	}
	cfg.Language = lang

	switch p := strings.ToLower(v.GetString("provider")); p {
	case ProviderLongport, ProviderAlpaca, ProviderTwelveData:
		cfg.Provider = p
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrInvalidProvider, p)
	}

	return cfg, nil
}

// HasCredentials reports whether all three gateway credentials are set.
func (c Config) HasCredentials() bool {
	return c.AppKey != "" && c.AppSecret != "" && c.AccessToken != ""
}
