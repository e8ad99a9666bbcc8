// Package db opens the gorm connection used by the candlestick store and the watchlist.
package db

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	gmysql "gorm.io/driver/mysql"
	gpostgres "gorm.io/driver/postgres"
	gsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrUnknownDriver is returned for a DB_DRIVER other than mysql, postgres or sqlite.
var ErrUnknownDriver = errors.New("unknown database driver")

// retryInterval is the pause between connection attempts.
var retryInterval = 3 * time.Second

// Config holds database connection settings.
type Config struct {
	Driver       string // DB_DRIVER, default mysql
	User         string
	Password     string
	Name         string
	Host         string
	Port         string
	InstanceName string // Cloud SQL instance; takes precedence over Host/Port
	Path         string // sqlite file
}

// LoadConfigFromEnv reads DB_* variables and INSTANCE_CONNECTION_NAME.
func LoadConfigFromEnv() Config {
	driver := strings.ToLower(os.Getenv("DB_DRIVER"))
	if driver == "" {
		driver = DriverMySQL
	}
	return Config{
		Driver:       driver,
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		Name:         os.Getenv("DB_NAME"),
		Host:         os.Getenv("DB_HOST"),
		Port:         os.Getenv("DB_PORT"),
		InstanceName: os.Getenv("INSTANCE_CONNECTION_NAME"),
		Path:         os.Getenv("DB_PATH"),
	}
}

// BuildDSN renders the driver-specific connection string.
func BuildDSN(cfg Config) string {
	switch cfg.Driver {
	case DriverPostgres:
		host, port := cfg.Host, cfg.Port
		if cfg.InstanceName != "" {
			host, port = "/cloudsql/"+cfg.InstanceName, ""
		}
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=disable", host, cfg.User, cfg.Password, cfg.Name)
		if port != "" {
			dsn += " port=" + port
		}
		return dsn
	case DriverSQLite:
		if cfg.Path == "" {
			return "quote.db"
		}
		return cfg.Path
	default:
		if cfg.InstanceName != "" {
			return fmt.Sprintf("%s:%s@unix(/cloudsql/%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
				cfg.User, cfg.Password, cfg.InstanceName, cfg.Name)
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
	}
}

// Dialector returns the gorm dialector for cfg.Driver, validating postgres DSNs up front.
func Dialector(cfg Config, dsn string) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverMySQL, "":
		return gmysql.Open(dsn), nil
	case DriverPostgres:
		if _, err := pgx.ParseConfig(dsn); err != nil {
			return nil, fmt.Errorf("invalid postgres dsn: %w", err)
		}
		return gpostgres.Open(dsn), nil
	case DriverSQLite:
		return gsqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
}

// ConnectWithRetry calls opener until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, opener func(string) (*gorm.DB, error)) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err)
		time.Sleep(retryInterval)
	}
}

// OpenDB connects using the environment and, with RUN_MIGRATIONS=true, auto-migrates models.
func OpenDB(models ...any) (*gorm.DB, error) {
	cfg := LoadConfigFromEnv()
	dsn := BuildDSN(cfg)
	dialector, err := Dialector(cfg, dsn)
	if err != nil {
		return nil, err
	}

	db, err := ConnectWithRetry(dsn, 60*time.Second, func(string) (*gorm.DB, error) {
		return gorm.Open(dialector, &gorm.Config{})
	})
	if err != nil {
		return nil, err
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" && len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
		slog.Info("database migrated", "driver", cfg.Driver, "models", len(models))
	}
	return db, nil
}
