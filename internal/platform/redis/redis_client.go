// Package redis はローソク足キャッシュ用のRedis接続を提供します。
package redis

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config はRedisへの接続設定です。
type Config struct {
	Addr     string
	Password string
	DB       int
}

// LoadConfigFromEnv は環境変数 REDIS_HOST / REDIS_PORT / REDIS_PASSWORD / REDIS_DB から設定を読み込みます。
// Addrが空の場合はキャッシュ無効です。
func LoadConfigFromEnv() Config {
	cfg := Config{Password: os.Getenv("REDIS_PASSWORD")}
	if host := os.Getenv("REDIS_HOST"); host != "" {
		port := os.Getenv("REDIS_PORT")
		if port == "" {
			port = "6379"
		}
		cfg.Addr = host + ":" + port
	}
	if n, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil {
		cfg.DB = n
	}
	return cfg
}

// NewRedisClient はRedisに接続し、疎通を確認します。
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 接続確認
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", cfg.Addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", cfg.Addr)
	return rdb, nil
}

// OpenOptional はRedisが未設定または接続不可の場合、エラーではなくnilを返します。
// 呼び出し側はキャッシュなしで動作を続けます。
func OpenOptional(ctx context.Context, cfg Config) *redis.Client {
	if cfg.Addr == "" {
		slog.Info("Redis not configured, cache disabled")
		return nil
	}
	rdb, err := NewRedisClient(ctx, cfg)
	if err != nil {
		slog.Warn("Redis unavailable, cache disabled", "error", err)
		return nil
	}
	return rdb
}
