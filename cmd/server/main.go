package main

import (
	"context"
	"log"
	"os"
	"strings"

	"quote_backend/internal/app/di"
	"quote_backend/internal/app/router"
	"quote_backend/internal/platform/config"
	"quote_backend/internal/platform/db"
	jwtmw "quote_backend/internal/platform/jwt"
	"quote_backend/internal/platform/logger"
	infraredis "quote_backend/internal/platform/redis"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal(err)
	}
	logger.Setup(logger.Options{Path: cfg.LogPath, Level: os.Getenv("LOG_LEVEL"), JSON: true})

	// DB接続
	gdb, err := db.OpenDB(di.Models()...)
	if err != nil {
		log.Fatal(err)
	}

	// Redis（未設定・接続不可ならキャッシュなしで起動）
	rdb := infraredis.OpenOptional(context.Background(), infraredis.LoadConfigFromEnv())
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	market, err := di.NewMarket(cfg, rdb)
	if err != nil {
		log.Fatal(err)
	}
	defer market.Close()

	handlers, err := di.NewHandlers(gdb, rdb, market)
	if err != nil {
		log.Fatal(err)
	}

	secret := os.Getenv(jwtmw.EnvKeyJWTSecret)
	if secret == "" {
		log.Println("[WARN] JWT_SECRET is not set. Authenticated routes will answer 500.")
	}

	addr := ":" + os.Getenv("PORT")
	if addr == ":" {
		addr = ":8080"
	}
	var origins []string
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins = strings.Split(v, ",")
	}
	if err := router.NewRouter(handlers, secret, origins...).Run(addr); err != nil {
		log.Fatal(err)
	}
}
