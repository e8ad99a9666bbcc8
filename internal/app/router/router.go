// Package router はクオートAPIのginエンジンを組み立てます。
package router

import (
	"time"

	"quote_backend/internal/app/di"
	jwtmw "quote_backend/internal/platform/jwt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter はhのハンドラーをマウントします。/healthz 以外はsecretで署名されたBearerトークンが必要です。
// トークン失効チェックはh.Revocationsが設定されている場合のみ有効になります。
// originsが空なら全オリジンを許可します。
func NewRouter(h *di.Handlers, secret string, origins ...string) *gin.Engine {
	r := gin.Default()
	r.Use(corsMiddleware(origins))

	var authOpts []jwtmw.AuthOption
	if h.Revocations != nil {
		authOpts = append(authOpts, jwtmw.WithRevocationCheck(h.Revocations))
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)
	r.OPTIONS("/healthz", h.Health.Health)

	// 認証必須のルート
	// → 読み取りスコープ（adminは読み取りを含む）が必要
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired(secret, authOpts...), jwtmw.RequireScope(jwtmw.ScopeRead))
	{
		auth.GET("/candlesticks/:symbol/offset", h.Candlesticks.ByOffset)
		auth.GET("/candlesticks/:symbol/date", h.Candlesticks.ByDate)
		auth.GET("/candlesticks/:symbol/latest", h.Candlesticks.Latest)
		auth.GET("/candlesticks/:symbol/stored/date", h.Candlesticks.StoredByDate)
		auth.GET("/candlesticks/:symbol/stored/latest", h.Candlesticks.StoredLatest)
		auth.GET("/symbols", h.Watchlist.List)
		// 取引カレンダー（対応プロバイダーのみ）
		if h.Calendar != nil {
			auth.GET("/calendar/trading-days", h.Calendar.TradingDays)
			auth.GET("/calendar/trading-sessions", h.Calendar.TradingSessions)
		}
	}

	// 管理者スコープ
	admin := auth.Group("/")
	admin.Use(jwtmw.RequireScope(jwtmw.ScopeAdmin))
	{
		admin.DELETE("/candlesticks/:symbol/cache", h.Candlesticks.InvalidateCache)
		admin.POST("/symbols", h.Watchlist.Add)
		admin.DELETE("/symbols/:code", h.Watchlist.Deactivate)
		if h.Revocations != nil {
			admin.POST("/tokens/revoke", jwtmw.RevokeHandler(secret, h.Revocations))
		}
	}

	return r
}

// corsMiddleware はoriginsに応じたCORSミドルウェアを返します。
func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return cors.Default()
	}
	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "HEAD", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	})
}
