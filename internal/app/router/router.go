package router

import (
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "stock_stream/internal/feature/auth/transport/handler"
	priceshandler "stock_stream/internal/feature/prices/transport/handler"
	stockshandler "stock_stream/internal/feature/stocks/transport/handler"
	jwtmw "stock_stream/internal/platform/jwt"
	"stock_stream/internal/platform/metrics"
	"stock_stream/internal/shared/ratelimiter"
)

const (
	streamSSEPath = "/prices/stream"
	streamWSPath  = "/prices/ws"
)

// Handlers はルーターに登録するハンドラー一式です。Metrics は nil でも構いません。
type Handlers struct {
	Auth    *authhandler.AuthHandler
	Stocks  *stockshandler.StocksHandler
	Streams *priceshandler.StreamHandler
	Health  gin.HandlerFunc
	Metrics *metrics.Metrics
}

// Options はルーター全体の設定です。
type Options struct {
	JWTSecret    string
	AllowOrigins []string

	// Limiter が nil の場合、書き込み系エンドポイントのレート制限は行いません。
	Limiter *ratelimiter.RateLimiter
}

func NewRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(streamSSEPath, streamWSPath))
	if len(opts.AllowOrigins) > 0 {
		r.Use(cors.New(corsConfig(opts.AllowOrigins)))
	}
	r.Use(h.Metrics.Middleware(streamSSEPath, streamWSPath))

	limit := func(key ratelimiter.KeyFunc) gin.HandlerFunc {
		if opts.Limiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return opts.Limiter.Middleware(key)
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", h.Health)
	r.HEAD("/healthz", h.Health)
	r.OPTIONS("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	// 新規ユーザー登録
	r.POST("/signup", limit(byClientIP), h.Auth.Signup)
	// ログイン（JWT 発行）
	r.POST("/login", limit(byClientIP), h.Auth.Login)
	// 購読可能な銘柄一覧
	r.GET("/stocks/available", h.Stocks.Available)

	// 認証必須のルート
	auth := r.Group("/stocks")
	// → リクエストヘッダーに JWT が必要になる
	auth.Use(jwtmw.AuthRequired(opts.JWTSecret))
	{
		auth.GET("/subscriptions", h.Stocks.Subscriptions)
		auth.POST("/subscribe", limit(byUser), h.Stocks.Subscribe)
		auth.DELETE("/unsubscribe/:ticker", limit(byUser), h.Stocks.Unsubscribe)
	}

	// ストリーム。EventSource はヘッダーを付けられないためクエリのトークンも受け付ける
	streams := r.Group("/prices")
	streams.Use(jwtmw.AuthRequired(opts.JWTSecret, jwtmw.AllowQueryToken()))
	{
		streams.GET("/stream", h.Streams.SSE)
		streams.GET("/ws", h.Streams.WebSocket)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "HEAD", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", "Last-Event-ID"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func byClientIP(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

func byUser(c *gin.Context) string {
	id, ok := jwtmw.UserID(c)
	if !ok {
		return ""
	}
	return "user:" + strconv.FormatUint(uint64(id), 10)
}

// requestLogger はリクエストごとに1行のアクセスログを出力します。
// ストリームは接続終了時にのみ記録されるため、開始もDebugで残します。
func requestLogger(streamRoutes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		if slices.Contains(streamRoutes, c.FullPath()) {
			slog.Debug("stream request", "method", c.Request.Method, "path", c.Request.URL.Path, "client_ip", c.ClientIP())
		}
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		slog.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}
