// Package di はリポジトリ・ユースケース・ハンドラーの組み立てを提供します。
package di

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"stock_stream/internal/app/router"
	authadapters "stock_stream/internal/feature/auth/adapters"
	authhandler "stock_stream/internal/feature/auth/transport/handler"
	authusecase "stock_stream/internal/feature/auth/usecase"
	priceshandler "stock_stream/internal/feature/prices/transport/handler"
	pricesusecase "stock_stream/internal/feature/prices/usecase"
	stocksadapters "stock_stream/internal/feature/stocks/adapters"
	stockshandler "stock_stream/internal/feature/stocks/transport/handler"
	stocksusecase "stock_stream/internal/feature/stocks/usecase"
	"stock_stream/internal/platform/config"
	platformhandler "stock_stream/internal/platform/http/handler"
	jwtmw "stock_stream/internal/platform/jwt"
	"stock_stream/internal/platform/metrics"
)

// Models returns the GORM models to migrate.
func Models() []any {
	return []any{&authadapters.UserModel{}, &stocksadapters.SubscriptionModel{}}
}

// NewHandlers wires every feature on top of db. rdb and m may be nil.
func NewHandlers(cfg *config.Config, db *gorm.DB, rdb *redis.Client, m *metrics.Metrics) router.Handlers {
	notifier := NewChangeNotifier(rdb, cfg.Stream.NotifyChanges)

	// Repository
	userRepo := authadapters.NewUserRepository(db)
	subRepo := stocksadapters.NewSubscriptionRepository(db)

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo, jwtmw.NewGenerator(cfg.JWT.Secret, cfg.JWT.Expiration))
	subUC := stocksusecase.NewSubscriptionUsecase(subRepo, notifier)
	streamUC := pricesusecase.NewStreamUsecase(
		pricesusecase.NewResolver(subRepo),
		pricesusecase.NewRandomGenerator(nil, nil),
		notifier,
		m,
		pricesusecase.SessionConfig{
			TickInterval:       cfg.Stream.TickInterval,
			MaxResolveFailures: cfg.Stream.MaxResolveFailures,
		},
	)

	// Handler
	return router.Handlers{
		Auth:    authhandler.NewAuthHandler(authUC),
		Stocks:  stockshandler.NewStocksHandler(subUC),
		Streams: priceshandler.NewStreamHandler(streamUC, cfg.Stream.WriteTimeout, cfg.CORS.AllowOrigins),
		Health:  platformhandler.Health(HealthChecks(db, rdb)),
		Metrics: m,
	}
}

// HealthChecks returns the dependency checks behind /healthz.
func HealthChecks(db *gorm.DB, rdb *redis.Client) map[string]platformhandler.Check {
	checks := map[string]platformhandler.Check{
		"db": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}
	return checks
}
