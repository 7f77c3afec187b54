package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"stock_stream/internal/app/di"
	"stock_stream/internal/app/router"
	"stock_stream/internal/platform/config"
	"stock_stream/internal/platform/db"
	"stock_stream/internal/platform/logger"
	"stock_stream/internal/platform/metrics"
	platformredis "stock_stream/internal/platform/redis"
	"stock_stream/internal/shared/ratelimiter"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, closeLog, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closeLog.Close()
	slog.SetDefault(log)

	if cfg.App.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	// SIGINT / SIGTERM でリクエストのコンテキストごとキャンセルし、ストリームを終了させる
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	gdb, err := db.Open(db.Config{
		Driver:        cfg.DB.Driver,
		DSN:           cfg.DB.DSN,
		Host:          cfg.DB.Host,
		Port:          cfg.DB.Port,
		User:          cfg.DB.User,
		Password:      cfg.DB.Password,
		Name:          cfg.DB.Name,
		InstanceName:  cfg.DB.InstanceName,
		RunMigrations: cfg.DB.RunMigrations,
		ConnectWait:   cfg.DB.ConnectWait,
	}, di.Models()...)
	if err != nil {
		return err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Redis（任意）。使えない場合は変更通知をプロセス内で行う
	rdb, err := platformredis.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		slog.Warn("Redis unavailable. Change notifications stay in-process.", "error", err)
		rdb = nil
	}
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	m := metrics.New()
	h := di.NewHandlers(cfg, gdb, rdb, m)
	engine := router.NewRouter(h, router.Options{
		JWTSecret:    cfg.JWT.Secret,
		AllowOrigins: cfg.CORS.AllowOrigins,
		Limiter:      ratelimiter.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 10*time.Minute),
	})

	// WriteTimeout はストリームを切ってしまうため設定しない。書き込み期限はプッシュ単位で掛ける
	srv := &http.Server{
		Addr:              cfg.App.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down", "timeout", cfg.App.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
