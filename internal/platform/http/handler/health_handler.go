// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Check reports whether a dependency (DB, Redis) is reachable.
type Check func(ctx context.Context) error

const checkTimeout = 2 * time.Second

// Health はサービスヘルスチェック用の /healthz エンドポイントを返します。
// いずれかのチェックが失敗した場合は503を返し、キャッシュを防止します。
func Health(checks map[string]Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 明示的にキャッシュを防止
		c.Header("Cache-Control", "no-store")

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		failed := runChecks(c.Request.Context(), checks)
		status := http.StatusOK
		if len(failed) > 0 {
			status = http.StatusServiceUnavailable
		}

		if c.Request.Method == http.MethodHead {
			c.Status(status)
			return
		}
		if len(failed) > 0 {
			c.JSON(status, gin.H{"status": "unavailable", "failed": failed})
			return
		}
		c.JSON(status, gin.H{"status": "ok"})
	}
}

// runChecks は失敗したチェック名を昇順で返します。
func runChecks(ctx context.Context, checks map[string]Check) []string {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	var failed []string
	for name, check := range checks {
		if err := check(ctx); err != nil {
			slog.Warn("health check failed", "check", name, "error", err)
			failed = append(failed, name)
		}
	}
	sort.Strings(failed)
	return failed
}
