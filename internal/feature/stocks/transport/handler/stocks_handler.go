// Package handler はstocksフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"stock_stream/internal/feature/stocks/domain/entity"
	"stock_stream/internal/feature/stocks/transport/http/dto"
	"stock_stream/internal/feature/stocks/usecase"
	jwtmw "stock_stream/internal/platform/jwt"
	"stock_stream/internal/shared/ticker"
)

// SubscriptionUsecase はサブスクリプション操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type SubscriptionUsecase interface {
	ListAvailable() []ticker.Stock
	ListSubscriptions(ctx context.Context, userID uint) ([]entity.Subscription, error)
	Subscribe(ctx context.Context, userID uint, raw string) (*entity.Subscription, error)
	Unsubscribe(ctx context.Context, userID uint, raw string) error
}

// StocksHandler は銘柄一覧とサブスクリプションのHTTPリクエストを処理します。
type StocksHandler struct {
	uc SubscriptionUsecase
}

// NewStocksHandler は新しい StocksHandler を作成します。
func NewStocksHandler(uc SubscriptionUsecase) *StocksHandler {
	return &StocksHandler{uc: uc}
}

// Available は対応銘柄の一覧を返します（認証不要）。
func (h *StocksHandler) Available(c *gin.Context) {
	stocks := h.uc.ListAvailable()
	out := make([]dto.StockItem, 0, len(stocks))
	for _, s := range stocks {
		out = append(out, dto.StockItem{
			Ticker:    string(s.Ticker),
			Name:      s.Name,
			BasePrice: s.BasePrice.InexactFloat64(),
		})
	}
	c.JSON(http.StatusOK, dto.AvailableRes{Stocks: out})
}

// Subscriptions はログインユーザーの購読一覧を返します。
func (h *StocksHandler) Subscriptions(c *gin.Context) {
	userID, _ := jwtmw.UserID(c)
	subs, err := h.uc.ListSubscriptions(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err, "list subscriptions failed")
		return
	}
	out := make([]dto.SubscriptionItem, 0, len(subs))
	for _, s := range subs {
		out = append(out, dto.SubscriptionItem{Ticker: string(s.Ticker), CreatedAt: s.CreatedAt})
	}
	c.JSON(http.StatusOK, dto.SubscriptionsRes{Subscriptions: out})
}

// Subscribe は銘柄の購読を登録します。
// - ボディ不正・未対応銘柄は400
// - 既に購読済みは409
// - 成功時は201
func (h *StocksHandler) Subscribe(c *gin.Context) {
	var req dto.SubscribeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("subscribe validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "Invalid ticker"})
		return
	}

	userID, _ := jwtmw.UserID(c)
	sub, err := h.uc.Subscribe(c.Request.Context(), userID, req.Ticker)
	if err != nil {
		h.writeError(c, err, "subscribe failed")
		return
	}

	slog.Info("subscribed", "user_id", userID, "ticker", sub.Ticker)
	c.JSON(http.StatusCreated, dto.SubscribeRes{Subscription: dto.Subscription{
		ID:        sub.ID,
		UserID:    sub.UserID,
		Ticker:    string(sub.Ticker),
		CreatedAt: sub.CreatedAt,
	}})
}

// Unsubscribe は銘柄の購読を解除します。未購読でも200を返します。
func (h *StocksHandler) Unsubscribe(c *gin.Context) {
	userID, _ := jwtmw.UserID(c)
	raw := c.Param("ticker")
	if err := h.uc.Unsubscribe(c.Request.Context(), userID, raw); err != nil {
		h.writeError(c, err, "unsubscribe failed")
		return
	}
	slog.Info("unsubscribed", "user_id", userID, "ticker", raw)
	c.JSON(http.StatusOK, dto.MessageRes{Message: "Unsubscribed successfully"})
}

// writeError はusecaseのエラーをHTTPステータスに変換します。
func (h *StocksHandler) writeError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, usecase.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, dto.ErrorRes{Error: "Unauthorized"})
	case errors.Is(err, usecase.ErrInvalidTicker):
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "Invalid ticker"})
	case errors.Is(err, usecase.ErrAlreadySubscribed):
		c.JSON(http.StatusConflict, dto.ErrorRes{Error: "Already subscribed to this stock"})
	default:
		slog.Error(msg, "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: "internal server error"})
	}
}
