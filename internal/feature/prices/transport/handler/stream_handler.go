// Package handler はpricesフィーチャーのストリーミングハンドラー（SSE / WebSocket）を提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"stock_stream/internal/feature/prices/usecase"
	jwtmw "stock_stream/internal/platform/jwt"
)

const (
	TransportSSE = "sse"
	TransportWS  = "ws"

	// lastEventIDQuery lets WebSocket clients resume ids; EventSource uses the header.
	lastEventIDQuery = "lastEventId"
)

// StreamOpener opens a session for an authenticated user.
type StreamOpener interface {
	Open(ctx context.Context, userID uint, lastEventID int64, transport string) (*usecase.Session, error)
}

// StreamHandler serves GET /prices/stream (SSE) and GET /prices/ws (WebSocket).
type StreamHandler struct {
	uc           StreamOpener
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

// NewStreamHandler creates a StreamHandler. allowedOrigins is checked on
// WebSocket upgrades; "*" allows any origin.
func NewStreamHandler(uc StreamOpener, writeTimeout time.Duration, allowedOrigins []string) *StreamHandler {
	return &StreamHandler{
		uc:           uc,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// open resolves the user and opens a session, writing the error response on failure.
func (h *StreamHandler) open(c *gin.Context, transport string) (*usecase.Session, bool) {
	userID, _ := jwtmw.UserID(c)
	sess, err := h.uc.Open(c.Request.Context(), userID, lastEventID(c), transport)
	switch {
	case errors.Is(err, usecase.ErrUnauthorized):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	case err != nil:
		slog.Error("open stream failed", "error", err, "user_id", userID)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return nil, false
	}
	return sess, true
}

// logRunEnd logs why a session stopped when it was not a plain disconnect.
func logRunEnd(sess *usecase.Session, err error) {
	if err == nil {
		return
	}
	slog.Warn("stream terminated", "user_id", sess.UserID(), "conn_id", sess.ConnID(), "error", err)
}

// lastEventID reads Last-Event-ID (header, then query). Invalid values are ignored.
func lastEventID(c *gin.Context) int64 {
	raw := c.GetHeader("Last-Event-ID")
	if raw == "" {
		raw = c.Query(lastEventIDQuery)
	}
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

func originChecker(allowed []string) func(r *http.Request) bool {
	anyOrigin := slices.Contains(allowed, "*")
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || anyOrigin {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}
