package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"stock_stream/internal/feature/prices/domain/entity"
	"stock_stream/internal/feature/prices/transport/http/dto"
	"stock_stream/internal/feature/prices/usecase"
)

const wsCloseGrace = time.Second

// WebSocket streams the same batches as SSE over a WebSocket connection.
// Client frames are read and discarded; a read error ends the session.
func (h *StreamHandler) WebSocket(c *gin.Context) {
	sess, ok := h.open(c, TransportWS)
	if !ok {
		return
	}
	defer sess.Close()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade は失敗時に自身でエラーレスポンスを書き込む
		slog.Warn("websocket upgrade failed", "conn_id", sess.ConnID(), "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	runErr := sess.Run(ctx, &wsPusher{conn: conn, timeout: h.writeTimeout})
	logRunEnd(sess, runErr)

	code, text := websocket.CloseNormalClosure, ""
	if runErr != nil && !errors.Is(runErr, usecase.ErrPushFailed) {
		code, text = websocket.CloseInternalServerErr, "stream unavailable"
	}
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(wsCloseGrace))
}

// wsPusher writes one JSON text frame per batch. Only the Run goroutine writes.
type wsPusher struct {
	conn    *websocket.Conn
	timeout time.Duration
}

func (p *wsPusher) Push(ctx context.Context, b entity.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.timeout > 0 {
		if err := p.conn.SetWriteDeadline(time.Now().Add(p.timeout)); err != nil {
			return fmt.Errorf("set write deadline: %w", err)
		}
	}
	frame := dto.WSFrame{Event: entity.EventPrices, ID: b.ID, Data: dto.FromBatch(b)}
	if err := p.conn.WriteJSON(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
