package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"stock_stream/internal/feature/prices/domain/entity"
	"stock_stream/internal/feature/prices/transport/http/dto"
)

// SSE streams price batches as text/event-stream until the client disconnects.
func (h *StreamHandler) SSE(c *gin.Context) {
	sess, ok := h.open(c, TransportSSE)
	if !ok {
		return
	}
	defer sess.Close()

	c.Header("Content-Type", sse.ContentType)
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	p := &ssePusher{
		w:       c.Writer,
		rc:      http.NewResponseController(c.Writer),
		timeout: h.writeTimeout,
	}
	logRunEnd(sess, sess.Run(c.Request.Context(), p))
}

// ssePusher writes one SSE event per batch under a write deadline.
type ssePusher struct {
	w       gin.ResponseWriter
	rc      *http.ResponseController
	timeout time.Duration
}

func (p *ssePusher) Push(ctx context.Context, b entity.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.timeout > 0 {
		// httptest.ResponseRecorder などデッドライン非対応のWriterでは無視する
		if err := p.rc.SetWriteDeadline(time.Now().Add(p.timeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return fmt.Errorf("set write deadline: %w", err)
		}
	}

	err := sse.Encode(p.w, sse.Event{
		Id:    strconv.FormatInt(b.ID, 10),
		Event: entity.EventPrices,
		Data:  dto.FromBatch(b),
	})
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	if err := p.rc.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}
