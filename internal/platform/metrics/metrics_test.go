package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestMetrics_SessionLifecycle(t *testing.T) {
	t.Parallel()

	m := New()
	m.SessionOpened("sse")
	m.SessionOpened("sse")
	m.SessionClosed("sse", "cancelled")
	m.TickSent(3)
	m.TickSent(0)
	m.TickSkipped()
	m.PushFailed()
	m.ResolveFailed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsActive.WithLabelValues("sse")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsClosed.WithLabelValues("sse", "cancelled")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ticks.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ticks.WithLabelValues("skipped")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.quotes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pushFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolveFailures))
}

func TestMetrics_NilReceiverIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.SessionOpened("ws")
		m.SessionClosed("ws", "push_failed")
		m.TickSent(1)
		m.TickSkipped()
		m.PushFailed()
		m.ResolveFailed()
	})
	assert.NotNil(t, m.Handler())
}

func TestMetrics_MiddlewareAndHandler(t *testing.T) {
	t.Parallel()

	m := New()
	r := gin.New()
	r.Use(m.Middleware("/prices/stream"))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	for range 2 {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/ping", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stock_stream_http_requests_total")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
