// Package metrics はPrometheusのメトリクスとHTTPエクスポーターを提供します。
// すべてのメソッドはnilレシーバーで呼ばれても何もしません。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stock_stream"

// Metrics is the process-wide collector set registered on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	sessionsActive  *prometheus.GaugeVec
	sessionsClosed  *prometheus.CounterVec
	ticks           *prometheus.CounterVec
	quotes          prometheus.Counter
	pushFailures    prometheus.Counter
	resolveFailures prometheus.Counter
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds (streams excluded).",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		sessionsActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_sessions_active",
			Help:      "Currently open streaming sessions.",
		}, []string{"transport"}),
		sessionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_sessions_closed_total",
			Help:      "Closed streaming sessions by reason.",
		}, []string{"transport", "reason"}),
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_ticks_total",
			Help:      "Session ticks by outcome (sent, skipped).",
		}, []string{"outcome"}),
		quotes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_quotes_sent_total",
			Help:      "Price quotes delivered to clients.",
		}),
		pushFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_push_failures_total",
			Help:      "Pushes that failed and closed a session.",
		}),
		resolveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_resolve_failures_total",
			Help:      "Subscription snapshot reads that failed.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration,
		m.sessionsActive, m.sessionsClosed, m.ticks, m.quotes, m.pushFailures, m.resolveFailures,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request count and latency per matched route.
// Routes listed in skipDuration only get counted; long-lived streams would skew the histogram.
func (m *Metrics) Middleware(skipDuration ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipDuration))
	for _, r := range skipDuration {
		skip[r] = struct{}{}
	}
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		if _, ok := skip[route]; !ok {
			m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
		}
	}
}

func (m *Metrics) SessionOpened(transport string) {
	if m == nil {
		return
	}
	m.sessionsActive.WithLabelValues(transport).Inc()
}

func (m *Metrics) SessionClosed(transport, reason string) {
	if m == nil {
		return
	}
	m.sessionsActive.WithLabelValues(transport).Dec()
	m.sessionsClosed.WithLabelValues(transport, reason).Inc()
}

// TickSent counts one delivered batch carrying n quotes.
func (m *Metrics) TickSent(n int) {
	if m == nil {
		return
	}
	m.ticks.WithLabelValues("sent").Inc()
	m.quotes.Add(float64(n))
}

func (m *Metrics) TickSkipped() {
	if m == nil {
		return
	}
	m.ticks.WithLabelValues("skipped").Inc()
}

func (m *Metrics) PushFailed() {
	if m == nil {
		return
	}
	m.pushFailures.Inc()
}

func (m *Metrics) ResolveFailed() {
	if m == nil {
		return
	}
	m.resolveFailures.Inc()
}
