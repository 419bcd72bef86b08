package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Model gateway metrics
	modelRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_requests_total",
			Help: "Total number of model gateway calls by outcome",
		},
		[]string{"provider", "operation", "outcome"},
	)

	modelRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "model_request_duration_seconds",
			Help:    "Model gateway call duration in seconds",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"provider", "operation"},
	)

	modelTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_tokens_total",
			Help: "Tokens consumed by model calls",
		},
		[]string{"direction"},
	)

	// Analysis outcomes as seen by callers
	analysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyses_total",
			Help: "Total number of analysis requests by operation and result kind",
		},
		[]string{"operation", "result"},
	)

	// Audit side channel
	auditTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_tasks_total",
			Help: "Total number of best-effort audit tasks by outcome",
		},
		[]string{"task", "status"},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency per route template
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordModelCall records one gateway round trip
func RecordModelCall(provider, operation, outcome string, duration time.Duration) {
	modelRequestsTotal.WithLabelValues(provider, operation, outcome).Inc()
	modelRequestDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
}

// RecordTokens adds prompt and completion token counts
func RecordTokens(input, output int) {
	if input > 0 {
		modelTokensTotal.WithLabelValues("input").Add(float64(input))
	}
	if output > 0 {
		modelTokensTotal.WithLabelValues("output").Add(float64(output))
	}
}

// RecordAnalysis records the final outcome of an action
func RecordAnalysis(operation, result string) {
	analysesTotal.WithLabelValues(operation, result).Inc()
}

// RecordAuditTask records a finished audit task
func RecordAuditTask(task, status string) {
	auditTasksTotal.WithLabelValues(task, status).Inc()
}
