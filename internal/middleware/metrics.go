package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cakeshop_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cakeshop_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	activeRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cakeshop_http_active_requests",
			Help: "Number of currently active HTTP requests",
		},
	)

	storeConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cakeshop_store_connections_open",
			Help: "Open connections of the SQL key-value store",
		},
	)
)

// Metrics returns a gin middleware that collects Prometheus metrics
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		activeRequests.Inc()
		defer activeRequests.Dec()

		c.Next()

		// route template keeps session and line ids out of the labels
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// SetStoreConnectionsOpen updates the SQL store connection gauge
func SetStoreConnectionsOpen(count int) {
	storeConnectionsOpen.Set(float64(count))
}
