package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/maosdefada/cakeshop-backend/pkg/logger"
	"github.com/rs/zerolog"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// health and scrape paths hit by load balancers and Prometheus
var quietPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// RequestLogger one structured entry per request. 5xx log at error, 4xx at
// warn and health checks at debug.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > maxShopperIDLen {
			requestID = uuid.NewString()[:8]
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		log := logger.WithRequestID(requestID)

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		case quietPaths[c.Request.URL.Path]:
			event = log.Debug()
		default:
			event = log.Info()
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}

		event.
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("shopper_id", GetShopperID(c)).
			Str("locale", string(GetLocale(c))).
			Int("body_size", c.Writer.Size()).
			Msg("request")
	}
}

// GetRequestID request id set by RequestLogger
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
