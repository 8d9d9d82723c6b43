package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SaugatGautam100/courseplex-sub001/monitoring"
)

// Logger logs every request and records it in the HTTP metrics. Routes are
// labelled by their pattern so path parameters do not explode cardinality.
func Logger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Set("startTime", start)

		c.Next()

		latency := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		monitoring.HttpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		monitoring.ResponseTimeHistogram.WithLabelValues(c.Request.Method, route).Observe(latency.Seconds())

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		}
		switch {
		case status >= 500:
			log.Error("[GIN]", append(fields, zap.String("errors", c.Errors.String()))...)
		case status == 401 || status == 403:
			log.Warn("⚠️ unauthorized access", fields...)
		default:
			log.Info("[GIN]", fields...)
		}
	}
}
