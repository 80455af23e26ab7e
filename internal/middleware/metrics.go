package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"audiotable/internal/metrics"
)

// MetricsMiddleware creates middleware that records request metrics
func MetricsMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		// The matched route, so ids do not explode label cardinality
		route := c.Route().Path
		method := c.Method()
		status := strconv.Itoa(c.Response().StatusCode())

		m.RequestCount.WithLabelValues(method, route, status).Inc()
		m.RequestDuration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())

		if err != nil || c.Response().StatusCode() >= 400 {
			m.ErrorCount.WithLabelValues(method, route, status).Inc()
		}

		return err
	}
}
