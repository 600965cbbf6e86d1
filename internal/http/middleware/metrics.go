package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by endpoint, method and status",
		},
		[]string{"endpoint", "method", "status"},
	)
	RLBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_blocked_total",
			Help: "Total requests blocked by the rate limiter",
		},
		[]string{"endpoint"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(RLBlocked)
}

// Metrics counts every handled request.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		HTTPRequests.WithLabelValues(
			c.FullPath(),
			c.Request.Method,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}
