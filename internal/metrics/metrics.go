package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	GeneratedPasswords = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pwd_advisor_generated_passwords_total",
			Help: "Total number of generated passwords",
		},
	)

	CheckedPasswords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pwd_advisor_checked_passwords_total",
			Help: "Total number of checked passwords by verdict level",
		},
		[]string{"level"},
	)

	HashLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pwd_advisor_hash_lookups_total",
			Help: "Total number of SHA1 hash lookups by result",
		},
		[]string{"result"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pwd_advisor_request_duration_seconds",
			Help:    "Duration of HTTP requests by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "status"},
	)
)

// Middleware observes the duration of every request under its route
// template, so path parameters do not create new series.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestDuration.WithLabelValues(route, statusClass(c.Writer.Status())).Observe(time.Since(start).Seconds())
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
