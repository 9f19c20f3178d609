package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "panoplace",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "panoplace",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Resolution pipeline metrics
	GeocodeRequests = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "panoplace",
		Subsystem: "geocode",
		Name:      "requests_total",
		Help:      "Total reverse-geocoding requests issued",
	})

	GeocodeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "panoplace",
		Subsystem: "geocode",
		Name:      "failures_total",
		Help:      "Total reverse-geocoding requests that failed (transport or HTTP status)",
	})

	GeocodeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "panoplace",
		Subsystem: "geocode",
		Name:      "request_duration_seconds",
		Help:      "Duration of reverse-geocoding requests",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	ResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "panoplace",
		Subsystem: "resolver",
		Name:      "resolutions_total",
		Help:      "Completed resolutions by outcome",
	}, []string{"outcome"}) // "cache", "network", "failure", "thin"

	StaleCompletions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "panoplace",
		Subsystem: "resolver",
		Name:      "stale_completions_total",
		Help:      "Resolution completions discarded because a newer one already applied",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "panoplace",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total place cache hits",
	}, []string{"tier"}) // "memory", "remote"

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "panoplace",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total place cache misses",
	})

	// Health state as a gauge: 0 disconnected, 1 connected, 2 error.
	HealthState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "panoplace",
		Subsystem: "health",
		Name:      "state",
		Help:      "Current health state (0=disconnected, 1=connected, 2=error)",
	})

	ConsecutiveFailures = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "panoplace",
		Subsystem: "health",
		Name:      "consecutive_failures",
		Help:      "Consecutive geocoding failures within the rolling window",
	})

	PositionPolls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "panoplace",
		Subsystem: "position",
		Name:      "polls_total",
		Help:      "Position source polls by outcome",
	}, []string{"outcome"}) // "ok", "absent", "error"

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "panoplace",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
