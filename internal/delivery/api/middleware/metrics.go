package middleware

import (
	"strconv"
	"time"

	deliverymiddleware "catalog/internal/delivery/middleware"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the Prometheus collectors exported by the API.
type Metrics struct {
	registry          *prometheus.Registry
	inFlight          prometheus.Gauge
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	sessionRejections *prometheus.CounterVec
}

// NewMetrics registers the HTTP and auth collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latencies in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		sessionRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_session_rejections_total",
				Help: "Bearer tokens rejected by the session resolver, by reason.",
			},
			[]string{"reason"},
		),
	}

	m.registry.MustRegister(
		m.inFlight,
		m.requestsTotal,
		m.requestDuration,
		m.sessionRejections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Instrument records RPS, latency and in-flight requests. Paths are reported
// as route templates so IDs do not blow up label cardinality.
func (m *Metrics) Instrument(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		start := time.Now()
		err := next(c)

		path := c.Path()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(deliverymiddleware.StatusOf(c, err))
		method := c.Request().Method

		m.requestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(method, path, status).Inc()

		return err
	}
}

// ObserveSessionRejection counts one rejected bearer token.
func (m *Metrics) ObserveSessionRejection(reason string) {
	m.sessionRejections.WithLabelValues(reason).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
