// Package telemetry holds the Prometheus metrics for the dashboard service.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the service metrics registry.
type Metrics struct {
	registry *prometheus.Registry

	FetchDuration *prometheus.HistogramVec
	CacheHits     *prometheus.CounterVec
	CacheMisses   *prometheus.CounterVec
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
}

// NewMetrics creates and registers all service metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ethbtc_fetch_duration_seconds",
				Help:    "Upstream price fetch duration by provider and result",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"provider", "result"},
		),

		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ethbtc_cache_hits_total",
				Help: "Series cache hits by tier",
			},
			[]string{"tier"},
		),

		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ethbtc_cache_misses_total",
				Help: "Series cache misses by tier",
			},
			[]string{"tier"},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ethbtc_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"route", "status"},
		),

		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ethbtc_http_request_duration_seconds",
				Help:    "HTTP request duration by route",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"route"},
		),
	}

	m.registry.MustRegister(
		m.FetchDuration,
		m.CacheHits,
		m.CacheMisses,
		m.HTTPRequests,
		m.HTTPDuration,
	)

	return m
}

// CacheHit records a hit on the named cache tier.
func (m *Metrics) CacheHit(tier string) {
	m.CacheHits.WithLabelValues(tier).Inc()
}

// CacheMiss records a miss on the named cache tier.
func (m *Metrics) CacheMiss(tier string) {
	m.CacheMisses.WithLabelValues(tier).Inc()
}

// FetchObserved records one upstream fetch attempt.
func (m *Metrics) FetchObserved(provider string, d time.Duration, ok bool) {
	result := "success"
	if !ok {
		result = "error"
	}
	m.FetchDuration.WithLabelValues(provider, result).Observe(d.Seconds())
}

// RequestObserved records one served HTTP request.
func (m *Metrics) RequestObserved(route string, status int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
