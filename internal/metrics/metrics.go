package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	CacheHitsTotal     prometheus.Counter
	CacheMissesTotal   prometheus.Counter
	CacheFlushesTotal  *prometheus.CounterVec
	CacheEntries       prometheus.Gauge
	FetchErrorsTotal   *prometheus.CounterVec
	FetchDuration      prometheus.Histogram
	ConversionRequests prometheus.Counter
}

// NewMetrics registers every collector with reg. Pass prometheus.NewRegistry()
// in tests to keep them isolated from the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		CacheHitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_cache_hits_total",
				Help: "Total number of rate lookups answered from the cache",
			},
		),

		CacheMissesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_cache_misses_total",
				Help: "Total number of rate lookups that required a fetch",
			},
		),

		CacheFlushesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_cache_flushes_total",
				Help: "Total number of cache flushes by reason",
			},
			[]string{"reason"},
		),

		CacheEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rate_cache_entries",
				Help: "Number of rates currently cached",
			},
		),

		FetchErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_fetch_errors_total",
				Help: "Total number of failed rate fetches by kind",
			},
			[]string{"kind"},
		),

		FetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rate_fetch_duration_seconds",
				Help:    "Duration of requests to the rate provider in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		ConversionRequests: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "conversion_requests_total",
				Help: "Total number of currency conversion requests",
			},
		),
	}
}
