package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	reg = prometheus.NewRegistry()

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request duration",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path", "status_code"},
	)
	LicenseDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "license_decisions_total", Help: "License validations by result, reason and allow-list source"},
		[]string{"result", "reason", "source"},
	)
	LicenseCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "license_cache_hits_total", Help: "Validations served from a fresh cache record"},
	)
	LicenseCacheWriteFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "license_cache_write_failures_total", Help: "Failed cache record writes"},
	)
	AllowlistSizeGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "license_allowlist_domains", Help: "Number of licensed domains in the last resolved allow-list"},
	)
	LicenseFetchSuccessTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "license_fetch_success_total", Help: "Successful license list fetches"},
	)
	LicenseFetchFailureTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "license_fetch_failure_total", Help: "Failed license list fetches"},
	)
	LicenseFetchThrottledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "license_fetch_throttled_total", Help: "Fetch attempts skipped while the source is failing"},
	)
	LicenseLastFetchUnix = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "license_last_fetch_unixtime", Help: "Unix timestamp of last successful fetch"},
	)
)

var registered atomic.Bool

func Register() {
	if registered.Swap(true) {
		return
	}
	reg.MustRegister(HTTPRequestsTotal, HTTPRequestDuration, LicenseDecisionsTotal, LicenseCacheHitsTotal, LicenseCacheWriteFailuresTotal, AllowlistSizeGauge, LicenseFetchSuccessTotal, LicenseFetchFailureTotal, LicenseFetchThrottledTotal, LicenseLastFetchUnix)
}

// Returns the /metrics HTTP handler
func Handler() http.Handler { Register(); return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}) }

// Records metrics for a request.
func ObserveRequest(method, path, status string, dur time.Duration, statusCode int) {
	Register()
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, fmt.Sprintf("%d", statusCode)).Observe(dur.Seconds())
}
