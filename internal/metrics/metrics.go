// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vinylstock_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vinylstock_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vinylstock_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vinylstock_api_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	// StockAdjustments counts quantity changes by direction (in, out, rejected).
	StockAdjustments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vinylstock_stock_adjustments_total",
			Help: "Total number of item quantity adjustments",
		},
		[]string{"result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vinylstock_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vinylstock_circuit_breaker_requests_total",
			Help: "Total number of requests through a circuit breaker",
		},
		[]string{"name", "result"},
	)

	CatalogTokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vinylstock_catalog_token_refreshes_total",
			Help: "Total number of catalog access token requests",
		},
		[]string{"result"},
	)
)

// RecordAPIRequest records one finished request. route is the matched
// pattern, not the raw path, to keep label cardinality bounded.
func RecordAPIRequest(method, route string, status int, d time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordStockAdjustment classifies a quantity change.
func RecordStockAdjustment(delta int, err error) {
	switch {
	case err != nil:
		StockAdjustments.WithLabelValues("rejected").Inc()
	case delta > 0:
		StockAdjustments.WithLabelValues("in").Inc()
	default:
		StockAdjustments.WithLabelValues("out").Inc()
	}
}

func boolResult(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func RecordTokenRefresh(ok bool) {
	CatalogTokenRefreshes.WithLabelValues(boolResult(ok)).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
