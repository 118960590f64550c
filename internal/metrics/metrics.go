// Package metrics holds the Prometheus instrumentation for the catalog server.
//
// Metrics are registered on the default registry at init and exposed by
// Handler. Helpers keep label values consistent between call sites.
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
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookcatalog_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookcatalog_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookcatalog_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookcatalog_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
	)

	// Auth Metrics
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookcatalog_auth_attempts_total",
			Help: "Registration and login attempts by outcome",
		},
		[]string{"operation", "result"}, // operation: register, login; result: success, failure
	)

	// Catalog Metrics
	BookViews = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookcatalog_book_views_total",
			Help: "Authenticated single-book views",
		},
		[]string{"kind"}, // "first", "repeat"
	)

	BooksImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookcatalog_books_imported_total",
			Help: "Books processed by file import",
		},
		[]string{"result"}, // "imported", "skipped"
	)

	BooksExported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookcatalog_books_exported_total",
			Help: "Books written by export",
		},
		[]string{"format"},
	)

	// Recommendation Metrics
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookcatalog_recommendations_served_total",
			Help: "Recommendation requests by strategy",
		},
		[]string{"strategy"}, // "genre", "author", "history"
	)

	RecommendationResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookcatalog_recommendation_results",
			Help:    "Number of books returned per recommendation request",
			Buckets: []float64{0, 1, 3, 5, 10, 15},
		},
		[]string{"strategy"},
	)
)

// Handler returns the Prometheus exposition handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit counts a rejected request.
func RecordRateLimitHit() {
	APIRateLimitHits.Inc()
}

// RecordAuthAttempt counts a register or login attempt.
func RecordAuthAttempt(operation string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	AuthAttempts.WithLabelValues(operation, result).Inc()
}

// RecordBookView counts a view; first is true when it created a history row.
func RecordBookView(first bool) {
	kind := "repeat"
	if first {
		kind = "first"
	}
	BookViews.WithLabelValues(kind).Inc()
}

// RecordImport counts the outcome of one file import.
func RecordImport(imported, skipped int) {
	BooksImported.WithLabelValues("imported").Add(float64(imported))
	BooksImported.WithLabelValues("skipped").Add(float64(skipped))
}

// RecordExport counts exported books.
func RecordExport(format string, count int) {
	BooksExported.WithLabelValues(format).Add(float64(count))
}

// RecordRecommendation records one served recommendation list.
func RecordRecommendation(strategy string, results int) {
	RecommendationsServed.WithLabelValues(strategy).Inc()
	RecommendationResults.WithLabelValues(strategy).Observe(float64(results))
}
