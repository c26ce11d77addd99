package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// scheduling pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec

	candidatesEvaluated prometheus.Counter
	conflictChecks      *prometheus.CounterVec
	suggestionDuration  prometheus.Observer
	suggestionsReturned prometheus.Observer
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	candidatesEvaluated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_candidates_evaluated_total",
		Help: "Total candidate windows examined by the auto scheduler",
	})

	conflictChecks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_conflict_checks_total",
		Help: "Total conflict checks grouped by outcome",
	}, []string{"outcome"})

	suggestionDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scheduler_suggestion_duration_seconds",
		Help:    "End to end duration of suggestion requests",
		Buckets: prometheus.DefBuckets,
	})

	suggestionsReturned := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scheduler_suggestions_returned",
		Help:    "Number of suggestions returned per request",
		Buckets: []float64{0, 1, 5, 10, 15, 20},
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHits, cacheMisses, dbQueryDuration, candidatesEvaluated, conflictChecks, suggestionDuration, suggestionsReturned, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:            registry,
		handler:             handler,
		requestDuration:     requestDuration,
		requestTotal:        requestTotal,
		cacheLatency:        cacheLatency,
		cacheWrite:          cacheWrite,
		cacheHits:           cacheHits,
		cacheMisses:         cacheMisses,
		dbQueryDuration:     dbQueryDuration,
		candidatesEvaluated: candidatesEvaluated,
		conflictChecks:      conflictChecks,
		suggestionDuration:  suggestionDuration,
		suggestionsReturned: suggestionsReturned,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil || m.cacheWrite == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// AddCandidatesEvaluated counts candidate windows examined during a request.
func (m *MetricsService) AddCandidatesEvaluated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.candidatesEvaluated.Add(float64(n))
}

// RecordConflictCheck counts one conflict check by outcome.
func (m *MetricsService) RecordConflictCheck(outcome string) {
	if m == nil {
		return
	}
	m.conflictChecks.WithLabelValues(outcome).Inc()
}

// ObserveSuggestionRequest records the shape of one completed suggestion run.
func (m *MetricsService) ObserveSuggestionRequest(duration time.Duration, returned int) {
	if m == nil {
		return
	}
	m.suggestionDuration.Observe(duration.Seconds())
	m.suggestionsReturned.Observe(float64(returned))
}
