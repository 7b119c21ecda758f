package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	retrievalTotal      *prometheus.CounterVec
	retrievalHitTotal   *prometheus.CounterVec
	retrievalNoHitTotal *prometheus.CounterVec
	retrievedCandidates *prometheus.HistogramVec
	retrievalDuration   *prometheus.HistogramVec
	legDegradedTotal    *prometheus.CounterVec
	rerankFallbackTotal *prometheus.CounterVec
	contextCacheTotal   *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legisearch",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legisearch",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "legisearch",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	retrievalTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legisearch",
			Subsystem: "retrieval",
			Name:      "requests_total",
			Help:      "Total successful retrieval requests.",
		},
		[]string{"service", "endpoint"},
	)
	retrievalHitTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legisearch",
			Subsystem: "retrieval",
			Name:      "hit_total",
			Help:      "Total retrieval requests with at least one candidate.",
		},
		[]string{"service", "endpoint"},
	)
	retrievalNoHitTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legisearch",
			Subsystem: "retrieval",
			Name:      "no_hit_total",
			Help:      "Total retrieval requests without candidates.",
		},
		[]string{"service", "endpoint"},
	)
	retrievedCandidates := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legisearch",
			Subsystem: "retrieval",
			Name:      "candidates",
			Help:      "Distribution of retained candidates per successful request.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service", "endpoint"},
	)
	retrievalDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legisearch",
			Subsystem: "retrieval",
			Name:      "duration_seconds",
			Help:      "Retrieval execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	legDegradedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legisearch",
			Subsystem: "retrieval",
			Name:      "leg_degraded_total",
			Help:      "Total searches served with one retrieval leg failed.",
		},
		[]string{"service", "leg"},
	)
	rerankFallbackTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legisearch",
			Subsystem: "retrieval",
			Name:      "rerank_fallback_total",
			Help:      "Total context builds that fell back to hybrid ordering.",
		},
		[]string{"service"},
	)
	contextCacheTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legisearch",
			Subsystem: "retrieval",
			Name:      "context_cache_total",
			Help:      "Context cache lookups by outcome.",
		},
		[]string{"service", "outcome"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		retrievalTotal,
		retrievalHitTotal,
		retrievalNoHitTotal,
		retrievedCandidates,
		retrievalDuration,
		legDegradedTotal,
		rerankFallbackTotal,
		contextCacheTotal,
	)

	return &HTTPServerMetrics{
		registry:            registry,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		retrievalTotal:      retrievalTotal,
		retrievalHitTotal:   retrievalHitTotal,
		retrievalNoHitTotal: retrievalNoHitTotal,
		retrievedCandidates: retrievedCandidates,
		retrievalDuration:   retrievalDuration,
		legDegradedTotal:    legDegradedTotal,
		rerankFallbackTotal: rerankFallbackTotal,
		contextCacheTotal:   contextCacheTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/instruments/"):
		return "/v1/instruments/{instrument_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordRetrieval(service, endpoint string, candidateCount int, duration time.Duration) {
	m.retrievalTotal.WithLabelValues(service, endpoint).Inc()
	m.retrievedCandidates.WithLabelValues(service, endpoint).Observe(float64(candidateCount))
	m.retrievalDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())

	if candidateCount > 0 {
		m.retrievalHitTotal.WithLabelValues(service, endpoint).Inc()
		return
	}
	m.retrievalNoHitTotal.WithLabelValues(service, endpoint).Inc()
}

func (m *HTTPServerMetrics) RecordLegDegraded(service, leg string) {
	if leg == "" {
		leg = "unknown"
	}
	m.legDegradedTotal.WithLabelValues(service, leg).Inc()
}

func (m *HTTPServerMetrics) RecordRerankFallback(service string) {
	m.rerankFallbackTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordContextCache(service string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.contextCacheTotal.WithLabelValues(service, outcome).Inc()
}

// RetrievalObserver binds the degradation and cache counters to one
// service label so the retrieval engine can record events without
// knowing about prometheus.
type RetrievalObserver struct {
	metrics *HTTPServerMetrics
	service string
}

func (m *HTTPServerMetrics) Observer(service string) *RetrievalObserver {
	return &RetrievalObserver{metrics: m, service: service}
}

func (o *RetrievalObserver) LegDegraded(leg string) {
	o.metrics.RecordLegDegraded(o.service, leg)
}

func (o *RetrievalObserver) RerankFallback() {
	o.metrics.RecordRerankFallback(o.service)
}

func (o *RetrievalObserver) ContextCacheLookup(hit bool) {
	o.metrics.RecordContextCache(o.service, hit)
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
