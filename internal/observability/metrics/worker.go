package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	indexTotal    *prometheus.CounterVec
	indexDuration *prometheus.HistogramVec
	indexInFlight prometheus.Gauge
	indexedChunks *prometheus.HistogramVec
	embedCache    *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	indexTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legisearch",
			Subsystem: "worker",
			Name:      "instrument_index_total",
			Help:      "Total indexed instruments by status.",
		},
		[]string{"service", "status"},
	)
	indexDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legisearch",
			Subsystem: "worker",
			Name:      "instrument_index_duration_seconds",
			Help:      "Instrument indexing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	indexInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "legisearch",
			Subsystem: "worker",
			Name:      "instrument_index_in_flight",
			Help:      "Number of in-flight instrument indexing tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	indexedChunks := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legisearch",
			Subsystem: "worker",
			Name:      "indexed_chunks",
			Help:      "Distribution of chunks produced per indexed instrument.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"service"},
	)
	embedCache := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legisearch",
			Subsystem: "worker",
			Name:      "embed_cache_total",
			Help:      "Embedding cache lookups by outcome.",
		},
		[]string{"service", "outcome"},
	)

	registry.MustRegister(indexTotal, indexDuration, indexInFlight, indexedChunks, embedCache)

	return &WorkerMetrics{
		registry:      registry,
		indexTotal:    indexTotal,
		indexDuration: indexDuration,
		indexInFlight: indexInFlight,
		indexedChunks: indexedChunks,
		embedCache:    embedCache,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartInstrument() {
	m.indexInFlight.Inc()
}

func (m *WorkerMetrics) FinishInstrument(service string, duration time.Duration, err error) {
	m.indexInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.indexTotal.WithLabelValues(service, status).Inc()
	m.indexDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveIndexedChunks(service string, chunks int) {
	if chunks < 0 {
		return
	}
	m.indexedChunks.WithLabelValues(service).Observe(float64(chunks))
}

func (m *WorkerMetrics) RecordEmbedCache(service string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.embedCache.WithLabelValues(service, outcome).Inc()
}

// IndexingObserver binds the chunk and embed-cache counters to one
// service label for the indexing pipeline.
type IndexingObserver struct {
	metrics *WorkerMetrics
	service string
}

func (m *WorkerMetrics) Observer(service string) *IndexingObserver {
	return &IndexingObserver{metrics: m, service: service}
}

func (o *IndexingObserver) IndexedChunks(count int) {
	o.metrics.ObserveIndexedChunks(o.service, count)
}

func (o *IndexingObserver) EmbedCacheLookup(hit bool) {
	o.metrics.RecordEmbedCache(o.service, hit)
}
