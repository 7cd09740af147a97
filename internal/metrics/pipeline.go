package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval pipeline Prometheus metrics.
var (
	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docquery",
			Name:      "query_duration_seconds",
			Help:      "End-to-end RAG query duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"outcome"}, // "answered" / "no_results" / "degraded" / "error"
	)

	QueryRetrievedResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docquery",
			Name:      "query_retrieved_results",
			Help:      "Number of fragments retrieved per query",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
		},
	)

	IngestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docquery",
			Name:      "ingest_duration_seconds",
			Help:      "Document ingestion duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 180},
		},
		[]string{"outcome"}, // "completed" / "failed"
	)

	IngestFragmentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docquery",
			Name:      "ingest_fragments_total",
			Help:      "Total fragments produced by ingestion",
		},
	)

	IndexEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docquery",
			Name:      "index_entries",
			Help:      "Current number of entries in the vector index",
		},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers retrieval pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(QueryRetrievedResults)
	prometheus.MustRegister(IngestDuration)
	prometheus.MustRegister(IngestFragmentsTotal)
	prometheus.MustRegister(IndexEntries)
	pipelineMetricsRegistered = true
}
