package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingestion Prometheus metrics.
var (
	IngestDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nomadmatch",
			Name:      "ingest_documents_total",
			Help:      "Total documents written to the corpus",
		},
		[]string{"source"},
	)

	IngestSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nomadmatch",
			Name:      "ingest_skipped_total",
			Help:      "Documents skipped during ingestion",
		},
		[]string{"reason"}, // "embed_error" / "store_error"
	)
)

var ingestMetricsRegistered bool

// RegisterIngestMetrics registers ingestion metrics. Must be called once from main.
func RegisterIngestMetrics() {
	if ingestMetricsRegistered {
		return
	}
	prometheus.MustRegister(IngestDocumentsTotal)
	prometheus.MustRegister(IngestSkippedTotal)
	ingestMetricsRegistered = true
}
