package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of a full recommendation recalculation run
	RecalculateLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recommend_recalculate_latency_seconds",
		Help:    "Latency of recommendation recalculation runs",
		Buckets: prometheus.DefBuckets,
	})

	// Total recommendation rows persisted by recalculation
	RecommendationsSaved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommend_recommendations_saved_total",
		Help: "Total number of recommendation rows persisted",
	})

	// Ingestion outcomes per entity
	IngestRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_records_total",
			Help: "Count of ingested records by entity and outcome.",
		},
		[]string{"entity", "outcome"},
	)

	// Maintenance operation runs by operation and status
	MaintenanceRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintenance_runs_total",
			Help: "Count of maintenance operation runs by operation and status.",
		},
		[]string{"operation", "status"},
	)
)

func Init() {
	prometheus.MustRegister(
		RecalculateLatency,
		RecommendationsSaved,
		IngestRecordsTotal,
		MaintenanceRunsTotal,
	)
}
