// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seeder_records_generated_total",
			Help: "Total number of synthetic records generated per table",
		},
		[]string{"table"},
	)

	RecordsPushed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seeder_records_pushed_total",
			Help: "Total number of records written to the backend per table",
		},
		[]string{"table"},
	)

	PushFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seeder_push_failures_total",
			Help: "Total number of failed backend writes or deletes per table",
		},
		[]string{"table"},
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "seeder_operation_duration_seconds",
			Help: "Duration of seeder operations in seconds",
		},
		[]string{"operation"},
	)

	OperationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seeder_operations_failed_total",
			Help: "Total number of failed seeder operations",
		},
		[]string{"operation", "error_code"},
	)

	OperationsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "seeder_operations_active",
			Help: "Number of seeder operations in progress",
		},
		[]string{"operation"},
	)
)

// RecordGenerated adds per-table row counts to RecordsGenerated.
func RecordGenerated(counts map[string]int) {
	for table, n := range counts {
		RecordsGenerated.WithLabelValues(table).Add(float64(n))
	}
}
