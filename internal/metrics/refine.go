package metrics

import "github.com/prometheus/client_golang/prometheus"

// Refinement and history Prometheus metrics.
var (
	RefineOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "refinery",
			Name:      "refine_operations_total",
			Help:      "Total number of refinement operations",
		},
		[]string{"operation"},
	)

	RefineResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "refinery",
			Name:      "refine_results_total",
			Help:      "Search results seen by each refinement stage",
		},
		[]string{"stage"}, // input, skipped_invalid, dropped_falsy, dropped_exact, dropped_near, output
	)

	HistoryOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "refinery",
			Name:      "history_operations_total",
			Help:      "Search history store operations",
		},
		[]string{"operation", "status"},
	)
)

var refineMetricsRegistered bool

// RegisterRefineMetrics registers refinement and history metrics. Must be called once from main.
func RegisterRefineMetrics() {
	if refineMetricsRegistered {
		return
	}
	prometheus.MustRegister(RefineOperationsTotal)
	prometheus.MustRegister(RefineResultsTotal)
	prometheus.MustRegister(HistoryOperationsTotal)
	refineMetricsRegistered = true
}

// Recorder feeds the package-level vectors. The zero value is ready to use.
type Recorder struct{}

// Operation counts one call of a refinement operation.
func (Recorder) Operation(name string) {
	RefineOperationsTotal.WithLabelValues(name).Inc()
}

// Stage adds n results to a refinement stage counter.
func (Recorder) Stage(stage string, n int) {
	if n <= 0 {
		return
	}
	RefineResultsTotal.WithLabelValues(stage).Add(float64(n))
}

// History counts one history store operation.
func (Recorder) History(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	HistoryOperationsTotal.WithLabelValues(operation, status).Inc()
}
