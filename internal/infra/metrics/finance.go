package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	reconcileRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finance_reconcile_runs_total",
			Help: "Reconciliation runs by outcome.",
		},
		[]string{"outcome"},
	)

	reconcileProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "finance_reconcile_clients_processed_total",
			Help: "Clients that produced a receivable across all runs.",
		},
	)

	reconcileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "finance_reconcile_duration_seconds",
			Help:    "Reconciliation run duration.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	fanoutStepFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_fanout_step_failures_total",
			Help: "Client fan-out sub-writes that failed, by step.",
		},
		[]string{"step"},
	)
)

func init() {
	register(reconcileRuns, reconcileProcessed, reconcileDuration, fanoutStepFailures)
}

func ObserveReconcile(outcome string, processed int, seconds float64) {
	reconcileRuns.WithLabelValues(outcome).Inc()
	if processed > 0 {
		reconcileProcessed.Add(float64(processed))
	}
	reconcileDuration.Observe(seconds)
}

func IncFanoutStepFailure(step string) {
	fanoutStepFailures.WithLabelValues(step).Inc()
}
