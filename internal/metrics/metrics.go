package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation labels for the engine's four public operations.
const (
	OpAvailability = "availability"
	OpConflicts    = "conflicts"
	OpAnalyze      = "analyze"
	OpRank         = "rank"
)

const (
	// OutcomeSuccess labels completed operations.
	OutcomeSuccess = "success"
	// OutcomeError labels failed operations (invalid input or dependency issues).
	OutcomeError = "error"
)

var (
	operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "syncup_engine",
			Name:      "operations_total",
			Help:      "Total scheduling operations handled, partitioned by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	operationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "syncup_engine",
			Name:      "operation_seconds",
			Help:      "Scheduling operation latency in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"operation"},
	)
)

// Register attaches the engine collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		operationsTotal,
		operationDurationSeconds,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveOperation records one operation's duration and outcome.
func ObserveOperation(operation string, duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	operationsTotal.WithLabelValues(operation, label).Inc()
	if duration < 0 {
		duration = 0
	}
	operationDurationSeconds.WithLabelValues(operation).Observe(duration.Seconds())
}
