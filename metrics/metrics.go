// Package metrics exposes the Prometheus counters and histograms the
// worker runtime records: bus round-trips, task outcomes, and object
// store retries.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	taskOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hsn2",
		Subsystem: "taskproc",
		Name:      "task_outcomes_total",
		Help:      "Count of tasks by terminal outcome (completed, terminated, errored_<reason>).",
	}, []string{"outcome"})

	busRoundTrip = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hsn2",
		Subsystem: "bus",
		Name:      "send_sync_seconds",
		Help:      "Latency of a synchronous bus request/reply round trip.",
		Buckets:   prometheus.DefBuckets,
	})

	objectStoreRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hsn2",
		Subsystem: "objectstore",
		Name:      "request_retries_total",
		Help:      "Count of object store requests resent after a timeout.",
	})
)

// RecordTaskOutcome increments the task outcome counter for outcome
// (e.g. "completed", "terminated", "errored_DEFUNCT").
func RecordTaskOutcome(outcome string) {
	taskOutcomes.WithLabelValues(outcome).Inc()
}

// RecordBusRoundTrip records the duration of a completed SendSync
// call.
func RecordBusRoundTrip(d time.Duration) {
	busRoundTrip.Observe(d.Seconds())
}

// RecordObjectStoreRetry increments the object store retry counter.
func RecordObjectStoreRetry() {
	objectStoreRetries.Inc()
}
