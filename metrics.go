package dealstreak

import "github.com/prometheus/client_golang/prometheus"

var (
	aggregateFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dealstreak",
		Subsystem: "ledger",
		Name:      "aggregate_failures_total",
		Help:      "User aggregate updates that failed and were left for reconciliation, labeled by operation.",
	}, []string{"operation"})

	reconciledUsers = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dealstreak",
		Subsystem: "ledger",
		Name:      "reconciled_users_total",
		Help:      "User aggregates rebuilt from the activity ledger.",
	})

	droppedEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dealstreak",
		Subsystem: "realtime",
		Name:      "events_dropped_total",
		Help:      "Realtime events not delivered to a subscriber whose buffer was full.",
	}, []string{"event"})
)

func init() {
	prometheus.MustRegister(aggregateFailures, reconciledUsers, droppedEvents)
}
