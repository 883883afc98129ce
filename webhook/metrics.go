package webhook

import "github.com/prometheus/client_golang/prometheus"

var (
	eventCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dealstreak",
		Subsystem: "webhook",
		Name:      "events_total",
		Help:      "Webhook events labeled by type and outcome.",
	}, []string{"type", "outcome"})

	commandCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dealstreak",
		Subsystem: "webhook",
		Name:      "commands_total",
		Help:      "Chat commands labeled by name and outcome.",
	}, []string{"command", "outcome"})
)

func init() {
	prometheus.MustRegister(eventCounter, commandCounter)
}
