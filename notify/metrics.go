package notify

import "github.com/prometheus/client_golang/prometheus"

var (
	sentCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dealstreak",
		Subsystem: "notify",
		Name:      "messages_sent_total",
		Help:      "Messages accepted by the messaging platform, labeled by primitive.",
	}, []string{"primitive"})

	failedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dealstreak",
		Subsystem: "notify",
		Name:      "messages_failed_total",
		Help:      "Messages the messaging platform rejected or never received, labeled by primitive.",
	}, []string{"primitive"})

	rejectedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dealstreak",
		Subsystem: "notify",
		Name:      "messages_quota_rejected_total",
		Help:      "Messages not sent because the quota was exhausted, labeled by primitive.",
	}, []string{"primitive"})
)

func init() {
	prometheus.MustRegister(sentCounter, failedCounter, rejectedCounter)
}
