package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	WebhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptdeck_webhook_events_total",
			Help: "Verified Stripe webhook events by type and outcome",
		},
		[]string{"type", "outcome"}, // processed|ignored|anomaly|failed
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptdeck_notifications_total",
			Help: "Membership-change notifications by sink and outcome",
		},
		[]string{"sink", "outcome"}, // delivered|failed
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		WebhookEventsTotal,
		NotificationsTotal,
	)
}
