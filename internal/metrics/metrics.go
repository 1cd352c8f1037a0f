package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "expense_tracker"

var (
	// AccountEventsTotal counts audited account and billing actions
	// (user_registered, login_failed, entitlement_activated, ...).
	AccountEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "account_events_total",
			Help:      "Total number of audited account and billing actions",
		},
		[]string{"action"},
	)

	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_total",
			Help:      "Total number of payment webhook deliveries by event kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	CheckoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Total number of checkout operations",
		},
		[]string{"stage", "outcome"}, // stage: create, verify
	)
)

// RecordAction has the shape of the services' audit hook.
func RecordAction(_ context.Context, action string, _ map[string]string) {
	AccountEventsTotal.WithLabelValues(action).Inc()
}

func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
