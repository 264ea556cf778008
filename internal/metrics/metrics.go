// Package metrics exposes the service's Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "orders_created_total",
		Help:      "Orders persisted in PENDING state.",
	})

	WebhooksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "webhooks_processed_total",
		Help:      "Invoice webhooks handled, by resulting status.",
	}, []string{"status"})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "notifications_sent_total",
		Help:      "WhatsApp notification attempts, by result.",
	}, []string{"result"})
)

// NotifyResult converts a send outcome into the metric label.
func NotifyResult(ok bool) string {
	if ok {
		return "sent"
	}
	return "failed"
}
