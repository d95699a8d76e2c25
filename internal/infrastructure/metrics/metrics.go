// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	InstallmentsMarkedOverdue = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "flexemi",
		Name:      "installments_marked_overdue_total",
		Help:      "Installments moved from PENDING to OVERDUE by the late-fee sweep.",
	})
	LateFeesCharged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "flexemi",
		Name:      "late_fees_charged_total",
		Help:      "Late-fee charges inserted.",
	})
	SweepFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "flexemi",
		Name:      "late_fee_sweep_failures_total",
		Help:      "Loans whose late-fee sweep failed.",
	})
	PaymentTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flexemi",
		Name:      "payment_transitions_total",
		Help:      "Installment transitions applied by the payment workflow, by event.",
	}, []string{"event"})
	NotificationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flexemi",
		Name:      "notifications_failed_total",
		Help:      "Notifications that could not be delivered, by driver.",
	}, []string{"driver"})
)

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
