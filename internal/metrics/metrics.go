// Package metrics exposes the daemon's own Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_cycles_total",
		Help: "Evaluation cycles by alert family and result (ok, fetch_error).",
	}, []string{"family", "result"})

	EmitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_emits_total",
		Help: "Notification-worthy transitions by alert family and kind (fired, resolved, report).",
	}, []string{"family", "kind"})

	DeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_deliveries_total",
		Help: "Delivery attempts by channel and status (ok, error).",
	}, []string{"channel", "status"})

	StateStoreDegradations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_state_store_degradations_total",
		Help: "Cycles that fell back to always-emit because the state store failed.",
	})
)
