// Package metrics holds the prometheus collectors shared by the modules.
package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ticket_integrity"

var (
	gateVerdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_verdicts_total",
			Help:      "Gate scan verdicts by status and reason",
		},
		[]string{"status", "reason"},
	)

	ledgerWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_writes_total",
			Help:      "Ledger write requests by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	ledgerWriteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ledger_write_duration_seconds",
			Help:      "Latency of ledger write requests",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"kind"},
	)

	analyticsDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_degraded_total",
			Help:      "Analytics views served with a missing or approximated section",
		},
		[]string{"view", "section"},
	)
)

// ObserveVerdict counts one gate verdict.
func ObserveVerdict(status, reason string) {
	if reason == "" {
		reason = "none"
	}
	gateVerdicts.WithLabelValues(status, reason).Inc()
}

// ObserveWrite counts one ledger write. outcome is "accepted", a rejection code or "failed".
func ObserveWrite(kind, outcome string, elapsed time.Duration) {
	ledgerWrites.WithLabelValues(kind, outcome).Inc()
	ledgerWriteDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ObserveDegraded counts an analytics section that couldn't be served exactly.
func ObserveDegraded(view, section string) {
	analyticsDegraded.WithLabelValues(view, section).Inc()
}

// Mount exposes the default registry at path.
func Mount(router fiber.Router, path string) {
	router.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
}
