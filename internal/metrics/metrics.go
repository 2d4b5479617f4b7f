// Package metrics registers the Prometheus collectors the rest of the
// service reports against: AI adventure call outcomes and latency, shop
// purchases, and mission completions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AICallsTotal counts AI adventure subsystem calls by operation
	// (generate/evaluate) and outcome (success/error).
	AICallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "moneyquest",
		Subsystem: "ai_client",
		Name:      "calls_total",
		Help:      "Total AI adventure subsystem calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	// AICallDuration observes AI adventure subsystem call latency.
	AICallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "moneyquest",
		Subsystem: "ai_client",
		Name:      "call_duration_seconds",
		Help:      "AI adventure subsystem call latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	// PurchasesTotal counts shop purchases by item type and outcome.
	PurchasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "moneyquest",
		Subsystem: "shop",
		Name:      "purchases_total",
		Help:      "Total shop purchase attempts by item type and outcome.",
	}, []string{"item_type", "outcome"})

	// MissionsCompletedTotal counts completed daily missions by type.
	MissionsCompletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "moneyquest",
		Subsystem: "mission",
		Name:      "completed_total",
		Help:      "Total daily missions completed, by mission type.",
	}, []string{"mission_type"})
)

// ObserveAICall records the outcome and latency of one AI subsystem call.
// Call it once the call returns, passing the start time taken before it:
//
//	start := time.Now()
//	resp, err := client.GenerateAdventure(ctx, req)
//	metrics.ObserveAICall("generate", start, err)
func ObserveAICall(operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	AICallsTotal.WithLabelValues(operation, outcome).Inc()
	AICallDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
