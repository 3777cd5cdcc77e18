package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransactionBuildDuration tracks the latency of building and persisting
	// package transactions
	TransactionBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "package_transaction_build_duration_seconds",
			Help:    "Duration of package transaction builds in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		},
		[]string{"status"}, // success or failed
	)

	// PromoRejections counts promo codes rejected by the evaluator
	PromoRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promo_code_rejections_total",
			Help: "Number of promo codes rejected, by reason",
		},
		[]string{"reason"}, // inactive or age_ineligible
	)

	// SessionsConsumed counts consumed sessions on session-based transactions
	SessionsConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "package_sessions_consumed_total",
			Help: "Number of sessions consumed from session-based packages",
		},
	)
)

// RecordTransactionBuildDuration records the duration of a transaction build
func RecordTransactionBuildDuration(status string, duration float64) {
	TransactionBuildDuration.WithLabelValues(status).Observe(duration)
}
