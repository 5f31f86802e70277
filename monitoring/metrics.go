package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scanOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scan_outcomes_total",
			Help: "Classified scan outcomes per event",
		},
		[]string{"event_id", "classification", "reason"},
	)

	redemptionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redemption_duration_seconds",
			Help:    "End-to-end verify-and-redeem latency",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"event_id"},
	)

	lookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "code_lookups_total",
			Help: "Manual ticket-code lookups",
		},
		[]string{"event_id", "status"},
	)

	rateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookups_rate_limited_total",
			Help: "Manual lookups rejected by the rate limiter",
		},
		[]string{"event_id"},
	)
)

// TrackScan records one classified scan outcome.
func TrackScan(eventID, classification, reason string) {
	if reason == "" {
		reason = "ok"
	}
	scanOutcomes.WithLabelValues(eventID, classification, reason).Inc()
}

// ObserveRedemption records verify-and-redeem latency.
func ObserveRedemption(eventID string, duration time.Duration) {
	redemptionDuration.WithLabelValues(eventID).Observe(duration.Seconds())
}

// TrackLookup records a manual code lookup ("ok" or "not-found").
func TrackLookup(eventID, status string) {
	lookups.WithLabelValues(eventID, status).Inc()
}

// TrackRateLimited records a lookup rejected by the rate limiter.
func TrackRateLimited(eventID string) {
	rateLimited.WithLabelValues(eventID).Inc()
}
