// Package metrics exposes Prometheus counters for the suggestion engine.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	suggestionsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentops_suggestions_created_total",
			Help: "Suggestions created, by the backend that persisted them",
		},
		[]string{"backend"},
	)

	storeFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentops_store_fallback_total",
			Help: "Writes that fell back to the local store after a remote failure",
		},
		[]string{"op"},
	)

	reviewTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentops_review_transitions_total",
			Help: "Review transitions applied, by resulting status",
		},
		[]string{"status"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentops_notifications_total",
			Help: "Suggestion notification attempts, by outcome",
		},
		[]string{"outcome"},
	)
)

var registerOnce sync.Once

// Register registers all collectors with the default registry. Must be
// called once at startup; the counters work unregistered, so tests can use
// the recording helpers without it.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(suggestionsCreated, storeFallbacks, reviewTransitions, notifications)
	})
}

// RecordSuggestionCreated counts a persisted suggestion.
func RecordSuggestionCreated(backend string) {
	suggestionsCreated.WithLabelValues(backend).Inc()
}

// RecordStoreFallback counts a remote write failure that fell back to local.
func RecordStoreFallback(op string) {
	storeFallbacks.WithLabelValues(op).Inc()
}

// RecordReviewTransition counts an applied approve/reject transition.
func RecordReviewTransition(status string) {
	reviewTransitions.WithLabelValues(status).Inc()
}

// RecordNotification counts a notification attempt ("success" or "failure").
func RecordNotification(outcome string) {
	notifications.WithLabelValues(outcome).Inc()
}
