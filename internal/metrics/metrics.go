package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the HTTP API, ratings, favorites and sessions.
// Exposed on /metrics when PROMETHEUS_ENABLED is set.

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookhub_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	RatingWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookhub_rating_writes_total",
			Help: "Total number of rating writes by outcome",
		},
		[]string{"outcome"}, // "created", "updated", "removed"
	)

	FavoriteWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookhub_favorite_writes_total",
			Help: "Total number of favorite mutations by operation",
		},
		[]string{"operation"}, // "add", "remove"
	)

	FavoriteRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookhub_favorite_rejections_total",
			Help: "Total number of rejected favorite additions by reason",
		},
		[]string{"reason"}, // "duplicate_in_request", "already_favorited"
	)

	SessionEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookhub_session_events_total",
			Help: "Total number of session lifecycle events",
		},
		[]string{"event"}, // "login", "login_failed", "logout"
	)
)

// RecordRatingWrite increments the rating write counter for the given outcome.
func RecordRatingWrite(outcome string) {
	RatingWrites.WithLabelValues(outcome).Inc()
}

// RecordFavoriteWrite increments the favorite mutation counter by n.
func RecordFavoriteWrite(operation string, n int) {
	FavoriteWrites.WithLabelValues(operation).Add(float64(n))
}

func RecordFavoriteRejection(reason string) {
	FavoriteRejections.WithLabelValues(reason).Inc()
}

func RecordSessionEvent(event string) {
	SessionEvents.WithLabelValues(event).Inc()
}
