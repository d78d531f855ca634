// Package observability holds the service's Prometheus collectors and logger setup.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	usersRegisteredCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "users",
		Name:      "registered_total",
		Help:      "Number of users written to the registry.",
	})

	activitiesLoggedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "activities",
		Name:      "add_requests_total",
		Help:      "Number of add-activity requests, labeled by outcome.",
	}, []string{"outcome"})

	logQueriesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "activities",
		Name:      "log_queries_total",
		Help:      "Number of activity log queries, labeled by filter mode.",
	}, []string{"mode"})

	publishFailuresCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "events",
		Name:      "publish_failures_total",
		Help:      "Number of events that could not be delivered, labeled by topic.",
	}, []string{"topic"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "exercise_tracker",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Time spent serving HTTP requests.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(usersRegisteredCounter, activitiesLoggedCounter, logQueriesCounter, publishFailuresCounter, requestDuration)
}

// RecordUserRegistered counts a successful registration.
func RecordUserRegistered() {
	usersRegisteredCounter.Inc()
}

// RecordActivityAdded counts an add-activity request by outcome.
func RecordActivityAdded(outcome string) {
	activitiesLoggedCounter.WithLabelValues(outcome).Inc()
}

// RecordLogQuery counts a log query by mode.
func RecordLogQuery(mode string) {
	logQueriesCounter.WithLabelValues(mode).Inc()
}

// RecordPublishFailure counts an undelivered event.
func RecordPublishFailure(topic string) {
	publishFailuresCounter.WithLabelValues(topic).Inc()
}

// ObserveRequest records the latency of one HTTP request.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
