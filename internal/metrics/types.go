package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	BackendRequests    *prometheus.CounterVec
	BackendDuration    *prometheus.HistogramVec
	WeekBuilds         prometheus.Counter
	MalformedRecords   prometheus.Counter
	ActionInFlight     prometheus.Counter
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}

// Backend request outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
