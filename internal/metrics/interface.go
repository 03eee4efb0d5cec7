package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncBackendRequest(op string, outcome string)
	ObserveBackendDuration(op string, duration float64)
	IncWeekBuilds()
	AddMalformedRecords(n int)
	IncActionInFlight()
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}
