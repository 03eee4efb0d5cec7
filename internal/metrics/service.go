package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		BackendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rally_backend_requests_total",
			Help: "The total number of requests sent to the league backend.",
		}, []string{"op", "outcome"}),
		BackendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rally_backend_request_duration_seconds",
			Help:    "The duration of requests sent to the league backend, retries included.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"op"}),
		WeekBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rally_week_builds_total",
			Help: "The total number of weekly schedules built.",
		}),
		MalformedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rally_malformed_match_records_total",
			Help: "The total number of match records skipped because their date could not be parsed.",
		}),
		ActionInFlight: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rally_actions_in_flight_rejected_total",
			Help: "The total number of match actions ignored because one was already pending.",
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rally_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rally_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rally_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.BackendRequests,
		s.BackendDuration,
		s.WeekBuilds,
		s.MalformedRecords,
		s.ActionInFlight,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncBackendRequest(op string, outcome string) {
	s.BackendRequests.WithLabelValues(op, outcome).Inc()
}

func (s *Service) ObserveBackendDuration(op string, duration float64) {
	s.BackendDuration.WithLabelValues(op).Observe(duration)
}

func (s *Service) IncWeekBuilds() {
	s.WeekBuilds.Inc()
}

func (s *Service) AddMalformedRecords(n int) {
	if n > 0 {
		s.MalformedRecords.Add(float64(n))
	}
}

func (s *Service) IncActionInFlight() {
	s.ActionInFlight.Inc()
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
