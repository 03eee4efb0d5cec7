package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mauv0809/rally/internal/backend"
	"github.com/mauv0809/rally/internal/config"
	"github.com/mauv0809/rally/internal/dashboard"
	"github.com/mauv0809/rally/internal/digest"
	"github.com/mauv0809/rally/internal/league"
	"github.com/mauv0809/rally/internal/metrics"
	"github.com/mauv0809/rally/internal/notifier"
	"github.com/mauv0809/rally/internal/pubsub"
	"github.com/mauv0809/rally/internal/session"
)

// DigestRunner sends the weekly digest on demand.
type DigestRunner interface {
	Run(ctx context.Context, dryRun bool) (digest.Result, error)
}

type Server struct {
	Sessions       session.Provider
	Dashboard      dashboard.Dashboard
	Leagues        league.Service
	Backend        backend.Client
	Digest         DigestRunner
	Notifier       notifier.Notifier
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Router         *mux.Router
	pubsub         pubsub.PubSubClient
	handler        http.Handler
}

// WeekResponse is the JSON form of the weekly schedule.
type WeekResponse struct {
	UserID   string        `json:"user_id"`
	Week     any           `json:"week"`
	Warnings []string      `json:"warnings,omitempty"`
	Actions  []MatchAction `json:"actions,omitempty"`
}

// MatchAction lists what the current user may do with a match of the week.
type MatchAction struct {
	MatchID       string `json:"match_id"`
	CanRespond    bool   `json:"can_respond"`
	CanReschedule bool   `json:"can_reschedule"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
