package http

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/mauv0809/rally/internal/backend"
	"github.com/mauv0809/rally/internal/config"
	"github.com/mauv0809/rally/internal/dashboard"
	"github.com/mauv0809/rally/internal/http/handlers"
	"github.com/mauv0809/rally/internal/league"
	"github.com/mauv0809/rally/internal/metrics"
	"github.com/mauv0809/rally/internal/notifier"
	"github.com/mauv0809/rally/internal/pubsub"
	"github.com/mauv0809/rally/internal/session"
	"github.com/rs/cors"
)

// NewServer wires the routes. digestRunner and n may be nil when Slack is not configured.
func NewServer(cfg config.Config, sessions session.Provider, dash dashboard.Dashboard, leagues league.Service, client backend.Client, digestRunner DigestRunner, n notifier.Notifier, metricsSvc metrics.Metrics, metricsHandler http.Handler, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Sessions:       sessions,
		Dashboard:      dash,
		Leagues:        leagues,
		Backend:        client,
		Digest:         digestRunner,
		Notifier:       n,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Router:         mux.NewRouter().UseEncodedPath(),
		pubsub:         pubsub,
	}

	server.routes()
	server.handler = cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg.CORSOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
	}).Handler(server.Router)
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// e.g. Chain(s.MyHandler(), requestIDMiddleware, paramsMiddleware)
	wrap := func(h http.Handler) http.Handler {
		return Chain(h, requestIDMiddleware, paramsMiddleware)
	}
	r := s.Router

	r.Handle("/metrics", s.MetricsHandler).Methods(http.MethodGet)
	r.Handle("/health", wrap(handlers.HealthCheckHandler())).Methods(http.MethodGet)

	r.Handle("/login", wrap(s.LoginHandler())).Methods(http.MethodPost)
	r.Handle("/logout", wrap(s.LogoutHandler())).Methods(http.MethodPost)
	r.Handle("/register", wrap(s.RegisterHandler())).Methods(http.MethodPost)
	r.Handle("/session", wrap(s.SessionHandler())).Methods(http.MethodGet)

	r.Handle("/week", wrap(s.WeekHandler())).Methods(http.MethodGet)
	r.Handle("/week.html", wrap(s.WeekPageHandler())).Methods(http.MethodGet)
	r.Handle("/matches/pending", wrap(s.PendingHandler())).Methods(http.MethodGet)
	r.Handle("/matches", wrap(s.ScheduleMatchHandler())).Methods(http.MethodPost)
	r.Handle("/matches/{id}/accept", wrap(s.RespondHandler(true))).Methods(http.MethodPost)
	r.Handle("/matches/{id}/reject", wrap(s.RespondHandler(false))).Methods(http.MethodPost)
	r.Handle("/availability", wrap(s.AvailabilityHandler())).Methods(http.MethodGet)

	r.Handle("/leagues", wrap(handlers.ListLeaguesHandler(s.Leagues))).Methods(http.MethodGet)
	r.Handle("/leagues", wrap(handlers.CreateLeagueHandler(s.Leagues, s.Sessions))).Methods(http.MethodPost)
	r.Handle("/leagues/{id}", wrap(handlers.GetLeagueHandler(s.Leagues))).Methods(http.MethodGet)
	r.Handle("/leagues/{id}/join", wrap(handlers.JoinLeagueHandler(s.Leagues, s.Sessions))).Methods(http.MethodPost)
	r.Handle("/leagues/{id}/matches", wrap(handlers.LeagueMatchesHandler(s.Dashboard))).Methods(http.MethodGet)
	r.Handle("/leagues/{id}/leaderboard", wrap(handlers.LeaderboardHandler(s.Leagues))).Methods(http.MethodGet)
	r.Handle("/leagues/{id}/join-requests", wrap(handlers.ListJoinRequestsHandler(s.Leagues))).Methods(http.MethodGet)
	r.Handle("/leagues/{id}/join-requests/{rid}/{action:approve|reject}", wrap(handlers.RespondJoinRequestHandler(s.Leagues))).Methods(http.MethodPost)
	r.Handle("/players", wrap(handlers.ListPlayersHandler(s.Leagues))).Methods(http.MethodGet)
	r.Handle("/players/{id}/role", wrap(handlers.UpdatePlayerRoleHandler(s.Leagues))).Methods(http.MethodPatch)

	r.Handle("/digest", wrap(s.DigestHandler())).Methods(http.MethodPost)
	r.Handle("/events/match", wrap(handlers.MatchEventHandler(s.Notifier, s.pubsub))).Methods(http.MethodPost)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func allowedOrigins(raw []string) []string {
	var origins []string
	for _, o := range raw {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
