package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rally/internal/backend"
	"github.com/mauv0809/rally/internal/config"
	"github.com/mauv0809/rally/internal/dashboard"
	"github.com/mauv0809/rally/internal/database"
	"github.com/mauv0809/rally/internal/digest"
	server "github.com/mauv0809/rally/internal/http"
	"github.com/mauv0809/rally/internal/league"
	"github.com/mauv0809/rally/internal/metrics"
	"github.com/mauv0809/rally/internal/notifier"
	"github.com/mauv0809/rally/internal/notifier/slack"
	"github.com/mauv0809/rally/internal/pubsub"
	"github.com/mauv0809/rally/internal/scheduler"
	"github.com/mauv0809/rally/internal/session"
)

const digestJobName = "weekly-digest"

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %s", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Failed to resolve timezone: %s", err)
	}

	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()

	// The backend authenticates with the session token and the session logs in through the backend.
	var sessions *session.Manager
	client := backend.NewClient(cfg.BackendURL, metricsSvc,
		backend.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		backend.WithTokenSource(func() string { return sessions.Token() }),
	)
	sessions = session.NewManager(session.NewStore(db), client)
	if err := sessions.Init(ctx); err != nil {
		log.Fatalf("Failed to restore session: %s", err)
	}
	go logSessionEvents(ctx, sessions)

	events := newPubSub(ctx, cfg.ProjectID)
	defer events.Close()

	dash := dashboard.New(client, events, metricsSvc, loc)
	leagues := league.New(client)

	// Interfaces stay untyped nil when Slack is off so the handlers can tell.
	var (
		n            notifier.Notifier
		digestRunner server.DigestRunner
	)
	sched, err := scheduler.New(loc)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %s", err)
	}
	if cfg.Slack.Enabled() {
		n = slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
		job := digest.NewJob(sessions, dash, n, digest.NewStore(db))
		digestRunner = job
		if err := sched.AddWeekly(digestJobName, cfg.Digest.Hour, cfg.Digest.Minute, job.Scheduled); err != nil {
			log.Fatalf("Failed to schedule weekly digest: %s", err)
		}
		sched.Start()
		if next, err := sched.NextRun(digestJobName); err == nil {
			log.Info("Weekly digest scheduled", "next_run", next)
		}
	} else {
		log.Warn("Slack is not configured, weekly digest and match announcements are disabled")
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			log.Error("Failed to stop scheduler", "error", err)
		}
	}()

	s := server.NewServer(
		cfg,
		sessions,
		dash,
		leagues,
		client,
		digestRunner,
		n,
		metricsSvc,
		metricsHandler,
		events,
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port, "backend", cfg.BackendURL, "timezone", loc.String())
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}

func newPubSub(ctx context.Context, projectID string) pubsub.PubSubClient {
	if projectID == "" {
		log.Info("GCP_PROJECT not set, match events are only logged")
		return pubsub.NewDisabled()
	}
	client, err := pubsub.New(ctx, projectID)
	if err != nil {
		log.Error("Failed to create Pub/Sub client, match events are only logged", "error", err)
		return pubsub.NewDisabled()
	}
	return client
}

func logSessionEvents(ctx context.Context, sessions session.Provider) {
	ch, cancel := sessions.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			log.Info("Session changed", "event", ev.Type, "userID", ev.Session.UserID)
		}
	}
}
