package digest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rally/internal/dashboard"
	"github.com/mauv0809/rally/internal/notifier"
	"github.com/mauv0809/rally/internal/session"
)

// NewJob creates a new digest Job.
func NewJob(sessions session.Provider, dash dashboard.Dashboard, n notifier.Notifier, store Store) *Job {
	return &Job{
		sessions:  sessions,
		dashboard: dash,
		notifier:  n,
		store:     store,
		now:       time.Now,
	}
}

// Run posts the current week of the logged in player, at most once per week.
// A dry run formats and logs the digest without posting or recording it.
func (j *Job) Run(ctx context.Context, dryRun bool) (Result, error) {
	userID, err := j.sessions.UserID()
	if err != nil {
		return Result{}, err
	}

	week, err := j.dashboard.Week(ctx, userID, dashboard.View{Ref: j.now()})
	if err != nil {
		return Result{}, fmt.Errorf("failed to build week for digest: %w", err)
	}
	res := Result{
		UserID:    userID,
		WeekStart: week.Window.Start(),
		Matches:   week.Count(),
		DryRun:    dryRun,
	}

	if !dryRun {
		j.sendMu.Lock()
		defer j.sendMu.Unlock()

		sent, err := j.store.WasSent(ctx, userID, res.WeekStart)
		if err != nil {
			return Result{}, err
		}
		if sent {
			log.Info("Weekly digest already sent", "userID", userID, "week", res.WeekStart.Format(weekLayout))
			res.AlreadySent = true
			return res, nil
		}
	}

	res.ChannelID, res.MessageTS, err = j.notifier.SendWeeklyDigest(ctx, userID, week, dryRun)
	if err != nil {
		return Result{}, fmt.Errorf("failed to send weekly digest: %w", err)
	}
	if dryRun {
		return res, nil
	}

	if err := j.store.Record(ctx, Record{
		UserID:     userID,
		WeekStart:  res.WeekStart,
		ChannelID:  res.ChannelID,
		MessageTS:  res.MessageTS,
		MatchCount: res.Matches,
		SentAt:     j.now(),
	}); err != nil {
		return Result{}, err
	}
	log.Info("Weekly digest sent", "userID", userID, "week", res.WeekStart.Format(weekLayout), "matches", res.Matches)
	return res, nil
}

// Scheduled is the entry point for the scheduler. Nobody logged in is not an error.
func (j *Job) Scheduled(ctx context.Context) {
	if _, err := j.Run(ctx, false); err != nil {
		if errors.Is(err, session.ErrNoSession) {
			log.Info("Skipping weekly digest, nobody is logged in")
			return
		}
		log.Error("Weekly digest failed", "error", err)
	}
}
