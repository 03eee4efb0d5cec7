package notifier

import (
	"context"

	"github.com/mauv0809/rally/internal/pubsub"
	"github.com/mauv0809/rally/internal/schedule"
)

// Notifier defines a high-level interface for sending notifications about a player's schedule.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// SendWeeklyDigest posts the week of userID and returns the channel and message timestamp.
	SendWeeklyDigest(ctx context.Context, userID string, week schedule.Week, dryRun bool) (string, string, error)
	// FormatWeeklyDigest renders the digest without sending it.
	FormatWeeklyDigest(userID string, week schedule.Week) (any, error)
	// SendMatchEvent announces an accepted, rejected or newly proposed match.
	SendMatchEvent(ctx context.Context, event pubsub.MatchEvent, dryRun bool) error
}
