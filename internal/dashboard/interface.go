package dashboard

import (
	"context"
	"time"

	"github.com/mauv0809/rally/internal/schedule"
)

// Dashboard coordinates snapshot loads and match actions for the schedule views.
type Dashboard interface {
	Week(ctx context.Context, userID string, view View) (schedule.Week, error)
	Pending(ctx context.Context, userID string) ([]schedule.MatchRecord, error)
	Accept(ctx context.Context, matchID, playerID string, view View) (schedule.Week, error)
	Reject(ctx context.Context, matchID, playerID string, view View) (schedule.Week, error)
	Schedule(ctx context.Context, req ScheduleRequest) (ScheduleResult, error)
	Availability(ctx context.Context, userID string, day time.Time) ([]schedule.Slot, error)
	LeagueUpcoming(ctx context.Context, leagueID string) ([]schedule.MatchRecord, error)
	Location() *time.Location
}
