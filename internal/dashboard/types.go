package dashboard

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mauv0809/rally/internal/backend"
	"github.com/mauv0809/rally/internal/metrics"
	"github.com/mauv0809/rally/internal/pubsub"
	"github.com/mauv0809/rally/internal/schedule"
	"golang.org/x/sync/singleflight"
)

// ErrActionInFlight is returned when the same action target already has a request pending.
var ErrActionInFlight = errors.New("action already in flight")

// ValidationError rejects a request before anything is sent to the backend.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// View selects the week and filters a snapshot is presented with.
type View struct {
	Ref     time.Time
	Options schedule.FilterOptions
}

// ScheduleRequest is a new match proposed by Requester.
type ScheduleRequest struct {
	Requester   string             `json:"requester"`
	Opponent    string             `json:"opponent"`
	ScheduledAt string             `json:"scheduled_at"`
	Location    string             `json:"location"`
	MatchType   schedule.MatchType `json:"match_type,omitempty"`
	Notes       string             `json:"notes,omitempty"`
	IsPractice  bool               `json:"is_practice,omitempty"`
	LeagueID    string             `json:"league_id,omitempty"`
}

// ScheduleResult carries the created match, the advisory conflicts found before creating
// it and the refreshed week containing it.
type ScheduleResult struct {
	Match     schedule.MatchRecord `json:"match"`
	Conflicts []string             `json:"conflicts,omitempty"`
	Week      schedule.Week        `json:"week"`
}

// Availability window offered by the scheduling form.
const (
	slotsFrom = 6 * time.Hour
	slotsTo   = 22 * time.Hour
	slotsStep = 30 * time.Minute
)

// backendTimeLayout is how scheduled_at is sent to the backend.
const backendTimeLayout = "2006-01-02T15:04:05"

// upcomingStatuses are the statuses listed as upcoming league matches.
var upcomingStatuses = []string{"Accepted", "Confirmed", "Scheduled"}

type service struct {
	backend backend.Client
	events  pubsub.PubSubClient
	metrics metrics.Metrics
	loc     *time.Location
	now     func() time.Time

	loads singleflight.Group

	mu       sync.Mutex
	inFlight map[string]struct{}
}
