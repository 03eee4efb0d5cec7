package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rally/internal/backend"
	"github.com/mauv0809/rally/internal/metrics"
	"github.com/mauv0809/rally/internal/pubsub"
	"github.com/mauv0809/rally/internal/schedule"
)

// New creates a new Dashboard. Times without a zone are read in loc.
func New(client backend.Client, events pubsub.PubSubClient, m metrics.Metrics, loc *time.Location) Dashboard {
	if loc == nil {
		loc = time.Local
	}
	return &service{
		backend:  client,
		events:   events,
		metrics:  m,
		loc:      loc,
		now:      time.Now,
		inFlight: make(map[string]struct{}),
	}
}

func (s *service) Location() *time.Location {
	return s.loc
}

// Week fetches a fresh snapshot for userID and builds the week around view.Ref.
// A failed fetch is returned as is; no stale week is ever served.
func (s *service) Week(ctx context.Context, userID string, view View) (schedule.Week, error) {
	matches, err := s.snapshot(ctx, userID)
	if err != nil {
		return schedule.Week{}, err
	}
	return s.build(matches, view), nil
}

// Pending lists the user's pending matches in start time order.
func (s *service) Pending(ctx context.Context, userID string) ([]schedule.MatchRecord, error) {
	matches, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	pending := schedule.Classify(matches, schedule.FilterOptions{PendingOnly: true})
	return schedule.SortByTime(pending, s.loc), nil
}

func (s *service) Accept(ctx context.Context, matchID, playerID string, view View) (schedule.Week, error) {
	return s.respond(ctx, matchID, playerID, view, true)
}

func (s *service) Reject(ctx context.Context, matchID, playerID string, view View) (schedule.Week, error) {
	return s.respond(ctx, matchID, playerID, view, false)
}

func (s *service) respond(ctx context.Context, matchID, playerID string, view View, accept bool) (schedule.Week, error) {
	if strings.TrimSpace(matchID) == "" {
		return schedule.Week{}, &ValidationError{Field: "match_id", Reason: "is required"}
	}
	if strings.TrimSpace(playerID) == "" {
		return schedule.Week{}, &ValidationError{Field: "player_id", Reason: "is required"}
	}

	release, err := s.acquire("match:" + matchID)
	if err != nil {
		return schedule.Week{}, err
	}
	defer release()

	action, event, call := "reject", pubsub.EventMatchRejected, s.backend.RejectMatch
	if accept {
		action, event, call = "accept", pubsub.EventMatchAccepted, s.backend.AcceptMatch
	}

	log.Info("Responding to match", "action", action, "matchID", matchID, "playerID", playerID)
	if err := call(ctx, matchID, playerID); err != nil {
		log.Error("Failed to respond to match", "action", action, "matchID", matchID, "error", err)
		return schedule.Week{}, fmt.Errorf("failed to %s match %s: %w", action, matchID, err)
	}

	s.publish(ctx, pubsub.MatchEvent{Type: event, MatchID: matchID, PlayerID: playerID})
	return s.refresh(ctx, playerID, view)
}

// Schedule validates and creates a match. Conflicts with the requester's existing matches
// are reported but never block the request.
func (s *service) Schedule(ctx context.Context, req ScheduleRequest) (ScheduleResult, error) {
	start, err := s.validate(&req)
	if err != nil {
		return ScheduleResult{}, err
	}

	release, err := s.acquire("schedule:" + req.Requester)
	if err != nil {
		return ScheduleResult{}, err
	}
	defer release()

	var conflicts []string
	if existing, err := s.snapshot(ctx, req.Requester); err != nil {
		log.Warn("Could not check for conflicts, scheduling anyway", "requester", req.Requester, "error", err)
	} else {
		active := schedule.Classify(existing, schedule.FilterOptions{})
		conflicts = schedule.Conflicts(active, start)
		if len(conflicts) > 0 {
			log.Info("Scheduling over existing matches", "requester", req.Requester, "conflicts", conflicts)
		}
	}

	created, err := s.backend.CreateMatch(ctx, backend.CreateMatchRequest{
		LeagueID:     req.LeagueID,
		Participants: []string{req.Requester, req.Opponent},
		ScheduledAt:  start.Format(backendTimeLayout),
		Location:     req.Location,
		MatchType:    req.MatchType,
		Notes:        req.Notes,
		IsPractice:   req.IsPractice,
	})
	if err != nil {
		log.Error("Failed to create match", "requester", req.Requester, "error", err)
		return ScheduleResult{}, fmt.Errorf("failed to create match: %w", err)
	}

	s.publish(ctx, pubsub.MatchEvent{
		Type:        pubsub.EventMatchCreated,
		MatchID:     created.ID,
		PlayerID:    req.Requester,
		ScheduledAt: created.ScheduledAt,
		Location:    created.Location,
	})

	week, err := s.refresh(ctx, req.Requester, View{Ref: start})
	if err != nil {
		return ScheduleResult{Match: created, Conflicts: conflicts}, err
	}
	return ScheduleResult{Match: created, Conflicts: conflicts, Week: week}, nil
}

// Availability annotates the slots of day against the user's open matches.
func (s *service) Availability(ctx context.Context, userID string, day time.Time) ([]schedule.Slot, error) {
	matches, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	open := schedule.Classify(matches, schedule.FilterOptions{})
	return schedule.DaySlots(open, day.In(s.loc), slotsFrom, slotsTo, slotsStep), nil
}

// LeagueUpcoming lists a league's accepted, confirmed and scheduled matches by start time.
func (s *service) LeagueUpcoming(ctx context.Context, leagueID string) ([]schedule.MatchRecord, error) {
	matches, err := s.backend.FetchMatchesForLeague(ctx, leagueID, upcomingStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch league matches: %w", err)
	}
	upcoming := make([]schedule.MatchRecord, 0, len(matches))
	for _, m := range matches {
		// The backend may ignore the status filter.
		switch m.NormalizedStatus() {
		case schedule.StatusAccepted, schedule.StatusConfirmed, schedule.StatusScheduled:
			upcoming = append(upcoming, m)
		}
	}
	return schedule.SortByTime(upcoming, s.loc), nil
}

// snapshot fetches the user's matches. Concurrent loads for one user share a request.
func (s *service) snapshot(ctx context.Context, userID string) ([]schedule.MatchRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "is required"}
	}
	// The shared load is detached from the caller that started it; every caller
	// still stops waiting when its own ctx is done.
	loadCtx := context.WithoutCancel(ctx)
	ch := s.loads.DoChan(userID, func() (any, error) {
		return s.backend.FetchMatchesForUser(loadCtx, userID)
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to fetch matches: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("failed to fetch matches: %w", res.Err)
		}
		if res.Shared {
			log.Debug("Shared snapshot load", "userID", userID)
		}
		return res.Val.([]schedule.MatchRecord), nil
	}
}

// refresh re-fetches after a mutation, never joining a load started before it.
func (s *service) refresh(ctx context.Context, userID string, view View) (schedule.Week, error) {
	s.loads.Forget(userID)
	week, err := s.Week(ctx, userID, view)
	if err != nil {
		return schedule.Week{}, fmt.Errorf("action succeeded but refresh failed: %w", err)
	}
	return week, nil
}

func (s *service) build(matches []schedule.MatchRecord, view View) schedule.Week {
	ref := view.Ref
	if ref.IsZero() {
		ref = s.now()
	}
	week := schedule.BuildWeek(matches, ref.In(s.loc), view.Options)
	s.metrics.IncWeekBuilds()
	if n := len(week.Malformed); n > 0 {
		s.metrics.AddMalformedRecords(n)
		for _, bad := range week.Malformed {
			log.Warn("Excluding malformed match", "matchID", bad.MatchID, "scheduledAt", bad.ScheduledAt, "reason", bad.Reason)
		}
	}
	return week
}

func (s *service) validate(req *ScheduleRequest) (time.Time, error) {
	req.Requester = strings.TrimSpace(req.Requester)
	req.Opponent = strings.TrimSpace(req.Opponent)
	req.Location = strings.TrimSpace(req.Location)

	if req.Requester == "" {
		return time.Time{}, &ValidationError{Field: "requester", Reason: "is required"}
	}
	if req.Opponent == "" {
		return time.Time{}, &ValidationError{Field: "opponent", Reason: "is required"}
	}
	if req.Opponent == req.Requester {
		return time.Time{}, &ValidationError{Field: "opponent", Reason: "must differ from the requester"}
	}
	if req.Location == "" {
		return time.Time{}, &ValidationError{Field: "location", Reason: "is required"}
	}
	start, err := schedule.ParseScheduledAt(req.ScheduledAt, s.loc)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "scheduled_at", Reason: err.Error()}
	}
	if start.Before(s.now()) {
		return time.Time{}, &ValidationError{Field: "scheduled_at", Reason: "must be in the future"}
	}
	switch strings.ToLower(string(req.MatchType)) {
	case "", "singles":
		req.MatchType = schedule.MatchTypeSingles
	case "doubles":
		req.MatchType = schedule.MatchTypeDoubles
	default:
		return time.Time{}, &ValidationError{Field: "match_type", Reason: fmt.Sprintf("unknown type %q", req.MatchType)}
	}
	return start.In(s.loc), nil
}

// acquire marks key as in flight. The returned func clears it.
func (s *service) acquire(key string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		s.metrics.IncActionInFlight()
		log.Warn("Rejecting action, previous one still in flight", "key", key)
		return nil, ErrActionInFlight
	}
	s.inFlight[key] = struct{}{}
	return func() {
		s.mu.Lock()
		delete(s.inFlight, key)
		s.mu.Unlock()
	}, nil
}

// publish is best effort; a failed publication never fails the action.
func (s *service) publish(ctx context.Context, event pubsub.MatchEvent) {
	event.OccurredAt = s.now().UTC()
	if err := s.events.SendMessage(ctx, event.Type, event); err != nil {
		log.Error("Failed to publish match event", "event", event.Type, "matchID", event.MatchID, "error", err)
	}
}
