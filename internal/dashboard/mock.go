package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/mauv0809/rally/internal/schedule"
)

// MockDashboard is a mock implementation of the Dashboard interface for testing.
// It is safe for concurrent use.
type MockDashboard struct {
	mu sync.Mutex

	// Spies for method calls
	WeekFunc           func(ctx context.Context, userID string, view View) (schedule.Week, error)
	PendingFunc        func(ctx context.Context, userID string) ([]schedule.MatchRecord, error)
	AcceptFunc         func(ctx context.Context, matchID, playerID string, view View) (schedule.Week, error)
	RejectFunc         func(ctx context.Context, matchID, playerID string, view View) (schedule.Week, error)
	ScheduleFunc       func(ctx context.Context, req ScheduleRequest) (ScheduleResult, error)
	AvailabilityFunc   func(ctx context.Context, userID string, day time.Time) ([]schedule.Slot, error)
	LeagueUpcomingFunc func(ctx context.Context, leagueID string) ([]schedule.MatchRecord, error)

	// Call records
	WeekCalls     []View
	AcceptCalls   []string
	RejectCalls   []string
	ScheduleCalls []ScheduleRequest

	Loc *time.Location
}

// NewMock creates a new mock instance working in UTC.
func NewMock() *MockDashboard {
	return &MockDashboard{Loc: time.UTC}
}

func (m *MockDashboard) Location() *time.Location { return m.Loc }

func (m *MockDashboard) Week(ctx context.Context, userID string, view View) (schedule.Week, error) {
	m.mu.Lock()
	m.WeekCalls = append(m.WeekCalls, view)
	fn := m.WeekFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, userID, view)
	}
	return schedule.BuildWeek(nil, view.Ref, view.Options), nil
}

func (m *MockDashboard) Pending(ctx context.Context, userID string) ([]schedule.MatchRecord, error) {
	if m.PendingFunc != nil {
		return m.PendingFunc(ctx, userID)
	}
	return []schedule.MatchRecord{}, nil
}

func (m *MockDashboard) Accept(ctx context.Context, matchID, playerID string, view View) (schedule.Week, error) {
	m.mu.Lock()
	m.AcceptCalls = append(m.AcceptCalls, matchID)
	fn := m.AcceptFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, matchID, playerID, view)
	}
	return schedule.BuildWeek(nil, view.Ref, view.Options), nil
}

func (m *MockDashboard) Reject(ctx context.Context, matchID, playerID string, view View) (schedule.Week, error) {
	m.mu.Lock()
	m.RejectCalls = append(m.RejectCalls, matchID)
	fn := m.RejectFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, matchID, playerID, view)
	}
	return schedule.BuildWeek(nil, view.Ref, view.Options), nil
}

func (m *MockDashboard) Schedule(ctx context.Context, req ScheduleRequest) (ScheduleResult, error) {
	m.mu.Lock()
	m.ScheduleCalls = append(m.ScheduleCalls, req)
	fn := m.ScheduleFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return ScheduleResult{}, nil
}

func (m *MockDashboard) Availability(ctx context.Context, userID string, day time.Time) ([]schedule.Slot, error) {
	if m.AvailabilityFunc != nil {
		return m.AvailabilityFunc(ctx, userID, day)
	}
	return []schedule.Slot{}, nil
}

func (m *MockDashboard) LeagueUpcoming(ctx context.Context, leagueID string) ([]schedule.MatchRecord, error) {
	if m.LeagueUpcomingFunc != nil {
		return m.LeagueUpcomingFunc(ctx, leagueID)
	}
	return []schedule.MatchRecord{}, nil
}
