package notifier

import (
	"context"
	"sync"

	"github.com/mauv0809/rally/internal/pubsub"
	"github.com/mauv0809/rally/internal/schedule"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies
	SendWeeklyDigestFunc   func(ctx context.Context, userID string, week schedule.Week, dryRun bool) (string, string, error)
	FormatWeeklyDigestFunc func(userID string, week schedule.Week) (any, error)
	SendMatchEventFunc     func(ctx context.Context, event pubsub.MatchEvent, dryRun bool) error

	// Call records
	SendWeeklyDigestCalls []DigestCall
	SendMatchEventCalls   []pubsub.MatchEvent
}

// DigestCall holds the arguments for a call to SendWeeklyDigest.
type DigestCall struct {
	UserID string
	Week   schedule.Week
	DryRun bool
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendWeeklyDigestCalls = nil
	m.SendMatchEventCalls = nil
}

func (m *Mock) SendWeeklyDigest(ctx context.Context, userID string, week schedule.Week, dryRun bool) (string, string, error) {
	m.mu.Lock()
	m.SendWeeklyDigestCalls = append(m.SendWeeklyDigestCalls, DigestCall{UserID: userID, Week: week, DryRun: dryRun})
	fn := m.SendWeeklyDigestFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, userID, week, dryRun)
	}
	return "C-mock", "mock-ts", nil
}

func (m *Mock) FormatWeeklyDigest(userID string, week schedule.Week) (any, error) {
	if m.FormatWeeklyDigestFunc != nil {
		return m.FormatWeeklyDigestFunc(userID, week)
	}
	return map[string]any{"user_id": userID, "matches": week.Count()}, nil
}

func (m *Mock) SendMatchEvent(ctx context.Context, event pubsub.MatchEvent, dryRun bool) error {
	m.mu.Lock()
	m.SendMatchEventCalls = append(m.SendMatchEventCalls, event)
	fn := m.SendMatchEventFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, event, dryRun)
	}
	return nil
}

// MatchEvents returns a copy of the SendMatchEvent call records.
func (m *Mock) MatchEvents() []pubsub.MatchEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]pubsub.MatchEvent(nil), m.SendMatchEventCalls...)
}

// Digests returns a copy of the SendWeeklyDigest call records.
func (m *Mock) Digests() []DigestCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]DigestCall(nil), m.SendWeeklyDigestCalls...)
}
