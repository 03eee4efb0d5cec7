package session

import (
	"context"
	"sync"
)

// MockProvider is a mock implementation of the Provider interface for testing.
type MockProvider struct {
	mu      sync.Mutex
	session *Session

	LoginFunc  func(ctx context.Context, email, password string) (Session, error)
	LogoutFunc func(ctx context.Context) error

	LoginCalls  []string
	LogoutCalls int
}

// NewMockProvider creates a mock, logged in as userID when it is not empty.
func NewMockProvider(userID string) *MockProvider {
	m := &MockProvider{}
	if userID != "" {
		m.session = &Session{UserID: userID, Token: "mock-token"}
	}
	return m
}

func (m *MockProvider) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return Session{}, false
	}
	return *m.session, true
}

func (m *MockProvider) UserID() (string, error) {
	sess, ok := m.Current()
	if !ok {
		return "", ErrNoSession
	}
	return sess.UserID, nil
}

func (m *MockProvider) Login(ctx context.Context, email, password string) (Session, error) {
	m.mu.Lock()
	m.LoginCalls = append(m.LoginCalls, email)
	fn := m.LoginFunc
	m.mu.Unlock()
	if fn != nil {
		sess, err := fn(ctx, email, password)
		if err != nil {
			return Session{}, err
		}
		m.mu.Lock()
		m.session = &sess
		m.mu.Unlock()
		return sess, nil
	}
	sess := Session{UserID: email, Token: "mock-token"}
	m.mu.Lock()
	m.session = &sess
	m.mu.Unlock()
	return sess, nil
}

func (m *MockProvider) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.LogoutCalls++
	fn := m.LogoutFunc
	m.mu.Unlock()
	if fn != nil {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()
	return nil
}

// Subscribe returns a channel that never receives.
func (m *MockProvider) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event)
	var once sync.Once
	return ch, func() { once.Do(func() { close(ch) }) }
}
