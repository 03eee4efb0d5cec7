package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const subscriberBuffer = 8

// Manager owns the session context. Views are handed the result of Current and never
// read the store themselves.
type Manager struct {
	store Store
	auth  Authenticator
	now   func() time.Time

	// writeMu serializes store writes with the swap of current.
	writeMu sync.Mutex

	mu      sync.RWMutex
	current *Session
	subs    map[int]chan Event
	nextSub int
}

// NewManager creates a Manager. Call Init before serving requests.
func NewManager(store Store, auth Authenticator) *Manager {
	return &Manager{
		store: store,
		auth:  auth,
		now:   time.Now,
		subs:  make(map[int]chan Event),
	}
}

// Ensure Manager implements the Provider interface.
var _ Provider = (*Manager)(nil)

// Init restores the persisted marker, if any.
func (m *Manager) Init(ctx context.Context) error {
	sess, err := m.store.Load(ctx)
	if errors.Is(err, ErrNoSession) {
		log.Info("No persisted session found")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	m.mu.Lock()
	m.current = &sess
	m.mu.Unlock()
	log.Info("Restored session", "userID", sess.UserID, "loggedInAt", sess.LoggedInAt)
	return nil
}

// Login authenticates against the backend and replaces the current session.
func (m *Manager) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, ErrMissingCredentials
	}
	resp, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return Session{}, fmt.Errorf("failed to log in: %w", err)
	}
	sess := Session{UserID: resp.UserID, Token: resp.Token, LoggedInAt: m.now().Truncate(time.Second)}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	if err := m.store.Save(ctx, sess); err != nil {
		return Session{}, err
	}
	m.mu.Lock()
	m.current = &sess
	m.mu.Unlock()

	log.Info("User logged in", "userID", sess.UserID)
	m.publish(Event{Type: EventLogin, Session: sess})
	return sess, nil
}

// Logout removes the session. Logging out without a session is a no-op.
func (m *Manager) Logout(ctx context.Context) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.RLock()
	prev := m.current
	m.mu.RUnlock()
	if prev == nil {
		return nil
	}
	if err := m.store.Delete(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	log.Info("User logged out", "userID", prev.UserID)
	m.publish(Event{Type: EventLogout, Session: *prev})
	return nil
}

// Current returns a copy of the active session.
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

// UserID returns the logged in user or ErrNoSession.
func (m *Manager) UserID() (string, error) {
	sess, ok := m.Current()
	if !ok {
		return "", ErrNoSession
	}
	return sess.UserID, nil
}

// Token is the bearer token source for the backend client.
func (m *Manager) Token() string {
	sess, _ := m.Current()
	return sess.Token
}

// Subscribe registers for session changes. The returned func unsubscribes and closes the channel.
func (m *Manager) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
			close(ch)
		})
	}
}

// publish never blocks; events for a full subscriber are dropped.
func (m *Manager) publish(ev Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for id, ch := range m.subs {
		select {
		case ch <- ev:
		default:
			log.Warn("Dropping session event for slow subscriber", "subscriber", id, "event", ev.Type)
		}
	}
}
