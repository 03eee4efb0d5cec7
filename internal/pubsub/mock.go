package pubsub

import (
	"context"
	"sync"
)

// Mock keeps published match events in memory. It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// PublishErr, when set, decides the error SendMessage returns for a topic.
	// The event is recorded either way.
	PublishErr func(topic EventType) error

	published []Published
	closed    bool
}

// Published is one SendMessage call. Event is set when data was a MatchEvent.
type Published struct {
	Topic EventType
	Event MatchEvent
	Data  any
}

// NewMock creates an empty Mock.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) SendMessage(ctx context.Context, topic EventType, data any) error {
	p := Published{Topic: topic, Data: data}
	switch ev := data.(type) {
	case MatchEvent:
		p.Event = ev
	case *MatchEvent:
		p.Event = *ev
	}

	m.mu.Lock()
	m.published = append(m.published, p)
	fn := m.PublishErr
	m.mu.Unlock()
	if fn != nil {
		return fn(topic)
	}
	return nil
}

// ProcessMessage decodes msgpack data the way the real client does.
func (m *Mock) ProcessMessage(data []byte, returnValue any) error {
	return decode(data, returnValue)
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Published returns the recorded SendMessage calls in order.
func (m *Mock) Published() []Published {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Published(nil), m.published...)
}

// Events returns the match events published so far.
func (m *Mock) Events() []MatchEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := make([]MatchEvent, 0, len(m.published))
	for _, p := range m.published {
		if p.Event.Type != "" {
			events = append(events, p.Event)
		}
	}
	return events
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
