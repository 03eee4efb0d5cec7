package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu               sync.Mutex
	backendRequests  map[string]int
	backendDurations []float64
	weekBuilds       int
	malformedRecords int
	actionInFlight   int
	slackNotifSent   int
	slackNotifFailed int
	startupTime      float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		backendRequests:  make(map[string]int),
		backendDurations: make([]float64, 0),
	}
}

func (m *Mock) IncBackendRequest(op string, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backendRequests[op+":"+outcome]++
}

func (m *Mock) ObserveBackendDuration(op string, duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backendDurations = append(m.backendDurations, duration)
}

func (m *Mock) IncWeekBuilds() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.weekBuilds++
}

func (m *Mock) AddMalformedRecords(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.malformedRecords += n
}

func (m *Mock) IncActionInFlight() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actionInFlight++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// BackendRequests returns how often IncBackendRequest was called for op and outcome.
func (m *Mock) BackendRequests(op, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.backendRequests[op+":"+outcome]
}

// WeekBuilds returns the number of times IncWeekBuilds was called.
func (m *Mock) WeekBuilds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.weekBuilds
}

// MalformedRecords returns the sum passed to AddMalformedRecords.
func (m *Mock) MalformedRecords() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.malformedRecords
}

// ActionInFlight returns the number of times IncActionInFlight was called.
func (m *Mock) ActionInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.actionInFlight
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
