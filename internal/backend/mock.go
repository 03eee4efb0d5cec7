package backend

import (
	"context"
	"sync"

	"github.com/mauv0809/rally/internal/schedule"
)

// MockClient is a mock implementation of the Client interface for testing.
// It is safe for concurrent use. Unset funcs return zero values and no error.
type MockClient struct {
	mu sync.Mutex

	// Spies for method calls
	FetchMatchesForUserFunc   func(ctx context.Context, userID string) ([]schedule.MatchRecord, error)
	FetchMatchesForLeagueFunc func(ctx context.Context, leagueID string, statuses []string) ([]schedule.MatchRecord, error)
	AcceptMatchFunc           func(ctx context.Context, matchID, playerID string) error
	RejectMatchFunc           func(ctx context.Context, matchID, playerID string) error
	CreateMatchFunc           func(ctx context.Context, req CreateMatchRequest) (schedule.MatchRecord, error)
	LoginFunc                 func(ctx context.Context, email, password string) (LoginResponse, error)
	RegisterFunc              func(ctx context.Context, req RegisterRequest) error
	ListLeaguesFunc           func(ctx context.Context, search string) ([]League, error)
	CreateLeagueFunc          func(ctx context.Context, req CreateLeagueRequest) (League, error)
	GetLeagueFunc             func(ctx context.Context, leagueID string) (League, error)
	JoinLeagueFunc            func(ctx context.Context, leagueID, playerID string) (JoinRequest, error)
	ListJoinRequestsFunc      func(ctx context.Context, leagueID string) ([]JoinRequest, error)
	RespondJoinRequestFunc    func(ctx context.Context, leagueID, requestID string, approve bool) error
	LeaderboardFunc           func(ctx context.Context, leagueID string) ([]Standing, error)
	ListPlayersFunc           func(ctx context.Context) ([]Player, error)
	UpdatePlayerRoleFunc      func(ctx context.Context, playerID, role string) error

	// Call records
	FetchMatchesForUserCalls   []string
	FetchMatchesForLeagueCalls []string
	AcceptMatchCalls           []ActionCall
	RejectMatchCalls           []ActionCall
	CreateMatchCalls           []CreateMatchRequest
	LoginCalls                 []string
	CreateLeagueCalls          []CreateLeagueRequest
	JoinLeagueCalls            []ActionCall
	RespondJoinRequestCalls    []RespondCall
	UpdatePlayerRoleCalls      []ActionCall
}

// ActionCall holds the ids passed to a mutating call.
type ActionCall struct {
	TargetID string
	PlayerID string
}

// RespondCall holds the arguments of RespondJoinRequest.
type RespondCall struct {
	LeagueID  string
	RequestID string
	Approve   bool
}

// NewMockClient creates a new mock instance.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Reset clears all call records.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchMatchesForUserCalls = nil
	m.FetchMatchesForLeagueCalls = nil
	m.AcceptMatchCalls = nil
	m.RejectMatchCalls = nil
	m.CreateMatchCalls = nil
	m.LoginCalls = nil
	m.CreateLeagueCalls = nil
	m.JoinLeagueCalls = nil
	m.RespondJoinRequestCalls = nil
	m.UpdatePlayerRoleCalls = nil
}

// The spies are invoked without holding the lock so that tests can block inside them.

func (m *MockClient) FetchMatchesForUser(ctx context.Context, userID string) ([]schedule.MatchRecord, error) {
	m.mu.Lock()
	m.FetchMatchesForUserCalls = append(m.FetchMatchesForUserCalls, userID)
	fn := m.FetchMatchesForUserFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, userID)
	}
	return []schedule.MatchRecord{}, nil
}

func (m *MockClient) FetchMatchesForLeague(ctx context.Context, leagueID string, statuses []string) ([]schedule.MatchRecord, error) {
	m.mu.Lock()
	m.FetchMatchesForLeagueCalls = append(m.FetchMatchesForLeagueCalls, leagueID)
	fn := m.FetchMatchesForLeagueFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, leagueID, statuses)
	}
	return []schedule.MatchRecord{}, nil
}

func (m *MockClient) AcceptMatch(ctx context.Context, matchID, playerID string) error {
	m.mu.Lock()
	m.AcceptMatchCalls = append(m.AcceptMatchCalls, ActionCall{TargetID: matchID, PlayerID: playerID})
	fn := m.AcceptMatchFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, matchID, playerID)
	}
	return nil
}

func (m *MockClient) RejectMatch(ctx context.Context, matchID, playerID string) error {
	m.mu.Lock()
	m.RejectMatchCalls = append(m.RejectMatchCalls, ActionCall{TargetID: matchID, PlayerID: playerID})
	fn := m.RejectMatchFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, matchID, playerID)
	}
	return nil
}

func (m *MockClient) CreateMatch(ctx context.Context, req CreateMatchRequest) (schedule.MatchRecord, error) {
	m.mu.Lock()
	m.CreateMatchCalls = append(m.CreateMatchCalls, req)
	fn := m.CreateMatchFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return schedule.MatchRecord{
		ID:           "created",
		Participants: req.Participants,
		ScheduledAt:  req.ScheduledAt,
		Location:     req.Location,
		Status:       "Pending",
		MatchType:    req.MatchType,
	}, nil
}

func (m *MockClient) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	m.mu.Lock()
	m.LoginCalls = append(m.LoginCalls, email)
	fn := m.LoginFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, email, password)
	}
	return LoginResponse{}, nil
}

func (m *MockClient) Register(ctx context.Context, req RegisterRequest) error {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	return nil
}

func (m *MockClient) ListLeagues(ctx context.Context, search string) ([]League, error) {
	if m.ListLeaguesFunc != nil {
		return m.ListLeaguesFunc(ctx, search)
	}
	return []League{}, nil
}

func (m *MockClient) CreateLeague(ctx context.Context, req CreateLeagueRequest) (League, error) {
	m.mu.Lock()
	m.CreateLeagueCalls = append(m.CreateLeagueCalls, req)
	fn := m.CreateLeagueFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return League{Name: req.Name, Description: req.Description, CreatedBy: req.CreatedBy}, nil
}

func (m *MockClient) GetLeague(ctx context.Context, leagueID string) (League, error) {
	if m.GetLeagueFunc != nil {
		return m.GetLeagueFunc(ctx, leagueID)
	}
	return League{ID: leagueID}, nil
}

func (m *MockClient) JoinLeague(ctx context.Context, leagueID, playerID string) (JoinRequest, error) {
	m.mu.Lock()
	m.JoinLeagueCalls = append(m.JoinLeagueCalls, ActionCall{TargetID: leagueID, PlayerID: playerID})
	fn := m.JoinLeagueFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, leagueID, playerID)
	}
	return JoinRequest{LeagueID: leagueID, PlayerID: playerID, Status: JoinPending}, nil
}

func (m *MockClient) ListJoinRequests(ctx context.Context, leagueID string) ([]JoinRequest, error) {
	if m.ListJoinRequestsFunc != nil {
		return m.ListJoinRequestsFunc(ctx, leagueID)
	}
	return []JoinRequest{}, nil
}

func (m *MockClient) RespondJoinRequest(ctx context.Context, leagueID, requestID string, approve bool) error {
	m.mu.Lock()
	m.RespondJoinRequestCalls = append(m.RespondJoinRequestCalls, RespondCall{LeagueID: leagueID, RequestID: requestID, Approve: approve})
	fn := m.RespondJoinRequestFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, leagueID, requestID, approve)
	}
	return nil
}

func (m *MockClient) Leaderboard(ctx context.Context, leagueID string) ([]Standing, error) {
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc(ctx, leagueID)
	}
	return []Standing{}, nil
}

func (m *MockClient) ListPlayers(ctx context.Context) ([]Player, error) {
	if m.ListPlayersFunc != nil {
		return m.ListPlayersFunc(ctx)
	}
	return []Player{}, nil
}

func (m *MockClient) UpdatePlayerRole(ctx context.Context, playerID, role string) error {
	m.mu.Lock()
	m.UpdatePlayerRoleCalls = append(m.UpdatePlayerRoleCalls, ActionCall{TargetID: playerID, PlayerID: role})
	fn := m.UpdatePlayerRoleFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, playerID, role)
	}
	return nil
}

// Calls returns a copy of the accept and reject call records.
func (m *MockClient) Calls() (accepts, rejects []ActionCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ActionCall(nil), m.AcceptMatchCalls...), append([]ActionCall(nil), m.RejectMatchCalls...)
}

// UserFetches returns how many times FetchMatchesForUser was called.
func (m *MockClient) UserFetches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.FetchMatchesForUserCalls)
}
