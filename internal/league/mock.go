package league

import (
	"context"

	"github.com/mauv0809/rally/internal/backend"
)

// MockService is a mock implementation of the Service interface for testing.
type MockService struct {
	ListFunc               func(ctx context.Context, search string) ([]backend.League, error)
	CreateFunc             func(ctx context.Context, createdBy, name, description string) (backend.League, error)
	GetFunc                func(ctx context.Context, leagueID string) (backend.League, error)
	JoinFunc               func(ctx context.Context, leagueID, playerID string) (backend.JoinRequest, error)
	JoinRequestsFunc       func(ctx context.Context, leagueID string) ([]backend.JoinRequest, error)
	RespondJoinRequestFunc func(ctx context.Context, leagueID, requestID string, approve bool) error
	LeaderboardFunc        func(ctx context.Context, leagueID string) ([]backend.Standing, error)
	PlayersFunc            func(ctx context.Context, query string) ([]backend.Player, error)
	SetRoleFunc            func(ctx context.Context, playerID, role string) error
	ToggleRoleFunc         func(ctx context.Context, playerID string) (string, error)
}

func (m *MockService) List(ctx context.Context, search string) ([]backend.League, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, search)
	}
	return []backend.League{}, nil
}

func (m *MockService) Create(ctx context.Context, createdBy, name, description string) (backend.League, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, createdBy, name, description)
	}
	return backend.League{Name: name, Description: description, CreatedBy: createdBy}, nil
}

func (m *MockService) Get(ctx context.Context, leagueID string) (backend.League, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, leagueID)
	}
	return backend.League{ID: leagueID}, nil
}

func (m *MockService) Join(ctx context.Context, leagueID, playerID string) (backend.JoinRequest, error) {
	if m.JoinFunc != nil {
		return m.JoinFunc(ctx, leagueID, playerID)
	}
	return backend.JoinRequest{LeagueID: leagueID, PlayerID: playerID, Status: backend.JoinPending}, nil
}

func (m *MockService) JoinRequests(ctx context.Context, leagueID string) ([]backend.JoinRequest, error) {
	if m.JoinRequestsFunc != nil {
		return m.JoinRequestsFunc(ctx, leagueID)
	}
	return []backend.JoinRequest{}, nil
}

func (m *MockService) RespondJoinRequest(ctx context.Context, leagueID, requestID string, approve bool) error {
	if m.RespondJoinRequestFunc != nil {
		return m.RespondJoinRequestFunc(ctx, leagueID, requestID, approve)
	}
	return nil
}

func (m *MockService) Leaderboard(ctx context.Context, leagueID string) ([]backend.Standing, error) {
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc(ctx, leagueID)
	}
	return []backend.Standing{}, nil
}

func (m *MockService) Players(ctx context.Context, query string) ([]backend.Player, error) {
	if m.PlayersFunc != nil {
		return m.PlayersFunc(ctx, query)
	}
	return []backend.Player{}, nil
}

func (m *MockService) SetRole(ctx context.Context, playerID, role string) error {
	if m.SetRoleFunc != nil {
		return m.SetRoleFunc(ctx, playerID, role)
	}
	return nil
}

func (m *MockService) ToggleRole(ctx context.Context, playerID string) (string, error) {
	if m.ToggleRoleFunc != nil {
		return m.ToggleRoleFunc(ctx, playerID)
	}
	return backend.RoleAdmin, nil
}
