package backend

import (
	"context"

	"github.com/mauv0809/rally/internal/schedule"
)

// Client defines the operations of the league backend used by the application.
// This allows for mock implementations to be used in tests.
type Client interface {
	FetchMatchesForUser(ctx context.Context, userID string) ([]schedule.MatchRecord, error)
	FetchMatchesForLeague(ctx context.Context, leagueID string, statuses []string) ([]schedule.MatchRecord, error)
	AcceptMatch(ctx context.Context, matchID, playerID string) error
	RejectMatch(ctx context.Context, matchID, playerID string) error
	CreateMatch(ctx context.Context, req CreateMatchRequest) (schedule.MatchRecord, error)

	Login(ctx context.Context, email, password string) (LoginResponse, error)
	Register(ctx context.Context, req RegisterRequest) error

	ListLeagues(ctx context.Context, search string) ([]League, error)
	CreateLeague(ctx context.Context, req CreateLeagueRequest) (League, error)
	GetLeague(ctx context.Context, leagueID string) (League, error)
	JoinLeague(ctx context.Context, leagueID, playerID string) (JoinRequest, error)
	ListJoinRequests(ctx context.Context, leagueID string) ([]JoinRequest, error)
	RespondJoinRequest(ctx context.Context, leagueID, requestID string, approve bool) error
	Leaderboard(ctx context.Context, leagueID string) ([]Standing, error)

	ListPlayers(ctx context.Context) ([]Player, error)
	UpdatePlayerRole(ctx context.Context, playerID, role string) error
}
