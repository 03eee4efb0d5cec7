package league

import (
	"context"

	"github.com/mauv0809/rally/internal/backend"
)

// Service wraps the league and player administration endpoints of the backend.
type Service interface {
	List(ctx context.Context, search string) ([]backend.League, error)
	Create(ctx context.Context, createdBy, name, description string) (backend.League, error)
	Get(ctx context.Context, leagueID string) (backend.League, error)
	Join(ctx context.Context, leagueID, playerID string) (backend.JoinRequest, error)
	JoinRequests(ctx context.Context, leagueID string) ([]backend.JoinRequest, error)
	RespondJoinRequest(ctx context.Context, leagueID, requestID string, approve bool) error
	Leaderboard(ctx context.Context, leagueID string) ([]backend.Standing, error)
	Players(ctx context.Context, query string) ([]backend.Player, error)
	SetRole(ctx context.Context, playerID, role string) error
	ToggleRole(ctx context.Context, playerID string) (string, error)
}
