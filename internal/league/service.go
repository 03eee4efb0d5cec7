package league

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mauv0809/rally/internal/backend"
)

// New creates a new league Service.
func New(client backend.Client) Service {
	return &service{backend: client}
}

// List returns the leagues matching search. The backend filter is applied again locally
// because not every deployment honours the search parameter.
func (s *service) List(ctx context.Context, search string) ([]backend.League, error) {
	search = strings.TrimSpace(search)
	leagues, err := s.backend.ListLeagues(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues: %w", err)
	}
	if search == "" {
		return leagues, nil
	}
	return rank(leagues, search, func(l backend.League) []string {
		return []string{l.Name, l.Description}
	}), nil
}

func (s *service) Create(ctx context.Context, createdBy, name, description string) (backend.League, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if createdBy == "" {
		return backend.League{}, fmt.Errorf("%w: creator is required", ErrInvalidInput)
	}
	if name == "" || description == "" {
		return backend.League{}, fmt.Errorf("%w: league name and description are required", ErrInvalidInput)
	}
	league, err := s.backend.CreateLeague(ctx, backend.CreateLeagueRequest{
		Name:        name,
		Description: description,
		CreatedBy:   createdBy,
	})
	if err != nil {
		return backend.League{}, fmt.Errorf("failed to create league: %w", err)
	}
	log.Info("League created", "leagueID", league.ID, "name", league.Name, "createdBy", createdBy)
	return league, nil
}

func (s *service) Get(ctx context.Context, leagueID string) (backend.League, error) {
	if leagueID == "" {
		return backend.League{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	league, err := s.backend.GetLeague(ctx, leagueID)
	if err != nil {
		return backend.League{}, fmt.Errorf("failed to get league %s: %w", leagueID, err)
	}
	return league, nil
}

func (s *service) Join(ctx context.Context, leagueID, playerID string) (backend.JoinRequest, error) {
	if leagueID == "" || playerID == "" {
		return backend.JoinRequest{}, fmt.Errorf("%w: league and player are required", ErrInvalidInput)
	}
	jr, err := s.backend.JoinLeague(ctx, leagueID, playerID)
	if err != nil {
		return backend.JoinRequest{}, fmt.Errorf("failed to join league %s: %w", leagueID, err)
	}
	log.Info("Join request filed", "leagueID", leagueID, "playerID", playerID, "status", jr.Status)
	return jr, nil
}

func (s *service) JoinRequests(ctx context.Context, leagueID string) ([]backend.JoinRequest, error) {
	requests, err := s.backend.ListJoinRequests(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list join requests: %w", err)
	}
	pending := make([]backend.JoinRequest, 0, len(requests))
	for _, r := range requests {
		if r.Status == "" || strings.EqualFold(r.Status, backend.JoinPending) {
			pending = append(pending, r)
		}
	}
	return pending, nil
}

func (s *service) RespondJoinRequest(ctx context.Context, leagueID, requestID string, approve bool) error {
	if leagueID == "" || requestID == "" {
		return fmt.Errorf("%w: league and request are required", ErrInvalidInput)
	}
	if err := s.backend.RespondJoinRequest(ctx, leagueID, requestID, approve); err != nil {
		return fmt.Errorf("failed to respond to join request %s: %w", requestID, err)
	}
	log.Info("Join request answered", "leagueID", leagueID, "requestID", requestID, "approved", approve)
	return nil
}

func (s *service) Leaderboard(ctx context.Context, leagueID string) ([]backend.Standing, error) {
	standings, err := s.backend.Leaderboard(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Rank != standings[j].Rank {
			if standings[i].Rank == 0 || standings[j].Rank == 0 {
				return standings[j].Rank == 0
			}
			return standings[i].Rank < standings[j].Rank
		}
		return standings[i].Points > standings[j].Points
	})
	return standings, nil
}

// Players lists every player, filtered on name or email when query is set.
func (s *service) Players(ctx context.Context, query string) ([]backend.Player, error) {
	players, err := s.backend.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return players, nil
	}
	return rank(players, query, func(p backend.Player) []string {
		return []string{p.Name, p.Email}
	}), nil
}

func (s *service) SetRole(ctx context.Context, playerID, role string) error {
	role = strings.ToLower(strings.TrimSpace(role))
	if role != backend.RoleAdmin && role != backend.RoleUser {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	if err := s.backend.UpdatePlayerRole(ctx, playerID, role); err != nil {
		return fmt.Errorf("failed to update role of %s: %w", playerID, err)
	}
	log.Info("Player role updated", "playerID", playerID, "role", role)
	return nil
}

// ToggleRole flips a player between admin and user and returns the new role.
func (s *service) ToggleRole(ctx context.Context, playerID string) (string, error) {
	players, err := s.backend.ListPlayers(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list players: %w", err)
	}
	for _, p := range players {
		if p.ID != playerID {
			continue
		}
		next := backend.RoleAdmin
		if strings.EqualFold(p.Role, backend.RoleAdmin) {
			next = backend.RoleUser
		}
		return next, s.SetRole(ctx, playerID, next)
	}
	return "", fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
}

// rank keeps the items where any field fuzzily contains query, closest first.
func rank[T any](items []T, query string, fields func(T) []string) []T {
	type scored struct {
		item     T
		distance int
	}
	var hits []scored
	for _, item := range items {
		best := -1
		for _, f := range fields(item) {
			if f == "" || !fuzzy.MatchNormalizedFold(query, f) {
				continue
			}
			d := fuzzy.LevenshteinDistance(strings.ToLower(query), strings.ToLower(f))
			if best == -1 || d < best {
				best = d
			}
		}
		if best >= 0 {
			hits = append(hits, scored{item: item, distance: best})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })

	out := make([]T, len(hits))
	for i, h := range hits {
		out[i] = h.item
	}
	return out
}
