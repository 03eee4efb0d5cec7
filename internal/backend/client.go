package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rally/internal/metrics"
	"github.com/mauv0809/rally/internal/schedule"
	"github.com/sethvargo/go-retry"
)

// APIClient talks to the league backend over HTTP+JSON.
type APIClient struct {
	httpClient *http.Client
	BaseURL    string
	token      func() string
	metrics    metrics.Metrics
	backoff    func() retry.Backoff
}

// Option configures an APIClient.
type Option func(*APIClient)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *APIClient) { c.httpClient = hc }
}

// WithTokenSource sets the function consulted for the bearer token on every request.
func WithTokenSource(token func() string) Option {
	return func(c *APIClient) { c.token = token }
}

// WithBackoff sets the retry policy for fetches. The function must return a fresh Backoff.
func WithBackoff(backoff func() retry.Backoff) Option {
	return func(c *APIClient) { c.backoff = backoff }
}

// NewClient creates a new backend client.
func NewClient(baseURL string, m metrics.Metrics, opts ...Option) *APIClient {
	c := &APIClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    strings.TrimRight(baseURL, "/"),
		token:      func() string { return "" },
		metrics:    m,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ensure APIClient implements the Client interface.
var _ Client = (*APIClient)(nil)

// FetchMatchesForUser returns every match the user takes part in.
func (c *APIClient) FetchMatchesForUser(ctx context.Context, userID string) ([]schedule.MatchRecord, error) {
	var matches []schedule.MatchRecord
	path := "/matches/user/" + url.PathEscape(userID)
	if err := c.fetch(ctx, "fetch_user_matches", path, nil, &matches); err != nil {
		return nil, err
	}
	log.Debug("Fetched user matches", "userID", userID, "count", len(matches))
	return nonNil(matches), nil
}

// FetchMatchesForLeague returns the league's matches, optionally limited to statuses.
func (c *APIClient) FetchMatchesForLeague(ctx context.Context, leagueID string, statuses []string) ([]schedule.MatchRecord, error) {
	query := url.Values{}
	if len(statuses) > 0 {
		query.Set("status", strings.Join(statuses, ","))
	}
	var matches []schedule.MatchRecord
	path := "/leagues/" + url.PathEscape(leagueID) + "/matches"
	if err := c.fetch(ctx, "fetch_league_matches", path, query, &matches); err != nil {
		return nil, err
	}
	log.Debug("Fetched league matches", "leagueID", leagueID, "count", len(matches))
	return nonNil(matches), nil
}

// AcceptMatch moves a pending match to accepted on behalf of playerID.
func (c *APIClient) AcceptMatch(ctx context.Context, matchID, playerID string) error {
	path := "/matches/" + url.PathEscape(matchID) + "/accept"
	return c.mutate(ctx, "accept_match", http.MethodPost, path, playerIDBody{PlayerID: playerID}, nil)
}

// RejectMatch moves a pending match to rejected on behalf of playerID.
func (c *APIClient) RejectMatch(ctx context.Context, matchID, playerID string) error {
	path := "/matches/" + url.PathEscape(matchID) + "/reject"
	return c.mutate(ctx, "reject_match", http.MethodPost, path, playerIDBody{PlayerID: playerID}, nil)
}

// CreateMatch submits a new scheduling request.
func (c *APIClient) CreateMatch(ctx context.Context, req CreateMatchRequest) (schedule.MatchRecord, error) {
	var created schedule.MatchRecord
	if err := c.mutate(ctx, "create_match", http.MethodPost, "/matches", req, &created); err != nil {
		return schedule.MatchRecord{}, err
	}
	return created, nil
}

// Login exchanges credentials for a user id and token.
func (c *APIClient) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp LoginResponse
	if err := c.mutate(ctx, "login", http.MethodPost, "/login", body, &resp); err != nil {
		return LoginResponse{}, err
	}
	if resp.UserID == "" {
		return LoginResponse{}, fmt.Errorf("login: backend response has no user_id")
	}
	return resp, nil
}

// Register creates a new player account.
func (c *APIClient) Register(ctx context.Context, req RegisterRequest) error {
	return c.mutate(ctx, "register", http.MethodPost, "/register", req, nil)
}

// ListLeagues returns leagues matching search. An empty search lists all leagues.
func (c *APIClient) ListLeagues(ctx context.Context, search string) ([]League, error) {
	query := url.Values{}
	query.Set("search", search)
	var leagues []League
	if err := c.fetch(ctx, "list_leagues", "/leagues", query, &leagues); err != nil {
		return nil, err
	}
	if leagues == nil {
		leagues = []League{}
	}
	return leagues, nil
}

func (c *APIClient) CreateLeague(ctx context.Context, req CreateLeagueRequest) (League, error) {
	var league League
	if err := c.mutate(ctx, "create_league", http.MethodPost, "/leagues", req, &league); err != nil {
		return League{}, err
	}
	return league, nil
}

func (c *APIClient) GetLeague(ctx context.Context, leagueID string) (League, error) {
	var league League
	if err := c.fetch(ctx, "get_league", "/leagues/"+url.PathEscape(leagueID), nil, &league); err != nil {
		return League{}, err
	}
	return league, nil
}

// JoinLeague files a join request that a league admin has to approve.
func (c *APIClient) JoinLeague(ctx context.Context, leagueID, playerID string) (JoinRequest, error) {
	var jr JoinRequest
	path := "/leagues/" + url.PathEscape(leagueID) + "/join"
	if err := c.mutate(ctx, "join_league", http.MethodPost, path, playerIDBody{PlayerID: playerID}, &jr); err != nil {
		return JoinRequest{}, err
	}
	return jr, nil
}

func (c *APIClient) ListJoinRequests(ctx context.Context, leagueID string) ([]JoinRequest, error) {
	var requests []JoinRequest
	path := "/leagues/" + url.PathEscape(leagueID) + "/join-requests"
	if err := c.fetch(ctx, "list_join_requests", path, nil, &requests); err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []JoinRequest{}
	}
	return requests, nil
}

// RespondJoinRequest approves or rejects a pending join request.
func (c *APIClient) RespondJoinRequest(ctx context.Context, leagueID, requestID string, approve bool) error {
	action := "reject"
	if approve {
		action = "approve"
	}
	path := fmt.Sprintf("/leagues/%s/join-requests/%s/%s", url.PathEscape(leagueID), url.PathEscape(requestID), action)
	return c.mutate(ctx, action+"_join_request", http.MethodPost, path, nil, nil)
}

func (c *APIClient) Leaderboard(ctx context.Context, leagueID string) ([]Standing, error) {
	var standings []Standing
	path := "/leagues/" + url.PathEscape(leagueID) + "/leaderboard"
	if err := c.fetch(ctx, "leaderboard", path, nil, &standings); err != nil {
		return nil, err
	}
	if standings == nil {
		standings = []Standing{}
	}
	return standings, nil
}

func (c *APIClient) ListPlayers(ctx context.Context) ([]Player, error) {
	var players []Player
	if err := c.fetch(ctx, "list_players", "/players", nil, &players); err != nil {
		return nil, err
	}
	if players == nil {
		players = []Player{}
	}
	return players, nil
}

func (c *APIClient) UpdatePlayerRole(ctx context.Context, playerID, role string) error {
	path := "/players/" + url.PathEscape(playerID) + "/role"
	return c.mutate(ctx, "update_player_role", http.MethodPatch, path, map[string]string{"role": role}, nil)
}

// fetch performs a GET, retrying network failures and 5xx answers.
func (c *APIClient) fetch(ctx context.Context, op, path string, query url.Values, out any) error {
	start := time.Now()
	attempt := 0
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		attempt++
		err := c.send(ctx, op, http.MethodGet, path, query, nil, out)
		if err != nil && isRetryable(ctx, err) {
			log.Warn("Backend fetch failed, retrying", "op", op, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
	c.record(op, start, err)
	return err
}

// mutate performs a state-changing request. It is never retried.
func (c *APIClient) mutate(ctx context.Context, op, method, path string, in, out any) error {
	start := time.Now()
	err := c.send(ctx, op, method, path, nil, in, out)
	c.record(op, start, err)
	return err
}

func (c *APIClient) record(op string, start time.Time, err error) {
	c.metrics.ObserveBackendDuration(op, time.Since(start).Seconds())
	if err != nil {
		c.metrics.IncBackendRequest(op, metrics.OutcomeFailure)
		return
	}
	c.metrics.IncBackendRequest(op, metrics.OutcomeSuccess)
}

func (c *APIClient) send(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log.Debug("Requesting league backend", "op", op, "method", method, "url", target)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: failed to execute request: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{Op: op, StatusCode: resp.StatusCode, Body: string(raw)}
		log.Error("Received non-OK HTTP status from league backend", "op", op, "status", resp.StatusCode, "body", apiErr.Message())
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}

func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	// Transport failures such as refused connections and timeouts.
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func nonNil(matches []schedule.MatchRecord) []schedule.MatchRecord {
	if matches == nil {
		return []schedule.MatchRecord{}
	}
	return matches
}
