package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/mauv0809/rally/internal/backend"
	"github.com/mauv0809/rally/internal/config"
	"github.com/mauv0809/rally/internal/dashboard"
	"github.com/mauv0809/rally/internal/digest"
	"github.com/mauv0809/rally/internal/http/handlers"
	"github.com/mauv0809/rally/internal/league"
	"github.com/mauv0809/rally/internal/metrics"
	"github.com/mauv0809/rally/internal/notifier"
	"github.com/mauv0809/rally/internal/pubsub"
	"github.com/mauv0809/rally/internal/schedule"
	"github.com/mauv0809/rally/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type testDeps struct {
	sessions *session.MockProvider
	dash     *dashboard.MockDashboard
	leagues  *league.MockService
	backend  *backend.MockClient
	notifier *notifier.Mock
	digest   *fakeDigest
}

type fakeDigest struct {
	calls []bool
	res   digest.Result
	err   error
}

func (f *fakeDigest) Run(ctx context.Context, dryRun bool) (digest.Result, error) {
	f.calls = append(f.calls, dryRun)
	return f.res, f.err
}

// setupTestServer initializes a new server backed by mocks, logged in as userID unless it is empty.
func setupTestServer(t *testing.T, userID string) (*Server, *testDeps) {
	t.Helper()

	deps := &testDeps{
		sessions: session.NewMockProvider(userID),
		dash:     dashboard.NewMock(),
		leagues:  &league.MockService{},
		backend:  backend.NewMockClient(),
		notifier: notifier.NewMock(),
		digest:   &fakeDigest{},
	}

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	cfg := config.Config{CORSOrigins: []string{"*"}}

	server := NewServer(cfg, deps.sessions, deps.dash, deps.leagues, deps.backend, deps.digest, deps.notifier, metricsSvc, metricsHandler, pubsub.NewDisabled())
	return server, deps
}

func serve(s *Server, method, target string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Error
}

func TestHealthCheckHandler(t *testing.T) {
	server, _ := setupTestServer(t, "")

	rr := serve(server, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestRequestIDIsReused(t *testing.T) {
	server, _ := setupTestServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	assert.Equal(t, "req-42", rr.Header().Get("X-Request-ID"))
	assert.Contains(t, rr.Body.String(), `"request_id":"req-42"`)
}

func TestSessionHandlers(t *testing.T) {
	t.Run("no session", func(t *testing.T) {
		server, _ := setupTestServer(t, "")
		rr := serve(server, http.MethodGet, "/session", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("login then session then logout", func(t *testing.T) {
		server, deps := setupTestServer(t, "")
		deps.sessions.LoginFunc = func(ctx context.Context, email, password string) (session.Session, error) {
			return session.Session{UserID: "u-1", Token: "tok"}, nil
		}

		rr := serve(server, http.MethodPost, "/login", `{"email":"alice@example.com","password":"pw"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"user_id":"u-1"`)
		assert.NotContains(t, rr.Body.String(), "tok", "token must not be serialized")

		rr = serve(server, http.MethodGet, "/session", "")
		assert.Equal(t, http.StatusOK, rr.Code)

		rr = serve(server, http.MethodPost, "/logout", "")
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, 1, deps.sessions.LogoutCalls)

		rr = serve(server, http.MethodGet, "/session", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("login with missing password", func(t *testing.T) {
		server, deps := setupTestServer(t, "")
		rr := serve(server, http.MethodPost, "/login", `{"email":"alice@example.com"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, deps.sessions.LoginCalls)
	})

	t.Run("login with blank email", func(t *testing.T) {
		server, deps := setupTestServer(t, "")
		rr := serve(server, http.MethodPost, "/login", `{"email":"   ","password":"pw"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "email and password are required", decodeError(t, rr))
		assert.Empty(t, deps.sessions.LoginCalls)
	})

	t.Run("login rejected by backend", func(t *testing.T) {
		server, deps := setupTestServer(t, "")
		deps.sessions.LoginFunc = func(ctx context.Context, email, password string) (session.Session, error) {
			return session.Session{}, &backend.APIError{Op: "login", StatusCode: http.StatusUnauthorized, Body: `{"error":"bad credentials"}`}
		}
		rr := serve(server, http.MethodPost, "/login", `{"email":"alice@example.com","password":"nope"}`)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRegisterHandler(t *testing.T) {
	server, deps := setupTestServer(t, "")
	var got backend.RegisterRequest
	deps.backend.RegisterFunc = func(ctx context.Context, req backend.RegisterRequest) error {
		got = req
		return nil
	}

	rr := serve(server, http.MethodPost, "/register", `{"name":"Alice","email":"alice@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "alice@example.com", got.Email)

	rr = serve(server, http.MethodPost, "/register", `{"email":"alice@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWeekHandler(t *testing.T) {
	t.Run("requires a session", func(t *testing.T) {
		server, deps := setupTestServer(t, "")
		rr := serve(server, http.MethodGet, "/week", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Empty(t, deps.dash.WeekCalls)
	})

	t.Run("parses date and filters", func(t *testing.T) {
		server, deps := setupTestServer(t, "alice")
		deps.dash.WeekFunc = func(ctx context.Context, userID string, view dashboard.View) (schedule.Week, error) {
			matches := []schedule.MatchRecord{
				{ID: "m1", Participants: []string{"bob", "alice"}, ScheduledAt: "2025-03-04T10:00:00", Status: "pending"},
				{ID: "m2", Participants: []string{"alice", "bob"}, ScheduledAt: "2025-03-05T10:00:00", Status: "accepted"},
			}
			return schedule.BuildWeek(matches, view.Ref, view.Options), nil
		}

		rr := serve(server, http.MethodGet, "/week?date=2025-03-05&include_rejected=true&colour=blue", "")
		require.Equal(t, http.StatusOK, rr.Code)

		require.Len(t, deps.dash.WeekCalls, 1)
		view := deps.dash.WeekCalls[0]
		assert.Equal(t, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), view.Ref)
		assert.True(t, view.Options.IncludeRejected)

		var resp struct {
			UserID   string        `json:"user_id"`
			Warnings []string      `json:"warnings"`
			Actions  []MatchAction `json:"actions"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "alice", resp.UserID)
		require.Len(t, resp.Warnings, 1)
		assert.Contains(t, resp.Warnings[0], "colour")
		require.Len(t, resp.Actions, 2)
		assert.Equal(t, MatchAction{MatchID: "m1", CanRespond: true, CanReschedule: false}, resp.Actions[0])
		assert.Equal(t, MatchAction{MatchID: "m2", CanRespond: false, CanReschedule: true}, resp.Actions[1])
	})

	t.Run("invalid date", func(t *testing.T) {
		server, deps := setupTestServer(t, "alice")
		rr := serve(server, http.MethodGet, "/week?date=05-03-2025", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, deps.dash.WeekCalls)
	})

	t.Run("backend failure", func(t *testing.T) {
		server, deps := setupTestServer(t, "alice")
		deps.dash.WeekFunc = func(ctx context.Context, userID string, view dashboard.View) (schedule.Week, error) {
			return schedule.Week{}, &backend.APIError{Op: "fetch matches", StatusCode: http.StatusServiceUnavailable, Body: `{"message":"maintenance"}`}
		}
		rr := serve(server, http.MethodGet, "/week", "")
		assert.Equal(t, http.StatusBadGateway, rr.Code)
		assert.Equal(t, "maintenance", decodeError(t, rr))
	})
}

func TestWeekPageHandler(t *testing.T) {
	server, _ := setupTestServer(t, "alice")

	rr := serve(server, http.MethodGet, "/week.html?date=2025-03-05", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), `data-date="2025-03-03"`)

	server, _ = setupTestServer(t, "")
	rr = serve(server, http.MethodGet, "/week.html", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestPendingHandler(t *testing.T) {
	server, deps := setupTestServer(t, "alice")
	deps.dash.PendingFunc = func(ctx context.Context, userID string) ([]schedule.MatchRecord, error) {
		assert.Equal(t, "alice", userID)
		return []schedule.MatchRecord{{ID: "m1", Status: "Pending"}}, nil
	}

	rr := serve(server, http.MethodGet, "/matches/pending", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"id":"m1"`)
}

func TestRespondHandler(t *testing.T) {
	t.Run("accept returns the refreshed week", func(t *testing.T) {
		server, deps := setupTestServer(t, "alice")
		rr := serve(server, http.MethodPost, "/matches/m1/accept?date=2025-03-05", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, []string{"m1"}, deps.dash.AcceptCalls)
		assert.Empty(t, deps.dash.RejectCalls)
	})

	t.Run("escaped match id", func(t *testing.T) {
		server, deps := setupTestServer(t, "alice")
		rr := serve(server, http.MethodPost, "/matches/a%2Fb%3Fc/accept?date=2025-03-05", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, []string{"a/b?c"}, deps.dash.AcceptCalls)
	})

	t.Run("reject while in flight", func(t *testing.T) {
		server, deps := setupTestServer(t, "alice")
		deps.dash.RejectFunc = func(ctx context.Context, matchID, playerID string, view dashboard.View) (schedule.Week, error) {
			return schedule.Week{}, dashboard.ErrActionInFlight
		}
		rr := serve(server, http.MethodPost, "/matches/m1/reject", "")
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("form post redirects to the page", func(t *testing.T) {
		server, _ := setupTestServer(t, "alice")
		req := httptest.NewRequest(http.MethodPost, "/matches/m1/accept?date=2025-03-05", strings.NewReader(url.Values{}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/week.html?date=2025-03-03", rr.Header().Get("Location"))
	})

	t.Run("backend failure is reported inline", func(t *testing.T) {
		server, deps := setupTestServer(t, "alice")
		deps.dash.AcceptFunc = func(ctx context.Context, matchID, playerID string, view dashboard.View) (schedule.Week, error) {
			return schedule.Week{}, &backend.APIError{Op: "accept match", StatusCode: http.StatusBadRequest, Body: `{"error":"match already accepted"}`}
		}
		rr := serve(server, http.MethodPost, "/matches/m1/accept", "")
		assert.Equal(t, http.StatusBadGateway, rr.Code)
		assert.Equal(t, "match already accepted", decodeError(t, rr))
	})
}

func TestScheduleMatchHandler(t *testing.T) {
	server, deps := setupTestServer(t, "alice")
	deps.dash.ScheduleFunc = func(ctx context.Context, req dashboard.ScheduleRequest) (dashboard.ScheduleResult, error) {
		if req.Location == "" {
			return dashboard.ScheduleResult{}, &dashboard.ValidationError{Field: "location", Reason: "is required"}
		}
		return dashboard.ScheduleResult{Match: schedule.MatchRecord{ID: "new"}}, nil
	}

	rr := serve(server, http.MethodPost, "/matches", `{"requester":"mallory","opponent":"bob","scheduled_at":"2030-01-01T10:00:00","location":"Court 1"}`)
	assert.Equal(t, http.StatusCreated, rr.Code)
	require.Len(t, deps.dash.ScheduleCalls, 1)
	assert.Equal(t, "alice", deps.dash.ScheduleCalls[0].Requester, "requester always comes from the session")

	rr = serve(server, http.MethodPost, "/matches", `{"opponent":"bob"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid location: is required", decodeError(t, rr))

	rr = serve(server, http.MethodPost, "/matches", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAvailabilityHandler(t *testing.T) {
	server, deps := setupTestServer(t, "alice")
	var gotDay time.Time
	deps.dash.AvailabilityFunc = func(ctx context.Context, userID string, day time.Time) ([]schedule.Slot, error) {
		gotDay = day
		return []schedule.Slot{{Label: "14:00", Available: false, Conflicts: []string{"m1"}}}, nil
	}

	rr := serve(server, http.MethodGet, "/availability?date=2025-03-04", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), gotDay)
	assert.Contains(t, rr.Body.String(), `"label":"14:00"`)

	rr = serve(server, http.MethodGet, "/availability", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLeagueRoutes(t *testing.T) {
	server, deps := setupTestServer(t, "alice")
	deps.leagues.RespondJoinRequestFunc = func(ctx context.Context, leagueID, requestID string, approve bool) error {
		assert.Equal(t, "l1", leagueID)
		assert.Equal(t, "r9", requestID)
		assert.False(t, approve)
		return nil
	}
	deps.leagues.ToggleRoleFunc = func(ctx context.Context, playerID string) (string, error) {
		return "", league.ErrPlayerNotFound
	}

	rr := serve(server, http.MethodPost, "/leagues/l1/join-requests/r9/reject", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = serve(server, http.MethodPost, "/leagues/l1/join-requests/r9/maybe", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = serve(server, http.MethodPatch, "/players/ghost/role", `{}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDigestHandler(t *testing.T) {
	t.Run("dry run", func(t *testing.T) {
		server, deps := setupTestServer(t, "alice")
		deps.digest.res = digest.Result{UserID: "alice", Matches: 3, DryRun: true}

		rr := serve(server, http.MethodPost, "/digest?dry_run=true", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, []bool{true}, deps.digest.calls)
		assert.Contains(t, rr.Body.String(), `"matches":3`)
	})

	t.Run("no session", func(t *testing.T) {
		server, deps := setupTestServer(t, "")
		deps.digest.err = session.ErrNoSession
		rr := serve(server, http.MethodPost, "/digest", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("not configured", func(t *testing.T) {
		server, _ := setupTestServer(t, "alice")
		server.Digest = nil
		rr := serve(server, http.MethodPost, "/digest", "")
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}

func pushBody(t *testing.T, data []byte) string {
	t.Helper()
	body := map[string]any{
		"subscription": "projects/test/subscriptions/match-events",
		"message": map[string]string{
			"data":      base64.StdEncoding.EncodeToString(data),
			"messageId": "1",
		},
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return string(raw)
}

func TestMatchEventHandler(t *testing.T) {
	event := pubsub.MatchEvent{Type: pubsub.EventMatchAccepted, MatchID: "m1", PlayerID: "alice", Location: "Court 2"}
	encoded, err := msgpack.Marshal(event)
	require.NoError(t, err)

	t.Run("announces the event", func(t *testing.T) {
		server, deps := setupTestServer(t, "")
		rr := serve(server, http.MethodPost, "/events/match", pushBody(t, encoded))

		assert.Equal(t, http.StatusOK, rr.Code)
		events := deps.notifier.MatchEvents()
		require.Len(t, events, 1)
		assert.Equal(t, "m1", events[0].MatchID)
		assert.Equal(t, pubsub.EventMatchAccepted, events[0].Type)
	})

	t.Run("undecodable payload is acknowledged", func(t *testing.T) {
		server, deps := setupTestServer(t, "")
		rr := serve(server, http.MethodPost, "/events/match", pushBody(t, []byte{0xc1}))

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, deps.notifier.MatchEvents())
	})

	t.Run("notifier failure asks for redelivery", func(t *testing.T) {
		server, deps := setupTestServer(t, "")
		deps.notifier.SendMatchEventFunc = func(ctx context.Context, event pubsub.MatchEvent, dryRun bool) error {
			return errors.New("slack down")
		}
		rr := serve(server, http.MethodPost, "/events/match", pushBody(t, encoded))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})

	t.Run("invalid wrapper", func(t *testing.T) {
		server, _ := setupTestServer(t, "")
		req := httptest.NewRequest(http.MethodPost, "/events/match", bytes.NewBufferString("nope"))
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestStatusFor(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
	}{
		"in flight":    {dashboard.ErrActionInFlight, http.StatusConflict},
		"no session":   {session.ErrNoSession, http.StatusUnauthorized},
		"credentials":  {session.ErrMissingCredentials, http.StatusBadRequest},
		"validation":   {&dashboard.ValidationError{Field: "opponent", Reason: "is required"}, http.StatusBadRequest},
		"league input": {league.ErrInvalidInput, http.StatusBadRequest},
		"backend 500":  {&backend.APIError{Op: "x", StatusCode: 500}, http.StatusBadGateway},
		"backend 404":  {&backend.APIError{Op: "x", StatusCode: 404}, http.StatusNotFound},
		"unreachable":  {&url.Error{Op: "Get", URL: "http://backend", Err: errors.New("refused")}, http.StatusBadGateway},
		"other":        {errors.New("boom"), http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			handlers.WriteError(rr, req, tc.err)
			assert.Equal(t, tc.status, rr.Code)
		})
	}
}
