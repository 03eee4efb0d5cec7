package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rally/internal/backend"
	"github.com/mauv0809/rally/internal/dashboard"
	"github.com/mauv0809/rally/internal/http/handlers"
	"github.com/mauv0809/rally/internal/schedule"
	"github.com/mauv0809/rally/internal/session"
	"github.com/mauv0809/rally/internal/templates"
)

const dateLayout = "2006-01-02"

// reservedParams are query parameters that are not filter options.
var reservedParams = map[string]bool{"date": true, "verbose": true, "dry_run": true}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body loginRequest
		if err := handlers.DecodeJSON(r, &body); err != nil {
			handlers.WriteError(w, r, err)
			return
		}
		body.Email = strings.TrimSpace(body.Email)
		if body.Email == "" || body.Password == "" {
			handlers.WriteError(w, r, session.ErrMissingCredentials)
			return
		}
		sess, err := s.Sessions.Login(r.Context(), body.Email, body.Password)
		if err != nil {
			handlers.WriteError(w, r, err)
			return
		}
		handlers.WriteJSON(w, http.StatusOK, sess)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Sessions.Logout(r.Context()); err != nil {
			handlers.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body backend.RegisterRequest
		if err := handlers.DecodeJSON(r, &body); err != nil {
			handlers.WriteError(w, r, err)
			return
		}
		if strings.TrimSpace(body.Name) == "" || strings.TrimSpace(body.Email) == "" || body.Password == "" {
			handlers.WriteError(w, r, fmt.Errorf("%w: name, email and password are required", handlers.ErrBadRequest))
			return
		}
		if err := s.Backend.Register(r.Context(), body); err != nil {
			handlers.WriteError(w, r, err)
			return
		}
		log.Info("Player registered", "email", body.Email)
		handlers.WriteJSON(w, http.StatusCreated, map[string]string{"email": body.Email})
	}
}

func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.Sessions.Current()
		if !ok {
			handlers.WriteJSON(w, http.StatusUnauthorized, handlers.ErrorResponse{Error: "not logged in", RequestID: handlers.RequestIDFromContext(r)})
			return
		}
		handlers.WriteJSON(w, http.StatusOK, sess)
	}
}

// WeekHandler returns the week grid of the logged in player as JSON.
func (s *Server) WeekHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.Sessions.UserID()
		if err != nil {
			handlers.WriteError(w, r, err)
			return
		}
		view, warnings, err := s.viewFromRequest(r)
		if err != nil {
			handlers.WriteError(w, r, err)
			return
		}
		week, err := s.Dashboard.Week(r.Context(), userID, view)
		if err != nil {
			handlers.WriteError(w, r, err)
			return
		}
		handlers.WriteJSON(w, http.StatusOK, weekResponse(userID, week, warnings))
	}
}

// WeekPageHandler renders the week grid as HTML.
func (s *Server) WeekPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.Sessions.UserID()
		if err != nil {
			status, msg := handlers.StatusFor(err)
			http.Error(w, msg, status)
			return
		}
		view, _, err := s.viewFromRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		week, err := s.Dashboard.Week(r.Context(), userID, view)
		if err != nil {
			status, msg := handlers.StatusFor(err)
			http.Error(w, msg, status)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.WeekPage(userID, week).Render(r.Context(), w); err != nil {
			log.Error("Failed to render week page", "error", err)
		}
	}
}

func (s *Server) PendingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.Sessions.UserID()
		if err != nil {
			handlers.WriteError(w, r, err)
			return
		}
		pending, err := s.Dashboard.Pending(r.Context(), userID)
		if err != nil {
			handlers.WriteError(w, r, err)
			return
		}
		handlers.WriteJSON(w, http.StatusOK, pending)
	}
}

// RespondHandler accepts or rejects the match in the path as the logged in player.
// Form posts from the HTML page are redirected back to it.
func (s *Server) RespondHandler(accept bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.Sessions.UserID()
		if err != nil {
			handlers.WriteError(w, r, err)
			return
		}
		view, warnings, err := s.viewFromRequest(r)
		if err != nil {
			handlers.WriteError(w, r, err)
			return
		}

		matchID := handlers.PathVar(r, "id")
		var week schedule.Week
		if accept {
			week, err = s.Dashboard.Accept(r.Context(), matchID, userID, view)
		} else {
			week, err = s.Dashboard.Reject(r.Context(), matchID, userID, view)
		}
		if err != nil {
			handlers.WriteError(w, r, err)
			return
		}

		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
			target := "/week.html?date=" + week.Window.Start().Format(dateLayout)
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		handlers.WriteJSON(w, http.StatusOK, weekResponse(userID, week, warnings))
	}
}

func (s *Server) ScheduleMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.Sessions.UserID()
		if err != nil {
			handlers.WriteError(w, r, err)
			return
		}
		var req dashboard.ScheduleRequest
		if err := handlers.DecodeJSON(r, &req); err != nil {
			handlers.WriteError(w, r, err)
			return
		}
		req.Requester = userID

		res, err := s.Dashboard.Schedule(r.Context(), req)
		if err != nil {
			handlers.WriteError(w, r, err)
			return
		}
		handlers.WriteJSON(w, http.StatusCreated, res)
	}
}

func (s *Server) AvailabilityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.Sessions.UserID()
		if err != nil {
			handlers.WriteError(w, r, err)
			return
		}
		raw := r.URL.Query().Get("date")
		if raw == "" {
			handlers.WriteError(w, r, fmt.Errorf("%w: date is required", handlers.ErrBadRequest))
			return
		}
		day, err := time.ParseInLocation(dateLayout, raw, s.Dashboard.Location())
		if err != nil {
			handlers.WriteError(w, r, fmt.Errorf("%w: date must look like %s", handlers.ErrBadRequest, dateLayout))
			return
		}
		slots, err := s.Dashboard.Availability(r.Context(), userID, day)
		if err != nil {
			handlers.WriteError(w, r, err)
			return
		}
		handlers.WriteJSON(w, http.StatusOK, slots)
	}
}

// DigestHandler sends the weekly digest now. With dry_run=true it is only logged.
func (s *Server) DigestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Digest == nil {
			handlers.WriteJSON(w, http.StatusServiceUnavailable, handlers.ErrorResponse{Error: "the weekly digest is not configured"})
			return
		}
		res, err := s.Digest.Run(r.Context(), isDryRunFromContext(r))
		if err != nil {
			handlers.WriteError(w, r, err)
			return
		}
		handlers.WriteJSON(w, http.StatusOK, res)
	}
}

// viewFromRequest reads the week reference and filter options from the query.
// Unknown filter options are returned as warnings and otherwise ignored.
func (s *Server) viewFromRequest(r *http.Request) (dashboard.View, []string, error) {
	query := r.URL.Query()

	var view dashboard.View
	if raw := query.Get("date"); raw != "" {
		ref, err := time.ParseInLocation(dateLayout, raw, s.Dashboard.Location())
		if err != nil {
			return dashboard.View{}, nil, fmt.Errorf("%w: date must look like %s", handlers.ErrBadRequest, dateLayout)
		}
		view.Ref = ref
	}

	opts, errs := schedule.ParseFilterOptions(filterParams(query))
	view.Options = opts

	var warnings []string
	for _, err := range errs {
		var optErr schedule.InvalidFilterOptionError
		if errors.As(err, &optErr) {
			log.Warn("Ignoring filter option", "key", optErr.Key, "value", optErr.Value)
		}
		warnings = append(warnings, err.Error())
	}
	return view, warnings, nil
}

func filterParams(query url.Values) map[string]string {
	raw := make(map[string]string, len(query))
	for k, v := range query {
		if reservedParams[k] {
			continue
		}
		raw[k] = ""
		if len(v) > 0 {
			raw[k] = v[0]
		}
	}
	return raw
}

func weekResponse(userID string, week schedule.Week, warnings []string) WeekResponse {
	actions := make([]MatchAction, 0, len(week.Matches))
	for _, m := range week.Matches {
		actions = append(actions, MatchAction{
			MatchID:       m.ID,
			CanRespond:    schedule.CanRespond(m, userID),
			CanReschedule: schedule.CanReschedule(m),
		})
	}
	return WeekResponse{UserID: userID, Week: week, Warnings: warnings, Actions: actions}
}
