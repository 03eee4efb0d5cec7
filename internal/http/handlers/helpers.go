package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/mauv0809/rally/internal/backend"
	"github.com/mauv0809/rally/internal/dashboard"
	"github.com/mauv0809/rally/internal/league"
	"github.com/mauv0809/rally/internal/session"
)

// ContextKey is a custom type to avoid key collisions in context.
type ContextKey string

const (
	DryRunKey    ContextKey = "dryRun"
	RequestIDKey ContextKey = "requestID"
)

// ErrBadRequest marks malformed request bodies and parameters.
var ErrBadRequest = errors.New("bad request")

// IsDryRunFromContext is a helper to safely retrieve the dry_run flag from the request context.
func IsDryRunFromContext(r *http.Request) bool {
	dryRun, ok := r.Context().Value(DryRunKey).(bool)
	return ok && dryRun
}

// RequestIDFromContext returns the id assigned by the request id middleware.
func RequestIDFromContext(r *http.Request) string {
	id, _ := r.Context().Value(RequestIDKey).(string)
	return id
}

// ErrorResponse is the body of every failed JSON request.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

// WriteError maps err to a status code and writes it as JSON.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		log.Warn("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	WriteJSON(w, status, ErrorResponse{Error: msg, RequestID: RequestIDFromContext(r)})
}

// StatusFor returns the HTTP status and user facing message for err.
func StatusFor(err error) (int, string) {
	var (
		validationErr *dashboard.ValidationError
		apiErr        *backend.APIError
		urlErr        *url.Error
	)
	switch {
	case errors.Is(err, session.ErrMissingCredentials):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, session.ErrNoSession):
		return http.StatusUnauthorized, "not logged in"
	case errors.Is(err, backend.ErrUnauthorized):
		return http.StatusUnauthorized, "the backend rejected the session, please log in again"
	case errors.Is(err, dashboard.ErrActionInFlight):
		return http.StatusConflict, "this action is already in progress"
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Error()
	case errors.Is(err, league.ErrInvalidInput), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, league.ErrPlayerNotFound), errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &apiErr):
		if msg := apiErr.Message(); msg != "" {
			return http.StatusBadGateway, msg
		}
		return http.StatusBadGateway, fmt.Sprintf("the league service answered %d", apiErr.StatusCode)
	case errors.As(err, &urlErr):
		return http.StatusBadGateway, "the league service is unreachable"
	}
	return http.StatusInternalServerError, "internal error"
}

// DecodeJSON reads the request body into v.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("%w: empty body", ErrBadRequest)
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", ErrBadRequest, err)
	}
	return nil
}

// PathVar returns the decoded route variable name. The router matches on the
// encoded path, so ids containing "/" or "?" arrive escaped.
func PathVar(r *http.Request, name string) string {
	raw := mux.Vars(r)[name]
	v, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return v
}
