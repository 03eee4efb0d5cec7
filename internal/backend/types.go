package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mauv0809/rally/internal/schedule"
)

var (
	ErrUnauthorized = errors.New("not authorized by backend")
	ErrNotFound     = errors.New("not found in backend")
)

// APIError is returned for every non-2xx answer of the backend.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: backend returned %d", e.Op, e.StatusCode)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// Message extracts a human readable message from the body, if the backend sent one.
func (e *APIError) Message() string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(e.Body), &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if len(e.Body) > 200 {
		return strings.TrimSpace(e.Body[:200])
	}
	return strings.TrimSpace(e.Body)
}

// Retryable reports whether a fetch may be repeated.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// CreateMatchRequest is the payload for scheduling a new match.
type CreateMatchRequest struct {
	LeagueID     string             `json:"league_id,omitempty"`
	Participants []string           `json:"participants"`
	ScheduledAt  string             `json:"scheduled_at"`
	Location     string             `json:"location"`
	MatchType    schedule.MatchType `json:"match_type"`
	Notes        string             `json:"notes,omitempty"`
	IsPractice   bool               `json:"is_practice,omitempty"`
}

type LoginResponse struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	SkillLevel string `json:"skill_level,omitempty"`
}

type League struct {
	ID          string `json:"league_id"`
	Name        string `json:"league_name"`
	Description string `json:"description"`
	CreatedBy   string `json:"created_by,omitempty"`
	MemberCount int    `json:"member_count,omitempty"`
}

type CreateLeagueRequest struct {
	Name        string `json:"league_name"`
	Description string `json:"description"`
	CreatedBy   string `json:"created_by"`
}

// Join request statuses.
const (
	JoinPending  = "pending"
	JoinApproved = "approved"
	JoinRejected = "rejected"
)

type JoinRequest struct {
	ID          string `json:"request_id"`
	LeagueID    string `json:"league_id"`
	PlayerID    string `json:"player_id"`
	PlayerName  string `json:"player_name,omitempty"`
	Status      string `json:"status"`
	RequestedAt string `json:"requested_at,omitempty"`
}

type Standing struct {
	Rank       int    `json:"rank"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	Points     int    `json:"points"`
}

// Player roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type Player struct {
	ID         string `json:"user_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	SkillLevel string `json:"skill_level,omitempty"`
}

type playerIDBody struct {
	PlayerID string `json:"player_id"`
}
