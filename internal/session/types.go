package session

import (
	"errors"
	"time"
)

// ErrNoSession is returned when an operation needs a logged in user and there is none.
var ErrNoSession = errors.New("no active session")

// ErrMissingCredentials is returned by Login when the email or password is blank.
var ErrMissingCredentials = errors.New("email and password are required")

// Session is the marker written on login and removed on logout.
type Session struct {
	UserID     string    `json:"user_id"`
	Token      string    `json:"-"`
	LoggedInAt time.Time `json:"logged_in_at"`
}

// EventType tells subscribers what changed.
type EventType string

const (
	EventLogin  EventType = "login"
	EventLogout EventType = "logout"
)

// Event is delivered to subscribers after the session changed.
type Event struct {
	Type    EventType
	Session Session
}
