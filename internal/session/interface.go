package session

import (
	"context"

	"github.com/mauv0809/rally/internal/backend"
)

// Store persists the single session marker.
type Store interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, s Session) error
	Delete(ctx context.Context) error
}

// Authenticator exchanges credentials for a session. backend.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (backend.LoginResponse, error)
}

// Provider is what the HTTP layer and the jobs need from the session context.
type Provider interface {
	Current() (Session, bool)
	UserID() (string, error)
	Login(ctx context.Context, email, password string) (Session, error)
	Logout(ctx context.Context) error
	Subscribe() (<-chan Event, func())
}
