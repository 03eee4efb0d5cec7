package league

import (
	"errors"

	"github.com/mauv0809/rally/internal/backend"
)

var (
	// ErrInvalidInput wraps every rejected argument.
	ErrInvalidInput   = errors.New("invalid input")
	ErrPlayerNotFound = errors.New("player not found")
)

type service struct {
	backend backend.Client
}
