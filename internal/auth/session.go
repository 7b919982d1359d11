package auth

import (
	"errors"

	"github.com/terabox/terabox-int/internal/logging"
	"github.com/terabox/terabox-int/internal/models"
)

// ErrNotAuthenticated is returned when no stored session exists. Callers
// should direct the user to log in rather than retry.
var ErrNotAuthenticated = errors.New("not authenticated: run 'terabox-int login' first")

// TokenStore is where the session lives between invocations. *config.Config
// implements it.
type TokenStore interface {
	Token() string
	CurrentUser() *models.User
	ClearSession() error
}

// Gate decides whether protected operations may proceed. The check is a
// local token-presence test; token validity is only known once the backend
// answers an authenticated call.
type Gate struct {
	store  TokenStore
	logger *logging.Logger
}

func NewGate(store TokenStore) *Gate {
	return &Gate{
		store:  store,
		logger: logging.NewLogger("auth"),
	}
}

// Authorize returns the stored identity when a session exists, otherwise
// ErrNotAuthenticated. It never performs network I/O.
func (g *Gate) Authorize() (*models.User, error) {
	if g.store.Token() == "" {
		return nil, ErrNotAuthenticated
	}
	user := g.store.CurrentUser()
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	return user, nil
}

// ClearSession wipes the stored token and identity. Already being logged
// out is not an error.
func (g *Gate) ClearSession() error {
	if g.store.Token() == "" {
		g.logger.Debug().Msg("no session to clear")
		return nil
	}
	if err := g.store.ClearSession(); err != nil {
		return err
	}
	g.logger.Info().Msg("session cleared")
	return nil
}
