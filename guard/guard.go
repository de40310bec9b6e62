// Package guard decides whether a navigation may proceed once the session is
// known. Decisions are never made before the initial population completes -
// that gate is what separates "we haven't checked yet" from "not logged in"
// on a reload.
package guard

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/taskmate/go-auth-client/session"
)

// AuthChecker is the authoritative logged-in probe (auth.Manager provides it).
type AuthChecker interface {
	CheckAuthentication(ctx context.Context) bool
}

// Navigator redirects denied navigations.
type Navigator interface {
	NavigateToLogin()
	NavigateToDashboard()
}

// Guard evaluates protected and public-only route activations.
type Guard struct {
	state   *session.State
	checker AuthChecker
	nav     Navigator
	logger  zerolog.Logger
}

// Option defines a function type to modify the Guard instance.
type Option func(*Guard)

func WithLogger(logger zerolog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

// New initializes a Guard with required dependencies.
func New(state *session.State, checker AuthChecker, nav Navigator, options ...Option) (*Guard, error) {
	if state == nil {
		return nil, errors.New("[New] session state is required")
	}
	if checker == nil {
		return nil, errors.New("[New] auth checker is required")
	}
	if nav == nil {
		return nil, errors.New("[New] navigator is required")
	}

	guard := &Guard{
		state:   state,
		checker: checker,
		nav:     nav,
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(guard)
	}
	return guard, nil
}

// Protected suspends until the initial population completes, then probes the
// server for the session's validity. A denied activation redirects to login.
func (g *Guard) Protected(ctx context.Context) (bool, error) {
	if err := g.waitForPopulation(ctx); err != nil {
		return false, errors.Wrap(err, "[Protected] population wait")
	}

	if !g.checker.CheckAuthentication(ctx) {
		g.logger.Debug().Msg("protected route denied, redirecting to login")
		g.nav.NavigateToLogin()
		return false, nil
	}
	return true, nil
}

// PublicOnly guards login/signup style pages: an already-authenticated user
// is sent to the dashboard instead.
func (g *Guard) PublicOnly(ctx context.Context) (bool, error) {
	if err := g.waitForPopulation(ctx); err != nil {
		return false, errors.Wrap(err, "[PublicOnly] population wait")
	}

	if g.state.Current() != nil {
		g.logger.Debug().Msg("public-only route denied for authenticated session")
		g.nav.NavigateToDashboard()
		return false, nil
	}
	return true, nil
}

func (g *Guard) waitForPopulation(ctx context.Context) error {
	select {
	case <-g.state.PopulationDone():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
