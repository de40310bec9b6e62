// Package transport provides the request-pipeline stage that keeps arbitrary
// outgoing API calls authenticated. It attaches the stored bearer token, and
// when a call comes back 401 it funnels every concurrent failure through one
// shared token refresh, replaying the failed call once with the new token.
//
// Cookie handling (credentialed mode) lives on the http.Client's Jar; this
// layer only owns headers and the refresh/retry flow.
package transport

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/taskmate/go-auth-client/auth"
	"github.com/taskmate/go-auth-client/tokenstore"
)

// TokenRefresher produces a replacement access token. Concurrent callers are
// expected to share one in-flight refresh (auth.Manager does).
type TokenRefresher interface {
	RefreshToken(ctx context.Context) (string, error)
}

// SessionEnder tears the session down after an unrecoverable refresh failure.
type SessionEnder interface {
	Logout(ctx context.Context)
}

// Navigator is the routing collaborator: where the user currently is, and
// how to send them to the login screen.
type Navigator interface {
	CurrentRoute() string
	NavigateToLogin()
}

// Authenticator is an http.RoundTripper wrapping a base transport.
type Authenticator struct {
	base         http.RoundTripper
	store        tokenstore.Store
	refresher    TokenRefresher
	sessions     SessionEnder
	nav          Navigator
	publicRoutes map[string]struct{}
	refreshPath  string
	logger       zerolog.Logger
}

var _ http.RoundTripper = (*Authenticator)(nil)

// Option defines a function type to modify the Authenticator instance.
type Option func(*Authenticator)

// WithBase sets the underlying transport (http.DefaultTransport otherwise).
func WithBase(base http.RoundTripper) Option {
	return func(a *Authenticator) {
		a.base = base
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(a *Authenticator) {
		a.logger = logger
	}
}

// WithPublicRoutes replaces the allow-list of routes a user may view
// unauthenticated. A refresh failure while on one of these routes does not
// log the user out or redirect.
func WithPublicRoutes(routes []string) Option {
	return func(a *Authenticator) {
		a.publicRoutes = make(map[string]struct{}, len(routes))
		for _, route := range routes {
			a.publicRoutes[route] = struct{}{}
		}
	}
}

// WithRefreshPath overrides the request path that must never have the
// expiring token attached.
func WithRefreshPath(path string) Option {
	return func(a *Authenticator) {
		a.refreshPath = path
	}
}

// New initializes an Authenticator with required dependencies.
func New(store tokenstore.Store, refresher TokenRefresher, sessions SessionEnder, nav Navigator, options ...Option) (*Authenticator, error) {
	if store == nil {
		return nil, errors.New("[New] token store is required")
	}
	if refresher == nil {
		return nil, errors.New("[New] token refresher is required")
	}
	if sessions == nil {
		return nil, errors.New("[New] session ender is required")
	}
	if nav == nil {
		return nil, errors.New("[New] navigator is required")
	}

	authenticator := &Authenticator{
		base:        http.DefaultTransport,
		store:       store,
		refresher:   refresher,
		sessions:    sessions,
		nav:         nav,
		refreshPath: auth.RefreshPath,
		logger:      zerolog.Nop(),
	}
	WithPublicRoutes([]string{"/", "/login", "/signup"})(authenticator)

	for _, opt := range options {
		opt(authenticator)
	}

	return authenticator, nil
}

// RoundTrip attaches the token, sends the call, and on 401 refreshes the
// token and retries the original call exactly once. Any non-401 outcome
// passes through untouched. When the refresh itself fails on a non-public
// route, the session is logged out and the user sent to login; the original
// 401 is what the caller observes either way.
func (a *Authenticator) RoundTrip(req *http.Request) (*http.Response, error) {
	requestID := uuid.New().String()

	first := req.Clone(req.Context())
	a.attachToken(first, req)

	resp, err := a.base.RoundTrip(first)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || a.isRefreshCall(req) {
		return resp, nil
	}

	retry, err := a.replay(req)
	if err != nil {
		// Body not replayable: surface the original 401.
		a.logger.Debug().Str("request_id", requestID).Err(err).Msg("401 not retriable")
		return resp, nil
	}

	a.logger.Debug().Str("request_id", requestID).Str("path", req.URL.Path).Msg("401 received, refreshing token")

	refreshed, err := a.refresher.RefreshToken(req.Context())
	if err != nil {
		a.handleRefreshFailure(req.Context(), requestID, err)
		return resp, nil
	}

	_ = resp.Body.Close() // discard the 401 before replaying

	retry.Header.Set("Authorization", "Bearer "+refreshed)
	return a.base.RoundTrip(retry)
}

// attachToken sets the bearer header on clone, unless the call is the
// refresh itself.
func (a *Authenticator) attachToken(clone, original *http.Request) {
	if raw, ok := a.store.Read(); ok && !a.isRefreshCall(original) {
		clone.Header.Set("Authorization", "Bearer "+raw)
	}
}

// replay clones req with a fresh copy of its body. The first attempt
// consumed the original body, so the retry needs GetBody.
func (a *Authenticator) replay(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("request body is not replayable")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, errors.Wrap(err, "replay request body")
	}
	clone.Body = body
	return clone, nil
}

func (a *Authenticator) isRefreshCall(req *http.Request) bool {
	return strings.Contains(req.URL.Path, a.refreshPath)
}

func (a *Authenticator) handleRefreshFailure(ctx context.Context, requestID string, err error) {
	route := a.nav.CurrentRoute()
	if _, public := a.publicRoutes[route]; public {
		// Unauthenticated content is still viewable; leave the user where
		// they are.
		a.logger.Debug().Str("request_id", requestID).Str("route", route).Err(err).Msg("refresh failed on public route")
		return
	}

	a.logger.Info().Str("request_id", requestID).Str("route", route).Err(err).Msg("refresh failed, ending session")
	a.sessions.Logout(ctx)
	a.nav.NavigateToLogin()
}
