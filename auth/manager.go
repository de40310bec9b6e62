// Package auth orchestrates the client's authentication session: login,
// logout, signup, password resets, token refresh, and the one-time initial
// population of session state at startup. It is the only writer of the
// token store and the session state.
package auth

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/taskmate/go-auth-client/internal/utils"
	"github.com/taskmate/go-auth-client/session"
	"github.com/taskmate/go-auth-client/token"
	"github.com/taskmate/go-auth-client/tokenstore"
)

const defaultHTTPTimeout = 30 * time.Second

// Manager coordinates the authentication session against the user API.
type Manager struct {
	baseURL    string
	httpClient *http.Client
	store      tokenstore.Store
	state      *session.State
	logger     zerolog.Logger
	nowTime    func() time.Time // nowTime function (injectable for testing)

	populateOnce sync.Once
	refreshGroup singleflight.Group
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithHTTPClient replaces the default client. Supplying a client without a
// cookie jar disables the ambient-cookie refresh flow.
func WithHTTPClient(client *http.Client) ManagerOption {
	return func(m *Manager) {
		m.httpClient = client
	}
}

func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// New initializes a Manager with required dependencies. Optional
// configuration can be provided via options (e.g., WithNowTime for testing).
func New(baseURL string, store tokenstore.Store, state *session.State, options ...ManagerOption) (*Manager, error) {
	if baseURL == "" {
		return nil, errors.New("[New] baseURL is required")
	}
	if store == nil {
		return nil, errors.New("[New] token store is required")
	}
	if state == nil {
		return nil, errors.New("[New] session state is required")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "[New] cookie jar")
	}

	manager := &Manager{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
			Jar:     jar, // carries the ambient refresh cookie
		},
		store:   store,
		state:   state,
		logger:  zerolog.Nop(),
		nowTime: time.Now,
	}

	for _, opt := range options {
		opt(manager)
	}

	return manager, nil
}

// State exposes the session state the Manager mutates.
func (m *Manager) State() *session.State {
	return m.state
}

// Populate runs the initial session population: if a stored token exists and
// is not locally expired, the profile is fetched and becomes the current
// user; any failure collapses to the logged-out state. It never returns an
// error and runs at most once per Manager - later calls are no-ops. The
// population gate opens when the first attempt completes, success or failure.
func (m *Manager) Populate(ctx context.Context) {
	m.populateOnce.Do(func() {
		defer m.state.MarkPopulated()

		raw, ok := m.store.Read()
		if !ok || token.IsExpired(raw, m.nowTime()) {
			m.state.Set(nil)
			return
		}

		user, err := m.fetchProfile(ctx)
		if err != nil {
			m.logger.Debug().Err(err).Msg("session population failed, starting logged out")
			m.store.Clear()
			m.state.Set(nil)
			return
		}
		m.state.Set(user)
	})
}

// Login exchanges credentials for a token, stores it, and loads the profile
// of the just-logged-in user. On any failure the session is forced to the
// logged-out state so a half-authenticated session is never observable.
func (m *Manager) Login(ctx context.Context, credentials Credentials) (*session.User, error) {
	if err := credentials.Validate(); err != nil {
		return nil, asValidationError(err)
	}

	var tokenResp tokenResponse
	if err := m.do(ctx, http.MethodPost, LoginPath, credentials, &tokenResp, false); err != nil {
		m.state.Set(nil)
		return nil, errors.Wrap(err, "[Login] credential post")
	}

	m.store.Save(tokenResp.Token)

	user, err := m.fetchProfile(ctx)
	if err != nil {
		m.state.Set(nil)
		return nil, errors.Wrap(err, "[Login] profile fetch")
	}

	m.state.Set(user)
	m.logger.Info().Str("username", user.Username).Msg("logged in")
	return user, nil
}

// Logout notifies the server (best effort) and clears local session state.
// Local logout is always effective, even when the remote call fails.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.do(ctx, http.MethodPost, LogoutPath, nil, nil, true); err != nil {
		m.logger.Warn().Err(err).Msg("remote logout failed, clearing local session anyway")
	}
	m.store.Clear()
	m.state.Set(nil)
}

// Signup registers a new account. The session is not mutated - the new
// account is not auto-logged-in.
func (m *Manager) Signup(ctx context.Context, request SignupRequest) error {
	if err := request.Validate(); err != nil {
		return asValidationError(err)
	}
	if err := m.do(ctx, http.MethodPost, CreateUserPath, request, nil, false); err != nil {
		return errors.Wrap(err, "[Signup] registration post")
	}
	return nil
}

// RequestPasswordReset triggers the reset email. Every outcome, including
// transport and server failures, yields the same generic message so the
// response can never reveal whether an address is registered.
func (m *Manager) RequestPasswordReset(ctx context.Context, email string) string {
	if err := m.do(ctx, http.MethodPost, SendPasswordResetPath, passwordResetRequest{Email: email}, nil, false); err != nil {
		m.logger.Debug().Err(err).Msg("password reset request failed")
	}
	return PasswordResetMessage
}

// ResetPassword consumes a reset token together with the new password.
// Success and failure pass through to the caller; the session is untouched.
func (m *Manager) ResetPassword(ctx context.Context, request ResetRequest) error {
	if err := request.Validate(); err != nil {
		return asValidationError(err)
	}
	if err := m.do(ctx, http.MethodPost, ChangePasswordPath, request, nil, false); err != nil {
		return errors.Wrap(err, "[ResetPassword] change password post")
	}
	return nil
}

// RefreshToken exchanges the ambient session cookie for a new access token.
// Concurrent callers share a single in-flight refresh and all observe the
// same result. On failure the session collapses to logged out and the error
// propagates.
func (m *Manager) RefreshToken(ctx context.Context) (string, error) {
	result, err, _ := m.refreshGroup.Do("refresh", func() (interface{}, error) {
		var tokenResp tokenResponse
		// The expiring token is never attached to the call that replaces it.
		if err := m.do(ctx, http.MethodPost, RefreshPath, nil, &tokenResp, false); err != nil {
			m.state.Set(nil)
			return nil, errors.Wrap(err, "[RefreshToken] refresh post")
		}
		m.store.Save(tokenResp.Token)
		return tokenResp.Token, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// CheckAuthentication is the authoritative "am I still logged in" probe used
// by route guards. It always asks the server rather than trusting a locally
// cached expiry. Failures collapse to the logged-out state.
func (m *Manager) CheckAuthentication(ctx context.Context) bool {
	user, err := m.fetchProfile(ctx)
	if err != nil {
		m.state.Set(nil)
		return false
	}
	m.state.Set(user)
	return true
}

func (m *Manager) fetchProfile(ctx context.Context) (*session.User, error) {
	var profile profileResponse
	if err := m.do(ctx, http.MethodGet, ProfilePath, nil, &profile, true); err != nil {
		return nil, err
	}
	return &session.User{
		ID:       utils.Value(profile.ID),
		Username: utils.Value(profile.Username),
		Email:    utils.Value(profile.Email),
	}, nil
}
