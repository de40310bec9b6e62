package guard_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taskmate/go-auth-client/guard"
	"github.com/taskmate/go-auth-client/session"
)

type fakeChecker struct {
	authenticated bool
	probes        int
}

func (c *fakeChecker) CheckAuthentication(ctx context.Context) bool {
	c.probes++
	return c.authenticated
}

type fakeNavigator struct {
	lock                 sync.Mutex
	loginNavigations     int
	dashboardNavigations int
}

func (n *fakeNavigator) NavigateToLogin() {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.loginNavigations++
}

func (n *fakeNavigator) NavigateToDashboard() {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.dashboardNavigations++
}

func setupGuard(t *testing.T, authenticated bool) (*guard.Guard, *session.State, *fakeChecker, *fakeNavigator) {
	t.Helper()

	state := session.NewState()
	checker := &fakeChecker{authenticated: authenticated}
	nav := &fakeNavigator{}
	g, err := guard.New(state, checker, nav)
	require.NoError(t, err)
	return g, state, checker, nav
}

func TestProtectedAllowsAuthenticatedSession(t *testing.T) {
	g, state, checker, nav := setupGuard(t, true)
	state.MarkPopulated()

	allowed, err := g.Protected(context.Background())
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, 1, checker.probes, "a fresh probe, not a cached expiry check")
	require.Zero(t, nav.loginNavigations)
}

func TestProtectedDeniesAndRedirects(t *testing.T) {
	g, state, _, nav := setupGuard(t, false)
	state.MarkPopulated()

	allowed, err := g.Protected(context.Background())
	require.NoError(t, err)
	require.False(t, allowed)
	require.Equal(t, 1, nav.loginNavigations)
}

func TestProtectedWaitsForPopulation(t *testing.T) {
	g, state, _, _ := setupGuard(t, true)

	released := make(chan struct{})
	go func() {
		time.Sleep(50 * time.Millisecond)
		state.MarkPopulated()
		close(released)
	}()

	allowed, err := g.Protected(context.Background())
	require.NoError(t, err)
	require.True(t, allowed)

	select {
	case <-released:
	default:
		t.Fatal("guard decided before population completed")
	}
}

func TestProtectedHonoursCancellation(t *testing.T) {
	g, _, checker, nav := setupGuard(t, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	allowed, err := g.Protected(ctx)
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.False(t, allowed)
	require.Zero(t, checker.probes)
	require.Zero(t, nav.loginNavigations)
}

func TestPublicOnlyAllowsLoggedOutSession(t *testing.T) {
	g, state, _, nav := setupGuard(t, false)
	state.MarkPopulated()

	allowed, err := g.PublicOnly(context.Background())
	require.NoError(t, err)
	require.True(t, allowed)
	require.Zero(t, nav.dashboardNavigations)
}

func TestPublicOnlyRedirectsAuthenticatedSession(t *testing.T) {
	g, state, _, nav := setupGuard(t, true)
	state.Set(&session.User{Username: "ana"})
	state.MarkPopulated()

	allowed, err := g.PublicOnly(context.Background())
	require.NoError(t, err)
	require.False(t, allowed)
	require.Equal(t, 1, nav.dashboardNavigations)
}
