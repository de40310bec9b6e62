package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/taskmate/go-auth-client/session"
)

func TestSubscribeReplaysLatestValue(t *testing.T) {
	state := session.NewState()
	state.Set(&session.User{ID: "user-1", Username: "ana", Email: "a@x.com"})

	// A late subscriber receives current truth immediately.
	users, cancel := state.Subscribe()
	defer cancel()

	user := <-users
	require.NotNil(t, user)
	require.Equal(t, "ana", user.Username)
}

func TestSubscribeReplaysNilForLoggedOut(t *testing.T) {
	state := session.NewState()

	users, cancel := state.Subscribe()
	defer cancel()

	require.Nil(t, <-users)
}

func TestSetBroadcastsToSubscribers(t *testing.T) {
	state := session.NewState()
	users, cancel := state.Subscribe()
	defer cancel()
	require.Nil(t, <-users)

	state.Set(&session.User{Username: "ana"})

	user := <-users
	require.NotNil(t, user)
	require.Equal(t, "ana", user.Username)
}

func TestSlowSubscriberSeesLatestOnly(t *testing.T) {
	state := session.NewState()
	users, cancel := state.Subscribe()
	defer cancel()
	require.Nil(t, <-users)

	state.Set(&session.User{Username: "stale"})
	state.Set(&session.User{Username: "latest"})

	user := <-users
	require.NotNil(t, user)
	require.Equal(t, "latest", user.Username)
}

func TestCancelledSubscriberReceivesNothing(t *testing.T) {
	state := session.NewState()
	users, cancel := state.Subscribe()
	require.Nil(t, <-users)
	cancel()

	state.Set(&session.User{Username: "ana"})

	select {
	case user := <-users:
		t.Fatalf("cancelled subscriber received %v", user)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCurrentReturnsSnapshot(t *testing.T) {
	state := session.NewState()
	state.Set(&session.User{Username: "ana"})

	snapshot := state.Current()
	snapshot.Username = "mutated"

	require.Equal(t, "ana", state.Current().Username)
}

func TestPopulationGateFlipsExactlyOnce(t *testing.T) {
	state := session.NewState()
	require.False(t, state.Populated())

	state.MarkPopulated()
	require.True(t, state.Populated())

	// Idempotent: a second mark neither panics nor reverts the gate.
	state.MarkPopulated()
	require.True(t, state.Populated())

	select {
	case <-state.PopulationDone():
	default:
		t.Fatal("population gate should be open")
	}
}
