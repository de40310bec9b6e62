package tokenstore_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/taskmate/go-auth-client/tokenstore"
)

func TestMemoryStartsEmpty(t *testing.T) {
	store := tokenstore.NewMemory()

	token, ok := store.Read()
	require.False(t, ok)
	require.Empty(t, token)
}

func TestMemorySaveOverwrites(t *testing.T) {
	store := tokenstore.NewMemory()

	store.Save("first-token")
	store.Save("second-token")

	token, ok := store.Read()
	require.True(t, ok)
	require.Equal(t, "second-token", token)
}

func TestMemoryClear(t *testing.T) {
	store := tokenstore.NewMemory()
	store.Save("some-token")

	store.Clear()

	token, ok := store.Read()
	require.False(t, ok)
	require.Empty(t, token)
}

func TestMemoryConcurrentAccess(t *testing.T) {
	store := tokenstore.NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Save("token")
		}()
		go func() {
			defer wg.Done()
			store.Read()
		}()
	}
	wg.Wait()

	token, ok := store.Read()
	require.True(t, ok)
	require.Equal(t, "token", token)
}
