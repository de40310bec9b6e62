// Package tokenstore holds the single access token the client is operating
// with. It is a pure key-value cell: one token per process, no validation,
// no expiry semantics. The Go analogue of the browser's per-tab storage -
// nothing here survives process exit and nothing is shared across processes.
package tokenstore

import "sync"

// Store is the contract the rest of the client programs against.
type Store interface {
	Save(token string)
	Read() (string, bool)
	Clear()
}

// Memory is the default in-process Store.
type Memory struct {
	lock    sync.RWMutex
	token   string
	present bool
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{}
}

// Save overwrites any previously stored token. Callers never observe a
// half-written value.
func (m *Memory) Save(token string) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.token = token
	m.present = true
}

// Read returns the stored token, if any.
func (m *Memory) Read() (string, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	if !m.present {
		return "", false
	}
	return m.token, true
}

// Clear removes the stored token.
func (m *Memory) Clear() {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.token = ""
	m.present = false
}
