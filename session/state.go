// Package session owns the in-memory record of who is currently logged in.
// State is the single source of truth the rest of the client reads: the
// manager writes it on every login/logout/refresh outcome, guards and UI
// code subscribe to it.
package session

import "sync"

// User is the profile snapshot fetched from the server. It is replaced
// wholesale on every successful population, login, or authentication check
// and cleared to nil on logout or an unrecoverable refresh failure.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// State is a replay-latest observable of the current user plus a one-shot
// population gate. New subscribers immediately receive current truth, not
// just future changes. The gate flips open exactly once, after the first
// population attempt completes, and never closes again.
type State struct {
	lock      sync.RWMutex
	current   *User
	subs      map[uint64]chan *User
	nextSubID uint64

	populated    chan struct{}
	populateOnce sync.Once
}

func NewState() *State {
	return &State{
		subs:      make(map[uint64]chan *User),
		populated: make(chan struct{}),
	}
}

// Set replaces the current user and broadcasts it to every subscriber.
// A nil user means logged out.
func (s *State) Set(user *User) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.current = copyUser(user)
	for _, ch := range s.subs {
		// Drop the stale value so a slow subscriber always sees the latest.
		select {
		case <-ch:
		default:
		}
		ch <- copyUser(s.current)
	}
}

// Current returns a snapshot of the current user, nil if logged out.
func (s *State) Current() *User {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return copyUser(s.current)
}

// Subscribe registers an observer of the current user. The returned channel
// is buffered and primed with the present value. The cancel function must be
// called when the observer is done, after which the channel receives no
// further values.
func (s *State) Subscribe() (<-chan *User, func()) {
	s.lock.Lock()
	defer s.lock.Unlock()

	ch := make(chan *User, 1)
	ch <- copyUser(s.current)

	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = ch

	cancel := func() {
		s.lock.Lock()
		defer s.lock.Unlock()
		delete(s.subs, id)
	}
	return ch, cancel
}

// MarkPopulated records that the initial session population has completed,
// success or failure. Safe to call more than once; only the first call has
// any effect.
func (s *State) MarkPopulated() {
	s.populateOnce.Do(func() {
		close(s.populated)
	})
}

// PopulationDone returns a channel that is closed once the initial
// population has completed. Guards select on it alongside their context.
func (s *State) PopulationDone() <-chan struct{} {
	return s.populated
}

// Populated reports whether the initial population has completed.
func (s *State) Populated() bool {
	select {
	case <-s.populated:
		return true
	default:
		return false
	}
}

func copyUser(u *User) *User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
