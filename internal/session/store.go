package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultIdleTimeout is how long a session survives without requests
const DefaultIdleTimeout = time.Hour

// Store keeps sessions in memory, keyed by a random ID.
// Sessions idle for longer than the idle timeout are dropped.
type Store struct {
	mu           sync.Mutex
	sessions     map[string]*Session
	defaultToken string

	idleTimeout time.Duration
	now         func() time.Time
	lastSweep   time.Time
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithIdleTimeout sets the idle timeout. Non-positive values keep the default.
func WithIdleTimeout(d time.Duration) StoreOption {
	return func(st *Store) {
		if d > 0 {
			st.idleTimeout = d
		}
	}
}

// withClock replaces time.Now in tests
func withClock(now func() time.Time) StoreOption {
	return func(st *Store) {
		st.now = now
	}
}

// NewStore creates a store whose sessions fall back to defaultToken
// when no token is typed into the interface
func NewStore(defaultToken string, opts ...StoreOption) *Store {
	st := &Store{
		sessions:     make(map[string]*Session),
		defaultToken: defaultToken,
		idleTimeout:  DefaultIdleTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(st)
	}
	st.lastSweep = st.now()
	return st
}

// New returns a session that is not kept in the store.
// It backs read-only requests that carry no known session.
func (st *Store) New() *Session {
	return newSession(uuid.New().String(), st.defaultToken)
}

// Create starts a new session
func (st *Store) Create() *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	st.sweepLocked(now)

	s := st.New()
	s.lastSeen = now
	st.sessions[s.ID] = s
	return s
}

// Get returns the session with the given ID and marks it as used
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	now := st.now()
	if st.expiredLocked(s, now) {
		delete(st.sessions, id)
		return nil, false
	}
	s.lastSeen = now
	return s, true
}

// Delete ends a session
func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Len returns the number of live sessions
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) expiredLocked(s *Session, now time.Time) bool {
	return now.Sub(s.lastSeen) > st.idleTimeout
}

// sweepLocked drops idle sessions, at most once per idle timeout
func (st *Store) sweepLocked(now time.Time) {
	if now.Sub(st.lastSweep) < st.idleTimeout {
		return
	}
	st.lastSweep = now
	for id, s := range st.sessions {
		if st.expiredLocked(s, now) {
			delete(st.sessions, id)
		}
	}
}
