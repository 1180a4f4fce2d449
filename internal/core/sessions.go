// ABOUTME: SessionStore keeps one Session per session id
// ABOUTME: Sessions are created on first use and never shared across ids
package core

import (
	"sort"
	"sync"
)

// SessionFactory builds a new Session for id
type SessionFactory func(id string) (*Session, error)

// SessionStore maps session ids to sessions
type SessionStore struct {
	factory  SessionFactory
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty store
func NewSessionStore(factory SessionFactory) *SessionStore {
	return &SessionStore{
		factory:  factory,
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate returns the session for id, creating it on first use
func (st *SessionStore) GetOrCreate(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[id]; ok {
		return s, nil
	}
	s, err := st.factory(id)
	if err != nil {
		return nil, err
	}
	st.sessions[id] = s
	return s, nil
}

// Get returns the session for id if it exists
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Delete discards the session for id; its index and history go with it
func (st *SessionStore) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

// IDs returns the known session ids in sorted order
func (st *SessionStore) IDs() []string {
	st.mu.Lock()
	defer st.mu.Unlock()
	ids := make([]string, 0, len(st.sessions))
	for id := range st.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
