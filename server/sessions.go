package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ZaguanLabs/codeshift"
)

// DefaultSessionTTL evicts sessions idle for longer.
const DefaultSessionTTL = 30 * time.Minute

// SessionManager maps session IDs to conversion sessions over one engine.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*codeshift.Session
	engine   *codeshift.Engine
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionManager creates a session manager. ttl <= 0 uses DefaultSessionTTL.
func NewSessionManager(engine *codeshift.Engine, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{
		sessions: make(map[string]*codeshift.Session),
		engine:   engine,
		ttl:      ttl,
		now:      time.Now,
	}
}

// GetOrCreate returns the session for id, or a new session with a fresh
// ID when id is unknown.
func (m *SessionManager) GetOrCreate(id string) *codeshift.Session {
	if s, ok := m.Get(id); ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another request may have created it meanwhile.
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := codeshift.NewSession(uuid.NewString(), m.engine)
	m.sessions[s.ID()] = s
	return s
}

// Get returns an existing session.
func (m *SessionManager) Get(id string) (*codeshift.Session, bool) {
	if id == "" {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions idle for longer than the TTL. Sessions with a
// request in flight are kept. It returns the number removed.
func (m *SessionManager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.Busy() || s.LastUsed().After(cutoff) {
			continue
		}
		delete(m.sessions, id)
		removed++
	}
	return removed
}
