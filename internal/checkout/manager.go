package checkout

import "sync"

// SessionManager holds the active checkout session per user. Sessions are
// ephemeral: beginning a new checkout replaces any previous one, and a
// finished or abandoned checkout ends it.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
	}
}

func (m *SessionManager) Begin(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := NewSession(userID)
	m.sessions[userID] = session
	return session
}

func (m *SessionManager) Get(userID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[userID]
	return session, ok
}

func (m *SessionManager) End(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}
