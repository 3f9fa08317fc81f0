package application

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/sitecms/internal/domain/model"
)

// Session is a logged-in admin session. Callers receive copies; the manager
// owns the stored records.
type Session struct {
	Token     string
	UserID    int64
	Username  string
	Name      string
	ExpiresAt time.Time
}

// SessionManager issues and validates opaque in-memory session tokens for the
// admin panel. Sessions do not survive a restart, which is acceptable for a
// single-admin deployment.
type SessionManager struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]Session
}

// NewSessionManager creates a SessionManager with the given session lifetime.
func NewSessionManager(ttl time.Duration) *SessionManager {
	return &SessionManager{
		ttl:      ttl,
		sessions: make(map[string]Session),
	}
}

// Create opens a session for the given account and returns it.
func (m *SessionManager) Create(user model.User) Session {
	session := Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		Name:      user.Name,
		ExpiresAt: time.Now().Add(m.ttl),
	}

	m.mu.Lock()
	m.sessions[session.Token] = session
	m.mu.Unlock()

	return session
}

// Get returns the session for token if it exists and has not expired.
// Expired sessions are dropped on access.
func (m *SessionManager) Get(token string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[token]
	if !ok {
		return Session{}, false
	}
	if time.Now().After(session.ExpiresAt) {
		delete(m.sessions, token)
		return Session{}, false
	}
	return session, true
}

// Destroy ends the session for token. Destroying an unknown token is a no-op.
func (m *SessionManager) Destroy(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}
