package session

import (
	"sync"

	"github.com/qmiks/rolegate/pkg/idx"
)

// Manager tracks live sessions for connected clients, keyed by an opaque
// ULID session id. Each client owns exactly one Session; the registry itself
// holds no identity state beyond that.
type Manager struct {
	mu       sync.Mutex
	sessions map[idx.ID]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[idx.ID]*Session)}
}

// Start creates a new logged-out session and returns its id.
func (m *Manager) Start() (idx.ID, *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := idx.New()
	sess := New()
	m.sessions[id] = sess
	return id, sess
}

// Get returns the session for id, or false if it is unknown.
func (m *Manager) Get(id idx.ID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	return sess, ok
}

// End drops the session for id. Unknown ids are ignored.
func (m *Manager) End(id idx.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
