package infrastructure

import (
	"signetic_scheduler/internal/entities"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ChatSession is the state of one open connection. Context is touched only by
// the goroutine running that connection's turns.
type ChatSession struct {
	ID       string
	ClientID string
	Context  *entities.ConversationContext
	OpenedAt time.Time

	mu         sync.Mutex
	lastActive time.Time
	turnMu     sync.Mutex
}

func newChatSession(clientID string) *ChatSession {
	now := time.Now()
	return &ChatSession{
		ID:         uuid.NewString(),
		ClientID:   clientID,
		Context:    entities.NewConversationContext(),
		OpenedAt:   now,
		lastActive: now,
	}
}

// Touch records activity on the session.
func (s *ChatSession) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
}

// RunTurn holds the session's turn lock while fn runs, so at most one
// message is processed per session at a time.
func (s *ChatSession) RunTurn(fn func()) {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()
	fn()
}

func (s *ChatSession) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// SessionRegistry owns every open session, keyed by client id.
type SessionRegistry struct {
	sessions map[string]*ChatSession
	mu       sync.RWMutex
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*ChatSession),
	}
}

// Open registers a new session with an empty context. A previous session for
// the same client id is displaced; its own Close becomes a no-op.
func (r *SessionRegistry) Open(clientID string) *ChatSession {
	session := newChatSession(clientID)

	r.mu.Lock()
	r.sessions[clientID] = session
	r.mu.Unlock()
	return session
}

// GetOrOpen returns the registered session for clientID, opening one if needed.
func (r *SessionRegistry) GetOrOpen(clientID string) *ChatSession {
	r.mu.RLock()
	session, ok := r.sessions[clientID]
	r.mu.RUnlock()
	if ok {
		return session
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[clientID]; ok {
		return session
	}
	session = newChatSession(clientID)
	r.sessions[clientID] = session
	return session
}

// Close removes the session if it is still the registered one for its client.
// It returns true only for the call that actually removed it.
func (r *SessionRegistry) Close(session *ChatSession) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.sessions[session.ClientID]
	if !ok || current != session {
		return false
	}
	delete(r.sessions, session.ClientID)
	return true
}

func (r *SessionRegistry) Get(clientID string) (*ChatSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[clientID]
	return session, ok
}

func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// SweepIdle closes sessions idle for longer than maxIdle and returns the ones
// it removed. eligible limits the sweep to some sessions; nil means all.
func (r *SessionRegistry) SweepIdle(maxIdle time.Duration, eligible func(*ChatSession) bool) []*ChatSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []*ChatSession
	now := time.Now()
	for clientID, session := range r.sessions {
		if eligible != nil && !eligible(session) {
			continue
		}
		if now.Sub(session.LastActive()) > maxIdle {
			delete(r.sessions, clientID)
			removed = append(removed, session)
		}
	}
	return removed
}
