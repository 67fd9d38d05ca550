package wizard

import (
	"sync"
	"time"

	"barberbook/pkg/logger"

	"github.com/google/uuid"
)

// Session binds one wizard instance to an opaque key handed to the client.
type Session struct {
	ID        string
	Wizard    *Wizard
	CreatedAt time.Time
	lastSeen  time.Time
}

// SessionStore keeps in-flight wizard sessions in memory with idle expiry.
// Sessions are per-process; a confirmed or abandoned wizard is reaped after
// the TTL of inactivity.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	log      *logger.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewSessionStore(ttl time.Duration, log *logger.Logger) *SessionStore {
	s := &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		log:      log,
		stopCh:   make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// Create registers a new session around w and returns it with a minted key.
func (s *SessionStore) Create(w *Wizard) *Session {
	now := time.Now()
	session := &Session{
		ID:        uuid.NewString(),
		Wizard:    w,
		CreatedAt: now,
		lastSeen:  now,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

// Get returns the session and refreshes its idle timer.
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if time.Since(session.lastSeen) > s.ttl {
		delete(s.sessions, id)
		return nil, false
	}
	session.lastSeen = time.Now()
	return session, true
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Stop terminates the cleanup goroutine. Safe to call multiple times.
func (s *SessionStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

func (s *SessionStore) cleanupLoop() {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.removeExpired()
		case <-s.stopCh:
			return
		}
	}
}

func (s *SessionStore) removeExpired() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if now.Sub(session.lastSeen) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.log.Debug("Expired wizard sessions removed",
			"removed", removed,
			"remaining", len(s.sessions),
		)
	}
}
