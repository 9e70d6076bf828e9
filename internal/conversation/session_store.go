package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/wolfman30/medpet-whatsapp-bot/pkg/logging"
)

// SessionStore holds the live session per normalized user id.
type SessionStore interface {
	Get(key string) (Session, bool)
	Put(key string, session Session)
	Delete(key string)
}

// MemorySessionStore keeps sessions in process memory and expires idle ones.
// A zero ttl disables expiry.
type MemorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]Session
}

// NewMemorySessionStore creates an empty store.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]Session),
	}
}

var _ SessionStore = (*MemorySessionStore)(nil)

func (s *MemorySessionStore) Get(key string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[key]
	if !ok {
		return Session{}, false
	}
	if s.expired(session, s.now()) {
		delete(s.sessions, key)
		return Session{}, false
	}
	return session, true
}

func (s *MemorySessionStore) Put(key string, session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.UpdatedAt = s.now()
	s.sessions[key] = session
}

func (s *MemorySessionStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
}

// Len reports the number of stored sessions, expired ones included until swept.
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were dropped.
func (s *MemorySessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for key, session := range s.sessions {
		if s.expired(session, now) {
			delete(s.sessions, key)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps expired sessions every interval until ctx is done.
func (s *MemorySessionStore) RunJanitor(ctx context.Context, interval time.Duration, logger *logging.Logger) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	if logger == nil {
		logger = logging.Default()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				logger.Info("expired idle conversation sessions", "count", n)
			}
		}
	}
}

func (s *MemorySessionStore) expired(session Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(session.UpdatedAt) > s.ttl
}
