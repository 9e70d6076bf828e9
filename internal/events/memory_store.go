package events

import (
	"context"
	"sync"
	"time"

	"github.com/wolfman30/medpet-whatsapp-bot/pkg/logging"
)

// MemoryProcessedStore tracks event ids in process memory. Used when no Redis
// or database is configured. Expired ids are reclaimable on lookup and are
// dropped from the map by Sweep.
type MemoryProcessedStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	seen map[string]time.Time
}

func NewMemoryProcessedStore(ttl time.Duration) *MemoryProcessedStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryProcessedStore{ttl: ttl, now: time.Now, seen: make(map[string]time.Time)}
}

var _ ProcessedTracker = (*MemoryProcessedStore)(nil)

func (s *MemoryProcessedStore) MarkProcessed(_ context.Context, provider, eventID string) (bool, error) {
	key := provider + ":" + eventID
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if at, ok := s.seen[key]; ok && now.Sub(at) <= s.ttl {
		return false, nil
	}
	s.seen[key] = now
	return true, nil
}

// Len reports how many ids are held, expired ones included until swept.
func (s *MemoryProcessedStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// Sweep drops expired ids and returns how many were removed.
func (s *MemoryProcessedStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, at := range s.seen {
		if now.Sub(at) > s.ttl {
			delete(s.seen, key)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps every interval until ctx is done.
func (s *MemoryProcessedStore) RunJanitor(ctx context.Context, interval time.Duration, logger *logging.Logger) {
	if interval <= 0 {
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
				logger.Debug("swept processed event ids", "count", n)
			}
		}
	}
}
