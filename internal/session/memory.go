package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultCheckPeriod is the sweep interval used when none is configured.
const DefaultCheckPeriod = 24 * time.Hour

type memoryEntry struct {
	data      Data
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory and sweeps expired entries
// on a fixed interval.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
	logger  *zap.Logger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore starts a store whose sweeper runs every checkPeriod.
func NewMemoryStore(checkPeriod time.Duration, logger *zap.Logger) *MemoryStore {
	if checkPeriod <= 0 {
		checkPeriod = DefaultCheckPeriod
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
		logger:  logger,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.sweepLoop(checkPeriod)
	return s
}

func (s *MemoryStore) Put(_ context.Context, id string, data Data, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = memoryEntry{data: data, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, id)
		return nil, nil
	}
	data := entry.data
	return &data, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

func (s *MemoryStore) Sweep(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of stored sessions, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close stops the sweeper. It is safe to call more than once.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() {
		close(s.stop)
		<-s.done
	})
	return nil
}

func (s *MemoryStore) sweepLoop(period time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			removed, _ := s.Sweep(context.Background())
			if removed > 0 {
				s.logger.Debug("expired sessions swept", zap.Int("count", removed))
			}
		}
	}
}
