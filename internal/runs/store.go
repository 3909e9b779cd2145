package runs

import (
	"sync"
	"time"
)

// Store holds run records by id.
type Store interface {
	Put(rec *Record)
	Get(id string) (*Record, bool)
	Len() int
}

// MemoryStore is an in-process Store. Finished runs are evicted once they
// have been terminal for longer than the retention period; pending and
// running runs are never evicted.
type MemoryStore struct {
	mu        sync.RWMutex
	records   map[string]*Record
	retention time.Duration

	done      chan struct{}
	closeOnce sync.Once
	loopDone  chan struct{}
}

// NewMemoryStore creates a store. A retention of zero keeps runs for the
// life of the process and starts no background goroutine; otherwise call
// Close to stop the eviction loop.
func NewMemoryStore(retention time.Duration) *MemoryStore {
	s := &MemoryStore{
		records:   make(map[string]*Record),
		retention: retention,
		done:      make(chan struct{}),
		loopDone:  make(chan struct{}),
	}
	if retention > 0 {
		go s.evictLoop(evictInterval(retention))
	} else {
		close(s.loopDone)
	}
	return s
}

// evictInterval sweeps twice per retention period, between once a second
// and once a minute.
func evictInterval(retention time.Duration) time.Duration {
	return min(max(retention/2, time.Second), time.Minute)
}

// Put stores rec, replacing any record with the same id.
func (s *MemoryStore) Put(rec *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID()] = rec
}

// Get returns the record for id.
func (s *MemoryStore) Get(id string) (*Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok
}

// Len returns the number of stored runs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close stops the eviction loop and waits for it to exit. It is safe to
// call more than once.
func (s *MemoryStore) Close() {
	s.closeOnce.Do(func() { close(s.done) })
	<-s.loopDone
}

func (s *MemoryStore) evictLoop(interval time.Duration) {
	defer close(s.loopDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.evictExpired(now)
		}
	}
}

// evictExpired removes runs that finished more than the retention period
// before now and returns how many it removed.
func (s *MemoryStore) evictExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, rec := range s.records {
		if rec.expired(now, s.retention) {
			delete(s.records, id)
			n++
		}
	}
	return n
}
