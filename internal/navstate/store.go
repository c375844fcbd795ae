// Package navstate holds summary payloads between the upload redirect and the
// results view. Entries live in process memory only and expire after a TTL.
package navstate

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	payload   []byte
	expiresAt time.Time
}

type Store struct {
	mu      sync.Mutex
	entries map[uuid.UUID]entry
	ttl     time.Duration
	now     func() time.Time

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewStore starts a janitor that sweeps expired entries every sweepEvery.
// Call Close to stop it.
func NewStore(ttl, sweepEvery time.Duration) *Store {
	s := &Store{
		entries: make(map[uuid.UUID]entry),
		ttl:     ttl,
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.janitor(sweepEvery)
	return s
}

// Put stores a copy of payload and returns its key.
func (s *Store) Put(payload []byte) uuid.UUID {
	id := uuid.New()
	cp := make([]byte, len(payload))
	copy(cp, payload)

	s.mu.Lock()
	s.entries[id] = entry{payload: cp, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return id
}

// Get returns the payload stored under id. Expired entries are reported missing.
func (s *Store) Get(id uuid.UUID) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, id)
		return nil, false
	}
	return e.payload, true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}

func (s *Store) janitor(every time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

// Close stops the janitor and waits for it to exit.
func (s *Store) Close() {
	s.once.Do(func() {
		close(s.stop)
	})
	<-s.done
}
