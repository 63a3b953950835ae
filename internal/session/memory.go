package session

import (
	"context"
	"meet-and-greet/internal/wizard"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	state     wizard.State
	expiresAt time.Time
}

type memoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
	locked  map[string]bool
}

// NewMemoryStore keeps sessions in process memory. A ttl of zero keeps them
// until the process exits.
func NewMemoryStore(ttl time.Duration) Store {
	return &memoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
		locked:  make(map[string]bool),
	}
}

func (s *memoryStore) Create(ctx context.Context, state wizard.State) (string, error) {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	s.put(id, state)
	return id, nil
}

func (s *memoryStore) Load(ctx context.Context, id string) (wizard.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return wizard.State{}, ErrNotFound
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		delete(s.entries, id)
		return wizard.State{}, ErrNotFound
	}
	return e.state, nil
}

func (s *memoryStore) Save(ctx context.Context, id string, state wizard.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return ErrNotFound
	}
	s.put(id, state)
	return nil
}

func (s *memoryStore) Lock(ctx context.Context, id string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked[id] {
		return nil, ErrLocked
	}
	s.locked[id] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.locked, id)
			s.mu.Unlock()
		})
	}, nil
}

// sweep drops expired sessions that were never loaded again. Locked
// sessions are left for their holder. Callers hold s.mu.
func (s *memoryStore) sweep() {
	if s.ttl <= 0 {
		return
	}
	now := s.now()
	for id, e := range s.entries {
		if now.After(e.expiresAt) && !s.locked[id] {
			delete(s.entries, id)
		}
	}
}

func (s *memoryStore) put(id string, state wizard.State) {
	e := memoryEntry{state: state}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.entries[id] = e
}
