// internal/store/memory.go
//
// In-memory session store for live game sessions.
// Sessions hold running timers and per-session locks, so they live in process
// memory only and are lost when the process restarts.
//
// Characteristics:
//   - Values keyed by session ID in a map, guarded by a mutex.
//   - Every Get refreshes the entry's last-seen time.
//   - Sweep drops entries idle longer than a TTL; Janitor runs Sweep periodically.
//   - Missing IDs return ErrNotFound.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when no session has the requested ID.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for game sessions.
type Store[T any] interface {
	// Save persists or replaces a session.
	Save(ctx context.Context, id string, v T) error

	// Get retrieves a session by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (T, error)

	// Delete removes a session. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error
}

type entry[T any] struct {
	value    T
	lastSeen time.Time
}

// Memory is a map-backed Store with idle expiry.
type Memory[T any] struct {
	mu    sync.Mutex
	items map[string]*entry[T]
	now   func() time.Time
}

// NewMemory constructs an empty in-memory store.
func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{items: make(map[string]*entry[T]), now: time.Now}
}

// Save adds or updates the session in the map.
func (m *Memory[T]) Save(_ context.Context, id string, v T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = &entry[T]{value: v, lastSeen: m.now()}
	return nil
}

// Get looks up a session by ID and marks it as recently used.
func (m *Memory[T]) Get(_ context.Context, id string) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.items[id]; ok {
		e.lastSeen = m.now()
		return e.value, nil
	}
	var zero T
	return zero, ErrNotFound
}

func (m *Memory[T]) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

// Len reports the number of live sessions.
func (m *Memory[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Sweep removes sessions idle for longer than ttl and returns them keyed by ID.
func (m *Memory[T]) Sweep(ttl time.Duration) map[string]T {
	cutoff := m.now().Add(-ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := make(map[string]T)
	for id, e := range m.items {
		if e.lastSeen.Before(cutoff) {
			evicted[id] = e.value
			delete(m.items, id)
		}
	}
	return evicted
}

// Janitor sweeps every interval until ctx is done. onEvict runs for each
// evicted session outside the store lock; it may be nil.
func (m *Memory[T]) Janitor(ctx context.Context, every, ttl time.Duration, onEvict func(id string, v T)) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			evicted := m.Sweep(ttl)
			for id, v := range evicted {
				if onEvict != nil {
					onEvict(id, v)
				}
			}
			if len(evicted) > 0 {
				log.Debug().Int("evicted", len(evicted)).Int("live", m.Len()).Msg("session sweep")
			}
		}
	}
}
