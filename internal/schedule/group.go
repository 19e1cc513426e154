package schedule

import (
	"sync"
	"time"
)

// Group tracks the pending callbacks of one game session, tagged with the
// session generation they were scheduled in.
//
// Every Group method must be called with the owning Locker held. Callbacks
// take that same Locker before they run and drop out if the generation moved
// on, so a callback that lost the race with Reset can never touch the new
// session.
type Group struct {
	s      Scheduler
	l      sync.Locker
	gen    uint64
	nextID uint64
	timers map[uint64]Timer
}

// NewGroup binds a Group to a scheduler and the session's lock.
func NewGroup(s Scheduler, l sync.Locker) *Group {
	return &Group{s: s, l: l, timers: make(map[uint64]Timer)}
}

// After schedules fn to run after d, under the Locker, in the current generation.
func (g *Group) After(d time.Duration, fn func()) {
	gen := g.gen
	g.nextID++
	id := g.nextID
	g.timers[id] = g.s.AfterFunc(d, func() {
		g.l.Lock()
		defer g.l.Unlock()
		if g.gen != gen {
			return
		}
		delete(g.timers, id)
		fn()
	})
}

// Reset cancels every pending callback and starts a new generation.
// Returns the number of callbacks cancelled.
func (g *Group) Reset() int {
	n := 0
	for id, t := range g.timers {
		if t.Stop() {
			n++
		}
		delete(g.timers, id)
	}
	g.gen++
	return n
}

// Pending is the number of callbacks still waiting in this generation.
func (g *Group) Pending() int { return len(g.timers) }

// Generation is the current session generation.
func (g *Group) Generation() uint64 { return g.gen }

// Mutex is a sync.Mutex that can queue notifications while held. Queued
// functions run in order right after Unlock releases the lock, so observers
// are free to call back into the session.
type Mutex struct {
	mu     sync.Mutex
	queued []func()
}

func (m *Mutex) Lock() { m.mu.Lock() }

func (m *Mutex) Unlock() {
	q := m.queued
	m.queued = nil
	m.mu.Unlock()
	for _, fn := range q {
		fn()
	}
}

// Defer queues fn until the lock is released. Must be called with the lock held.
func (m *Mutex) Defer(fn func()) {
	if fn != nil {
		m.queued = append(m.queued, fn)
	}
}
