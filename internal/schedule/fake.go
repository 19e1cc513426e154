package schedule

import (
	"sync"
	"time"
)

// Fake is a manually advanced Scheduler for tests.
// Callbacks run synchronously inside Advance, in due-time order (ties in
// scheduling order), including callbacks scheduled by other callbacks as long
// as they fall due before the advance target.
type Fake struct {
	mu      sync.Mutex
	now     time.Duration
	seq     uint64
	pending []*fakeTimer
}

type fakeTimer struct {
	f    *Fake
	at   time.Duration
	seq  uint64
	fn   func()
	done bool
}

// NewFake creates a fake scheduler at elapsed time zero.
func NewFake() *Fake { return &Fake{} }

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t := &fakeTimer{f: f, at: f.now + d, seq: f.seq, fn: fn}
	f.pending = append(f.pending, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	t.f.remove(t)
	return true
}

// Advance moves the clock forward by d, firing every callback that falls due.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now + d
	f.mu.Unlock()
	for {
		f.mu.Lock()
		next := f.earliest(target)
		if next == nil {
			if target > f.now {
				f.now = target
			}
			f.mu.Unlock()
			return
		}
		f.now = next.at
		next.done = true
		f.remove(next)
		f.mu.Unlock()
		next.fn()
	}
}

// Elapsed is the total time advanced so far.
func (f *Fake) Elapsed() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Pending counts callbacks that have neither fired nor been stopped.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

func (f *Fake) earliest(limit time.Duration) *fakeTimer {
	var best *fakeTimer
	for _, t := range f.pending {
		if t.at > limit {
			continue
		}
		if best == nil || t.at < best.at || (t.at == best.at && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (f *Fake) remove(t *fakeTimer) {
	for i, p := range f.pending {
		if p == t {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			return
		}
	}
}
