package schedule

import (
	"sync"
	"testing"
	"time"
)

func TestFakeFiresInOrder(t *testing.T) {
	f := NewFake()
	var got []string
	f.AfterFunc(300*time.Millisecond, func() { got = append(got, "c") })
	f.AfterFunc(100*time.Millisecond, func() { got = append(got, "a") })
	f.AfterFunc(100*time.Millisecond, func() { got = append(got, "b") })

	f.Advance(99 * time.Millisecond)
	if len(got) != 0 {
		t.Fatalf("nothing should fire before 100ms, got %v", got)
	}
	f.Advance(time.Millisecond)
	if want := "ab"; join(got) != want {
		t.Fatalf("expected %q, got %q", want, join(got))
	}
	f.Advance(time.Second)
	if want := "abc"; join(got) != want {
		t.Errorf("expected %q, got %q", want, join(got))
	}
	if f.Elapsed() != 1100*time.Millisecond {
		t.Errorf("expected elapsed 1.1s, got %v", f.Elapsed())
	}
}

func TestFakeNestedScheduling(t *testing.T) {
	f := NewFake()
	fired := 0
	f.AfterFunc(10*time.Millisecond, func() {
		f.AfterFunc(10*time.Millisecond, func() { fired++ })
	})
	f.Advance(25 * time.Millisecond)
	if fired != 1 {
		t.Errorf("nested callback due at 20ms should fire within a 25ms advance, fired=%d", fired)
	}
}

func TestFakeStop(t *testing.T) {
	f := NewFake()
	fired := false
	tm := f.AfterFunc(time.Second, func() { fired = true })
	if !tm.Stop() {
		t.Fatal("first Stop should report true")
	}
	if tm.Stop() {
		t.Error("second Stop should report false")
	}
	f.Advance(2 * time.Second)
	if fired {
		t.Error("stopped callback fired")
	}
	if f.Pending() != 0 {
		t.Errorf("expected no pending timers, got %d", f.Pending())
	}
}

func TestGroupResetCancelsGeneration(t *testing.T) {
	f := NewFake()
	var mu sync.Mutex
	g := NewGroup(f, &mu)

	fired := 0
	mu.Lock()
	g.After(100*time.Millisecond, func() { fired++ })
	g.After(200*time.Millisecond, func() { fired++ })
	if g.Pending() != 2 {
		t.Fatalf("expected 2 pending, got %d", g.Pending())
	}
	n := g.Reset()
	g.After(150*time.Millisecond, func() { fired += 10 })
	mu.Unlock()

	if n != 2 {
		t.Errorf("expected 2 cancelled, got %d", n)
	}
	f.Advance(time.Second)
	if fired != 10 {
		t.Errorf("only the new generation's callback should run, fired=%d", fired)
	}
	if g.Generation() != 1 {
		t.Errorf("expected generation 1, got %d", g.Generation())
	}
}

// A timer that already escaped Stop (real clocks can race) must still be a no-op.
type leakyScheduler struct{ fns []func() }

func (l *leakyScheduler) AfterFunc(_ time.Duration, fn func()) Timer {
	l.fns = append(l.fns, fn)
	return leakyTimer{}
}

type leakyTimer struct{}

func (leakyTimer) Stop() bool { return false }

func TestGroupStaleCallbackIsNoop(t *testing.T) {
	s := &leakyScheduler{}
	var mu sync.Mutex
	g := NewGroup(s, &mu)

	ran := false
	mu.Lock()
	g.After(time.Millisecond, func() { ran = true })
	g.Reset()
	mu.Unlock()

	s.fns[0]()
	if ran {
		t.Error("callback from a previous generation ran")
	}
}

func TestMutexRunsQueuedAfterUnlock(t *testing.T) {
	var m Mutex
	var order []string
	m.Lock()
	m.Defer(func() {
		// The lock must be free here.
		m.Lock()
		order = append(order, "observer")
		m.Unlock()
	})
	order = append(order, "locked")
	m.Unlock()
	if join(order) != "lockedobserver" {
		t.Errorf("unexpected order %v", order)
	}
}

func join(s []string) string {
	out := ""
	for _, v := range s {
		out += v
	}
	return out
}
