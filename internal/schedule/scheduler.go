// internal/schedule/scheduler.go
//
// Delayed, cancelable callbacks for timed playback and transitions.
// Defines:
//   - Scheduler: the injected timer source (AfterFunc).
//   - Clock: real wall-clock implementation over time.AfterFunc.
//   - Fake: manual clock for tests (fake.go).
//   - Group: generation-tagged set of pending callbacks (group.go).

package schedule

import "time"

// Timer is a pending callback.
type Timer interface {
	// Stop cancels the callback. Reports false if it already ran or was stopped.
	Stop() bool
}

// Scheduler runs fn once after d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Clock schedules on the real clock. Callbacks run on their own goroutine.
type Clock struct{}

func (Clock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
