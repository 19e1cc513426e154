// internal/tally/tally.go
//
// Shared bookkeeping for every mini-game session.
// Defines:
//   - Tally: running score plus consecutive-correct streak.
//   - ErrInvalidInput / ErrInvalidState: the two reasons a game ignores an action.
//
// Games never fail hard. A rejected action leaves the session untouched and the
// caller gets one of the sentinels below (wrapped with detail) so it can tell
// "ignored" apart from "applied".

package tally

import "errors"

var (
	// ErrInvalidInput is returned when the action's argument is unusable
	// (option index out of range, empty guess, unknown symbol).
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidState is returned when the session is in the wrong phase for
	// the action (double submit, input during playback, advance before answer).
	ErrInvalidState = errors.New("invalid state")
)

// Ignored reports whether err means the action was rejected without effect.
func Ignored(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidState)
}

// Tally holds a score and the current streak of consecutive correct answers.
type Tally struct {
	Score  int `json:"score"`
	Streak int `json:"streak"`
}

// Hit adds points and extends the streak.
func (t *Tally) Hit(points int) {
	t.Score += points
	t.Streak++
}

// Miss breaks the streak. Score is kept.
func (t *Tally) Miss() { t.Streak = 0 }

// Bonus is the streak bonus for the next hit: the current (pre-increment)
// streak times per.
func (t Tally) Bonus(per int) int { return t.Streak * per }

// Reset zeroes score and streak.
func (t *Tally) Reset() { *t = Tally{} }
