// internal/quiz/engine.go
//
// Quiz session state and transitions.
// Responsibilities:
//   - State: the explicit session value (index, score, streak, xp, flags).
//   - Submit / Advance: pure transitions (set, state, action) → state.
//   - Engine: owns one State behind a mutex and produces read-only snapshots.
//
// State machine:
//   Presenting --Submit--> Answered --Advance--> Presenting (next question)
//                                     \-------> Completed  (after the last one)
//
// Invalid actions return ErrInvalidInput/ErrInvalidState and the state unchanged.

package quiz

import (
	"fmt"
	"sync"

	"github.com/robalobadob/constitution-games/internal/tally"
)

// xpPerPoint converts score points into XP.
const xpPerPoint = 10

// State is one quiz session.
type State struct {
	tally.Tally
	QuestionIndex   int  `json:"questionIndex"`
	XP              int  `json:"xp"`
	AnsweredCurrent bool `json:"answeredCurrent"`
	Complete        bool `json:"complete"`
	Selected        int  `json:"selected"` // chosen option while answered, -1 otherwise
	LastCorrect     bool `json:"lastCorrect"`
}

// Fresh returns the state of a newly started session.
func Fresh() State { return State{Selected: -1} }

// Submit evaluates option against the current question.
func Submit(set Set, st State, option int) (State, error) {
	if st.Complete || st.AnsweredCurrent {
		return st, fmt.Errorf("submit on question %d: %w", st.QuestionIndex, tally.ErrInvalidState)
	}
	q := set.Questions[st.QuestionIndex]
	if option < 0 || option >= len(q.Options) {
		return st, fmt.Errorf("option %d of %d: %w", option, len(q.Options), tally.ErrInvalidInput)
	}

	st.AnsweredCurrent = true
	st.Selected = option
	st.LastCorrect = option == q.CorrectIndex
	if st.LastCorrect {
		points := q.Difficulty.Weight()
		st.Hit(points)
		st.XP += points * xpPerPoint
	} else {
		st.Miss()
	}
	return st, nil
}

// Advance moves past an answered question, completing the quiz after the last one.
func Advance(set Set, st State) (State, error) {
	if st.Complete || !st.AnsweredCurrent {
		return st, fmt.Errorf("advance from question %d: %w", st.QuestionIndex, tally.ErrInvalidState)
	}
	st.AnsweredCurrent = false
	st.Selected = -1
	st.LastCorrect = false
	if st.QuestionIndex < len(set.Questions)-1 {
		st.QuestionIndex++
		return st, nil
	}
	st.Complete = true
	return st, nil
}

// QuestionView is what presentation sees of the current question. The answer
// and explanation are only filled in once the question has been answered.
type QuestionView struct {
	ID           int        `json:"id"`
	Prompt       string     `json:"prompt"`
	Options      []string   `json:"options"`
	Difficulty   Difficulty `json:"difficulty"`
	Category     string     `json:"category"`
	CorrectIndex *int       `json:"correctIndex,omitempty"`
	Explanation  string     `json:"explanation,omitempty"`
}

// Snapshot is the read-only view of a session.
type Snapshot struct {
	State
	Set        string        `json:"set"`
	Total      int           `json:"total"`
	MaxScore   int           `json:"maxScore"`
	Percentage float64       `json:"percentage"`
	Tier       Tier          `json:"tier,omitempty"`
	Question   *QuestionView `json:"question,omitempty"`
}

// Engine drives one quiz session over a fixed Set.
type Engine struct {
	mu  sync.Mutex
	set Set
	st  State
}

// NewEngine starts a session on set. set must be valid (see Set.Validate).
func NewEngine(set Set) *Engine {
	return &Engine{set: set, st: Fresh()}
}

// SubmitAnswer answers the current question.
func (e *Engine) SubmitAnswer(option int) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, err := Submit(e.set, e.st, option)
	e.st = st
	return e.snapshot(), err
}

// Advance moves to the next question or completes the quiz.
func (e *Engine) Advance() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, err := Advance(e.set, e.st)
	e.st = st
	return e.snapshot(), err
}

// Reset returns to the first question with everything zeroed.
func (e *Engine) Reset() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.st = Fresh()
	return e.snapshot()
}

// Snapshot returns the current view.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// State returns the raw session value.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st
}

func (e *Engine) snapshot() Snapshot {
	snap := Snapshot{
		State:    e.st,
		Set:      e.set.Name,
		Total:    len(e.set.Questions),
		MaxScore: e.set.MaxScore(),
	}
	if e.st.Complete {
		snap.Percentage, snap.Tier = Grade(e.st.Score, snap.MaxScore)
		return snap
	}
	q := e.set.Questions[e.st.QuestionIndex]
	view := &QuestionView{
		ID:         q.ID,
		Prompt:     q.Prompt,
		Options:    append([]string(nil), q.Options...),
		Difficulty: q.Difficulty,
		Category:   q.Category,
	}
	if e.st.AnsweredCurrent {
		correct := q.CorrectIndex
		view.CorrectIndex = &correct
		view.Explanation = q.Explanation
	}
	snap.Question = view
	return snap
}
