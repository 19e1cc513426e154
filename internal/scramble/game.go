// internal/scramble/game.go
//
// Word-scramble game engine.
// Responsibilities:
//   - Pick a (word, hint) pair from a fixed pool and scramble its letters.
//   - Check guesses case-insensitively; score len(word)*10 plus a streak bonus.
//   - Advance to a new word after a short delay once solved (Scheduler-driven).
//
// Notes:
//   - The scramble never equals the word: it is re-shuffled until it differs.
//   - The streak bonus uses the streak from before the solving guess.
//   - While the post-solve advance is pending, further guesses are ignored.

package scramble

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robalobadob/constitution-games/internal/rng"
	"github.com/robalobadob/constitution-games/internal/schedule"
	"github.com/robalobadob/constitution-games/internal/tally"
)

const (
	pointsPerLetter = 10
	streakBonus     = 5

	// MaxGuessLen bounds accepted guess text, in bytes.
	MaxGuessLen = 64

	// DefaultAdvanceDelay is how long a solved word stays up before the next one.
	DefaultAdvanceDelay = time.Second
)

// Entry is one word in the pool.
type Entry struct {
	Word string `json:"word"`
	Hint string `json:"hint"`
}

// Puzzle is the word currently in play.
type Puzzle struct {
	Word      string
	Hint      string
	Scrambled string
}

// Observer receives puzzle changes. Delivered after the game's lock is released.
type Observer struct {
	OnAdvance func(Snapshot)
}

// Snapshot is the read-only view of a game. Answer is set only once solved.
type Snapshot struct {
	Scrambled  string `json:"scrambled"`
	Hint       string `json:"hint"`
	WordLength int    `json:"wordLength"`
	Score      int    `json:"score"`
	Streak     int    `json:"streak"`
	Solved     bool   `json:"solved"`
	Answer     string `json:"answer,omitempty"`
}

// Verdict is the outcome of an accepted guess.
type Verdict struct {
	Correct bool `json:"correct"`
	Points  int  `json:"points"`
}

// Game is one word-scramble session.
type Game struct {
	mu     schedule.Mutex
	rnd    rng.Source
	timers *schedule.Group
	pool   []Entry
	delay  time.Duration
	obs    Observer

	t      tally.Tally
	cur    Puzzle
	solved bool
}

// New creates a game and deals its first puzzle.
func New(pool []Entry, rnd rng.Source, s schedule.Scheduler, delay time.Duration, obs Observer) (*Game, error) {
	if len(pool) == 0 {
		return nil, errors.New("scramble: empty word pool")
	}
	g := &Game{pool: pool, rnd: rnd, delay: delay, obs: obs}
	g.timers = schedule.NewGroup(s, &g.mu)
	g.newPuzzle()
	return g, nil
}

// SubmitGuess checks text against the current word.
func (g *Game) SubmitGuess(text string) (Snapshot, Verdict, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	guess := strings.TrimSpace(text)
	if guess == "" || len(guess) > MaxGuessLen {
		return g.snapshot(), Verdict{}, fmt.Errorf("guess of %d bytes: %w", len(guess), tally.ErrInvalidInput)
	}
	if g.solved {
		return g.snapshot(), Verdict{}, fmt.Errorf("guess while advancing: %w", tally.ErrInvalidState)
	}

	if strings.ToUpper(guess) != g.cur.Word {
		g.t.Miss()
		return g.snapshot(), Verdict{}, nil
	}

	points := len(g.cur.Word)*pointsPerLetter + g.t.Bonus(streakBonus)
	g.t.Hit(points)
	g.solved = true
	g.timers.After(g.delay, func() {
		g.newPuzzle()
		if fn := g.obs.OnAdvance; fn != nil {
			snap := g.snapshot()
			g.mu.Defer(func() { fn(snap) })
		}
	})
	return g.snapshot(), Verdict{Correct: true, Points: points}, nil
}

// Skip deals a new word at once. Score and streak are untouched.
func (g *Game) Skip() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.timers.Reset()
	g.newPuzzle()
	return g.snapshot()
}

// NewGame zeroes score and streak and deals a new word.
func (g *Game) NewGame() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.timers.Reset()
	g.t.Reset()
	g.newPuzzle()
	return g.snapshot()
}

// Close cancels a pending advance.
func (g *Game) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.timers.Reset()
}

// Snapshot returns the current view.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

// Puzzle returns the puzzle in play, answer included.
func (g *Game) Puzzle() Puzzle {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cur
}

func (g *Game) newPuzzle() {
	e := rng.Pick(g.rnd, g.pool)
	g.cur = Puzzle{Word: e.Word, Hint: e.Hint, Scrambled: Scramble(g.rnd, e.Word)}
	g.solved = false
}

func (g *Game) snapshot() Snapshot {
	snap := Snapshot{
		Scrambled:  g.cur.Scrambled,
		Hint:       g.cur.Hint,
		WordLength: len([]rune(g.cur.Word)),
		Score:      g.t.Score,
		Streak:     g.t.Streak,
		Solved:     g.solved,
	}
	if g.solved {
		snap.Answer = g.cur.Word
	}
	return snap
}

// Scramble returns a random permutation of word's letters that differs from
// word. Words with fewer than two distinct letters have no such permutation
// and come back unchanged; the content loader rejects them.
func Scramble(src rng.Source, word string) string {
	letters := []rune(word)
	if !canScramble(letters) {
		return word
	}
	out := make([]rune, len(letters))
	for {
		for i, j := range src.Perm(len(letters)) {
			out[i] = letters[j]
		}
		if s := string(out); s != word {
			return s
		}
	}
}

func canScramble(letters []rune) bool {
	if len(letters) < 2 {
		return false
	}
	for _, r := range letters[1:] {
		if r != letters[0] {
			return true
		}
	}
	return false
}
