// internal/sequence/game.go
//
// Memory/sequence game engine.
// Responsibilities:
//   - Grow a random symbol sequence one symbol per cleared round.
//   - Play the sequence back through the injected Scheduler (reveal, hold, release).
//   - Validate the player's replay step by step; first mismatch ends the game.
//
// State machine:
//   Idle --Start--> Playing --(last reveal released)--> AwaitingInput
//   AwaitingInput --(round cleared)--> Playing (grown, after a pause)
//   AwaitingInput --(mismatch)--> GameOver
//   any --Reset--> Idle, any --Start--> Playing (new session)
//
// Every delayed step lives in a schedule.Group, so Start/Reset cancel the
// previous session's playback before building the new one.

package sequence

import (
	"fmt"
	"time"

	"github.com/robalobadob/constitution-games/internal/rng"
	"github.com/robalobadob/constitution-games/internal/schedule"
	"github.com/robalobadob/constitution-games/internal/tally"
)

// pointsPerSymbol scores a cleared round by the grown sequence length.
const pointsPerSymbol = 10

// Timing controls playback pacing.
type Timing struct {
	Interval time.Duration // gap between the starts of consecutive reveals
	Display  time.Duration // how long each reveal stays lit
	Pause    time.Duration // delay before replaying a grown sequence
}

// DefaultTiming matches the site's pads: 800ms apart, lit 600ms, 1s between rounds.
func DefaultTiming() Timing {
	return Timing{Interval: 800 * time.Millisecond, Display: 600 * time.Millisecond, Pause: time.Second}
}

// Observer receives playback and lifecycle events. Any field may be nil.
// Events are delivered after the game's lock is released.
type Observer struct {
	OnHighlight    func(Symbol)
	OnHighlightEnd func(Symbol)
	OnPhase        func(Phase)
	OnGameOver     func(level, score int)
}

// Snapshot is the read-only view of a game.
type Snapshot struct {
	Phase     Phase    `json:"phase"`
	Level     int      `json:"level"`
	Score     int      `json:"score"`
	GameOver  bool     `json:"gameOver"`
	Step      int      `json:"step"`
	Revealed  []Symbol `json:"revealed"`
	Input     []Symbol `json:"input"`
	Highlight *Symbol  `json:"highlight,omitempty"`
}

// Game is one memory game session.
type Game struct {
	mu     schedule.Mutex
	rnd    rng.Source
	timers *schedule.Group
	timing Timing
	obs    Observer

	phase    Phase
	sequence []Symbol
	input    []Symbol
	step     int
	score    int
	revealed int
	lit      *Symbol
}

// New creates an idle game.
func New(rnd rng.Source, s schedule.Scheduler, timing Timing, obs Observer) *Game {
	g := &Game{rnd: rnd, timing: timing, obs: obs}
	g.timers = schedule.NewGroup(s, &g.mu)
	return g
}

// Start begins a new session: one random symbol, score zero, playback at once.
func (g *Game) Start() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.timers.Reset()
	g.sequence = []Symbol{g.draw()}
	g.input = nil
	g.step, g.score = 0, 0
	g.playback(0)
	return g.snapshot()
}

// Reset cancels pending playback and returns to Idle.
func (g *Game) Reset() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.timers.Reset()
	g.sequence, g.input = nil, nil
	g.step, g.score, g.revealed = 0, 0, 0
	g.lit = nil
	g.setPhase(Idle)
	return g.snapshot()
}

// Close cancels pending callbacks without touching state.
func (g *Game) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.timers.Reset()
}

// SubmitInput checks one replayed symbol.
func (g *Game) SubmitInput(sym Symbol) (Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !sym.Valid() {
		return g.snapshot(), fmt.Errorf("symbol %d: %w", int(sym), tally.ErrInvalidInput)
	}
	if g.phase != AwaitingInput {
		return g.snapshot(), fmt.Errorf("input while %s: %w", g.phase, tally.ErrInvalidState)
	}

	if g.sequence[g.step] != sym {
		g.setPhase(GameOver)
		level, score := len(g.sequence), g.score
		if fn := g.obs.OnGameOver; fn != nil {
			g.mu.Defer(func() { fn(level, score) })
		}
		return g.snapshot(), nil
	}

	g.input = append(g.input, sym)
	if g.step < len(g.sequence)-1 {
		g.step++
		return g.snapshot(), nil
	}

	g.sequence = append(g.sequence, g.draw())
	g.score += len(g.sequence) * pointsPerSymbol
	g.input = nil
	g.step = 0
	g.playback(g.timing.Pause)
	return g.snapshot(), nil
}

// Snapshot returns the current view.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

// playback enters Playing now and schedules the reveals starting after delay.
// The phase flips to AwaitingInput when the last reveal is released.
func (g *Game) playback(delay time.Duration) {
	g.revealed = 0
	g.lit = nil
	g.setPhase(Playing)
	last := len(g.sequence) - 1
	for i, sym := range g.sequence {
		at := delay + time.Duration(i)*g.timing.Interval
		g.timers.After(at, func() {
			s := sym
			g.revealed = i + 1
			g.lit = &s
			if fn := g.obs.OnHighlight; fn != nil {
				g.mu.Defer(func() { fn(s) })
			}
		})
		g.timers.After(at+g.timing.Display, func() {
			g.lit = nil
			if fn := g.obs.OnHighlightEnd; fn != nil {
				g.mu.Defer(func() { fn(sym) })
			}
			if i == last {
				g.setPhase(AwaitingInput)
			}
		})
	}
}

func (g *Game) setPhase(p Phase) {
	g.phase = p
	if fn := g.obs.OnPhase; fn != nil {
		g.mu.Defer(func() { fn(p) })
	}
}

func (g *Game) draw() Symbol { return Symbol(g.rnd.Intn(AlphabetSize)) }

func (g *Game) snapshot() Snapshot {
	snap := Snapshot{
		Phase:    g.phase,
		Level:    len(g.sequence),
		Score:    g.score,
		GameOver: g.phase == GameOver,
		Step:     g.step,
		Input:    append([]Symbol{}, g.input...),
		Revealed: []Symbol{},
	}
	switch g.phase {
	case Playing:
		snap.Revealed = append(snap.Revealed, g.sequence[:g.revealed]...)
	case GameOver:
		snap.Revealed = append(snap.Revealed, g.sequence...)
	}
	if g.lit != nil {
		s := *g.lit
		snap.Highlight = &s
	}
	return snap
}
