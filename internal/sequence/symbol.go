package sequence

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robalobadob/constitution-games/internal/tally"
)

// Symbol is one of the four memory pads.
type Symbol int

const (
	Justice Symbol = iota
	Liberty
	Equality
	Fraternity
)

// AlphabetSize is the number of distinct symbols.
const AlphabetSize = 4

var symbolNames = [AlphabetSize]string{"Justice", "Liberty", "Equality", "Fraternity"}

// Valid reports whether s is inside the alphabet.
func (s Symbol) Valid() bool { return s >= 0 && s < AlphabetSize }

func (s Symbol) String() string {
	if !s.Valid() {
		return "Symbol(" + strconv.Itoa(int(s)) + ")"
	}
	return symbolNames[s]
}

func (s Symbol) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid symbol %d", int(s))
	}
	return []byte(symbolNames[s]), nil
}

func (s *Symbol) UnmarshalText(b []byte) error {
	v, err := ParseSymbol(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSymbol accepts a symbol name (any case) or its index "0".."3".
func ParseSymbol(v string) (Symbol, error) {
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		if s := Symbol(n); s.Valid() {
			return s, nil
		}
		return 0, fmt.Errorf("symbol index %d: %w", n, tally.ErrInvalidInput)
	}
	for i, name := range symbolNames {
		if strings.EqualFold(v, name) {
			return Symbol(i), nil
		}
	}
	return 0, fmt.Errorf("symbol %q: %w", v, tally.ErrInvalidInput)
}

// Phase is the memory game's state.
type Phase int

const (
	Idle Phase = iota
	Playing
	AwaitingInput
	GameOver
)

var phaseNames = [...]string{"idle", "playing", "awaiting_input", "game_over"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "Phase(" + strconv.Itoa(int(p)) + ")"
	}
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }
