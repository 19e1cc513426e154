// internal/quiz/types.go
//
// Core type definitions for the trivia quiz.
// Defines:
//   - Difficulty and its point weight (easy=1, medium=2, hard=3).
//   - Question: one multiple-choice item.
//   - Set: a named, fixed, ordered list of questions.
//   - Tier: completion grade derived from the score percentage.

package quiz

import (
	"errors"
	"fmt"
)

// Difficulty is a question's difficulty tier.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Weight is the point value of a correct answer at this difficulty.
// Unknown difficulties count as easy.
func (d Difficulty) Weight() int {
	switch d {
	case Hard:
		return 3
	case Medium:
		return 2
	default:
		return 1
	}
}

// Valid reports whether d is one of the three known tiers.
func (d Difficulty) Valid() bool {
	return d == Easy || d == Medium || d == Hard
}

// Question is a single multiple-choice item.
type Question struct {
	ID           int        `json:"id"`
	Prompt       string     `json:"prompt"`
	Options      []string   `json:"options"`
	CorrectIndex int        `json:"correctIndex"`
	Difficulty   Difficulty `json:"difficulty"`
	Category     string     `json:"category"`
	Explanation  string     `json:"explanation"`
}

// Validate checks the option count and that CorrectIndex points at an option.
func (q Question) Validate() error {
	if q.Prompt == "" {
		return fmt.Errorf("question %d: empty prompt", q.ID)
	}
	if n := len(q.Options); n < 2 || n > 4 {
		return fmt.Errorf("question %d: need 2-4 options, got %d", q.ID, n)
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("question %d: correctIndex %d out of range", q.ID, q.CorrectIndex)
	}
	if !q.Difficulty.Valid() {
		return fmt.Errorf("question %d: unknown difficulty %q", q.ID, q.Difficulty)
	}
	return nil
}

// Set is a named, ordered question list played front to back.
type Set struct {
	Name      string     `json:"name"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Validate checks the set is playable.
func (s Set) Validate() error {
	if s.Name == "" {
		return errors.New("quiz set: missing name")
	}
	if len(s.Questions) == 0 {
		return fmt.Errorf("quiz set %q: no questions", s.Name)
	}
	for _, q := range s.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("quiz set %q: %w", s.Name, err)
		}
	}
	return nil
}

// MaxScore is the sum of every question's weight.
func (s Set) MaxScore() int {
	total := 0
	for _, q := range s.Questions {
		total += q.Difficulty.Weight()
	}
	return total
}

// Tier is the completion grade.
type Tier string

const (
	TierScholar  Tier = "Scholar"
	TierExpert   Tier = "Expert"
	TierSeeker   Tier = "Seeker"
	TierBeginner Tier = "Beginner"
)

// Grade maps score out of maxScore to a percentage and a tier.
// Bounds are closed: exactly 90/70/50 percent reach the higher tier.
// The comparison is done in integers so 7/10 is exactly 70.
func Grade(score, maxScore int) (float64, Tier) {
	if maxScore <= 0 {
		return 0, TierBeginner
	}
	pct := float64(score*100) / float64(maxScore)
	scaled := score * 100
	switch {
	case scaled >= 90*maxScore:
		return pct, TierScholar
	case scaled >= 70*maxScore:
		return pct, TierExpert
	case scaled >= 50*maxScore:
		return pct, TierSeeker
	default:
		return pct, TierBeginner
	}
}
