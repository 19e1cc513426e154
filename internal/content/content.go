// internal/content/content.go
//
// Loads the games' fixed content: quiz question sets and the scramble word pool.
//
// Responsibilities:
//   - Read from operator-provided files when configured, else the embedded defaults in assets/.
//   - Validate everything up front so the games can assume well-formed content.
//
// Sources:
//   1. QUESTIONS_FILE=/path/to/questions.json  JSON array of quiz sets
//   2. WORDS_FILE=/path/to/words.txt           one "WORD|hint" per line, # comments allowed
//   Unset paths fall back to the embedded copies.
//
// Constraints:
//   • Words are A–Z only, at least 3 letters, uppercased on load, with at least two
//     distinct letters (otherwise no scramble can differ from the word).
//   • Duplicate words and duplicate set names are rejected.

package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/robalobadob/constitution-games/assets"
	"github.com/robalobadob/constitution-games/internal/quiz"
	"github.com/robalobadob/constitution-games/internal/scramble"
)

const minWordLen = 3

// Library is the loaded, validated content.
type Library struct {
	Sets  map[string]quiz.Set
	Words []scramble.Entry
}

// Load reads question sets and words. Empty paths use the embedded defaults.
func Load(questionsPath, wordsPath string) (*Library, error) {
	sets, err := LoadQuestionSets(questionsPath)
	if err != nil {
		return nil, err
	}
	words, err := LoadWordPool(wordsPath)
	if err != nil {
		return nil, err
	}
	return &Library{Sets: sets, Words: words}, nil
}

// SetNames lists quiz set names in sorted order.
func (l *Library) SetNames() []string {
	names := make([]string, 0, len(l.Sets))
	for n := range l.Sets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LoadQuestionSets decodes and validates quiz sets from path, or the embedded file.
func LoadQuestionSets(path string) (map[string]quiz.Set, error) {
	var (
		raw []byte
		err error
	)
	if path != "" {
		raw, err = os.ReadFile(path)
	} else {
		raw, err = assets.Questions()
	}
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	return ParseQuestionSets(raw)
}

// ParseQuestionSets decodes a JSON array of sets.
func ParseQuestionSets(raw []byte) (map[string]quiz.Set, error) {
	var list []quiz.Set
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	if len(list) == 0 {
		return nil, errors.New("content: no quiz sets")
	}
	out := make(map[string]quiz.Set, len(list))
	for _, s := range list {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := out[s.Name]; dup {
			return nil, fmt.Errorf("content: duplicate quiz set %q", s.Name)
		}
		out[s.Name] = s
	}
	return out, nil
}

// LoadWordPool reads "WORD|hint" lines from path, or the embedded pool.
func LoadWordPool(path string) ([]scramble.Entry, error) {
	var (
		lines []string
		err   error
	)
	if path != "" {
		lines, err = readLines(path)
	} else {
		lines, err = assets.WordLines()
	}
	if err != nil {
		return nil, fmt.Errorf("read words: %w", err)
	}
	return ParseWordPool(lines)
}

// ParseWordPool validates pool lines. Comment and blank lines must already be dropped.
func ParseWordPool(lines []string) ([]scramble.Entry, error) {
	seen := make(map[string]struct{}, len(lines))
	var out []scramble.Entry
	for i, line := range lines {
		word, hint, _ := strings.Cut(line, "|")
		word = strings.ToUpper(strings.TrimSpace(word))
		hint = strings.TrimSpace(hint)
		if err := validWord(word); err != nil {
			return nil, fmt.Errorf("words line %d: %w", i+1, err)
		}
		if _, dup := seen[word]; dup {
			return nil, fmt.Errorf("words line %d: duplicate %q", i+1, word)
		}
		seen[word] = struct{}{}
		out = append(out, scramble.Entry{Word: word, Hint: hint})
	}
	if len(out) == 0 {
		return nil, errors.New("content: word pool is empty")
	}
	return out, nil
}

func validWord(w string) error {
	if len(w) < minWordLen {
		return fmt.Errorf("%q shorter than %d letters", w, minWordLen)
	}
	distinct := false
	for i := 0; i < len(w); i++ {
		if w[i] < 'A' || w[i] > 'Z' {
			return fmt.Errorf("%q has non-letter %q", w, w[i])
		}
		if w[i] != w[0] {
			distinct = true
		}
	}
	if !distinct {
		return fmt.Errorf("%q cannot be scrambled", w)
	}
	return nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return assets.ScanLines(f)
}
