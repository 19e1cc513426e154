package assets

import (
	"bufio"
	"embed"
	"io"
	"io/fs"
	"strings"
)

//go:embed questions.json words.txt migrations/*.sql
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ScanLines(f)
}

// ScanLines returns trimmed lines from r, skipping blanks and "#" comments.
func ScanLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// Questions returns the embedded question sets (JSON array of sets).
func Questions() ([]byte, error) {
	return FS.ReadFile("questions.json")
}

// WordLines returns the embedded "WORD|hint" lines, comments and blanks dropped.
func WordLines() ([]string, error) {
	return readLines("words.txt")
}

// Migrations exposes the scoreboard SQL migrations rooted at their directory.
func Migrations() (fs.FS, error) {
	return fs.Sub(FS, "migrations")
}
