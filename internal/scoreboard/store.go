// internal/scoreboard/store.go
//
// Persistent results, leaderboards and user accounts.
//
// A result belongs either to a user (user_id) or to a guest cookie
// (anonymous_id). Guests who later sign up or log in claim their rows.

package scoreboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Game names accepted by the results table.
const (
	GameQuiz     = "quiz"
	GameSequence = "sequence"
	GameScramble = "scramble"
)

const (
	defaultLimit = 20
	maxLimit     = 100

	// Fixed-width UTC timestamps so created_at orders lexically.
	timeLayout = "2006-01-02T15:04:05.000000Z07:00"
)

var (
	ErrUnknownGame   = errors.New("unknown game")
	ErrUsernameTaken = errors.New("username taken")
	ErrNoOwner       = errors.New("result has no owner")
)

// ValidGame reports whether g is one of the recorded games.
func ValidGame(g string) bool {
	switch g {
	case GameQuiz, GameSequence, GameScramble:
		return true
	}
	return false
}

// Result is one finished (or abandoned) game.
type Result struct {
	ID          string    `json:"id"`
	Game        string    `json:"game"`
	Variant     string    `json:"variant,omitempty"`
	UserID      string    `json:"userId,omitempty"`
	AnonymousID string    `json:"-"`
	Score       int       `json:"score"`
	Level       int       `json:"level,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Entry is a leaderboard row.
type Entry struct {
	Username  string `json:"username"`
	Variant   string `json:"variant,omitempty"`
	Score     int    `json:"score"`
	Level     int    `json:"level,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// User matches the users table shape.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	GamesPlayed  int       `json:"gamesPlayed"`
	BestScore    int       `json:"bestScore"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Insert records a result. For registered users it also bumps games_played
// and best_score in the same transaction.
func (s *Store) Insert(ctx context.Context, r Result) (Result, error) {
	if !ValidGame(r.Game) {
		return r, fmt.Errorf("%w: %q", ErrUnknownGame, r.Game)
	}
	if r.UserID == "" && r.AnonymousID == "" {
		return r, ErrNoOwner
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return r, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO results (id, game, variant, user_id, anonymous_id, score, level, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Game, r.Variant, nullable(r.UserID), nullable(r.AnonymousID),
		r.Score, r.Level, r.CreatedAt.UTC().Format(timeLayout),
	); err != nil {
		return r, fmt.Errorf("insert result: %w", err)
	}
	if r.UserID != "" {
		if _, err := tx.ExecContext(ctx, `
            UPDATE users
               SET games_played = games_played + 1,
                   best_score   = MAX(best_score, ?)
             WHERE id = ?`, r.Score, r.UserID); err != nil {
			return r, fmt.Errorf("bump stats: %w", err)
		}
	}
	return r, tx.Commit()
}

// Leaderboard returns the top scores for a game, best first, earliest first on ties.
// limit <= 0 means the default of 20; it is capped at 100.
func (s *Store) Leaderboard(ctx context.Context, game string, limit int) ([]Entry, error) {
	if !ValidGame(game) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGame, game)
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT COALESCE(u.username, 'guest'), r.variant, r.score, r.level, r.created_at
          FROM results r
          LEFT JOIN users u ON u.id = r.user_id
         WHERE r.game = ?
         ORDER BY r.score DESC, r.created_at ASC
         LIMIT ?`, game, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Username, &e.Variant, &e.Score, &e.Level, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ForUser lists a user's most recent results.
func (s *Store) ForUser(ctx context.Context, userID string, limit int) ([]Result, error) {
	if limit <= 0 || limit > maxLimit {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, game, variant, score, level, created_at
          FROM results
         WHERE user_id = ?
         ORDER BY created_at DESC
         LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Result{}
	for rows.Next() {
		var (
			r       Result
			created string
		)
		if err := rows.Scan(&r.ID, &r.Game, &r.Variant, &r.Score, &r.Level, &created); err != nil {
			return nil, err
		}
		r.UserID = userID
		r.CreatedAt = parseTime(created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ClaimAnon moves a guest's results onto a user account and folds them into
// the user's counters. It returns the number of rows claimed.
func (s *Store) ClaimAnon(ctx context.Context, anonID, userID string) (int, error) {
	if anonID == "" || userID == "" {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var n, best int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1), COALESCE(MAX(score), 0) FROM results WHERE anonymous_id = ?`, anonID,
	).Scan(&n, &best); err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE results SET user_id = ?, anonymous_id = NULL WHERE anonymous_id = ?`, userID, anonID,
	); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `
        UPDATE users
           SET games_played = games_played + ?,
               best_score   = MAX(best_score, ?)
         WHERE id = ?`, n, best, userID); err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

// CreateUser inserts a user with an already-hashed password.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (*User, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE lower(username)=lower(?)`, username).Scan(&exists)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt.Format(time.RFC3339),
	); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return u, nil
}

// UserByUsername and UserByID return sql.ErrNoRows when the user is missing.
func (s *Store) UserByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `
        SELECT id, username, password_hash, created_at, games_played, best_score
          FROM users WHERE lower(username)=lower(?)`, username))
}

func (s *Store) UserByID(ctx context.Context, id string) (*User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `
        SELECT id, username, password_hash, created_at, games_played, best_score
          FROM users WHERE id=?`, id))
}

func scanUser(row *sql.Row) (*User, error) {
	var (
		u       User
		created string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created, &u.GamesPlayed, &u.BestScore); err != nil {
		return nil, err
	}
	u.CreatedAt = parseTime(created)
	return &u, nil
}

// parseTime accepts RFC3339 with or without fractional seconds; zero on error.
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
