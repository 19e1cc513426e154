// internal/httpserver/sessions.go
//
// Live game sessions and their owners.
// A Session wraps exactly one game. Its owner is captured at creation (user ID
// when logged in, anonymous cookie otherwise) so results recorded later from
// timer goroutines still land on the right player.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/constitution-games/internal/quiz"
	"github.com/robalobadob/constitution-games/internal/scoreboard"
	"github.com/robalobadob/constitution-games/internal/scramble"
	"github.com/robalobadob/constitution-games/internal/sequence"
	"github.com/robalobadob/constitution-games/internal/store"
)

// Owner identifies who a session's results belong to.
type Owner struct {
	UserID      string
	AnonymousID string
}

// Session is one live game held in memory.
type Session struct {
	ID      string
	Game    string // scoreboard.GameQuiz, GameSequence or GameScramble
	Variant string
	Owner   Owner
	Created time.Time

	Quiz     *quiz.Engine
	Sequence *sequence.Game
	Words    *scramble.Game
}

// Close cancels any timers the session's game still holds.
func (s *Session) Close() {
	switch {
	case s.Sequence != nil:
		s.Sequence.Close()
	case s.Words != nil:
		s.Words.Close()
	}
}

// owner resolves the player for the current request.
func (s *Server) owner(w http.ResponseWriter, r *http.Request) Owner {
	if me := userFrom(r.Context()); me != nil {
		return Owner{UserID: me.ID}
	}
	return Owner{AnonymousID: s.ensureAnonID(w, r)}
}

func (s *Server) newSession(w http.ResponseWriter, r *http.Request, game, variant string) *Session {
	return &Session{
		ID:      uuid.NewString(),
		Game:    game,
		Variant: variant,
		Owner:   s.owner(w, r),
		Created: time.Now().UTC(),
	}
}

func (s *Server) saveSession(w http.ResponseWriter, r *http.Request, sess *Session) bool {
	if err := s.sess.Save(r.Context(), sess.ID, sess); err != nil {
		log.Error().Err(err).Str("session", sess.ID).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return false
	}
	log.Info().Str("session", sess.ID).Str("game", sess.Game).Str("variant", sess.Variant).Msg("session started")
	return true
}

// loadSession fetches the {id} session and checks it runs the expected game.
// It writes a 404 and returns nil otherwise.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request, game string) *Session {
	id := chi.URLParam(r, "id")
	sess, err := s.sess.Get(r.Context(), id)
	if err != nil || sess.Game != game {
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Error().Err(err).Str("session", id).Msg("load session")
		}
		writeError(w, http.StatusNotFound, "session_not_found")
		return nil
	}
	return sess
}

// record stores a result without failing the caller; errors are logged.
func (s *Server) record(sess *Session, score, level int) {
	if s.sb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := s.sb.Insert(ctx, scoreboard.Result{
		Game:        sess.Game,
		Variant:     sess.Variant,
		UserID:      sess.Owner.UserID,
		AnonymousID: sess.Owner.AnonymousID,
		Score:       score,
		Level:       level,
	})
	if err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Str("game", sess.Game).Msg("record result")
		return
	}
	log.Info().Str("session", sess.ID).Str("result", res.ID).Int("score", score).Msg("result recorded")
}

// EvictSession is the store janitor's eviction hook.
func EvictSession(id string, sess *Session) {
	sess.Close()
	log.Debug().Str("session", id).Str("game", sess.Game).Msg("session expired")
}
