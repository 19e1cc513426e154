// internal/httpserver/routes_words.go
//
// HTTP routes for the word scramble:
//   - POST /words/new               → new game, first puzzle dealt
//   - GET  /words/{id}              → current snapshot
//   - POST /words/{id}/guess {guess} → check a guess
//   - POST /words/{id}/skip         → next word, score kept
//   - POST /words/{id}/reset        → new game, score zeroed
//
// The scrambled word never carries its answer until solved. A game with a
// positive score is recorded when it is reset.

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/constitution-games/internal/scoreboard"
	"github.com/robalobadob/constitution-games/internal/scramble"
)

func (s *Server) mountWords(r chi.Router) {
	r.Route("/words", func(r chi.Router) {
		r.Post("/new", s.handleWordsNew)
		r.Get("/{id}", s.handleWordsGet)
		r.Post("/{id}/guess", s.handleWordsGuess)
		r.Post("/{id}/skip", s.handleWordsSkip)
		r.Post("/{id}/reset", s.handleWordsReset)
	})
}

type wordsGuessReq struct {
	Guess string `json:"guess"`
}

func (s *Server) handleWordsNew(w http.ResponseWriter, r *http.Request) {
	sess := s.newSession(w, r, scoreboard.GameScramble, "")
	g, err := scramble.New(s.lib.Words, s.rnd, s.clk, s.cfg.WordAdvanceDelay, scramble.Observer{
		OnAdvance: func(snap scramble.Snapshot) {
			log.Debug().Str("session", sess.ID).Int("score", snap.Score).Msg("next word")
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("new scramble game")
		writeError(w, http.StatusInternalServerError, "no_words")
		return
	}
	sess.Words = g
	if !s.saveSession(w, r, sess) {
		return
	}
	respond(w, r, actionRes{SessionID: sess.ID, Snapshot: g.Snapshot()}, nil)
}

func (s *Server) handleWordsGet(w http.ResponseWriter, r *http.Request) {
	sess := s.loadSession(w, r, scoreboard.GameScramble)
	if sess == nil {
		return
	}
	respond(w, r, actionRes{SessionID: sess.ID, Snapshot: sess.Words.Snapshot()}, nil)
}

func (s *Server) handleWordsGuess(w http.ResponseWriter, r *http.Request) {
	sess := s.loadSession(w, r, scoreboard.GameScramble)
	if sess == nil {
		return
	}
	var req wordsGuessReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	snap, verdict, err := sess.Words.SubmitGuess(req.Guess)
	res := actionRes{SessionID: sess.ID, Snapshot: snap}
	if err == nil {
		res.Verdict = verdict
	}
	respond(w, r, res, err)
}

func (s *Server) handleWordsSkip(w http.ResponseWriter, r *http.Request) {
	sess := s.loadSession(w, r, scoreboard.GameScramble)
	if sess == nil {
		return
	}
	respond(w, r, actionRes{SessionID: sess.ID, Snapshot: sess.Words.Skip()}, nil)
}

func (s *Server) handleWordsReset(w http.ResponseWriter, r *http.Request) {
	sess := s.loadSession(w, r, scoreboard.GameScramble)
	if sess == nil {
		return
	}
	if prev := sess.Words.Snapshot(); prev.Score > 0 {
		s.record(sess, prev.Score, 0)
	}
	respond(w, r, actionRes{SessionID: sess.ID, Snapshot: sess.Words.NewGame()}, nil)
}
