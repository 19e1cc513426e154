// internal/httpserver/routes_sequence.go
//
// HTTP routes for the memory sequence game:
//   - POST /sequence/new               → create an idle game
//   - GET  /sequence/{id}              → current snapshot (poll during playback)
//   - POST /sequence/{id}/start        → new session, playback begins
//   - POST /sequence/{id}/step {symbol} → replay one symbol (name or index 0–3)
//   - POST /sequence/{id}/reset        → cancel playback, back to idle
//
// Playback runs on server timers; clients poll the snapshot for the lit symbol.
// A result is recorded from the game-over observer.

package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/constitution-games/internal/scoreboard"
	"github.com/robalobadob/constitution-games/internal/sequence"
)

func (s *Server) mountSequence(r chi.Router) {
	r.Route("/sequence", func(r chi.Router) {
		r.Post("/new", s.handleSequenceNew)
		r.Get("/{id}", s.handleSequenceGet)
		r.Post("/{id}/start", s.handleSequenceStart)
		r.Post("/{id}/step", s.handleSequenceStep)
		r.Post("/{id}/reset", s.handleSequenceReset)
	})
}

type sequenceStepReq struct {
	Symbol json.RawMessage `json:"symbol"`
}

func (s *Server) sequenceTiming() sequence.Timing {
	return sequence.Timing{
		Interval: s.cfg.SequenceInterval,
		Display:  s.cfg.SequenceDisplay,
		Pause:    s.cfg.SequencePause,
	}
}

func (s *Server) handleSequenceNew(w http.ResponseWriter, r *http.Request) {
	sess := s.newSession(w, r, scoreboard.GameSequence, "")
	sess.Sequence = sequence.New(s.rnd, s.clk, s.sequenceTiming(), sequence.Observer{
		OnPhase: func(p sequence.Phase) {
			log.Debug().Str("session", sess.ID).Stringer("phase", p).Msg("sequence phase")
		},
		OnGameOver: func(level, score int) {
			s.record(sess, score, level)
		},
	})
	if !s.saveSession(w, r, sess) {
		return
	}
	respond(w, r, actionRes{SessionID: sess.ID, Snapshot: sess.Sequence.Snapshot()}, nil)
}

func (s *Server) handleSequenceGet(w http.ResponseWriter, r *http.Request) {
	sess := s.loadSession(w, r, scoreboard.GameSequence)
	if sess == nil {
		return
	}
	respond(w, r, actionRes{SessionID: sess.ID, Snapshot: sess.Sequence.Snapshot()}, nil)
}

func (s *Server) handleSequenceStart(w http.ResponseWriter, r *http.Request) {
	sess := s.loadSession(w, r, scoreboard.GameSequence)
	if sess == nil {
		return
	}
	respond(w, r, actionRes{SessionID: sess.ID, Snapshot: sess.Sequence.Start()}, nil)
}

func (s *Server) handleSequenceStep(w http.ResponseWriter, r *http.Request) {
	sess := s.loadSession(w, r, scoreboard.GameSequence)
	if sess == nil {
		return
	}
	var req sequenceStepReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sym, err := sequence.ParseSymbol(strings.Trim(string(req.Symbol), `"`))
	if err != nil {
		respond(w, r, actionRes{SessionID: sess.ID, Snapshot: sess.Sequence.Snapshot()}, err)
		return
	}
	snap, err := sess.Sequence.SubmitInput(sym)
	respond(w, r, actionRes{SessionID: sess.ID, Snapshot: snap}, err)
}

func (s *Server) handleSequenceReset(w http.ResponseWriter, r *http.Request) {
	sess := s.loadSession(w, r, scoreboard.GameSequence)
	if sess == nil {
		return
	}
	respond(w, r, actionRes{SessionID: sess.ID, Snapshot: sess.Sequence.Reset()}, nil)
}
