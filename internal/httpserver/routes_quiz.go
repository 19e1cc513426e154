// internal/httpserver/routes_quiz.go
//
// HTTP routes for the quiz:
//   - POST /quiz/new            {set}    → start a session on a named question set
//   - GET  /quiz/{id}                    → current snapshot
//   - POST /quiz/{id}/answer    {option} → answer the current question
//   - POST /quiz/{id}/advance            → next question, or completion
//   - POST /quiz/{id}/reset              → back to question one
//
// A result is recorded once, when advance completes the quiz.

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/constitution-games/internal/quiz"
	"github.com/robalobadob/constitution-games/internal/scoreboard"
)

func (s *Server) mountQuiz(r chi.Router) {
	r.Route("/quiz", func(r chi.Router) {
		r.Post("/new", s.handleQuizNew)
		r.Get("/{id}", s.handleQuizGet)
		r.Post("/{id}/answer", s.handleQuizAnswer)
		r.Post("/{id}/advance", s.handleQuizAdvance)
		r.Post("/{id}/reset", s.handleQuizReset)
	})
}

type quizNewReq struct {
	Set string `json:"set"`
}

type quizAnswerReq struct {
	Option *int `json:"option"`
}

func (s *Server) handleQuizNew(w http.ResponseWriter, r *http.Request) {
	var req quizNewReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if req.Set == "" {
		names := s.lib.SetNames()
		req.Set = names[0]
	}
	set, ok := s.lib.Sets[req.Set]
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unknown_set", "sets": s.lib.SetNames()})
		return
	}

	sess := s.newSession(w, r, scoreboard.GameQuiz, set.Name)
	sess.Quiz = quiz.NewEngine(set)
	if !s.saveSession(w, r, sess) {
		return
	}
	respond(w, r, actionRes{SessionID: sess.ID, Snapshot: sess.Quiz.Snapshot()}, nil)
}

func (s *Server) handleQuizGet(w http.ResponseWriter, r *http.Request) {
	sess := s.loadSession(w, r, scoreboard.GameQuiz)
	if sess == nil {
		return
	}
	respond(w, r, actionRes{SessionID: sess.ID, Snapshot: sess.Quiz.Snapshot()}, nil)
}

func (s *Server) handleQuizAnswer(w http.ResponseWriter, r *http.Request) {
	sess := s.loadSession(w, r, scoreboard.GameQuiz)
	if sess == nil {
		return
	}
	var req quizAnswerReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	option := -1
	if req.Option != nil {
		option = *req.Option
	}
	snap, err := sess.Quiz.SubmitAnswer(option)
	respond(w, r, actionRes{SessionID: sess.ID, Snapshot: snap}, err)
}

func (s *Server) handleQuizAdvance(w http.ResponseWriter, r *http.Request) {
	sess := s.loadSession(w, r, scoreboard.GameQuiz)
	if sess == nil {
		return
	}
	snap, err := sess.Quiz.Advance()
	if err == nil && snap.Complete {
		s.record(sess, snap.Score, 0)
	}
	respond(w, r, actionRes{SessionID: sess.ID, Snapshot: snap}, err)
}

func (s *Server) handleQuizReset(w http.ResponseWriter, r *http.Request) {
	sess := s.loadSession(w, r, scoreboard.GameQuiz)
	if sess == nil {
		return
	}
	respond(w, r, actionRes{SessionID: sess.ID, Snapshot: sess.Quiz.Reset()}, nil)
}
