// internal/httpserver/routes_scores.go
//
// Scoreboard routes:
//   - GET /scores/mine          → the logged-in player's recent results (auth)
//   - GET /scores/{game}?limit= → top results for quiz | sequence | scramble

package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/constitution-games/internal/scoreboard"
)

func (s *Server) mountScores(r chi.Router) {
	r.Route("/scores", func(r chi.Router) {
		r.With(s.requireAuth()).Get("/mine", s.handleScoresMine)
		r.Get("/{game}", s.handleLeaderboard)
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	game := chi.URLParam(r, "game")
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_limit")
			return
		}
		limit = n
	}
	rows, err := s.sb.Leaderboard(r.Context(), game, limit)
	if errors.Is(err, scoreboard.ErrUnknownGame) {
		writeError(w, http.StatusNotFound, "unknown_game")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("game", game).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"game": game, "entries": rows})
}

func (s *Server) handleScoresMine(w http.ResponseWriter, r *http.Request) {
	me := userFrom(r.Context())
	if me == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	u, err := s.sb.UserByID(r.Context(), me.ID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	results, err := s.sb.ForUser(r.Context(), me.ID, 50)
	if err != nil {
		log.Error().Err(err).Str("user", me.ID).Msg("results for user")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"gamesPlayed": u.GamesPlayed,
		"bestScore":   u.BestScore,
		"results":     results,
	})
}
